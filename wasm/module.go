package wasm

// Module is the fully decoded, typed representation of a WebAssembly 1.0
// binary module. It is exclusively owned by whoever decoded it; the
// validator only ever borrows it.
type Module struct {
	Types   []FuncType
	Funcs   []Func
	Tables  []Table
	Mems    []Mem
	Globals []Global
	Elem    []Elem
	Data    []Data
	Start   *Start
	Imports []Import
	Exports []Export
}

// Func is a locally defined function: its type, any additional locals
// declared beyond its parameters, and its body.
type Func struct {
	Type   TypeIdx
	Locals []ValType
	Body   Expr
}

// Table is a locally defined table.
type Table struct {
	Type TableType
}

// Mem is a locally defined linear memory.
type Mem struct {
	Type MemType
}

// Global is a locally defined global, with its constant-expression
// initializer.
type Global struct {
	Type GlobalType
	Init Expr
}

// Elem is an element segment: a constant offset expression into a table,
// populated with a sequence of function indices.
type Elem struct {
	Table  TableIdx
	Offset Expr
	Init   []FuncIdx
}

// Data is a data segment: a constant offset expression into a memory,
// populated with raw bytes. Data.Init is the one place a Module carries
// raw, un-interpreted bytes.
type Data struct {
	Mem    MemIdx
	Offset Expr
	Init   []byte
}

// Start names the function, if any, to be invoked once instantiation
// completes.
type Start struct {
	Func FuncIdx
}

// ImportKind discriminates which kind of external an Import describes.
type ImportKind byte

const (
	ImportFunc ImportKind = iota
	ImportTable
	ImportMem
	ImportGlobal
)

// ImportDesc is the descriptor half of an Import: exactly one of the
// four kinds is meaningful, selected by Kind.
type ImportDesc struct {
	Kind   ImportKind
	Func   TypeIdx
	Table  TableType
	Mem    MemType
	Global GlobalType
}

// Import is a single imported entity.
type Import struct {
	Module string
	Name   string
	Desc   ImportDesc
}

// ExportKind discriminates which kind of internal entity an Export names.
type ExportKind byte

const (
	ExportFunc ExportKind = iota
	ExportTable
	ExportMem
	ExportGlobal
)

// ExportDesc is the descriptor half of an Export.
type ExportDesc struct {
	Kind   ExportKind
	Func   FuncIdx
	Table  TableIdx
	Mem    MemIdx
	Global GlobalIdx
}

// Export is a single exported entity, named for the host environment.
type Export struct {
	Name string
	Desc ExportDesc
}

// Package wasm holds the typed, in-memory representation of a decoded
// WebAssembly 1.0 module and the static validator that checks it, matching
// https://webassembly.github.io/spec/core/ in spirit for the MVP feature
// set (no SIMD, no threads, no reference types beyond funcref).
package wasm

import "fmt"

// TypeIdx, FuncIdx, TableIdx, MemIdx, GlobalIdx, LocalIdx and LabelIdx are
// distinct index kinds so the compiler rejects mixing them up; all are
// 32-bit, matching the u32 indices of the binary format.
type (
	TypeIdx   uint32
	FuncIdx   uint32
	TableIdx  uint32
	MemIdx    uint32
	GlobalIdx uint32
	LocalIdx  uint32
	LabelIdx  uint32
)

// ValType is one of the four MVP value types.
type ValType byte

const (
	I32 ValType = iota
	I64
	F32
	F64
)

func (v ValType) String() string {
	switch v {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return fmt.Sprintf("valtype(%d)", byte(v))
	}
}

// ElemType is the element type of a table. FuncRef is the only element
// type defined in the MVP.
type ElemType byte

const FuncRef ElemType = 0

func (ElemType) String() string { return "funcref" }

// Mut marks a global as immutable (Const) or mutable (Var).
type Mut byte

const (
	Const Mut = iota
	Var
)

func (m Mut) String() string {
	if m == Var {
		return "var"
	}
	return "const"
}

// Limits bounds the size of a table or memory. Max is nil when unbounded.
type Limits struct {
	Min uint32
	Max *uint32
}

// HasMax reports whether the limits carry an upper bound.
func (l Limits) HasMax() bool { return l.Max != nil }

// FuncType is the signature of a function: zero or more parameters, at
// most one result in the MVP.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// TableType describes a table's element kind and size limits.
type TableType struct {
	Elem ElemType
	Lim  Limits
}

// MemType describes a linear memory's size limits, in 64KiB pages.
type MemType struct {
	Lim Limits
}

// GlobalType describes a global's value type and mutability.
type GlobalType struct {
	Val ValType
	Mut Mut
}

// BlockType is the result signature of a block/loop/if construct: either
// empty or exactly one value type in the MVP (multi-value block types are
// a post-MVP extension and out of scope).
type BlockType struct {
	Empty  bool
	Result ValType
}

// ResultTypes returns the block's result type list: empty, or a single
// value type.
func (b BlockType) ResultTypes() []ValType {
	if b.Empty {
		return nil
	}
	return []ValType{b.Result}
}

package wasm

import (
	"fmt"
	"io"
)

// Fprint writes a human-readable dump of m to w: one section per kind of
// module entry, in declaration order. Element and data segments are not
// printed. This is the one piece of
// "formatting" whasm ships directly, so that cmd/wasmtool has something
// to call without reaching into Module internals itself.
func (m *Module) Fprint(w io.Writer) {
	fmt.Fprintf(w, "types: %d\n", len(m.Types))
	for i, t := range m.Types {
		fmt.Fprintf(w, "  [%d] %s\n", i, funcTypeString(t))
	}

	fmt.Fprintf(w, "funcs: %d\n", len(m.Funcs))
	for i, f := range m.Funcs {
		fmt.Fprintf(w, "  [%d] type=%d locals=%d body=%d instrs\n", i, f.Type, len(f.Locals), len(f.Body))
	}

	fmt.Fprintf(w, "tables: %d\n", len(m.Tables))
	for i, t := range m.Tables {
		fmt.Fprintf(w, "  [%d] %s %s\n", i, t.Type.Elem, limitsString(t.Type.Lim))
	}

	fmt.Fprintf(w, "mems: %d\n", len(m.Mems))
	for i, mem := range m.Mems {
		fmt.Fprintf(w, "  [%d] %s\n", i, limitsString(mem.Type.Lim))
	}

	fmt.Fprintf(w, "globals: %d\n", len(m.Globals))
	for i, g := range m.Globals {
		fmt.Fprintf(w, "  [%d] %s %s\n", i, g.Type.Mut, g.Type.Val)
	}

	fmt.Fprintf(w, "imports: %d\n", len(m.Imports))
	for _, imp := range m.Imports {
		fmt.Fprintf(w, "  %s.%s: %s\n", imp.Module, imp.Name, importDescString(imp.Desc))
	}

	fmt.Fprintf(w, "exports: %d\n", len(m.Exports))
	for _, exp := range m.Exports {
		fmt.Fprintf(w, "  %s: %s\n", exp.Name, exportDescString(exp.Desc))
	}

	if m.Start != nil {
		fmt.Fprintf(w, "start: func %d\n", m.Start.Func)
	}
}

// FprintTypes writes the resolved external types of a ModuleTypes result,
// used by cmd/wasmtool's -p/--print mode once validate() has succeeded.
func FprintTypes(w io.Writer, mt *ModuleTypes) {
	fmt.Fprintf(w, "resolved imports: %d\n", len(mt.Imports))
	for i, e := range mt.Imports {
		fmt.Fprintf(w, "  [%d] %s\n", i, externalString(e))
	}
	fmt.Fprintf(w, "resolved exports: %d\n", len(mt.Exports))
	for i, e := range mt.Exports {
		fmt.Fprintf(w, "  [%d] %s\n", i, externalString(e))
	}
}

func funcTypeString(t FuncType) string {
	return fmt.Sprintf("%s -> %s", valTypesString(t.Params), valTypesString(t.Results))
}

func valTypesString(ts []ValType) string {
	s := "["
	for i, t := range ts {
		if i > 0 {
			s += " "
		}
		s += t.String()
	}
	return s + "]"
}

func limitsString(l Limits) string {
	if l.Max != nil {
		return fmt.Sprintf("{min:%d max:%d}", l.Min, *l.Max)
	}
	return fmt.Sprintf("{min:%d}", l.Min)
}

func importDescString(d ImportDesc) string {
	switch d.Kind {
	case ImportFunc:
		return fmt.Sprintf("func type=%d", d.Func)
	case ImportTable:
		return fmt.Sprintf("table %s %s", d.Table.Elem, limitsString(d.Table.Lim))
	case ImportMem:
		return fmt.Sprintf("mem %s", limitsString(d.Mem.Lim))
	default:
		return fmt.Sprintf("global %s %s", d.Global.Mut, d.Global.Val)
	}
}

func exportDescString(d ExportDesc) string {
	switch d.Kind {
	case ExportFunc:
		return fmt.Sprintf("func %d", d.Func)
	case ExportTable:
		return fmt.Sprintf("table %d", d.Table)
	case ExportMem:
		return fmt.Sprintf("mem %d", d.Mem)
	default:
		return fmt.Sprintf("global %d", d.Global)
	}
}

func externalString(e External) string {
	switch e.Kind {
	case ExternalFunc:
		return fmt.Sprintf("func %s", funcTypeString(e.Func))
	case ExternalTable:
		return fmt.Sprintf("table %s %s", e.Table.Elem, limitsString(e.Table.Lim))
	case ExternalMem:
		return fmt.Sprintf("mem %s", limitsString(e.Mem.Lim))
	default:
		return fmt.Sprintf("global %s %s", e.Global.Mut, e.Global.Val)
	}
}

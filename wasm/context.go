package wasm

// context is the typing context built once per validate() call: the
// concatenation of imported-then-local entries for each of the five
// indexable kinds, plus the function-local state (locals, the enclosing
// return type) that changes per function body.
type context struct {
	types   []FuncType
	funcs   []FuncType
	tables  []TableType
	mems    []MemType
	globals []GlobalType

	// importedGlobals is the number of entries at the front of globals
	// that came from the import section, vs. locally declared.
	importedGlobals int

	locals []ValType
	ret    []ValType

	stacks opStacks
}

func newContext(m *Module) (*context, error) {
	ctx := &context{types: m.Types}

	for _, imp := range m.Imports {
		if imp.Desc.Kind == ImportFunc {
			ty, err := ctx.resolveType(imp.Desc.Func)
			if err != nil {
				return nil, err
			}
			ctx.funcs = append(ctx.funcs, ty)
		}
	}
	for _, imp := range m.Imports {
		switch imp.Desc.Kind {
		case ImportTable:
			ctx.tables = append(ctx.tables, imp.Desc.Table)
		case ImportMem:
			ctx.mems = append(ctx.mems, imp.Desc.Mem)
		case ImportGlobal:
			ctx.globals = append(ctx.globals, imp.Desc.Global)
		}
	}
	ctx.importedGlobals = len(ctx.globals)

	for _, f := range m.Funcs {
		ty, err := ctx.resolveType(f.Type)
		if err != nil {
			return nil, err
		}
		ctx.funcs = append(ctx.funcs, ty)
	}
	for _, t := range m.Tables {
		ctx.tables = append(ctx.tables, t.Type)
	}
	for _, mem := range m.Mems {
		ctx.mems = append(ctx.mems, mem.Type)
	}
	for _, g := range m.Globals {
		ctx.globals = append(ctx.globals, g.Type)
	}

	return ctx, nil
}

func (c *context) resolveType(idx TypeIdx) (FuncType, error) {
	if int(idx) >= len(c.types) {
		return FuncType{}, NewValidationError(ErrIndexOutOfRange, "type index out of range")
	}
	return c.types[idx], nil
}

func (c *context) resolveFunc(idx FuncIdx) (FuncType, error) {
	if int(idx) >= len(c.funcs) {
		return FuncType{}, NewValidationError(ErrIndexOutOfRange, "function index out of range")
	}
	return c.funcs[idx], nil
}

func (c *context) resolveTable(idx TableIdx) (TableType, error) {
	if int(idx) >= len(c.tables) {
		return TableType{}, NewValidationError(ErrIndexOutOfRange, "table index out of range")
	}
	return c.tables[idx], nil
}

func (c *context) resolveMem(idx MemIdx) (MemType, error) {
	if int(idx) >= len(c.mems) {
		return MemType{}, NewValidationError(ErrIndexOutOfRange, "memory index out of range")
	}
	return c.mems[idx], nil
}

func (c *context) resolveGlobal(idx GlobalIdx) (GlobalType, error) {
	if int(idx) >= len(c.globals) {
		return GlobalType{}, NewValidationError(ErrIndexOutOfRange, "global index out of range")
	}
	return c.globals[idx], nil
}

func (c *context) resolveLocal(idx LocalIdx) (ValType, error) {
	if int(idx) >= len(c.locals) {
		return 0, NewValidationError(ErrIndexOutOfRange, "local index out of range")
	}
	return c.locals[idx], nil
}

package wasm

// ExternalKind discriminates which field of External is meaningful.
type ExternalKind byte

const (
	ExternalFunc ExternalKind = iota
	ExternalTable
	ExternalMem
	ExternalGlobal
)

// External describes one imported or exported entity's resolved type,
// per spec §6's library API (`Func(&FuncType)`, `Table(&TableType)`, ...).
type External struct {
	Kind   ExternalKind
	Func   FuncType
	Table  TableType
	Mem    MemType
	Global GlobalType
}

// ModuleTypes is validate's result: the resolved external type of every
// import and every export, in declaration order.
type ModuleTypes struct {
	Imports []External
	Exports []External
}

// Validate statically validates m against the WebAssembly 1.0 type
// system (spec §4.G, §4.H) and, on success, returns the resolved type of
// every import and export. It never mutates m; the module is only ever
// borrowed.
func Validate(m *Module) (*ModuleTypes, error) {
	ctx, err := newContext(m)
	if err != nil {
		return nil, err
	}

	for _, ty := range m.Types {
		if err := validateFuncType(ty); err != nil {
			return nil, err
		}
	}
	for _, f := range m.Funcs {
		if err := validateFunc(ctx, f); err != nil {
			return nil, err
		}
	}
	for _, t := range m.Tables {
		if err := validateTableType(t.Type); err != nil {
			return nil, err
		}
	}
	for _, mem := range m.Mems {
		if err := validateMemType(mem.Type); err != nil {
			return nil, err
		}
	}

	for _, g := range m.Globals {
		if err := validateGlobal(ctx, g); err != nil {
			return nil, err
		}
	}

	for _, e := range m.Elem {
		if err := validateElem(ctx, e); err != nil {
			return nil, err
		}
	}
	for _, d := range m.Data {
		if err := validateData(ctx, d); err != nil {
			return nil, err
		}
	}
	if m.Start != nil {
		if err := validateStart(ctx, *m.Start); err != nil {
			return nil, err
		}
	}

	if len(m.Tables) > 1 {
		return nil, NewValidationError(ErrMultipleTables, "")
	}
	if len(m.Mems) > 1 {
		return nil, NewValidationError(ErrMultipleMemories, "")
	}

	seen := make(map[string]struct{}, len(m.Exports))
	for _, e := range m.Exports {
		if _, ok := seen[e.Name]; ok {
			return nil, NewValidationError(ErrDuplicateExport, e.Name)
		}
		seen[e.Name] = struct{}{}
	}

	result := &ModuleTypes{}
	for _, imp := range m.Imports {
		ext, err := importExternal(ctx, imp.Desc)
		if err != nil {
			return nil, err
		}
		result.Imports = append(result.Imports, ext)
	}
	for _, exp := range m.Exports {
		ext, err := exportExternal(ctx, exp.Desc)
		if err != nil {
			return nil, err
		}
		result.Exports = append(result.Exports, ext)
	}

	return result, nil
}

func validateFuncType(ty FuncType) error {
	if len(ty.Results) > 1 {
		return NewValidationError(ErrTooManyResults, "")
	}
	return nil
}

func validateLimits(l Limits, max uint32) error {
	m := l.Min
	if l.Max != nil {
		m = *l.Max
	}
	if l.Min > m {
		return NewValidationError(ErrLimitsMinGreaterThanMax, "")
	}
	if m > max {
		return NewValidationError(ErrLimitsMinGreaterThanMax, "range exceeds maximum")
	}
	return nil
}

func validateTableType(t TableType) error {
	return validateLimits(t.Lim, 0xFFFFFFFF)
}

func validateMemType(t MemType) error {
	return validateLimits(t.Lim, 65536)
}

func validateFunc(ctx *context, f Func) error {
	ty, err := ctx.resolveType(f.Type)
	if err != nil {
		return err
	}
	ret := ty.Results

	ctx.ret = append([]ValType{}, ret...)
	ctx.locals = append(append([]ValType{}, ty.Params...), f.Locals...)
	ctx.stacks = opStacks{}
	ctx.stacks.pushFrame(ret, ret)

	if err := validateExpr(ctx, f.Body); err != nil {
		return err
	}
	if _, err := ctx.stacks.popFrame(); err != nil {
		return err
	}
	if len(ctx.stacks.frames) != 0 || len(ctx.stacks.operands) != 0 {
		return NewValidationError(ErrStackUnderflow, "function body left values on the stack")
	}

	ctx.locals = nil
	ctx.ret = nil
	return nil
}

// validateConstExpr checks offset/initializer expressions: only const
// instructions and reads of a non-imported immutable global are legal
// (spec §4.H), and the expression must leave exactly `ret` on the stack.
func validateConstExpr(ctx *context, e Expr, ret []ValType) error {
	for _, instr := range e {
		switch instr.Opcode {
		case OpI32Const, OpI64Const, OpF32Const, OpF64Const:
		case OpGlobalGet:
			g, err := ctx.resolveGlobal(instr.GlobalIdx)
			if err != nil {
				return err
			}
			if int(instr.GlobalIdx) < ctx.importedGlobals {
				return NewValidationError(ErrConstExprImportedGlobal, "")
			}
			if g.Mut != Const {
				return NewValidationError(ErrConstExprMutableGlobal, "")
			}
		default:
			return NewValidationError(ErrConstExprNotConst, "")
		}
	}

	saved := ctx.stacks
	ctx.stacks = opStacks{}
	ctx.stacks.pushFrame(ret, ret)
	err := validateExpr(ctx, e)
	if err == nil {
		_, err = ctx.stacks.popFrame()
	}
	if err == nil && (len(ctx.stacks.frames) != 0 || len(ctx.stacks.operands) != 0) {
		err = NewValidationError(ErrStackUnderflow, "constant expression left values on the stack")
	}
	ctx.stacks = saved
	return err
}

func validateGlobal(ctx *context, g Global) error {
	return validateConstExpr(ctx, g.Init, []ValType{g.Type.Val})
}

func validateElem(ctx *context, e Elem) error {
	t, err := ctx.resolveTable(e.Table)
	if err != nil {
		return err
	}
	if t.Elem != FuncRef {
		return NewValidationError(ErrInvalidElemTable, "")
	}
	if err := validateConstExpr(ctx, e.Offset, []ValType{I32}); err != nil {
		return err
	}
	for _, fi := range e.Init {
		if _, err := ctx.resolveFunc(fi); err != nil {
			return err
		}
	}
	return nil
}

func validateData(ctx *context, d Data) error {
	if _, err := ctx.resolveMem(d.Mem); err != nil {
		return err
	}
	return validateConstExpr(ctx, d.Offset, []ValType{I32})
}

func validateStart(ctx *context, s Start) error {
	ty, err := ctx.resolveFunc(s.Func)
	if err != nil {
		return err
	}
	if len(ty.Params) != 0 || len(ty.Results) != 0 {
		return NewValidationError(ErrInvalidStartFunctionType, "")
	}
	return nil
}

func importExternal(ctx *context, d ImportDesc) (External, error) {
	switch d.Kind {
	case ImportFunc:
		ty, err := ctx.resolveType(d.Func)
		if err != nil {
			return External{}, err
		}
		return External{Kind: ExternalFunc, Func: ty}, nil
	case ImportTable:
		if err := validateTableType(d.Table); err != nil {
			return External{}, err
		}
		return External{Kind: ExternalTable, Table: d.Table}, nil
	case ImportMem:
		if err := validateMemType(d.Mem); err != nil {
			return External{}, err
		}
		return External{Kind: ExternalMem, Mem: d.Mem}, nil
	default:
		return External{Kind: ExternalGlobal, Global: d.Global}, nil
	}
}

func exportExternal(ctx *context, d ExportDesc) (External, error) {
	switch d.Kind {
	case ExportFunc:
		ty, err := ctx.resolveFunc(d.Func)
		if err != nil {
			return External{}, err
		}
		return External{Kind: ExternalFunc, Func: ty}, nil
	case ExportTable:
		ty, err := ctx.resolveTable(d.Table)
		if err != nil {
			return External{}, err
		}
		return External{Kind: ExternalTable, Table: ty}, nil
	case ExportMem:
		ty, err := ctx.resolveMem(d.Mem)
		if err != nil {
			return External{}, err
		}
		return External{Kind: ExternalMem, Mem: ty}, nil
	default:
		ty, err := ctx.resolveGlobal(d.Global)
		if err != nil {
			return External{}, err
		}
		return External{Kind: ExternalGlobal, Global: ty}, nil
	}
}

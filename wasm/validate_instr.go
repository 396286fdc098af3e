package wasm

// validateExpr validates every instruction of e against ctx in order,
// per spec §4.H: expressions carry no terminator at this layer (the
// decoder already stripped End/Else), so this is a plain sequential walk.
func validateExpr(ctx *context, e Expr) error {
	for _, instr := range e {
		if err := validateInstr(ctx, instr); err != nil {
			return err
		}
	}
	return nil
}

var i32 = []ValType{I32}

func validateInstr(ctx *context, instr Instr) error {
	switch instr.Opcode {
	case OpUnreachable:
		return ctx.stacks.unreachable()
	case OpNop:
		return nil

	case OpBlock:
		ret := instr.Block.Type.ResultTypes()
		ctx.stacks.pushFrame(ret, ret)
		if err := validateExpr(ctx, instr.Block.Body); err != nil {
			return err
		}
		return endFrame(ctx)
	case OpLoop:
		ret := instr.Block.Type.ResultTypes()
		ctx.stacks.pushFrame(nil, ret)
		if err := validateExpr(ctx, instr.Block.Body); err != nil {
			return err
		}
		return endFrame(ctx)
	case OpIf:
		ret := instr.If.Type.ResultTypes()
		if err := ctx.stacks.popOperands(i32); err != nil {
			return err
		}
		ctx.stacks.pushFrame(ret, ret)
		if err := validateExpr(ctx, instr.If.Then); err != nil {
			return err
		}
		// synthesize the else terminator: pop the then-frame, push a
		// fresh frame with the same label/out for the else branch.
		if _, err := ctx.stacks.popFrame(); err != nil {
			return err
		}
		ctx.stacks.pushFrame(ret, ret)
		if err := validateExpr(ctx, instr.If.Else); err != nil {
			return err
		}
		return endFrame(ctx)

	case OpBr:
		f, err := ctx.stacks.label(instr.LabelIdx)
		if err != nil {
			return err
		}
		label := f.label
		if err := ctx.stacks.popOperands(label); err != nil {
			return err
		}
		return ctx.stacks.unreachable()
	case OpBrIf:
		f, err := ctx.stacks.label(instr.LabelIdx)
		if err != nil {
			return err
		}
		label := f.label
		if err := ctx.stacks.popOperands(i32); err != nil {
			return err
		}
		if err := ctx.stacks.popOperands(label); err != nil {
			return err
		}
		ctx.stacks.pushOperands(label)
		return nil
	case OpBrTable:
		f, err := ctx.stacks.label(instr.LabelIdx)
		if err != nil {
			return err
		}
		for _, l := range instr.LabelIdxs {
			other, err := ctx.stacks.label(l)
			if err != nil {
				return err
			}
			if !sameTypes(f.label, other.label) {
				return NewValidationError(ErrTypeMismatch, "br_table targets disagree on label type")
			}
		}
		if err := ctx.stacks.popOperands(i32); err != nil {
			return err
		}
		if err := ctx.stacks.popOperands(f.label); err != nil {
			return err
		}
		return ctx.stacks.unreachable()
	case OpReturn:
		if ctx.ret == nil {
			return NewValidationError(ErrIndexOutOfRange, "return outside function body")
		}
		if err := ctx.stacks.popOperands(ctx.ret); err != nil {
			return err
		}
		return ctx.stacks.unreachable()
	case OpCall:
		fn, err := ctx.resolveFunc(instr.FuncIdx)
		if err != nil {
			return err
		}
		if err := ctx.stacks.popOperands(fn.Params); err != nil {
			return err
		}
		ctx.stacks.pushOperands(fn.Results)
		return nil
	case OpCallIndirect:
		tbl, err := ctx.resolveTable(instr.TableIdx)
		if err != nil {
			return err
		}
		fn, err := ctx.resolveType(instr.TypeIdx)
		if err != nil {
			return err
		}
		if tbl.Elem != FuncRef {
			return NewValidationError(ErrInvalidElemTable, "call_indirect table is not funcref")
		}
		if err := ctx.stacks.popOperands(i32); err != nil {
			return err
		}
		if err := ctx.stacks.popOperands(fn.Params); err != nil {
			return err
		}
		ctx.stacks.pushOperands(fn.Results)
		return nil

	case OpDrop:
		_, err := ctx.stacks.popOperand(unknownOperand)
		return err
	case OpSelect:
		if err := ctx.stacks.popOperands(i32); err != nil {
			return err
		}
		t1, err := ctx.stacks.popOperand(unknownOperand)
		if err != nil {
			return err
		}
		t2, err := ctx.stacks.popOperand(t1)
		if err != nil {
			return err
		}
		ctx.stacks.pushOperand(t2)
		return nil

	case OpLocalGet:
		t, err := ctx.resolveLocal(instr.LocalIdx)
		if err != nil {
			return err
		}
		ctx.stacks.pushOperands([]ValType{t})
		return nil
	case OpLocalSet:
		t, err := ctx.resolveLocal(instr.LocalIdx)
		if err != nil {
			return err
		}
		return ctx.stacks.popOperands([]ValType{t})
	case OpLocalTee:
		t, err := ctx.resolveLocal(instr.LocalIdx)
		if err != nil {
			return err
		}
		if err := ctx.stacks.popOperands([]ValType{t}); err != nil {
			return err
		}
		ctx.stacks.pushOperands([]ValType{t})
		return nil
	case OpGlobalGet:
		g, err := ctx.resolveGlobal(instr.GlobalIdx)
		if err != nil {
			return err
		}
		ctx.stacks.pushOperands([]ValType{g.Val})
		return nil
	case OpGlobalSet:
		g, err := ctx.resolveGlobal(instr.GlobalIdx)
		if err != nil {
			return err
		}
		if g.Mut != Var {
			return NewValidationError(ErrTypeMismatch, "global.set on an immutable global")
		}
		return ctx.stacks.popOperands([]ValType{g.Val})

	case OpI32Load:
		return validateLoad(ctx, instr.MemArg, 32, I32)
	case OpI64Load:
		return validateLoad(ctx, instr.MemArg, 64, I64)
	case OpF32Load:
		return validateLoad(ctx, instr.MemArg, 32, F32)
	case OpF64Load:
		return validateLoad(ctx, instr.MemArg, 64, F64)
	case OpI32Load8S, OpI32Load8U:
		return validateLoad(ctx, instr.MemArg, 8, I32)
	case OpI32Load16S, OpI32Load16U:
		return validateLoad(ctx, instr.MemArg, 16, I32)
	case OpI64Load8S, OpI64Load8U:
		return validateLoad(ctx, instr.MemArg, 8, I64)
	case OpI64Load16S, OpI64Load16U:
		return validateLoad(ctx, instr.MemArg, 16, I64)
	case OpI64Load32S, OpI64Load32U:
		return validateLoad(ctx, instr.MemArg, 32, I64)

	case OpI32Store:
		return validateStore(ctx, instr.MemArg, 32, I32)
	case OpI64Store:
		return validateStore(ctx, instr.MemArg, 64, I64)
	case OpF32Store:
		return validateStore(ctx, instr.MemArg, 32, F32)
	case OpF64Store:
		return validateStore(ctx, instr.MemArg, 64, F64)
	case OpI32Store8:
		return validateStore(ctx, instr.MemArg, 8, I32)
	case OpI32Store16:
		return validateStore(ctx, instr.MemArg, 16, I32)
	case OpI64Store8:
		return validateStore(ctx, instr.MemArg, 8, I64)
	case OpI64Store16:
		return validateStore(ctx, instr.MemArg, 16, I64)
	case OpI64Store32:
		return validateStore(ctx, instr.MemArg, 32, I64)

	case OpMemSize:
		if _, err := ctx.resolveMem(instr.MemIdx); err != nil {
			return err
		}
		ctx.stacks.pushOperands(i32)
		return nil
	case OpMemGrow:
		if _, err := ctx.resolveMem(instr.MemIdx); err != nil {
			return err
		}
		if err := ctx.stacks.popOperands(i32); err != nil {
			return err
		}
		ctx.stacks.pushOperands(i32)
		return nil

	case OpI32Const:
		ctx.stacks.pushOperands([]ValType{I32})
		return nil
	case OpI64Const:
		ctx.stacks.pushOperands([]ValType{I64})
		return nil
	case OpF32Const:
		ctx.stacks.pushOperands([]ValType{F32})
		return nil
	case OpF64Const:
		ctx.stacks.pushOperands([]ValType{F64})
		return nil
	}

	if sig, ok := numericSignature[instr.Opcode]; ok {
		if err := ctx.stacks.popOperands(sig.pop); err != nil {
			return err
		}
		ctx.stacks.pushOperands(sig.push)
		return nil
	}

	return NewValidationError(ErrIndexOutOfRange, "unvalidatable opcode")
}

// endFrame implements the synthesized `end`: pop the current frame and
// push its out types.
func endFrame(ctx *context) error {
	out, err := ctx.stacks.popFrame()
	if err != nil {
		return err
	}
	ctx.stacks.pushOperands(out)
	return nil
}

func sameTypes(a, b []ValType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func validateLoad(ctx *context, m MemArg, bitWidth uint32, result ValType) error {
	if _, err := ctx.resolveMem(0); err != nil {
		return err
	}
	if m.Align >= 32 || (uint32(1)<<m.Align) > bitWidth/8 {
		return NewValidationError(ErrInvalidAlignment, "")
	}
	if err := ctx.stacks.popOperands(i32); err != nil {
		return err
	}
	ctx.stacks.pushOperands([]ValType{result})
	return nil
}

func validateStore(ctx *context, m MemArg, bitWidth uint32, val ValType) error {
	if _, err := ctx.resolveMem(0); err != nil {
		return err
	}
	if m.Align >= 32 || (uint32(1)<<m.Align) > bitWidth/8 {
		return NewValidationError(ErrInvalidAlignment, "")
	}
	return ctx.stacks.popOperands([]ValType{I32, val})
}

// sig is a pop/push operand-type pair for the instructions whose typing
// rule is a fixed, immediate-free signature: comparisons, arithmetic,
// bitwise ops, and numeric conversions.
type sig struct {
	pop  []ValType
	push []ValType
}

var numericSignature = buildNumericSignatures()

func buildNumericSignatures() map[Opcode]sig {
	m := map[Opcode]sig{}
	unop := func(t ValType) sig { return sig{pop: []ValType{t}, push: []ValType{t}} }
	binop := func(t ValType) sig { return sig{pop: []ValType{t, t}, push: []ValType{t}} }
	testop := func(t ValType) sig { return sig{pop: []ValType{t}, push: i32} }
	relop := func(t ValType) sig { return sig{pop: []ValType{t, t}, push: i32} }
	cvt := func(from, to ValType) sig { return sig{pop: []ValType{from}, push: []ValType{to}} }

	m[OpI32Eqz] = testop(I32)
	for _, op := range []Opcode{OpI32Eq, OpI32Ne, OpI32LtS, OpI32LtU, OpI32GtS, OpI32GtU, OpI32LeS, OpI32LeU, OpI32GeS, OpI32GeU} {
		m[op] = relop(I32)
	}
	m[OpI64Eqz] = testop(I64)
	for _, op := range []Opcode{OpI64Eq, OpI64Ne, OpI64LtS, OpI64LtU, OpI64GtS, OpI64GtU, OpI64LeS, OpI64LeU, OpI64GeS, OpI64GeU} {
		m[op] = relop(I64)
	}
	for _, op := range []Opcode{OpF32Eq, OpF32Ne, OpF32Lt, OpF32Gt, OpF32Le, OpF32Ge} {
		m[op] = relop(F32)
	}
	for _, op := range []Opcode{OpF64Eq, OpF64Ne, OpF64Lt, OpF64Gt, OpF64Le, OpF64Ge} {
		m[op] = relop(F64)
	}

	for _, op := range []Opcode{OpI32Clz, OpI32Ctz, OpI32Popcnt} {
		m[op] = unop(I32)
	}
	for _, op := range []Opcode{OpI32Add, OpI32Sub, OpI32Mul, OpI32DivS, OpI32DivU, OpI32RemS, OpI32RemU,
		OpI32And, OpI32Or, OpI32Xor, OpI32Shl, OpI32ShrS, OpI32ShrU, OpI32Rotl, OpI32Rotr} {
		m[op] = binop(I32)
	}
	for _, op := range []Opcode{OpI64Clz, OpI64Ctz, OpI64Popcnt} {
		m[op] = unop(I64)
	}
	for _, op := range []Opcode{OpI64Add, OpI64Sub, OpI64Mul, OpI64DivS, OpI64DivU, OpI64RemS, OpI64RemU,
		OpI64And, OpI64Or, OpI64Xor, OpI64Shl, OpI64ShrS, OpI64ShrU, OpI64Rotl, OpI64Rotr} {
		m[op] = binop(I64)
	}
	for _, op := range []Opcode{OpF32Abs, OpF32Neg, OpF32Ceil, OpF32Floor, OpF32Trunc, OpF32Nearest, OpF32Sqrt} {
		m[op] = unop(F32)
	}
	for _, op := range []Opcode{OpF32Add, OpF32Sub, OpF32Mul, OpF32Div, OpF32Min, OpF32Max, OpF32Copysign} {
		m[op] = binop(F32)
	}
	for _, op := range []Opcode{OpF64Abs, OpF64Neg, OpF64Ceil, OpF64Floor, OpF64Trunc, OpF64Nearest, OpF64Sqrt} {
		m[op] = unop(F64)
	}
	for _, op := range []Opcode{OpF64Add, OpF64Sub, OpF64Mul, OpF64Div, OpF64Min, OpF64Max, OpF64Copysign} {
		m[op] = binop(F64)
	}

	m[OpI32WrapI64] = cvt(I64, I32)
	m[OpI32TruncF32S] = cvt(F32, I32)
	m[OpI32TruncF32U] = cvt(F32, I32)
	m[OpI32TruncF64S] = cvt(F64, I32)
	m[OpI32TruncF64U] = cvt(F64, I32)
	m[OpI64ExtendI32S] = cvt(I32, I64)
	m[OpI64ExtendI32U] = cvt(I32, I64)
	m[OpI64TruncF32S] = cvt(F32, I64)
	m[OpI64TruncF32U] = cvt(F32, I64)
	m[OpI64TruncF64S] = cvt(F64, I64)
	m[OpI64TruncF64U] = cvt(F64, I64)
	m[OpF32ConvertI32S] = cvt(I32, F32)
	m[OpF32ConvertI32U] = cvt(I32, F32)
	m[OpF32ConvertI64S] = cvt(I64, F32)
	m[OpF32ConvertI64U] = cvt(I64, F32)
	m[OpF32DemoteF64] = cvt(F64, F32)
	m[OpF64ConvertI32S] = cvt(I32, F64)
	m[OpF64ConvertI32U] = cvt(I32, F64)
	m[OpF64ConvertI64S] = cvt(I64, F64)
	m[OpF64ConvertI64U] = cvt(I64, F64)
	m[OpF64PromoteF32] = cvt(F32, F64)
	m[OpI32ReinterpretF32] = cvt(F32, I32)
	m[OpI64ReinterpretF64] = cvt(F64, I64)
	m[OpF32ReinterpretI32] = cvt(I32, F32)
	m[OpF64ReinterpretI64] = cvt(I64, F64)

	return m
}

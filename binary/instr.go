package binary

import "github.com/jprendes/whasm/wasm"

func decodeMemArg(s *source) (wasm.MemArg, error) {
	align, err := decodeU32(s)
	if err != nil {
		return wasm.MemArg{}, err
	}
	offset, err := decodeU32(s)
	if err != nil {
		return wasm.MemArg{}, err
	}
	return wasm.MemArg{Align: align, Offset: offset}, nil
}

// decodeExpr decodes instructions until the implicit `end` terminator
// (0x0B). `else` (0x05) in this position is not a valid terminator.
func decodeExpr(s *source) (wasm.Expr, error) {
	body, term, err := decodeSubExpr(s)
	if err != nil {
		return nil, err
	}
	if term != wasm.OpEnd {
		return nil, &wasm.DecodeError{Kind: wasm.ErrUnexpectedOpcode, Detail: "Else"}
	}
	return body, nil
}

// decodeSubExpr decodes instructions until it hits `end` or `else`,
// returning the body (without the terminator) and which terminator it
// was.
func decodeSubExpr(s *source) (wasm.Expr, wasm.Opcode, error) {
	var body wasm.Expr
	for {
		op, err := decodeByte(s)
		if err != nil {
			return nil, 0, err
		}
		switch wasm.Opcode(op) {
		case wasm.OpEnd:
			return body, wasm.OpEnd, nil
		case wasm.OpElse:
			return body, wasm.OpElse, nil
		}
		instr, err := decodeInstrBody(s, wasm.Opcode(op))
		if err != nil {
			return nil, 0, err
		}
		body = append(body, instr)
	}
}

// decodeInstrBody decodes the immediates of the instruction whose opcode
// byte has already been consumed.
func decodeInstrBody(s *source, op wasm.Opcode) (wasm.Instr, error) {
	switch op {
	case wasm.OpUnreachable, wasm.OpNop, wasm.OpReturn, wasm.OpDrop, wasm.OpSelect:
		return wasm.Instr{Opcode: op}, nil

	case wasm.OpBlock, wasm.OpLoop:
		bt, err := decodeBlockType(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		body, err := decodeExpr(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		return wasm.Instr{Opcode: op, Block: &wasm.Block{Type: bt, Body: body}}, nil

	case wasm.OpIf:
		bt, err := decodeBlockType(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		then, term, err := decodeSubExpr(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		var els wasm.Expr
		switch term {
		case wasm.OpEnd:
			els = wasm.Expr{}
		case wasm.OpElse:
			elseBody, term2, err := decodeSubExpr(s)
			if err != nil {
				return wasm.Instr{}, err
			}
			if term2 != wasm.OpEnd {
				return wasm.Instr{}, &wasm.DecodeError{Kind: wasm.ErrUnexpectedOpcode, Detail: "Unknown"}
			}
			els = elseBody
		}
		return wasm.Instr{Opcode: op, If: &wasm.IfArm{Type: bt, Then: then, Else: els}}, nil

	case wasm.OpBr, wasm.OpBrIf:
		l, err := decodeU32(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		return wasm.Instr{Opcode: op, LabelIdx: wasm.LabelIdx(l)}, nil

	case wasm.OpBrTable:
		labels, err := decodeVec(s, func(s *source) (wasm.LabelIdx, error) {
			l, err := decodeU32(s)
			return wasm.LabelIdx(l), err
		})
		if err != nil {
			return wasm.Instr{}, err
		}
		def, err := decodeU32(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		return wasm.Instr{Opcode: op, LabelIdxs: labels, LabelIdx: wasm.LabelIdx(def)}, nil

	case wasm.OpCall:
		f, err := decodeU32(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		return wasm.Instr{Opcode: op, FuncIdx: wasm.FuncIdx(f)}, nil

	case wasm.OpCallIndirect:
		t, err := decodeU32(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		tbl, err := decodeU32(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		return wasm.Instr{Opcode: op, TypeIdx: wasm.TypeIdx(t), TableIdx: wasm.TableIdx(tbl)}, nil

	case wasm.OpLocalGet, wasm.OpLocalSet, wasm.OpLocalTee:
		l, err := decodeU32(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		return wasm.Instr{Opcode: op, LocalIdx: wasm.LocalIdx(l)}, nil

	case wasm.OpGlobalGet, wasm.OpGlobalSet:
		g, err := decodeU32(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		return wasm.Instr{Opcode: op, GlobalIdx: wasm.GlobalIdx(g)}, nil

	case wasm.OpI32Load, wasm.OpI64Load, wasm.OpF32Load, wasm.OpF64Load,
		wasm.OpI32Load8S, wasm.OpI32Load8U, wasm.OpI32Load16S, wasm.OpI32Load16U,
		wasm.OpI64Load8S, wasm.OpI64Load8U, wasm.OpI64Load16S, wasm.OpI64Load16U,
		wasm.OpI64Load32S, wasm.OpI64Load32U,
		wasm.OpI32Store, wasm.OpI64Store, wasm.OpF32Store, wasm.OpF64Store,
		wasm.OpI32Store8, wasm.OpI32Store16, wasm.OpI64Store8, wasm.OpI64Store16, wasm.OpI64Store32:
		m, err := decodeMemArg(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		return wasm.Instr{Opcode: op, MemArg: m}, nil

	case wasm.OpMemSize, wasm.OpMemGrow:
		m, err := decodeU32(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		return wasm.Instr{Opcode: op, MemIdx: wasm.MemIdx(m)}, nil

	case wasm.OpI32Const:
		v, err := decodeI32(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		return wasm.Instr{Opcode: op, I32Const: v}, nil

	case wasm.OpI64Const:
		v, err := decodeI64(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		return wasm.Instr{Opcode: op, I64Const: v}, nil

	case wasm.OpF32Const:
		v, err := decodeF32(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		return wasm.Instr{Opcode: op, F32Const: v}, nil

	case wasm.OpF64Const:
		v, err := decodeF64(s)
		if err != nil {
			return wasm.Instr{}, err
		}
		return wasm.Instr{Opcode: op, F64Const: v}, nil

	default:
		if isBareNumeric(op) {
			return wasm.Instr{Opcode: op}, nil
		}
		return wasm.Instr{}, &wasm.DecodeError{Kind: wasm.ErrInvalidVariantId, Id: byte(op), Type: "Instr"}
	}
}

// isBareNumeric reports whether op is one of the immediate-less numeric
// comparison/arithmetic/conversion opcodes in 0x45..0xBF. Every byte in
// that range is productive in MVP; gaps only exist below 0x45.
func isBareNumeric(op wasm.Opcode) bool {
	return op >= wasm.OpI32Eqz && op <= wasm.OpF64ReinterpretI64
}

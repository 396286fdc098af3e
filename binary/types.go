package binary

import "github.com/jprendes/whasm/wasm"

func decodeValType(s *source) (wasm.ValType, error) {
	b, err := decodeByte(s)
	if err != nil {
		return 0, err
	}
	switch b {
	case 0x7F:
		return wasm.I32, nil
	case 0x7E:
		return wasm.I64, nil
	case 0x7D:
		return wasm.F32, nil
	case 0x7C:
		return wasm.F64, nil
	default:
		return 0, &wasm.DecodeError{Kind: wasm.ErrInvalidVariantId, Id: b, Type: "ValType"}
	}
}

func decodeElemType(s *source) (wasm.ElemType, error) {
	b, err := decodeByte(s)
	if err != nil {
		return 0, err
	}
	if b != 0x70 {
		return 0, &wasm.DecodeError{Kind: wasm.ErrInvalidVariantId, Id: b, Type: "ElemType"}
	}
	return wasm.FuncRef, nil
}

func decodeMut(s *source) (wasm.Mut, error) {
	b, err := decodeByte(s)
	if err != nil {
		return 0, err
	}
	switch b {
	case 0x00:
		return wasm.Const, nil
	case 0x01:
		return wasm.Var, nil
	default:
		return 0, &wasm.DecodeError{Kind: wasm.ErrInvalidVariantId, Id: b, Type: "Mut"}
	}
}

// decodeBlockType decodes the single-byte BlockType encoding: 0x40 for
// Empty, else a forwarded ValType discriminant (the byte is the value
// type's own leading byte, not a separate index form).
func decodeBlockType(s *source) (wasm.BlockType, error) {
	peeked, ok := s.peek()
	if !ok {
		return wasm.BlockType{}, wasm.NewDecodeError(wasm.ErrUnexpectedEndOfStream)
	}
	if peeked == 0x40 {
		s.next()
		return wasm.BlockType{Empty: true}, nil
	}
	vt, err := decodeValType(s)
	if err != nil {
		return wasm.BlockType{}, err
	}
	return wasm.BlockType{Result: vt}, nil
}

func decodeLimits(s *source) (wasm.Limits, error) {
	flag, err := decodeByte(s)
	if err != nil {
		return wasm.Limits{}, err
	}
	min, err := decodeU32(s)
	if err != nil {
		return wasm.Limits{}, err
	}
	switch flag {
	case 0x00:
		return wasm.Limits{Min: min}, nil
	case 0x01:
		max, err := decodeU32(s)
		if err != nil {
			return wasm.Limits{}, err
		}
		return wasm.Limits{Min: min, Max: &max}, nil
	default:
		return wasm.Limits{}, &wasm.DecodeError{Kind: wasm.ErrInvalidVariantId, Id: flag, Type: "Limits"}
	}
}

func decodeFuncType(s *source) (wasm.FuncType, error) {
	tag, err := decodeByte(s)
	if err != nil {
		return wasm.FuncType{}, err
	}
	if tag != 0x60 {
		return wasm.FuncType{}, &wasm.DecodeError{Kind: wasm.ErrInvalidVariantId, Id: tag, Type: "FuncType"}
	}
	params, err := decodeVec(s, decodeValType)
	if err != nil {
		return wasm.FuncType{}, err
	}
	results, err := decodeVec(s, decodeValType)
	if err != nil {
		return wasm.FuncType{}, err
	}
	return wasm.FuncType{Params: params, Results: results}, nil
}

func decodeTableType(s *source) (wasm.TableType, error) {
	elem, err := decodeElemType(s)
	if err != nil {
		return wasm.TableType{}, err
	}
	lim, err := decodeLimits(s)
	if err != nil {
		return wasm.TableType{}, err
	}
	return wasm.TableType{Elem: elem, Lim: lim}, nil
}

func decodeMemType(s *source) (wasm.MemType, error) {
	lim, err := decodeLimits(s)
	if err != nil {
		return wasm.MemType{}, err
	}
	return wasm.MemType{Lim: lim}, nil
}

func decodeGlobalType(s *source) (wasm.GlobalType, error) {
	val, err := decodeValType(s)
	if err != nil {
		return wasm.GlobalType{}, err
	}
	mut, err := decodeMut(s)
	if err != nil {
		return wasm.GlobalType{}, err
	}
	return wasm.GlobalType{Val: val, Mut: mut}, nil
}

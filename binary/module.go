package binary

import "github.com/jprendes/whasm/wasm"

var preambleMagic = []byte{0x00, 0x61, 0x73, 0x6D}
var preambleVersion = []byte{0x01, 0x00, 0x00, 0x00}

// sectionFunc is a placeholder function body decoded from the code
// section, before its ty field is filled in from the function section.
type sectionFunc struct {
	locals []wasm.ValType
	body   wasm.Expr
}

// DecodeModule decodes a complete WebAssembly 1.0 binary module: the
// preamble, then every section in order. It never returns a partially
// populated Module; the first error aborts decoding entirely.
func DecodeModule(data []byte) (*wasm.Module, error) {
	s := newSource(data)

	if err := matchBytes(s, preambleMagic, wasm.ErrInvalidPreambleMagic); err != nil {
		return nil, err
	}
	if err := matchBytes(s, preambleVersion, wasm.ErrInvalidPreambleVersion); err != nil {
		return nil, err
	}

	m := &wasm.Module{}
	var funcTypes []wasm.TypeIdx
	var codeFuncs []sectionFunc
	haveFuncSection := false
	haveCodeSection := false
	lastID := -1

	for s.remaining() > 0 {
		id, err := decodeByte(s)
		if err != nil {
			return nil, err
		}
		if id > 11 {
			return nil, &wasm.DecodeError{Kind: wasm.ErrInvalidSectionId, Id: id}
		}
		if id != 0 {
			if int(id) <= lastID {
				return nil, &wasm.DecodeError{Kind: wasm.ErrUnexpectedSectionId, Id: id}
			}
			lastID = int(id)
		}

		size, err := decodeU32(s)
		if err != nil {
			return nil, err
		}
		sub, err := s.take(int(size))
		if err != nil {
			return nil, err
		}

		switch id {
		case 0:
			if _, err := decodeName(sub); err != nil {
				return nil, err
			}
			sub.drain()
		case 1:
			m.Types, err = decodeVec(sub, decodeFuncType)
		case 2:
			m.Imports, err = decodeVec(sub, decodeImport)
		case 3:
			haveFuncSection = true
			funcTypes, err = decodeVec(sub, func(s *source) (wasm.TypeIdx, error) {
				v, err := decodeU32(s)
				return wasm.TypeIdx(v), err
			})
		case 4:
			m.Tables, err = decodeVec(sub, decodeTable)
		case 5:
			m.Mems, err = decodeVec(sub, decodeMem)
		case 6:
			m.Globals, err = decodeVec(sub, decodeGlobal)
		case 7:
			m.Exports, err = decodeVec(sub, decodeExport)
		case 8:
			var f wasm.FuncIdx
			var v uint32
			v, err = decodeU32(sub)
			f = wasm.FuncIdx(v)
			if err == nil {
				m.Start = &wasm.Start{Func: f}
			}
		case 9:
			m.Elem, err = decodeVec(sub, decodeElem)
		case 10:
			haveCodeSection = true
			codeFuncs, err = decodeVec(sub, decodeCodeFunc)
		case 11:
			m.Data, err = decodeVec(sub, decodeData)
		}
		if err != nil {
			return nil, err
		}
		if sub.consumed() != int(size) {
			return nil, &wasm.DecodeError{Kind: wasm.ErrSectionSizeMismatch, Id: id}
		}
	}

	if haveFuncSection && !haveCodeSection {
		return nil, wasm.NewDecodeError(wasm.ErrFunctionSectionWithoutCodeSection)
	}
	if len(funcTypes) != len(codeFuncs) {
		return nil, wasm.NewDecodeError(wasm.ErrFunctionCodeLengthMismatch)
	}
	m.Funcs = make([]wasm.Func, len(funcTypes))
	for i := range funcTypes {
		m.Funcs[i] = wasm.Func{
			Type:   funcTypes[i],
			Locals: codeFuncs[i].locals,
			Body:   codeFuncs[i].body,
		}
	}

	return m, nil
}

func decodeImport(s *source) (wasm.Import, error) {
	mod, err := decodeName(s)
	if err != nil {
		return wasm.Import{}, err
	}
	name, err := decodeName(s)
	if err != nil {
		return wasm.Import{}, err
	}
	desc, err := decodeImportDesc(s)
	if err != nil {
		return wasm.Import{}, err
	}
	return wasm.Import{Module: mod, Name: name, Desc: desc}, nil
}

func decodeImportDesc(s *source) (wasm.ImportDesc, error) {
	tag, err := decodeByte(s)
	if err != nil {
		return wasm.ImportDesc{}, err
	}
	switch tag {
	case 0x00:
		v, err := decodeU32(s)
		if err != nil {
			return wasm.ImportDesc{}, err
		}
		return wasm.ImportDesc{Kind: wasm.ImportFunc, Func: wasm.TypeIdx(v)}, nil
	case 0x01:
		t, err := decodeTableType(s)
		if err != nil {
			return wasm.ImportDesc{}, err
		}
		return wasm.ImportDesc{Kind: wasm.ImportTable, Table: t}, nil
	case 0x02:
		t, err := decodeMemType(s)
		if err != nil {
			return wasm.ImportDesc{}, err
		}
		return wasm.ImportDesc{Kind: wasm.ImportMem, Mem: t}, nil
	case 0x03:
		t, err := decodeGlobalType(s)
		if err != nil {
			return wasm.ImportDesc{}, err
		}
		return wasm.ImportDesc{Kind: wasm.ImportGlobal, Global: t}, nil
	default:
		return wasm.ImportDesc{}, &wasm.DecodeError{Kind: wasm.ErrInvalidVariantId, Id: tag, Type: "ImportDesc"}
	}
}

func decodeExport(s *source) (wasm.Export, error) {
	name, err := decodeName(s)
	if err != nil {
		return wasm.Export{}, err
	}
	desc, err := decodeExportDesc(s)
	if err != nil {
		return wasm.Export{}, err
	}
	return wasm.Export{Name: name, Desc: desc}, nil
}

func decodeExportDesc(s *source) (wasm.ExportDesc, error) {
	tag, err := decodeByte(s)
	if err != nil {
		return wasm.ExportDesc{}, err
	}
	v, err := decodeU32(s)
	if err != nil {
		return wasm.ExportDesc{}, err
	}
	switch tag {
	case 0x00:
		return wasm.ExportDesc{Kind: wasm.ExportFunc, Func: wasm.FuncIdx(v)}, nil
	case 0x01:
		return wasm.ExportDesc{Kind: wasm.ExportTable, Table: wasm.TableIdx(v)}, nil
	case 0x02:
		return wasm.ExportDesc{Kind: wasm.ExportMem, Mem: wasm.MemIdx(v)}, nil
	case 0x03:
		return wasm.ExportDesc{Kind: wasm.ExportGlobal, Global: wasm.GlobalIdx(v)}, nil
	default:
		return wasm.ExportDesc{}, &wasm.DecodeError{Kind: wasm.ErrInvalidVariantId, Id: tag, Type: "ExportDesc"}
	}
}

func decodeTable(s *source) (wasm.Table, error) {
	t, err := decodeTableType(s)
	return wasm.Table{Type: t}, err
}

func decodeMem(s *source) (wasm.Mem, error) {
	t, err := decodeMemType(s)
	return wasm.Mem{Type: t}, err
}

func decodeGlobal(s *source) (wasm.Global, error) {
	t, err := decodeGlobalType(s)
	if err != nil {
		return wasm.Global{}, err
	}
	init, err := decodeExpr(s)
	if err != nil {
		return wasm.Global{}, err
	}
	return wasm.Global{Type: t, Init: init}, nil
}

func decodeElem(s *source) (wasm.Elem, error) {
	t, err := decodeU32(s)
	if err != nil {
		return wasm.Elem{}, err
	}
	offset, err := decodeExpr(s)
	if err != nil {
		return wasm.Elem{}, err
	}
	init, err := decodeVec(s, func(s *source) (wasm.FuncIdx, error) {
		v, err := decodeU32(s)
		return wasm.FuncIdx(v), err
	})
	if err != nil {
		return wasm.Elem{}, err
	}
	return wasm.Elem{Table: wasm.TableIdx(t), Offset: offset, Init: init}, nil
}

func decodeData(s *source) (wasm.Data, error) {
	mem, err := decodeU32(s)
	if err != nil {
		return wasm.Data{}, err
	}
	offset, err := decodeExpr(s)
	if err != nil {
		return wasm.Data{}, err
	}
	init, err := decodeVec(s, decodeByte)
	if err != nil {
		return wasm.Data{}, err
	}
	return wasm.Data{Mem: wasm.MemIdx(mem), Offset: offset, Init: init}, nil
}

// decodeCodeFunc decodes one size-delimited code-section entry: a
// compact vector of local-type groups, then the function body expression.
func decodeCodeFunc(s *source) (sectionFunc, error) {
	return decodeSized(s, func(sub *source) (sectionFunc, error) {
		locals, err := decodeCompactVec(sub, decodeValType)
		if err != nil {
			return sectionFunc{}, err
		}
		body, err := decodeExpr(sub)
		if err != nil {
			return sectionFunc{}, err
		}
		return sectionFunc{locals: locals, body: body}, nil
	}, wasm.ErrFunctionSizeMismatch)
}

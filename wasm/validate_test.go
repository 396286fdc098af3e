package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func u32p(v uint32) *uint32 { return &v }

func TestValidateMinimalModule(t *testing.T) {
	m := &Module{}
	mt, err := Validate(m)
	require.NoError(t, err)
	require.Empty(t, mt.Imports)
	require.Empty(t, mt.Exports)
}

func TestValidateSingleFunctionReturning42(t *testing.T) {
	m := &Module{
		Types: []FuncType{{Results: []ValType{I32}}},
		Funcs: []Func{{Type: 0, Body: Expr{{Opcode: OpI32Const, I32Const: 42}}}},
		Exports: []Export{
			{Name: "main", Desc: ExportDesc{Kind: ExportFunc, Func: 0}},
		},
	}
	mt, err := Validate(m)
	require.NoError(t, err)
	require.Len(t, mt.Exports, 1)
	require.Equal(t, ExternalFunc, mt.Exports[0].Kind)
}

func TestValidateSoundnessPositivePolymorphism(t *testing.T) {
	t.Run("unreachable then add is typeable", func(t *testing.T) {
		m := &Module{
			Types: []FuncType{{Results: []ValType{I32}}},
			Funcs: []Func{{Type: 0, Body: Expr{
				{Opcode: OpUnreachable},
				{Opcode: OpI32Add},
			}}},
		}
		_, err := Validate(m)
		require.NoError(t, err)
	})

	t.Run("block with unreachable body validates", func(t *testing.T) {
		m := &Module{
			Types: []FuncType{{Results: []ValType{I32}}},
			Funcs: []Func{{Type: 0, Body: Expr{
				{Opcode: OpBlock, Block: &Block{
					Type: BlockType{Result: I32},
					Body: Expr{{Opcode: OpUnreachable}},
				}},
			}}},
		}
		_, err := Validate(m)
		require.NoError(t, err)
	})
}

func TestValidateSoundnessNegative(t *testing.T) {
	kindOf := func(t *testing.T, err error) ValidationErrorKind {
		t.Helper()
		ve, ok := err.(*ValidationError)
		require.True(t, ok, "expected *ValidationError, got %T: %v", err, err)
		return ve.Kind
	}

	t.Run("pop from empty stack underflows", func(t *testing.T) {
		m := &Module{
			Types: []FuncType{{}},
			Funcs: []Func{{Type: 0, Body: Expr{{Opcode: OpDrop}}}},
		}
		_, err := Validate(m)
		require.Error(t, err)
		require.Equal(t, ErrStackUnderflow, kindOf(t, err))
	})

	t.Run("mismatched select operands", func(t *testing.T) {
		m := &Module{
			Types: []FuncType{{}},
			Funcs: []Func{{Type: 0, Body: Expr{
				{Opcode: OpI32Const},
				{Opcode: OpF32Const},
				{Opcode: OpI32Const, I32Const: 1},
				{Opcode: OpSelect},
			}}},
		}
		_, err := Validate(m)
		require.Error(t, err)
		require.Equal(t, ErrTypeMismatch, kindOf(t, err))
	})

	t.Run("br to out of range label", func(t *testing.T) {
		m := &Module{
			Types: []FuncType{{}},
			Funcs: []Func{{Type: 0, Body: Expr{
				{Opcode: OpBr, LabelIdx: 3},
			}}},
		}
		_, err := Validate(m)
		require.Error(t, err)
		require.Equal(t, ErrIndexOutOfRange, kindOf(t, err))
	})

	t.Run("const expr with non-const instruction", func(t *testing.T) {
		m := &Module{
			Globals: []Global{{
				Type: GlobalType{Val: I32, Mut: Const},
				Init: Expr{{Opcode: OpNop}},
			}},
		}
		_, err := Validate(m)
		require.Error(t, err)
		require.Equal(t, ErrConstExprNotConst, kindOf(t, err))
	})

	t.Run("const expr referencing a mutable global", func(t *testing.T) {
		m := &Module{
			Globals: []Global{
				{Type: GlobalType{Val: I32, Mut: Var}, Init: Expr{{Opcode: OpI32Const}}},
				{Type: GlobalType{Val: I32, Mut: Const}, Init: Expr{{Opcode: OpGlobalGet, GlobalIdx: 0}}},
			},
		}
		_, err := Validate(m)
		require.Error(t, err)
		require.Equal(t, ErrConstExprMutableGlobal, kindOf(t, err))
	})

	t.Run("duplicate export name", func(t *testing.T) {
		m := &Module{
			Types: []FuncType{{}},
			Funcs: []Func{{Type: 0, Body: Expr{}}},
			Exports: []Export{
				{Name: "dup", Desc: ExportDesc{Kind: ExportFunc, Func: 0}},
				{Name: "dup", Desc: ExportDesc{Kind: ExportFunc, Func: 0}},
			},
		}
		_, err := Validate(m)
		require.Error(t, err)
		require.Equal(t, ErrDuplicateExport, kindOf(t, err))
	})

	t.Run("two memories", func(t *testing.T) {
		m := &Module{
			Mems: []Mem{{Type: MemType{Lim: Limits{Min: 0}}}, {Type: MemType{Lim: Limits{Min: 0}}}},
		}
		_, err := Validate(m)
		require.Error(t, err)
		require.Equal(t, ErrMultipleMemories, kindOf(t, err))
	})

	t.Run("start function with non-empty type", func(t *testing.T) {
		m := &Module{
			Types: []FuncType{{Params: []ValType{I32}}},
			Funcs: []Func{{Type: 0, Body: Expr{}}},
			Start: &Start{Func: 0},
		}
		_, err := Validate(m)
		require.Error(t, err)
		require.Equal(t, ErrInvalidStartFunctionType, kindOf(t, err))
	})
}

func TestValidateLimits(t *testing.T) {
	m := &Module{
		Mems: []Mem{{Type: MemType{Lim: Limits{Min: 10, Max: u32p(2)}}}},
	}
	_, err := Validate(m)
	require.Error(t, err)
}

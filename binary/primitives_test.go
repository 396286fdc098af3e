package binary

import (
	"math"
	"testing"

	"github.com/jprendes/whasm/wasm"
	"github.com/stretchr/testify/require"
)

func TestDecodeNameUTF8(t *testing.T) {
	data := hexBytes(t, "11 48 65 6C 6C 6F 20 57 6F 72 6C 64 21 20 F0 9F 92 96")
	s := newSource(data)
	name, err := decodeName(s)
	require.NoError(t, err)
	require.Equal(t, "Hello World! 💖", name)
}

func TestDecodeNameInvalidUTF8(t *testing.T) {
	s := newSource([]byte{0x02, 0xFF, 0xFE})
	_, err := decodeName(s)
	require.Error(t, err)
}

func TestDecodeF32Roundtrip(t *testing.T) {
	cases := []float32{0, float32(math.Copysign(0, -1)), float32(math.Inf(1)), float32(math.Inf(-1)), 1.0, math.Pi, math.SmallestNonzeroFloat32, math.MaxFloat32}
	for _, v := range cases {
		bits := math.Float32bits(v)
		data := []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
		got, err := decodeF32(newSource(data))
		require.NoError(t, err)
		require.Equal(t, math.Float32bits(v), math.Float32bits(got))
	}
}

func TestDecodeF32NaNPreservesBits(t *testing.T) {
	// a signalling NaN pattern distinct from the quiet NaN math.NaN() produces.
	bits := uint32(0x7F800001)
	data := []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
	got, err := decodeF32(newSource(data))
	require.NoError(t, err)
	require.Equal(t, bits, math.Float32bits(got))
}

func TestDecodeF64Roundtrip(t *testing.T) {
	cases := []float64{0, math.Copysign(0, -1), math.Inf(1), math.Inf(-1), math.NaN(), 1.0, math.Pi, math.SmallestNonzeroFloat64, math.MaxFloat64}
	for _, v := range cases {
		bits := math.Float64bits(v)
		data := make([]byte, 8)
		for i := 0; i < 8; i++ {
			data[i] = byte(bits >> (8 * i))
		}
		got, err := decodeF64(newSource(data))
		require.NoError(t, err)
		require.Equal(t, bits, math.Float64bits(got))
	}
}

func TestDecodeU32OverflowSurfacesDecodeError(t *testing.T) {
	// 6-byte encoding whose 5th byte sets bits beyond the 32-bit width.
	s := newSource([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01})
	_, err := decodeU32(s)
	require.Error(t, err)
	de, ok := err.(*wasm.DecodeError)
	require.True(t, ok)
	require.Equal(t, wasm.ErrOutOfRangeUnsignedInteger, de.Kind)
}

func TestDecodeVecStopsBeforePartialElement(t *testing.T) {
	// count=2 but only one element's worth of bytes follow.
	s := newSource([]byte{0x02, 0x7F})
	_, err := decodeVec(s, decodeValType)
	require.Error(t, err)
}

func TestDecodeCompactVecExpandsRuns(t *testing.T) {
	// 2 groups: 3x i32, 1x i64
	data := []byte{0x02, 0x03, 0x7F, 0x01, 0x7E}
	s := newSource(data)
	locals, err := decodeCompactVec(s, decodeValType)
	require.NoError(t, err)
	require.Len(t, locals, 4)
}

func TestDecodeSizedExactConsumption(t *testing.T) {
	data := []byte{0x02, 0x01, 0x01} // size=2, then two Nop opcodes
	s := newSource(data)
	instrs, err := decodeSized(s, func(sub *source) ([]byte, error) {
		var out []byte
		for sub.remaining() > 0 {
			b, err := decodeByte(sub)
			if err != nil {
				return nil, err
			}
			out = append(out, b)
		}
		return out, nil
	}, 99)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x01}, instrs)
}

func TestLimitsDecode(t *testing.T) {
	min, err := decodeLimits(newSource([]byte{0x00, 0x05}))
	require.NoError(t, err)
	require.Equal(t, uint32(5), min.Min)
	require.Nil(t, min.Max)

	withMax, err := decodeLimits(newSource([]byte{0x01, 0x02, 0x09}))
	require.NoError(t, err)
	require.Equal(t, uint32(2), withMax.Min)
	require.NotNil(t, withMax.Max)
	require.Equal(t, uint32(9), *withMax.Max)
}

package leb128

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// sliceReader adapts a []byte to the byteReader contract the decoders need.
type sliceReader struct {
	b   []byte
	pos int
}

func (r *sliceReader) ReadByte() (byte, bool) {
	if r.pos >= len(r.b) {
		return 0, false
	}
	b := r.b[r.pos]
	r.pos++
	return b, true
}

// TestEncodeDecodeUint32 round-trips small values, values on both sides of
// the 1-to-2 and 2-to-3 byte boundaries, a 4-byte value and the all-bits-set
// 32-bit value.
func TestEncodeDecodeUint32(t *testing.T) {
	for _, c := range []struct {
		input    uint32
		expected []byte
	}{
		{input: 0, expected: []byte{0x00}},
		{input: 1, expected: []byte{0x01}},
		{input: 0x7f, expected: []byte{0x7f}},              // largest 1-byte value
		{input: 0x80, expected: []byte{0x80, 0x01}},        // smallest 2-byte value
		{input: 0x3fff, expected: []byte{0xff, 0x7f}},      // largest 2-byte value
		{input: 0x4000, expected: []byte{0x80, 0x80, 0x01}},// smallest 3-byte value
		{input: 1 << 27, expected: []byte{0x80, 0x80, 0x80, 0x40}},
		{input: math.MaxUint32, expected: []byte{0xff, 0xff, 0xff, 0xff, 0xf}},
	} {
		require.Equal(t, c.expected, EncodeUint32(c.input))
		v, err := DecodeUint32(&sliceReader{b: c.expected})
		require.NoError(t, err)
		require.Equal(t, c.input, v)
	}
}

// TestEncodeDecodeInt32 round-trips small values, values on both sides of
// the 1-to-2 byte boundary for each sign (where an otherwise-short encoding
// would be ambiguous with a value of the other sign, forcing one more byte),
// and the 32-bit extremes.
func TestEncodeDecodeInt32(t *testing.T) {
	for _, c := range []struct {
		input    int32
		expected []byte
	}{
		{input: 0, expected: []byte{0x00}},
		{input: 1, expected: []byte{0x01}},
		{input: -1, expected: []byte{0x7f}},
		{input: 63, expected: []byte{0x3f}},   // largest 1-byte positive
		{input: -64, expected: []byte{0x40}},  // smallest 1-byte negative
		{input: 64, expected: []byte{0xc0, 0x00}},
		{input: -65, expected: []byte{0xbf, 0x7f}},
		{input: math.MaxInt32, expected: []byte{0xff, 0xff, 0xff, 0xff, 0x7}},
		{input: math.MinInt32, expected: []byte{0x80, 0x80, 0x80, 0x80, 0x78}},
	} {
		require.Equal(t, c.expected, EncodeInt32(c.input))
		v, err := DecodeInt32(&sliceReader{b: c.expected})
		require.NoError(t, err)
		require.Equal(t, c.input, v)
	}
}

// TestDecodeUnsignedSpecVectors ports original_source's own u8 LEB-128 test
// vectors (grammar/core/unsigned.rs) verbatim, run at the matching 8-bit
// width.
func TestDecodeUnsignedSpecVectors(t *testing.T) {
	for _, c := range []struct {
		name   string
		bytes  []byte
		want   uint64
		expErr bool
	}{
		{name: "spec u8", bytes: []byte{0x03}, want: 3},
		{name: "spec multibyte u8", bytes: []byte{0x83, 0x00}, want: 3},
		{name: "spec multibyte u8 rejected", bytes: []byte{0x83, 0x10}, expErr: true},
		{name: "multibyte u8", bytes: []byte{0x8e, 0x81, 0x80, 0x00}, want: 142},
		{name: "overflowing u8", bytes: []byte{0x8e, 0x82, 0x80, 0x00}, expErr: true},
	} {
		t.Run(c.name, func(t *testing.T) {
			v, err := decodeUnsigned(&sliceReader{b: c.bytes}, 8)
			if c.expErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.want, v)
		})
	}
}

// TestDecodeSignedSpecVectors ports original_source's own i8 LEB-128 test
// vectors (grammar/core/signed.rs) verbatim, run at the matching 8-bit
// width.
func TestDecodeSignedSpecVectors(t *testing.T) {
	for _, c := range []struct {
		name   string
		bytes  []byte
		want   int64
		expErr bool
	}{
		{name: "spec i8", bytes: []byte{0x7e}, want: -2},
		{name: "spec multibyte i8", bytes: []byte{0xfe, 0x7f}, want: -2},
		{name: "spec second multibyte i8", bytes: []byte{0xfe, 0xff, 0x7f}, want: -2},
		{name: "spec multibyte i8 rejected", bytes: []byte{0x83, 0x3e}, expErr: true},
		{name: "spec second multibyte i8 rejected", bytes: []byte{0xff, 0x7b}, expErr: true},
		{name: "positive i8", bytes: []byte{0x2a}, want: 42},
		{name: "multibyte positive i8", bytes: []byte{0xea, 0x00}, want: 106},
		{name: "overflowing positive i8", bytes: []byte{0xd6, 0x81, 0x80, 0x00}, expErr: true},
		{name: "overflowing negative i8", bytes: []byte{0xd6, 0xfe, 0x80, 0x7f}, expErr: true},
	} {
		t.Run(c.name, func(t *testing.T) {
			v, err := decodeSigned(&sliceReader{b: c.bytes}, 8)
			if c.expErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.want, v)
		})
	}
}

// TestUnsignedOverflowBoundary exercises the W=32 boundary: the 5th byte of
// a 32-bit encoding may only use its low 4 payload bits, so 0x1f there sets
// bit 32 and must overflow, while zero bits above the width are accepted.
// The last case is spec.md scenario S5, 0xAA 0x02 decoded at W=8.
func TestUnsignedOverflowBoundary(t *testing.T) {
	for _, c := range []struct {
		name   string
		bytes  []byte
		width  uint
		expErr bool
	}{
		{name: "max uint32 fits", bytes: []byte{0xff, 0xff, 0xff, 0xff, 0xf}, width: 32},
		{name: "canonical zero padding accepted", bytes: []byte{0x80, 0x80, 0x80, 0x80, 0x00}, width: 32},
		{name: "non-zero padding overflows", bytes: []byte{0xff, 0xff, 0xff, 0xff, 0x1f}, width: 32, expErr: true},
		{name: "s5 scenario: 0xAA 0x02 as u8 overflows", bytes: []byte{0xaa, 0x02}, width: 8, expErr: true},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, err := decodeUnsigned(&sliceReader{b: c.bytes}, c.width)
			if c.expErr {
				require.Error(t, err)
			} else {
				_, err := DecodeUint32(&sliceReader{b: c.bytes})
				require.NoError(t, err)
			}
		})
	}
}

func TestSignedPaddingCanonicalForms(t *testing.T) {
	// Negative accumulator: padding bytes beyond the width must carry 0x7f.
	neg := []byte{0xff, 0xff, 0xff, 0xff, 0x7f}
	v, err := decodeSigned(&sliceReader{b: neg}, 32)
	require.NoError(t, err)
	require.Equal(t, int64(-1), v)

	// Same width, non-canonical (0x0f instead of 0x7f) padding for a negative
	// value must overflow.
	_, err = decodeSigned(&sliceReader{b: []byte{0xff, 0xff, 0xff, 0xff, 0x0f}}, 32)
	require.Error(t, err)
}

func TestUnexpectedEOF(t *testing.T) {
	_, err := DecodeUint32(&sliceReader{b: []byte{0x80}})
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestSignExtension(t *testing.T) {
	// A short encoding that terminates before filling the width must
	// sign-extend into the higher bits.
	v, err := decodeSigned(&sliceReader{b: []byte{0x7f}}, 64)
	require.NoError(t, err)
	require.Equal(t, int64(-1), v)
}

package binary

import (
	"errors"
	"math"
	"unicode/utf8"

	"github.com/jprendes/whasm/leb128"
	"github.com/jprendes/whasm/wasm"
)

// maxPreallocate bounds how much capacity a length-prefixed vector decoder
// reserves up front from a declared count it has not yet verified against
// the source. A module can declare a 2^32-element vector; without this cap
// that count alone would be enough to exhaust memory before a single byte
// of content is read. Growth beyond the cap still happens naturally, one
// verified element at a time, as the vector is decoded.
const maxPreallocate = 4096

// decodeByte consumes exactly one byte, with no LEB-128 reinterpretation.
func decodeByte(s *source) (byte, error) {
	b, ok := s.next()
	if !ok {
		return 0, wasm.NewDecodeError(wasm.ErrUnexpectedEndOfStream)
	}
	return b, nil
}

func decodeU32(s *source) (uint32, error) {
	v, err := leb128.DecodeUint32(s)
	return v, wrapLEBError(err)
}

func decodeU64(s *source) (uint64, error) {
	v, err := leb128.DecodeUint64(s)
	return v, wrapLEBError(err)
}

func decodeI32(s *source) (int32, error) {
	v, err := leb128.DecodeInt32(s)
	return v, wrapLEBError(err)
}

func decodeI64(s *source) (int64, error) {
	v, err := leb128.DecodeInt64(s)
	return v, wrapLEBError(err)
}

func wrapLEBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, leb128.ErrUnexpectedEOF) {
		return wasm.NewDecodeError(wasm.ErrUnexpectedEndOfStream)
	}
	var overflow *leb128.ErrOverflow
	if errors.As(err, &overflow) {
		if overflow.Signed {
			return wasm.NewDecodeError(wasm.ErrOutOfRangeSignedInteger)
		}
		return wasm.NewDecodeError(wasm.ErrOutOfRangeUnsignedInteger)
	}
	return err
}

func decodeF32(s *source) (float32, error) {
	var buf [4]byte
	for i := range buf {
		b, err := decodeByte(s)
		if err != nil {
			return 0, err
		}
		buf[i] = b
	}
	bits := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	return math.Float32frombits(bits), nil
}

func decodeF64(s *source) (float64, error) {
	var buf [8]byte
	for i := range buf {
		b, err := decodeByte(s)
		if err != nil {
			return 0, err
		}
		buf[i] = b
	}
	var bits uint64
	for i := 7; i >= 0; i-- {
		bits = bits<<8 | uint64(buf[i])
	}
	return math.Float64frombits(bits), nil
}

// capHint clamps a declared element count to maxPreallocate for use as a
// slice capacity; the count itself is still honored in full as the decode
// loop bound.
func capHint(n uint32) int {
	if n > maxPreallocate {
		return maxPreallocate
	}
	return int(n)
}

// decodeVec reads a u32 count n then n values of elem, in order.
func decodeVec[T any](s *source, elem func(*source) (T, error)) ([]T, error) {
	n, err := decodeU32(s)
	if err != nil {
		return nil, err
	}
	result := make([]T, 0, capHint(n))
	for i := uint32(0); i < n; i++ {
		v, err := elem(s)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

// decodeCompactVec reads a run-length-encoded vector: a group count k,
// then for each group a repetition count m and one value, expanded to m
// copies. Used for the code section's locals declarations.
func decodeCompactVec[T any](s *source, elem func(*source) (T, error)) ([]T, error) {
	k, err := decodeU32(s)
	if err != nil {
		return nil, err
	}
	var result []T
	for i := uint32(0); i < k; i++ {
		m, err := decodeU32(s)
		if err != nil {
			return nil, err
		}
		v, err := elem(s)
		if err != nil {
			return nil, err
		}
		if len(result) == 0 && m <= maxPreallocate {
			result = make([]T, 0, m)
		}
		for j := uint32(0); j < m; j++ {
			result = append(result, v)
		}
	}
	return result, nil
}

// decodeName reads a length-prefixed byte vector and validates it as
// UTF-8.
func decodeName(s *source) (string, error) {
	n, err := decodeU32(s)
	if err != nil {
		return "", err
	}
	buf := make([]byte, 0, capHint(n))
	for i := uint32(0); i < n; i++ {
		b, err := decodeByte(s)
		if err != nil {
			return "", err
		}
		buf = append(buf, b)
	}
	if !utf8.Valid(buf) {
		return "", wasm.NewDecodeError(wasm.ErrInvalidUtf8Encoding)
	}
	return string(buf), nil
}

// decodeSized reads a u32 byte length L, bounds decoding of elem at L
// bytes, and fails with mismatchKind unless elem consumes exactly L bytes
// (checked after elem runs, not against the physical byte count available).
func decodeSized[T any](s *source, elem func(*source) (T, error), mismatchKind wasm.DecodeErrorKind) (T, error) {
	var zero T
	size, err := decodeU32(s)
	if err != nil {
		return zero, err
	}
	sub, err := s.take(int(size))
	if err != nil {
		return zero, err
	}
	v, err := elem(sub)
	if err != nil {
		return zero, err
	}
	if sub.consumed() != int(size) {
		return zero, wasm.NewDecodeError(mismatchKind)
	}
	return v, nil
}

// matchBytes reads len(want) bytes and fails with a DecodeError of the given
// kind unless they equal want exactly. Used for the preamble's magic and version
// fields.
func matchBytes(s *source, want []byte, kind wasm.DecodeErrorKind) error {
	for _, w := range want {
		b, err := decodeByte(s)
		if err != nil {
			return err
		}
		if b != w {
			return wasm.NewDecodeError(kind)
		}
	}
	return nil
}

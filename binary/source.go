// Package binary implements the WebAssembly 1.0 binary format: a
// type-directed deserialization layer (source, primitive grammar, derived
// combinators) and, built on top of it, the module and instruction
// decoders.
package binary

import "github.com/jprendes/whasm/wasm"

// source is the single-pass byte cursor every decoder reads from. It
// satisfies leb128's byteReader contract directly (ReadByte), and adds
// peek/take for the rest of the primitive grammar.
type source struct {
	data []byte
	pos  int
}

func newSource(data []byte) *source {
	return &source{data: data}
}

// ReadByte lets source double as leb128's byteReader.
func (s *source) ReadByte() (byte, bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}
	b := s.data[s.pos]
	s.pos++
	return b, true
}

func (s *source) next() (byte, bool) { return s.ReadByte() }

func (s *source) peek() (byte, bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}
	return s.data[s.pos], true
}

// take carves out a sub-source bounded at n bytes: decoding through it
// never reads past n bytes from the current position, even if the
// physical remainder is shorter. It does not itself require n bytes to
// exist up front — the caller compares the sub-source's consumed() against
// n once the inner decode finishes, reporting a declared length that
// didn't match what was actually read as a size mismatch rather than an
// early end-of-stream. ErrUnexpectedEndOfStream still surfaces naturally
// from within the inner decode if it tries to read past what exists.
func (s *source) take(n int) (*source, error) {
	if n < 0 {
		return nil, wasm.NewDecodeError(wasm.ErrUnexpectedEndOfStream)
	}
	end := s.pos + n
	if end > len(s.data) {
		end = len(s.data)
	}
	sub := &source{data: s.data[s.pos:end]}
	s.pos = end
	return sub, nil
}

// consumed reports how many bytes have been read so far, used by Sized
// to verify a sub-source was drained exactly.
func (s *source) consumed() int { return s.pos }

// remaining reports the number of unread bytes.
func (s *source) remaining() int { return len(s.data) - s.pos }

// drain consumes and discards every remaining byte, returning the count.
// This backs the "consume" terminal used to skip custom section payloads.
func (s *source) drain() int {
	n := s.remaining()
	s.pos = len(s.data)
	return n
}

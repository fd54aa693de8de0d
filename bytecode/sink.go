package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// MaxTextLen is the longest text payload, in bytes, a u16 length prefix
// can describe.
const MaxTextLen = math.MaxUint16

// Sink is an append-only byte buffer with fixed-width little-endian writers.
// It knows nothing about the module format. The zero value is ready to use.
type Sink struct {
	bytes []byte
}

// NewSink creates an empty sink with a small initial capacity.
func NewSink() *Sink {
	return &Sink{bytes: make([]byte, 0, 64)}
}

// WriteU8 appends a single byte.
func (s *Sink) WriteU8(v uint8) {
	s.bytes = append(s.bytes, v)
}

// WriteU16 appends v as two little-endian bytes.
func (s *Sink) WriteU16(v uint16) {
	s.bytes = binary.LittleEndian.AppendUint16(s.bytes, v)
}

// WriteU32 appends v as four little-endian bytes.
func (s *Sink) WriteU32(v uint32) {
	s.bytes = binary.LittleEndian.AppendUint32(s.bytes, v)
}

// WriteF64 appends the IEEE-754 bits of v, little-endian.
func (s *Sink) WriteF64(v float64) {
	s.bytes = binary.LittleEndian.AppendUint64(s.bytes, math.Float64bits(v))
}

// WriteString appends a u16 byte-length prefix followed by the UTF-8 bytes
// of str. Nothing is written when str is too long or not valid UTF-8.
func (s *Sink) WriteString(str string) error {
	if err := checkText(str); err != nil {
		return err
	}
	s.WriteU16(uint16(len(str)))
	s.bytes = append(s.bytes, str...)
	return nil
}

// AppendRaw appends an already-encoded span verbatim.
func (s *Sink) AppendRaw(p []byte) {
	s.bytes = append(s.bytes, p...)
}

// Bytes returns a copy of everything written so far. The sink remains
// usable afterwards.
func (s *Sink) Bytes() []byte {
	out := make([]byte, len(s.bytes))
	copy(out, s.bytes)
	return out
}

// Len returns the number of bytes written.
func (s *Sink) Len() int {
	return len(s.bytes)
}

// Reset discards all written bytes, keeping the allocation.
func (s *Sink) Reset() {
	s.bytes = s.bytes[:0]
}

// checkText reports whether str can be written as length-prefixed text.
func checkText(str string) error {
	if len(str) > MaxTextLen {
		return fmt.Errorf("%w: text is %d bytes, limit is %d", ErrEncodingOverflow, len(str), MaxTextLen)
	}
	if !utf8.ValidString(str) {
		return ErrInvalidText
	}
	return nil
}

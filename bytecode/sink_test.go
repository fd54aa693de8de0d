package bytecode

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkFixedWidth(t *testing.T) {
	tests := []struct {
		name  string
		write func(s *Sink)
		want  []byte
	}{
		{"u8", func(s *Sink) { s.WriteU8(0xAB) }, []byte{0xAB}},
		{"u16", func(s *Sink) { s.WriteU16(0x1234) }, []byte{0x34, 0x12}},
		{"u16 max", func(s *Sink) { s.WriteU16(math.MaxUint16) }, []byte{0xFF, 0xFF}},
		{"u32", func(s *Sink) { s.WriteU32(0x01020304) }, []byte{0x04, 0x03, 0x02, 0x01}},
		{"u32 zero", func(s *Sink) { s.WriteU32(0) }, []byte{0, 0, 0, 0}},
		{"f64 one", func(s *Sink) { s.WriteF64(1.0) }, []byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F}},
		{"f64 37", func(s *Sink) { s.WriteF64(37.0) }, []byte{0, 0, 0, 0, 0, 0x80, 0x42, 0x40}},
		{"f64 negative zero", func(s *Sink) { s.WriteF64(math.Copysign(0, -1)) }, []byte{0, 0, 0, 0, 0, 0, 0, 0x80}},
		{"raw", func(s *Sink) { s.AppendRaw([]byte{1, 2, 3}) }, []byte{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSink()
			tt.write(s)
			assert.Equal(t, tt.want, s.Bytes())
			assert.Equal(t, len(tt.want), s.Len())
		})
	}
}

func TestSinkWriteString(t *testing.T) {
	s := NewSink()
	require.NoError(t, s.WriteString("hé"))
	assert.Equal(t, []byte{0x03, 0x00, 'h', 0xC3, 0xA9}, s.Bytes())

	s.Reset()
	require.NoError(t, s.WriteString(""))
	assert.Equal(t, []byte{0x00, 0x00}, s.Bytes())
}

func TestSinkWriteStringBoundary(t *testing.T) {
	s := NewSink()
	require.NoError(t, s.WriteString(strings.Repeat("a", MaxTextLen)))
	assert.Equal(t, 2+MaxTextLen, s.Len())
	assert.Equal(t, []byte{0xFF, 0xFF}, s.Bytes()[:2])

	s.Reset()
	err := s.WriteString(strings.Repeat("a", MaxTextLen+1))
	require.ErrorIs(t, err, ErrEncodingOverflow)
	assert.Zero(t, s.Len(), "nothing is written on overflow")
}

func TestSinkWriteStringInvalidUTF8(t *testing.T) {
	s := NewSink()
	err := s.WriteString("\xff\xfe")
	require.ErrorIs(t, err, ErrInvalidText)
	assert.Zero(t, s.Len())
}

func TestSinkBytesIsSnapshot(t *testing.T) {
	var s Sink
	s.WriteU8(1)
	snap := s.Bytes()
	snap[0] = 99
	s.WriteU8(2)

	assert.Equal(t, []byte{1, 2}, s.Bytes())
	assert.Equal(t, []byte{99}, snap)
}

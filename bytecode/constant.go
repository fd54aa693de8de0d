package bytecode

import (
	"fmt"
	"strconv"
)

// ConstantTag is the one-byte discriminant written before each constant.
type ConstantTag uint8

const (
	TagNumber  ConstantTag = 0x01
	TagBoolean ConstantTag = 0x02
	TagText    ConstantTag = 0x03
)

// String returns the tag's name.
func (t ConstantTag) String() string {
	switch t {
	case TagNumber:
		return "number"
	case TagBoolean:
		return "boolean"
	case TagText:
		return "text"
	default:
		return fmt.Sprintf("tag(0x%02X)", uint8(t))
	}
}

// Constant is a constant pool entry. The set of implementations is closed:
// Number, Boolean and Text.
type Constant interface {
	Tag() ConstantTag
	String() string

	// encode writes the tag and payload.
	encode(s *Sink) error
}

// Number is a 64-bit floating point constant.
type Number float64

// Boolean is a true/false constant, encoded as one byte.
type Boolean bool

// Text is a UTF-8 string constant of at most MaxTextLen bytes.
type Text string

func (Number) Tag() ConstantTag  { return TagNumber }
func (Boolean) Tag() ConstantTag { return TagBoolean }
func (Text) Tag() ConstantTag    { return TagText }

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

func (b Boolean) String() string {
	return strconv.FormatBool(bool(b))
}

func (t Text) String() string {
	return strconv.Quote(string(t))
}

func (n Number) encode(s *Sink) error {
	s.WriteU8(uint8(TagNumber))
	s.WriteF64(float64(n))
	return nil
}

func (b Boolean) encode(s *Sink) error {
	s.WriteU8(uint8(TagBoolean))
	if b {
		s.WriteU8(1)
	} else {
		s.WriteU8(0)
	}
	return nil
}

func (t Text) encode(s *Sink) error {
	if err := checkText(string(t)); err != nil {
		return err
	}
	s.WriteU8(uint8(TagText))
	return s.WriteString(string(t))
}

// ConstantOf converts a plain Go value to a Constant. float64, float32,
// bool, string and existing Constants are accepted; integers are not,
// since they would silently change meaning as floats.
func ConstantOf(v any) (Constant, error) {
	switch v := v.(type) {
	case Constant:
		return v, nil
	case float64:
		return Number(v), nil
	case float32:
		return Number(v), nil
	case bool:
		return Boolean(v), nil
	case string:
		return Text(v), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedConstantType, v)
}

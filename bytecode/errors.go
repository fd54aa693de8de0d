package bytecode

import "errors"

// Builder errors. The builder stops accepting work after the first error of
// any of these kinds; later calls return that error again.
var (
	ErrStructuralMisuse        = errors.New("structural misuse")
	ErrEncodingOverflow        = errors.New("value does not fit its encoded width")
	ErrUnsupportedConstantType = errors.New("unsupported constant type")
	ErrInvalidText             = errors.New("text is not valid UTF-8")
)

// Decoder errors.
var (
	ErrInvalidMagic       = errors.New("invalid magic number: expected ZRCN")
	ErrVersionMismatch    = errors.New("module version mismatch")
	ErrUnexpectedEOF      = errors.New("unexpected end of module data")
	ErrUnknownOpcode      = errors.New("unknown opcode")
	ErrUnknownConstantTag = errors.New("unknown constant tag")
	ErrTrailingData       = errors.New("trailing data after function table")
)

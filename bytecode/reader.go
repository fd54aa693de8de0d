package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"unicode/utf8"
)

// Module is a decoded ZRCN module.
type Module struct {
	Version   uint8
	Constants []Constant
	Functions []DecodedFunction
}

// DecodedFunction is a function table entry read back from a module.
type DecodedFunction struct {
	NumArgs      int
	Instructions []Instruction
}

// ReadFile reads and decodes the module at path.
func ReadFile(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module: %w", err)
	}
	return Decode(data)
}

// Decode parses a complete module. Operands are read for exactly the
// opcodes the opcode table marks as operand-bearing; bytes outside the
// opcode set are rejected.
func Decode(data []byte) (*Module, error) {
	r := &moduleReader{data: data}

	magic, err := r.readBytes(len(Magic))
	if err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if [4]byte(magic) != Magic {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidMagic, magic)
	}
	version, err := r.readUint8()
	if err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrVersionMismatch, Version, version)
	}

	m := &Module{Version: version}

	count, err := r.readUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read constant count: %w", err)
	}
	m.Constants = make([]Constant, 0, r.capHint(count, 2))
	for i := uint32(0); i < count; i++ {
		c, err := r.readConstant()
		if err != nil {
			return nil, fmt.Errorf("failed to read constant %d: %w", i, err)
		}
		m.Constants = append(m.Constants, c)
	}

	count, err = r.readUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read function count: %w", err)
	}
	m.Functions = make([]DecodedFunction, 0, r.capHint(count, 8))
	for i := uint32(0); i < count; i++ {
		fn, err := r.readFunction()
		if err != nil {
			return nil, fmt.Errorf("failed to read function %d: %w", i, err)
		}
		m.Functions = append(m.Functions, fn)
	}

	if r.offset != len(r.data) {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, len(r.data)-r.offset)
	}
	return m, nil
}

// moduleReader walks a module byte slice.
type moduleReader struct {
	data   []byte
	offset int
}

// capHint bounds a preallocation by what the remaining bytes could hold,
// so a corrupt count cannot force a huge allocation.
func (r *moduleReader) capHint(count uint32, minSize int) int {
	limit := (len(r.data) - r.offset) / minSize
	if uint64(count) < uint64(limit) {
		return int(count)
	}
	return limit
}

func (r *moduleReader) readBytes(n int) ([]byte, error) {
	if r.offset+n > len(r.data) {
		return nil, ErrUnexpectedEOF
	}
	p := r.data[r.offset : r.offset+n]
	r.offset += n
	return p, nil
}

func (r *moduleReader) readUint8() (uint8, error) {
	if r.offset+1 > len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	v := r.data[r.offset]
	r.offset++
	return v, nil
}

func (r *moduleReader) readUint16() (uint16, error) {
	if r.offset+2 > len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint16(r.data[r.offset:])
	r.offset += 2
	return v, nil
}

func (r *moduleReader) readUint32() (uint32, error) {
	if r.offset+4 > len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(r.data[r.offset:])
	r.offset += 4
	return v, nil
}

func (r *moduleReader) readFloat64() (float64, error) {
	if r.offset+8 > len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	bits := binary.LittleEndian.Uint64(r.data[r.offset:])
	r.offset += 8
	return math.Float64frombits(bits), nil
}

// readString reads a [length:16 | utf8 bytes] string.
func (r *moduleReader) readString() (string, error) {
	length, err := r.readUint16()
	if err != nil {
		return "", err
	}
	p, err := r.readBytes(int(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(p) {
		return "", ErrInvalidText
	}
	return string(p), nil
}

func (r *moduleReader) readConstant() (Constant, error) {
	tag, err := r.readUint8()
	if err != nil {
		return nil, err
	}
	switch ConstantTag(tag) {
	case TagNumber:
		v, err := r.readFloat64()
		if err != nil {
			return nil, err
		}
		return Number(v), nil
	case TagBoolean:
		v, err := r.readUint8()
		if err != nil {
			return nil, err
		}
		return Boolean(v != 0), nil
	case TagText:
		s, err := r.readString()
		if err != nil {
			return nil, err
		}
		return Text(s), nil
	default:
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownConstantTag, tag)
	}
}

func (r *moduleReader) readFunction() (DecodedFunction, error) {
	var fn DecodedFunction

	count, err := r.readUint32()
	if err != nil {
		return fn, fmt.Errorf("failed to read instruction count: %w", err)
	}
	numArgs, err := r.readUint32()
	if err != nil {
		return fn, fmt.Errorf("failed to read argument count: %w", err)
	}
	fn.NumArgs = int(numArgs)

	fn.Instructions = make([]Instruction, 0, r.capHint(count, 1))
	for i := uint32(0); i < count; i++ {
		b, err := r.readUint8()
		if err != nil {
			return fn, fmt.Errorf("instruction %d: %w", i, err)
		}
		op := Opcode(b)
		if !op.Known() {
			return fn, fmt.Errorf("instruction %d: %w: 0x%02X", i, ErrUnknownOpcode, b)
		}
		inst := Inst(op)
		if op.HasOperand() {
			operand, err := r.readUint16()
			if err != nil {
				return fn, fmt.Errorf("instruction %d operand: %w", i, err)
			}
			inst = InstWith(op, operand)
		}
		fn.Instructions = append(fn.Instructions, inst)
	}
	return fn, nil
}

package bytecode

import "fmt"

// Instruction is an opcode with an optional 16-bit operand.
type Instruction struct {
	Op         Opcode
	Operand    uint16
	HasOperand bool
}

// Inst returns an instruction without an operand.
func Inst(op Opcode) Instruction {
	return Instruction{Op: op}
}

// InstWith returns an instruction carrying operand.
func InstWith(op Opcode, operand uint16) Instruction {
	return Instruction{Op: op, Operand: operand, HasOperand: true}
}

// EncodedLen returns the number of bytes the instruction occupies.
func (i Instruction) EncodedLen() int {
	if i.HasOperand {
		return 1 + OperandBytes
	}
	return 1
}

// String returns the mnemonic, followed by the operand if present.
func (i Instruction) String() string {
	if i.HasOperand {
		return fmt.Sprintf("%s %d", i.Op.Name(), i.Operand)
	}
	return i.Op.Name()
}

func (i Instruction) appendTo(s *Sink) {
	s.WriteU8(uint8(i.Op))
	if i.HasOperand {
		s.WriteU16(i.Operand)
	}
}

// Function is a finalized function record: its encoded instruction bytes
// plus the metadata written in the function table. It is immutable.
type Function struct {
	instructionCount uint32
	numArgs          uint32
	code             []byte
}

// InstructionCount returns the number of encoded instructions.
func (f *Function) InstructionCount() int {
	return int(f.instructionCount)
}

// NumArgs returns the declared argument count.
func (f *Function) NumArgs() int {
	return int(f.numArgs)
}

// CodeLen returns the length of the encoded body in bytes.
func (f *Function) CodeLen() int {
	return len(f.code)
}

// Code returns a copy of the encoded body.
func (f *Function) Code() []byte {
	out := make([]byte, len(f.code))
	copy(out, f.code)
	return out
}

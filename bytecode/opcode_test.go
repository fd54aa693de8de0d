package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcodeInfoAllOpcodes(t *testing.T) {
	tests := []struct {
		op      Opcode
		value   byte
		name    string
		operand OperandKind
	}{
		{OpPushConst, 0x01, "PUSH_CONST", OperandConstant},
		{OpAdd, 0x10, "ADD", OperandNone},
		{OpSubtract, 0x11, "SUBTRACT", OperandNone},
		{OpMultiply, 0x12, "MULTIPLY", OperandNone},
		{OpDivide, 0x13, "DIVIDE", OperandNone},
		{OpModulo, 0x14, "MODULO", OperandNone},
		{OpNegate, 0x15, "NEGATE", OperandNone},
		{OpAnd, 0x20, "AND", OperandNone},
		{OpOr, 0x21, "OR", OperandNone},
		{OpNot, 0x22, "NOT", OperandNone},
		{OpEqual, 0x30, "EQUAL", OperandNone},
		{OpJump, 0x40, "JUMP", OperandTarget},
		{OpJumpIfTrue, 0x41, "JUMP_IF_TRUE", OperandTarget},
		{OpJumpIfFalse, 0x42, "JUMP_IF_FALSE", OperandTarget},
		{OpPrint, 0x60, "PRINT", OperandNone},
		{OpGetLocal, 0x70, "GET_LOCAL", OperandSlot},
		{OpSetLocal, 0x71, "SET_LOCAL", OperandSlot},
		{OpCall, 0x80, "CALL", OperandFunction},
		{OpReturn, 0x81, "RETURN", OperandNone},
		{OpHalt, 0xFF, "HALT", OperandNone},
	}
	assert.Len(t, opcodeTable, len(tests))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.value, byte(tt.op))
			info := tt.op.Info()
			assert.True(t, info.Known)
			assert.Equal(t, tt.name, info.Name)
			assert.Equal(t, tt.operand, info.Operand)
			assert.Equal(t, tt.operand != OperandNone, tt.op.HasOperand())

			op, ok := LookupOpcode(tt.name)
			assert.True(t, ok)
			assert.Equal(t, tt.op, op)
		})
	}
}

func TestOpcodeUnknown(t *testing.T) {
	op := Opcode(0x99)
	assert.False(t, op.Known())
	assert.False(t, op.HasOperand())
	assert.Equal(t, "UNKNOWN_99", op.String())

	_, ok := LookupOpcode("NOP")
	assert.False(t, ok)
}

package bytecode

import "fmt"

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode is the one-byte tag identifying an instruction.
type Opcode byte

// Constants
const (
	OpPushConst Opcode = 0x01 // push constant (16-bit pool index)
)

// Arithmetic
const (
	OpAdd      Opcode = 0x10
	OpSubtract Opcode = 0x11
	OpMultiply Opcode = 0x12
	OpDivide   Opcode = 0x13
	OpModulo   Opcode = 0x14
	OpNegate   Opcode = 0x15
)

// Boolean logic and comparison
const (
	OpAnd   Opcode = 0x20
	OpOr    Opcode = 0x21
	OpNot   Opcode = 0x22
	OpEqual Opcode = 0x30
)

// Control flow. Targets are absolute instruction indices within the
// enclosing function.
const (
	OpJump        Opcode = 0x40
	OpJumpIfTrue  Opcode = 0x41
	OpJumpIfFalse Opcode = 0x42
)

// Output
const (
	OpPrint Opcode = 0x60
)

// Locals
const (
	OpGetLocal Opcode = 0x70 // push local (16-bit slot)
	OpSetLocal Opcode = 0x71 // pop into local (16-bit slot)
)

// Calls. CALL's operand is an index into the module's function table.
const (
	OpCall   Opcode = 0x80
	OpReturn Opcode = 0x81
	OpHalt   Opcode = 0xFF
)

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// OperandKind describes what an opcode's operand addresses.
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandConstant
	OperandTarget
	OperandSlot
	OperandFunction
)

// String returns a short lowercase name for the kind.
func (k OperandKind) String() string {
	switch k {
	case OperandNone:
		return "none"
	case OperandConstant:
		return "constant"
	case OperandTarget:
		return "target"
	case OperandSlot:
		return "slot"
	case OperandFunction:
		return "function"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// OperandBytes is the encoded width of an operand.
const OperandBytes = 2

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name    string      // mnemonic
	Operand OperandKind // OperandNone when the opcode takes no operand
	Known   bool        // false for bytes outside the opcode set
}

// HasOperand reports whether instructions with this opcode carry an operand.
func (i OpcodeInfo) HasOperand() bool {
	return i.Operand != OperandNone
}

var opcodeTable = map[Opcode]OpcodeInfo{
	OpPushConst: {"PUSH_CONST", OperandConstant, true},

	OpAdd:      {"ADD", OperandNone, true},
	OpSubtract: {"SUBTRACT", OperandNone, true},
	OpMultiply: {"MULTIPLY", OperandNone, true},
	OpDivide:   {"DIVIDE", OperandNone, true},
	OpModulo:   {"MODULO", OperandNone, true},
	OpNegate:   {"NEGATE", OperandNone, true},

	OpAnd:   {"AND", OperandNone, true},
	OpOr:    {"OR", OperandNone, true},
	OpNot:   {"NOT", OperandNone, true},
	OpEqual: {"EQUAL", OperandNone, true},

	OpJump:        {"JUMP", OperandTarget, true},
	OpJumpIfTrue:  {"JUMP_IF_TRUE", OperandTarget, true},
	OpJumpIfFalse: {"JUMP_IF_FALSE", OperandTarget, true},

	OpPrint: {"PRINT", OperandNone, true},

	OpGetLocal: {"GET_LOCAL", OperandSlot, true},
	OpSetLocal: {"SET_LOCAL", OperandSlot, true},

	OpCall:   {"CALL", OperandFunction, true},
	OpReturn: {"RETURN", OperandNone, true},
	OpHalt:   {"HALT", OperandNone, true},
}

var opcodesByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeTable))
	for op, info := range opcodeTable {
		m[info.Name] = op
	}
	return m
}()

// Info returns the metadata for an opcode.
func (op Opcode) Info() OpcodeInfo {
	if info, ok := opcodeTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN_%02X", byte(op))}
}

// Name returns the mnemonic for an opcode.
func (op Opcode) Name() string {
	return op.Info().Name
}

// HasOperand reports whether the opcode is operand-bearing.
func (op Opcode) HasOperand() bool {
	return op.Info().HasOperand()
}

// Known reports whether op belongs to the opcode set.
func (op Opcode) Known() bool {
	_, ok := opcodeTable[op]
	return ok
}

// String implements the Stringer interface.
func (op Opcode) String() string {
	return op.Name()
}

// LookupOpcode returns the opcode with the given mnemonic.
func LookupOpcode(name string) (Opcode, bool) {
	op, ok := opcodesByName[name]
	return op, ok
}

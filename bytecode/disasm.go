package bytecode

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Disassembly
// ---------------------------------------------------------------------------

// DisassembleInstruction formats one instruction at index ip. Operands are
// annotated with what they address when the module can resolve it.
func (m *Module) DisassembleInstruction(ip int, inst Instruction) string {
	if !inst.HasOperand {
		return fmt.Sprintf("%04d  %s", ip, inst.Op.Name())
	}
	line := fmt.Sprintf("%04d  %-14s %d", ip, inst.Op.Name(), inst.Operand)

	idx := int(inst.Operand)
	switch inst.Op.Info().Operand {
	case OperandConstant:
		if idx < len(m.Constants) {
			line += fmt.Sprintf("  ; %s", m.Constants[idx])
		} else {
			line += "  ; <out of range>"
		}
	case OperandTarget:
		line += fmt.Sprintf("  ; -> %04d", idx)
	case OperandSlot:
		line += fmt.Sprintf("  ; local %d", idx)
	case OperandFunction:
		if idx < len(m.Functions) {
			line += fmt.Sprintf("  ; fn %d/%d", idx, m.Functions[idx].NumArgs)
		} else {
			line += "  ; <out of range>"
		}
	}
	return line
}

// Disassemble returns a listing of the constant pool and every function.
func (m *Module) Disassemble() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ZRCN v%d\n", m.Version)

	fmt.Fprintf(&sb, "constants (%d):\n", len(m.Constants))
	for i, c := range m.Constants {
		fmt.Fprintf(&sb, "  [%d] %-7s %s\n", i, c.Tag(), c)
	}

	for i, fn := range m.Functions {
		fmt.Fprintf(&sb, "function %d (args=%d, instructions=%d):\n", i, fn.NumArgs, len(fn.Instructions))
		for ip, inst := range fn.Instructions {
			sb.WriteString("  ")
			sb.WriteString(m.DisassembleInstruction(ip, inst))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Disassemble decodes data and returns its listing.
func Disassemble(data []byte) (string, error) {
	m, err := Decode(data)
	if err != nil {
		return "", err
	}
	return m.Disassemble(), nil
}

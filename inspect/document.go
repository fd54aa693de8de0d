// Package inspect exports decoded ZRCN modules as canonical CBOR documents
// and rebuilds modules from them. Documents name opcodes and constant kinds
// by mnemonic so they can be read and edited with generic CBOR tooling.
package inspect

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/tliron/commonlog"
	"github.com/zeebo/blake3"

	"github.com/chazu/zircon/bytecode"
)

var (
	ErrUnknownKind     = errors.New("unknown constant kind")
	ErrUnknownOp       = errors.New("unknown opcode mnemonic")
	ErrEmptyConstant   = errors.New("constant has no value for its kind")
	ErrOperandMismatch = errors.New("operand presence does not match opcode")
	ErrDigestMismatch  = errors.New("rebuilt module does not match document digest")
)

func logger() commonlog.Logger {
	return commonlog.GetLogger("zircon.inspect")
}

// Document is the CBOR form of a module.
type Document struct {
	Version   uint8           `cbor:"version"`
	Digest    string          `cbor:"digest,omitempty"`
	Constants []ConstantEntry `cbor:"constants"`
	Functions []FunctionEntry `cbor:"functions"`
}

// ConstantEntry is one constant pool slot. Exactly the field matching Kind
// is set.
type ConstantEntry struct {
	Kind    string   `cbor:"kind"`
	Number  *float64 `cbor:"number,omitempty"`
	Boolean *bool    `cbor:"boolean,omitempty"`
	Text    *string  `cbor:"text,omitempty"`
}

// FunctionEntry is one function table slot.
type FunctionEntry struct {
	Args uint32             `cbor:"args"`
	Code []InstructionEntry `cbor:"code"`
}

// InstructionEntry is one instruction; Operand is nil when absent.
type InstructionEntry struct {
	Op      string  `cbor:"op"`
	Operand *uint16 `cbor:"operand,omitempty"`
}

// Digest returns the hex BLAKE3-256 digest of a serialized module.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FromModule converts a decoded module into a document.
func FromModule(m *bytecode.Module) *Document {
	d := &Document{
		Version:   m.Version,
		Constants: make([]ConstantEntry, 0, len(m.Constants)),
		Functions: make([]FunctionEntry, 0, len(m.Functions)),
	}
	for _, c := range m.Constants {
		d.Constants = append(d.Constants, constantEntry(c))
	}
	for _, fn := range m.Functions {
		entry := FunctionEntry{
			Args: uint32(fn.NumArgs),
			Code: make([]InstructionEntry, 0, len(fn.Instructions)),
		}
		for _, inst := range fn.Instructions {
			ie := InstructionEntry{Op: inst.Op.Name()}
			if inst.HasOperand {
				operand := inst.Operand
				ie.Operand = &operand
			}
			entry.Code = append(entry.Code, ie)
		}
		d.Functions = append(d.Functions, entry)
	}
	return d
}

// FromBytes decodes a serialized module and converts it, recording its
// digest.
func FromBytes(data []byte) (*Document, error) {
	m, err := bytecode.Decode(data)
	if err != nil {
		return nil, err
	}
	d := FromModule(m)
	d.Digest = Digest(data)
	return d, nil
}

func constantEntry(c bytecode.Constant) ConstantEntry {
	entry := ConstantEntry{Kind: c.Tag().String()}
	switch v := c.(type) {
	case bytecode.Number:
		f := float64(v)
		entry.Number = &f
	case bytecode.Boolean:
		b := bool(v)
		entry.Boolean = &b
	case bytecode.Text:
		s := string(v)
		entry.Text = &s
	}
	return entry
}

// Constant converts the entry back to a bytecode constant.
func (e ConstantEntry) Constant() (bytecode.Constant, error) {
	switch e.Kind {
	case bytecode.TagNumber.String():
		if e.Number == nil {
			return nil, fmt.Errorf("%w: %s", ErrEmptyConstant, e.Kind)
		}
		return bytecode.Number(*e.Number), nil
	case bytecode.TagBoolean.String():
		if e.Boolean == nil {
			return nil, fmt.Errorf("%w: %s", ErrEmptyConstant, e.Kind)
		}
		return bytecode.Boolean(*e.Boolean), nil
	case bytecode.TagText.String():
		if e.Text == nil {
			return nil, fmt.Errorf("%w: %s", ErrEmptyConstant, e.Kind)
		}
		return bytecode.Text(*e.Text), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
}

// Instruction converts the entry back to a bytecode instruction. The entry
// must carry an operand exactly when the opcode takes one.
func (e InstructionEntry) Instruction() (bytecode.Instruction, error) {
	op, ok := bytecode.LookupOpcode(e.Op)
	if !ok {
		return bytecode.Instruction{}, fmt.Errorf("%w: %q", ErrUnknownOp, e.Op)
	}
	if (e.Operand != nil) != op.HasOperand() {
		if op.HasOperand() {
			return bytecode.Instruction{}, fmt.Errorf("%w: %s requires an operand", ErrOperandMismatch, e.Op)
		}
		return bytecode.Instruction{}, fmt.Errorf("%w: %s takes no operand", ErrOperandMismatch, e.Op)
	}
	if e.Operand != nil {
		return bytecode.InstWith(op, *e.Operand), nil
	}
	return bytecode.Inst(op), nil
}

// Verify checks data against the recorded digest. Documents without a digest
// always verify.
func (d *Document) Verify(data []byte) error {
	if d.Digest == "" {
		return nil
	}
	if got := Digest(data); got != d.Digest {
		return fmt.Errorf("%w: got %s, want %s", ErrDigestMismatch, got, d.Digest)
	}
	return nil
}

// Build replays the document through a new builder.
func (d *Document) Build() (*bytecode.Builder, error) {
	b := bytecode.NewBuilder()
	for i, entry := range d.Constants {
		c, err := entry.Constant()
		if err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
		if _, err := b.AddConstant(c); err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
	}
	for i, fn := range d.Functions {
		if err := b.StartFunction(); err != nil {
			return nil, fmt.Errorf("function %d: %w", i, err)
		}
		for j, ie := range fn.Code {
			inst, err := ie.Instruction()
			if err != nil {
				return nil, fmt.Errorf("function %d instruction %d: %w", i, j, err)
			}
			if err := b.AddInstruction(inst); err != nil {
				return nil, fmt.Errorf("function %d instruction %d: %w", i, j, err)
			}
		}
		if _, err := b.EndFunction(int(fn.Args)); err != nil {
			return nil, fmt.Errorf("function %d: %w", i, err)
		}
	}
	logger().Debugf("rebuilt module: %d constants, %d functions", b.ConstantCount(), b.FunctionCount())
	return b, nil
}

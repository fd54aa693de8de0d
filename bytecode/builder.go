package bytecode

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Module Format Constants
// ---------------------------------------------------------------------------

// Magic identifies a ZRCN module.
var Magic = [4]byte{'Z', 'R', 'C', 'N'}

// Version is the module format version written after the magic.
const Version uint8 = 1

// HeaderSize is magic(4) + version(1).
const HeaderSize = 5

func logger() commonlog.Logger {
	return commonlog.GetLogger("zircon.bytecode")
}

// ---------------------------------------------------------------------------
// Builder: accumulates a constant pool and function table
// ---------------------------------------------------------------------------

// Builder assembles a module. Constants may be added at any time;
// instructions only between StartFunction and EndFunction. A Builder is
// owned by a single goroutine.
//
// The first error returned by a mutating call is sticky: every later call,
// including Serialize, returns it again and nothing further is committed.
type Builder struct {
	constants []Constant
	functions []*Function

	// Function under construction
	open    bool
	scope   int
	pending []Instruction
	labels  []*Label

	err error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Err returns the sticky error, if any.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(err error) error {
	if b.err == nil {
		b.err = err
	}
	return err
}

// ---------------------------------------------------------------------------
// Constant pool
// ---------------------------------------------------------------------------

// AddConstant appends c to the constant pool and returns its index.
// Equal constants added twice get two indices.
func (b *Builder) AddConstant(c Constant) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	if c == nil {
		return 0, b.fail(fmt.Errorf("%w: nil constant", ErrUnsupportedConstantType))
	}
	if t, ok := c.(Text); ok {
		if err := checkText(string(t)); err != nil {
			return 0, b.fail(fmt.Errorf("constant %d: %w", len(b.constants), err))
		}
	}
	if uint64(len(b.constants)) >= math.MaxUint32 {
		return 0, b.fail(fmt.Errorf("%w: constant pool is full", ErrEncodingOverflow))
	}
	b.constants = append(b.constants, c)
	return len(b.constants) - 1, nil
}

// ConstantCount returns the size of the constant pool.
func (b *Builder) ConstantCount() int {
	return len(b.constants)
}

// ConstantAt returns the constant at the given index.
func (b *Builder) ConstantAt(index int) Constant {
	return b.constants[index]
}

// ---------------------------------------------------------------------------
// Function lifecycle
// ---------------------------------------------------------------------------

// StartFunction opens a new function scope. It fails if one is already open.
func (b *Builder) StartFunction() error {
	if b.err != nil {
		return b.err
	}
	if b.open {
		return b.fail(fmt.Errorf("%w: StartFunction while function %d is open", ErrStructuralMisuse, len(b.functions)))
	}
	b.open = true
	b.scope++
	b.pending = b.pending[:0]
	b.labels = nil
	return nil
}

// InFunction reports whether a function scope is open.
func (b *Builder) InFunction() bool {
	return b.open
}

// Len returns the number of instructions appended to the open function.
// It is the index the next instruction will get, which makes it a backward
// jump target.
func (b *Builder) Len() int {
	return len(b.pending)
}

// AddInstruction appends inst to the open function. The opcode and the
// presence of an operand are not checked against the opcode set.
func (b *Builder) AddInstruction(inst Instruction) error {
	if b.err != nil {
		return b.err
	}
	if !b.open {
		return b.fail(fmt.Errorf("%w: %s outside a function", ErrStructuralMisuse, inst.Op.Name()))
	}
	b.pending = append(b.pending, inst)
	return nil
}

// Emit appends an instruction without an operand.
func (b *Builder) Emit(op Opcode) error {
	return b.AddInstruction(Inst(op))
}

// EmitOperand appends an instruction with an operand. The operand must
// fit in 16 bits.
func (b *Builder) EmitOperand(op Opcode, operand int) error {
	if b.err != nil {
		return b.err
	}
	if operand < 0 || operand > math.MaxUint16 {
		return b.fail(fmt.Errorf("%w: %s operand %d", ErrEncodingOverflow, op.Name(), operand))
	}
	return b.AddInstruction(InstWith(op, uint16(operand)))
}

// EndFunction encodes the pending instructions into a function record,
// appends it to the function table and returns its index.
func (b *Builder) EndFunction(numArgs int) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	if !b.open {
		return 0, b.fail(fmt.Errorf("%w: EndFunction without StartFunction", ErrStructuralMisuse))
	}
	if numArgs < 0 || uint64(numArgs) > math.MaxUint32 {
		return 0, b.fail(fmt.Errorf("%w: argument count %d", ErrEncodingOverflow, numArgs))
	}
	if uint64(len(b.pending)) > math.MaxUint32 {
		return 0, b.fail(fmt.Errorf("%w: %d instructions", ErrEncodingOverflow, len(b.pending)))
	}
	if uint64(len(b.functions)) >= math.MaxUint32 {
		return 0, b.fail(fmt.Errorf("%w: function table is full", ErrEncodingOverflow))
	}
	for _, l := range b.labels {
		if !l.resolved && len(l.refs) > 0 {
			return 0, b.fail(fmt.Errorf("%w: unresolved label referenced by instruction %d", ErrStructuralMisuse, l.refs[0]))
		}
	}

	code := NewSink()
	for _, inst := range b.pending {
		inst.appendTo(code)
	}
	fn := &Function{
		instructionCount: uint32(len(b.pending)),
		numArgs:          uint32(numArgs),
		code:             code.Bytes(),
	}
	b.functions = append(b.functions, fn)
	b.open = false
	b.pending = b.pending[:0]
	b.labels = nil

	index := len(b.functions) - 1
	logger().Debugf("function %d finalized: %d instructions, %d args, %d bytes",
		index, fn.instructionCount, fn.numArgs, len(fn.code))
	return index, nil
}

// FunctionCount returns the number of finalized functions.
func (b *Builder) FunctionCount() int {
	return len(b.functions)
}

// FunctionAt returns the finalized function record at the given index.
func (b *Builder) FunctionAt(index int) *Function {
	return b.functions[index]
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Serialize returns the complete module: header, constant pool and
// function table. It fails if a function scope is still open. The builder
// is not consumed; later additions show up in the next Serialize.
func (b *Builder) Serialize() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.open {
		return nil, b.fail(fmt.Errorf("%w: Serialize while function %d is open", ErrStructuralMisuse, len(b.functions)))
	}

	s := NewSink()
	s.AppendRaw(Magic[:])
	s.WriteU8(Version)

	s.WriteU32(uint32(len(b.constants)))
	for i, c := range b.constants {
		if err := c.encode(s); err != nil {
			return nil, b.fail(fmt.Errorf("constant %d: %w", i, err))
		}
	}

	s.WriteU32(uint32(len(b.functions)))
	for _, fn := range b.functions {
		s.WriteU32(fn.instructionCount)
		s.WriteU32(fn.numArgs)
		s.AppendRaw(fn.code)
	}

	logger().Debugf("module serialized: %d constants, %d functions, %d bytes",
		len(b.constants), len(b.functions), s.Len())
	return s.Bytes(), nil
}

// WriteTo serializes the module and writes it to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	data, err := b.Serialize()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// WriteFile serializes the module and writes it to path.
func (b *Builder) WriteFile(path string) error {
	data, err := b.Serialize()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

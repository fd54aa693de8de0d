package bytecode

import (
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Label management for jumps
// ---------------------------------------------------------------------------

// Label is a jump target inside the open function. Jumps emitted before the
// label is marked are patched when Mark is called.
type Label struct {
	scope    int
	resolved bool
	target   int   // instruction index once resolved
	refs     []int // instructions waiting for the target
}

// NewLabel creates an unresolved label bound to the open function.
func (b *Builder) NewLabel() *Label {
	l := &Label{scope: b.scope, refs: make([]int, 0, 2)}
	b.labels = append(b.labels, l)
	return l
}

// Mark resolves label to the index of the next instruction and patches
// every jump that already references it.
func (b *Builder) Mark(label *Label) error {
	if b.err != nil {
		return b.err
	}
	if err := b.checkLabel(label); err != nil {
		return b.fail(err)
	}
	if label.resolved {
		return b.fail(fmt.Errorf("%w: label already marked at %d", ErrStructuralMisuse, label.target))
	}
	target := len(b.pending)
	if target > math.MaxUint16 {
		return b.fail(fmt.Errorf("%w: jump target %d", ErrEncodingOverflow, target))
	}
	label.resolved = true
	label.target = target

	for _, ref := range label.refs {
		b.pending[ref].Operand = uint16(target)
	}
	label.refs = nil
	return nil
}

// EmitJump appends op with label as its target. For an unresolved label the
// operand is a placeholder until Mark.
func (b *Builder) EmitJump(op Opcode, label *Label) error {
	if b.err != nil {
		return b.err
	}
	if err := b.checkLabel(label); err != nil {
		return b.fail(err)
	}
	if label.resolved {
		return b.EmitOperand(op, label.target)
	}
	if err := b.AddInstruction(InstWith(op, 0)); err != nil {
		return err
	}
	label.refs = append(label.refs, len(b.pending)-1)
	return nil
}

func (b *Builder) checkLabel(label *Label) error {
	if !b.open {
		return fmt.Errorf("%w: label used outside a function", ErrStructuralMisuse)
	}
	if label == nil || label.scope != b.scope {
		return fmt.Errorf("%w: label belongs to another function", ErrStructuralMisuse)
	}
	return nil
}

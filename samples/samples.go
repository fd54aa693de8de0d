// Package samples holds small hand-assembled ZRCN programs used by the zrc
// CLI and by tests.
package samples

import (
	"fmt"
	"sort"

	"github.com/chazu/zircon/bytecode"
)

// Sample builds one program into a fresh builder.
type Sample struct {
	Name        string
	Description string
	Build       func(b *bytecode.Builder) error
}

// Default is the sample written when none is named.
const Default = "sum"

var registry = map[string]Sample{
	"sum": {
		Name:        "sum",
		Description: "stores 37 and 25 in locals, prints -(37+25)",
		Build:       buildSum,
	},
	"literals": {
		Name:        "literals",
		Description: "prints a number, a boolean and a text constant",
		Build:       buildLiterals,
	},
	"answer": {
		Name:        "answer",
		Description: "prints 42",
		Build:       buildAnswer,
	},
	"countdown": {
		Name:        "countdown",
		Description: "calls a one-argument function that loops down to zero",
		Build:       buildCountdown,
	},
}

// Names returns the registered sample names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the sample with the given name.
func Lookup(name string) (Sample, bool) {
	s, ok := registry[name]
	return s, ok
}

// Build runs the named sample against a new builder and returns it.
func Build(name string) (*bytecode.Builder, error) {
	s, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown sample %q", name)
	}
	b := bytecode.NewBuilder()
	if err := s.Build(b); err != nil {
		return nil, fmt.Errorf("sample %s: %w", name, err)
	}
	return b, nil
}

// emitAll opens a function, appends prog and closes it.
func emitAll(b *bytecode.Builder, numArgs int, prog []bytecode.Instruction) error {
	if err := b.StartFunction(); err != nil {
		return err
	}
	for _, inst := range prog {
		if err := b.AddInstruction(inst); err != nil {
			return err
		}
	}
	_, err := b.EndFunction(numArgs)
	return err
}

func addConstants(b *bytecode.Builder, consts ...bytecode.Constant) ([]uint16, error) {
	idx := make([]uint16, len(consts))
	for i, c := range consts {
		n, err := b.AddConstant(c)
		if err != nil {
			return nil, err
		}
		idx[i] = uint16(n)
	}
	return idx, nil
}

func buildSum(b *bytecode.Builder) error {
	c, err := addConstants(b, bytecode.Number(37), bytecode.Number(25))
	if err != nil {
		return err
	}
	return emitAll(b, 0, []bytecode.Instruction{
		bytecode.InstWith(bytecode.OpPushConst, c[0]),
		bytecode.InstWith(bytecode.OpSetLocal, 0),
		bytecode.InstWith(bytecode.OpPushConst, c[1]),
		bytecode.InstWith(bytecode.OpSetLocal, 1),
		bytecode.InstWith(bytecode.OpGetLocal, 0),
		bytecode.InstWith(bytecode.OpGetLocal, 1),
		bytecode.Inst(bytecode.OpAdd),
		bytecode.Inst(bytecode.OpNegate),
		bytecode.Inst(bytecode.OpPrint),
		bytecode.Inst(bytecode.OpHalt),
	})
}

func buildLiterals(b *bytecode.Builder) error {
	c, err := addConstants(b, bytecode.Number(1), bytecode.Boolean(true), bytecode.Text("hello world"))
	if err != nil {
		return err
	}
	return emitAll(b, 0, []bytecode.Instruction{
		bytecode.InstWith(bytecode.OpPushConst, c[0]),
		bytecode.InstWith(bytecode.OpPushConst, c[1]),
		bytecode.InstWith(bytecode.OpPushConst, c[2]),
		bytecode.Inst(bytecode.OpPrint),
		bytecode.Inst(bytecode.OpPrint),
		bytecode.Inst(bytecode.OpPrint),
		bytecode.Inst(bytecode.OpHalt),
	})
}

func buildAnswer(b *bytecode.Builder) error {
	c, err := addConstants(b, bytecode.Number(42))
	if err != nil {
		return err
	}
	return emitAll(b, 0, []bytecode.Instruction{
		bytecode.InstWith(bytecode.OpPushConst, c[0]),
		bytecode.Inst(bytecode.OpPrint),
		bytecode.Inst(bytecode.OpHalt),
	})
}

// buildCountdown exercises labels, CALL and RETURN:
//
//	fn 0: push 3; call 1; halt
//	fn 1(n): loop: print n; if n == 0 return; n = n - 1; jump loop
func buildCountdown(b *bytecode.Builder) error {
	c, err := addConstants(b, bytecode.Number(3), bytecode.Number(0), bytecode.Number(1))
	if err != nil {
		return err
	}
	if err := emitAll(b, 0, []bytecode.Instruction{
		bytecode.InstWith(bytecode.OpPushConst, c[0]),
		bytecode.InstWith(bytecode.OpCall, 1),
		bytecode.Inst(bytecode.OpHalt),
	}); err != nil {
		return err
	}

	if err := b.StartFunction(); err != nil {
		return err
	}
	loop := b.NewLabel()
	done := b.NewLabel()
	steps := []func() error{
		func() error { return b.Mark(loop) },
		func() error { return b.EmitOperand(bytecode.OpGetLocal, 0) },
		func() error { return b.Emit(bytecode.OpPrint) },
		func() error { return b.EmitOperand(bytecode.OpGetLocal, 0) },
		func() error { return b.EmitOperand(bytecode.OpPushConst, int(c[1])) },
		func() error { return b.Emit(bytecode.OpEqual) },
		func() error { return b.EmitJump(bytecode.OpJumpIfTrue, done) },
		func() error { return b.EmitOperand(bytecode.OpGetLocal, 0) },
		func() error { return b.EmitOperand(bytecode.OpPushConst, int(c[2])) },
		func() error { return b.Emit(bytecode.OpSubtract) },
		func() error { return b.EmitOperand(bytecode.OpSetLocal, 0) },
		func() error { return b.EmitJump(bytecode.OpJump, loop) },
		func() error { return b.Mark(done) },
		func() error { return b.Emit(bytecode.OpReturn) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	_, err = b.EndFunction(1)
	return err
}

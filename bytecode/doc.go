// Package bytecode builds and reads ZRCN modules.
//
// A module is a constant pool followed by a function table, written after a
// fixed header. All integers are little-endian:
//
//	header     "ZRCN" version:u8
//	constants  count:u32 { tag:u8 payload }
//	functions  count:u32 { instructions:u32 args:u32 { opcode:u8 [operand:u16] } }
//
// Constant payloads are an f64 (Number, tag 0x01), a u8 0/1 (Boolean,
// tag 0x02) or a u16 length followed by UTF-8 bytes (Text, tag 0x03).
// An operand follows an opcode only when the opcode table marks it as
// operand-bearing.
//
// Jump operands are absolute instruction indices inside the enclosing
// function. CALL's operand is a function table index; function 0 is the
// entry point.
//
// The [Builder] trusts its caller for semantics: constant indices, local
// slots and jump targets are not checked against the module. Widths are
// checked, and a value that does not fit fails with [ErrEncodingOverflow]
// instead of being truncated.
//
// Example:
//
//	b := bytecode.NewBuilder()
//	answer, _ := b.AddConstant(bytecode.Number(42))
//	b.StartFunction()
//	b.EmitOperand(bytecode.OpPushConst, answer)
//	b.Emit(bytecode.OpPrint)
//	b.Emit(bytecode.OpHalt)
//	b.EndFunction(0)
//	data, err := b.Serialize()
package bytecode

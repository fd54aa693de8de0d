package inspect

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/zircon/bytecode"
	"github.com/chazu/zircon/samples"
)

func serializeSample(t *testing.T, name string) []byte {
	t.Helper()
	b, err := samples.Build(name)
	require.NoError(t, err)
	data, err := b.Serialize()
	require.NoError(t, err)
	return data
}

func TestFromBytesSum(t *testing.T) {
	data := serializeSample(t, "sum")
	d, err := FromBytes(data)
	require.NoError(t, err)

	assert.Equal(t, bytecode.Version, d.Version)
	assert.Equal(t, Digest(data), d.Digest)
	require.Len(t, d.Constants, 2)
	assert.Equal(t, "number", d.Constants[0].Kind)
	require.NotNil(t, d.Constants[0].Number)
	assert.Equal(t, 37.0, *d.Constants[0].Number)
	assert.Nil(t, d.Constants[0].Boolean)
	assert.Nil(t, d.Constants[0].Text)

	require.Len(t, d.Functions, 1)
	code := d.Functions[0].Code
	require.Len(t, code, 10)
	assert.Equal(t, "PUSH_CONST", code[0].Op)
	require.NotNil(t, code[0].Operand)
	assert.Equal(t, uint16(0), *code[0].Operand)
	assert.Equal(t, "ADD", code[6].Op)
	assert.Nil(t, code[6].Operand)
	assert.Equal(t, "HALT", code[9].Op)
}

func TestDocumentRebuildsIdenticalBytes(t *testing.T) {
	for _, name := range samples.Names() {
		t.Run(name, func(t *testing.T) {
			data := serializeSample(t, name)
			d, err := FromBytes(data)
			require.NoError(t, err)

			encoded, err := Marshal(d)
			require.NoError(t, err)
			back, err := Unmarshal(encoded)
			require.NoError(t, err)

			b, err := back.Build()
			require.NoError(t, err)
			rebuilt, err := b.Serialize()
			require.NoError(t, err)
			assert.Equal(t, data, rebuilt)
			assert.Equal(t, d.Digest, Digest(rebuilt))
		})
	}
}

func TestMarshalDeterministic(t *testing.T) {
	d, err := FromBytes(serializeSample(t, "literals"))
	require.NoError(t, err)

	first, err := Marshal(d)
	require.NoError(t, err)
	second, err := Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDigest(t *testing.T) {
	a := Digest([]byte("ZRCN"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Digest([]byte("ZRCN")))
	assert.NotEqual(t, a, Digest([]byte("ZRCM")))
}

func TestConstantEntryErrors(t *testing.T) {
	_, err := ConstantEntry{Kind: "symbol"}.Constant()
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = ConstantEntry{Kind: "text"}.Constant()
	assert.ErrorIs(t, err, ErrEmptyConstant)

	flag := false
	c, err := ConstantEntry{Kind: "boolean", Boolean: &flag}.Constant()
	require.NoError(t, err)
	assert.Equal(t, bytecode.Boolean(false), c)
}

func TestBuildErrors(t *testing.T) {
	d := &Document{
		Version: bytecode.Version,
		Functions: []FunctionEntry{
			{Code: []InstructionEntry{{Op: "FROB"}}},
		},
	}
	_, err := d.Build()
	assert.ErrorIs(t, err, ErrUnknownOp)
	assert.ErrorContains(t, err, "function 0 instruction 0")

	long := string(make([]byte, bytecode.MaxTextLen+1))
	d = &Document{Constants: []ConstantEntry{{Kind: "text", Text: &long}}}
	_, err = d.Build()
	assert.ErrorIs(t, err, bytecode.ErrEncodingOverflow)
}

func TestBuildRejectsOperandMismatch(t *testing.T) {
	operand := uint16(7)
	tests := []struct {
		name  string
		entry InstructionEntry
		msg   string
	}{
		{"missing operand", InstructionEntry{Op: "PUSH_CONST"}, "PUSH_CONST requires an operand"},
		{"extra operand", InstructionEntry{Op: "ADD", Operand: &operand}, "ADD takes no operand"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Document{
				Functions: []FunctionEntry{{
					Code: []InstructionEntry{tt.entry, {Op: "HALT"}},
				}},
			}
			_, err := d.Build()
			assert.ErrorIs(t, err, ErrOperandMismatch)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestBuildMatchingOperands(t *testing.T) {
	operand := uint16(7)
	d := &Document{
		Functions: []FunctionEntry{{
			Args: 2,
			Code: []InstructionEntry{
				{Op: "GET_LOCAL", Operand: &operand},
				{Op: "RETURN"},
			},
		}},
	}
	b, err := d.Build()
	require.NoError(t, err)
	fn := b.FunctionAt(0)
	assert.Equal(t, 2, fn.NumArgs())
	assert.Equal(t, []byte{byte(bytecode.OpGetLocal), 7, 0, byte(bytecode.OpReturn)}, fn.Code())

	data, err := b.Serialize()
	require.NoError(t, err)
	m, err := bytecode.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []bytecode.Instruction{
		bytecode.InstWith(bytecode.OpGetLocal, 7),
		bytecode.Inst(bytecode.OpReturn),
	}, m.Functions[0].Instructions)
}

func TestVerifyDigest(t *testing.T) {
	data := serializeSample(t, "answer")
	d, err := FromBytes(data)
	require.NoError(t, err)
	assert.NoError(t, d.Verify(data))

	other := serializeSample(t, "sum")
	assert.ErrorIs(t, d.Verify(other), ErrDigestMismatch)

	d.Digest = ""
	assert.NoError(t, d.Verify(other))
}

func TestUnmarshalRejectsUnknownFields(t *testing.T) {
	data, err := cbor.Marshal(map[string]any{"version": 1, "compressed": true})
	require.NoError(t, err)
	_, err = Unmarshal(data)
	assert.Error(t, err)

	_, err = Unmarshal([]byte{0xff})
	assert.Error(t, err)
}

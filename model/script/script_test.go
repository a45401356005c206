package script

import (
	"bytes"
	"testing"

	"github.com/cosanta/cosanta-core/model/opcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptEncodeSize(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"single opcode", []byte{opcodes.OP_TRUE}},
		// Length prefix grows from one byte to three at 0xfd.
		{"compact size boundary", bytes.Repeat([]byte{0x51}, 0xfd)},
		{"large", bytes.Repeat([]byte{0x51}, 1000)},
	}

	for _, test := range tests {
		s := NewScriptRaw(test.data)

		var buf bytes.Buffer
		require.NoError(t, s.Encode(&buf), test.name)
		assert.Equal(t, s.EncodeSize(), uint32(buf.Len()), test.name)
	}
}

func TestScriptEncodeDecode(t *testing.T) {
	s := NewEmptyScript()
	require.NoError(t, s.PushOpCode(opcodes.OP_DUP))
	require.NoError(t, s.PushOpCode(opcodes.OP_HASH160))
	require.NoError(t, s.PushSingleData(make([]byte, 20)))
	require.NoError(t, s.PushOpCode(opcodes.OP_EQUALVERIFY))
	require.NoError(t, s.PushOpCode(opcodes.OP_CHECKSIG))

	var buf bytes.Buffer
	require.NoError(t, s.Encode(&buf))

	decoded := NewEmptyScript()
	require.NoError(t, decoded.Decode(bytes.NewReader(buf.Bytes()), false))
	assert.True(t, s.IsEqual(decoded))
}

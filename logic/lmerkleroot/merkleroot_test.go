package lmerkleroot

import (
	"testing"

	"github.com/cosanta/cosanta-core/model/opcodes"
	"github.com/cosanta/cosanta-core/model/outpoint"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/model/txin"
	"github.com/cosanta/cosanta-core/model/txout"
	"github.com/cosanta/cosanta-core/util"
	"github.com/stretchr/testify/assert"
)

// naiveMerkleRoot pairs the list level by level, duplicating the last
// hash on odd levels, as a cross check for the streaming version.
func naiveMerkleRoot(leaves []util.Hash) util.Hash {
	if len(leaves) == 0 {
		return util.Hash{}
	}
	level := append([]util.Hash(nil), leaves...)
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]util.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			var buf [util.Hash256Size * 2]byte
			copy(buf[:util.Hash256Size], level[i][:])
			copy(buf[util.Hash256Size:], level[i+1][:])
			next = append(next, util.DoubleSha256Hash(buf[:]))
		}
		level = next
	}
	return level[0]
}

func testLeaves(n int) []util.Hash {
	leaves := make([]util.Hash, n)
	for i := range leaves {
		leaves[i] = util.DoubleSha256Hash([]byte{byte(i), byte(n), 0x33})
	}
	return leaves
}

func TestComputeMerkleRootMatchesNaive(t *testing.T) {
	for n := 0; n <= 17; n++ {
		leaves := testLeaves(n)
		var mutated bool
		got := ComputeMerkleRoot(leaves, &mutated)
		assert.Equal(t, naiveMerkleRoot(leaves), got, "leaf count %d", n)
		assert.False(t, mutated, "leaf count %d", n)
	}
}

func TestComputeMerkleRootSingleLeaf(t *testing.T) {
	leaves := testLeaves(1)
	assert.Equal(t, leaves[0], ComputeMerkleRoot(leaves, nil))
}

func TestComputeMerkleRootEmpty(t *testing.T) {
	var mutated bool
	assert.Equal(t, util.Hash{}, ComputeMerkleRoot(nil, &mutated))
	assert.False(t, mutated)
}

func TestComputeMerkleRootDetectsMutation(t *testing.T) {
	// A duplicated trailing pair produces the same root as the
	// unpadded list while flagging the mutation.
	leaves := testLeaves(3)
	dup := append(append([]util.Hash(nil), leaves...), leaves[2])

	var mutated bool
	honest := ComputeMerkleRoot(leaves, &mutated)
	assert.False(t, mutated)
	forged := ComputeMerkleRoot(dup, &mutated)
	assert.True(t, mutated)
	assert.Equal(t, honest, forged)
}

func TestBlockMerkleRoot(t *testing.T) {
	txs := make([]*tx.Tx, 0, 3)
	for i := uint32(0); i < 3; i++ {
		txn := tx.NewTx(i, tx.TxVersion)
		point := outpoint.NewOutPoint(util.DoubleSha256Hash([]byte{byte(i)}), i)
		txn.AddTxIn(txin.NewTxIn(point, script.NewScriptRaw([]byte{opcodes.OP_TRUE}), script.SequenceFinal))
		txn.AddTxOut(txout.NewTxOut(5000, script.NewScriptRaw([]byte{opcodes.OP_TRUE})))
		txs = append(txs, txn)
	}

	leaves := []util.Hash{txs[0].GetHash(), txs[1].GetHash(), txs[2].GetHash()}
	assert.Equal(t, ComputeMerkleRoot(leaves, nil), BlockMerkleRoot(txs, nil))
}

package llmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/chain"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/model/consensus"
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/util"
)

// installChain indexes tipHeight+1 synthetic headers and activates
// them, so GetIndex can resolve quorum base blocks.
func installChain(t *testing.T, params *chainparams.Params, tipHeight int32) *chain.Chain {
	t.Helper()
	old := chainparams.ActiveNetParams
	chainparams.ActiveNetParams = params
	c := chain.NewChain(params)
	chain.SetInstance(c)
	t.Cleanup(func() {
		chainparams.ActiveNetParams = old
	})

	var prev *blockindex.BlockIndex
	for h := int32(0); h <= tipHeight; h++ {
		header := block.BlockHeader{
			Version: 4,
			Time:    1626442320 + 60*uint32(h),
			Bits:    params.PowLimitBits,
		}
		if prev != nil {
			header.HashPrevBlock = prev.BlockHash
		}
		idx := blockindex.NewBlockIndex(&header)
		idx.TxCount = 1
		require.NoError(t, c.AddToIndexMap(idx))
		prev = idx
	}
	c.SetTip(prev)
	return c
}

// signedCommitment builds a non-null commitment for the regtest quorum
// type with the given number of signers.
func signedCommitment(quorumHash util.Hash, signers int) *tx.FinalCommitment {
	fc := tx.NewFinalCommitment(uint8(consensus.LLMQ5_60), quorumHash, 5)
	for i := 0; i < signers; i++ {
		fc.Signers[i] = true
		fc.ValidMembers[i] = true
	}
	fc.QuorumVvecHash[0] = 0x01
	return fc
}

func commitmentBlock(t *testing.T, fc *tx.FinalCommitment, height int32) *block.Block {
	t.Helper()
	payload := &tx.QcTxPayload{Version: tx.QcTxVersion, Height: height, Commitment: *fc}
	raw, err := payload.Serialize()
	require.NoError(t, err)
	qcTx := tx.NewSpecialTx(0, tx.TxTypeQuorumCommitment)
	qcTx.SetExtraPayload(raw)
	return &block.Block{Txs: []*tx.Tx{qcTx}}
}

func TestAddMinableCommitment(t *testing.T) {
	r := NewCommitmentRegistry(&chainparams.RegressionNetParams)
	quorumHash := util.Hash{0x01}

	assert.False(t, r.AddMinableCommitment(nil))

	// Null commitments are mined directly, never registered.
	null := tx.NewFinalCommitment(uint8(consensus.LLMQ5_60), quorumHash, 5)
	assert.False(t, r.AddMinableCommitment(null))

	// Unknown quorum type.
	stray := signedCommitment(quorumHash, 3)
	stray.LLMQType = 42
	assert.False(t, r.AddMinableCommitment(stray))

	assert.True(t, r.AddMinableCommitment(signedCommitment(quorumHash, 3)))

	// Same signer count does not replace the pending commitment.
	assert.False(t, r.AddMinableCommitment(signedCommitment(quorumHash, 3)))

	// More signers wins.
	assert.True(t, r.AddMinableCommitment(signedCommitment(quorumHash, 4)))
}

func TestGetMinableCommitment(t *testing.T) {
	params := &chainparams.RegressionNetParams
	c := installChain(t, params, 40)
	r := NewCommitmentRegistry(params)

	// llmq_5_60 on regtest: DKG interval 24, mining window 10..18.
	const llmqType = consensus.LLMQ5_60

	_, ok := r.GetMinableCommitment(llmqType, 29) // phase 5, before the window
	assert.False(t, ok)
	_, ok = r.GetMinableCommitment(llmqType, 43) // phase 19, after the window
	assert.False(t, ok)
	_, ok = r.GetMinableCommitment(consensus.LLMQType(42), 34)
	assert.False(t, ok)

	// Inside the window with nothing pending the template still has to
	// carry a commitment, a null one.
	qcTx, ok := r.GetMinableCommitment(llmqType, 34) // phase 10, session base 24
	require.True(t, ok)
	assert.Equal(t, tx.TxTypeQuorumCommitment, qcTx.GetTxType())
	payload, err := tx.GetQcTxPayload(qcTx)
	require.NoError(t, err)
	assert.Equal(t, int32(34), payload.Height)
	assert.True(t, payload.Commitment.IsNull())
	assert.Equal(t, *c.GetIndex(24).GetBlockHash(), payload.Commitment.QuorumHash)

	// A pending commitment for the session replaces the null one.
	quorumHash := *c.GetIndex(24).GetBlockHash()
	require.True(t, r.AddMinableCommitment(signedCommitment(quorumHash, 3)))
	qcTx, ok = r.GetMinableCommitment(llmqType, 34)
	require.True(t, ok)
	payload, err = tx.GetQcTxPayload(qcTx)
	require.NoError(t, err)
	assert.Equal(t, 3, payload.Commitment.CountSigners())
	assert.Equal(t, quorumHash, payload.Commitment.QuorumHash)

	// Once mined the session is done for the rest of the window.
	r.ProcessBlock(commitmentBlock(t, signedCommitment(quorumHash, 3), 34), 34)
	assert.True(t, r.HasMinedCommitment(llmqType, quorumHash))
	_, ok = r.GetMinableCommitment(llmqType, 35)
	assert.False(t, ok)
}

func TestProcessBlockSkipsNullCommitments(t *testing.T) {
	params := &chainparams.RegressionNetParams
	r := NewCommitmentRegistry(params)

	quorumHash := util.Hash{0x02}
	null := tx.NewFinalCommitment(uint8(consensus.LLMQ5_60), quorumHash, 5)
	r.ProcessBlock(commitmentBlock(t, null, 34), 34)
	assert.False(t, r.HasMinedCommitment(consensus.LLMQ5_60, quorumHash))
}

func TestActiveCommitmentHashes(t *testing.T) {
	params := &chainparams.RegressionNetParams
	r := NewCommitmentRegistry(params)

	older := signedCommitment(util.Hash{0x0a}, 3)
	newer := signedCommitment(util.Hash{0x0b}, 3)
	r.ProcessBlock(commitmentBlock(t, newer, 58), 58)
	r.ProcessBlock(commitmentBlock(t, older, 34), 34)

	// A different quorum type never shows up in the list.
	other := signedCommitment(util.Hash{0x0c}, 3)
	other.LLMQType = uint8(consensus.LLMQ50_60)
	r.ProcessBlock(commitmentBlock(t, other, 58), 58)

	hashes := r.ActiveCommitmentHashes(consensus.LLMQ5_60)
	require.Len(t, hashes, 2)
	assert.Equal(t, older.Hash(), hashes[0])
	assert.Equal(t, newer.Hash(), hashes[1])

	// Same height ties break on the quorum hash.
	r2 := NewCommitmentRegistry(params)
	a := signedCommitment(util.Hash{0x01}, 3)
	b := signedCommitment(util.Hash{0x02}, 3)
	r2.ProcessBlock(commitmentBlock(t, b, 34), 34)
	r2.ProcessBlock(commitmentBlock(t, a, 34), 34)
	hashes = r2.ActiveCommitmentHashes(consensus.LLMQ5_60)
	require.Len(t, hashes, 2)
	assert.Equal(t, a.Hash(), hashes[0])
	assert.Equal(t, b.Hash(), hashes[1])
}

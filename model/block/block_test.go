package block

import (
	"bytes"
	"testing"

	"github.com/cosanta/cosanta-core/crypto"
	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/model/consensus"
	"github.com/cosanta/cosanta-core/model/outpoint"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/model/txin"
	"github.com/cosanta/cosanta-core/model/txout"
	"github.com/cosanta/cosanta-core/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coinbaseTx(height int32) *tx.Tx {
	scriptSig := script.NewEmptyScript()
	_ = scriptSig.PushInt64(int64(height))
	coinbase := tx.NewTx(0, tx.TxVersion)
	coinbase.AddTxIn(txin.NewTxIn(outpoint.NewDefaultOutPoint(), scriptSig, 0xffffffff))
	coinbase.AddTxOut(txout.NewTxOut(50*100000000, script.NewEmptyScript()))
	return coinbase
}

func TestBlockSerializeRoundTrip(t *testing.T) {
	bl := NewBlock()
	bl.Header = *powHeader()
	bl.Txs = []*tx.Tx{coinbaseTx(12)}

	var buf bytes.Buffer
	require.NoError(t, bl.Serialize(&buf))
	assert.Equal(t, bl.SerializeSize(), uint32(buf.Len()))

	decoded := NewBlock()
	require.NoError(t, decoded.Unserialize(&buf))
	assert.Equal(t, bl.GetHash(), decoded.GetHash())
	require.Len(t, decoded.Txs, 1)
	assert.Equal(t, bl.Txs[0].GetHash(), decoded.Txs[0].GetHash())
}

func TestBlockSlots(t *testing.T) {
	bl := NewBlock()
	assert.Nil(t, bl.CoinBase())
	assert.Nil(t, bl.Stake())
	assert.False(t, bl.HasCoinBase())

	bl.Header = *powHeader()
	bl.Txs = []*tx.Tx{coinbaseTx(1)}
	assert.True(t, bl.HasCoinBase())
	assert.Nil(t, bl.Stake(), "PoW block has no stake slot")

	bl.Header.Version |= PoSBit
	bl.Txs = append(bl.Txs, coinbaseTx(1))
	require.NotNil(t, bl.Stake())
	assert.Equal(t, bl.Txs[StakeIndex], bl.Stake())
}

func TestBlockHashMatchesHeader(t *testing.T) {
	bl := NewBlock()
	bl.Header = *posHeader()
	hdr := bl.GetBlockHeader()
	assert.Equal(t, hdr.GetHash(), bl.GetHash())
	assert.Equal(t, util.Hash256Size, len(bl.GetHash()))
}

var stakeTestKey = crypto.PrivateKeyFromBytes([]byte{
	0x4a, 0x2e, 0x3f, 0x10, 0xcd, 0x8b, 0x57, 0xf2,
	0x1b, 0x6a, 0x95, 0x03, 0xe7, 0x44, 0x8c, 0xd9,
	0x2f, 0x71, 0x08, 0xaf, 0x63, 0x5e, 0xbb, 0x0c,
	0x99, 0x12, 0xd4, 0x7c, 0x1a, 0xc0, 0x55, 0xee,
})

// signedStakeBlock builds a minimal PoS block whose coinbase and
// coinstake both pay the signing key, signed over the header hash.
func signedStakeBlock() *Block {
	signerScript := script.NewScriptFromPubKeyHash(stakeTestKey.PubKey().ToHash160())

	coinbase := coinbaseTx(200)
	coinbase.GetTxOut(0).SetScriptPubKey(signerScript)

	kernel := outpoint.NewOutPoint(
		*util.HashFromString("47ed8e79eab55a4b45d8a04b77cba8f9a28b3b31c3ea516f16861b01f1f81c9f"), 3)
	stake := tx.NewTx(0, tx.TxVersion)
	stake.AddTxIn(txin.NewTxIn(kernel, script.NewEmptyScript(), script.SequenceFinal))
	stake.AddTxOut(txout.NewTxOut(consensus.MinStakeAmount, signerScript))
	stake.AddTxOut(txout.NewTxOut(consensus.MinStakeAmount/2, signerScript))

	bl := NewBlock()
	bl.Header = *powHeader()
	bl.Header.Version |= PoSV2Bits
	bl.Header.StakeHash = kernel.Hash
	bl.Header.StakeN = kernel.Index
	bl.Txs = []*tx.Tx{coinbase, stake}
	bl.Header.Sign(stakeTestKey)
	return bl
}

func TestCheckStake(t *testing.T) {
	bl := signedStakeBlock()
	require.NoError(t, bl.CheckStake())

	recovered := bl.Header.RecoverStakePubKey()
	require.NotNil(t, recovered)
	assert.True(t, recovered.IsEqual(stakeTestKey.PubKey()))
}

func TestCheckStakeIgnoresPowBlocks(t *testing.T) {
	bl := NewBlock()
	bl.Header = *powHeader()
	bl.Txs = []*tx.Tx{coinbaseTx(1)}
	assert.NoError(t, bl.CheckStake())
	assert.Nil(t, bl.Header.RecoverStakePubKey())
}

func TestCheckStakeRejects(t *testing.T) {
	otherKey := crypto.PrivateKeyFromBytes(bytes.Repeat([]byte{0x77}, 32))
	otherScript := script.NewScriptFromPubKeyHash(otherKey.PubKey().ToHash160())

	tests := []struct {
		name   string
		mutate func(bl *Block)
		code   errcode.ChainErr
	}{
		{"missing coinstake", func(bl *Block) {
			bl.Txs = bl.Txs[:1]
		}, errcode.ErrorBadStakeKernel},
		{"unsigned header", func(bl *Block) {
			bl.Header.BlockSig = nil
		}, errcode.ErrorBadBlockSignature},
		{"truncated signature", func(bl *Block) {
			bl.Header.BlockSig = bl.Header.BlockSig[:32]
		}, errcode.ErrorBadBlockSignature},
		{"kernel mismatch", func(bl *Block) {
			bl.Txs[StakeIndex].GetTxIn(0).PreviousOutPoint.Index++
		}, errcode.ErrorBadStakeKernel},
		{"coinbase pays another key", func(bl *Block) {
			bl.Txs[CoinBaseIndex].GetTxOut(0).SetScriptPubKey(otherScript)
		}, errcode.ErrorBadBlockSignature},
		{"coinstake pays another key", func(bl *Block) {
			bl.Txs[StakeIndex].GetTxOut(1).SetScriptPubKey(otherScript)
		}, errcode.ErrorBadStakeKernel},
		{"stake below minimum", func(bl *Block) {
			bl.Txs[StakeIndex].GetTxOut(0).SetValue(consensus.MinStakeAmount - 1)
			bl.Txs[StakeIndex].GetTxOut(1).SetValue(0)
		}, errcode.ErrorBadStakeKernel},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bl := signedStakeBlock()
			test.mutate(bl)
			err := bl.CheckStake()
			require.Error(t, err)
			assert.True(t, errcode.IsErrorCode(err, test.code), "got %v", err)
		})
	}
}

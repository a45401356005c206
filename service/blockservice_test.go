package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/logic/lmerkleroot"
	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/chain"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/model/mempool"
	"github.com/cosanta/cosanta-core/model/outpoint"
	"github.com/cosanta/cosanta-core/model/pow"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/model/txin"
	"github.com/cosanta/cosanta-core/model/txout"
	"github.com/cosanta/cosanta-core/model/versionbits"
	"github.com/cosanta/cosanta-core/util"
	"github.com/cosanta/cosanta-core/util/amount"
)

func useRegTestParams(t *testing.T) *chainparams.Params {
	t.Helper()
	old := chainparams.ActiveNetParams
	chainparams.ActiveNetParams = &chainparams.RegressionNetParams
	t.Cleanup(func() {
		chainparams.ActiveNetParams = old
	})
	return chainparams.ActiveNetParams
}

func newTestChain(t *testing.T, params *chainparams.Params) *chain.Chain {
	t.Helper()
	c := chain.NewChain(params)
	chain.SetInstance(c)
	versionbits.VBCache.Clear()
	mempool.InitMempool()
	return c
}

func testCoinbase(t *testing.T, height int32) *tx.Tx {
	t.Helper()
	scriptSig := script.NewEmptyScript()
	require.NoError(t, scriptSig.PushScriptNum(script.NewScriptNum(int64(height))))
	require.NoError(t, scriptSig.PushInt64(0))

	payout := script.NewScriptFromPubKeyHash(bytes.Repeat([]byte{0x55}, 20))
	coinbase := tx.NewTx(0, tx.TxVersion)
	coinbase.AddTxIn(txin.NewTxIn(outpoint.NewDefaultOutPoint(), scriptSig, script.SequenceFinal))
	coinbase.AddTxOut(txout.NewTxOut(500*amount.COIN, payout))
	return coinbase
}

func spendTx(prevByte byte) *tx.Tx {
	prevHash := util.Hash{}
	prevHash[0] = prevByte
	payout := script.NewScriptFromPubKeyHash(bytes.Repeat([]byte{0x55}, 20))
	txn := tx.NewTx(0, tx.TxVersion)
	txn.AddTxIn(txin.NewTxIn(outpoint.NewOutPoint(prevHash, 0), script.NewEmptyScript(), script.SequenceFinal))
	txn.AddTxOut(txout.NewTxOut(10*amount.COIN, payout))
	return txn
}

func solveHeader(t *testing.T, bh *block.BlockHeader) {
	t.Helper()
	params := chainparams.ActiveNetParams
	p := pow.Pow{}
	for nonce := uint32(0); nonce < 1<<20; nonce++ {
		bh.Nonce = nonce
		hash := bh.GetHash()
		if p.CheckProofOfWork(&hash, bh.Bits, params) {
			return
		}
	}
	t.Fatal("no nonce satisfies the test difficulty")
}

func buildBlock(t *testing.T, prev *blockindex.BlockIndex, blockTime uint32, extra ...*tx.Tx) *block.Block {
	t.Helper()

	height := int32(0)
	prevHash := util.Hash{}
	if prev != nil {
		height = prev.Height + 1
		prevHash = prev.BlockHash
	}

	bl := block.NewBlock()
	bl.Txs = append(bl.Txs, testCoinbase(t, height))
	bl.Txs = append(bl.Txs, extra...)

	bl.Header.Version = 4
	bl.Header.HashPrevBlock = prevHash
	bl.Header.Time = blockTime
	bl.Header.Bits = chainparams.ActiveNetParams.PowLimitBits

	mutated := false
	bl.Header.MerkleRoot = lmerkleroot.BlockMerkleRoot(bl.Txs, &mutated)
	solveHeader(t, &bl.Header)
	return bl
}

func installGenesis(t *testing.T, c *chain.Chain, blockTime uint32) *blockindex.BlockIndex {
	t.Helper()

	gen := buildBlock(t, nil, blockTime)
	idx := blockindex.NewBlockIndex(&gen.Header)
	idx.TxCount = len(gen.Txs)
	require.NoError(t, c.AddToIndexMap(idx))
	idx.AddStatus(blockindex.StatusDataStored)
	idx.RaiseValidity(blockindex.StatusAllValid)
	c.SetTip(idx)
	return idx
}

func testBaseTime() uint32 {
	return uint32(util.GetAdjustedTimeSec() - 600)
}

func TestProcessNewBlockExtendsTip(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	confirmed := spendTx(0xa1)
	pool := mempool.GetInstance()
	require.NoError(t, pool.AddTx(mempool.NewTxEntry(confirmed, 1000, 0, 1, 1, mempool.LockPoints{}, false)))

	bl := buildBlock(t, genesis, genTime+60, confirmed)
	accepted, isNew, err := ProcessNewBlock(bl, true)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.True(t, isNew)

	tip := c.Tip()
	require.NotNil(t, tip)
	assert.Equal(t, bl.GetHash(), tip.BlockHash)
	assert.True(t, tip.IsValid())
	assert.Equal(t, 2, tip.TxCount)

	// Confirmed transactions left the pool and longpollers woke up.
	assert.Equal(t, 0, pool.Size())
	assert.Equal(t, bl.GetHash(), c.WaitForBlockChange(util.Hash{}, time.Second))
}

func TestProcessNewBlockDuplicate(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	bl := buildBlock(t, genesis, genTime+60)
	accepted, isNew, err := ProcessNewBlock(bl, true)
	require.NoError(t, err)
	require.True(t, accepted)
	require.True(t, isNew)

	// Resubmitting the connected block is quiet and changes nothing.
	accepted, isNew, err = ProcessNewBlock(bl, true)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.False(t, isNew)
	assert.Equal(t, bl.GetHash(), c.Tip().BlockHash)
}

func TestProcessNewBlockKeepsSideChain(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	first := buildBlock(t, genesis, genTime+60)
	_, _, err := ProcessNewBlock(first, true)
	require.NoError(t, err)
	tip := c.Tip()

	sibling := buildBlock(t, genesis, genTime+90)
	accepted, isNew, err := ProcessNewBlock(sibling, true)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.True(t, isNew)
	assert.Equal(t, tip, c.Tip())

	sibIdx := c.FindBlockIndex(sibling.GetHash())
	require.NotNil(t, sibIdx)
	assert.True(t, sibIdx.HasData())
	assert.False(t, c.Contains(sibIdx))
}

func TestProcessNewBlockRejectsBadBlock(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	bad := buildBlock(t, genesis, genTime+60)
	bad.Header.MerkleRoot[5] ^= 0x3c
	solveHeader(t, &bad.Header)

	accepted, isNew, err := ProcessNewBlock(bad, true)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBadTxnMrklRoot), "got %v", err)
	assert.False(t, accepted)
	assert.False(t, isNew)

	// The early check keeps garbage out of the index entirely.
	assert.Nil(t, c.FindBlockIndex(bad.GetHash()))
	assert.Equal(t, genesis, c.Tip())
}

func TestProcessNewBlockWithoutForce(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	first := buildBlock(t, genesis, genTime+60)
	_, _, err := ProcessNewBlock(first, true)
	require.NoError(t, err)

	// An unrequested sibling with no work advantage is turned away.
	sibling := buildBlock(t, genesis, genTime+90)
	accepted, isNew, err := ProcessNewBlock(sibling, false)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBlockNotOnTip), "got %v", err)
	assert.False(t, accepted)
	assert.False(t, isNew)

	// The header was still indexed, only the body was refused.
	sibIdx := c.FindBlockIndex(sibling.GetHash())
	require.NotNil(t, sibIdx)
	assert.False(t, sibIdx.HasData())
}

package lblock

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosanta/cosanta-core/crypto"
	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/logic/lmerkleroot"
	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/chain"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/model/consensus"
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

var blockTestKey = crypto.PrivateKeyFromBytes([]byte{
	0x1a, 0x9f, 0x4b, 0x31, 0x07, 0x5c, 0xed, 0x12,
	0x40, 0x8e, 0x6b, 0x22, 0x59, 0xd4, 0x1f, 0x83,
	0x77, 0x0a, 0x91, 0x5e, 0x2c, 0x48, 0xb3, 0x06,
	0xfd, 0x13, 0x60, 0xa7, 0x3b, 0xce, 0x84, 0x29,
})

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
	return c
}

func payoutScript() *script.Script {
	return script.NewScriptFromPubKeyHash(bytes.Repeat([]byte{0x11}, 20))
}

func testCoinbase(t *testing.T, height int32) *tx.Tx {
	t.Helper()
	scriptSig := script.NewEmptyScript()
	require.NoError(t, scriptSig.PushScriptNum(script.NewScriptNum(int64(height))))
	require.NoError(t, scriptSig.PushInt64(0))

	coinbase := tx.NewTx(0, tx.TxVersion)
	coinbase.AddTxIn(txin.NewTxIn(outpoint.NewDefaultOutPoint(), scriptSig, script.SequenceFinal))
	coinbase.AddTxOut(txout.NewTxOut(500*amount.COIN, payoutScript()))
	return coinbase
}

func spendTx(prevByte byte, lockTime uint32, sequence uint32) *tx.Tx {
	prevHash := util.Hash{}
	prevHash[0] = prevByte
	txn := tx.NewTx(lockTime, tx.TxVersion)
	txn.AddTxIn(txin.NewTxIn(outpoint.NewOutPoint(prevHash, 0), script.NewEmptyScript(), sequence))
	txn.AddTxOut(txout.NewTxOut(10*amount.COIN, payoutScript()))
	return txn
}

// solveHeader grinds the nonce until the header satisfies its own
// compact target. Regtest difficulty makes this a couple of tries.
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

// buildBlock assembles and solves a work block extending prev.
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

// buildStakeBlock assembles a signed stake block extending prev.
func buildStakeBlock(t *testing.T, prev *blockindex.BlockIndex, blockTime uint32) *block.Block {
	t.Helper()

	signer := script.NewScriptFromPubKeyHash(blockTestKey.PubKey().ToHash160())
	height := prev.Height + 1

	scriptSig := script.NewEmptyScript()
	require.NoError(t, scriptSig.PushScriptNum(script.NewScriptNum(int64(height))))
	require.NoError(t, scriptSig.PushInt64(0))
	coinbase := tx.NewTx(0, tx.TxVersion)
	coinbase.AddTxIn(txin.NewTxIn(outpoint.NewDefaultOutPoint(), scriptSig, script.SequenceFinal))
	coinbase.AddTxOut(txout.NewTxOut(0, signer))

	kernelHash := util.Hash{}
	kernelHash[31] = 0x42
	kernel := outpoint.NewOutPoint(kernelHash, 1)
	stake := tx.NewTx(0, tx.TxVersion)
	stake.AddTxIn(txin.NewTxIn(kernel, script.NewEmptyScript(), script.SequenceFinal))
	stake.AddTxOut(txout.NewTxOut(consensus.MinStakeAmount, signer))

	bl := block.NewBlock()
	bl.Txs = []*tx.Tx{coinbase, stake}
	bl.Header.Version = 4 | block.PoSV2Bits
	bl.Header.HashPrevBlock = prev.BlockHash
	bl.Header.Time = blockTime
	bl.Header.Bits = chainparams.ActiveNetParams.PowLimitBits
	bl.Header.StakeHash = kernel.Hash
	bl.Header.StakeN = kernel.Index

	mutated := false
	bl.Header.MerkleRoot = lmerkleroot.BlockMerkleRoot(bl.Txs, &mutated)
	require.NoError(t, bl.Header.Sign(blockTestKey))
	return bl
}

// installGenesis wires a synthetic genesis block straight into the
// index, the way node startup primes an empty chain.
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

func TestCheckBlockHeaderWork(t *testing.T) {
	useRegTestParams(t)

	bh := block.NewBlockHeader()
	bh.Version = 4
	bh.Time = testBaseTime()
	bh.Bits = chainparams.RegressionNetParams.PowLimitBits
	solveHeader(t, bh)
	assert.NoError(t, CheckBlockHeader(bh))

	// A target above the limit never verifies, whatever the hash.
	bh.Bits = 0x21008000
	err := CheckBlockHeader(bh)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorPowCheckErr), "got %v", err)
}

func TestCheckBlockHeaderStake(t *testing.T) {
	useRegTestParams(t)

	bh := block.NewBlockHeader()
	bh.Version = 4 | block.PoSV2Bits
	bh.Time = testBaseTime()
	bh.Bits = chainparams.RegressionNetParams.PowLimitBits

	err := CheckBlockHeader(bh)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBadStakeKernel), "got %v", err)

	bh.StakeHash[0] = 0x99
	err = CheckBlockHeader(bh)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBadBlockSignature), "got %v", err)

	require.NoError(t, bh.Sign(blockTestKey))
	assert.NoError(t, CheckBlockHeader(bh))
}

func TestContextualCheckBlockHeader(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)
	adjustTime := util.GetAdjustedTimeSec()

	good := buildBlock(t, genesis, genTime+60)
	assert.NoError(t, ContextualCheckBlockHeader(&good.Header, genesis, adjustTime))

	badBits := buildBlock(t, genesis, genTime+60)
	badBits.Header.Bits = 0x207ffffe
	solveHeader(t, &badBits.Header)
	err := ContextualCheckBlockHeader(&badBits.Header, genesis, adjustTime)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBadDiffBits), "got %v", err)

	tooOld := buildBlock(t, genesis, genTime)
	err = ContextualCheckBlockHeader(&tooOld.Header, genesis, adjustTime)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBlockTimeTooOld), "got %v", err)

	tooNew := buildBlock(t, genesis, uint32(adjustTime+maxFutureBlockTime+100))
	err = ContextualCheckBlockHeader(&tooNew.Header, genesis, adjustTime)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBlockTimeTooNew), "got %v", err)
}

func TestContextualCheckBlockHeaderVersionFloor(t *testing.T) {
	params := useRegTestParams(t)

	// A lone parent high enough for every supermajority floor.
	prevHeader := block.NewBlockHeader()
	prevHeader.Version = 4
	prevHeader.Time = testBaseTime()
	prevHeader.Bits = params.PowLimitBits
	prev := blockindex.NewBlockIndex(prevHeader)
	prev.Height = 199

	bh := block.NewBlockHeader()
	bh.Version = 1
	bh.HashPrevBlock = prev.BlockHash
	bh.Time = prevHeader.Time + 60
	bh.Bits = params.PowLimitBits

	err := ContextualCheckBlockHeader(bh, prev, util.GetAdjustedTimeSec())
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBadVersionBits), "got %v", err)

	bh.Version = 4
	assert.NoError(t, ContextualCheckBlockHeader(bh, prev, util.GetAdjustedTimeSec()))
}

func TestContextualCheckBlockHeaderProofKind(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)
	adjustTime := util.GetAdjustedTimeSec()

	// Stake before the activation height is refused.
	stake := buildStakeBlock(t, genesis, genTime+60)
	err := ContextualCheckBlockHeader(&stake.Header, genesis, adjustTime)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorPosNotActive), "got %v", err)

	// Work from the activation height on is refused.
	posParams := chainparams.RegressionNetParams
	posParams.PoSStartHeight = 1
	chainparams.ActiveNetParams = &posParams

	work := buildBlock(t, genesis, genTime+60)
	err = ContextualCheckBlockHeader(&work.Header, genesis, adjustTime)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorPowEnded), "got %v", err)

	assert.NoError(t, ContextualCheckBlockHeader(&stake.Header, genesis, adjustTime))
}

func TestCheckBlock(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	bl := buildBlock(t, genesis, genTime+60, spendTx(0xa1, 0, script.SequenceFinal))
	assert.NoError(t, CheckBlock(bl, true, true))
	assert.True(t, bl.Checked)

	// A mangled body is shadowed by the memoized pass until the flag is
	// dropped.
	bl.Txs = bl.Txs[:1]
	assert.NoError(t, CheckBlock(bl, true, true))
	bl.Checked = false
	err := CheckBlock(bl, true, true)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBadTxnMrklRoot), "got %v", err)
}

func TestCheckBlockBadMerkleRoot(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	bl := buildBlock(t, genesis, genTime+60)
	bl.Header.MerkleRoot[3] ^= 0xff
	solveHeader(t, &bl.Header)

	err := CheckBlock(bl, true, true)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBadTxnMrklRoot), "got %v", err)
	assert.False(t, bl.Checked)
}

func TestCheckBlockMutatedTxSequence(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	// Duplicating the last transaction of an odd block yields the same
	// root as the honest block while invalidating it (CVE-2012-2459).
	dup := spendTx(0xb2, 0, script.SequenceFinal)
	bl := buildBlock(t, genesis, genTime+60, spendTx(0xb1, 0, script.SequenceFinal), dup)
	bl.Txs = append(bl.Txs, dup)
	mutated := false
	bl.Header.MerkleRoot = lmerkleroot.BlockMerkleRoot(bl.Txs, &mutated)
	require.True(t, mutated)
	solveHeader(t, &bl.Header)

	err := CheckBlock(bl, true, true)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorbadTxnsDuplicate), "got %v", err)
}

func TestCheckBlockWithoutTransactions(t *testing.T) {
	useRegTestParams(t)

	bl := block.NewBlock()
	bl.Header.Version = 4
	bl.Header.Time = testBaseTime()
	bl.Header.Bits = chainparams.RegressionNetParams.PowLimitBits
	mutated := false
	bl.Header.MerkleRoot = lmerkleroot.BlockMerkleRoot(bl.Txs, &mutated)
	solveHeader(t, &bl.Header)

	err := CheckBlock(bl, true, true)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBlockNotStartWithCoinBase), "got %v", err)
}

func TestCheckBlockSkipsProofWhenAsked(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	bl := buildBlock(t, genesis, genTime+60)
	bl.Header.Bits = 0x21008000 // would fail the proof check

	assert.NoError(t, CheckBlock(bl, false, true))
	assert.False(t, bl.Checked)
}

func TestCheckBlockStakeBinding(t *testing.T) {
	posParams := chainparams.RegressionNetParams
	posParams.PoSStartHeight = 1
	old := chainparams.ActiveNetParams
	chainparams.ActiveNetParams = &posParams
	t.Cleanup(func() { chainparams.ActiveNetParams = old })

	c := newTestChain(t, &posParams)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	bl := buildStakeBlock(t, genesis, genTime+60)
	assert.NoError(t, CheckBlock(bl, true, true))

	// Redirect the coinstake payout away from the signer.
	bad := buildStakeBlock(t, genesis, genTime+60)
	bad.Txs[1].GetTxOut(0).SetScriptPubKey(payoutScript())
	mutated := false
	bad.Header.MerkleRoot = lmerkleroot.BlockMerkleRoot(bad.Txs, &mutated)
	require.NoError(t, bad.Header.Sign(blockTestKey))
	err := CheckBlock(bad, true, true)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBadStakeKernel), "got %v", err)
}

func TestContextualCheckBlockFinality(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	// Time locked past the header time and not disarmed by sequences.
	locked := spendTx(0xc3, genTime+1000, 0)
	bl := buildBlock(t, genesis, genTime+60, locked)

	err := ContextualCheckBlock(bl, genesis)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorTxNonFinal), "got %v", err)

	// Final sequences disarm the lock time.
	disarmed := spendTx(0xc3, genTime+1000, script.SequenceFinal)
	bl2 := buildBlock(t, genesis, genTime+60, disarmed)
	assert.NoError(t, ContextualCheckBlock(bl2, genesis))
}

func TestAcceptBlockHeader(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	child := buildBlock(t, genesis, genTime+60)
	idx, err := AcceptBlockHeader(&child.Header)
	require.NoError(t, err)
	require.NotNil(t, idx)
	assert.Equal(t, int32(1), idx.Height)
	assert.Equal(t, genesis, idx.Prev)
	assert.Equal(t, 2, c.IndexCount())

	// Re-announcing is idempotent.
	again, err := AcceptBlockHeader(&child.Header)
	require.NoError(t, err)
	assert.Equal(t, idx, again)
	assert.Equal(t, 2, c.IndexCount())

	// An unknown parent is an orphan.
	orphan := buildBlock(t, genesis, genTime+60)
	orphan.Header.HashPrevBlock[5] ^= 0x77
	solveHeader(t, &orphan.Header)
	_, err = AcceptBlockHeader(&orphan.Header)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBlockHeaderNoParent), "got %v", err)

	// Children of an invalid block are refused outright.
	idx.AddStatus(blockindex.StatusFailed)
	grandchild := buildBlock(t, idx, genTime+120)
	_, err = AcceptBlockHeader(&grandchild.Header)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBadPrevBlock), "got %v", err)

	// So are re-announcements of the invalid block itself.
	_, err = AcceptBlockHeader(&child.Header)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBlockHeaderNoValid), "got %v", err)
}

func TestAcceptBlock(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	bl := buildBlock(t, genesis, genTime+60, spendTx(0xd4, 0, script.SequenceFinal))
	idx, fNew, err := AcceptBlock(bl, true)
	require.NoError(t, err)
	assert.True(t, fNew)
	assert.True(t, idx.HasData())
	assert.Equal(t, 2, idx.TxCount)

	// The same body again is a quiet duplicate.
	_, fNew, err = AcceptBlock(bl, true)
	require.NoError(t, err)
	assert.False(t, fNew)
}

func TestAcceptBlockRequiresMoreWork(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	first := buildBlock(t, genesis, genTime+60)
	idx, _, err := AcceptBlock(first, true)
	require.NoError(t, err)
	c.SetTip(idx)

	// A sibling at the same height carries no extra work, so it only
	// gets in when explicitly requested.
	sibling := buildBlock(t, genesis, genTime+90)
	_, fNew, err := AcceptBlock(sibling, false)
	assert.False(t, fNew)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBlockNotOnTip), "got %v", err)

	_, fNew, err = AcceptBlock(sibling, true)
	require.NoError(t, err)
	assert.True(t, fNew)
}

func TestAcceptBlockMarksFailures(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	bad := buildBlock(t, genesis, genTime+60)
	bad.Header.MerkleRoot[7] ^= 0x0f
	solveHeader(t, &bad.Header)

	idx, fNew, err := AcceptBlock(bad, true)
	assert.True(t, fNew)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBadTxnMrklRoot), "got %v", err)
	require.NotNil(t, idx)
	assert.True(t, idx.IsInvalid())

	// The poisoned entry now rejects the header path too.
	_, err = AcceptBlockHeader(&bad.Header)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBlockHeaderNoValid), "got %v", err)
}

func TestAcceptBlockContextualFailure(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	locked := spendTx(0xe5, genTime+1000, 0)
	bl := buildBlock(t, genesis, genTime+60, locked)

	idx, _, err := AcceptBlock(bl, true)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorTxNonFinal), "got %v", err)
	require.NotNil(t, idx)
	assert.True(t, idx.IsInvalid())
	assert.False(t, idx.HasData())
}

func TestTestBlockValidity(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	cand := buildBlock(t, genesis, genTime+60)
	assert.NoError(t, TestBlockValidity(genesis, cand, true, true))

	// Only candidates on the tip can be judged.
	stray := blockindex.NewBlockIndex(&cand.Header)
	err := TestBlockValidity(stray, cand, true, true)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBlockNotOnTip), "got %v", err)
	err = TestBlockValidity(nil, cand, true, true)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBlockNotOnTip), "got %v", err)

	badBits := buildBlock(t, genesis, genTime+60)
	badBits.Header.Bits = 0x207ffffe
	err = TestBlockValidity(genesis, badBits, false, false)
	assert.True(t, errcode.IsErrorCode(err, errcode.ErrorBadDiffBits), "got %v", err)
}

func TestTestBlockValiditySkipsProofForTemplates(t *testing.T) {
	params := useRegTestParams(t)
	c := newTestChain(t, params)
	genTime := testBaseTime()
	genesis := installGenesis(t, c, genTime)

	// An unsolved candidate, the shape a template has before mining.
	cand := block.NewBlock()
	cand.Txs = append(cand.Txs, testCoinbase(t, 1))
	cand.Header.Version = 4
	cand.Header.HashPrevBlock = genesis.BlockHash
	cand.Header.Time = genTime + 60
	cand.Header.Bits = params.PowLimitBits

	assert.NoError(t, TestBlockValidity(genesis, cand, false, false))
	assert.False(t, cand.Checked)
}

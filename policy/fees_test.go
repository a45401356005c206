package policy

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/boltdb/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosanta/cosanta-core/model/mempool"
	"github.com/cosanta/cosanta-core/model/opcodes"
	"github.com/cosanta/cosanta-core/model/outpoint"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/model/txin"
	"github.com/cosanta/cosanta-core/model/txout"
	"github.com/cosanta/cosanta-core/util"
	"github.com/cosanta/cosanta-core/util/amount"
)

func uniqueTx(seed byte, index uint32) *tx.Tx {
	prev := util.Hash{}
	prev[0] = seed
	prev[31] = 0x7f
	txn := tx.NewTx(0, tx.TxVersion)
	txn.AddTxIn(txin.NewTxIn(outpoint.NewOutPoint(prev, index),
		script.NewScriptRaw([]byte{opcodes.OP_TRUE}), script.SequenceFinal))
	txn.AddTxOut(txout.NewTxOut(amount.Amount(1000000), script.NewScriptRaw([]byte{opcodes.OP_TRUE})))
	return txn
}

func entryAt(seed byte, index uint32, height int32, feePerK int64) *mempool.TxEntry {
	txn := uniqueTx(seed, index)
	fee := amount.Amount(feePerK * int64(txn.SerializeSize()) / 1000)
	return mempool.NewTxEntry(txn, fee, 1626442320, height, 1, mempool.LockPoints{}, false)
}

// feedBlocks simulates nBlocks blocks each confirming count
// transactions paying feePerK within one block.
func feedBlocks(bpe *BlockPolicyEstimator, startHeight int32, nBlocks int, count int, feePerK int64) int32 {
	height := startHeight
	for b := 0; b < nBlocks; b++ {
		confirmed := make([]*mempool.TxEntry, 0, count)
		for i := 0; i < count; i++ {
			e := entryAt(byte(b), uint32(i), height, feePerK)
			bpe.ProcessTx(e)
			confirmed = append(confirmed, e)
		}
		height++
		bpe.ProcessBlock(height, confirmed)
	}
	return height
}

func TestEstimateFeeNoData(t *testing.T) {
	bpe := NewBlockPolicyEstimator()
	assert.Equal(t, util.FeeRate{}, bpe.EstimateFee(1))
	assert.Equal(t, util.FeeRate{}, bpe.EstimateFee(0))
	assert.Equal(t, util.FeeRate{}, bpe.EstimateFee(MaxBlockConfirms+1))

	rate, found := bpe.EstimateSmartFee(2)
	assert.Equal(t, util.FeeRate{}, rate)
	assert.Equal(t, 0, found)
}

func TestEstimateFeeConverges(t *testing.T) {
	bpe := NewBlockPolicyEstimator()
	feedBlocks(bpe, 0, 300, 5, 5000)

	got := bpe.EstimateFee(2)
	require.NotZero(t, got.SataoshisPerK)

	// The answer comes from a bucket average, so allow the bucket
	// spacing around the injected rate.
	assert.InEpsilon(t, 5000, float64(got.SataoshisPerK), FeeSpacing-1+0.01)

	smart, found := bpe.EstimateSmartFee(1)
	assert.NotZero(t, smart.SataoshisPerK)
	assert.GreaterOrEqual(t, found, 1)

	raw, ok := bpe.EstimateRawFee(2, 0.9)
	assert.True(t, ok)
	assert.NotZero(t, raw.SataoshisPerK)
}

func TestProcessTxSkipsStaleHeights(t *testing.T) {
	bpe := NewBlockPolicyEstimator()
	height := feedBlocks(bpe, 0, 5, 2, 5000)

	// An entry admitted below the best seen height is not tracked, so
	// confirming it later contributes nothing.
	stale := entryAt(0xEE, 0, height-3, 5000)
	bpe.ProcessTx(stale)
	bpe.mtx.Lock()
	_, tracked := bpe.trackedTxs[stale.Tx.GetHash()]
	bpe.mtx.Unlock()
	assert.False(t, tracked)
}

func TestRemoveTxForgetsPending(t *testing.T) {
	bpe := NewBlockPolicyEstimator()
	height := feedBlocks(bpe, 0, 2, 1, 5000)

	pending := entryAt(0xEF, 0, height, 5000)
	bpe.ProcessTx(pending)
	bpe.mtx.Lock()
	_, tracked := bpe.trackedTxs[pending.Tx.GetHash()]
	bpe.mtx.Unlock()
	require.True(t, tracked)

	bpe.RemoveTx(pending.Tx.GetHash())
	bpe.mtx.Lock()
	_, tracked = bpe.trackedTxs[pending.Tx.GetHash()]
	bpe.mtx.Unlock()
	assert.False(t, tracked)

	// Idempotent.
	bpe.RemoveTx(pending.Tx.GetHash())
}

func TestProcessBlockIgnoresReplays(t *testing.T) {
	bpe := NewBlockPolicyEstimator()
	height := feedBlocks(bpe, 0, 10, 3, 5000)

	before := bpe.EstimateFee(2)
	bpe.ProcessBlock(height-5, nil)
	assert.Equal(t, before, bpe.EstimateFee(2))
}

func TestSerializeRoundTrip(t *testing.T) {
	bpe := NewBlockPolicyEstimator()
	feedBlocks(bpe, 0, 300, 5, 5000)
	want := bpe.EstimateFee(2)
	require.NotZero(t, want.SataoshisPerK)

	var buf bytes.Buffer
	require.NoError(t, bpe.Serialize(&buf))

	restored := NewBlockPolicyEstimator()
	require.NoError(t, restored.Unserialize(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, want, restored.EstimateFee(2))
	assert.Equal(t, bpe.bestSeenHeight, restored.bestSeenHeight)
}

func TestUnserializeRejectsGarbage(t *testing.T) {
	bpe := NewBlockPolicyEstimator()
	err := bpe.Unserialize(bytes.NewReader([]byte{1, 2, 3}))
	assert.Error(t, err)
}

func TestBoltPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), feeEstimatesFile)
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	require.NoError(t, err)
	defer db.Close()

	bpe := NewBlockPolicyEstimator()
	feedBlocks(bpe, 0, 300, 5, 5000)
	want := bpe.EstimateFee(2)
	require.NoError(t, bpe.SaveTo(db))

	restored := NewBlockPolicyEstimator()
	require.NoError(t, restored.LoadFrom(db))
	assert.Equal(t, want, restored.EstimateFee(2))

	// A fresh database restores to an empty estimator without error.
	empty := NewBlockPolicyEstimator()
	db2, err := bolt.Open(filepath.Join(t.TempDir(), feeEstimatesFile), 0600,
		&bolt.Options{Timeout: time.Second})
	require.NoError(t, err)
	defer db2.Close()
	require.NoError(t, empty.LoadFrom(db2))
	assert.Equal(t, util.FeeRate{}, empty.EstimateFee(2))
}

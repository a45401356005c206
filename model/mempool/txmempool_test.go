package mempool

import (
	"sort"
	"testing"

	"github.com/cosanta/cosanta-core/model/opcodes"
	"github.com/cosanta/cosanta-core/model/outpoint"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/model/txin"
	"github.com/cosanta/cosanta-core/model/txout"
	"github.com/cosanta/cosanta-core/util"
	"github.com/cosanta/cosanta-core/util/amount"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spendableTx(locktime uint32, prevs ...outpoint.OutPoint) *tx.Tx {
	txn := tx.NewTx(locktime, tx.TxVersion)
	for i := range prevs {
		txn.AddTxIn(txin.NewTxIn(&prevs[i], script.NewScriptRaw([]byte{opcodes.OP_TRUE}), script.SequenceFinal))
	}
	txn.AddTxOut(txout.NewTxOut(amount.Amount(1000000), script.NewScriptRaw([]byte{opcodes.OP_TRUE})))
	return txn
}

func confirmedPoint(seed byte, index uint32) outpoint.OutPoint {
	hash := util.Hash{}
	hash[0] = seed
	hash[31] = 0x7f
	return *outpoint.NewOutPoint(hash, index)
}

func addEntry(t *testing.T, pool *TxMempool, txn *tx.Tx, fee amount.Amount) *TxEntry {
	entry := NewTxEntry(txn, fee, 1626442320, 100, 1, LockPoints{}, false)
	require.NoError(t, pool.AddTx(entry))
	return entry
}

// chainOfThree admits A <- B <- C where each child spends its parent.
func chainOfThree(t *testing.T, pool *TxMempool, feeA, feeB, feeC amount.Amount) (a, b, c *TxEntry) {
	txA := spendableTx(0, confirmedPoint(1, 0))
	a = addEntry(t, pool, txA, feeA)
	txB := spendableTx(0, *outpoint.NewOutPoint(txA.GetHash(), 0))
	b = addEntry(t, pool, txB, feeB)
	txC := spendableTx(0, *outpoint.NewOutPoint(txB.GetHash(), 0))
	c = addEntry(t, pool, txC, feeC)
	return a, b, c
}

func TestAddTxAggregates(t *testing.T) {
	pool := NewTxMempool()
	a, b, c := chainOfThree(t, pool, 1000, 5000, 10000)

	assert.Equal(t, 3, pool.Size())
	assert.Equal(t, uint64(a.TxSize+b.TxSize+c.TxSize), pool.GetPoolAllTxSize())
	assert.Equal(t, uint64(3), pool.TransactionsUpdated())

	assert.Equal(t, int64(3), a.SumCountWithDescendants)
	assert.Equal(t, a.TxSize+b.TxSize+c.TxSize, a.SumSizeWithDescendants)
	assert.Equal(t, amount.Amount(16000), a.SumFeeWithDescendants)
	assert.Equal(t, int64(1), a.SumCountWithAncestors)

	assert.Equal(t, int64(2), b.SumCountWithAncestors)
	assert.Equal(t, int64(2), b.SumCountWithDescendants)
	assert.Equal(t, amount.Amount(6000), b.SumFeeWithAncestors)
	assert.Equal(t, amount.Amount(15000), b.SumFeeWithDescendants)

	assert.Equal(t, int64(3), c.SumCountWithAncestors)
	assert.Equal(t, a.TxSize+b.TxSize+c.TxSize, c.SumSizeWithAncestors)
	assert.Equal(t, amount.Amount(16000), c.SumFeeWithAncestors)
	assert.Equal(t, int64(3), c.SumSigOpCountWithAncestors)

	pool.RLock()
	ancestors := pool.CalculateMemPoolAncestors(c.Handle())
	descendants := pool.CalculateDescendants(a.Handle())
	pool.RUnlock()
	assert.Len(t, ancestors, 2)
	assert.Contains(t, ancestors, a.Handle())
	assert.Contains(t, ancestors, b.Handle())
	assert.Len(t, descendants, 3)
}

func TestAddTxDuplicate(t *testing.T) {
	pool := NewTxMempool()
	txA := spendableTx(0, confirmedPoint(1, 0))
	addEntry(t, pool, txA, 1000)

	dup := NewTxEntry(txA, 1000, 1626442320, 100, 1, LockPoints{}, false)
	assert.Error(t, pool.AddTx(dup))
	assert.Equal(t, 1, pool.Size())
}

func TestAncestorScoreOrder(t *testing.T) {
	pool := NewTxMempool()

	// Child pays for parent: the package rate of both must place the
	// child above the mid-rate loner once aggregates are in.
	txParent := spendableTx(0, confirmedPoint(1, 0))
	parent := addEntry(t, pool, txParent, 0)
	txChild := spendableTx(0, *outpoint.NewOutPoint(txParent.GetHash(), 0))
	child := addEntry(t, pool, txChild, 100*amount.Amount(parent.TxSize))

	txLone := spendableTx(0, confirmedPoint(2, 0))
	lone := addEntry(t, pool, txLone, 10*amount.Amount(1))

	pool.RLock()
	order := pool.AncestorScoreOrder()
	pool.RUnlock()
	require.Len(t, order, 3)
	assert.Equal(t, child.Handle(), order[0])
	assert.Equal(t, lone.Handle(), order[1])
	assert.Equal(t, parent.Handle(), order[2])
}

func TestAncestorScoreTieByCountThenHash(t *testing.T) {
	pool := NewTxMempool()

	// Every fee below is 2 sat/byte of package size, so all packages
	// tie on rate exactly and the secondary keys decide.
	txParent := spendableTx(0, confirmedPoint(1, 0))
	parentSize := int64(txParent.SerializeSize())
	parent := addEntry(t, pool, txParent, amount.Amount(2*parentSize))

	txChild := spendableTx(0, *outpoint.NewOutPoint(txParent.GetHash(), 0))
	childSize := int64(txChild.SerializeSize())
	child := addEntry(t, pool, txChild, amount.Amount(2*childSize))

	txOne := spendableTx(1, confirmedPoint(2, 0))
	one := addEntry(t, pool, txOne, amount.Amount(2*int64(txOne.SerializeSize())))
	txTwo := spendableTx(2, confirmedPoint(3, 0))
	two := addEntry(t, pool, txTwo, amount.Amount(2*int64(txTwo.SerializeSize())))
	require.Equal(t, txOne.SerializeSize(), txTwo.SerializeSize())

	pool.RLock()
	order := pool.AncestorScoreOrder()
	pool.RUnlock()
	require.Len(t, order, 4)

	// The two-ancestor package wins the count tiebreak.
	assert.Equal(t, child.Handle(), order[0])

	// The remaining single-entry ties fall back to ascending hash.
	hashes := []util.Hash{txParent.GetHash(), txOne.GetHash(), txTwo.GetHash()}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i].Cmp(&hashes[j]) < 0 })
	pool.RLock()
	got := []util.Hash{
		pool.EntryByHandle(order[1]).Tx.GetHash(),
		pool.EntryByHandle(order[2]).Tx.GetHash(),
		pool.EntryByHandle(order[3]).Tx.GetHash(),
	}
	pool.RUnlock()
	assert.Equal(t, hashes, got)
	_ = parent
	_ = one
	_ = two
}

func TestRemoveForBlockUpdatesDescendants(t *testing.T) {
	pool := NewTxMempool()
	a, b, c := chainOfThree(t, pool, 1000, 5000, 10000)

	pool.RemoveForBlock([]*tx.Tx{a.Tx}, 101)

	assert.Equal(t, 2, pool.Size())
	assert.Nil(t, pool.FindTx(a.Tx.GetHash()))

	assert.Equal(t, int64(1), b.SumCountWithAncestors)
	assert.Equal(t, b.TxSize, b.SumSizeWithAncestors)
	assert.Equal(t, amount.Amount(5000), b.SumFeeWithAncestors)
	assert.Equal(t, int64(1), b.SumSigOpCountWithAncestors)

	assert.Equal(t, int64(2), c.SumCountWithAncestors)
	assert.Equal(t, b.TxSize+c.TxSize, c.SumSizeWithAncestors)
	assert.Equal(t, amount.Amount(15000), c.SumFeeWithAncestors)

	pool.RemoveForBlock([]*tx.Tx{b.Tx, c.Tx}, 102)
	assert.Equal(t, 0, pool.Size())
	assert.Equal(t, uint64(0), pool.GetPoolAllTxSize())
	pool.RLock()
	assert.Empty(t, pool.AncestorScoreOrder())
	pool.RUnlock()
}

func TestRemoveForBlockEvictsConflicts(t *testing.T) {
	pool := NewTxMempool()

	contested := confirmedPoint(9, 0)
	txA := spendableTx(0, contested)
	a := addEntry(t, pool, txA, 1000)
	txB := spendableTx(0, *outpoint.NewOutPoint(txA.GetHash(), 0))
	addEntry(t, pool, txB, 1000)

	// A different transaction spending the contested outpoint confirms.
	winner := spendableTx(7, contested)
	require.NotEqual(t, txA.GetHash(), winner.GetHash())
	pool.RemoveForBlock([]*tx.Tx{winner}, 101)

	assert.Equal(t, 0, pool.Size())
	assert.Nil(t, pool.FindTx(txA.GetHash()))
	assert.Nil(t, pool.FindTx(txB.GetHash()))
	assert.Equal(t, InvalidHandle, a.Handle())
}

func TestPrioritiseResidentTransaction(t *testing.T) {
	pool := NewTxMempool()
	a, b, c := chainOfThree(t, pool, 1000, 1000, 1000)
	before := pool.TransactionsUpdated()

	pool.PrioritiseTransaction(b.Tx.GetHash(), 100000)

	assert.Equal(t, amount.Amount(1000), b.TxFee)
	assert.Equal(t, amount.Amount(101000), b.ModFee)
	assert.Equal(t, amount.Amount(102000), b.SumFeeWithAncestors)
	assert.Equal(t, amount.Amount(102000), b.SumFeeWithDescendants)
	assert.Equal(t, amount.Amount(103000), c.SumFeeWithAncestors)
	assert.Equal(t, amount.Amount(103000), a.SumFeeWithDescendants)
	assert.Equal(t, amount.Amount(1000), a.SumFeeWithAncestors)
	assert.Greater(t, pool.TransactionsUpdated(), before)

	// The bumped package must outrank an ordinary competitor now.
	txLone := spendableTx(0, confirmedPoint(5, 0))
	lone := addEntry(t, pool, txLone, 2000)
	pool.RLock()
	order := pool.AncestorScoreOrder()
	pool.RUnlock()
	require.Len(t, order, 4)
	assert.Equal(t, b.Handle(), order[0])
	_ = lone
}

func TestPrioritiseBeforeAdmission(t *testing.T) {
	pool := NewTxMempool()
	txA := spendableTx(0, confirmedPoint(1, 0))
	pool.PrioritiseTransaction(txA.GetHash(), 50000)

	a := addEntry(t, pool, txA, 1000)
	assert.Equal(t, amount.Amount(1000), a.TxFee)
	assert.Equal(t, amount.Amount(51000), a.ModFee)
	assert.Equal(t, amount.Amount(51000), a.SumFeeWithAncestors)
	assert.Equal(t, amount.Amount(51000), a.SumFeeWithDescendants)

	// Confirmation clears the delta; re-admission pays plain fees.
	pool.RemoveForBlock([]*tx.Tx{txA}, 101)
	readded := NewTxEntry(txA, 1000, 1626442321, 101, 1, LockPoints{}, false)
	require.NoError(t, pool.AddTx(readded))
	assert.Equal(t, amount.Amount(1000), readded.ModFee)
}

func TestHandleReuse(t *testing.T) {
	pool := NewTxMempool()
	txA := spendableTx(0, confirmedPoint(1, 0))
	a := addEntry(t, pool, txA, 1000)
	txB := spendableTx(0, confirmedPoint(2, 0))
	b := addEntry(t, pool, txB, 1000)

	freed := a.Handle()
	pool.RemoveForBlock([]*tx.Tx{txA}, 101)
	assert.Equal(t, InvalidHandle, a.Handle())

	txC := spendableTx(0, confirmedPoint(3, 0))
	c := addEntry(t, pool, txC, 1000)
	assert.Equal(t, freed, c.Handle())

	pool.RLock()
	assert.Same(t, c, pool.EntryByHandle(c.Handle()))
	assert.Same(t, b, pool.EntryByHandle(b.Handle()))
	assert.Equal(t, c.Handle(), pool.FindHandle(txC.GetHash()))
	assert.Equal(t, InvalidHandle, pool.FindHandle(txA.GetHash()))
	pool.RUnlock()
}

type recordingEstimator struct {
	added     []util.Hash
	confirmed []util.Hash
	removed   []util.Hash
}

func (r *recordingEstimator) ProcessTx(entry *TxEntry) {
	r.added = append(r.added, entry.Tx.GetHash())
}

func (r *recordingEstimator) ProcessBlock(blockHeight int32, entries []*TxEntry) {
	for _, entry := range entries {
		r.confirmed = append(r.confirmed, entry.Tx.GetHash())
	}
}

func (r *recordingEstimator) RemoveTx(hash util.Hash) {
	r.removed = append(r.removed, hash)
}

func TestEstimatorFeed(t *testing.T) {
	pool := NewTxMempool()
	rec := &recordingEstimator{}
	pool.SetEstimator(rec)

	contested := confirmedPoint(9, 0)
	txA := spendableTx(0, contested)
	addEntry(t, pool, txA, 1000)
	txB := spendableTx(0, confirmedPoint(2, 0))
	addEntry(t, pool, txB, 1000)

	winner := spendableTx(7, contested)
	pool.RemoveForBlock([]*tx.Tx{winner, txB}, 101)

	// B confirmed, A lost a conflict: only A counts as evicted.
	assert.Equal(t, []util.Hash{txA.GetHash(), txB.GetHash()}, rec.added)
	assert.Equal(t, []util.Hash{txB.GetHash()}, rec.confirmed)
	assert.Equal(t, []util.Hash{txA.GetHash()}, rec.removed)
}

package mempool

import (
	"sync"

	"github.com/google/btree"

	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/model/outpoint"
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/util"
	"github.com/cosanta/cosanta-core/util/amount"
)

// Handle is the stable arena key of a pool-resident entry. A handle is
// valid from admission until removal; freed slots are reused for later
// admissions, so holding a Handle across pool writes is only safe for
// code that also holds the pool lock.
type Handle int32

const InvalidHandle Handle = -1

// FeeEstimator is the fee estimation surface the pool feeds as
// transactions arrive and confirm. policy.BlockPolicyEstimator
// satisfies it.
type FeeEstimator interface {
	ProcessTx(entry *TxEntry)
	ProcessBlock(blockHeight int32, entries []*TxEntry)
	RemoveTx(hash util.Hash)
}

// scoreItem is a frozen snapshot of an entry's ancestor aggregates.
// The pool removes and reinserts an item around every aggregate
// mutation, so the btree never holds a key that moved under it.
type scoreItem struct {
	sumFee   amount.Amount
	sumSize  int64
	sumCount int64
	hash     util.Hash
	handle   Handle
}

// Less orders worse packages before better ones: lower ancestor
// feerate first, then fewer ancestors, then the greater hash. Descend
// therefore yields the best package first and breaks full-rate ties by
// ascending hash.
func (s scoreItem) Less(than btree.Item) bool {
	t := than.(scoreItem)
	if c := util.CompareFeeFraction(int64(s.sumFee), s.sumSize, int64(t.sumFee), t.sumSize); c != 0 {
		return c < 0
	}
	if s.sumCount != t.sumCount {
		return s.sumCount < t.sumCount
	}
	return s.hash.Cmp(&t.hash) > 0
}

// TxMempool indexes the unconfirmed transactions a template can draw
// from. Entries live in a dense arena addressed by Handle; the pool
// owns the parent/child adjacency and keeps every package aggregate
// exact on admission, confirmation and prioritisation. The embedded
// lock is exported so a template build can pin the whole view for the
// duration of one assembly.
type TxMempool struct {
	sync.RWMutex

	entries   []*TxEntry
	parents   []map[Handle]struct{}
	children  []map[Handle]struct{}
	freeSlots []Handle

	byHash map[util.Hash]Handle

	// nextTx maps every outpoint spent by a resident transaction to
	// its spender, for conflict eviction on block connect.
	nextTx map[outpoint.OutPoint]Handle

	byAncestorScore *btree.BTree

	// mapDeltas outlives residency: a prioritisetransaction delta
	// keeps applying if the transaction enters the pool later.
	mapDeltas map[util.Hash]amount.Amount

	estimator FeeEstimator

	totalTxSize         uint64
	transactionsUpdated uint64
}

func NewTxMempool() *TxMempool {
	return &TxMempool{
		byHash:          make(map[util.Hash]Handle),
		nextTx:          make(map[outpoint.OutPoint]Handle),
		byAncestorScore: btree.New(32),
		mapDeltas:       make(map[util.Hash]amount.Amount),
	}
}

var gpool *TxMempool

func InitMempool() {
	gpool = NewTxMempool()
}

func GetInstance() *TxMempool {
	if gpool == nil {
		gpool = NewTxMempool()
	}
	return gpool
}

func (m *TxMempool) SetEstimator(estimator FeeEstimator) {
	m.Lock()
	m.estimator = estimator
	m.Unlock()
}

// AddTx admits an already validated transaction. Every input not found
// in the pool is treated as confirmed; resident parents are linked and
// the package aggregates on both sides of the new edges are updated.
// Admission policy (fee floors, replacement, eviction) belongs to the
// caller.
func (m *TxMempool) AddTx(entry *TxEntry) error {
	m.Lock()
	defer m.Unlock()

	hash := entry.Tx.GetHash()
	if _, ok := m.byHash[hash]; ok {
		return errcode.New(errcode.AlreadyHaveTx)
	}

	h := m.allocSlot(entry)
	entry.handle = h
	m.byHash[hash] = h

	if delta, ok := m.mapDeltas[hash]; ok && delta != 0 {
		entry.ModFee += delta
		entry.SumFeeWithAncestors += delta
		entry.SumFeeWithDescendants += delta
	}

	for _, preout := range entry.Tx.GetAllPreviousOut() {
		m.nextTx[preout] = h
		if ph, ok := m.byHash[preout.Hash]; ok {
			m.parents[h][ph] = struct{}{}
			m.children[ph][h] = struct{}{}
		}
	}

	for a := range m.CalculateMemPoolAncestors(h) {
		ae := m.entries[a]
		ae.SumCountWithDescendants++
		ae.SumSizeWithDescendants += entry.TxSize
		ae.SumFeeWithDescendants += entry.ModFee

		entry.SumCountWithAncestors++
		entry.SumSizeWithAncestors += ae.TxSize
		entry.SumFeeWithAncestors += ae.ModFee
		entry.SumSigOpCountWithAncestors += ae.SigOpCount
	}
	m.byAncestorScore.ReplaceOrInsert(m.scoreItemOf(entry))

	m.totalTxSize += uint64(entry.TxSize)
	m.transactionsUpdated++
	if m.estimator != nil {
		m.estimator.ProcessTx(entry)
	}
	return nil
}

// RemoveForBlock evicts the transactions confirmed by a connected
// block, feeds them to the fee estimator, and recursively drops any
// resident transaction that conflicts with a confirmed spend.
// Surviving descendants of confirmed entries have their ancestor
// aggregates reduced accordingly.
func (m *TxMempool) RemoveForBlock(txs []*tx.Tx, height int32) {
	m.Lock()
	defer m.Unlock()

	confirmed := make([]*TxEntry, 0, len(txs))
	for _, txn := range txs {
		if h, ok := m.byHash[txn.GetHash()]; ok {
			confirmed = append(confirmed, m.entries[h])
		}
	}
	if m.estimator != nil {
		m.estimator.ProcessBlock(height, confirmed)
	}

	for _, txn := range txs {
		hash := txn.GetHash()
		if h, ok := m.byHash[hash]; ok {
			m.removeStaged(map[Handle]struct{}{h: {}}, true, true)
		}
		m.removeConflicts(txn)
		delete(m.mapDeltas, hash)
	}
}

// PrioritiseTransaction accumulates a fee delta for a transaction. The
// delta sticks in mapDeltas whether or not the transaction is resident;
// a resident entry additionally propagates it through the ancestor fee
// sums of its descendants and the descendant fee sums of its ancestors.
func (m *TxMempool) PrioritiseTransaction(hash util.Hash, delta amount.Amount) {
	m.Lock()
	m.mapDeltas[hash] += delta
	if h, ok := m.byHash[hash]; ok {
		e := m.entries[h]
		m.byAncestorScore.Delete(m.scoreItemOf(e))
		e.ModFee += delta
		e.SumFeeWithAncestors += delta
		e.SumFeeWithDescendants += delta
		m.byAncestorScore.ReplaceOrInsert(m.scoreItemOf(e))

		for d := range m.CalculateDescendants(h) {
			if d == h {
				continue
			}
			de := m.entries[d]
			m.byAncestorScore.Delete(m.scoreItemOf(de))
			de.SumFeeWithAncestors += delta
			m.byAncestorScore.ReplaceOrInsert(m.scoreItemOf(de))
		}
		for a := range m.CalculateMemPoolAncestors(h) {
			m.entries[a].SumFeeWithDescendants += delta
		}
		m.transactionsUpdated++
	}
	m.Unlock()
	log.Info("PrioritiseTransaction: %s fee += %d", hash.String(), delta)
}

// CalculateMemPoolAncestors returns the in-pool ancestor closure of h,
// excluding h itself. Caller must hold at least the read lock.
func (m *TxMempool) CalculateMemPoolAncestors(h Handle) map[Handle]struct{} {
	ancestors := make(map[Handle]struct{})
	work := make([]Handle, 0, len(m.parents[h]))
	for p := range m.parents[h] {
		work = append(work, p)
	}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		if _, ok := ancestors[cur]; ok {
			continue
		}
		ancestors[cur] = struct{}{}
		for p := range m.parents[cur] {
			work = append(work, p)
		}
	}
	return ancestors
}

// CalculateDescendants returns the in-pool descendant closure of h,
// including h itself. Caller must hold at least the read lock.
func (m *TxMempool) CalculateDescendants(h Handle) map[Handle]struct{} {
	descendants := make(map[Handle]struct{})
	work := []Handle{h}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		if _, ok := descendants[cur]; ok {
			continue
		}
		descendants[cur] = struct{}{}
		for c := range m.children[cur] {
			work = append(work, c)
		}
	}
	return descendants
}

// AncestorScoreOrder returns the resident handles from the best
// ancestor package feerate down to the worst. Caller must hold at
// least the read lock for the order to stay coherent with the arena.
func (m *TxMempool) AncestorScoreOrder() []Handle {
	order := make([]Handle, 0, m.byAncestorScore.Len())
	m.byAncestorScore.Descend(func(i btree.Item) bool {
		order = append(order, i.(scoreItem).handle)
		return true
	})
	return order
}

// EntryByHandle resolves an arena slot. Caller must hold at least the
// read lock.
func (m *TxMempool) EntryByHandle(h Handle) *TxEntry {
	if h < 0 || int(h) >= len(m.entries) {
		return nil
	}
	return m.entries[h]
}

// FindHandle resolves a txid to its arena slot, or InvalidHandle.
// Caller must hold at least the read lock.
func (m *TxMempool) FindHandle(hash util.Hash) Handle {
	if h, ok := m.byHash[hash]; ok {
		return h
	}
	return InvalidHandle
}

func (m *TxMempool) FindTx(hash util.Hash) *TxEntry {
	m.RLock()
	defer m.RUnlock()
	if h, ok := m.byHash[hash]; ok {
		return m.entries[h]
	}
	return nil
}

func (m *TxMempool) Size() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.byHash)
}

func (m *TxMempool) GetPoolAllTxSize() uint64 {
	m.RLock()
	defer m.RUnlock()
	return m.totalTxSize
}

// TransactionsUpdated reports a counter bumped on every admission,
// removal and prioritisation. Long-polling template callers use it to
// detect that a cached template went stale.
func (m *TxMempool) TransactionsUpdated() uint64 {
	m.RLock()
	defer m.RUnlock()
	return m.transactionsUpdated
}

func (m *TxMempool) AddTransactionsUpdated(n uint64) {
	m.Lock()
	m.transactionsUpdated += n
	m.Unlock()
}

func (m *TxMempool) scoreItemOf(e *TxEntry) scoreItem {
	return scoreItem{
		sumFee:   e.SumFeeWithAncestors,
		sumSize:  e.SumSizeWithAncestors,
		sumCount: e.SumCountWithAncestors,
		hash:     e.Tx.GetHash(),
		handle:   e.handle,
	}
}

func (m *TxMempool) allocSlot(entry *TxEntry) Handle {
	if n := len(m.freeSlots); n > 0 {
		h := m.freeSlots[n-1]
		m.freeSlots = m.freeSlots[:n-1]
		m.entries[h] = entry
		m.parents[h] = make(map[Handle]struct{})
		m.children[h] = make(map[Handle]struct{})
		return h
	}
	m.entries = append(m.entries, entry)
	m.parents = append(m.parents, make(map[Handle]struct{}))
	m.children = append(m.children, make(map[Handle]struct{}))
	return Handle(len(m.entries) - 1)
}

func (m *TxMempool) freeSlot(h Handle) {
	m.entries[h] = nil
	m.parents[h] = nil
	m.children[h] = nil
	m.freeSlots = append(m.freeSlots, h)
}

// removeConflicts drops any resident spender of an outpoint consumed
// by the given confirmed transaction, together with its descendants.
func (m *TxMempool) removeConflicts(txn *tx.Tx) {
	txHash := txn.GetHash()
	for _, preout := range txn.GetAllPreviousOut() {
		h, ok := m.nextTx[preout]
		if !ok {
			continue
		}
		conflictHash := m.entries[h].Tx.GetHash()
		if conflictHash.IsEqual(&txHash) {
			continue
		}
		m.removeStaged(m.CalculateDescendants(h), false, false)
	}
}

// removeStaged evicts a set of entries. The stage must be closed under
// the descendant relation unless updateDescendants is set, in which
// case surviving descendants get their ancestor aggregates reduced by
// each staged entry.
func (m *TxMempool) removeStaged(stage map[Handle]struct{}, updateDescendants bool, byBlock bool) {
	if updateDescendants {
		for h := range stage {
			e := m.entries[h]
			for d := range m.CalculateDescendants(h) {
				if d == h {
					continue
				}
				if _, ok := stage[d]; ok {
					continue
				}
				de := m.entries[d]
				m.byAncestorScore.Delete(m.scoreItemOf(de))
				de.SumCountWithAncestors--
				de.SumSizeWithAncestors -= e.TxSize
				de.SumFeeWithAncestors -= e.ModFee
				de.SumSigOpCountWithAncestors -= e.SigOpCount
				m.byAncestorScore.ReplaceOrInsert(m.scoreItemOf(de))
			}
		}
	}
	for h := range stage {
		e := m.entries[h]
		for a := range m.CalculateMemPoolAncestors(h) {
			if _, ok := stage[a]; ok {
				continue
			}
			ae := m.entries[a]
			ae.SumCountWithDescendants--
			ae.SumSizeWithDescendants -= e.TxSize
			ae.SumFeeWithDescendants -= e.ModFee
		}
		for p := range m.parents[h] {
			delete(m.children[p], h)
		}
	}
	for h := range stage {
		for c := range m.children[h] {
			delete(m.parents[c], h)
		}
	}
	for h := range stage {
		m.removeUnchecked(h, byBlock)
	}
}

func (m *TxMempool) removeUnchecked(h Handle, byBlock bool) {
	e := m.entries[h]
	hash := e.Tx.GetHash()
	for _, preout := range e.Tx.GetAllPreviousOut() {
		if sp, ok := m.nextTx[preout]; ok && sp == h {
			delete(m.nextTx, preout)
		}
	}
	m.byAncestorScore.Delete(m.scoreItemOf(e))
	delete(m.byHash, hash)
	m.totalTxSize -= uint64(e.TxSize)
	m.transactionsUpdated++
	if m.estimator != nil && !byBlock {
		m.estimator.RemoveTx(hash)
	}
	e.handle = InvalidHandle
	m.freeSlot(h)
}

package mining

import (
	"github.com/google/btree"

	"github.com/cosanta/cosanta-core/model/mempool"
	"github.com/cosanta/cosanta-core/util"
	"github.com/cosanta/cosanta-core/util/amount"
)

// ModifiedEntry shadows a mempool entry whose stored ancestor
// aggregates have gone stale because some of its ancestors are already
// in the block under construction. The adjusted aggregates describe
// the part of the package still outside the block.
type ModifiedEntry struct {
	entry *mempool.TxEntry

	SizeWithAncestors       int64
	ModFeesWithAncestors    amount.Amount
	SigOpCountWithAncestors int64
}

func newModifiedEntry(entry *mempool.TxEntry) *ModifiedEntry {
	return &ModifiedEntry{
		entry:                   entry,
		SizeWithAncestors:       entry.SumSizeWithAncestors,
		ModFeesWithAncestors:    entry.SumFeeWithAncestors,
		SigOpCountWithAncestors: entry.SumSigOpCountWithAncestors,
	}
}

// Less orders worse rows first, the same way the mempool's ancestor
// score index does: adjusted package feerate, then ancestor count,
// then the greater hash. Max therefore yields the best row and breaks
// full ties by ascending hash.
func (m *ModifiedEntry) Less(than btree.Item) bool {
	t := than.(*ModifiedEntry)
	if c := util.CompareFeeFraction(int64(m.ModFeesWithAncestors), m.SizeWithAncestors,
		int64(t.ModFeesWithAncestors), t.SizeWithAncestors); c != 0 {
		return c < 0
	}
	if m.entry.SumCountWithAncestors != t.entry.SumCountWithAncestors {
		return m.entry.SumCountWithAncestors < t.entry.SumCountWithAncestors
	}
	h1, h2 := m.entry.Tx.GetHash(), t.entry.Tx.GetHash()
	return h1.Cmp(&h2) > 0
}

// modTxSet is the modified-package index: rows keyed by mempool handle
// and ordered by adjusted ancestor score. A row exists only while at
// least one ancestor of the entry is in the block and the entry itself
// is not.
type modTxSet struct {
	byHandle map[mempool.Handle]*ModifiedEntry
	byScore  *btree.BTree
}

func newModTxSet() *modTxSet {
	return &modTxSet{
		byHandle: make(map[mempool.Handle]*ModifiedEntry),
		byScore:  btree.New(32),
	}
}

func (s *modTxSet) len() int {
	return len(s.byHandle)
}

// contains reports whether the entry already has a row.
func (s *modTxSet) contains(h mempool.Handle) bool {
	_, ok := s.byHandle[h]
	return ok
}

// upsert applies one committed ancestor's contribution to the row of a
// descendant, creating the row from the entry's current aggregates
// first when absent. The btree position follows the new score.
func (s *modTxSet) upsert(entry *mempool.TxEntry, dSize int64, dFee amount.Amount, dSigOps int64) {
	row, ok := s.byHandle[entry.Handle()]
	if ok {
		s.byScore.Delete(row)
	} else {
		row = newModifiedEntry(entry)
		s.byHandle[entry.Handle()] = row
	}
	row.SizeWithAncestors -= dSize
	row.ModFeesWithAncestors -= dFee
	row.SigOpCountWithAncestors -= dSigOps
	s.byScore.ReplaceOrInsert(row)
}

// eraseByEntry drops a committed or permanently failed entry's row.
func (s *modTxSet) eraseByEntry(h mempool.Handle) {
	row, ok := s.byHandle[h]
	if !ok {
		return
	}
	s.byScore.Delete(row)
	delete(s.byHandle, h)
}

// best is the row with the highest adjusted ancestor feerate, or nil.
func (s *modTxSet) best() *ModifiedEntry {
	item := s.byScore.Max()
	if item == nil {
		return nil
	}
	return item.(*ModifiedEntry)
}

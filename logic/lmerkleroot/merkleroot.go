package lmerkleroot

import (
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/util"
)

// ComputeMerkleRoot folds the leaves bottom-up in constant space. inner
// holds one running subtree hash per level; bit i of count is set
// exactly when inner[i] carries a finished subtree of 2^i leaves
// waiting for a right sibling. Odd subtrees are closed by pairing the
// running hash with itself, the historical rule that also makes
// duplicated trailing leaves indistinguishable, which mutated reports.
func ComputeMerkleRoot(leaves []util.Hash, mutated *bool) util.Hash {
	if mutated != nil {
		*mutated = false
	}
	if len(leaves) == 0 {
		return util.Hash{}
	}

	var inner [32]util.Hash
	count := uint32(0)
	for int(count) < len(leaves) {
		h := leaves[count]
		count++
		level := 0
		for ; count&(uint32(1)<<uint(level)) == 0; level++ {
			if mutated != nil && inner[level].IsEqual(&h) {
				*mutated = true
			}
			h = hashPair(&inner[level], &h)
		}
		inner[level] = h
	}

	level := 0
	for ; count&(uint32(1)<<uint(level)) == 0; level++ {
	}
	h := inner[level]
	for count != uint32(1)<<uint(level) {
		// An unpaired subtree: combine with itself, then keep folding
		// into whatever finished subtrees sit above it.
		h = hashPair(&h, &h)
		count += uint32(1) << uint(level)
		level++
		for ; count&(uint32(1)<<uint(level)) == 0; level++ {
			h = hashPair(&inner[level], &h)
		}
	}
	return h
}

// BlockMerkleRoot hashes the transaction list of a block, coinbase
// included, in slot order.
func BlockMerkleRoot(txs []*tx.Tx, mutated *bool) util.Hash {
	leaves := make([]util.Hash, len(txs))
	for i := 0; i < len(txs); i++ {
		leaves[i] = txs[i].GetHash()
	}
	return ComputeMerkleRoot(leaves, mutated)
}

func hashPair(left, right *util.Hash) util.Hash {
	var buf [util.Hash256Size * 2]byte
	copy(buf[:util.Hash256Size], left[:])
	copy(buf[util.Hash256Size:], right[:])
	return util.DoubleSha256Hash(buf[:])
}

package chain

import (
	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/pow"
	"github.com/cosanta/cosanta-core/util"
)

const defaultMaxTipAge = 24 * 60 * 60

// UpdateSyncingState re-evaluates the synced latch against the current
// tip. The chain counts as almost synced once the tip is recent and
// carries the minimum chain work; the latch never drops back. Caller
// holds the chain lock.
func (c *Chain) UpdateSyncingState() {
	if c.isAlmostSynced {
		return
	}
	tip := c.Tip()
	if tip == nil {
		return
	}
	c.isAlmostSynced = isRecentTip(tip) && c.hasEnoughWork(tip)
}

// IsAlmostSynced reports whether the tip has ever looked caught up
// with the network.
func (c *Chain) IsAlmostSynced() bool {
	return c.isAlmostSynced
}

func isRecentTip(tip *blockindex.BlockIndex) bool {
	return int64(tip.GetBlockTime()) > util.GetTimeSec()-defaultMaxTipAge
}

func (c *Chain) hasEnoughWork(tip *blockindex.BlockIndex) bool {
	minWorkSum := pow.HashToBig(&c.params.MinimumChainWork)
	return tip.ChainWork.Cmp(minWorkSum) > 0
}

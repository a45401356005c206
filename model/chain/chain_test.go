package chain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/util"
)

// indexChild registers a header on top of prev and returns its entry.
func indexChild(t *testing.T, c *Chain, prev *blockindex.BlockIndex, blockTime uint32) *blockindex.BlockIndex {
	t.Helper()

	bh := block.NewBlockHeader()
	bh.Version = 4
	bh.Time = blockTime
	bh.Bits = chainparams.RegressionNetParams.PowLimitBits
	if prev != nil {
		bh.HashPrevBlock = prev.BlockHash
	}
	// Nonce keeps sibling headers from colliding.
	bh.Nonce = uint32(c.IndexCount()) + blockTime

	bi := blockindex.NewBlockIndex(bh)
	require.NoError(t, c.AddToIndexMap(bi))
	return bi
}

func TestChainIndexAndTip(t *testing.T) {
	c := NewChain(&chainparams.RegressionNetParams)

	assert.Nil(t, c.Tip())
	assert.Nil(t, c.Genesis())
	assert.Equal(t, int32(-1), c.Height())

	genesis := indexChild(t, c, nil, 1000)
	b1 := indexChild(t, c, genesis, 1060)
	b2 := indexChild(t, c, b1, 1120)
	side := indexChild(t, c, genesis, 1090)

	assert.Equal(t, int32(0), genesis.Height)
	assert.Equal(t, int32(2), b2.Height)
	assert.Equal(t, int32(1), side.Height)
	assert.Equal(t, 4, c.IndexCount())
	assert.True(t, genesis.ChainWork.Cmp(&b2.ChainWork) < 0)

	c.SetTip(b2)
	assert.Equal(t, b2, c.Tip())
	assert.Equal(t, int32(2), c.Height())
	assert.Equal(t, genesis, c.Genesis())
	assert.Equal(t, b1, c.GetIndex(1))
	assert.True(t, c.Contains(b1))
	assert.False(t, c.Contains(side))
	assert.Equal(t, b2, c.Next(b1))
	assert.Nil(t, c.Next(side))
	assert.Equal(t, b1, c.GetAncestor(1))

	// Side entries resolve by hash but not on the active chain.
	assert.Equal(t, side, c.FindBlockIndex(side.BlockHash))
	assert.Nil(t, c.FindHashInActive(side.BlockHash))
	assert.Equal(t, b1, c.FindHashInActive(b1.BlockHash))

	// Retargeting the tip onto the side branch rewrites the walk.
	c.SetTip(side)
	assert.Equal(t, side, c.Tip())
	assert.Equal(t, int32(1), c.Height())
	assert.True(t, c.Contains(side))
	assert.False(t, c.Contains(b1))

	c.SetTip(nil)
	assert.Nil(t, c.Tip())
	assert.Equal(t, int32(-1), c.Height())
}

func TestChainRejectsDupAndOrphan(t *testing.T) {
	c := NewChain(&chainparams.RegressionNetParams)
	genesis := indexChild(t, c, nil, 1000)

	dup := blockindex.NewBlockIndex(&genesis.Header)
	assert.Error(t, c.AddToIndexMap(dup))

	orphanHeader := block.NewBlockHeader()
	orphanHeader.Version = 4
	orphanHeader.Time = 2000
	orphanHeader.HashPrevBlock = util.Hash{0x01}
	assert.Error(t, c.AddToIndexMap(blockindex.NewBlockIndex(orphanHeader)))
	assert.Equal(t, 1, c.IndexCount())
}

func TestWaitForBlockChange(t *testing.T) {
	c := NewChain(&chainparams.RegressionNetParams)
	genesis := indexChild(t, c, nil, 1000)
	c.SetTip(genesis)
	c.NotifyBlockChange(genesis)

	// Already changed relative to the zero hash, returns at once.
	got := c.WaitForBlockChange(util.Hash{}, 5*time.Second)
	assert.Equal(t, genesis.BlockHash, got)

	// No change within the timeout, returns the unchanged hash.
	got = c.WaitForBlockChange(genesis.BlockHash, 20*time.Millisecond)
	assert.Equal(t, genesis.BlockHash, got)

	// A notification from another goroutine wakes the waiter.
	b1 := indexChild(t, c, genesis, 1060)
	go func() {
		time.Sleep(10 * time.Millisecond)
		c.SetTip(b1)
		c.NotifyBlockChange(b1)
	}()
	got = c.WaitForBlockChange(genesis.BlockHash, 5*time.Second)
	assert.Equal(t, b1.BlockHash, got)
}

func TestSyncingStateLatch(t *testing.T) {
	c := NewChain(&chainparams.RegressionNetParams)
	assert.False(t, c.IsAlmostSynced())

	// An empty chain never latches.
	c.UpdateSyncingState()
	assert.False(t, c.IsAlmostSynced())

	// A stale tip keeps the latch down.
	old := indexChild(t, c, nil, 1000)
	c.SetTip(old)
	c.UpdateSyncingState()
	assert.False(t, c.IsAlmostSynced())

	// A recent tip with work on it latches, and the latch sticks even
	// when the tip goes stale again.
	recent := indexChild(t, c, old, uint32(util.GetTimeSec()))
	c.SetTip(recent)
	c.UpdateSyncingState()
	assert.True(t, c.IsAlmostSynced())

	c.SetTip(old)
	c.UpdateSyncingState()
	assert.True(t, c.IsAlmostSynced())
}

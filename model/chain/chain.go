package chain

import (
	"math/big"
	"sync"
	"time"

	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/model/pow"
	"github.com/cosanta/cosanta-core/util"
	"github.com/pkg/errors"
)

// Chain is an in-memory indexed chain of blocks. The embedded RWMutex
// is the main chain lock: readers that walk the index hold it for
// reading, block connection holds it for writing. Accessors do not
// lock by themselves.
type Chain struct {
	sync.RWMutex

	active    []*blockindex.BlockIndex
	indexMap  map[util.Hash]*blockindex.BlockIndex
	receiveID int32
	params    *chainparams.Params

	// Latched to true once the tip has ever looked caught up, see
	// UpdateSyncingState.
	isAlmostSynced bool

	// Tip-change signalling for longpoll waiters, guarded separately
	// so waiters never contend with index readers.
	csBestBlock   sync.Mutex
	cvBlockChange *sync.Cond
	bestBlockHash util.Hash
}

var globalChain *Chain

func GetInstance() *Chain {
	if globalChain == nil {
		panic("global chain is not initialized")
	}
	return globalChain
}

// InitGlobalChain installs the process-wide chain. Tests inject their
// own instance instead.
func InitGlobalChain(params *chainparams.Params) *Chain {
	globalChain = NewChain(params)
	return globalChain
}

func SetInstance(c *Chain) {
	globalChain = c
}

func NewChain(params *chainparams.Params) *Chain {
	c := &Chain{
		indexMap: make(map[util.Hash]*blockindex.BlockIndex),
		params:   params,
	}
	c.cvBlockChange = sync.NewCond(&c.csBestBlock)
	return c
}

func (c *Chain) GetParams() *chainparams.Params {
	return c.params
}

// Genesis returns the index entry for the genesis block of this chain,
// or nil if none.
func (c *Chain) Genesis() *blockindex.BlockIndex {
	if len(c.active) > 0 {
		return c.active[0]
	}
	return nil
}

func (c *Chain) GetReceivedID() int32 {
	c.receiveID++
	return c.receiveID - 1
}

// FindHashInActive returns the index entry only when it lies on the
// active chain.
func (c *Chain) FindHashInActive(hash util.Hash) *blockindex.BlockIndex {
	if bi, ok := c.indexMap[hash]; ok && c.Contains(bi) {
		return bi
	}
	return nil
}

// FindBlockIndex looks a block up by hash in the whole index map.
func (c *Chain) FindBlockIndex(hash util.Hash) *blockindex.BlockIndex {
	if bi, ok := c.indexMap[hash]; ok {
		return bi
	}
	return nil
}

// Tip returns the index entry for the tip of this chain, or nil if none.
func (c *Chain) Tip() *blockindex.BlockIndex {
	if len(c.active) > 0 {
		return c.active[len(c.active)-1]
	}
	return nil
}

func (c *Chain) TipHeight() int32 {
	if tip := c.Tip(); tip != nil {
		return tip.Height
	}
	return 0
}

// Height of the tip, or -1 on an empty chain.
func (c *Chain) Height() int32 {
	return int32(len(c.active)) - 1
}

// GetIndex returns the active-chain entry at height, or nil.
func (c *Chain) GetIndex(height int32) *blockindex.BlockIndex {
	if height < 0 || height >= int32(len(c.active)) {
		return nil
	}
	return c.active[height]
}

func (c *Chain) Contains(index *blockindex.BlockIndex) bool {
	return index != nil && c.GetIndex(index.Height) == index
}

// Next returns the active-chain successor of index, or nil.
func (c *Chain) Next(index *blockindex.BlockIndex) *blockindex.BlockIndex {
	if c.Contains(index) {
		return c.GetIndex(index.Height + 1)
	}
	return nil
}

// GetAncestor of the tip.
func (c *Chain) GetAncestor(height int32) *blockindex.BlockIndex {
	if tip := c.Tip(); tip != nil {
		return tip.GetAncestor(height)
	}
	return nil
}

// IndexCount is the number of entries in the index map, connected or not.
func (c *Chain) IndexCount() int {
	return len(c.indexMap)
}

// ForEachBlockIndex visits every indexed header in no particular
// order. The caller holds at least the read lock. Returning false
// stops the walk.
func (c *Chain) ForEachBlockIndex(f func(bi *blockindex.BlockIndex) bool) {
	for _, bi := range c.indexMap {
		if !f(bi) {
			return
		}
	}
}

// AddToIndexMap registers a header whose parent is already indexed,
// wiring height, accumulated work and the skip pointer.
func (c *Chain) AddToIndexMap(bi *blockindex.BlockIndex) error {
	if _, ok := c.indexMap[bi.BlockHash]; ok {
		return errors.Errorf("block %s already indexed", bi.BlockHash.String())
	}
	if !bi.Header.HashPrevBlock.IsNull() {
		prev, ok := c.indexMap[bi.Header.HashPrevBlock]
		if !ok {
			return errors.Errorf("orphan block %s", bi.BlockHash.String())
		}
		bi.Prev = prev
		bi.Height = prev.Height + 1
		bi.TimeMax = prev.TimeMax
		if bi.Header.Time > prev.TimeMax {
			bi.TimeMax = bi.Header.Time
		}
		bi.ChainWork = *new(big.Int).Add(&prev.ChainWork, pow.GetBlockProof(bi))
	} else {
		bi.Height = 0
		bi.TimeMax = bi.Header.Time
		bi.ChainWork = *pow.GetBlockProof(bi)
	}
	bi.SequenceID = c.GetReceivedID()
	bi.BuildSkip()
	bi.AddStatus(blockindex.StatusHeaderValid)
	c.indexMap[bi.BlockHash] = bi
	return nil
}

// SetTip sets or extends the active chain so it ends in index; passing
// nil clears it.
func (c *Chain) SetTip(index *blockindex.BlockIndex) {
	if index == nil {
		c.active = c.active[:0]
		return
	}
	if int32(cap(c.active)) <= index.Height {
		grown := make([]*blockindex.BlockIndex, index.Height+1, (index.Height+1)*2)
		copy(grown, c.active)
		c.active = grown
	} else {
		c.active = c.active[:index.Height+1]
	}
	for index != nil && c.active[index.Height] != index {
		c.active[index.Height] = index
		index = index.Prev
	}
}

// InitLoad primes the chain from a prebuilt index, used by tests and
// startup.
func (c *Chain) InitLoad(indexMap map[util.Hash]*blockindex.BlockIndex, tip *blockindex.BlockIndex) {
	c.indexMap = indexMap
	c.SetTip(tip)
}

// NotifyBlockChange wakes every longpoll waiter after a tip change.
// Called outside the main lock.
func (c *Chain) NotifyBlockChange(tip *blockindex.BlockIndex) {
	if tip == nil {
		return
	}
	c.csBestBlock.Lock()
	c.bestBlockHash = tip.BlockHash
	c.csBestBlock.Unlock()
	c.cvBlockChange.Broadcast()
}

// WaitForBlockChange blocks until the best block differs from old or
// the timeout passes, and returns the best hash seen at wakeup.
func (c *Chain) WaitForBlockChange(old util.Hash, timeout time.Duration) util.Hash {
	deadline := time.Now().Add(timeout)

	c.csBestBlock.Lock()
	defer c.csBestBlock.Unlock()
	for c.bestBlockHash == old {
		remain := time.Until(deadline)
		if remain <= 0 {
			break
		}
		timer := time.AfterFunc(remain, c.cvBlockChange.Broadcast)
		c.cvBlockChange.Wait()
		timer.Stop()
	}
	return c.bestBlockHash
}

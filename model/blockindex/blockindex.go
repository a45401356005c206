package blockindex

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/util"
)

/**
 * The block chain is a tree shaped structure starting with the genesis block at
 * the root, with each block potentially having multiple candidates to be the
 * next block. A blockIndex may have multiple prev pointing to it, but at most
 * one of them can be part of the currently active branch.
 */

type BlockIndex struct {
	Header block.BlockHeader
	// hash of the block this entry describes
	BlockHash util.Hash
	// pointer to the index of the predecessor of this block
	Prev *BlockIndex
	// pointer to the index of some further predecessor of this block
	Skip *BlockIndex
	// height of the entry in the chain. The genesis block has height 0.
	Height int32
	// (memory only) Total amount of work (expected number of hashes) in the
	// chain up to and including this block
	ChainWork big.Int
	// Number of transactions in this block.
	TxCount int
	// status of this block. See blockstatus.go
	Status uint32
	// (memory only) Sequential id assigned to distinguish order in which
	// blocks are received.
	SequenceID int32
	// (memory only) Maximum time in the chain up to and including this block.
	TimeMax uint32
}

const medianTimeSpan = 11

func NewBlockIndex(blkHeader *block.BlockHeader) *BlockIndex {
	blockIndex := new(BlockIndex)
	blockIndex.SetNull()
	blockIndex.Header = *blkHeader
	blockIndex.BlockHash = blkHeader.GetHash()
	return blockIndex
}

func (bIndex *BlockIndex) SetNull() {
	bIndex.Header.SetNull()
	bIndex.BlockHash = util.Hash{}
	bIndex.Prev = nil
	bIndex.Skip = nil

	bIndex.Height = 0
	bIndex.ChainWork = big.Int{}
	bIndex.TxCount = 0
	bIndex.Status = StatusNone
	bIndex.SequenceID = 0
	bIndex.TimeMax = 0
}

func (bIndex *BlockIndex) GetBlockHeader() *block.BlockHeader {
	return &bIndex.Header
}

func (bIndex *BlockIndex) GetBlockHash() *util.Hash {
	return &bIndex.BlockHash
}

func (bIndex *BlockIndex) GetBlockTime() uint32 {
	return bIndex.Header.Time
}

func (bIndex *BlockIndex) GetBlockTimeMax() uint32 {
	return bIndex.TimeMax
}

func (bIndex *BlockIndex) IsProofOfStake() bool {
	return bIndex.Header.IsProofOfStake()
}

// GetMedianTimePast the median block time of this block and its ten
// predecessors. Lock times and template min-times compare against it.
func (bIndex *BlockIndex) GetMedianTimePast() int64 {
	median := make([]int64, 0, medianTimeSpan)
	index := bIndex
	for i := 0; i < medianTimeSpan && index != nil; i++ {
		median = append(median, int64(index.GetBlockTime()))
		index = index.Prev
	}
	sort.Slice(median, func(i, j int) bool {
		return median[i] < median[j]
	})
	return median[len(median)/2]
}

func (bIndex *BlockIndex) AddStatus(status uint32) {
	bIndex.Status |= status
}

func (bIndex *BlockIndex) SubStatus(status uint32) {
	bIndex.Status &= ^status
}

func (bIndex *BlockIndex) HasData() bool {
	return bIndex.Status&StatusDataStored != 0
}

// IsValid reports a fully validated, never-failed block.
func (bIndex *BlockIndex) IsValid() bool {
	if bIndex.IsInvalid() {
		return false
	}
	return bIndex.Status&StatusAllValid != 0
}

func (bIndex *BlockIndex) IsInvalid() bool {
	return bIndex.Status&StatusFailedMask != 0
}

// RaiseValidity raises the validity flag of this entry; returns true
// if it changed.
func (bIndex *BlockIndex) RaiseValidity(status uint32) bool {
	if bIndex.IsInvalid() {
		return false
	}
	if bIndex.Status&status == status {
		return false
	}
	bIndex.Status |= status
	return true
}

func (bIndex *BlockIndex) BuildSkip() {
	if bIndex.Prev != nil {
		bIndex.Skip = bIndex.Prev.GetAncestor(getSkipHeight(bIndex.Height))
	}
}

// Turn the lowest '1' bit in the binary representation of a number into a '0'.
func invertLowestOne(n int32) int32 {
	return n & (n - 1)
}

// getSkipHeight computes what height to jump back to with the Skip pointer.
func getSkipHeight(height int32) int32 {
	if height < 2 {
		return 0
	}

	// Determine which height to jump back to. Any number strictly lower than
	// height is acceptable, but the following expression seems to perform well
	// in simulations (max 110 steps to go back up to 2**18 blocks).
	if (height & 1) > 0 {
		return invertLowestOne(invertLowestOne(height-1)) + 1
	}
	return invertLowestOne(height)
}

// GetAncestor efficiently finds an ancestor of this block.
func (bIndex *BlockIndex) GetAncestor(height int32) *BlockIndex {
	if height > bIndex.Height || height < 0 {
		return nil
	}
	indexWalk := bIndex
	heightWalk := bIndex.Height
	for heightWalk > height {
		heightSkip := getSkipHeight(heightWalk)
		heightSkipPrev := getSkipHeight(heightWalk - 1)
		if indexWalk.Skip != nil && (heightSkip == height ||
			(heightSkip > height && !(heightSkipPrev < heightSkip-2 && heightSkipPrev >= height))) {
			// Only follow skip if prev->skip isn't better than skip->prev.
			indexWalk = indexWalk.Skip
			heightWalk = heightSkip
		} else {
			if indexWalk.Prev == nil {
				panic("the blockIndex pointer should not be nil")
			}
			indexWalk = indexWalk.Prev
			heightWalk--
		}
	}

	return indexWalk
}

func (bIndex *BlockIndex) String() string {
	hash := bIndex.GetBlockHash()
	return fmt.Sprintf("BlockIndex(prev=%p, height=%d, merkle=%s, hashBlock=%s)", bIndex.Prev,
		bIndex.Height, bIndex.Header.MerkleRoot.String(), hash.String())
}

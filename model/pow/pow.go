package pow

import (
	"math/big"

	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/util"
)

// dgwPastBlocks is the averaging window of the dark gravity wave retarget.
const dgwPastBlocks = 24

type Pow struct{}

// GetNextWorkRequired computes the compact target for the block following
// indexPrev. Heights below PowKGWHeight keep the legacy once-per-interval
// retarget; everything from PowKGWHeight on is served by the dark gravity
// wave (the mainnet gravity-well window covers historical heights only).
func (pow *Pow) GetNextWorkRequired(indexPrev *blockindex.BlockIndex, blHeader *block.BlockHeader,
	params *chainparams.Params) uint32 {
	if indexPrev == nil {
		return BigToCompact(params.PowLimit)
	}

	if indexPrev.Height+1 < params.PowKGWHeight {
		return pow.getNextWorkRequiredBTC(indexPrev, blHeader, params)
	}

	return pow.darkGravityWave(indexPrev, blHeader, params)
}

func (pow *Pow) getNextWorkRequiredBTC(indexPrev *blockindex.BlockIndex, blHeader *block.BlockHeader,
	params *chainparams.Params) uint32 {
	nProofOfWorkLimit := BigToCompact(params.PowLimit)

	// Only change once per difficulty adjustment interval.
	nHeight := indexPrev.Height + 1
	if int64(nHeight)%params.DifficultyAdjustmentInterval() != 0 {
		if params.FPowAllowMinDifficultyBlocks {
			// Special difficulty rule for testnet:
			// If the new block's timestamp is more than 2x the target
			// spacing then allow mining of a min-difficulty block.
			if blHeader.Time > indexPrev.GetBlockTime()+2*uint32(params.TargetTimePerBlock) {
				return nProofOfWorkLimit
			}
			// Return the last non-special-min-difficulty-rules-block.
			index := indexPrev
			for index.Prev != nil && int64(index.Height)%params.DifficultyAdjustmentInterval() != 0 &&
				index.Header.Bits == nProofOfWorkLimit {
				index = index.Prev
			}
			return index.Header.Bits
		}

		return indexPrev.Header.Bits
	}

	nHeightFirst := nHeight - int32(params.DifficultyAdjustmentInterval())
	indexFirst := indexPrev.GetAncestor(nHeightFirst)
	if indexFirst == nil {
		panic("the first block of the retarget interval must exist")
	}

	return pow.calculateNextWorkRequired(indexPrev, int64(indexFirst.GetBlockTime()), params)
}

func (pow *Pow) calculateNextWorkRequired(indexPrev *blockindex.BlockIndex, firstBlockTime int64,
	params *chainparams.Params) uint32 {
	if params.FPowNoRetargeting {
		return indexPrev.Header.Bits
	}

	// Limit adjustment step
	actualTimeSpan := int64(indexPrev.GetBlockTime()) - firstBlockTime
	if actualTimeSpan < params.TargetTimespan/4 {
		actualTimeSpan = params.TargetTimespan / 4
	}
	if actualTimeSpan > params.TargetTimespan*4 {
		actualTimeSpan = params.TargetTimespan * 4
	}

	// Retarget
	bnNew := CompactToBig(indexPrev.Header.Bits)
	bnNew.Mul(bnNew, big.NewInt(actualTimeSpan))
	bnNew.Div(bnNew, big.NewInt(params.TargetTimespan))
	if bnNew.Cmp(params.PowLimit) > 0 {
		bnNew = params.PowLimit
	}

	return BigToCompact(bnNew)
}

// darkGravityWave retargets every block from a weighted average of the last
// 24 targets, bounding the timespan to a third and triple of the expected
// window.
func (pow *Pow) darkGravityWave(indexPrev *blockindex.BlockIndex, blHeader *block.BlockHeader,
	params *chainparams.Params) uint32 {
	if indexPrev.Height < dgwPastBlocks {
		return BigToCompact(params.PowLimit)
	}

	if params.FPowAllowMinDifficultyBlocks {
		// Recent block is more than 2 hours old.
		if blHeader.Time > indexPrev.GetBlockTime()+2*60*60 {
			return BigToCompact(params.PowLimit)
		}
		// Recent block is more than 4 spacings old: lower the difficulty by
		// a factor of 10, bounded by the limit.
		if blHeader.Time > indexPrev.GetBlockTime()+uint32(params.TargetTimePerBlock*4) {
			bnNew := CompactToBig(indexPrev.Header.Bits)
			bnNew.Mul(bnNew, big.NewInt(10))
			if bnNew.Cmp(params.PowLimit) > 0 {
				bnNew = params.PowLimit
			}
			return BigToCompact(bnNew)
		}
	}

	index := indexPrev
	pastTargetAvg := new(big.Int)
	for countBlocks := int32(1); countBlocks <= dgwPastBlocks; countBlocks++ {
		target := CompactToBig(index.Header.Bits)
		if countBlocks == 1 {
			pastTargetAvg = target
		} else {
			// NOTE: that's not an average really...
			pastTargetAvg.Mul(pastTargetAvg, big.NewInt(int64(countBlocks)))
			pastTargetAvg.Add(pastTargetAvg, target)
			pastTargetAvg.Div(pastTargetAvg, big.NewInt(int64(countBlocks)+1))
		}
		if countBlocks != dgwPastBlocks {
			index = index.Prev
		}
	}

	bnNew := new(big.Int).Set(pastTargetAvg)

	actualTimeSpan := int64(indexPrev.GetBlockTime()) - int64(index.GetBlockTime())
	targetTimeSpan := dgwPastBlocks * params.TargetTimePerBlock
	if actualTimeSpan < targetTimeSpan/3 {
		actualTimeSpan = targetTimeSpan / 3
	}
	if actualTimeSpan > targetTimeSpan*3 {
		actualTimeSpan = targetTimeSpan * 3
	}

	// Retarget
	bnNew.Mul(bnNew, big.NewInt(actualTimeSpan))
	bnNew.Div(bnNew, big.NewInt(targetTimeSpan))
	if bnNew.Cmp(params.PowLimit) > 0 {
		bnNew = params.PowLimit
	}

	return BigToCompact(bnNew)
}

func (pow *Pow) CheckProofOfWork(hash *util.Hash, bits uint32, params *chainparams.Params) bool {
	target := CompactToBig(bits)
	if target.Sign() <= 0 || target.Cmp(params.PowLimit) > 0 ||
		HashToBig(hash).Cmp(target) > 0 {
		return false
	}

	return true
}

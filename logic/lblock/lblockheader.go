package lblock

import (
	"fmt"

	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/model/pow"
)

// maxFutureBlockTime is how far ahead of adjusted time a header may
// claim to be.
const maxFutureBlockTime = 2 * 60 * 60

// CheckBlockHeader runs the context free proof checks: X11 work
// against the compact target for PoW headers; kernel reference and a
// recoverable signature for PoS headers, whose binding to the block
// body is checked at block level.
func CheckBlockHeader(bh *block.BlockHeader) error {
	if bh.IsProofOfStake() {
		if bh.StakeHash.IsNull() {
			log.Debug("stake header %s has a null kernel reference", bh.GetHash())
			return errcode.New(errcode.ErrorBadStakeKernel)
		}
		if bh.RecoverStakePubKey() == nil {
			log.Debug("stake header %s signature does not recover", bh.GetHash())
			return errcode.New(errcode.ErrorBadBlockSignature)
		}
		return nil
	}

	hash := bh.GetHash()
	params := chainparams.ActiveNetParams
	p := pow.Pow{}
	if !p.CheckProofOfWork(&hash, bh.Bits, params) {
		log.Debug("CheckBlockHeader: proof of work failed, hash: %s", hash)
		return errcode.New(errcode.ErrorPowCheckErr)
	}
	return nil
}

// ContextualCheckBlockHeader validates a header against its parent:
// the required difficulty, the proof kind the height calls for, the
// median-past/future time window, and the obsolete version floors.
func ContextualCheckBlockHeader(header *block.BlockHeader, indexPrev *blockindex.BlockIndex,
	adjustTime int64) error {
	nHeight := indexPrev.Height + 1
	params := chainparams.ActiveNetParams

	p := pow.Pow{}
	if header.Bits != p.GetNextWorkRequired(indexPrev, header, params) {
		log.Debug("bad difficulty bits at height %d", nHeight)
		return errcode.New(errcode.ErrorBadDiffBits)
	}

	// The proof kind is pinned to the height: work only below the stake
	// start height, stake only from it on.
	if header.IsProofOfStake() != params.IsPoSEnforcedHeight(nHeight) {
		if header.IsProofOfStake() {
			log.Debug("stake header at height %d before activation", nHeight)
			return errcode.New(errcode.ErrorPosNotActive)
		}
		log.Debug("work header at height %d after stake activation", nHeight)
		return errcode.New(errcode.ErrorPowEnded)
	}

	blockTime := header.GetBlockTime()
	if blockTime <= indexPrev.GetMedianTimePast() {
		log.Debug("block time %d is not past the median time", blockTime)
		return errcode.New(errcode.ErrorBlockTimeTooOld)
	}
	if blockTime > adjustTime+maxFutureBlockTime {
		log.Debug("block time %d too far in the future", blockTime)
		return errcode.New(errcode.ErrorBlockTimeTooNew)
	}

	// Reject outdated version blocks once their supermajority heights
	// have passed. PoS bits keep the version well above these floors.
	if (header.Version < 2 && nHeight >= params.BIP34Height) ||
		(header.Version < 3 && nHeight >= params.BIP66Height) ||
		(header.Version < 4 && nHeight >= params.BIP65Height) {
		log.Debug("bad version 0x%08x at height %d", uint32(header.Version), nHeight)
		return errcode.NewError(errcode.ErrorBadVersionBits,
			fmt.Sprintf("bad-version(0x%08x)", uint32(header.Version)))
	}

	return nil
}

package service

import (
	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/logic/lblock"
	"github.com/cosanta/cosanta-core/logic/lchain"
	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/chain"
)

// ProcessNewBlock runs a block through acceptance and connects it when
// it extends the active tip. accepted reports whether the block is on
// the active chain when the call returns; isNew whether this call was
// the first to carry the block body. With forceProcessing the block is
// stored even when it does not improve on the current tip, which
// locally mined and explicitly requested blocks always want.
func ProcessNewBlock(pblock *block.Block, forceProcessing bool) (accepted bool, isNew bool, err error) {
	// Ensure CheckBlock passes before taking the chain lock, as belt
	// and suspenders.
	if err := lblock.CheckBlock(pblock, true, true); err != nil {
		hash := pblock.GetHash()
		log.Error("ProcessNewBlock: CheckBlock %s failed: %v", hash.String(), err)
		return false, false, err
	}

	gChain := chain.GetInstance()
	gChain.Lock()

	bIndex, fNewBlock, err := lblock.AcceptBlock(pblock, forceProcessing)
	if err != nil {
		gChain.Unlock()
		hash := pblock.GetHash()
		log.Error("ProcessNewBlock: AcceptBlock %s failed: %v", hash.String(), err)
		return false, fNewBlock, err
	}

	connected, err := lchain.ActivateBestChain(bIndex, pblock)
	if err != nil {
		gChain.Unlock()
		return false, fNewBlock, err
	}
	onActive := connected || gChain.Contains(bIndex)
	gChain.Unlock()

	if connected {
		// Wake longpoll waiters outside the chain lock.
		gChain.NotifyBlockChange(bIndex)
	}
	return onActive, fNewBlock, nil
}

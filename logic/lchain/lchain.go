package lchain

import (
	"time"

	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/chain"
	"github.com/cosanta/cosanta-core/model/mempool"
)

// IsInitialBlockDownload checks whether the node still looks like it
// is catching up with the network.
func IsInitialBlockDownload() bool {
	return !chain.GetInstance().IsAlmostSynced()
}

// ActivateBestChain connects bIndex when it extends the active tip.
// A block on any other branch keeps its index and data and stays a
// side chain candidate. The returned bool reports whether the tip
// advanced. Caller holds the chain lock.
func ActivateBestChain(bIndex *blockindex.BlockIndex, pblock *block.Block) (bool, error) {
	gChain := chain.GetInstance()
	if bIndex.Prev != gChain.Tip() {
		hash := bIndex.GetBlockHash()
		log.Info("block %s stored without connecting, prev is not the tip", hash.String())
		return false, nil
	}
	if err := ConnectTip(bIndex, pblock); err != nil {
		return false, err
	}
	return true, nil
}

// ConnectTip applies an accepted block on top of the active tip.
// pblock carries the block body; the caller holds the chain lock and
// has already validated the body against its parent.
func ConnectTip(pIndexNew *blockindex.BlockIndex, pblock *block.Block) error {
	gChain := chain.GetInstance()
	if pIndexNew.Prev != gChain.Tip() {
		hash := pIndexNew.GetBlockHash()
		log.Error("ConnectTip: %s does not build on the active tip", hash.String())
		return errcode.New(errcode.ErrorBlockNotOnTip)
	}
	pIndexNew.RaiseValidity(blockindex.StatusAllValid)

	// Confirmed transactions leave the mempool and feed the fee
	// estimator.
	mempool.GetInstance().RemoveForBlock(pblock.Txs, pIndexNew.Height)

	UpdateTip(pIndexNew)
	return nil
}

// UpdateTip advances the active chain to pindexNew and refreshes the
// synced latch. Caller holds the chain lock.
func UpdateTip(pindexNew *blockindex.BlockIndex) {
	gChain := chain.GetInstance()
	gChain.SetTip(pindexNew)
	gChain.UpdateSyncingState()

	tip := gChain.Tip()
	tipHash := tip.GetBlockHash()
	log.Info("new best=%s height=%d version=0x%08x work=%s tx=%d date='%s'",
		tipHash.String(), tip.Height, tip.Header.Version,
		tip.ChainWork.String(), tip.TxCount,
		time.Unix(int64(tip.Header.Time), 0).String())
}

// InitGenesisChain indexes the configured genesis block and makes it
// the active tip. Safe to call on an already primed chain.
func InitGenesisChain() error {
	gChain := chain.GetInstance()
	if gChain.Genesis() != nil {
		return nil
	}

	bl := gChain.GetParams().GenesisBlock
	bIndex := blockindex.NewBlockIndex(&bl.Header)
	if err := gChain.AddToIndexMap(bIndex); err != nil {
		return err
	}
	bIndex.TxCount = len(bl.Txs)
	bIndex.AddStatus(blockindex.StatusDataStored)
	bIndex.RaiseValidity(blockindex.StatusAllValid)
	gChain.SetTip(bIndex)
	gChain.UpdateSyncingState()
	return nil
}

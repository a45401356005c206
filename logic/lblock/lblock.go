package lblock

import (
	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/logic/lmerkleroot"
	"github.com/cosanta/cosanta-core/logic/ltx"
	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/chain"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/model/consensus"
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/model/versionbits"
	"github.com/cosanta/cosanta-core/util"
)

// CheckBlock performs the context-free validation of a block body:
// header proof, merkle root, size caps against the relaxed limits, the
// transaction-level checks and, for proof of stake, the stake binding.
// The height accurate limits are re-applied in ContextualCheckBlock.
func CheckBlock(pblock *block.Block, checkHeader, checkMerkleRoot bool) error {
	if pblock.Checked {
		return nil
	}

	blkHeader := pblock.Header
	if checkHeader {
		if err := CheckBlockHeader(&blkHeader); err != nil {
			return err
		}
	}

	if checkMerkleRoot {
		mutated := false
		merkleRoot := lmerkleroot.BlockMerkleRoot(pblock.Txs, &mutated)
		if !blkHeader.MerkleRoot.IsEqual(&merkleRoot) {
			log.Debug("ErrorBadTxMrklRoot on block(%s)", blkHeader.GetHash())
			return errcode.New(errcode.ErrorBadTxnMrklRoot)
		}

		// Check for merkle tree malleability (CVE-2012-2459): repeating
		// sequences of transactions in a block without affecting the
		// merkle root of a block, while still invalidating it.
		if mutated {
			log.Debug("ErrorBadTxnsDuplicate on block(%s)", blkHeader.GetHash())
			return errcode.New(errcode.ErrorbadTxnsDuplicate)
		}
	}

	if len(pblock.Txs) == 0 {
		return errcode.New(errcode.ErrorBlockNotStartWithCoinBase)
	}

	nMaxBlockSize := consensus.MaxBlockSize(true)
	minTransactionSize := uint64(tx.NewEmptyTx().EncodeSize())
	if uint64(len(pblock.Txs))*minTransactionSize > nMaxBlockSize {
		log.Debug("block tx count %d exceeds the size cap", len(pblock.Txs))
		return errcode.New(errcode.ErrorBlockSize)
	}

	if uint64(pblock.EncodeSize()) > nMaxBlockSize {
		log.Debug("block size %d exceeds the size cap", pblock.EncodeSize())
		return errcode.New(errcode.ErrorBlockSize)
	}

	if err := ltx.CheckBlockTransactions(pblock.Txs, consensus.MaxBlockSigOps(true)); err != nil {
		return err
	}

	// The stake binding is part of the block proof, so a proof of stake
	// body is never valid without it.
	if pblock.Header.IsProofOfStake() {
		if err := pblock.CheckStake(); err != nil {
			return err
		}
	}

	if checkHeader && checkMerkleRoot {
		pblock.Checked = true
	}

	return nil
}

// ContextualCheckBlock re-validates the parts of a block that depend on
// the height it would connect at: the height accurate size and sigop
// caps, lock time finality against BIP113 and the coinbase height rule.
func ContextualCheckBlock(pblock *block.Block, indexPrev *blockindex.BlockIndex) error {
	var height int32
	var medianTimePast int64
	if indexPrev != nil {
		height = indexPrev.Height + 1
		medianTimePast = indexPrev.GetMedianTimePast()
	}
	params := chainparams.ActiveNetParams

	lockTimeFlags := 0
	versionbits.VBCache.Lock()
	csvState := versionbits.VersionBitsState(indexPrev, params, consensus.DeploymentCSV, versionbits.VBCache)
	versionbits.VBCache.Unlock()
	if csvState == versionbits.ThresholdActive {
		lockTimeFlags |= consensus.LocktimeMedianTimePast
	}

	lockTimeCutoff := pblock.Header.GetBlockTime()
	if lockTimeFlags&consensus.LocktimeMedianTimePast != 0 {
		lockTimeCutoff = medianTimePast
	}

	dip0001Active := height >= params.DIP0001Height
	nMaxBlockSize := consensus.MaxBlockSize(dip0001Active)
	if uint64(pblock.EncodeSize()) > nMaxBlockSize {
		log.Debug("block size %d exceeds the cap at height %d", pblock.EncodeSize(), height)
		return errcode.New(errcode.ErrorBlockSize)
	}

	sigOps := uint64(0)
	for _, txn := range pblock.Txs {
		sigOps += uint64(txn.GetSigOpCountWithoutP2SH())
		if sigOps > consensus.MaxBlockSigOps(dip0001Active) {
			return errcode.New(errcode.ErrorBlockSigOps)
		}
	}

	return ltx.ContextualCheckBlockTransactions(pblock.Txs, height, lockTimeCutoff)
}

// AcceptBlockHeader validates a header and wires it into the block
// index map. A header that is already indexed is returned as is, so
// repeated announcements stay cheap. Callers hold the chain lock.
func AcceptBlockHeader(bh *block.BlockHeader) (*blockindex.BlockIndex, error) {
	gChain := chain.GetInstance()

	hash := bh.GetHash()
	if bIndex := gChain.FindBlockIndex(hash); bIndex != nil {
		if bIndex.IsInvalid() {
			log.Debug("AcceptBlockHeader: block(%s) is marked invalid", hash)
			return bIndex, errcode.New(errcode.ErrorBlockHeaderNoValid)
		}
		return bIndex, nil
	}

	if err := CheckBlockHeader(bh); err != nil {
		return nil, err
	}

	// Everything but the genesis block must extend an indexed, valid
	// parent.
	if hash != *gChain.GetParams().GenesisHash {
		indexPrev := gChain.FindBlockIndex(bh.HashPrevBlock)
		if indexPrev == nil {
			log.Debug("AcceptBlockHeader: block(%s) has orphan prev(%s)", hash, bh.HashPrevBlock)
			return nil, errcode.New(errcode.ErrorBlockHeaderNoParent)
		}
		if indexPrev.IsInvalid() {
			log.Debug("AcceptBlockHeader: block(%s) extends invalid prev(%s)", hash, bh.HashPrevBlock)
			return nil, errcode.New(errcode.ErrorBadPrevBlock)
		}
		if err := ContextualCheckBlockHeader(bh, indexPrev, util.GetAdjustedTimeSec()); err != nil {
			return nil, err
		}
	}

	bIndex := blockindex.NewBlockIndex(bh)
	if err := gChain.AddToIndexMap(bIndex); err != nil {
		return nil, err
	}

	return bIndex, nil
}

// AcceptBlock validates a full block and records its body against the
// index. fNewBlock reports whether the body was new to this node; a
// block whose data is already known short-circuits without error.
// Unless fRequested, blocks that do not better the current tip are
// refused. Callers hold the chain lock.
func AcceptBlock(pblock *block.Block, fRequested bool) (bIndex *blockindex.BlockIndex, fNewBlock bool, err error) {
	bIndex, err = AcceptBlockHeader(&pblock.Header)
	if err != nil {
		return nil, false, err
	}

	if bIndex.HasData() {
		log.Warn("AcceptBlock: block(%s) already have data", bIndex.BlockHash)
		return bIndex, false, nil
	}

	if !fRequested {
		gChain := chain.GetInstance()
		tip := gChain.Tip()
		hasMoreWork := tip == nil || bIndex.ChainWork.Cmp(&tip.ChainWork) > 0
		if !hasMoreWork {
			log.Debug("AcceptBlock: block(%s) does not better the tip", bIndex.BlockHash)
			return bIndex, false, errcode.New(errcode.ErrorBlockNotOnTip)
		}
	}

	fNewBlock = true
	if err = CheckBlock(pblock, true, true); err != nil {
		bIndex.AddStatus(blockindex.StatusFailed)
		return bIndex, fNewBlock, err
	}
	if err = ContextualCheckBlock(pblock, bIndex.Prev); err != nil {
		bIndex.AddStatus(blockindex.StatusFailed)
		return bIndex, fNewBlock, err
	}

	bIndex.TxCount = len(pblock.Txs)
	bIndex.AddStatus(blockindex.StatusDataStored)

	return bIndex, fNewBlock, nil
}

// TestBlockValidity runs every pre-connection check against a candidate
// block that would extend indexPrev, which must be the current tip.
// Callers hold the chain lock.
func TestBlockValidity(indexPrev *blockindex.BlockIndex, pblock *block.Block,
	checkHeaderProof, checkMerkleRoot bool) error {
	gChain := chain.GetInstance()
	if indexPrev == nil || indexPrev != gChain.Tip() {
		return errcode.NewError(errcode.ErrorBlockNotOnTip, "indexPrev is not the chain tip")
	}

	if err := ContextualCheckBlockHeader(&pblock.Header, indexPrev, util.GetAdjustedTimeSec()); err != nil {
		return err
	}
	if err := CheckBlock(pblock, checkHeaderProof, checkMerkleRoot); err != nil {
		return err
	}
	return ContextualCheckBlock(pblock, indexPrev)
}

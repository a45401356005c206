package rpc

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cosanta/cosanta-core/conf"
	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/chain"
	"github.com/cosanta/cosanta-core/model/consensus"
	"github.com/cosanta/cosanta-core/model/mempool"
	"github.com/cosanta/cosanta-core/model/versionbits"
	"github.com/cosanta/cosanta-core/rpc/btcjson"
	"github.com/cosanta/cosanta-core/util"
	"github.com/cosanta/cosanta-core/util/amount"
	"gopkg.in/fatih/set.v0"
)

// tipWaitCheckInterval bounds how long a waitforblock-style handler
// sleeps before it rechecks the client connection.
const tipWaitCheckInterval = 10 * time.Second

var blockchainHandlers = map[string]commandHandler{
	"getblockchaininfo":     handleGetBlockChainInfo,
	"getbestblockhash":      handleGetBestBlockHash,
	"getblockcount":         handleGetBlockCount,
	"getblockhash":          handleGetBlockHash,
	"getblockheader":        handleGetBlockHeader,
	"getchaintips":          handleGetChainTips,
	"getdifficulty":         handleGetDifficulty,
	"getmempoolancestors":   handleGetMempoolAncestors,
	"getmempooldescendants": handleGetMempoolDescendants,
	"getmempoolentry":       handleGetMempoolEntry,
	"getmempoolinfo":        handleGetMempoolInfo,
	"getrawmempool":         handleGetRawMempool,

	/*not shown in help*/
	"waitfornewblock":    handleWaitForNewBlock,
	"waitforblock":       handleWaitForBlock,
	"waitforblockheight": handleWaitForBlockHeight,
}

func handleGetBlockChainInfo(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	gChain := chain.GetInstance()
	gChain.RLock()
	defer gChain.RUnlock()

	params := gChain.GetParams()
	tip := gChain.Tip()
	if tip == nil {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCMisc,
			Message: "Chain has no tip",
		}
	}

	chainInfo := &btcjson.GetBlockChainInfoResult{
		Chain:                params.Name,
		Blocks:               gChain.Height(),
		Headers:              gChain.Height(),
		BestBlockHash:        tip.GetBlockHash().String(),
		Difficulty:           getDifficulty(tip),
		MedianTime:           tip.GetMedianTimePast(),
		VerificationProgress: 1,
		ChainWork:            tip.ChainWork.Text(16),
		Pruned:               false,
		Bip9SoftForks:        make(map[string]*btcjson.Bip9SoftForkDescription),
	}

	// Soft forks deployed by super-majority block signalling.
	height := tip.Height
	chainInfo.SoftForks = []*btcjson.SoftForkDescription{
		{
			ID:      "bip34",
			Version: 2,
			Reject: struct {
				Status bool `json:"status"`
			}{
				Status: height >= params.BIP34Height,
			},
		},
		{
			ID:      "bip66",
			Version: 3,
			Reject: struct {
				Status bool `json:"status"`
			}{
				Status: height >= params.BIP66Height,
			},
		},
		{
			ID:      "bip65",
			Version: 4,
			Reject: struct {
				Status bool `json:"status"`
			}{
				Status: height >= params.BIP65Height,
			},
		},
	}

	// BIP0009 version bits deployments, keyed by deployment name. The
	// state is always computed against the tip, which is indexPrev for
	// the next block.
	versionbits.VBCache.Lock()
	defer versionbits.VBCache.Unlock()
	for i := 0; i < int(consensus.MaxVersionBitsDeployments); i++ {
		pos := consensus.DeploymentPos(i)
		state := versionbits.VersionBitsState(tip, params, pos, versionbits.VBCache)
		forkName := getVbName(pos)

		statusString, err := softForkStatus(state)
		if err != nil {
			return nil, &btcjson.RPCError{
				Code: btcjson.ErrRPCInternal.Code,
				Message: fmt.Sprintf("unknown deployment status: %v",
					state),
			}
		}

		deploymentDetails := &params.Deployments[pos]
		chainInfo.Bip9SoftForks[forkName] = &btcjson.Bip9SoftForkDescription{
			Status:    strings.ToLower(statusString),
			Bit:       uint8(deploymentDetails.Bit),
			StartTime: deploymentDetails.StartTime,
			Timeout:   deploymentDetails.Timeout,
			Since:     versionbits.VersionBitsStateSinceHeight(tip, params, pos, versionbits.VBCache),
		}
	}

	return chainInfo, nil
}

// softForkStatus converts a ThresholdState state into a human readable string
// corresponding to the particular state.
func softForkStatus(state versionbits.ThresholdState) (string, error) {
	switch state {
	case versionbits.ThresholdDefined:
		return "defined", nil
	case versionbits.ThresholdStarted:
		return "started", nil
	case versionbits.ThresholdLockedIn:
		return "lockedin", nil
	case versionbits.ThresholdActive:
		return "active", nil
	case versionbits.ThresholdFailed:
		return "failed", nil
	default:
		return "", fmt.Errorf("unknown deployment state: %v", state)
	}
}

func handleGetBestBlockHash(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	gChain := chain.GetInstance()
	gChain.RLock()
	defer gChain.RUnlock()
	return gChain.Tip().GetBlockHash().String(), nil
}

func handleGetBlockCount(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	gChain := chain.GetInstance()
	gChain.RLock()
	defer gChain.RUnlock()
	return gChain.Height(), nil
}

func handleGetBlockHash(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.GetBlockHashCmd)

	gChain := chain.GetInstance()
	gChain.RLock()
	defer gChain.RUnlock()

	blockIndex := gChain.GetIndex(c.Height)
	if blockIndex == nil {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCOutOfRange,
			Message: "Block height out of range",
		}
	}
	return blockIndex.GetBlockHash().String(), nil
}

func handleGetBlockHeader(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.GetBlockHeaderCmd)

	hash, err := util.GetHashFromStr(c.Hash)
	if err != nil {
		return nil, rpcDecodeHexError(c.Hash)
	}

	gChain := chain.GetInstance()
	gChain.RLock()
	defer gChain.RUnlock()

	blockIndex := gChain.FindBlockIndex(*hash)
	if blockIndex == nil {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCBlockNotFound,
			Message: "Block not found",
		}
	}

	// When the verbose flag is set false
	if c.Verbose != nil && !*c.Verbose {
		var headerBuf bytes.Buffer
		err := blockIndex.Header.Serialize(&headerBuf)
		if err != nil {
			context := "Failed to serialize block header"
			return nil, internalRPCError(err.Error(), context)
		}
		return hex.EncodeToString(headerBuf.Bytes()), nil
	}

	confirmations := int32(-1)
	// Only report confirmations if the block is on the main chain
	if gChain.Contains(blockIndex) {
		confirmations = gChain.TipHeight() - blockIndex.Height + 1
	}

	var previousblockhash string
	if blockIndex.Prev != nil {
		previousblockhash = blockIndex.Prev.GetBlockHash().String()
	}

	var nextblockhash string
	next := gChain.Next(blockIndex)
	if next != nil {
		nextblockhash = next.GetBlockHash().String()
	}

	blockHeaderReply := btcjson.GetBlockHeaderVerboseResult{
		Hash:          c.Hash,
		Confirmations: uint64(confirmations),
		Height:        blockIndex.Height,
		Version:       blockIndex.Header.Version,
		VersionHex:    fmt.Sprintf("%08x", blockIndex.Header.Version),
		MerkleRoot:    blockIndex.Header.MerkleRoot.String(),
		Time:          blockIndex.Header.Time,
		Mediantime:    blockIndex.GetMedianTimePast(),
		Nonce:         uint64(blockIndex.Header.Nonce),
		Bits:          fmt.Sprintf("%08x", blockIndex.Header.Bits),
		Difficulty:    getDifficulty(blockIndex),
		Chainwork:     blockIndex.ChainWork.Text(16),
		PreviousHash:  previousblockhash,
		NextHash:      nextblockhash,
	}
	return blockHeaderReply, nil
}

func handleGetChainTips(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	// The set of chain tips is the active tip plus every indexed block
	// that no other indexed block builds on.
	gChain := chain.GetInstance()
	gChain.RLock()
	defer gChain.RUnlock()

	setOrphans := set.New()
	setPrevs := set.New()
	gChain.ForEachBlockIndex(func(bi *blockindex.BlockIndex) bool {
		if !gChain.Contains(bi) {
			setOrphans.Add(bi)
			if bi.Prev != nil {
				setPrevs.Add(bi.Prev)
			}
		}
		return true
	})

	setTips := set.New()
	setOrphans.Each(func(item interface{}) bool {
		if !setPrevs.Has(item) {
			setTips.Add(item)
		}
		return true
	})
	setTips.Add(gChain.Tip())

	ret := btcjson.GetChainTipsResult{
		Tips: make([]btcjson.ChainTipsInfo, 0, setTips.Size()),
	}
	setTips.Each(func(item interface{}) bool {
		bindex := item.(*blockindex.BlockIndex)
		tipInfo := btcjson.ChainTipsInfo{
			Height: bindex.Height,
			Hash:   bindex.GetBlockHash().String(),
		}
		if !gChain.Contains(bindex) {
			// Walk back to the first ancestor still on the active
			// chain to size the branch.
			fork := bindex
			for fork != nil && !gChain.Contains(fork) {
				fork = fork.Prev
			}
			if fork != nil {
				tipInfo.BranchLen = bindex.Height - fork.Height
			}
		}

		var status string
		switch {
		case gChain.Contains(bindex):
			// This block is part of the currently active chain.
			status = "active"
		case bindex.IsInvalid():
			// This block or one of its ancestors is invalid.
			status = "invalid"
		case !bindex.HasData():
			// This block cannot be connected because full block data
			// for it or one of its parents is missing.
			status = "headers-only"
		case bindex.IsValid():
			// This block is fully validated but no longer part of the
			// active chain. It was probably reorganized away.
			status = "valid-fork"
		default:
			status = "unknown"
		}
		tipInfo.Status = status

		ret.Tips = append(ret.Tips, tipInfo)

		return true
	})

	return ret, nil
}

func getDifficulty(bi *blockindex.BlockIndex) float64 {
	if bi == nil {
		return 1.0
	}
	return getDifficultyFromBits(bi.GetBlockHeader().Bits)
}

// getDifficultyFromBits returns the proof-of-work difficulty as a multiple
// of the minimum difficulty using the passed bits field from the header of
// a block.
func getDifficultyFromBits(bits uint32) float64 {
	shift := (bits >> 24) & 0xff
	diff := float64(0x0000ffff) / float64(bits&0x00ffffff)
	const factor = float64(256.0)

	for shift < 29 {
		diff *= factor
		shift++
	}

	for shift > 29 {
		diff /= factor
		shift--
	}

	return diff
}

func handleGetDifficulty(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	gChain := chain.GetInstance()
	gChain.RLock()
	defer gChain.RUnlock()
	return getDifficulty(gChain.Tip()), nil
}

func handleGetMempoolAncestors(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.GetMempoolAncestorsCmd)
	hash, err := util.GetHashFromStr(c.TxID)
	if err != nil {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInvalidParameter,
			Message: "the string " + c.TxID + " is not a standard hash",
		}
	}

	pool := mempool.GetInstance()
	pool.RLock()
	defer pool.RUnlock()

	h := pool.FindHandle(*hash)
	if h == mempool.InvalidHandle {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInvalidAddressOrKey,
			Message: "Transaction not in mempool",
		}
	}

	txSet := pool.CalculateMemPoolAncestors(h)

	if c.Verbose == nil || !*c.Verbose {
		s := make([]string, 0, len(txSet))
		for ancestor := range txSet {
			hash := pool.EntryByHandle(ancestor).Tx.GetHash()
			s = append(s, hash.String())
		}
		return s, nil
	}

	infos := make(map[string]*btcjson.GetMempoolEntryRelativeInfoVerbose)
	for ancestor := range txSet {
		entry := pool.EntryByHandle(ancestor)
		hash := entry.Tx.GetHash()
		infos[hash.String()] = entryToJSON(pool, entry)
	}
	return infos, nil
}

// entryToJSON builds the verbose mempool entry description. Caller holds
// at least the pool read lock.
func entryToJSON(pool *mempool.TxMempool, entry *mempool.TxEntry) *btcjson.GetMempoolEntryRelativeInfoVerbose {
	result := btcjson.GetMempoolEntryRelativeInfoVerbose{}
	result.Size = int(entry.TxSize)
	result.Fee = valueFromAmount(int64(entry.TxFee))
	result.ModifiedFee = valueFromAmount(int64(entry.ModFee))
	result.Time = entry.GetTime()
	result.Height = entry.TxHeight
	// Priority fields are retired and always report zero.
	result.StartingPriority = 0
	result.CurrentPriority = 0
	result.DescendantCount = entry.SumCountWithDescendants
	result.DescendantSize = entry.SumSizeWithDescendants
	result.DescendantFees = int64(entry.SumFeeWithDescendants)
	result.AncestorCount = entry.SumCountWithAncestors
	result.AncestorSize = entry.SumSizeWithAncestors
	result.AncestorFees = int64(entry.SumFeeWithAncestors)

	setDepends := make([]string, 0)
	for _, in := range entry.Tx.GetIns() {
		if pool.FindHandle(in.PreviousOutPoint.Hash) != mempool.InvalidHandle {
			setDepends = append(setDepends, in.PreviousOutPoint.Hash.String())
		}
	}
	result.Depends = setDepends

	return &result
}

func handleGetMempoolDescendants(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.GetMempoolDescendantsCmd)

	hash, err := util.GetHashFromStr(c.TxID)
	if err != nil {
		return nil, rpcDecodeHexError(c.TxID)
	}

	pool := mempool.GetInstance()
	pool.RLock()
	defer pool.RUnlock()

	h := pool.FindHandle(*hash)
	if h == mempool.InvalidHandle {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInvalidAddressOrKey,
			Message: "Transaction not in mempool",
		}
	}

	// CalculateDescendants includes the queried transaction itself.
	descendants := pool.CalculateDescendants(h)
	delete(descendants, h)

	if c.Verbose == nil || !*c.Verbose {
		des := make([]string, 0, len(descendants))
		for item := range descendants {
			hash := pool.EntryByHandle(item).Tx.GetHash()
			des = append(des, hash.String())
		}
		return des, nil
	}

	infos := make(map[string]*btcjson.GetMempoolEntryRelativeInfoVerbose)
	for item := range descendants {
		entry := pool.EntryByHandle(item)
		hash := entry.Tx.GetHash()
		infos[hash.String()] = entryToJSON(pool, entry)
	}
	return infos, nil
}

func handleGetMempoolEntry(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.GetMempoolEntryCmd)

	hash, err := util.GetHashFromStr(c.TxID)
	if err != nil {
		return nil, rpcDecodeHexError(c.TxID)
	}

	pool := mempool.GetInstance()
	pool.RLock()
	defer pool.RUnlock()

	h := pool.FindHandle(*hash)
	if h == mempool.InvalidHandle {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInvalidAddressOrKey,
			Message: "Transaction not in mempool",
		}
	}

	return entryToJSON(pool, pool.EntryByHandle(h)), nil
}

func handleGetMempoolInfo(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	pool := mempool.GetInstance()
	ret := &btcjson.GetMempoolInfoResult{
		Size:          pool.Size(),
		Bytes:         int64(pool.GetPoolAllTxSize()),
		Usage:         int64(pool.GetPoolAllTxSize()),
		MaxMempool:    conf.Cfg.Mempool.MaxPoolSize,
		MempoolMinFee: valueFromAmount(conf.Cfg.Mining.BlockMinTxFee),
	}
	return ret, nil
}

func valueFromAmount(value int64) float64 {
	abs := value
	if abs < 0 {
		abs = -abs
	}

	quotient := abs / amount.COIN
	remainder := abs % amount.COIN

	strValue := fmt.Sprintf("%d.%08d", quotient, remainder)
	if value < 0 {
		strValue = "-" + strValue
	}

	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return 0
	}
	return result
}

func handleGetRawMempool(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.GetRawMempoolCmd)

	pool := mempool.GetInstance()
	pool.RLock()
	defer pool.RUnlock()

	// Order both forms by descending ancestor package feerate, the same
	// order a block template drains the pool in.
	order := pool.AncestorScoreOrder()

	if c.Verbose != nil && *c.Verbose {
		infos := make(map[string]*btcjson.GetMempoolEntryRelativeInfoVerbose)
		for _, h := range order {
			entry := pool.EntryByHandle(h)
			hash := entry.Tx.GetHash()
			infos[hash.String()] = entryToJSON(pool, entry)
		}
		return infos, nil
	}

	txids := make([]string, 0, len(order))
	for _, h := range order {
		hash := pool.EntryByHandle(h).Tx.GetHash()
		txids = append(txids, hash.String())
	}
	return txids, nil
}

// waitForTip blocks until cond holds for the chain tip, the timeout
// lapses, or the client goes away. A timeout of zero waits forever. It
// always reports the tip it last observed.
func waitForTip(closeChan <-chan struct{}, timeoutMs int,
	cond func(tip *blockindex.BlockIndex) bool) (interface{}, error) {

	gChain := chain.GetInstance()

	var deadline time.Time
	if timeoutMs > 0 {
		deadline = time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	}

	for {
		gChain.RLock()
		tip := gChain.Tip()
		gChain.RUnlock()
		if tip == nil {
			return nil, &btcjson.RPCError{
				Code:    btcjson.ErrRPCMisc,
				Message: "Chain has no tip",
			}
		}
		if cond(tip) {
			return &btcjson.WaitForBlockResult{
				Hash:   tip.GetBlockHash().String(),
				Height: tip.Height,
			}, nil
		}

		select {
		case <-closeChan:
			return nil, &btcjson.RPCError{
				Code:    btcjson.ErrRPCMisc,
				Message: "Client disconnected",
			}
		default:
		}

		wait := tipWaitCheckInterval
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return &btcjson.WaitForBlockResult{
					Hash:   tip.GetBlockHash().String(),
					Height: tip.Height,
				}, nil
			}
			if remaining < wait {
				wait = remaining
			}
		}
		gChain.WaitForBlockChange(*tip.GetBlockHash(), wait)
	}
}

func handleWaitForNewBlock(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.WaitForNewBlockCmd)

	gChain := chain.GetInstance()
	gChain.RLock()
	tip := gChain.Tip()
	gChain.RUnlock()
	if tip == nil {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCMisc,
			Message: "Chain has no tip",
		}
	}
	startHash := *tip.GetBlockHash()

	timeout := 0
	if c.Timeout != nil {
		timeout = *c.Timeout
	}
	return waitForTip(closeChan, timeout, func(tip *blockindex.BlockIndex) bool {
		return *tip.GetBlockHash() != startHash
	})
}

func handleWaitForBlock(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.WaitForBlockCmd)

	hash, err := util.GetHashFromStr(c.BlockHash)
	if err != nil {
		return nil, rpcDecodeHexError(c.BlockHash)
	}

	timeout := 0
	if c.Timeout != nil {
		timeout = *c.Timeout
	}
	return waitForTip(closeChan, timeout, func(tip *blockindex.BlockIndex) bool {
		return *tip.GetBlockHash() == *hash
	})
}

func handleWaitForBlockHeight(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.WaitForBlockHeightCmd)

	timeout := 0
	if c.Timeout != nil {
		timeout = *c.Timeout
	}
	return waitForTip(closeChan, timeout, func(tip *blockindex.BlockIndex) bool {
		return tip.Height >= c.Height
	})
}

func registerBlockchainRPCCommands() {
	for name, handler := range blockchainHandlers {
		appendCommand(name, handler)
	}
}

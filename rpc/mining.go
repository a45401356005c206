package rpc

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/cosanta/cosanta-core/conf"
	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/logic/lblock"
	"github.com/cosanta/cosanta-core/logic/lchain"
	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/chain"
	"github.com/cosanta/cosanta-core/model/consensus"
	"github.com/cosanta/cosanta-core/model/mempool"
	"github.com/cosanta/cosanta-core/model/opcodes"
	"github.com/cosanta/cosanta-core/model/pow"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/model/txout"
	"github.com/cosanta/cosanta-core/model/versionbits"
	"github.com/cosanta/cosanta-core/policy"
	"github.com/cosanta/cosanta-core/rpc/btcjson"
	"github.com/cosanta/cosanta-core/service"
	"github.com/cosanta/cosanta-core/service/mining"
	"github.com/cosanta/cosanta-core/util"
	"github.com/cosanta/cosanta-core/util/amount"
)

var miningHandlers = map[string]commandHandler{
	"getnetworkhashps":      handleGetNetworkHashPS,
	"getmininginfo":         handleGetMiningInfo,
	"getblocktemplate":      handleGetblocktemplate,
	"submitblock":           handleSubmitBlock,
	"generatetoaddress":     handleGenerateToAddress,
	"generate":              handleGenerate,
	"setgenerate":           handleSetGenerate,
	"getgenerate":           handleGetGenerate,
	"prioritisetransaction": handlePrioritiseTransaction,
	"reservebalance":        handleReserveBalance,
	"estimatefee":           handleEstimateFee,
	"estimatesmartfee":      handleEstimateSmartFee,
	"estimaterawfee":        handleEstimateRawFee,
}

// MiningSubsystem carries the handles the mining RPCs drive. The PoW
// and stake drivers are optional; RPCs needing an absent handle fail
// with a clean error instead of wiring their own.
type MiningSubsystem struct {
	PowMiner   *mining.Miner
	StakeMiner *mining.StakeMiner
	Collab     mining.Collaborators
	Sync       mining.MasternodeSync
}

var miningSubsystemState struct {
	sync.RWMutex
	ms MiningSubsystem
}

// RegisterMiningSubsystem installs the mining handles, called once at
// startup before the RPC server accepts requests.
func RegisterMiningSubsystem(ms MiningSubsystem) {
	miningSubsystemState.Lock()
	miningSubsystemState.ms = ms
	miningSubsystemState.Unlock()
}

func miningSubsystem() MiningSubsystem {
	miningSubsystemState.RLock()
	defer miningSubsystemState.RUnlock()
	return miningSubsystemState.ms
}

// GetNetworkHashPS estimates the network hash rate from the work and
// time spanned by the lookup window ending at height. lookup <= 0
// means since the last difficulty change.
func GetNetworkHashPS(lookup int32, height int32) float64 {
	gChain := chain.GetInstance()
	gChain.RLock()
	defer gChain.RUnlock()

	index := gChain.Tip()
	if height > 0 && height < gChain.Height() {
		index = gChain.GetIndex(height)
	}

	if index == nil || index.Height == 0 {
		return 0
	}

	params := gChain.GetParams()
	if lookup <= 0 {
		lookup = index.Height%int32(params.DifficultyAdjustmentInterval()) + 1
	}
	if lookup > index.Height {
		lookup = index.Height
	}

	b := index
	minTime := b.GetBlockTime()
	maxTime := minTime
	for i := int32(0); i < lookup; i++ {
		b = b.Prev
		blockTime := b.GetBlockTime()
		if blockTime < minTime {
			minTime = blockTime
		}
		if blockTime > maxTime {
			maxTime = blockTime
		}
	}

	if minTime == maxTime {
		return 0
	}

	workDiff := new(big.Float).SetInt(new(big.Int).Sub(&index.ChainWork, &b.ChainWork))
	timeDiff := new(big.Float).SetInt64(int64(maxTime - minTime))
	hashesPerSec, _ := new(big.Float).Quo(workDiff, timeDiff).Float64()

	return hashesPerSec
}

func handleGetNetworkHashPS(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.GetNetworkHashPSCmd)
	return GetNetworkHashPS(*c.Blocks, *c.Height), nil
}

func handleGetMiningInfo(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	const defaultLookup = 120
	const defaultHeight = -1

	gChain := chain.GetInstance()
	gChain.RLock()
	index := gChain.Tip()
	gChain.RUnlock()
	if index == nil {
		return nil, internalRPCError("No chain tip available", "")
	}

	ms := miningSubsystem()
	generate := false
	genProcLimit := conf.Cfg.Mining.GenProcLimit
	var hashesPerSec int64
	if ms.PowMiner != nil {
		generate = ms.PowMiner.IsRunning()
		if generate {
			genProcLimit = int32(ms.PowMiner.NumWorkers())
		}
		hashesPerSec = ms.PowMiner.HashesPerSec()
	}

	result := &btcjson.GetMiningInfoResult{
		Blocks:           index.Height,
		CurrentBlockSize: mining.GetLastBlockSize(),
		CurrentBlockTx:   mining.GetLastBlockTx(),
		Difficulty:       getDifficulty(index),
		Errors:           "",
		Generate:         generate,
		GenProcLimit:     genProcLimit,
		HashesPerSec:     hashesPerSec,
		NetworkHashPS:    GetNetworkHashPS(defaultLookup, defaultHeight),
		PooledTx:         uint64(mempool.GetInstance().Size()),
		Chain:            gChain.GetParams().Name,
	}
	return result, nil
}

// Template cache shared by every getblocktemplate caller. A template is
// rebuilt when the tip moved, or when the mempool changed and the
// cached one is older than five seconds.
var gbtState struct {
	sync.Mutex
	transactionsUpdatedLast uint64
	indexPrev               *blockindex.BlockIndex
	start                   int64
	template                *mining.BlockTemplate
}

const (
	// longPollMaxWait is how long a longpoll holds before mempool
	// changes alone release it.
	longPollMaxWait = time.Minute

	// longPollCheckInterval slices the wait so client disconnects are
	// noticed.
	longPollCheckInterval = 10 * time.Second
)

// See https://en.bitcoin.it/wiki/BIP_0022 and
// https://en.bitcoin.it/wiki/BIP_0023 for more details.
func handleGetblocktemplate(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.GetBlockTemplateCmd)
	request := c.Request

	// Set the default mode and override it if supplied.
	mode := "template"
	if request != nil && request.Mode != "" {
		mode = request.Mode
	}

	switch mode {
	case "template":
		return handleGetBlockTemplateRequest(s, request, closeChan)
	case "proposal":
		return handleGetBlockTemplateProposal(request)
	}

	return nil, &btcjson.RPCError{
		Code:    btcjson.ErrRPCInvalidParameter,
		Message: "Invalid mode",
	}
}

func handleGetBlockTemplateRequest(s *Server, request *btcjson.TemplateRequest, closeChan <-chan struct{}) (interface{}, error) {
	log.Debug("getblocktemplate %#v", request)

	if lchain.IsInitialBlockDownload() {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCClientInInitialDownload,
			Message: "Cosanta is downloading blocks...",
		}
	}

	ms := miningSubsystem()
	if ms.Sync != nil && !ms.Sync.IsSynced() {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCClientInInitialDownload,
			Message: "Masternode information is syncing...",
		}
	}

	gChain := chain.GetInstance()
	params := gChain.GetParams()

	var submitOld *bool
	if request != nil && request.LongPollID != "" {
		var rpcErr *btcjson.RPCError
		submitOld, rpcErr = waitForLongPoll(request.LongPollID, closeChan)
		if rpcErr != nil {
			return nil, rpcErr
		}
	}

	gbtState.Lock()
	defer gbtState.Unlock()

	gChain.RLock()
	tip := gChain.Tip()
	gChain.RUnlock()
	if tip == nil {
		return nil, internalRPCError("No chain tip available", "")
	}
	if params.IsPoSEnforcedHeight(tip.Height + 1) {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCMisc,
			Message: "Proof-of-Stake is activated!",
		}
	}

	pool := mempool.GetInstance()
	if gbtState.indexPrev != tip ||
		(pool.TransactionsUpdated() != gbtState.transactionsUpdatedLast &&
			util.GetTimeSec()-gbtState.start > 5) {

		// Clear indexPrev so future calls make a new block, despite
		// any failures from here on.
		gbtState.indexPrev = nil
		gbtState.transactionsUpdatedLast = pool.TransactionsUpdated()
		gbtState.start = util.GetTimeSec()

		ba := mining.NewBlockAssembler(params, mining.DefaultAssemblerOptions(), ms.Collab)
		scriptPubKey := script.NewScriptRaw([]byte{opcodes.OP_TRUE})
		bt, err := ba.CreateNewBlock(scriptPubKey)
		if err != nil {
			return nil, &btcjson.RPCError{
				Code:    btcjson.ErrRPCOutOfRange,
				Message: "Could not create new block: " + err.Error(),
			}
		}
		gbtState.template = bt

		// Update only after CreateNewBlock succeeded.
		gbtState.indexPrev = tip
	}

	bk := gbtState.template.Block
	mining.UpdateTime(bk, gbtState.indexPrev, params)
	bk.Header.Nonce = 0

	res, err := blockTemplateResult(gbtState.template, gbtState.indexPrev,
		gbtState.transactionsUpdatedLast, submitOld)
	if err != nil {
		return nil, err
	}
	log.Debug("getblocktemplate response bits: %s, height: %d, time: %d, prevhash: %s",
		res.Bits, res.Height, res.CurTime, res.PreviousHash)
	return res, nil
}

// decodeLongPollID splits a longpollid into the watched tip hash and
// the mempool sequence the template was cut at.
func decodeLongPollID(lpid string) (util.Hash, uint64, bool) {
	if len(lpid) <= 64 {
		return util.Hash{}, 0, false
	}
	hash, err := util.GetHashFromStr(lpid[:64])
	if err != nil {
		return util.Hash{}, 0, false
	}
	txUpdated, err := strconv.ParseUint(lpid[64:], 10, 64)
	if err != nil {
		return util.Hash{}, 0, false
	}
	return *hash, txUpdated, true
}

// waitForLongPoll blocks until the chain tip moves away from the hash
// in the longpollid, or a minute has passed and the mempool changed. A
// malformed longpollid releases immediately. The returned submitold
// tells the caller whether work against the old template is still
// worth submitting.
func waitForLongPoll(lpid string, closeChan <-chan struct{}) (*bool, *btcjson.RPCError) {
	watched, lpTxUpdated, ok := decodeLongPollID(lpid)
	if !ok {
		return nil, nil
	}

	gChain := chain.GetInstance()
	pool := mempool.GetInstance()
	deadline := time.Now().Add(longPollMaxWait)

	cur := watched
	for {
		select {
		case <-closeChan:
			return nil, &btcjson.RPCError{
				Code:    btcjson.ErrRPCMisc,
				Message: "Client disconnected",
			}
		default:
		}

		cur = gChain.WaitForBlockChange(watched, longPollCheckInterval)
		if cur != watched {
			break
		}
		if time.Now().After(deadline) && pool.TransactionsUpdated() != lpTxUpdated {
			break
		}
	}

	// Stale work stays submittable only while the parent is unchanged.
	submitOld := cur == watched
	return &submitOld, nil
}

// payeesToResult renders the masternode or superblock payment split.
func payeesToResult(outs []*txout.TxOut) []btcjson.GetBlockTemplateResultPayee {
	payees := make([]btcjson.GetBlockTemplateResultPayee, 0, len(outs))
	for _, out := range outs {
		payee := btcjson.GetBlockTemplateResultPayee{
			Script: hex.EncodeToString(out.GetScriptPubKey().Bytes()),
			Amount: int64(out.GetValue()),
		}
		if addr, err := out.GetScriptPubKey().ExtractAddress(); err == nil {
			payee.Payee = addr.String()
		}
		payees = append(payees, payee)
	}
	return payees
}

// blockTemplateResult converts a block template into the form
// getblocktemplate hands to miners.
//
// This function MUST be called with the template state locked.
func blockTemplateResult(bt *mining.BlockTemplate, indexPrev *blockindex.BlockIndex,
	transactionsUpdatedLast uint64, submitOld *bool) (*btcjson.GetBlockTemplateResult, error) {
	params := chain.GetInstance().GetParams()
	height := indexPrev.Height + 1

	setTxIndex := make(map[util.Hash]int)
	var i int
	transactions := make([]btcjson.GetBlockTemplateResultTx, 0, len(bt.Block.Txs))
	for _, transaction := range bt.Block.Txs {
		txID := transaction.GetHash()
		setTxIndex[txID] = i
		i++

		if transaction.IsCoinBase() {
			continue
		}

		entry := btcjson.GetBlockTemplateResultTx{}

		dataBuf := bytes.NewBuffer(nil)
		if err := transaction.Serialize(dataBuf); err != nil {
			log.Error("getblocktemplate: serialize tx failed: %v", err)
			return nil, internalRPCError("Failed to serialize transaction", err.Error())
		}
		entry.Data = hex.EncodeToString(dataBuf.Bytes())

		entry.TxID = txID.String()
		entry.Hash = txID.String()

		deps := make([]int64, 0)
		for _, in := range transaction.GetIns() {
			if idx, ok := setTxIndex[in.PreviousOutPoint.Hash]; ok {
				deps = append(deps, int64(idx))
			}
		}
		entry.Depends = deps

		indexInTemplate := i - 1
		entry.Fee = int64(bt.TxFees[indexInTemplate])
		entry.SigOps = bt.TxSigOpsCount[indexInTemplate]

		transactions = append(transactions, entry)
	}

	// Deployment state for the BIP9 rules and vbavailable sets.
	rules := make([]string, 0)
	vbAvailable := make(map[string]uint32)
	versionbits.VBCache.Lock()
	for pos := consensus.DeploymentPos(0); pos < consensus.MaxVersionBitsDeployments; pos++ {
		state := versionbits.VersionBitsState(indexPrev, params, pos, versionbits.VBCache)
		switch state {
		case versionbits.ThresholdActive:
			rules = append(rules, getVbName(pos))
		case versionbits.ThresholdStarted, versionbits.ThresholdLockedIn:
			vbAvailable[getVbName(pos)] = uint32(params.Deployments[pos].Bit)
		}
	}
	versionbits.VBCache.Unlock()

	mutable := []string{"time", "transactions", "prevblock"}

	coinbase := bt.Block.Txs[0]
	coinbaseValue := int64(0)
	for _, out := range coinbase.GetOuts() {
		coinbaseValue += int64(out.GetValue())
	}

	dip0001Active := height >= params.DIP0001Height
	maxSigOps := consensus.MaxBlockSigOps(dip0001Active)
	maxSize := consensus.MaxBlockSize(dip0001Active)

	target := pow.CompactToBig(bt.Block.Header.Bits)
	mnStarted := height >= params.MasternodePaymentsStartBlock
	sbStarted := height >= params.SuperblockStartBlock

	return &btcjson.GetBlockTemplateResult{
		Capabilities:  []string{"proposal"},
		Version:       bt.Block.Header.Version,
		Rules:         rules,
		VbAvailable:   vbAvailable,
		VbRequired:    0,
		PreviousHash:  bt.Block.Header.HashPrevBlock.String(),
		Transactions:  transactions,
		CoinbaseAux:   &btcjson.GetBlockTemplateResultAux{Flags: hex.EncodeToString([]byte(mining.CoinbaseFlags))},
		CoinbaseValue: &coinbaseValue,
		LongPollID:    indexPrev.GetBlockHash().String() + strconv.FormatUint(transactionsUpdatedLast, 10),
		SubmitOld:     submitOld,
		Target:        fmt.Sprintf("%064x", target),
		MinTime:       indexPrev.GetMedianTimePast() + 1,
		Mutable:       mutable,
		NonceRange:    "00000000ffffffff",
		SigOpLimit:    int64(maxSigOps),
		SizeLimit:     int64(maxSize),
		CurTime:       int64(bt.Block.Header.Time),
		Bits:          fmt.Sprintf("%08x", bt.Block.Header.Bits),
		PreviousBits:  fmt.Sprintf("%08x", bt.PreviousBits),
		Height:        int64(height),

		Masternode:                 payeesToResult(bt.VoutMasternodePayments),
		MasternodePaymentsStarted:  mnStarted,
		MasternodePaymentsEnforced: mnStarted,
		Superblock:                 payeesToResult(bt.VoutSuperblockPayments),
		SuperblocksStarted:         sbStarted,
		SuperblocksEnabled:         sbStarted,
		CoinbasePayload:            hex.EncodeToString(coinbase.GetExtraPayload()),
	}, nil
}

func getVbName(pos consensus.DeploymentPos) string {
	if int(pos) >= len(versionbits.VersionBitsDeploymentInfo) {
		log.Error("deployment position %d out of range", pos)
		return ""
	}
	vbinfo := versionbits.VersionBitsDeploymentInfo[pos]
	s := vbinfo.Name
	if !vbinfo.GbtForce {
		s = "!" + s
	}
	return s
}

func handleGetBlockTemplateProposal(request *btcjson.TemplateRequest) (interface{}, error) {
	hexData := request.Data
	if hexData == "" {
		return false, &btcjson.RPCError{
			Code: btcjson.ErrRPCType,
			Message: "Data must contain the " +
				"hex-encoded serialized block that is being " +
				"proposed",
		}
	}

	// Ensure the provided data is sane and deserialize the proposed block.
	if len(hexData)%2 != 0 {
		hexData = "0" + hexData
	}

	dataBytes, err := hex.DecodeString(hexData)
	if err != nil {
		return false, &btcjson.RPCError{
			Code: btcjson.ErrRPCDeserialization,
			Message: fmt.Sprintf("Data must be "+
				"hexadecimal string (not %q)", hexData),
		}
	}
	var bk block.Block
	if err := bk.Unserialize(bytes.NewReader(dataBytes)); err != nil {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCDeserialization,
			Message: "Block decode failed: " + err.Error(),
		}
	}

	gChain := chain.GetInstance()
	gChain.RLock()
	defer gChain.RUnlock()

	hash := bk.Header.GetHash()
	bindex := gChain.FindBlockIndex(hash)
	if bindex != nil {
		if bindex.IsValid() {
			return "duplicate", nil
		}
		if bindex.IsInvalid() {
			return "duplicate-invalid", nil
		}
		return "duplicate-inconclusive", nil
	}

	indexPrev := gChain.Tip()
	// TestBlockValidity only supports blocks built on the current tip.
	if bk.Header.HashPrevBlock != *indexPrev.GetBlockHash() {
		return "inconclusive-not-best-prevblk", nil
	}

	err = lblock.TestBlockValidity(indexPrev, &bk, false, true)
	return bip22ValidationResult(errcode.GetBip22Result(err))
}

// bip22ValidationResult folds a validation outcome into the BIP22
// proposal response: null for valid, a reject string for invalid, an
// RPC error for anything that kept validation from finishing.
func bip22ValidationResult(err error) (interface{}, error) {
	projectError, ok := err.(errcode.ProjectError)
	if !ok {
		return "valid?", nil
	}

	switch projectError.Code {
	case int(errcode.ModelValid):
		return nil, nil
	case int(errcode.ModelError):
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCVerify,
			Message: projectError.Desc,
		}
	case int(errcode.ModelInvalid):
		strRejectReason := projectError.Desc
		if strRejectReason == "" {
			strRejectReason = "rejected"
		}
		return strRejectReason, nil
	}

	// Should be impossible.
	return "valid?", nil
}

// handleSubmitBlock implements the submitblock command.
func handleSubmitBlock(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.SubmitBlockCmd)

	if c.Options != nil && c.Options.WorkID != "" {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInvalidParameter,
			Message: "Block submitted via submitblock must not carry a workid",
		}
	}

	// Unserialize the submitted block.
	hexStr := c.HexBlock
	if len(hexStr)%2 != 0 {
		hexStr = "0" + c.HexBlock
	}
	serializedBlock, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, rpcDecodeHexError(hexStr)
	}

	bk := &block.Block{}
	err = bk.Unserialize(bytes.NewBuffer(serializedBlock))
	if err != nil {
		log.Error("submitblock: block decode failed: %s", err.Error())
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCDeserialization,
			Message: "Block decode failed: " + err.Error(),
		}
	}

	if len(bk.Txs) == 0 || !bk.Txs[0].IsCoinBase() {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCDeserialization,
			Message: "Block does not start with a coinbase",
		}
	}

	hash := bk.GetHash()
	gChain := chain.GetInstance()
	gChain.RLock()
	bindex := gChain.FindBlockIndex(hash)
	gChain.RUnlock()
	if bindex != nil {
		if bindex.IsValid() && bindex.HasData() {
			return "duplicate", nil
		}
		if bindex.IsInvalid() {
			return "duplicate-invalid", nil
		}
		// Known header without a validated body: run it through again.
	}

	accepted, _, err := service.ProcessNewBlock(bk, true)
	if err != nil {
		log.Warn("submitblock: rejected %s: %v", hash.String(), err)
		return "rejected: " + err.Error(), nil
	}
	if !accepted {
		return "inconclusive", nil
	}
	log.Debug("Accepted block %s via submitblock", &hash)
	return nil, nil
}

// coinbaseScriptForAddress turns a base58 destination into the locking
// script the generated coinbases pay to.
func coinbaseScriptForAddress(addrStr string) (*script.Script, *btcjson.RPCError) {
	addr, err := script.AddressFromString(addrStr)
	if err != nil {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInvalidAddressOrKey,
			Message: "Error: Invalid address",
		}
	}
	return script.NewScriptFromAddress(addr), nil
}

func handleGenerateToAddress(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.GenerateToAddressCmd)

	coinbaseScript, rpcErr := coinbaseScriptForAddress(c.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}

	return generateBlocks(coinbaseScript, int(c.NumBlocks), *c.MaxTries)
}

// handleGenerate handles generate commands.
func handleGenerate(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.GenerateCmd)

	// Respond with an error if the client is requesting 0 blocks to be generated.
	if c.NumBlocks == 0 {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInvalidParameter,
			Message: "Please request a nonzero number of blocks to generate.",
		}
	}

	addr := conf.Cfg.Mining.MiningAddr
	if addr == "" {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInternal.Code,
			Message: "No coinbase destination configured (set mining address)",
		}
	}

	coinbaseScript, rpcErr := coinbaseScriptForAddress(addr)
	if rpcErr != nil {
		return nil, rpcErr
	}

	return generateBlocks(coinbaseScript, int(c.NumBlocks), *c.MaxTries)
}

func generateBlocks(coinbaseScript *script.Script, numBlocks int, maxTries uint64) (interface{}, error) {
	gChain := chain.GetInstance()
	params := gChain.GetParams()
	if !params.MineBlocksOnDemand {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCDifficulty,
			Message: "No support for `generate` on the current network. Use the `getblocktemplate` RPC instead",
		}
	}

	ms := miningSubsystem()
	ba := mining.NewBlockAssembler(params, mining.DefaultAssemblerOptions(), ms.Collab)
	hashes, err := mining.GenerateBlocks(ba, coinbaseScript, numBlocks, maxTries, service.ProcessNewBlock)
	if err != nil {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInternal.Code,
			Message: err.Error(),
		}
	}

	ret := make([]string, 0, len(hashes))
	for _, h := range hashes {
		ret = append(ret, h.String())
	}
	return ret, nil
}

// handleSetGenerate drives the background PoW miner.
func handleSetGenerate(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.SetGenerateCmd)

	ms := miningSubsystem()
	if ms.PowMiner == nil {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInternal.Code,
			Message: "Mining is not available (no miner configured)",
		}
	}

	genProcLimit := -1
	if c.GenProcLimit != nil {
		genProcLimit = int(*c.GenProcLimit)
	}

	if !c.Generate || genProcLimit == 0 {
		ms.PowMiner.Stop()
		conf.Cfg.Mining.Generate = false
		return nil, nil
	}

	if err := ms.PowMiner.Start(genProcLimit); err != nil {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInternal.Code,
			Message: err.Error(),
		}
	}
	conf.Cfg.Mining.Generate = true
	conf.Cfg.Mining.GenProcLimit = int32(genProcLimit)
	return nil, nil
}

func handleGetGenerate(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	ms := miningSubsystem()
	return ms.PowMiner != nil && ms.PowMiner.IsRunning(), nil
}

// handlePrioritiseTransaction bumps the mining priority of a mempool
// transaction by a fee delta in satoshis.
func handlePrioritiseTransaction(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.PrioritiseTransactionCmd)

	hash, err := util.GetHashFromStr(c.TxID)
	if err != nil {
		return nil, rpcDecodeHexError(c.TxID)
	}

	mempool.GetInstance().PrioritiseTransaction(*hash, amount.Amount(c.FeeDelta))
	return true, nil
}

// handleReserveBalance keeps part of the wallet balance out of staking.
// The amount is rounded down to a whole cent.
func handleReserveBalance(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.ReserveBalanceCmd)

	ms := miningSubsystem()
	staker := ms.Collab.Staker
	if staker == nil {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInternal.Code,
			Message: "Staking wallet is not available",
		}
	}

	if c.Reserve != nil {
		if !*c.Reserve {
			if c.Amount != nil && *c.Amount > 0 {
				return nil, &btcjson.RPCError{
					Code:    btcjson.ErrRPCInvalidParameter,
					Message: "cannot specify amount to turn off reserve",
				}
			}
			staker.SetReserveBalance(0)
		} else {
			if c.Amount == nil {
				return nil, &btcjson.RPCError{
					Code:    btcjson.ErrRPCInvalidParameter,
					Message: "must provide amount to reserve balance",
				}
			}
			reserve, err := amount.NewAmount(*c.Amount)
			if err != nil || reserve < 0 {
				return nil, &btcjson.RPCError{
					Code:    btcjson.ErrRPCInvalidParameter,
					Message: errcode.ErrorNegativeReserve.String(),
				}
			}
			// Round down to cent.
			reserve = (reserve / amount.CENT) * amount.CENT
			staker.SetReserveBalance(reserve)
		}
	}

	current := staker.ReserveBalance()
	return map[string]interface{}{
		"reserve": current > 0,
		"amount":  valueFromAmount(int64(current)),
	}, nil
}

// handleEstimateFee returns the feerate in coin/kB a transaction should
// pay to confirm within nblocks, -1 when there is not enough data.
func handleEstimateFee(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.EstimateFeeCmd)

	if c.NumBlocks <= 0 {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInvalidParameter,
			Message: "Parameter nblocks must be positive",
		}
	}

	rate := policy.GetFeeEstimator().EstimateFee(int(c.NumBlocks))
	if rate.SataoshisPerK <= 0 {
		return float64(-1), nil
	}
	return valueFromAmount(rate.GetFeePerK()), nil
}

func handleEstimateSmartFee(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.EstimateSmartFeeCmd)

	if c.ConfTarget < 1 {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInvalidParameter,
			Message: "Invalid conf_target, must be a positive integer",
		}
	}

	rate, foundTarget := policy.GetFeeEstimator().EstimateSmartFee(int(c.ConfTarget))
	result := &btcjson.EstimateSmartFeeResult{Blocks: int32(foundTarget)}
	if rate.SataoshisPerK > 0 {
		feerate := valueFromAmount(rate.GetFeePerK())
		result.FeeRate = &feerate
	} else {
		result.Errors = []string{"Insufficient data or no feerate found"}
	}
	return result, nil
}

func handleEstimateRawFee(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	c := cmd.(*btcjson.EstimateRawFeeCmd)

	if c.ConfTarget < 1 {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInvalidParameter,
			Message: "Invalid conf_target, must be a positive integer",
		}
	}
	threshold := *c.Threshold
	if threshold <= 0 || threshold > 1 {
		return nil, &btcjson.RPCError{
			Code:    btcjson.ErrRPCInvalidParameter,
			Message: "Invalid threshold, must be between 0 and 1",
		}
	}

	rate, ok := policy.GetFeeEstimator().EstimateRawFee(int(c.ConfTarget), threshold)
	result := &btcjson.EstimateRawFeeResult{
		Decay:     policy.DefaultDecay,
		Threshold: threshold,
		Blocks:    c.ConfTarget,
	}
	if ok && rate.SataoshisPerK > 0 {
		feerate := valueFromAmount(rate.GetFeePerK())
		result.FeeRate = &feerate
	}
	return result, nil
}

func registerMiningRPCCommands() {
	for name, handler := range miningHandlers {
		appendCommand(name, handler)
	}
}

package mining

import (
	"sort"

	"github.com/cosanta/cosanta-core/conf"
	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/logic/lblock"
	"github.com/cosanta/cosanta-core/logic/lchain"
	"github.com/cosanta/cosanta-core/logic/lmerkleroot"
	"github.com/cosanta/cosanta-core/logic/ltx"
	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/chain"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/model/consensus"
	"github.com/cosanta/cosanta-core/model/mempool"
	"github.com/cosanta/cosanta-core/model/opcodes"
	"github.com/cosanta/cosanta-core/model/outpoint"
	"github.com/cosanta/cosanta-core/model/pow"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/model/txin"
	"github.com/cosanta/cosanta-core/model/txout"
	"github.com/cosanta/cosanta-core/model/versionbits"
	"github.com/cosanta/cosanta-core/util"
	"github.com/cosanta/cosanta-core/util/amount"
)

const (
	// Limit the number of attempts to add transactions to the block
	// when it is close to full; this is just a simple heuristic to
	// finish quickly if the mempool has a lot of entries.
	maxConsecutiveFailures = 1000

	// CoinbaseFlags is appended to the coinbase scriptSig after the
	// height and extra nonce.
	CoinbaseFlags = "/P2SH/"
)

// global values for getmininginfo rpc use
var (
	lastBlockTx   uint64
	lastBlockSize uint64
)

func GetLastBlockTx() uint64 {
	return lastBlockTx
}

func GetLastBlockSize() uint64 {
	return lastBlockSize
}

// BlockTemplate is a finished candidate block plus the per-slot fee
// and sigop bookkeeping and the payment split getblocktemplate exposes.
type BlockTemplate struct {
	Block         *block.Block
	TxFees        []amount.Amount
	TxSigOpsCount []int64

	VoutMasternodePayments []*txout.TxOut
	VoutSuperblockPayments []*txout.TxOut

	// PreviousBits is the parent block's compact target, surfaced as
	// "previousbits".
	PreviousBits uint32
}

func newBlockTemplate() *BlockTemplate {
	return &BlockTemplate{
		Block:         block.NewBlock(),
		TxFees:        make([]amount.Amount, 0),
		TxSigOpsCount: make([]int64, 0),
	}
}

// Collaborators are the subsystems the assembler defers to. Quorums,
// ChainLocks and SpecialTx may be nil on chains where the special
// transaction rules never activate; Staker is required only to build
// proof-of-stake templates.
type Collaborators struct {
	Quorums    QuorumProcessor
	ChainLocks ChainLockChecker
	SpecialTx  SpecialTxProcessor
	Staker     Staker
}

// AssemblerOptions are the operator-facing knobs of one assembler.
type AssemblerOptions struct {
	// MaxBlockSize will be clamped to [1000, consensus cap - 1000].
	MaxBlockSize uint64
	// MinFeeRate in satoshis per kB; packages strictly below it are
	// never selected.
	MinFeeRate int64
	// BlockVersion overrides the computed header version on networks
	// that mine on demand; -1 means no override.
	BlockVersion int32
}

func DefaultAssemblerOptions() AssemblerOptions {
	return AssemblerOptions{
		MaxBlockSize: conf.Cfg.Mining.BlockMaxSize,
		MinFeeRate:   conf.Cfg.Mining.BlockMinTxFee,
		BlockVersion: conf.Cfg.Mining.BlockVersion,
	}
}

// BlockAssembler generates a new block template, without valid proof.
// One assembler is reused across templates by a single driver; it is
// not safe for concurrent use.
type BlockAssembler struct {
	chainParams *chainparams.Params
	opts        AssemblerOptions
	collab      Collaborators

	bt              *BlockTemplate
	maxBlockSize    uint64
	maxBlockSigOps  uint64
	blockMinFeeRate util.FeeRate

	blockSize   uint64
	blockTx     uint64
	blockSigOps uint64
	fees        amount.Amount
	inBlock     map[mempool.Handle]struct{}

	height         int32
	lockTimeCutoff int64

	// Coinstake search bookkeeping, seeded from the first template's
	// header time. The interval is diagnostic only.
	lastCoinStakeSearchTime     int64
	lastCoinStakeSearchInterval int64
}

func NewBlockAssembler(params *chainparams.Params, opts AssemblerOptions,
	collab Collaborators) *BlockAssembler {
	ba := new(BlockAssembler)
	ba.chainParams = params
	ba.opts = opts
	ba.collab = collab
	ba.blockMinFeeRate = util.FeeRate{SataoshisPerK: opts.MinFeeRate}
	return ba
}

// LastCoinStakeSearchInterval is the width of the most recent kernel
// search window, zeroed while staking conditions are unfavorable.
func (ba *BlockAssembler) LastCoinStakeSearchInterval() int64 {
	return ba.lastCoinStakeSearchInterval
}

// ResetCoinStakeSearchInterval is called by the stake driver when it
// skips a round.
func (ba *BlockAssembler) ResetCoinStakeSearchInterval() {
	ba.lastCoinStakeSearchInterval = 0
}

func (ba *BlockAssembler) resetBlock(dip0001Active bool) {
	ba.bt = newBlockTemplate()
	ba.inBlock = make(map[mempool.Handle]struct{})

	ba.maxBlockSize = computeMaxGeneratedBlockSize(ba.opts.MaxBlockSize, dip0001Active)
	ba.maxBlockSigOps = consensus.MaxBlockSigOps(dip0001Active)

	// Reserve space for coinbase tx.
	ba.blockSize = 1000
	ba.blockSigOps = 100

	// These counters do not include coinbase tx.
	ba.blockTx = 0
	ba.fees = 0
}

// computeMaxGeneratedBlockSize clamps the configured size to between
// 1K and the consensus cap minus 1K for sanity.
func computeMaxGeneratedBlockSize(requested uint64, dip0001Active bool) uint64 {
	maxGeneratedBlockSize := requested
	csize := consensus.MaxBlockSize(dip0001Active) - 1000
	if csize < maxGeneratedBlockSize {
		maxGeneratedBlockSize = csize
	}
	if maxGeneratedBlockSize < 1000 {
		maxGeneratedBlockSize = 1000
	}
	return maxGeneratedBlockSize
}

func (ba *BlockAssembler) testPackage(packageSize uint64, packageSigOps int64) bool {
	if ba.blockSize+packageSize >= ba.maxBlockSize {
		return false
	}
	if ba.blockSigOps+uint64(packageSigOps) >= ba.maxBlockSigOps {
		return false
	}
	return true
}

func (ba *BlockAssembler) addToBlock(te *mempool.TxEntry) {
	ba.bt.Block.Txs = append(ba.bt.Block.Txs, te.Tx)
	ba.bt.TxFees = append(ba.bt.TxFees, te.TxFee)
	ba.bt.TxSigOpsCount = append(ba.bt.TxSigOpsCount, te.SigOpCount)
	ba.blockSize += uint64(te.TxSize)
	ba.blockTx++
	ba.blockSigOps += uint64(te.SigOpCount)
	ba.fees += te.TxFee
	ba.inBlock[te.Handle()] = struct{}{}
}

// sortByAncestorCount puts parents before children; siblings with
// equal counts order by ascending hash so commits are deterministic.
func sortByAncestorCount(pool *mempool.TxMempool, set map[mempool.Handle]struct{}) []*mempool.TxEntry {
	result := make([]*mempool.TxEntry, 0, len(set))
	for h := range set {
		if e := pool.EntryByHandle(h); e != nil {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SumCountWithAncestors != result[j].SumCountWithAncestors {
			return result[i].SumCountWithAncestors < result[j].SumCountWithAncestors
		}
		h1, h2 := result[i].Tx.GetHash(), result[j].Tx.GetHash()
		return h1.Cmp(&h2) < 0
	})
	return result
}

// isPackageFinalAndSafe runs the per-transaction gates: locktime
// finality at the new height and chain-lock safety.
func (ba *BlockAssembler) isPackageFinalAndSafe(pool *mempool.TxMempool,
	pkg map[mempool.Handle]struct{}) bool {
	for h := range pkg {
		e := pool.EntryByHandle(h)
		if e == nil {
			return false
		}
		if !ltx.IsFinalTx(e.Tx, ba.height, ba.lockTimeCutoff) {
			return false
		}
		if ba.collab.ChainLocks != nil && !ba.collab.ChainLocks.IsTxSafeForMining(e.Tx.GetHash()) {
			return false
		}
	}
	return true
}

// updatePackagesForAdded folds the committed entries out of the
// ancestor aggregates of every remaining descendant, creating or
// repositioning modified rows. Reports how many rows were touched.
func (ba *BlockAssembler) updatePackagesForAdded(pool *mempool.TxMempool, modified *modTxSet,
	added []*mempool.TxEntry, committed map[mempool.Handle]struct{}) int {
	descendantsUpdated := 0
	for _, x := range added {
		for d := range pool.CalculateDescendants(x.Handle()) {
			if _, ok := committed[d]; ok {
				continue
			}
			if _, ok := ba.inBlock[d]; ok {
				continue
			}
			desc := pool.EntryByHandle(d)
			if desc == nil {
				continue
			}
			modified.upsert(desc, x.TxSize, x.ModFee, x.SigOpCount)
			descendantsUpdated++
		}
	}
	return descendantsUpdated
}

// addPackageTxs selects transactions ordered by the feerate of a
// transaction including all unconfirmed ancestors. Since entries are
// not removed from the mempool as they are selected, the modified
// index keeps the feerate of a transaction minus its already-selected
// ancestors as selection goes.
//
// The caller holds the chain and mempool locks.
func (ba *BlockAssembler) addPackageTxs(pool *mempool.TxMempool) (packagesSelected, descendantsUpdated int) {
	modified := newModTxSet()
	failedTx := make(map[mempool.Handle]struct{})

	// Pre-seeded entries (mandatory commitments that are also pool
	// residents) count as selected ancestors for their descendants.
	if len(ba.inBlock) > 0 {
		seeded := make([]*mempool.TxEntry, 0, len(ba.inBlock))
		for h := range ba.inBlock {
			if e := pool.EntryByHandle(h); e != nil {
				seeded = append(seeded, e)
			}
		}
		descendantsUpdated += ba.updatePackagesForAdded(pool, modified, seeded, ba.inBlock)
	}

	order := pool.AncestorScoreOrder()
	mi := 0
	consecutiveFailures := 0

	for {
		// Skip entries whose stored aggregates are stale or that were
		// already decided.
		for mi < len(order) {
			h := order[mi]
			if _, ok := ba.inBlock[h]; ok {
				mi++
				continue
			}
			if modified.contains(h) {
				mi++
				continue
			}
			if _, ok := failedTx[h]; ok {
				mi++
				continue
			}
			break
		}

		var anchor *mempool.TxEntry
		usingModified := false

		best := modified.best()
		if mi >= len(order) {
			if best == nil {
				break
			}
			usingModified = true
			anchor = best.entry
		} else {
			entry := pool.EntryByHandle(order[mi])
			if entry == nil {
				mi++
				continue
			}
			if best != nil && util.CompareFeeFraction(
				int64(best.ModFeesWithAncestors), best.SizeWithAncestors,
				int64(entry.SumFeeWithAncestors), entry.SumSizeWithAncestors) >= 0 {
				// The modified row wins ties for stability.
				usingModified = true
				anchor = best.entry
			} else {
				anchor = entry
			}
		}

		packageSize := anchor.SumSizeWithAncestors
		packageFee := anchor.SumFeeWithAncestors
		packageSigOps := anchor.SumSigOpCountWithAncestors
		if usingModified {
			packageSize = best.SizeWithAncestors
			packageFee = best.ModFeesWithAncestors
			packageSigOps = best.SigOpCountWithAncestors
		}

		// Everything after this candidate rates lower on both sources.
		if util.CompareFeeFraction(int64(packageFee), packageSize,
			ba.blockMinFeeRate.SataoshisPerK, 1000) < 0 {
			return packagesSelected, descendantsUpdated
		}

		if !ba.testPackage(uint64(packageSize), packageSigOps) {
			if usingModified {
				// Anything else in the modified set should be
				// considered, but this anchor is a dead end.
				modified.eraseByEntry(anchor.Handle())
				failedTx[anchor.Handle()] = struct{}{}
			} else {
				mi++
			}
			consecutiveFailures++
			if consecutiveFailures > maxConsecutiveFailures &&
				ba.blockSize > ba.maxBlockSize-1000 {
				// Give up if we're close to full and haven't succeeded
				// in a while.
				break
			}
			continue
		}

		pkg := pool.CalculateMemPoolAncestors(anchor.Handle())
		for h := range pkg {
			if _, ok := ba.inBlock[h]; ok {
				delete(pkg, h)
			}
		}
		pkg[anchor.Handle()] = struct{}{}

		if !ba.isPackageFinalAndSafe(pool, pkg) {
			if usingModified {
				modified.eraseByEntry(anchor.Handle())
				failedTx[anchor.Handle()] = struct{}{}
			} else {
				mi++
			}
			continue
		}

		// This package will make it in; reset the failed counter.
		consecutiveFailures = 0

		added := sortByAncestorCount(pool, pkg)
		for _, item := range added {
			ba.addToBlock(item)
			modified.eraseByEntry(item.Handle())
		}

		descendantsUpdated += ba.updatePackagesForAdded(pool, modified, added, pkg)
		packagesSelected++
	}

	return packagesSelected, descendantsUpdated
}

// UpdateTime raises the header time to max(median time past + 1,
// adjusted wall clock) and, on networks that allow low-difficulty
// blocks, re-derives the target for the possibly changed time.
func UpdateTime(pblock *block.Block, indexPrev *blockindex.BlockIndex,
	params *chainparams.Params) int64 {
	oldTime := int64(pblock.Header.Time)
	newTime := util.MaxI(indexPrev.GetMedianTimePast()+1, util.GetAdjustedTimeSec())
	if oldTime < newTime {
		pblock.Header.Time = uint32(newTime)
	}

	if params.FPowAllowMinDifficultyBlocks {
		p := pow.Pow{}
		pblock.Header.Bits = p.GetNextWorkRequired(indexPrev, &pblock.Header, params)
	}
	return newTime - oldTime
}

// CreateNewBlock assembles a template on top of the current tip,
// paying out to scriptPubKeyIn unless the block turns out
// proof-of-stake. The chain and mempool locks are held for the entire
// call, so selection sees one consistent snapshot.
func (ba *BlockAssembler) CreateNewBlock(scriptPubKeyIn *script.Script) (*BlockTemplate, error) {
	timeStart := util.GetTimeMicroSec()

	gChain := chain.GetInstance()
	pool := mempool.GetInstance()
	gChain.RLock()
	defer gChain.RUnlock()
	pool.RLock()
	defer pool.RUnlock()

	indexPrev := gChain.Tip()
	if indexPrev == nil {
		return nil, errcode.New(errcode.ErrorNoChainTip)
	}
	ba.height = indexPrev.Height + 1

	dip0003Active := ba.chainParams.IsDIP0003Active(ba.height)
	dip0001Active := ba.height >= ba.chainParams.DIP0001Height
	dip0008Active := deploymentActive(indexPrev, ba.chainParams, consensus.DeploymentDIP0008)

	ba.resetBlock(dip0001Active)
	bt := ba.bt
	pblock := bt.Block
	signBlock := false

	// Common header.
	version := versionbits.ComputeBlockVersion(indexPrev, ba.chainParams, versionbits.VBCache)
	if ba.chainParams.IsPoSEnforcedHeight(ba.height) || indexPrev.IsProofOfStake() {
		version |= block.PoSV2Bits
	}
	// Test networks only: force the version to exercise forks.
	if ba.chainParams.MineBlocksOnDemand && ba.opts.BlockVersion != -1 {
		version = ba.opts.BlockVersion
	}
	pblock.Header.Version = version
	pblock.Header.HashPrevBlock = *indexPrev.GetBlockHash()
	p := pow.Pow{}
	pblock.Header.Bits = p.GetNextWorkRequired(indexPrev, &pblock.Header, ba.chainParams)
	pblock.Header.Nonce = 0
	pblock.Header.Time = uint32(util.GetAdjustedTimeSec())
	bt.PreviousBits = indexPrev.Header.Bits

	if pblock.IsProofOfStake() && ba.collab.Staker == nil {
		return nil, errcode.New(errcode.ErrorPoSHeight)
	}

	// Dummy coinbase as first transaction, backfilled at the end.
	pblock.Txs = append(pblock.Txs, tx.NewTx(0, tx.TxVersion))
	bt.TxFees = append(bt.TxFees, -1)
	bt.TxSigOpsCount = append(bt.TxSigOpsCount, -1)

	if pblock.IsProofOfStake() {
		// Coinstake placeholder.
		pblock.Txs = append(pblock.Txs, tx.NewTx(0, tx.TxVersion))
		bt.TxFees = append(bt.TxFees, -1)
		bt.TxSigOpsCount = append(bt.TxSigOpsCount, -1)
	}

	medianTimePast := indexPrev.GetMedianTimePast()
	if deploymentActive(indexPrev, ba.chainParams, consensus.DeploymentCSV) {
		ba.lockTimeCutoff = medianTimePast
	} else {
		ba.lockTimeCutoff = pblock.Header.GetBlockTime()
	}

	if dip0003Active && ba.collab.Quorums != nil {
		// Commitments enter the block in llmq type order so the same
		// pending set always yields the same template.
		llmqTypes := make([]consensus.LLMQType, 0, len(ba.chainParams.LLMQs))
		for llmqType := range ba.chainParams.LLMQs {
			llmqTypes = append(llmqTypes, llmqType)
		}
		sort.Slice(llmqTypes, func(i, j int) bool { return llmqTypes[i] < llmqTypes[j] })
		for _, llmqType := range llmqTypes {
			qcTx, ok := ba.collab.Quorums.GetMinableCommitment(llmqType, ba.height)
			if !ok {
				continue
			}
			pblock.Txs = append(pblock.Txs, qcTx)
			bt.TxFees = append(bt.TxFees, 0)
			bt.TxSigOpsCount = append(bt.TxSigOpsCount, 0)
			ba.blockSize += uint64(qcTx.SerializeSize())
			ba.blockTx++
			if h := pool.FindHandle(qcTx.GetHash()); h != mempool.InvalidHandle {
				ba.inBlock[h] = struct{}{}
			}
		}
	}

	packagesSelected, descendantsUpdated := ba.addPackageTxs(pool)

	lastBlockTx = ba.blockTx
	lastBlockSize = ba.blockSize
	log.Info("CreateNewBlock(): ver %x total size %d txs %d fees %d sigops %d",
		pblock.Header.Version, ba.blockSize, ba.blockTx, ba.fees, ba.blockSigOps)

	// Create coinbase transaction.
	// NOTE: the subsidy is derived from the PREVIOUS block's bits and
	// height, unlike in bitcoin.
	blockReward := ba.fees + lchain.GetBlockSubsidy(indexPrev.Header.Bits,
		indexPrev.Height, ba.chainParams, false)

	coinbaseTx := tx.NewTx(0, tx.TxVersion)
	coinbaseTx.AddTxOut(txout.NewTxOut(blockReward, scriptPubKeyIn))

	if !dip0003Active {
		scriptSig := script.NewEmptyScript()
		scriptSig.PushScriptNum(script.NewScriptNum(int64(ba.height)))
		scriptSig.PushOpCode(opcodes.OP_0)
		coinbaseTx.AddTxIn(txin.NewTxIn(outpoint.NewDefaultOutPoint(), scriptSig, script.SequenceFinal))
	} else {
		scriptSig := script.NewEmptyScript()
		scriptSig.PushOpCode(opcodes.OP_RETURN)
		coinbaseTx.AddTxIn(txin.NewTxIn(outpoint.NewDefaultOutPoint(), scriptSig, script.SequenceFinal))

		cbVersion := tx.CbTxVersionBase
		if dip0008Active {
			cbVersion = tx.CbTxVersionMerkleRootQuorums
		}
		payload := tx.NewCbTxPayload(cbVersion, ba.height)

		if ba.collab.SpecialTx == nil {
			return nil, errcode.NewError(errcode.ErrorCbTxMerkleRootMNList,
				"no special transaction processor")
		}
		root, err := ba.collab.SpecialTx.CalcCbTxMerkleRootMNList(pblock, indexPrev)
		if err != nil {
			return nil, err
		}
		payload.MerkleRootMNList = root
		if dip0008Active {
			root, err = ba.collab.SpecialTx.CalcCbTxMerkleRootQuorums(pblock, indexPrev)
			if err != nil {
				return nil, err
			}
			payload.MerkleRootQuorums = root
		}

		raw, err := payload.Serialize()
		if err != nil {
			return nil, errcode.NewError(errcode.ErrorCbTxMerkleRootMNList, err.Error())
		}
		special := tx.NewSpecialTx(0, tx.TxTypeCoinbase)
		special.SetExtraPayload(raw)
		for _, in := range coinbaseTx.GetIns() {
			special.AddTxIn(in)
		}
		for _, out := range coinbaseTx.GetOuts() {
			special.AddTxOut(out)
		}
		coinbaseTx = special
	}

	// Split the reward across masternode and governance payees; the
	// assembler must not second-guess the split.
	if ba.collab.SpecialTx != nil {
		bt.VoutMasternodePayments, bt.VoutSuperblockPayments =
			ba.collab.SpecialTx.FillBlockPayments(coinbaseTx, ba.height, blockReward)
	}

	// Ensure correct time relative to the median.
	UpdateTime(pblock, indexPrev, ba.chainParams)

	if pblock.IsProofOfStake() {
		if ba.lastCoinStakeSearchTime == 0 {
			ba.lastCoinStakeSearchTime = pblock.Header.GetBlockTime()
		}
		searchTime := pblock.Header.GetBlockTime()

		var coinStake *CoinStake
		if searchTime > util.MaxI(ba.lastCoinStakeSearchTime, int64(indexPrev.Header.Time)) {
			ba.lastCoinStakeSearchInterval = searchTime - ba.lastCoinStakeSearchTime
			ba.lastCoinStakeSearchTime = searchTime

			var err error
			coinStake, err = ba.collab.Staker.CreateCoinStake(indexPrev, pblock.Header.Bits,
				ba.lastCoinStakeSearchInterval, coinbaseTx, blockReward)
			if err != nil {
				log.Debug("CreateNewBlock: coinstake search: %v", err)
				coinStake = nil
			}
		}

		if coinStake != nil {
			signBlock = true
			if coinStake.KernelTime != 0 {
				pblock.Header.Time = coinStake.KernelTime
			}
			pblock.Txs[block.StakeIndex] = coinStake.Tx
			bt.TxFees[block.StakeIndex] = 0
			bt.TxSigOpsCount[block.StakeIndex] = int64(coinStake.Tx.GetSigOpCountWithoutP2SH())
		} else {
			pblock.Txs = append(pblock.Txs[:block.StakeIndex], pblock.Txs[block.StakeIndex+1:]...)
			bt.TxFees = append(bt.TxFees[:block.StakeIndex], bt.TxFees[block.StakeIndex+1:]...)
			bt.TxSigOpsCount = append(bt.TxSigOpsCount[:block.StakeIndex], bt.TxSigOpsCount[block.StakeIndex+1:]...)
		}
	}

	// Complete block.
	pblock.Txs[block.CoinBaseIndex] = coinbaseTx
	pblock.Header.MerkleRoot = lmerkleroot.BlockMerkleRoot(pblock.Txs, nil)
	bt.TxFees[block.CoinBaseIndex] = -ba.fees
	bt.TxSigOpsCount[block.CoinBaseIndex] = int64(coinbaseTx.GetSigOpCountWithoutP2SH())

	if signBlock {
		if err := ba.collab.Staker.SignBlock(pblock); err != nil {
			log.Error("CreateNewBlock: failed to sign block: %v", err)
		}
	}

	// Self-check with the same predicate network acceptance runs. A
	// failure is logged, the caller may still try the template.
	if err := lblock.TestBlockValidity(indexPrev, pblock, false, false); err != nil {
		log.Error("CreateNewBlock: TestBlockValidity failed: %v", err)
	}

	log.Debug("CreateNewBlock() packages: %.2fms (%d packages, %d updated descendants)",
		0.001*float64(util.GetTimeMicroSec()-timeStart), packagesSelected, descendantsUpdated)
	return bt, nil
}

// deploymentActive is the BIP9 activity of one deployment at the block
// after indexPrev.
func deploymentActive(indexPrev *blockindex.BlockIndex, params *chainparams.Params,
	pos consensus.DeploymentPos) bool {
	versionbits.VBCache.Lock()
	defer versionbits.VBCache.Unlock()
	return versionbits.VersionBitsState(indexPrev, params, pos, versionbits.VBCache) ==
		versionbits.ThresholdActive
}

// IncrementExtraNonce rebuilds the coinbase scriptSig with the height,
// a fresh extra nonce and the coinbase flags, and refreshes the merkle
// root. The extra nonce restarts whenever the parent changes so every
// parent gets a distinct search space.
func IncrementExtraNonce(pblock *block.Block, indexPrev *blockindex.BlockIndex,
	extraNonce *uint, lastPrevHash *util.Hash) {
	if *lastPrevHash != pblock.Header.HashPrevBlock {
		*extraNonce = 0
		*lastPrevHash = pblock.Header.HashPrevBlock
	}
	*extraNonce++

	// Height first in coinbase required for block.version=2.
	height := indexPrev.Height + 1
	scriptSig := script.NewEmptyScript()
	scriptSig.PushScriptNum(script.NewScriptNum(int64(height)))
	scriptSig.PushScriptNum(script.NewScriptNum(int64(*extraNonce)))
	scriptSig.PushSingleData([]byte(CoinbaseFlags))
	if scriptSig.Size() > 100 {
		log.Error("IncrementExtraNonce: coinbase scriptSig is %d bytes", scriptSig.Size())
		return
	}

	coinbase := pblock.CoinBase()
	if err := coinbase.UpdateInScript(0, scriptSig); err != nil {
		log.Error("IncrementExtraNonce: %v", err)
		return
	}
	pblock.Header.MerkleRoot = lmerkleroot.BlockMerkleRoot(pblock.Txs, nil)
}

package llmq

import (
	"sync"

	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/util"
)

// A transaction with no instant-send lock must have been visible for
// this long before a chain-locked block may include it.
const WaitForInstantSendTimeout = 10 * 60

// BlockchainSyncchecker reports whether the node has caught up with
// the network. Until it has, chain-lock safety cannot be judged and
// every transaction passes.
type BlockchainSyncChecker interface {
	IsSynced() bool
}

// ChainLocksHandler decides which mempool transactions are safe to put
// into a block template while chain locks are enforced. A transaction
// is unsafe when it is neither instant-send locked nor old enough for
// the lock quorum to have seen it.
type ChainLocksHandler struct {
	mtx sync.RWMutex

	sync      BlockchainSyncChecker
	enforced  bool
	firstSeen map[util.Hash]int64
	isLocked  map[util.Hash]struct{}
}

func NewChainLocksHandler(sync BlockchainSyncChecker) *ChainLocksHandler {
	return &ChainLocksHandler{
		sync:      sync,
		firstSeen: make(map[util.Hash]int64),
		isLocked:  make(map[util.Hash]struct{}),
	}
}

// SetEnforced switches conflict rejection on or off, mirroring the
// chain-lock spork.
func (h *ChainLocksHandler) SetEnforced(enforced bool) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.enforced != enforced {
		log.Info("llmq: chainlock enforcement now %v", enforced)
	}
	h.enforced = enforced
}

func (h *ChainLocksHandler) IsEnforced() bool {
	h.mtx.RLock()
	defer h.mtx.RUnlock()
	return h.enforced
}

// TransactionAddedToMempool records when a transaction was first seen.
func (h *ChainLocksHandler) TransactionAddedToMempool(txid util.Hash) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if _, ok := h.firstSeen[txid]; !ok {
		h.firstSeen[txid] = util.GetAdjustedTimeSec()
	}
}

// TransactionLocked marks a transaction as instant-send locked, which
// makes it immediately safe for mining.
func (h *ChainLocksHandler) TransactionLocked(txid util.Hash) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.isLocked[txid] = struct{}{}
}

// BlockConnected drops the bookkeeping for confirmed transactions.
func (h *ChainLocksHandler) BlockConnected(pblock *block.Block) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	for _, txn := range pblock.Txs {
		txid := txn.GetHash()
		delete(h.firstSeen, txid)
		delete(h.isLocked, txid)
	}
}

// IsTxSafeForMining reports whether the transaction may appear in a
// block template. With enforcement off, or before the chain is synced,
// everything is safe.
func (h *ChainLocksHandler) IsTxSafeForMining(txid util.Hash) bool {
	h.mtx.RLock()
	defer h.mtx.RUnlock()

	if !h.enforced {
		return true
	}
	if h.sync != nil && !h.sync.IsSynced() {
		return true
	}
	if _, ok := h.isLocked[txid]; ok {
		return true
	}
	seen, ok := h.firstSeen[txid]
	if !ok {
		// Never seen through the mempool hook; assume old.
		return true
	}
	return util.GetAdjustedTimeSec()-seen >= WaitForInstantSendTimeout
}

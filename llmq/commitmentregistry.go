package llmq

import (
	"sort"
	"sync"

	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/chain"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/model/consensus"
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/util"
)

type commitmentKey struct {
	llmqType   consensus.LLMQType
	quorumHash util.Hash
}

type minedCommitment struct {
	commitment *tx.FinalCommitment
	height     int32
}

// CommitmentRegistry tracks the final commitments that still have to
// be mined. Each DKG session is identified by the hash of the block
// the session started at, and each session produces at most one mined
// commitment.
type CommitmentRegistry struct {
	mtx sync.RWMutex

	llmqs   map[consensus.LLMQType]consensus.LLMQParams
	pending map[commitmentKey]*tx.FinalCommitment
	mined   map[commitmentKey]*minedCommitment
}

func NewCommitmentRegistry(params *chainparams.Params) *CommitmentRegistry {
	return &CommitmentRegistry{
		llmqs:   params.LLMQs,
		pending: make(map[commitmentKey]*tx.FinalCommitment),
		mined:   make(map[commitmentKey]*minedCommitment),
	}
}

// AddMinableCommitment registers a commitment produced by a DKG
// session. When a commitment for the same quorum is already pending
// the one carrying more signers wins. Reports whether the registry
// changed.
func (r *CommitmentRegistry) AddMinableCommitment(fc *tx.FinalCommitment) bool {
	if fc == nil || fc.IsNull() {
		return false
	}
	llmqType := consensus.LLMQType(fc.LLMQType)
	if _, ok := r.llmqs[llmqType]; !ok {
		log.Warn("llmq: commitment for unknown quorum type %d ignored", fc.LLMQType)
		return false
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	key := commitmentKey{llmqType: llmqType, quorumHash: fc.QuorumHash}
	old, ok := r.pending[key]
	if ok && old.CountSigners() >= fc.CountSigners() {
		return false
	}
	r.pending[key] = fc
	log.Debug("llmq: minable commitment for quorum %s type %d with %d signers",
		fc.QuorumHash, fc.LLMQType, fc.CountSigners())
	return true
}

// HasMinedCommitment reports whether a non null commitment for the
// quorum already made it into the chain.
func (r *CommitmentRegistry) HasMinedCommitment(llmqType consensus.LLMQType, quorumHash util.Hash) bool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	_, ok := r.mined[commitmentKey{llmqType: llmqType, quorumHash: quorumHash}]
	return ok
}

// GetMinableCommitment hands the template builder the commitment
// transaction a block at the given height has to carry, if any. Inside
// the mining window of a session that has no mined commitment yet the
// answer is always a transaction. Lacking a pending commitment it is a
// null one, which keeps the window open for a real commitment to
// arrive.
//
// The caller holds the chain lock.
func (r *CommitmentRegistry) GetMinableCommitment(llmqType consensus.LLMQType, height int32) (*tx.Tx, bool) {
	llmqParams, ok := r.llmqs[llmqType]
	if !ok {
		return nil, false
	}
	phase := height % int32(llmqParams.DkgInterval)
	if phase < int32(llmqParams.DkgMiningWindowStart) || phase > int32(llmqParams.DkgMiningWindowEnd) {
		return nil, false
	}
	quorumIndex := chain.GetInstance().GetIndex(height - phase)
	if quorumIndex == nil {
		return nil, false
	}
	quorumHash := *quorumIndex.GetBlockHash()

	r.mtx.RLock()
	defer r.mtx.RUnlock()

	key := commitmentKey{llmqType: llmqType, quorumHash: quorumHash}
	if _, ok := r.mined[key]; ok {
		return nil, false
	}
	fc, ok := r.pending[key]
	if !ok {
		fc = tx.NewFinalCommitment(uint8(llmqType), quorumHash, llmqParams.Size)
	}

	payload := &tx.QcTxPayload{Version: tx.QcTxVersion, Height: height, Commitment: *fc}
	raw, err := payload.Serialize()
	if err != nil {
		log.Error("llmq: serializing commitment payload: %v", err)
		return nil, false
	}
	qcTx := tx.NewSpecialTx(0, tx.TxTypeQuorumCommitment)
	qcTx.SetExtraPayload(raw)
	return qcTx, true
}

// ProcessBlock records the commitments a connected block carries, so
// their sessions stop being offered to the next template.
func (r *CommitmentRegistry) ProcessBlock(pblock *block.Block, height int32) {
	for _, txn := range pblock.Txs {
		if txn.GetTxType() != tx.TxTypeQuorumCommitment {
			continue
		}
		payload, err := tx.GetQcTxPayload(txn)
		if err != nil {
			log.Warn("llmq: undecodable commitment in block at height %d: %v", height, err)
			continue
		}
		if payload.Commitment.IsNull() {
			continue
		}
		r.markMined(&payload.Commitment, height)
	}
}

func (r *CommitmentRegistry) markMined(fc *tx.FinalCommitment, height int32) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	key := commitmentKey{llmqType: consensus.LLMQType(fc.LLMQType), quorumHash: fc.QuorumHash}
	r.mined[key] = &minedCommitment{commitment: fc, height: height}
	delete(r.pending, key)
	log.Debug("llmq: commitment for quorum %s type %d mined at height %d",
		fc.QuorumHash, fc.LLMQType, height)
}

// ActiveQuorumHashes lists, oldest first, the commitment hashes of the
// mined quorums of one type. The coinbase quorum merkle root commits
// to these.
func (r *CommitmentRegistry) ActiveCommitmentHashes(llmqType consensus.LLMQType) []util.Hash {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	active := make([]*minedCommitment, 0, len(r.mined))
	for key, mc := range r.mined {
		if key.llmqType == llmqType {
			active = append(active, mc)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].height != active[j].height {
			return active[i].height < active[j].height
		}
		return active[i].commitment.QuorumHash.Cmp(&active[j].commitment.QuorumHash) < 0
	})

	hashes := make([]util.Hash, len(active))
	for i, mc := range active {
		hashes[i] = mc.commitment.Hash()
	}
	return hashes
}

package masternode

import (
	"sort"
	"sync"

	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/logic/lmerkleroot"
	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/model/consensus"
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/model/txout"
	"github.com/cosanta/cosanta-core/util"
	"github.com/cosanta/cosanta-core/util/amount"
)

// QuorumLister exposes the mined quorum commitments the coinbase
// quorum merkle root has to commit to.
type QuorumLister interface {
	ActiveCommitmentHashes(llmqType consensus.LLMQType) []util.Hash
}

// Processor owns the deterministic masternode list and the governance
// payment view, and answers the coinbase-payment questions the block
// builder asks.
type Processor struct {
	mtx sync.RWMutex

	params  *chainparams.Params
	quorums QuorumLister

	entries map[util.Hash]*SimplifiedEntry

	// Governance-approved superblock payments, keyed by the superblock
	// height they pay out at.
	superblockPayments map[int32][]*txout.TxOut
}

func NewProcessor(params *chainparams.Params, quorums QuorumLister) *Processor {
	return &Processor{
		params:             params,
		quorums:            quorums,
		entries:            make(map[util.Hash]*SimplifiedEntry),
		superblockPayments: make(map[int32][]*txout.TxOut),
	}
}

// AddEntry installs or replaces a masternode in the deterministic list.
func (p *Processor) AddEntry(entry *SimplifiedEntry) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.entries[entry.ProRegTxHash] = entry
}

func (p *Processor) RemoveEntry(proRegTxHash util.Hash) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	delete(p.entries, proRegTxHash)
}

// SetSuperblockPayments installs the governance view for one
// superblock height.
func (p *Processor) SetSuperblockPayments(height int32, payments []*txout.TxOut) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.superblockPayments[height] = payments
}

// sortedEntries is the deterministic list order: ProRegTxHash
// ascending. Caller holds the lock.
func (p *Processor) sortedEntries() []*SimplifiedEntry {
	entries := make([]*SimplifiedEntry, 0, len(p.entries))
	for _, entry := range p.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ProRegTxHash.Cmp(&entries[j].ProRegTxHash) < 0
	})
	return entries
}

// GetMasternodePayment is the masternode share of a block reward. The
// share starts at a fifth and steps up a twentieth per increase period
// until it reaches half.
func (p *Processor) GetMasternodePayment(height int32, blockValue amount.Amount) amount.Amount {
	if height < p.params.MasternodePaymentsStartBlock {
		return 0
	}
	ret := blockValue / 5
	if height > p.params.MasternodePaymentsIncreaseBlock {
		ret += blockValue / 20
	}
	for i := int32(1); i <= 5; i++ {
		if height > p.params.MasternodePaymentsIncreaseBlock+p.params.MasternodePaymentsIncreasePeriod*i {
			ret += blockValue / 20
		}
	}
	return ret
}

// IsSuperblockHeight reports whether height lies on the superblock
// payment cycle.
func (p *Processor) IsSuperblockHeight(height int32) bool {
	return height >= p.params.SuperblockStartBlock &&
		height%p.params.SuperblockCycle == 0
}

// FillBlockPayments carves the masternode share out of the coinbase
// first output, appends the payee output, and appends any governance
// superblock payments on top. Both payment vectors are returned for
// the template.
func (p *Processor) FillBlockPayments(coinbaseTx *tx.Tx, height int32,
	blockReward amount.Amount) (voutMasternode, voutSuperblock []*txout.TxOut) {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	if p.IsSuperblockHeight(height) {
		for _, out := range p.superblockPayments[height] {
			voutSuperblock = append(voutSuperblock, out)
			coinbaseTx.AddTxOut(out)
		}
	}

	mnPayment := p.GetMasternodePayment(height, blockReward)
	if mnPayment == 0 {
		return voutMasternode, voutSuperblock
	}
	entries := p.sortedEntries()
	valid := entries[:0]
	for _, entry := range entries {
		if entry.IsValid && entry.PayoutScript != nil {
			valid = append(valid, entry)
		}
	}
	if len(valid) == 0 {
		return voutMasternode, voutSuperblock
	}

	// Payee rotation over the deterministic order.
	payee := valid[int(height)%len(valid)]
	out := txout.NewTxOut(mnPayment, payee.PayoutScript)
	coinbaseTx.GetTxOut(0).SetValue(coinbaseTx.GetTxOut(0).GetValue() - mnPayment)
	coinbaseTx.AddTxOut(out)
	voutMasternode = append(voutMasternode, out)

	log.Debug("masternode: payment of %d at height %d to %s",
		mnPayment, height, payee.ProRegTxHash)
	return voutMasternode, voutSuperblock
}

// CalcCbTxMerkleRootMNList is the merkle root of the deterministic
// masternode list as of the new block.
func (p *Processor) CalcCbTxMerkleRootMNList(pblock *block.Block,
	prevIndex *blockindex.BlockIndex) (util.Hash, error) {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	leaves := make([]util.Hash, 0, len(p.entries))
	for _, entry := range p.sortedEntries() {
		leaves = append(leaves, entry.Hash())
	}
	mutated := false
	root := lmerkleroot.ComputeMerkleRoot(leaves, &mutated)
	if mutated {
		return util.Hash{}, errcode.New(errcode.ErrorCbTxMerkleRootMNList)
	}
	return root, nil
}

// CalcCbTxMerkleRootQuorums is the merkle root over the active mined
// quorum commitments of every configured type, plus the commitments
// the block itself carries.
func (p *Processor) CalcCbTxMerkleRootQuorums(pblock *block.Block,
	prevIndex *blockindex.BlockIndex) (util.Hash, error) {
	types := make([]consensus.LLMQType, 0, len(p.params.LLMQs))
	for llmqType := range p.params.LLMQs {
		types = append(types, llmqType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	inBlock := make(map[consensus.LLMQType][]util.Hash)
	for _, txn := range pblock.Txs {
		if txn.GetTxType() != tx.TxTypeQuorumCommitment {
			continue
		}
		payload, err := tx.GetQcTxPayload(txn)
		if err != nil {
			return util.Hash{}, errcode.NewError(errcode.ErrorCbTxMerkleRootQuorums, err.Error())
		}
		if payload.Commitment.IsNull() {
			continue
		}
		llmqType := consensus.LLMQType(payload.Commitment.LLMQType)
		inBlock[llmqType] = append(inBlock[llmqType], payload.Commitment.Hash())
	}

	var leaves []util.Hash
	for _, llmqType := range types {
		if p.quorums != nil {
			leaves = append(leaves, p.quorums.ActiveCommitmentHashes(llmqType)...)
		}
		leaves = append(leaves, inBlock[llmqType]...)
	}
	mutated := false
	root := lmerkleroot.ComputeMerkleRoot(leaves, &mutated)
	if mutated {
		return util.Hash{}, errcode.New(errcode.ErrorCbTxMerkleRootQuorums)
	}
	return root, nil
}

// Count is the size of the deterministic list.
func (p *Processor) Count() int {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return len(p.entries)
}

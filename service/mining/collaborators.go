package mining

import (
	"github.com/cosanta/cosanta-core/model/block"
	"github.com/cosanta/cosanta-core/model/blockindex"
	"github.com/cosanta/cosanta-core/model/consensus"
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/model/txout"
	"github.com/cosanta/cosanta-core/util"
	"github.com/cosanta/cosanta-core/util/amount"
)

// CoinStake is a found stake kernel: the coinstake transaction that
// claims it and the timestamp the kernel was valid at. The header time
// has to move to KernelTime for the proof to verify.
type CoinStake struct {
	Tx         *tx.Tx
	KernelTime uint32
}

// Staker is the wallet-side collaborator of the proof-of-stake path.
// CreateCoinStake reports (nil, nil) when the search window holds no
// valid kernel.
type Staker interface {
	CreateCoinStake(prevIndex *blockindex.BlockIndex, bits uint32, searchInterval int64,
		coinbaseTx *tx.Tx, reward amount.Amount) (*CoinStake, error)
	SignBlock(pblock *block.Block) error
	IsLocked() bool
	MintableCoins() bool
	Balance() amount.Amount
	ReserveBalance() amount.Amount
	SetReserveBalance(value amount.Amount)
}

// QuorumProcessor hands out the quorum commitment transaction a block
// at the given height is obliged to carry, if any.
type QuorumProcessor interface {
	GetMinableCommitment(llmqType consensus.LLMQType, height int32) (*tx.Tx, bool)
}

// ChainLockChecker vetoes transactions that could conflict with a
// chain-locked block.
type ChainLockChecker interface {
	IsTxSafeForMining(txid util.Hash) bool
}

// SpecialTxProcessor owns the coinbase payment split and the special
// coinbase merkle roots.
type SpecialTxProcessor interface {
	FillBlockPayments(coinbaseTx *tx.Tx, height int32,
		blockReward amount.Amount) (voutMasternode, voutSuperblock []*txout.TxOut)
	CalcCbTxMerkleRootMNList(pblock *block.Block, prevIndex *blockindex.BlockIndex) (util.Hash, error)
	CalcCbTxMerkleRootQuorums(pblock *block.Block, prevIndex *blockindex.BlockIndex) (util.Hash, error)
}

// MasternodeSync gates mining on the masternode subsystem having
// caught up.
type MasternodeSync interface {
	IsSynced() bool
}

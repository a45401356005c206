package block

import (
	"io"

	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/model/consensus"
	"github.com/cosanta/cosanta-core/model/outpoint"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/util"
	"github.com/cosanta/cosanta-core/util/amount"
)

const (
	// CoinBaseIndex slot of the coinbase inside a block.
	CoinBaseIndex = 0
	// StakeIndex slot of the coinstake inside a PoS block.
	StakeIndex = 1
)

type Block struct {
	Header BlockHeader
	Txs    []*tx.Tx

	// Checked memoizes a passed context-free validation. Never
	// serialized.
	Checked bool
}

func NewBlock() *Block {
	return &Block{}
}

func (bl *Block) GetBlockHeader() BlockHeader {
	return bl.Header
}

func (bl *Block) SetNull() {
	bl.Header.SetNull()
	bl.Txs = nil
}

func (bl *Block) GetHash() util.Hash {
	return bl.Header.GetHash()
}

func (bl *Block) IsProofOfStake() bool {
	return bl.Header.IsProofOfStake()
}

// CoinBase returns the slot 0 transaction, nil while the block is
// still being assembled.
func (bl *Block) CoinBase() *tx.Tx {
	if len(bl.Txs) <= CoinBaseIndex {
		return nil
	}
	return bl.Txs[CoinBaseIndex]
}

// Stake returns the coinstake of a PoS block, nil when absent.
func (bl *Block) Stake() *tx.Tx {
	if !bl.IsProofOfStake() || len(bl.Txs) <= StakeIndex {
		return nil
	}
	return bl.Txs[StakeIndex]
}

func (bl *Block) HasCoinBase() bool {
	coinbase := bl.CoinBase()
	return coinbase != nil && coinbase.IsCoinBase()
}

// CheckStake verifies the stake binding of a signed PoS block: the
// block signature recovers a key, the coinbase primary output and
// every coinstake output pay that key, the coinstake spends the
// kernel outpoint named in the header, and the staked value clears
// the minimum.
func (bl *Block) CheckStake() error {
	if !bl.IsProofOfStake() {
		return nil
	}
	if len(bl.Txs) <= StakeIndex {
		return errcode.NewError(errcode.ErrorBadStakeKernel,
			"proof-of-stake block without a coinstake")
	}
	pubKey := bl.Header.RecoverStakePubKey()
	if pubKey == nil {
		return errcode.New(errcode.ErrorBadBlockSignature)
	}
	signerScript := script.NewScriptFromPubKeyHash(pubKey.ToHash160())

	coinbase := bl.Txs[CoinBaseIndex]
	stake := bl.Txs[StakeIndex]
	if coinbase.GetOutsCount() == 0 || stake.GetInsCount() == 0 || stake.GetOutsCount() == 0 {
		return errcode.New(errcode.ErrorBadStakeKernel)
	}

	kernel := outpoint.NewOutPoint(bl.Header.StakeHash, bl.Header.StakeN)
	if *stake.GetTxIn(0).PreviousOutPoint != *kernel {
		return errcode.NewError(errcode.ErrorBadStakeKernel,
			"coinstake does not spend the kernel outpoint")
	}
	if !coinbase.GetTxOut(0).GetScriptPubKey().IsEqual(signerScript) {
		return errcode.NewError(errcode.ErrorBadBlockSignature,
			"coinbase pays a key other than the block signer")
	}

	staked := amount.Amount(0)
	for _, out := range stake.GetOuts() {
		if !out.GetScriptPubKey().IsEqual(signerScript) {
			return errcode.NewError(errcode.ErrorBadStakeKernel,
				"coinstake output pays a key other than the block signer")
		}
		staked += out.GetValue()
	}
	if staked < consensus.MinStakeAmount {
		return errcode.NewError(errcode.ErrorBadStakeKernel,
			"staked value below the minimum")
	}
	return nil
}

func (bl *Block) Serialize(w io.Writer) error {
	if err := bl.Header.Serialize(w); err != nil {
		return err
	}
	if err := util.WriteVarInt(w, uint64(len(bl.Txs))); err != nil {
		return err
	}
	for _, transaction := range bl.Txs {
		if err := transaction.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

func (bl *Block) Unserialize(r io.Reader) error {
	if err := bl.Header.Unserialize(r); err != nil {
		return err
	}
	txCount, err := util.ReadVarInt(r)
	if err != nil {
		return err
	}
	bl.Txs = make([]*tx.Tx, 0, txCount)
	for i := uint64(0); i < txCount; i++ {
		transaction := tx.NewEmptyTx()
		if err := transaction.Unserialize(r); err != nil {
			return err
		}
		bl.Txs = append(bl.Txs, transaction)
	}
	return nil
}

func (bl *Block) SerializeSize() uint32 {
	size := bl.Header.SerializeSize() + uint32(util.VarIntSerializeSize(uint64(len(bl.Txs))))
	for _, transaction := range bl.Txs {
		size += transaction.SerializeSize()
	}
	return size
}

func (bl *Block) EncodeSize() uint32 {
	return bl.SerializeSize()
}

func (bl *Block) Encode(w io.Writer) error {
	return bl.Serialize(w)
}

func (bl *Block) Decode(r io.Reader) error {
	return bl.Unserialize(r)
}

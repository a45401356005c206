package mempool

import (
	"github.com/cosanta/cosanta-core/model/tx"
	"github.com/cosanta/cosanta-core/util"
	"github.com/cosanta/cosanta-core/util/amount"
)

// PackageState carries the running totals over an entry's in-pool
// ancestor and descendant packages. Both closures include the entry
// itself; fee sums are modified fees.
type PackageState struct {
	SumCountWithDescendants int64
	SumSizeWithDescendants  int64
	SumFeeWithDescendants   amount.Amount

	SumCountWithAncestors      int64
	SumSizeWithAncestors       int64
	SumFeeWithAncestors        amount.Amount
	SumSigOpCountWithAncestors int64
}

// TxEntry is a pool-resident transaction. After admission the only
// mutable parts are ModFee and the package aggregates, and only the
// owning pool touches them under its write lock.
type TxEntry struct {
	Tx     *tx.Tx
	TxSize int64
	// TxFee is the fee the transaction actually pays. ModFee adds the
	// prioritisetransaction delta and is what every ordering decision
	// sees; block reward arithmetic keeps using TxFee.
	TxFee  amount.Amount
	ModFee amount.Amount

	SigOpCount int64

	// TxHeight is the chain height at admission time.
	TxHeight int32

	PackageState

	time           int64
	spendsCoinbase bool
	lp             LockPoints
	handle         Handle
}

func NewTxEntry(txn *tx.Tx, txFee amount.Amount, acceptTime int64, height int32,
	sigOpCount int64, lp LockPoints, spendsCoinbase bool) *TxEntry {
	e := &TxEntry{
		Tx:             txn,
		TxSize:         int64(txn.SerializeSize()),
		TxFee:          txFee,
		ModFee:         txFee,
		SigOpCount:     sigOpCount,
		TxHeight:       height,
		time:           acceptTime,
		spendsCoinbase: spendsCoinbase,
		lp:             lp,
		handle:         InvalidHandle,
	}
	e.SumCountWithDescendants = 1
	e.SumSizeWithDescendants = e.TxSize
	e.SumFeeWithDescendants = e.ModFee
	e.SumCountWithAncestors = 1
	e.SumSizeWithAncestors = e.TxSize
	e.SumFeeWithAncestors = e.ModFee
	e.SumSigOpCountWithAncestors = sigOpCount
	return e
}

// Handle returns the arena slot the pool assigned at admission, or
// InvalidHandle before admission and after removal.
func (e *TxEntry) Handle() Handle {
	return e.handle
}

func (e *TxEntry) GetTime() int64 {
	return e.time
}

func (e *TxEntry) GetSpendsCoinbase() bool {
	return e.spendsCoinbase
}

func (e *TxEntry) GetLockPointFromTxEntry() LockPoints {
	return e.lp
}

func (e *TxEntry) SetLockPointFromTxEntry(lp LockPoints) {
	e.lp = lp
}

// GetFeeRate reports the rate actually paid, without any
// prioritisation delta.
func (e *TxEntry) GetFeeRate() *util.FeeRate {
	return util.NewFeeRateWithSize(int64(e.TxFee), e.TxSize)
}

// AncestorFeeRate is the rate of the whole in-pool ancestor package,
// modified fees over package size.
func (e *TxEntry) AncestorFeeRate() *util.FeeRate {
	return util.NewFeeRateWithSize(int64(e.SumFeeWithAncestors), e.SumSizeWithAncestors)
}

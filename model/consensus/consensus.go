package consensus

const (
	// LegacyBlockSize is the block size cap before DIP0001 activates.
	LegacyBlockSize = 1000000
	// Dip0001BlockSize doubles the cap once DIP0001 is active.
	Dip0001BlockSize = 2000000

	// MaxTxSize is the consensus limit on a single serialized transaction.
	MaxTxSize = LegacyBlockSize

	// CoinbaseMaturity is the number of blocks before a coinbase
	// output may be spent.
	CoinbaseMaturity = 100

	// MinStakeAmount is the smallest stake output total a coinstake
	// may pay, in satoshi.
	MinStakeAmount = 100000000
)

const (
	// LocktimeVerifySequence interprets sequence numbers as relative
	// lock-time constraints.
	LocktimeVerifySequence = 1 << iota

	// LocktimeMedianTimePast uses GetMedianTimePast() instead of the
	// block time as the cutoff for final transactions.
	LocktimeMedianTimePast
)

// MaxBlockSize returns the serialized block size cap for the current
// DIP0001 state.
func MaxBlockSize(dip0001Active bool) uint64 {
	if dip0001Active {
		return Dip0001BlockSize
	}
	return LegacyBlockSize
}

// MaxBlockSigOps returns the block sigop cap, 1/50 of the size cap.
func MaxBlockSigOps(dip0001Active bool) uint64 {
	return MaxBlockSize(dip0001Active) / 50
}

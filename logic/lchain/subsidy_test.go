package lchain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/util/amount"
)

func TestConvertBitsToDouble(t *testing.T) {
	// Exponent 29 needs no normalisation, difficulty one exactly.
	assert.Equal(t, 1.0, ConvertBitsToDouble(0x1d00ffff))

	// Normalised upward from exponent 27.
	assert.InDelta(t, 16307.420938523983, ConvertBitsToDouble(0x1b0404cb), 1e-6)

	// Normalised downward from exponent 32, the regtest limit.
	assert.InEpsilon(t, 4.6565423739069247e-10, ConvertBitsToDouble(0x207fffff), 1e-12)
}

func TestGetBlockSubsidyEras(t *testing.T) {
	params := &chainparams.MainNetParams

	// Below 4500 mainnet reproduces the unnormalised difficulty, which
	// clamps the base at the early-era ceiling here.
	assert.Equal(t, amount.Amount(500*amount.COIN),
		GetBlockSubsidy(0x1c1a1a1a, 1000, params, false))

	// The same bits normalised give difficulty ~9.8.
	assert.Equal(t, amount.Amount(9*amount.COIN),
		GetBlockSubsidy(0x1c1a1a1a, 5000, params, false))

	assert.Equal(t, amount.Amount(108*amount.COIN),
		GetBlockSubsidy(0x1c1a1a1a, 10000, params, false))

	// Past the CPU era the base floors at five coins for low difficulty.
	assert.Equal(t, amount.Amount(5*amount.COIN),
		GetBlockSubsidy(0x1c1a1a1a, 30000, params, false))
}

func TestGetBlockSubsidyDecline(t *testing.T) {
	params := &chainparams.RegressionNetParams

	// Regtest difficulty clamps the base at 500 coins.
	assert.Equal(t, amount.Amount(50000000000),
		GetBlockSubsidy(0x207fffff, 0, params, false))

	// One halving interval in, one 1/14 decline.
	assert.Equal(t, amount.Amount(46428571429),
		GetBlockSubsidy(0x207fffff, 150, params, false))

	// Seven declines and the budget cut once payments started.
	assert.Equal(t, amount.Amount(26786731852),
		GetBlockSubsidy(0x207fffff, 1050, params, false))
	assert.Equal(t, amount.Amount(2976303539),
		GetBlockSubsidy(0x207fffff, 1050, params, true))

	// No budget share before payments start.
	assert.Equal(t, amount.Amount(0),
		GetBlockSubsidy(0x207fffff, 0, params, true))
}

func TestGetBlockSubsidySuperblockShare(t *testing.T) {
	params := &chainparams.MainNetParams

	full := GetBlockSubsidy(0x1c1a1a1a, 700001, params, false)
	part := GetBlockSubsidy(0x1c1a1a1a, 700001, params, true)
	assert.Equal(t, amount.Amount(360295191), full)
	assert.Equal(t, amount.Amount(40032799), part)

	// The two shares always reassemble the undivided subsidy.
	assert.Equal(t, amount.Amount(400327990), full+part)
}

package lchain

import (
	"math"

	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/util/amount"
)

// ConvertBitsToDouble turns a compact difficulty encoding into the
// conventional floating point difficulty, normalised to exponent 29.
func ConvertBitsToDouble(bits uint32) float64 {
	shift := int(bits>>24) & 0xff
	diff := float64(0x0000ffff) / float64(bits&0x00ffffff)

	for shift < 29 {
		diff *= 256.0
		shift++
	}
	for shift > 29 {
		diff /= 256.0
		shift--
	}
	return diff
}

// GetBlockSubsidy is the base reward of the block following the one
// described by prevBits and prevHeight. The base amount depends on the
// previous difficulty, declines by 1/14 every SubsidyHalvingInterval
// blocks, and cedes a tenth to the superblock budget once budget
// payments have started. With superblockPartOnly only that tenth is
// returned.
func GetBlockSubsidy(prevBits uint32, prevHeight int32, params *chainparams.Params,
	superblockPartOnly bool) amount.Amount {
	var diff float64
	var base amount.Amount

	if prevHeight <= 4500 && params.Name == "main" {
		// The first mainnet blocks paid out against an unnormalised
		// difficulty. The schedule has to keep reproducing those values.
		diff = float64(0x0000ffff) / float64(prevBits&0x00ffffff)
	} else {
		diff = ConvertBitsToDouble(prevBits)
	}

	switch {
	case prevHeight < 5465:
		// 1111/((x+1)^2)
		base = amount.Amount(1111.0 / math.Pow(diff+1.0, 2.0))
		if base > 500 {
			base = 500
		} else if base < 1 {
			base = 1
		}
	case prevHeight < 17000 || (diff <= 75 && prevHeight < 24000):
		// 11111/(((x+51)/6)^2)
		base = amount.Amount(11111.0 / math.Pow((diff+51.0)/6.0, 2.0))
		if base > 500 {
			base = 500
		} else if base < 25 {
			base = 25
		}
	default:
		// 2222222/(((x+2600)/9)^2)
		base = amount.Amount(2222222.0 / math.Pow((diff+2600.0)/9.0, 2.0))
		if base > 5 {
			base = 5
		} else if base < 1 {
			base = 1
		}
	}

	subsidy := base * amount.COIN

	// Production declines by roughly 7.1% per year.
	for i := params.SubsidyHalvingInterval; i <= prevHeight; i += params.SubsidyHalvingInterval {
		subsidy -= subsidy / 14
	}

	// Devnet bootstrapping aid, zero blocks everywhere else.
	if prevHeight < params.HighSubsidyBlocks {
		subsidy *= amount.Amount(params.HighSubsidyFactor)
	}

	var superblockPart amount.Amount
	if prevHeight > params.BudgetPaymentsStartBlock {
		superblockPart = subsidy / 10
	}
	if superblockPartOnly {
		return superblockPart
	}
	return subsidy - superblockPart
}

package amount

import (
	"errors"
	"math"
	"strconv"
)

const (
	// COIN is the number of satoshis in one coin.
	COIN = 100000000

	// CENT is one hundredth of a coin, the granularity reserve
	// balances are kept at.
	CENT = COIN / 100

	// MaxMoney is the largest amount of money the chain can ever carry.
	MaxMoney = 21000000 * COIN

	// CurrencyUnit is the ticker used when rendering amounts.
	CurrencyUnit = "COSA"
)

// Amount is a quantity of money in satoshis. Negative values are
// meaningful for fee deltas.
type Amount int64

// round converts a floating point number to an Amount by rounding to the
// nearest satoshi rather than truncating.
func round(f float64) Amount {
	if f < 0 {
		return Amount(f - 0.5)
	}
	return Amount(f + 0.5)
}

// NewAmount converts a floating point coin value, such as an amount read
// off a JSON-RPC request, to a satoshi Amount.
func NewAmount(f float64) (Amount, error) {
	// The amount is only considered invalid if it cannot be represented
	// as an integer type. This may happen if f is NaN or +-Infinity.
	switch {
	case math.IsNaN(f):
		fallthrough
	case math.IsInf(f, 1):
		fallthrough
	case math.IsInf(f, -1):
		return 0, errors.New("invalid coin amount")
	}

	return round(f * COIN), nil
}

// ToCoin is the amount as a floating point coin value.
func (a Amount) ToCoin() float64 {
	return float64(a) / COIN
}

func (a Amount) String() string {
	return strconv.FormatFloat(a.ToCoin(), 'f', -1, 64) + " " + CurrencyUnit
}

// MoneyRange reports whether value is inside the representable money
// interval [0, MaxMoney].
func MoneyRange(value Amount) bool {
	return value >= 0 && value <= MaxMoney
}

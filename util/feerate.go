package util

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/cosanta/cosanta-core/util/amount"
)

// FeeRate is a fee expressed in satoshis per 1000 bytes.
type FeeRate struct {
	SataoshisPerK int64
}

// GetFee returns the fee in satoshis for the given size in bytes. A
// non-zero rate never rounds to a zero fee for a non-zero size; it is
// nudged to +-1 satoshi instead.
func (feeRate *FeeRate) GetFee(bytes int) int64 {
	if int64(bytes) > math.MaxInt64/1000 {
		panic("size out of range")
	}
	size := int64(bytes)
	fee := feeRate.SataoshisPerK * size / 1000
	if fee == 0 && size != 0 {
		if feeRate.SataoshisPerK > 0 {
			fee = 1
		}
		if feeRate.SataoshisPerK < 0 {
			fee = -1
		}
	}
	return fee
}

// GetFeePerK returns the fee in satoshis for a size of 1000 bytes.
func (feeRate *FeeRate) GetFeePerK() int64 {
	return feeRate.GetFee(1000)
}

func (feeRate *FeeRate) String() string {
	return fmt.Sprintf("%d.%08d %s/kB",
		feeRate.SataoshisPerK/amount.COIN,
		feeRate.SataoshisPerK%amount.COIN,
		amount.CurrencyUnit)
}

func (feeRate *FeeRate) SerializeSize() int {
	return 8
}

func (feeRate *FeeRate) Serialize(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, feeRate.SataoshisPerK)
}

func Unserialize(r io.Reader) (*FeeRate, error) {
	feeRate := new(FeeRate)
	var sataoshisPerK int64
	err := binary.Read(r, binary.LittleEndian, &sataoshisPerK)
	if err != nil {
		return feeRate, err
	}
	feeRate.SataoshisPerK = sataoshisPerK
	return feeRate, nil
}

func (feeRate *FeeRate) Less(b FeeRate) bool {
	return feeRate.SataoshisPerK < b.SataoshisPerK
}

func NewFeeRate(amount int64) *FeeRate {
	return &FeeRate{SataoshisPerK: amount}
}

// NewFeeRateWithSize derives the per-K rate paid by feePaid satoshis
// over bytes bytes. A zero size means a zero rate.
func NewFeeRateWithSize(feePaid int64, bytes int64) *FeeRate {
	if bytes > 0 {
		return NewFeeRate(feePaid * 1000 / bytes)
	}
	return NewFeeRate(0)
}

// CompareFeeFraction orders the fraction feeA/sizeA against feeB/sizeB
// by cross multiplication, so no precision is lost to division. The
// products are carried in 128 bits; sizes must be positive. Returns
// -1, 0 or 1.
func CompareFeeFraction(feeA, sizeA, feeB, sizeB int64) int {
	lhsNeg := feeA < 0
	rhsNeg := feeB < 0
	if lhsNeg != rhsNeg {
		if lhsNeg {
			return -1
		}
		return 1
	}

	lhsHi, lhsLo := bits.Mul64(absUint64(feeA), uint64(sizeB))
	rhsHi, rhsLo := bits.Mul64(absUint64(feeB), uint64(sizeA))

	cmp := 0
	if lhsHi != rhsHi {
		if lhsHi < rhsHi {
			cmp = -1
		} else {
			cmp = 1
		}
	} else if lhsLo != rhsLo {
		if lhsLo < rhsLo {
			cmp = -1
		} else {
			cmp = 1
		}
	}
	if lhsNeg {
		return -cmp
	}
	return cmp
}

func absUint64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

package errcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCarriesModuleAndCode(t *testing.T) {
	err := New(ErrorPoSHeight)
	perr, ok := err.(ProjectError)
	assert.True(t, ok)
	assert.Equal(t, "mining", perr.Module)
	assert.Equal(t, int(ErrorPoSHeight), perr.Code)
	assert.Equal(t, "Proof-of-Stake is activated!", perr.Desc)
}

func TestNewErrorOverridesDesc(t *testing.T) {
	err := NewError(ErrorBadBlkTx, "bad-txns-vout-negative")
	perr := err.(ProjectError)
	assert.Equal(t, "bad-txns-vout-negative", perr.Desc)
	assert.Equal(t, int(ErrorBadBlkTx), perr.Code)
}

func TestIsErrorCode(t *testing.T) {
	err := New(ErrorBlockAlreadyKnown)
	assert.True(t, IsErrorCode(err, ErrorBlockAlreadyKnown))
	assert.False(t, IsErrorCode(err, ErrorBlockInvalidDuplicate))
	assert.False(t, IsErrorCode(nil, ErrorBlockAlreadyKnown))
}

func TestGetBip22Result(t *testing.T) {
	// nil folds to valid.
	res := GetBip22Result(nil).(ProjectError)
	assert.Equal(t, int(ModelValid), res.Code)

	// chain rejects fold to invalid and keep their reject string.
	res = GetBip22Result(New(ErrorBadTxnMrklRoot)).(ProjectError)
	assert.Equal(t, int(ModelInvalid), res.Code)
	assert.Equal(t, "bad-txnmrklroot", res.Desc)

	// reject detail attached via NewError survives the fold.
	res = GetBip22Result(NewError(ErrorBadBlkTx, "bad-txns-oversize")).(ProjectError)
	assert.Equal(t, int(ModelInvalid), res.Code)
	assert.Equal(t, "bad-txns-oversize", res.Desc)

	// unknown errors fold to error.
	res = GetBip22Result(assert.AnError).(ProjectError)
	assert.Equal(t, int(ModelError), res.Code)
}

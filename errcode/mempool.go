package errcode

import (
	"fmt"
)

type MemPoolErr int

const (
	MissParent MemPoolErr = MempoolErrorBase + iota
	AlreadyHaveTx
	TxNotInMempool
	ManyUnconfirmedAncestors
)

var merrToString = map[MemPoolErr]string{
	MissParent:               "miss input transaction",
	AlreadyHaveTx:            "the transaction is already in the mempool",
	TxNotInMempool:           "the transaction is not in the mempool",
	ManyUnconfirmedAncestors: "too many unconfirmed ancestors",
}

func (me MemPoolErr) String() string {
	if s, ok := merrToString[me]; ok {
		return s
	}
	return fmt.Sprintf("Unknown code (%d)", me)
}

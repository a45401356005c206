package errcode

import "fmt"

type MiningErr int

const (
	ErrorBlockSizeOutOfRange MiningErr = MiningErrorBase + iota
	ErrorNoChainTip
	ErrorPoSHeight
	ErrorCbTxMerkleRootMNList
	ErrorCbTxMerkleRootQuorums
	ErrorCoinStakeSearch
	ErrorTemplateSelfCheck
	ErrorNegativeReserve
)

var miningErrString = map[MiningErr]string{
	ErrorBlockSizeOutOfRange:   "configured block size is out of range",
	ErrorNoChainTip:            "no chain tip to build on",
	ErrorPoSHeight:             "Proof-of-Stake is activated!",
	ErrorCbTxMerkleRootMNList:  "failed to compute the masternode list merkle root",
	ErrorCbTxMerkleRootQuorums: "failed to compute the quorum list merkle root",
	ErrorCoinStakeSearch:       "coinstake search failed",
	ErrorTemplateSelfCheck:     "created block template failed validity check",
	ErrorNegativeReserve:       "reserve amount cannot be negative",
}

func (me MiningErr) String() string {
	if s, ok := miningErrString[me]; ok {
		return s
	}
	return fmt.Sprintf("Unknown code (%d)", me)
}

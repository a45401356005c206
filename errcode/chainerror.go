package errcode

import "fmt"

type ChainErr int

const (
	ErrorBlockHeaderNoValid ChainErr = ChainErrorBase + iota
	ErrorBlockHeaderNoParent
	ErrorBadPrevBlock
	ErrorBlockNotStartWithCoinBase
	ErrorBlockSize
	ErrorBlockSigOps
	ErrorPowCheckErr
	ErrorBadTxnMrklRoot
	ErrorbadTxnsDuplicate
	ErrorBadBlkTx
	ErrorBlockTimeTooOld
	ErrorBlockTimeTooNew
	ErrorBadDiffBits
	ErrorBadVersionBits
	ErrorTxNonFinal
	ErrorBadCbHeight
	ErrorBadCbPayload
	ErrorBadCbType
	ErrorBadCbLength
	ErrorBadQcPayload
	ErrorBadStakeKernel
	ErrorBadBlockSignature
	ErrorPosNotActive
	ErrorPowEnded
	ErrorBlockNotOnTip
	ErrorBlockAlreadyKnown
	ErrorBlockInvalidDuplicate
	ErrorBlockInconclusiveDuplicate
	ErrorTxVinEmpty
	ErrorTxVoutEmpty
	ErrorTxOversize
	ErrorTxVoutNegative
	ErrorTxVoutTooLarge
	ErrorTxOutTotalTooLarge
	ErrorTxDuplicateIns
	ErrorTxNullPrevout
)

var chainErrString = map[ChainErr]string{
	ErrorBlockHeaderNoValid:         "high-hash",
	ErrorBlockHeaderNoParent:        "prev-blk-not-found",
	ErrorBadPrevBlock:               "bad-prevblk",
	ErrorBlockNotStartWithCoinBase:  "bad-cb-missing",
	ErrorBlockSize:                  "bad-blk-length",
	ErrorBlockSigOps:                "bad-blk-sigops",
	ErrorPowCheckErr:                "high-hash",
	ErrorBadTxnMrklRoot:             "bad-txnmrklroot",
	ErrorbadTxnsDuplicate:           "bad-txns-duplicate",
	ErrorBadBlkTx:                   "bad-blk-tx",
	ErrorBlockTimeTooOld:            "time-too-old",
	ErrorBlockTimeTooNew:            "time-too-new",
	ErrorBadDiffBits:                "bad-diffbits",
	ErrorBadVersionBits:             "bad-version",
	ErrorTxNonFinal:                 "bad-txns-nonfinal",
	ErrorBadCbHeight:                "bad-cb-height",
	ErrorBadCbPayload:               "bad-cb-payload",
	ErrorBadCbType:                  "bad-cb-type",
	ErrorBadCbLength:                "bad-cb-length",
	ErrorBadQcPayload:               "bad-qc-payload",
	ErrorBadStakeKernel:             "bad-stake-kernel",
	ErrorBadBlockSignature:          "bad-block-signature",
	ErrorPosNotActive:               "pos-not-active",
	ErrorPowEnded:                   "pow-ended",
	ErrorBlockNotOnTip:              "inconclusive-not-best-prevblk",
	ErrorBlockAlreadyKnown:          "duplicate",
	ErrorBlockInvalidDuplicate:      "duplicate-invalid",
	ErrorBlockInconclusiveDuplicate: "duplicate-inconclusive",
	ErrorTxVinEmpty:                 "bad-txns-vin-empty",
	ErrorTxVoutEmpty:                "bad-txns-vout-empty",
	ErrorTxOversize:                 "bad-txns-oversize",
	ErrorTxVoutNegative:             "bad-txns-vout-negative",
	ErrorTxVoutTooLarge:             "bad-txns-vout-toolarge",
	ErrorTxOutTotalTooLarge:         "bad-txns-txouttotal-toolarge",
	ErrorTxDuplicateIns:             "bad-txns-inputs-duplicate",
	ErrorTxNullPrevout:              "bad-txns-prevout-null",
}

func (chainerr ChainErr) String() string {
	if s, ok := chainErrString[chainerr]; ok {
		return s
	}
	return fmt.Sprintf("Unknown code (%d)", chainerr)
}

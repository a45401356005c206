package errcode

// GetBip22Result folds an arbitrary validation error into the three BIP22
// outcome classes. A nil error is valid; chain reject codes become
// ModelInvalid carrying their reject string; anything else is ModelError.
func GetBip22Result(rerr error) (err error) {
	if rerr == nil {
		return NewError(ModelValid, "")
	}

	perr, ok := rerr.(ProjectError)
	if !ok {
		return NewError(ModelError, "Unknown Error")
	}

	switch perr.Code {
	case int(ErrorBlockNotStartWithCoinBase),
		int(ErrorBlockSize),
		int(ErrorBlockSigOps),
		int(ErrorPowCheckErr),
		int(ErrorBadTxnMrklRoot),
		int(ErrorbadTxnsDuplicate),
		int(ErrorBadBlkTx),
		int(ErrorBlockTimeTooOld),
		int(ErrorBlockTimeTooNew),
		int(ErrorBadDiffBits),
		int(ErrorBadVersionBits),
		int(ErrorTxNonFinal),
		int(ErrorBadCbHeight),
		int(ErrorBadCbPayload),
		int(ErrorBadCbType),
		int(ErrorBadCbLength),
		int(ErrorBadStakeKernel),
		int(ErrorBadBlockSignature),
		int(ErrorPosNotActive),
		int(ErrorPowEnded),
		int(ErrorTxVinEmpty),
		int(ErrorTxVoutEmpty),
		int(ErrorTxOversize),
		int(ErrorTxVoutNegative),
		int(ErrorTxVoutTooLarge),
		int(ErrorTxOutTotalTooLarge),
		int(ErrorTxDuplicateIns),
		int(ErrorTxNullPrevout),
		int(ErrorBlockHeaderNoValid),
		int(ErrorBlockHeaderNoParent),
		int(ErrorBadPrevBlock):
		desc := perr.Desc
		if desc == "" {
			desc = "rejected"
		}
		err = NewError(ModelInvalid, desc)

	default:
		err = NewError(ModelError, perr.Desc)
	}

	return err
}

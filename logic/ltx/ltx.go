package ltx

import (
	"bytes"

	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/model/chainparams"
	"github.com/cosanta/cosanta-core/model/outpoint"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/model/tx"
)

// CheckBlockTransactions runs the context free checks over a block
// body: a well formed coinbase in slot 0 and nowhere else, regular
// shape for the rest, no duplicate spends anywhere in the block, and
// the aggregate sigop cap.
func CheckBlockTransactions(txs []*tx.Tx, maxBlockSigOps uint64) error {
	if len(txs) == 0 {
		log.Debug("block has no transactions")
		return errcode.New(errcode.ErrorBlockNotStartWithCoinBase)
	}
	err := txs[0].CheckCoinbaseTransaction()
	if err != nil {
		return err
	}
	sigOps := txs[0].GetSigOpCountWithoutP2SH()
	outPointSet := make(map[outpoint.OutPoint]bool)
	for _, transaction := range txs[1:] {
		sigOps += transaction.GetSigOpCountWithoutP2SH()
		if uint64(sigOps) > maxBlockSigOps {
			log.Debug("block has too many sigOps:%d", sigOps)
			return errcode.New(errcode.ErrorBlockSigOps)
		}
		err = transaction.CheckRegularTransaction()
		if err != nil {
			return err
		}
		err = transaction.CheckDuplicateIns(&outPointSet)
		if err != nil {
			return err
		}
	}
	return nil
}

// ContextualCheckBlockTransactions applies the height dependent rules:
// every transaction final by the lock time cutoff and the coinbase
// committing to the block height.
func ContextualCheckBlockTransactions(txs []*tx.Tx, blockHeight int32, lockTimeCutoff int64) error {
	if len(txs) == 0 {
		log.Debug("no transactions to check at height %d", blockHeight)
		return errcode.New(errcode.ErrorBlockNotStartWithCoinBase)
	}
	err := checkCoinBaseHeight(txs[0], blockHeight)
	if err != nil {
		return err
	}
	for _, transaction := range txs {
		err = ContextualCheckTransaction(transaction, blockHeight, lockTimeCutoff)
		if err != nil {
			return err
		}
	}
	return nil
}

// ContextualCheckTransaction rejects transactions that are not final
// for a block at blockHeight evaluated against lockTimeCutoff.
func ContextualCheckTransaction(txn *tx.Tx, blockHeight int32, lockTimeCutoff int64) error {
	if !IsFinalTx(txn, blockHeight, lockTimeCutoff) {
		log.Debug("txn is not final, hash: %s", txn.GetHash())
		return errcode.New(errcode.ErrorTxNonFinal)
	}
	return nil
}

// IsFinalTx reports whether txn may be included in a block at
// blockHeight whose lock times are evaluated against lockTimeCutoff.
func IsFinalTx(txn *tx.Tx, blockHeight int32, lockTimeCutoff int64) bool {
	return txn.IsFinal(blockHeight, lockTimeCutoff)
}

// checkCoinBaseHeight enforces the coinbase height commitment. From
// DIP0003 on the coinbase is a special CbTx whose payload carries the
// height; before that the BIP34 serialized height leads the scriptSig.
func checkCoinBaseHeight(coinbase *tx.Tx, blockHeight int32) error {
	params := chainparams.ActiveNetParams
	if params.IsDIP0003Active(blockHeight) {
		if coinbase.GetTxType() != tx.TxTypeCoinbase {
			log.Debug("coinbase at height %d is not a CbTx", blockHeight)
			return errcode.New(errcode.ErrorBadCbType)
		}
		payload, err := tx.GetCbTxPayload(coinbase)
		if err != nil {
			return err
		}
		if payload.Height != blockHeight {
			log.Debug("CbTx commits to height %d, block is at height %d",
				payload.Height, blockHeight)
			return errcode.New(errcode.ErrorBadCbHeight)
		}
		return nil
	}

	if blockHeight > params.BIP34Height {
		heightNumb := script.NewScriptNum(int64(blockHeight))
		heightScript := script.NewEmptyScript()
		heightScript.PushScriptNum(heightNumb)
		coinBaseScriptSig := coinbase.GetIns()[0].GetScriptSig()
		if coinBaseScriptSig.Size() < heightScript.Size() {
			log.Debug("coinbase err, not start with blockheight")
			return errcode.New(errcode.ErrorBadCbHeight)
		}
		scriptData := coinBaseScriptSig.GetData()[:heightScript.Size()]
		if !bytes.Equal(scriptData, heightScript.GetData()) {
			log.Debug("coinbase err, not start with blockheight")
			return errcode.New(errcode.ErrorBadCbHeight)
		}
	}
	return nil
}

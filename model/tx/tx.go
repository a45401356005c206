package tx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/model/consensus"
	"github.com/cosanta/cosanta-core/model/outpoint"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/model/txin"
	"github.com/cosanta/cosanta-core/model/txout"
	"github.com/cosanta/cosanta-core/util"
	"github.com/cosanta/cosanta-core/util/amount"
)

// Special transaction types. A non zero type means the transaction
// carries an extra payload after the lock time.
const (
	TxTypeNormal           uint16 = 0
	TxTypeProviderRegister uint16 = 1
	TxTypeProviderUpdSvc   uint16 = 2
	TxTypeProviderUpdReg   uint16 = 3
	TxTypeProviderUpdRev   uint16 = 4
	TxTypeCoinbase         uint16 = 5
	TxTypeQuorumCommitment uint16 = 6
)

const (
	TxVersion = 1

	// SpecialTxVersion is the lowest tx version that understands the
	// type field and extra payloads.
	SpecialTxVersion = 3

	// MaxTxSigOpsCounts the maximum allowed number of signature check
	// operations per transaction (network rule)
	MaxTxSigOpsCounts = 20000

	MaxMessagePayload = 32 * 1024 * 1024
	MinTxInPayload    = 9 + util.Hash256Size
	MaxTxInPerMessage = (MaxMessagePayload / MinTxInPayload) + 1

	// MaxExtraPayloadSize bounds the special payload of any tx type.
	MaxExtraPayloadSize = 10000

	MaxStandardVersion = 3

	// MaxStandardTxSize the maximum size for transactions we're willing
	// to relay/mine
	MaxStandardTxSize uint = 100000

	// MaxStandardTxSigOps the maximum number of sigops we're willing to
	// relay/mine in a single tx
	MaxStandardTxSigOps = uint(MaxTxSigOpsCounts / 5)
)

type Tx struct {
	hash         util.Hash // cached hash of the full serialization
	lockTime     uint32
	version      uint16
	txType       uint16
	ins          []*txin.TxIn
	outs         []*txout.TxOut
	extraPayload []byte
}

func NewTx(locktime uint32, version uint16) *Tx {
	tx := &Tx{lockTime: locktime, version: version}
	tx.ins = make([]*txin.TxIn, 0)
	tx.outs = make([]*txout.TxOut, 0)
	return tx
}

// NewSpecialTx builds an empty transaction of a special type carrying
// an extra payload.
func NewSpecialTx(locktime uint32, txType uint16) *Tx {
	tx := NewTx(locktime, SpecialTxVersion)
	tx.txType = txType
	return tx
}

func NewEmptyTx() *Tx {
	return &Tx{}
}

func (tx *Tx) AddTxIn(txIn *txin.TxIn) {
	tx.ins = append(tx.ins, txIn)
}

func (tx *Tx) AddTxOut(txOut *txout.TxOut) {
	tx.outs = append(tx.outs, txOut)
}

func (tx *Tx) GetTxOut(index int) (out *txout.TxOut) {
	if index < 0 || index >= len(tx.outs) {
		return nil
	}
	return tx.outs[index]
}

func (tx *Tx) GetTxIn(index int) (in *txin.TxIn) {
	if index < 0 || index >= len(tx.ins) {
		return nil
	}
	return tx.ins[index]
}

func (tx *Tx) GetAllPreviousOut() (outs []outpoint.OutPoint) {
	outs = make([]outpoint.OutPoint, 0, len(tx.ins))
	for _, e := range tx.ins {
		outs = append(outs, *e.PreviousOutPoint)
	}
	return
}

func (tx *Tx) PrevoutHashs() (outs []util.Hash) {
	outs = make([]util.Hash, 0, len(tx.ins))
	for _, e := range tx.ins {
		outs = append(outs, e.PreviousOutPoint.Hash)
	}
	return
}

// AnyInputTxIn reports whether any input spends an output of the txs
// named in container.
func (tx *Tx) AnyInputTxIn(container map[util.Hash]struct{}) bool {
	if container == nil {
		return false
	}
	for _, e := range tx.ins {
		if _, ok := container[e.PreviousOutPoint.Hash]; ok {
			return true
		}
	}
	return false
}

func (tx *Tx) GetOutsCount() int {
	return len(tx.outs)
}

func (tx *Tx) GetInsCount() int {
	return len(tx.ins)
}

func (tx *Tx) GetIns() []*txin.TxIn {
	return tx.ins
}

func (tx *Tx) GetOuts() []*txout.TxOut {
	return tx.outs
}

func (tx *Tx) GetVersion() uint16 {
	return tx.version
}

func (tx *Tx) GetTxType() uint16 {
	return tx.txType
}

func (tx *Tx) GetLockTime() uint32 {
	return tx.lockTime
}

func (tx *Tx) GetExtraPayload() []byte {
	return tx.extraPayload
}

// SetExtraPayload installs the special payload and invalidates the
// cached hash.
func (tx *Tx) SetExtraPayload(payload []byte) {
	tx.extraPayload = payload
	tx.hash = util.Hash{}
}

func (tx *Tx) SerializeSize() uint32 {
	return tx.EncodeSize()
}

func (tx *Tx) Serialize(writer io.Writer) error {
	return tx.Encode(writer)
}

func (tx *Tx) Unserialize(reader io.Reader) error {
	return tx.Decode(reader)
}

func (tx *Tx) EncodeSize() uint32 {
	// version/type 4 bytes + lockTime 4 bytes + varints for the input
	// and output counts
	n := 8 + uint32(util.VarIntSerializeSize(uint64(len(tx.ins)))) +
		uint32(util.VarIntSerializeSize(uint64(len(tx.outs))))

	for _, txIn := range tx.ins {
		n += txIn.EncodeSize()
	}
	for _, txOut := range tx.outs {
		n += txOut.EncodeSize()
	}
	if tx.txType != TxTypeNormal {
		n += uint32(util.VarIntSerializeSize(uint64(len(tx.extraPayload)))) + uint32(len(tx.extraPayload))
	}

	return n
}

func (tx *Tx) Encode(writer io.Writer) error {
	packed := uint32(tx.version) | uint32(tx.txType)<<16
	err := util.BinarySerializer.PutUint32(writer, binary.LittleEndian, packed)
	if err != nil {
		return err
	}
	count := uint64(len(tx.ins))
	err = util.WriteVarInt(writer, count)
	if err != nil {
		return err
	}
	for _, txIn := range tx.ins {
		err := txIn.Encode(writer)
		if err != nil {
			return err
		}
	}
	count = uint64(len(tx.outs))
	err = util.WriteVarInt(writer, count)
	if err != nil {
		return err
	}
	for _, txOut := range tx.outs {
		err := txOut.Encode(writer)
		if err != nil {
			return err
		}
	}

	err = util.BinarySerializer.PutUint32(writer, binary.LittleEndian, tx.lockTime)
	if err != nil {
		return err
	}
	if tx.txType != TxTypeNormal {
		return util.WriteVarBytes(writer, tx.extraPayload)
	}
	return nil
}

func (tx *Tx) Decode(reader io.Reader) error {
	packed, err := util.BinarySerializer.Uint32(reader, binary.LittleEndian)
	if err != nil {
		return err
	}
	tx.version = uint16(packed & 0xffff)
	tx.txType = uint16(packed >> 16)

	count, err := util.ReadVarInt(reader)
	if err != nil {
		return err
	}
	if count > uint64(MaxTxInPerMessage) {
		log.Error("too many input txs to fit into max message size [count %d, max %d]",
			count, MaxTxInPerMessage)
		return errcode.New(errcode.ErrorTxOversize)
	}

	tx.ins = make([]*txin.TxIn, count)
	for i := uint64(0); i < count; i++ {
		txIn := new(txin.TxIn)
		txIn.PreviousOutPoint = new(outpoint.OutPoint)
		err = txIn.Decode(reader)
		if err != nil {
			return err
		}
		tx.ins[i] = txIn
	}
	count, err = util.ReadVarInt(reader)
	if err != nil {
		return err
	}

	tx.outs = make([]*txout.TxOut, count)
	for i := uint64(0); i < count; i++ {
		txOut := new(txout.TxOut)
		err = txOut.Decode(reader)
		if err != nil {
			return err
		}
		tx.outs[i] = txOut
	}

	tx.lockTime, err = util.BinarySerializer.Uint32(reader, binary.LittleEndian)
	if err != nil {
		return err
	}
	if tx.txType != TxTypeNormal {
		tx.extraPayload, err = util.ReadVarBytes(reader, MaxExtraPayloadSize, "tx extra payload")
	}
	return err
}

func (tx *Tx) IsCoinBase() bool {
	if len(tx.ins) != 1 {
		return false
	}
	return tx.ins[0].PreviousOutPoint.IsNull()
}

func (tx *Tx) GetSigOpCountWithoutP2SH() int {
	n := 0
	for _, in := range tx.ins {
		n += in.GetScriptSig().GetSigOpCount(false)
	}
	for _, out := range tx.outs {
		n += out.GetScriptPubKey().GetSigOpCount(false)
	}
	return n
}

func (tx *Tx) CheckRegularTransaction() error {
	if tx.IsCoinBase() {
		log.Debug("tx should not be coinbase, hash: %s", tx.hash.String())
		return errcode.NewError(errcode.ErrorBadBlkTx, "bad-tx-coinbase")
	}

	err := tx.checkTransactionCommon(true)
	if err != nil {
		return err
	}

	for _, in := range tx.ins {
		if in.PreviousOutPoint.IsNull() {
			log.Debug("tx input prevout null")
			return errcode.New(errcode.ErrorTxNullPrevout)
		}
	}

	return nil
}

func (tx *Tx) CheckCoinbaseTransaction() error {
	if !tx.IsCoinBase() {
		log.Warn("CheckCoinbaseTransaction: not coinbase")
		return errcode.New(errcode.ErrorBlockNotStartWithCoinBase)
	}
	err := tx.checkTransactionCommon(false)
	if err != nil {
		return err
	}

	// A special coinbase carries the height in its payload, the legacy
	// one in the scriptSig, so the minimum script length differs.
	minCbSize := 2
	if tx.txType == TxTypeCoinbase {
		minCbSize = 1
	}
	scriptSigSize := tx.ins[0].GetScriptSig().Size()
	if scriptSigSize < minCbSize || scriptSigSize > script.MaxCoinbaseScriptSigSize {
		log.Debug("coinbase scriptSig size %d out of range", scriptSigSize)
		return errcode.New(errcode.ErrorBadCbLength)
	}

	return nil
}

func (tx *Tx) checkTransactionCommon(checkDupInput bool) error {
	if len(tx.ins) == 0 {
		log.Warn("bad tx: %s, empty ins", tx.hash.String())
		return errcode.New(errcode.ErrorTxVinEmpty)
	}
	if len(tx.outs) == 0 {
		log.Warn("bad tx: %s, empty outs", tx.hash.String())
		return errcode.New(errcode.ErrorTxVoutEmpty)
	}

	if tx.EncodeSize() > consensus.MaxTxSize {
		log.Warn("tx %s is oversize: %d, max %d", tx.hash.String(), tx.EncodeSize(), consensus.MaxTxSize)
		return errcode.New(errcode.ErrorTxOversize)
	}

	// check outputs money
	totalOut := amount.Amount(0)
	for _, out := range tx.outs {
		err := out.CheckValue()
		if err != nil {
			return err
		}

		totalOut += out.GetValue()
		if !amount.MoneyRange(totalOut) {
			log.Debug("bad tx: %s totalOut value: %d", tx.hash.String(), totalOut)
			return errcode.New(errcode.ErrorTxOutTotalTooLarge)
		}
	}

	// check sigopcount
	sigOpCount := tx.GetSigOpCountWithoutP2SH()
	if sigOpCount > MaxTxSigOpsCounts {
		log.Debug("bad tx: %s sigops: %d", tx.hash.String(), sigOpCount)
		return errcode.NewError(errcode.ErrorBadBlkTx, "bad-txn-sigops")
	}

	// check dup input
	if checkDupInput {
		outPointSet := make(map[outpoint.OutPoint]bool)
		err := tx.CheckDuplicateIns(&outPointSet)
		if err != nil {
			return err
		}
	}

	return nil
}

func (tx *Tx) CheckDuplicateIns(outpoints *map[outpoint.OutPoint]bool) error {
	for _, in := range tx.ins {
		if _, exists := (*outpoints)[*(in.PreviousOutPoint)]; !exists {
			(*outpoints)[*(in.PreviousOutPoint)] = true
		} else {
			log.Error("bad tx: %s, duplicate inputs:[%s:%d]",
				tx.hash.String(), in.PreviousOutPoint.Hash.String(), in.PreviousOutPoint.Index)
			return errcode.New(errcode.ErrorTxDuplicateIns)
		}
	}
	return nil
}

func (tx *Tx) IsStandard() (bool, string) {
	if tx.version > MaxStandardVersion || tx.version < 1 {
		return false, "version"
	}

	if tx.EncodeSize() > uint32(MaxStandardTxSize) {
		return false, "tx-size"
	}

	for _, in := range tx.ins {
		ok, reason := in.CheckStandard()
		if !ok {
			return false, reason
		}
	}

	nDataOut := 0
	for _, out := range tx.outs {
		pubKeyType, isStandard := out.IsStandard()
		if !isStandard {
			return false, "scriptpubkey"
		}
		if pubKeyType == script.ScriptNullData {
			nDataOut++
		}
	}

	// only one OP_RETURN txout is permitted
	if nDataOut > 1 {
		return false, "multi-op-return"
	}

	return true, ""
}

func (tx *Tx) GetValueOut() amount.Amount {
	var valueOut amount.Amount
	for _, out := range tx.outs {
		valueOut += out.GetValue()
		if !amount.MoneyRange(out.GetValue()) || !amount.MoneyRange(valueOut) {
			panic("value out of range")
		}
	}
	return valueOut
}

func (tx *Tx) UpdateInScript(i int, scriptSig *script.Script) error {
	if i < 0 || i >= len(tx.ins) {
		return errcode.New(errcode.ErrorBadBlkTx)
	}
	tx.ins[i].SetScriptSig(scriptSig)
	tx.hash = util.Hash{}
	return nil
}

// IsFinal proceeds as follows
// 1. lockTime below the threshold compares against the block height
// 2. lockTime at or above the threshold compares against block time
// 3. a final sequence on every input disables the check
func (tx *Tx) IsFinal(height int32, time int64) bool {
	if tx.lockTime == 0 {
		return true
	}

	var lockTimeLimit int64
	if tx.lockTime < script.LockTimeThreshold {
		lockTimeLimit = int64(height)
	} else {
		lockTimeLimit = time
	}

	if int64(tx.lockTime) < lockTimeLimit {
		return true
	}

	for _, in := range tx.ins {
		if in.Sequence != script.SequenceFinal {
			return false
		}
	}

	return true
}

func (tx *Tx) String() string {
	hash := tx.GetHash()
	str := fmt.Sprintf("hash:%s version:%d type:%d lockTime:%d\n",
		hash.String(), tx.version, tx.txType, tx.lockTime)
	inStr := "ins:\n"
	for i, in := range tx.ins {
		if in == nil {
			inStr = fmt.Sprintf("%s  %d, nil\n", inStr, i)
		} else {
			inStr = fmt.Sprintf("%s  %d, %s\n", inStr, i, in.String())
		}
	}
	outStr := "outs:\n"
	for i, out := range tx.outs {
		outStr = fmt.Sprintf("%s  %d, %s\n", outStr, i, out.String())
	}
	return fmt.Sprintf("%s%s%s", str, inStr, outStr)
}

func (tx *Tx) GetHash() util.Hash {
	if !tx.hash.IsNull() {
		return tx.hash
	}

	tx.hash = tx.calHash()
	return tx.hash
}

func (tx *Tx) calHash() util.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, tx.EncodeSize()))
	err := tx.Encode(buf)
	if err != nil {
		panic("tx encode failed: " + err.Error())
	}
	return util.DoubleSha256Hash(buf.Bytes())
}

func (tx *Tx) InsertTxOut(pos int, txOut *txout.TxOut) {
	if pos > len(tx.outs) {
		tx.outs = append(tx.outs, txOut)
		return
	}
	rear := append([]*txout.TxOut{}, tx.outs[pos:]...)
	tx.outs = append(tx.outs[:pos], txOut)
	tx.outs = append(tx.outs, rear...)
	tx.hash = util.Hash{}
}

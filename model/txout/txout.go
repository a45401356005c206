package txout

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/util"
	"github.com/cosanta/cosanta-core/util/amount"
)

// MaxDataCarrierBytes bounds a standard OP_RETURN output script.
const MaxDataCarrierBytes = 83

type TxOut struct {
	value        amount.Amount
	scriptPubKey *script.Script
}

func NewTxOut(value amount.Amount, scriptPubKey *script.Script) *TxOut {
	txOut := TxOut{
		value:        value,
		scriptPubKey: nil,
	}
	if scriptPubKey != nil {
		txOut.scriptPubKey = script.NewScriptRaw(scriptPubKey.GetData())
	}
	return &txOut
}

func (txOut *TxOut) SerializeSize() uint32 {
	return txOut.EncodeSize()
}

func (txOut *TxOut) Serialize(writer io.Writer) error {
	return txOut.Encode(writer)
}

func (txOut *TxOut) Unserialize(reader io.Reader) error {
	return txOut.Decode(reader)
}

func (txOut *TxOut) EncodeSize() uint32 {
	return 8 + txOut.scriptPubKey.EncodeSize()
}

func (txOut *TxOut) Encode(writer io.Writer) error {
	err := util.BinarySerializer.PutUint64(writer, binary.LittleEndian, uint64(txOut.value))
	if err != nil {
		return err
	}
	if txOut.scriptPubKey == nil {
		return util.WriteVarInt(writer, 0)
	}
	return txOut.scriptPubKey.Encode(writer)
}

func (txOut *TxOut) Decode(reader io.Reader) error {
	err := util.ReadElements(reader, (*int64)(&txOut.value))
	if err != nil {
		return err
	}
	bytes, err := script.ReadScript(reader, script.MaxMessagePayload, "tx output script")
	txOut.scriptPubKey = script.NewScriptRaw(bytes)
	return err
}

func (txOut *TxOut) IsDust(minRelayTxFee *util.FeeRate) bool {
	return txOut.value < amount.Amount(txOut.GetDustThreshold(minRelayTxFee))
}

func (txOut *TxOut) GetDustThreshold(minRelayTxFee *util.FeeRate) int64 {
	// An output is dust when spending it would cost more than a third
	// of its value in fees. A typical spendable txout is 34 bytes and
	// needs a txin of at least 148 bytes to spend.
	if txOut.scriptPubKey.IsUnspendable() {
		return 0
	}
	size := txOut.SerializeSize()
	size += 32 + 4 + 1 + 107 + 4
	return 3 * minRelayTxFee.GetFee(int(size))
}

func (txOut *TxOut) CheckValue() error {
	if txOut.value < amount.Amount(0) {
		return errcode.New(errcode.ErrorTxVoutNegative)
	}
	if txOut.value > amount.Amount(amount.MaxMoney) {
		return errcode.New(errcode.ErrorTxVoutTooLarge)
	}
	return nil
}

func (txOut *TxOut) IsStandard() (pubKeyType int, isStandard bool) {
	pubKeyType, pubKeys, isStandard := txOut.scriptPubKey.IsStandardScriptPubKey()
	if !isStandard {
		return pubKeyType, false
	}
	if pubKeyType == script.ScriptMultiSig {
		opM := pubKeys[0][0]
		opN := pubKeys[len(pubKeys)-1][0]
		if opN < 1 || opN > 3 || opM < 1 || opM > opN {
			return pubKeyType, false
		}
	} else if pubKeyType == script.ScriptNullData {
		if txOut.scriptPubKey.Size() > MaxDataCarrierBytes {
			return pubKeyType, false
		}
	}
	return pubKeyType, true
}

func (txOut *TxOut) GetPubKeyType() (pubKeyType int, isStandard bool) {
	pubKeyType, _, isStandard = txOut.scriptPubKey.IsStandardScriptPubKey()
	return
}

func (txOut *TxOut) GetValue() amount.Amount {
	return txOut.value
}

func (txOut *TxOut) SetValue(v amount.Amount) {
	txOut.value = v
}

func (txOut *TxOut) GetScriptPubKey() *script.Script {
	return txOut.scriptPubKey
}

func (txOut *TxOut) SetScriptPubKey(s *script.Script) {
	txOut.scriptPubKey = s
}

func (txOut *TxOut) SetNull() {
	txOut.value = -1
	txOut.scriptPubKey = nil
}

func (txOut *TxOut) IsNull() bool {
	return txOut.value == -1
}

func (txOut *TxOut) String() string {
	return fmt.Sprintf("Value:%d Script:%s", txOut.value, hex.EncodeToString(txOut.scriptPubKey.GetData()))
}

func (txOut *TxOut) IsEqual(out *TxOut) bool {
	if txOut.value != out.value {
		return false
	}
	return txOut.scriptPubKey.IsEqual(out.scriptPubKey)
}

package tx

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/cosanta/cosanta-core/model/opcodes"
	"github.com/cosanta/cosanta-core/model/outpoint"
	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/model/txin"
	"github.com/cosanta/cosanta-core/model/txout"
	"github.com/cosanta/cosanta-core/util"
	"github.com/cosanta/cosanta-core/util/amount"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOutPoint(seed byte, index uint32) *outpoint.OutPoint {
	hash := util.Hash{}
	hash[0] = seed
	hash[31] = 0x5a
	return outpoint.NewOutPoint(hash, index)
}

func simpleTx(locktime uint32) *Tx {
	txn := NewTx(locktime, TxVersion)
	txn.AddTxIn(txin.NewTxIn(testOutPoint(1, 0), script.NewScriptRaw([]byte{opcodes.OP_TRUE}), script.SequenceFinal))
	txn.AddTxOut(txout.NewTxOut(5000, script.NewScriptRaw([]byte{opcodes.OP_TRUE})))
	return txn
}

func TestTxEncodeDecodeNormal(t *testing.T) {
	txn := simpleTx(77)

	var buf bytes.Buffer
	require.NoError(t, txn.Encode(&buf))
	assert.Equal(t, txn.EncodeSize(), uint32(buf.Len()))

	// packed version field: low 16 bits version, high 16 bits type
	assert.Equal(t, byte(TxVersion), buf.Bytes()[0])
	assert.Equal(t, byte(0), buf.Bytes()[2])

	decoded := NewEmptyTx()
	require.NoError(t, decoded.Decode(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, txn.GetVersion(), decoded.GetVersion())
	assert.Equal(t, TxTypeNormal, decoded.GetTxType())
	assert.Equal(t, uint32(77), decoded.GetLockTime())
	assert.Equal(t, 1, decoded.GetInsCount())
	assert.Equal(t, 1, decoded.GetOutsCount())
	assert.Equal(t, txn.GetHash(), decoded.GetHash())
}

func TestTxEncodeDecodeSpecial(t *testing.T) {
	txn := NewSpecialTx(0, TxTypeCoinbase)
	txn.AddTxIn(txin.NewTxIn(outpoint.NewDefaultOutPoint(), script.NewScriptRaw([]byte{opcodes.OP_RETURN}), script.SequenceFinal))
	txn.AddTxOut(txout.NewTxOut(5000, script.NewScriptRaw([]byte{opcodes.OP_TRUE})))

	payload := NewCbTxPayload(CbTxVersionMerkleRootQuorums, 1024)
	payload.MerkleRootMNList[0] = 0xaa
	payload.MerkleRootQuorums[0] = 0xbb
	raw, err := payload.Serialize()
	require.NoError(t, err)
	txn.SetExtraPayload(raw)

	var buf bytes.Buffer
	require.NoError(t, txn.Encode(&buf))
	assert.Equal(t, txn.EncodeSize(), uint32(buf.Len()))

	decoded := NewEmptyTx()
	require.NoError(t, decoded.Decode(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, uint16(SpecialTxVersion), decoded.GetVersion())
	assert.Equal(t, TxTypeCoinbase, decoded.GetTxType())

	got, err := GetCbTxPayload(decoded)
	require.NoError(t, err)
	assert.Equal(t, CbTxVersionMerkleRootQuorums, got.Version)
	assert.Equal(t, int32(1024), got.Height)
	assert.Equal(t, payload.MerkleRootMNList, got.MerkleRootMNList)
	assert.Equal(t, payload.MerkleRootQuorums, got.MerkleRootQuorums)
}

func TestCbTxPayloadV1OmitsQuorumRoot(t *testing.T) {
	payload := NewCbTxPayload(CbTxVersionBase, 9)
	raw, err := payload.Serialize()
	require.NoError(t, err)
	assert.Len(t, raw, 2+4+32)

	v2 := NewCbTxPayload(CbTxVersionMerkleRootQuorums, 9)
	raw2, err := v2.Serialize()
	require.NoError(t, err)
	assert.Len(t, raw2, 2+4+32+32)
}

func TestGetCbTxPayloadRejects(t *testing.T) {
	normal := simpleTx(0)
	_, err := GetCbTxPayload(normal)
	assert.Error(t, err)

	badVersion := NewSpecialTx(0, TxTypeCoinbase)
	payload := NewCbTxPayload(3, 9)
	raw, err := payload.Serialize()
	require.NoError(t, err)
	badVersion.SetExtraPayload(raw)
	_, err = GetCbTxPayload(badVersion)
	assert.Error(t, err)

	truncated := NewSpecialTx(0, TxTypeCoinbase)
	truncated.SetExtraPayload(raw[:5])
	_, err = GetCbTxPayload(truncated)
	assert.Error(t, err)
}

func TestIsCoinBase(t *testing.T) {
	cb := NewTx(0, TxVersion)
	cb.AddTxIn(txin.NewTxIn(outpoint.NewDefaultOutPoint(), script.NewScriptRaw([]byte{0x51, 0x02}), script.SequenceFinal))
	cb.AddTxOut(txout.NewTxOut(5000, script.NewScriptRaw([]byte{opcodes.OP_TRUE})))
	assert.True(t, cb.IsCoinBase())
	assert.False(t, simpleTx(0).IsCoinBase())
}

func TestIsFinal(t *testing.T) {
	assert.True(t, simpleTx(0).IsFinal(100, 0))

	// height locked
	byHeight := NewTx(200, TxVersion)
	byHeight.AddTxIn(txin.NewTxIn(testOutPoint(1, 0), script.NewScriptRaw([]byte{opcodes.OP_TRUE}), 0))
	assert.False(t, byHeight.IsFinal(200, 0))
	assert.True(t, byHeight.IsFinal(201, 0))

	// time locked
	byTime := NewTx(script.LockTimeThreshold+1000, TxVersion)
	byTime.AddTxIn(txin.NewTxIn(testOutPoint(1, 0), script.NewScriptRaw([]byte{opcodes.OP_TRUE}), 0))
	assert.False(t, byTime.IsFinal(0, int64(script.LockTimeThreshold+1000)))
	assert.True(t, byTime.IsFinal(0, int64(script.LockTimeThreshold+1001)))

	// final sequences disable the lock entirely
	disabled := NewTx(script.LockTimeThreshold+1000, TxVersion)
	disabled.AddTxIn(txin.NewTxIn(testOutPoint(1, 0), script.NewScriptRaw([]byte{opcodes.OP_TRUE}), script.SequenceFinal))
	assert.True(t, disabled.IsFinal(0, 0))
}

func TestCheckRegularTransaction(t *testing.T) {
	assert.NoError(t, simpleTx(0).CheckRegularTransaction())

	noIns := NewTx(0, TxVersion)
	noIns.AddTxOut(txout.NewTxOut(5000, script.NewScriptRaw([]byte{opcodes.OP_TRUE})))
	assert.Error(t, noIns.CheckRegularTransaction())

	noOuts := NewTx(0, TxVersion)
	noOuts.AddTxIn(txin.NewTxIn(testOutPoint(1, 0), script.NewScriptRaw([]byte{opcodes.OP_TRUE}), script.SequenceFinal))
	assert.Error(t, noOuts.CheckRegularTransaction())

	dup := NewTx(0, TxVersion)
	dup.AddTxIn(txin.NewTxIn(testOutPoint(1, 0), script.NewScriptRaw([]byte{opcodes.OP_TRUE}), script.SequenceFinal))
	dup.AddTxIn(txin.NewTxIn(testOutPoint(1, 0), script.NewScriptRaw([]byte{opcodes.OP_TRUE}), script.SequenceFinal))
	dup.AddTxOut(txout.NewTxOut(5000, script.NewScriptRaw([]byte{opcodes.OP_TRUE})))
	assert.Error(t, dup.CheckRegularTransaction())

	nullPrev := NewTx(0, TxVersion)
	nullPrev.AddTxIn(txin.NewTxIn(outpoint.NewDefaultOutPoint(), script.NewScriptRaw([]byte{opcodes.OP_TRUE}), script.SequenceFinal))
	nullPrev.AddTxIn(txin.NewTxIn(testOutPoint(1, 0), script.NewScriptRaw([]byte{opcodes.OP_TRUE}), script.SequenceFinal))
	nullPrev.AddTxOut(txout.NewTxOut(5000, script.NewScriptRaw([]byte{opcodes.OP_TRUE})))
	assert.Error(t, nullPrev.CheckRegularTransaction())

	overMoney := NewTx(0, TxVersion)
	overMoney.AddTxIn(txin.NewTxIn(testOutPoint(1, 0), script.NewScriptRaw([]byte{opcodes.OP_TRUE}), script.SequenceFinal))
	overMoney.AddTxOut(txout.NewTxOut(amount.Amount(amount.MaxMoney)+1, script.NewScriptRaw([]byte{opcodes.OP_TRUE})))
	assert.Error(t, overMoney.CheckRegularTransaction())
}

func TestCheckCoinbaseTransaction(t *testing.T) {
	cb := NewTx(0, TxVersion)
	cb.AddTxIn(txin.NewTxIn(outpoint.NewDefaultOutPoint(), script.NewScriptRaw([]byte{0x51, 0x02}), script.SequenceFinal))
	cb.AddTxOut(txout.NewTxOut(5000, script.NewScriptRaw([]byte{opcodes.OP_TRUE})))
	assert.NoError(t, cb.CheckCoinbaseTransaction())

	assert.Error(t, simpleTx(0).CheckCoinbaseTransaction())

	longSig := NewTx(0, TxVersion)
	longSig.AddTxIn(txin.NewTxIn(outpoint.NewDefaultOutPoint(),
		script.NewScriptRaw(make([]byte, script.MaxCoinbaseScriptSigSize+1)), script.SequenceFinal))
	longSig.AddTxOut(txout.NewTxOut(5000, script.NewScriptRaw([]byte{opcodes.OP_TRUE})))
	assert.Error(t, longSig.CheckCoinbaseTransaction())
}

func TestGetValueOut(t *testing.T) {
	txn := NewTx(0, TxVersion)
	txn.AddTxIn(txin.NewTxIn(testOutPoint(1, 0), script.NewScriptRaw([]byte{opcodes.OP_TRUE}), script.SequenceFinal))
	txn.AddTxOut(txout.NewTxOut(5000, script.NewScriptRaw([]byte{opcodes.OP_TRUE})))
	txn.AddTxOut(txout.NewTxOut(7000, script.NewScriptRaw([]byte{opcodes.OP_TRUE})))
	assert.Equal(t, amount.Amount(12000), txn.GetValueOut())
}

func TestTxHashMatchesDoubleSha(t *testing.T) {
	txn := simpleTx(0)
	var buf bytes.Buffer
	require.NoError(t, txn.Encode(&buf))
	expected := util.DoubleSha256Hash(buf.Bytes())
	assert.Equal(t, expected, txn.GetHash())
	assert.Equal(t, 64, len(hex.EncodeToString(expected[:])))
}

func TestTxString(t *testing.T) {
	txn := simpleTx(0)
	hash := txn.GetHash()

	str := txn.String()
	assert.Contains(t, str, hash.String())
	assert.Contains(t, str, "ins:")
	assert.Contains(t, str, "outs:")
}

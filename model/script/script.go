package script

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/cosanta/cosanta-core/log"
	"github.com/cosanta/cosanta-core/model/opcodes"
	"github.com/cosanta/cosanta-core/util"
	"github.com/pkg/errors"
)

const (
	MaxMessagePayload = 32 * 1024 * 1024

	// LockTimeThreshold is the nLockTime boundary: below it the value
	// is a block height, at or above it a unix timestamp.
	LockTimeThreshold = 500000000

	// SequenceFinal on every input disables nLockTime.
	SequenceFinal = 0xffffffff

	// Flags of CTxIn::nSequence in the context of BIP 68.
	SequenceLockTimeDisableFlag = 1 << 31
	SequenceLockTimeTypeFlag    = 1 << 22
	SequenceLockTimeMask        = 0x0000ffff
	SequenceLockTimeGranularity = 9

	// MaxScriptSize is the consensus limit on a serialized script.
	MaxScriptSize = 10000

	// MaxPubKeysPerMultiSig is the multisig pubkey ceiling, also the
	// sigop cost charged for an inaccurate OP_CHECKMULTISIG count.
	MaxPubKeysPerMultiSig = 20

	// MaxStandardScriptSigSize bounds a standard scriptSig. 15-of-15
	// P2SH multisig with compressed keys works out to about 1624 bytes.
	MaxStandardScriptSigSize = 1650

	// MaxCoinbaseScriptSigSize bounds the coinbase input script once
	// the height, the extra nonce and the coinbase flags are pushed.
	MaxCoinbaseScriptSigSize = 100
)

// Standard scriptPubKey shapes.
const (
	ScriptNonStandard = iota
	ScriptPubkey
	ScriptPubkeyHash
	ScriptHash
	ScriptMultiSig
	ScriptNullData
)

type Script struct {
	data          []byte
	ParsedOpCodes []opcodes.ParsedOpCode
	badOpCode     bool
}

func NewScriptRaw(bytes []byte) *Script {
	newBytes := make([]byte, len(bytes))
	copy(newBytes, bytes)
	s := Script{data: newBytes}
	// parse failure is recorded in badOpCode, not fatal here
	s.convertOPS()
	return &s
}

func NewScriptOps(oldParsedOpCodes []opcodes.ParsedOpCode) *Script {
	newParsedOpCodes := make([]opcodes.ParsedOpCode, 0, len(oldParsedOpCodes))
	for _, oldParsedOpCode := range oldParsedOpCodes {
		newParsedOpCodes = append(newParsedOpCodes, *opcodes.NewParsedOpCode(oldParsedOpCode.OpValue,
			oldParsedOpCode.Length, oldParsedOpCode.Data))
	}
	s := Script{ParsedOpCodes: newParsedOpCodes}
	s.convertRaw()
	s.badOpCode = false
	return &s
}

func NewEmptyScript() *Script {
	s := Script{}
	s.data = make([]byte, 0)
	s.ParsedOpCodes = make([]opcodes.ParsedOpCode, 0)
	s.badOpCode = false
	return &s
}

func (s *Script) SerializeSize() uint32 {
	return s.EncodeSize()
}

func (s *Script) Serialize(writer io.Writer) (err error) {
	return s.Encode(writer)
}

func (s *Script) Unserialize(reader io.Reader, isCoinBase bool) (err error) {
	return s.Decode(reader, isCoinBase)
}

func (s *Script) EncodeSize() uint32 {
	return uint32(util.VarIntSerializeSize(uint64(len(s.data)))) + uint32(len(s.data))
}

func (s *Script) Encode(writer io.Writer) (err error) {
	return util.WriteVarBytes(writer, s.data)
}

// Decode reads a var-length script. A coinbase scriptSig carries
// arbitrary bytes, so op parsing is skipped for it.
func (s *Script) Decode(reader io.Reader, isCoinBase bool) (err error) {
	data, err := ReadScript(reader, MaxMessagePayload, "script")
	if err != nil {
		return err
	}
	s.data = data
	if isCoinBase {
		return nil
	}
	return s.convertOPS()
}

func ReadScript(reader io.Reader, maxAllowed uint32, fieldName string) (script []byte, err error) {
	count, err := util.ReadVarInt(reader)
	if err != nil {
		return
	}
	if count > uint64(maxAllowed) {
		return nil, errors.Errorf("%s is larger than the max allowed size "+
			"[count %d, max %d]", fieldName, count, maxAllowed)
	}
	script = make([]byte, count)
	_, err = io.ReadFull(reader, script)
	if err != nil {
		return nil, err
	}
	return script, nil
}

func (s *Script) convertRaw() {
	s.data = make([]byte, 0)
	for _, e := range s.ParsedOpCodes {
		s.data = append(s.data, e.OpValue)
		if e.OpValue == opcodes.OP_PUSHDATA1 {
			s.data = append(s.data, byte(e.Length))
		} else if e.OpValue == opcodes.OP_PUSHDATA2 {
			b := make([]byte, 2)
			binary.LittleEndian.PutUint16(b, uint16(e.Length))
			s.data = append(s.data, b...)
		} else if e.OpValue == opcodes.OP_PUSHDATA4 {
			b := make([]byte, 4)
			binary.LittleEndian.PutUint32(b, uint32(e.Length))
			s.data = append(s.data, b...)
		}
		if e.OpValue <= opcodes.OP_PUSHDATA4 && e.Length > 0 {
			s.data = append(s.data, e.Data...)
		}
	}
}

func (s *Script) convertOPS() (err error) {
	s.ParsedOpCodes = make([]opcodes.ParsedOpCode, 0)
	scriptLen := uint(len(s.data))

	var i uint
	for i < scriptLen {
		var nSize uint
		opcode := s.data[i]
		i++
		if opcode < opcodes.OP_PUSHDATA1 {
			nSize = uint(opcode)
		} else if opcode == opcodes.OP_PUSHDATA1 {
			if scriptLen-i < 1 {
				log.Debug("OP_PUSHDATA1 has not enough data")
				err = errors.New("OP_PUSHDATA1 has not enough data")
				break
			}
			nSize = uint(s.data[i])
			i++
		} else if opcode == opcodes.OP_PUSHDATA2 {
			if scriptLen-i < 2 {
				log.Debug("OP_PUSHDATA2 has not enough data")
				err = errors.New("OP_PUSHDATA2 has not enough data")
				break
			}
			nSize = uint(binary.LittleEndian.Uint16(s.data[i : i+2]))
			i += 2
		} else if opcode == opcodes.OP_PUSHDATA4 {
			if scriptLen-i < 4 {
				log.Debug("OP_PUSHDATA4 has not enough data")
				err = errors.New("OP_PUSHDATA4 has not enough data")
				break
			}
			nSize = uint(binary.LittleEndian.Uint32(s.data[i : i+4]))
			i += 4
		}
		if scriptLen-i < nSize {
			log.Debug("script push data size is wrong")
			err = errors.New("script push data size is wrong")
			break
		}
		parsedOpCode := opcodes.NewParsedOpCode(opcode, int(nSize), s.data[i:i+nSize])
		s.ParsedOpCodes = append(s.ParsedOpCodes, *parsedOpCode)
		i += nSize
	}
	s.badOpCode = err != nil
	return
}

func (s *Script) Bytes() []byte {
	return s.data
}

func (s *Script) GetData() []byte {
	return s.data
}

func (s *Script) GetBadOpCode() bool {
	return s.badOpCode
}

func (s *Script) Size() int {
	return len(s.data)
}

func (s *Script) IsEqual(script2 *Script) bool {
	return bytes.Equal(s.data, script2.data)
}

func (s *Script) PushOpCode(n int) error {
	if n < 0 || n > 0xff {
		return errors.Errorf("push opcode %d out of range", n)
	}
	s.data = append(s.data, byte(n))
	return s.convertOPS()
}

func (s *Script) PushInt64(n int64) error {
	if n == -1 || (n >= 1 && n <= 16) {
		s.data = append(s.data, byte(n+(opcodes.OP_1-1)))
		return s.convertOPS()
	}
	if n == 0 {
		s.data = append(s.data, byte(opcodes.OP_0))
		return s.convertOPS()
	}
	return s.PushScriptNum(NewScriptNum(n))
}

func (s *Script) PushScriptNum(sn *ScriptNum) error {
	return s.PushSingleData(sn.Serialize())
}

// PushData appends already encoded script bytes without a size prefix.
func (s *Script) PushData(data []byte) error {
	s.data = append(s.data, data...)
	return s.convertOPS()
}

func (s *Script) PushSingleData(data []byte) error {
	dataLen := len(data)
	if dataLen < opcodes.OP_PUSHDATA1 {
		s.data = append(s.data, byte(dataLen))
	} else if dataLen <= 0xff {
		s.data = append(s.data, opcodes.OP_PUSHDATA1, byte(dataLen))
	} else if dataLen <= 0xffff {
		s.data = append(s.data, opcodes.OP_PUSHDATA2)
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(dataLen))
		s.data = append(s.data, buf...)
	} else {
		s.data = append(s.data, opcodes.OP_PUSHDATA4)
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(dataLen))
		s.data = append(s.data, buf...)
	}
	s.data = append(s.data, data...)
	return s.convertOPS()
}

func (s *Script) IsPayToScriptHash() bool {
	size := len(s.data)
	return size == 23 &&
		s.data[0] == opcodes.OP_HASH160 &&
		s.data[1] == 0x14 &&
		s.data[22] == opcodes.OP_EQUAL
}

func (s *Script) IsUnspendable() bool {
	return (s.Size() > 0 && s.data[0] == opcodes.OP_RETURN) || s.Size() > MaxScriptSize
}

func (s *Script) IsPushOnly() bool {
	if s.badOpCode {
		return false
	}
	for _, ops := range s.ParsedOpCodes {
		if ops.OpValue > opcodes.OP_16 {
			return false
		}
	}
	return true
}

// GetSigOpCount counts signature operations. With accurate set, an
// OP_CHECKMULTISIG preceded by OP_N costs N, otherwise the maximum.
func (s *Script) GetSigOpCount(accurate bool) int {
	n := 0
	var lastOpcode byte
	for _, e := range s.ParsedOpCodes {
		opcode := e.OpValue
		if opcode == opcodes.OP_CHECKSIG || opcode == opcodes.OP_CHECKSIGVERIFY {
			n++
		} else if opcode == opcodes.OP_CHECKMULTISIG || opcode == opcodes.OP_CHECKMULTISIGVERIFY {
			if accurate && lastOpcode >= opcodes.OP_1 && lastOpcode <= opcodes.OP_16 {
				n += DecodeOPN(lastOpcode)
			} else {
				n += MaxPubKeysPerMultiSig
			}
		}
		lastOpcode = opcode
	}
	return n
}

// GetP2SHSigOpCount treats the receiver as the scriptSig spending a
// P2SH output and counts the sigops of the redeem script it pushes.
func (s *Script) GetP2SHSigOpCount() int {
	if s.badOpCode || len(s.ParsedOpCodes) == 0 {
		return 0
	}
	for _, e := range s.ParsedOpCodes {
		if e.OpValue > opcodes.OP_16 {
			return 0
		}
	}
	lastOps := s.ParsedOpCodes[len(s.ParsedOpCodes)-1]
	return NewScriptRaw(lastOps.Data).GetSigOpCount(true)
}

func (s *Script) CheckScriptSigStandard() (bool, string) {
	if s.Size() > MaxStandardScriptSigSize {
		return false, "scriptsig-size"
	}
	if !s.IsPushOnly() {
		return false, "scriptsig-not-pushonly"
	}
	return true, ""
}

// IsStandardScriptPubKey classifies the script as one of the standard
// output shapes, returning the extracted key material when it is one.
func (s *Script) IsStandardScriptPubKey() (pubKeyType int, pubKeys [][]byte, isStandard bool) {
	if s.IsPayToScriptHash() {
		return ScriptHash, [][]byte{s.ParsedOpCodes[1].Data}, true
	}

	opCodesLen := len(s.ParsedOpCodes)
	if opCodesLen == 0 {
		return ScriptNonStandard, nil, false
	}
	parsedOpCode0 := s.ParsedOpCodes[0]
	opValue0 := parsedOpCode0.OpValue

	// bare OP_RETURN
	if opCodesLen == 1 {
		if opValue0 == opcodes.OP_RETURN {
			return ScriptNullData, nil, true
		}
		return ScriptNonStandard, nil, false
	}

	// OP_RETURN followed by pushes only
	if opValue0 == opcodes.OP_RETURN {
		tempScript := NewScriptOps(s.ParsedOpCodes[1:])
		if tempScript.IsPushOnly() {
			return ScriptNullData, nil, true
		}
		return ScriptNonStandard, nil, false
	}

	// PUBKEY OP_CHECKSIG
	if opCodesLen == 2 {
		if opValue0 > opcodes.OP_PUSHDATA4 || parsedOpCode0.Length < 33 ||
			parsedOpCode0.Length > 65 || s.ParsedOpCodes[1].OpValue != opcodes.OP_CHECKSIG {
			return ScriptNonStandard, nil, false
		}
		return ScriptPubkey, [][]byte{parsedOpCode0.Data}, true
	}

	// OP_DUP OP_HASH160 PUBKEYHASH OP_EQUALVERIFY OP_CHECKSIG
	if opValue0 == opcodes.OP_DUP {
		if opCodesLen != 5 ||
			s.ParsedOpCodes[1].OpValue != opcodes.OP_HASH160 ||
			s.ParsedOpCodes[2].Length != 20 ||
			s.ParsedOpCodes[3].OpValue != opcodes.OP_EQUALVERIFY ||
			s.ParsedOpCodes[4].OpValue != opcodes.OP_CHECKSIG {
			return ScriptNonStandard, nil, false
		}
		return ScriptPubkeyHash, [][]byte{s.ParsedOpCodes[2].Data}, true
	}

	// m pubkey1 ... pubkeyn n OP_CHECKMULTISIG
	if opValue0 == opcodes.OP_0 || (opValue0 >= opcodes.OP_1 && opValue0 <= opcodes.OP_16) {
		if opCodesLen < 4 {
			return ScriptNonStandard, nil, false
		}
		opM := DecodeOPN(opValue0)
		pubKeys = make([][]byte, 0, opCodesLen-1)
		pubKeys = append(pubKeys, []byte{byte(opM)})
		for _, e := range s.ParsedOpCodes[1 : opCodesLen-2] {
			if e.Length < 33 || e.Length > 65 {
				return ScriptNonStandard, nil, false
			}
			pubKeys = append(pubKeys, e.Data)
		}

		opN := 0
		opValueI := s.ParsedOpCodes[opCodesLen-2].OpValue
		if opValueI == opcodes.OP_0 || (opValueI >= opcodes.OP_1 && opValueI <= opcodes.OP_16) {
			opN = DecodeOPN(opValueI)
			pubKeys = append(pubKeys, []byte{byte(opN)})
		} else {
			return ScriptNonStandard, nil, false
		}
		if s.ParsedOpCodes[opCodesLen-1].OpValue != opcodes.OP_CHECKMULTISIG {
			return ScriptNonStandard, nil, false
		}
		if opM < 1 || opN < 1 || opM > opN || opN != len(pubKeys)-2 {
			return ScriptMultiSig, nil, false
		}
		return ScriptMultiSig, pubKeys, true
	}

	return ScriptNonStandard, nil, false
}

// ExtractAddress resolves the destination of a standard single key
// scriptPubKey. Multisig and null data scripts have no single address.
func (s *Script) ExtractAddress() (*Address, error) {
	sType, pubKeys, isStandard := s.IsStandardScriptPubKey()
	if !isStandard {
		return nil, errors.New("nonstandard scriptPubKey")
	}
	switch sType {
	case ScriptPubkey:
		return AddressFromPublicKey(pubKeys[0])
	case ScriptPubkeyHash:
		return AddressFromHash160(pubKeys[0], AddressVerPubKey())
	case ScriptHash:
		return AddressFromHash160(pubKeys[0], AddressVerScript())
	}
	return nil, errors.Errorf("script type %d carries no single address", sType)
}

func EncodeOPN(n int) (int, error) {
	if n < 0 || n > 16 {
		return 0, errors.New("EncodeOPN n is out of bounds")
	}
	if n == 0 {
		return opcodes.OP_0, nil
	}
	return opcodes.OP_1 + n - 1, nil
}

func DecodeOPN(opcode byte) int {
	if opcode == opcodes.OP_0 {
		return 0
	}
	if opcode < opcodes.OP_1 || opcode > opcodes.OP_16 {
		panic("DecodeOPN opcode is out of bounds")
	}
	return int(opcode) - int(opcodes.OP_1-1)
}

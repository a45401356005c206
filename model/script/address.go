package script

import (
	"bytes"

	"github.com/cosanta/cosanta-core/model/opcodes"
	"github.com/cosanta/cosanta-core/util"
	"github.com/pkg/errors"
)

const (
	AddressBytesLength = 25
	Hash160BytesLength = 20
)

// Mainnet base58 prefixes. Pubkey hash addresses start with 'C'.
const (
	PublicKeyToAddress = 28
	ScriptToAddress    = 13
)

var activeNetAddressParam = &AddressParam{
	PubKeyHashAddressVer: PublicKeyToAddress,
	ScriptHashAddressVer: ScriptToAddress,
}

type Address struct {
	version    byte
	publicKey  []byte
	addressStr string
	hash160    [20]byte
}

type AddressParam struct {
	PubKeyHashAddressVer byte
	ScriptHashAddressVer byte
}

// InitAddressParam switches the active prefixes, called once the
// network params are chosen.
func InitAddressParam(addressParam *AddressParam) {
	activeNetAddressParam = addressParam
}

func AddressVerPubKey() byte {
	return activeNetAddressParam.PubKeyHashAddressVer
}

func AddressVerScript() byte {
	return activeNetAddressParam.ScriptHashAddressVer
}

func (addr *Address) EncodeToPubKeyHash() []byte {
	return addr.hash160[:]
}

func (addr *Address) String() string {
	if addr.addressStr != "" {
		return addr.addressStr
	}
	return util.Base58EncodeCheck(addr.hash160[:], addr.version)
}

func (addr *Address) GetVersion() byte {
	return addr.version
}

// IsScriptHash reports whether the address names a P2SH destination on
// the active network.
func (addr *Address) IsScriptHash() bool {
	return addr.version == AddressVerScript()
}

func AddressFromString(addressStr string) (address *Address, err error) {
	decoded, err := util.Base58Decode(addressStr)
	if err != nil {
		return nil, err
	}
	if len(decoded) != AddressBytesLength {
		return nil, errors.Errorf("addressStr length is %d, not %d", len(decoded), AddressBytesLength)
	}
	checkBytes := util.DoubleSha256Bytes(decoded[0:21])
	if !bytes.Equal(checkBytes[:4], decoded[21:25]) {
		return nil, errors.Errorf("addressStr(%s) checksum failed", addressStr)
	}
	if decoded[0] != AddressVerPubKey() && decoded[0] != AddressVerScript() {
		return nil, errors.Errorf("addressStr(%s) version %d is not valid for this network",
			addressStr, decoded[0])
	}
	var hash160 [20]byte
	copy(hash160[:], decoded[1:21])
	address = &Address{
		version:    decoded[0],
		hash160:    hash160,
		addressStr: addressStr,
	}
	return address, nil
}

func AddressFromHash160(hash160 []byte, version byte) (address *Address, err error) {
	str, err := Hash160ToAddressStr(hash160, version)
	if err != nil {
		return
	}
	var hash160bytes [20]byte
	copy(hash160bytes[:], hash160)
	address = &Address{
		version:    version,
		hash160:    hash160bytes,
		addressStr: str,
	}
	return
}

func Hash160ToAddressStr(hash160 []byte, version byte) (str string, err error) {
	if len(hash160) != Hash160BytesLength {
		err = errors.Errorf("hash160 length %d not %d", len(hash160), Hash160BytesLength)
		return
	}
	result := make([]byte, 25)
	result[0] = version
	copy(result[1:21], hash160)
	checkBytes := util.DoubleSha256Bytes(result[:21])
	copy(result[21:25], checkBytes[:4])
	str = util.Base58Encode(result)
	return
}

func AddressFromPublicKey(publicKey []byte) (address *Address, err error) {
	version := AddressVerPubKey()
	address = new(Address)
	address.publicKey = make([]byte, len(publicKey))
	copy(address.publicKey, publicKey)
	address.version = version
	hash160 := util.Hash160(publicKey)
	copy(address.hash160[:], hash160)
	address.addressStr, err = Hash160ToAddressStr(hash160, version)
	return
}

func AddressFromScriptHash(redeemScript []byte) (*Address, error) {
	version := AddressVerScript()
	address := new(Address)
	address.version = version
	hash160 := util.Hash160(redeemScript)
	copy(address.hash160[:], hash160)
	addressStr, err := Hash160ToAddressStr(hash160, version)
	address.addressStr = addressStr
	return address, err
}

// NewScriptFromAddress builds the locking script paying to addr,
// P2SH for script hash versions and P2PKH otherwise.
func NewScriptFromAddress(addr *Address) *Script {
	s := NewEmptyScript()
	if addr.IsScriptHash() {
		s.PushOpCode(opcodes.OP_HASH160)
		s.PushSingleData(addr.EncodeToPubKeyHash())
		s.PushOpCode(opcodes.OP_EQUAL)
		return s
	}
	return NewScriptFromPubKeyHash(addr.EncodeToPubKeyHash())
}

// NewScriptFromPubKeyHash builds the P2PKH locking script for a raw
// key id, skipping the address round trip.
func NewScriptFromPubKeyHash(pubKeyHash []byte) *Script {
	s := NewEmptyScript()
	s.PushOpCode(opcodes.OP_DUP)
	s.PushOpCode(opcodes.OP_HASH160)
	s.PushSingleData(pubKeyHash)
	s.PushOpCode(opcodes.OP_EQUALVERIFY)
	s.PushOpCode(opcodes.OP_CHECKSIG)
	return s
}

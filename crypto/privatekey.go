package crypto

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/cosanta/cosanta-core/util"
	"github.com/pkg/errors"
)

const (
	PrivateKeyBytesLen = 32

	// DumpedPrivateKeyVersion is the mainnet WIF prefix; SelectParams
	// switches it along with the address prefixes.
	DumpedPrivateKeyVersion = 204
)

var activePrivateKeyVersion byte = DumpedPrivateKeyVersion

// InitPrivateKeyVersion switches the WIF prefix, called once the network
// params are chosen.
func InitPrivateKeyVersion(version byte) {
	activePrivateKeyVersion = version
}

// PrivateKey is a secp256k1 key plus the compression choice of its public
// key. Compact signatures encode that choice, so the verifier recovers
// the same serialization the signer advertised.
type PrivateKey struct {
	key        *btcec.PrivateKey
	compressed bool
}

func NewPrivateKey() (*PrivateKey, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, errors.Wrap(err, "secp256k1 key generation")
	}
	return &PrivateKey{key: key, compressed: true}, nil
}

func PrivateKeyFromBytes(privateKeyBytes []byte) *PrivateKey {
	key, _ := btcec.PrivKeyFromBytes(privateKeyBytes)
	return &PrivateKey{key: key, compressed: true}
}

func (privateKey *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{key: privateKey.key.PubKey(), compressed: privateKey.compressed}
}

// Sign produces a canonical DER signature over hash.
func (privateKey *PrivateKey) Sign(hash []byte) *Signature {
	return (*Signature)(ecdsa.Sign(privateKey.key, hash))
}

// SignCompact produces the 65 byte recoverable signature used for block
// signing. The recovery byte carries the compression flag.
func (privateKey *PrivateKey) SignCompact(hash *util.Hash) ([]byte, error) {
	return ecdsa.SignCompact(privateKey.key, hash[:], privateKey.compressed)
}

func (privateKey *PrivateKey) Encode() []byte {
	raw := privateKey.key.Serialize()
	if !privateKey.compressed {
		return raw
	}
	return append(raw, 1)
}

func (privateKey *PrivateKey) ToString() string {
	return util.Base58EncodeCheck(privateKey.Encode(), activePrivateKeyVersion)
}

func DecodePrivateKey(encoded string) (*PrivateKey, error) {
	decoded, version, err := util.Base58DecodeCheck(encoded)
	if err != nil {
		return nil, err
	}
	if version != activePrivateKeyVersion {
		return nil, errors.Errorf("mismatched WIF version %d, want %d", version, activePrivateKeyVersion)
	}

	compressed := false
	switch {
	case len(decoded) == PrivateKeyBytesLen+1 && decoded[PrivateKeyBytesLen] == 1:
		compressed = true
		decoded = decoded[:PrivateKeyBytesLen]
	case len(decoded) == PrivateKeyBytesLen:
	default:
		return nil, errors.Errorf("private key payload is %d bytes, not 32 or 33", len(decoded))
	}

	key, _ := btcec.PrivKeyFromBytes(decoded)
	return &PrivateKey{key: key, compressed: compressed}, nil
}

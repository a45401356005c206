package crypto

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/cosanta/cosanta-core/util"
)

type PublicKey struct {
	key        *btcec.PublicKey
	compressed bool
}

func ParsePubKey(pubKeyStr []byte) (*PublicKey, error) {
	key, err := btcec.ParsePubKey(pubKeyStr)
	if err != nil {
		return nil, err
	}
	return &PublicKey{key: key, compressed: IsCompressedPubKey(pubKeyStr)}, nil
}

// ToBytes serializes the key the way it was advertised, compressed or not.
func (publicKey *PublicKey) ToBytes() []byte {
	if publicKey.compressed {
		return publicKey.SerializeCompressed()
	}
	return publicKey.SerializeUncompressed()
}

func (publicKey *PublicKey) SerializeCompressed() []byte {
	return publicKey.key.SerializeCompressed()
}

func (publicKey *PublicKey) SerializeUncompressed() []byte {
	return publicKey.key.SerializeUncompressed()
}

// ToHash160 is the key id: HASH160 over the advertised serialization.
func (publicKey *PublicKey) ToHash160() []byte {
	return util.Hash160(publicKey.ToBytes())
}

func (publicKey *PublicKey) ToHexString() string {
	return hex.EncodeToString(publicKey.ToBytes())
}

func (publicKey *PublicKey) IsEqual(otherPublicKey *PublicKey) bool {
	if otherPublicKey == nil {
		return false
	}
	return publicKey.key.IsEqual(otherPublicKey.key)
}

func IsCompressedOrUncompressedPubKey(bytes []byte) bool {
	if len(bytes) < 33 {
		return false
	}
	if bytes[0] == 0x04 {
		if len(bytes) != 65 {
			return false
		}
	} else if bytes[0] == 0x02 || bytes[0] == 0x03 {
		if len(bytes) != 33 {
			return false
		}
	} else {
		return false
	}
	return true
}

func IsCompressedPubKey(bytes []byte) bool {
	if len(bytes) != 33 {
		return false
	}
	if bytes[0] != 0x02 && bytes[0] != 0x03 {
		return false
	}
	return true
}

package crypto

import (
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/cosanta/cosanta-core/util"
)

type Signature ecdsa.Signature

func (sig *Signature) toLibSignature() *ecdsa.Signature {
	return (*ecdsa.Signature)(sig)
}

func (sig *Signature) Serialize() []byte {
	return sig.toLibSignature().Serialize()
}

func (sig *Signature) Verify(hash []byte, pubKey *PublicKey) bool {
	return sig.toLibSignature().Verify(hash, pubKey.key)
}

func ParseDERSignature(signature []byte) (*Signature, error) {
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return nil, err
	}
	return (*Signature)(sig), nil
}

// RecoverCompact recovers the signer of a 65 byte compact signature over
// hash. Returns nil when the signature does not decode to a valid key.
func RecoverCompact(hash *util.Hash, signature []byte) *PublicKey {
	key, compressed, err := ecdsa.RecoverCompact(signature, hash[:])
	if err != nil {
		return nil
	}
	return &PublicKey{key: key, compressed: compressed}
}

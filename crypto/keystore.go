package crypto

import (
	"sync"

	"github.com/cosanta/cosanta-core/util"
)

type KeyPair struct {
	keyID      []byte
	publicKey  *PublicKey
	privateKey *PrivateKey
}

func NewKeyPair(privateKey *PrivateKey) *KeyPair {
	pubKey := privateKey.PubKey()
	return &KeyPair{
		keyID:      pubKey.ToHash160(),
		publicKey:  pubKey,
		privateKey: privateKey,
	}
}

func (kp *KeyPair) GetKeyID() string {
	return string(kp.keyID)
}

func (kp *KeyPair) GetPublicKey() *PublicKey {
	return kp.publicKey
}

func (kp *KeyPair) GetPrivateKey() *PrivateKey {
	return kp.privateKey
}

// KeyStore indexes key pairs by the HASH160 of their public key.
type KeyStore struct {
	lock sync.RWMutex
	keys map[string]*KeyPair
}

func NewKeyStore() *KeyStore {
	return &KeyStore{
		keys: make(map[string]*KeyPair),
	}
}

func (ks *KeyStore) AddKey(privateKey *PrivateKey) {
	keyPair := NewKeyPair(privateKey)

	ks.lock.Lock()
	defer ks.lock.Unlock()

	ks.keys[keyPair.GetKeyID()] = keyPair
}

func (ks *KeyStore) GetKeyPair(pubKeyHash []byte) *KeyPair {
	ks.lock.RLock()
	defer ks.lock.RUnlock()

	if keyPair, ok := ks.keys[string(pubKeyHash)]; ok {
		return keyPair
	}
	return nil
}

func (ks *KeyStore) GetKeyPairByPubKey(pubKey []byte) *KeyPair {
	return ks.GetKeyPair(util.Hash160(pubKey))
}

func (ks *KeyStore) GetKeyPairs(pubKeyHashList [][]byte) []*KeyPair {
	keys := make([]*KeyPair, 0, len(pubKeyHashList))

	ks.lock.RLock()
	defer ks.lock.RUnlock()

	for _, pubKeyHash := range pubKeyHashList {
		if keyPair, ok := ks.keys[string(pubKeyHash)]; ok {
			keys = append(keys, keyPair)
		}
	}
	return keys
}

func (ks *KeyStore) AddKeyPairs(keys []*KeyPair) {
	ks.lock.Lock()
	defer ks.lock.Unlock()

	for _, keyPair := range keys {
		ks.keys[keyPair.GetKeyID()] = keyPair
	}
}

package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"math/big"

	x11 "github.com/samli88/go-x11-hash"
	"golang.org/x/crypto/ripemd160"
)

const (
	Hash256Size       = 32
	MaxHashStringSize = Hash256Size * 2
	Hash160Size       = 20
)

type Hash [Hash256Size]byte

var HashZero = Hash{}
var HashOne = Hash{0x0000000000000000000000000000000000000000000000000000000000000001}

// Calculate the hash of hasher over buf.
func calcHash(buf []byte, hasher hash.Hash) []byte {
	hasher.Write(buf)
	return hasher.Sum(nil)
}

// Hash160 calculates the hash ripemd160(sha256(b)).
func Hash160(buf []byte) []byte {
	return calcHash(calcHash(buf, sha256.New()), ripemd160.New())
}

func Sha256Bytes(b []byte) []byte {
	hash := sha256.Sum256(b)
	return hash[:]
}

func DoubleSha256Bytes(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

// DoubleSha256Hash is sha256(sha256(b)). Transaction ids and the
// merkle tree use it.
func DoubleSha256Hash(b []byte) Hash {
	var h Hash
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	copy(h[:], second[:])
	return h
}

// HashX11 runs the eleven chained digests over b. Block proof hashes
// use it instead of double sha256.
func HashX11(b []byte) Hash {
	var h Hash
	x11.New().Hash(b, h[:])
	return h
}

func (hash *Hash) ToString() string {
	bytes := hash.GetCloneBytes()
	for i := 0; i < Hash256Size/2; i++ {
		bytes[i], bytes[Hash256Size-1-i] = bytes[Hash256Size-1-i], bytes[i]
	}
	return hex.EncodeToString(bytes[:])
}

func (hash *Hash) String() string {
	return hash.ToString()
}

func (hash *Hash) EncodeSize() uint32 {
	return Hash256Size
}

func (hash *Hash) Encode(w io.Writer) error {
	_, err := w.Write(hash[:])
	return err
}

func (hash *Hash) Decode(r io.Reader) error {
	_, err := io.ReadFull(r, hash[:])
	return err
}

func (hash *Hash) Serialize(w io.Writer) (int, error) {
	return w.Write(hash[:])
}

func (hash *Hash) Unserialize(r io.Reader) (int, error) {
	return io.ReadFull(r, hash[:])
}

func (hash *Hash) GetCloneBytes() []byte {
	bytes := make([]byte, Hash256Size)
	copy(bytes, hash[:])
	return bytes
}

func (hash *Hash) ToBigInt() *big.Int {
	return new(big.Int).SetBytes(hash.GetCloneBytes())
}

func (hash *Hash) Cmp(other *Hash) int {
	if hash == nil && other == nil {
		return 0
	} else if hash == nil {
		return -1
	} else if other == nil {
		return 1
	}
	return hash.ToBigInt().Cmp(other.ToBigInt())
}

func (hash *Hash) SetBytes(bytes []byte) error {
	length := len(bytes)
	if length != Hash256Size {
		return fmt.Errorf("invalid hash length of %v , want %v", length, Hash256Size)
	}
	copy(hash[:], bytes)
	return nil
}

func (hash *Hash) IsEqual(target *Hash) bool {
	if hash == nil && target == nil {
		return true
	}
	if hash == nil || target == nil {
		return false
	}
	return *hash == *target
}

func (hash *Hash) IsNull() bool {
	for _, item := range hash {
		if item != 0 {
			return false
		}
	}
	return true
}

func GetHashFromStr(hashStr string) (hash *Hash, err error) {
	hash = new(Hash)
	bytes, err := DecodeHash(hashStr)
	if err != nil {
		return
	}
	hash.SetBytes(bytes)
	return
}

func DecodeHash(src string) (bytes []byte, err error) {
	if len(src) > MaxHashStringSize {
		return nil, fmt.Errorf("max hash string length is %v bytes", MaxHashStringSize)
	}
	var srcBytes []byte
	var srcLen = len(src)
	if srcLen%2 == 0 {
		srcBytes = []byte(src)
	} else {
		srcBytes = make([]byte, 1+srcLen)
		srcBytes[0] = '0'
		copy(srcBytes[1:], src)
	}
	var reversedHash = make([]byte, Hash256Size)
	_, err = hex.Decode(reversedHash[Hash256Size-hex.DecodedLen(len(srcBytes)):], srcBytes)
	if err != nil {
		return
	}
	bytes = make([]byte, Hash256Size)
	for i, b := range reversedHash[:Hash256Size/2] {
		bytes[i], bytes[Hash256Size-1-i] = reversedHash[Hash256Size-1-i], b
	}
	return
}

func HashFromString(hexString string) *Hash {
	hash, err := GetHashFromStr(hexString)
	if err != nil {
		panic(err)
	}
	return hash
}

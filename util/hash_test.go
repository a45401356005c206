package util

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashString(t *testing.T) {
	hexStr := "00000000000743f190a18c5577a3c2d2a1f610ae9601ac046a38084ccb7cd721"
	hash := HashFromString(hexStr)

	assert.Equal(t, hexStr, hash.String())
	assert.Equal(t, fmt.Sprintf("hash: %s", hexStr), fmt.Sprintf("hash: %v", hash))
}

func TestGetHashFromStr(t *testing.T) {
	// Odd length strings get a leading zero nibble.
	h1, err := GetHashFromStr("743f190a18c5577a3c2d2a1f610ae9601ac046a38084ccb7cd721")
	assert.NoError(t, err)
	h2, err := GetHashFromStr("0743f190a18c5577a3c2d2a1f610ae9601ac046a38084ccb7cd721")
	assert.NoError(t, err)
	assert.True(t, h1.IsEqual(h2))

	_, err = GetHashFromStr("00000000000743f190a18c5577a3c2d2a1f610ae9601ac046a38084ccb7cd72100")
	assert.Error(t, err)

	_, err = GetHashFromStr("zz")
	assert.Error(t, err)
}

func TestHashIsEqual(t *testing.T) {
	hash1 := HashFromString("00000000000743f190a18c5577a3c2d2a1f610ae9601ac046a38084ccb7cd721")
	hash2 := HashFromString("00000000000743f190a18c5577a3c2d2a1f610ae9601ac046a38084ccb7cd721")
	hash3 := HashFromString("00000000000743f190a18c5577a3c2d2a1f610ae9601ac046a38084ccb7cd722")

	assert.True(t, hash1.IsEqual(hash2))
	assert.False(t, hash1.IsEqual(hash3))

	var nilHash *Hash
	assert.True(t, nilHash.IsEqual(nil))
	assert.False(t, hash1.IsEqual(nil))
}

func TestHashIsNull(t *testing.T) {
	assert.True(t, HashZero.IsNull())
	assert.False(t, HashOne.IsNull())
}

func TestHashCmp(t *testing.T) {
	tests := []struct {
		hash   *Hash
		target *Hash
		want   int
	}{
		{&HashZero, &HashZero, 0},
		{&HashZero, &HashOne, -1},
		{&HashOne, &HashZero, 1},
		{nil, nil, 0},
		{nil, &HashZero, -1},
		{&HashZero, nil, 1},
	}

	for i, test := range tests {
		if got := test.hash.Cmp(test.target); got != test.want {
			t.Errorf("Cmp #%d: got %d, want %d", i, got, test.want)
		}
	}
}

func TestHashEncodeDecode(t *testing.T) {
	hash := HashFromString("00000000000743f190a18c5577a3c2d2a1f610ae9601ac046a38084ccb7cd721")

	var buf bytes.Buffer
	assert.NoError(t, hash.Encode(&buf))
	assert.Equal(t, int(hash.EncodeSize()), buf.Len())

	var decoded Hash
	assert.NoError(t, decoded.Decode(&buf))
	assert.True(t, hash.IsEqual(&decoded))

	buf.Reset()
	n, err := hash.Serialize(&buf)
	assert.NoError(t, err)
	assert.Equal(t, Hash256Size, n)

	var read Hash
	n, err = read.Unserialize(&buf)
	assert.NoError(t, err)
	assert.Equal(t, Hash256Size, n)
	assert.True(t, hash.IsEqual(&read))
}

func TestHashSetBytes(t *testing.T) {
	var hash Hash
	assert.Error(t, hash.SetBytes(make([]byte, 31)))
	assert.NoError(t, hash.SetBytes(make([]byte, 32)))
}

func TestSha256(t *testing.T) {
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	assert.Equal(t, want, hex.EncodeToString(Sha256Bytes(nil)))

	wantDouble := "5df6e0e2761359d30a8275058e299fcc0381534545f55cf43e41983f5d4c9456"
	assert.Equal(t, wantDouble, hex.EncodeToString(DoubleSha256Bytes(nil)))

	h := DoubleSha256Hash(nil)
	assert.Equal(t, wantDouble, hex.EncodeToString(h[:]))
}

func TestHash160(t *testing.T) {
	want := "b472a266d0bd89c13706a4132ccfb16f7c3b9fcb"
	assert.Equal(t, want, hex.EncodeToString(Hash160(nil)))
}

func TestHashX11(t *testing.T) {
	data := []byte("block proof input")

	h1 := HashX11(data)
	h2 := HashX11(data)
	assert.True(t, h1.IsEqual(&h2))
	assert.False(t, h1.IsNull())

	// Distinct from double sha256 of the same input.
	sha := DoubleSha256Hash(data)
	assert.False(t, h1.IsEqual(&sha))
}

package block

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cosanta/cosanta-core/crypto"
	"github.com/cosanta/cosanta-core/util"
)

const (
	// PoSBit marks a header whose proof is a stake kernel instead of work.
	PoSBit = int32(0x10000000)
	// PoSV2Bits marks the second-generation stake kernel.
	PoSV2Bits = PoSBit | int32(0x08000000)
)

// baseHeaderSize is the wire size shared by every header; stake fields
// follow it when the PoS bit is set.
const baseHeaderSize = 16 + util.Hash256Size*2

// MaxBlockSigSize bounds the compact signature carried by a signed
// stake header.
const MaxBlockSigSize = 96

// BlockHeader is the 80 byte work header, extended with the stake
// reference and the block signature when the version carries the PoS
// bit. The nonce doubles as the stake modifier on PoS headers.
type BlockHeader struct {
	Version       int32
	HashPrevBlock util.Hash
	MerkleRoot    util.Hash
	Time          uint32
	Bits          uint32
	Nonce         uint32

	// PoS only
	StakeHash util.Hash
	StakeN    uint32
	BlockSig  []byte
}

func NewBlockHeader() *BlockHeader {
	return &BlockHeader{}
}

func (bh *BlockHeader) IsNull() bool {
	return bh.Bits == 0
}

func (bh *BlockHeader) SetNull() {
	*bh = BlockHeader{}
}

func (bh *BlockHeader) GetBlockTime() int64 {
	return int64(bh.Time)
}

func (bh *BlockHeader) IsProofOfStake() bool {
	return bh.Version&PoSBit != 0
}

func (bh *BlockHeader) IsProofOfStakeV2() bool {
	return bh.Version&PoSV2Bits == PoSV2Bits
}

func (bh *BlockHeader) IsProofOfWork() bool {
	return !bh.IsProofOfStake()
}

// StakeModifier aliases the nonce, which PoS headers reuse as the
// kernel modifier.
func (bh *BlockHeader) StakeModifier() uint32 {
	return bh.Nonce
}

// GetHash is the X11 hash of the header. The block signature never
// enters the preimage, so signing does not change the hash it signs.
func (bh *BlockHeader) GetHash() util.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, bh.serializeSizeForHash()))
	if err := bh.SerializeForHash(buf); err != nil {
		return util.HashZero
	}
	return util.HashX11(buf.Bytes())
}

func (bh *BlockHeader) serializeBase(w io.Writer) error {
	return util.WriteElements(w, bh.Version, &bh.HashPrevBlock, &bh.MerkleRoot,
		bh.Time, bh.Bits, bh.Nonce)
}

// SerializeForHash writes the hash preimage: the base header plus, on
// PoS headers, the stake reference but not the signature.
func (bh *BlockHeader) SerializeForHash(w io.Writer) error {
	if err := bh.serializeBase(w); err != nil {
		return err
	}
	if !bh.IsProofOfStake() {
		return nil
	}
	return util.WriteElements(w, &bh.StakeHash, bh.StakeN)
}

// Sign sets the block signature to the compact signature of the
// header hash. The signature never enters the preimage, so signing
// leaves the hash unchanged.
func (bh *BlockHeader) Sign(key *crypto.PrivateKey) error {
	hash := bh.GetHash()
	sig, err := key.SignCompact(&hash)
	if err != nil {
		return err
	}
	bh.BlockSig = sig
	return nil
}

// RecoverStakePubKey recovers the key that signed a stake header from
// its compact signature, nil when the header is unsigned or the
// signature does not recover.
func (bh *BlockHeader) RecoverStakePubKey() *crypto.PublicKey {
	if !bh.IsProofOfStake() || len(bh.BlockSig) == 0 {
		return nil
	}
	hash := bh.GetHash()
	return crypto.RecoverCompact(&hash, bh.BlockSig)
}

// Serialize writes the wire form, signature included.
func (bh *BlockHeader) Serialize(w io.Writer) error {
	if err := bh.SerializeForHash(w); err != nil {
		return err
	}
	if !bh.IsProofOfStake() {
		return nil
	}
	return util.WriteVarBytes(w, bh.BlockSig)
}

func (bh *BlockHeader) Unserialize(r io.Reader) error {
	err := util.ReadElements(r, &bh.Version, &bh.HashPrevBlock, &bh.MerkleRoot,
		&bh.Time, &bh.Bits, &bh.Nonce)
	if err != nil {
		return err
	}
	if !bh.IsProofOfStake() {
		bh.StakeHash = util.Hash{}
		bh.StakeN = 0
		bh.BlockSig = nil
		return nil
	}
	if err := util.ReadElements(r, &bh.StakeHash, &bh.StakeN); err != nil {
		return err
	}
	bh.BlockSig, err = util.ReadVarBytes(r, MaxBlockSigSize, "blocksig")
	return err
}

func (bh *BlockHeader) serializeSizeForHash() uint32 {
	size := uint32(baseHeaderSize)
	if bh.IsProofOfStake() {
		size += util.Hash256Size + 4
	}
	return size
}

func (bh *BlockHeader) SerializeSize() uint32 {
	size := bh.serializeSizeForHash()
	if bh.IsProofOfStake() {
		size += uint32(util.VarIntSerializeSize(uint64(len(bh.BlockSig)))) + uint32(len(bh.BlockSig))
	}
	return size
}

func (bh *BlockHeader) EncodeSize() uint32 {
	return bh.SerializeSize()
}

func (bh *BlockHeader) Encode(w io.Writer) error {
	return bh.Serialize(w)
}

func (bh *BlockHeader) Decode(r io.Reader) error {
	return bh.Unserialize(r)
}

func (bh *BlockHeader) String() string {
	hash := bh.GetHash()
	return fmt.Sprintf("version : 0x%08x, hashPrevBlock : %s, hashMerkleRoot : %s, "+
		"time : %d, bits : %d, nonce : %d, blockHash : %s", uint32(bh.Version),
		bh.HashPrevBlock, bh.MerkleRoot, bh.Time, bh.Bits, bh.Nonce, hash.String())
}

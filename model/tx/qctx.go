package tx

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/util"
)

const (
	QcTxVersion            uint16 = 1
	FinalCommitmentVersion uint16 = 1

	// BLS material sizes. The commitment carries the keys and
	// signatures as opaque bytes, mining code never inspects them.
	BLSPublicKeySize = 48
	BLSSignatureSize = 96
)

// FinalCommitment is the outcome of one quorum DKG session. Members of
// the new quorum sign off on the quorum public key and on who made it
// into the quorum, and the aggregate ends up mined into a block.
type FinalCommitment struct {
	Version         uint16
	LLMQType        uint8
	QuorumHash      util.Hash
	Signers         []bool
	ValidMembers    []bool
	QuorumPublicKey [BLSPublicKeySize]byte
	QuorumVvecHash  util.Hash
	QuorumSig       [BLSSignatureSize]byte
	MembersSig      [BLSSignatureSize]byte
}

func NewFinalCommitment(llmqType uint8, quorumHash util.Hash, memberCount int) *FinalCommitment {
	return &FinalCommitment{
		Version:      FinalCommitmentVersion,
		LLMQType:     llmqType,
		QuorumHash:   quorumHash,
		Signers:      make([]bool, memberCount),
		ValidMembers: make([]bool, memberCount),
	}
}

func (fc *FinalCommitment) CountSigners() int {
	return countBits(fc.Signers)
}

func (fc *FinalCommitment) CountValidMembers() int {
	return countBits(fc.ValidMembers)
}

// IsNull reports whether the commitment commits to nothing. Null
// commitments get mined when a DKG session failed to produce a quorum.
func (fc *FinalCommitment) IsNull() bool {
	if fc.CountSigners() > 0 || fc.CountValidMembers() > 0 {
		return false
	}
	if !fc.QuorumVvecHash.IsNull() {
		return false
	}
	return fc.QuorumPublicKey == [BLSPublicKeySize]byte{} &&
		fc.QuorumSig == [BLSSignatureSize]byte{} &&
		fc.MembersSig == [BLSSignatureSize]byte{}
}

func (fc *FinalCommitment) EncodeSize() uint32 {
	n := uint32(2 + 1 + util.Hash256Size)
	n += bitSetSerializeSize(fc.Signers)
	n += bitSetSerializeSize(fc.ValidMembers)
	n += BLSPublicKeySize + util.Hash256Size + 2*BLSSignatureSize
	return n
}

func (fc *FinalCommitment) Encode(writer io.Writer) error {
	err := util.BinarySerializer.PutUint16(writer, binary.LittleEndian, fc.Version)
	if err != nil {
		return err
	}
	if err = util.BinarySerializer.PutUint8(writer, fc.LLMQType); err != nil {
		return err
	}
	if _, err = writer.Write(fc.QuorumHash[:]); err != nil {
		return err
	}
	if err = writeBitSet(writer, fc.Signers); err != nil {
		return err
	}
	if err = writeBitSet(writer, fc.ValidMembers); err != nil {
		return err
	}
	if _, err = writer.Write(fc.QuorumPublicKey[:]); err != nil {
		return err
	}
	if _, err = writer.Write(fc.QuorumVvecHash[:]); err != nil {
		return err
	}
	if _, err = writer.Write(fc.QuorumSig[:]); err != nil {
		return err
	}
	_, err = writer.Write(fc.MembersSig[:])
	return err
}

func (fc *FinalCommitment) Decode(reader io.Reader) error {
	var err error
	fc.Version, err = util.BinarySerializer.Uint16(reader, binary.LittleEndian)
	if err != nil {
		return err
	}
	if fc.LLMQType, err = util.BinarySerializer.Uint8(reader); err != nil {
		return err
	}
	if _, err = io.ReadFull(reader, fc.QuorumHash[:]); err != nil {
		return err
	}
	if fc.Signers, err = readBitSet(reader); err != nil {
		return err
	}
	if fc.ValidMembers, err = readBitSet(reader); err != nil {
		return err
	}
	if _, err = io.ReadFull(reader, fc.QuorumPublicKey[:]); err != nil {
		return err
	}
	if _, err = io.ReadFull(reader, fc.QuorumVvecHash[:]); err != nil {
		return err
	}
	if _, err = io.ReadFull(reader, fc.QuorumSig[:]); err != nil {
		return err
	}
	_, err = io.ReadFull(reader, fc.MembersSig[:])
	return err
}

// Hash is the commitment hash the coinbase quorum merkle root is built
// from.
func (fc *FinalCommitment) Hash() util.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, fc.EncodeSize()))
	_ = fc.Encode(buf)
	return util.DoubleSha256Hash(buf.Bytes())
}

// QcTxPayload is the extra payload of a TxTypeQuorumCommitment
// transaction.
type QcTxPayload struct {
	Version    uint16
	Height     int32
	Commitment FinalCommitment
}

func (p *QcTxPayload) EncodeSize() uint32 {
	return 2 + 4 + p.Commitment.EncodeSize()
}

func (p *QcTxPayload) Encode(writer io.Writer) error {
	err := util.BinarySerializer.PutUint16(writer, binary.LittleEndian, p.Version)
	if err != nil {
		return err
	}
	err = util.BinarySerializer.PutUint32(writer, binary.LittleEndian, uint32(p.Height))
	if err != nil {
		return err
	}
	return p.Commitment.Encode(writer)
}

func (p *QcTxPayload) Decode(reader io.Reader) error {
	var err error
	p.Version, err = util.BinarySerializer.Uint16(reader, binary.LittleEndian)
	if err != nil {
		return err
	}
	height, err := util.BinarySerializer.Uint32(reader, binary.LittleEndian)
	if err != nil {
		return err
	}
	p.Height = int32(height)
	return p.Commitment.Decode(reader)
}

func (p *QcTxPayload) Serialize() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, p.EncodeSize()))
	if err := p.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GetQcTxPayload extracts and decodes the payload of a quorum
// commitment transaction.
func GetQcTxPayload(txn *Tx) (*QcTxPayload, error) {
	if txn.GetTxType() != TxTypeQuorumCommitment {
		return nil, errcode.New(errcode.ErrorBadQcPayload)
	}
	payload := new(QcTxPayload)
	if err := payload.Decode(bytes.NewReader(txn.GetExtraPayload())); err != nil {
		return nil, errcode.New(errcode.ErrorBadQcPayload)
	}
	if payload.Version == 0 || payload.Version > QcTxVersion {
		return nil, errcode.New(errcode.ErrorBadQcPayload)
	}
	return payload, nil
}

func countBits(bits []bool) int {
	n := 0
	for _, b := range bits {
		if b {
			n++
		}
	}
	return n
}

func bitSetSerializeSize(bits []bool) uint32 {
	return uint32(util.VarIntSerializeSize(uint64(len(bits)))) + uint32(len(bits)+7)/8
}

// writeBitSet packs the flags eight to a byte, low bit first, behind a
// compact size count.
func writeBitSet(writer io.Writer, bits []bool) error {
	if err := util.WriteVarInt(writer, uint64(len(bits))); err != nil {
		return err
	}
	packed := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			packed[i/8] |= 1 << uint(i%8)
		}
	}
	_, err := writer.Write(packed)
	return err
}

func readBitSet(reader io.Reader) ([]bool, error) {
	count, err := util.ReadVarInt(reader)
	if err != nil {
		return nil, err
	}
	if count > maxQuorumMembers {
		return nil, errcode.New(errcode.ErrorBadQcPayload)
	}
	packed := make([]byte, (count+7)/8)
	if _, err = io.ReadFull(reader, packed); err != nil {
		return nil, err
	}
	bits := make([]bool, count)
	for i := range bits {
		bits[i] = packed[i/8]&(1<<uint(i%8)) != 0
	}
	return bits, nil
}

// maxQuorumMembers bounds the bitset size a payload may claim.
const maxQuorumMembers = 512

package tx

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/cosanta/cosanta-core/errcode"
	"github.com/cosanta/cosanta-core/util"
)

// CbTx payload versions. Version 2 adds the quorum merkle root.
const (
	CbTxVersionBase              uint16 = 1
	CbTxVersionMerkleRootQuorums uint16 = 2
)

// CbTxPayload is the extra payload of a TxTypeCoinbase transaction. It
// commits the block height and the deterministic masternode list, and
// from version 2 on the active quorums as well.
type CbTxPayload struct {
	Version           uint16
	Height            int32
	MerkleRootMNList  util.Hash
	MerkleRootQuorums util.Hash
}

func NewCbTxPayload(version uint16, height int32) *CbTxPayload {
	return &CbTxPayload{Version: version, Height: height}
}

func (p *CbTxPayload) EncodeSize() uint32 {
	n := uint32(2 + 4 + util.Hash256Size)
	if p.Version >= CbTxVersionMerkleRootQuorums {
		n += util.Hash256Size
	}
	return n
}

func (p *CbTxPayload) Encode(writer io.Writer) error {
	err := util.BinarySerializer.PutUint16(writer, binary.LittleEndian, p.Version)
	if err != nil {
		return err
	}
	err = util.BinarySerializer.PutUint32(writer, binary.LittleEndian, uint32(p.Height))
	if err != nil {
		return err
	}
	if _, err = writer.Write(p.MerkleRootMNList[:]); err != nil {
		return err
	}
	if p.Version >= CbTxVersionMerkleRootQuorums {
		if _, err = writer.Write(p.MerkleRootQuorums[:]); err != nil {
			return err
		}
	}
	return nil
}

func (p *CbTxPayload) Decode(reader io.Reader) error {
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
	if _, err = io.ReadFull(reader, p.MerkleRootMNList[:]); err != nil {
		return err
	}
	if p.Version >= CbTxVersionMerkleRootQuorums {
		if _, err = io.ReadFull(reader, p.MerkleRootQuorums[:]); err != nil {
			return err
		}
	}
	return nil
}

func (p *CbTxPayload) Serialize() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, p.EncodeSize()))
	if err := p.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GetCbTxPayload extracts and decodes the coinbase payload of a
// special coinbase transaction.
func GetCbTxPayload(coinbase *Tx) (*CbTxPayload, error) {
	if coinbase.GetTxType() != TxTypeCoinbase {
		return nil, errcode.New(errcode.ErrorBadCbPayload)
	}
	payload := new(CbTxPayload)
	if err := payload.Decode(bytes.NewReader(coinbase.GetExtraPayload())); err != nil {
		return nil, errcode.New(errcode.ErrorBadCbPayload)
	}
	if payload.Version == 0 || payload.Version > CbTxVersionMerkleRootQuorums {
		return nil, errcode.New(errcode.ErrorBadCbPayload)
	}
	return payload, nil
}

package masternode

import (
	"bytes"
	"io"

	"github.com/cosanta/cosanta-core/model/script"
	"github.com/cosanta/cosanta-core/util"
)

// SimplifiedEntry is the deterministic-list view of one masternode,
// the unit the coinbase masternode merkle root commits to.
type SimplifiedEntry struct {
	ProRegTxHash   util.Hash
	ConfirmedHash  util.Hash
	Service        [18]byte // ip:port, network byte order
	PubKeyOperator [48]byte
	KeyIDVoting    [20]byte
	IsValid        bool

	// Payout destination, not part of the simplified hash.
	PayoutScript *script.Script
}

func (e *SimplifiedEntry) Encode(w io.Writer) error {
	if err := util.WriteElements(w, &e.ProRegTxHash, &e.ConfirmedHash); err != nil {
		return err
	}
	if _, err := w.Write(e.Service[:]); err != nil {
		return err
	}
	if _, err := w.Write(e.PubKeyOperator[:]); err != nil {
		return err
	}
	if _, err := w.Write(e.KeyIDVoting[:]); err != nil {
		return err
	}
	return util.WriteElements(w, e.IsValid)
}

func (e *SimplifiedEntry) Hash() util.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, 32+32+18+48+20+1))
	if err := e.Encode(buf); err != nil {
		return util.Hash{}
	}
	return util.DoubleSha256Hash(buf.Bytes())
}

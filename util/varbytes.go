package util

import (
	"fmt"
	"io"
)

// ReadVarBytes reads a compact size length then that many raw bytes.
// Lengths above maxAllowed are rejected before any allocation happens.
func ReadVarBytes(r io.Reader, maxAllowed uint64, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	if count > maxAllowed {
		return nil, fmt.Errorf("%s length %d exceeds the allowed maximum %d",
			fieldName, count, maxAllowed)
	}

	b := make([]byte, count)
	if _, err = io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func WriteVarBytes(w io.Writer, bytes []byte) error {
	if err := WriteVarInt(w, uint64(len(bytes))); err != nil {
		return err
	}
	_, err := w.Write(bytes)
	return err
}

package util

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxSize caps any variable-length count read off the wire. A count
// larger than this can never describe a well-formed message.
const MaxSize = 0x02000000

// ReadVarInt reads a Bitcoin-style compact size integer: one marker byte,
// then 0, 2, 4 or 8 little endian payload bytes. Non-canonical encodings
// are rejected.
func ReadVarInt(r io.Reader) (uint64, error) {
	discriminant, err := BinarySerializer.Uint8(r)
	if err != nil {
		return 0, err
	}

	var rv uint64
	switch discriminant {
	case 0xff:
		sv, err := BinarySerializer.Uint64(r, binary.LittleEndian)
		if err != nil {
			return 0, err
		}
		rv = sv
		// The encoding is not canonical if the value could have been
		// encoded using fewer bytes.
		if rv < 0x100000000 {
			return 0, fmt.Errorf("ReadVarInt noncanonical varint %d", rv)
		}
	case 0xfe:
		sv, err := BinarySerializer.Uint32(r, binary.LittleEndian)
		if err != nil {
			return 0, err
		}
		rv = uint64(sv)
		if rv < 0x10000 {
			return 0, fmt.Errorf("ReadVarInt noncanonical varint %d", rv)
		}
	case 0xfd:
		sv, err := BinarySerializer.Uint16(r, binary.LittleEndian)
		if err != nil {
			return 0, err
		}
		rv = uint64(sv)
		if rv < 0xfd {
			return 0, fmt.Errorf("ReadVarInt noncanonical varint %d", rv)
		}
	default:
		rv = uint64(discriminant)
	}

	return rv, nil
}

// WriteVarInt writes val as a compact size integer.
func WriteVarInt(w io.Writer, val uint64) error {
	if val < 0xfd {
		return BinarySerializer.PutUint8(w, uint8(val))
	}

	if val <= 0xffff {
		if err := BinarySerializer.PutUint8(w, 0xfd); err != nil {
			return err
		}
		return BinarySerializer.PutUint16(w, binary.LittleEndian, uint16(val))
	}

	if val <= 0xffffffff {
		if err := BinarySerializer.PutUint8(w, 0xfe); err != nil {
			return err
		}
		return BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(val))
	}

	if err := BinarySerializer.PutUint8(w, 0xff); err != nil {
		return err
	}
	return BinarySerializer.PutUint64(w, binary.LittleEndian, val)
}

// VarIntSerializeSize returns the number of bytes WriteVarInt would take
// for val.
func VarIntSerializeSize(val uint64) int {
	if val < 0xfd {
		return 1
	}
	if val <= 0xffff {
		return 3
	}
	if val <= 0xffffffff {
		return 5
	}
	return 9
}

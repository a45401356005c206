package util

import (
	"bytes"
	"io"
	"testing"
)

func TestVarInt(t *testing.T) {
	tests := []struct {
		in  uint64
		buf []byte
	}{
		{0, []byte{0x00}},
		// Max single byte
		{0xfc, []byte{0xfc}},
		// Min 2-byte
		{0xfd, []byte{0xfd, 0xfd, 0x00}},
		// Max 2-byte
		{0xffff, []byte{0xfd, 0xff, 0xff}},
		// Min 4-byte
		{0x10000, []byte{0xfe, 0x00, 0x00, 0x01, 0x00}},
		// Max 4-byte
		{0xffffffff, []byte{0xfe, 0xff, 0xff, 0xff, 0xff}},
		// Min 8-byte
		{0x100000000, []byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}},
		// Max 8-byte
		{0xffffffffffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for i, test := range tests {
		var buf bytes.Buffer
		if err := WriteVarInt(&buf, test.in); err != nil {
			t.Errorf("WriteVarInt #%d error %v", i, err)
			continue
		}
		if !bytes.Equal(buf.Bytes(), test.buf) {
			t.Errorf("WriteVarInt #%d got: %x want: %x", i,
				buf.Bytes(), test.buf)
			continue
		}

		val, err := ReadVarInt(bytes.NewReader(test.buf))
		if err != nil {
			t.Errorf("ReadVarInt #%d error %v", i, err)
			continue
		}
		if val != test.in {
			t.Errorf("ReadVarInt #%d got: %d want: %d", i, val, test.in)
			continue
		}
	}
}

func TestVarIntNonCanonical(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"2-byte encoding of single byte value", []byte{0xfd, 0xfc, 0x00}},
		{"4-byte encoding of 2-byte value", []byte{0xfe, 0xff, 0xff, 0x00, 0x00}},
		{"8-byte encoding of 4-byte value", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x00}},
	}

	for i, test := range tests {
		if _, err := ReadVarInt(bytes.NewReader(test.buf)); err == nil {
			t.Errorf("ReadVarInt #%d (%s) expected error", i, test.name)
		}
	}
}

func TestVarIntReadErrors(t *testing.T) {
	tests := []struct {
		buf []byte
		err error
	}{
		// No marker byte at all.
		{[]byte{}, io.EOF},
		// Marker promises payload bytes that never arrive.
		{[]byte{0xfd}, io.EOF},
		{[]byte{0xfe, 0x01}, io.ErrUnexpectedEOF},
		{[]byte{0xff, 0x01, 0x02}, io.ErrUnexpectedEOF},
	}

	for i, test := range tests {
		if _, err := ReadVarInt(bytes.NewReader(test.buf)); err != test.err {
			t.Errorf("ReadVarInt #%d wrong error got: %v, want: %v",
				i, err, test.err)
		}
	}
}

func TestVarIntSerializeSize(t *testing.T) {
	tests := []struct {
		val  uint64
		size int
	}{
		{0, 1},
		{0xfc, 1},
		{0xfd, 3},
		{0xffff, 3},
		{0x10000, 5},
		{0xffffffff, 5},
		{0x100000000, 9},
		{0xffffffffffffffff, 9},
	}

	for i, test := range tests {
		if got := VarIntSerializeSize(test.val); got != test.size {
			t.Errorf("VarIntSerializeSize #%d got: %d, want: %d", i,
				got, test.size)
		}
	}
}

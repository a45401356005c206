package util

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestVarBytes(t *testing.T) {
	bytes256 := bytes.Repeat([]byte{0x01}, 256)

	tests := []struct {
		in  []byte
		buf []byte
	}{
		// Empty byte array.
		{[]byte{}, []byte{0x00}},
		// Single byte varint + payload.
		{[]byte{0x01}, []byte{0x01, 0x01}},
		// 2-byte varint + payload.
		{bytes256, append([]byte{0xfd, 0x00, 0x01}, bytes256...)},
	}

	for i, test := range tests {
		var buf bytes.Buffer
		if err := WriteVarBytes(&buf, test.in); err != nil {
			t.Errorf("WriteVarBytes #%d error %v", i, err)
			continue
		}
		if !bytes.Equal(buf.Bytes(), test.buf) {
			t.Errorf("WriteVarBytes #%d got: %x want: %x", i,
				buf.Bytes(), test.buf)
			continue
		}

		val, err := ReadVarBytes(bytes.NewReader(test.buf), 256, "test payload")
		if err != nil {
			t.Errorf("ReadVarBytes #%d error %v", i, err)
			continue
		}
		if !bytes.Equal(val, test.in) {
			t.Errorf("ReadVarBytes #%d got: %x want: %x", i,
				val, test.in)
			continue
		}
	}
}

func TestVarBytesErrors(t *testing.T) {
	tests := []struct {
		buf []byte
		err error
	}{
		// Missing length prefix.
		{[]byte{}, io.EOF},
		// Length promises more payload than the reader holds.
		{[]byte{0x04, 0x01}, io.ErrUnexpectedEOF},
		{[]byte{0x01}, io.EOF},
	}

	for i, test := range tests {
		if _, err := ReadVarBytes(bytes.NewReader(test.buf), 256, "test payload"); err != test.err {
			t.Errorf("ReadVarBytes #%d wrong error got: %v, want: %v",
				i, err, test.err)
		}
	}

	// Length above the caller supplied cap is rejected before reading.
	oversized := append([]byte{0x03}, bytes.Repeat([]byte{0x01}, 3)...)
	_, err := ReadVarBytes(bytes.NewReader(oversized), 2, "test payload")
	if err == nil || !strings.Contains(err.Error(), "test payload") {
		t.Errorf("ReadVarBytes oversized: got %v, want field name in error", err)
	}
}

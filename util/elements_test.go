package util

import (
	"bytes"
	"testing"
)

func TestElementsRoundTrip(t *testing.T) {
	hash := HashFromString("00000000000743f190a18c5577a3c2d2a1f610ae9601ac046a38084ccb7cd721")

	var buf bytes.Buffer
	err := WriteElements(&buf, int32(-7), uint32(0xdeadbeef), int64(-1), uint64(42), true, hash)
	if err != nil {
		t.Fatalf("WriteElements error %v", err)
	}

	var (
		i32  int32
		u32  uint32
		i64  int64
		u64  uint64
		flag bool
		h    Hash
	)
	err = ReadElements(&buf, &i32, &u32, &i64, &u64, &flag, &h)
	if err != nil {
		t.Fatalf("ReadElements error %v", err)
	}

	if i32 != -7 || u32 != 0xdeadbeef || i64 != -1 || u64 != 42 || !flag {
		t.Errorf("round trip mismatch: %d %x %d %d %v", i32, u32, i64, u64, flag)
	}
	if !hash.IsEqual(&h) {
		t.Errorf("hash round trip mismatch: got %s", h.String())
	}
}

func TestElementsUnhandledType(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteElement(&buf, "unsupported"); err == nil {
		t.Error("WriteElement expected error for unsupported type")
	}

	var s string
	if err := ReadElement(&buf, &s); err == nil {
		t.Error("ReadElement expected error for unsupported type")
	}
}

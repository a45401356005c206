package util

import (
	"bytes"
	"testing"
)

func TestFeeRateGetFee(t *testing.T) {
	tests := []struct {
		perK  int64
		bytes int
		want  int64
	}{
		{1000, 1000, 1000},
		{1000, 250, 250},
		{10, 10, 1},

		// A positive rate never rounds down to a free transaction.
		{1, 100, 1},
		{-10, 20, -1},

		// Zero size pays nothing at any rate.
		{1000, 0, 0},
	}

	for i, test := range tests {
		rate := NewFeeRate(test.perK)
		if got := rate.GetFee(test.bytes); got != test.want {
			t.Errorf("GetFee #%d (%d/kB, %d bytes) got %d, want %d",
				i, test.perK, test.bytes, got, test.want)
		}
	}

	if got := NewFeeRate(100).GetFeePerK(); got != 100 {
		t.Errorf("GetFeePerK got %d, want 100", got)
	}
}

func TestNewFeeRateWithSize(t *testing.T) {
	if rate := NewFeeRateWithSize(10, 1000); rate.SataoshisPerK != 10 {
		t.Errorf("got %d, want 10", rate.SataoshisPerK)
	}
	if rate := NewFeeRateWithSize(50, 500); rate.SataoshisPerK != 100 {
		t.Errorf("got %d, want 100", rate.SataoshisPerK)
	}
	if rate := NewFeeRateWithSize(10, 0); rate.SataoshisPerK != 0 {
		t.Errorf("zero size: got %d, want 0", rate.SataoshisPerK)
	}
}

func TestFeeRateLess(t *testing.T) {
	low := NewFeeRate(10)
	high := NewFeeRate(1000)

	if !low.Less(*high) {
		t.Error("expected low < high")
	}
	if high.Less(*low) {
		t.Error("expected !(high < low)")
	}
	if low.Less(*low) {
		t.Error("expected !(low < low)")
	}
}

func TestFeeRateSerialize(t *testing.T) {
	rate := NewFeeRate(10)
	if rate.SerializeSize() != 8 {
		t.Errorf("SerializeSize got %d, want 8", rate.SerializeSize())
	}

	var buf bytes.Buffer
	if err := rate.Serialize(&buf); err != nil {
		t.Fatal(err)
	}

	decoded, err := Unserialize(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.SataoshisPerK != 10 {
		t.Errorf("round trip got %d, want 10", decoded.SataoshisPerK)
	}
}

func TestCompareFeeFraction(t *testing.T) {
	tests := []struct {
		feeA, sizeA int64
		feeB, sizeB int64
		want        int
	}{
		// 10/100 == 100/1000
		{10, 100, 100, 1000, 0},
		// 11/100 > 100/1000
		{11, 100, 100, 1000, 1},
		{100, 1000, 11, 100, -1},
		// Sign decides before magnitude.
		{-1, 100, 1, 100, -1},
		{1, 100, -1, 100, 1},
		{-2, 100, -1, 100, -1},
		// Products past 64 bits still order correctly.
		{1 << 62, 3, 1 << 62, 2, -1},
		{1 << 62, 2, 1 << 62, 3, 1},
	}

	for i, test := range tests {
		got := CompareFeeFraction(test.feeA, test.sizeA, test.feeB, test.sizeB)
		if got != test.want {
			t.Errorf("CompareFeeFraction #%d (%d/%d vs %d/%d) got %d, want %d",
				i, test.feeA, test.sizeA, test.feeB, test.sizeB, got, test.want)
		}
	}
}

package util

import "testing"

func TestMinMaxI(t *testing.T) {
	tests := []struct {
		a, b     int64
		min, max int64
	}{
		{1, 2, 1, 2},
		{3, 2, 2, 3},
		{-5, 5, -5, 5},
		{7, 7, 7, 7},
	}

	for i, test := range tests {
		if got := MaxI(test.a, test.b); got != test.max {
			t.Errorf("MaxI #%d got %d, want %d", i, got, test.max)
		}
		if got := MinI(test.a, test.b); got != test.min {
			t.Errorf("MinI #%d got %d, want %d", i, got, test.min)
		}
	}
}

func TestMinMaxU(t *testing.T) {
	tests := []struct {
		a, b     uint64
		min, max uint64
	}{
		{1, 2, 1, 2},
		{3, 2, 2, 3},
		{0, 0, 0, 0},
	}

	for i, test := range tests {
		if got := MaxU(test.a, test.b); got != test.max {
			t.Errorf("MaxU #%d got %d, want %d", i, got, test.max)
		}
		if got := MinU(test.a, test.b); got != test.min {
			t.Errorf("MinU #%d got %d, want %d", i, got, test.min)
		}
	}
}

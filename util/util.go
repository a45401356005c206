package util

// MaxI returns the larger of two signed integers.
func MaxI(a, b int64) int64 {
	if a < b {
		return b
	}
	return a
}

// MinI returns the smaller of two signed integers.
func MinI(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// MaxU returns the larger of two unsigned integers.
func MaxU(a, b uint64) uint64 {
	if a < b {
		return b
	}
	return a
}

// MinU returns the smaller of two unsigned integers.
func MinU(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

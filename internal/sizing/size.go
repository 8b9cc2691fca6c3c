// Package sizing provides safe size arithmetic and conversions to prevent overflow.
package sizing

import "math"

// ToInt converts a uint64 to int, returning overflowErr if it doesn't fit.
func ToInt(size uint64, overflowErr error) (int, error) {
	if size > uint64(math.MaxInt) {
		return 0, overflowErr
	}
	return int(size), nil
}

// AddUint64 adds two uint64 values, returning (result, false) on overflow.
func AddUint64(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// RoundUp rounds size up to the next multiple of unit, returning
// (result, false) on overflow. unit must be a power of two.
func RoundUp(size, unit uint64) (uint64, bool) {
	sum, ok := AddUint64(size, unit-1)
	if !ok {
		return 0, false
	}
	return sum &^ (unit - 1), true
}

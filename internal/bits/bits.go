// Package bits provides the integer helpers shared by the analyzer and the
// bit-packing engine: field masks, bit widths, alignment and lcm.
package bits

import (
	"math"
	mathbits "math/bits"

	"golang.org/x/exp/constraints"
)

// Mask returns the low-w-bit mask. w == 64 yields all ones without
// shifting by the full register width.
func Mask(w int) uint64 {
	switch {
	case w <= 0:
		return 0
	case w >= 64:
		return math.MaxUint64
	default:
		return (uint64(1) << uint(w)) - 1
	}
}

// Len returns the number of bits needed to represent v. Len(0) == 0.
func Len[T constraints.Unsigned](v T) int {
	return mathbits.Len64(uint64(v))
}

// SignExtend interprets the low n bits of v as a two's complement value.
func SignExtend(v uint64, n int) int64 {
	if n <= 0 || n >= 64 {
		return int64(v)
	}
	shift := uint(64 - n)
	return int64(v<<shift) >> shift
}

// AlignTo rounds offset up to the next multiple of align.
// align must be a power of two; zero leaves offset unchanged.
func AlignTo[T constraints.Unsigned](offset, align T) T {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// CeilDiv returns ceil(a/b) for non-negative a and positive b.
func CeilDiv[T constraints.Integer](a, b T) T {
	return (a + b - 1) / b
}

func GCD[T constraints.Integer](a, b T) T {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns the least common multiple of two non-negative ints,
// reporting overflow. LCM(0, x) == 0.
func LCM(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, a >= 0 && b >= 0
	}
	return SafeMul(a/GCD(a, b), b)
}

// SafeMul multiplies two non-negative ints, reporting overflow.
func SafeMul(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if b != 0 && a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// SafeAdd adds two non-negative ints, reporting overflow.
func SafeAdd(a, b int) (int, bool) {
	if a < 0 || b < 0 || a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

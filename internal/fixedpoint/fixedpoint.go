// Package fixedpoint implements the saturating int32 fixed-point
// arithmetic used by the quantized operator kernels.
//
// Values are int32 raw words in Qn.m format: n integer bits, m = 31-n
// fractional bits. Functions take the integer-bit count explicitly where
// it matters; most primitives operate on raw words directly. Rounding is
// round-to-nearest with ties away from zero throughout, and every result
// is required to match the reference arithmetic within one ULP in the
// integer domain.
package fixedpoint

import "math"

// SaturatingRoundingDoublingHighMul returns the high 32 bits of 2*a*b,
// rounded. The single overflow case a == b == math.MinInt32 saturates to
// math.MaxInt32.
func SaturatingRoundingDoublingHighMul(a, b int32) int32 {
	if a == math.MinInt32 && b == math.MinInt32 {
		return math.MaxInt32
	}
	ab := int64(a) * int64(b)
	nudge := int64(1 << 30)
	if ab < 0 {
		nudge = 1 - (1 << 30)
	}
	// Truncating division, not a shift: for negative products the two
	// differ by one and rounding must stay away from zero.
	return int32((ab + nudge) / (1 << 31))
}

// RoundingDivideByPOT divides x by 2^exponent, rounding to nearest with
// ties away from zero. exponent must be in [0, 31].
func RoundingDivideByPOT(x int32, exponent int) int32 {
	if exponent < 0 || exponent > 31 {
		panic("fixedpoint: RoundingDivideByPOT exponent out of range [0, 31]")
	}
	mask := int32(int64(1)<<uint(exponent)) - 1
	remainder := x & mask
	threshold := mask >> 1
	if x < 0 {
		threshold++
	}
	result := x >> uint(exponent)
	if remainder > threshold {
		result++
	}
	return result
}

// SaturatingRoundingMultiplyByPOT multiplies x by 2^exponent. Positive
// exponents shift left with saturation, negative exponents are a rounding
// right shift, zero is the identity.
func SaturatingRoundingMultiplyByPOT(x int32, exponent int) int32 {
	switch {
	case exponent == 0:
		return x
	case exponent < 0:
		return RoundingDivideByPOT(x, -exponent)
	default:
		if exponent > 31 {
			panic("fixedpoint: SaturatingRoundingMultiplyByPOT exponent out of range")
		}
		threshold := int32((int64(1) << uint(31-exponent)) - 1)
		if x > threshold {
			return math.MaxInt32
		}
		if x < -threshold {
			return math.MinInt32
		}
		return x << uint(exponent)
	}
}

// Rescale converts a raw value from a source Q-format to a destination
// Q-format with a different number of integer bits.
func Rescale(x int32, srcIntegerBits, dstIntegerBits int) int32 {
	return SaturatingRoundingMultiplyByPOT(x, srcIntegerBits-dstIntegerBits)
}

// ExactMulByPot multiplies x by 2^exponent without saturation. The caller
// guarantees the result fits.
func ExactMulByPot(x int32, exponent int) int32 {
	if exponent < 0 {
		panic("fixedpoint: ExactMulByPot exponent must be non-negative")
	}
	return x << uint(exponent)
}

// RoundingHalfSum returns (a+b)/2 rounded to nearest, computed without
// intermediate overflow.
func RoundingHalfSum(a, b int32) int32 {
	return int32((int64(a) + int64(b) + 1) >> 1)
}

// MultiplyByQuantizedMultiplierSmallerThanOne rescales x by a real factor
// in (0, 1) expressed as multiplier * 2^-31 * 2^-rightShift: a fixed-point
// multiply-high followed by a rounding right shift. Used to requantize a
// widened intermediate (for example an int32 accumulator) down to a
// narrower output domain.
func MultiplyByQuantizedMultiplierSmallerThanOne(x, multiplier int32, rightShift int) int32 {
	return RoundingDivideByPOT(SaturatingRoundingDoublingHighMul(x, multiplier), rightShift)
}

// MultiplyByQuantizedMultiplierGreaterThanOne rescales x by a real factor
// >= 1 expressed as multiplier * 2^-31 * 2^leftShift: a left shift for
// headroom followed by a fixed-point multiply-high. Used to widen a narrow
// quantized delta into an extended fixed-point domain.
func MultiplyByQuantizedMultiplierGreaterThanOne(x, multiplier int32, leftShift int) int32 {
	return SaturatingRoundingDoublingHighMul(x*(1<<uint(leftShift)), multiplier)
}

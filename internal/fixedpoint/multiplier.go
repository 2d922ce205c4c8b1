package fixedpoint

import (
	"fmt"
	"math"
	"math/bits"
)

// QuantizeMultiplier decomposes a positive real multiplier into a
// normalized int32 fixed-point mantissa in [2^30, 2^31) and a power-of-two
// exponent shift such that multiplier ~= mantissa * 2^-31 * 2^shift.
func QuantizeMultiplier(multiplier float64) (quantized int32, shift int) {
	if multiplier <= 0 || math.IsInf(multiplier, 0) || math.IsNaN(multiplier) {
		panic(fmt.Sprintf("fixedpoint: multiplier must be a positive finite real, got %v", multiplier))
	}
	frac, exp := math.Frexp(multiplier)
	q := int64(math.Round(frac * (1 << 31)))
	if q > math.MaxInt32+1 {
		panic("fixedpoint: quantized multiplier out of range")
	}
	// frexp returns frac in [0.5, 1); rounding can push q to exactly 2^31.
	if q == math.MaxInt32+1 {
		q /= 2
		exp++
	}
	return int32(q), exp
}

// QuantizeMultiplierSmallerThanOne decomposes a multiplier in (0, 1) into
// a fixed-point mantissa and a right shift for use with
// MultiplyByQuantizedMultiplierSmallerThanOne.
func QuantizeMultiplierSmallerThanOne(multiplier float64) (quantized int32, rightShift int) {
	if multiplier >= 1 {
		panic(fmt.Sprintf("fixedpoint: multiplier must be < 1, got %v", multiplier))
	}
	q, exp := QuantizeMultiplier(multiplier)
	if exp > 0 {
		panic("fixedpoint: multiplier decomposition produced a left shift")
	}
	return q, -exp
}

// QuantizeMultiplierGreaterThanOne decomposes a multiplier >= 1 into a
// fixed-point mantissa and a left shift for use with
// MultiplyByQuantizedMultiplierGreaterThanOne.
func QuantizeMultiplierGreaterThanOne(multiplier float64) (quantized int32, leftShift int) {
	if multiplier < 1 {
		panic(fmt.Sprintf("fixedpoint: multiplier must be >= 1, got %v", multiplier))
	}
	q, exp := QuantizeMultiplier(multiplier)
	if exp < 0 {
		panic("fixedpoint: multiplier decomposition produced a right shift")
	}
	return q, exp
}

// CalculateInputRadius returns the largest quantized input magnitude that,
// after a left shift of inputLeftShift, still fits in a fixed-point value
// with inputIntegerBits integer bits. Inputs beyond the radius saturate
// and can be handled by clamping instead of arithmetic.
func CalculateInputRadius(inputIntegerBits, inputLeftShift int) int32 {
	maxInputRescaled := 1.0 * (float64(int64(1)<<uint(inputIntegerBits)) - 1) *
		float64(int64(1)<<uint(31-inputIntegerBits)) /
		float64(int64(1)<<uint(inputLeftShift))
	// Truncate, not round: the radius must stay strictly inside the
	// representable range.
	return int32(maxInputRescaled)
}

// InvSqrtQuantizedMultiplier computes a fixed-point approximation of the
// reciprocal square root of a positive accumulator, returned as a mantissa
// and right shift so that 1/sqrt(input) ~= multiplier * 2^-31 * 2^-shift
// when the input is read as a raw sum of squares of quantized diffs.
// Used by L2 normalization in place of a float sqrt.
func InvSqrtQuantizedMultiplier(input int32) (multiplier int32, rightShift int) {
	if input <= 0 {
		panic("fixedpoint: InvSqrtQuantizedMultiplier requires a positive input")
	}
	rightShift = 11
	for input >= (1 << 29) {
		input /= 4
		rightShift++
	}
	maxLeftShiftBits := bits.LeadingZeros32(uint32(input)) - 1
	leftShiftBitPairs := maxLeftShiftBits/2 - 1
	rightShift -= leftShiftBitPairs
	input <<= uint(2 * leftShiftBitPairs)

	// Newton-Raphson iteration for 1/sqrt in Q3.28:
	// x <- 1.5*x - (input/2)*x^3, starting from x = 1. Three integer
	// bits give enough headroom for the cubic term.
	const (
		intBits   = 3
		one       = int32(1) << (31 - intBits)
		halfThree = one + one>>1
		// sqrt(2)/2 in Q0.31, folded in because the input was read
		// with one bit of its own headroom.
		halfSqrt2 = 1518500250
	)
	halfInput := RoundingDivideByPOT(input>>1, 1)
	x := one
	for i := 0; i < 5; i++ {
		// x*x*x accumulates to Q9.22 through two multiply-highs.
		x3 := SaturatingRoundingMultiplyByPOT(
			SaturatingRoundingDoublingHighMul(SaturatingRoundingDoublingHighMul(x, x), x),
			3*intBits-intBits)
		t := SaturatingRoundingDoublingHighMul(halfThree, x) -
			SaturatingRoundingDoublingHighMul(halfInput, x3)
		x = SaturatingRoundingMultiplyByPOT(t, 2*intBits-intBits)
	}
	multiplier = SaturatingRoundingDoublingHighMul(x, halfSqrt2)
	if rightShift < 0 {
		// Saturating shift: for input 1 the iteration lands one ULP above
		// 2^28 and a plain left shift would wrap negative.
		multiplier = SaturatingRoundingMultiplyByPOT(multiplier, -rightShift)
		rightShift = 0
	}
	return multiplier, rightShift
}

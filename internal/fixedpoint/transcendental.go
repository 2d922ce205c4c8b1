package fixedpoint

import "math"

// expOnIntervalBetweenNegativeOneQuarterAnd0Excl evaluates exp(a) for
// a in (-1/4, 0], with a and the result both in Q0.31. A fourth-order
// Taylor expansion around -1/8 keeps the worst-case error centered.
func expOnIntervalBetweenNegativeOneQuarterAnd0Excl(a int32) int32 {
	const (
		constantTerm   = 1895147668 // exp(-1/8) in Q0.31
		constant1Over3 = 715827883  // 1/3 in Q0.31
		oneEighth      = int32(1) << 28
	)
	x := a + oneEighth
	x2 := SaturatingRoundingDoublingHighMul(x, x)
	x3 := SaturatingRoundingDoublingHighMul(x2, x)
	x4 := SaturatingRoundingDoublingHighMul(x2, x2)
	x4Over4 := SaturatingRoundingMultiplyByPOT(x4, -2)
	x4Over24PlusX3Over6PlusX2Over2 := SaturatingRoundingMultiplyByPOT(
		SaturatingRoundingDoublingHighMul(x4Over4+x3, constant1Over3)+x2, -1)
	return constantTerm +
		SaturatingRoundingDoublingHighMul(constantTerm, x+x4Over24PlusX3Over6PlusX2Over2)
}

// expBarrelShifterMultipliers holds exp(-2^e) in Q0.31 for
// e = -2, -1, 0, 1, 2, 3, 4, in that order.
var expBarrelShifterMultipliers = [7]int32{
	1672461947, // exp(-1/4)
	1302514674, // exp(-1/2)
	790015084,  // exp(-1)
	290630308,  // exp(-2)
	39332535,   // exp(-4)
	720401,     // exp(-8)
	242,        // exp(-16)
}

// ExpOnNegativeValues evaluates exp(a) for a <= 0, where a is a raw
// fixed-point value with integerBits integer bits. The result is in
// Q0.31. The argument is reduced modulo 1/4 into the Taylor interval and
// the integer part is folded back in through a barrel shifter of
// precomputed exp(-2^e) factors, one per remainder bit.
func ExpOnNegativeValues(a int32, integerBits int) int32 {
	if integerBits < 1 || integerBits > 28 {
		panic("fixedpoint: ExpOnNegativeValues integer bits out of range")
	}
	fractionalBits := 31 - integerBits
	oneQuarter := int32(1) << uint(fractionalBits-2)
	mask := oneQuarter - 1
	aModQuarterMinusOneQuarter := (a & mask) - oneQuarter
	result := expOnIntervalBetweenNegativeOneQuarterAnd0Excl(
		SaturatingRoundingMultiplyByPOT(aModQuarterMinusOneQuarter, integerBits))
	remainder := aModQuarterMinusOneQuarter - a
	for i, multiplier := range expBarrelShifterMultipliers {
		exponent := i - 2
		if integerBits <= exponent {
			break
		}
		shiftAmount := uint(fractionalBits + exponent)
		if remainder&(1<<shiftAmount) != 0 {
			result = SaturatingRoundingDoublingHighMul(result, multiplier)
		}
	}
	if integerBits > 5 {
		// Below -32 the true value underflows Q0.31 entirely.
		clamp := -(int32(1) << uint(fractionalBits+5))
		if a < clamp {
			result = 0
		}
	}
	if a == 0 {
		result = math.MaxInt32
	}
	return result
}

// OneOverOnePlusXForXIn01 evaluates 1/(1+x) for x in [0, 1], with x and
// the result both in Q0.31. Three Newton-Raphson division iterations on
// the half-denominator, carried out in Q2.29 for headroom.
func OneOverOnePlusXForXIn01(a int32) int32 {
	halfDenominator := RoundingHalfSum(a, math.MaxInt32)
	const (
		constant48Over17    = 1515870810  // 48/17 in Q2.29
		constantNeg32Over17 = -1010580540 // -32/17 in Q2.29
		oneQ2               = int32(1) << 29
	)
	x := constant48Over17 +
		SaturatingRoundingDoublingHighMul(halfDenominator, constantNeg32Over17)
	for i := 0; i < 3; i++ {
		halfDenominatorTimesX := SaturatingRoundingDoublingHighMul(halfDenominator, x)
		oneMinusHalfDenominatorTimesX := oneQ2 - halfDenominatorTimesX
		x += SaturatingRoundingMultiplyByPOT(
			SaturatingRoundingDoublingHighMul(x, oneMinusHalfDenominatorTimesX), 2)
	}
	// x holds 1/(2*(1+a)/2)/2 in Q2.29; one exact doubling and a
	// saturating renormalization land the quotient in Q0.31.
	return SaturatingRoundingMultiplyByPOT(x, 1)
}

// Logistic evaluates the logistic sigmoid 1/(1+exp(-a)) for a raw
// fixed-point value with integerBits integer bits. The result is in
// Q0.31. Negative inputs use the reflection 1 - logistic(-a).
func Logistic(a int32, integerBits int) int32 {
	abs := a
	if abs < 0 {
		abs = -abs
	}
	resultIfPositive := OneOverOnePlusXForXIn01(ExpOnNegativeValues(-abs, integerBits))
	if a < 0 {
		return math.MaxInt32 - resultIfPositive
	}
	return resultIfPositive
}

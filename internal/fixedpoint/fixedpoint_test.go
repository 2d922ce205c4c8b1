package fixedpoint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaturatingRoundingDoublingHighMul(t *testing.T) {
	// 0.5 * 0.5 in Q0.31.
	half := int32(1 << 30)
	assert.Equal(t, int32(1<<29), SaturatingRoundingDoublingHighMul(half, half))

	// Identity against the maximal positive mantissa loses one ULP to
	// the high-half truncation, never more.
	assert.InDelta(t, float64(half), float64(SaturatingRoundingDoublingHighMul(half, math.MaxInt32)), 1)

	// The single overflow case saturates instead of wrapping.
	assert.Equal(t, int32(math.MaxInt32),
		SaturatingRoundingDoublingHighMul(math.MinInt32, math.MinInt32))

	// Sign symmetry.
	a, b := int32(123456789), int32(987654321)
	assert.Equal(t, SaturatingRoundingDoublingHighMul(a, b),
		-SaturatingRoundingDoublingHighMul(-a, b))
}

func TestRoundingDivideByPOT_TiesAwayFromZero(t *testing.T) {
	cases := []struct {
		x        int32
		exponent int
		want     int32
	}{
		{10, 1, 5},
		{11, 1, 6},   // 5.5 rounds away from zero
		{-11, 1, -6}, // -5.5 rounds away from zero
		{13, 2, 3},   // 3.25 rounds down
		{-13, 2, -3},
		{14, 2, 4}, // 3.5 rounds away
		{-14, 2, -4},
		{15, 2, 4},
		{7, 0, 7},
		{-1, 1, -1}, // -0.5 rounds away to -1
		{1, 1, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, RoundingDivideByPOT(c.x, c.exponent),
			"RoundingDivideByPOT(%d, %d)", c.x, c.exponent)
	}
	assert.Panics(t, func() { RoundingDivideByPOT(1, -1) })
	assert.Panics(t, func() { RoundingDivideByPOT(1, 32) })
}

func TestSaturatingRoundingMultiplyByPOT(t *testing.T) {
	assert.Equal(t, int32(12), SaturatingRoundingMultiplyByPOT(3, 2))
	assert.Equal(t, int32(3), SaturatingRoundingMultiplyByPOT(3, 0))
	assert.Equal(t, int32(2), SaturatingRoundingMultiplyByPOT(3, -1))

	// Left shifts saturate instead of wrapping.
	assert.Equal(t, int32(math.MaxInt32), SaturatingRoundingMultiplyByPOT(1<<30, 2))
	assert.Equal(t, int32(math.MinInt32), SaturatingRoundingMultiplyByPOT(-(1<<30), 2))
}

func TestRoundingHalfSum(t *testing.T) {
	assert.Equal(t, int32(5), RoundingHalfSum(4, 6))
	assert.Equal(t, int32(6), RoundingHalfSum(5, 6)) // 5.5 rounds up
	// No intermediate overflow near the top of the range.
	assert.Equal(t, int32(math.MaxInt32), RoundingHalfSum(math.MaxInt32, math.MaxInt32))
}

func TestMultiplyByQuantizedMultiplierSmallerThanOne(t *testing.T) {
	// 0.5 = 2^30 * 2^-31 with no extra shift.
	mul, shift := QuantizeMultiplierSmallerThanOne(0.5)
	assert.Equal(t, int32(1<<30), mul)
	assert.Equal(t, 0, shift)
	assert.Equal(t, int32(50), MultiplyByQuantizedMultiplierSmallerThanOne(100, mul, shift))

	// 0.125 picks up a right shift of 2.
	mul, shift = QuantizeMultiplierSmallerThanOne(0.125)
	assert.Equal(t, int32(1<<30), mul)
	assert.Equal(t, 2, shift)
	assert.Equal(t, int32(125), MultiplyByQuantizedMultiplierSmallerThanOne(1000, mul, shift))

	// A non-power-of-two scale stays within one ULP in the integer domain.
	mul, shift = QuantizeMultiplierSmallerThanOne(0.3)
	got := MultiplyByQuantizedMultiplierSmallerThanOne(100000, mul, shift)
	assert.InDelta(t, 30000, float64(got), 1)
}

func TestMultiplyByQuantizedMultiplierGreaterThanOne(t *testing.T) {
	mul, shift := QuantizeMultiplierGreaterThanOne(4)
	assert.Equal(t, int32(1<<30), mul)
	assert.Equal(t, 3, shift)
	assert.Equal(t, int32(400), MultiplyByQuantizedMultiplierGreaterThanOne(100, mul, shift))

	mul, shift = QuantizeMultiplierGreaterThanOne(2.5)
	got := MultiplyByQuantizedMultiplierGreaterThanOne(10000, mul, shift)
	assert.InDelta(t, 25000, float64(got), 1)
}

func TestQuantizeMultiplier_DomainChecks(t *testing.T) {
	assert.Panics(t, func() { QuantizeMultiplier(0) })
	assert.Panics(t, func() { QuantizeMultiplier(-0.5) })
	assert.Panics(t, func() { QuantizeMultiplierSmallerThanOne(1.0) })
	assert.Panics(t, func() { QuantizeMultiplierGreaterThanOne(0.99) })
}

func TestQuantizeMultiplier_MantissaNormalized(t *testing.T) {
	for _, m := range []float64{1e-6, 0.1, 0.25, 0.5, 0.9999, 1, 3, 1000, 1e9} {
		q, shift := QuantizeMultiplier(m)
		assert.GreaterOrEqual(t, q, int32(1<<30), "multiplier %v", m)
		reconstructed := float64(q) / (1 << 31) * math.Pow(2, float64(shift))
		assert.InEpsilon(t, m, reconstructed, 1e-6, "multiplier %v", m)
	}
}

func TestCalculateInputRadius(t *testing.T) {
	// 4 integer bits with a left shift of 20: (2^4-1) * 2^27 / 2^20.
	assert.Equal(t, int32(15*(1<<7)), CalculateInputRadius(4, 20))
}

func TestInvSqrtQuantizedMultiplier(t *testing.T) {
	inputs := []int32{1, 2, 3, 4, 10, 16, 100, 1000, 65536, 1 << 20, 1<<28 + 12345, 1 << 29, 1 << 30}
	for _, input := range inputs {
		mul, shift := InvSqrtQuantizedMultiplier(input)
		assert.Positive(t, mul, "input %d", input)
		got := float64(mul) / (1 << 31) / math.Pow(2, float64(shift))
		want := 1 / math.Sqrt(float64(input))
		assert.InEpsilon(t, want, got, 1e-3, "input %d", input)
	}
	assert.Panics(t, func() { InvSqrtQuantizedMultiplier(0) })
	assert.Panics(t, func() { InvSqrtQuantizedMultiplier(-5) })
}

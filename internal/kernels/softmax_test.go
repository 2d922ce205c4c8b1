package kernels

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tetra-ml/tetra/internal/fixedpoint"
	"github.com/tetra-ml/tetra/internal/tensor"
)

func TestSoftmaxFloat_RowsSumToOne(t *testing.T) {
	input := []float32{
		1, 2, 3, 4,
		-5, 0, 5, 10,
	}
	dims := tensor.MustDims(4, 1, 1, 2)
	output := make([]float32, len(input))
	SoftmaxFloat(input, dims, 1, output, dims)

	for row := 0; row < 2; row++ {
		var sum float32
		for c := 0; c < 4; c++ {
			sum += output[row*4+c]
		}
		assert.InDelta(t, 1, sum, 1e-5, "row %d", row)
	}
	// Larger inputs get larger probabilities.
	for row := 0; row < 2; row++ {
		for c := 0; c < 3; c++ {
			assert.Less(t, output[row*4+c], output[row*4+c+1])
		}
	}
}

func TestSoftmaxFloat_MatchesDirectExponentials(t *testing.T) {
	input := []float32{0.5, -1, 2}
	dims := tensor.MustDims(3, 1, 1, 1)
	output := make([]float32, 3)
	SoftmaxFloat(input, dims, 2, output, dims)

	var sum float64
	want := make([]float64, 3)
	for i, v := range input {
		want[i] = math.Exp(2 * float64(v))
		sum += want[i]
	}
	for i := range want {
		assert.InDelta(t, want[i]/sum, float64(output[i]), 1e-6, "element %d", i)
	}
}

func TestSoftmaxQuantized_MatchesFloatReference(t *testing.T) {
	// Input scale 1/16, beta 1. The Q5.26 widening multiplier is then the
	// exactly representable (1/16) * 2^26.
	const inputScale = 1.0 / 16
	multiplier, leftShift := fixedpoint.QuantizeMultiplierGreaterThanOne(
		inputScale * float64(int64(1)<<26))
	diffMin := -fixedpoint.CalculateInputRadius(softmaxScaledDiffIntegerBits, leftShift)

	input := []uint8{
		255, 240, 224, 128,
		10, 200, 201, 190,
	}
	dims := tensor.MustDims(4, 1, 1, 2)
	output := make([]uint8, len(input))
	SoftmaxQuantized(input, dims, multiplier, leftShift, diffMin, output, dims)

	for row := 0; row < 2; row++ {
		in := input[row*4 : row*4+4]
		maxInRow := in[0]
		for _, v := range in[1:] {
			if v > maxInRow {
				maxInRow = v
			}
		}
		var sum float64
		exps := make([]float64, 4)
		for i, v := range in {
			exps[i] = math.Exp(float64(int32(v)-int32(maxInRow)) * inputScale)
			sum += exps[i]
		}
		for i := range exps {
			want := 256 * exps[i] / sum
			assert.InDelta(t, want, float64(output[row*4+i]), 2, "row %d element %d", row, i)
		}
	}
}

func TestSoftmaxQuantized_DiffMinCutsTinyContributions(t *testing.T) {
	const inputScale = 1.0 / 16
	multiplier, leftShift := fixedpoint.QuantizeMultiplierGreaterThanOne(
		inputScale * float64(int64(1)<<26))

	// With a cutoff above the smallest diff, the far element is written as
	// zero without touching the exponential pipeline.
	input := []uint8{255, 55, 254, 253}
	dims := tensor.MustDims(4, 1, 1, 1)
	output := make([]uint8, 4)
	SoftmaxQuantized(input, dims, multiplier, leftShift, -100, output, dims)

	assert.Equal(t, uint8(0), output[1])
	assert.Greater(t, output[0], output[2])
	assert.GreaterOrEqual(t, output[2], output[3])
}

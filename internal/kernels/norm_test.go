package kernels

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tetra-ml/tetra/internal/tensor"
)

func TestGlobalBatchNormalization(t *testing.T) {
	inputDims := tensor.MustDims(2, 2, 1, 1)
	paramDims := tensor.MustDims(2, 1, 1, 1)
	input := []float32{
		1, 10,
		3, 20,
	}
	mean := []float32{2, 15}
	multiplier := []float32{0.5, 0.1}
	offset := []float32{100, -1}
	output := make([]float32, 4)

	GlobalBatchNormalization(ActivationNone,
		input, inputDims, mean, paramDims, multiplier, paramDims,
		offset, paramDims, output, inputDims)

	assert.Equal(t, []float32{
		99.5, -1.5,
		100.5, -0.5,
	}, output)
}

func TestNonGlobalBatchNormalization_StatsVaryPerPosition(t *testing.T) {
	// Two batches share one set of per-position statistics.
	inputDims := tensor.MustDims(1, 2, 1, 2)
	paramDims := tensor.MustDims(1, 2, 1, 1)
	input := []float32{
		4, 8,
		6, 12,
	}
	mean := []float32{2, 10}
	multiplier := []float32{1, 0.5}
	offset := []float32{0, 1}
	output := make([]float32, 4)

	NonGlobalBatchNormalization(ActivationNone,
		input, inputDims, mean, paramDims, multiplier, paramDims,
		offset, paramDims, output, inputDims)

	assert.Equal(t, []float32{
		2, 0,
		4, 2,
	}, output)
}

// naiveLRN recomputes the channel-window normalization per element.
func naiveLRN(input []float32, depth, rangeSize int, bias, alpha, beta float32) []float32 {
	output := make([]float32, len(input))
	for off := 0; off < len(input); off += depth {
		for c := 0; c < depth; c++ {
			var sum float32
			for k := max(0, c-rangeSize); k <= min(depth-1, c+rangeSize); k++ {
				v := input[off+k]
				sum += v * v
			}
			scale := bias + alpha*sum
			output[off+c] = input[off+c] * float32(math.Pow(float64(scale), float64(-beta)))
		}
	}
	return output
}

func TestLocalResponseNormalization(t *testing.T) {
	input := []float32{1, -2, 3, 0.5, -1, 4, 2, -3}
	dims := tensor.MustDims(4, 2, 1, 1)
	for _, beta := range []float32{1, 0.5, 0.75} {
		output := make([]float32, len(input))
		LocalResponseNormalization(input, dims, 1, 2, 0.25, beta, output, dims)
		want := naiveLRN(input, 4, 1, 2, 0.25, beta)
		for i := range want {
			assert.InDelta(t, want[i], output[i], 1e-5, "beta %v element %d", beta, i)
		}
	}
}

func TestL2NormalizationFloat(t *testing.T) {
	// Each (x, y, b) position normalizes independently.
	input := []float32{
		3, 4,
		5, 12,
	}
	dims := tensor.MustDims(2, 2, 1, 1)
	output := make([]float32, 4)
	L2NormalizationFloat(input, dims, output, dims)
	want := []float32{0.6, 0.8, 5.0 / 13, 12.0 / 13}
	for i := range want {
		assert.InDelta(t, want[i], output[i], 1e-6, "element %d", i)
	}
}

func TestL2NormalizationQuantized(t *testing.T) {
	// Real vector [0.6, 0.8, 0, -0.6, -0.8, 0] scaled around zero point 128.
	input := []uint8{158, 168, 128, 98, 88, 128}
	dims := tensor.MustDims(6, 1, 1, 1)
	output := make([]uint8, 6)
	L2NormalizationQuantized(input, dims, 128, output, dims)

	// The normalized values land at 128 + 128*v/|v| within a couple of
	// integer steps of fixed-point error.
	norm := math.Sqrt(30*30 + 40*40 + 30*30 + 40*40)
	for i, raw := range input {
		diff := float64(int32(raw) - 128)
		want := 128 + 128*diff/norm
		assert.InDelta(t, want, float64(output[i]), 2, "element %d", i)
	}
}

func TestL2NormalizationQuantized_PanicsOnMultiVectorShape(t *testing.T) {
	assert.Panics(t, func() {
		L2NormalizationQuantized(make([]uint8, 8), tensor.MustDims(4, 2, 1, 1),
			128, make([]uint8, 8), tensor.MustDims(4, 2, 1, 1))
	})
}

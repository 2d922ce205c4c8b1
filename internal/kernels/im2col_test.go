package kernels

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tetra-ml/tetra/internal/tensor"
)

func TestIm2col_NoPadding(t *testing.T) {
	// Single-channel 3x3 image, 2x2 kernel, stride 1: four patches.
	input := []float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}
	inputDims := tensor.MustDims(1, 3, 3, 1)
	outputDims := tensor.MustDims(4, 2, 2, 1)
	output := make([]float32, outputDims.FlatSize())

	Im2col(input, inputDims, 1, 0, 0, 2, 2, 0, output, outputDims)

	assert.Equal(t, []float32{
		1, 2, 4, 5,
		2, 3, 5, 6,
		4, 5, 7, 8,
		5, 6, 8, 9,
	}, output)
}

func TestIm2col_PaddingUsesZeroValue(t *testing.T) {
	// The corner patch of a padded unroll is filled with the zero value on
	// its out-of-image top row and left column.
	input := []uint8{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}
	inputDims := tensor.MustDims(1, 3, 3, 1)
	outputDims := tensor.MustDims(9, 3, 3, 1)
	output := make([]uint8, outputDims.FlatSize())

	const zeroPoint = 7
	Im2col(input, inputDims, 1, 1, 1, 3, 3, uint8(zeroPoint), output, outputDims)

	assert.Equal(t, []uint8{
		zeroPoint, zeroPoint, zeroPoint,
		zeroPoint, 1, 2,
		zeroPoint, 4, 5,
	}, output[:9])
	// The center patch is the whole image, no padding.
	assert.Equal(t, input, output[4*9:5*9])
}

func TestIm2col_PanicsOnWrongPatchDepth(t *testing.T) {
	assert.Panics(t, func() {
		Im2col(make([]float32, 9), tensor.MustDims(1, 3, 3, 1),
			1, 0, 0, 2, 2, 0, make([]float32, 12), tensor.MustDims(3, 2, 2, 1))
	})
}

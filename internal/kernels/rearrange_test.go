package kernels

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tetra-ml/tetra/internal/tensor"
)

func TestDepthToSpace(t *testing.T) {
	// Four channels per 1x1 input position spread over a 2x2 block.
	input := []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
	}
	inputDims := tensor.MustDims(4, 2, 1, 1)
	outputDims := tensor.MustDims(1, 4, 2, 1)
	output := make([]float32, 8)

	DepthToSpace(input, inputDims, 2, output, outputDims)

	assert.Equal(t, []float32{
		1, 2, 5, 6,
		3, 4, 7, 8,
	}, output)
}

func TestSpaceToDepth_InvertsDepthToSpace(t *testing.T) {
	input := []uint8{
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12,
		13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24,
	}
	inputDims := tensor.MustDims(12, 1, 2, 1)
	spatialDims := tensor.MustDims(3, 2, 4, 1)

	spatial := make([]uint8, len(input))
	DepthToSpace(input, inputDims, 2, spatial, spatialDims)

	roundTrip := make([]uint8, len(input))
	SpaceToDepth(spatial, spatialDims, 2, roundTrip, inputDims)

	assert.Equal(t, input, roundTrip)
}

func TestDepthToSpace_PanicsOnDepthMismatch(t *testing.T) {
	assert.Panics(t, func() {
		DepthToSpace(make([]float32, 6), tensor.MustDims(6, 1, 1, 1),
			2, make([]float32, 6), tensor.MustDims(1, 2, 2, 1))
	})
}

func TestResizeBilinear_IdentityWhenSizesMatch(t *testing.T) {
	input := []float32{1, 2, 3, 4, 5, 6}
	dims := tensor.MustDims(1, 3, 2, 1)
	output := make([]float32, 6)
	ResizeBilinear(input, dims, 2, 3, output, dims)
	assert.Equal(t, input, output)
}

func TestResizeBilinear_Upscale(t *testing.T) {
	// Doubling a 2x2 image interpolates midpoints and clamps at the
	// far edges.
	input := []float32{
		0, 2,
		4, 6,
	}
	inputDims := tensor.MustDims(1, 2, 2, 1)
	outputDims := tensor.MustDims(1, 4, 4, 1)
	output := make([]float32, 16)

	ResizeBilinear(input, inputDims, 4, 4, output, outputDims)

	assert.Equal(t, []float32{
		0, 1, 2, 2,
		2, 3, 4, 4,
		4, 5, 6, 6,
		4, 5, 6, 6,
	}, output)
}

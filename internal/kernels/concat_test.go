package kernels

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tetra-ml/tetra/internal/tensor"
)

func TestDepthConcatenation(t *testing.T) {
	// Two positions: channels interleave per position, not per tensor.
	a := []float32{1, 2, 10, 20}
	b := []float32{3, 30}
	output := make([]float32, 6)
	DepthConcatenation(
		[][]float32{a, b},
		[]tensor.Dims{tensor.MustDims(2, 2, 1, 1), tensor.MustDims(1, 2, 1, 1)},
		output, tensor.MustDims(3, 2, 1, 1))
	assert.Equal(t, []float32{1, 2, 3, 10, 20, 30}, output)
}

func TestConcatenation_AlongWidth(t *testing.T) {
	a := []uint8{1, 2}
	b := []uint8{3, 4, 5, 6}
	output := make([]uint8, 6)
	Concatenation(1,
		[][]uint8{a, b},
		[]tensor.Dims{tensor.MustDims(1, 2, 1, 1), tensor.MustDims(1, 4, 1, 1)},
		output, tensor.MustDims(1, 6, 1, 1))
	assert.Equal(t, []uint8{1, 2, 3, 4, 5, 6}, output)
}

func TestConcatenation_PanicsOnExtentMismatch(t *testing.T) {
	assert.Panics(t, func() {
		Concatenation(0,
			[][]float32{make([]float32, 2), make([]float32, 3)},
			[]tensor.Dims{tensor.MustDims(2, 1, 1, 1), tensor.MustDims(1, 3, 1, 1)},
			make([]float32, 5), tensor.MustDims(5, 1, 1, 1))
	})
}

func TestSplit_InvertsDepthConcatenation(t *testing.T) {
	a := []int32{1, 2, 10, 20, 100, 200}
	b := []int32{3, 30, 300}
	aDims := tensor.MustDims(2, 3, 1, 1)
	bDims := tensor.MustDims(1, 3, 1, 1)
	joinedDims := tensor.MustDims(3, 3, 1, 1)

	joined := make([]int32, 9)
	DepthConcatenation([][]int32{a, b}, []tensor.Dims{aDims, bDims}, joined, joinedDims)

	gotA := make([]int32, len(a))
	gotB := make([]int32, len(b))
	Split(joined, joinedDims, [][]int32{gotA, gotB}, []tensor.Dims{aDims, bDims})

	assert.Equal(t, a, gotA)
	assert.Equal(t, b, gotB)
}

func TestSplit_PanicsOnChannelSumMismatch(t *testing.T) {
	assert.Panics(t, func() {
		Split(make([]int32, 4), tensor.MustDims(4, 1, 1, 1),
			[][]int32{make([]int32, 1), make([]int32, 2)},
			[]tensor.Dims{tensor.MustDims(1, 1, 1, 1), tensor.MustDims(2, 1, 1, 1)})
	})
}

package gemm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMulABt(t *testing.T) {
	// a is 2x3, b is 2x3, c = a*bᵀ is 2x2.
	a := []float32{
		1, 2, 3,
		4, 5, 6,
	}
	b := []float32{
		1, 0, 1,
		-1, 1, 2,
	}
	c := make([]float32, 4)
	MulABt(2, 3, 2, a, b, c)
	assert.Equal(t, []float32{
		4, 7,
		10, 13,
	}, c)
}

func TestMulABt_SingleRow(t *testing.T) {
	a := []float32{2, -1, 0.5}
	b := []float32{
		1, 1, 1,
		4, 0, 2,
	}
	c := make([]float32, 2)
	MulABt(1, 3, 2, a, b, c)
	assert.Equal(t, []float32{1.5, 9}, c)
}

func TestMulABt_ZeroInnerDimensionClearsOutput(t *testing.T) {
	c := []float32{7, 7, 7, 7}
	MulABt(2, 0, 2, nil, nil, c)
	assert.Equal(t, []float32{0, 0, 0, 0}, c)
}

func TestMulABt_PanicsOnShortBuffer(t *testing.T) {
	assert.Panics(t, func() {
		MulABt(2, 3, 2, make([]float32, 5), make([]float32, 6), make([]float32, 4))
	})
}

package kernels

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetra-ml/tetra/internal/gemm"
	"github.com/tetra-ml/tetra/internal/tensor"
)

// naiveConvFloat walks every output position directly, without the im2col
// unroll, as an independent reference.
func naiveConvFloat(activation Activation,
	input []float32, inputDims tensor.Dims,
	filter []float32, filterDims tensor.Dims,
	bias []float32,
	stride, padWidth, padHeight int,
	output []float32, outputDims tensor.Dims) {
	inDepth := inputDims.Extent(0)
	inWidth := inputDims.Extent(1)
	inHeight := inputDims.Extent(2)
	batches := inputDims.Extent(3)
	kernelWidth := filterDims.Extent(1)
	kernelHeight := filterDims.Extent(2)
	outDepth := outputDims.Extent(0)
	outWidth := outputDims.Extent(1)
	outHeight := outputDims.Extent(2)
	for b := 0; b < batches; b++ {
		for outY := 0; outY < outHeight; outY++ {
			for outX := 0; outX < outWidth; outX++ {
				for outC := 0; outC < outDepth; outC++ {
					acc := bias[outC]
					for ky := 0; ky < kernelHeight; ky++ {
						inY := outY*stride - padHeight + ky
						if inY < 0 || inY >= inHeight {
							continue
						}
						for kx := 0; kx < kernelWidth; kx++ {
							inX := outX*stride - padWidth + kx
							if inX < 0 || inX >= inWidth {
								continue
							}
							for c := 0; c < inDepth; c++ {
								acc += input[inputDims.Offset(c, inX, inY, b)] *
									filter[filterDims.Offset(c, kx, ky, outC)]
							}
						}
					}
					output[outputDims.Offset(outC, outX, outY, b)] = activation.Apply(acc)
				}
			}
		}
	}
}

func TestConvFloat_MatchesNaiveReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	inputDims := tensor.MustDims(2, 4, 4, 2)
	filterDims := tensor.MustDims(2, 3, 3, 3)
	outputDims := tensor.MustDims(3, 4, 4, 2)
	im2colDims := tensor.MustDims(2*3*3, 4, 4, 2)

	input := make([]float32, inputDims.FlatSize())
	for i := range input {
		input[i] = rng.Float32()*2 - 1
	}
	filter := make([]float32, filterDims.FlatSize())
	for i := range filter {
		filter[i] = rng.Float32()*2 - 1
	}
	bias := []float32{0.1, -0.2, 0.3}

	got := make([]float32, outputDims.FlatSize())
	im2col := make([]float32, im2colDims.FlatSize())
	ConvFloat(ActivationRelu,
		input, inputDims, filter, filterDims,
		bias, tensor.MustDims(3, 1, 1, 1),
		1, 1, 1, got, outputDims, im2col, im2colDims)

	want := make([]float32, outputDims.FlatSize())
	naiveConvFloat(ActivationRelu, input, inputDims, filter, filterDims,
		bias, 1, 1, 1, want, outputDims)

	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "element %d", i)
	}
}

func TestConvFloat_Strided(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	inputDims := tensor.MustDims(1, 5, 5, 1)
	filterDims := tensor.MustDims(1, 3, 3, 2)
	outputDims := tensor.MustDims(2, 2, 2, 1)
	im2colDims := tensor.MustDims(9, 2, 2, 1)

	input := make([]float32, inputDims.FlatSize())
	for i := range input {
		input[i] = rng.Float32()
	}
	filter := make([]float32, filterDims.FlatSize())
	for i := range filter {
		filter[i] = rng.Float32()
	}
	bias := []float32{0, 0}

	got := make([]float32, outputDims.FlatSize())
	im2col := make([]float32, im2colDims.FlatSize())
	ConvFloat(ActivationNone,
		input, inputDims, filter, filterDims,
		bias, tensor.MustDims(2, 1, 1, 1),
		2, 0, 0, got, outputDims, im2col, im2colDims)

	want := make([]float32, outputDims.FlatSize())
	naiveConvFloat(ActivationNone, input, inputDims, filter, filterDims,
		bias, 2, 0, 0, want, outputDims)

	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "element %d", i)
	}
}

func TestConvFloat_PointwiseSkipsIm2col(t *testing.T) {
	// A 1x1 stride-1 convolution is a per-position fully-connected layer
	// and must run without a scratch buffer.
	input := []float32{
		1, 2,
		3, 4,
		5, 6,
		7, 8,
	}
	inputDims := tensor.MustDims(2, 2, 2, 1)
	filter := []float32{1, 1, 1, -1}
	filterDims := tensor.MustDims(2, 1, 1, 2)
	bias := []float32{0, 10}
	outputDims := tensor.MustDims(2, 2, 2, 1)
	output := make([]float32, outputDims.FlatSize())

	ConvFloat(ActivationNone,
		input, inputDims, filter, filterDims,
		bias, tensor.MustDims(2, 1, 1, 1),
		1, 0, 0, output, outputDims, nil, tensor.Dims{})

	assert.Equal(t, []float32{
		3, 9,
		7, 9,
		11, 9,
		15, 9,
	}, output)
}

func TestConvFloat_PointwiseMatchesUnrolledPath(t *testing.T) {
	// The 1x1 stride-1 shortcut must be an optimization only: unrolling
	// the same call through an explicit im2col and a fully-connected
	// multiply has to produce bit-identical output.
	rng := rand.New(rand.NewSource(11))
	inputDims := tensor.MustDims(3, 5, 4, 2)
	filterDims := tensor.MustDims(3, 1, 1, 7)
	biasDims := tensor.MustDims(7, 1, 1, 1)
	outputDims := tensor.MustDims(7, 5, 4, 2)

	input := randomSlice(rng, inputDims.FlatSize())
	filter := randomSlice(rng, filterDims.FlatSize())
	bias := randomSlice(rng, 7)

	got := make([]float32, outputDims.FlatSize())
	ConvFloat(ActivationRelu6,
		input, inputDims, filter, filterDims,
		bias, biasDims,
		1, 0, 0, got, outputDims, nil, tensor.Dims{})

	im2col := make([]float32, inputDims.FlatSize())
	Im2col(input, inputDims, 1, 0, 0, 1, 1, 0, im2col, inputDims)
	want := make([]float32, outputDims.FlatSize())
	FullyConnectedFloat(ActivationRelu6,
		im2col, inputDims,
		filter, tensor.MustDims(3, 7, 1, 1),
		bias, biasDims,
		want, outputDims)

	assert.Equal(t, want, got)
}

func TestConvFloat_PanicsWithoutScratchBuffer(t *testing.T) {
	assert.Panics(t, func() {
		ConvFloat(ActivationNone,
			make([]float32, 9), tensor.MustDims(1, 3, 3, 1),
			make([]float32, 9), tensor.MustDims(1, 3, 3, 1),
			make([]float32, 1), tensor.MustDims(1, 1, 1, 1),
			1, 1, 1,
			make([]float32, 9), tensor.MustDims(1, 3, 3, 1),
			nil, tensor.Dims{})
	})
}

func TestConvQuantized_MatchesFloatReference(t *testing.T) {
	p := newQuantizedFCProblem()
	inputDims := tensor.MustDims(1, 4, 4, 1)
	filterDims := tensor.MustDims(1, 3, 3, 2)
	outputDims := tensor.MustDims(2, 4, 4, 1)
	im2colDims := tensor.MustDims(9, 4, 4, 1)

	// Real values are exact multiples of their scales, so the only error
	// left is the final rounding into the output scale.
	realInput := make([]float32, inputDims.FlatSize())
	input := make([]uint8, len(realInput))
	for i := range realInput {
		realInput[i] = float32(i%7) * 0.5
		input[i] = p.quantizeInput(realInput[i])
	}
	realFilter := make([]float32, filterDims.FlatSize())
	filter := make([]uint8, len(realFilter))
	for i := range realFilter {
		realFilter[i] = float32(i%5-2) * 0.25
		filter[i] = p.quantizeFilter(realFilter[i])
	}
	realBias := []float32{1, -1}
	bias := []int32{p.quantizeBias(realBias[0]), p.quantizeBias(realBias[1])}

	got := make([]uint8, outputDims.FlatSize())
	im2col := make([]uint8, im2colDims.FlatSize())
	ConvQuantized(gemm.NewContext(1), p.params,
		input, inputDims, filter, filterDims,
		bias, tensor.MustDims(2, 1, 1, 1),
		1, 1, 1, got, outputDims, im2col, im2colDims)

	want := make([]float32, outputDims.FlatSize())
	naiveConvFloat(ActivationNone, realInput, inputDims, realFilter, filterDims,
		realBias, 1, 1, 1, want, outputDims)

	for i := range want {
		assert.InDelta(t, want[i], p.dequantizeOutput(got[i]), 0.501, "element %d", i)
	}
}

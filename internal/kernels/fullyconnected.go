package kernels

import (
	"fmt"

	"github.com/tetra-ml/tetra/internal/gemm"
	"github.com/tetra-ml/tetra/internal/tensor"
)

// FullyConnectedFloat computes output = input × weightsᵀ + bias with a
// fused activation clamp.
//
// The weights matrix has one row per output channel; its row length (the
// depth extent of weightsDims) determines how many input elements feed one
// output, so any trailing input dimensions are flattened into the batch.
//
//	input:   [batches × inputDepth]   (flattened)
//	weights: [outputDepth × inputDepth]
//	bias:    [outputDepth]
//	output:  [batches × outputDepth]
func FullyConnectedFloat(activation Activation,
	input []float32, inputDims tensor.Dims,
	weights []float32, weightsDims tensor.Dims,
	bias []float32, biasDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	inputDepth := weightsDims.Extent(0)
	inputSize := flatSize("fullyconnected", inputDims)
	if inputSize%inputDepth != 0 {
		panic(fmt.Sprintf("fullyconnected: input size %d is not a multiple of weights depth %d",
			inputSize, inputDepth))
	}
	batches := inputSize / inputDepth
	outputDepth := weightsDims.Extent(1)
	if flatSize("fullyconnected", outputDims) != batches*outputDepth {
		panic(fmt.Sprintf("fullyconnected: output size %d, want %d batches x %d channels",
			outputDims.FlatSize(), batches, outputDepth))
	}
	if flatSize("fullyconnected", biasDims) != outputDepth {
		panic(fmt.Sprintf("fullyconnected: bias size %d, want %d", biasDims.FlatSize(), outputDepth))
	}

	gemm.MulABt(batches, inputDepth, outputDepth, input, weights, output)
	addBiasAndApplyActivation("fullyconnected", activation, bias[:outputDepth], output[:batches*outputDepth])
}

// FullyConnectedQuantizedParams carries the affine quantization
// parameters of one quantized fully-connected or convolution call. The
// offsets are the negated zero points of their tensors; the multiplier
// and shift requantize the int32 accumulator into the output scale.
type FullyConnectedQuantizedParams struct {
	InputOffset      int32
	FilterOffset     int32
	OutputOffset     int32
	OutputMultiplier int32
	OutputShift      int
	ActivationMin    int32
	ActivationMax    int32
}

// FullyConnectedQuantized is the uint8 variant of FullyConnectedFloat.
// Accumulation is exact in int32 over zero-point-corrected operands, and
// each accumulator passes through the requantization pipeline: bias add,
// multiplier rescale, output offset, clamp, narrow.
//
// A single-batch call whose output depth is a multiple of four takes the
// row-peeled matrix-vector path; it produces bit-identical results.
func FullyConnectedQuantized(ctx *gemm.Context, p FullyConnectedQuantizedParams,
	input []uint8, inputDims tensor.Dims,
	filter []uint8, filterDims tensor.Dims,
	bias []int32, biasDims tensor.Dims,
	output []uint8, outputDims tensor.Dims) {
	tensor.CheckPacked("fullyconnected", inputDims)
	tensor.CheckPacked("fullyconnected", filterDims)
	tensor.CheckPacked("fullyconnected", biasDims)
	tensor.CheckPacked("fullyconnected", outputDims)
	checkQuantizedActivationRange("fullyconnected", p.ActivationMin, p.ActivationMax, true)

	// As in the float path, trailing input dimensions fold into the batch.
	accumDepth := filterDims.Extent(0)
	inputSize := inputDims.FlatSize()
	if inputSize%accumDepth != 0 {
		panic(fmt.Sprintf("fullyconnected: input size %d is not a multiple of filter depth %d",
			inputSize, accumDepth))
	}
	batches := inputSize / accumDepth
	outputDepth := filterDims.Extent(1)
	if outputDims.Extent(0) != outputDepth {
		panic(fmt.Sprintf("fullyconnected: output depth %d, want %d", outputDims.Extent(0), outputDepth))
	}
	if outputDims.FlatSize() != batches*outputDepth {
		panic(fmt.Sprintf("fullyconnected: output size %d, want %d batches x %d channels",
			outputDims.FlatSize(), batches, outputDepth))
	}
	if biasDims.FlatSize() != outputDepth {
		panic(fmt.Sprintf("fullyconnected: bias size %d, want %d", biasDims.FlatSize(), outputDepth))
	}

	pipeline := &gemm.OutputPipeline{
		Bias:             bias,
		OutputOffset:     p.OutputOffset,
		OutputMultiplier: p.OutputMultiplier,
		OutputShift:      p.OutputShift,
		ActivationMin:    p.ActivationMin,
		ActivationMax:    p.ActivationMax,
	}
	if batches == 1 && outputDepth%4 == 0 {
		gemm.QuantizedGemv(filter, p.FilterOffset, input, p.InputOffset,
			output, outputDepth, accumDepth, pipeline)
		return
	}
	gemm.QuantizedGemm(ctx, filter, p.FilterOffset, input, p.InputOffset,
		output, outputDepth, accumDepth, batches, pipeline)
}

// Copyright 2026 Tetra ML Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ops

import (
	"github.com/tetra-ml/tetra/internal/gemm"
	"github.com/tetra-ml/tetra/internal/kernels"
	"github.com/tetra-ml/tetra/internal/tensor"
)

// Type aliases for public API

// Context carries the worker pool used by the quantized matrix kernels.
// It is externally owned: create one and reuse it across calls.
type Context = gemm.Context

// NewContext returns a Context with the given worker count; values below
// one select runtime.NumCPU().
func NewContext(workers int) *Context {
	return gemm.NewContext(workers)
}

// Activation selects the clamp fused into the tail of a float kernel.
type Activation = kernels.Activation

// Fused activation tags.
const (
	ActivationNone  = kernels.ActivationNone
	ActivationRelu  = kernels.ActivationRelu
	ActivationRelu1 = kernels.ActivationRelu1
	ActivationRelu6 = kernels.ActivationRelu6
)

// DType constrains the element types the layout operators are generic
// over.
type DType = kernels.DType

// FullyConnectedFloat computes output = input × weightsᵀ + bias with a
// fused activation clamp. The weights matrix has one row per output
// channel; trailing input dimensions fold into the batch.
func FullyConnectedFloat(activation Activation,
	input []float32, inputDims tensor.Dims,
	weights []float32, weightsDims tensor.Dims,
	bias []float32, biasDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	kernels.FullyConnectedFloat(activation,
		input, inputDims, weights, weightsDims, bias, biasDims, output, outputDims)
}

// ConvFloat computes a 2D convolution as an im2col unroll followed by one
// dense matrix multiply. im2col is caller-supplied scratch shaped
// [batches, outHeight, outWidth, kernelHeight*kernelWidth*inDepth]; pass
// nil for a 1x1 stride-1 kernel, which needs no unroll.
func ConvFloat(activation Activation,
	input []float32, inputDims tensor.Dims,
	filter []float32, filterDims tensor.Dims,
	bias []float32, biasDims tensor.Dims,
	stride, padWidth, padHeight int,
	output []float32, outputDims tensor.Dims,
	im2col []float32, im2colDims tensor.Dims) {
	kernels.ConvFloat(activation,
		input, inputDims, filter, filterDims, bias, biasDims,
		stride, padWidth, padHeight, output, outputDims, im2col, im2colDims)
}

// Im2col unrolls convolution patches into the columns of a matrix.
// Out-of-image positions are filled with zeroValue.
func Im2col[T DType](input []T, inputDims tensor.Dims,
	stride, padWidth, padHeight, kernelHeight, kernelWidth int,
	zeroValue T, output []T, outputDims tensor.Dims) {
	kernels.Im2col(input, inputDims, stride, padWidth, padHeight,
		kernelHeight, kernelWidth, zeroValue, output, outputDims)
}

// AveragePoolFloat averages each pooling window, dividing by the true
// in-bounds coverage of border windows.
func AveragePoolFloat(activation Activation,
	input []float32, inputDims tensor.Dims,
	stride, padWidth, padHeight, kernelWidth, kernelHeight int,
	output []float32, outputDims tensor.Dims) {
	kernels.AveragePoolFloat(activation, input, inputDims,
		stride, padWidth, padHeight, kernelWidth, kernelHeight, output, outputDims)
}

// MaxPoolFloat takes the maximum over each pooling window.
func MaxPoolFloat(activation Activation,
	input []float32, inputDims tensor.Dims,
	stride, padWidth, padHeight, kernelWidth, kernelHeight int,
	output []float32, outputDims tensor.Dims) {
	kernels.MaxPoolFloat(activation, input, inputDims,
		stride, padWidth, padHeight, kernelWidth, kernelHeight, output, outputDims)
}

// L2PoolFloat pools the root-mean-square of each window.
func L2PoolFloat(activation Activation,
	input []float32, inputDims tensor.Dims,
	stride, padWidth, padHeight, kernelWidth, kernelHeight int,
	output []float32, outputDims tensor.Dims) {
	kernels.L2PoolFloat(activation, input, inputDims,
		stride, padWidth, padHeight, kernelWidth, kernelHeight, output, outputDims)
}

// AddFloat computes the elementwise sum of two same-shape tensors.
func AddFloat(activation Activation,
	input1 []float32, input1Dims tensor.Dims,
	input2 []float32, input2Dims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	kernels.AddFloat(activation, input1, input1Dims, input2, input2Dims, output, outputDims)
}

// MulFloat computes the elementwise product of two same-shape tensors.
func MulFloat(activation Activation,
	input1 []float32, input1Dims tensor.Dims,
	input2 []float32, input2Dims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	kernels.MulFloat(activation, input1, input1Dims, input2, input2Dims, output, outputDims)
}

// BroadcastAddFloat is AddFloat over shapes that differ by extent-1
// dimensions.
func BroadcastAddFloat(activation Activation,
	input1 []float32, input1Dims tensor.Dims,
	input2 []float32, input2Dims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	kernels.BroadcastAddFloat(activation, input1, input1Dims, input2, input2Dims, output, outputDims)
}

// BroadcastMulFloat is MulFloat with broadcasting.
func BroadcastMulFloat(activation Activation,
	input1 []float32, input1Dims tensor.Dims,
	input2 []float32, input2Dims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	kernels.BroadcastMulFloat(activation, input1, input1Dims, input2, input2Dims, output, outputDims)
}

// GlobalBatchNormalization normalizes with per-channel statistics:
// output = (input - mean[c]) * multiplier[c] + offset[c].
func GlobalBatchNormalization(activation Activation,
	input []float32, inputDims tensor.Dims,
	mean []float32, meanDims tensor.Dims,
	multiplier []float32, multiplierDims tensor.Dims,
	offset []float32, offsetDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	kernels.GlobalBatchNormalization(activation, input, inputDims,
		mean, meanDims, multiplier, multiplierDims, offset, offsetDims, output, outputDims)
}

// NonGlobalBatchNormalization is GlobalBatchNormalization with
// per-position statistics shared across batches only.
func NonGlobalBatchNormalization(activation Activation,
	input []float32, inputDims tensor.Dims,
	mean []float32, meanDims tensor.Dims,
	multiplier []float32, multiplierDims tensor.Dims,
	offset []float32, offsetDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	kernels.NonGlobalBatchNormalization(activation, input, inputDims,
		mean, meanDims, multiplier, multiplierDims, offset, offsetDims, output, outputDims)
}

// LocalResponseNormalization divides each element by
// (bias + alpha * sum of squares over a channel window)^beta.
func LocalResponseNormalization(
	input []float32, inputDims tensor.Dims,
	rangeSize int, bias, alpha, beta float32,
	output []float32, outputDims tensor.Dims) {
	kernels.LocalResponseNormalization(input, inputDims, rangeSize, bias, alpha, beta, output, outputDims)
}

// L2NormalizationFloat scales each channel vector to unit Euclidean norm.
func L2NormalizationFloat(
	input []float32, inputDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	kernels.L2NormalizationFloat(input, inputDims, output, outputDims)
}

// SoftmaxFloat computes softmax over the channel dimension of each
// position, with inputs scaled by beta.
func SoftmaxFloat(
	input []float32, inputDims tensor.Dims,
	beta float32,
	output []float32, outputDims tensor.Dims) {
	kernels.SoftmaxFloat(input, inputDims, beta, output, outputDims)
}

// ReluFloat clamps each element to [0, inf).
func ReluFloat(input []float32, inputDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	kernels.ReluFloat(input, inputDims, output, outputDims)
}

// Relu1Float clamps each element to [-1, 1].
func Relu1Float(input []float32, inputDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	kernels.Relu1Float(input, inputDims, output, outputDims)
}

// Relu6Float clamps each element to [0, 6].
func Relu6Float(input []float32, inputDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	kernels.Relu6Float(input, inputDims, output, outputDims)
}

// LogisticFloat applies the logistic sigmoid elementwise.
func LogisticFloat(input []float32, inputDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	kernels.LogisticFloat(input, inputDims, output, outputDims)
}

// TanhFloat applies the hyperbolic tangent elementwise.
func TanhFloat(input []float32, inputDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	kernels.TanhFloat(input, inputDims, output, outputDims)
}

// LstmCellFloat advances a fused LSTM cell by one step. See the package
// example for the expected weight and scratch shapes.
func LstmCellFloat(
	input []float32, inputDims tensor.Dims,
	prevActiv []float32, prevActivDims tensor.Dims,
	weights []float32, weightsDims tensor.Dims,
	bias []float32, biasDims tensor.Dims,
	prevState []float32, prevStateDims tensor.Dims,
	outputState []float32, outputStateDims tensor.Dims,
	outputActiv []float32, outputActivDims tensor.Dims,
	concatTemp []float32, concatTempDims tensor.Dims,
	activTemp []float32, activTempDims tensor.Dims) {
	kernels.LstmCellFloat(input, inputDims, prevActiv, prevActivDims,
		weights, weightsDims, bias, biasDims, prevState, prevStateDims,
		outputState, outputStateDims, outputActiv, outputActivDims,
		concatTemp, concatTempDims, activTemp, activTempDims)
}

// Concatenation joins the inputs along concatDim into a packed output.
func Concatenation[T DType](concatDim int,
	inputs [][]T, inputDims []tensor.Dims,
	output []T, outputDims tensor.Dims) {
	kernels.Concatenation(concatDim, inputs, inputDims, output, outputDims)
}

// DepthConcatenation joins the inputs along the channel dimension.
func DepthConcatenation[T DType](inputs [][]T, inputDims []tensor.Dims,
	output []T, outputDims tensor.Dims) {
	kernels.DepthConcatenation(inputs, inputDims, output, outputDims)
}

// Split deals the input's channel dimension out across the outputs.
func Split[T DType](input []T, inputDims tensor.Dims,
	outputs [][]T, outputDims []tensor.Dims) {
	kernels.Split(input, inputDims, outputs, outputDims)
}

// DepthToSpace rearranges blockSize² groups of channels into
// blockSize × blockSize spatial blocks.
func DepthToSpace[T DType](input []T, inputDims tensor.Dims,
	blockSize int,
	output []T, outputDims tensor.Dims) {
	kernels.DepthToSpace(input, inputDims, blockSize, output, outputDims)
}

// SpaceToDepth is the inverse of DepthToSpace.
func SpaceToDepth[T DType](input []T, inputDims tensor.Dims,
	blockSize int,
	output []T, outputDims tensor.Dims) {
	kernels.SpaceToDepth(input, inputDims, blockSize, output, outputDims)
}

// ResizeBilinear resamples the spatial dimensions by bilinear
// interpolation.
func ResizeBilinear(
	input []float32, inputDims tensor.Dims,
	outputHeight, outputWidth int,
	output []float32, outputDims tensor.Dims) {
	kernels.ResizeBilinear(input, inputDims, outputHeight, outputWidth, output, outputDims)
}

// Cast converts between numeric element types with Go conversion
// semantics.
func Cast[Src, Dst DType](
	input []Src, inputDims tensor.Dims,
	output []Dst, outputDims tensor.Dims) {
	kernels.Cast(input, inputDims, output, outputDims)
}

// Floor rounds each element down to the nearest integer.
func Floor(input []float32, inputDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	kernels.Floor(input, inputDims, output, outputDims)
}

// Gather copies input slices selected by coordinates along dimension
// inputRank-1, one contiguous block per coordinate.
func Gather[T DType](
	input []T, inputDims tensor.Dims, inputRank int,
	coords []int32, coordsDims tensor.Dims,
	output []T, outputDims tensor.Dims) {
	kernels.Gather(input, inputDims, inputRank, coords, coordsDims, output, outputDims)
}

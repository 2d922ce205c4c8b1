// Copyright 2026 Tetra ML Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ops

import (
	"github.com/tetra-ml/tetra/internal/fixedpoint"
	"github.com/tetra-ml/tetra/internal/kernels"
	"github.com/tetra-ml/tetra/internal/tensor"
)

// QuantizeMultiplierSmallerThanOne decomposes a real multiplier in
// (0, 1) into a Q0.31 fixed-point multiplier and a right shift, as
// consumed by the quantized kernel parameter structs.
func QuantizeMultiplierSmallerThanOne(multiplier float64) (quantized int32, rightShift int) {
	return fixedpoint.QuantizeMultiplierSmallerThanOne(multiplier)
}

// QuantizeMultiplierGreaterThanOne decomposes a real multiplier greater
// than one into a Q0.31 fixed-point multiplier and a left shift.
func QuantizeMultiplierGreaterThanOne(multiplier float64) (quantized int32, leftShift int) {
	return fixedpoint.QuantizeMultiplierGreaterThanOne(multiplier)
}

// CalculateInputRadius reports the largest scaled input magnitude that
// the fixed-point softmax and logistic kernels can represent without
// overflow for the given integer-bit budget.
func CalculateInputRadius(inputIntegerBits, inputLeftShift int) int32 {
	return fixedpoint.CalculateInputRadius(inputIntegerBits, inputLeftShift)
}

// FullyConnectedQuantizedParams carries the affine quantization
// parameters of one quantized fully-connected or convolution call.
type FullyConnectedQuantizedParams = kernels.FullyConnectedQuantizedParams

// AddQuantizedParams carries the per-operand quantization parameters of a
// quantized Add.
type AddQuantizedParams = kernels.AddQuantizedParams

// MulQuantizedParams carries the quantization parameters of a quantized
// Mul.
type MulQuantizedParams = kernels.MulQuantizedParams

// FullyConnectedQuantized is the uint8 variant of FullyConnectedFloat:
// exact int32 accumulation over zero-point-corrected operands followed by
// the requantization pipeline.
func FullyConnectedQuantized(ctx *Context, p FullyConnectedQuantizedParams,
	input []uint8, inputDims tensor.Dims,
	filter []uint8, filterDims tensor.Dims,
	bias []int32, biasDims tensor.Dims,
	output []uint8, outputDims tensor.Dims) {
	kernels.FullyConnectedQuantized(ctx, p,
		input, inputDims, filter, filterDims, bias, biasDims, output, outputDims)
}

// ConvQuantized is the uint8 variant of ConvFloat. The im2col padding
// fill uses the input zero point so padded positions contribute real
// value zero.
func ConvQuantized(ctx *Context, p FullyConnectedQuantizedParams,
	input []uint8, inputDims tensor.Dims,
	filter []uint8, filterDims tensor.Dims,
	bias []int32, biasDims tensor.Dims,
	stride, padWidth, padHeight int,
	output []uint8, outputDims tensor.Dims,
	im2col []uint8, im2colDims tensor.Dims) {
	kernels.ConvQuantized(ctx, p, input, inputDims, filter, filterDims,
		bias, biasDims, stride, padWidth, padHeight, output, outputDims, im2col, im2colDims)
}

// AveragePoolQuantized averages each pooling window of a uint8 tensor
// with round-half-up division and an explicit clamp range.
func AveragePoolQuantized(
	input []uint8, inputDims tensor.Dims,
	stride, padWidth, padHeight, kernelWidth, kernelHeight int,
	activationMin, activationMax int32,
	output []uint8, outputDims tensor.Dims) {
	kernels.AveragePoolQuantized(input, inputDims,
		stride, padWidth, padHeight, kernelWidth, kernelHeight,
		activationMin, activationMax, output, outputDims)
}

// MaxPoolQuantized takes the window maximum of a uint8 tensor.
func MaxPoolQuantized(
	input []uint8, inputDims tensor.Dims,
	stride, padWidth, padHeight, kernelWidth, kernelHeight int,
	activationMin, activationMax int32,
	output []uint8, outputDims tensor.Dims) {
	kernels.MaxPoolQuantized(input, inputDims,
		stride, padWidth, padHeight, kernelWidth, kernelHeight,
		activationMin, activationMax, output, outputDims)
}

// AddQuantized computes the elementwise sum of two uint8 tensors in the
// shared headroom scale described by p.
func AddQuantized(p AddQuantizedParams,
	input1 []uint8, input1Dims tensor.Dims,
	input2 []uint8, input2Dims tensor.Dims,
	output []uint8, outputDims tensor.Dims) {
	kernels.AddQuantized(p, input1, input1Dims, input2, input2Dims, output, outputDims)
}

// BroadcastAddQuantized is AddQuantized with broadcasting.
func BroadcastAddQuantized(p AddQuantizedParams,
	input1 []uint8, input1Dims tensor.Dims,
	input2 []uint8, input2Dims tensor.Dims,
	output []uint8, outputDims tensor.Dims) {
	kernels.BroadcastAddQuantized(p, input1, input1Dims, input2, input2Dims, output, outputDims)
}

// MulQuantized computes the elementwise product of two uint8 tensors.
func MulQuantized(p MulQuantizedParams,
	input1 []uint8, input1Dims tensor.Dims,
	input2 []uint8, input2Dims tensor.Dims,
	output []uint8, outputDims tensor.Dims) {
	kernels.MulQuantized(p, input1, input1Dims, input2, input2Dims, output, outputDims)
}

// BroadcastMulQuantized is MulQuantized with broadcasting.
func BroadcastMulQuantized(p MulQuantizedParams,
	input1 []uint8, input1Dims tensor.Dims,
	input2 []uint8, input2Dims tensor.Dims,
	output []uint8, outputDims tensor.Dims) {
	kernels.BroadcastMulQuantized(p, input1, input1Dims, input2, input2Dims, output, outputDims)
}

// L2NormalizationQuantized normalizes a single uint8 channel vector in
// integer arithmetic, centering the result at 128.
func L2NormalizationQuantized(
	input []uint8, inputDims tensor.Dims, inputZeroPoint int32,
	output []uint8, outputDims tensor.Dims) {
	kernels.L2NormalizationQuantized(input, inputDims, inputZeroPoint, output, outputDims)
}

// SoftmaxQuantized computes softmax over the channel dimension entirely
// in fixed point; the output quantization is fixed at scale 1/256, zero
// point 0.
func SoftmaxQuantized(
	input []uint8, inputDims tensor.Dims,
	inputBetaMultiplier int32, inputBetaLeftShift int,
	diffMin int32,
	output []uint8, outputDims tensor.Dims) {
	kernels.SoftmaxQuantized(input, inputDims,
		inputBetaMultiplier, inputBetaLeftShift, diffMin, output, outputDims)
}

// LogisticQuantized applies the fixed-point logistic sigmoid to a uint8
// tensor; the output quantization is fixed at scale 1/256, zero point 0.
func LogisticQuantized(
	input []uint8, inputDims tensor.Dims,
	inputZeroPoint, inputRangeRadius int32,
	inputMultiplier int32, inputLeftShift int,
	output []uint8, outputDims tensor.Dims) {
	kernels.LogisticQuantized(input, inputDims, inputZeroPoint, inputRangeRadius,
		inputMultiplier, inputLeftShift, output, outputDims)
}

// Dequantize converts a uint8 tensor to float32.
func Dequantize(
	input []uint8, inputDims tensor.Dims,
	params tensor.QuantParams,
	output []float32, outputDims tensor.Dims) {
	kernels.Dequantize(input, inputDims, params, output, outputDims)
}

// Quantize converts a float32 tensor to uint8 with round-to-nearest and
// saturation.
func Quantize(
	input []float32, inputDims tensor.Dims,
	params tensor.QuantParams,
	output []uint8, outputDims tensor.Dims) {
	kernels.Quantize(input, inputDims, params, output, outputDims)
}

// DequantizeFloat16 widens IEEE 754 half-precision bit patterns to
// float32.
func DequantizeFloat16(
	input []uint16, inputDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	kernels.DequantizeFloat16(input, inputDims, output, outputDims)
}

// FakeQuant simulates 8-bit quantization of a float tensor over the real
// range [rmin, rmax], which must contain zero.
func FakeQuant(
	input []float32, inputDims tensor.Dims,
	rmin, rmax float32,
	output []float32, outputDims tensor.Dims) {
	kernels.FakeQuant(input, inputDims, rmin, rmax, output, outputDims)
}

// CalculateActivationRangeUint8 converts a fused activation tag into the
// explicit clamp bounds the quantized kernels take.
func CalculateActivationRangeUint8(activation Activation, params tensor.QuantParams) (min, max int32) {
	return kernels.CalculateActivationRangeUint8(activation, params)
}

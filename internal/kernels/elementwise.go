package kernels

import (
	"fmt"

	"github.com/tetra-ml/tetra/internal/fixedpoint"
	"github.com/tetra-ml/tetra/internal/tensor"
)

// AddFloat computes the elementwise sum of two same-shape packed tensors
// with a fused activation clamp.
func AddFloat(activation Activation,
	input1 []float32, input1Dims tensor.Dims,
	input2 []float32, input2Dims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	size := matchingFlatSize("add", outputDims, input1Dims, input2Dims)
	addFuncs.vector(input1[:size], input2[:size], output[:size])
	if activation != ActivationNone {
		for i, v := range output[:size] {
			output[i] = activation.Apply(v)
		}
	}
}

// MulFloat computes the elementwise product of two same-shape packed
// tensors with a fused activation clamp.
func MulFloat(activation Activation,
	input1 []float32, input1Dims tensor.Dims,
	input2 []float32, input2Dims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	size := matchingFlatSize("mul", outputDims, input1Dims, input2Dims)
	mulFuncs.vector(input1[:size], input2[:size], output[:size])
	if activation != ActivationNone {
		for i, v := range output[:size] {
			output[i] = activation.Apply(v)
		}
	}
}

// AddQuantizedParams carries the per-operand quantization parameters of
// a quantized Add. Each operand is offset by its negated zero point,
// shifted left by LeftShift bits of shared headroom, and rescaled into a
// common accumulation scale before the sum; the result is rescaled into
// the output scale.
type AddQuantizedParams struct {
	LeftShift        int
	Input1Offset     int32
	Input1Multiplier int32
	Input1Shift      int
	Input2Offset     int32
	Input2Multiplier int32
	Input2Shift      int
	OutputOffset     int32
	OutputMultiplier int32
	OutputShift      int
}

func (p *AddQuantizedParams) validate(name string) {
	if p.Input1Offset <= -256 || p.Input1Offset >= 256 {
		panic(fmt.Sprintf("%s: input1 offset %d outside (-256, 256)", name, p.Input1Offset))
	}
	if p.Input2Offset <= -256 || p.Input2Offset >= 256 {
		panic(fmt.Sprintf("%s: input2 offset %d outside (-256, 256)", name, p.Input2Offset))
	}
}

func (p *AddQuantizedParams) apply(raw1, raw2 uint8) uint8 {
	input1Val := p.Input1Offset + int32(raw1)
	input2Val := p.Input2Offset + int32(raw2)
	shiftedInput1Val := input1Val * (1 << uint(p.LeftShift))
	shiftedInput2Val := input2Val * (1 << uint(p.LeftShift))
	scaledInput1Val := fixedpoint.MultiplyByQuantizedMultiplierSmallerThanOne(
		shiftedInput1Val, p.Input1Multiplier, p.Input1Shift)
	scaledInput2Val := fixedpoint.MultiplyByQuantizedMultiplierSmallerThanOne(
		shiftedInput2Val, p.Input2Multiplier, p.Input2Shift)
	rawSum := scaledInput1Val + scaledInput2Val
	rawOutput := fixedpoint.MultiplyByQuantizedMultiplierSmallerThanOne(
		rawSum, p.OutputMultiplier, p.OutputShift) + p.OutputOffset
	return uint8(clampQuantized(rawOutput, 0, 255))
}

// AddQuantized computes the elementwise sum of two same-shape packed
// uint8 tensors in the shared headroom scale described by p.
func AddQuantized(p AddQuantizedParams,
	input1 []uint8, input1Dims tensor.Dims,
	input2 []uint8, input2Dims tensor.Dims,
	output []uint8, outputDims tensor.Dims) {
	p.validate("add")
	size := matchingFlatSize("add", outputDims, input1Dims, input2Dims)
	for i := 0; i < size; i++ {
		output[i] = p.apply(input1[i], input2[i])
	}
}

// BroadcastAddFloat is AddFloat over operands whose shapes differ by
// extent-1 dimensions: each extent-1 dimension is walked with stride
// zero against the other operand's full extent.
func BroadcastAddFloat(activation Activation,
	input1 []float32, input1Dims tensor.Dims,
	input2 []float32, input2Dims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	desc1, desc2 := tensor.BroadcastDescs(input1Dims, input2Dims)
	for b := 0; b < outputDims.Extent(3); b++ {
		for y := 0; y < outputDims.Extent(2); y++ {
			for x := 0; x < outputDims.Extent(1); x++ {
				for c := 0; c < outputDims.Extent(0); c++ {
					output[outputDims.Offset(c, x, y, b)] = activation.Apply(
						input1[desc1.SubscriptToIndex(c, x, y, b)] +
							input2[desc2.SubscriptToIndex(c, x, y, b)])
				}
			}
		}
	}
}

// BroadcastMulFloat is MulFloat with broadcasting.
func BroadcastMulFloat(activation Activation,
	input1 []float32, input1Dims tensor.Dims,
	input2 []float32, input2Dims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	desc1, desc2 := tensor.BroadcastDescs(input1Dims, input2Dims)
	for b := 0; b < outputDims.Extent(3); b++ {
		for y := 0; y < outputDims.Extent(2); y++ {
			for x := 0; x < outputDims.Extent(1); x++ {
				for c := 0; c < outputDims.Extent(0); c++ {
					output[outputDims.Offset(c, x, y, b)] = activation.Apply(
						input1[desc1.SubscriptToIndex(c, x, y, b)] *
							input2[desc2.SubscriptToIndex(c, x, y, b)])
				}
			}
		}
	}
}

// BroadcastAddQuantized is AddQuantized with broadcasting.
func BroadcastAddQuantized(p AddQuantizedParams,
	input1 []uint8, input1Dims tensor.Dims,
	input2 []uint8, input2Dims tensor.Dims,
	output []uint8, outputDims tensor.Dims) {
	p.validate("add")
	desc1, desc2 := tensor.BroadcastDescs(input1Dims, input2Dims)
	for b := 0; b < outputDims.Extent(3); b++ {
		for y := 0; y < outputDims.Extent(2); y++ {
			for x := 0; x < outputDims.Extent(1); x++ {
				for c := 0; c < outputDims.Extent(0); c++ {
					output[outputDims.Offset(c, x, y, b)] = p.apply(
						input1[desc1.SubscriptToIndex(c, x, y, b)],
						input2[desc2.SubscriptToIndex(c, x, y, b)])
				}
			}
		}
	}
}

// MulQuantizedParams carries the quantization parameters of a quantized
// Mul. The product of the zero-point-corrected operands is already in the
// product scale, so only one output rescale is needed.
type MulQuantizedParams struct {
	Input1Offset     int32
	Input2Offset     int32
	OutputOffset     int32
	OutputMultiplier int32
	OutputShift      int
}

func (p *MulQuantizedParams) apply(raw1, raw2 uint8) uint8 {
	input1Val := p.Input1Offset + int32(raw1)
	input2Val := p.Input2Offset + int32(raw2)
	unclamped := p.OutputOffset + fixedpoint.MultiplyByQuantizedMultiplierSmallerThanOne(
		input1Val*input2Val, p.OutputMultiplier, p.OutputShift)
	return uint8(clampQuantized(unclamped, 0, 255))
}

// MulQuantized computes the elementwise product of two same-shape packed
// uint8 tensors.
func MulQuantized(p MulQuantizedParams,
	input1 []uint8, input1Dims tensor.Dims,
	input2 []uint8, input2Dims tensor.Dims,
	output []uint8, outputDims tensor.Dims) {
	size := matchingFlatSize("mul", outputDims, input1Dims, input2Dims)
	for i := 0; i < size; i++ {
		output[i] = p.apply(input1[i], input2[i])
	}
}

// BroadcastMulQuantized is MulQuantized with broadcasting.
func BroadcastMulQuantized(p MulQuantizedParams,
	input1 []uint8, input1Dims tensor.Dims,
	input2 []uint8, input2Dims tensor.Dims,
	output []uint8, outputDims tensor.Dims) {
	desc1, desc2 := tensor.BroadcastDescs(input1Dims, input2Dims)
	for b := 0; b < outputDims.Extent(3); b++ {
		for y := 0; y < outputDims.Extent(2); y++ {
			for x := 0; x < outputDims.Extent(1); x++ {
				for c := 0; c < outputDims.Extent(0); c++ {
					output[outputDims.Offset(c, x, y, b)] = p.apply(
						input1[desc1.SubscriptToIndex(c, x, y, b)],
						input2[desc2.SubscriptToIndex(c, x, y, b)])
				}
			}
		}
	}
}

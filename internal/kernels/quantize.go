package kernels

import (
	"fmt"
	"math"

	"github.com/x448/float16"

	"github.com/tetra-ml/tetra/internal/tensor"
)

// Dequantize converts a uint8 tensor to float32:
// real = scale * (q - zeroPoint).
func Dequantize(
	input []uint8, inputDims tensor.Dims,
	params tensor.QuantParams,
	output []float32, outputDims tensor.Dims) {
	size := matchingFlatSize("dequantize", outputDims, inputDims)
	for i, v := range input[:size] {
		output[i] = float32(params.Dequantize(v))
	}
}

// Quantize converts a float32 tensor to uint8 with round-to-nearest and
// saturation at the ends of the uint8 range.
func Quantize(
	input []float32, inputDims tensor.Dims,
	params tensor.QuantParams,
	output []uint8, outputDims tensor.Dims) {
	size := matchingFlatSize("quantize", outputDims, inputDims)
	for i, v := range input[:size] {
		output[i] = params.Quantize(float64(v))
	}
}

// DequantizeFloat16 widens an IEEE 754 half-precision tensor, given as
// raw uint16 bit patterns, to float32.
func DequantizeFloat16(
	input []uint16, inputDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	size := matchingFlatSize("dequantize", outputDims, inputDims)
	for i, v := range input[:size] {
		output[i] = float16.Frombits(v).Float32()
	}
}

// FakeQuant simulates 8-bit quantization of a float tensor: it derives
// quantization parameters from the real range [rmin, rmax], nudges the
// zero point to an integer, and writes each value rounded to its nearest
// representable quantized level. Training graphs use it to expose
// quantization error to the optimizer.
//
// The range must contain zero so that real zero is exactly representable.
func FakeQuant(
	input []float32, inputDims tensor.Dims,
	rmin, rmax float32,
	output []float32, outputDims tensor.Dims) {
	if rmin > 0 || rmax < 0 {
		panic(fmt.Sprintf("fakequant: range [%v, %v] must contain 0", rmin, rmax))
	}
	const (
		qminFloat float32 = 0
		qmaxFloat float32 = 255
	)
	var zeroPoint int32
	var scale float32
	// rmin == rmax can only be the degenerate all-zero range.
	if rmin != rmax {
		scale = (rmax - rmin) / (qmaxFloat - qminFloat)

		// The zero point solves the affine map at either end of the
		// range; picking the end with the smaller terms keeps the
		// float error down before the integer nudge.
		zeroPointFromMin := qminFloat - rmin/scale
		zeroPointFromMax := qmaxFloat - rmax/scale
		zeroPointFromMinError := abs32(qminFloat) + abs32(rmin/scale)
		zeroPointFromMaxError := abs32(qmaxFloat) + abs32(rmax/scale)
		zeroPointFloat := zeroPointFromMax
		if zeroPointFromMinError < zeroPointFromMaxError {
			zeroPointFloat = zeroPointFromMin
		}
		switch {
		case zeroPointFloat < qminFloat:
			zeroPoint = int32(qminFloat)
		case zeroPointFloat > qmaxFloat:
			zeroPoint = int32(qmaxFloat)
		default:
			zeroPoint = int32(math.Round(float64(zeroPointFloat)))
		}
	}

	size := matchingFlatSize("fakequant", outputDims, inputDims)
	for i, v := range input[:size] {
		if scale == 0 {
			output[i] = 0
			continue
		}
		unclamped := float32(math.Round(float64(float32(zeroPoint) + v/scale)))
		quantized := unclamped
		if quantized < qminFloat {
			quantized = qminFloat
		}
		if quantized > qmaxFloat {
			quantized = qmaxFloat
		}
		output[i] = scale * (quantized - float32(zeroPoint))
	}
}

// CalculateActivationRangeUint8 converts a fused activation tag into the
// explicit quantized clamp bounds the uint8 kernels take: the
// activation's real bounds quantized into the output scale and clipped to
// the uint8 domain.
func CalculateActivationRangeUint8(activation Activation, params tensor.QuantParams) (min, max int32) {
	quantize := func(v float64) int32 {
		return clampQuantized(params.ZeroPoint+int32(math.Round(v/params.Scale)), 0, 255)
	}
	switch activation {
	case ActivationNone:
		return 0, 255
	case ActivationRelu:
		return quantize(0), 255
	case ActivationRelu1:
		return quantize(-1), quantize(1)
	case ActivationRelu6:
		return quantize(0), quantize(6)
	default:
		panic(fmt.Sprintf("kernels: unknown activation %d", int(activation)))
	}
}

// Cast converts between numeric element types with Go conversion
// semantics (truncation toward zero for float to integer).
func Cast[Src, Dst DType](
	input []Src, inputDims tensor.Dims,
	output []Dst, outputDims tensor.Dims) {
	size := matchingFlatSize("cast", outputDims, inputDims)
	for i, v := range input[:size] {
		output[i] = Dst(v)
	}
}

// Floor rounds each element down to the nearest integer.
func Floor(input []float32, inputDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	size := matchingFlatSize("floor", outputDims, inputDims)
	for i, v := range input[:size] {
		output[i] = float32(math.Floor(float64(v)))
	}
}

// Gather copies input slices selected by coordinates along the outermost
// used dimension. inputRank names how many dimensions the input actually
// uses; each coordinate indexes dimension inputRank-1 and selects one
// contiguous block of the dimensions below it. Out-of-range coordinates
// panic.
func Gather[T DType](
	input []T, inputDims tensor.Dims, inputRank int,
	coords []int32, coordsDims tensor.Dims,
	output []T, outputDims tensor.Dims) {
	if inputRank < 1 || inputRank > tensor.Rank {
		panic(fmt.Sprintf("gather: input rank %d outside [1, %d]", inputRank, tensor.Rank))
	}
	tensor.CheckPacked("gather", inputDims)
	tensor.CheckPacked("gather", outputDims)
	count := coordsDims.Extent(0)
	if outputDims.Extent(inputRank-1) != count {
		panic(fmt.Sprintf("gather: output extent %d on dimension %d, want one block per coordinate (%d)",
			outputDims.Extent(inputRank-1), inputRank-1, count))
	}
	blockSize := inputDims.Strides[inputRank-1]
	axisExtent := inputDims.Extent(inputRank - 1)
	out := output
	for i := 0; i < count; i++ {
		coord := int(coords[i])
		if coord < 0 || coord >= axisExtent {
			panic(fmt.Sprintf("gather: coordinate %d at index %d outside dimension of extent %d",
				coord, i, axisExtent))
		}
		copy(out[:blockSize], input[coord*blockSize:])
		out = out[blockSize:]
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

package kernels

import (
	"math"

	"github.com/tetra-ml/tetra/internal/fixedpoint"
	"github.com/tetra-ml/tetra/internal/tensor"
)

// ReluFloat clamps each element to [0, inf).
func ReluFloat(input []float32, inputDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	size := matchingFlatSize("relu", outputDims, inputDims)
	for i, v := range input[:size] {
		if v < 0 {
			v = 0
		}
		output[i] = v
	}
}

// Relu1Float clamps each element to [-1, 1].
func Relu1Float(input []float32, inputDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	size := matchingFlatSize("relu1", outputDims, inputDims)
	for i, v := range input[:size] {
		output[i] = ActivationRelu1.Apply(v)
	}
}

// Relu6Float clamps each element to [0, 6].
func Relu6Float(input []float32, inputDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	size := matchingFlatSize("relu6", outputDims, inputDims)
	for i, v := range input[:size] {
		output[i] = ActivationRelu6.Apply(v)
	}
}

// LogisticFloat applies the logistic sigmoid elementwise.
func LogisticFloat(input []float32, inputDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	size := matchingFlatSize("logistic", outputDims, inputDims)
	for i, v := range input[:size] {
		output[i] = float32(1 / (1 + math.Exp(-float64(v))))
	}
}

// TanhFloat applies the hyperbolic tangent elementwise.
func TanhFloat(input []float32, inputDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	size := matchingFlatSize("tanh", outputDims, inputDims)
	for i, v := range input[:size] {
		output[i] = float32(math.Tanh(float64(v)))
	}
}

// LogisticQuantized applies the fixed-point logistic sigmoid to a uint8
// tensor. Inputs beyond inputRangeRadius are already saturated: they map
// straight to 0 or 255. In-range inputs are centered by the zero point,
// widened into Q4.27 by the input multiplier, passed through the
// fixed-point sigmoid, and narrowed from Q0.31 to the fixed output
// quantization (scale 1/256, zero point 0); the rounding there can reach
// 256, which collapses to 255.
func LogisticQuantized(
	input []uint8, inputDims tensor.Dims,
	inputZeroPoint, inputRangeRadius int32,
	inputMultiplier int32, inputLeftShift int,
	output []uint8, outputDims tensor.Dims) {
	batches := tensor.MatchingExtent(3, inputDims, outputDims)
	height := tensor.MatchingExtent(2, inputDims, outputDims)
	width := tensor.MatchingExtent(1, inputDims, outputDims)
	depth := tensor.MatchingExtent(0, inputDims, outputDims)

	const inputIntegerBits = 4
	for b := 0; b < batches; b++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				for c := 0; c < depth; c++ {
					centered := int32(input[inputDims.Offset(c, x, y, b)]) - inputZeroPoint
					var outputVal uint8
					switch {
					case centered < -inputRangeRadius:
						outputVal = 0
					case centered > inputRangeRadius:
						outputVal = 255
					default:
						rescaled := fixedpoint.MultiplyByQuantizedMultiplierGreaterThanOne(
							centered, inputMultiplier, inputLeftShift)
						logit := fixedpoint.Logistic(rescaled, inputIntegerBits)
						v := fixedpoint.RoundingDivideByPOT(logit, 23)
						if v == 256 {
							v = 255
						}
						outputVal = uint8(v)
					}
					output[outputDims.Offset(c, x, y, b)] = outputVal
				}
			}
		}
	}
}

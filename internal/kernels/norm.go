package kernels

import (
	"math"

	"github.com/tetra-ml/tetra/internal/fixedpoint"
	"github.com/tetra-ml/tetra/internal/tensor"
)

// GlobalBatchNormalization normalizes every element with per-channel
// statistics: output = (input - mean[c]) * multiplier[c] + offset[c].
// The multiplier is the caller's precomputed 1/sqrt(var + epsilon) fold.
func GlobalBatchNormalization(activation Activation,
	input []float32, inputDims tensor.Dims,
	mean []float32, meanDims tensor.Dims,
	multiplier []float32, multiplierDims tensor.Dims,
	offset []float32, offsetDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	batches := tensor.MatchingExtent(3, inputDims, outputDims)
	height := tensor.MatchingExtent(2, inputDims, outputDims)
	width := tensor.MatchingExtent(1, inputDims, outputDims)
	depth := tensor.MatchingExtent(0, inputDims, meanDims, multiplierDims, offsetDims, outputDims)

	for b := 0; b < batches; b++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				for c := 0; c < depth; c++ {
					output[outputDims.Offset(c, x, y, b)] = activation.Apply(
						(input[inputDims.Offset(c, x, y, b)]-mean[meanDims.Offset(c, 0, 0, 0)])*
							multiplier[multiplierDims.Offset(c, 0, 0, 0)] +
							offset[offsetDims.Offset(c, 0, 0, 0)])
				}
			}
		}
	}
}

// NonGlobalBatchNormalization is GlobalBatchNormalization with
// per-position statistics: mean, multiplier and offset vary over
// (channel, x, y) and are shared across batches only.
func NonGlobalBatchNormalization(activation Activation,
	input []float32, inputDims tensor.Dims,
	mean []float32, meanDims tensor.Dims,
	multiplier []float32, multiplierDims tensor.Dims,
	offset []float32, offsetDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	batches := tensor.MatchingExtent(3, inputDims, outputDims)
	height := tensor.MatchingExtent(2, inputDims, meanDims, multiplierDims, offsetDims, outputDims)
	width := tensor.MatchingExtent(1, inputDims, meanDims, multiplierDims, offsetDims, outputDims)
	depth := tensor.MatchingExtent(0, inputDims, meanDims, multiplierDims, offsetDims, outputDims)

	for b := 0; b < batches; b++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				for c := 0; c < depth; c++ {
					output[outputDims.Offset(c, x, y, b)] = activation.Apply(
						(input[inputDims.Offset(c, x, y, b)]-mean[meanDims.Offset(c, x, y, 0)])*
							multiplier[multiplierDims.Offset(c, x, y, 0)] +
							offset[offsetDims.Offset(c, x, y, 0)])
				}
			}
		}
	}
}

// LocalResponseNormalization divides each element by
// (bias + alpha * sum of squares over a channel window)^beta, where the
// window spans [c-range, c+range] clipped to the channel extent. The sum
// slides over a zero-padded square buffer so each position costs one add
// and one subtract. beta of 1 and 0.5 take cheaper forms than the general
// power.
func LocalResponseNormalization(
	input []float32, inputDims tensor.Dims,
	rangeSize int, bias, alpha, beta float32,
	output []float32, outputDims tensor.Dims) {
	size := matchingFlatSize("lrn", outputDims, inputDims)
	depth := inputDims.Extent(0)

	doubleRange := rangeSize * 2
	paddedSquare := make([]float32, depth+doubleRange)
	for off := 0; off < size; off += depth {
		in := input[off : off+depth]
		out := output[off : off+depth]
		for i, v := range in {
			paddedSquare[rangeSize+i] = v * v * alpha
		}
		var accumulatedScale float32
		for i := 0; i < doubleRange; i++ {
			accumulatedScale += paddedSquare[i]
		}
		for i := range out {
			accumulatedScale += paddedSquare[i+doubleRange]
			out[i] = bias + accumulatedScale
			accumulatedScale -= paddedSquare[i]
		}
		switch beta {
		case 1:
			for i, v := range in {
				out[i] = v / out[i]
			}
		case 0.5:
			for i, v := range in {
				out[i] = v / float32(math.Sqrt(float64(out[i])))
			}
		default:
			for i, v := range in {
				out[i] = v * float32(math.Pow(float64(out[i]), float64(-beta)))
			}
		}
	}
}

// L2NormalizationFloat scales each channel vector to unit Euclidean norm.
func L2NormalizationFloat(
	input []float32, inputDims tensor.Dims,
	output []float32, outputDims tensor.Dims) {
	batches := tensor.MatchingExtent(3, inputDims, outputDims)
	height := tensor.MatchingExtent(2, inputDims, outputDims)
	width := tensor.MatchingExtent(1, inputDims, outputDims)
	depth := tensor.MatchingExtent(0, inputDims, outputDims)

	for b := 0; b < batches; b++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				var squaredL2Norm float32
				for c := 0; c < depth; c++ {
					v := input[inputDims.Offset(c, x, y, b)]
					squaredL2Norm += v * v
				}
				inverseL2Norm := 1 / float32(math.Sqrt(float64(squaredL2Norm)))
				for c := 0; c < depth; c++ {
					output[outputDims.Offset(c, x, y, b)] =
						input[inputDims.Offset(c, x, y, b)] * inverseL2Norm
				}
			}
		}
	}
}

// L2NormalizationQuantized normalizes a single uint8 channel vector in
// integer arithmetic. The inverse norm comes from the fixed-point
// reciprocal square root of the sum of squared zero-point diffs; each
// diff is rescaled by it with a 128x gain and re-centered at 128, which
// is the canonical quantization (scale 1/128, zero point 128) of the
// [-1, 1] output range.
//
// Only the single-vector shape (batches, height and width all 1) is
// supported, matching the operator's single-vector usage in inference
// graphs.
func L2NormalizationQuantized(
	input []uint8, inputDims tensor.Dims, inputZeroPoint int32,
	output []uint8, outputDims tensor.Dims) {
	tensor.CheckPacked("l2normalization", inputDims)
	tensor.CheckPacked("l2normalization", outputDims)
	if tensor.MatchingExtent(3, inputDims, outputDims) != 1 ||
		tensor.MatchingExtent(2, inputDims, outputDims) != 1 ||
		tensor.MatchingExtent(1, inputDims, outputDims) != 1 {
		panic("l2normalization: quantized path supports a single channel vector only")
	}
	depth := tensor.MatchingExtent(0, inputDims, outputDims)

	var squareL2Norm int32
	for i := 0; i < depth; i++ {
		diff := int32(input[i]) - inputZeroPoint
		squareL2Norm += diff * diff
	}
	invL2NormMultiplier, invL2NormShift := fixedpoint.InvSqrtQuantizedMultiplier(squareL2Norm)

	for i := 0; i < depth; i++ {
		diff := int32(input[i]) - inputZeroPoint
		rescaledDiff := fixedpoint.MultiplyByQuantizedMultiplierSmallerThanOne(
			128*diff, invL2NormMultiplier, invL2NormShift)
		output[i] = uint8(clampQuantized(128+rescaledDiff, 0, 255))
	}
}

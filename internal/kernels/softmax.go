package kernels

import (
	"math"
	"math/bits"

	"github.com/tetra-ml/tetra/internal/fixedpoint"
	"github.com/tetra-ml/tetra/internal/tensor"
)

// SoftmaxFloat computes softmax over the channel dimension of each
// (x, y, batch) position: exp(beta*(v - max)) normalized to sum to one.
// Subtracting the row maximum keeps the exponentials in (0, 1].
func SoftmaxFloat(
	input []float32, inputDims tensor.Dims,
	beta float32,
	output []float32, outputDims tensor.Dims) {
	size := matchingFlatSize("softmax", outputDims, inputDims)
	depth := inputDims.Extent(0)

	for off := 0; off < size; off += depth {
		in := input[off : off+depth]
		out := output[off : off+depth]
		maxInRow := in[0]
		for _, v := range in[1:] {
			if v > maxInRow {
				maxInRow = v
			}
		}
		var sum float32
		for i, v := range in {
			e := float32(math.Exp(float64(beta * (v - maxInRow))))
			out[i] = e
			sum += e
		}
		scale := 1 / sum
		for i := range out {
			out[i] *= scale
		}
	}
}

// Q5.26 leaves room for beta-scaled diffs as negative as -16 before the
// exp; Q12.19 holds up to 256 summed exponentials of at most 1.
const (
	softmaxScaledDiffIntegerBits   = 5
	softmaxAccumulationIntegerBits = 12
)

// SoftmaxQuantized computes softmax over the channel dimension of a uint8
// tensor entirely in fixed point. Each diff from the row maximum is
// widened into Q5.26 by the beta multiplier, exponentiated, and summed in
// Q12.19; the sum's reciprocal comes from normalizing it to [1, 2) by its
// own headroom and inverting 1+x. Diffs below diffMin are so negative
// that their exponential cannot influence the output and are written as
// zero without arithmetic.
//
// The output quantization is fixed at scale 1/256, zero point 0.
func SoftmaxQuantized(
	input []uint8, inputDims tensor.Dims,
	inputBetaMultiplier int32, inputBetaLeftShift int,
	diffMin int32,
	output []uint8, outputDims tensor.Dims) {
	batches := tensor.MatchingExtent(3, inputDims, outputDims)
	height := tensor.MatchingExtent(2, inputDims, outputDims)
	width := tensor.MatchingExtent(1, inputDims, outputDims)
	depth := tensor.MatchingExtent(0, inputDims, outputDims)

	for b := 0; b < batches; b++ {
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				var maxInRow uint8
				for c := 0; c < depth; c++ {
					if v := input[inputDims.Offset(c, x, y, b)]; v > maxInRow {
						maxInRow = v
					}
				}

				var sumOfExps int32 // Q12.19
				for c := 0; c < depth; c++ {
					inputDiff := int32(input[inputDims.Offset(c, x, y, b)]) - int32(maxInRow)
					if inputDiff >= diffMin {
						scaledDiff := fixedpoint.MultiplyByQuantizedMultiplierGreaterThanOne(
							inputDiff, inputBetaMultiplier, inputBetaLeftShift)
						sumOfExps += fixedpoint.Rescale(
							fixedpoint.ExpOnNegativeValues(scaledDiff, softmaxScaledDiffIntegerBits),
							0, softmaxAccumulationIntegerBits)
					}
				}

				// Normalize the sum into [1, 2) so its reciprocal is
				// 1/(1+x) for x in [0, 1).
				headroomPlusOne := bits.LeadingZeros32(uint32(sumOfExps))
				numBitsOverUnit := softmaxAccumulationIntegerBits - headroomPlusOne
				shiftedSumMinusOne := int32(uint32(sumOfExps)<<uint(headroomPlusOne) - 1<<31)
				shiftedScale := fixedpoint.OneOverOnePlusXForXIn01(shiftedSumMinusOne)

				for c := 0; c < depth; c++ {
					inputDiff := int32(input[inputDims.Offset(c, x, y, b)]) - int32(maxInRow)
					if inputDiff >= diffMin {
						scaledDiff := fixedpoint.MultiplyByQuantizedMultiplierGreaterThanOne(
							inputDiff, inputBetaMultiplier, inputBetaLeftShift)
						expIn0 := fixedpoint.ExpOnNegativeValues(scaledDiff, softmaxScaledDiffIntegerBits)
						unsatOutput := fixedpoint.RoundingDivideByPOT(
							fixedpoint.SaturatingRoundingDoublingHighMul(shiftedScale, expIn0),
							numBitsOverUnit+31-8)
						output[outputDims.Offset(c, x, y, b)] = uint8(clampQuantized(unsatOutput, 0, 255))
					} else {
						output[outputDims.Offset(c, x, y, b)] = 0
					}
				}
			}
		}
	}
}

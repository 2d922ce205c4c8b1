package gemm

import (
	"fmt"

	"github.com/tetra-ml/tetra/internal/fixedpoint"
)

// OutputPipeline bundles the requantization parameters applied to every
// int32 accumulator produced by the quantized GEMM: bias add, rescale by
// outputMultiplier * 2^-31 * 2^-outputShift, add the output zero point,
// clamp, and narrow to uint8.
type OutputPipeline struct {
	Bias             []int32 // one per output row; may be nil
	OutputOffset     int32
	OutputMultiplier int32
	OutputShift      int
	ActivationMin    int32
	ActivationMax    int32
}

func (p *OutputPipeline) apply(acc int32, row int) uint8 {
	if p.Bias != nil {
		acc += p.Bias[row]
	}
	acc = fixedpoint.MultiplyByQuantizedMultiplierSmallerThanOne(
		acc, p.OutputMultiplier, p.OutputShift)
	acc += p.OutputOffset
	if acc < p.ActivationMin {
		acc = p.ActivationMin
	}
	if acc > p.ActivationMax {
		acc = p.ActivationMax
	}
	return uint8(acc)
}

// QuantizedGemm multiplies an outputDepth×accumDepth uint8 filter matrix
// by a batches×accumDepth uint8 input matrix (both row-major), offsetting
// every element by its zero-point correction before the widening multiply,
// and writes the requantized batches×outputDepth result. Accumulation is
// exact in int32. Work is sharded over output rows across the context's
// workers.
func QuantizedGemm(ctx *Context,
	filter []uint8, filterOffset int32,
	input []uint8, inputOffset int32,
	output []uint8, outputDepth, accumDepth, batches int,
	pipeline *OutputPipeline) {
	if len(filter) < outputDepth*accumDepth || len(input) < batches*accumDepth ||
		len(output) < batches*outputDepth {
		panic(fmt.Sprintf("gemm: buffer sizes %d/%d/%d too small for quantized %dx%dx%d multiply",
			len(filter), len(input), len(output), outputDepth, accumDepth, batches))
	}
	if pipeline.Bias != nil && len(pipeline.Bias) < outputDepth {
		panic(fmt.Sprintf("gemm: bias size %d < output depth %d", len(pipeline.Bias), outputDepth))
	}
	ctx.shard(outputDepth, func(lo, hi int) {
		for b := 0; b < batches; b++ {
			in := input[b*accumDepth : (b+1)*accumDepth]
			out := output[b*outputDepth : (b+1)*outputDepth]
			for row := lo; row < hi; row++ {
				f := filter[row*accumDepth : (row+1)*accumDepth]
				var acc int32
				for d, v := range in {
					acc += (int32(f[d]) + filterOffset) * (int32(v) + inputOffset)
				}
				out[row] = pipeline.apply(acc, row)
			}
		}
	})
}

// QuantizedGemv is the single-batch fast path of QuantizedGemm, peeling
// four filter rows per pass the way the vectorized original does. It is
// legal only when batches == 1 and outputDepth is a multiple of four, and
// produces bit-identical results to the general path.
func QuantizedGemv(
	filter []uint8, filterOffset int32,
	input []uint8, inputOffset int32,
	output []uint8, outputDepth, accumDepth int,
	pipeline *OutputPipeline) {
	const peel = 4
	if outputDepth%peel != 0 {
		panic(fmt.Sprintf("gemm: gemv output depth %d not a multiple of %d", outputDepth, peel))
	}
	if len(filter) < outputDepth*accumDepth || len(input) < accumDepth ||
		len(output) < outputDepth {
		panic(fmt.Sprintf("gemm: buffer sizes %d/%d/%d too small for quantized %dx%d gemv",
			len(filter), len(input), len(output), outputDepth, accumDepth))
	}
	in := input[:accumDepth]
	for row := 0; row < outputDepth; row += peel {
		var acc [peel]int32
		f0 := filter[row*accumDepth:]
		f1 := filter[(row+1)*accumDepth:]
		f2 := filter[(row+2)*accumDepth:]
		f3 := filter[(row+3)*accumDepth:]
		for d, v := range in {
			iv := int32(v) + inputOffset
			acc[0] += (int32(f0[d]) + filterOffset) * iv
			acc[1] += (int32(f1[d]) + filterOffset) * iv
			acc[2] += (int32(f2[d]) + filterOffset) * iv
			acc[3] += (int32(f3[d]) + filterOffset) * iv
		}
		for k := 0; k < peel; k++ {
			output[row+k] = pipeline.apply(acc[k], row+k)
		}
	}
}

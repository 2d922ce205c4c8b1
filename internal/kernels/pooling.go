package kernels

import (
	"math"

	"github.com/tetra-ml/tetra/internal/tensor"
)

// poolDims bundles the extents shared by the pooling kernels.
type poolDims struct {
	batches      int
	depth        int
	inputHeight  int
	inputWidth   int
	outputHeight int
	outputWidth  int
}

func checkPoolDims(name string, inputDims, outputDims tensor.Dims) poolDims {
	return poolDims{
		batches:      tensor.MatchingExtent(3, inputDims, outputDims),
		depth:        tensor.MatchingExtent(0, inputDims, outputDims),
		inputHeight:  inputDims.Extent(2),
		inputWidth:   inputDims.Extent(1),
		outputHeight: outputDims.Extent(2),
		outputWidth:  outputDims.Extent(1),
	}
}

// forEachCoveredOutput visits every output position whose pooling window
// covers input position (w, h). The float pools run in forward-scatter
// form: one pass over the input, accumulating into all windows it feeds.
func (d poolDims) forEachCoveredOutput(w, h, stride, padWidth, padHeight, kernelWidth, kernelHeight int,
	visit func(pw, ph int)) {
	hpad := h + padHeight
	wpad := w + padWidth
	hStart := 0
	if hpad >= kernelHeight {
		hStart = (hpad-kernelHeight)/stride + 1
	}
	hEnd := min(hpad/stride+1, d.outputHeight)
	wStart := 0
	if wpad >= kernelWidth {
		wStart = (wpad-kernelWidth)/stride + 1
	}
	wEnd := min(wpad/stride+1, d.outputWidth)
	for ph := hStart; ph < hEnd; ph++ {
		for pw := wStart; pw < wEnd; pw++ {
			visit(pw, ph)
		}
	}
}

// AveragePoolFloat averages each pooling window, dividing by the number
// of in-bounds inputs actually covered, so border windows shrunk by
// padding divide by their true coverage. The fused activation applies to
// the averaged values.
func AveragePoolFloat(activation Activation,
	input []float32, inputDims tensor.Dims,
	stride, padWidth, padHeight, kernelWidth, kernelHeight int,
	output []float32, outputDims tensor.Dims) {
	tensor.CheckPacked("averagepool", inputDims)
	tensor.CheckPacked("averagepool", outputDims)
	d := checkPoolDims("averagepool", inputDims, outputDims)

	outputSize := outputDims.FlatSize()
	out := output[:outputSize]
	for i := range out {
		out[i] = 0
	}
	counts := make([]float32, outputSize/d.depth)
	for b := 0; b < d.batches; b++ {
		for h := 0; h < d.inputHeight; h++ {
			for w := 0; w < d.inputWidth; w++ {
				inOff := inputDims.Offset(0, w, h, b)
				inCol := input[inOff : inOff+d.depth]
				d.forEachCoveredOutput(w, h, stride, padWidth, padHeight, kernelWidth, kernelHeight,
					func(pw, ph int) {
						outOff := outputDims.Offset(0, pw, ph, b)
						addFuncs.vector(out[outOff:outOff+d.depth], inCol, out[outOff:outOff+d.depth])
						counts[outOff/d.depth]++
					})
			}
		}
	}
	for i, v := range out {
		count := counts[i/d.depth]
		if count == 0 {
			panic("averagepool: output position covered by no input")
		}
		out[i] = activation.Apply(v / count)
	}
}

// MaxPoolFloat takes the maximum over each pooling window, in the same
// forward-scatter form as AveragePoolFloat.
func MaxPoolFloat(activation Activation,
	input []float32, inputDims tensor.Dims,
	stride, padWidth, padHeight, kernelWidth, kernelHeight int,
	output []float32, outputDims tensor.Dims) {
	tensor.CheckPacked("maxpool", inputDims)
	tensor.CheckPacked("maxpool", outputDims)
	d := checkPoolDims("maxpool", inputDims, outputDims)

	out := output[:outputDims.FlatSize()]
	lowest := float32(math.Inf(-1))
	for i := range out {
		out[i] = lowest
	}
	for b := 0; b < d.batches; b++ {
		for h := 0; h < d.inputHeight; h++ {
			for w := 0; w < d.inputWidth; w++ {
				inOff := inputDims.Offset(0, w, h, b)
				d.forEachCoveredOutput(w, h, stride, padWidth, padHeight, kernelWidth, kernelHeight,
					func(pw, ph int) {
						outOff := outputDims.Offset(0, pw, ph, b)
						for c := 0; c < d.depth; c++ {
							if input[inOff+c] > out[outOff+c] {
								out[outOff+c] = input[inOff+c]
							}
						}
					})
			}
		}
	}
	if activation != ActivationNone {
		for i, v := range out {
			out[i] = activation.Apply(v)
		}
	}
}

// L2PoolFloat pools the root-mean-square of each window: the square root
// of the sum of squares divided by the in-bounds coverage count.
func L2PoolFloat(activation Activation,
	input []float32, inputDims tensor.Dims,
	stride, padWidth, padHeight, kernelWidth, kernelHeight int,
	output []float32, outputDims tensor.Dims) {
	tensor.CheckPacked("l2pool", inputDims)
	tensor.CheckPacked("l2pool", outputDims)
	d := checkPoolDims("l2pool", inputDims, outputDims)

	outputSize := outputDims.FlatSize()
	out := output[:outputSize]
	for i := range out {
		out[i] = 0
	}
	counts := make([]float32, outputSize/d.depth)
	square := make([]float32, d.depth)
	for b := 0; b < d.batches; b++ {
		for h := 0; h < d.inputHeight; h++ {
			for w := 0; w < d.inputWidth; w++ {
				inOff := inputDims.Offset(0, w, h, b)
				inCol := input[inOff : inOff+d.depth]
				mulFuncs.vector(inCol, inCol, square)
				d.forEachCoveredOutput(w, h, stride, padWidth, padHeight, kernelWidth, kernelHeight,
					func(pw, ph int) {
						outOff := outputDims.Offset(0, pw, ph, b)
						addFuncs.vector(out[outOff:outOff+d.depth], square, out[outOff:outOff+d.depth])
						counts[outOff/d.depth]++
					})
			}
		}
	}
	for i, v := range out {
		count := counts[i/d.depth]
		if count == 0 {
			panic("l2pool: output position covered by no input")
		}
		out[i] = activation.Apply(float32(math.Sqrt(float64(v / count))))
	}
}

// AveragePoolQuantized averages each pooling window of a uint8 tensor
// directly, summing the window into a per-call uint16 accumulator sized to
// the channel depth and dividing with round-half-up. The explicit clamp
// range stands in for the fused activation.
func AveragePoolQuantized(
	input []uint8, inputDims tensor.Dims,
	stride, padWidth, padHeight, kernelWidth, kernelHeight int,
	activationMin, activationMax int32,
	output []uint8, outputDims tensor.Dims) {
	tensor.CheckPacked("averagepool", inputDims)
	tensor.CheckPacked("averagepool", outputDims)
	checkQuantizedActivationRange("averagepool", activationMin, activationMax, true)
	d := checkPoolDims("averagepool", inputDims, outputDims)

	acc := make([]uint16, d.depth)
	for b := 0; b < d.batches; b++ {
		for outY := 0; outY < d.outputHeight; outY++ {
			for outX := 0; outX < d.outputWidth; outX++ {
				inXOrigin := outX*stride - padWidth
				inYOrigin := outY*stride - padHeight
				kernelXStart := max(0, -inXOrigin)
				kernelXEnd := min(kernelWidth, d.inputWidth-inXOrigin)
				kernelYStart := max(0, -inYOrigin)
				kernelYEnd := min(kernelHeight, d.inputHeight-inYOrigin)
				count := uint16((kernelXEnd - kernelXStart) * (kernelYEnd - kernelYStart))
				if count == 0 {
					panic("averagepool: window covers no input")
				}
				clear(acc)
				for ky := kernelYStart; ky < kernelYEnd; ky++ {
					rowOff := inputDims.Offset(0, inXOrigin+kernelXStart, inYOrigin+ky, b)
					for kx := kernelXStart; kx < kernelXEnd; kx++ {
						col := input[rowOff : rowOff+d.depth]
						for c, v := range col {
							acc[c] += uint16(v)
						}
						rowOff += d.depth
					}
				}
				outOff := outputDims.Offset(0, outX, outY, b)
				for c, sum := range acc {
					a := int32((sum + count/2) / count)
					output[outOff+c] = uint8(clampQuantized(a, activationMin, activationMax))
				}
			}
		}
	}
}

// MaxPoolQuantized takes the window maximum of a uint8 tensor directly,
// clamping to the explicit activation range.
func MaxPoolQuantized(
	input []uint8, inputDims tensor.Dims,
	stride, padWidth, padHeight, kernelWidth, kernelHeight int,
	activationMin, activationMax int32,
	output []uint8, outputDims tensor.Dims) {
	tensor.CheckPacked("maxpool", inputDims)
	tensor.CheckPacked("maxpool", outputDims)
	checkQuantizedActivationRange("maxpool", activationMin, activationMax, true)
	d := checkPoolDims("maxpool", inputDims, outputDims)

	acc := make([]uint8, d.depth)
	for b := 0; b < d.batches; b++ {
		for outY := 0; outY < d.outputHeight; outY++ {
			for outX := 0; outX < d.outputWidth; outX++ {
				inXOrigin := outX*stride - padWidth
				inYOrigin := outY*stride - padHeight
				kernelXStart := max(0, -inXOrigin)
				kernelXEnd := min(kernelWidth, d.inputWidth-inXOrigin)
				kernelYStart := max(0, -inYOrigin)
				kernelYEnd := min(kernelHeight, d.inputHeight-inYOrigin)
				clear(acc)
				for ky := kernelYStart; ky < kernelYEnd; ky++ {
					rowOff := inputDims.Offset(0, inXOrigin+kernelXStart, inYOrigin+ky, b)
					for kx := kernelXStart; kx < kernelXEnd; kx++ {
						col := input[rowOff : rowOff+d.depth]
						for c, v := range col {
							if v > acc[c] {
								acc[c] = v
							}
						}
						rowOff += d.depth
					}
				}
				outOff := outputDims.Offset(0, outX, outY, b)
				for c, v := range acc {
					output[outOff+c] = uint8(clampQuantized(int32(v), activationMin, activationMax))
				}
			}
		}
	}
}

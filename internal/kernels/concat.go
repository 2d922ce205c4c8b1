package kernels

import (
	"fmt"

	"github.com/tetra-ml/tetra/internal/tensor"
)

// Concatenation joins the inputs along concatDim into a packed output.
// All other dimensions must match across every input and the output, and
// each input must be packed through the concatenated dimension so whole
// inner blocks copy in single runs.
func Concatenation[T DType](concatDim int,
	inputs [][]T, inputDims []tensor.Dims,
	output []T, outputDims tensor.Dims) {
	if len(inputs) < 2 || len(inputs) != len(inputDims) {
		panic(fmt.Sprintf("concatenation: have %d inputs with %d shapes, want at least 2 matching",
			len(inputs), len(inputDims)))
	}
	concatSize := 0
	for _, d := range inputDims {
		for dim := 0; dim < tensor.Rank; dim++ {
			if dim != concatDim && d.Extent(dim) != outputDims.Extent(dim) {
				panic(fmt.Sprintf("concatenation: extent mismatch on dimension %d: %d vs %d",
					dim, d.Extent(dim), outputDims.Extent(dim)))
			}
		}
		concatSize += d.Extent(concatDim)
	}
	if concatSize != outputDims.Extent(concatDim) {
		panic(fmt.Sprintf("concatenation: inputs total %d along dimension %d, output has %d",
			concatSize, concatDim, outputDims.Extent(concatDim)))
	}
	tensor.CheckPacked("concatenation", outputDims)

	outerSize := 1
	for dim := concatDim + 1; dim < tensor.Rank; dim++ {
		outerSize *= outputDims.Extent(dim)
	}
	outOffset := 0
	for k := 0; k < outerSize; k++ {
		for i, in := range inputs {
			copySize := inputDims[i].Extent(concatDim) * inputDims[i].Strides[concatDim]
			copy(output[outOffset:outOffset+copySize], in[k*copySize:])
			outOffset += copySize
		}
	}
}

// DepthConcatenation joins the inputs along the channel dimension.
func DepthConcatenation[T DType](inputs [][]T, inputDims []tensor.Dims,
	output []T, outputDims tensor.Dims) {
	Concatenation(0, inputs, inputDims, output, outputDims)
}

// Split is the inverse of DepthConcatenation: it deals the input's
// channel dimension out across the outputs, which must all match the
// input on the other three dimensions.
func Split[T DType](input []T, inputDims tensor.Dims,
	outputs [][]T, outputDims []tensor.Dims) {
	if len(outputs) < 1 || len(outputs) != len(outputDims) {
		panic(fmt.Sprintf("split: have %d outputs with %d shapes", len(outputs), len(outputDims)))
	}
	tensor.CheckPacked("split", inputDims)
	depthSum := 0
	for _, d := range outputDims {
		tensor.MatchingExtent(3, d, inputDims)
		tensor.MatchingExtent(2, d, inputDims)
		tensor.MatchingExtent(1, d, inputDims)
		depthSum += d.Extent(0)
	}
	if depthSum != inputDims.Extent(0) {
		panic(fmt.Sprintf("split: outputs total %d channels, input has %d", depthSum, inputDims.Extent(0)))
	}

	positions := inputDims.Extent(1) * inputDims.Extent(2) * inputDims.Extent(3)
	inOffset := 0
	for k := 0; k < positions; k++ {
		for i, out := range outputs {
			depth := outputDims[i].Extent(0)
			copy(out[k*depth:(k+1)*depth], input[inOffset:inOffset+depth])
			inOffset += depth
		}
	}
}

package kernels

import (
	"fmt"

	"github.com/tetra-ml/tetra/internal/tensor"
)

// DepthToSpace rearranges blockSize² groups of channels into blockSize ×
// blockSize spatial blocks: the output is blockSize times wider and
// taller with 1/blockSize² of the channels. Runs of blockSize*outputDepth
// elements move contiguously.
func DepthToSpace[T DType](input []T, inputDims tensor.Dims,
	blockSize int,
	output []T, outputDims tensor.Dims) {
	tensor.CheckPacked("depthtospace", inputDims)
	tensor.CheckPacked("depthtospace", outputDims)
	inputDepth := inputDims.Extent(0)
	inputWidth := inputDims.Extent(1)
	inputHeight := inputDims.Extent(2)
	outputDepth := outputDims.Extent(0)
	batches := tensor.MatchingExtent(3, inputDims, outputDims)
	if inputDepth != outputDepth*blockSize*blockSize {
		panic(fmt.Sprintf("depthtospace: input depth %d, want %d x block %dx%d",
			inputDepth, outputDepth, blockSize, blockSize))
	}
	if outputDims.Extent(1) != inputWidth*blockSize || outputDims.Extent(2) != inputHeight*blockSize {
		panic(fmt.Sprintf("depthtospace: output %dx%d, want input %dx%d scaled by block %d",
			outputDims.Extent(1), outputDims.Extent(2), inputWidth, inputHeight, blockSize))
	}

	stride := blockSize * outputDepth
	outOffset := 0
	for b := 0; b < batches; b++ {
		for inH := 0; inH < inputHeight; inH++ {
			rowOffset := inputDims.Offset(0, 0, inH, b)
			for offsetH := 0; offsetH < blockSize; offsetH++ {
				src := rowOffset
				for inW := 0; inW < inputWidth; inW++ {
					copy(output[outOffset:outOffset+stride], input[src:])
					outOffset += stride
					src += inputDepth
				}
				rowOffset += stride
			}
		}
	}
}

// SpaceToDepth is the inverse of DepthToSpace: blockSize × blockSize
// spatial blocks fold into blockSize² groups of channels.
func SpaceToDepth[T DType](input []T, inputDims tensor.Dims,
	blockSize int,
	output []T, outputDims tensor.Dims) {
	tensor.CheckPacked("spacetodepth", inputDims)
	tensor.CheckPacked("spacetodepth", outputDims)
	inputDepth := inputDims.Extent(0)
	outputDepth := outputDims.Extent(0)
	outputWidth := outputDims.Extent(1)
	outputHeight := outputDims.Extent(2)
	batches := tensor.MatchingExtent(3, inputDims, outputDims)
	if outputDepth != inputDepth*blockSize*blockSize {
		panic(fmt.Sprintf("spacetodepth: output depth %d, want %d x block %dx%d",
			outputDepth, inputDepth, blockSize, blockSize))
	}
	if inputDims.Extent(1) != outputWidth*blockSize || inputDims.Extent(2) != outputHeight*blockSize {
		panic(fmt.Sprintf("spacetodepth: input %dx%d, want output %dx%d scaled by block %d",
			inputDims.Extent(1), inputDims.Extent(2), outputWidth, outputHeight, blockSize))
	}

	stride := blockSize * inputDepth
	inOffset := 0
	for b := 0; b < batches; b++ {
		for outH := 0; outH < outputHeight; outH++ {
			rowOffset := outputDims.Offset(0, 0, outH, b)
			for offsetH := 0; offsetH < blockSize; offsetH++ {
				dst := rowOffset
				for outW := 0; outW < outputWidth; outW++ {
					copy(output[dst:dst+stride], input[inOffset:inOffset+stride])
					inOffset += stride
					dst += outputDepth
				}
				rowOffset += stride
			}
		}
	}
}

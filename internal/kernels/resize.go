package kernels

import (
	"fmt"

	"github.com/tetra-ml/tetra/internal/tensor"
)

// ResizeBilinear resamples the spatial dimensions of a float tensor by
// bilinear interpolation. Source coordinates map as output * input/output
// with the lower-left sample convention; samples past the edge clamp to
// the last row or column.
func ResizeBilinear(
	input []float32, inputDims tensor.Dims,
	outputHeight, outputWidth int,
	output []float32, outputDims tensor.Dims) {
	batches := tensor.MatchingExtent(3, inputDims, outputDims)
	depth := tensor.MatchingExtent(0, inputDims, outputDims)
	inputHeight := inputDims.Extent(2)
	inputWidth := inputDims.Extent(1)
	if outputDims.Extent(2) != outputHeight || outputDims.Extent(1) != outputWidth {
		panic(fmt.Sprintf("resizebilinear: output dims %dx%d, requested %dx%d",
			outputDims.Extent(1), outputDims.Extent(2), outputWidth, outputHeight))
	}
	heightScale := float32(inputHeight) / float32(outputHeight)
	widthScale := float32(inputWidth) / float32(outputWidth)

	for b := 0; b < batches; b++ {
		for y := 0; y < outputHeight; y++ {
			inputY := float32(y) * heightScale
			y0 := int(inputY)
			y1 := min(y0+1, inputHeight-1)
			yFrac := inputY - float32(y0)
			for x := 0; x < outputWidth; x++ {
				inputX := float32(x) * widthScale
				x0 := int(inputX)
				x1 := min(x0+1, inputWidth-1)
				xFrac := inputX - float32(x0)
				for c := 0; c < depth; c++ {
					interpolation := input[inputDims.Offset(c, x0, y0, b)]*(1-yFrac)*(1-xFrac) +
						input[inputDims.Offset(c, x0, y1, b)]*yFrac*(1-xFrac) +
						input[inputDims.Offset(c, x1, y0, b)]*(1-yFrac)*xFrac +
						input[inputDims.Offset(c, x1, y1, b)]*yFrac*xFrac
					output[outputDims.Offset(c, x, y, b)] = interpolation
				}
			}
		}
	}
}

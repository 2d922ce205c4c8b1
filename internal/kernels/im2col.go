package kernels

import (
	"fmt"

	"github.com/tetra-ml/tetra/internal/tensor"
)

// DType constrains the element types the layout kernels are generic over.
type DType interface {
	~float32 | ~uint8 | ~int32
}

// ExtractPatchIntoBufferColumn copies the input patch feeding output
// position (w, h) of batch b into column bufferID of the im2col buffer,
// in (channel, kernel-x, kernel-y) order. Patch rows that fall outside
// the input image are filled with zeroValue, so a quantized caller passes
// its zero point and a float caller passes 0.
//
// Rows fully inside the image are copied in single runs of
// kernelWidth*depth elements; edge rows get their out-of-bounds left and
// right margins filled separately.
func ExtractPatchIntoBufferColumn[T DType](inputDims tensor.Dims,
	w, h, b, kernelHeight, kernelWidth, stride, padWidth, padHeight int,
	inWidth, inHeight, inDepth, singleBufferLength, bufferID int,
	in []T, convBuffer []T, zeroValue T) {
	kernelWidthTimesDepth := kernelWidth * inDepth
	inWidthTimesDepth := inWidth * inDepth
	ihUngatedStart := h*stride - padHeight
	ihUngatedEnd := ihUngatedStart + kernelHeight
	ihEnd := min(ihUngatedEnd, inHeight)
	iwUngatedStart := w*stride - padWidth
	iwUngatedEnd := iwUngatedStart + kernelWidth
	iwEnd := min(iwUngatedEnd, inWidth)
	// Portions of the patch hanging off the image edge become padding
	// around the in-bounds rows.
	hOffset := max(0, -ihUngatedStart)
	wOffset := max(0, -iwUngatedStart)
	ihStart := max(0, ihUngatedStart)
	iwStart := max(0, iwUngatedStart)
	singleRowNum := min(kernelWidth-wOffset, inWidth-iwStart) * inDepth
	outputRowOffset := bufferID * singleBufferLength
	outOffset := outputRowOffset + (hOffset*kernelWidth+wOffset)*inDepth
	inOffset := inputDims.Offset(0, iwStart, ihStart, b)

	topPadding := hOffset
	bottomPadding := ihUngatedEnd - ihEnd
	leftPadding := wOffset
	rightPadding := iwUngatedEnd - iwEnd

	if topPadding > 0 {
		fill(convBuffer[outputRowOffset:outputRowOffset+topPadding*kernelWidth*inDepth], zeroValue)
	}
	if leftPadding == 0 && rightPadding == 0 {
		for ih := ihStart; ih < ihEnd; ih++ {
			copy(convBuffer[outOffset:outOffset+singleRowNum], in[inOffset:])
			outOffset += kernelWidthTimesDepth
			inOffset += inWidthTimesDepth
		}
	} else {
		for ih := ihStart; ih < ihEnd; ih++ {
			if leftPadding > 0 {
				leftStart := outOffset - leftPadding*inDepth
				fill(convBuffer[leftStart:outOffset], zeroValue)
			}
			copy(convBuffer[outOffset:outOffset+singleRowNum], in[inOffset:])
			if rightPadding > 0 {
				rightStart := outOffset + singleRowNum
				fill(convBuffer[rightStart:rightStart+rightPadding*inDepth], zeroValue)
			}
			outOffset += kernelWidthTimesDepth
			inOffset += inWidthTimesDepth
		}
	}
	if bottomPadding > 0 {
		bottomStart := outputRowOffset + (topPadding+(ihEnd-ihStart))*kernelWidth*inDepth
		fill(convBuffer[bottomStart:bottomStart+bottomPadding*kernelWidth*inDepth], zeroValue)
	}
}

// Im2col unrolls convolution patches into the columns of a matrix so the
// convolution itself becomes one dense multiply. The output depth must be
// kernelHeight*kernelWidth*inputDepth, one patch per output position.
func Im2col[T DType](in []T, inputDims tensor.Dims,
	stride, padWidth, padHeight, kernelHeight, kernelWidth int,
	zeroValue T, out []T, outputDims tensor.Dims) {
	tensor.CheckPacked("im2col", inputDims)
	tensor.CheckPacked("im2col", outputDims)
	batches := tensor.MatchingExtent(3, inputDims, outputDims)
	inputDepth := inputDims.Extent(0)
	inputWidth := inputDims.Extent(1)
	inputHeight := inputDims.Extent(2)
	outputDepth := outputDims.Extent(0)
	outputWidth := outputDims.Extent(1)
	outputHeight := outputDims.Extent(2)
	if outputDepth != kernelHeight*kernelWidth*inputDepth {
		panic(fmt.Sprintf("im2col: output depth %d, want %dx%dx%d patch size",
			outputDepth, kernelHeight, kernelWidth, inputDepth))
	}

	bufferID := 0
	for b := 0; b < batches; b++ {
		for h := 0; h < outputHeight; h++ {
			for w := 0; w < outputWidth; w++ {
				ExtractPatchIntoBufferColumn(inputDims,
					w, h, b, kernelHeight, kernelWidth, stride, padWidth, padHeight,
					inputWidth, inputHeight, inputDepth, outputDepth, bufferID,
					in, out, zeroValue)
				bufferID++
			}
		}
	}
}

func fill[T DType](s []T, v T) {
	for i := range s {
		s[i] = v
	}
}

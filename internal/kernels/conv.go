package kernels

import (
	"fmt"

	"github.com/tetra-ml/tetra/internal/gemm"
	"github.com/tetra-ml/tetra/internal/tensor"
)

// convNeedsIm2col reports whether the convolution must unroll patches
// before the matrix multiply. A 1x1 kernel at stride 1 already has its
// patches laid out contiguously, so the input feeds the GEMM directly.
func convNeedsIm2col(stride, kernelWidth, kernelHeight int) bool {
	return stride != 1 || kernelWidth != 1 || kernelHeight != 1
}

// ConvFloat computes a 2D convolution as an im2col unroll followed by one
// dense matrix multiply, then adds the bias and applies the fused
// activation.
//
//	input:  [batches, inHeight, inWidth, inDepth]
//	filter: [outDepth, kernelHeight, kernelWidth, inDepth]
//	bias:   [outDepth]
//	output: [batches, outHeight, outWidth, outDepth]
//
// im2col holds the unrolled patch matrix and must be sized
// [batches, outHeight, outWidth, kernelHeight*kernelWidth*inDepth]; pass
// nil when no unroll is needed (1x1 kernel, stride 1).
func ConvFloat(activation Activation,
	input []float32, inputDims tensor.Dims,
	filter []float32, filterDims tensor.Dims,
	bias []float32, biasDims tensor.Dims,
	stride, padWidth, padHeight int,
	output []float32, outputDims tensor.Dims,
	im2col []float32, im2colDims tensor.Dims) {
	kernelWidth := filterDims.Extent(1)
	kernelHeight := filterDims.Extent(2)
	gemmInput, gemmInputDims := input, inputDims
	if convNeedsIm2col(stride, kernelWidth, kernelHeight) {
		if im2col == nil {
			panic("conv: im2col scratch buffer required for this kernel/stride")
		}
		Im2col(input, inputDims, stride, padWidth, padHeight,
			kernelHeight, kernelWidth, 0, im2col, im2colDims)
		gemmInput, gemmInputDims = im2col, im2colDims
	} else if im2col != nil {
		panic("conv: unexpected im2col buffer for 1x1 stride-1 kernel")
	}

	patchDepth := gemmInputDims.Extent(0)
	positions := flatSize("conv", gemmInputDims) / patchDepth
	outputDepth := filterDims.Extent(3)
	if filterDims.Extent(0)*kernelWidth*kernelHeight != patchDepth {
		panic(fmt.Sprintf("conv: filter patch size %d does not match unrolled input depth %d",
			filterDims.Extent(0)*kernelWidth*kernelHeight, patchDepth))
	}
	if flatSize("conv", outputDims) != positions*outputDepth {
		panic(fmt.Sprintf("conv: output size %d, want %d positions x %d channels",
			outputDims.FlatSize(), positions, outputDepth))
	}
	if flatSize("conv", biasDims) != outputDepth {
		panic(fmt.Sprintf("conv: bias size %d, want %d", biasDims.FlatSize(), outputDepth))
	}

	gemm.MulABt(positions, patchDepth, outputDepth, gemmInput, filter, output)
	addBiasAndApplyActivation("conv", activation, bias[:outputDepth], output[:positions*outputDepth])
}

// ConvQuantized is the uint8 variant of ConvFloat. The im2col padding
// fill uses the input zero point (the negated input offset) so padded
// positions contribute real value zero to the accumulation, and the
// accumulators pass through the same requantization pipeline as the
// quantized fully-connected kernel.
func ConvQuantized(ctx *gemm.Context, p FullyConnectedQuantizedParams,
	input []uint8, inputDims tensor.Dims,
	filter []uint8, filterDims tensor.Dims,
	bias []int32, biasDims tensor.Dims,
	stride, padWidth, padHeight int,
	output []uint8, outputDims tensor.Dims,
	im2col []uint8, im2colDims tensor.Dims) {
	tensor.CheckPacked("conv", inputDims)
	tensor.CheckPacked("conv", filterDims)
	tensor.CheckPacked("conv", outputDims)
	checkQuantizedActivationRange("conv", p.ActivationMin, p.ActivationMax, true)

	kernelWidth := filterDims.Extent(1)
	kernelHeight := filterDims.Extent(2)
	gemmInput, gemmInputDims := input, inputDims
	if convNeedsIm2col(stride, kernelWidth, kernelHeight) {
		if im2col == nil {
			panic("conv: im2col scratch buffer required for this kernel/stride")
		}
		inputZeroPoint := -p.InputOffset
		if inputZeroPoint < 0 || inputZeroPoint > 255 {
			panic(fmt.Sprintf("conv: input offset %d implies zero point outside uint8 domain", p.InputOffset))
		}
		Im2col(input, inputDims, stride, padWidth, padHeight,
			kernelHeight, kernelWidth, uint8(inputZeroPoint), im2col, im2colDims)
		gemmInput, gemmInputDims = im2col, im2colDims
	} else if im2col != nil {
		panic("conv: unexpected im2col buffer for 1x1 stride-1 kernel")
	}

	accumDepth := gemmInputDims.Extent(0)
	positions := gemmInputDims.FlatSize() / accumDepth
	outputDepth := filterDims.Extent(3)
	if filterDims.Extent(0)*kernelWidth*kernelHeight != accumDepth {
		panic(fmt.Sprintf("conv: filter patch size %d does not match unrolled input depth %d",
			filterDims.Extent(0)*kernelWidth*kernelHeight, accumDepth))
	}
	if outputDims.Extent(0) != outputDepth || outputDims.FlatSize() != positions*outputDepth {
		panic(fmt.Sprintf("conv: output size %d, want %d positions x %d channels",
			outputDims.FlatSize(), positions, outputDepth))
	}
	if biasDims.FlatSize() != outputDepth {
		panic(fmt.Sprintf("conv: bias size %d, want %d", biasDims.FlatSize(), outputDepth))
	}

	gemm.QuantizedGemm(ctx, filter, p.FilterOffset, gemmInput, p.InputOffset,
		output, outputDepth, accumDepth, positions, &gemm.OutputPipeline{
			Bias:             bias,
			OutputOffset:     p.OutputOffset,
			OutputMultiplier: p.OutputMultiplier,
			OutputShift:      p.OutputShift,
			ActivationMin:    p.ActivationMin,
			ActivationMax:    p.ActivationMax,
		})
}

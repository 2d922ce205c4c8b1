// Package kernels implements the operator kernels of the inference
// engine: fully-connected and convolution layers, pooling,
// elementwise arithmetic with broadcasting, normalizations,
// activations and softmax, an LSTM cell, layout rearrangement, and
// quantization utilities. Every kernel exists in a float32 variant
// and, where the original operator set defines one, an 8-bit
// affine-quantized variant.
//
// Kernels are pure synchronous functions over caller-owned buffers.
// Contract violations (shape mismatch, unpacked layout where packed is
// required, missing scratch space) panic; numeric saturation and
// rounding are part of the arithmetic, never an error.
package kernels

import (
	"fmt"

	"github.com/tetra-ml/tetra/internal/tensor"
)

// Activation selects the clamp fused into the tail of a float kernel.
type Activation int

const (
	ActivationNone Activation = iota
	ActivationRelu
	ActivationRelu1
	ActivationRelu6
)

// String returns the activation's name for diagnostics.
func (a Activation) String() string {
	switch a {
	case ActivationNone:
		return "none"
	case ActivationRelu:
		return "relu"
	case ActivationRelu1:
		return "relu1"
	case ActivationRelu6:
		return "relu6"
	default:
		return fmt.Sprintf("activation(%d)", int(a))
	}
}

// Apply clamps v to the activation's range.
func (a Activation) Apply(v float32) float32 {
	switch a {
	case ActivationNone:
		return v
	case ActivationRelu:
		if v < 0 {
			return 0
		}
		return v
	case ActivationRelu1:
		if v < -1 {
			return -1
		}
		if v > 1 {
			return 1
		}
		return v
	case ActivationRelu6:
		if v < 0 {
			return 0
		}
		if v > 6 {
			return 6
		}
		return v
	default:
		panic(fmt.Sprintf("kernels: unknown activation %d", int(a)))
	}
}

// checkQuantizedActivationRange validates the explicit clamp bounds the
// quantized kernels take in place of an Activation tag. An unfused kernel
// must pass the full [0, 255] range.
func checkQuantizedActivationRange(name string, min, max int32, fused bool) {
	if min > max {
		panic(fmt.Sprintf("%s: activation range [%d, %d] is inverted", name, min, max))
	}
	if min < 0 || max > 255 {
		panic(fmt.Sprintf("%s: activation range [%d, %d] outside uint8 domain", name, min, max))
	}
	if !fused && (min != 0 || max != 255) {
		panic(fmt.Sprintf("%s: unfused kernel requires activation range [0, 255], got [%d, %d]", name, min, max))
	}
}

// addBiasAndApplyActivation adds the bias vector to every bias-sized run
// of data in place and applies the fused activation. The data length must
// be a multiple of the bias length.
func addBiasAndApplyActivation(name string, activation Activation, bias []float32, data []float32) {
	if len(bias) == 0 || len(data)%len(bias) != 0 {
		panic(fmt.Sprintf("%s: output size %d is not a multiple of bias size %d", name, len(data), len(bias)))
	}
	for off := 0; off < len(data); off += len(bias) {
		run := data[off : off+len(bias)]
		addFuncs.vector(run, bias, run)
		for i, v := range run {
			run[i] = activation.Apply(v)
		}
	}
}

func clampQuantized(v, min, max int32) int32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// flatSize returns the dense element count of d, panicking unless d is
// packed. Kernels that walk buffers linearly use it as their combined
// layout check and loop bound.
func flatSize(name string, d tensor.Dims) int {
	if !d.IsPackedWithoutStrides() {
		panic(fmt.Sprintf("%s: requires packed tensor layout", name))
	}
	return d.FlatSize()
}

// matchingFlatSize is flatSize with extent checks against the other
// operands on all four dimensions.
func matchingFlatSize(name string, d tensor.Dims, others ...tensor.Dims) int {
	for dim := 0; dim < tensor.Rank; dim++ {
		for _, o := range others {
			if o.Extent(dim) != d.Extent(dim) {
				panic(fmt.Sprintf("%s: extent mismatch on dimension %d: %d vs %d",
					name, dim, d.Extent(dim), o.Extent(dim)))
			}
		}
	}
	return flatSize(name, d)
}

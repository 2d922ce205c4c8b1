// Copyright 2026 Tetra ML Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ops provides the public API for the Tetra operator kernels.
//
// # Overview
//
// Every operator of the inference engine is a pure synchronous function
// over caller-owned slices, shaped by tensor.Dims descriptors:
//   - FullyConnected, Conv (im2col + GEMM), pooling
//   - elementwise Add/Mul with broadcasting
//   - normalizations, activations, softmax, a fused LSTM cell
//   - layout rearrangement and quantization utilities
//
// Most operators come in a float32 variant and an 8-bit affine-quantized
// variant with bit-exact integer arithmetic.
//
// # Basic Usage
//
//	import (
//	    "github.com/tetra-ml/tetra/ops"
//	    "github.com/tetra-ml/tetra/tensor"
//	)
//
//	dims := tensor.MustDims(16, 1, 1, 1)
//	in := make([]float32, dims.FlatSize())
//	out := make([]float32, dims.FlatSize())
//	ops.SoftmaxFloat(in, dims, 1.0, out, dims)
//
// Quantized matrix kernels additionally take an ops.Context carrying the
// worker pool; create one per process or per model instance:
//
//	ctx := ops.NewContext(0) // 0 selects runtime.NumCPU()
//	ops.FullyConnectedQuantized(ctx, params, ...)
//
// Contract violations (shape mismatches, missing scratch buffers) panic;
// kernels never return errors.
package ops

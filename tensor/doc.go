// Copyright 2026 Tetra ML Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public shape and quantization types of the
// Tetra kernel library.
//
// # Overview
//
// Every kernel in Tetra operates on caller-owned flat slices described by
// a rank-4 Dims value:
//   - Dims: four extents plus four strides, channel dimension fastest
//   - BroadcastDescs: stride-zero walking descriptors for mismatched shapes
//   - QuantParams: affine uint8 quantization (scale and zero point)
//
// # Layout
//
// The dimension order is (depth, width, height, batches), depth varying
// fastest in memory. A packed tensor satisfies
//
//	Strides[0] == 1
//	Strides[i+1] == Strides[i] * Extents[i]
//
// and most kernels require it.
//
// # Basic Usage
//
//	dims := tensor.MustDims(3, 224, 224, 1) // 3-channel 224x224 image
//	buf := make([]float32, dims.FlatSize())
//	v := buf[dims.Offset(c, x, y, 0)]
package tensor

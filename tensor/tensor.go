// Copyright 2026 Tetra ML Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/tetra-ml/tetra/internal/tensor"
)

// Type aliases for public API

// Rank is the fixed dimensionality of every Dims value.
const Rank = tensor.Rank

// Dimension indices, fastest-varying first.
const (
	DimDepth  = tensor.DimDepth
	DimWidth  = tensor.DimWidth
	DimHeight = tensor.DimHeight
	DimBatch  = tensor.DimBatch
)

// Dims describes a rank-4 tensor: four extents and the memory stride of
// each dimension.
type Dims = tensor.Dims

// NewDims returns packed Dims for the given extents, depth varying
// fastest. Extents must be positive.
func NewDims(depth, width, height, batches int) (Dims, error) {
	return tensor.NewDims(depth, width, height, batches)
}

// MustDims is NewDims but panics on invalid extents. Intended for
// extents known at compile time.
func MustDims(depth, width, height, batches int) Dims {
	return tensor.MustDims(depth, width, height, batches)
}

// MatchingExtent returns the extent of dimension dim shared by all the
// given Dims, panicking if any differ.
func MatchingExtent(dim int, dims ...Dims) int {
	return tensor.MatchingExtent(dim, dims...)
}

// BroadcastDesc is a walking descriptor produced by BroadcastDescs:
// dimensions being broadcast carry stride zero so the same element is
// revisited across the larger operand's extent.
type BroadcastDesc = tensor.BroadcastDesc

// BroadcastDescs resolves two shapes for elementwise broadcasting.
// Compatible dimensions either match or have extent 1 on one side;
// anything else panics.
func BroadcastDescs(d1, d2 Dims) (BroadcastDesc, BroadcastDesc) {
	return tensor.BroadcastDescs(d1, d2)
}

// QuantParams is an affine uint8 quantization:
// real = Scale * (q - ZeroPoint).
type QuantParams = tensor.QuantParams

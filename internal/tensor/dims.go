// Package tensor provides the rank-4 shape/stride model shared by every
// operator kernel in Tetra.
package tensor

import "fmt"

// Rank is the fixed dimensionality of every shape descriptor. Lower-rank
// tensors are expressed with leading extents of 1.
const Rank = 4

// Dimension indices. The depth (channel) axis varies fastest in memory and
// the batch axis slowest.
const (
	DimDepth = iota
	DimWidth
	DimHeight
	DimBatch
)

// Dims describes the extents and memory layout of a rank-4 tensor.
// Strides are element counts, not bytes. For a packed tensor
// Strides[0] == 1 and Strides[d] == Strides[d-1]*Extents[d-1].
//
// A Dims is constructed by the caller before a kernel invocation and is
// immutable for the duration of the call; kernels never own it.
type Dims struct {
	Extents [Rank]int
	Strides [Rank]int
}

// NewDims returns a packed descriptor for the given extents, ordered
// (depth, width, height, batches). It returns an error if any extent is
// not positive.
func NewDims(depth, width, height, batches int) (Dims, error) {
	var d Dims
	d.Extents = [Rank]int{depth, width, height, batches}
	for i, e := range d.Extents {
		if e <= 0 {
			return Dims{}, fmt.Errorf("invalid extent at dimension %d: %d (must be > 0)", i, e)
		}
	}
	d.Strides[0] = 1
	for i := 1; i < Rank; i++ {
		d.Strides[i] = d.Strides[i-1] * d.Extents[i-1]
	}
	return d, nil
}

// MustDims is NewDims that panics on invalid extents. Intended for tests
// and static shapes.
func MustDims(depth, width, height, batches int) Dims {
	d, err := NewDims(depth, width, height, batches)
	if err != nil {
		panic(err)
	}
	return d
}

// Offset computes the linear buffer index of element (c, x, y, b) as the
// dot product of the indices with the strides. Indices must lie within the
// extents; violations panic.
func (d Dims) Offset(c, x, y, b int) int {
	if c < 0 || c >= d.Extents[0] || x < 0 || x >= d.Extents[1] ||
		y < 0 || y >= d.Extents[2] || b < 0 || b >= d.Extents[3] {
		panic(fmt.Sprintf("tensor: index (%d,%d,%d,%d) out of range for extents %v",
			c, x, y, b, d.Extents))
	}
	return c*d.Strides[0] + x*d.Strides[1] + y*d.Strides[2] + b*d.Strides[3]
}

// RequiredBufferSize returns the number of elements a buffer must hold for
// this shape: the product of the extents.
func (d Dims) RequiredBufferSize() int {
	n := 1
	for _, e := range d.Extents {
		n *= e
	}
	return n
}

// FlatSize returns the span of a packed buffer described by d, computed
// from the outermost dimension. Equal to RequiredBufferSize when d is
// packed.
func (d Dims) FlatSize() int {
	return d.Extents[Rank-1] * d.Strides[Rank-1]
}

// IsPackedWithoutStrides reports whether d has the canonical packed
// layout: Strides[0] == 1 and each stride the product of the previous
// stride and extent. Many kernels require this and panic when it does not
// hold.
func (d Dims) IsPackedWithoutStrides() bool {
	expected := 1
	for i := 0; i < Rank; i++ {
		if d.Strides[i] != expected {
			return false
		}
		expected *= d.Extents[i]
	}
	return true
}

// Extent returns the size of dimension i.
func (d Dims) Extent(i int) int {
	return d.Extents[i]
}

// CheckPacked panics unless d is packed. name identifies the offending
// tensor in the panic message.
func CheckPacked(name string, d Dims) {
	if !d.IsPackedWithoutStrides() {
		panic(fmt.Sprintf("tensor: %s must be packed without strides, got extents %v strides %v",
			name, d.Extents, d.Strides))
	}
}

// MatchingExtent asserts that every descriptor has the same size along
// dimension dim and returns that size. Mismatches panic.
func MatchingExtent(dim int, dims ...Dims) int {
	if len(dims) == 0 {
		panic("tensor: MatchingExtent requires at least one descriptor")
	}
	size := dims[0].Extents[dim]
	for _, d := range dims[1:] {
		if d.Extents[dim] != size {
			panic(fmt.Sprintf("tensor: extent mismatch on dimension %d: %d vs %d",
				dim, size, d.Extents[dim]))
		}
	}
	return size
}

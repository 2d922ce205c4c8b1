package tensor

import "fmt"

// BroadcastDesc describes the shape and memory layout of one operand of an
// elementwise binary broadcast, after stride-zero rewriting. A dimension
// whose stride is 0 revisits the same elements for every index along it.
type BroadcastDesc struct {
	Extents [Rank]int
	Strides [Rank]int
}

// SubscriptToIndex computes the linear index of (c, x, y, b) under the
// descriptor. Same contract as Dims.Offset but over the rewritten strides.
func (d BroadcastDesc) SubscriptToIndex(c, x, y, b int) int {
	if c < 0 || c >= d.Extents[0] || x < 0 || x >= d.Extents[1] ||
		y < 0 || y >= d.Extents[2] || b < 0 || b >= d.Extents[3] {
		panic(fmt.Sprintf("tensor: broadcast index (%d,%d,%d,%d) out of range for extents %v",
			c, x, y, b, d.Extents))
	}
	return c*d.Strides[0] + x*d.Strides[1] + y*d.Strides[2] + b*d.Strides[3]
}

// BroadcastDescs rewrites two operand shapes so a single loop nest driven
// by the output shape can index both operands directly.
//
// The shapes must already be compatible up to broadcasting: for each
// dimension either the extents match, or exactly one of them is 1. Where
// they match the operand's own stride is kept; where one extent is 1 that
// operand's extent is rewritten to the other operand's extent and its
// stride forced to 0, so iteration revisits the same slice. Incompatible
// extents panic.
//
// This yields O(1)-memory broadcasting: no expanded tensor is ever
// materialized.
func BroadcastDescs(d1, d2 Dims) (BroadcastDesc, BroadcastDesc) {
	var out1, out2 BroadcastDesc
	out1.Extents, out1.Strides = d1.Extents, d1.Strides
	out2.Extents, out2.Strides = d2.Extents, d2.Strides

	for i := 0; i < Rank; i++ {
		e1, e2 := d1.Extents[i], d2.Extents[i]
		switch {
		case e1 == e2:
			// The shared loop is already correct for this dimension.
		case e1 == 1:
			out1.Extents[i] = e2
			out1.Strides[i] = 0
		case e2 == 1:
			out2.Extents[i] = e1
			out2.Strides[i] = 0
		default:
			panic(fmt.Sprintf("tensor: shapes not broadcast-compatible on dimension %d: %d vs %d",
				i, e1, e2))
		}
	}
	return out1, out2
}

package gemm

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// MulABt computes c = a * bᵀ where a is m×k, b is n×k and c is m×n, all
// row-major and densely packed. This is the one float matrix shape the
// operator kernels need: both the fully-connected weights and the im2col
// filter matrix store one output channel's coefficients per row.
func MulABt(m, k, n int, a, b, c []float32) {
	if len(a) < m*k || len(b) < n*k || len(c) < m*n {
		panic(fmt.Sprintf("gemm: buffer sizes %d/%d/%d too small for %dx%dx%d multiply",
			len(a), len(b), len(c), m, k, n))
	}
	if m == 0 || n == 0 {
		return
	}
	if k == 0 {
		for i := range c[:m*n] {
			c[i] = 0
		}
		return
	}
	blas32.Gemm(blas.NoTrans, blas.Trans, 1,
		blas32.General{Rows: m, Cols: k, Stride: k, Data: a},
		blas32.General{Rows: n, Cols: k, Stride: k, Data: b},
		0,
		blas32.General{Rows: m, Cols: n, Stride: n, Data: c})
}

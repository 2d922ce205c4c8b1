// Package gemm provides the dense matrix-multiply primitives behind the
// fully-connected and convolution kernels: a float32 GEMM delegating to
// BLAS and a quantized uint8 GEMM with an int32 requantization pipeline.
package gemm

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Context carries the execution resources for the quantized GEMM. It is
// owned by the caller and shared across kernel invocations; kernels never
// create or destroy one.
type Context struct {
	workers int
}

// NewContext returns a Context that shards quantized matrix multiplies
// across at most workers goroutines. workers <= 0 selects runtime.NumCPU.
func NewContext(workers int) *Context {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Context{workers: workers}
}

// Workers reports the maximum goroutine count used by this context.
func (c *Context) Workers() int { return c.workers }

// shard splits [0, n) into contiguous ranges and runs fn on each range,
// one goroutine per range. Ranges never overlap, so fn may write to
// disjoint output slices without synchronization.
func (c *Context) shard(n int, fn func(lo, hi int)) {
	workers := c.workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}
	var g errgroup.Group
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		lo, hi := lo, hi
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	// Workers only touch their own range and return nil.
	_ = g.Wait()
}

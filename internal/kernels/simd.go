package kernels

// The hot float elementwise loops run through a small strategy table
// instead of hardware-specific code paths: a plain scalar loop and a
// four-lane unrolled loop that gives the compiler independent chains to
// schedule. Both variants must produce identical results; the unrolled
// form only reassociates loads and stores, never the arithmetic.

type binaryFunc func(a, b, dst []float32)

// elementwiseFuncs pairs the two implementations of one binary op. vector
// is the variant selected for full-length runs; scalar remains exported to
// the tests as the reference.
type elementwiseFuncs struct {
	scalar binaryFunc
	vector binaryFunc
}

var (
	addFuncs = elementwiseFuncs{scalar: addScalar, vector: addUnrolled}
	mulFuncs = elementwiseFuncs{scalar: mulScalar, vector: mulUnrolled}
)

func addScalar(a, b, dst []float32) {
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

func mulScalar(a, b, dst []float32) {
	for i := range dst {
		dst[i] = a[i] * b[i]
	}
}

func addUnrolled(a, b, dst []float32) {
	i := 0
	for ; i <= len(dst)-4; i += 4 {
		a0, a1, a2, a3 := a[i], a[i+1], a[i+2], a[i+3]
		b0, b1, b2, b3 := b[i], b[i+1], b[i+2], b[i+3]
		dst[i] = a0 + b0
		dst[i+1] = a1 + b1
		dst[i+2] = a2 + b2
		dst[i+3] = a3 + b3
	}
	for ; i < len(dst); i++ {
		dst[i] = a[i] + b[i]
	}
}

func mulUnrolled(a, b, dst []float32) {
	i := 0
	for ; i <= len(dst)-4; i += 4 {
		a0, a1, a2, a3 := a[i], a[i+1], a[i+2], a[i+3]
		b0, b1, b2, b3 := b[i], b[i+1], b[i+2], b[i+3]
		dst[i] = a0 * b0
		dst[i+1] = a1 * b1
		dst[i+2] = a2 * b2
		dst[i+3] = a3 * b3
	}
	for ; i < len(dst); i++ {
		dst[i] = a[i] * b[i]
	}
}

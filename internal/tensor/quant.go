package tensor

import (
	"fmt"
	"math"
)

// QuantParams holds the affine quantization parameters of a uint8 tensor:
//
//	real = Scale * (quantized - ZeroPoint)
//
// Scale must be positive and ZeroPoint representable in the quantized
// type's range.
type QuantParams struct {
	Scale     float64
	ZeroPoint int32
}

// Validate returns an error if the parameters are outside the legal
// domain for 8-bit affine quantization.
func (q QuantParams) Validate() error {
	if !(q.Scale > 0) || math.IsInf(q.Scale, 0) || math.IsNaN(q.Scale) {
		return fmt.Errorf("invalid quantization scale %v (must be a positive finite real)", q.Scale)
	}
	if q.ZeroPoint < 0 || q.ZeroPoint > 255 {
		return fmt.Errorf("invalid zero point %d (must be in [0, 255])", q.ZeroPoint)
	}
	return nil
}

// Quantize maps a real value to its quantized representation, rounding to
// nearest and saturating to [0, 255].
func (q QuantParams) Quantize(real float64) uint8 {
	v := math.Round(float64(q.ZeroPoint) + real/q.Scale)
	if v < 0 {
		v = 0
	} else if v > 255 {
		v = 255
	}
	return uint8(v)
}

// Dequantize maps a quantized value back to the real line.
func (q QuantParams) Dequantize(quantized uint8) float64 {
	return q.Scale * float64(int32(quantized)-q.ZeroPoint)
}

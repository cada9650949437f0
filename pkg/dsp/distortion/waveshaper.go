// Package distortion provides waveshaping nonlinearities
package distortion

import (
	"math"
)

// CurveType represents different waveshaping transfer functions
type CurveType int

const (
	// CurveSoftClip applies soft clipping using tanh
	CurveSoftClip CurveType = iota
	// CurveHardClip clips the signal at ±1
	CurveHardClip
)

// SoftClip bounds x to (-1, 1) with a hyperbolic tangent
func SoftClip(x float64) float64 {
	return math.Tanh(x)
}

// HardClip clips x to [-1, 1]
func HardClip(x float64) float64 {
	if x > 1.0 {
		return 1.0
	} else if x < -1.0 {
		return -1.0
	}
	return x
}

// Shape applies curve to x
func Shape(curve CurveType, x float64) float64 {
	switch curve {
	case CurveHardClip:
		return HardClip(x)
	default:
		return SoftClip(x)
	}
}

// ProcessBuffer shapes buffer in place - no allocations
func ProcessBuffer(curve CurveType, buffer []float32) {
	for i := range buffer {
		buffer[i] = float32(Shape(curve, float64(buffer[i])))
	}
}

// Package pan provides stereo panning operations.
package pan

import (
	"math"
)

// Clamp limits pan to [-1, 1]
func Clamp(pan float64) float64 {
	if pan < -1 {
		return -1
	}
	if pan > 1 {
		return 1
	}
	return pan
}

// EqualPower returns left and right gains for pan using the square root law.
// pan: -1.0 = hard left, 0.0 = center, 1.0 = hard right.
// left² + right² is always 1.
func EqualPower(pan float64) (left, right float64) {
	pan = Clamp(pan)
	return math.Sqrt(0.5 * (1 - pan)), math.Sqrt(0.5 * (1 + pan))
}

// Process pans a mono buffer into stereo output, adding to what is
// already there.
func Process(mono []float32, pan float64, leftOut, rightOut []float32) {
	l, r := EqualPower(pan)
	leftGain, rightGain := float32(l), float32(r)

	length := len(mono)
	if len(leftOut) < length {
		length = len(leftOut)
	}
	if len(rightOut) < length {
		length = len(rightOut)
	}

	for i := 0; i < length; i++ {
		leftOut[i] += mono[i] * leftGain
		rightOut[i] += mono[i] * rightGain
	}
}

// Package gain provides decibel conversion and buffer gain.
package gain

import (
	"math"
)

// MinDB is the floor reported for silence
const MinDB = -200.0

// LinearToDb converts a linear amplitude value to decibels.
// Returns MinDB for values <= 0.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return MinDB
	}
	return max(MinDB, 20.0*math.Log10(linear))
}

// DbToLinear converts a decibel value to linear amplitude.
// Values <= MinDB return 0.
func DbToLinear(db float64) float64 {
	if db <= MinDB {
		return 0
	}
	return math.Pow(10.0, db/20.0)
}

// ApplyBuffer multiplies every sample by gain
func ApplyBuffer(buffer []float32, gain float32) {
	for i := range buffer {
		buffer[i] *= gain
	}
}

// Peak returns the largest absolute sample
func Peak(buffer []float32) float32 {
	var peak float32
	for _, v := range buffer {
		if v < 0 {
			v = -v
		}
		peak = max(peak, v)
	}
	return peak
}

// Normalize scales buffer so its peak sits at targetDb and returns the
// linear gain applied. A silent buffer is left alone and reports 1.
func Normalize(buffer []float32, targetDb float64) float64 {
	peak := Peak(buffer)
	if peak == 0 {
		return 1
	}
	g := DbToLinear(targetDb) / float64(peak)
	ApplyBuffer(buffer, float32(g))
	return g
}

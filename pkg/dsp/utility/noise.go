// Package utility provides common DSP utility functions and processors.
package utility

import (
	"math/rand"
)

// DefaultSeed is the seed used when none is given
const DefaultSeed int64 = 0x7e0e

// NoiseGenerator generates reproducible white noise in [-1, 1].
// Two generators with the same seed produce identical sequences.
type NoiseGenerator struct {
	seed int64
	rand *rand.Rand
}

// NewNoiseGenerator creates a white noise generator with the given seed.
func NewNoiseGenerator(seed int64) *NoiseGenerator {
	return &NoiseGenerator{
		seed: seed,
		rand: rand.New(rand.NewSource(seed)),
	}
}

// SetSeed changes the seed and restarts the sequence.
func (n *NoiseGenerator) SetSeed(seed int64) {
	n.seed = seed
	n.rand.Seed(seed)
}

// Seed returns the current seed.
func (n *NoiseGenerator) Seed() int64 {
	return n.seed
}

// Reset restarts the sequence from the current seed.
func (n *NoiseGenerator) Reset() {
	n.rand.Seed(n.seed)
}

// Next generates the next noise sample.
func (n *NoiseGenerator) Next() float32 {
	return float32(n.rand.Float64()*2.0 - 1.0)
}

// Generate fills a buffer with noise.
func (n *NoiseGenerator) Generate(buffer []float32) {
	for i := range buffer {
		buffer[i] = n.Next()
	}
}

// Package filter provides digital signal processing filters
package filter

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Mode selects which SVF output is returned
type Mode int

const (
	// ModeLowpass returns the lowpass output
	ModeLowpass Mode = iota
	// ModeHighpass returns the highpass output
	ModeHighpass
	// ModeBandpass returns the bandpass output
	ModeBandpass
)

// ModeNames lists the modes in enum order
var ModeNames = []string{"Lowpass", "Highpass", "Bandpass"}

// Cutoff limits applied by SetCutoffQ
const (
	MinCutoff = 20.0
	MaxCutoff = 20000.0
	// MaxCutoffRatio keeps the cutoff below Nyquist at low sample rates
	MaxCutoffRatio = 0.49
)

// Resonance limits
const (
	MinQ     = 0.5
	MaxQ     = 20.0
	DefaultQ = 0.707
)

// SVF implements a state variable filter.
// Zero-delay feedback topology; one instance filters one signal.
type SVF struct {
	mode Mode

	sampleRate float64
	cutoff     float64
	q          float64

	g float32 // frequency coefficient
	k float32 // damping coefficient (1/Q)

	ic1eq float32 // integrator 1 state
	ic2eq float32 // integrator 2 state
}

// SVFOutputs holds all filter outputs
type SVFOutputs struct {
	Lowpass  float32
	Highpass float32
	Bandpass float32
}

// NewSVF creates a lowpass SVF at 1 kHz
func NewSVF(sampleRate float64) *SVF {
	s := &SVF{mode: ModeLowpass}
	s.SetCutoffQ(sampleRate, 1000, DefaultQ)
	return s
}

// Reset clears the filter state
func (s *SVF) Reset() {
	s.ic1eq = 0
	s.ic2eq = 0
}

// SetMode selects the output returned by Process
func (s *SVF) SetMode(m Mode) {
	s.mode = m
}

// Mode returns the selected output
func (s *SVF) Mode() Mode {
	return s.mode
}

// ClampCutoff limits frequency to the stable range for sampleRate
func ClampCutoff(sampleRate, frequency float64) float64 {
	hi := math.Min(MaxCutoff, sampleRate*MaxCutoffRatio)
	if frequency < MinCutoff || math.IsNaN(frequency) {
		return MinCutoff
	}
	if frequency > hi {
		return hi
	}
	return frequency
}

// SetCutoffQ sets frequency and resonance, clamping both to their stable
// ranges. Coefficients are only recomputed when a value changes.
func (s *SVF) SetCutoffQ(sampleRate, frequency, q float64) {
	frequency = ClampCutoff(sampleRate, frequency)
	q = math.Max(MinQ, math.Min(MaxQ, q))
	if sampleRate == s.sampleRate && frequency == s.cutoff && q == s.q {
		return
	}
	s.sampleRate = sampleRate
	s.cutoff = frequency
	s.q = q

	// Pre-warp the frequency for the bilinear transform
	s.g = float32(math.Tan(math.Pi * frequency / sampleRate))
	s.k = float32(1.0 / q)
}

// Cutoff returns the clamped cutoff frequency in Hz
func (s *SVF) Cutoff() float64 {
	return s.cutoff
}

// Q returns the clamped resonance
func (s *SVF) Q() float64 {
	return s.q
}

// ProcessSample processes a single sample and returns all outputs
func (s *SVF) ProcessSample(input float32) SVFOutputs {
	g := s.g
	k := s.k
	a1 := 1.0 / (1.0 + g*(g+k))
	a2 := g * a1
	a3 := g * a2

	v3 := input - s.ic2eq
	v1 := a1*s.ic1eq + a2*v3
	v2 := s.ic2eq + a2*s.ic1eq + a3*v3

	s.ic1eq = float32(dspcore.FlushDenormals(float64(2.0*v1 - s.ic1eq)))
	s.ic2eq = float32(dspcore.FlushDenormals(float64(2.0*v2 - s.ic2eq)))

	return SVFOutputs{
		Lowpass:  v2,
		Bandpass: v1,
		Highpass: input - k*v1 - v2,
	}
}

// Process filters one sample through the selected mode
func (s *SVF) Process(input float32) float32 {
	out := s.ProcessSample(input)
	switch s.mode {
	case ModeHighpass:
		return out.Highpass
	case ModeBandpass:
		return out.Bandpass
	default:
		return out.Lowpass
	}
}

// ProcessBuffer filters buffer in place - no allocations
func (s *SVF) ProcessBuffer(buffer []float32) {
	for i := range buffer {
		buffer[i] = s.Process(buffer[i])
	}
}

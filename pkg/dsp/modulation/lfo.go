// Package modulation provides low frequency modulation sources
package modulation

import (
	"math"

	"github.com/realmrhigh/theone/pkg/dsp/utility"
)

// Waveform represents the LFO waveform shape
type Waveform int

const (
	// WaveformSine produces a sine wave
	WaveformSine Waveform = iota
	// WaveformTriangle produces a triangle wave
	WaveformTriangle
	// WaveformSquare produces a square wave
	WaveformSquare
	// WaveformSawtooth produces a sawtooth wave (ramp up)
	WaveformSawtooth
	// WaveformRandom holds a new random value for each cycle
	WaveformRandom
)

// WaveformNames lists the waveforms in enum order
var WaveformNames = []string{"Sine", "Triangle", "Square", "Saw", "S&H"}

// Rate limits in Hz
const (
	MinRate = 0.01
	MaxRate = 50.0
)

// LFO implements a free running Low Frequency Oscillator.
// The phase persists across notes; only Reset returns it to zero.
type LFO struct {
	sampleRate float64
	frequency  float64
	phase      float64
	phaseInc   float64
	waveform   Waveform

	held  float64
	noise *utility.NoiseGenerator
}

// NewLFO creates a new sine LFO at 1 Hz. seed drives the sample and hold
// sequence.
func NewLFO(sampleRate float64, seed int64) *LFO {
	lfo := &LFO{
		sampleRate: sampleRate,
		frequency:  1.0,
		waveform:   WaveformSine,
		noise:      utility.NewNoiseGenerator(seed),
	}
	lfo.held = float64(lfo.noise.Next())
	lfo.updatePhaseIncrement()
	return lfo
}

// SetSampleRate changes the sample rate, keeping frequency and phase
func (l *LFO) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}
	l.sampleRate = sampleRate
	l.updatePhaseIncrement()
}

// SetFrequency sets the LFO frequency in Hz
func (l *LFO) SetFrequency(hz float64) {
	hz = math.Max(MinRate, math.Min(MaxRate, hz))
	if hz == l.frequency {
		return
	}
	l.frequency = hz
	l.updatePhaseIncrement()
}

// Frequency returns the LFO frequency in Hz
func (l *LFO) Frequency() float64 {
	return l.frequency
}

// SetWaveform sets the LFO waveform
func (l *LFO) SetWaveform(waveform Waveform) {
	l.waveform = waveform
}

// SetPhase sets the current phase (0-1)
func (l *LFO) SetPhase(phase float64) {
	l.phase = phase - math.Floor(phase)
}

// Phase returns the current phase (0-1)
func (l *LFO) Phase() float64 {
	return l.phase
}

func (l *LFO) updatePhaseIncrement() {
	l.phaseInc = l.frequency / l.sampleRate
}

func (l *LFO) generateWaveform() float64 {
	switch l.waveform {
	case WaveformSine:
		return math.Sin(2.0 * math.Pi * l.phase)

	case WaveformTriangle:
		if l.phase < 0.5 {
			return 4.0*l.phase - 1.0
		}
		return 3.0 - 4.0*l.phase

	case WaveformSquare:
		if l.phase < 0.5 {
			return 1.0
		}
		return -1.0

	case WaveformSawtooth:
		return 2.0*l.phase - 1.0

	case WaveformRandom:
		return l.held

	default:
		return 0.0
	}
}

// Process returns the current value in [-1, 1] and advances the phase.
// The sample and hold value changes each time the phase wraps.
func (l *LFO) Process() float64 {
	out := l.generateWaveform()

	l.phase += l.phaseInc
	if l.phase >= 1.0 {
		l.phase -= 1.0
		l.held = float64(l.noise.Next())
	}
	return out
}

// Reset returns the phase to zero and restarts the random sequence
func (l *LFO) Reset() {
	l.phase = 0.0
	l.noise.Reset()
	l.held = float64(l.noise.Next())
}

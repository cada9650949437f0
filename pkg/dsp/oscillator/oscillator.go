// Package oscillator provides band-limited audio oscillators
package oscillator

import "math"

// Waveform selects the shape an Oscillator renders
type Waveform int

const (
	// WaveSine is a pure sine
	WaveSine Waveform = iota
	// WaveSaw is a rising sawtooth with PolyBLEP correction
	WaveSaw
	// WaveSquare is a 50% pulse with PolyBLEP correction on both edges
	WaveSquare
	// WaveTriangle is a naive triangle
	WaveTriangle
	// WaveNoise takes its value from an external noise source
	WaveNoise
)

// String returns the display name of the waveform
func (w Waveform) String() string {
	switch w {
	case WaveSine:
		return "Sine"
	case WaveSaw:
		return "Saw"
	case WaveSquare:
		return "Square"
	case WaveTriangle:
		return "Triangle"
	case WaveNoise:
		return "Noise"
	default:
		return "Unknown"
	}
}

// Names lists the waveforms in enum order
var Names = []string{"Sine", "Saw", "Square", "Triangle", "Noise"}

// Oscillator is a phase accumulator with a looping phase in [0,1)
type Oscillator struct {
	sampleRate float64
	phase      float64
	phaseInc   float64
}

// New creates a new oscillator
func New(sampleRate float64) *Oscillator {
	return &Oscillator{
		sampleRate: sampleRate,
	}
}

// SetSampleRate changes the sample rate; the phase is kept
func (o *Oscillator) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}
	freq := o.phaseInc * o.sampleRate
	o.sampleRate = sampleRate
	o.SetFrequency(freq)
}

// SetFrequency sets the oscillator frequency in Hz
func (o *Oscillator) SetFrequency(freq float64) {
	inc := freq / o.sampleRate
	if inc < 0 {
		inc = 0
	} else if inc > 0.5 {
		inc = 0.5
	}
	o.phaseInc = inc
}

// Frequency returns the current frequency in Hz
func (o *Oscillator) Frequency() float64 {
	return o.phaseInc * o.sampleRate
}

// Phase returns the current phase in [0,1)
func (o *Oscillator) Phase() float64 {
	return o.phase
}

// SetPhase sets the phase, wrapped to [0,1)
func (o *Oscillator) SetPhase(phase float64) {
	o.phase = phase - math.Floor(phase)
}

// Reset returns the phase to zero
func (o *Oscillator) Reset() {
	o.phase = 0
}

// Next renders one sample of the waveform and advances the phase.
// noise is returned as-is for WaveNoise so every consumer of one frame can
// share a single draw.
func (o *Oscillator) Next(w Waveform, noise float32) float32 {
	var out float32
	switch w {
	case WaveSine:
		out = o.sine()
	case WaveSaw:
		out = o.saw()
	case WaveSquare:
		out = o.square()
	case WaveTriangle:
		out = o.triangle()
	case WaveNoise:
		out = noise
	}
	o.advance()
	return out
}

// Sine renders one sine sample and advances
func (o *Oscillator) Sine() float32 {
	out := o.sine()
	o.advance()
	return out
}

// Saw renders one band-limited sawtooth sample and advances
func (o *Oscillator) Saw() float32 {
	out := o.saw()
	o.advance()
	return out
}

// Square renders one band-limited square sample and advances
func (o *Oscillator) Square() float32 {
	out := o.square()
	o.advance()
	return out
}

// Triangle renders one triangle sample and advances
func (o *Oscillator) Triangle() float32 {
	out := o.triangle()
	o.advance()
	return out
}

// Process fills buffer with the waveform - no allocations
func (o *Oscillator) Process(w Waveform, buffer []float32) {
	for i := range buffer {
		buffer[i] = o.Next(w, 0)
	}
}

func (o *Oscillator) advance() {
	o.phase += o.phaseInc
	if o.phase >= 1.0 {
		o.phase -= 1.0
	}
}

func (o *Oscillator) sine() float32 {
	return float32(math.Sin(2.0 * math.Pi * o.phase))
}

func (o *Oscillator) saw() float32 {
	v := 2.0*o.phase - 1.0
	v -= PolyBLEP(o.phase, o.phaseInc)
	return float32(v)
}

func (o *Oscillator) square() float32 {
	v := 1.0
	if o.phase >= 0.5 {
		v = -1.0
	}
	v += PolyBLEP(o.phase, o.phaseInc)
	t := o.phase + 0.5
	if t >= 1.0 {
		t -= 1.0
	}
	v -= PolyBLEP(t, o.phaseInc)
	return float32(v)
}

func (o *Oscillator) triangle() float32 {
	if o.phase < 0.5 {
		return float32(4.0*o.phase - 1.0)
	}
	return float32(3.0 - 4.0*o.phase)
}

// PolyBLEP returns the polynomial step residual for a unit discontinuity at
// phase 0. It is zero outside one phase increment of the edge.
func PolyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	if t < dt {
		t /= dt
		return t + t - t*t - 1.0
	}
	if t > 1.0-dt {
		t = (t - 1.0) / dt
		return t*t + t + t + 1.0
	}
	return 0
}

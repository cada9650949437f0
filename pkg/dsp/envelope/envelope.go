// Package envelope provides envelope generators for audio synthesis
package envelope

import "math"

// Stage represents the current envelope stage
type Stage int

const (
	// StageIdle represents envelope idle state
	StageIdle Stage = iota
	// StageAttack represents envelope attack phase
	StageAttack
	// StageDecay represents envelope decay phase
	StageDecay
	// StageSustain represents envelope sustain phase
	StageSustain
	// StageRelease represents envelope release phase
	StageRelease
)

// String returns the stage name
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	default:
		return "unknown"
	}
}

// Stage transitions happen once a segment is within this distance of its target
const threshold = 0.001

// MinTime is the shortest attack, decay or release time in seconds
const MinTime = 0.001

// ADSR implements an Attack-Decay-Sustain-Release envelope generator.
// Segments are exponential and reach their target within the set time.
type ADSR struct {
	sampleRate float64

	// Parameters (in seconds for A,D,R and 0-1 for S)
	attack  float64
	decay   float64
	sustain float64
	release float64

	attackCoef  float64
	decayCoef   float64
	releaseCoef float64

	stage Stage
	value float64
}

// New creates a new ADSR envelope
func New(sampleRate float64) *ADSR {
	env := &ADSR{
		sampleRate: sampleRate,
		attack:     0.01,
		decay:      0.1,
		sustain:    0.7,
		release:    0.3,
	}
	env.updateCoefficients()
	return env
}

// SetSampleRate recalculates timing for a new sample rate
func (e *ADSR) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}
	e.sampleRate = sampleRate
	e.updateCoefficients()
}

// SetADSR sets all parameters at once. Coefficients are only recomputed
// when a time actually changes.
func (e *ADSR) SetADSR(attack, decay, sustain, release float64) {
	attack = math.Max(MinTime, attack)
	decay = math.Max(MinTime, decay)
	release = math.Max(MinTime, release)
	e.sustain = math.Max(0.0, math.Min(1.0, sustain))

	if attack == e.attack && decay == e.decay && release == e.release {
		return
	}
	e.attack = attack
	e.decay = decay
	e.release = release
	e.updateCoefficients()
}

func (e *ADSR) updateCoefficients() {
	e.attackCoef = calcCoef(e.attack, e.sampleRate)
	e.decayCoef = calcCoef(e.decay, e.sampleRate)
	e.releaseCoef = calcCoef(e.release, e.sampleRate)
}

// calcCoef returns the one-pole coefficient that shrinks the distance to the
// target by 60 dB over timeSeconds
func calcCoef(timeSeconds, sampleRate float64) float64 {
	samples := timeSeconds * sampleRate
	if samples <= 0 {
		return 0
	}
	return math.Exp(-math.Log(1.0/threshold) / samples)
}

// Trigger starts the attack from the current level (note on)
func (e *ADSR) Trigger() {
	e.stage = StageAttack
}

// Release starts the release stage (note off)
func (e *ADSR) Release() {
	if e.stage != StageIdle {
		e.stage = StageRelease
	}
}

// Reset immediately returns the envelope to idle
func (e *ADSR) Reset() {
	e.stage = StageIdle
	e.value = 0.0
}

// IsActive returns true if the envelope is generating output
func (e *ADSR) IsActive() bool {
	return e.stage != StageIdle
}

// Stage returns the current envelope stage
func (e *ADSR) Stage() Stage {
	return e.stage
}

// Value returns the last generated value
func (e *ADSR) Value() float64 {
	return e.value
}

// Next generates the next envelope value
func (e *ADSR) Next() float64 {
	switch e.stage {
	case StageAttack:
		e.value = 1.0 + (e.value-1.0)*e.attackCoef
		if e.value >= 1.0-threshold {
			e.value = 1.0
			e.stage = StageDecay
		}

	case StageDecay:
		e.value = e.sustain + (e.value-e.sustain)*e.decayCoef
		if e.value <= e.sustain+threshold {
			e.value = e.sustain
			e.stage = StageSustain
		}

	case StageSustain:
		e.value = e.sustain

	case StageRelease:
		e.value *= e.releaseCoef
		if e.value <= threshold {
			e.value = 0.0
			e.stage = StageIdle
		}

	case StageIdle:
		e.value = 0.0
	}

	return e.value
}

// Process fills buffer with envelope values - no allocations
func (e *ADSR) Process(buffer []float32) {
	for i := range buffer {
		buffer[i] = float32(e.Next())
	}
}

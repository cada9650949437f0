package param

import (
	"math"
)

// SmoothingType defines different parameter smoothing algorithms.
type SmoothingType int

const (
	// LinearSmoothing uses linear interpolation
	LinearSmoothing SmoothingType = iota
	// ExponentialSmoothing uses exponential smoothing (one-pole filter)
	ExponentialSmoothing
)

// Smoother provides parameter smoothing to prevent zipper noise.
// It is not safe for concurrent use; it belongs to the render goroutine.
type Smoother struct {
	smoothingType SmoothingType
	current       float64
	target        float64
	rate          float64
	threshold     float64
	isSmoothing   bool

	// For linear smoothing
	step float64
}

// NewSmoother creates a new parameter smoother.
// rate: smoothing rate (0.9-0.999 for exponential, samples for linear)
func NewSmoother(smoothingType SmoothingType, rate float64) *Smoother {
	return &Smoother{
		smoothingType: smoothingType,
		rate:          rate,
		threshold:     0.0001,
	}
}

// SetTarget sets the target value for smoothing.
func (s *Smoother) SetTarget(target float64) {
	if math.Abs(target-s.target) < s.threshold {
		return
	}

	s.target = target
	s.isSmoothing = true

	if s.smoothingType == LinearSmoothing {
		if s.rate >= 1 {
			s.step = (target - s.current) / s.rate
		} else {
			s.current = target
			s.isSmoothing = false
		}
	}
}

// Next returns the next smoothed value.
func (s *Smoother) Next() float64 {
	if !s.isSmoothing {
		return s.current
	}

	switch s.smoothingType {
	case ExponentialSmoothing:
		// One-pole filter: y = y + a * (x - y)
		s.current += (s.target - s.current) * (1.0 - s.rate)

		if math.Abs(s.current-s.target) < s.threshold {
			s.current = s.target
			s.isSmoothing = false
		}

	case LinearSmoothing:
		s.current += s.step

		if (s.step > 0 && s.current >= s.target) || (s.step < 0 && s.current <= s.target) || s.step == 0 {
			s.current = s.target
			s.isSmoothing = false
		}
	}

	return s.current
}

// IsSmoothing returns true if the smoother is currently smoothing.
func (s *Smoother) IsSmoothing() bool {
	return s.isSmoothing
}

// Current returns the last produced value without advancing
func (s *Smoother) Current() float64 {
	return s.current
}

// Reset jumps to a value with no ramp.
func (s *Smoother) Reset(value float64) {
	s.current = value
	s.target = value
	s.isSmoothing = false
}

// SetRate updates the smoothing rate.
func (s *Smoother) SetRate(rate float64) {
	s.rate = rate
}

// SetTime sets the ramp length from a duration in milliseconds.
func (s *Smoother) SetTime(sampleRate float64, ms float64) {
	samples := sampleRate * ms / 1000.0
	switch s.smoothingType {
	case LinearSmoothing:
		s.rate = samples
	case ExponentialSmoothing:
		// -60dB after ms
		if samples <= 0 {
			s.rate = 0
			return
		}
		s.rate = math.Exp(-6.908 / samples)
	}
}

// SetThreshold sets the threshold for considering smoothing complete.
func (s *Smoother) SetThreshold(threshold float64) {
	s.threshold = threshold
}

// SmoothedParameter follows a Parameter's effective value through a Smoother.
type SmoothedParameter struct {
	*Parameter
	smoother *Smoother
}

// NewSmoothedParameter creates a smoothed view of param.
func NewSmoothedParameter(param *Parameter, smoothingType SmoothingType, rate float64) *SmoothedParameter {
	sp := &SmoothedParameter{
		Parameter: param,
		smoother:  NewSmoother(smoothingType, rate),
	}
	sp.smoother.Reset(param.Get())
	return sp
}

// Update retargets the smoother to the parameter's current effective value.
func (sp *SmoothedParameter) Update() {
	sp.smoother.SetTarget(sp.Get())
}

// Next returns the next smoothed value.
func (sp *SmoothedParameter) Next() float64 {
	return sp.smoother.Next()
}

// Snap jumps straight to the parameter's current value.
func (sp *SmoothedParameter) Snap() {
	sp.smoother.Reset(sp.Get())
}

// SetTime sets the ramp length in milliseconds at the given sample rate.
func (sp *SmoothedParameter) SetTime(sampleRate float64, ms float64) {
	sp.smoother.SetTime(sampleRate, ms)
}

// Current returns the last smoothed value without advancing
func (sp *SmoothedParameter) Current() float64 {
	return sp.smoother.Current()
}

// IsSmoothing reports whether a ramp is in progress
func (sp *SmoothedParameter) IsSmoothing() bool {
	return sp.smoother.IsSmoothing()
}

// Package bus provides audio IO configuration and channel negotiation.
package bus

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned for an IO configuration the engine cannot run with
var ErrInvalidConfig = errors.New("bus: invalid io config")

// Channel limits
const (
	MinSampleRate = 8000.0
	MaxSampleRate = 384000.0
	MaxChannels   = 32
)

// IOConfig describes the audio format a host offers the plugin.
//
// The Requested counts are what the host would like; the Current counts are
// what the plugin agreed to after Negotiate.
type IOConfig struct {
	SampleRate              float64
	RequestedInputChannels  int
	RequestedOutputChannels int
	CurrentInputChannels    int
	CurrentOutputChannels   int
	MaxBlockSize            int

	// Capability flags
	VariableBlockSize    bool
	SampleRateConversion bool
	PreferredLatency     int // frames
}

// Validate checks the configuration is usable for rendering
func (c IOConfig) Validate() error {
	if math.IsNaN(c.SampleRate) || c.SampleRate < MinSampleRate || c.SampleRate > MaxSampleRate {
		return fmt.Errorf("%w: sample rate %g outside [%g, %g]", ErrInvalidConfig, c.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.RequestedOutputChannels < 1 || c.RequestedOutputChannels > MaxChannels {
		return fmt.Errorf("%w: %d output channels", ErrInvalidConfig, c.RequestedOutputChannels)
	}
	if c.RequestedInputChannels < 0 || c.RequestedInputChannels > MaxChannels {
		return fmt.Errorf("%w: %d input channels", ErrInvalidConfig, c.RequestedInputChannels)
	}
	if c.MaxBlockSize < 0 {
		return fmt.Errorf("%w: negative max block size %d", ErrInvalidConfig, c.MaxBlockSize)
	}
	if c.PreferredLatency < 0 {
		return fmt.Errorf("%w: negative latency %d", ErrInvalidConfig, c.PreferredLatency)
	}
	return nil
}

// Negotiate returns a copy with the current channel counts settled.
// Output is min(requested, maxOut) and never below one channel; input
// follows the request up to the same limit.
func (c IOConfig) Negotiate(maxOut int) IOConfig {
	if maxOut < 1 {
		maxOut = 1
	}
	out := c.RequestedOutputChannels
	if out > maxOut {
		out = maxOut
	}
	if out < 1 {
		out = 1
	}
	in := c.RequestedInputChannels
	if in > maxOut {
		in = maxOut
	}
	if in < 0 {
		in = 0
	}
	c.CurrentOutputChannels = out
	c.CurrentInputChannels = in
	return c
}

// IsStereo reports whether two or more output channels were agreed
func (c IOConfig) IsStereo() bool {
	return c.CurrentOutputChannels >= 2
}

// String describes the config for logs
func (c IOConfig) String() string {
	return fmt.Sprintf("%gHz in=%d/%d out=%d/%d block=%d", c.SampleRate,
		c.CurrentInputChannels, c.RequestedInputChannels,
		c.CurrentOutputChannels, c.RequestedOutputChannels, c.MaxBlockSize)
}

// Package process provides the per-buffer render context handed to a plugin.
package process

import (
	"github.com/realmrhigh/theone/pkg/framework/param"
)

// Transport is the host's playback position for the current buffer
type Transport struct {
	Tempo           float64 // BPM
	PositionBeats   float64
	PositionSamples int64
	Playing         bool
}

// Context carries everything one render call needs.
//
// Input and Output hold one slice per channel. Frames is the number of
// samples to produce; it may be shorter than the channel slices.
type Context struct {
	Input        [][]float32
	Output       [][]float32
	Frames       int
	SampleRate   float64
	Transport    Transport
	ParamChanges []param.Change

	// Pre-allocated work buffers
	workBuffer []float32
	tempBuffer []float32
}

// NewContext creates a new process context with pre-allocated buffers
func NewContext(maxBlockSize int) *Context {
	return &Context{
		workBuffer: make([]float32, maxBlockSize),
		tempBuffer: make([]float32, maxBlockSize),
	}
}

// NumSamples returns the number of samples to process. Without an explicit
// Frames it falls back to the shortest channel length.
func (c *Context) NumSamples() int {
	n := c.Frames
	if n <= 0 {
		n = -1
		for _, ch := range c.Output {
			if n < 0 || len(ch) < n {
				n = len(ch)
			}
		}
		if n < 0 {
			return 0
		}
		return n
	}
	for _, ch := range c.Output {
		if len(ch) < n {
			n = len(ch)
		}
	}
	return n
}

// NumInputChannels returns the number of input channels
func (c *Context) NumInputChannels() int {
	return len(c.Input)
}

// NumOutputChannels returns the number of output channels
func (c *Context) NumOutputChannels() int {
	return len(c.Output)
}

// WorkBuffer returns a slice of the pre-allocated work buffer
// sized to the current block size - no allocation!
func (c *Context) WorkBuffer() []float32 {
	n := c.NumSamples()
	if n > len(c.workBuffer) {
		n = len(c.workBuffer)
	}
	return c.workBuffer[:n]
}

// TempBuffer returns a slice of the pre-allocated temp buffer
// sized to the current block size - no allocation!
func (c *Context) TempBuffer() []float32 {
	n := c.NumSamples()
	if n > len(c.tempBuffer) {
		n = len(c.tempBuffer)
	}
	return c.tempBuffer[:n]
}

// Clear zeros the first channels output channels over the current block
func (c *Context) Clear(channels int) {
	n := c.NumSamples()
	if channels > len(c.Output) {
		channels = len(c.Output)
	}
	for ch := 0; ch < channels; ch++ {
		clear(c.Output[ch][:n])
	}
}

// HasParamChanges reports whether automation arrived with this buffer
func (c *Context) HasParamChanges() bool {
	return len(c.ParamChanges) > 0
}

// Advance moves the transport forward by one processed block
func (c *Context) Advance() {
	n := c.NumSamples()
	c.Transport.PositionSamples += int64(n)
	if c.Transport.Tempo > 0 && c.SampleRate > 0 {
		c.Transport.PositionBeats += float64(n) / c.SampleRate * c.Transport.Tempo / 60
	}
}

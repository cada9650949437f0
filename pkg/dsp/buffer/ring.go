// Package buffer provides the lock-free ring that carries rendered audio
// from a render goroutine to a device callback.
package buffer

import (
	"errors"
	"math"
	"sync/atomic"
	"time"
)

// ErrInvalidRing is returned by NewRing for unusable dimensions
var ErrInvalidRing = errors.New("buffer: invalid ring configuration")

// Ring is a single-producer single-consumer circular buffer of interleaved
// float32 frames.
//
// It starts with Latency worth of silence already written, so the consumer
// has a cushion against scheduling and GC pauses on the producer side.
// Write and Read move whole frames only.
type Ring struct {
	data       []float32
	mask       uint64
	channels   int
	sampleRate float64
	latency    uint64 // samples, interleaved

	readPos  atomic.Uint64
	writePos atomic.Uint64

	underruns atomic.Uint64
	overruns  atomic.Uint64
}

// Stats reports ring health for monitoring
type Stats struct {
	Underruns      uint64
	Overruns       uint64
	FillPercentage float32
	CurrentLatency time.Duration
}

// NewRing creates a ring for channels interleaved at sampleRate, primed
// with latency of silence. Capacity is four times the latency, rounded up
// to a power of two.
func NewRing(sampleRate float64, channels int, latency time.Duration) (*Ring, error) {
	if channels < 1 || sampleRate <= 0 || latency <= 0 {
		return nil, ErrInvalidRing
	}
	frames := uint64(math.Round(latency.Seconds() * sampleRate))
	if frames == 0 {
		frames = 1
	}
	latencySamples := frames * uint64(channels)
	size := nextPowerOf2(latencySamples * 4)

	r := &Ring{
		data:       make([]float32, size),
		mask:       size - 1,
		channels:   channels,
		sampleRate: sampleRate,
		latency:    latencySamples,
	}
	r.writePos.Store(latencySamples)
	return r, nil
}

// Write copies as many whole frames of samples as fit and returns the
// number of samples written. A short write counts as an overrun.
// Producer side only.
func (r *Ring) Write(samples []float32) int {
	writePos := r.writePos.Load()
	readPos := r.readPos.Load()

	free := uint64(len(r.data)) - (writePos - readPos)
	n := min(uint64(len(samples)), free)
	n -= n % uint64(r.channels)
	if n < uint64(len(samples)) {
		r.overruns.Add(1)
	}

	for done := uint64(0); done < n; {
		idx := (writePos + done) & r.mask
		chunk := min(n-done, uint64(len(r.data))-idx)
		copy(r.data[idx:idx+chunk], samples[done:done+chunk])
		done += chunk
	}

	r.writePos.Store(writePos + n)
	return int(n)
}

// Read fills output with whole frames, zeroing what could not be filled,
// and returns the number of samples read. A short read counts as an
// underrun. Consumer side only.
func (r *Ring) Read(output []float32) int {
	readPos := r.readPos.Load()
	writePos := r.writePos.Load()

	avail := writePos - readPos
	n := min(uint64(len(output)), avail)
	n -= n % uint64(r.channels)
	if n < uint64(len(output)) {
		r.underruns.Add(1)
	}

	for done := uint64(0); done < n; {
		idx := (readPos + done) & r.mask
		chunk := min(n-done, uint64(len(r.data))-idx)
		copy(output[done:done+chunk], r.data[idx:idx+chunk])
		done += chunk
	}
	clear(output[n:])

	r.readPos.Store(readPos + n)
	return int(n)
}

// Available returns the number of samples ready to read
func (r *Ring) Available() int {
	return int(r.writePos.Load() - r.readPos.Load())
}

// Free returns the number of samples that can be written
func (r *Ring) Free() int {
	return len(r.data) - r.Available()
}

// Cap returns the ring capacity in samples
func (r *Ring) Cap() int {
	return len(r.data)
}

// Channels returns the interleave width
func (r *Ring) Channels() int {
	return r.channels
}

// Latency returns the priming latency
func (r *Ring) Latency() time.Duration {
	return r.duration(r.latency)
}

// Stats returns the current health counters
func (r *Ring) Stats() Stats {
	avail := uint64(r.Available())
	return Stats{
		Underruns:      r.underruns.Load(),
		Overruns:       r.overruns.Load(),
		FillPercentage: float32(avail) / float32(len(r.data)) * 100,
		CurrentLatency: r.duration(avail),
	}
}

// Reset clears the ring and primes it again. It must not run concurrently
// with Read or Write.
func (r *Ring) Reset() {
	clear(r.data)
	r.readPos.Store(0)
	r.writePos.Store(r.latency)
	r.underruns.Store(0)
	r.overruns.Store(0)
}

func (r *Ring) duration(samples uint64) time.Duration {
	frames := float64(samples) / float64(r.channels)
	return time.Duration(frames / r.sampleRate * float64(time.Second))
}

// nextPowerOf2 rounds up to the next power of 2
func nextPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}

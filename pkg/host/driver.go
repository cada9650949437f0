// Package host drives a plugin outside of a plugin host: it owns the
// channel buffers and the render context, feeds timed MIDI, and hands the
// rendered blocks to a sink.
package host

import (
	"errors"
	"fmt"

	"github.com/realmrhigh/theone/pkg/framework/bus"
	"github.com/realmrhigh/theone/pkg/framework/debug"
	"github.com/realmrhigh/theone/pkg/framework/param"
	"github.com/realmrhigh/theone/pkg/framework/plugin"
	"github.com/realmrhigh/theone/pkg/framework/process"
	"github.com/realmrhigh/theone/pkg/midi"
)

// DefaultBlockSize is used when the IO config leaves MaxBlockSize open
const DefaultBlockSize = 256

// ErrClosed is returned when rendering through a closed driver
var ErrClosed = errors.New("host: driver closed")

// Sink receives rendered blocks. The channel slices are reused by the
// driver and only valid for the duration of the call.
type Sink interface {
	WriteBlock(channels [][]float32) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(channels [][]float32) error

// WriteBlock calls f
func (f SinkFunc) WriteBlock(channels [][]float32) error { return f(channels) }

// Driver renders a plugin block by block.
//
// Events landing inside a block split it: the driver renders up to the
// event frame, delivers the message, and continues. Buffers and channel
// views are allocated once; without a profiler Process does not allocate.
type Driver struct {
	plugin    plugin.Plugin
	cfg       bus.IOConfig
	blockSize int
	log       *debug.Logger
	profiler  *debug.RenderProfiler

	ctx     *process.Context
	buffers [][]float32
	views   [][]float32
	blocks  [][]float32
	changes []param.Change
	frame   int64
	closed  bool
}

// NewDriver initializes p with cfg and prepares buffers for
// cfg.RequestedOutputChannels channels.
func NewDriver(p plugin.Plugin, cfg bus.IOConfig, log *debug.Logger) (*Driver, error) {
	if log == nil {
		log = debug.Default()
	}
	if err := p.Initialize(cfg); err != nil {
		return nil, fmt.Errorf("host: initialize %s: %w", p.Info().ID, err)
	}

	block := cfg.MaxBlockSize
	if block <= 0 {
		block = DefaultBlockSize
	}
	channels := cfg.RequestedOutputChannels

	d := &Driver{
		plugin:    p,
		cfg:       cfg,
		blockSize: block,
		log:       log.With("host"),
		ctx:       process.NewContext(block),
		buffers:   make([][]float32, channels),
		views:     make([][]float32, channels),
		blocks:    make([][]float32, channels),
	}
	for ch := range d.buffers {
		d.buffers[ch] = make([]float32, block)
	}
	d.ctx.SampleRate = cfg.SampleRate
	d.ctx.Transport.Playing = true

	d.log.Info("driving %s: %s, block %d", p.Info().Name, cfg, block)
	return d, nil
}

// SetTempo sets the transport tempo reported to the plugin
func (d *Driver) SetTempo(bpm float64) {
	d.ctx.Transport.Tempo = bpm
}

// Transport returns the transport position after the last rendered block
func (d *Driver) Transport() process.Transport {
	return d.ctx.Transport
}

// SetProfiler times every rendered sub-block into rp. Nil disables timing.
func (d *Driver) SetProfiler(rp *debug.RenderProfiler) {
	d.profiler = rp
}

// Plugin returns the driven plugin
func (d *Driver) Plugin() plugin.Plugin { return d.plugin }

// BlockSize returns the maximum frames per block
func (d *Driver) BlockSize() int { return d.blockSize }

// Channels returns the number of output channels rendered
func (d *Driver) Channels() int { return len(d.buffers) }

// SampleRate returns the render sample rate
func (d *Driver) SampleRate() float64 { return d.cfg.SampleRate }

// Frame returns the absolute frame the next block starts at
func (d *Driver) Frame() int64 { return d.frame }

// Process renders frames (at most BlockSize) starting at Frame. Events are
// applied at their frame relative to the block start; events before the
// block start apply immediately and events at or beyond its end are left
// for the caller. Change offsets are relative to the block start and are
// handed to the sub-block that contains them; offsets past the block end
// go to the last sub-block. It returns how many events were consumed and
// the rendered channels, valid until the next call.
func (d *Driver) Process(frames int, events []Event, changes []param.Change) (int, [][]float32) {
	frames = max(0, min(frames, d.blockSize))
	start := d.frame
	end := start + int64(frames)

	pos := 0
	used := 0
	for {
		for used < len(events) && events[used].Frame <= start+int64(pos) && events[used].Frame < end {
			d.plugin.ProcessMidiMessage(events[used].Message)
			used++
		}
		if pos >= frames {
			break
		}

		next := frames
		if used < len(events) && events[used].Frame < end {
			next = int(events[used].Frame - start)
		}

		d.render(pos, next, d.changesFor(changes, pos, next, frames))
		pos = next
	}

	for ch := range d.blocks {
		d.blocks[ch] = d.buffers[ch][:frames]
	}
	d.frame = end
	return used, d.blocks
}

// changesFor collects the changes addressed to [from, to) with offsets
// rebased to from. The returned slice is reused.
func (d *Driver) changesFor(changes []param.Change, from, to, frames int) []param.Change {
	if len(changes) == 0 {
		return nil
	}
	d.changes = d.changes[:0]
	for _, c := range changes {
		off := max(c.SampleOffset, 0)
		if off < from || (off >= to && to < frames) {
			continue
		}
		c.SampleOffset = off - from
		d.changes = append(d.changes, c)
	}
	return d.changes
}

// render runs the plugin over [from, to) of the block
func (d *Driver) render(from, to int, changes []param.Change) {
	for ch := range d.views {
		d.views[ch] = d.buffers[ch][from:to]
	}
	d.ctx.Output = d.views
	d.ctx.Frames = to - from
	d.ctx.ParamChanges = changes
	d.ctx.Clear(len(d.views))

	if d.profiler != nil {
		d.profiler.Block(to-from, func() { d.plugin.ProcessAudio(d.ctx) })
	} else {
		d.plugin.ProcessAudio(d.ctx)
	}
	d.ctx.Advance()
}

// Render plays schedule from the current frame for frames frames, writing
// every block to sink. Events before the current frame are applied at the
// first block. A nil schedule renders without MIDI.
func (d *Driver) Render(schedule *Schedule, frames int64, sink Sink) error {
	if d.closed {
		return ErrClosed
	}
	var events []Event
	if schedule != nil {
		events = schedule.Events()
	}
	stop := d.frame + frames

	for d.frame < stop {
		n := int(min(int64(d.blockSize), stop-d.frame))
		used, block := d.Process(n, events, nil)
		events = events[used:]
		if err := sink.WriteBlock(block); err != nil {
			return fmt.Errorf("host: write block at frame %d: %w", d.frame-int64(n), err)
		}
	}
	if len(events) > 0 {
		d.log.Debug("%d events past the render end were not played", len(events))
	}
	return nil
}

// Send delivers msg to the plugin immediately, between blocks
func (d *Driver) Send(msg midi.Message) {
	d.plugin.ProcessMidiMessage(msg)
}

// Close shuts the plugin down. Further Render calls fail.
func (d *Driver) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.plugin.Shutdown()
	d.log.Info("closed at frame %d", d.frame)
	return nil
}

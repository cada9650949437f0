// Package synth implements a polyphonic subtractive synthesizer behind the
// plugin contract.
package synth

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/realmrhigh/theone/pkg/dsp/distortion"
	"github.com/realmrhigh/theone/pkg/dsp/utility"
	"github.com/realmrhigh/theone/pkg/framework/bus"
	"github.com/realmrhigh/theone/pkg/framework/debug"
	"github.com/realmrhigh/theone/pkg/framework/param"
	"github.com/realmrhigh/theone/pkg/framework/plugin"
	"github.com/realmrhigh/theone/pkg/framework/process"
	"github.com/realmrhigh/theone/pkg/framework/voice"
	"github.com/realmrhigh/theone/pkg/midi"
)

// Plugin metadata
const (
	PluginID      = "com.realmrhigh.theone.synth"
	PluginName    = "TheOne Synth"
	PluginVendor  = "TheOne"
	PluginVersion = "1.0.0"
)

// Engine limits and defaults
const (
	DefaultPolyphony  = 16
	MaxPolyphony      = 128
	DefaultSampleRate = 48000.0
	DefaultQueueSize  = 1024
	// MaxOutputChannels is what Negotiate settles on for stereo hosts
	MaxOutputChannels = 2

	masterSmoothingMs = 20.0
)

// ErrInvalidOptions is returned by New for unusable options
var ErrInvalidOptions = errors.New("synth: invalid options")

// Options configures an Engine at construction
type Options struct {
	// Polyphony is the voice pool size. Zero is allowed and makes every
	// note-on a no-op.
	Polyphony int
	// Logger receives lifecycle messages. Nothing logs from ProcessAudio.
	Logger *debug.Logger
	// Seed drives the noise generator and sample-and-hold LFOs
	Seed int64
	// QueueSize is the capacity of the cross-goroutine MIDI queue
	QueueSize int
}

// DefaultOptions returns the options used by the CLIs
func DefaultOptions() Options {
	return Options{
		Polyphony: DefaultPolyphony,
		Logger:    debug.Default(),
		Seed:      utility.DefaultSeed,
		QueueSize: DefaultQueueSize,
	}
}

// Info returns the synth's plugin metadata for a pool of polyphony voices
func Info(polyphony int) plugin.Info {
	cost := plugin.CostLow
	switch {
	case polyphony > 32:
		cost = plugin.CostHigh
	case polyphony > 8:
		cost = plugin.CostMedium
	}
	return plugin.Info{
		ID:        PluginID,
		Name:      PluginName,
		Vendor:    PluginVendor,
		Version:   PluginVersion,
		Kind:      plugin.KindInstrument,
		MIDIInput: true,
		Cost: plugin.Cost{
			CPU:         cost,
			MemoryBytes: int64(polyphony) * 2048,
		},
	}
}

// Engine is the synthesizer. It implements plugin.Plugin.
//
// ProcessAudio, ProcessMidiMessage, AllNotesOff and OnLowMemory mutate the
// voice pool and must be serialized by the caller. Other goroutines hand
// MIDI over with QueueMidiMessage and write parameters through the
// registry.
type Engine struct {
	*plugin.Base

	log    *debug.Logger
	params *paramSet
	snap   snapshot

	cfg        bus.IOConfig
	sampleRate float64
	channels   int

	voices []*Voice
	alloc  *voice.Allocator
	noise  *utility.NoiseGenerator
	master *param.SmoothedParameter
	queue  *midi.Queue
	seed   int64

	// Performance state shared with the control path
	bend     atomic.Uint64 // float64 bits, [-1, 1]
	modWheel atomic.Uint64 // float64 bits, [0, 1]
	sustain  atomic.Bool
}

var _ plugin.Plugin = (*Engine)(nil)

// New builds an engine with every voice pre-allocated
func New(opts Options) (*Engine, error) {
	if opts.Polyphony < 0 || opts.Polyphony > MaxPolyphony {
		return nil, fmt.Errorf("%w: polyphony %d outside [0, %d]", ErrInvalidOptions, opts.Polyphony, MaxPolyphony)
	}
	if opts.Logger == nil {
		opts.Logger = debug.Default()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}

	base, err := plugin.NewBase(Info(opts.Polyphony))
	if err != nil {
		return nil, err
	}

	e := &Engine{
		Base:       base,
		log:        opts.Logger.With("synth"),
		sampleRate: DefaultSampleRate,
		channels:   MaxOutputChannels,
		noise:      utility.NewNoiseGenerator(opts.Seed),
		queue:      midi.NewQueue(opts.QueueSize),
		seed:       opts.Seed,
	}

	ps, list := newParamSet()
	if err := e.Parameters().Register(list...); err != nil {
		return nil, fmt.Errorf("synth: register parameters: %w", err)
	}
	e.params = ps
	e.snap.read(ps)
	e.master = param.NewSmoothedParameter(ps.masterVolume, param.LinearSmoothing, 0)

	e.voices = make([]*Voice, opts.Polyphony)
	pool := make([]voice.Voice, opts.Polyphony)
	for i := range e.voices {
		e.voices[i] = newVoice(&e.snap, e.sampleRate, opts.Seed+int64(2*i+1))
		e.voices[i].configure()
		pool[i] = e.voices[i]
	}
	e.alloc = voice.NewAllocator(pool)

	e.master.SetTime(e.sampleRate, masterSmoothingMs)

	e.OnPanic(e.AllNotesOff)
	return e, nil
}

// Initialize prepares the engine for cfg, silencing every voice and
// restarting the noise sequence.
func (e *Engine) Initialize(cfg bus.IOConfig) error {
	if err := e.configure(cfg); err != nil {
		e.log.Error("initialize: %v", err)
		return err
	}
	for _, v := range e.voices {
		v.reset()
	}
	e.AllNotesOff()
	e.noise.Reset()
	e.drainQueue()
	e.snap.read(e.params)
	e.master.Snap()

	e.log.Info("initialized: %s, %d voices", e.cfg, len(e.voices))
	return nil
}

// SetAudioIOConfig reconfigures sample-rate dependent state. Sounding
// voices keep playing.
func (e *Engine) SetAudioIOConfig(cfg bus.IOConfig) error {
	if err := e.configure(cfg); err != nil {
		e.log.Warn("io config rejected: %v", err)
		return err
	}
	e.log.Info("io config: %s", e.cfg)
	return nil
}

func (e *Engine) configure(cfg bus.IOConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg.Negotiate(MaxOutputChannels)
	e.channels = e.cfg.CurrentOutputChannels
	e.setSampleRate(e.cfg.SampleRate)
	return nil
}

func (e *Engine) setSampleRate(sampleRate float64) {
	if sampleRate == e.sampleRate {
		return
	}
	e.sampleRate = sampleRate
	for _, v := range e.voices {
		v.setSampleRate(sampleRate)
	}
	e.master.SetTime(sampleRate, masterSmoothingMs)
}

// Shutdown silences the engine
func (e *Engine) Shutdown() {
	e.AllNotesOff()
	e.drainQueue()
	e.log.Info("shutdown")
}

// OnLowMemory logs and runs the default all-notes-off
func (e *Engine) OnLowMemory() {
	e.log.Warn("low memory: all notes off")
	e.Base.OnLowMemory()
}

// LoadState applies a state blob and logs the outcome
func (e *Engine) LoadState(data []byte) error {
	err := e.Base.LoadState(data)
	if err != nil {
		e.log.Warn("load state: %v", err)
		return err
	}
	e.log.Debug("state loaded (%d bytes)", len(data))
	return nil
}

// AllNotesOff frees every voice and returns bend, sustain and mod wheel
// to neutral.
func (e *Engine) AllNotesOff() {
	e.alloc.AllNotesOff()
	e.bend.Store(0)
	e.modWheel.Store(0)
	e.sustain.Store(false)
}

// ProcessMidiMessage applies msg immediately; the sample offset is
// ignored. Unrecognized messages are dropped. Every channel is accepted.
func (e *Engine) ProcessMidiMessage(msg midi.Message) {
	switch msg.Kind() {
	case midi.KindNoteOn:
		e.alloc.NoteOn(msg.Note(), msg.Velocity())
	case midi.KindNoteOff:
		e.alloc.NoteOff(msg.Note())
	case midi.KindControlChange:
		switch msg.Controller() {
		case midi.CCModWheel:
			e.modWheel.Store(math.Float64bits(float64(msg.Value()) / 127))
		case midi.CCSustain:
			down := msg.Value() >= 64
			e.sustain.Store(down)
			e.alloc.SetSustain(down)
		case midi.CCAllSoundOff, midi.CCAllNotesOff:
			e.AllNotesOff()
		}
	case midi.KindPitchBend:
		e.bend.Store(math.Float64bits(msg.PitchBend()))
	}
}

// QueueMidiMessage hands msg to the render goroutine. It is safe to call
// from one producer goroutine while ProcessAudio runs. SampleOffset places
// the message inside the next rendered buffer. It returns false when the
// queue is full and the message was dropped.
func (e *Engine) QueueMidiMessage(msg midi.Message) bool {
	return e.queue.Push(msg)
}

// DroppedMidiMessages returns how many queued messages were lost to overflow
func (e *Engine) DroppedMidiMessages() uint64 {
	return e.queue.Dropped()
}

func (e *Engine) drainQueue() {
	e.queue.Drain(func(midi.Message) {})
}

// PitchBend returns the current bend position in [-1, 1]
func (e *Engine) PitchBend() float64 {
	return math.Float64frombits(e.bend.Load())
}

// ModWheel returns the current mod wheel position in [0, 1]
func (e *Engine) ModWheel() float64 {
	return math.Float64frombits(e.modWheel.Load())
}

// Sustain reports whether the sustain pedal is down
func (e *Engine) Sustain() bool {
	return e.sustain.Load()
}

// ActiveVoices returns the number of voices that are not free
func (e *Engine) ActiveVoices() int {
	return e.alloc.ActiveCount()
}

// Polyphony returns the voice pool size
func (e *Engine) Polyphony() int {
	return len(e.voices)
}

// SampleRate returns the sample rate the engine renders at
func (e *Engine) SampleRate() float64 {
	return e.sampleRate
}

// OutputChannels returns the negotiated output channel count
func (e *Engine) OutputChannels() int {
	return e.channels
}

// ProcessAudio renders ctx.NumSamples() frames into the negotiated output
// channels. Parameter changes and queued MIDI are applied at their sample
// offsets by splitting the buffer. It never allocates or blocks.
func (e *Engine) ProcessAudio(ctx *process.Context) {
	n := ctx.NumSamples()
	if ctx.SampleRate > 0 {
		e.setSampleRate(ctx.SampleRate)
	}
	channels := min(len(ctx.Output), e.channels)

	e.applySnapshot()

	changes := ctx.ParamChanges
	ci := 0
	queued := e.queue.Len()
	pos := 0

	for {
		dirty := false
		for ci < len(changes) && changes[ci].SampleOffset <= pos {
			e.Parameters().ApplyChange(changes[ci])
			ci++
			dirty = true
		}
		for queued > 0 {
			msg, ok := e.queue.Peek()
			if !ok || int(msg.SampleOffset) > pos {
				break
			}
			e.queue.Pop()
			queued--
			e.ProcessMidiMessage(msg)
		}
		if dirty {
			e.applySnapshot()
		}
		if pos >= n {
			break
		}

		next := n
		if ci < len(changes) && changes[ci].SampleOffset < next {
			next = changes[ci].SampleOffset
		}
		if queued > 0 {
			if msg, ok := e.queue.Peek(); ok && int(msg.SampleOffset) < next {
				next = int(msg.SampleOffset)
			}
		}

		e.render(ctx.Output[:channels], pos, next)
		pos = next
	}

	// Anything addressed past the end of the buffer lands at its end
	for ; ci < len(changes); ci++ {
		e.Parameters().ApplyChange(changes[ci])
	}
	for ; queued > 0; queued-- {
		msg, ok := e.queue.Pop()
		if !ok {
			break
		}
		e.ProcessMidiMessage(msg)
	}
}

// applySnapshot re-reads every parameter and pushes the result to the voices
func (e *Engine) applySnapshot() {
	e.snap.read(e.params)
	for _, v := range e.voices {
		v.configure()
	}
	e.master.Update()
}

// render mixes frames [from, to) into out
func (e *Engine) render(out [][]float32, from, to int) {
	bendMul := math.Exp2(e.PitchBend() * e.snap.bendRange / 12)
	modWheel := e.ModWheel()

	for i := from; i < to; i++ {
		noise := e.noise.Next()

		var left, right float64
		for _, v := range e.voices {
			if v.state == voice.Free {
				continue
			}
			l, r := v.render(bendMul, modWheel, noise)
			left += l
			right += r
		}

		gain := e.master.Next()
		switch len(out) {
		case 0:
		case 1:
			out[0][i] = float32(distortion.SoftClip(0.5 * (left + right) * gain))
		default:
			out[0][i] = float32(distortion.SoftClip(left * gain))
			out[1][i] = float32(distortion.SoftClip(right * gain))
		}
	}
}

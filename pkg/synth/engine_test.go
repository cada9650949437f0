package synth

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/realmrhigh/theone/pkg/dsp/oscillator"
	"github.com/realmrhigh/theone/pkg/framework/bus"
	"github.com/realmrhigh/theone/pkg/framework/debug"
	"github.com/realmrhigh/theone/pkg/framework/param"
	"github.com/realmrhigh/theone/pkg/framework/process"
	"github.com/realmrhigh/theone/pkg/framework/state"
	"github.com/realmrhigh/theone/pkg/framework/voice"
	"github.com/realmrhigh/theone/pkg/midi"
)

const testSampleRate = 48000.0

func newTestEngine(t testing.TB, polyphony int) *Engine {
	t.Helper()
	e, err := New(Options{Polyphony: polyphony, Logger: debug.Discard(), Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(bus.NewInstrumentStereo(testSampleRate)); err != nil {
		t.Fatal(err)
	}
	return e
}

func newOutput(channels, frames int) [][]float32 {
	out := make([][]float32, channels)
	for i := range out {
		out[i] = make([]float32, frames)
	}
	return out
}

func newTestContext(out [][]float32) *process.Context {
	frames := 0
	if len(out) > 0 {
		frames = len(out[0])
	}
	ctx := process.NewContext(frames)
	ctx.Output = out
	ctx.Frames = frames
	ctx.SampleRate = testSampleRate
	return ctx
}

func renderFrames(e *Engine, frames int) [][]float32 {
	out := newOutput(2, frames)
	e.ProcessAudio(newTestContext(out))
	return out
}

func set(t *testing.T, e *Engine, id string, value float64) {
	t.Helper()
	p := e.Parameters().Get(id)
	if p == nil {
		t.Fatalf("Parameter %s not registered", id)
	}
	p.Set(value)
}

// sineOnly configures osc 1 as the only sound source
func sineOnly(t *testing.T, e *Engine) {
	t.Helper()
	set(t, e, ParamOsc1Wave, float64(oscillator.WaveSine))
	set(t, e, ParamOsc1Level, 1)
	set(t, e, ParamOsc2Level, 0)
	set(t, e, ParamSubLevel, 0)
	set(t, e, ParamNoiseLevel, 0)
}

func voiceFor(e *Engine, note uint8) *Voice {
	for _, v := range e.voices {
		if v.state != voice.Free && v.note == note {
			return v
		}
	}
	return nil
}

func TestNew(t *testing.T) {
	e := newTestEngine(t, 16)

	info := e.Info()
	if info.ID != PluginID || info.Kind.String() != "instrument" || !info.MIDIInput {
		t.Errorf("Unexpected info: %+v", info)
	}
	if e.Polyphony() != 16 {
		t.Errorf("Expected 16 voices, got %d", e.Polyphony())
	}
	if e.OutputChannels() != 2 {
		t.Errorf("Expected 2 output channels, got %d", e.OutputChannels())
	}

	ids := []string{
		ParamOsc1Wave, ParamOsc2Fine, ParamFilterCutoff, ParamFilterResonance,
		ParamAmpRelease, ParamFilterRelease, ParamLFO2Dest, ParamGlide,
		ParamBendRange, ParamMasterVolume, ParamPan, ParamTuning,
	}
	for _, id := range ids {
		if e.Parameters().Get(id) == nil {
			t.Errorf("Expected parameter %s", id)
		}
	}

	if p := e.Parameters().Get(ParamTuning); p.Category != param.CategoryInternalState {
		t.Errorf("Expected tuning in internal state, got %s", p.Category)
	}
	if got := len(e.Parameters().ByCategory(param.CategoryModulation)); got != 8 {
		t.Errorf("Expected 8 modulation parameters, got %d", got)
	}
}

func TestNewInvalidOptions(t *testing.T) {
	for _, n := range []int{-1, MaxPolyphony + 1} {
		if _, err := New(Options{Polyphony: n}); !errors.Is(err, ErrInvalidOptions) {
			t.Errorf("Polyphony %d: expected ErrInvalidOptions, got %v", n, err)
		}
	}
}

func TestInitializeInvalidConfig(t *testing.T) {
	e := newTestEngine(t, 4)
	cfg := bus.NewInstrumentStereo(testSampleRate)
	cfg.SampleRate = 0
	if err := e.Initialize(cfg); !errors.Is(err, bus.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if err := e.SetAudioIOConfig(cfg); !errors.Is(err, bus.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if e.SampleRate() != testSampleRate {
		t.Errorf("Expected sample rate unchanged, got %f", e.SampleRate())
	}
}

func TestSineScenario(t *testing.T) {
	e := newTestEngine(t, 16)
	sineOnly(t, e)

	e.ProcessMidiMessage(midi.NoteOn(0, 60, 100))
	v := voiceFor(e, 60)
	if v == nil {
		t.Fatal("Expected a voice for note 60")
	}

	const frames = 256
	out := renderFrames(e, frames)

	nonZero := 0
	for ch := range out {
		for i, s := range out[ch] {
			x := float64(s)
			if math.IsNaN(x) || math.IsInf(x, 0) {
				t.Fatalf("ch %d frame %d: non-finite sample %f", ch, i, s)
			}
			if x < -1 || x > 1 {
				t.Fatalf("ch %d frame %d: sample %f out of [-1, 1]", ch, i, s)
			}
			if x != 0 {
				nonZero++
			}
		}
	}
	if nonZero == 0 {
		t.Fatal("Expected audible output")
	}
	for i := range out[0] {
		if out[0][i] != out[1][i] {
			t.Fatalf("Expected centred voice, frame %d: %f vs %f", i, out[0][i], out[1][i])
		}
	}

	// The oscillator phase advanced by exactly one increment per frame
	freq := midi.NoteToFrequency(60, midi.DefaultTuning)
	cycles := frames * freq / testSampleRate
	want := cycles - math.Floor(cycles)
	if math.Abs(v.Phase()-want) > 1e-9 {
		t.Errorf("Expected phase %f, got %f", want, v.Phase())
	}

	// Starts at zero, then one positive and one negative half cycle
	crossings := 0
	for i := 1; i < frames; i++ {
		if (out[0][i-1] > 0) != (out[0][i] > 0) {
			crossings++
		}
	}
	if crossings < 2 || crossings > 4 {
		t.Errorf("Expected 2-4 zero crossings for %.1f cycles, got %d", cycles, crossings)
	}
}

func TestLegatoKeepsPhase(t *testing.T) {
	e := newTestEngine(t, 4)
	sineOnly(t, e)

	e.ProcessMidiMessage(midi.NoteOn(0, 60, 127))
	renderFrames(e, 100)
	v := voiceFor(e, 60)
	phase := v.Phase()

	e.ProcessMidiMessage(midi.NoteOn(0, 60, 1))
	if e.ActiveVoices() != 1 {
		t.Fatalf("Expected legato to reuse the voice, %d active", e.ActiveVoices())
	}
	if voiceFor(e, 60) != v {
		t.Fatal("Expected the same voice after legato retrigger")
	}
	if v.Phase() != phase {
		t.Errorf("Expected phase %f kept, got %f", phase, v.Phase())
	}
	if v.Velocity() != 1 {
		t.Errorf("Expected velocity 1, got %d", v.Velocity())
	}

	renderFrames(e, 1)
	inc := midi.NoteToFrequency(60, midi.DefaultTuning) / testSampleRate
	want := phase + inc
	if want >= 1 {
		want--
	}
	if math.Abs(v.Phase()-want) > 1e-9 {
		t.Errorf("Expected continuous phase %f, got %f", want, v.Phase())
	}
}

func TestVoiceCount(t *testing.T) {
	e := newTestEngine(t, 8)

	for i := 0; i < 8; i++ {
		e.ProcessMidiMessage(midi.NoteOn(0, uint8(40+i), 100))
	}
	if e.ActiveVoices() != 8 {
		t.Fatalf("Expected 8 active voices, got %d", e.ActiveVoices())
	}

	seen := map[uint8]bool{}
	for _, v := range e.voices {
		if seen[v.note] {
			t.Errorf("Note %d owned twice", v.note)
		}
		seen[v.note] = true
	}
}

func TestStealOldest(t *testing.T) {
	e := newTestEngine(t, 2)

	e.ProcessMidiMessage(midi.NoteOn(0, 60, 100))
	e.ProcessMidiMessage(midi.NoteOn(0, 62, 100))
	e.ProcessMidiMessage(midi.NoteOn(0, 64, 100))

	if voiceFor(e, 60) != nil {
		t.Error("Expected oldest note 60 to be stolen")
	}
	if voiceFor(e, 62) == nil || voiceFor(e, 64) == nil {
		t.Error("Expected notes 62 and 64 to sound")
	}

	// A releasing voice goes before an older sounding one
	e.ProcessMidiMessage(midi.NoteOff(0, 64))
	e.ProcessMidiMessage(midi.NoteOn(0, 67, 100))
	if voiceFor(e, 62) == nil || voiceFor(e, 67) == nil {
		t.Error("Expected releasing note 64 to be stolen first")
	}
}

func TestZeroPolyphony(t *testing.T) {
	e := newTestEngine(t, 0)
	e.ProcessMidiMessage(midi.NoteOn(0, 60, 100))
	out := renderFrames(e, 64)
	for _, s := range out[0] {
		if s != 0 {
			t.Fatalf("Expected silence, got %f", s)
		}
	}
}

func TestSustainPedal(t *testing.T) {
	e := newTestEngine(t, 4)

	e.ProcessMidiMessage(midi.ControlChange(0, midi.CCSustain, 127))
	if !e.Sustain() {
		t.Fatal("Expected sustain down")
	}
	e.ProcessMidiMessage(midi.NoteOn(0, 60, 100))
	e.ProcessMidiMessage(midi.NoteOn(0, 64, 100))
	e.ProcessMidiMessage(midi.NoteOff(0, 60))
	e.ProcessMidiMessage(midi.NoteOn(0, 67, 0)) // velocity zero is note-off

	for _, n := range []uint8{60, 64} {
		if v := voiceFor(e, n); v == nil || v.State() != voice.Sounding {
			t.Errorf("Expected note %d still sounding under the pedal", n)
		}
	}

	e.ProcessMidiMessage(midi.ControlChange(0, midi.CCSustain, 0))
	if v := voiceFor(e, 60); v == nil || v.State() != voice.Releasing {
		t.Error("Expected note 60 released on pedal up")
	}
	if v := voiceFor(e, 64); v == nil || v.State() != voice.Sounding {
		t.Error("Expected held key 64 to keep sounding")
	}
}

func TestReleaseFreesVoice(t *testing.T) {
	e := newTestEngine(t, 4)
	set(t, e, ParamAmpRelease, 0.01)

	e.ProcessMidiMessage(midi.NoteOn(0, 60, 100))
	renderFrames(e, 512)
	e.ProcessMidiMessage(midi.NoteOff(0, 60))
	renderFrames(e, 2048)

	if e.ActiveVoices() != 0 {
		t.Errorf("Expected voice free after release, %d active", e.ActiveVoices())
	}
}

func TestAllNotesOff(t *testing.T) {
	tests := []struct {
		name  string
		panic func(e *Engine)
	}{
		{"cc 123", func(e *Engine) { e.ProcessMidiMessage(midi.AllNotesOff(0)) }},
		{"cc 120", func(e *Engine) { e.ProcessMidiMessage(midi.ControlChange(0, midi.CCAllSoundOff, 0)) }},
		{"low memory", func(e *Engine) { e.OnLowMemory() }},
		{"shutdown", func(e *Engine) { e.Shutdown() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, 4)
			e.ProcessMidiMessage(midi.PitchBend(0, 0.5))
			e.ProcessMidiMessage(midi.ControlChange(0, midi.CCModWheel, 100))
			e.ProcessMidiMessage(midi.ControlChange(0, midi.CCSustain, 127))
			e.ProcessMidiMessage(midi.NoteOn(0, 60, 100))
			e.ProcessMidiMessage(midi.NoteOn(0, 64, 100))

			tt.panic(e)

			if e.ActiveVoices() != 0 {
				t.Errorf("Expected all voices free, %d active", e.ActiveVoices())
			}
			if e.PitchBend() != 0 || e.ModWheel() != 0 || e.Sustain() {
				t.Errorf("Expected neutral performance state, got bend %f wheel %f sustain %v",
					e.PitchBend(), e.ModWheel(), e.Sustain())
			}
		})
	}
}

func TestPerformanceControllers(t *testing.T) {
	e := newTestEngine(t, 1)
	sineOnly(t, e)
	set(t, e, ParamBendRange, 12)

	e.ProcessMidiMessage(midi.PitchBend(0, 1))
	if e.PitchBend() != 1 {
		t.Errorf("Expected full bend, got %f", e.PitchBend())
	}
	e.ProcessMidiMessage(midi.ControlChange(0, midi.CCModWheel, 127))
	if e.ModWheel() != 1 {
		t.Errorf("Expected full mod wheel, got %f", e.ModWheel())
	}

	e.ProcessMidiMessage(midi.NoteOn(0, 57, 100))
	renderFrames(e, 1)

	// A full bend of 12 semitones doubles the frequency
	want := 2 * midi.NoteToFrequency(57, midi.DefaultTuning) / testSampleRate
	if got := voiceFor(e, 57).Phase(); math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected phase step %f, got %f", want, got)
	}

	// Unknown controllers and statuses are ignored
	e.ProcessMidiMessage(midi.ControlChange(0, 7, 10))
	e.ProcessMidiMessage(midi.Message{Status: 0xC0, Data1: 3})
	if e.ActiveVoices() != 1 {
		t.Errorf("Expected voice untouched, %d active", e.ActiveVoices())
	}
}

func TestGlide(t *testing.T) {
	e := newTestEngine(t, 1)
	set(t, e, ParamGlide, 0.01)

	e.ProcessMidiMessage(midi.NoteOn(0, 60, 100))
	renderFrames(e, 16)
	low := midi.NoteToFrequency(60, midi.DefaultTuning)
	high := midi.NoteToFrequency(72, midi.DefaultTuning)
	v := e.voices[0]
	if v.Frequency() != low {
		t.Fatalf("Expected first note without glide at %f, got %f", low, v.Frequency())
	}

	e.ProcessMidiMessage(midi.NoteOn(0, 72, 100))
	renderFrames(e, 240)
	mid := v.Frequency()
	if mid <= low || mid >= high {
		t.Errorf("Expected gliding frequency between %f and %f, got %f", low, high, mid)
	}
	// Halfway in time is halfway in pitch
	if want := low * math.Sqrt2; math.Abs(mid-want) > 1 {
		t.Errorf("Expected about %f halfway, got %f", want, mid)
	}

	renderFrames(e, 300)
	if v.Frequency() != high {
		t.Errorf("Expected glide to settle on %f, got %f", high, v.Frequency())
	}

	// Falling glide snaps without undershooting
	e.ProcessMidiMessage(midi.NoteOn(0, 48, 100))
	renderFrames(e, 1000)
	if want := midi.NoteToFrequency(48, midi.DefaultTuning); v.Frequency() != want {
		t.Errorf("Expected falling glide to settle on %f, got %f", want, v.Frequency())
	}
}

func TestQueuedMidiIsSampleAccurate(t *testing.T) {
	e := newTestEngine(t, 4)
	sineOnly(t, e)

	if !e.QueueMidiMessage(midi.NoteOn(0, 69, 127).At(100)) {
		t.Fatal("Expected queue to accept message")
	}
	out := renderFrames(e, 256)

	for i := 0; i <= 100; i++ {
		if out[0][i] != 0 {
			t.Fatalf("Expected silence before the note, frame %d = %f", i, out[0][i])
		}
	}
	if out[0][110] == 0 {
		t.Error("Expected sound after the note offset")
	}
	if e.ActiveVoices() != 1 {
		t.Errorf("Expected 1 active voice, got %d", e.ActiveVoices())
	}

	// Offsets past the buffer are applied at its end
	e.QueueMidiMessage(midi.NoteOff(0, 69).At(5000))
	renderFrames(e, 16)
	if v := e.voices[0]; v.State() != voice.Releasing {
		t.Errorf("Expected late note-off applied, voice is %s", v.State())
	}
}

func TestParamChangesAreSampleAccurate(t *testing.T) {
	e := newTestEngine(t, 4)
	sineOnly(t, e)
	e.ProcessMidiMessage(midi.NoteOn(0, 69, 127))

	panIndex, ok := e.Parameters().IndexOf(ParamPan)
	if !ok {
		t.Fatal("Expected pan parameter")
	}

	out := newOutput(2, 256)
	ctx := newTestContext(out)
	ctx.ParamChanges = []param.Change{{Index: panIndex, Normalized: 0, SampleOffset: 128}}
	e.ProcessAudio(ctx)

	audible := false
	for i := 0; i < 128; i++ {
		if out[1][i] != 0 {
			audible = true
		}
	}
	if !audible {
		t.Error("Expected right channel audible before the pan change")
	}
	for i := 128; i < 256; i++ {
		if out[1][i] != 0 {
			t.Fatalf("Expected hard left from frame 128, right[%d] = %f", i, out[1][i])
		}
		if out[0][i] == 0 && i > 130 {
			t.Fatalf("Expected left channel audible, left[%d] = 0", i)
		}
	}
	if got := e.Parameters().Get(ParamPan).Get(); got != -1 {
		t.Errorf("Expected pan -1 after change, got %f", got)
	}
}

func TestMasterVolumeRamps(t *testing.T) {
	e := newTestEngine(t, 4)
	if got := e.master.Current(); math.Abs(got-0.7) > 1e-9 {
		t.Fatalf("Expected master to start at the parameter value 0.7, got %f", got)
	}

	set(t, e, ParamMasterVolume, 0)
	renderFrames(e, 64)
	if !e.master.IsSmoothing() {
		t.Error("Expected a ramp after the master volume change")
	}
	if got := e.master.Current(); got <= 0 || got >= 0.7 {
		t.Errorf("Expected master between 0 and 0.7 mid ramp, got %f", got)
	}

	// 20ms at 48kHz is 960 frames
	renderFrames(e, 1024)
	if e.master.IsSmoothing() || e.master.Current() != 0 {
		t.Errorf("Expected the ramp settled at 0, got %f", e.master.Current())
	}
}

func TestMonoOutput(t *testing.T) {
	e, err := New(Options{Polyphony: 4, Logger: debug.Discard()})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(bus.NewInstrumentMono(testSampleRate)); err != nil {
		t.Fatal(err)
	}
	if e.OutputChannels() != 1 {
		t.Fatalf("Expected 1 output channel, got %d", e.OutputChannels())
	}

	sineOnly(t, e)
	e.ProcessMidiMessage(midi.NoteOn(0, 60, 100))

	out := newOutput(3, 128)
	for ch := 1; ch < 3; ch++ {
		for i := range out[ch] {
			out[ch][i] = 9
		}
	}
	e.ProcessAudio(newTestContext(out))

	written := false
	for _, s := range out[0] {
		if s != 0 {
			written = true
		}
	}
	if !written {
		t.Error("Expected mono channel written")
	}
	for ch := 1; ch < 3; ch++ {
		for i, s := range out[ch] {
			if s != 9 {
				t.Fatalf("Expected undeclared channel %d untouched, frame %d = %f", ch, i, s)
			}
		}
	}
}

func TestShortFrames(t *testing.T) {
	e := newTestEngine(t, 4)
	sineOnly(t, e)
	e.ProcessMidiMessage(midi.NoteOn(0, 60, 100))

	out := newOutput(2, 64)
	for i := range out[0] {
		out[0][i] = 9
	}
	ctx := newTestContext(out)
	ctx.Frames = 32
	e.ProcessAudio(ctx)

	for i := 32; i < 64; i++ {
		if out[0][i] != 9 {
			t.Fatalf("Expected frames past Frames untouched, frame %d = %f", i, out[0][i])
		}
	}
}

func TestDeterministicRender(t *testing.T) {
	render := func() [][]float32 {
		e := newTestEngine(t, 4)
		set(t, e, ParamOsc1Wave, float64(oscillator.WaveNoise))
		set(t, e, ParamNoiseLevel, 0.5)
		set(t, e, ParamLFO1Wave, 4) // sample and hold
		set(t, e, ParamLFO1Depth, 1)
		set(t, e, ParamLFO1Dest, float64(DestFilter))
		e.ProcessMidiMessage(midi.NoteOn(0, 48, 100))
		e.ProcessMidiMessage(midi.NoteOn(0, 55, 90))
		return renderFrames(e, 1024)
	}

	a, b := render(), render()
	for ch := range a {
		for i := range a[ch] {
			if a[ch][i] != b[ch][i] {
				t.Fatalf("Expected identical renders, ch %d frame %d: %f vs %f", ch, i, a[ch][i], b[ch][i])
			}
		}
	}
}

func TestStateRoundTrip(t *testing.T) {
	src := newTestEngine(t, 4)
	set(t, src, ParamFilterCutoff, 1234.5) // logarithmic
	set(t, src, ParamOsc1Level, 0.37)      // linear
	set(t, src, ParamFilterMode, 2)
	set(t, src, ParamTuning, 432)
	want := src.Parameters().Values()

	blob := src.SaveState()

	dst := newTestEngine(t, 4)
	if err := dst.LoadState(blob); err != nil {
		t.Fatal(err)
	}
	for id, v := range want {
		got := dst.Parameters().Get(id).Get()
		if math.Abs(got-v) > 1e-6*math.Max(1, math.Abs(v)) {
			t.Errorf("%s: expected %f, got %f", id, v, got)
		}
	}

	if err := dst.LoadState(blob[:len(blob)-2]); !errors.Is(err, state.ErrTruncated) {
		t.Errorf("Expected ErrTruncated, got %v", err)
	}
}

func TestPresetRoundTrip(t *testing.T) {
	src := newTestEngine(t, 4)
	set(t, src, ParamFilterResonance, 3.5)

	var buf bytes.Buffer
	if err := src.SavePreset(&buf, "Bass"); err != nil {
		t.Fatal(err)
	}

	dst := newTestEngine(t, 4)
	h, err := dst.LoadPreset(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if h.Name != "Bass" || h.PluginID != PluginID {
		t.Errorf("Unexpected header %+v", h)
	}
	if got := dst.Parameters().Get(ParamFilterResonance).Get(); got != 3.5 {
		t.Errorf("Expected resonance 3.5, got %f", got)
	}
}

func TestProcessAudioDoesNotAllocate(t *testing.T) {
	e := newTestEngine(t, 16)
	for i := 0; i < 16; i++ {
		e.ProcessMidiMessage(midi.NoteOn(0, uint8(36+i*3), 100))
	}
	out := newOutput(2, 256)
	ctx := newTestContext(out)
	ctx.ParamChanges = []param.Change{{Index: 0, Normalized: 0.5, SampleOffset: 64}}

	allocs := testing.AllocsPerRun(20, func() {
		e.QueueMidiMessage(midi.ControlChange(0, midi.CCModWheel, 64).At(32))
		e.ProcessAudio(ctx)
	})
	if allocs != 0 {
		t.Errorf("Expected no allocations, got %f", allocs)
	}
}

func BenchmarkProcessAudio(b *testing.B) {
	e := newTestEngine(b, 16)
	e.Parameters().Get(ParamOsc2Level).Set(0.5)
	e.Parameters().Get(ParamSubLevel).Set(0.3)
	for i := 0; i < 16; i++ {
		e.ProcessMidiMessage(midi.NoteOn(0, uint8(36+i*3), 100))
	}
	ctx := newTestContext(newOutput(2, 512))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.ProcessAudio(ctx)
	}
}

package synth

import (
	"math"

	"github.com/realmrhigh/theone/pkg/dsp/distortion"
	"github.com/realmrhigh/theone/pkg/dsp/envelope"
	"github.com/realmrhigh/theone/pkg/dsp/filter"
	"github.com/realmrhigh/theone/pkg/dsp/modulation"
	"github.com/realmrhigh/theone/pkg/dsp/oscillator"
	"github.com/realmrhigh/theone/pkg/dsp/pan"
	"github.com/realmrhigh/theone/pkg/framework/voice"
	"github.com/realmrhigh/theone/pkg/midi"
)

// middleC is the key-tracking reference note
const middleC = 60

// Voice is one sounding note: two oscillators plus a sub, amp and filter
// envelopes, a resonant filter and two free running LFOs.
//
// All fields belong to the render goroutine.
type Voice struct {
	snap       *snapshot
	sampleRate float64

	state    voice.State
	note     uint8
	velocity uint8
	vel      float64 // velocity / 127
	age      uint64

	freq   float64 // current, possibly gliding
	target float64
	glide  float64 // per-sample ratio, 1 when settled

	osc1, osc2, sub *oscillator.Oscillator
	ampEnv, fltEnv  *envelope.ADSR
	filter          *filter.SVF
	lfo1, lfo2      *modulation.LFO
}

func newVoice(snap *snapshot, sampleRate float64, seed int64) *Voice {
	return &Voice{
		snap:       snap,
		sampleRate: sampleRate,
		glide:      1,
		osc1:       oscillator.New(sampleRate),
		osc2:       oscillator.New(sampleRate),
		sub:        oscillator.New(sampleRate),
		ampEnv:     envelope.New(sampleRate),
		fltEnv:     envelope.New(sampleRate),
		filter:     filter.NewSVF(sampleRate),
		lfo1:       modulation.NewLFO(sampleRate, seed),
		lfo2:       modulation.NewLFO(sampleRate, seed+1),
	}
}

// State implements voice.Voice
func (v *Voice) State() voice.State { return v.state }

// Note implements voice.Voice
func (v *Voice) Note() uint8 { return v.note }

// Age implements voice.Voice
func (v *Voice) Age() uint64 { return v.age }

// Velocity returns the trigger velocity
func (v *Voice) Velocity() uint8 { return v.velocity }

// Frequency returns the current base frequency in Hz
func (v *Voice) Frequency() float64 { return v.freq }

// Phase returns the phase of oscillator 1
func (v *Voice) Phase() float64 { return v.osc1.Phase() }

// Trigger implements voice.Voice.
//
// A free voice starts from zero phase with a clean filter. A stolen or
// legato voice keeps its phases and its envelopes restart from their
// current level. With glide enabled the pitch slides from the voice's
// previous frequency.
func (v *Voice) Trigger(note, velocity uint8, age uint64, legato bool) {
	target := midi.NoteToFrequency(float64(note), v.snap.tuning)

	if v.state == voice.Free && !legato {
		v.osc1.Reset()
		v.osc2.Reset()
		v.sub.Reset()
		v.filter.Reset()
		v.ampEnv.Reset()
		v.fltEnv.Reset()
	}

	v.setGlide(target)
	v.note = note
	v.velocity = velocity
	v.vel = float64(velocity) / 127
	v.age = age
	v.state = voice.Sounding

	v.ampEnv.Trigger()
	v.fltEnv.Trigger()
}

func (v *Voice) setGlide(target float64) {
	v.target = target
	samples := v.snap.glide * v.sampleRate
	if samples < 1 || v.freq <= 0 || v.freq == target {
		v.freq = target
		v.glide = 1
		return
	}
	v.glide = math.Pow(target/v.freq, 1/samples)
}

// Release implements voice.Voice
func (v *Voice) Release() {
	if v.state != voice.Sounding {
		return
	}
	v.state = voice.Releasing
	v.ampEnv.Release()
	v.fltEnv.Release()
}

// Kill implements voice.Voice
func (v *Voice) Kill() {
	v.state = voice.Free
	v.ampEnv.Reset()
	v.fltEnv.Reset()
	v.glide = 1
	v.freq = v.target
}

// setSampleRate retimes every component; phases and levels are kept
func (v *Voice) setSampleRate(sampleRate float64) {
	v.sampleRate = sampleRate
	v.osc1.SetSampleRate(sampleRate)
	v.osc2.SetSampleRate(sampleRate)
	v.sub.SetSampleRate(sampleRate)
	v.ampEnv.SetSampleRate(sampleRate)
	v.fltEnv.SetSampleRate(sampleRate)
	v.lfo1.SetSampleRate(sampleRate)
	v.lfo2.SetSampleRate(sampleRate)
	v.filter.Reset()
}

// reset returns the voice to its power-on state, LFO phases included
func (v *Voice) reset() {
	v.Kill()
	v.freq, v.target = 0, 0
	v.osc1.Reset()
	v.osc2.Reset()
	v.sub.Reset()
	v.filter.Reset()
	v.lfo1.Reset()
	v.lfo2.Reset()
}

// configure pushes the segment snapshot into the voice components
func (v *Voice) configure() {
	s := v.snap
	v.ampEnv.SetADSR(s.ampA, s.ampD, s.ampS, s.ampR)
	v.fltEnv.SetADSR(s.fltA, s.fltD, s.fltS, s.fltR)
	v.filter.SetMode(s.filterMode)
	v.lfo1.SetFrequency(s.lfo1Rate)
	v.lfo1.SetWaveform(s.lfo1Wave)
	v.lfo2.SetFrequency(s.lfo2Rate)
	v.lfo2.SetWaveform(s.lfo2Wave)
}

// modSums collects LFO output per destination for one frame
type modSums struct {
	pitch  float64 // product of (1 + depth*lfo)
	filter float64
	volume float64
	pan    float64
}

func (m *modSums) add(dest Destination, value float64) {
	switch dest {
	case DestPitch:
		m.pitch *= 1 + pitchLFODepth*value
	case DestFilter:
		m.filter += value
	case DestVolume:
		m.volume += value
	case DestPan:
		m.pan += value
	}
}

// render produces this voice's stereo contribution for one frame.
// bendMul is the pitch-bend frequency multiplier and noise the frame's
// shared noise draw.
func (v *Voice) render(bendMul, modWheel float64, noise float32) (left, right float64) {
	s := v.snap

	// Portamento
	if v.glide != 1 {
		v.freq *= v.glide
		if (v.glide > 1 && v.freq >= v.target) || (v.glide < 1 && v.freq <= v.target) {
			v.freq = v.target
			v.glide = 1
		}
	}

	// LFOs run every frame so their phase keeps moving
	mods := modSums{pitch: 1}
	mods.add(s.lfo1Dest, v.lfo1.Process()*s.lfo1Depth*(1+modWheel*modWheelDepth))
	mods.add(s.lfo2Dest, v.lfo2.Process()*s.lfo2Depth)

	pitch := v.freq * bendMul * mods.pitch
	v.osc1.SetFrequency(pitch * s.osc1Ratio)
	v.osc2.SetFrequency(pitch * s.osc2Ratio)
	v.sub.SetFrequency(pitch * 0.5)

	x := float64(v.osc1.Next(s.osc1Wave, noise))*s.osc1Level +
		float64(v.osc2.Next(s.osc2Wave, noise))*s.osc2Level +
		float64(v.sub.Square())*s.subLevel +
		float64(noise)*s.noiseLevel
	x = distortion.SoftClip(x)

	amp := v.ampEnv.Next()
	if !v.ampEnv.IsActive() && v.state == voice.Releasing {
		v.fltEnv.Next()
		v.state = voice.Free
		return 0, 0
	}

	fenv := v.fltEnv.Next()
	velMul := 1 + (v.vel-0.5)*s.velSens*2
	octaves := (float64(v.note)-middleC)/12*s.keyTrack +
		s.envAmount*fenv*filterEnvOct +
		mods.filter*filterLFOOct
	v.filter.SetCutoffQ(v.sampleRate, s.cutoff*velMul*math.Exp2(octaves), s.resonance)

	y := float64(v.filter.Process(float32(x)))
	out := y * amp * v.vel * (1 + mods.volume*volumeLFODepth)

	l, r := pan.EqualPower(s.pan + mods.pan)
	return out * l, out * r
}

package synth

import (
	"math"

	"github.com/realmrhigh/theone/pkg/dsp/envelope"
	"github.com/realmrhigh/theone/pkg/dsp/filter"
	"github.com/realmrhigh/theone/pkg/dsp/modulation"
	"github.com/realmrhigh/theone/pkg/dsp/oscillator"
	"github.com/realmrhigh/theone/pkg/framework/param"
	"github.com/realmrhigh/theone/pkg/midi"
)

// Parameter IDs
const (
	ParamOsc1Wave   = "osc1.wave"
	ParamOsc1Level  = "osc1.level"
	ParamOsc1Octave = "osc1.octave"
	ParamOsc1Semi   = "osc1.semi"
	ParamOsc1Fine   = "osc1.fine"

	ParamOsc2Wave   = "osc2.wave"
	ParamOsc2Level  = "osc2.level"
	ParamOsc2Octave = "osc2.octave"
	ParamOsc2Semi   = "osc2.semi"
	ParamOsc2Fine   = "osc2.fine"

	ParamSubLevel   = "sub.level"
	ParamNoiseLevel = "noise.level"

	ParamFilterMode      = "filter.mode"
	ParamFilterCutoff    = "filter.cutoff"
	ParamFilterResonance = "filter.resonance"
	ParamFilterKeyTrack  = "filter.keytrack"
	ParamFilterVelSens   = "filter.velsens"
	ParamFilterEnvAmount = "filter.envamount"

	ParamAmpAttack  = "amp.attack"
	ParamAmpDecay   = "amp.decay"
	ParamAmpSustain = "amp.sustain"
	ParamAmpRelease = "amp.release"

	ParamFilterAttack  = "fenv.attack"
	ParamFilterDecay   = "fenv.decay"
	ParamFilterSustain = "fenv.sustain"
	ParamFilterRelease = "fenv.release"

	ParamLFO1Rate  = "lfo1.rate"
	ParamLFO1Wave  = "lfo1.wave"
	ParamLFO1Depth = "lfo1.depth"
	ParamLFO1Dest  = "lfo1.dest"

	ParamLFO2Rate  = "lfo2.rate"
	ParamLFO2Wave  = "lfo2.wave"
	ParamLFO2Depth = "lfo2.depth"
	ParamLFO2Dest  = "lfo2.dest"

	ParamGlide     = "glide"
	ParamBendRange = "bend.range"

	ParamMasterVolume = "master.volume"
	ParamPan          = "pan"

	ParamTuning = "tuning"
)

// Destination is where an LFO is routed
type Destination int

const (
	DestNone Destination = iota
	DestPitch
	DestFilter
	DestVolume
	DestPan
)

// DestinationNames lists the LFO destinations in enum order
var DestinationNames = []string{"None", "Pitch", "Filter", "Volume", "Pan"}

// Modulation scaling per unit of LFO output
const (
	pitchLFODepth  = 0.05 // ±5% frequency per LFO
	filterLFOOct   = 2.0  // ±2 octaves
	filterEnvOct   = 4.0  // ±4 octaves
	volumeLFODepth = 0.5
	modWheelDepth  = 2.0
)

// paramSet holds the engine's parameters by field for lookup-free reads
type paramSet struct {
	osc1Wave, osc1Level, osc1Octave, osc1Semi, osc1Fine *param.Parameter
	osc2Wave, osc2Level, osc2Octave, osc2Semi, osc2Fine *param.Parameter

	subLevel, noiseLevel *param.Parameter

	filterMode, cutoff, resonance, keyTrack, velSens, envAmount *param.Parameter

	ampA, ampD, ampS, ampR *param.Parameter
	fltA, fltD, fltS, fltR *param.Parameter

	lfo1Rate, lfo1Wave, lfo1Depth, lfo1Dest *param.Parameter
	lfo2Rate, lfo2Wave, lfo2Depth, lfo2Dest *param.Parameter

	glide, bendRange *param.Parameter

	masterVolume, pan *param.Parameter

	tuning *param.Parameter
}

func envelopeParams(prefix, name string, a, d, s, r float64) (attack, decay, sustain, release *param.Parameter) {
	attack = param.TimeParameter(prefix+".attack", name+" Attack", envelope.MinTime, 10, a).MustBuild()
	decay = param.TimeParameter(prefix+".decay", name+" Decay", envelope.MinTime, 10, d).MustBuild()
	sustain = param.LevelParameter(prefix+".sustain", name+" Sustain", s).MustBuild()
	release = param.TimeParameter(prefix+".release", name+" Release", envelope.MinTime, 10, r).MustBuild()
	return
}

// newParamSet builds every parameter and returns them in registration order
func newParamSet() (*paramSet, []*param.Parameter) {
	p := &paramSet{}

	p.osc1Wave = param.ChoiceParameter(ParamOsc1Wave, "Osc 1 Wave", oscillator.Names...).Default(float64(oscillator.WaveSaw)).MustBuild()
	p.osc1Level = param.LevelParameter(ParamOsc1Level, "Osc 1 Level", 0.8).MustBuild()
	p.osc1Octave = param.OctaveParameter(ParamOsc1Octave, "Osc 1 Octave", 3).MustBuild()
	p.osc1Semi = param.SemitoneParameter(ParamOsc1Semi, "Osc 1 Semitone", 12).MustBuild()
	p.osc1Fine = param.CentsParameter(ParamOsc1Fine, "Osc 1 Fine").MustBuild()

	p.osc2Wave = param.ChoiceParameter(ParamOsc2Wave, "Osc 2 Wave", oscillator.Names...).Default(float64(oscillator.WaveSquare)).MustBuild()
	p.osc2Level = param.LevelParameter(ParamOsc2Level, "Osc 2 Level", 0).MustBuild()
	p.osc2Octave = param.OctaveParameter(ParamOsc2Octave, "Osc 2 Octave", 3).MustBuild()
	p.osc2Semi = param.SemitoneParameter(ParamOsc2Semi, "Osc 2 Semitone", 12).MustBuild()
	p.osc2Fine = param.CentsParameter(ParamOsc2Fine, "Osc 2 Fine").MustBuild()

	p.subLevel = param.LevelParameter(ParamSubLevel, "Sub Level", 0).MustBuild()
	p.noiseLevel = param.LevelParameter(ParamNoiseLevel, "Noise Level", 0).MustBuild()

	p.filterMode = param.ChoiceParameter(ParamFilterMode, "Filter Mode", filter.ModeNames...).MustBuild()
	p.cutoff = param.FrequencyParameter(ParamFilterCutoff, "Cutoff", filter.MinCutoff, filter.MaxCutoff, 12000).MustBuild()
	p.resonance = param.New(ParamFilterResonance, "Resonance").
		Range(filter.MinQ, filter.MaxQ).
		Default(filter.DefaultQ).
		Logarithmic().
		Gesture().
		Precision(2).
		MustBuild()
	p.keyTrack = param.LevelParameter(ParamFilterKeyTrack, "Key Tracking", 0).MustBuild()
	p.velSens = param.LevelParameter(ParamFilterVelSens, "Velocity Sensitivity", 0).MustBuild()
	p.envAmount = param.AmountParameter(ParamFilterEnvAmount, "Filter Env Amount", 0).MustBuild()

	p.ampA, p.ampD, p.ampS, p.ampR = envelopeParams("amp", "Amp", 0.005, 0.2, 0.8, 0.3)
	p.fltA, p.fltD, p.fltS, p.fltR = envelopeParams("fenv", "Filter", 0.01, 0.3, 0.5, 0.3)

	p.lfo1Rate = param.RateParameter(ParamLFO1Rate, "LFO 1 Rate", modulation.MinRate, modulation.MaxRate, 5).Category(param.CategoryModulation).MustBuild()
	p.lfo1Wave = param.ChoiceParameter(ParamLFO1Wave, "LFO 1 Wave", modulation.WaveformNames...).Category(param.CategoryModulation).MustBuild()
	p.lfo1Depth = param.LevelParameter(ParamLFO1Depth, "LFO 1 Depth", 0).Category(param.CategoryModulation).MustBuild()
	p.lfo1Dest = param.ChoiceParameter(ParamLFO1Dest, "LFO 1 Destination", DestinationNames...).Default(float64(DestPitch)).Category(param.CategoryModulation).MustBuild()

	p.lfo2Rate = param.RateParameter(ParamLFO2Rate, "LFO 2 Rate", modulation.MinRate, modulation.MaxRate, 0.5).Category(param.CategoryModulation).MustBuild()
	p.lfo2Wave = param.ChoiceParameter(ParamLFO2Wave, "LFO 2 Wave", modulation.WaveformNames...).Default(float64(modulation.WaveformTriangle)).Category(param.CategoryModulation).MustBuild()
	p.lfo2Depth = param.LevelParameter(ParamLFO2Depth, "LFO 2 Depth", 0).Category(param.CategoryModulation).MustBuild()
	p.lfo2Dest = param.ChoiceParameter(ParamLFO2Dest, "LFO 2 Destination", DestinationNames...).Default(float64(DestFilter)).Category(param.CategoryModulation).MustBuild()

	p.glide = param.TimeParameter(ParamGlide, "Glide", 0, 5, 0).MustBuild()
	p.bendRange = param.New(ParamBendRange, "Bend Range").
		Range(0, 24).
		Default(2).
		Unit("st").
		Integer().
		MustBuild()

	p.masterVolume = param.LevelParameter(ParamMasterVolume, "Master Volume", 0.7).Category(param.CategoryAudioIO).MustBuild()
	p.pan = param.PanParameter(ParamPan, "Pan").Category(param.CategoryAudioIO).MustBuild()

	p.tuning = param.New(ParamTuning, "A4 Tuning").
		Range(415, 466).
		Default(midi.DefaultTuning).
		Unit("Hz").
		Precision(1).
		Category(param.CategoryInternalState).
		MustBuild()

	return p, []*param.Parameter{
		p.osc1Wave, p.osc1Level, p.osc1Octave, p.osc1Semi, p.osc1Fine,
		p.osc2Wave, p.osc2Level, p.osc2Octave, p.osc2Semi, p.osc2Fine,
		p.subLevel, p.noiseLevel,
		p.filterMode, p.cutoff, p.resonance, p.keyTrack, p.velSens, p.envAmount,
		p.ampA, p.ampD, p.ampS, p.ampR,
		p.fltA, p.fltD, p.fltS, p.fltR,
		p.lfo1Rate, p.lfo1Wave, p.lfo1Depth, p.lfo1Dest,
		p.lfo2Rate, p.lfo2Wave, p.lfo2Depth, p.lfo2Dest,
		p.glide, p.bendRange,
		p.masterVolume, p.pan,
		p.tuning,
	}
}

// snapshot is the parameter picture used for one render segment
type snapshot struct {
	osc1Wave, osc2Wave     oscillator.Waveform
	osc1Ratio, osc2Ratio   float64 // frequency multipliers from octave/semi/fine
	osc1Level, osc2Level   float64
	subLevel, noiseLevel   float64
	filterMode             filter.Mode
	cutoff, resonance      float64
	keyTrack, velSens      float64
	envAmount              float64
	ampA, ampD, ampS, ampR float64
	fltA, fltD, fltS, fltR float64
	lfo1Rate, lfo2Rate     float64
	lfo1Wave, lfo2Wave     modulation.Waveform
	lfo1Depth, lfo2Depth   float64
	lfo1Dest, lfo2Dest     Destination
	glide                  float64
	bendRange              float64
	pan                    float64
	tuning                 float64
}

func detune(octave, semi, cents float64) float64 {
	return math.Exp2(octave + (semi+cents/100)/12)
}

// read fills s from the current parameter values
func (s *snapshot) read(p *paramSet) {
	s.osc1Wave = oscillator.Waveform(p.osc1Wave.Get())
	s.osc2Wave = oscillator.Waveform(p.osc2Wave.Get())
	s.osc1Ratio = detune(p.osc1Octave.Get(), p.osc1Semi.Get(), p.osc1Fine.Get())
	s.osc2Ratio = detune(p.osc2Octave.Get(), p.osc2Semi.Get(), p.osc2Fine.Get())
	s.osc1Level = p.osc1Level.Get()
	s.osc2Level = p.osc2Level.Get()
	s.subLevel = p.subLevel.Get()
	s.noiseLevel = p.noiseLevel.Get()

	s.filterMode = filter.Mode(p.filterMode.Get())
	s.cutoff = p.cutoff.Get()
	s.resonance = p.resonance.Get()
	s.keyTrack = p.keyTrack.Get()
	s.velSens = p.velSens.Get()
	s.envAmount = p.envAmount.Get()

	s.ampA, s.ampD, s.ampS, s.ampR = p.ampA.Get(), p.ampD.Get(), p.ampS.Get(), p.ampR.Get()
	s.fltA, s.fltD, s.fltS, s.fltR = p.fltA.Get(), p.fltD.Get(), p.fltS.Get(), p.fltR.Get()

	s.lfo1Rate = p.lfo1Rate.Get()
	s.lfo1Wave = modulation.Waveform(p.lfo1Wave.Get())
	s.lfo1Depth = p.lfo1Depth.Get()
	s.lfo1Dest = Destination(p.lfo1Dest.Get())
	s.lfo2Rate = p.lfo2Rate.Get()
	s.lfo2Wave = modulation.Waveform(p.lfo2Wave.Get())
	s.lfo2Depth = p.lfo2Depth.Get()
	s.lfo2Dest = Destination(p.lfo2Dest.Get())

	s.glide = p.glide.Get()
	s.bendRange = p.bendRange.Get()
	s.pan = p.pan.Get()
	s.tuning = p.tuning.Get()
}

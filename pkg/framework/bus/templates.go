package bus

// Common IO configurations

// NewInstrumentStereo is a synth with no audio input and a stereo output
func NewInstrumentStereo(sampleRate float64) IOConfig {
	return NewBuilder(sampleRate).
		WithStereoOutput().
		WithVariableBlockSize().
		MustBuild()
}

// NewInstrumentMono is a synth with no audio input and a mono output
func NewInstrumentMono(sampleRate float64) IOConfig {
	return NewBuilder(sampleRate).
		WithMonoOutput().
		WithVariableBlockSize().
		MustBuild()
}

// NewEffectStereo is a stereo in, stereo out effect
func NewEffectStereo(sampleRate float64) IOConfig {
	return NewBuilder(sampleRate).
		WithStereoInput().
		WithStereoOutput().
		MustBuild()
}

// NewRealtime is a stereo instrument tuned for a live device with a fixed
// period and the given latency
func NewRealtime(sampleRate float64, blockSize int) IOConfig {
	return NewBuilder(sampleRate).
		WithStereoOutput().
		WithMaxBlockSize(blockSize).
		WithLatency(blockSize).
		MustBuild()
}

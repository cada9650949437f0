package bus

import (
	"errors"
	"fmt"
)

// Builder provides a fluent API for building IO configurations
type Builder struct {
	config IOConfig
	errors []error
}

// NewBuilder creates a builder for the given sample rate
func NewBuilder(sampleRate float64) *Builder {
	return &Builder{
		config: IOConfig{
			SampleRate:   sampleRate,
			MaxBlockSize: 512,
		},
	}
}

// WithInputs requests audio input channels
func (b *Builder) WithInputs(channels int) *Builder {
	if channels < 0 {
		b.errors = append(b.errors, fmt.Errorf("negative input channel count %d", channels))
		return b
	}
	b.config.RequestedInputChannels = channels
	return b
}

// WithOutputs requests audio output channels
func (b *Builder) WithOutputs(channels int) *Builder {
	if channels < 1 {
		b.errors = append(b.errors, fmt.Errorf("output channel count %d below one", channels))
		return b
	}
	b.config.RequestedOutputChannels = channels
	return b
}

// WithStereoOutput is a convenience method for stereo output
func (b *Builder) WithStereoOutput() *Builder {
	return b.WithOutputs(2)
}

// WithMonoOutput is a convenience method for mono output
func (b *Builder) WithMonoOutput() *Builder {
	return b.WithOutputs(1)
}

// WithStereoInput is a convenience method for stereo input
func (b *Builder) WithStereoInput() *Builder {
	return b.WithInputs(2)
}

// WithMaxBlockSize sets the largest buffer the host will pass
func (b *Builder) WithMaxBlockSize(frames int) *Builder {
	b.config.MaxBlockSize = frames
	return b
}

// WithVariableBlockSize marks that buffers may be shorter than MaxBlockSize
func (b *Builder) WithVariableBlockSize() *Builder {
	b.config.VariableBlockSize = true
	return b
}

// WithSampleRateConversion marks that the host can resample
func (b *Builder) WithSampleRateConversion() *Builder {
	b.config.SampleRateConversion = true
	return b
}

// WithLatency sets the preferred latency in frames
func (b *Builder) WithLatency(frames int) *Builder {
	b.config.PreferredLatency = frames
	return b
}

// Validate checks if the configuration is valid
func (b *Builder) Validate() error {
	if len(b.errors) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(b.errors...))
	}
	return b.config.Validate()
}

// Build returns the negotiated configuration or an error
func (b *Builder) Build() (IOConfig, error) {
	if err := b.Validate(); err != nil {
		return IOConfig{}, err
	}
	return b.config.Negotiate(MaxChannels), nil
}

// MustBuild returns the built configuration or panics on error
func (b *Builder) MustBuild() IOConfig {
	config, err := b.Build()
	if err != nil {
		panic(err)
	}
	return config
}

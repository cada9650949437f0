package param

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRange is returned when a parameter's range or default is unusable
var ErrInvalidRange = errors.New("param: invalid range")

// Builder provides a fluent API for creating parameters
type Builder struct {
	param *Parameter
}

// New creates a new parameter builder
func New(id string, name string) *Builder {
	return &Builder{
		param: &Parameter{
			ID:           id,
			Name:         name,
			Type:         TypeFloat,
			Category:     CategoryControl,
			Min:          0,
			Max:          1,
			DefaultValue: 0,
			Precision:    2,
			Flags:        CanAutomate | IsRenderSafe,
		},
	}
}

// Range sets the min and max values
func (b *Builder) Range(min, max float64) *Builder {
	b.param.Min = min
	b.param.Max = max
	return b
}

// Default sets the default value (in plain range, not normalized)
func (b *Builder) Default(value float64) *Builder {
	b.param.DefaultValue = value
	return b
}

// Unit sets the unit string
func (b *Builder) Unit(unit string) *Builder {
	b.param.Unit = unit
	return b
}

// Step sets a quantization step in plain units
func (b *Builder) Step(step float64) *Builder {
	b.param.Step = step
	return b
}

// Category sets the parameter category
func (b *Builder) Category(c Category) *Builder {
	b.param.Category = c
	return b
}

// Logarithmic switches normalization to log scaling
func (b *Builder) Logarithmic() *Builder {
	b.param.Scale = ScaleLog
	return b
}

// Bipolar marks the parameter as centred on zero
func (b *Builder) Bipolar() *Builder {
	b.param.Flags |= IsBipolar
	return b
}

// Gesture marks the parameter as suited to continuous touch gestures
func (b *Builder) Gesture() *Builder {
	b.param.Flags |= IsGesture
	return b
}

// Precision sets the number of decimals shown for float values
func (b *Builder) Precision(decimals int) *Builder {
	b.param.Precision = decimals
	return b
}

// Integer makes the parameter a whole-number value
func (b *Builder) Integer() *Builder {
	b.param.Type = TypeInteger
	return b
}

// Toggle creates a boolean parameter
func (b *Builder) Toggle() *Builder {
	b.param.Type = TypeBoolean
	b.param.Min = 0
	b.param.Max = 1
	return b
}

// Enum makes the parameter select one of the given choices
func (b *Builder) Enum(choices ...string) *Builder {
	b.param.Type = TypeEnum
	b.param.Choices = choices
	b.param.Min = 0
	b.param.Max = float64(len(choices) - 1)
	return b
}

// Text marks the parameter as displayed only through its formatter
func (b *Builder) Text() *Builder {
	b.param.Type = TypeText
	return b
}

// Flags sets parameter flags
func (b *Builder) Flags(flags uint32) *Builder {
	b.param.Flags = flags
	return b
}

// ReadOnly marks the parameter as read-only
func (b *Builder) ReadOnly() *Builder {
	b.param.Flags |= IsReadOnly
	b.param.Flags &^= CanAutomate
	return b
}

// Hidden marks the parameter as hidden
func (b *Builder) Hidden() *Builder {
	b.param.Flags |= IsHidden
	return b
}

// Formatter sets custom value formatting and parsing. A nil parse function
// keeps the default parser.
func (b *Builder) Formatter(format func(float64) string, parse func(string) (float64, error)) *Builder {
	b.param.formatFunc = format
	b.param.parseFunc = parse
	return b
}

// Build validates the configuration and returns the parameter set to its default
func (b *Builder) Build() (*Parameter, error) {
	p := b.param
	if err := p.validate(); err != nil {
		return nil, err
	}
	p.Reset()
	return p, nil
}

// validate checks the id, range, default and choices of p
func (p *Parameter) validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRange)
	}
	if math.IsNaN(p.Min) || math.IsNaN(p.Max) || !(p.Min < p.Max) {
		return fmt.Errorf("%w: %s min %g must be below max %g", ErrInvalidRange, p.ID, p.Min, p.Max)
	}
	if p.DefaultValue < p.Min || p.DefaultValue > p.Max {
		return fmt.Errorf("%w: %s default %g outside [%g, %g]", ErrInvalidRange, p.ID, p.DefaultValue, p.Min, p.Max)
	}
	if p.Type == TypeEnum && len(p.Choices) < 2 {
		return fmt.Errorf("%w: %s needs at least two choices", ErrInvalidRange, p.ID)
	}
	return nil
}

// MustBuild is Build for static tables; it panics on an invalid definition
func (b *Builder) MustBuild() *Parameter {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}

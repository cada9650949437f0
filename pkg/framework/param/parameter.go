package param

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
)

// ValueType describes how a parameter value is interpreted and displayed
type ValueType int

const (
	// TypeFloat is a continuous value
	TypeFloat ValueType = iota
	// TypeInteger is a whole-number value
	TypeInteger
	// TypeBoolean is an on/off switch (On above 0.5)
	TypeBoolean
	// TypeEnum selects one of a list of named choices
	TypeEnum
	// TypeText is a value shown through a custom formatter only
	TypeText
)

// String returns the type name
func (t ValueType) String() string {
	switch t {
	case TypeFloat:
		return "float"
	case TypeInteger:
		return "integer"
	case TypeBoolean:
		return "boolean"
	case TypeEnum:
		return "enum"
	case TypeText:
		return "text"
	default:
		return "unknown"
	}
}

// Category groups parameters by their role in the plugin
type Category int

const (
	// CategoryAudioIO covers gain staging at the plugin boundary
	CategoryAudioIO Category = iota
	// CategoryControl covers ordinary sound-design controls
	CategoryControl
	// CategoryInternalState covers values that are saved but rarely edited
	CategoryInternalState
	// CategoryModulation covers LFO and routing controls
	CategoryModulation
)

// String returns the category name
func (c Category) String() string {
	switch c {
	case CategoryAudioIO:
		return "audio-io"
	case CategoryControl:
		return "control"
	case CategoryInternalState:
		return "internal-state"
	case CategoryModulation:
		return "modulation"
	default:
		return "unknown"
	}
}

// Scaling is the law used to map between plain and normalized values
type Scaling int

const (
	// ScaleLinear maps normalized values linearly onto the range
	ScaleLinear Scaling = iota
	// ScaleLog maps normalized values in log space
	ScaleLog
)

// Flags for parameters
const (
	CanAutomate  uint32 = 1 << 0
	IsReadOnly   uint32 = 1 << 1
	IsBipolar    uint32 = 1 << 2
	IsGesture    uint32 = 1 << 3
	IsRenderSafe uint32 = 1 << 4
	IsHidden     uint32 = 1 << 5
)

// logFloor replaces non-positive bounds in log scaling to avoid log(0)
const logFloor = 0.001

// Parameter represents a plugin parameter
type Parameter struct {
	ID           string
	Name         string
	Unit         string
	Type         ValueType
	Category     Category
	Min          float64
	Max          float64
	DefaultValue float64 // plain value
	Step         float64 // 0 = continuous
	Scale        Scaling
	Flags        uint32
	Precision    int
	Choices      []string

	// raw and modulation are float64 bit patterns, updated independently
	raw atomic.Uint64
	mod atomic.Uint64

	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// Descriptor is an immutable snapshot of a parameter's static description
type Descriptor struct {
	ID           string
	Name         string
	Unit         string
	Type         ValueType
	Category     Category
	Min          float64
	Max          float64
	DefaultValue float64
	Step         float64
	Scale        Scaling
	Flags        uint32
	Choices      []string
}

// Get returns the effective value: clamp(raw + modulation, min, max).
// Safe to call from the render goroutine.
func (p *Parameter) Get() float64 {
	v := math.Float64frombits(p.raw.Load()) + math.Float64frombits(p.mod.Load())
	return p.clamp(v)
}

// Raw returns the stored value without modulation
func (p *Parameter) Raw() float64 {
	return math.Float64frombits(p.raw.Load())
}

// Set clamps and stores a plain value
func (p *Parameter) Set(value float64) {
	if math.IsNaN(value) {
		return
	}
	p.raw.Store(math.Float64bits(p.quantize(p.clamp(value))))
}

// Modulation returns the current modulation offset
func (p *Parameter) Modulation() float64 {
	return math.Float64frombits(p.mod.Load())
}

// SetModulation sets an additive offset on top of the raw value
func (p *Parameter) SetModulation(amount float64) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return
	}
	p.mod.Store(math.Float64bits(amount))
}

// ClearModulation removes the modulation offset
func (p *Parameter) ClearModulation() {
	p.mod.Store(0)
}

// Reset restores the default value and clears modulation
func (p *Parameter) Reset() {
	p.Set(p.DefaultValue)
	p.ClearModulation()
}

// GetNormalized returns the effective value mapped to 0-1
func (p *Parameter) GetNormalized() float64 {
	return p.Normalize(p.Get())
}

// SetNormalized sets the value from a 0-1 position
func (p *Parameter) SetNormalized(n float64) {
	p.Set(p.Denormalize(n))
}

// Normalize converts plain value to normalized (0-1)
func (p *Parameter) Normalize(plain float64) float64 {
	plain = p.clamp(plain)
	var n float64
	switch p.Scale {
	case ScaleLog:
		lo, hi := logBounds(p.Min, p.Max)
		v := math.Max(plain, logFloor)
		n = (math.Log(v) - math.Log(lo)) / (math.Log(hi) - math.Log(lo))
	default:
		n = (plain - p.Min) / (p.Max - p.Min)
	}
	return clamp01(n)
}

// Denormalize converts normalized (0-1) to plain value
func (p *Parameter) Denormalize(normalized float64) float64 {
	n := clamp01(normalized)
	switch p.Scale {
	case ScaleLog:
		if n == 0 {
			return p.Min
		}
		lo, hi := logBounds(p.Min, p.Max)
		v := math.Exp(math.Log(lo) + n*(math.Log(hi)-math.Log(lo)))
		return p.clamp(v)
	default:
		return p.Min + n*(p.Max-p.Min)
	}
}

// DisplayString formats the effective value for display
func (p *Parameter) DisplayString() string {
	return p.Format(p.Get())
}

// Format formats a plain value the way this parameter displays it
func (p *Parameter) Format(plain float64) string {
	if p.formatFunc != nil {
		return p.formatFunc(plain)
	}

	switch p.Type {
	case TypeBoolean:
		if plain >= 0.5 {
			return "On"
		}
		return "Off"
	case TypeInteger:
		return withUnit(strconv.Itoa(int(plain)), p.Unit)
	case TypeEnum:
		idx := int(plain - p.Min)
		if idx >= 0 && idx < len(p.Choices) {
			return p.Choices[idx]
		}
		return strconv.Itoa(int(plain))
	default:
		return withUnit(strconv.FormatFloat(plain, 'f', p.Precision, 64), p.Unit)
	}
}

// SetDisplayString parses a human-entered value. It returns false and leaves
// the value unchanged when the text cannot be parsed.
func (p *Parameter) SetDisplayString(s string) bool {
	plain, err := p.Parse(s)
	if err != nil {
		return false
	}
	p.Set(plain)
	return true
}

// Parse converts display text to a plain value
func (p *Parameter) Parse(s string) (float64, error) {
	if p.parseFunc != nil {
		return p.parseFunc(s)
	}

	str := strings.TrimSpace(s)
	switch p.Type {
	case TypeBoolean:
		switch strings.ToLower(str) {
		case "on", "true", "yes", "1":
			return 1, nil
		case "off", "false", "no", "0":
			return 0, nil
		}
		return 0, fmt.Errorf("invalid boolean: %q", s)
	case TypeEnum:
		for i, choice := range p.Choices {
			if strings.EqualFold(str, choice) {
				return p.Min + float64(i), nil
			}
		}
	}

	if p.Unit != "" {
		str = strings.TrimSpace(strings.TrimSuffix(str, p.Unit))
	}
	v, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %q", s)
	}
	if p.Type == TypeInteger {
		v = math.Trunc(v)
	}
	return v, nil
}

// Descriptor returns the static description of the parameter
func (p *Parameter) Descriptor() Descriptor {
	return Descriptor{
		ID:           p.ID,
		Name:         p.Name,
		Unit:         p.Unit,
		Type:         p.Type,
		Category:     p.Category,
		Min:          p.Min,
		Max:          p.Max,
		DefaultValue: p.DefaultValue,
		Step:         p.Step,
		Scale:        p.Scale,
		Flags:        p.Flags,
		Choices:      p.Choices,
	}
}

// HasFlag reports whether all bits of flag are set
func (p *Parameter) HasFlag(flag uint32) bool {
	return p.Flags&flag == flag
}

func (p *Parameter) clamp(v float64) float64 {
	if v < p.Min {
		return p.Min
	}
	if v > p.Max {
		return p.Max
	}
	return v
}

// quantize snaps discrete types and stepped parameters onto their grid
func (p *Parameter) quantize(v float64) float64 {
	switch {
	case p.Step > 0:
		v = p.Min + math.Round((v-p.Min)/p.Step)*p.Step
	case p.Type == TypeInteger, p.Type == TypeEnum:
		v = math.Round(v)
	case p.Type == TypeBoolean:
		if v >= 0.5 {
			v = 1
		} else {
			v = 0
		}
	default:
		return v
	}
	return p.clamp(v)
}

func logBounds(min, max float64) (float64, float64) {
	if min <= 0 {
		min = logFloor
	}
	if max <= 0 {
		max = logFloor
	}
	return min, max
}

func clamp01(n float64) float64 {
	if n < 0 || math.IsNaN(n) {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

func withUnit(s, unit string) string {
	if unit == "" {
		return s
	}
	return s + " " + unit
}

package plugin

import (
	"crypto/sha1"
	"errors"
	"fmt"
)

// ErrInvalidInfo is returned for plugin metadata missing required fields
var ErrInvalidInfo = errors.New("plugin: invalid info")

// Kind classifies a plugin for hosts
type Kind int

const (
	// KindInstrument generates audio from MIDI
	KindInstrument Kind = iota
	// KindEffect processes incoming audio
	KindEffect
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindInstrument:
		return "instrument"
	case KindEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// CostClass is a coarse CPU cost estimate
type CostClass int

const (
	CostLow CostClass = iota
	CostMedium
	CostHigh
)

// String returns the cost class name
func (c CostClass) String() string {
	switch c {
	case CostLow:
		return "low"
	case CostMedium:
		return "medium"
	case CostHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Cost is the rough resource estimate a host can use when budgeting
type Cost struct {
	CPU         CostClass
	MemoryBytes int64
}

// Info contains plugin metadata
type Info struct {
	ID         string // Unique plugin identifier (e.g., "com.example.myplugin")
	Name       string // Display name
	Vendor     string // Company/developer name
	Version    string // Semantic version (e.g., "1.0.0")
	Kind       Kind
	MIDIInput  bool
	MIDIOutput bool
	Cost       Cost
}

// Validate checks the fields a host relies on
func (i Info) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidInfo)
	}
	if i.Name == "" {
		return fmt.Errorf("%w: %s has no name", ErrInvalidInfo, i.ID)
	}
	if i.Kind != KindInstrument && i.Kind != KindEffect {
		return fmt.Errorf("%w: %s has kind %d", ErrInvalidInfo, i.ID, i.Kind)
	}
	return nil
}

// UID derives a stable 16-byte identifier from the string ID
func (i Info) UID() [16]byte {
	sum := sha1.Sum([]byte(i.ID))
	var uid [16]byte
	copy(uid[:], sum[:16])
	// Name-based UUID (version 5, RFC 4122 variant)
	uid[6] = (uid[6] & 0x0f) | 0x50
	uid[8] = (uid[8] & 0x3f) | 0x80
	return uid
}

// String describes the plugin for logs
func (i Info) String() string {
	return fmt.Sprintf("%s %s (%s, %s)", i.Name, i.Version, i.ID, i.Kind)
}

// Package voice schedules notes onto a fixed pool of voices.
package voice

// State is where a voice is in its note lifecycle
type State int

const (
	// Free voices are silent and available
	Free State = iota
	// Sounding voices hold a pressed (or pedal-held) note
	Sounding
	// Releasing voices are fading out after note-off
	Releasing
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Free:
		return "free"
	case Sounding:
		return "sounding"
	case Releasing:
		return "releasing"
	default:
		return "unknown"
	}
}

// Voice is one slot of the pool as the allocator sees it
type Voice interface {
	// State returns the lifecycle state
	State() State
	// Note returns the MIDI note the voice owns; meaningless when free
	Note() uint8
	// Age returns the allocation stamp of the current note
	Age() uint64
	// Trigger starts a note. legato is true when the voice is already
	// sounding this note and must keep its oscillator phase.
	Trigger(note, velocity uint8, age uint64, legato bool)
	// Release starts the release phase of the voice's envelopes
	Release()
	// Kill silences the voice immediately and resets its envelopes
	Kill()
}

// Allocator assigns notes to a fixed slice of voices.
//
// It keeps no maps and never grows, so every operation is a bounded linear
// scan. Allocator is not safe for concurrent use; it belongs to whichever
// goroutine renders the voices.
type Allocator struct {
	voices []Voice
	held   []bool // note-off arrived while the pedal was down
	pedal  bool
	clock  uint64
}

// NewAllocator creates a new voice allocator
func NewAllocator(voices []Voice) *Allocator {
	return &Allocator{
		voices: voices,
		held:   make([]bool, len(voices)),
	}
}

// Len returns the pool size
func (a *Allocator) Len() int {
	return len(a.voices)
}

// Voice returns the voice at index i
func (a *Allocator) Voice(i int) Voice {
	return a.voices[i]
}

// NoteOn assigns note to a voice and returns its index, or -1 when the
// pool is empty.
//
// Priority: the voice already sounding this note (legato), then the lowest
// free voice, then the oldest releasing voice, then the oldest sounding
// voice.
func (a *Allocator) NoteOn(note, velocity uint8) int {
	idx, legato := a.find(note)
	if idx < 0 {
		return -1
	}
	a.clock++
	a.held[idx] = false
	a.voices[idx].Trigger(note, velocity, a.clock, legato)
	return idx
}

func (a *Allocator) find(note uint8) (int, bool) {
	for i, v := range a.voices {
		if v.State() == Sounding && v.Note() == note {
			return i, true
		}
	}
	for i, v := range a.voices {
		if v.State() == Free {
			return i, false
		}
	}
	if i := a.oldest(Releasing); i >= 0 {
		return i, false
	}
	return a.oldest(Sounding), false
}

func (a *Allocator) oldest(state State) int {
	best := -1
	var bestAge uint64
	for i, v := range a.voices {
		if v.State() != state {
			continue
		}
		if best < 0 || v.Age() < bestAge {
			best, bestAge = i, v.Age()
		}
	}
	return best
}

// NoteOff releases every sounding voice on note, or marks it held while
// the sustain pedal is down. It returns how many voices it touched.
func (a *Allocator) NoteOff(note uint8) int {
	n := 0
	for i, v := range a.voices {
		if v.State() != Sounding || v.Note() != note {
			continue
		}
		if a.pedal {
			a.held[i] = true
		} else {
			v.Release()
		}
		n++
	}
	return n
}

// SetSustain sets the pedal. Lifting it releases every held voice at once.
func (a *Allocator) SetSustain(down bool) {
	a.pedal = down
	if down {
		return
	}
	for i, v := range a.voices {
		if a.held[i] && v.State() == Sounding {
			v.Release()
		}
		a.held[i] = false
	}
}

// Sustain reports whether the pedal is down
func (a *Allocator) Sustain() bool {
	return a.pedal
}

// IsHeld reports whether voice i is being kept alive by the pedal
func (a *Allocator) IsHeld(i int) bool {
	return a.held[i]
}

// AllNotesOff kills every voice and lifts the pedal without releasing
// anything.
func (a *Allocator) AllNotesOff() {
	for i, v := range a.voices {
		v.Kill()
		a.held[i] = false
	}
	a.pedal = false
}

// ActiveCount returns the number of voices that are not free
func (a *Allocator) ActiveCount() int {
	count := 0
	for _, v := range a.voices {
		if v.State() != Free {
			count++
		}
	}
	return count
}

package host

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/realmrhigh/theone/pkg/midi"
)

// Event is a MIDI message due at an absolute frame
type Event struct {
	Frame   int64
	Message midi.Message
}

// Schedule is a list of timed events. Events at the same frame keep the
// order they were added in.
type Schedule struct {
	events []Event
	sorted bool
}

// Add appends msg at frame
func (s *Schedule) Add(frame int64, msg midi.Message) {
	s.events = append(s.events, Event{Frame: frame, Message: msg})
	s.sorted = false
}

// AddAt appends msg at a time offset for sampleRate
func (s *Schedule) AddAt(at time.Duration, sampleRate float64, msg midi.Message) {
	s.Add(FrameAt(at, sampleRate), msg)
}

// Note adds a note-on at frame and its note-off length frames later
func (s *Schedule) Note(frame, length int64, channel, note, velocity uint8) {
	s.Add(frame, midi.NoteOn(channel, note, velocity))
	s.Add(frame+length, midi.NoteOff(channel, note))
}

// Events returns the events ordered by frame
func (s *Schedule) Events() []Event {
	if !s.sorted {
		slices.SortStableFunc(s.events, func(a, b Event) int {
			return cmp.Compare(a.Frame, b.Frame)
		})
		s.sorted = true
	}
	return s.events
}

// Len returns the number of events
func (s *Schedule) Len() int { return len(s.events) }

// End returns the frame of the last event, or 0 for an empty schedule
func (s *Schedule) End() int64 {
	events := s.Events()
	if len(events) == 0 {
		return 0
	}
	return events[len(events)-1].Frame
}

// FrameAt converts a time offset to the nearest frame at sampleRate
func FrameAt(at time.Duration, sampleRate float64) int64 {
	return int64(math.Round(at.Seconds() * sampleRate))
}

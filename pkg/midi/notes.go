package midi

import (
	"fmt"
	"math"
)

// DefaultTuning is the concert A4 frequency in Hz
const DefaultTuning = 440.0

// NoteToFrequency converts a (possibly fractional) note number to Hz,
// with A4 (note 69) at tuningA4. Zero tuning means 440 Hz.
func NoteToFrequency(note float64, tuningA4 float64) float64 {
	if tuningA4 <= 0 {
		tuningA4 = DefaultTuning
	}
	return tuningA4 * math.Exp2((note-69.0)/12.0)
}

// FrequencyToNote returns the nearest note number for freq, clamped to 0-127
func FrequencyToNote(freq, tuningA4 float64) uint8 {
	if tuningA4 <= 0 {
		tuningA4 = DefaultTuning
	}
	if freq <= 0 {
		return 0
	}
	note := 69.0 + 12.0*math.Log2(freq/tuningA4)
	if note < 0 {
		return 0
	}
	if note > 127 {
		return 127
	}
	return uint8(math.Round(note))
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteNumberToName returns scientific pitch notation, e.g. 60 is "C4"
func NoteNumberToName(note uint8) string {
	octave := int(note/12) - 1
	return fmt.Sprintf("%s%d", noteNames[note%12], octave)
}

package midi

import (
	"math"
	"testing"
)

func TestMessageKind(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want Kind
	}{
		{"note on", Message{Status: 0x90, Data1: 60, Data2: 100}, KindNoteOn},
		{"note on channel 5", Message{Status: 0x95, Data1: 60, Data2: 1}, KindNoteOn},
		{"note on velocity zero", Message{Status: 0x90, Data1: 60, Data2: 0}, KindNoteOff},
		{"note off", Message{Status: 0x80, Data1: 60, Data2: 64}, KindNoteOff},
		{"control change", Message{Status: 0xB0, Data1: 1, Data2: 64}, KindControlChange},
		{"pitch bend", Message{Status: 0xE3}, KindPitchBend},
		{"program change", Message{Status: 0xC0, Data1: 4}, KindProgramChange},
		{"clock", Message{Status: 0xF8}, KindUnknown},
		{"data byte", Message{Status: 0x40}, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.Kind(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMessageFields(t *testing.T) {
	m := NoteOn(3, 64, 127)
	if m.Channel() != 3 || m.Note() != 64 || m.Velocity() != 127 {
		t.Errorf("Unexpected fields %v", m)
	}

	cc := ControlChange(0, CCSustain, 127)
	if cc.Controller() != 64 || cc.Value() != 127 {
		t.Errorf("Unexpected fields %v", cc)
	}

	if AllNotesOff(0).Controller() != CCAllNotesOff {
		t.Error("Expected controller 123")
	}

	if m.At(17).SampleOffset != 17 || m.SampleOffset != 0 {
		t.Error("At should return a moved copy")
	}
}

func TestPitchBend(t *testing.T) {
	tests := []struct {
		name         string
		data1, data2 uint8
		want         float64
	}{
		{"center", 0x00, 0x40, 0},
		{"full down", 0x00, 0x00, -1},
		{"full up", 0x7F, 0x7F, 1},
		{"half down", 0x00, 0x20, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Message{Status: StatusPitchBend, Data1: tt.data1, Data2: tt.data2}
			if got := m.PitchBend(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Expected %f, got %f", tt.want, got)
			}
		})
	}

	for _, amount := range []float64{-1, -0.25, 0, 0.5, 1} {
		got := PitchBend(0, amount).PitchBend()
		if math.Abs(got-amount) > 1.0/8000 {
			t.Errorf("Round trip of %f gave %f", amount, got)
		}
	}
	if PitchBend(0, 5).PitchBend() != 1 {
		t.Error("Out of range bend should clamp")
	}
}

func TestNoteToFrequency(t *testing.T) {
	tests := []struct {
		note float64
		want float64
	}{
		{69, 440},
		{57, 220},
		{81, 880},
		{60, 261.6255653},
	}

	for _, tt := range tests {
		if got := NoteToFrequency(tt.note, 0); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("Note %v: expected %f, got %f", tt.note, tt.want, got)
		}
	}

	if got := NoteToFrequency(69, 432); got != 432 {
		t.Errorf("Expected 432 with custom tuning, got %f", got)
	}
	if FrequencyToNote(261.63, 440) != 60 {
		t.Error("Expected middle C")
	}
	if FrequencyToNote(1e9, 440) != 127 || FrequencyToNote(-1, 440) != 0 {
		t.Error("Expected clamping")
	}
}

func TestNoteNumberToName(t *testing.T) {
	tests := map[uint8]string{0: "C-1", 60: "C4", 69: "A4", 61: "C#4", 127: "G9"}
	for note, want := range tests {
		if got := NoteNumberToName(note); got != want {
			t.Errorf("Note %d: expected %s, got %s", note, want, got)
		}
	}
}

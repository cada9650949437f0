package host

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/realmrhigh/theone/pkg/midi"
)

func TestScheduleOrdering(t *testing.T) {
	var s Schedule
	s.Add(20, midi.NoteOn(0, 1, 1))
	s.Add(10, midi.NoteOn(0, 2, 1))
	s.Add(20, midi.NoteOn(0, 3, 1))
	s.AddAt(time.Millisecond, 48000, midi.NoteOn(0, 4, 1))

	events := s.Events()
	expected := []uint8{2, 1, 3, 4}
	for i, ev := range events {
		if ev.Message.Note() != expected[i] {
			t.Errorf("Event %d: expected note %d, got %d", i, expected[i], ev.Message.Note())
		}
	}
	if s.End() != 48 {
		t.Errorf("Expected end 48, got %d", s.End())
	}

	var empty Schedule
	if empty.End() != 0 || empty.Len() != 0 {
		t.Error("Expected an empty schedule")
	}
}

func TestFrameAt(t *testing.T) {
	tests := []struct {
		at       time.Duration
		rate     float64
		expected int64
	}{
		{0, 48000, 0},
		{time.Second, 48000, 48000},
		{500 * time.Millisecond, 44100, 22050},
		{time.Microsecond, 48000, 0},
	}
	for _, tt := range tests {
		if got := FrameAt(tt.at, tt.rate); got != tt.expected {
			t.Errorf("FrameAt(%v, %f): expected %d, got %d", tt.at, tt.rate, tt.expected, got)
		}
	}
}

func TestSMFRoundTrip(t *testing.T) {
	const rate = 48000.0

	var s Schedule
	s.Note(0, 24000, 0, 60, 100)
	s.Note(12000, 12000, 1, 64, 90)
	s.Add(30000, midi.ControlChange(0, midi.CCSustain, 127))
	s.Add(36000, midi.PitchBend(0, 0.5))

	var buf bytes.Buffer
	if err := WriteSMF(&buf, &s, rate); err != nil {
		t.Fatalf("WriteSMF failed: %v", err)
	}

	got, err := ReadSMF(bytes.NewReader(buf.Bytes()), rate)
	if err != nil {
		t.Fatalf("ReadSMF failed: %v", err)
	}

	want := s.Events()
	events := got.Events()
	if len(events) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(events))
	}
	// One tick at 120 BPM and 960 PPQ is 25 frames at 48 kHz
	for i := range want {
		diff := events[i].Frame - want[i].Frame
		if diff < -25 || diff > 25 {
			t.Errorf("Event %d: expected frame %d, got %d", i, want[i].Frame, events[i].Frame)
		}
		if events[i].Message.Kind() != want[i].Message.Kind() || events[i].Message.Data1 != want[i].Message.Data1 {
			t.Errorf("Event %d: expected %s, got %s", i, want[i].Message, events[i].Message)
		}
	}
}

func TestLoadSMF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phrase.mid")

	var s Schedule
	s.Note(4800, 4800, 0, 69, 100)
	var buf bytes.Buffer
	if err := WriteSMF(&buf, &s, 48000); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	// Reading at a different rate rescales the frames
	got, err := LoadSMF(path, 96000)
	if err != nil {
		t.Fatalf("LoadSMF failed: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("Expected 2 events, got %d", got.Len())
	}
	if f := got.Events()[0].Frame; f != 9600 {
		t.Errorf("Expected note on at frame 9600, got %d", f)
	}

	if _, err := LoadSMF(filepath.Join(dir, "missing.mid"), 48000); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}

func TestReadSMFErrors(t *testing.T) {
	if _, err := ReadSMF(bytes.NewReader([]byte("not a midi file")), 48000); err == nil {
		t.Error("Expected an error for garbage input")
	}

	var buf bytes.Buffer
	if err := WriteSMF(&buf, &Schedule{}, 48000); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSMF(&buf, 48000); !errors.Is(err, ErrNoEvents) {
		t.Errorf("Expected ErrNoEvents, got %v", err)
	}
}

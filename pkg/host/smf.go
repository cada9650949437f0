package host

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/realmrhigh/theone/pkg/midi"
)

// SMFTicks is the resolution WriteSMF uses, in ticks per quarter note
const SMFTicks = 960

// SMFTempo is the tempo WriteSMF declares
const SMFTempo = 120.0

// ErrNoEvents is returned when a MIDI file holds no channel messages
var ErrNoEvents = errors.New("host: no channel events in midi file")

// LoadSMF reads a standard MIDI file into a schedule at sampleRate
func LoadSMF(path string, sampleRate float64) (*Schedule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := ReadSMF(f, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ReadSMF reads every track of a standard MIDI file. Tempo changes are
// honoured; meta and system messages are skipped.
func ReadSMF(r io.Reader, sampleRate float64) (*Schedule, error) {
	s := &Schedule{}
	err := smf.ReadTracksFrom(r).Do(func(ev smf.TrackEvent) {
		msg, ok := midi.FromBytes([]byte(ev.Message), 0)
		if !ok {
			return
		}
		frame := int64(math.Round(float64(ev.AbsMicroSeconds) * sampleRate / 1e6))
		s.Add(frame, msg)
	}).Error()
	if err != nil {
		return nil, fmt.Errorf("host: read midi file: %w", err)
	}
	if s.Len() == 0 {
		return nil, ErrNoEvents
	}
	return s, nil
}

// WriteSMF writes the schedule as a single-track file at SMFTempo
func WriteSMF(w io.Writer, s *Schedule, sampleRate float64) error {
	ticksPerFrame := SMFTicks * SMFTempo / 60 / sampleRate

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(SMFTempo))

	var last uint32
	for _, ev := range s.Events() {
		tick := uint32(math.Round(float64(max(ev.Frame, 0)) * ticksPerFrame))
		tr.Add(tick-last, midi.ToGoMIDI(ev.Message))
		last = tick
	}
	tr.Close(0)

	file := smf.New()
	file.TimeFormat = smf.MetricTicks(SMFTicks)
	if err := file.Add(tr); err != nil {
		return fmt.Errorf("host: build midi file: %w", err)
	}
	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("host: write midi file: %w", err)
	}
	return nil
}

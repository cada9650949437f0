// Command theone-render renders a MIDI file, or a built-in phrase, through
// the synth to a WAV file.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/realmrhigh/theone/pkg/dsp/gain"
	"github.com/realmrhigh/theone/pkg/framework/bus"
	"github.com/realmrhigh/theone/pkg/framework/debug"
	"github.com/realmrhigh/theone/pkg/framework/param"
	"github.com/realmrhigh/theone/pkg/host"
	"github.com/realmrhigh/theone/pkg/midi"
	"github.com/realmrhigh/theone/pkg/synth"
)

func main() {
	midiPath := flag.String("midi", "", "Standard MIDI file to render (default: built-in phrase)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	presetPath := flag.String("preset", "", "Preset file to load before rendering")
	savePreset := flag.String("save-preset", "", "Write the effective parameters as a preset to this path")
	exportMIDI := flag.String("export-midi", "", "Write the rendered schedule as a MIDI file to this path")
	sets := flag.String("set", "", "Comma separated parameter overrides, e.g. osc1.wave=Square,filter.cutoff=800")
	sampleRate := flag.Float64("sample-rate", synth.DefaultSampleRate, "Render sample rate in Hz")
	outRate := flag.Int("out-rate", 0, "Resample the WAV to this rate (0 keeps the render rate)")
	channels := flag.Int("channels", 2, "Output channels (1 or 2)")
	blockSize := flag.Int("block", host.DefaultBlockSize, "Render block size in frames")
	polyphony := flag.Int("polyphony", synth.DefaultPolyphony, "Voice count")
	seed := flag.Int64("seed", 0, "Noise seed (0 uses the default)")
	tail := flag.Duration("tail", 2*time.Second, "Render time after the last event")
	normalize := flag.Float64("normalize-dbfs", math.Inf(1), "Scale the output so its peak sits at this dBFS (e.g. -1). Disabled by default")
	profile := flag.Bool("profile", false, "Print render timing")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error, off")
	flag.Parse()

	level, err := debug.ParseLevel(*logLevel)
	if err != nil {
		fatalf("%v", err)
	}
	log := debug.Default()
	log.SetLevel(level)

	opts := synth.DefaultOptions()
	opts.Polyphony = *polyphony
	opts.Logger = log
	if *seed != 0 {
		opts.Seed = *seed
	}
	engine, err := synth.New(opts)
	if err != nil {
		fatalf("create synth: %v", err)
	}

	if *presetPath != "" {
		h, err := engine.LoadPresetFile(*presetPath)
		if err != nil {
			fatalf("load preset %q: %v", *presetPath, err)
		}
		log.Info("preset %q loaded", h.Name)
	}
	if err := applySets(engine.Parameters(), *sets); err != nil {
		fatalf("%v", err)
	}
	if *savePreset != "" {
		if err := engine.SavePresetFile(*savePreset, presetName(*savePreset)); err != nil {
			fatalf("save preset: %v", err)
		}
	}

	cfg, err := bus.NewBuilder(*sampleRate).
		WithOutputs(*channels).
		WithMaxBlockSize(*blockSize).
		WithVariableBlockSize().
		Build()
	if err != nil {
		fatalf("io config: %v", err)
	}
	driver, err := host.NewDriver(engine, cfg, log)
	if err != nil {
		fatalf("%v", err)
	}
	defer driver.Close()

	var schedule *host.Schedule
	if *midiPath != "" {
		schedule, err = host.LoadSMF(*midiPath, *sampleRate)
		if err != nil {
			fatalf("load midi: %v", err)
		}
	} else {
		schedule = demoPhrase(*sampleRate)
	}
	if *exportMIDI != "" {
		if err := exportSchedule(*exportMIDI, schedule, *sampleRate); err != nil {
			fatalf("export midi: %v", err)
		}
	}

	frames := schedule.End() + host.FrameAt(*tail, *sampleRate)
	fmt.Printf("Rendering %d events, %.2fs at %.0f Hz, %d voices...\n",
		schedule.Len(), float64(frames) / *sampleRate, *sampleRate, engine.Polyphony())

	var profiler *debug.RenderProfiler
	if *profile {
		profiler = debug.NewRenderProfiler(*sampleRate)
		driver.SetProfiler(profiler)
	}

	wav := host.NewWAVWriter(*output, int(*sampleRate), driver.Channels())
	if *outRate > 0 {
		wav.SetOutputRate(*outRate)
	}
	if err := driver.Render(schedule, frames, wav); err != nil {
		fatalf("render: %v", err)
	}

	stats := debug.NewAudioAnalyzer()
	result := stats.Analyze(wav.Samples())
	debug.LogStats(log, "output", result)
	log.Info("output peak %.1f dBFS", gain.LinearToDb(float64(result.Peak)))
	for _, warning := range stats.Check(result, "output") {
		log.Warn("%s", warning)
	}
	if !math.IsInf(*normalize, 1) {
		g := gain.Normalize(wav.Samples(), *normalize)
		log.Info("normalized to %.1f dBFS (%+.1f dB)", *normalize, gain.LinearToDb(g))
	}
	if n := engine.DroppedMidiMessages(); n > 0 {
		log.Warn("%d midi messages dropped", n)
	}

	if err := wav.Close(); err != nil {
		fatalf("write wav: %v", err)
	}
	if profiler != nil {
		fmt.Println(profiler.AudioReport())
	}
	fmt.Printf("Successfully wrote %s (%d frames)\n", *output, wav.Frames())
}

// applySets parses "id=value" pairs using each parameter's display parser
func applySets(reg *param.Registry, sets string) error {
	for _, pair := range strings.Split(sets, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("override %q: expected id=value", pair)
		}
		p := reg.Get(strings.TrimSpace(id))
		if p == nil {
			return fmt.Errorf("override %q: unknown parameter", pair)
		}
		if !p.SetDisplayString(value) {
			return fmt.Errorf("override %q: cannot parse %q", pair, value)
		}
	}
	return nil
}

// demoPhrase is a two bar progression at 120 BPM with a lead line, a
// pitch bend and some mod wheel.
func demoPhrase(sampleRate float64) *host.Schedule {
	beat := host.FrameAt(500*time.Millisecond, sampleRate)
	s := &host.Schedule{}

	chords := [][]uint8{
		{57, 60, 64}, // Am
		{53, 57, 60}, // F
		{55, 59, 62}, // G
		{52, 56, 59}, // E
	}
	for i, chord := range chords {
		at := int64(i) * 2 * beat
		for _, note := range chord {
			s.Note(at, 2*beat-beat/8, 0, note, 96)
		}
	}

	// Lead line with a bend on the last note
	lead := []uint8{76, 74, 72, 71, 72, 74, 76, 80}
	for i, note := range lead {
		s.Note(int64(i)*beat, beat-beat/4, 1, note, 110)
	}
	last := int64(len(lead)-1) * beat
	s.Add(last+beat/4, midi.PitchBend(1, 0.5))
	s.Add(last+beat/2, midi.PitchBend(1, 0))

	s.Add(2*beat, midi.ControlChange(0, midi.CCModWheel, 64))
	s.Add(6*beat, midi.ControlChange(0, midi.CCModWheel, 0))
	return s
}

func exportSchedule(path string, s *host.Schedule, sampleRate float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := host.WriteSMF(f, s, sampleRate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func presetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// Command theone-play runs the synth live: audio through the default
// output device, notes from a hardware MIDI input.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/realmrhigh/theone/pkg/framework/bus"
	"github.com/realmrhigh/theone/pkg/framework/debug"
	"github.com/realmrhigh/theone/pkg/host"
	"github.com/realmrhigh/theone/pkg/host/live"
	"github.com/realmrhigh/theone/pkg/midi"
	"github.com/realmrhigh/theone/pkg/synth"
)

func main() {
	port := flag.String("port", "", "MIDI input to open (substring match, default: first port)")
	listPorts := flag.Bool("list-ports", false, "List MIDI inputs and exit")
	presetPath := flag.String("preset", "", "Preset file to load")
	sampleRate := flag.Int("sample-rate", int(synth.DefaultSampleRate), "Device sample rate in Hz")
	blockSize := flag.Int("block", 128, "Render block size in frames")
	latency := flag.Duration("latency", live.DefaultLatency, "Render-ahead latency")
	polyphony := flag.Int("polyphony", synth.DefaultPolyphony, "Voice count")
	testNote := flag.Bool("test-note", false, "Hold A4 from startup")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error, off")
	logFile := flag.String("log-file", "", "Append log output to this file instead of stderr")
	flag.Parse()

	level, err := debug.ParseLevel(*logLevel)
	if err != nil {
		fatalf("%v", err)
	}
	log := debug.Default()
	if *logFile != "" {
		fileLog, closer, err := debug.NewFileLogger(*logFile, debug.DefaultPrefix, debug.DefaultFlags)
		if err != nil {
			fatalf("%v", err)
		}
		defer closer.Close()
		log = fileLog
	}
	log.SetLevel(level)

	if *listPorts {
		names, err := live.Ports()
		if err != nil {
			fatalf("%v", err)
		}
		for i, name := range names {
			fmt.Printf("%d: %s\n", i, name)
		}
		return
	}

	opts := synth.DefaultOptions()
	opts.Polyphony = *polyphony
	opts.Logger = log
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

	driver, err := host.NewDriver(engine, bus.NewRealtime(float64(*sampleRate), *blockSize), log)
	if err != nil {
		fatalf("%v", err)
	}
	defer driver.Close()

	out, err := live.NewOutput(driver, *latency, log)
	if err != nil {
		fatalf("%v", err)
	}
	if *testNote {
		engine.QueueMidiMessage(midi.NoteOn(0, 69, 100))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return out.Run(ctx)
	})
	g.Go(func() error {
		err := live.ListenMIDI(ctx, *port, live.NewForwarder(engine), log)
		if errors.Is(err, live.ErrNoMIDIInput) {
			log.Warn("%v; playing without midi input", err)
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		fatalf("%v", err)
	}
	log.Info("ring: %+v", out.Stats())
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

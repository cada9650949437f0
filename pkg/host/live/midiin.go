package live

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/realmrhigh/theone/pkg/framework/debug"
	"github.com/realmrhigh/theone/pkg/midi"
)

// ErrNoMIDIInput is returned when no input port matches
var ErrNoMIDIInput = errors.New("live: no midi input")

// MessageQueue accepts messages from a goroutine other than the renderer
type MessageQueue interface {
	QueueMidiMessage(msg midi.Message) bool
}

// Forwarder converts driver messages and queues them. Dropped counts
// messages the queue refused.
type Forwarder struct {
	queue   MessageQueue
	dropped atomic.Uint64
	ignored atomic.Uint64
}

// NewForwarder creates a forwarder into q
func NewForwarder(q MessageQueue) *Forwarder {
	return &Forwarder{queue: q}
}

// Forward queues msg for the next render block. System and meta messages
// are ignored.
func (f *Forwarder) Forward(msg gomidi.Message, _ int32) {
	m, ok := midi.FromGoMIDI(msg, 0)
	if !ok {
		f.ignored.Add(1)
		return
	}
	if !f.queue.QueueMidiMessage(m) {
		f.dropped.Add(1)
	}
}

// Dropped returns how many messages the queue refused
func (f *Forwarder) Dropped() uint64 { return f.dropped.Load() }

// Ignored returns how many non-channel messages were skipped
func (f *Forwarder) Ignored() uint64 { return f.ignored.Load() }

// Ports lists the MIDI input port names
func Ports() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("live: midi driver: %w", err)
	}
	defer drv.Close()

	ins, err := drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("live: list midi inputs: %w", err)
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

// ListenMIDI opens the first input port whose name contains match (any
// port when match is empty) and forwards its messages until ctx is done.
func ListenMIDI(ctx context.Context, match string, f *Forwarder, log *debug.Logger) error {
	if log == nil {
		log = debug.Default()
	}
	log = log.With("midi")

	drv, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("live: midi driver: %w", err)
	}
	defer func() {
		if err := drv.Close(); err != nil {
			log.Warn("close driver: %v", err)
		}
	}()

	ins, err := drv.Ins()
	if err != nil {
		return fmt.Errorf("live: list midi inputs: %w", err)
	}
	in, err := selectPort(ins, match)
	if err != nil {
		return err
	}

	if err := in.Open(); err != nil {
		return fmt.Errorf("live: open %s: %w", in, err)
	}
	defer func() {
		if err := in.Close(); err != nil {
			log.Warn("close %s: %v", in, err)
		}
	}()

	listenErr := make(chan error, 1)
	stop, err := gomidi.ListenTo(in, f.Forward, gomidi.HandleError(func(err error) {
		select {
		case listenErr <- err:
		default:
		}
	}))
	if err != nil {
		return fmt.Errorf("live: listen %s: %w", in, err)
	}
	defer stop()
	log.Info("listening on %s", in)

	select {
	case <-ctx.Done():
		log.Info("stopped: %d dropped, %d ignored", f.Dropped(), f.Ignored())
		return nil
	case err := <-listenErr:
		return fmt.Errorf("live: %s: %w", in, err)
	}
}

func selectPort(ins []drivers.In, match string) (drivers.In, error) {
	for _, in := range ins {
		if match == "" || strings.Contains(strings.ToLower(in.String()), strings.ToLower(match)) {
			return in, nil
		}
	}
	if match == "" {
		return nil, ErrNoMIDIInput
	}
	return nil, fmt.Errorf("%w matching %q", ErrNoMIDIInput, match)
}

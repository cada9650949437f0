// Package live connects a driven plugin to the default audio device and to
// hardware MIDI inputs.
package live

import (
	"context"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/realmrhigh/theone/pkg/dsp/buffer"
	"github.com/realmrhigh/theone/pkg/framework/debug"
	"github.com/realmrhigh/theone/pkg/host"
)

// DefaultLatency is the render-ahead cushion between the driver and the device
const DefaultLatency = 50 * time.Millisecond

// Output plays a driver through oto. The driver is owned by the goroutine
// calling Run; MIDI reaches the plugin through its queue.
type Output struct {
	pump   *pump
	ctx    *oto.Context
	player *oto.Player
	log    *debug.Logger
}

// NewOutput opens the audio device at the driver's sample rate and channel
// count. Only one Output can exist per process.
func NewOutput(d *host.Driver, latency time.Duration, log *debug.Logger) (*Output, error) {
	if log == nil {
		log = debug.Default()
	}
	if latency <= 0 {
		latency = DefaultLatency
	}
	p, err := newPump(d, latency)
	if err != nil {
		return nil, err
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(d.SampleRate()),
		ChannelCount: d.Channels(),
		Format:       oto.FormatFloat32LE,
		BufferSize:   latency / 2,
	})
	if err != nil {
		return nil, fmt.Errorf("live: open audio device: %w", err)
	}
	<-ready

	return &Output{
		pump:   p,
		ctx:    ctx,
		player: ctx.NewPlayer(p),
		log:    log.With("live"),
	}, nil
}

// Run renders ahead of the device until ctx is done
func (o *Output) Run(ctx context.Context) error {
	o.pump.fill()
	o.player.Play()
	o.log.Info("playing: %d Hz, %d channels, %v ahead",
		int(o.pump.driver.SampleRate()), o.pump.channels, o.pump.ring.Latency())

	ticker := time.NewTicker(o.pump.period())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			o.log.Info("stopping: %+v", o.Stats())
			return o.player.Close()
		case <-ticker.C:
			o.pump.fill()
			if err := o.ctx.Err(); err != nil {
				return fmt.Errorf("live: audio device: %w", err)
			}
		}
	}
}

// Stats returns the render-ahead ring health
func (o *Output) Stats() buffer.Stats {
	return o.pump.ring.Stats()
}

package live

import (
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/realmrhigh/theone/pkg/dsp/buffer"
	"github.com/realmrhigh/theone/pkg/host"
)

// pump renders driver blocks ahead of the device into a ring and serves
// the device's reads as float32 little-endian bytes.
type pump struct {
	driver   *host.Driver
	ring     *buffer.Ring
	channels int

	interleaved []float32 // render side
	scratch     []float32 // device side
}

var _ io.Reader = (*pump)(nil)

func newPump(d *host.Driver, latency time.Duration) (*pump, error) {
	ring, err := buffer.NewRing(d.SampleRate(), d.Channels(), latency)
	if err != nil {
		return nil, err
	}
	return &pump{
		driver:      d,
		ring:        ring,
		channels:    d.Channels(),
		interleaved: make([]float32, d.BlockSize()*d.Channels()),
		scratch:     make([]float32, 4096),
	}, nil
}

// fill renders whole blocks while the ring has room and returns how many
// frames it rendered
func (p *pump) fill() int {
	block := p.driver.BlockSize()
	need := block * p.channels
	rendered := 0
	for p.ring.Free() >= need {
		_, out := p.driver.Process(block, nil, nil)
		for ch, samples := range out {
			for i, v := range samples {
				p.interleaved[i*p.channels+ch] = v
			}
		}
		p.ring.Write(p.interleaved[:need])
		rendered += block
	}
	return rendered
}

// Read implements io.Reader for the audio device. It never blocks; an
// empty ring plays silence.
func (p *pump) Read(b []byte) (int, error) {
	n := len(b) / 4
	if len(p.scratch) < n {
		p.scratch = make([]float32, n)
	}
	samples := p.scratch[:n]
	p.ring.Read(samples)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return 4 * n, nil
}

// period is how long one block plays for
func (p *pump) period() time.Duration {
	return time.Duration(float64(p.driver.BlockSize()) / p.driver.SampleRate() * float64(time.Second))
}

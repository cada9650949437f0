package process

import (
	"testing"

	"github.com/realmrhigh/theone/pkg/framework/param"
)

func TestNumSamples(t *testing.T) {
	ctx := NewContext(512)
	ctx.Output = [][]float32{make([]float32, 512), make([]float32, 512)}

	if ctx.NumSamples() != 512 {
		t.Errorf("Expected 512 samples from buffers, got %d", ctx.NumSamples())
	}

	ctx.Frames = 256
	if ctx.NumSamples() != 256 {
		t.Errorf("Expected 256 samples, got %d", ctx.NumSamples())
	}

	ctx.Frames = 1024
	if ctx.NumSamples() != 512 {
		t.Errorf("Frames beyond the buffer should be capped, got %d", ctx.NumSamples())
	}

	if len(ctx.WorkBuffer()) != 512 || len(ctx.TempBuffer()) != 512 {
		t.Error("Work buffers should match the block size")
	}
}

func TestClear(t *testing.T) {
	ctx := NewContext(4)
	ctx.Output = [][]float32{{1, 1, 1, 1}, {1, 1, 1, 1}}
	ctx.Frames = 3

	ctx.Clear(1)
	if ctx.Output[0][0] != 0 || ctx.Output[0][2] != 0 {
		t.Error("Expected channel 0 cleared")
	}
	if ctx.Output[0][3] != 1 {
		t.Error("Samples beyond Frames should be untouched")
	}
	if ctx.Output[1][0] != 1 {
		t.Error("Channel 1 should be untouched")
	}
}

func TestTransportAdvance(t *testing.T) {
	ctx := NewContext(480)
	ctx.Output = [][]float32{make([]float32, 480)}
	ctx.SampleRate = 48000
	ctx.Transport = Transport{Tempo: 120, Playing: true}
	ctx.ParamChanges = []param.Change{{Index: 0, Normalized: 1}}

	ctx.Advance()
	if ctx.Transport.PositionSamples != 480 {
		t.Errorf("Expected 480 samples, got %d", ctx.Transport.PositionSamples)
	}
	// 10ms at 120 BPM is 0.02 beats
	if d := ctx.Transport.PositionBeats - 0.02; d > 1e-12 || d < -1e-12 {
		t.Errorf("Expected 0.02 beats, got %f", ctx.Transport.PositionBeats)
	}
	if !ctx.HasParamChanges() {
		t.Error("Expected pending changes")
	}
}

package envelope

import (
	"math"
	"testing"
)

// runUntil advances env until it leaves stage s and returns the sample count
func runUntil(env *ADSR, s Stage, limit int) int {
	n := 0
	for env.Stage() == s && n < limit {
		env.Next()
		n++
	}
	return n
}

func TestADSRLifecycle(t *testing.T) {
	sampleRate := 48000.0
	env := New(sampleRate)
	env.SetADSR(0.01, 0.02, 0.5, 0.05)

	if env.IsActive() {
		t.Fatal("Expected new envelope to be idle")
	}
	if v := env.Next(); v != 0 {
		t.Errorf("Expected idle output 0, got %f", v)
	}

	env.Trigger()
	if env.Stage() != StageAttack {
		t.Fatalf("Expected attack, got %s", env.Stage())
	}

	// decay covers only 1-sustain of the full 60 dB span
	decayShare := math.Log(0.5/threshold) / math.Log(1/threshold)

	tests := []struct {
		stage    Stage
		seconds  float64
		expected float64
	}{
		{StageAttack, 0.01, 1.0},
		{StageDecay, 0.02 * decayShare, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.stage.String(), func(t *testing.T) {
			n := runUntil(env, tt.stage, 100000)
			want := int(math.Round(tt.seconds * sampleRate))
			if n < want-2 || n > want+2 {
				t.Errorf("Expected %s to take about %d samples, got %d", tt.stage, want, n)
			}
			if math.Abs(env.Value()-tt.expected) > 1e-12 {
				t.Errorf("Expected %f at end of %s, got %f", tt.expected, tt.stage, env.Value())
			}
		})
	}

	for i := 0; i < 1000; i++ {
		if v := env.Next(); v != 0.5 {
			t.Fatalf("Expected sustain 0.5, got %f", v)
		}
	}

	env.Release()
	n := runUntil(env, StageRelease, 100000)
	if env.IsActive() {
		t.Fatal("Expected envelope idle after release")
	}
	// release starts from sustain, so it finishes early
	if n > int(0.05*sampleRate)+2 {
		t.Errorf("Release took %d samples", n)
	}
}

func TestRetriggerFromCurrentLevel(t *testing.T) {
	env := New(48000)
	env.SetADSR(0.01, 0.1, 0.8, 0.5)
	env.Trigger()
	runUntil(env, StageAttack, 100000)
	runUntil(env, StageDecay, 100000)

	env.Release()
	for i := 0; i < 100; i++ {
		env.Next()
	}
	level := env.Value()

	env.Trigger()
	v := env.Next()
	if v < level {
		t.Errorf("Expected retrigger to continue upward from %f, got %f", level, v)
	}
	if v > level+0.1 {
		t.Errorf("Expected no jump on retrigger, went %f -> %f", level, v)
	}
}

func TestReleaseWhileIdle(t *testing.T) {
	env := New(48000)
	env.Release()
	if env.IsActive() {
		t.Error("Expected release on idle envelope to stay idle")
	}
}

func TestReset(t *testing.T) {
	env := New(48000)
	env.Trigger()
	for i := 0; i < 100; i++ {
		env.Next()
	}
	env.Reset()
	if env.IsActive() || env.Value() != 0 {
		t.Errorf("Expected idle at 0, got %s at %f", env.Stage(), env.Value())
	}
}

func TestMinimumTimes(t *testing.T) {
	env := New(48000)
	env.SetADSR(0, -1, 2, 0)

	env.Trigger()
	n := runUntil(env, StageAttack, 1000)
	if n < 40 || n > 60 {
		t.Errorf("Expected minimum attack of about 48 samples, got %d", n)
	}
	if env.Value() != 1 {
		t.Errorf("Expected sustain clamped to 1, got %f", env.Value())
	}
}

func TestSetSampleRate(t *testing.T) {
	env := New(48000)
	env.SetADSR(0.01, 0.1, 0.5, 0.1)
	env.SetSampleRate(96000)
	env.Trigger()

	n := runUntil(env, StageAttack, 100000)
	if n < 958 || n > 962 {
		t.Errorf("Expected about 960 attack samples at 96 kHz, got %d", n)
	}

	env.SetSampleRate(0)
	if env.sampleRate != 96000 {
		t.Errorf("Expected invalid rate to be ignored, got %f", env.sampleRate)
	}
}

func TestProcess(t *testing.T) {
	env := New(48000)
	env.Trigger()
	buf := make([]float32, 64)
	env.Process(buf)
	for i := 1; i < len(buf); i++ {
		if buf[i] < buf[i-1] {
			t.Fatalf("Expected rising attack, sample %d fell %f -> %f", i, buf[i-1], buf[i])
		}
	}
}

package gain

import (
	"math"
	"testing"
)

func TestDbConversion(t *testing.T) {
	tests := []struct {
		linear float64
		db     float64
	}{
		{1.0, 0.0},
		{0.5, -6.0206},
		{2.0, 6.0206},
		{0.1, -20.0},
		{10.0, 20.0},
	}

	for _, tt := range tests {
		if db := LinearToDb(tt.linear); math.Abs(db-tt.db) > 0.001 {
			t.Errorf("LinearToDb(%f): expected %f, got %f", tt.linear, tt.db, db)
		}
		if linear := DbToLinear(tt.db); math.Abs(linear-tt.linear) > 0.001 {
			t.Errorf("DbToLinear(%f): expected %f, got %f", tt.db, tt.linear, linear)
		}
	}

	if LinearToDb(0) != MinDB || LinearToDb(-1) != MinDB {
		t.Error("Expected MinDB for silence")
	}
	if LinearToDb(1e-300) != MinDB {
		t.Error("Expected tiny values floored at MinDB")
	}
	if DbToLinear(MinDB) != 0 {
		t.Error("Expected 0 at MinDB")
	}
}

func TestPeakAndApply(t *testing.T) {
	buf := []float32{0.1, -0.4, 0.25}
	if p := Peak(buf); p != 0.4 {
		t.Errorf("Expected peak 0.4, got %f", p)
	}

	ApplyBuffer(buf, 2)
	expected := []float32{0.2, -0.8, 0.5}
	for i := range buf {
		if buf[i] != expected[i] {
			t.Errorf("Sample %d: expected %f, got %f", i, expected[i], buf[i])
		}
	}
}

func TestNormalize(t *testing.T) {
	buf := []float32{0.05, -0.1, 0.02}
	g := Normalize(buf, -6)

	want := DbToLinear(-6)
	if math.Abs(float64(Peak(buf))-want) > 1e-6 {
		t.Errorf("Expected peak %f, got %f", want, Peak(buf))
	}
	if math.Abs(g-want/0.1) > 1e-4 {
		t.Errorf("Expected gain %f, got %f", want/0.1, g)
	}

	silent := []float32{0, 0}
	if g := Normalize(silent, 0); g != 1 || silent[0] != 0 {
		t.Errorf("Expected silence untouched, got gain %f", g)
	}
}

func BenchmarkNormalize(b *testing.B) {
	buf := make([]float32, 4096)
	for i := range buf {
		buf[i] = float32(math.Sin(float64(i) * 0.01))
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Normalize(buf, -1)
	}
}

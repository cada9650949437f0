package pan

import (
	"math"
	"testing"
)

func TestEqualPower(t *testing.T) {
	half := math.Sqrt(0.5)

	tests := []struct {
		name  string
		pan   float64
		left  float64
		right float64
	}{
		{"center", 0, half, half},
		{"hard left", -1, 1, 0},
		{"hard right", 1, 0, 1},
		{"beyond left", -3, 1, 0},
		{"beyond right", 2, 0, 1},
		{"half right", 0.5, math.Sqrt(0.25), math.Sqrt(0.75)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, r := EqualPower(tt.pan)
			if math.Abs(l-tt.left) > 1e-12 || math.Abs(r-tt.right) > 1e-12 {
				t.Errorf("Expected (%f, %f), got (%f, %f)", tt.left, tt.right, l, r)
			}
		})
	}
}

func TestConstantPower(t *testing.T) {
	for p := -1.0; p <= 1.0; p += 0.05 {
		l, r := EqualPower(p)
		if power := l*l + r*r; math.Abs(power-1) > 1e-9 {
			t.Errorf("Pan %f: expected power 1, got %f", p, power)
		}
	}
}

func TestProcess(t *testing.T) {
	mono := []float32{1, 1, 1, 1}
	left := []float32{0.5, 0.5, 0.5}
	right := make([]float32, 4)

	Process(mono, -1, left, right)

	for i, v := range left {
		if v != 1.5 {
			t.Errorf("left[%d]: expected 1.5, got %f", i, v)
		}
	}
	for i, v := range right {
		if v != 0 {
			t.Errorf("right[%d]: expected 0, got %f", i, v)
		}
	}
}

package stats

import (
	"math"
	"testing"
)

func TestNormalQuantile(t *testing.T) {
	tests := []struct {
		p        float64
		expected float64
	}{
		{0.5, 0},
		{0.975, 1.959964},
		{0.995, 2.575829},
		{0.025, -1.959964},
	}

	for _, tt := range tests {
		got := NormalQuantile(tt.p)
		if math.Abs(got-tt.expected) > 5e-4 {
			t.Errorf("NormalQuantile(%f) = %f, expected %f", tt.p, got, tt.expected)
		}
	}
}

func TestNormalQuantileOutOfRange(t *testing.T) {
	for _, p := range []float64{0, 1, -0.5, 2} {
		if got := NormalQuantile(p); got != 0 {
			t.Errorf("NormalQuantile(%f) = %f, expected 0", p, got)
		}
	}
}

func TestTwoSidedZ(t *testing.T) {
	if z := TwoSidedZ(0.95); math.Abs(z-1.96) > 1e-3 {
		t.Errorf("Expected ~1.96, got %f", z)
	}
	if TwoSidedZ(0.99) <= TwoSidedZ(0.80) {
		t.Error("Expected wider multiplier at higher confidence")
	}
}

package perf

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{5}, 5},
		{"mixed", []float64{1, 2, 3, 4}, 2.5},
		{"negative", []float64{-2, 2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mean(tt.xs); math.Abs(got-tt.want) > eps {
				t.Errorf("mean(%v) = %f, want %f", tt.xs, got, tt.want)
			}
		})
	}
}

func TestStdDev_Population(t *testing.T) {
	// Population stddev of [2, 4, 4, 4, 5, 5, 7, 9] is exactly 2.
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := stdDev(xs); math.Abs(got-2) > eps {
		t.Errorf("stdDev = %f, want 2 (population, not sample)", got)
	}
}

func TestStdDev_Degenerate(t *testing.T) {
	if got := stdDev(nil); got != 0 {
		t.Errorf("stdDev(nil) = %f, want 0", got)
	}
	if got := stdDev([]float64{3}); got != 0 {
		t.Errorf("stdDev(single) = %f, want 0", got)
	}
	if got := stdDev([]float64{5, 5, 5}); got != 0 {
		t.Errorf("stdDev(constant) = %f, want 0", got)
	}
}

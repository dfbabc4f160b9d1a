package display

import (
	"math"
	"testing"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		fraction float64
		width    int
		want     string
	}{
		{0, 4, "░░░░"},
		{0.5, 4, "██░░"},
		{0.66, 3, "██░"},
		{1, 4, "████"},
		{1.7, 4, "████"},
		{-0.2, 4, "░░░░"},
		{math.NaN(), 2, "░░"},
		{0.5, 0, ""},
	}

	for _, tt := range tests {
		if got := ProgressBar(tt.fraction, tt.width); got != tt.want {
			t.Errorf("ProgressBar(%v, %d) = %q, want %q", tt.fraction, tt.width, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		fraction float64
		want     string
	}{
		{0, "  0%"},
		{0.6595, " 65%"},
		{1, "100%"},
		{2, "100%"},
		{math.NaN(), "  0%"},
	}

	for _, tt := range tests {
		if got := Percent(tt.fraction); got != tt.want {
			t.Errorf("Percent(%v) = %q, want %q", tt.fraction, got, tt.want)
		}
	}
}

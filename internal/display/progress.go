package display

import (
	"fmt"
	"math"
	"strings"
)

const (
	barFull  = "█"
	barEmpty = "░"
)

// ProgressBar draws fraction of width cells filled. Fractions outside [0, 1]
// are clamped and NaN draws an empty bar.
func ProgressBar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(fraction) {
		fraction = 0
	}
	fraction = math.Max(0, math.Min(1, fraction))

	filled := int(math.Round(fraction * float64(width)))
	return strings.Repeat(barFull, filled) + strings.Repeat(barEmpty, width-filled)
}

// Percent renders fraction as a clamped whole percentage.
func Percent(fraction float64) string {
	if math.IsNaN(fraction) {
		fraction = 0
	}
	fraction = math.Max(0, math.Min(1, fraction))
	return fmt.Sprintf("%3d%%", int(math.Floor(fraction*100)))
}

package components

import (
	"math"
	"strings"

	"readtrack/internal/ui/theme"
)

// Bar renders value/max as a fixed-width horizontal bar.
func Bar(value, max float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if max > 0 && value > 0 {
		filled = int(math.Round(math.Min(1, value/max) * float64(width)))
	}
	return theme.BarFull.Render(strings.Repeat("█", filled)) +
		theme.BarEmpty.Render(strings.Repeat("░", width-filled))
}

package clipgen

import (
	"fmt"
	"math"
)

// FormatClock renders seconds as m:ss, or h:mm:ss from one hour up.
// Fractions are truncated.
func FormatClock(seconds float64) string {
	if !(seconds > 0) || math.IsInf(seconds, 0) {
		return "0:00"
	}

	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

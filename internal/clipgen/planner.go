package clipgen

import (
	"math"

	"clipz-ai/internal/types"
)

// PlanWindows spreads n = min(maxClips, floor(duration/clipLength)) windows
// evenly over the media. Each window starts at i*(duration/n) and is clamped
// to the duration. Windows are not checked for overlap.
func PlanWindows(durationSeconds, clipLengthSeconds float64, maxClips int) []types.ClipWindow {
	if !(durationSeconds > 0) || !(clipLengthSeconds > 0) || maxClips <= 0 {
		return nil
	}
	if math.IsInf(durationSeconds, 0) {
		return nil
	}

	n := int(math.Floor(durationSeconds / clipLengthSeconds))
	if maxClips < n {
		n = maxClips
	}
	if n <= 0 {
		return nil
	}

	spacing := durationSeconds / float64(n)
	windows := make([]types.ClipWindow, 0, n)
	for i := 0; i < n; i++ {
		start := float64(i) * spacing
		windows = append(windows, types.ClipWindow{
			Index:        i,
			StartSeconds: start,
			EndSeconds:   math.Min(start+clipLengthSeconds, durationSeconds),
		})
	}
	return windows
}

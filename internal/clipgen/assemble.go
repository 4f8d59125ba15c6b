package clipgen

import (
	"github.com/samber/lo"

	"clipz-ai/internal/types"
)

// AssembleClips turns planned windows into candidates in window order. Ids
// are 1-based and follow the window index.
func AssembleClips(windows []types.ClipWindow, meta types.VideoMetadata, tags types.PatternTagSet) []types.ClipCandidate {
	return lo.Map(windows, func(w types.ClipWindow, _ int) types.ClipCandidate {
		pattern := SelectPattern(tags, w.Index)
		return types.ClipCandidate{
			Id:           w.Index + 1,
			Title:        ComposeTitle(pattern, w.Index),
			Caption:      ComposeCaption(pattern, w.Index, meta),
			StartTime:    FormatClock(w.StartSeconds),
			EndTime:      FormatClock(w.EndSeconds),
			StartSeconds: w.StartSeconds,
			EndSeconds:   w.EndSeconds,
			ViralScore:   pattern.Score,
			Pattern:      pattern,
		}
	})
}

package clipgen

import "clipz-ai/internal/types"

const (
	TagMysteryHook      = "mystery_hook"
	TagTutorialHook     = "tutorial_hook"
	TagExcitementHook   = "excitement_hook"
	TagSocialProofHook  = "social_proof_hook"
	TagQuickResults     = "quick_results"
	TagTimeSpecific     = "time_specific"
	TagSocialValidation = "social_validation"
	TagCredibility      = "credibility"
	TagUrgency          = "urgency"
)

// Title substrings are matched case-sensitively.
var patternRules = []struct {
	category types.PatternCategory
	tag      string
	needles  []string
}{
	{types.PatternCategoryHook, TagMysteryHook, []string{"Secret", "Hidden"}},
	{types.PatternCategoryHook, TagTutorialHook, []string{"How to", "Guide"}},
	{types.PatternCategoryHook, TagExcitementHook, []string{"Epic", "Insane"}},
	{types.PatternCategoryHook, TagSocialProofHook, []string{"Went Viral", "Broke the Internet"}},
	{types.PatternCategoryTiming, TagQuickResults, []string{"30 Seconds", "5-Minute"}},
	{types.PatternCategoryTiming, TagTimeSpecific, []string{"7 Days", "Overnight"}},
	{types.PatternCategoryEngagement, TagSocialValidation, []string{"Everyone", "Changed"}},
	{types.PatternCategoryEngagement, TagCredibility, []string{"Actually Works", "Real"}},
}

// DefaultPatternTagSet is used when no trend records are available.
func DefaultPatternTagSet() types.PatternTagSet {
	return types.PatternTagSet{
		HookPatterns:       []string{TagMysteryHook, TagTutorialHook, TagExcitementHook},
		TimingPatterns:     []string{TagQuickResults, TagTimeSpecific},
		EngagementTriggers: []string{TagSocialValidation, TagCredibility, TagUrgency},
	}
}

// ExtractPatterns collects pattern tags from the titles of high and viral
// records. An empty input yields the default set; input made only of
// low-engagement records yields an empty set.
func ExtractPatterns(records []types.TrendRecord) types.PatternTagSet {
	if len(records) == 0 {
		return DefaultPatternTagSet()
	}

	var tags types.PatternTagSet
	for _, record := range records {
		if record.EngagementLevel != types.EngagementHigh && record.EngagementLevel != types.EngagementViral {
			continue
		}
		for _, rule := range patternRules {
			if !containsAny(record.Title, rule.needles) {
				continue
			}
			switch rule.category {
			case types.PatternCategoryHook:
				tags.HookPatterns = append(tags.HookPatterns, rule.tag)
			case types.PatternCategoryTiming:
				tags.TimingPatterns = append(tags.TimingPatterns, rule.tag)
			case types.PatternCategoryEngagement:
				tags.EngagementTriggers = append(tags.EngagementTriggers, rule.tag)
			}
		}
	}
	return tags
}

// lookupPattern returns the fixed score and category of a tag.
func lookupPattern(tag string) (types.SelectedPattern, bool) {
	switch tag {
	case TagMysteryHook:
		return types.SelectedPattern{TagName: tag, Category: types.PatternCategoryHook, Score: 0.9}, true
	case TagTutorialHook:
		return types.SelectedPattern{TagName: tag, Category: types.PatternCategoryHook, Score: 0.8}, true
	case TagExcitementHook:
		return types.SelectedPattern{TagName: tag, Category: types.PatternCategoryHook, Score: 0.85}, true
	case TagSocialProofHook:
		return types.SelectedPattern{TagName: tag, Category: types.PatternCategoryHook, Score: 0.95}, true
	case TagQuickResults:
		return types.SelectedPattern{TagName: tag, Category: types.PatternCategoryTiming, Score: 0.8}, true
	case TagTimeSpecific:
		return types.SelectedPattern{TagName: tag, Category: types.PatternCategoryTiming, Score: 0.75}, true
	case TagSocialValidation:
		return types.SelectedPattern{TagName: tag, Category: types.PatternCategoryEngagement, Score: 0.9}, true
	case TagCredibility:
		return types.SelectedPattern{TagName: tag, Category: types.PatternCategoryEngagement, Score: 0.85}, true
	default:
		return types.SelectedPattern{}, false
	}
}

// SelectPattern round-robins over the hook tags by clip index. Timing and
// engagement tags do not take part in selection.
func SelectPattern(tags types.PatternTagSet, clipIndex int) types.SelectedPattern {
	fallback, _ := lookupPattern(TagMysteryHook)
	hooks := tags.HookPatterns
	if len(hooks) == 0 {
		return fallback
	}

	i := clipIndex % len(hooks)
	if i < 0 {
		i += len(hooks)
	}
	if selected, ok := lookupPattern(hooks[i]); ok {
		return selected
	}
	return fallback
}

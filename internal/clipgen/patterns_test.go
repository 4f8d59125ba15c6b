package clipgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipz-ai/internal/types"
)

func TestExtractPatterns(t *testing.T) {
	t.Run("empty input yields defaults", func(t *testing.T) {
		assert.Equal(t, DefaultPatternTagSet(), ExtractPatterns(nil))
	})

	t.Run("low engagement only yields empty set", func(t *testing.T) {
		tags := ExtractPatterns([]types.TrendRecord{
			{Title: "The Secret Guide", EngagementLevel: types.EngagementLow},
			{Title: "Epic 30 Seconds", EngagementLevel: types.EngagementLow},
		})
		assert.True(t, tags.IsEmpty())
	})

	t.Run("title may contribute several tags", func(t *testing.T) {
		tags := ExtractPatterns([]types.TrendRecord{
			{Title: "Hidden How to Guide That Went Viral in 30 Seconds", EngagementLevel: types.EngagementViral},
			{Title: "Real Results Overnight, Everyone Agrees", EngagementLevel: types.EngagementHigh},
		})
		assert.Equal(t, []string{TagMysteryHook, TagTutorialHook, TagSocialProofHook}, tags.HookPatterns)
		assert.Equal(t, []string{TagQuickResults, TagTimeSpecific}, tags.TimingPatterns)
		assert.Equal(t, []string{TagSocialValidation, TagCredibility}, tags.EngagementTriggers)
	})

	t.Run("matching is case sensitive and keeps duplicates", func(t *testing.T) {
		tags := ExtractPatterns([]types.TrendRecord{
			{Title: "secret epic", EngagementLevel: types.EngagementHigh},
			{Title: "Epic fail", EngagementLevel: types.EngagementHigh},
			{Title: "Insane save", EngagementLevel: types.EngagementViral},
		})
		assert.Equal(t, []string{TagExcitementHook, TagExcitementHook}, tags.HookPatterns)
	})
}

func TestSelectPattern(t *testing.T) {
	tags := types.PatternTagSet{HookPatterns: []string{TagMysteryHook, TagTutorialHook}}

	got := SelectPattern(tags, 2)
	assert.Equal(t, types.SelectedPattern{TagName: TagMysteryHook, Category: types.PatternCategoryHook, Score: 0.9}, got)

	got = SelectPattern(tags, 1)
	assert.Equal(t, TagTutorialHook, got.TagName)
	assert.Equal(t, 0.8, got.Score)

	t.Run("empty hooks fall back to mystery hook", func(t *testing.T) {
		only := types.PatternTagSet{TimingPatterns: []string{TagQuickResults}}
		for i := 0; i < 4; i++ {
			assert.Equal(t, TagMysteryHook, SelectPattern(only, i).TagName)
		}
	})

	t.Run("unknown tag falls back to mystery hook", func(t *testing.T) {
		got := SelectPattern(types.PatternTagSet{HookPatterns: []string{"mystery_box"}}, 0)
		assert.Equal(t, TagMysteryHook, got.TagName)
		assert.Equal(t, 0.9, got.Score)
	})

	t.Run("social proof scores highest", func(t *testing.T) {
		got := SelectPattern(types.PatternTagSet{HookPatterns: []string{TagSocialProofHook}}, 7)
		assert.Equal(t, 0.95, got.Score)
	})
}

func TestLookupPatternTable(t *testing.T) {
	testCases := []struct {
		tag      string
		score    float64
		category types.PatternCategory
	}{
		{TagMysteryHook, 0.9, types.PatternCategoryHook},
		{TagTutorialHook, 0.8, types.PatternCategoryHook},
		{TagExcitementHook, 0.85, types.PatternCategoryHook},
		{TagSocialProofHook, 0.95, types.PatternCategoryHook},
		{TagQuickResults, 0.8, types.PatternCategoryTiming},
		{TagTimeSpecific, 0.75, types.PatternCategoryTiming},
		{TagSocialValidation, 0.9, types.PatternCategoryEngagement},
		{TagCredibility, 0.85, types.PatternCategoryEngagement},
	}
	for _, tc := range testCases {
		got, ok := lookupPattern(tc.tag)
		require.True(t, ok, tc.tag)
		assert.Equal(t, tc.score, got.Score, tc.tag)
		assert.Equal(t, tc.category, got.Category, tc.tag)
	}

	_, ok := lookupPattern(TagUrgency)
	assert.False(t, ok)
}

func TestStaticTrendProvider(t *testing.T) {
	provider := StaticTrendProvider{}
	ctx := context.Background()

	tutorial, err := provider.FetchTrending(ctx, types.ContentTypeTutorial)
	require.NoError(t, err)
	assert.Len(t, tutorial, 3)

	music, err := provider.FetchTrending(ctx, types.ContentTypeMusic)
	require.NoError(t, err)
	assert.Equal(t, tutorial, music)

	// callers may not corrupt the table
	music[0].Title = "changed"
	again, _ := provider.FetchTrending(ctx, types.ContentTypeTutorial)
	assert.NotEqual(t, "changed", again[0].Title)

	for _, ct := range []types.ContentType{types.ContentTypeReview, types.ContentTypeReaction, types.ContentTypeGaming, types.ContentTypeCooking, types.ContentTypeFitness} {
		records, err := provider.FetchTrending(ctx, ct)
		require.NoError(t, err)
		assert.False(t, ExtractPatterns(records).IsEmpty(), ct)
	}
}

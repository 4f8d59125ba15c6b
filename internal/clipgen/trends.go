package clipgen

import (
	"context"

	"clipz-ai/internal/types"
)

// StaticTrendProvider serves a fixed trending table per content type. It is
// used when no trend service is configured and never fails.
type StaticTrendProvider struct{}

var _ types.TrendProvider = StaticTrendProvider{}

var trendTables = map[types.ContentType][]types.TrendRecord{
	types.ContentTypeTutorial: {
		{Title: "The Hidden Guide Everyone Is Using", ViewCountLabel: "2.4M views", EngagementLevel: types.EngagementViral},
		{Title: "How to Master Editing in 30 Seconds", ViewCountLabel: "890K views", EngagementLevel: types.EngagementHigh},
		{Title: "Tips I Wish I Knew Sooner", ViewCountLabel: "45K views", EngagementLevel: types.EngagementLow},
	},
	types.ContentTypeReview: {
		{Title: "Honest Review: The Real Truth About This Phone", ViewCountLabel: "1.2M views", EngagementLevel: types.EngagementHigh},
		{Title: "This Gadget Went Viral and Changed My Setup", ViewCountLabel: "3.1M views", EngagementLevel: types.EngagementViral},
		{Title: "Unboxing the Secret Edition in a 5-Minute Test", ViewCountLabel: "300K views", EngagementLevel: types.EngagementHigh},
	},
	types.ContentTypeReaction: {
		{Title: "Insane Reaction to the Final Episode", ViewCountLabel: "4.5M views", EngagementLevel: types.EngagementViral},
		{Title: "Reacting to the Clip That Broke the Internet", ViewCountLabel: "2.2M views", EngagementLevel: types.EngagementHigh},
		{Title: "First Time Hearing This", ViewCountLabel: "60K views", EngagementLevel: types.EngagementLow},
	},
	types.ContentTypeGaming: {
		{Title: "Epic Clutch Nobody Saw Coming", ViewCountLabel: "5.3M views", EngagementLevel: types.EngagementViral},
		{Title: "Hidden Strategy That Actually Works", ViewCountLabel: "760K views", EngagementLevel: types.EngagementHigh},
		{Title: "Any% Speedrun in 30 Seconds", ViewCountLabel: "1.1M views", EngagementLevel: types.EngagementHigh},
	},
	types.ContentTypeCooking: {
		{Title: "5-Minute Pasta Everyone Should Know", ViewCountLabel: "2.8M views", EngagementLevel: types.EngagementViral},
		{Title: "The Secret Sauce Restaurants Never Share", ViewCountLabel: "1.4M views", EngagementLevel: types.EngagementHigh},
		{Title: "Overnight Oats Guide", ViewCountLabel: "90K views", EngagementLevel: types.EngagementLow},
	},
	types.ContentTypeFitness: {
		{Title: "7 Days of This Workout Changed My Body", ViewCountLabel: "3.6M views", EngagementLevel: types.EngagementViral},
		{Title: "How to Build Real Strength at Home", ViewCountLabel: "1.9M views", EngagementLevel: types.EngagementHigh},
		{Title: "Insane Ab Routine", ViewCountLabel: "210K views", EngagementLevel: types.EngagementLow},
	},
}

// FetchTrending returns the table for contentType, or the tutorial table when
// none exists. The returned slice is a copy.
func (StaticTrendProvider) FetchTrending(_ context.Context, contentType types.ContentType) ([]types.TrendRecord, error) {
	table, ok := trendTables[contentType]
	if !ok {
		table = trendTables[types.ContentTypeTutorial]
	}
	out := make([]types.TrendRecord, len(table))
	copy(out, table)
	return out, nil
}

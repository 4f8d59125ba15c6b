package clipgen

import (
	"strings"

	"clipz-ai/internal/types"
)

// Checked in order; the first bucket with a matching keyword wins.
var contentTypeRules = []struct {
	contentType types.ContentType
	keywords    []string
}{
	{types.ContentTypeTutorial, []string{"tutorial", "how to", "guide"}},
	{types.ContentTypeReview, []string{"review", "unboxing"}},
	{types.ContentTypeReaction, []string{"reaction", "reacting"}},
	{types.ContentTypeVlog, []string{"vlog", "day in the life"}},
	{types.ContentTypeGaming, []string{"gaming", "gameplay"}},
	{types.ContentTypeCooking, []string{"cooking", "recipe"}},
	{types.ContentTypeFitness, []string{"fitness", "workout"}},
	{types.ContentTypeMusic, []string{"music", "song"}},
}

// ClassifyContentType buckets a video title by keyword. Titles matching no
// rule are general.
func ClassifyContentType(title string) types.ContentType {
	lower := strings.ToLower(title)
	for _, rule := range contentTypeRules {
		if containsAny(lower, rule.keywords) {
			return rule.contentType
		}
	}
	return types.ContentTypeGeneral
}

var platformRules = []struct {
	platform types.Platform
	hosts    []string
}{
	{types.PlatformYoutube, []string{"youtube.com", "youtu.be"}},
	{types.PlatformTiktok, []string{"tiktok.com"}},
	{types.PlatformInstagram, []string{"instagram.com"}},
	{types.PlatformTwitter, []string{"twitter.com", "x.com"}},
}

// DetectPlatform maps a source URL to the platform hosting it.
func DetectPlatform(url string) types.Platform {
	for _, rule := range platformRules {
		if containsAny(url, rule.hosts) {
			return rule.platform
		}
	}
	return types.PlatformUnknown
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

package types

// VideoMetadata 视频基础信息，由 video info 采集方提供
type VideoMetadata struct {
	Title           string  `json:"title"`
	Channel         string  `json:"channel"`
	DurationSeconds float64 `json:"durationSeconds"`
	SourceUrl       string  `json:"url"`
	Thumbnail       string  `json:"thumbnail,omitempty"`
	VideoId         string  `json:"videoId,omitempty"`
}

type ContentType string

const (
	ContentTypeTutorial ContentType = "tutorial"
	ContentTypeReview   ContentType = "review"
	ContentTypeReaction ContentType = "reaction"
	ContentTypeVlog     ContentType = "vlog"
	ContentTypeGaming   ContentType = "gaming"
	ContentTypeCooking  ContentType = "cooking"
	ContentTypeFitness  ContentType = "fitness"
	ContentTypeMusic    ContentType = "music"
	ContentTypeGeneral  ContentType = "general"
)

type Platform string

const (
	PlatformYoutube   Platform = "youtube"
	PlatformTiktok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformUnknown   Platform = "unknown"
)

// ParsePlatform maps a user supplied platform name onto the closed set.
func ParsePlatform(s string) Platform {
	switch Platform(s) {
	case PlatformYoutube, PlatformTiktok, PlatformInstagram, PlatformTwitter:
		return Platform(s)
	default:
		return PlatformUnknown
	}
}

type EngagementLevel string

const (
	EngagementHigh  EngagementLevel = "high"
	EngagementViral EngagementLevel = "viral"
	EngagementLow   EngagementLevel = "low"
)

// TrendRecord 趋势信号中的一条热门标题
type TrendRecord struct {
	Title           string          `json:"title"`
	ViewCountLabel  string          `json:"views"`
	EngagementLevel EngagementLevel `json:"engagement"`
}

// PatternTagSet holds the tags accumulated from trend records. Slices keep
// insertion order and may repeat a tag.
type PatternTagSet struct {
	HookPatterns       []string `json:"hookPatterns"`
	TimingPatterns     []string `json:"timingPatterns"`
	EngagementTriggers []string `json:"engagementTriggers"`
}

func (s PatternTagSet) IsEmpty() bool {
	return len(s.HookPatterns) == 0 && len(s.TimingPatterns) == 0 && len(s.EngagementTriggers) == 0
}

type PatternCategory string

const (
	PatternCategoryHook       PatternCategory = "hook"
	PatternCategoryTiming     PatternCategory = "timing"
	PatternCategoryEngagement PatternCategory = "engagement"
)

type SelectedPattern struct {
	TagName  string          `json:"tagName"`
	Category PatternCategory `json:"category"`
	Score    float64         `json:"score"`
}

type ClipWindow struct {
	Index        int     `json:"index"`
	StartSeconds float64 `json:"startSeconds"`
	EndSeconds   float64 `json:"endSeconds"`
}

// ClipCandidate 单个候选切片，生成后不再修改
type ClipCandidate struct {
	Id           int             `json:"id"`
	Title        string          `json:"title"`
	Caption      string          `json:"caption"`
	StartTime    string          `json:"startTime"`
	EndTime      string          `json:"endTime"`
	StartSeconds float64         `json:"startSeconds"`
	EndSeconds   float64         `json:"endSeconds"`
	ViralScore   float64         `json:"viralScore"`
	Pattern      SelectedPattern `json:"pattern"`
}

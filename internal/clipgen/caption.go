package clipgen

import (
	"strings"

	"clipz-ai/internal/types"
)

func captionTemplates(category types.PatternCategory) []string {
	switch category {
	case types.PatternCategoryTiming:
		return []string{
			"⏱️ Results in seconds, not hours. Here's how...",
			"🔥 The fastest way to get this done. No fluff!",
			"💡 Try this for 7 days and thank me later...",
			"🚀 Quick win you can use today. Save this!",
		}
	case types.PatternCategoryEngagement:
		return []string{
			"🔥 Everyone is talking about this. Now you know why...",
			"💡 Real results, no gimmicks. This actually works!",
			"🚀 Tag someone who needs to see this today...",
			"🎯 Drop a comment if this changed your mind!",
		}
	default:
		return []string{
			"🔥 Nobody talks about this part, and it changes everything...",
			"💡 Stop scrolling. This is the moment that makes the whole video click!",
			"🚀 You won't believe what happens next. Watch till the end...",
			"⚡ This is the part everyone keeps rewatching. Pure gold!",
			"🎯 The secret most creators miss is right here...",
		}
	}
}

func titleTemplates(category types.PatternCategory) []string {
	switch category {
	case types.PatternCategoryTiming:
		return []string{
			"Quick Win: Results in Seconds",
			"Speed Run: The Fast Way",
			"Challenge: Try It for 7 Days",
		}
	case types.PatternCategoryEngagement:
		return []string{
			"Social Proof: Why Everyone Cares",
			"Real Talk: It Actually Works",
			"Community: Share This Moment",
		}
	default:
		return []string{
			"Hook: The Secret to Viral Content",
			"Key Insight: Content Strategy",
			"Call to Action: Engagement Tips",
			"Pro Tip: Growth Hacking",
			"Game Changer: Audience Building",
		}
	}
}

// PlatformEmoji 平台对应的 emoji 前缀
func PlatformEmoji(platform types.Platform) string {
	switch platform {
	case types.PlatformYoutube:
		return "📺"
	case types.PlatformTiktok:
		return "🎵"
	case types.PlatformInstagram:
		return "📸"
	case types.PlatformTwitter:
		return "🐦"
	default:
		return "🎥"
	}
}

func pickTemplate(templates []string, clipIndex int) string {
	if clipIndex >= 0 && clipIndex < len(templates) {
		return templates[clipIndex]
	}
	return templates[0]
}

// CreditHandle strips whitespace from a channel name and lower-cases it.
func CreditHandle(channel string) string {
	return strings.ToLower(strings.Join(strings.Fields(channel), ""))
}

// ComposeCaption renders "{emoji} {template}" with an optional channel
// credit suffix. Deterministic for equal inputs.
func ComposeCaption(pattern types.SelectedPattern, clipIndex int, meta types.VideoMetadata) string {
	var sb strings.Builder
	sb.WriteString(PlatformEmoji(DetectPlatform(meta.SourceUrl)))
	sb.WriteString(" ")
	sb.WriteString(pickTemplate(captionTemplates(pattern.Category), clipIndex))
	if handle := CreditHandle(meta.Channel); handle != "" {
		sb.WriteString(" Credit: @")
		sb.WriteString(handle)
	}
	return sb.String()
}

// ComposeTitle picks the clip title for a pattern category, indexed like captions.
func ComposeTitle(pattern types.SelectedPattern, clipIndex int) string {
	return pickTemplate(titleTemplates(pattern.Category), clipIndex)
}

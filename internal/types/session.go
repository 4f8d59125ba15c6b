package types

import "time"

// ClipSession 一次 generate-clips 的结果，供后续渲染和发布使用
type ClipSession struct {
	Token       string
	Metadata    VideoMetadata
	ContentType ContentType
	Platform    Platform
	Tags        PatternTagSet
	VideoPath   string // 下载后的原始视频路径
	Candidates  []ClipCandidate
	ClipFiles   map[int]string
	CreatedAt   time.Time
}

// Candidate returns the candidate with the given id.
func (s *ClipSession) Candidate(clipID int) (ClipCandidate, bool) {
	for _, c := range s.Candidates {
		if c.Id == clipID {
			return c, true
		}
	}
	return ClipCandidate{}, false
}

package dto

import "clipz-ai/internal/types"

type AnalyzeReq struct {
	Url string `json:"url" binding:"required"`
}

type AnalyzeResData struct {
	Title           string            `json:"title"`
	Duration        string            `json:"duration"` // m:ss
	DurationSeconds float64           `json:"durationSeconds"`
	Channel         string            `json:"channel"`
	Thumbnail       string            `json:"thumbnail"`
	Url             string            `json:"url"`
	ContentType     types.ContentType `json:"contentType"`
	Platform        types.Platform    `json:"platform"`
	Fallback        bool              `json:"fallback,omitempty"` // 信息来自兜底数据
}

// GenerateClipsReq 生成候选切片；VideoInfo 为空时重新获取
type GenerateClipsReq struct {
	VideoUrl          string               `json:"videoUrl" binding:"required"`
	VideoInfo         *types.VideoMetadata `json:"videoInfo"`
	ClipLengthSeconds float64              `json:"clipLengthSeconds"`
	MaxClips          int                  `json:"maxClips"`
}

type GenerateClipsResData struct {
	Token       string                `json:"token"`
	Title       string                `json:"title"`
	ContentType types.ContentType     `json:"contentType"`
	Platform    types.Platform        `json:"platform"`
	Patterns    types.PatternTagSet   `json:"patterns"`
	NoClips     bool                  `json:"noClips"`
	Clips       []types.ClipCandidate `json:"clips"`
}

type GenerateClipReq struct {
	Token  string `json:"token" binding:"required"`
	ClipId int    `json:"clipId" binding:"required"`
	Async  bool   `json:"async"` // 为 true 时排队渲染，返回 jobId
}

type GenerateClipResData struct {
	Success     bool   `json:"success"`
	ClipPath    string `json:"clipPath,omitempty"`
	DownloadUrl string `json:"downloadUrl,omitempty"`
	JobId       string `json:"jobId,omitempty"`
}

type UploadSocialReq struct {
	Platform string `json:"platform" binding:"required"`
	Token    string `json:"token" binding:"required"`
	ClipId   int    `json:"clipId" binding:"required"`
}

type UploadSocialResData struct {
	JobId  string `json:"jobId"`
	Status string `json:"status"`
}

type JobResData struct {
	types.Job
}

type HistoryResData struct {
	Runs []types.ClipRun `json:"runs"`
}

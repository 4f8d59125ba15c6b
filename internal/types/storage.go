package types

import "clipz-ai/internal/appcore"

// ClipRun 一次切片生成的记录
type ClipRun struct {
	Id              uint64       `json:"id" gorm:"primaryKey;autoIncrement"`
	Token           string       `json:"token" gorm:"uniqueIndex;not null"`
	SourceUrl       string       `json:"url"`
	Title           string       `json:"title"`
	Channel         string       `json:"channel"`
	DurationSeconds float64      `json:"durationSeconds"`
	ContentType     string       `json:"contentType"`
	Platform        string       `json:"platform"`
	VideoPath       string       `json:"videoPath"`
	CreateTime      int64        `json:"createTime" gorm:"autoCreateTime"`
	Clips           []ClipRecord `json:"clips" gorm:"foreignKey:RunToken;references:Token;constraint:OnDelete:CASCADE"`
}

type ClipRecord struct {
	Id           uint64  `json:"-" gorm:"primaryKey;autoIncrement"`
	RunToken     string  `json:"-" gorm:"index;not null"`
	ClipId       int     `json:"id"`
	Title        string  `json:"title"`
	Caption      string  `json:"caption"`
	StartSeconds float64 `json:"startSeconds"`
	EndSeconds   float64 `json:"endSeconds"`
	ViralScore   float64 `json:"viralScore"`
	PatternTag   string  `json:"patternTag"`
	Category     string  `json:"category"`
	FilePath     string  `json:"filePath"`
}

type Job struct {
	Id         uint64           `json:"-" gorm:"primaryKey;autoIncrement"`
	JobId      string           `json:"jobId" gorm:"uniqueIndex;not null"`
	Kind       appcore.JobKind  `json:"kind"`
	Token      string           `json:"token" gorm:"index"`
	ClipId     int              `json:"clipId"`
	Platform   string           `json:"platform"`
	Stage      appcore.JobStage `json:"-"`
	StageName  string           `json:"stage" gorm:"-"`
	Message    string           `json:"message"`
	FailReason string           `json:"failReason"`
	CreateTime int64            `json:"createTime" gorm:"autoCreateTime"`
	UpdateTime int64            `json:"updateTime" gorm:"autoUpdateTime"`
}

package types

import "context"

type VideoInfoFetcher interface {
	FetchInfo(ctx context.Context, url string) (VideoMetadata, error)
}

type VideoDownloader interface {
	Download(ctx context.Context, url, outputPath string) error
}

type ClipExtractor interface {
	ProbeDuration(ctx context.Context, inputPath string) (float64, error)
	ExtractClip(ctx context.Context, inputPath string, startSeconds, endSeconds float64, outputPath string) error
}

type TrendProvider interface {
	FetchTrending(ctx context.Context, contentType ContentType) ([]TrendRecord, error)
}

type PublishRequest struct {
	Platform  Platform
	VideoPath string
	Title     string
	Caption   string
}

type PublishResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Publisher interface {
	Publish(ctx context.Context, req PublishRequest) (PublishResult, error)
}

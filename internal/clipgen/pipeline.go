package clipgen

import (
	"context"

	"go.uber.org/zap"

	"clipz-ai/internal/types"
	"clipz-ai/log"
	apperrors "clipz-ai/pkg/errors"
)

const (
	DefaultClipLengthSeconds = 30
	DefaultMaxClips          = 3
)

type Options struct {
	ClipLengthSeconds float64
	MaxClips          int
	// TrendFallback substitutes the default tag set when the trend provider fails.
	TrendFallback bool
}

func DefaultOptions() Options {
	return Options{
		ClipLengthSeconds: DefaultClipLengthSeconds,
		MaxClips:          DefaultMaxClips,
		TrendFallback:     true,
	}
}

type Result struct {
	ContentType types.ContentType     `json:"contentType"`
	Platform    types.Platform        `json:"platform"`
	Tags        types.PatternTagSet   `json:"patterns"`
	Candidates  []types.ClipCandidate `json:"clips"`
}

// NoClips reports the media was too short for a single clip.
func (r Result) NoClips() bool {
	return len(r.Candidates) == 0
}

// Generator runs the candidate pipeline against one trend source. It keeps
// no per-run state and is safe for concurrent use.
type Generator struct {
	trends types.TrendProvider
	logger *zap.Logger
}

func NewGenerator(trends types.TrendProvider) *Generator {
	if trends == nil {
		trends = StaticTrendProvider{}
	}
	return &Generator{
		trends: trends,
		logger: log.WithComponent("clipgen"),
	}
}

// PatternTags fetches trend records for contentType and extracts their tags.
func (g *Generator) PatternTags(ctx context.Context, contentType types.ContentType, opts Options) (types.PatternTagSet, error) {
	records, err := g.trends.FetchTrending(ctx, contentType)
	if err != nil {
		if !opts.TrendFallback {
			return types.PatternTagSet{}, apperrors.Wrap(apperrors.CodeTrendUnavailable, apperrors.ErrTrendUnavailable.Message, err)
		}
		g.logger.Warn("trend lookup failed, using default pattern tags",
			zap.String("contentType", string(contentType)), zap.Error(err))
		return DefaultPatternTagSet(), nil
	}
	return ExtractPatterns(records), nil
}

// Candidates plans windows for meta and assembles them with tags.
func (g *Generator) Candidates(meta types.VideoMetadata, tags types.PatternTagSet, opts Options) []types.ClipCandidate {
	windows := PlanWindows(meta.DurationSeconds, opts.ClipLengthSeconds, opts.MaxClips)
	return AssembleClips(windows, meta, tags)
}

// Generate runs classification, trend extraction and assembly for meta.
func (g *Generator) Generate(ctx context.Context, meta types.VideoMetadata, opts Options) (Result, error) {
	contentType := ClassifyContentType(meta.Title)
	tags, err := g.PatternTags(ctx, contentType, opts)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		ContentType: contentType,
		Platform:    DetectPlatform(meta.SourceUrl),
		Tags:        tags,
		Candidates:  g.Candidates(meta, tags, opts),
	}
	g.logger.Debug("clip candidates generated",
		zap.String("contentType", string(result.ContentType)),
		zap.String("platform", string(result.Platform)),
		zap.Int("count", len(result.Candidates)))
	return result, nil
}

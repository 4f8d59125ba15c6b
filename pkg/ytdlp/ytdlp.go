// Package ytdlp looks up video metadata and downloads source videos through
// the yt-dlp binary.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"clipz-ai/internal/types"
	"clipz-ai/log"
	apperrors "clipz-ai/pkg/errors"
)

const downloadFormat = "bestvideo[height<=1080][ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"

type Options struct {
	BinaryPath  string
	FfmpegPath  string
	Proxy       string
	CookiesPath string
}

type runFunc func(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

type Client struct {
	opts   Options
	logger *zap.Logger
	run    runFunc
}

var (
	_ types.VideoInfoFetcher = (*Client)(nil)
	_ types.VideoDownloader  = (*Client)(nil)
)

func New(opts Options) *Client {
	if strings.TrimSpace(opts.BinaryPath) == "" {
		opts.BinaryPath = "yt-dlp"
	}
	return &Client{
		opts:   opts,
		logger: log.WithComponent("ytdlp"),
		run:    runCommand,
	}
}

func (c *Client) commonArgs() []string {
	var args []string
	if c.opts.Proxy != "" {
		args = append(args, "--proxy", c.opts.Proxy)
	}
	if c.opts.CookiesPath != "" {
		if _, err := os.Stat(c.opts.CookiesPath); err == nil {
			args = append(args, "--cookies", c.opts.CookiesPath)
		}
	}
	if c.opts.FfmpegPath != "" && c.opts.FfmpegPath != "ffmpeg" {
		args = append(args, "--ffmpeg-location", c.opts.FfmpegPath)
	}
	return args
}

type dumpJSON struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Uploader   string  `json:"uploader"`
	Channel    string  `json:"channel"`
	Duration   float64 `json:"duration"`
	Thumbnail  string  `json:"thumbnail"`
	WebpageURL string  `json:"webpage_url"`
}

// FetchInfo reads metadata with --dump-json without downloading media.
func (c *Client) FetchInfo(ctx context.Context, url string) (types.VideoMetadata, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return types.VideoMetadata{}, apperrors.ErrInvalidParams
	}

	args := append([]string{"--dump-json", "--skip-download", "--no-playlist", "--no-warnings"}, c.commonArgs()...)
	args = append(args, url)

	stdout, stderr, err := c.run(ctx, c.opts.BinaryPath, args...)
	if err != nil {
		c.logger.Error("yt-dlp info failed", zap.String("url", url), zap.String("stderr", string(stderr)), zap.Error(err))
		return types.VideoMetadata{}, classifyFailure(apperrors.CodeVideoInfoFailed, apperrors.ErrVideoInfoFailed.Message, stderr, err)
	}

	meta, err := parseDumpJSON(stdout)
	if err != nil {
		return types.VideoMetadata{}, apperrors.Wrap(apperrors.CodeVideoInfoFailed, apperrors.ErrVideoInfoFailed.Message, err)
	}
	if meta.SourceUrl == "" {
		meta.SourceUrl = url
	}
	return meta, nil
}

// parseDumpJSON takes the first JSON object line; playlists print one per entry.
func parseDumpJSON(output []byte) (types.VideoMetadata, error) {
	var info dumpJSON
	var lastErr error
	for _, line := range bytes.Split(output, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		if lastErr = json.Unmarshal(line, &info); lastErr == nil {
			channel := info.Channel
			if channel == "" {
				channel = info.Uploader
			}
			return types.VideoMetadata{
				Title:           info.Title,
				Channel:         channel,
				DurationSeconds: info.Duration,
				SourceUrl:       info.WebpageURL,
				Thumbnail:       info.Thumbnail,
				VideoId:         info.ID,
			}, nil
		}
	}
	if lastErr == nil {
		lastErr = apperrors.New(apperrors.CodeVideoInfoFailed, "yt-dlp printed no json")
	}
	return types.VideoMetadata{}, lastErr
}

// Download fetches url as an mp4 into outputPath.
func (c *Client) Download(ctx context.Context, url, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeFileWriteError, "create download dir failed", err)
	}

	args := []string{
		"-f", downloadFormat,
		"--merge-output-format", "mp4",
		"--no-playlist",
		"-o", outputPath,
	}
	args = append(args, c.commonArgs()...)
	args = append(args, url)

	c.logger.Info("downloading source video", zap.String("url", url), zap.String("output", outputPath))
	_, stderr, err := c.run(ctx, c.opts.BinaryPath, args...)
	if err != nil {
		c.logger.Error("yt-dlp download failed", zap.String("url", url), zap.String("stderr", string(stderr)), zap.Error(err))
		return classifyFailure(apperrors.CodeVideoDownload, apperrors.ErrVideoDownload.Message, stderr, err)
	}
	if _, err = os.Stat(outputPath); err != nil {
		return apperrors.WrapWithDetail(apperrors.CodeVideoDownload, apperrors.ErrVideoDownload.Message, "output file missing", err)
	}
	return nil
}

// classifyFailure maps well known yt-dlp stderr messages onto error codes.
func classifyFailure(code int, message string, stderr []byte, err error) error {
	text := strings.ToLower(string(stderr))
	switch {
	case strings.Contains(text, "unsupported url"):
		return apperrors.Wrap(apperrors.CodeUnsupportedURL, apperrors.ErrUnsupportedURL.Message, err)
	case strings.Contains(text, "sign in to confirm") || strings.Contains(text, "cookies"):
		return apperrors.Wrap(apperrors.CodeCookiesExpired, apperrors.ErrCookiesExpired.Message, err)
	case strings.Contains(text, "http error 429") || strings.Contains(text, "too many requests"):
		return apperrors.Wrap(apperrors.CodeRateLimited, apperrors.ErrRateLimited.Message, err)
	default:
		return apperrors.WrapWithDetail(code, message, lastLine(stderr), err)
	}
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

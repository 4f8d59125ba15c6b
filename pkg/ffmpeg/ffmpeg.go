// Package ffmpeg wraps the ffmpeg and ffprobe binaries used to measure and
// cut downloaded videos.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"clipz-ai/log"
	apperrors "clipz-ai/pkg/errors"
)

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func combinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func stdoutOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Executor runs ffmpeg/ffprobe with fixed binary paths.
type Executor struct {
	ffmpegPath  string
	ffprobePath string
	copyCodec   bool
	logger      *zap.Logger

	run   runFunc
	probe runFunc
}

// New returns an executor. Empty paths fall back to the binaries on PATH.
func New(ffmpegPath, ffprobePath string, copyCodec bool) *Executor {
	if strings.TrimSpace(ffmpegPath) == "" {
		ffmpegPath = "ffmpeg"
	}
	if strings.TrimSpace(ffprobePath) == "" {
		ffprobePath = "ffprobe"
	}
	return &Executor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		copyCodec:   copyCodec,
		logger:      log.WithComponent("ffmpeg"),
		run:         combinedOutput,
		probe:       stdoutOutput,
	}
}

type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDuration returns the container duration of a media file in seconds.
func (e *Executor) ProbeDuration(ctx context.Context, inputPath string) (float64, error) {
	if inputPath == "" {
		return 0, apperrors.New(apperrors.CodeInvalidParams, "input path is required")
	}

	args := []string{"-v", "quiet", "-print_format", "json", "-show_format", inputPath}
	output, err := e.probe(ctx, e.ffprobePath, args...)
	if err != nil {
		e.logger.Error("ffprobe failed", zap.String("input", inputPath), zap.Error(err))
		return 0, apperrors.Wrap(apperrors.CodeProbeFailed, apperrors.ErrProbeFailed.Message, err)
	}
	return parseProbeDuration(output)
}

func parseProbeDuration(output []byte) (float64, error) {
	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return 0, apperrors.WrapWithDetail(apperrors.CodeProbeFailed, apperrors.ErrProbeFailed.Message, "invalid ffprobe json", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil {
		return 0, apperrors.WrapWithDetail(apperrors.CodeProbeFailed, apperrors.ErrProbeFailed.Message, "missing format.duration", err)
	}
	if duration <= 0 {
		return 0, apperrors.WrapWithDetail(apperrors.CodeProbeFailed, apperrors.ErrProbeFailed.Message, "non-positive duration", fmt.Errorf("duration %v", duration))
	}
	return duration, nil
}

// partPath is the in-progress name for outputPath. It keeps the extension so
// ffmpeg still picks the container from it.
func partPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + ".part" + ext
}

// ExtractClip writes the [start, end) range of inputPath to outputPath.
// outputPath only appears once ffmpeg has finished successfully.
func (e *Executor) ExtractClip(ctx context.Context, inputPath string, start, end float64, outputPath string) error {
	if start < 0 || end <= start {
		return apperrors.WrapWithDetail(apperrors.CodeInvalidParams, "invalid clip range",
			fmt.Sprintf("start=%.3f end=%.3f", start, end), nil)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeFileWriteError, "create clip dir failed", err)
	}

	tmp := partPath(outputPath)
	args := e.clipArgs(inputPath, start, end, tmp)
	e.logger.Debug("extracting clip", zap.Strings("args", args))
	if out, err := e.run(ctx, e.ffmpegPath, args...); err != nil {
		_ = os.Remove(tmp)
		e.logger.Error("ffmpeg clip failed", zap.String("output", string(out)), zap.Error(err))
		return apperrors.WrapWithDetail(apperrors.CodeClipSplitFailed, apperrors.ErrClipSplitFailed.Message, lastLine(out), err)
	}
	if err := os.Rename(tmp, outputPath); err != nil {
		_ = os.Remove(tmp)
		return apperrors.Wrap(apperrors.CodeFileWriteError, "move clip into place failed", err)
	}
	return nil
}

func (e *Executor) clipArgs(inputPath string, start, end float64, outputPath string) []string {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(start),
		"-i", inputPath,
		"-t", formatSeconds(end - start),
	}
	if e.copyCodec {
		args = append(args, "-c", "copy", "-avoid_negative_ts", "1")
	} else {
		args = append(args, "-c:v", "libx264", "-preset", "veryfast", "-c:a", "aac")
	}
	return append(args, outputPath)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

package appcore

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"clipz-ai/log"
)

var (
	ErrRunnerStopped = errors.New("job runner stopped")
	ErrQueueFull     = errors.New("job queue is full")
)

type JobKind string

const (
	JobKindRender  JobKind = "render"
	JobKindPublish JobKind = "publish"
)

type JobStage uint8

const (
	JobStageQueued JobStage = iota + 1
	JobStageProcessing
	JobStageSucceeded
	JobStageFailed
)

func (s JobStage) String() string {
	switch s {
	case JobStageQueued:
		return "queued"
	case JobStageProcessing:
		return "processing"
	case JobStageSucceeded:
		return "succeeded"
	case JobStageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s JobStage) IsTerminal() bool {
	return s == JobStageSucceeded || s == JobStageFailed
}

// RenderPayload asks for one clip of a generated run to be cut into a file.
type RenderPayload struct {
	JobID  string `json:"job_id"`
	Token  string `json:"token"`
	ClipID int    `json:"clip_id"`
}

// PublishPayload asks for one clip to be rendered (if needed) and uploaded.
type PublishPayload struct {
	JobID    string `json:"job_id"`
	Token    string `json:"token"`
	ClipID   int    `json:"clip_id"`
	Platform string `json:"platform"`
}

// Executor performs the work behind a job. Implemented by the service layer.
type Executor interface {
	RenderClip(ctx context.Context, token string, clipID int) (string, error)
	PublishClip(ctx context.Context, token string, clipID int, platform string) (string, error)
}

// Submitter accepts jobs for asynchronous execution.
type Submitter interface {
	SubmitRender(payload RenderPayload) error
	SubmitPublish(payload PublishPayload) error
}

// Execute dispatches a job to the executor and returns the result message.
func Execute(ctx context.Context, exec Executor, kind JobKind, render RenderPayload, publish PublishPayload) (string, error) {
	switch kind {
	case JobKindRender:
		return exec.RenderClip(ctx, render.Token, render.ClipID)
	case JobKindPublish:
		return exec.PublishClip(ctx, publish.Token, publish.ClipID, publish.Platform)
	default:
		return "", errors.New("unsupported job kind: " + string(kind))
	}
}

// StageRecorder persists job stage transitions.
type StageRecorder interface {
	UpdateJobStage(jobID string, stage JobStage, message, failReason string) error
}

type StageRecorderFunc func(jobID string, stage JobStage, message, failReason string) error

func (f StageRecorderFunc) UpdateJobStage(jobID string, stage JobStage, message, failReason string) error {
	return f(jobID, stage, message, failReason)
}

// Run executes one job, recording processing and then succeeded or failed.
// Recording failures are logged and do not change the job result.
func Run(ctx context.Context, exec Executor, rec StageRecorder, jobID string, kind JobKind, render RenderPayload, publish PublishPayload) (string, error) {
	record := func(stage JobStage, message, failReason string) {
		if rec == nil || jobID == "" {
			return
		}
		if err := rec.UpdateJobStage(jobID, stage, message, failReason); err != nil {
			log.GetLogger().Warn("更新任务状态失败", zap.String("job_id", jobID), zap.String("stage", stage.String()), zap.Error(err))
		}
	}

	record(JobStageProcessing, "处理中 Processing", "")
	msg, err := Execute(ctx, exec, kind, render, publish)
	if err != nil {
		record(JobStageFailed, "任务失败 Failed", err.Error())
		return "", err
	}
	record(JobStageSucceeded, msg, "")
	return msg, nil
}

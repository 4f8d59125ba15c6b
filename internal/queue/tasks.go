// Package queue provides job handlers for Asynq background processing.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"clipz-ai/internal/appcore"
	"clipz-ai/log"
)

// TaskHandlers provides handlers for different job types
type TaskHandlers struct {
	executor appcore.Executor
	recorder appcore.StageRecorder
}

// NewTaskHandlers creates a new TaskHandlers instance
func NewTaskHandlers(executor appcore.Executor, recorder appcore.StageRecorder) *TaskHandlers {
	return &TaskHandlers{executor: executor, recorder: recorder}
}

// HandleRenderClip processes clip render jobs
func (h *TaskHandlers) HandleRenderClip(ctx context.Context, t *asynq.Task) error {
	var payload appcore.RenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	log.GetLogger().Info("[Queue] Processing render job",
		zap.String("job_id", payload.JobID),
		zap.String("token", payload.Token),
		zap.Int("clip_id", payload.ClipID))

	_, err := appcore.Run(ctx, h.executor, h.recorder, payload.JobID, appcore.JobKindRender, payload, appcore.PublishPayload{})
	return err
}

// HandlePublishClip processes clip publish jobs
func (h *TaskHandlers) HandlePublishClip(ctx context.Context, t *asynq.Task) error {
	var payload appcore.PublishPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	log.GetLogger().Info("[Queue] Processing publish job",
		zap.String("job_id", payload.JobID),
		zap.String("token", payload.Token),
		zap.Int("clip_id", payload.ClipID),
		zap.String("platform", payload.Platform))

	_, err := appcore.Run(ctx, h.executor, h.recorder, payload.JobID, appcore.JobKindPublish, appcore.RenderPayload{}, payload)
	return err
}

// RegisterHandlers registers all job handlers with the Asynq server mux
func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeRenderClip, h.HandleRenderClip)
	mux.HandleFunc(TypePublishClip, h.HandlePublishClip)
}

// Start runs the Asynq worker in the background with registered handlers.
func (q *Queue) Start(executor appcore.Executor, recorder appcore.StageRecorder) error {
	handlers := NewTaskHandlers(executor, recorder)

	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	log.GetLogger().Info("[Queue] Starting worker",
		zap.String("redis_addr", q.config.RedisAddr),
		zap.Int("concurrency", q.config.Concurrency))

	return q.server.Start(mux)
}

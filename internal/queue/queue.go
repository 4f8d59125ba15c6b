// Package queue provides background job processing using Asynq.
// It is the redis-backed alternative to the in-process task runner.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"clipz-ai/config"
	"clipz-ai/internal/appcore"
	"clipz-ai/log"
)

// Task type names
const (
	TypeRenderClip  = "clip:render"
	TypePublishClip = "clip:publish"
)

// QueueConfig holds Redis configuration for Asynq
type QueueConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
}

// enqueuer is the part of asynq.Client the queue uses.
type enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Queue manages job enqueueing and processing
type Queue struct {
	client enqueuer
	server *asynq.Server
	config QueueConfig
}

var _ appcore.Submitter = (*Queue)(nil)

// DefaultConfig returns default queue configuration
func DefaultConfig() QueueConfig {
	return QueueConfig{
		RedisAddr:   "localhost:6379",
		RedisDB:     0,
		Concurrency: 3,
	}
}

// ConfigFromConf builds the queue configuration from the [queue] section.
func ConfigFromConf(conf config.Queue) QueueConfig {
	cfg := QueueConfig{
		RedisAddr:     conf.Redis.Addr,
		RedisPassword: conf.Redis.Password,
		RedisDB:       conf.Redis.DB,
		Concurrency:   conf.Concurrency,
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = DefaultConfig().RedisAddr
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	return cfg
}

// NewQueue creates a new Queue instance
func NewQueue(cfg QueueConfig) *Queue {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			RetryDelayFunc: retryDelay,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.GetLogger().Error("Job failed",
					zap.String("type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err))
			}),
		},
	)

	return &Queue{
		client: client,
		server: server,
		config: cfg,
	}
}

// retryDelay backs off exponentially: 10s, 20s, 40s, ...
func retryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	return time.Duration(10<<uint(n)) * time.Second
}

func newRenderTask(payload appcore.RenderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeRenderClip, data,
		asynq.MaxRetry(2),
		asynq.Timeout(15*time.Minute),
		asynq.Queue("default"),
	), nil
}

// Publishing drives a browser session, so it is retried once and runs on
// the low priority queue.
func newPublishTask(payload appcore.PublishPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypePublishClip, data,
		asynq.MaxRetry(1),
		asynq.Timeout(20*time.Minute),
		asynq.Queue("low"),
	), nil
}

// SubmitRender adds a clip render job to the queue
func (q *Queue) SubmitRender(payload appcore.RenderPayload) error {
	task, err := newRenderTask(payload)
	if err != nil {
		return err
	}
	return q.enqueue(task, payload.JobID)
}

// SubmitPublish adds a clip publish job to the queue
func (q *Queue) SubmitPublish(payload appcore.PublishPayload) error {
	task, err := newPublishTask(payload)
	if err != nil {
		return err
	}
	return q.enqueue(task, payload.JobID)
}

func (q *Queue) enqueue(task *asynq.Task, jobID string) error {
	opts := []asynq.Option{}
	if jobID != "" {
		opts = append(opts, asynq.TaskID(jobID))
	}
	info, err := q.client.Enqueue(task, opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	log.GetLogger().Info("Job enqueued",
		zap.String("job_id", jobID),
		zap.String("type", task.Type()),
		zap.String("queue_id", info.ID),
		zap.String("queue", info.Queue))
	return nil
}

// Close gracefully shuts down the queue
func (q *Queue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	if q.server != nil {
		q.server.Shutdown()
	}
	return nil
}

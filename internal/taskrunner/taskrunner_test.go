package taskrunner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clipz-ai/internal/appcore"
	"clipz-ai/internal/mocks"
)

type memoryRecorder struct {
	mu     sync.Mutex
	stages map[string][]appcore.JobStage
}

func newMemoryRecorder() *memoryRecorder {
	return &memoryRecorder{stages: make(map[string][]appcore.JobStage)}
}

func (m *memoryRecorder) UpdateJobStage(jobID string, stage appcore.JobStage, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages[jobID] = append(m.stages[jobID], stage)
	return nil
}

func (m *memoryRecorder) last(jobID string) appcore.JobStage {
	m.mu.Lock()
	defer m.mu.Unlock()
	stages := m.stages[jobID]
	if len(stages) == 0 {
		return 0
	}
	return stages[len(stages)-1]
}

type blockingExecutor struct {
	release chan struct{}
	started chan struct{}
}

func (b *blockingExecutor) RenderClip(ctx context.Context, _ string, _ int) (string, error) {
	b.started <- struct{}{}
	select {
	case <-b.release:
		return "done", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (b *blockingExecutor) PublishClip(ctx context.Context, token string, clipID int, _ string) (string, error) {
	return b.RenderClip(ctx, token, clipID)
}

func TestRunnerExecutesJobs(t *testing.T) {
	exec := new(mocks.MockExecutor)
	exec.On("RenderClip", mock.Anything, "tok", 1).Return("/clips/tok/clip_1.mp4", nil)
	exec.On("PublishClip", mock.Anything, "tok", 2, "tiktok").Return("", errors.New("not logged in"))
	rec := newMemoryRecorder()

	runner := New(exec, rec, Config{QueueSize: 4, Concurrency: 2})
	defer runner.Close()

	require.NoError(t, runner.SubmitRender(appcore.RenderPayload{JobID: "r1", Token: "tok", ClipID: 1}))
	require.NoError(t, runner.SubmitPublish(appcore.PublishPayload{JobID: "p1", Token: "tok", ClipID: 2, Platform: "tiktok"}))

	require.Eventually(t, func() bool {
		return rec.last("r1") == appcore.JobStageSucceeded && rec.last("p1") == appcore.JobStageFailed
	}, 2*time.Second, 10*time.Millisecond)
	exec.AssertExpectations(t)
}

func TestRunnerRejectsInvalidPayloads(t *testing.T) {
	runner := New(new(mocks.MockExecutor), nil, DefaultConfig())
	defer runner.Close()

	assert.Error(t, runner.SubmitRender(appcore.RenderPayload{JobID: "r1"}))
	assert.Error(t, runner.SubmitPublish(appcore.PublishPayload{JobID: "p1", Token: "tok"}))
}

func TestRunnerQueueFull(t *testing.T) {
	exec := &blockingExecutor{release: make(chan struct{}), started: make(chan struct{}, 1)}
	runner := New(exec, nil, Config{QueueSize: 1, Concurrency: 1})

	require.NoError(t, runner.SubmitRender(appcore.RenderPayload{JobID: "1", Token: "tok"}))
	<-exec.started
	require.NoError(t, runner.SubmitRender(appcore.RenderPayload{JobID: "2", Token: "tok"}))
	assert.Equal(t, 1, runner.Pending())

	err := runner.SubmitRender(appcore.RenderPayload{JobID: "3", Token: "tok"})
	assert.ErrorIs(t, err, appcore.ErrQueueFull)

	close(exec.release)
	runner.Close()
}

func TestRunnerClose(t *testing.T) {
	runner := New(new(mocks.MockExecutor), nil, DefaultConfig())
	runner.Close()
	runner.Close()

	err := runner.SubmitRender(appcore.RenderPayload{JobID: "1", Token: "tok"})
	assert.ErrorIs(t, err, appcore.ErrRunnerStopped)
}

func TestNormalizeConfig(t *testing.T) {
	got := normalizeConfig(Config{})
	assert.Equal(t, DefaultConfig(), got)
}

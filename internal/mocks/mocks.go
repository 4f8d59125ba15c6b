// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clipz-ai/internal/appcore"
	"clipz-ai/internal/types"
)

// MockVideoInfoFetcher is a mock implementation of types.VideoInfoFetcher
type MockVideoInfoFetcher struct {
	mock.Mock
}

func (m *MockVideoInfoFetcher) FetchInfo(ctx context.Context, url string) (types.VideoMetadata, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(types.VideoMetadata), args.Error(1)
}

// MockVideoDownloader is a mock implementation of types.VideoDownloader
type MockVideoDownloader struct {
	mock.Mock
}

func (m *MockVideoDownloader) Download(ctx context.Context, url, outputPath string) error {
	args := m.Called(ctx, url, outputPath)
	return args.Error(0)
}

// MockClipExtractor is a mock implementation of types.ClipExtractor
type MockClipExtractor struct {
	mock.Mock
}

func (m *MockClipExtractor) ProbeDuration(ctx context.Context, inputPath string) (float64, error) {
	args := m.Called(ctx, inputPath)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockClipExtractor) ExtractClip(ctx context.Context, inputPath string, startSeconds, endSeconds float64, outputPath string) error {
	args := m.Called(ctx, inputPath, startSeconds, endSeconds, outputPath)
	return args.Error(0)
}

// MockTrendProvider is a mock implementation of types.TrendProvider
type MockTrendProvider struct {
	mock.Mock
}

func (m *MockTrendProvider) FetchTrending(ctx context.Context, contentType types.ContentType) ([]types.TrendRecord, error) {
	args := m.Called(ctx, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.TrendRecord), args.Error(1)
}

// MockPublisher is a mock implementation of types.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, req types.PublishRequest) (types.PublishResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(types.PublishResult), args.Error(1)
}

// MockExecutor is a mock implementation of appcore.Executor
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) RenderClip(ctx context.Context, token string, clipID int) (string, error) {
	args := m.Called(ctx, token, clipID)
	return args.String(0), args.Error(1)
}

func (m *MockExecutor) PublishClip(ctx context.Context, token string, clipID int, platform string) (string, error) {
	args := m.Called(ctx, token, clipID, platform)
	return args.String(0), args.Error(1)
}

// MockSubmitter is a mock implementation of appcore.Submitter
type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) SubmitRender(payload appcore.RenderPayload) error {
	args := m.Called(payload)
	return args.Error(0)
}

func (m *MockSubmitter) SubmitPublish(payload appcore.PublishPayload) error {
	args := m.Called(payload)
	return args.Error(0)
}

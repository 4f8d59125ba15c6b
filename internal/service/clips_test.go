package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clipz-ai/internal/appcore"
	"clipz-ai/internal/clipgen"
	"clipz-ai/internal/dto"
	"clipz-ai/internal/mocks"
	"clipz-ai/internal/storage"
	"clipz-ai/internal/types"
	apperrors "clipz-ai/pkg/errors"
	"clipz-ai/pkg/social"
)

const tiktokURL = "https://www.tiktok.com/@x/video/1"

const tiktokCookies = `[{"name":"sessionid","value":"abc","domain":".tiktok.com","path":"/"}]`

type testDeps struct {
	info      *mocks.MockVideoInfoFetcher
	download  *mocks.MockVideoDownloader
	extractor *mocks.MockClipExtractor
	publisher *mocks.MockPublisher
	jobs      *mocks.MockSubmitter
}

func newTestService(t *testing.T) (*Service, *testDeps) {
	t.Helper()
	stubAppDirs(t)

	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "cache", "clipz.db"))
	require.NoError(t, err)
	original := storage.DB
	storage.DB = db
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		storage.DB = original
	})

	deps := &testDeps{
		info:      new(mocks.MockVideoInfoFetcher),
		download:  new(mocks.MockVideoDownloader),
		extractor: new(mocks.MockClipExtractor),
		publisher: new(mocks.MockPublisher),
		jobs:      new(mocks.MockSubmitter),
	}
	svc := &Service{
		InfoFetcher: deps.info,
		Downloader:  deps.download,
		Extractor:   deps.extractor,
		Publisher:   deps.publisher,
		Cookies:     social.NewCookieStore(filepath.Join(t.TempDir(), "cookies")),
		Generator:   clipgen.NewGenerator(nil),
		Sessions:    NewSessionStore(),
		Jobs:        deps.jobs,
		Options: Options{
			Clip:         clipgen.DefaultOptions(),
			SessionTTL:   time.Hour,
			RunRetention: 24 * time.Hour,
		},
	}
	return svc, deps
}

func writeVideo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("fake mp4"), 0o644)
}

func tiktokMeta() *types.VideoMetadata {
	return &types.VideoMetadata{
		Title:           "How to Build a Viral TikTok",
		Channel:         "Tech Tutorials",
		DurationSeconds: 600,
		SourceUrl:       tiktokURL,
	}
}

func expectDownload(t *testing.T, deps *testDeps, duration float64) {
	deps.download.On("Download", mock.Anything, tiktokURL, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			assert.NoError(t, writeVideo(args.String(2)))
		}).
		Return(nil).Once()
	deps.extractor.On("ProbeDuration", mock.Anything, mock.AnythingOfType("string")).Return(duration, nil).Once()
}

func expectExtract(t *testing.T, deps *testDeps, start, end float64) {
	deps.extractor.On("ExtractClip", mock.Anything, mock.AnythingOfType("string"), start, end, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			assert.NoError(t, writeVideo(args.String(4)))
		}).
		Return(nil)
}

func generateTiktok(t *testing.T, svc *Service, deps *testDeps) *dto.GenerateClipsResData {
	t.Helper()
	expectDownload(t, deps, 600)
	res, err := svc.GenerateClips(context.Background(), dto.GenerateClipsReq{VideoUrl: tiktokURL, VideoInfo: tiktokMeta()})
	require.NoError(t, err)
	return res
}

func TestAnalyzeVideo(t *testing.T) {
	svc, deps := newTestService(t)
	deps.info.On("FetchInfo", mock.Anything, tiktokURL).Return(*tiktokMeta(), nil)

	res, err := svc.AnalyzeVideo(context.Background(), dto.AnalyzeReq{Url: " " + tiktokURL + " "})
	require.NoError(t, err)
	assert.Equal(t, "How to Build a Viral TikTok", res.Title)
	assert.Equal(t, "10:00", res.Duration)
	assert.Equal(t, types.ContentTypeTutorial, res.ContentType)
	assert.Equal(t, types.PlatformTiktok, res.Platform)
	assert.False(t, res.Fallback)
}

func TestAnalyzeVideoInfoFailure(t *testing.T) {
	t.Run("error without fallback", func(t *testing.T) {
		svc, deps := newTestService(t)
		deps.info.On("FetchInfo", mock.Anything, tiktokURL).Return(types.VideoMetadata{}, apperrors.ErrVideoInfoFailed)

		_, err := svc.AnalyzeVideo(context.Background(), dto.AnalyzeReq{Url: tiktokURL})
		assert.True(t, apperrors.Is(err, apperrors.CodeVideoInfoFailed))
	})

	t.Run("fallback metadata when enabled", func(t *testing.T) {
		svc, deps := newTestService(t)
		svc.Options.InfoFallback = true
		deps.info.On("FetchInfo", mock.Anything, tiktokURL).Return(types.VideoMetadata{}, apperrors.ErrVideoInfoFailed)

		res, err := svc.AnalyzeVideo(context.Background(), dto.AnalyzeReq{Url: tiktokURL})
		require.NoError(t, err)
		assert.True(t, res.Fallback)
		assert.Equal(t, "15:30", res.Duration)
		assert.Equal(t, tiktokURL, res.Url)
		assert.Equal(t, types.ContentTypeTutorial, res.ContentType)
	})

	t.Run("rejects non http url", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.AnalyzeVideo(context.Background(), dto.AnalyzeReq{Url: "ftp://example.com/v"})
		assert.True(t, apperrors.Is(err, apperrors.CodeInvalidParams))
	})
}

func TestGenerateClips(t *testing.T) {
	svc, deps := newTestService(t)
	res := generateTiktok(t, svc, deps)

	assert.NotEmpty(t, res.Token)
	assert.Equal(t, types.ContentTypeTutorial, res.ContentType)
	assert.Equal(t, types.PlatformTiktok, res.Platform)
	assert.False(t, res.NoClips)
	require.Len(t, res.Clips, 3)
	for i, clip := range res.Clips {
		assert.Equal(t, i+1, clip.Id)
		assert.True(t, strings.HasPrefix(clip.Caption, "🎵 "), clip.Caption)
		assert.True(t, strings.HasSuffix(clip.Caption, "Credit: @techtutorials"), clip.Caption)
	}

	session, ok := svc.Sessions.Get(res.Token)
	require.True(t, ok)
	assert.FileExists(t, session.VideoPath)

	run, err := storage.GetRun(res.Token)
	require.NoError(t, err)
	assert.Len(t, run.Clips, 3)
	assert.Equal(t, "tutorial", run.ContentType)
	deps.download.AssertExpectations(t)
	deps.extractor.AssertExpectations(t)
}

func TestGenerateClipsUsesProbedDuration(t *testing.T) {
	svc, deps := newTestService(t)
	deps.info.On("FetchInfo", mock.Anything, tiktokURL).Return(*tiktokMeta(), nil)
	expectDownload(t, deps, 20)

	res, err := svc.GenerateClips(context.Background(), dto.GenerateClipsReq{VideoUrl: tiktokURL})
	require.NoError(t, err)
	assert.True(t, res.NoClips)
	assert.Empty(t, res.Clips)
}

func TestGenerateClipsRequestOverrides(t *testing.T) {
	svc, deps := newTestService(t)
	expectDownload(t, deps, 600)

	res, err := svc.GenerateClips(context.Background(), dto.GenerateClipsReq{
		VideoUrl:          tiktokURL,
		VideoInfo:         tiktokMeta(),
		ClipLengthSeconds: 15,
		MaxClips:          5,
	})
	require.NoError(t, err)
	require.Len(t, res.Clips, 5)
	assert.Equal(t, 15.0, res.Clips[0].EndSeconds-res.Clips[0].StartSeconds)
}

func TestGenerateClipsDownloadFailure(t *testing.T) {
	svc, deps := newTestService(t)
	deps.download.On("Download", mock.Anything, tiktokURL, mock.AnythingOfType("string")).Return(apperrors.ErrRateLimited)

	_, err := svc.GenerateClips(context.Background(), dto.GenerateClipsReq{VideoUrl: tiktokURL, VideoInfo: tiktokMeta()})
	assert.True(t, apperrors.Is(err, apperrors.CodeRateLimited))
	assert.Equal(t, 0, svc.Sessions.Len())
	deps.extractor.AssertNotCalled(t, "ProbeDuration", mock.Anything, mock.Anything)
}

func TestGenerateClipsTrendFailureWithoutFallback(t *testing.T) {
	svc, deps := newTestService(t)
	trends := new(mocks.MockTrendProvider)
	trends.On("FetchTrending", mock.Anything, types.ContentTypeTutorial).Return(nil, errors.New("503"))
	svc.Generator = clipgen.NewGenerator(trends)
	svc.Options.Clip.TrendFallback = false
	deps.download.On("Download", mock.Anything, tiktokURL, mock.AnythingOfType("string")).Return(nil).Maybe()
	deps.extractor.On("ProbeDuration", mock.Anything, mock.AnythingOfType("string")).Return(600.0, nil).Maybe()

	_, err := svc.GenerateClips(context.Background(), dto.GenerateClipsReq{VideoUrl: tiktokURL, VideoInfo: tiktokMeta()})
	assert.True(t, apperrors.Is(err, apperrors.CodeTrendUnavailable))
}

func TestRenderClip(t *testing.T) {
	svc, deps := newTestService(t)
	res := generateTiktok(t, svc, deps)
	expectExtract(t, deps, 0, 30)

	path, err := svc.RenderClip(context.Background(), res.Token, 1)
	require.NoError(t, err)
	assert.Equal(t, "clip_1.mp4", filepath.Base(path))
	assert.FileExists(t, path)

	again, err := svc.RenderClip(context.Background(), res.Token, 1)
	require.NoError(t, err)
	assert.Equal(t, path, again)
	deps.extractor.AssertNumberOfCalls(t, "ExtractClip", 1)

	run, err := storage.GetRun(res.Token)
	require.NoError(t, err)
	assert.Equal(t, path, run.Clips[0].FilePath)

	out, err := svc.GenerateClip(context.Background(), dto.GenerateClipReq{Token: res.Token, ClipId: 1})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "/api/file/clips/"+res.Token+"/clip_1.mp4", out.DownloadUrl)
}

func TestRenderClipErrors(t *testing.T) {
	svc, deps := newTestService(t)
	res := generateTiktok(t, svc, deps)

	_, err := svc.RenderClip(context.Background(), res.Token, 9)
	assert.True(t, apperrors.Is(err, apperrors.CodeClipNotFound))

	_, err = svc.RenderClip(context.Background(), "no-such-token", 1)
	assert.True(t, apperrors.Is(err, apperrors.CodeSessionNotFound))

	_, err = svc.RenderClip(context.Background(), "../escape", 1)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidParams))
}

func TestRenderClipDiscardsPartialOutput(t *testing.T) {
	svc, deps := newTestService(t)
	res := generateTiktok(t, svc, deps)
	deps.extractor.On("ExtractClip", mock.Anything, mock.AnythingOfType("string"), 0.0, 30.0, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			assert.NoError(t, writeVideo(args.String(4)))
		}).
		Return(errors.New("ffmpeg killed mid-write")).Once()
	expectExtract(t, deps, 0, 30)

	_, err := svc.RenderClip(context.Background(), res.Token, 1)
	require.Error(t, err)
	out, pathErr := resolveClipFilePath(res.Token, 1)
	require.NoError(t, pathErr)
	assert.NoFileExists(t, out)

	path, err := svc.RenderClip(context.Background(), res.Token, 1)
	require.NoError(t, err)
	assert.Equal(t, out, path)
	deps.extractor.AssertNumberOfCalls(t, "ExtractClip", 2)
}

func TestRenderClipConcurrentCallsShareExtraction(t *testing.T) {
	svc, deps := newTestService(t)
	res := generateTiktok(t, svc, deps)
	release := make(chan struct{})
	deps.extractor.On("ExtractClip", mock.Anything, mock.AnythingOfType("string"), 0.0, 30.0, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			<-release
			assert.NoError(t, writeVideo(args.String(4)))
		}).
		Return(nil).Once()

	const callers = 8
	paths := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path, err := svc.RenderClip(context.Background(), res.Token, 1)
			assert.NoError(t, err)
			paths[i] = path
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	deps.extractor.AssertNumberOfCalls(t, "ExtractClip", 1)
	for _, path := range paths {
		assert.Equal(t, paths[0], path)
	}
	assert.Equal(t, "clip_1.mp4", filepath.Base(paths[0]))
}

func TestRenderClipSurvivesCancelledCaller(t *testing.T) {
	svc, deps := newTestService(t)
	res := generateTiktok(t, svc, deps)
	started := make(chan struct{})
	release := make(chan struct{})
	deps.extractor.On("ExtractClip", mock.Anything, mock.AnythingOfType("string"), 0.0, 30.0, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
			assert.NoError(t, args.Get(0).(context.Context).Err())
			assert.NoError(t, writeVideo(args.String(4)))
		}).
		Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.RenderClip(ctx, res.Token, 1)
		firstErr <- err
	}()
	<-started

	second := make(chan string, 1)
	go func() {
		path, err := svc.RenderClip(context.Background(), res.Token, 1)
		assert.NoError(t, err)
		second <- path
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	close(release)

	path := <-second
	assert.FileExists(t, path)
	deps.extractor.AssertNumberOfCalls(t, "ExtractClip", 1)
}

func TestRenderClipReloadsPurgedSession(t *testing.T) {
	svc, deps := newTestService(t)
	res := generateTiktok(t, svc, deps)
	svc.Sessions.Delete(res.Token)
	expectExtract(t, deps, 200, 230)

	path, err := svc.RenderClip(context.Background(), res.Token, 2)
	require.NoError(t, err)
	assert.Equal(t, "clip_2.mp4", filepath.Base(path))

	session, ok := svc.Sessions.Get(res.Token)
	require.True(t, ok)
	assert.Equal(t, path, session.ClipFiles[2])
}

func TestPublishClip(t *testing.T) {
	svc, deps := newTestService(t)
	res := generateTiktok(t, svc, deps)
	expectExtract(t, deps, 0, 30)
	deps.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(req types.PublishRequest) bool {
		return req.Platform == types.PlatformTiktok && req.Caption == res.Clips[0].Caption && req.Title == res.Clips[0].Title
	})).Return(types.PublishResult{Success: true, Message: "Video uploaded to TikTok successfully"}, nil)

	msg, err := svc.PublishClip(context.Background(), res.Token, 1, "tiktok")
	require.NoError(t, err)
	assert.Equal(t, "Video uploaded to TikTok successfully", msg)

	_, err = svc.PublishClip(context.Background(), res.Token, 1, "twitter")
	assert.True(t, apperrors.Is(err, apperrors.CodeUnsupportedPlatform))
	deps.publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestUploadSocial(t *testing.T) {
	t.Run("queues publish job", func(t *testing.T) {
		svc, deps := newTestService(t)
		res := generateTiktok(t, svc, deps)
		_, err := svc.ConnectAccount("tiktok", []byte(tiktokCookies))
		require.NoError(t, err)
		deps.jobs.On("SubmitPublish", mock.MatchedBy(func(p appcore.PublishPayload) bool {
			return p.Token == res.Token && p.ClipID == 2 && p.Platform == "tiktok" && p.JobID != ""
		})).Return(nil).Once()

		out, err := svc.UploadSocial(dto.UploadSocialReq{Platform: "TikTok", Token: res.Token, ClipId: 2})
		require.NoError(t, err)
		assert.Equal(t, "queued", out.Status)

		job, err := svc.GetJob(out.JobId)
		require.NoError(t, err)
		assert.Equal(t, appcore.JobKindPublish, job.Kind)
		assert.Equal(t, "queued", job.StageName)
		deps.jobs.AssertExpectations(t)
	})

	t.Run("queue full marks job failed", func(t *testing.T) {
		svc, deps := newTestService(t)
		res := generateTiktok(t, svc, deps)
		_, err := svc.ConnectAccount("tiktok", []byte(tiktokCookies))
		require.NoError(t, err)
		deps.jobs.On("SubmitPublish", mock.Anything).Return(appcore.ErrQueueFull)

		_, err = svc.UploadSocial(dto.UploadSocialReq{Platform: "tiktok", Token: res.Token, ClipId: 1})
		assert.True(t, apperrors.Is(err, apperrors.CodeQueueFull))

		var jobs []types.Job
		require.NoError(t, storage.DB.Find(&jobs).Error)
		require.Len(t, jobs, 1)
		assert.Equal(t, appcore.JobStageFailed, jobs[0].Stage)
	})

	t.Run("rejects unsupported and unconnected platforms", func(t *testing.T) {
		svc, deps := newTestService(t)
		res := generateTiktok(t, svc, deps)

		_, err := svc.UploadSocial(dto.UploadSocialReq{Platform: "twitter", Token: res.Token, ClipId: 1})
		assert.True(t, apperrors.Is(err, apperrors.CodeUnsupportedPlatform))

		_, err = svc.UploadSocial(dto.UploadSocialReq{Platform: "instagram", Token: res.Token, ClipId: 1})
		assert.True(t, apperrors.Is(err, apperrors.CodeNotConnected))
		deps.jobs.AssertNotCalled(t, "SubmitPublish", mock.Anything)
	})

	t.Run("rejects unknown clip", func(t *testing.T) {
		svc, deps := newTestService(t)
		res := generateTiktok(t, svc, deps)
		_, err := svc.ConnectAccount("tiktok", []byte(tiktokCookies))
		require.NoError(t, err)

		_, err = svc.UploadSocial(dto.UploadSocialReq{Platform: "tiktok", Token: res.Token, ClipId: 7})
		assert.True(t, apperrors.Is(err, apperrors.CodeClipNotFound))
	})
}

func TestGenerateClipAsync(t *testing.T) {
	svc, deps := newTestService(t)
	res := generateTiktok(t, svc, deps)
	deps.jobs.On("SubmitRender", mock.MatchedBy(func(p appcore.RenderPayload) bool {
		return p.Token == res.Token && p.ClipID == 3
	})).Return(nil).Once()

	out, err := svc.GenerateClip(context.Background(), dto.GenerateClipReq{Token: res.Token, ClipId: 3, Async: true})
	require.NoError(t, err)
	assert.NotEmpty(t, out.JobId)

	job, err := svc.GetJob(out.JobId)
	require.NoError(t, err)
	assert.Equal(t, appcore.JobKindRender, job.Kind)
	deps.extractor.AssertNotCalled(t, "ExtractClip", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHistoryAndCleanup(t *testing.T) {
	svc, deps := newTestService(t)
	res := generateTiktok(t, svc, deps)
	session, _ := svc.Sessions.Get(res.Token)

	runs, err := svc.GetHistory(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.Token, runs[0].Token)

	_, err = svc.GetJob("missing")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	assert.Equal(t, 0, svc.PurgeExpiredSessions(time.Now()))
	assert.Equal(t, 1, svc.PurgeExpiredSessions(time.Now().Add(2*time.Hour)))
	assert.NoFileExists(t, session.VideoPath)

	deleted, err := svc.PurgeOldRuns(time.Now().Add(48 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = svc.GetRun(res.Token)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.NoDirExists(t, filepath.Dir(session.VideoPath))
}

func TestCookieStatus(t *testing.T) {
	svc, _ := newTestService(t)

	status, err := svc.CookieStatus("instagram")
	require.NoError(t, err)
	assert.False(t, status.Connected)

	_, err = svc.ConnectAccount("instagram", []byte(`[{"name":"sessionid","value":"v","domain":".instagram.com"}]`))
	require.NoError(t, err)
	status, err = svc.CookieStatus("instagram")
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.Count)

	require.NoError(t, svc.DisconnectAccount("instagram"))
	status, _ = svc.CookieStatus("instagram")
	assert.False(t, status.Connected)

	_, err = svc.CookieStatus("myspace")
	assert.True(t, apperrors.Is(err, apperrors.CodeUnsupportedPlatform))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"clipz-ai/internal/appcore"
	"clipz-ai/internal/clipgen"
	"clipz-ai/internal/dto"
	"clipz-ai/internal/storage"
	"clipz-ai/internal/types"
	"clipz-ai/log"
	apperrors "clipz-ai/pkg/errors"
	"clipz-ai/pkg/social"
)

const (
	// maxClipsLimit caps the per-request maxClips override.
	maxClipsLimit        = 20
	defaultRenderTimeout = 15 * time.Minute
)

func isHTTPURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

func invalidURL(raw string) error {
	return apperrors.WrapWithDetail(apperrors.CodeInvalidParams, apperrors.ErrInvalidParams.Message,
		fmt.Sprintf("url must start with http:// or https://, got %q", raw), nil)
}

// fallbackMetadata is served when info lookup fails and media.info_fallback is on.
func fallbackMetadata(url string) types.VideoMetadata {
	return types.VideoMetadata{
		Title:           "Amazing Tutorial: How to Build Viral Content",
		Channel:         "Tech Tutorials",
		DurationSeconds: 930,
		SourceUrl:       url,
		Thumbnail:       "https://via.placeholder.com/320x180/667eea/ffffff?text=Video+Thumbnail",
	}
}

func (s *Service) fetchMetadata(ctx context.Context, url string) (types.VideoMetadata, bool, error) {
	meta, err := s.InfoFetcher.FetchInfo(ctx, url)
	if err == nil {
		if meta.SourceUrl == "" {
			meta.SourceUrl = url
		}
		return meta, false, nil
	}
	if !s.Options.InfoFallback {
		return types.VideoMetadata{}, false, err
	}
	log.GetLogger().Warn("获取视频信息失败，使用兜底数据", zap.String("url", url), zap.Error(err))
	return fallbackMetadata(url), true, nil
}

// AnalyzeVideo looks up metadata for a video URL and classifies it.
func (s *Service) AnalyzeVideo(ctx context.Context, req dto.AnalyzeReq) (*dto.AnalyzeResData, error) {
	url := strings.TrimSpace(req.Url)
	if !isHTTPURL(url) {
		return nil, invalidURL(url)
	}
	log.GetLogger().Info("AnalyzeVideo", zap.String("url", url))

	meta, fallback, err := s.fetchMetadata(ctx, url)
	if err != nil {
		return nil, err
	}
	return &dto.AnalyzeResData{
		Title:           meta.Title,
		Duration:        clipgen.FormatClock(meta.DurationSeconds),
		DurationSeconds: meta.DurationSeconds,
		Channel:         meta.Channel,
		Thumbnail:       meta.Thumbnail,
		Url:             meta.SourceUrl,
		ContentType:     clipgen.ClassifyContentType(meta.Title),
		Platform:        clipgen.DetectPlatform(url),
		Fallback:        fallback,
	}, nil
}

func (s *Service) clipOptions(req dto.GenerateClipsReq) clipgen.Options {
	opts := s.Options.Clip
	if opts.ClipLengthSeconds <= 0 {
		opts.ClipLengthSeconds = clipgen.DefaultClipLengthSeconds
	}
	if opts.MaxClips <= 0 {
		opts.MaxClips = clipgen.DefaultMaxClips
	}
	if req.ClipLengthSeconds > 0 {
		opts.ClipLengthSeconds = req.ClipLengthSeconds
	}
	if req.MaxClips > 0 {
		opts.MaxClips = lo.Min([]int{req.MaxClips, maxClipsLimit})
	}
	return opts
}

// GenerateClips downloads the source video, measures it and plans clip
// candidates. The download and the trend lookup run concurrently.
func (s *Service) GenerateClips(ctx context.Context, req dto.GenerateClipsReq) (*dto.GenerateClipsResData, error) {
	url := strings.TrimSpace(req.VideoUrl)
	if !isHTTPURL(url) {
		return nil, invalidURL(url)
	}
	opts := s.clipOptions(req)

	var meta types.VideoMetadata
	if req.VideoInfo != nil {
		meta = *req.VideoInfo
		if meta.SourceUrl == "" {
			meta.SourceUrl = url
		}
	} else {
		var err error
		if meta, _, err = s.fetchMetadata(ctx, url); err != nil {
			return nil, err
		}
	}

	token := newSessionToken()
	videoPath, err := resolveSourceVideoPath(token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFileWriteError, "解析输出目录失败 Resolve output dir failed", err)
	}
	contentType := clipgen.ClassifyContentType(meta.Title)
	platform := clipgen.DetectPlatform(url)
	logger := log.GetLogger().With(zap.String("token", token), zap.String("url", url))
	logger.Info("GenerateClips", zap.String("contentType", string(contentType)), zap.String("platform", string(platform)))

	var (
		tags   types.PatternTagSet
		probed float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dctx := gctx
		if s.Options.DownloadTimeout > 0 {
			var cancel context.CancelFunc
			dctx, cancel = context.WithTimeout(gctx, s.Options.DownloadTimeout)
			defer cancel()
		}
		if err := s.Downloader.Download(dctx, url, videoPath); err != nil {
			return err
		}
		d, err := s.Extractor.ProbeDuration(dctx, videoPath)
		if err != nil {
			return err
		}
		probed = d
		return nil
	})
	g.Go(func() error {
		t, err := s.Generator.PatternTags(gctx, contentType, opts)
		if err != nil {
			return err
		}
		tags = t
		return nil
	})
	if err = g.Wait(); err != nil {
		logger.Error("GenerateClips failed", zap.Error(err))
		s.removeRunDir(token)
		return nil, err
	}

	if probed > 0 {
		meta.DurationSeconds = probed
	}
	candidates := s.Generator.Candidates(meta, tags, opts)
	session := &types.ClipSession{
		Token:       token,
		Metadata:    meta,
		ContentType: contentType,
		Platform:    platform,
		Tags:        tags,
		VideoPath:   videoPath,
		Candidates:  candidates,
		CreatedAt:   time.Now(),
	}
	s.Sessions.Put(session)
	s.persistRun(session)
	logger.Info("clip candidates ready", zap.Int("count", len(candidates)), zap.Float64("duration", meta.DurationSeconds))

	return &dto.GenerateClipsResData{
		Token:       token,
		Title:       meta.Title,
		ContentType: contentType,
		Platform:    platform,
		Patterns:    tags,
		NoClips:     len(candidates) == 0,
		Clips:       candidates,
	}, nil
}

func (s *Service) persistRun(session *types.ClipSession) {
	run := &types.ClipRun{
		Token:           session.Token,
		SourceUrl:       session.Metadata.SourceUrl,
		Title:           session.Metadata.Title,
		Channel:         session.Metadata.Channel,
		DurationSeconds: session.Metadata.DurationSeconds,
		ContentType:     string(session.ContentType),
		Platform:        string(session.Platform),
		VideoPath:       session.VideoPath,
		Clips: lo.Map(session.Candidates, func(c types.ClipCandidate, _ int) types.ClipRecord {
			return types.ClipRecord{
				ClipId:       c.Id,
				Title:        c.Title,
				Caption:      c.Caption,
				StartSeconds: c.StartSeconds,
				EndSeconds:   c.EndSeconds,
				ViralScore:   c.ViralScore,
				PatternTag:   c.Pattern.TagName,
				Category:     string(c.Pattern.Category),
				FilePath:     session.ClipFiles[c.Id],
			}
		}),
	}
	if err := storage.SaveRun(run); err != nil {
		log.GetLogger().Warn("保存切片记录失败", zap.String("token", session.Token), zap.Error(err))
	}
}

func sessionFromRun(run *types.ClipRun) *types.ClipSession {
	session := &types.ClipSession{
		Token: run.Token,
		Metadata: types.VideoMetadata{
			Title:           run.Title,
			Channel:         run.Channel,
			DurationSeconds: run.DurationSeconds,
			SourceUrl:       run.SourceUrl,
		},
		ContentType: types.ContentType(run.ContentType),
		Platform:    types.Platform(run.Platform),
		VideoPath:   run.VideoPath,
		ClipFiles:   make(map[int]string),
		CreatedAt:   time.Now(),
	}
	for _, rec := range run.Clips {
		session.Candidates = append(session.Candidates, types.ClipCandidate{
			Id:           rec.ClipId,
			Title:        rec.Title,
			Caption:      rec.Caption,
			StartTime:    clipgen.FormatClock(rec.StartSeconds),
			EndTime:      clipgen.FormatClock(rec.EndSeconds),
			StartSeconds: rec.StartSeconds,
			EndSeconds:   rec.EndSeconds,
			ViralScore:   rec.ViralScore,
			Pattern: types.SelectedPattern{
				TagName:  rec.PatternTag,
				Category: types.PatternCategory(rec.Category),
				Score:    rec.ViralScore,
			},
		})
		if rec.FilePath != "" {
			session.ClipFiles[rec.ClipId] = rec.FilePath
		}
	}
	return session
}

// loadSession returns the in-memory session, reloading it from the run
// history when it has been purged.
func (s *Service) loadSession(token string) (types.ClipSession, error) {
	if err := validateToken(token); err != nil {
		return types.ClipSession{}, apperrors.WrapWithDetail(apperrors.CodeInvalidParams, apperrors.ErrInvalidParams.Message, err.Error(), nil)
	}
	if session, ok := s.Sessions.Get(token); ok {
		return session, nil
	}
	run, err := storage.GetRun(token)
	if err != nil {
		return types.ClipSession{}, apperrors.Wrap(apperrors.CodeSessionNotFound, apperrors.ErrSessionNotFound.Message, err)
	}
	s.Sessions.Put(sessionFromRun(run))
	session, _ := s.Sessions.Get(token)
	return session, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

func (s *Service) renderTimeout() time.Duration {
	if s.Options.RenderTimeout > 0 {
		return s.Options.RenderTimeout
	}
	return defaultRenderTimeout
}

// RenderClip cuts one candidate into clip_<id>.mp4 in the run directory and
// returns its path. Rendered files are reused. Concurrent calls for the same
// clip share one ffmpeg run.
func (s *Service) RenderClip(ctx context.Context, token string, clipID int) (string, error) {
	session, err := s.loadSession(token)
	if err != nil {
		return "", err
	}
	candidate, ok := session.Candidate(clipID)
	if !ok {
		return "", apperrors.WrapWithDetail(apperrors.CodeClipNotFound, apperrors.ErrClipNotFound.Message, fmt.Sprintf("clip %d", clipID), nil)
	}
	if path, ok := session.ClipFiles[clipID]; ok && fileExists(path) {
		return path, nil
	}
	if !fileExists(session.VideoPath) {
		return "", apperrors.WrapWithDetail(apperrors.CodeSessionNotFound, apperrors.ErrSessionNotFound.Message, "source video has been removed", nil)
	}

	out, err := resolveClipFilePath(token, clipID)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeFileWriteError, "解析输出目录失败 Resolve output dir failed", err)
	}
	key := fmt.Sprintf("%s/%d", token, clipID)
	ch := s.renders.DoChan(key, func() (interface{}, error) {
		if fileExists(out) {
			return out, nil
		}
		// shared by every caller of this clip, not bound to the first request
		renderCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.renderTimeout())
		defer cancel()

		log.GetLogger().Info("rendering clip", zap.String("token", token), zap.Int("clipId", clipID),
			zap.Float64("start", candidate.StartSeconds), zap.Float64("end", candidate.EndSeconds))
		if err := s.Extractor.ExtractClip(renderCtx, session.VideoPath, candidate.StartSeconds, candidate.EndSeconds, out); err != nil {
			// a partial file would be served as finished on the next call
			if rmErr := os.Remove(out); rmErr != nil && !os.IsNotExist(rmErr) {
				log.GetLogger().Warn("删除残留切片失败", zap.String("path", out), zap.Error(rmErr))
			}
			return nil, err
		}
		return out, nil
	})

	select {
	case <-ctx.Done():
		return "", apperrors.Wrap(apperrors.CodeClipSplitFailed, "请求已取消 Request cancelled", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
	}

	s.Sessions.SetClipFile(token, clipID, out)
	if err = storage.UpdateClipFile(token, clipID, out); err != nil {
		log.GetLogger().Warn("更新切片文件路径失败", zap.String("token", token), zap.Int("clipId", clipID), zap.Error(err))
	}
	return out, nil
}

// GenerateClip renders a clip synchronously, or queues a render job when
// req.Async is set.
func (s *Service) GenerateClip(ctx context.Context, req dto.GenerateClipReq) (*dto.GenerateClipResData, error) {
	if req.Async {
		jobID, err := s.EnqueueRender(req.Token, req.ClipId)
		if err != nil {
			return nil, err
		}
		return &dto.GenerateClipResData{JobId: jobID}, nil
	}

	path, err := s.RenderClip(ctx, req.Token, req.ClipId)
	if err != nil {
		return nil, err
	}
	downloadPath, err := resolveClipDownloadPath(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFileNotFound, apperrors.ErrFileNotFound.Message, err)
	}
	return &dto.GenerateClipResData{
		Success:     true,
		ClipPath:    downloadPath,
		DownloadUrl: "/api/file/" + downloadPath,
	}, nil
}

// PublishClip renders the clip if needed and uploads it with its title and
// caption. It returns the publisher's message.
func (s *Service) PublishClip(ctx context.Context, token string, clipID int, platform string) (string, error) {
	target := types.ParsePlatform(platform)
	if !social.Supported(target) {
		return "", apperrors.WrapWithDetail(apperrors.CodeUnsupportedPlatform, apperrors.ErrUnsupportedPlatform.Message, platform, nil)
	}
	path, err := s.RenderClip(ctx, token, clipID)
	if err != nil {
		return "", err
	}
	session, err := s.loadSession(token)
	if err != nil {
		return "", err
	}
	candidate, _ := session.Candidate(clipID)

	result, err := s.Publisher.Publish(ctx, types.PublishRequest{
		Platform:  target,
		VideoPath: path,
		Title:     candidate.Title,
		Caption:   candidate.Caption,
	})
	if err != nil {
		return "", err
	}
	if !result.Success {
		return "", apperrors.WrapWithDetail(apperrors.CodePublishFailed, apperrors.ErrPublishFailed.Message, result.Message, nil)
	}
	return result.Message, nil
}

func (s *Service) checkClip(token string, clipID int) error {
	session, err := s.loadSession(token)
	if err != nil {
		return err
	}
	if _, ok := session.Candidate(clipID); !ok {
		return apperrors.WrapWithDetail(apperrors.CodeClipNotFound, apperrors.ErrClipNotFound.Message, fmt.Sprintf("clip %d", clipID), nil)
	}
	return nil
}

func (s *Service) submit(job *types.Job, submit func() error) (string, error) {
	if s.Jobs == nil {
		return "", apperrors.New(apperrors.CodeUnknown, "任务队列未启动 Job queue not started")
	}
	if err := storage.SaveJob(job); err != nil {
		return "", apperrors.Wrap(apperrors.CodeDBError, apperrors.ErrDBError.Message, err)
	}

	if err := submit(); err != nil {
		reason := err.Error()
		if updateErr := storage.UpdateJobStage(job.JobId, appcore.JobStageFailed, "提交失败 Submit failed", reason); updateErr != nil {
			log.GetLogger().Warn("更新任务状态失败", zap.String("jobId", job.JobId), zap.Error(updateErr))
		}
		if errors.Is(err, appcore.ErrQueueFull) {
			return "", apperrors.Wrap(apperrors.CodeQueueFull, apperrors.ErrQueueFull.Message, err)
		}
		return "", apperrors.Wrap(apperrors.CodeUnknown, "任务提交失败 Job submit failed", err)
	}
	log.GetLogger().Info("job queued", zap.String("jobId", job.JobId), zap.String("kind", string(job.Kind)),
		zap.String("token", job.Token), zap.Int("clipId", job.ClipId))
	return job.JobId, nil
}

// EnqueueRender queues a render job for one clip and returns the job id.
func (s *Service) EnqueueRender(token string, clipID int) (string, error) {
	if err := s.checkClip(token, clipID); err != nil {
		return "", err
	}
	job := &types.Job{
		JobId:   uuid.New().String(),
		Kind:    appcore.JobKindRender,
		Token:   token,
		ClipId:  clipID,
		Stage:   appcore.JobStageQueued,
		Message: "排队中 Queued",
	}
	return s.submit(job, func() error {
		return s.Jobs.SubmitRender(appcore.RenderPayload{JobID: job.JobId, Token: token, ClipID: clipID})
	})
}

// UploadSocial validates the target account and clip, then queues a
// publish job.
func (s *Service) UploadSocial(req dto.UploadSocialReq) (*dto.UploadSocialResData, error) {
	platform := types.ParsePlatform(strings.ToLower(strings.TrimSpace(req.Platform)))
	if !social.Supported(platform) {
		return nil, apperrors.WrapWithDetail(apperrors.CodeUnsupportedPlatform, apperrors.ErrUnsupportedPlatform.Message, req.Platform, nil)
	}
	if s.Cookies != nil && !s.Cookies.Status(platform).Connected {
		return nil, apperrors.WrapWithDetail(apperrors.CodeNotConnected, apperrors.ErrNotConnected.Message, string(platform), nil)
	}
	if err := s.checkClip(req.Token, req.ClipId); err != nil {
		return nil, err
	}

	job := &types.Job{
		JobId:    uuid.New().String(),
		Kind:     appcore.JobKindPublish,
		Token:    req.Token,
		ClipId:   req.ClipId,
		Platform: string(platform),
		Stage:    appcore.JobStageQueued,
		Message:  "排队中 Queued",
	}
	jobID, err := s.submit(job, func() error {
		return s.Jobs.SubmitPublish(appcore.PublishPayload{
			JobID:    job.JobId,
			Token:    req.Token,
			ClipID:   req.ClipId,
			Platform: string(platform),
		})
	})
	if err != nil {
		return nil, err
	}
	return &dto.UploadSocialResData{JobId: jobID, Status: appcore.JobStageQueued.String()}, nil
}

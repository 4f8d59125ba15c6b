package service

import (
	"errors"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"clipz-ai/internal/storage"
	"clipz-ai/internal/types"
	"clipz-ai/log"
	apperrors "clipz-ai/pkg/errors"
	"clipz-ai/pkg/social"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

func storageError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Wrap(apperrors.CodeNotFound, apperrors.ErrNotFound.Message, err)
	}
	return apperrors.Wrap(apperrors.CodeDBError, apperrors.ErrDBError.Message, err)
}

func (s *Service) GetJob(jobID string) (*types.Job, error) {
	job, err := storage.GetJob(jobID)
	if err != nil {
		return nil, storageError(err)
	}
	return job, nil
}

// GetHistory lists recent runs, newest first.
func (s *Service) GetHistory(limit int) ([]types.ClipRun, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	runs, err := storage.GetRunHistory(limit)
	if err != nil {
		return nil, storageError(err)
	}
	return runs, nil
}

func (s *Service) GetRun(token string) (*types.ClipRun, error) {
	if err := validateToken(token); err != nil {
		return nil, apperrors.WrapWithDetail(apperrors.CodeInvalidParams, apperrors.ErrInvalidParams.Message, err.Error(), nil)
	}
	run, err := storage.GetRun(token)
	if err != nil {
		return nil, storageError(err)
	}
	return run, nil
}

func (s *Service) removeRunDir(token string) {
	runDir, err := resolveRunDir(token)
	if err != nil {
		return
	}
	if err = os.RemoveAll(runDir); err != nil {
		log.GetLogger().Warn("删除切片目录失败", zap.String("dir", runDir), zap.Error(err))
	}
}

// DeleteRun drops a run's session, record and files.
func (s *Service) DeleteRun(token string) error {
	if err := validateToken(token); err != nil {
		return apperrors.WrapWithDetail(apperrors.CodeInvalidParams, apperrors.ErrInvalidParams.Message, err.Error(), nil)
	}
	s.Sessions.Delete(token)
	if err := storage.DeleteRun(token); err != nil {
		return storageError(err)
	}
	s.removeRunDir(token)
	log.GetLogger().Info("run deleted", zap.String("token", token))
	return nil
}

// PurgeExpiredSessions evicts sessions older than the session TTL and
// removes their source videos. Rendered clips stay on disk.
func (s *Service) PurgeExpiredSessions(now time.Time) int {
	if s.Options.SessionTTL <= 0 {
		return 0
	}
	purged := s.Sessions.PurgeExpired(now, s.Options.SessionTTL)
	for _, session := range purged {
		if session.VideoPath == "" {
			continue
		}
		if err := os.Remove(session.VideoPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.GetLogger().Warn("删除源视频失败", zap.String("path", session.VideoPath), zap.Error(err))
		}
	}
	return len(purged)
}

// PurgeOldRuns deletes runs created before now minus the retention window.
func (s *Service) PurgeOldRuns(now time.Time) (int, error) {
	if s.Options.RunRetention <= 0 {
		return 0, nil
	}
	tokens, err := storage.ListRunTokensBefore(now.Add(-s.Options.RunRetention).Unix())
	if err != nil {
		return 0, storageError(err)
	}
	deleted := 0
	for _, token := range tokens {
		if err = s.DeleteRun(token); err != nil {
			log.GetLogger().Warn("清理历史记录失败", zap.String("token", token), zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted, nil
}

func (s *Service) CookieStatus(platform string) (social.CookieStatus, error) {
	target := types.ParsePlatform(platform)
	if !social.Supported(target) {
		return social.CookieStatus{}, apperrors.WrapWithDetail(apperrors.CodeUnsupportedPlatform, apperrors.ErrUnsupportedPlatform.Message, platform, nil)
	}
	return s.Cookies.Status(target), nil
}

// ConnectAccount stores an uploaded cookie export for platform.
func (s *Service) ConnectAccount(platform string, data []byte) (social.CookieStatus, error) {
	status, err := s.Cookies.Save(types.ParsePlatform(platform), data)
	if err != nil {
		return social.CookieStatus{}, err
	}
	log.GetLogger().Info("social account connected", zap.String("platform", platform), zap.Int("cookies", status.Count))
	return status, nil
}

func (s *Service) DisconnectAccount(platform string) error {
	target := types.ParsePlatform(platform)
	if !social.Supported(target) {
		return apperrors.WrapWithDetail(apperrors.CodeUnsupportedPlatform, apperrors.ErrUnsupportedPlatform.Message, platform, nil)
	}
	return s.Cookies.Delete(target)
}

package service

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"clipz-ai/config"
	"clipz-ai/internal/appcore"
	"clipz-ai/internal/clipgen"
	"clipz-ai/internal/types"
	"clipz-ai/log"
	"clipz-ai/pkg/ffmpeg"
	"clipz-ai/pkg/social"
	"clipz-ai/pkg/trendclient"
	"clipz-ai/pkg/ytdlp"
)

type Options struct {
	Clip            clipgen.Options
	InfoFallback    bool
	DownloadTimeout time.Duration
	PublishTimeout  time.Duration
	// RenderTimeout bounds one shared ffmpeg run; zero means defaultRenderTimeout.
	RenderTimeout time.Duration
	SessionTTL      time.Duration
	// RunRetention 为 0 时不清理历史记录
	RunRetention time.Duration
}

type Service struct {
	InfoFetcher types.VideoInfoFetcher
	Downloader  types.VideoDownloader
	Extractor   types.ClipExtractor
	Publisher   types.Publisher
	Cookies     *social.CookieStore
	Generator   *clipgen.Generator
	Sessions    *SessionStore
	// Jobs is attached after the job backend is built, since the backend
	// executes through this service.
	Jobs    appcore.Submitter
	Options Options

	renders singleflight.Group
}

var _ appcore.Executor = (*Service)(nil)

func optionsFromConfig(conf config.Config) Options {
	return Options{
		Clip: clipgen.Options{
			ClipLengthSeconds: conf.Clipper.ClipLengthSeconds,
			MaxClips:          conf.Clipper.MaxClips,
			TrendFallback:     conf.Clipper.TrendFallback,
		},
		InfoFallback:    conf.Media.InfoFallback,
		DownloadTimeout: time.Duration(conf.Media.DownloadTimeoutSeconds) * time.Second,
		PublishTimeout:  time.Duration(conf.Publish.TimeoutSeconds) * time.Second,
		RenderTimeout:   defaultRenderTimeout,
		SessionTTL:      time.Duration(conf.Cache.SessionTtlMinutes) * time.Minute,
		RunRetention:    time.Duration(conf.Cache.RunRetentionDays) * 24 * time.Hour,
	}
}

func resolveCookiesDir(conf config.Config) string {
	if dir := strings.TrimSpace(conf.Publish.CookiesDir); dir != "" {
		return dir
	}
	dirs, err := appDirsResolver()
	if err != nil || strings.TrimSpace(dirs.CookiesDir) == "" {
		return "cookies"
	}
	return dirs.CookiesDir
}

func NewService() *Service {
	conf := config.Conf

	ytClient := ytdlp.New(ytdlp.Options{
		BinaryPath:  conf.Media.YtDlpPath,
		FfmpegPath:  conf.Media.FfmpegPath,
		Proxy:       conf.App.Proxy,
		CookiesPath: conf.Media.CookiesPath,
	})

	var trends types.TrendProvider = clipgen.StaticTrendProvider{}
	if base := strings.TrimSpace(conf.Clipper.TrendServiceUrl); base != "" {
		trends = trendclient.New(base, time.Duration(conf.Clipper.TrendTimeoutSeconds)*time.Second, conf.App.Proxy)
	}
	log.GetLogger().Info("当前趋势数据源", zap.Bool("live", conf.Clipper.TrendServiceUrl != ""),
		zap.String("url", conf.Clipper.TrendServiceUrl))

	cookies := social.NewCookieStore(resolveCookiesDir(conf))
	opts := optionsFromConfig(conf)

	return &Service{
		InfoFetcher: ytClient,
		Downloader:  ytClient,
		Extractor:   ffmpeg.New(conf.Media.FfmpegPath, conf.Media.FfprobePath, conf.Media.CopyCodec),
		Publisher: social.NewPublisher(cookies, social.Options{
			Headless:   conf.Publish.Headless,
			ChromePath: conf.Publish.ChromePath,
			Timeout:    opts.PublishTimeout,
		}),
		Cookies:   cookies,
		Generator: clipgen.NewGenerator(trends),
		Sessions:  NewSessionStore(),
		Options:   opts,
	}
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"clipz-ai/internal/appdirs"
	"clipz-ai/log"
)

// ConfigPathEnv overrides the resolved config file location.
const ConfigPathEnv = "CLIPZ_CONFIG"

type App struct {
	Proxy       string   `toml:"proxy"`
	ParsedProxy *url.URL `toml:"-"`
}

type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type Clipper struct {
	ClipLengthSeconds   float64 `toml:"clip_length_seconds"`
	MaxClips            int     `toml:"max_clips"`
	TrendFallback       bool    `toml:"trend_fallback"`
	TrendServiceUrl     string  `toml:"trend_service_url"`
	TrendTimeoutSeconds int     `toml:"trend_timeout_seconds"`
}

type Media struct {
	YtDlpPath              string `toml:"yt_dlp_path"`
	FfmpegPath             string `toml:"ffmpeg_path"`
	FfprobePath            string `toml:"ffprobe_path"`
	CookiesPath            string `toml:"cookies_path"`
	InfoFallback           bool   `toml:"info_fallback"`
	DownloadTimeoutSeconds int    `toml:"download_timeout_seconds"`
	CopyCodec              bool   `toml:"copy_codec"`
}

type Publish struct {
	Headless       bool   `toml:"headless"`
	ChromePath     string `toml:"chrome_path"`
	CookiesDir     string `toml:"cookies_dir"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type Queue struct {
	Backend     string `toml:"backend"`
	Concurrency int    `toml:"concurrency"`
	QueueSize   int    `toml:"queue_size"`
	Redis       Redis  `toml:"redis"`
}

type Cache struct {
	SessionTtlMinutes int    `toml:"session_ttl_minutes"`
	JanitorSchedule   string `toml:"janitor_schedule"`
	// RunRetentionDays 历史记录及切片文件保留天数，0 表示永久保留
	RunRetentionDays int `toml:"run_retention_days"`
}

type Config struct {
	App     App     `toml:"app"`
	Server  Server  `toml:"server"`
	Clipper Clipper `toml:"clipper"`
	Media   Media   `toml:"media"`
	Publish Publish `toml:"publish"`
	Queue   Queue   `toml:"queue"`
	Cache   Cache   `toml:"cache"`
}

const (
	QueueBackendMemory = "memory"
	QueueBackendRedis  = "redis"
)

var Conf = defaultConfig()

func defaultConfig() Config {
	return Config{
		Server: Server{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Clipper: Clipper{
			ClipLengthSeconds:   30,
			MaxClips:            3,
			TrendFallback:       true,
			TrendTimeoutSeconds: 10,
		},
		Media: Media{
			DownloadTimeoutSeconds: 600,
			CopyCodec:              true,
		},
		Publish: Publish{
			Headless:       true,
			TimeoutSeconds: 600,
		},
		Queue: Queue{
			Backend:     QueueBackendMemory,
			Concurrency: 2,
			QueueSize:   128,
			Redis: Redis{
				Addr: "127.0.0.1:6379",
			},
		},
		Cache: Cache{
			SessionTtlMinutes: 120,
			JanitorSchedule:   "@every 10m",
			RunRetentionDays:  7,
		},
	}
}

var resolveConfigPath = ResolveConfigPath

// ResolveConfigPath 配置文件路径，CLIPZ_CONFIG 优先
func ResolveConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnv)); p != "" {
		return p, nil
	}
	paths, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile, nil
}

// LoadOrCreateConfig loads the config file into Conf, writing the defaults
// first when it does not exist. created reports whether a file was written.
func LoadOrCreateConfig() (created bool, err error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, err
	}

	if _, statErr := os.Stat(configPath); errors.Is(statErr, os.ErrNotExist) {
		Conf = defaultConfig()
		if err = SaveConfig(); err != nil {
			return false, err
		}
		log.GetLogger().Info("未找到配置文件，已生成默认配置", zap.String("path", configPath))
		return true, nil
	} else if statErr != nil {
		return false, statErr
	}

	loaded := defaultConfig()
	if _, err = toml.DecodeFile(configPath, &loaded); err != nil {
		return false, fmt.Errorf("decode config %s: %w", configPath, err)
	}
	Conf = loaded
	log.GetLogger().Info("已加载配置文件", zap.String("path", configPath))
	return false, nil
}

// LoadConfig is the startup wrapper around LoadOrCreateConfig.
func LoadConfig() bool {
	if _, err := LoadOrCreateConfig(); err != nil {
		log.GetLogger().Error("加载配置失败", zap.Error(err))
		return false
	}
	return true
}

func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(Conf)
}

// CheckConfig validates Conf and fills derived fields.
func CheckConfig() error {
	Conf.App.ParsedProxy = nil
	if proxy := strings.TrimSpace(Conf.App.Proxy); proxy != "" {
		parsed, err := url.Parse(proxy)
		if err != nil {
			return fmt.Errorf("invalid app.proxy %q: %w", proxy, err)
		}
		Conf.App.ParsedProxy = parsed
	}

	if Conf.Server.Port <= 0 || Conf.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", Conf.Server.Port)
	}
	if Conf.Clipper.ClipLengthSeconds <= 0 {
		return fmt.Errorf("clipper.clip_length_seconds must be positive, got %v", Conf.Clipper.ClipLengthSeconds)
	}
	if Conf.Clipper.MaxClips <= 0 {
		return fmt.Errorf("clipper.max_clips must be positive, got %d", Conf.Clipper.MaxClips)
	}
	if base := strings.TrimSpace(Conf.Clipper.TrendServiceUrl); base != "" &&
		!strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return fmt.Errorf("clipper.trend_service_url must be http(s), got %q", base)
	}

	switch Conf.Queue.Backend {
	case "", QueueBackendMemory:
		Conf.Queue.Backend = QueueBackendMemory
	case QueueBackendRedis:
		if strings.TrimSpace(Conf.Queue.Redis.Addr) == "" {
			return errors.New("queue.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown queue.backend %q", Conf.Queue.Backend)
	}
	if Conf.Queue.Concurrency <= 0 {
		Conf.Queue.Concurrency = 1
	}
	if Conf.Queue.QueueSize <= 0 {
		Conf.Queue.QueueSize = 1
	}

	if Conf.Cache.SessionTtlMinutes <= 0 {
		return fmt.Errorf("cache.session_ttl_minutes must be positive, got %d", Conf.Cache.SessionTtlMinutes)
	}
	if Conf.Cache.RunRetentionDays < 0 {
		return fmt.Errorf("cache.run_retention_days must not be negative, got %d", Conf.Cache.RunRetentionDays)
	}
	return nil
}

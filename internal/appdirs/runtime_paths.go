package appdirs

import (
	"path/filepath"
	"strings"
)

const (
	ClipRootName   = "clips"
	SourceFileName = "source.mp4"
	dbFileName     = "clipz.db"
)

// ClipRootFor 所有切片会话的根目录
func ClipRootFor(paths Paths) string {
	return filepath.Join(normalizeOutputDir(paths.OutputDir), ClipRootName)
}

// RunDirFor 单次生成的工作目录，源视频和导出的切片都放在这里
func RunDirFor(paths Paths, token string) string {
	return filepath.Join(ClipRootFor(paths), token)
}

func SourceVideoFor(paths Paths, token string) string {
	return filepath.Join(RunDirFor(paths, token), SourceFileName)
}

func DBPathFor(paths Paths) string {
	return filepath.Join(normalizeCacheDir(paths.CacheDir), dbFileName)
}

func ResolveClipRoot() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return ClipRootFor(paths), nil
}

func ResolveDBPath() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return DBPathFor(paths), nil
}

func normalizeOutputDir(outputDir string) string {
	cleaned := strings.TrimSpace(outputDir)
	if cleaned == "" {
		return "."
	}
	return filepath.Clean(cleaned)
}

func normalizeCacheDir(cacheDir string) string {
	cleaned := strings.TrimSpace(cacheDir)
	if cleaned == "" {
		return "cache"
	}
	return filepath.Clean(cleaned)
}

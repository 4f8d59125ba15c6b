package log

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipz-ai/internal/appdirs"
)

func setAppDirsResolverForTest(t *testing.T, resolver func() (appdirs.Paths, error)) {
	t.Helper()

	originalResolver := appDirsResolver
	appDirsResolver = resolver
	t.Cleanup(func() {
		appDirsResolver = originalResolver
	})
}

func resetLoggerForTest(t *testing.T) {
	t.Helper()

	original := Logger
	Logger = nil
	t.Cleanup(func() {
		Logger = original
	})
}

func TestResolveLogDir(t *testing.T) {
	t.Run("uses resolved log dir", func(t *testing.T) {
		expectedDir := filepath.Join("tmp", "logs")
		setAppDirsResolverForTest(t, func() (appdirs.Paths, error) {
			return appdirs.Paths{LogDir: expectedDir}, nil
		})

		logDir, err := ResolveLogDir()
		if err != nil {
			t.Fatalf("ResolveLogDir() returned unexpected error: %v", err)
		}
		if logDir != expectedDir {
			t.Fatalf("ResolveLogDir() = %q, want %q", logDir, expectedDir)
		}
	})

	t.Run("falls back to current dir when empty", func(t *testing.T) {
		setAppDirsResolverForTest(t, func() (appdirs.Paths, error) {
			return appdirs.Paths{LogDir: " \t "}, nil
		})

		logDir, err := ResolveLogDir()
		if err != nil {
			t.Fatalf("ResolveLogDir() returned unexpected error: %v", err)
		}
		if logDir != "." {
			t.Fatalf("ResolveLogDir() = %q, want %q", logDir, ".")
		}
	})

	t.Run("returns resolver error", func(t *testing.T) {
		setAppDirsResolverForTest(t, func() (appdirs.Paths, error) {
			return appdirs.Paths{}, errors.New("resolve failed")
		})

		_, err := ResolveLogDir()
		if err == nil {
			t.Fatal("ResolveLogDir() returned nil error")
		}
		if !strings.Contains(err.Error(), "resolve failed") {
			t.Fatalf("ResolveLogDir() error = %q, want containing %q", err.Error(), "resolve failed")
		}
	})
}

func TestGetLoggerBeforeInitIsNop(t *testing.T) {
	resetLoggerForTest(t)

	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil before InitLogger()")
	}
	WithComponent("test").Info("dropped")
}

func TestInitLoggerCreatesLogFile(t *testing.T) {
	resetLoggerForTest(t)
	targetLogDir := filepath.Join(t.TempDir(), "data", "logs")
	setAppDirsResolverForTest(t, func() (appdirs.Paths, error) {
		return appdirs.Paths{LogDir: targetLogDir}, nil
	})

	InitLogger()
	WithComponent("clipgen").Info("logger test line")
	_ = GetLogger().Sync()

	logFilePath, err := ResolveLogFilePath()
	if err != nil {
		t.Fatalf("ResolveLogFilePath() returned unexpected error: %v", err)
	}
	if logFilePath != filepath.Join(targetLogDir, "clipz.log") {
		t.Fatalf("ResolveLogFilePath() = %q", logFilePath)
	}
	content, err := os.ReadFile(logFilePath)
	if err != nil {
		t.Fatalf("expected log file %q to exist: %v", logFilePath, err)
	}
	if !strings.Contains(string(content), `"component":"clipgen"`) {
		t.Fatalf("log file missing component field: %s", content)
	}
}

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clipz-ai/internal/appdirs"
	"clipz-ai/internal/types"
	"clipz-ai/log"
)

var DB *gorm.DB
var appDirsResolver = appdirs.Resolve

var ErrDBNotInitialized = errors.New("database not initialized")

// gormWriter routes gorm's log lines into the zap logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	log.WithComponent("gorm").Sugar().Warnf(format, args...)
}

func newGormLogger() logger.Interface {
	return logger.New(gormWriter{}, logger.Config{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      logger.Warn,
		// lookups by token or job id treat a miss as a normal answer
		IgnoreRecordNotFoundError: true,
	})
}

func InitDB() {
	dbPath, err := resolveDBPath()
	if err != nil {
		log.GetLogger().Fatal("failed to resolve database path", zap.Error(err))
	}

	DB, err = OpenDB(dbPath)
	if err != nil {
		log.GetLogger().Fatal("failed to open database", zap.String("path", dbPath), zap.Error(err))
	}

	log.GetLogger().Info("Database initialized successfully", zap.String("path", dbPath))
}

// OpenDB opens (creating if needed) the sqlite file at dbPath and migrates
// the schema.
func OpenDB(dbPath string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: newGormLogger(),
	})
	if err != nil {
		return nil, err
	}

	if err = db.AutoMigrate(&types.ClipRun{}, &types.ClipRecord{}, &types.Job{}); err != nil {
		return nil, err
	}
	return db, nil
}

func resolveDBPath() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return appdirs.DBPathFor(dirs), nil
}

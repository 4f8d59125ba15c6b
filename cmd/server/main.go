package main

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"clipz-ai/config"
	"clipz-ai/internal/deps"
	"clipz-ai/internal/server"
	"clipz-ai/internal/storage"
	"clipz-ai/log"
)

func main() {
	if handled, exitCode := handleCLIFlags(os.Args[1:]); handled {
		os.Exit(exitCode)
	}

	// .env is optional
	_ = godotenv.Load()

	log.InitLogger()
	defer log.GetLogger().Sync()

	var err error
	if !config.LoadConfig() {
		return
	}

	if err = config.CheckConfig(); err != nil {
		log.GetLogger().Error("加载配置失败", zap.Error(err))
		return
	}

	storage.InitDB()

	// Jobs left running by a previous process will never finish
	if count, err := storage.MarkStaleJobs(); err != nil {
		log.GetLogger().Warn("Failed to mark stale jobs", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("Marked stale jobs as failed", zap.Int64("count", count))
	}

	states := deps.ResolveDependencyInventory(config.Conf)
	if err = deps.CheckDependency(states); err != nil {
		log.GetLogger().Error("依赖环境准备失败", zap.Error(err))
		return
	}
	deps.ApplyResolvedPaths(states, &config.Conf)

	if err = server.StartBackend(); err != nil {
		log.GetLogger().Error("后端服务启动失败", zap.Error(err))
		os.Exit(1)
	}
}

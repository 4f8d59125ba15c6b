package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipz-ai/config"
	"clipz-ai/internal/appcore"
	"clipz-ai/internal/handler"
	"clipz-ai/internal/janitor"
	"clipz-ai/internal/queue"
	"clipz-ai/internal/router"
	"clipz-ai/internal/service"
	"clipz-ai/internal/storage"
	"clipz-ai/internal/taskrunner"
	"clipz-ai/log"
)

const shutdownTimeout = 10 * time.Second

// stageRecorder persists job stage transitions for both job backends.
var stageRecorder = appcore.StageRecorderFunc(storage.UpdateJobStage)

// startJobs builds the configured job backend with svc as executor.
// The returned stop func drains workers or closes the redis client.
func startJobs(svc *service.Service, conf config.Queue) (appcore.Submitter, func(), error) {
	switch conf.Backend {
	case "", config.QueueBackendMemory:
		runner := taskrunner.New(svc, stageRecorder, taskrunner.Config{
			QueueSize:   conf.QueueSize,
			Concurrency: conf.Concurrency,
		})
		return runner, runner.Close, nil
	case config.QueueBackendRedis:
		q := queue.NewQueue(queue.ConfigFromConf(conf))
		if err := q.Start(svc, stageRecorder); err != nil {
			_ = q.Close()
			return nil, nil, fmt.Errorf("start redis queue: %w", err)
		}
		return q, func() {
			if err := q.Close(); err != nil {
				log.GetLogger().Warn("close queue failed", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown queue backend %q", conf.Backend)
	}
}

func requestLogger() gin.HandlerFunc {
	logger := log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func newEngine(svc *service.Service) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	router.SetupRouter(engine, handler.NewHandler(svc))
	return engine
}

// StartBackend wires the service, job backend and janitor, then serves
// HTTP until SIGINT or SIGTERM.
func StartBackend() error {
	gin.SetMode(gin.ReleaseMode)

	svc := service.NewService()
	jobs, stopJobs, err := startJobs(svc, config.Conf.Queue)
	if err != nil {
		return err
	}
	defer stopJobs()
	svc.Jobs = jobs

	sweeper := janitor.New(svc, config.Conf.Cache.JanitorSchedule)
	if err = sweeper.Start(); err != nil {
		return fmt.Errorf("start janitor: %w", err)
	}
	defer sweeper.Stop()

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: newEngine(svc),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	log.GetLogger().Info("服务启动 Server started",
		zap.String("addr", addr),
		zap.String("queue_backend", config.Conf.Queue.Backend))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.GetLogger().Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.GetLogger().Error("HTTP shutdown error", zap.Error(err))
		return err
	}
	return nil
}

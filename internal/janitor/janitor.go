// Package janitor periodically evicts expired clip sessions and prunes old
// runs from history.
package janitor

import (
	"fmt"
	"strings"
	"time"

	cron "github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"clipz-ai/log"
)

// Cleaner is implemented by the service layer.
type Cleaner interface {
	PurgeExpiredSessions(now time.Time) int
	PurgeOldRuns(now time.Time) (int, error)
}

type Janitor struct {
	cron     *cron.Cron
	cleaner  Cleaner
	schedule string
	now      func() time.Time
	logger   *zap.Logger
}

func New(cleaner Cleaner, schedule string) *Janitor {
	return &Janitor{
		cron:     cron.New(cron.WithSeconds()),
		cleaner:  cleaner,
		schedule: normalizeSchedule(schedule),
		now:      time.Now,
		logger:   log.WithComponent("janitor"),
	}
}

// Start schedules the sweep and starts the cron loop.
func (j *Janitor) Start() error {
	id, err := j.cron.AddFunc(j.schedule, j.Sweep)
	if err != nil {
		return fmt.Errorf("failed to schedule janitor %q: %w", j.schedule, err)
	}
	j.cron.Start()
	j.logger.Info("janitor started", zap.Int("entry", int(id)), zap.String("schedule", j.schedule))
	return nil
}

// Stop stops the cron loop and waits for a running sweep.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("janitor stopped")
}

// Sweep runs one cleanup pass.
func (j *Janitor) Sweep() {
	now := j.now()
	sessions := j.cleaner.PurgeExpiredSessions(now)
	runs, err := j.cleaner.PurgeOldRuns(now)
	if err != nil {
		j.logger.Error("prune old runs failed", zap.Error(err))
	}
	if sessions > 0 || runs > 0 {
		j.logger.Info("janitor sweep", zap.Int("sessions", sessions), zap.Int("runs", runs))
	}
}

// normalizeSchedule prefixes a seconds field to five-field expressions so
// they parse with cron.WithSeconds. Descriptors like "@every 10m" pass through.
func normalizeSchedule(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "@every 10m"
	}
	if strings.HasPrefix(expr, "@") {
		return expr
	}
	if fields := strings.Fields(expr); len(fields) == 5 {
		return "0 " + expr
	}
	return expr
}

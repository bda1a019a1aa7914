package scheduler

import (
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Pruner drops idle per-client state and reports how much was removed.
type Pruner interface {
	Cleanup() int
}

// LimiterCleanupScheduler periodically prunes idle rate limiter entries.
type LimiterCleanupScheduler struct {
	cron   *cron.Cron
	spec   string
	pruner Pruner
}

func NewLimiterCleanupScheduler(spec string, pruner Pruner) *LimiterCleanupScheduler {
	return &LimiterCleanupScheduler{
		cron:   cron.New(),
		spec:   spec,
		pruner: pruner,
	}
}

func (s *LimiterCleanupScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.run)
	if err != nil {
		logger.Error("Failed to add cron job for limiter cleanup", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Limiter cleanup scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

func (s *LimiterCleanupScheduler) run() {
	removed := s.pruner.Cleanup()
	if removed > 0 {
		logger.Debug("Pruned idle rate limiters", map[string]interface{}{
			"removed": removed,
		})
	}
}

// Stop waits for a running cleanup to finish.
func (s *LimiterCleanupScheduler) Stop() {
	logger.Info("Stopping limiter cleanup scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Limiter cleanup scheduler stopped")
}

package scheduler

import (
	"fmt"
	"time"

	"github.com/devoriginal/account-backend/internal/storage"
	"github.com/devoriginal/account-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// UploadCleanupScheduler purges temp uploads that never reached photo storage,
// e.g. when a request died between saving the file and handing it to the service.
type UploadCleanupScheduler struct {
	cron     *cron.Cron
	schedule string
	dir      string
	maxAge   time.Duration
	now      func() time.Time
}

func NewUploadCleanupScheduler(schedule, dir string, maxAge time.Duration) *UploadCleanupScheduler {
	return &UploadCleanupScheduler{
		cron:     cron.New(),
		schedule: schedule,
		dir:      dir,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Start registers the cleanup job and starts the cron loop
func (s *UploadCleanupScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce() }); err != nil {
		logger.Error("Failed to add cron job for upload cleanup", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return fmt.Errorf("invalid cleanup schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	logger.Info("Upload cleanup scheduler started", map[string]interface{}{
		"schedule": s.schedule,
		"dir":      s.dir,
		"max_age":  s.maxAge.String(),
	})
	return nil
}

// RunOnce purges stale uploads immediately and returns how many were removed
func (s *UploadCleanupScheduler) RunOnce() int {
	removed, err := storage.PurgeStaleUploads(s.dir, s.maxAge, s.now())
	if err != nil {
		logger.Error("Upload cleanup failed", err, map[string]interface{}{
			"dir": s.dir,
		})
		return removed
	}
	if removed > 0 {
		logger.Info("Stale uploads removed", map[string]interface{}{
			"count": removed,
		})
	}
	return removed
}

// Stop waits for a running job to finish
func (s *UploadCleanupScheduler) Stop() {
	logger.Info("Stopping upload cleanup scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Upload cleanup scheduler stopped", nil)
}

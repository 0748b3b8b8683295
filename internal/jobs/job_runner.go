package jobs

import (
	"wheelshare-backend/internal/config"
	"wheelshare-backend/internal/logger"
	"wheelshare-backend/internal/repository"
	"wheelshare-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	resRepo  repository.ReservationRepository
	notifier service.Notifier
	config   *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(resRepo repository.ReservationRepository, notifier service.Notifier, cfg *config.Config) *JobRunner {
	return &JobRunner{
		resRepo:  resRepo,
		notifier: notifier,
		config:   cfg,
	}
}

// Config exposes the configuration for scheduler wiring
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAll runs every job once (for manual execution and process startup)
func (jr *JobRunner) RunAll() {
	jr.ExpireLapsedPayments()
	jr.CompleteElapsedReservations()
}

package main

import (
	"context"

	"github.com/orbitlearn/backend/internal/tasks"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Cron expressions for the maintenance jobs
const (
	tokenCleanupSpec     = "0 3 * * *"  // daily at 03:00
	webhookRetentionSpec = "30 3 * * 0" // weekly, Sunday at 03:30
	checkoutCleanupSpec  = "0 4 * * *"  // daily at 04:00
)

// Scheduler enqueues recurring maintenance tasks on cron schedules
type Scheduler struct {
	cron     *cron.Cron
	enqueuer *tasks.Enqueuer
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance
func NewScheduler(enqueuer *tasks.Enqueuer, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		enqueuer: enqueuer,
		logger:   logger,
	}
}

// Start registers the maintenance jobs and starts the cron loop
func (s *Scheduler) Start() error {
	jobs := []struct {
		spec     string
		taskType string
	}{
		{tokenCleanupSpec, tasks.TypeTokenCleanup},
		{webhookRetentionSpec, tasks.TypeWebhookRetention},
		{checkoutCleanupSpec, tasks.TypeCheckoutCleanup},
	}

	for _, job := range jobs {
		taskType := job.taskType
		if _, err := s.cron.AddFunc(job.spec, func() {
			s.enqueue(taskType)
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// enqueue submits a single maintenance task
func (s *Scheduler) enqueue(taskType string) {
	if err := s.enqueuer.EnqueueMaintenance(context.Background(), taskType); err != nil {
		s.logger.Error("Failed to enqueue maintenance task", zap.String("type", taskType), zap.Error(err))
		return
	}

	s.logger.Info("Enqueued maintenance task", zap.String("type", taskType))
}

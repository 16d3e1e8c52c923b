package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"pos-backend/internal/config"
	"pos-backend/internal/shared"
	"pos-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	cfg       config.ImportConfig
}

func NewScheduler(redisOpt asynq.RedisClientOpt, cfg config.ImportConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		cfg:       cfg,
	}
}

// RegisterMaintenanceJobs wires all periodic tasks.
func (s *Scheduler) RegisterMaintenanceJobs() error {
	return s.registerReapStuckImportsJob()
}

// ================================================
// JOB 1: Reap Stuck Imports (Every 5 Minutes)
// ================================================
// A worker crash leaves its job in processing forever; this task fails
// jobs whose heartbeat went stale so clients stop seeing a live run.
func (s *Scheduler) registerReapStuckImportsJob() error {
	task := asynq.NewTask(shared.TypeReapStuckImports, nil)

	_, err := s.scheduler.Register(
		"*/5 * * * *",
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register ReapStuckImports job", err)
		return err
	}

	logger.Info("Registered ReapStuckImports job", map[string]interface{}{
		"schedule":    "*/5 * * * *",
		"stuck_after": s.cfg.StuckAfter.String(),
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"anoa.com/bloodlink/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 5 * time.Minute

type Scheduler struct {
	cron *cron.Cron
	jobs []Job
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		jobs: make([]Job, 0),
	}
}

// RegisterJob adds job and schedules it when it has a cron spec.
func (s *Scheduler) RegisterJob(job Job) error {
	schedule := job.GetSchedule()
	if schedule != "" {
		if _, err := s.cron.AddFunc(schedule, func() { s.run(job) }); err != nil {
			return fmt.Errorf("failed to schedule job %s: %w", job.GetName(), err)
		}
		logger.Info("job scheduled", zap.String("job", job.GetName()), zap.String("schedule", schedule))
	} else {
		logger.Info("job registered for on-demand runs", zap.String("job", job.GetName()))
	}

	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := job.Execute(ctx); err != nil {
		logger.Error("job failed", zap.String("job", job.GetName()), zap.Error(err))
		return
	}
	logger.Debug("job completed", zap.String("job", job.GetName()), zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("scheduler stopped")
}

func (s *Scheduler) RunJobByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.GetName() == name {
			return job.Execute(ctx)
		}
	}
	return fmt.Errorf("job %q not registered", name)
}

func (s *Scheduler) GetRegisteredJobs() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.GetName()
	}
	return names
}

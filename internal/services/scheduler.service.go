package services

import (
	"context"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"

	"github.com/go-co-op/gocron"
)

// Job is a unit of scheduled work. Schedule returns a cron expression
// evaluated in UTC.
type Job interface {
	Name() string
	Schedule() string
	Execute(ctx context.Context) error
}

// SchedulerService runs registered jobs on their cron schedules.
type SchedulerService struct {
	scheduler *gocron.Scheduler
	log       logger.Logger
}

func NewSchedulerService() *SchedulerService {
	return &SchedulerService{
		scheduler: gocron.NewScheduler(time.UTC),
		log:       logger.New("schedulerService"),
	}
}

func (s *SchedulerService) Register(job Job) error {
	log := s.log.Function("Register")

	_, err := s.scheduler.Cron(job.Schedule()).Do(func() {
		jobLog := s.log.With("job", job.Name())
		done := jobLog.Timer("job run")
		defer done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if err := job.Execute(ctx); err != nil {
			jobLog.Er("job failed", err)
		}
	})
	if err != nil {
		return log.Err("failed to register job", err, "job", job.Name())
	}

	log.Info("Registered job", "job", job.Name(), "schedule", job.Schedule())
	return nil
}

func (s *SchedulerService) Start() {
	s.scheduler.StartAsync()
	s.log.Info("Scheduler started", "jobs", len(s.scheduler.Jobs()))
}

func (s *SchedulerService) Stop() {
	s.scheduler.Stop()
	s.log.Info("Scheduler stopped")
}

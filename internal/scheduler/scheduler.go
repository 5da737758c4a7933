package scheduler

import (
	"os"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a unit of periodic work
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages periodic maintenance jobs
type Scheduler struct {
	cron     *cron.Cron
	logger   *logrus.Logger
	jobMutex sync.Mutex // Ensures sequential job execution
}

// NewScheduler creates a new scheduler
func NewScheduler(logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
	}
}

// AddJob registers job on a cron schedule such as "@daily" or "0 3 * * *"
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.RunNow(job); err != nil {
			s.logger.WithError(err).WithField("job_type", job.Name()).Error("Scheduled job failed")
		}
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"schedule": schedule,
		"job_type": job.Name(),
	}).Info("Scheduled job registered")
	return nil
}

// RunNow executes a job immediately, waiting for any running job to finish
func (s *Scheduler) RunNow(job Job) error {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	s.logger.WithField("job_type", job.Name()).Debug("Running job")
	return job.Run()
}

// Start begins the scheduled tasks
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

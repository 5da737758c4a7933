package scheduler

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Pruner deletes stored analyses older than a cutoff
type Pruner interface {
	DeleteAnalysesBefore(cutoff time.Time) (int64, error)
}

// RetentionJob removes analyses older than MaxAge
type RetentionJob struct {
	store  Pruner
	maxAge time.Duration
	logger *logrus.Logger
	now    func() time.Time
}

func NewRetentionJob(store Pruner, maxAgeDays int, logger *logrus.Logger) *RetentionJob {
	if logger == nil {
		logger = logrus.New()
	}
	return &RetentionJob{
		store:  store,
		maxAge: time.Duration(maxAgeDays) * 24 * time.Hour,
		logger: logger,
		now:    time.Now,
	}
}

func (j *RetentionJob) Name() string {
	return "retention"
}

func (j *RetentionJob) Run() error {
	if j.maxAge <= 0 {
		return nil
	}

	cutoff := j.now().Add(-j.maxAge)
	deleted, err := j.store.DeleteAnalysesBefore(cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune analyses: %w", err)
	}

	j.logger.WithFields(logrus.Fields{
		"job_type": j.Name(),
		"cutoff":   cutoff.Format(time.RFC3339),
		"deleted":  deleted,
	}).Info("Pruned old analyses")
	return nil
}

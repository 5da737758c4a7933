package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"estatewise/server/config"
	"estatewise/server/internal/models"
	"estatewise/server/internal/queue"
)

// Analyzer analyses one raw address. Implementations report failures on the
// outcome instead of returning an error.
type Analyzer interface {
	Analyze(ctx context.Context, rawAddress string) models.AnalysisOutcome
}

// ResultStore persists batch jobs and their results
type ResultStore interface {
	CreateBatchJob(job *models.BatchJob) error
	UpdateBatchJob(job *models.BatchJob) error
	SaveBatchResults(jobID string, outcomes []models.AnalysisOutcome) error
}

// Notifier is told about every finished batch job
type Notifier interface {
	NotifyBatchCompleted(ctx context.Context, job *models.BatchJob, outcomes []models.AnalysisOutcome) error
}

// BatchProcessor analyses lists of addresses on a bounded worker pool
type BatchProcessor struct {
	analyzer Analyzer
	store    ResultStore
	notifier Notifier
	logger   *logrus.Logger
	config   *config.Config
	queue    *queue.AnalysisQueue
	now      func() time.Time
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(analyzer Analyzer, store ResultStore, queue *queue.AnalysisQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		analyzer: analyzer,
		store:    store,
		queue:    queue,
		config:   config,
		logger:   logger,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetNotifier registers n to hear about finished jobs. Call before Start.
func (p *BatchProcessor) SetNotifier(n Notifier) {
	p.notifier = n
}

// Start subscribes to the queue and begins running submitted jobs
func (p *BatchProcessor) Start() {
	p.once.Do(func() {
		p.queue.Subscribe(p.runJob)
		p.queue.Start()
	})
}

// Stop cancels running analyses and shuts the queue down
func (p *BatchProcessor) Stop() {
	p.cancel()
	if err := p.queue.Close(); err != nil {
		p.logger.WithError(err).Warn("Failed to close analysis queue")
	}
}

// ProcessAddresses analyses every address and returns outcomes in input order.
// A failure or panic on one address never affects the others.
func (p *BatchProcessor) ProcessAddresses(ctx context.Context, addresses []string) []models.AnalysisOutcome {
	outcomes := make([]models.AnalysisOutcome, len(addresses))
	if len(addresses) == 0 {
		return outcomes
	}

	workers := p.config.BatchProcessing.ProcessorCount
	if workers < 1 {
		workers = 1
	}
	if workers > len(addresses) {
		workers = len(addresses)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = p.analyzeOne(ctx, i, addresses[i])
			}
		}()
	}

	for i := range addresses {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return outcomes
}

func (p *BatchProcessor) analyzeOne(ctx context.Context, index int, address string) (outcome models.AnalysisOutcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithFields(logrus.Fields{
				"address": address,
				"panic":   r,
			}).Error("Recovered from panic during batch analysis")
			outcome = models.AnalysisOutcome{
				Address: address,
				Error: &models.ErrorInfo{
					Kind:    models.KindInternal,
					Message: fmt.Sprintf("analysis failed unexpectedly: %v", r),
				},
			}
		}
		outcome.Index = index
	}()

	if err := ctx.Err(); err != nil {
		return models.AnalysisOutcome{
			Address: address,
			Error:   models.NewErrorInfo(fmt.Errorf("batch cancelled: %w", err)),
		}
	}
	return p.analyzer.Analyze(ctx, address)
}

// ValidateBatch rejects empty batches and batches over the configured size.
func (p *BatchProcessor) ValidateBatch(addresses []string) error {
	if len(addresses) == 0 {
		return models.ValidationError("batch contains no addresses")
	}
	if limit := p.config.BatchProcessing.MaxBatchSize; limit > 0 && len(addresses) > limit {
		return models.ValidationError("batch of %d addresses exceeds the limit of %d", len(addresses), limit)
	}
	return nil
}

// Submit records a new batch job and queues it for background processing
func (p *BatchProcessor) Submit(addresses []string) (*models.BatchJob, error) {
	if err := p.ValidateBatch(addresses); err != nil {
		return nil, err
	}

	job := &models.BatchJob{
		ID:        uuid.NewString(),
		Addresses: append([]string(nil), addresses...),
		Status:    models.BatchPending,
		Total:     len(addresses),
		CreatedAt: p.now(),
	}
	if err := p.store.CreateBatchJob(job); err != nil {
		return nil, fmt.Errorf("failed to create batch job: %w", err)
	}

	// the worker owns the queued copy; the caller keeps job
	queued := *job
	if err := p.queue.Push(&queued); err != nil {
		job.Status = models.BatchFailed
		job.Error = err.Error()
		p.finish(job)
		return nil, fmt.Errorf("failed to queue batch job: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"batch_id":   job.ID,
		"batch_size": job.Total,
	}).Info("Batch job submitted")
	return job, nil
}

// runJob is the queue handler for submitted jobs
func (p *BatchProcessor) runJob(job *models.BatchJob) error {
	log := p.logger.WithField("batch_id", job.ID)

	job.Status = models.BatchRunning
	if err := p.store.UpdateBatchJob(job); err != nil {
		log.WithError(err).Warn("Failed to mark batch job running")
	}

	outcomes := p.ProcessAddresses(p.ctx, job.Addresses)
	job.Succeeded, job.Failed = 0, 0
	for _, o := range outcomes {
		if o.Success {
			job.Succeeded++
		} else {
			job.Failed++
		}
	}

	err := p.saveResults(job, outcomes)
	if err != nil {
		job.Status = models.BatchFailed
		job.Error = err.Error()
	} else {
		job.Status = models.BatchCompleted
	}
	p.finish(job)

	if p.notifier != nil {
		if nerr := p.notifier.NotifyBatchCompleted(p.ctx, job, outcomes); nerr != nil {
			log.WithError(nerr).Warn("Failed to send batch notification")
		}
	}

	log.WithFields(logrus.Fields{
		"succeeded": job.Succeeded,
		"failed":    job.Failed,
		"status":    job.Status,
	}).Info("Batch job finished")
	return err
}

func (p *BatchProcessor) finish(job *models.BatchJob) {
	completed := p.now()
	job.CompletedAt = &completed
	if err := p.store.UpdateBatchJob(job); err != nil {
		p.logger.WithError(err).WithField("batch_id", job.ID).Error("Failed to update batch job")
	}
}

// saveResults writes all outcomes of a job in one transaction, retrying on failure
func (p *BatchProcessor) saveResults(job *models.BatchJob, outcomes []models.AnalysisOutcome) error {
	maxRetries := p.config.BatchProcessing.MaxRetries
	delay := time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch result persistence, attempt %d of %d", attempt, maxRetries)
			select {
			case <-p.ctx.Done():
				return fmt.Errorf("failed to save batch results: %w", p.ctx.Err())
			case <-time.After(delay):
			}
		}

		err = p.store.SaveBatchResults(job.ID, outcomes)
		if err == nil {
			p.logger.Infof("Successfully saved %d batch results", len(outcomes))
			return nil
		}

		p.logger.Errorf("Saving batch results failed: %v", err)
	}

	return fmt.Errorf("failed to save batch results after %d attempts: %w", maxRetries+1, err)
}

package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"estatewise/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// AnalysisQueue is an in-memory queue of batch analysis jobs
type AnalysisQueue struct {
	items    chan *models.BatchJob
	done     chan struct{}
	stopped  sync.WaitGroup
	closed   bool
	started  bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func(*models.BatchJob) error
}

// NewAnalysisQueue creates a new queue holding at most bufferSize pending jobs
func NewAnalysisQueue(bufferSize int, logger *logrus.Logger) *AnalysisQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &AnalysisQueue{
		items:    make(chan *models.BatchJob, bufferSize),
		done:     make(chan struct{}),
		logger:   logger,
		handlers: make([]func(*models.BatchJob) error, 0),
	}
}

// Push adds a job to the queue without blocking
func (q *AnalysisQueue) Push(job *models.BatchJob) error {
	// held for the send so Close cannot close items underneath it
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- job:
		q.logger.WithFields(logrus.Fields{
			"batch_id":   job.ID,
			"batch_size": job.Total,
		}).Debug("Pushed batch job to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler that is called for each job
func (q *AnalysisQueue) Subscribe(handler func(*models.BatchJob) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing jobs. Calling it more than once has no effect.
func (q *AnalysisQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	q.stopped.Add(1)
	go q.process()
}

func (q *AnalysisQueue) process() {
	defer q.stopped.Done()
	for {
		select {
		case <-q.done:
			return
		case job, ok := <-q.items:
			if !ok {
				return
			}
			q.dispatch(job)
		}
	}
}

// dispatch hands the job to every subscribed handler
func (q *AnalysisQueue) dispatch(job *models.BatchJob) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(job); err != nil {
			q.logger.WithError(err).WithField("batch_id", job.ID).Error("Handler failed to process batch job")
		}
	}
}

// Close stops the queue, waits for the job in flight and rejects new pushes.
// Jobs still buffered are dropped.
func (q *AnalysisQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.done)
	close(q.items)
	q.mu.Unlock()

	q.stopped.Wait()
	return nil
}

// Len returns the number of jobs waiting in the queue
func (q *AnalysisQueue) Len() int {
	return len(q.items)
}

func (q *AnalysisQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

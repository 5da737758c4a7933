package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatewise/server/internal/models"
)

func job(id string, addresses ...string) *models.BatchJob {
	return &models.BatchJob{ID: id, Addresses: addresses, Total: len(addresses), Status: models.BatchPending}
}

func TestNewAnalysisQueue(t *testing.T) {
	q := NewAnalysisQueue(10, logrus.New())
	assert.NotNil(t, q)
	assert.Equal(t, 10, cap(q.items))
	assert.False(t, q.IsClosed())

	// nil logger falls back to a default one
	assert.NotNil(t, NewAnalysisQueue(1, nil).logger)
}

func TestAnalysisQueue_Push(t *testing.T) {
	q := NewAnalysisQueue(2, logrus.New())

	err := q.Push(job("a", "1 Main St, Denver, CO 80202"))
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	assert.NoError(t, q.Push(job("b")))
	assert.ErrorIs(t, q.Push(job("c")), ErrQueueFull)

	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Push(job("d")), ErrQueueClosed)
}

func TestAnalysisQueue_Subscribe(t *testing.T) {
	q := NewAnalysisQueue(10, logrus.New())
	defer q.Close()

	var mu sync.Mutex
	var processed []string
	done := make(chan struct{}, 2)

	q.Subscribe(func(j *models.BatchJob) error {
		mu.Lock()
		processed = append(processed, j.ID)
		mu.Unlock()
		done <- struct{}{}
		return nil
	})
	q.Start()

	require.NoError(t, q.Push(job("first")))
	require.NoError(t, q.Push(job("second")))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "second"}, processed)
}

func TestAnalysisQueue_AllHandlersReceiveJob(t *testing.T) {
	q := NewAnalysisQueue(10, logrus.New())
	defer q.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	calls := 0

	for i := 0; i < 3; i++ {
		wg.Add(1)
		q.Subscribe(func(*models.BatchJob) error {
			mu.Lock()
			calls++
			mu.Unlock()
			wg.Done()
			return nil
		})
	}
	q.Start()
	q.Start()

	require.NoError(t, q.Push(job("fanout")))
	wg.Wait()

	mu.Lock()
	assert.Equal(t, 3, calls)
	mu.Unlock()
}

func TestAnalysisQueue_Close(t *testing.T) {
	q := NewAnalysisQueue(10, logrus.New())
	q.Start()

	assert.NoError(t, q.Close())
	assert.True(t, q.IsClosed())

	// second close is a no-op
	assert.NoError(t, q.Close())
}

func TestAnalysisQueue_CloseWaitsForRunningHandler(t *testing.T) {
	q := NewAnalysisQueue(1, logrus.New())

	started := make(chan struct{})
	release := make(chan struct{})
	var finished bool
	var mu sync.Mutex

	q.Subscribe(func(*models.BatchJob) error {
		close(started)
		<-release
		mu.Lock()
		finished = true
		mu.Unlock()
		return nil
	})
	q.Start()
	require.NoError(t, q.Push(job("slow")))
	<-started

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	require.NoError(t, q.Close())

	mu.Lock()
	assert.True(t, finished)
	mu.Unlock()
}

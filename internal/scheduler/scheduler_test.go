package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPruner struct {
	mock.Mock
}

func (m *MockPruner) DeleteAnalysesBefore(cutoff time.Time) (int64, error) {
	args := m.Called(cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type countingJob struct {
	runs atomic.Int32
}

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return nil
}

func (j *countingJob) Name() string { return "counting" }

func TestRetentionJob_Run(t *testing.T) {
	now := time.Date(2024, time.July, 1, 3, 0, 0, 0, time.UTC)
	pruner := &MockPruner{}
	pruner.On("DeleteAnalysesBefore", now.AddDate(0, 0, -30)).Return(int64(4), nil).Once()

	job := NewRetentionJob(pruner, 30, logrus.New())
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run())
	pruner.AssertExpectations(t)
}

func TestRetentionJob_Errors(t *testing.T) {
	pruner := &MockPruner{}
	pruner.On("DeleteAnalysesBefore", mock.Anything).Return(int64(0), errors.New("database is locked"))

	err := NewRetentionJob(pruner, 30, nil).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to prune analyses")
}

func TestRetentionJob_DisabledWithoutMaxAge(t *testing.T) {
	pruner := &MockPruner{}
	require.NoError(t, NewRetentionJob(pruner, 0, nil).Run())
	pruner.AssertNotCalled(t, "DeleteAnalysesBefore", mock.Anything)
}

func TestScheduler_AddJob(t *testing.T) {
	s := NewScheduler(nil)
	job := &countingJob{}

	assert.Error(t, s.AddJob("not a schedule", job))

	require.NoError(t, s.AddJob("@every 10ms", job))
	s.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 10*time.Millisecond)
	s.Stop()
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewScheduler(nil)
	job := &countingJob{}

	require.NoError(t, s.RunNow(job))
	assert.Equal(t, int32(1), job.runs.Load())
}

package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatewise/server/internal/models"
)

func setupTestDB(t *testing.T) *Database {
	db, err := NewDatabase(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })
	return db
}

func successOutcome(address string, value float64) models.AnalysisOutcome {
	top := models.NegotiationStrategy{Name: "Below-Market Offer"}
	return models.AnalysisOutcome{
		Address: address,
		Success: true,
		Result: &models.AnalysisResult{
			Address: address,
			Valuation: models.AggregatedValuation{
				FinalValue:      value,
				ValuationStatus: models.StatusOverpriced,
			},
			Negotiation: models.NegotiationPackage{
				Strategies:          []models.NegotiationStrategy{top},
				RecommendedStrategy: &top,
			},
		},
	}
}

func failedOutcome(address, kind string) models.AnalysisOutcome {
	return models.AnalysisOutcome{
		Address: address,
		Error:   &models.ErrorInfo{Kind: kind, Message: "no property found"},
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.RunMigrations())
}

func TestSaveAndGetAnalysis(t *testing.T) {
	db := setupTestDB(t)

	record, err := db.SaveAnalysis(successOutcome("1 Main St, Denver, CO 80202", 410000))
	require.NoError(t, err)
	assert.NotZero(t, record.ID)
	assert.Equal(t, "Below-Market Offer", record.TopStrategy)
	assert.Equal(t, "Overpriced", record.ValuationStatus)

	loaded, err := db.GetAnalysis(record.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Success)
	require.NotNil(t, loaded.FinalValue)
	assert.Equal(t, 410000.0, *loaded.FinalValue)
	require.NotNil(t, loaded.Payload.Result)
	assert.Equal(t, 410000.0, loaded.Payload.Result.Valuation.FinalValue)
	assert.Len(t, loaded.Payload.Result.Negotiation.Strategies, 1)

	_, err = db.GetAnalysis(record.ID + 100)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetRecentAnalyses(t *testing.T) {
	db := setupTestDB(t)

	for _, addr := range []string{"a", "b", "c"} {
		_, err := db.SaveAnalysis(successOutcome(addr, 100000))
		require.NoError(t, err)
	}

	records, err := db.GetRecentAnalyses(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0].Address)
	assert.Equal(t, "b", records[1].Address)
	// listings skip the payload
	assert.Nil(t, records[0].Payload.Result)
}

func TestBatchJobLifecycle(t *testing.T) {
	db := setupTestDB(t)

	job := &models.BatchJob{
		ID:        "job-1",
		Addresses: []string{"a", "b"},
		Status:    models.BatchPending,
		Total:     2,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.CreateBatchJob(job))

	loaded, err := db.GetBatchJob("job-1")
	require.NoError(t, err)
	assert.Equal(t, models.BatchPending, loaded.Status)
	assert.Equal(t, []string{"a", "b"}, loaded.Addresses)

	completed := time.Now().UTC()
	job.Status = models.BatchCompleted
	job.Succeeded = 1
	job.Failed = 1
	job.CompletedAt = &completed
	require.NoError(t, db.UpdateBatchJob(job))

	loaded, err = db.GetBatchJob("job-1")
	require.NoError(t, err)
	assert.Equal(t, models.BatchCompleted, loaded.Status)
	assert.Equal(t, 1, loaded.Succeeded)
	assert.Equal(t, 1, loaded.Failed)
	require.NotNil(t, loaded.CompletedAt)
	assert.WithinDuration(t, completed, *loaded.CompletedAt, time.Second)

	_, err = db.GetBatchJob("missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, db.UpdateBatchJob(&models.BatchJob{ID: "missing"}), models.ErrNotFound)
}

func TestSaveBatchResults_OrderedAndReplaced(t *testing.T) {
	db := setupTestDB(t)

	outcomes := []models.AnalysisOutcome{
		successOutcome("first", 200000),
		failedOutcome("second", models.KindNotFound),
		successOutcome("third", 300000),
	}
	for i := range outcomes {
		outcomes[i].Index = i
	}

	require.NoError(t, db.SaveBatchResults("job-2", outcomes))
	// a retried save must not duplicate rows
	require.NoError(t, db.SaveBatchResults("job-2", outcomes))

	results, err := db.GetBatchResults("job-2")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Address)
	assert.Equal(t, "second", results[1].Address)
	assert.False(t, results[1].Success)
	assert.Equal(t, models.KindNotFound, results[1].Error.Kind)
	assert.Equal(t, 2, results[2].Index)

	empty, err := db.GetBatchResults("unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteAnalysesBefore(t *testing.T) {
	db := setupTestDB(t)

	old := newAnalysisRecord(successOutcome("old", 100000), nil)
	old.CreatedAt = time.Now().UTC().AddDate(0, 0, -120)
	require.NoError(t, db.gorm.Create(&old).Error)

	_, err := db.SaveAnalysis(successOutcome("fresh", 100000))
	require.NoError(t, err)

	deleted, err := db.DeleteAnalysesBefore(time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	records, err := db.GetRecentAnalyses(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "fresh", records[0].Address)
}

func TestGetAnalysisStats(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.SaveAnalysis(successOutcome("a", 200000))
	require.NoError(t, err)
	_, err = db.SaveAnalysis(successOutcome("b", 400000))
	require.NoError(t, err)
	_, err = db.SaveAnalysis(failedOutcome("c", models.KindValidation))
	require.NoError(t, err)

	stats, err := db.GetAnalysisStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalAnalyses)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
	assert.InDelta(t, 300000, stats.AverageValue, 0.01)
	assert.Equal(t, 2, stats.Overpriced)
	assert.Equal(t, 0, stats.FairlyPriced)
}

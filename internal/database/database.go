package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"estatewise/server/internal/models"
)

type Database struct {
	db   *sql.DB
	gorm *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; a single connection also keeps :memory:
	// databases shared across queries
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		db.Close()
		return nil, err
	}

	gdb, err := gorm.Open(sqlite.New(sqlite.Config{Conn: db}), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	return &Database{db: db, gorm: gdb}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// SaveAnalysis stores a single outcome outside any batch.
func (d *Database) SaveAnalysis(outcome models.AnalysisOutcome) (*AnalysisRecord, error) {
	record := newAnalysisRecord(outcome, nil)
	if err := d.gorm.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}
	return &record, nil
}

// SaveBatchResults replaces the stored results of a batch in one transaction,
// so a retried save never leaves duplicates behind.
func (d *Database) SaveBatchResults(jobID string, outcomes []models.AnalysisOutcome) error {
	return d.gorm.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("batch_id = ?", jobID).Delete(&AnalysisRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous batch results: %w", err)
		}
		if len(outcomes) == 0 {
			return nil
		}

		records := make([]AnalysisRecord, len(outcomes))
		for i, o := range outcomes {
			id := jobID
			records[i] = newAnalysisRecord(o, &id)
		}
		if err := tx.CreateInBatches(records, 100).Error; err != nil {
			return fmt.Errorf("failed to insert batch results: %w", err)
		}
		return nil
	})
}

func (d *Database) CreateBatchJob(job *models.BatchJob) error {
	record := newBatchJobRecord(job)
	if err := d.gorm.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to create batch job: %w", err)
	}
	return nil
}

func (d *Database) UpdateBatchJob(job *models.BatchJob) error {
	record := newBatchJobRecord(job)
	result := d.gorm.Model(&BatchJobRecord{ID: job.ID}).Select("*").Omit("id", "created_at").Updates(&record)
	if result.Error != nil {
		return fmt.Errorf("failed to update batch job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NotFoundError("batch job %s", job.ID)
	}
	return nil
}

func (d *Database) GetBatchJob(id string) (*models.BatchJob, error) {
	var record BatchJobRecord
	err := d.gorm.First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NotFoundError("batch job %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load batch job: %w", err)
	}
	return record.toModel(), nil
}

// GetBatchResults returns the stored outcomes of a batch in submission order.
func (d *Database) GetBatchResults(id string) ([]models.AnalysisOutcome, error) {
	var records []AnalysisRecord
	err := d.gorm.Where("batch_id = ?", id).Order("batch_index").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load batch results: %w", err)
	}
	outcomes := make([]models.AnalysisOutcome, len(records))
	for i, r := range records {
		outcomes[i] = r.Payload
	}
	return outcomes, nil
}

// GetRecentAnalyses lists the newest records first. The JSON payload is not loaded.
func (d *Database) GetRecentAnalyses(limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []AnalysisRecord
	err := d.gorm.Omit("payload").Order("created_at DESC").Order("id DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent analyses: %w", err)
	}
	return records, nil
}

func (d *Database) GetAnalysis(id uint) (*AnalysisRecord, error) {
	var record AnalysisRecord
	err := d.gorm.First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NotFoundError("analysis %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}
	return &record, nil
}

// DeleteAnalysesBefore removes analysis records created before cutoff and
// reports how many were deleted.
func (d *Database) DeleteAnalysesBefore(cutoff time.Time) (int64, error) {
	result := d.gorm.Where("created_at < ?", cutoff.UTC()).Delete(&AnalysisRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old analyses: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// GetAnalysisStats summarises the stored analyses.
func (d *Database) GetAnalysisStats() (models.AnalysisStats, error) {
	query := `
        SELECT
            COUNT(*) as total_analyses,
            COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0) as succeeded,
            COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0) as failed,
            COALESCE(ROUND(AVG(final_value), 2), 0) as average_value,
            COALESCE(SUM(CASE WHEN valuation_status = 'Overpriced' THEN 1 ELSE 0 END), 0) as overpriced,
            COALESCE(SUM(CASE WHEN valuation_status = 'Underpriced' THEN 1 ELSE 0 END), 0) as underpriced,
            COALESCE(SUM(CASE WHEN valuation_status = 'Fairly Priced' THEN 1 ELSE 0 END), 0) as fairly_priced
        FROM analysis_records
    `
	var stats models.AnalysisStats
	err := d.db.QueryRow(query).Scan(
		&stats.TotalAnalyses,
		&stats.Succeeded,
		&stats.Failed,
		&stats.AverageValue,
		&stats.Overpriced,
		&stats.Underpriced,
		&stats.FairlyPriced,
	)
	return stats, err
}

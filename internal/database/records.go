package database

import (
	"time"

	"estatewise/server/internal/models"
)

// AnalysisRecord is one stored analysis outcome. The full outcome is kept as
// JSON in Payload; the other columns exist for listing and filtering.
type AnalysisRecord struct {
	ID              uint                   `gorm:"primaryKey" json:"id"`
	Address         string                 `gorm:"not null" json:"address"`
	Success         bool                   `json:"success"`
	ErrorKind       string                 `json:"error_kind,omitempty"`
	ErrorMessage    string                 `json:"error_message,omitempty"`
	FinalValue      *float64               `json:"final_value,omitempty"`
	ValuationStatus string                 `json:"valuation_status,omitempty"`
	TopStrategy     string                 `json:"top_strategy,omitempty"`
	BatchID         *string                `gorm:"index:idx_analysis_records_batch" json:"batch_id,omitempty"`
	BatchIndex      int                    `gorm:"index:idx_analysis_records_batch" json:"batch_index"`
	Payload         models.AnalysisOutcome `gorm:"serializer:json" json:"-"`
	CreatedAt       time.Time              `gorm:"index" json:"created_at"`
}

func (AnalysisRecord) TableName() string {
	return "analysis_records"
}

func newAnalysisRecord(outcome models.AnalysisOutcome, batchID *string) AnalysisRecord {
	record := AnalysisRecord{
		Address:    outcome.Address,
		Success:    outcome.Success,
		BatchID:    batchID,
		BatchIndex: outcome.Index,
		Payload:    outcome,
	}
	if outcome.Error != nil {
		record.ErrorKind = outcome.Error.Kind
		record.ErrorMessage = outcome.Error.Message
	}
	if r := outcome.Result; r != nil {
		record.FinalValue = models.Float(r.Valuation.FinalValue)
		record.ValuationStatus = string(r.Valuation.ValuationStatus)
		if top := r.Negotiation.RecommendedStrategy; top != nil {
			record.TopStrategy = top.Name
		}
	}
	return record
}

type BatchJobRecord struct {
	ID          string     `gorm:"primaryKey"`
	Addresses   []string   `gorm:"serializer:json"`
	Status      string     `gorm:"index;not null"`
	Total       int
	Succeeded   int
	Failed      int
	Error       string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

func (BatchJobRecord) TableName() string {
	return "batch_jobs"
}

func newBatchJobRecord(job *models.BatchJob) BatchJobRecord {
	return BatchJobRecord{
		ID:          job.ID,
		Addresses:   job.Addresses,
		Status:      string(job.Status),
		Total:       job.Total,
		Succeeded:   job.Succeeded,
		Failed:      job.Failed,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
	}
}

func (r BatchJobRecord) toModel() *models.BatchJob {
	return &models.BatchJob{
		ID:          r.ID,
		Addresses:   r.Addresses,
		Status:      models.BatchStatus(r.Status),
		Total:       r.Total,
		Succeeded:   r.Succeeded,
		Failed:      r.Failed,
		Error:       r.Error,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
}

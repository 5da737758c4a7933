package models

import "time"

// AnalysisResult is the aggregate produced for one property.
type AnalysisResult struct {
	Address            string              `json:"address"`
	Property           PropertyRecord      `json:"property"`
	Market             MarketSnapshot      `json:"market"`
	Valuation          AggregatedValuation `json:"valuation"`
	InvestmentMetrics  InvestmentMetrics   `json:"investment_metrics"`
	RenovationAnalysis RenovationAnalysis  `json:"renovation_analysis"`
	CMAResults         *CMAResult          `json:"cma_results,omitempty"`
	Negotiation        NegotiationPackage  `json:"negotiation"`
	AnalyzedAt         time.Time           `json:"analyzed_at"`
}

// AnalysisOutcome wraps a result or a structured error. Batch items and the
// top-level API both report through it.
type AnalysisOutcome struct {
	Index   int             `json:"index"`
	Address string          `json:"address"`
	Success bool            `json:"success"`
	Result  *AnalysisResult `json:"result,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type BatchStatus string

const (
	BatchPending   BatchStatus = "pending"
	BatchRunning   BatchStatus = "running"
	BatchCompleted BatchStatus = "completed"
	BatchFailed    BatchStatus = "failed"
)

type BatchJob struct {
	ID          string      `json:"id"`
	Addresses   []string    `json:"addresses"`
	Status      BatchStatus `json:"status"`
	Total       int         `json:"total"`
	Succeeded   int         `json:"succeeded"`
	Failed      int         `json:"failed"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

type BatchSummary struct {
	Job     BatchJob          `json:"job"`
	Results []AnalysisOutcome `json:"results"`
}

// AnalysisStats summarises stored analyses.
type AnalysisStats struct {
	TotalAnalyses int     `json:"total_analyses"`
	Succeeded     int     `json:"succeeded"`
	Failed        int     `json:"failed"`
	AverageValue  float64 `json:"average_value"`
	Overpriced    int     `json:"overpriced"`
	Underpriced   int     `json:"underpriced"`
	FairlyPriced  int     `json:"fairly_priced"`
}

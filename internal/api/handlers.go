package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"estatewise/server/internal/analysis"
	"estatewise/server/internal/database"
	"estatewise/server/internal/geometry"
	"estatewise/server/internal/models"
	"estatewise/server/internal/processor"
	"estatewise/server/internal/queue"
	"estatewise/server/internal/report"
)

type Handler struct {
	service   *analysis.Service
	db        *database.Database
	processor *processor.BatchProcessor
	renderer  report.Renderer
	logger    *logrus.Logger
}

type AnalyzeRequest struct {
	Address string `json:"address" binding:"required"`
}

type NegotiateRequest struct {
	Property  *models.PropertyRecord      `json:"property" binding:"required"`
	Market    *models.MarketSnapshot      `json:"market" binding:"required"`
	Valuation *models.AggregatedValuation `json:"valuation" binding:"required"`
}

type BatchRequest struct {
	Addresses []string `json:"addresses" binding:"required,min=1"`
}

func NewHandler(service *analysis.Service, db *database.Database, batches *processor.BatchProcessor, renderer report.Renderer, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if renderer == nil {
		renderer = report.NewChartRenderer()
	}

	return &Handler{
		service:   service,
		db:        db,
		processor: batches,
		renderer:  renderer,
		logger:    logger,
	}
}

// statusFor maps an error kind onto the HTTP status returned with it
func statusFor(kind string) int {
	switch kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindInsufficientData, models.KindComputation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	info := models.NewErrorInfo(err)
	c.JSON(statusFor(info.Kind), gin.H{"error": info})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) AnalyzeProperty(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse analyze request")
		c.JSON(http.StatusBadRequest, models.AnalysisOutcome{
			Error: &models.ErrorInfo{Kind: models.KindValidation, Message: "address is required"},
		})
		return
	}

	outcome := h.service.Analyze(c.Request.Context(), req.Address)
	if !outcome.Success {
		c.JSON(statusFor(outcome.Error.Kind), outcome)
		return
	}

	if _, err := h.db.SaveAnalysis(outcome); err != nil {
		h.logger.WithError(err).WithField("address", outcome.Address).Error("Failed to save analysis")
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *Handler) Negotiate(c *gin.Context) {
	var req NegotiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse negotiate request")
		h.respondError(c, models.ValidationError("property, market and valuation are required"))
		return
	}

	pkg, err := h.service.GenerateNegotiationPackage(req.Property, req.Market, req.Valuation)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to generate negotiation package")
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg)
}

func (h *Handler) SubmitBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse batch request")
		h.respondError(c, models.ValidationError("addresses must be a non-empty list"))
		return
	}

	job, err := h.processor.Submit(req.Addresses)
	if errors.Is(err, queue.ErrQueueFull) || errors.Is(err, queue.ErrQueueClosed) {
		h.logger.WithError(err).Warn("Batch queue unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": models.ErrorInfo{Kind: models.KindInternal, Message: "batch queue is busy, try again later"}})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to submit batch")
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"batch_id": job.ID,
		"status":   job.Status,
		"total":    job.Total,
	})
}

func (h *Handler) GetBatch(c *gin.Context) {
	id := c.Param("id")
	job, err := h.db.GetBatchJob(id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	results, err := h.db.GetBatchResults(id)
	if err != nil {
		h.logger.WithError(err).WithField("batch_id", id).Error("Failed to get batch results")
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.BatchSummary{Job: *job, Results: results})
}

// ProcessBatchSync analyses every address before responding.
func (h *Handler) ProcessBatchSync(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse batch request")
		h.respondError(c, models.ValidationError("addresses must be a non-empty list"))
		return
	}
	if err := h.processor.ValidateBatch(req.Addresses); err != nil {
		h.respondError(c, err)
		return
	}

	outcomes := h.processor.ProcessAddresses(c.Request.Context(), req.Addresses)
	succeeded := 0
	for _, o := range outcomes {
		if o.Success {
			succeeded++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     len(outcomes),
		"succeeded": succeeded,
		"failed":    len(outcomes) - succeeded,
		"results":   outcomes,
	})
}

func (h *Handler) GetRecentAnalyses(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}

	records, err := h.db.GetRecentAnalyses(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recent analyses")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recent analyses"})
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *Handler) GetAnalysisStats(c *gin.Context) {
	stats, err := h.db.GetAnalysisStats()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get analysis stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get analysis stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) loadAnalysis(c *gin.Context) (*database.AnalysisRecord, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.respondError(c, models.ValidationError("analysis id must be a positive integer"))
		return nil, false
	}

	record, err := h.db.GetAnalysis(uint(id))
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			h.logger.WithError(err).Error("Failed to get analysis")
		}
		h.respondError(c, err)
		return nil, false
	}
	return record, true
}

func (h *Handler) GetAnalysis(c *gin.Context) {
	record, ok := h.loadAnalysis(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, record.Payload)
}

func (h *Handler) GetStrategyChart(c *gin.Context) {
	record, ok := h.loadAnalysis(c)
	if !ok {
		return
	}
	if record.Payload.Result == nil {
		h.respondError(c, models.InsufficientDataError("analysis %d has no negotiation result", record.ID))
		return
	}

	png, err := h.renderer.RenderStrategyChart(&record.Payload.Result.Negotiation)
	if err != nil {
		h.logger.WithError(err).WithField("analysis_id", record.ID).Error("Failed to render strategy chart")
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) GetComparableMap(c *gin.Context) {
	record, ok := h.loadAnalysis(c)
	if !ok {
		return
	}

	fc, err := geometry.ComparableMap(record.Payload.Result)
	if err != nil {
		h.respondError(c, err)
		return
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		h.logger.WithError(err).WithField("analysis_id", record.ID).Error("Failed to encode comparable map")
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

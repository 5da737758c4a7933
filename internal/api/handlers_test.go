package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatewise/server/config"
	"estatewise/server/internal/analysis"
	"estatewise/server/internal/database"
	"estatewise/server/internal/models"
	"estatewise/server/internal/processor"
	"estatewise/server/internal/provider"
	"estatewise/server/internal/queue"
)

const knownAddress = "48 Canyon Rd, Santa Fe, NM 87501"

type failingRenderer struct{}

func (failingRenderer) RenderStrategyChart(*models.NegotiationPackage) ([]byte, error) {
	return nil, errors.New("renderer offline")
}

type testServer struct {
	router *gin.Engine
	db     *database.Database
}

func testDataset() provider.Dataset {
	address := models.Address{Street: "48 Canyon Rd", City: "Santa Fe", State: "NM", Zip: "87501"}
	return provider.Dataset{
		Properties: map[string]provider.Fixture{
			address.Normalized(): {
				Property: &models.PropertyRecord{
					Address:       address,
					PropertyType:  models.PropertyTypeSingleFamily,
					Bedrooms:      3,
					Bathrooms:     2,
					SquareFeet:    1650,
					YearBuilt:     1995,
					ListingPrice:  models.Float(520000),
					DaysOnMarket:  75,
					ListingStatus: models.ListingStatusForSale,
					Condition:     models.ConditionGood,
					Latitude:      models.Float(35.6823),
					Longitude:     models.Float(-105.9325),
				},
				Valuations: []models.ValuationEstimate{
					{SourceName: "avm-a", Value: 480000, ConfidenceScore: 60},
					{SourceName: "avm-b", Value: 500000, ConfidenceScore: 60},
				},
			},
		},
		Markets: map[string]*models.MarketStats{
			address.Location().Key(): {
				MedianPrice:       models.Float(495000),
				DaysOnMarket:      models.Float(55),
				MonthsOfInventory: models.Float(6.5),
				PriceGrowthRate:   models.Float(0.01),
			},
		},
	}
}

func setupServer(t *testing.T, opts ...func(*Handler)) *testServer {
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := database.NewDatabase(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.BatchProcessing.ProcessorCount = 2
	cfg.BatchProcessing.MaxBatchSize = 5

	svc := analysis.NewService(provider.NewFileProvider(testDataset()), config.DefaultPolicy(),
		analysis.WithLogger(logger),
		analysis.WithClock(func() time.Time { return time.Date(2024, time.September, 2, 0, 0, 0, 0, time.UTC) }))
	batches := processor.NewBatchProcessor(svc, db, queue.NewAnalysisQueue(4, logger), cfg, logger)
	batches.Start()
	t.Cleanup(batches.Stop)

	handler := NewHandler(svc, db, batches, nil, logger)
	for _, opt := range opts {
		opt(handler)
	}

	router := gin.New()
	SetupRoutes(router, handler, []string{"*"})
	return &testServer{router: router, db: db}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	s := setupServer(t)
	w := s.do(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAnalyzeProperty(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPost, "/api/analyze", AnalyzeRequest{Address: knownAddress})
	require.Equal(t, http.StatusOK, w.Code)

	outcome := decode[models.AnalysisOutcome](t, w)
	assert.True(t, outcome.Success)
	require.NotNil(t, outcome.Result)
	assert.InDelta(t, 490000, outcome.Result.Valuation.FinalValue, 0.01)
	assert.NotEmpty(t, outcome.Result.Negotiation.Strategies)

	// successful analyses are persisted
	records, err := s.db.GetRecentAnalyses(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, knownAddress, records[0].Address)
}

func TestAnalyzeProperty_ErrorStatus(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		name   string
		body   interface{}
		status int
		kind   string
	}{
		{"missing address", gin.H{}, http.StatusBadRequest, models.KindValidation},
		{"malformed address", AnalyzeRequest{Address: "Santa Fe"}, http.StatusBadRequest, models.KindValidation},
		{"unknown address", AnalyzeRequest{Address: "1 Nowhere Rd, Santa Fe, NM 87501"}, http.StatusNotFound, models.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/analyze", tt.body)
			assert.Equal(t, tt.status, w.Code)

			outcome := decode[models.AnalysisOutcome](t, w)
			assert.False(t, outcome.Success)
			require.NotNil(t, outcome.Error)
			assert.Equal(t, tt.kind, outcome.Error.Kind)
		})
	}

	records, err := s.db.GetRecentAnalyses(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNegotiate(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPost, "/api/analyze", AnalyzeRequest{Address: knownAddress})
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[models.AnalysisOutcome](t, w).Result

	w = s.do(http.MethodPost, "/api/negotiate", NegotiateRequest{
		Property:  &result.Property,
		Market:    &result.Market,
		Valuation: &result.Valuation,
	})
	require.Equal(t, http.StatusOK, w.Code)
	pkg := decode[models.NegotiationPackage](t, w)
	assert.Equal(t, len(result.Negotiation.Strategies), len(pkg.Strategies))

	w = s.do(http.MethodPost, "/api/negotiate", gin.H{"property": result.Property})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	zero := result.Valuation
	zero.FinalValue = 0
	w = s.do(http.MethodPost, "/api/negotiate", NegotiateRequest{
		Property:  &result.Property,
		Market:    &result.Market,
		Valuation: &zero,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[map[string]models.ErrorInfo](t, w)
	assert.Equal(t, models.KindValidation, body["error"].Kind)
}

func TestNegotiate_MarketLabels(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPost, "/api/analyze", AnalyzeRequest{Address: knownAddress})
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[models.AnalysisOutcome](t, w).Result
	require.Equal(t, models.MarketTypeBuyer, result.Market.MarketType())

	// labels that contradict the metrics are rebuilt from them
	claimed := result.Market
	claimed.SupplyDemand.MarketType = models.MarketTypeSeller
	claimed.MarketCycle.CyclePosition = models.CycleExpansion
	w = s.do(http.MethodPost, "/api/negotiate", NegotiateRequest{
		Property:  &result.Property,
		Market:    &claimed,
		Valuation: &result.Valuation,
	})
	require.Equal(t, http.StatusOK, w.Code)
	pkg := decode[models.NegotiationPackage](t, w)
	assert.Equal(t, result.Negotiation.SellerMotivation.Score, pkg.SellerMotivation.Score)
	assert.Equal(t, result.Negotiation.RecommendedStrategy, pkg.RecommendedStrategy)

	unknown := result.Market
	unknown.SupplyDemand.MarketType = "hot"
	w = s.do(http.MethodPost, "/api/negotiate", NegotiateRequest{
		Property:  &result.Property,
		Market:    &unknown,
		Valuation: &result.Valuation,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[map[string]models.ErrorInfo](t, w)
	assert.Equal(t, models.KindValidation, body["error"].Kind)
}

func TestBatch_SubmitAndFetch(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPost, "/api/batch", BatchRequest{Addresses: []string{knownAddress, "bogus"}})
	require.Equal(t, http.StatusAccepted, w.Code)
	accepted := decode[map[string]interface{}](t, w)
	batchID, _ := accepted["batch_id"].(string)
	require.NotEmpty(t, batchID)

	var summary models.BatchSummary
	require.Eventually(t, func() bool {
		w := s.do(http.MethodGet, "/api/batch/"+batchID, nil)
		if w.Code != http.StatusOK {
			return false
		}
		summary = decode[models.BatchSummary](t, w)
		return summary.Job.Status == models.BatchCompleted
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, 1, summary.Job.Succeeded)
	assert.Equal(t, 1, summary.Job.Failed)
	require.Len(t, summary.Results, 2)
	assert.True(t, summary.Results[0].Success)
	assert.Equal(t, models.KindValidation, summary.Results[1].Error.Kind)

	w = s.do(http.MethodGet, "/api/batch/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBatch_Validation(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPost, "/api/batch", BatchRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/batch/sync", BatchRequest{Addresses: make([]string, 6)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatch_Sync(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPost, "/api/batch/sync", BatchRequest{Addresses: []string{"bogus", knownAddress}})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Total     int                      `json:"total"`
		Succeeded int                      `json:"succeeded"`
		Failed    int                      `json:"failed"`
		Results   []models.AnalysisOutcome `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, 1, body.Succeeded)
	assert.Equal(t, 1, body.Failed)
	assert.False(t, body.Results[0].Success)
	assert.True(t, body.Results[1].Success)
	assert.Equal(t, 1, body.Results[1].Index)
}

func TestAnalyses_ListGetAndChart(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPost, "/api/analyze", AnalyzeRequest{Address: knownAddress})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/analyses?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	records := decode[[]database.AnalysisRecord](t, w)
	require.Len(t, records, 1)
	id := records[0].ID

	w = s.do(http.MethodGet, "/api/analyses/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	outcome := decode[models.AnalysisOutcome](t, w)
	assert.True(t, outcome.Success)

	w = s.do(http.MethodGet, "/api/analyses/"+itoa(id)+"/strategies.png", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = s.do(http.MethodGet, "/api/analyses/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[models.AnalysisStats](t, w)
	assert.Equal(t, 1, stats.TotalAnalyses)

	w = s.do(http.MethodGet, "/api/analyses/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, "/api/analyses/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComparableMap(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPost, "/api/analyze", AnalyzeRequest{Address: knownAddress})
	require.Equal(t, http.StatusOK, w.Code)

	records, err := s.db.GetRecentAnalyses(1)
	require.NoError(t, err)
	require.Len(t, records, 1)

	w = s.do(http.MethodGet, "/api/analyses/"+itoa(records[0].ID)+"/comparables.geojson", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "subject", fc.Features[0].Properties["role"])
}

func TestStrategyChart_RendererFailure(t *testing.T) {
	s := setupServer(t, func(h *Handler) { h.renderer = failingRenderer{} })

	w := s.do(http.MethodPost, "/api/analyze", AnalyzeRequest{Address: knownAddress})
	require.Equal(t, http.StatusOK, w.Code)

	records, err := s.db.GetRecentAnalyses(1)
	require.NoError(t, err)
	require.Len(t, records, 1)

	w = s.do(http.MethodGet, "/api/analyses/"+itoa(records[0].ID)+"/strategies.png", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORSHeaders(t *testing.T) {
	s := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(models.KindValidation))
	assert.Equal(t, http.StatusNotFound, statusFor(models.KindNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(models.KindInsufficientData))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(models.KindComputation))
	assert.Equal(t, http.StatusInternalServerError, statusFor(models.KindInternal))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

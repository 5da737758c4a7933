package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatewise/server/config"
	"estatewise/server/internal/models"
)

func stats(dom, inventory, growth float64) *models.MarketStats {
	return &models.MarketStats{
		Location:          models.Location{City: "Austin", State: "TX", Zip: "78701"},
		MedianPrice:       models.Float(450000),
		DaysOnMarket:      models.Float(dom),
		MonthsOfInventory: models.Float(inventory),
		PriceGrowthRate:   models.Float(growth),
		SaleToListRatio:   models.Float(0.98),
		VacancyRate:       models.Float(0.05),
		MedianIncome:      models.Float(90000),
	}
}

func TestClassifyMarket(t *testing.T) {
	a := NewAnalyzer(config.DefaultPolicy())

	assert.Equal(t, models.MarketTypeSeller, a.ClassifyMarket(2.9))
	assert.Equal(t, models.MarketTypeBalanced, a.ClassifyMarket(3))
	assert.Equal(t, models.MarketTypeBalanced, a.ClassifyMarket(6))
	assert.Equal(t, models.MarketTypeBuyer, a.ClassifyMarket(6.1))
}

func TestClassifyCycle(t *testing.T) {
	a := NewAnalyzer(config.DefaultPolicy())

	tests := []struct {
		name      string
		dom       float64
		inventory float64
		growth    float64
		want      models.MarketCycle
	}{
		{"hot market", 15, 1.5, 0.08, models.CycleExpansion},
		{"strong growth but more stock", 15, 3, 0.08, models.CycleLateExpansion},
		{"cooling", 40, 5, 0.01, models.CycleEarlyContraction},
		{"flat growth", 40, 5, 0, models.CycleContraction},
		{"slow and stocked", 90, 9, 0.02, models.CycleContraction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.ClassifyCycle(tt.dom, tt.inventory, tt.growth))
		})
	}
}

func TestAnalyze(t *testing.T) {
	a := NewAnalyzer(config.DefaultPolicy())

	snapshot, err := a.Analyze(stats(30, 7, 0.02))
	require.NoError(t, err)

	assert.Equal(t, models.MarketTypeBuyer, snapshot.MarketType())
	assert.Equal(t, models.CycleContraction, snapshot.Cycle())
	assert.Equal(t, 30.0, snapshot.AverageDaysOnMarket())
	assert.Equal(t, "low", snapshot.SupplyDemand.BuyerCompetition)
	require.NotNil(t, snapshot.MarketMetrics.AbsorptionRate)
	assert.Equal(t, 1.0, *snapshot.MarketMetrics.AbsorptionRate)

	// momentum (0.02+0.1)*1000 clamps to 100, tightness 95, affordability 3/5*100 = 60
	strength := snapshot.MarketStrength
	assert.Equal(t, 100.0, strength.PriceMomentum)
	require.NotNil(t, strength.SupplyTightness)
	assert.Equal(t, 95.0, *strength.SupplyTightness)
	require.NotNil(t, strength.Affordability)
	assert.Equal(t, 60.0, *strength.Affordability)
	assert.Equal(t, 85.0, strength.Score)
}

func TestAnalyze_ZeroIncome(t *testing.T) {
	a := NewAnalyzer(config.DefaultPolicy())
	s := stats(30, 4, -0.05)
	s.MedianIncome = models.Float(0)

	snapshot, err := a.Analyze(s)
	require.NoError(t, err)

	assert.Nil(t, snapshot.MarketStrength.Affordability)
	assert.Contains(t, snapshot.Diagnostics, "median income is zero; affordability not scored")
	// (−0.05+0.1)*1000 = 50, tightness 95
	assert.Equal(t, 72.5, snapshot.MarketStrength.Score)
}

func TestAnalyze_MissingRequiredStats(t *testing.T) {
	a := NewAnalyzer(config.DefaultPolicy())
	s := stats(30, 4, 0.03)
	s.MonthsOfInventory = nil
	s.PriceGrowthRate = nil

	_, err := a.Analyze(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
	assert.Contains(t, err.Error(), "months_of_inventory, price_growth_rate")

	_, err = a.Analyze(nil)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestAnalyze_ZeroDaysOnMarket(t *testing.T) {
	a := NewAnalyzer(config.DefaultPolicy())

	snapshot, err := a.Analyze(stats(0, 1, 0.07))
	require.NoError(t, err)
	assert.Nil(t, snapshot.MarketMetrics.AbsorptionRate)
	assert.Equal(t, models.CycleExpansion, snapshot.Cycle())
	assert.Equal(t, models.MarketTypeSeller, snapshot.MarketType())
}

func TestClassify_RederivesLabelsFromMetrics(t *testing.T) {
	a := NewAnalyzer(config.DefaultPolicy())
	analyzed, err := a.Analyze(stats(30, 10, 0.02))
	require.NoError(t, err)
	require.Equal(t, models.MarketTypeBuyer, analyzed.MarketType())

	claimed := *analyzed
	claimed.SupplyDemand = models.SupplyDemand{MarketType: models.MarketTypeSeller, BuyerCompetition: "high"}
	claimed.MarketCycle = models.CycleAnalysis{CyclePosition: models.CycleExpansion}
	claimed.MarketStrength = models.MarketStrength{Score: 5}

	derived, err := a.Classify(&claimed)
	require.NoError(t, err)

	assert.Equal(t, analyzed.SupplyDemand, derived.SupplyDemand)
	assert.Equal(t, analyzed.MarketCycle, derived.MarketCycle)
	assert.Equal(t, analyzed.MarketStrength, derived.MarketStrength)
	// the input is left alone
	assert.Equal(t, models.MarketTypeSeller, claimed.MarketType())
}

func TestClassify_Rejects(t *testing.T) {
	a := NewAnalyzer(config.DefaultPolicy())
	base, err := a.Analyze(stats(30, 7, 0.02))
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*models.MarketSnapshot)
	}{
		{"unknown market type", func(s *models.MarketSnapshot) { s.SupplyDemand.MarketType = "hot" }},
		{"unknown cycle", func(s *models.MarketSnapshot) { s.MarketCycle.CyclePosition = "Boom" }},
		{"negative inventory", func(s *models.MarketSnapshot) { s.MarketMetrics.MonthsOfInventory = -1 }},
		{"negative days on market", func(s *models.MarketSnapshot) { s.MarketMetrics.DaysOnMarket = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := *base
			tt.mutate(&snapshot)
			_, err := a.Classify(&snapshot)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}

	_, err = a.Classify(nil)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestClassify_UnlabelledSnapshot(t *testing.T) {
	a := NewAnalyzer(config.DefaultPolicy())

	derived, err := a.Classify(&models.MarketSnapshot{
		MarketMetrics: models.MarketMetrics{DaysOnMarket: 0, MonthsOfInventory: 1.5, PriceGrowthRate: 0.08},
	})
	require.NoError(t, err)
	assert.Equal(t, models.MarketTypeSeller, derived.MarketType())
	assert.Equal(t, models.CycleExpansion, derived.Cycle())
	assert.Contains(t, derived.Diagnostics, "days on market is zero; time on market not compared")
}

package negotiation

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatewise/server/config"
	"estatewise/server/internal/models"
)

var june = func() time.Time { return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC) }

func testMarket(marketType models.MarketType, cycle models.MarketCycle) *models.MarketSnapshot {
	return &models.MarketSnapshot{
		MarketMetrics: models.MarketMetrics{MedianPrice: 450000, DaysOnMarket: 30},
		SupplyDemand:  models.SupplyDemand{MarketType: marketType},
		MarketCycle:   models.CycleAnalysis{CyclePosition: cycle},
	}
}

func testProperty(listing float64, dom int) *models.PropertyRecord {
	return &models.PropertyRecord{
		Address:       models.Address{Street: "100 Main St", City: "Denver", State: "CO", Zip: "80202"},
		PropertyType:  models.PropertyTypeSingleFamily,
		Bedrooms:      3,
		Bathrooms:     2,
		SquareFeet:    1800,
		YearBuilt:     1990,
		ListingPrice:  models.Float(listing),
		DaysOnMarket:  dom,
		ListingStatus: models.ListingStatusForSale,
		Condition:     models.ConditionGood,
	}
}

func fastTrackInput() Input {
	property := testProperty(425000, 90)
	property.OriginalListPrice = models.Float(500000)
	property.PriceCutCount = models.Int(2)
	return Input{
		Property:  property,
		Market:    testMarket(models.MarketTypeBuyer, models.CycleContraction),
		Valuation: &models.AggregatedValuation{FinalValue: 420000},
	}
}

func TestGenerate_HighMotivationFastTrack(t *testing.T) {
	engine := NewEngine(config.DefaultPolicy(), WithClock(june))

	pkg, err := engine.Generate(fastTrackInput())
	require.NoError(t, err)

	assert.Equal(t, models.LevelHigh, pkg.SellerMotivation.Level)
	assert.Equal(t, 100.0, pkg.SellerMotivation.Score)
	assert.Equal(t, 2, pkg.SellerMotivation.PriceCuts)
	assert.InDelta(t, 15.0, pkg.SellerMotivation.PriceReductionPct, 0.01)

	require.NotNil(t, pkg.RecommendedStrategy)
	assert.Equal(t, models.StrategyPrice, pkg.RecommendedStrategy.Type)
	assert.Equal(t, pkg.Strategies[0].Name, pkg.RecommendedStrategy.Name)

	// high motivation unlocks seller financing
	var kinds []models.StrategyKind
	for _, s := range pkg.Strategies {
		kinds = append(kinds, s.Kind)
	}
	assert.Contains(t, kinds, models.KindSellerFinancing)
}

func TestGenerate_RankingIsOrdered(t *testing.T) {
	engine := NewEngine(config.DefaultPolicy(), WithClock(june))

	pkg, err := engine.Generate(fastTrackInput())
	require.NoError(t, err)
	require.NotEmpty(t, pkg.Strategies)

	for i, s := range pkg.Strategies {
		assert.Equal(t, i+1, s.Rank)
		if i > 0 {
			assert.LessOrEqual(t, s.Score, pkg.Strategies[i-1].Score)
		}
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	engine := NewEngine(config.DefaultPolicy(), WithClock(june))

	first, err := engine.Generate(fastTrackInput())
	require.NoError(t, err)
	second, err := engine.Generate(fastTrackInput())
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestGenerate_RequiresInputs(t *testing.T) {
	engine := NewEngine(config.DefaultPolicy())

	_, err := engine.Generate(Input{Property: testProperty(400000, 10)})
	assert.ErrorIs(t, err, models.ErrValidation)

	in := fastTrackInput()
	in.Valuation.FinalValue = 0
	_, err = engine.Generate(in)
	assert.ErrorIs(t, err, models.ErrValidation)

	in = fastTrackInput()
	in.Market.SupplyDemand.MarketType = "hot"
	_, err = engine.Generate(in)
	assert.ErrorIs(t, err, models.ErrValidation)

	in = fastTrackInput()
	in.Market.MarketCycle.CyclePosition = "Boom"
	_, err = engine.Generate(in)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestGenerate_UnlistedPropertyUsesValuation(t *testing.T) {
	engine := NewEngine(config.DefaultPolicy(), WithClock(june))
	property := testProperty(0, 0)
	property.ListingPrice = nil
	property.ListingStatus = models.ListingStatusOffMarket

	pkg, err := engine.Generate(Input{
		Property:  property,
		Market:    testMarket(models.MarketTypeBalanced, models.CycleLateExpansion),
		Valuation: &models.AggregatedValuation{FinalValue: 400000},
	})
	require.NoError(t, err)

	for _, s := range pkg.Strategies {
		if s.Kind == models.KindBelowMarketOffer {
			require.NotNil(t, s.OfferPrice)
			assert.Less(t, *s.OfferPrice, 400000.0)
		}
	}
	// off-market listings are scored at the market average
	assert.Equal(t, 30.0, pkg.SellerMotivation.EffectiveDaysOnMarket)
}

func TestGenerate_UnknownMarketAverageAddsNoTimeSignals(t *testing.T) {
	in := fastTrackInput()
	in.Market.MarketMetrics.DaysOnMarket = 0

	pkg, err := NewEngine(config.DefaultPolicy(), WithClock(june)).Generate(in)
	require.NoError(t, err)

	for _, p := range pkg.BuyerLeverage.LeveragePoints {
		assert.NotEqual(t, models.LeverageTime, p.Type)
	}
	for _, s := range pkg.Strategies {
		for _, j := range s.Justification {
			assert.NotContains(t, j, "above average")
		}
	}
}

func TestSuccessProbability_Bounds(t *testing.T) {
	engine := NewEngine(config.DefaultPolicy())
	levels := []models.Level{models.LevelLow, models.LevelModerate, models.LevelHigh, "unknown"}
	markets := []models.MarketType{models.MarketTypeBuyer, models.MarketTypeBalanced, models.MarketTypeSeller, ""}

	for d := -0.5; d <= 1.0; d += 0.01 {
		for _, level := range levels {
			for _, market := range markets {
				p := engine.SuccessProbability(d, level, market)
				assert.GreaterOrEqual(t, p, 0.1)
				assert.LessOrEqual(t, p, 0.95)
			}
		}
	}
}

func TestSuccessProbability_Buckets(t *testing.T) {
	engine := NewEngine(config.DefaultPolicy())

	assert.Equal(t, 0.9, engine.SuccessProbability(0.03, models.LevelModerate, models.MarketTypeBalanced))
	assert.Equal(t, 0.8, engine.SuccessProbability(0.05, models.LevelModerate, models.MarketTypeBalanced))
	assert.Equal(t, 0.3, engine.SuccessProbability(0.2, models.LevelModerate, models.MarketTypeBalanced))
	// 0.9 * 1.3 * 1.2 is capped
	assert.Equal(t, 0.95, engine.SuccessProbability(0.01, models.LevelHigh, models.MarketTypeBuyer))
	assert.InDelta(t, 0.168, engine.SuccessProbability(0.2, models.LevelLow, models.MarketTypeSeller), 1e-9)
}

func TestDiscountPct(t *testing.T) {
	engine := NewEngine(config.DefaultPolicy())

	assert.InDelta(t, 0.15, engine.DiscountPct(models.LevelHigh, models.MarketTypeBuyer, 90, 30), 1e-9)
	assert.InDelta(t, 0.06, engine.DiscountPct(models.LevelModerate, models.MarketTypeSeller, 40, 30), 1e-9)
	assert.InDelta(t, 0.03, engine.DiscountPct(models.LevelLow, models.MarketTypeBalanced, 10, 30), 1e-9)
	assert.InDelta(t, 0.03, engine.DiscountPct(models.LevelLow, models.MarketTypeBalanced, 10, 0), 1e-9)
}

func TestPriceStrategies_Offers(t *testing.T) {
	engine := NewEngine(config.DefaultPolicy(), WithClock(june))

	pkg, err := engine.Generate(fastTrackInput())
	require.NoError(t, err)

	byKind := map[models.StrategyKind]models.NegotiationStrategy{}
	for _, s := range pkg.Strategies {
		byKind[s.Kind] = s
	}

	below := byKind[models.KindBelowMarketOffer]
	require.NotNil(t, below.OfferPrice)
	assert.InDelta(t, 361250, *below.OfferPrice, 1)
	assert.Equal(t, 15.0, *below.DiscountPercentage)
	assert.InDelta(t, 63750, below.ROIImpact.TotalSavings, 1)
	assert.InDelta(t, -15.0, below.ROIImpact.PurchasePriceImpact, 0.01)
	assert.InDelta(t, 255.0, below.ROIImpact.MonthlyCashFlowImpact, 0.05)

	incremental := byKind[models.KindIncrementalNegotiation]
	require.NotNil(t, incremental.MaxPrice)
	assert.InDelta(t, 380375, *incremental.OfferPrice, 1)
	assert.InDelta(t, 405875, *incremental.MaxPrice, 1)
	assert.InDelta(t, 4250, *incremental.Increment, 1)

	tiers := byKind[models.KindConditionalPriceTiers]
	require.Len(t, tiers.Tiers, 3)
	assert.Less(t, tiers.Tiers[0].Price, tiers.Tiers[1].Price)
	assert.Less(t, tiers.Tiers[1].Price, tiers.Tiers[2].Price)
	assert.Equal(t, tiers.Tiers[2].Price, *tiers.OfferPrice)
}

func TestCreativeStrategies_Condition(t *testing.T) {
	engine := NewEngine(config.DefaultPolicy(), WithClock(june))
	in := fastTrackInput()
	in.Renovation = &models.RenovationAnalysis{PropertyCondition: models.ConditionPoor, EstimatedRenovationCost: 60000}

	pkg, err := engine.Generate(in)
	require.NoError(t, err)

	byKind := map[models.StrategyKind]models.NegotiationStrategy{}
	for _, s := range pkg.Strategies {
		byKind[s.Kind] = s
	}

	credits, ok := byKind[models.KindRepairCredits]
	require.True(t, ok)
	// capped at 5% of 425,000
	assert.InDelta(t, 21250, *credits.CreditAmount, 1)

	asIs, ok := byKind[models.KindAsIsPurchase]
	require.True(t, ok)
	assert.InDelta(t, 72000, *asIs.DiscountNeeded, 1)
}

func TestTermsStrategies_AlreadyPurchased(t *testing.T) {
	engine := NewEngine(config.DefaultPolicy(), WithClock(june))
	in := fastTrackInput()
	in.Property.SellerNotes = []string{"Seller has already purchased another home"}

	pkg, err := engine.Generate(in)
	require.NoError(t, err)

	for _, s := range pkg.Strategies {
		if s.Kind == models.KindClosingTimeline {
			assert.Equal(t, 0.8, s.ExpectedSuccessProbability)
			assert.Contains(t, s.Options[1], "Delayed closing")
			return
		}
	}
	t.Fatal("closing timeline strategy missing")
}

func TestWithSimulatedPriceHistory_Deterministic(t *testing.T) {
	in := fastTrackInput()
	in.Property.OriginalListPrice = nil
	in.Property.PriceCutCount = nil

	a := NewEngine(config.DefaultPolicy(), WithClock(june), WithSimulatedPriceHistory(rand.New(rand.NewSource(7))))
	b := NewEngine(config.DefaultPolicy(), WithClock(june), WithSimulatedPriceHistory(rand.New(rand.NewSource(7))))

	first := a.ScoreMotivation(in.Property, in.Market, 420000)
	second := b.ScoreMotivation(in.Property, in.Market, 420000)
	assert.Equal(t, first, second)
	assert.False(t, first.PriceHistoryKnown)
}

func TestTermsStrategies_ClosingTimelineCredit(t *testing.T) {
	engine := NewEngine(config.DefaultPolicy(), WithClock(june))

	for _, notes := range [][]string{nil, {"Seller has already purchased another home"}} {
		in := fastTrackInput()
		in.Property.SellerNotes = notes

		pkg, err := engine.Generate(in)
		require.NoError(t, err)

		var found bool
		for _, s := range pkg.Strategies {
			if s.Kind != models.KindClosingTimeline {
				continue
			}
			found = true
			assert.Contains(t, s.Options[0], "Quick closing")
			assert.Equal(t, 3000.0, s.ROIImpact.TotalSavings)
			assert.Equal(t, -1.0, s.ROIImpact.PurchasePriceImpact)
			assert.InDelta(t, 250.0, s.ROIImpact.MonthlyCashFlowImpact, 0.01)
		}
		assert.True(t, found, "closing timeline strategy missing")
	}
}

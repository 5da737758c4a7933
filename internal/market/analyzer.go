package market

import (
	"strings"

	"estatewise/server/config"
	"estatewise/server/internal/finance"
	"estatewise/server/internal/models"
)

var cycleDescriptions = map[models.MarketCycle]string{
	models.CycleExpansion:        "The market is in a strong expansion phase with rapidly rising prices, low inventory, and short days on market.",
	models.CycleLateExpansion:    "The market is in the late expansion phase with slowing price growth but still favorable seller conditions.",
	models.CycleEarlyContraction: "The market is showing early signs of contraction with increasing inventory and longer days on market.",
	models.CycleContraction:      "The market is in a contraction phase with rising inventory, longer days on market, and potential price declines.",
}

// Analyzer derives a MarketSnapshot from raw provider statistics. It performs
// no I/O.
type Analyzer struct {
	policy config.MarketPolicy
}

func NewAnalyzer(policy config.Policy) *Analyzer {
	return &Analyzer{policy: policy.Market}
}

func (a *Analyzer) Analyze(stats *models.MarketStats) (*models.MarketSnapshot, error) {
	if stats == nil {
		return nil, models.InsufficientDataError("no market statistics")
	}
	var missing []string
	if stats.DaysOnMarket == nil {
		missing = append(missing, "days_on_market")
	}
	if stats.MonthsOfInventory == nil {
		missing = append(missing, "months_of_inventory")
	}
	if stats.PriceGrowthRate == nil {
		missing = append(missing, "price_growth_rate")
	}
	if len(missing) > 0 {
		return nil, models.InsufficientDataError("market statistics missing %s", strings.Join(missing, ", "))
	}

	snapshot := &models.MarketSnapshot{
		Location:     stats.Location,
		Neighborhood: stats.Neighborhood,
	}
	snapshot.MarketMetrics = a.metrics(stats, snapshot)
	a.classify(snapshot)

	return snapshot, nil
}

// Classify rebuilds the type, cycle and strength of a snapshot that came from
// outside the pipeline, using only its market metrics. Labels outside the
// known values and negative metrics are rejected. The input is not modified.
func (a *Analyzer) Classify(in *models.MarketSnapshot) (*models.MarketSnapshot, error) {
	if in == nil {
		return nil, models.ValidationError("market snapshot is required")
	}
	if t := in.MarketType(); t != "" && !t.Valid() {
		return nil, models.ValidationError("market: unknown market type %q", t)
	}
	if c := in.Cycle(); c != "" && !c.Valid() {
		return nil, models.ValidationError("market: unknown cycle position %q", c)
	}
	m := in.MarketMetrics
	if m.DaysOnMarket < 0 || m.MonthsOfInventory < 0 || m.MedianPrice < 0 {
		return nil, models.ValidationError("market: metrics must not be negative")
	}

	out := *in
	out.Diagnostics = nil
	if m.DaysOnMarket == 0 {
		out.Diagnostics = append(out.Diagnostics, "days on market is zero; time on market not compared")
	}
	a.classify(&out)
	return &out, nil
}

// classify derives type, cycle and strength from one metrics value.
func (a *Analyzer) classify(snapshot *models.MarketSnapshot) {
	metrics := snapshot.MarketMetrics
	marketType := a.ClassifyMarket(metrics.MonthsOfInventory)
	cycle := a.ClassifyCycle(metrics.DaysOnMarket, metrics.MonthsOfInventory, metrics.PriceGrowthRate)

	snapshot.SupplyDemand = supplyDemand(marketType)
	snapshot.MarketCycle = models.CycleAnalysis{
		CyclePosition:         cycle,
		Description:           cycleDescriptions[cycle],
		RecommendedStrategies: recommendedStrategies(marketType),
	}
	snapshot.MarketStrength = a.strength(metrics, snapshot)
}

func (a *Analyzer) metrics(stats *models.MarketStats, snapshot *models.MarketSnapshot) models.MarketMetrics {
	m := models.MarketMetrics{
		DaysOnMarket:      *stats.DaysOnMarket,
		MonthsOfInventory: *stats.MonthsOfInventory,
		PriceGrowthRate:   *stats.PriceGrowthRate,
		VacancyRate:       stats.VacancyRate,
		MedianIncome:      stats.MedianIncome,
		MedianRent:        stats.MedianRent,
	}
	if stats.MedianPrice != nil {
		m.MedianPrice = *stats.MedianPrice
	} else {
		snapshot.Diagnostics = append(snapshot.Diagnostics, "median price unavailable")
	}
	if stats.SaleToListRatio != nil {
		m.SaleToListRatio = *stats.SaleToListRatio
	}

	if absorption, ok := finance.Ratio(30, m.DaysOnMarket); ok {
		m.AbsorptionRate = models.Float(finance.Round(absorption, 2))
	} else {
		snapshot.Diagnostics = append(snapshot.Diagnostics, "days on market is zero; absorption rate not computed")
	}

	if stats.MedianIncome != nil {
		if pti, ok := finance.Ratio(m.MedianPrice, *stats.MedianIncome); ok && m.MedianPrice > 0 {
			m.PriceToIncome = models.Float(finance.Round(pti, 2))
		}
	}
	return m
}

// ClassifyMarket maps months of inventory onto buyer, balanced or seller.
func (a *Analyzer) ClassifyMarket(monthsOfInventory float64) models.MarketType {
	switch {
	case monthsOfInventory < a.policy.SellerInventoryBelow:
		return models.MarketTypeSeller
	case monthsOfInventory > a.policy.BuyerInventoryAbove:
		return models.MarketTypeBuyer
	default:
		return models.MarketTypeBalanced
	}
}

// ClassifyCycle checks the cycle rules in order; the first match wins and
// anything unmatched is a contraction.
func (a *Analyzer) ClassifyCycle(daysOnMarket, monthsOfInventory, growth float64) models.MarketCycle {
	for _, rule := range a.policy.CycleRules {
		if daysOnMarket < rule.MaxDaysOnMarket && monthsOfInventory < rule.MaxInventory && growth > rule.MinGrowth {
			return rule.Phase
		}
	}
	return models.CycleContraction
}

func (a *Analyzer) strength(m models.MarketMetrics, snapshot *models.MarketSnapshot) models.MarketStrength {
	s := models.MarketStrength{
		PriceMomentum: finance.Round(finance.Clamp((m.PriceGrowthRate+a.policy.MomentumOffset)*a.policy.MomentumScale, 0, 100), 1),
	}
	scores := []float64{s.PriceMomentum}

	if m.VacancyRate != nil {
		tightness := finance.Round(finance.Clamp((1-*m.VacancyRate)*100, 0, 100), 1)
		s.SupplyTightness = &tightness
		scores = append(scores, tightness)
	} else {
		snapshot.Diagnostics = append(snapshot.Diagnostics, "vacancy rate unavailable; supply tightness not scored")
	}

	switch {
	case m.MedianIncome == nil:
		snapshot.Diagnostics = append(snapshot.Diagnostics, "median income unavailable; affordability not scored")
	case *m.MedianIncome == 0:
		snapshot.Diagnostics = append(snapshot.Diagnostics, "median income is zero; affordability not scored")
	case m.PriceToIncome == nil || *m.PriceToIncome == 0:
		snapshot.Diagnostics = append(snapshot.Diagnostics, "price to income ratio unavailable; affordability not scored")
	default:
		affordability := finance.Round(finance.Clamp(a.policy.AffordabilityBenchmark / *m.PriceToIncome * 100, 0, 100), 1)
		s.Affordability = &affordability
		scores = append(scores, affordability)
	}

	s.Score = finance.Round(finance.Mean(scores), 1)
	return s
}

func supplyDemand(marketType models.MarketType) models.SupplyDemand {
	switch marketType {
	case models.MarketTypeSeller:
		return models.SupplyDemand{MarketType: marketType, BuyerCompetition: "high", DemandLevel: "high", SupplyLevel: "low"}
	case models.MarketTypeBuyer:
		return models.SupplyDemand{MarketType: marketType, BuyerCompetition: "low", DemandLevel: "low", SupplyLevel: "high"}
	default:
		return models.SupplyDemand{MarketType: marketType, BuyerCompetition: "moderate", DemandLevel: "moderate", SupplyLevel: "moderate"}
	}
}

func recommendedStrategies(marketType models.MarketType) []string {
	if marketType == models.MarketTypeBuyer {
		return []string{
			"Focus on properties with value-add potential",
			"Negotiate aggressively on price",
			"Consider properties that have been on market longer than average",
		}
	}
	return []string{
		"Focus on properties with value-add potential",
		"Expect competitive bidding on price",
		"Move quickly on recently listed properties",
	}
}

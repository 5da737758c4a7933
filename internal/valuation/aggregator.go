package valuation

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"estatewise/server/config"
	"estatewise/server/internal/finance"
	"estatewise/server/internal/models"
)

// Aggregator combines independent valuation estimates into one
// confidence-weighted value.
type Aggregator struct {
	policy     config.ValuationPolicy
	investment config.InvestmentPolicy
}

func NewAggregator(policy config.Policy) *Aggregator {
	return &Aggregator{
		policy:     policy.Valuation,
		investment: policy.Investment,
	}
}

// Aggregate weights each estimate by its confidence score. When every
// confidence is zero the plain mean is used instead.
func (a *Aggregator) Aggregate(estimates []models.ValuationEstimate, property *models.PropertyRecord) (*models.AggregatedValuation, error) {
	if len(estimates) == 0 {
		return nil, models.InsufficientDataError("no valuation sources for %s", property.Address)
	}

	values := make([]float64, len(estimates))
	weights := make([]float64, len(estimates))
	confidences := make([]float64, len(estimates))
	for i, e := range estimates {
		if e.Value <= 0 {
			return nil, models.ValidationError("valuation from %s has non-positive value %.2f", e.SourceName, e.Value)
		}
		values[i] = e.Value
		weights[i] = e.ConfidenceScore
		confidences[i] = e.ConfidenceScore
	}

	result := &models.AggregatedValuation{
		Sources:         append([]models.ValuationEstimate(nil), estimates...),
		ConfidenceScore: finance.Round(stat.Mean(confidences, nil), 1),
	}

	var finalValue float64
	if floats.Sum(weights) > 0 {
		finalValue = stat.Mean(values, weights)
	} else {
		finalValue = stat.Mean(values, nil)
		result.Diagnostics = append(result.Diagnostics, "all valuation sources reported zero confidence; using the unweighted mean")
	}
	lo, hi := floats.Min(values), floats.Max(values)
	result.FinalValue = finance.Clamp(finance.Cents(finalValue), lo, hi)

	if len(values) > 1 {
		absolute := hi - lo
		pct, _ := finance.Ratio(absolute, stat.Mean(values, nil))
		result.ValuationSpread = models.ValuationSpread{
			Absolute:   finance.Cents(absolute),
			Percentage: finance.Round(pct*100, 1),
		}
	}

	result.ConfidenceInterval = unionInterval(estimates)
	result.Forecast = weightedForecast(estimates)

	if ppsf, ok := finance.Ratio(result.FinalValue, property.SquareFeet); ok {
		result.PricePerSqft = models.Float(finance.Cents(ppsf))
	} else {
		result.Diagnostics = append(result.Diagnostics, "square footage is zero; price per square foot unavailable")
	}

	if property.IsListed() {
		result.ListingPrice = models.Float(*property.ListingPrice)
	}
	result.ValuationStatus = Status(property.ListingPrice, result.FinalValue, a.policy.StatusBand)
	result.MarketAlignment = a.alignment(result.FinalValue, property)
	result.InvestmentPotential = a.screen(result.FinalValue, property)
	result.MarketPosition = "At Market"

	return result, nil
}

// Status compares the listing price to the final value at a symmetric band.
func Status(listingPrice *float64, finalValue, band float64) models.ValuationStatus {
	if listingPrice == nil || *listingPrice <= 0 {
		return models.StatusNotListed
	}
	switch {
	case *listingPrice > finalValue*(1+band):
		return models.StatusOverpriced
	case *listingPrice < finalValue*(1-band):
		return models.StatusUnderpriced
	default:
		return models.StatusFairlyPriced
	}
}

// unionInterval spans every source interval. A source without one
// contributes its point value.
func unionInterval(estimates []models.ValuationEstimate) models.ConfidenceInterval {
	var interval models.ConfidenceInterval
	for i, e := range estimates {
		low, high := e.Value, e.Value
		if e.ConfidenceInterval != nil {
			low, high = e.ConfidenceInterval.Low, e.ConfidenceInterval.High
		}
		if i == 0 || low < interval.Low {
			interval.Low = low
		}
		if i == 0 || high > interval.High {
			interval.High = high
		}
	}
	return interval
}

func weightedForecast(estimates []models.ValuationEstimate) *models.Forecast {
	var one, three, five, weights []float64
	for _, e := range estimates {
		if e.Forecast == nil {
			continue
		}
		one = append(one, e.Forecast.OneYear)
		three = append(three, e.Forecast.ThreeYear)
		five = append(five, e.Forecast.FiveYear)
		weights = append(weights, e.ConfidenceScore)
	}
	if len(one) == 0 {
		return nil
	}
	if floats.Sum(weights) == 0 {
		weights = nil
	}
	return &models.Forecast{
		OneYear:   finance.Cents(stat.Mean(one, weights)),
		ThreeYear: finance.Cents(stat.Mean(three, weights)),
		FiveYear:  finance.Cents(stat.Mean(five, weights)),
	}
}

func (a *Aggregator) alignment(finalValue float64, property *models.PropertyRecord) models.MarketAlignment {
	if !property.IsListed() {
		return models.MarketAlignment{PriceToValueRatio: models.Float(1.0), MarketPosition: "At Market"}
	}
	ratio, ok := finance.Ratio(*property.ListingPrice, finalValue)
	if !ok {
		return models.MarketAlignment{MarketPosition: "Unknown"}
	}

	position := "At Market"
	switch {
	case ratio > 1+a.policy.AlignmentBand:
		position = "Above Market"
	case ratio < 1-a.policy.AlignmentBand:
		position = "Below Market"
	}
	return models.MarketAlignment{
		PriceToValueRatio: models.Float(finance.Round(ratio, 2)),
		MarketPosition:    position,
		NegotiationMargin: finance.Round((ratio-1)*100, 1),
	}
}

// screen is the quick rental check reported alongside the valuation. The
// full analysis lives in the investment package.
func (a *Aggregator) screen(value float64, property *models.PropertyRecord) *models.InvestmentPotential {
	if value <= 0 {
		return nil
	}
	p := a.policy
	rent := value * p.ScreenRentRate * a.investment.RentMultiplier(property.PropertyType)
	annualRent := rent * 12
	annualExpenses := value*p.ScreenTaxRate + value*p.ScreenInsuranceRate + property.HOAFee*12
	noi := annualRent - annualExpenses
	mortgage := finance.MonthlyPayment(value*(1-p.ScreenDownPayment), p.ScreenMortgageRate, p.ScreenTermYears)
	annualCashFlow := noi - mortgage*12
	capRate := noi / value * 100
	coc, _ := finance.Ratio(annualCashFlow, value*p.ScreenDownPayment)

	return &models.InvestmentPotential{
		EstimatedMonthlyRent: finance.Cents(rent),
		MonthlyExpenses:      finance.Cents(annualExpenses / 12),
		MonthlyMortgage:      finance.Cents(mortgage),
		MonthlyCashFlow:      finance.Cents(annualCashFlow / 12),
		CapRate:              finance.Round(capRate, 2),
		CashOnCashReturn:     finance.Round(coc*100, 2),
		InvestmentRating:     a.rating(capRate),
	}
}

func (a *Aggregator) rating(capRate float64) string {
	switch {
	case capRate > a.policy.RatingExcellentAbove:
		return "Excellent"
	case capRate > a.policy.RatingGoodAbove:
		return "Good"
	case capRate > a.policy.RatingFairAbove:
		return "Fair"
	default:
		return "Poor"
	}
}

// ApplyMarketContext positions the value against the local median and
// projects it forward at the market's growth rate.
func (a *Aggregator) ApplyMarketContext(v *models.AggregatedValuation, market *models.MarketSnapshot) {
	if v == nil || market == nil {
		return
	}
	metrics := market.MarketMetrics

	ratio, ok := finance.Ratio(v.FinalValue, metrics.MedianPrice)
	if ok {
		v.PriceToMarketRatio = models.Float(finance.Round(ratio, 2))
		switch {
		case ratio > 1+a.policy.MarketPositionBand:
			v.MarketPosition = "Above Market"
		case ratio < 1-a.policy.MarketPositionBand:
			v.MarketPosition = "Below Market"
		default:
			v.MarketPosition = "At Market"
		}
	} else {
		v.PriceToMarketRatio = nil
		v.MarketPosition = "At Market"
		v.Diagnostics = append(v.Diagnostics, "market median price unavailable; price to market ratio not computed")
	}

	growth := metrics.PriceGrowthRate
	v.MarketTrendImpact = &models.TrendImpact{
		CurrentGrowthRate:           growth,
		ProjectedAnnualAppreciation: finance.Round(growth*100, 1),
		ValueInOneYear:              finance.Cents(finance.Compound(v.FinalValue, growth, 1)),
		ValueInFiveYears:            finance.Cents(finance.Compound(v.FinalValue, growth, 5)),
	}
}

// Describe is a one-line summary used in logs.
func Describe(v *models.AggregatedValuation) string {
	return fmt.Sprintf("%.0f (%s, %d sources, spread %.1f%%)", v.FinalValue, v.ValuationStatus, len(v.Sources), v.ValuationSpread.Percentage)
}

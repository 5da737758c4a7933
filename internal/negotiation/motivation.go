package negotiation

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"estatewise/server/config"
	"estatewise/server/internal/finance"
	"estatewise/server/internal/models"
)

var possibleFactors = []string{
	"Possible life change (job relocation, divorce, etc.)",
	"May have already purchased another home",
	"Potential financial pressure",
	"Property may have been inherited",
	"Possible investment property liquidation",
}

type priceHistory struct {
	known        bool
	simulated    bool
	cuts         int
	reductionPct float64
}

// ScoreMotivation estimates how eager the seller is to close. value is the
// aggregated property value and drives the carrying cost estimate.
func (e *Engine) ScoreMotivation(property *models.PropertyRecord, market *models.MarketSnapshot, value float64) models.SellerMotivation {
	p := e.policy.Motivation
	avg := market.AverageDaysOnMarket()

	dom := float64(property.DaysOnMarket)
	if property.ListingStatus != "" && property.ListingStatus != models.ListingStatusForSale {
		dom = avg
	}

	current := value
	if property.IsListed() {
		current = *property.ListingPrice
	}
	history := e.priceHistory(property, current)

	score := p.BaseScore
	ratio, domKnown := finance.Ratio(dom, avg)
	if domKnown {
		if pts, matched := config.Match(p.DaysOnMarketTiers, ratio); matched {
			score += pts
		} else if ratio < p.FastSaleMultiple {
			score += p.FastSalePoints
		}
	}

	if history.known || history.simulated {
		switch {
		case history.cuts >= 2:
			score += p.MultipleCutPoints
		case history.cuts == 1:
			score += p.SingleCutPoints
		}
		if pts, ok := config.Match(p.ReductionTiers, history.reductionPct); ok {
			score += pts
		}
	}

	marketType := market.MarketType()
	score += p.MarketPoints.For(marketType, 0)

	cycle := market.Cycle()
	switch {
	case cycle.Declining():
		score += p.DecliningCyclePoints
	case cycle == models.CycleExpansion:
		score += p.ExpansionPoints
	}

	score = finance.Clamp(score, 0, 100)
	level := levelFor(score, p.HighThreshold, p.ModerateThreshold)

	var factors []string
	switch {
	case !domKnown:
		factors = append(factors, "Market average days on market unavailable; time on market not scored")
	case ratio > 1:
		factors = append(factors, fmt.Sprintf("Property has been on market for %s days (market average: %s)",
			humanize.Ftoa(dom), humanize.Ftoa(avg)))
	}
	switch {
	case history.cuts > 0:
		factors = append(factors, fmt.Sprintf("%d price reduction(s) totaling %.1f%% of original list price",
			history.cuts, history.reductionPct))
	case !history.known && !history.simulated:
		factors = append(factors, "Original list price unavailable; price reduction history unknown")
	}
	if marketType == models.MarketTypeBuyer {
		factors = append(factors, "Current buyer's market conditions")
	}
	if cycle.Declining() {
		factors = append(factors, fmt.Sprintf("Declining market in %s phase", cycle))
	}
	if slices.Contains(p.WinterMonths, int(e.now().Month())) {
		factors = append(factors, "Winter season typically has fewer buyers")
	}
	for _, note := range property.SellerNotes {
		if note = strings.TrimSpace(note); note != "" {
			factors = append(factors, note)
		}
	}
	factors = e.simulatedFactors(factors, level)

	return models.SellerMotivation{
		Score:                 finance.Round(score, 1),
		Level:                 level,
		Factors:               factors,
		CarryingCosts:         e.carryingCosts(property, value),
		PriceHistoryKnown:     history.known,
		PriceCuts:             history.cuts,
		PriceReductionPct:     finance.Round(history.reductionPct, 1),
		EffectiveDaysOnMarket: dom,
	}
}

func (e *Engine) priceHistory(property *models.PropertyRecord, current float64) priceHistory {
	p := e.policy.Motivation

	var original float64
	h := priceHistory{}
	switch {
	case property.OriginalListPrice != nil:
		original = *property.OriginalListPrice
		h.known = true
	case e.rng != nil:
		e.rngMu.Lock()
		if e.rng.Float64() < p.SimulatedCutProbability {
			markup := p.SimulatedMarkupMin + e.rng.Float64()*(p.SimulatedMarkupMax-p.SimulatedMarkupMin)
			original = current * markup
		} else {
			original = current
		}
		e.rngMu.Unlock()
		h.simulated = true
	default:
		return h
	}

	if original > current {
		h.reductionPct = (original - current) / original * 100
	}
	switch {
	case h.known && property.PriceCutCount != nil:
		h.cuts = *property.PriceCutCount
	case h.reductionPct > p.MultipleCutReduction:
		h.cuts = 2
	case h.reductionPct > 0:
		h.cuts = 1
	}
	return h
}

// simulatedFactors pads thin factor lists with generic guesses. Only active
// when price history simulation is enabled.
func (e *Engine) simulatedFactors(factors []string, level models.Level) []string {
	if e.rng == nil || len(factors) >= 2 {
		return factors
	}

	var n int
	switch level {
	case models.LevelHigh:
		n = 2
	case models.LevelModerate:
		n = 1
	}

	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	for _, i := range e.rng.Perm(len(possibleFactors))[:n] {
		factors = append(factors, possibleFactors[i])
	}
	return factors
}

func (e *Engine) carryingCosts(property *models.PropertyRecord, value float64) models.CarryingCosts {
	p := e.policy.Motivation

	mortgage := finance.MonthlyPayment(value*p.CarryingLoanToValue, p.CarryingMortgageRate, p.CarryingTermYears)
	annualTax := value * p.CarryingTaxRate
	if property.AnnualTaxAmount != nil {
		annualTax = *property.AnnualTaxAmount
	}
	tax := annualTax / 12
	insurance := value * p.CarryingInsuranceRate / 12
	maintenance := value * p.CarryingMaintenance / 12

	total := mortgage + tax + insurance + p.CarryingUtilities + maintenance
	opportunity := value * p.CarryingEquityShare * p.CarryingOpportunityPct / 12

	return models.CarryingCosts{
		Mortgage:                    math.Round(mortgage),
		PropertyTax:                 math.Round(tax),
		Insurance:                   math.Round(insurance),
		Utilities:                   p.CarryingUtilities,
		Maintenance:                 math.Round(maintenance),
		TotalMonthly:                math.Round(total),
		OpportunityCost:             math.Round(opportunity),
		TotalMonthlyWithOpportunity: math.Round(total + opportunity),
		CostPerAdditionalMonth:      math.Round(total + opportunity),
	}
}

package negotiation

import (
	"fmt"

	"estatewise/server/internal/finance"
	"estatewise/server/internal/models"
)

// ScoreLeverage collects the facts that favour the buyer. Points keep their
// generation order and the first two become primary and secondary leverage.
func (e *Engine) ScoreLeverage(in Input) models.BuyerLeverage {
	p := e.policy.Leverage
	finalValue := in.Valuation.FinalValue
	listPrice := askingPrice(in.Property, in.Valuation)
	dom := float64(in.Property.DaysOnMarket)
	avg := in.Market.AverageDaysOnMarket()

	score := p.BaseScore
	var points []models.LeveragePoint
	add := func(kind, description string, strength models.Level, impact string, pts float64) {
		points = append(points, models.LeveragePoint{
			Type:              kind,
			Description:       description,
			Strength:          strength,
			NegotiationImpact: impact,
		})
		score += pts
	}

	gap, _ := finance.Ratio(listPrice-finalValue, listPrice)
	reduction := fmt.Sprintf("Potential %.1f%% price reduction opportunity", gap*100)
	switch {
	case listPrice > finalValue*p.PriceHighRatio:
		add(models.LeveragePrice, "Property is overpriced compared to estimated value",
			models.LevelHigh, reduction, p.PriceHighPoints)
	case listPrice > finalValue*p.PriceModerateRatio:
		add(models.LeveragePrice, "Property is slightly overpriced compared to estimated value",
			models.LevelModerate, reduction, p.PriceModeratePoints)
	}

	// no market average means no time comparison
	domRatio, domKnown := finance.Ratio(dom, avg)
	switch {
	case !domKnown:
	case domRatio > p.TimeHighMultiple:
		add(models.LeverageTime,
			fmt.Sprintf("Property has been on the market for %d days (more than double the average)", in.Property.DaysOnMarket),
			models.LevelHigh, "Seller likely experiencing market fatigue and carrying costs", p.TimeHighPoints)
	case domRatio > p.TimeModerateMultiple:
		add(models.LeverageTime,
			fmt.Sprintf("Property has been on the market for %d days (above average)", in.Property.DaysOnMarket),
			models.LevelModerate, "Seller may be becoming concerned about selling timeline", p.TimeModeratePoints)
	}

	switch in.Market.MarketType() {
	case models.MarketTypeBuyer:
		add(models.LeverageMarket, "Current market favors buyers",
			models.LevelHigh, "Reduced competition and more negotiating power", p.BuyerMarketPoints)
	case models.MarketTypeBalanced:
		add(models.LeverageMarket, "Market is balanced between buyers and sellers",
			models.LevelModerate, "Fair negotiation environment with reasonable flexibility", p.BalancedMarketPoints)
	}

	condition := propertyCondition(in)
	switch {
	case condition.NeedsWork():
		add(models.LeverageCondition, fmt.Sprintf("Property is in %s condition", condition),
			models.LevelHigh, "Repairs and renovations needed, justifying lower offer", p.PoorConditionPoints)
	case condition == models.ConditionGood:
		add(models.LeverageCondition, "Property is in good condition but may need some updates",
			models.LevelLow, "Minor improvements needed, potential for small concessions", p.GoodConditionPoints)
	}

	if scenario, ok := in.Investment.Scenario(p.CashFlowScenario); ok && scenario.MonthlyCashFlow < 0 {
		add(models.LeverageInvestment, "Property has negative cash flow at current price",
			models.LevelHigh, "Price reduction needed to achieve positive cash flow", p.NegativeCashFlowPoints)
	}

	if cost := renovationCost(in); cost > 0 {
		switch {
		case cost > finalValue*p.RenovationHighShare:
			add(models.LeverageRenovation,
				fmt.Sprintf("Property needs significant renovations (estimated %s)", dollars(cost)),
				models.LevelHigh, "Renovation costs justify lower purchase price or seller credits", p.RenovationHighPoints)
		case cost > finalValue*p.RenovationModerateShare:
			add(models.LeverageRenovation,
				fmt.Sprintf("Property needs moderate renovations (estimated %s)", dollars(cost)),
				models.LevelModerate, "Renovation costs justify modest price reduction or seller credits", p.RenovationModeratePoints)
		}
	}

	score = finance.Clamp(score, 0, 100)
	leverage := models.BuyerLeverage{
		Score:          finance.Round(score, 1),
		Level:          levelFor(score, p.HighThreshold, p.ModerateThreshold),
		LeveragePoints: points,
	}
	if len(points) > 0 {
		primary := points[0]
		leverage.PrimaryLeverage = &primary
	}
	if len(points) > 1 {
		secondary := points[1]
		leverage.SecondaryLeverage = &secondary
	}
	return leverage
}

func propertyCondition(in Input) models.Condition {
	if in.Renovation != nil && in.Renovation.PropertyCondition != "" {
		return in.Renovation.PropertyCondition
	}
	return in.Property.Condition
}

func renovationCost(in Input) float64 {
	if in.Renovation == nil {
		return 0
	}
	return in.Renovation.EstimatedRenovationCost
}

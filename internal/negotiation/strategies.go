package negotiation

import (
	"fmt"
	"strings"

	"estatewise/server/config"
	"estatewise/server/internal/finance"
	"estatewise/server/internal/models"
)

type option struct {
	name        string
	description string
}

var (
	contingencyOptions = []option{
		{"Shorten inspection period", "Complete inspection within 5-7 days instead of standard 10-14"},
		{"Limit inspection requests", "Only request repairs for major issues exceeding $1,000"},
		{"Waive appraisal contingency", "Agree to cover gap if appraisal comes in low (with cap)"},
		{"As-is purchase", "Waive inspection contingency entirely (only if property condition is good)"},
	}
	painPointSolutions = []option{
		{"Moving logistics", "Offer to cover moving expenses (up to $3,000)"},
		{"Timing concerns", "Offer leaseback option at below-market rate"},
		{"Unwanted items", "Agree to take furniture or other items seller doesn't want"},
		{"Closing costs", "Offer to cover certain seller closing costs"},
	}
	asIsProcess = []string{
		"Conduct inspection for information only (not for negotiation)",
		"Document all issues thoroughly",
		"Make as-is offer with price accounting for documented issues",
	}
)

func formatOptions(opts []option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.name + " - " + o.description
	}
	return out
}

// DiscountPct is the headline discount off the asking price for the given
// motivation level and market, plus a bonus for stale listings.
func (e *Engine) DiscountPct(level models.Level, marketType models.MarketType, daysOnMarket, avgDaysOnMarket float64) float64 {
	p := e.policy.Pricing
	pair := p.Discounts[string(level)]
	discount := pair.Other
	if marketType == models.MarketTypeBuyer {
		discount = pair.Buyer
	}
	if ratio, ok := finance.Ratio(daysOnMarket, avgDaysOnMarket); ok {
		if bonus, matched := config.Match(p.DaysOnMarketBonus, ratio); matched {
			discount += bonus
		}
	}
	return discount
}

func (e *Engine) priceStrategies(in Input, motivation models.SellerMotivation) []models.NegotiationStrategy {
	p := e.policy.Pricing
	listPrice := askingPrice(in.Property, in.Valuation)
	finalValue := in.Valuation.FinalValue
	marketType := in.Market.MarketType()
	dom := float64(in.Property.DaysOnMarket)
	avg := in.Market.AverageDaysOnMarket()

	discount := e.DiscountPct(motivation.Level, marketType, dom, avg)
	offer := wholeDollars(listPrice * (1 - discount))

	var justification []string
	if listPrice > finalValue {
		justification = append(justification,
			fmt.Sprintf("Property is overpriced by %s based on our valuation", dollars(listPrice-finalValue)))
	}
	if avg > 0 && dom > avg {
		justification = append(justification,
			fmt.Sprintf("Property has been on the market for %d days (above average)", in.Property.DaysOnMarket))
	}
	if propertyCondition(in).NeedsWork() {
		justification = append(justification,
			fmt.Sprintf("Property requires approximately %s in renovations", dollars(renovationCost(in))))
	}

	belowMarket := models.NegotiationStrategy{
		Type:                       models.StrategyPrice,
		Kind:                       models.KindBelowMarketOffer,
		Name:                       "Below-Market Offer with Justification",
		Description:                fmt.Sprintf("Make an offer of %s (approximately %.1f%% below listing price)", dollars(offer), discount*100),
		Justification:              justification,
		OfferPrice:                 models.Float(offer),
		DiscountPercentage:         models.Float(finance.Round(discount*100, 1)),
		ExpectedSuccessProbability: e.SuccessProbability(discount, motivation.Level, marketType),
	}

	initialDiscount := discount * p.IncrementalStartShare
	initialOffer := wholeDollars(listPrice * (1 - initialDiscount))
	incremental := models.NegotiationStrategy{
		Type:        models.StrategyPrice,
		Kind:        models.KindIncrementalNegotiation,
		Name:        "Incremental Negotiation Approach",
		Description: fmt.Sprintf("Start with an offer of %s and be prepared to increase in small increments", dollars(initialOffer)),
		Justification: []string{
			"Starting with a reasonable offer allows room for back-and-forth negotiation",
			"Shows willingness to work with seller while still achieving a good price",
		},
		OfferPrice:                 models.Float(initialOffer),
		InitialOffer:               models.Float(initialOffer),
		DiscountPercentage:         models.Float(finance.Round(initialDiscount*100, 1)),
		MaxPrice:                   models.Float(wholeDollars(listPrice * (1 - discount*p.IncrementalCapShare))),
		Increment:                  models.Float(wholeDollars(listPrice * p.IncrementPct)),
		ExpectedSuccessProbability: e.SuccessProbability(initialDiscount*p.IncrementalProbabilityShare, motivation.Level, marketType),
	}

	baseDiscount := discount * p.TierBaseShare
	baseOffer := wholeDollars(listPrice * (1 - baseDiscount))
	tiers := models.NegotiationStrategy{
		Type:        models.StrategyPrice,
		Kind:        models.KindConditionalPriceTiers,
		Name:        "Conditional Price Tiers",
		Description: "Offer different prices based on conditions that benefit the seller",
		Justification: []string{
			"Gives seller options and control in the negotiation",
			"Links price directly to terms that have value to both parties",
		},
		OfferPrice:         models.Float(baseOffer),
		DiscountPercentage: models.Float(finance.Round(baseDiscount*100, 1)),
		Tiers: []models.PriceTier{
			{
				Name:  "As-Is",
				Price: wholeDollars(listPrice * (1 - baseDiscount*p.TierAsIsMultiplier)),
				Terms: "As-is purchase with no inspection contingency",
			},
			{
				Name:  "Quick Close",
				Price: wholeDollars(listPrice * (1 - baseDiscount*p.TierQuickCloseMultiplier)),
				Terms: fmt.Sprintf("Quick closing (%d days or less)", p.QuickCloseDays),
			},
			{
				Name:  "Standard",
				Price: wholeDollars(listPrice * (1 - baseDiscount*p.TierStandardMultiplier)),
				Terms: "Standard terms with inspection contingency",
			},
		},
		ExpectedSuccessProbability: e.SuccessProbability(baseDiscount*p.TierProbabilityShare, motivation.Level, marketType),
	}

	return []models.NegotiationStrategy{belowMarket, incremental, tiers}
}

func (e *Engine) termsStrategies(in Input, motivation models.SellerMotivation) []models.NegotiationStrategy {
	p := e.policy.Strategies
	listPrice := askingPrice(in.Property, in.Valuation)
	level := motivation.Level

	var closing models.NegotiationStrategy
	if alreadyPurchased(motivation.Factors) {
		closing = models.NegotiationStrategy{
			Description: "Offer flexible closing timeline to accommodate seller's needs",
			Justification: []string{
				"Seller may have already purchased another home and needs specific timing",
				"Flexibility on closing date can be more valuable than price for some sellers",
			},
			Options: formatOptions([]option{
				{"Quick closing", "Close in 14-21 days"},
				{"Delayed closing", "Allow seller to stay in property for 30-60 days after closing"},
				{"Rent-back option", "Allow seller to rent the property back for a specified period"},
			}),
			ExpectedSuccessProbability: p.ClosingTimelinePurchased.For(level),
		}
	} else {
		closing = models.NegotiationStrategy{
			Description: "Offer to close on seller's preferred timeline",
			Justification: []string{
				"Accommodating seller's timeline can be more valuable than a slightly higher offer",
				fmt.Sprintf("Each month of carrying costs for seller is approximately %s",
					dollars(motivation.CarryingCosts.TotalMonthlyWithOpportunity)),
			},
			Options: formatOptions([]option{
				{"Quick closing", "Close in 14-21 days"},
				{"Standard closing", "Close in 30-45 days"},
				{"Extended closing", "Close in 60+ days if seller needs time"},
			}),
			ExpectedSuccessProbability: p.ClosingTimeline.For(level),
		}
	}
	closing.Type = models.StrategyTerms
	closing.Kind = models.KindClosingTimeline
	closing.Name = "Closing Timeline Flexibility"

	contingency := models.NegotiationStrategy{
		Type:        models.StrategyTerms,
		Kind:        models.KindContingencyAdjustments,
		Name:        "Contingency Adjustments",
		Description: "Modify or waive certain contingencies to strengthen offer",
		Justification: []string{
			"Reducing contingencies decreases risk for the seller",
			"Creates cleaner offer that's more likely to close without issues",
		},
		Options:                    formatOptions(contingencyOptions),
		ExpectedSuccessProbability: p.Contingency.For(level),
	}

	standard := wholeDollars(listPrice * p.StandardEarnestPct)
	increased := wholeDollars(listPrice * p.StrongEarnestPct)
	earnest := models.NegotiationStrategy{
		Type: models.StrategyTerms,
		Kind: models.KindEarnestMoney,
		Name: "Earnest Money Optimization",
		Description: fmt.Sprintf("Offer increased earnest money deposit of %s (%g%% of listing price)",
			dollars(increased), finance.Round(p.StrongEarnestPct*100, 2)),
		Justification: []string{
			"Larger earnest money demonstrates financial strength and seriousness",
			"Provides seller with greater confidence in buyer's commitment",
		},
		StandardDeposit:            models.Float(standard),
		IncreasedDeposit:           models.Float(increased),
		ExpectedSuccessProbability: p.EarnestMoney.For(level),
	}

	return []models.NegotiationStrategy{closing, contingency, earnest}
}

func (e *Engine) creativeStrategies(in Input, motivation models.SellerMotivation) []models.NegotiationStrategy {
	p := e.policy.Strategies
	listPrice := askingPrice(in.Property, in.Valuation)
	level := motivation.Level
	condition := propertyCondition(in)
	cost := renovationCost(in)

	var strategies []models.NegotiationStrategy

	if condition.NeedsWork() && cost > 0 {
		credit := wholeDollars(min(cost, listPrice*p.RepairCreditCap))
		strategies = append(strategies, models.NegotiationStrategy{
			Type:        models.StrategyCreative,
			Kind:        models.KindRepairCredits,
			Name:        "Repair Credits Instead of Price Reduction",
			Description: fmt.Sprintf("Request %s in repair credits instead of equivalent price reduction", dollars(credit)),
			Justification: []string{
				"Seller may prefer giving repair credits over reducing price",
				"Maintains higher recorded sale price which benefits neighborhood comps",
				"May have tax advantages for both parties",
			},
			CreditAmount:               models.Float(credit),
			ExpectedSuccessProbability: p.RepairCredits.For(level),
		})
	}

	if condition.NeedsWork() {
		strategies = append(strategies, models.NegotiationStrategy{
			Type:        models.StrategyCreative,
			Kind:        models.KindAsIsPurchase,
			Name:        "As-Is Purchase with Documented Issues",
			Description: "Offer to purchase property as-is after documenting issues through inspection",
			Justification: []string{
				"Eliminates repair negotiations but accounts for issues in initial offer price",
				"Provides clean, simple transaction for seller with no surprises",
				"Reduces seller's risk of deal falling through due to inspection issues",
			},
			Options:                    asIsProcess,
			DiscountNeeded:             models.Float(wholeDollars(cost * p.AsIsBuffer)),
			ExpectedSuccessProbability: p.AsIsPurchase.For(level),
		})
	}

	strategies = append(strategies, models.NegotiationStrategy{
		Type:        models.StrategyCreative,
		Kind:        models.KindSellerPainPoints,
		Name:        "Seller Pain Point Solutions",
		Description: "Identify and address specific seller pain points beyond price",
		Justification: []string{
			"Solving specific problems for the seller can be more valuable than price alone",
			"Creates win-win scenario by addressing seller's unique needs",
		},
		Options:                    formatOptions(painPointSolutions),
		ExpectedSuccessProbability: p.SellerPainPoints.For(level),
	})

	if level == models.LevelHigh {
		sellerNote := wholeDollars(listPrice * p.FinancingSellerShare)
		strategies = append(strategies, models.NegotiationStrategy{
			Type:        models.StrategyCreative,
			Kind:        models.KindSellerFinancing,
			Name:        "Seller Financing Option",
			Description: "Propose seller financing for portion of purchase price",
			Justification: []string{
				"Provides seller with ongoing income stream",
				"Can offer higher interest rate than seller would get from bank deposits",
				"May allow for higher overall purchase price",
			},
			FinancingStructure: &models.FinancingStructure{
				DownPayment:     wholeDollars(listPrice * p.FinancingDownShare),
				BankLoan:        wholeDollars(listPrice * p.FinancingBankShare),
				SellerFinancing: sellerNote,
				SellerNoteTerms: fmt.Sprintf("%d-year term at %g%% interest with balloon payment",
					p.FinancingNoteYears, finance.Round(p.FinancingNoteRate*100, 2)),
				MonthlyPaymentToSeller: wholeDollars(sellerNote * p.FinancingNoteRate / 12),
			},
			ExpectedSuccessProbability: p.SellerFinancing,
		})
	}

	return strategies
}

func alreadyPurchased(factors []string) bool {
	for _, f := range factors {
		if strings.Contains(strings.ToLower(f), "already purchased") {
			return true
		}
	}
	return false
}

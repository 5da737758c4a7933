package negotiation

import (
	"estatewise/server/internal/finance"
	"estatewise/server/internal/models"
)

// roiImpact estimates what a strategy is worth to the buyer. Price
// strategies are measured from their offer; terms and creative strategies
// use the heuristic constants in the ROI policy.
func (e *Engine) roiImpact(s *models.NegotiationStrategy, listPrice float64) models.ROIImpact {
	p := e.policy.ROI
	var impact models.ROIImpact
	if listPrice <= 0 {
		return impact
	}

	// mortgage payment saved per month on a price reduction
	financedSaving := func(reduction float64) float64 {
		return reduction * p.FinancedShare * p.MortgageRate / 12
	}

	switch s.Kind {
	case models.KindBelowMarketOffer, models.KindIncrementalNegotiation, models.KindConditionalPriceTiers:
		if s.OfferPrice == nil {
			break
		}
		reduction := listPrice - *s.OfferPrice
		newPrice := listPrice - reduction
		impact.PurchasePriceImpact = -finance.Round(reduction/listPrice*100, 1)
		impact.TotalSavings = reduction
		impact.MonthlyCashFlowImpact = financedSaving(reduction)
		annual := impact.MonthlyCashFlowImpact * 12
		if coc, ok := finance.Ratio(annual, newPrice*p.DownPaymentShare); ok && coc > 0 {
			impact.CashOnCashImpact = finance.Round(coc*100, 2)
		}
		if capRate, ok := finance.Ratio(annual, newPrice); ok && capRate > 0 {
			impact.CapRateImpact = finance.Round(capRate*100, 2)
		}

	case models.KindClosingTimeline:
		impact.TotalSavings = p.ClosingTimelineSavings
		impact.PurchasePriceImpact = p.ClosingTimelinePriceImpact
		impact.MonthlyCashFlowImpact = p.ClosingTimelineSavings / 12

	case models.KindContingencyAdjustments, models.KindEarnestMoney:
		impact.PurchasePriceImpact = p.TermsPriceImpact
		impact.TotalSavings = listPrice * p.TermsSavingsShare
		impact.MonthlyCashFlowImpact = financedSaving(impact.TotalSavings)

	case models.KindRepairCredits:
		if s.CreditAmount != nil {
			impact.TotalSavings = *s.CreditAmount
		}

	case models.KindAsIsPurchase:
		if s.DiscountNeeded != nil {
			discount := *s.DiscountNeeded
			impact.TotalSavings = discount
			impact.PurchasePriceImpact = -finance.Round(discount/listPrice*100, 1)
			impact.MonthlyCashFlowImpact = financedSaving(discount)
		}

	case models.KindSellerPainPoints:
		saved := listPrice*p.PainPointSavingsShare - p.PainPointCost
		impact.TotalSavings = saved
		impact.PurchasePriceImpact = p.PainPointPriceImpact
		impact.MonthlyCashFlowImpact = financedSaving(saved)

	case models.KindSellerFinancing:
		if s.FinancingStructure != nil {
			saved := s.FinancingStructure.SellerFinancing * p.FinancingInterestSavings
			impact.TotalSavings = saved
			impact.MonthlyCashFlowImpact = saved / 12
		}
	}

	if impact.MonthlyCashFlowImpact > 0 {
		annual := impact.MonthlyCashFlowImpact * 12
		newPrice := listPrice * (1 + impact.PurchasePriceImpact/100)
		if impact.CashOnCashImpact == 0 {
			if coc, ok := finance.Ratio(annual, newPrice*p.DownPaymentShare); ok {
				impact.CashOnCashImpact = finance.Round(coc*100, 2)
			}
		}
		if impact.CapRateImpact == 0 {
			if capRate, ok := finance.Ratio(annual, newPrice); ok {
				impact.CapRateImpact = finance.Round(capRate*100, 2)
			}
		}
	}

	impact.TotalSavings = finance.Cents(impact.TotalSavings)
	impact.MonthlyCashFlowImpact = finance.Cents(impact.MonthlyCashFlowImpact)
	return impact
}

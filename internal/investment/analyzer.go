package investment

import (
	"estatewise/server/config"
	"estatewise/server/internal/finance"
	"estatewise/server/internal/models"
)

const (
	RentSourceMarket   = "market_median"
	RentSourceEstimate = "value_estimate"
)

// Analyzer computes rental and financing metrics for a property value.
type Analyzer struct {
	policy config.InvestmentPolicy
}

func NewAnalyzer(policy config.Policy) *Analyzer {
	return &Analyzer{policy: policy.Investment}
}

// Analyze values the property as a rental at the given price. Ratios with a
// zero denominator are reported as nil or zero with a diagnostic.
func (a *Analyzer) Analyze(value float64, property *models.PropertyRecord, market *models.MarketSnapshot) *models.InvestmentMetrics {
	metrics := &models.InvestmentMetrics{PropertyValue: value}
	if value <= 0 {
		metrics.Diagnostics = append(metrics.Diagnostics, "property value is zero; value based ratios not computed")
	}

	rent, source := a.EstimateRent(value, property, market)
	annualRent := rent * 12
	expenses := a.Expenses(value, annualRent, property)

	noi := annualRent - expenses.Total
	rental := models.RentalAnalysis{
		MonthlyRent: finance.Cents(rent),
		RentSource:  source,
		RentRange: models.Range{
			Low:  finance.Cents(rent * (1 - a.policy.RentRangeBand)),
			High: finance.Cents(rent * (1 + a.policy.RentRangeBand)),
		},
		AnnualRent:         finance.Cents(annualRent),
		OperatingExpenses:  roundExpenses(expenses),
		NetOperatingIncome: finance.Cents(noi),
	}
	if capRate, ok := finance.Ratio(noi, value); ok {
		rental.CapRate = models.Float(finance.Round(capRate*100, 2))
		rental.RentToValueRatio = models.Float(finance.Round(annualRent/value*100, 1))
	}
	if grm, ok := finance.Ratio(value, annualRent); ok {
		rental.GrossRentMultiplier = models.Float(finance.Round(grm, 1))
	} else {
		metrics.Diagnostics = append(metrics.Diagnostics, "rent is zero; gross rent multiplier not computed")
	}
	metrics.RentalAnalysis = rental

	metrics.FinancingScenarios = BuildScenarios(value, rent, expenses.Total, a.policy.Financing, a.policy.LoanTermYears)

	rentShare, _ := finance.Ratio(rent, value)
	expenseShare, _ := finance.Ratio(expenses.Total, annualRent)
	metrics.InvestmentRules = models.InvestmentRules{
		OnePercentRule:   value > 0 && rent >= value*0.01,
		TwoPercentRule:   value > 0 && rent >= value*0.02,
		FiftyPercentRule: expenses.Total <= annualRent*0.5,
		RentToPriceRatio: finance.Round(rentShare*100, 2),
		ExpenseRatio:     finance.Round(expenseShare*100, 2),
	}

	if ref, ok := metrics.FinancingScenarios[a.policy.BreakEvenScenario]; ok {
		if ratio, ok := finance.Ratio(expenses.Total/12+ref.MonthlyMortgage, rent); ok {
			metrics.BreakEvenRatio = models.Float(finance.Round(ratio*100, 2))
		}
	}

	metrics.AppreciationProjections = make(map[string]models.AppreciationProjection, len(a.policy.AppreciationRates))
	for name, rate := range a.policy.AppreciationRates {
		metrics.AppreciationProjections[name] = models.AppreciationProjection{
			AnnualRate:    rate,
			FiveYearValue: finance.Cents(finance.Compound(value, rate, 5)),
			TenYearValue:  finance.Cents(finance.Compound(value, rate, 10)),
		}
	}

	return metrics
}

// EstimateRent prefers the market median rent and otherwise applies the
// rent-to-value heuristic adjusted for property and market type.
func (a *Analyzer) EstimateRent(value float64, property *models.PropertyRecord, market *models.MarketSnapshot) (float64, string) {
	if market != nil && market.MarketMetrics.MedianRent != nil && *market.MarketMetrics.MedianRent > 0 {
		return *market.MarketMetrics.MedianRent, RentSourceMarket
	}

	rent := value * a.policy.RentRate * a.policy.RentMultiplier(property.PropertyType)
	if market != nil {
		rent *= a.policy.MarketRent.For(market.MarketType(), 1.0)
	}
	return rent, RentSourceEstimate
}

// Expenses returns the annual operating expenses.
func (a *Analyzer) Expenses(value, annualRent float64, property *models.PropertyRecord) models.ExpenseBreakdown {
	tax := value * a.policy.TaxRate
	if property.AnnualTaxAmount != nil {
		tax = *property.AnnualTaxAmount
	}
	e := models.ExpenseBreakdown{
		PropertyTax:        tax,
		Insurance:          value * a.policy.InsuranceRate,
		Maintenance:        value * a.policy.MaintenanceRate,
		PropertyManagement: annualRent * a.policy.ManagementRate,
		VacancyAllowance:   annualRent * a.policy.VacancyRate,
		HOA:                property.HOAFee * 12,
	}
	e.Total = e.PropertyTax + e.Insurance + e.Maintenance + e.PropertyManagement + e.VacancyAllowance + e.HOA
	return e
}

// BuildScenarios evaluates each financing term against the same rent and
// expenses. Cash-on-cash return divides by the cash invested, which is the
// full value for an all-cash purchase.
func BuildScenarios(value, monthlyRent, annualExpenses float64, terms []config.FinancingTerm, years int) map[string]models.FinancingScenario {
	scenarios := make(map[string]models.FinancingScenario, len(terms))
	monthlyExpenses := annualExpenses / 12

	for _, term := range terms {
		down := value * term.DownPaymentPct
		loan := value - down
		mortgage := finance.MonthlyPayment(loan, term.InterestRate, years)
		cashFlow := monthlyRent - monthlyExpenses - mortgage
		annual := cashFlow * 12
		coc, _ := finance.Ratio(annual, down)

		scenarios[term.Key] = models.FinancingScenario{
			DownPaymentPct:   term.DownPaymentPct,
			DownPayment:      finance.Cents(down),
			LoanAmount:       finance.Cents(loan),
			InterestRate:     term.InterestRate,
			MonthlyMortgage:  finance.Cents(mortgage),
			MonthlyExpenses:  finance.Cents(monthlyExpenses),
			MonthlyCashFlow:  finance.Cents(cashFlow),
			AnnualCashFlow:   finance.Cents(annual),
			CashOnCashReturn: finance.Round(coc*100, 2),
		}
	}
	return scenarios
}

func roundExpenses(e models.ExpenseBreakdown) models.ExpenseBreakdown {
	return models.ExpenseBreakdown{
		PropertyTax:        finance.Cents(e.PropertyTax),
		Insurance:          finance.Cents(e.Insurance),
		Maintenance:        finance.Cents(e.Maintenance),
		PropertyManagement: finance.Cents(e.PropertyManagement),
		VacancyAllowance:   finance.Cents(e.VacancyAllowance),
		HOA:                finance.Cents(e.HOA),
		Total:              finance.Cents(e.Total),
	}
}

package models

// Financing scenario keys
const (
	ScenarioAllCash               = "all_cash"
	ScenarioTwentyPercentDown     = "twenty_percent_down"
	ScenarioTwentyFivePercentDown = "twenty_five_percent_down"
	ScenarioThirtyPercentDown     = "thirty_percent_down"
)

type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ExpenseBreakdown holds annual operating expenses.
type ExpenseBreakdown struct {
	PropertyTax        float64 `json:"property_tax"`
	Insurance          float64 `json:"insurance"`
	Maintenance        float64 `json:"maintenance"`
	PropertyManagement float64 `json:"property_management"`
	VacancyAllowance   float64 `json:"vacancy_allowance"`
	HOA                float64 `json:"hoa"`
	Total              float64 `json:"total"`
}

type RentalAnalysis struct {
	MonthlyRent         float64          `json:"monthly_rent"`
	RentSource          string           `json:"rent_source"`
	RentRange           Range            `json:"rent_range"`
	AnnualRent          float64          `json:"annual_rent"`
	OperatingExpenses   ExpenseBreakdown `json:"operating_expenses"`
	NetOperatingIncome  float64          `json:"net_operating_income"`
	CapRate             *float64         `json:"cap_rate"`
	GrossRentMultiplier *float64         `json:"gross_rent_multiplier"`
	RentToValueRatio    *float64         `json:"rent_to_value_ratio"`
}

type FinancingScenario struct {
	DownPaymentPct   float64 `json:"down_payment_pct"`
	DownPayment      float64 `json:"down_payment"`
	LoanAmount       float64 `json:"loan_amount"`
	InterestRate     float64 `json:"interest_rate"`
	MonthlyMortgage  float64 `json:"monthly_mortgage"`
	MonthlyExpenses  float64 `json:"monthly_expenses"`
	MonthlyCashFlow  float64 `json:"monthly_cash_flow"`
	AnnualCashFlow   float64 `json:"annual_cash_flow"`
	CashOnCashReturn float64 `json:"cash_on_cash_return"`
}

type InvestmentRules struct {
	OnePercentRule   bool    `json:"one_percent_rule"`
	TwoPercentRule   bool    `json:"two_percent_rule"`
	FiftyPercentRule bool    `json:"fifty_percent_rule"`
	RentToPriceRatio float64 `json:"rent_to_price_ratio"`
	ExpenseRatio     float64 `json:"expense_ratio"`
}

type AppreciationProjection struct {
	AnnualRate    float64 `json:"annual_rate"`
	FiveYearValue float64 `json:"five_year_value"`
	TenYearValue  float64 `json:"ten_year_value"`
}

type InvestmentMetrics struct {
	PropertyValue           float64                           `json:"property_value"`
	RentalAnalysis          RentalAnalysis                    `json:"rental_analysis"`
	FinancingScenarios      map[string]FinancingScenario      `json:"financing_scenarios"`
	InvestmentRules         InvestmentRules                   `json:"investment_rules"`
	BreakEvenRatio          *float64                          `json:"break_even_ratio"`
	AppreciationProjections map[string]AppreciationProjection `json:"appreciation_projections"`
	Diagnostics             []string                          `json:"diagnostics,omitempty"`
}

// Scenario returns the named financing scenario, if it was computed.
func (m *InvestmentMetrics) Scenario(key string) (FinancingScenario, bool) {
	if m == nil {
		return FinancingScenario{}, false
	}
	s, ok := m.FinancingScenarios[key]
	return s, ok
}

type RenovationAnalysis struct {
	PropertyCondition         Condition           `json:"property_condition"`
	RenovationPotential       string              `json:"renovation_potential"`
	EstimatedRenovationCost   float64             `json:"estimated_renovation_cost"`
	PotentialValueIncrease    float64             `json:"potential_value_increase"`
	AfterRenovationValue      float64             `json:"after_renovation_value"`
	RenovationROI             *float64            `json:"renovation_roi"`
	RenovationRecommendations []string            `json:"renovation_recommendations"`
	RenovationProjects        []RenovationProject `json:"renovation_projects"`
}

type RenovationProject struct {
	Project    string  `json:"project"`
	Cost       float64 `json:"cost"`
	ValueAdded float64 `json:"value_added"`
	ROI        float64 `json:"roi"`
}

type ComparableAdjustments struct {
	Bedrooms   float64 `json:"bedrooms"`
	Bathrooms  float64 `json:"bathrooms"`
	SquareFeet float64 `json:"square_feet"`
	YearBuilt  float64 `json:"year_built"`
	Total      float64 `json:"total"`
}

type AdjustedComparable struct {
	Comparable    Comparable            `json:"comparable"`
	Adjustments   ComparableAdjustments `json:"adjustments"`
	AdjustedPrice float64               `json:"adjusted_price"`
	DistanceMiles *float64              `json:"distance_miles,omitempty"`
}

// CMAResult is a comparative market analysis over provider comparables.
type CMAResult struct {
	ComparableProperties []AdjustedComparable `json:"comparable_properties"`
	AverageAdjustedPrice float64              `json:"average_adjusted_price"`
	MedianAdjustedPrice  float64              `json:"median_adjusted_price"`
	PricePerSqftRange    *Range               `json:"price_per_sqft_range,omitempty"`
}

package models

type ValuationStatus string

const (
	StatusOverpriced   ValuationStatus = "Overpriced"
	StatusUnderpriced  ValuationStatus = "Underpriced"
	StatusFairlyPriced ValuationStatus = "Fairly Priced"
	StatusNotListed    ValuationStatus = "Not Listed"
)

type ConfidenceInterval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

type Forecast struct {
	OneYear   float64 `json:"one_year"`
	ThreeYear float64 `json:"three_year"`
	FiveYear  float64 `json:"five_year"`
}

// ValuationEstimate is one source's opinion of value.
type ValuationEstimate struct {
	SourceName         string              `json:"source_name" validate:"required"`
	Value              float64             `json:"value" validate:"gt=0"`
	ConfidenceScore    float64             `json:"confidence_score" validate:"gte=0,lte=100"`
	PricePerSqft       *float64            `json:"price_per_sqft,omitempty" validate:"omitempty,gte=0"`
	ConfidenceInterval *ConfidenceInterval `json:"confidence_interval,omitempty"`
	Forecast           *Forecast           `json:"forecast,omitempty"`
	Method             string              `json:"method,omitempty"`
}

type ValuationSpread struct {
	Absolute   float64 `json:"absolute"`
	Percentage float64 `json:"percentage"`
}

type MarketAlignment struct {
	PriceToValueRatio *float64 `json:"price_to_value_ratio"`
	MarketPosition    string   `json:"market_position"`
	NegotiationMargin float64  `json:"negotiation_margin"`
}

type TrendImpact struct {
	CurrentGrowthRate           float64 `json:"current_growth_rate"`
	ProjectedAnnualAppreciation float64 `json:"projected_annual_appreciation"`
	ValueInOneYear              float64 `json:"value_in_one_year"`
	ValueInFiveYears            float64 `json:"value_in_five_years"`
}

// InvestmentPotential is the quick rental screen attached to a valuation.
type InvestmentPotential struct {
	EstimatedMonthlyRent float64 `json:"estimated_monthly_rent"`
	MonthlyExpenses      float64 `json:"monthly_expenses"`
	MonthlyMortgage      float64 `json:"monthly_mortgage"`
	MonthlyCashFlow      float64 `json:"monthly_cash_flow"`
	CapRate              float64 `json:"cap_rate"`
	CashOnCashReturn     float64 `json:"cash_on_cash_return"`
	InvestmentRating     string  `json:"investment_rating"`
}

type AggregatedValuation struct {
	FinalValue          float64              `json:"final_value"`
	ConfidenceScore     float64              `json:"confidence_score"`
	ConfidenceInterval  ConfidenceInterval   `json:"confidence_interval"`
	PricePerSqft        *float64             `json:"price_per_sqft"`
	ValuationSpread     ValuationSpread      `json:"valuation_spread"`
	ValuationStatus     ValuationStatus      `json:"valuation_status"`
	ListingPrice        *float64             `json:"listing_price,omitempty"`
	Forecast            *Forecast            `json:"forecast,omitempty"`
	Sources             []ValuationEstimate  `json:"sources"`
	MarketAlignment     MarketAlignment      `json:"market_alignment"`
	MarketPosition      string               `json:"market_position"`
	PriceToMarketRatio  *float64             `json:"price_to_market_ratio"`
	MarketTrendImpact   *TrendImpact         `json:"market_trend_impact,omitempty"`
	InvestmentPotential *InvestmentPotential `json:"investment_potential,omitempty"`
	Diagnostics         []string             `json:"diagnostics,omitempty"`
}

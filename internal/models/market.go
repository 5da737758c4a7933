package models

type MarketType string

const (
	MarketTypeBuyer    MarketType = "buyer"
	MarketTypeBalanced MarketType = "balanced"
	MarketTypeSeller   MarketType = "seller"
)

func (t MarketType) Valid() bool {
	switch t {
	case MarketTypeBuyer, MarketTypeBalanced, MarketTypeSeller:
		return true
	}
	return false
}

type MarketCycle string

const (
	CycleExpansion        MarketCycle = "Expansion"
	CycleLateExpansion    MarketCycle = "Late Expansion"
	CycleEarlyContraction MarketCycle = "Early Contraction"
	CycleContraction      MarketCycle = "Contraction"
)

func (c MarketCycle) Valid() bool {
	switch c {
	case CycleExpansion, CycleLateExpansion, CycleEarlyContraction, CycleContraction:
		return true
	}
	return false
}

// Declining reports whether the cycle phase favors motivated sellers.
func (c MarketCycle) Declining() bool {
	return c == CycleEarlyContraction || c == CycleContraction
}

// MarketStats are the raw statistics a provider returns for a location.
// Optional figures are nil when the source has no data.
type MarketStats struct {
	Location          Location      `json:"location"`
	MedianPrice       *float64      `json:"median_price,omitempty" validate:"omitempty,gte=0"`
	DaysOnMarket      *float64      `json:"days_on_market,omitempty" validate:"omitempty,gte=0"`
	MonthsOfInventory *float64      `json:"months_of_inventory,omitempty" validate:"omitempty,gte=0"`
	PriceGrowthRate   *float64      `json:"price_growth_rate,omitempty"`
	SaleToListRatio   *float64      `json:"sale_to_list_ratio,omitempty" validate:"omitempty,gte=0"`
	VacancyRate       *float64      `json:"vacancy_rate,omitempty" validate:"omitempty,gte=0,lte=1"`
	MedianIncome      *float64      `json:"median_income,omitempty" validate:"omitempty,gte=0"`
	MedianRent        *float64      `json:"median_rent,omitempty" validate:"omitempty,gte=0"`
	Neighborhood      *Neighborhood `json:"neighborhood,omitempty"`
}

type Neighborhood struct {
	Population     int     `json:"population,omitempty"`
	MedianAge      float64 `json:"median_age,omitempty"`
	EmploymentRate float64 `json:"employment_rate,omitempty"`
	SchoolRating   float64 `json:"school_rating,omitempty"`
	CrimeIndex     float64 `json:"crime_index,omitempty"`
	WalkScore      float64 `json:"walk_score,omitempty"`
}

type MarketMetrics struct {
	MedianPrice       float64  `json:"median_price"`
	DaysOnMarket      float64  `json:"days_on_market"`
	PriceGrowthRate   float64  `json:"price_growth_rate"`
	MonthsOfInventory float64  `json:"months_of_inventory"`
	SaleToListRatio   float64  `json:"sale_to_list_ratio"`
	AbsorptionRate    *float64 `json:"absorption_rate"`
	VacancyRate       *float64 `json:"vacancy_rate"`
	MedianIncome      *float64 `json:"median_income"`
	PriceToIncome     *float64 `json:"price_to_income"`
	MedianRent        *float64 `json:"median_rent"`
}

type SupplyDemand struct {
	MarketType       MarketType `json:"market_type"`
	BuyerCompetition string     `json:"buyer_competition"`
	DemandLevel      string     `json:"demand_level"`
	SupplyLevel      string     `json:"supply_level"`
}

type CycleAnalysis struct {
	CyclePosition         MarketCycle `json:"cycle_position"`
	Description           string      `json:"description"`
	RecommendedStrategies []string    `json:"recommended_strategies"`
}

// MarketStrength sub-scores are nil when their inputs were unavailable;
// Score averages the ones that are present.
type MarketStrength struct {
	Score           float64  `json:"score"`
	PriceMomentum   float64  `json:"price_momentum"`
	SupplyTightness *float64 `json:"supply_tightness"`
	Affordability   *float64 `json:"affordability"`
}

type MarketSnapshot struct {
	Location       Location       `json:"location"`
	MarketMetrics  MarketMetrics  `json:"market_metrics"`
	SupplyDemand   SupplyDemand   `json:"supply_demand"`
	MarketCycle    CycleAnalysis  `json:"market_cycle"`
	MarketStrength MarketStrength `json:"market_strength"`
	Neighborhood   *Neighborhood  `json:"neighborhood,omitempty"`
	Diagnostics    []string       `json:"diagnostics,omitempty"`
}

func (m *MarketSnapshot) MarketType() MarketType {
	return m.SupplyDemand.MarketType
}

func (m *MarketSnapshot) Cycle() MarketCycle {
	return m.MarketCycle.CyclePosition
}

func (m *MarketSnapshot) AverageDaysOnMarket() float64 {
	return m.MarketMetrics.DaysOnMarket
}

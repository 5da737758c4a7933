package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"estatewise/server/internal/models"
)

// Tier awards Points when a measured value exceeds Threshold. Tier lists are
// evaluated in order and the first match wins.
type Tier struct {
	Threshold float64 `json:"threshold" toml:"threshold"`
	Points    float64 `json:"points" toml:"points"`
}

// LevelTable maps a motivation level (low, moderate, high) to a value.
type LevelTable map[string]float64

func (t LevelTable) For(level models.Level) float64 {
	return t[string(level)]
}

// MarketTable maps a market type (buyer, balanced, seller) to a value.
type MarketTable map[string]float64

// For returns the value for the market type, or fallback when unset.
func (t MarketTable) For(marketType models.MarketType, fallback float64) float64 {
	if v, ok := t[string(marketType)]; ok {
		return v
	}
	return fallback
}

// Policy collects every tunable coefficient used by the scoring pipeline.
type Policy struct {
	Valuation   ValuationPolicy   `json:"valuation" toml:"valuation"`
	Market      MarketPolicy      `json:"market" toml:"market"`
	Investment  InvestmentPolicy  `json:"investment" toml:"investment"`
	Renovation  RenovationPolicy  `json:"renovation" toml:"renovation"`
	Comparables ComparablesPolicy `json:"comparables" toml:"comparables"`
	Negotiation NegotiationPolicy `json:"negotiation" toml:"negotiation"`
}

type ValuationPolicy struct {
	StatusBand         float64 `json:"status_band" toml:"status_band"`
	AlignmentBand      float64 `json:"alignment_band" toml:"alignment_band"`
	MarketPositionBand float64 `json:"market_position_band" toml:"market_position_band"`

	// quick rental screen attached to every valuation
	ScreenRentRate       float64 `json:"screen_rent_rate" toml:"screen_rent_rate"`
	ScreenTaxRate        float64 `json:"screen_tax_rate" toml:"screen_tax_rate"`
	ScreenInsuranceRate  float64 `json:"screen_insurance_rate" toml:"screen_insurance_rate"`
	ScreenDownPayment    float64 `json:"screen_down_payment" toml:"screen_down_payment"`
	ScreenMortgageRate   float64 `json:"screen_mortgage_rate" toml:"screen_mortgage_rate"`
	ScreenTermYears      int     `json:"screen_term_years" toml:"screen_term_years"`
	RatingExcellentAbove float64 `json:"rating_excellent_above" toml:"rating_excellent_above"`
	RatingGoodAbove      float64 `json:"rating_good_above" toml:"rating_good_above"`
	RatingFairAbove      float64 `json:"rating_fair_above" toml:"rating_fair_above"`
}

// CycleRule matches when days on market and inventory are below their caps
// and growth exceeds MinGrowth.
type CycleRule struct {
	Phase           models.MarketCycle `json:"phase" toml:"phase"`
	MaxDaysOnMarket float64            `json:"max_days_on_market" toml:"max_days_on_market"`
	MaxInventory    float64            `json:"max_inventory" toml:"max_inventory"`
	MinGrowth       float64            `json:"min_growth" toml:"min_growth"`
}

type MarketPolicy struct {
	SellerInventoryBelow   float64     `json:"seller_inventory_below" toml:"seller_inventory_below"`
	BuyerInventoryAbove    float64     `json:"buyer_inventory_above" toml:"buyer_inventory_above"`
	CycleRules             []CycleRule `json:"cycle_rules" toml:"cycle_rules"`
	MomentumOffset         float64     `json:"momentum_offset" toml:"momentum_offset"`
	MomentumScale          float64     `json:"momentum_scale" toml:"momentum_scale"`
	AffordabilityBenchmark float64     `json:"affordability_benchmark" toml:"affordability_benchmark"`
}

type FinancingTerm struct {
	Key            string  `json:"key" toml:"key"`
	DownPaymentPct float64 `json:"down_payment_pct" toml:"down_payment_pct"`
	InterestRate   float64 `json:"interest_rate" toml:"interest_rate"`
}

type InvestmentPolicy struct {
	RentRate          float64            `json:"rent_rate" toml:"rent_rate"`
	PropertyTypeRent  map[string]float64 `json:"property_type_rent" toml:"property_type_rent"`
	MarketRent        MarketTable        `json:"market_rent" toml:"market_rent"`
	RentRangeBand     float64            `json:"rent_range_band" toml:"rent_range_band"`
	TaxRate           float64            `json:"tax_rate" toml:"tax_rate"`
	InsuranceRate     float64            `json:"insurance_rate" toml:"insurance_rate"`
	MaintenanceRate   float64            `json:"maintenance_rate" toml:"maintenance_rate"`
	ManagementRate    float64            `json:"management_rate" toml:"management_rate"`
	VacancyRate       float64            `json:"vacancy_rate" toml:"vacancy_rate"`
	LoanTermYears     int                `json:"loan_term_years" toml:"loan_term_years"`
	Financing         []FinancingTerm    `json:"financing" toml:"financing"`
	BreakEvenScenario string             `json:"break_even_scenario" toml:"break_even_scenario"`
	AppreciationRates map[string]float64 `json:"appreciation_rates" toml:"appreciation_rates"`
}

// RentMultiplier returns the rent adjustment for a property type.
func (p InvestmentPolicy) RentMultiplier(t models.PropertyType) float64 {
	if m, ok := p.PropertyTypeRent[string(t)]; ok {
		return m
	}
	return 1.0
}

type RenovationProject struct {
	Name        string  `json:"name" toml:"name"`
	CostPerSqft float64 `json:"cost_per_sqft" toml:"cost_per_sqft"`
	AreaShare   float64 `json:"area_share" toml:"area_share"`
	ValueFactor float64 `json:"value_factor" toml:"value_factor"`
	// major projects are skipped for Very Good and Excellent properties
	Major bool `json:"major" toml:"major"`
}

type RenovationPolicy struct {
	CostPerSqft        map[string]float64  `json:"cost_per_sqft" toml:"cost_per_sqft"`
	DefaultCostPerSqft float64             `json:"default_cost_per_sqft" toml:"default_cost_per_sqft"`
	ValueUplift        map[string]float64  `json:"value_uplift" toml:"value_uplift"`
	DefaultValueUplift float64             `json:"default_value_uplift" toml:"default_value_uplift"`
	Projects           []RenovationProject `json:"projects" toml:"projects"`
}

type ComparablesPolicy struct {
	BedroomAdjustment    float64 `json:"bedroom_adjustment" toml:"bedroom_adjustment"`
	BathroomAdjustment   float64 `json:"bathroom_adjustment" toml:"bathroom_adjustment"`
	SquareFootAdjustment float64 `json:"square_foot_adjustment" toml:"square_foot_adjustment"`
	YearBuiltAdjustment  float64 `json:"year_built_adjustment" toml:"year_built_adjustment"`
}

type NegotiationPolicy struct {
	Motivation  MotivationPolicy  `json:"motivation" toml:"motivation"`
	Leverage    LeveragePolicy    `json:"leverage" toml:"leverage"`
	Pricing     PricingPolicy     `json:"pricing" toml:"pricing"`
	Strategies  StrategyPolicy    `json:"strategies" toml:"strategies"`
	ROI         ROIPolicy         `json:"roi" toml:"roi"`
	Ranking     RankingPolicy     `json:"ranking" toml:"ranking"`
	Probability ProbabilityPolicy `json:"probability" toml:"probability"`
}

type MotivationPolicy struct {
	BaseScore         float64 `json:"base_score" toml:"base_score"`
	HighThreshold     float64 `json:"high_threshold" toml:"high_threshold"`
	ModerateThreshold float64 `json:"moderate_threshold" toml:"moderate_threshold"`

	// thresholds are multiples of the market's average days on market
	DaysOnMarketTiers []Tier  `json:"days_on_market_tiers" toml:"days_on_market_tiers"`
	FastSaleMultiple  float64 `json:"fast_sale_multiple" toml:"fast_sale_multiple"`
	FastSalePoints    float64 `json:"fast_sale_points" toml:"fast_sale_points"`

	MultipleCutPoints float64 `json:"multiple_cut_points" toml:"multiple_cut_points"`
	SingleCutPoints   float64 `json:"single_cut_points" toml:"single_cut_points"`
	ReductionTiers    []Tier  `json:"reduction_tiers" toml:"reduction_tiers"`
	// reductions above this percentage count as two cuts when the count is unknown
	MultipleCutReduction float64 `json:"multiple_cut_reduction" toml:"multiple_cut_reduction"`

	MarketPoints         MarketTable `json:"market_points" toml:"market_points"`
	DecliningCyclePoints float64     `json:"declining_cycle_points" toml:"declining_cycle_points"`
	ExpansionPoints      float64     `json:"expansion_points" toml:"expansion_points"`
	WinterMonths         []int       `json:"winter_months" toml:"winter_months"`

	SimulatedCutProbability float64 `json:"simulated_cut_probability" toml:"simulated_cut_probability"`
	SimulatedMarkupMin      float64 `json:"simulated_markup_min" toml:"simulated_markup_min"`
	SimulatedMarkupMax      float64 `json:"simulated_markup_max" toml:"simulated_markup_max"`

	CarryingLoanToValue    float64 `json:"carrying_loan_to_value" toml:"carrying_loan_to_value"`
	CarryingMortgageRate   float64 `json:"carrying_mortgage_rate" toml:"carrying_mortgage_rate"`
	CarryingTermYears      int     `json:"carrying_term_years" toml:"carrying_term_years"`
	CarryingTaxRate        float64 `json:"carrying_tax_rate" toml:"carrying_tax_rate"`
	CarryingInsuranceRate  float64 `json:"carrying_insurance_rate" toml:"carrying_insurance_rate"`
	CarryingUtilities      float64 `json:"carrying_utilities" toml:"carrying_utilities"`
	CarryingMaintenance    float64 `json:"carrying_maintenance" toml:"carrying_maintenance"`
	CarryingEquityShare    float64 `json:"carrying_equity_share" toml:"carrying_equity_share"`
	CarryingOpportunityPct float64 `json:"carrying_opportunity_pct" toml:"carrying_opportunity_pct"`
}

type LeveragePolicy struct {
	BaseScore         float64 `json:"base_score" toml:"base_score"`
	HighThreshold     float64 `json:"high_threshold" toml:"high_threshold"`
	ModerateThreshold float64 `json:"moderate_threshold" toml:"moderate_threshold"`

	PriceHighRatio      float64 `json:"price_high_ratio" toml:"price_high_ratio"`
	PriceHighPoints     float64 `json:"price_high_points" toml:"price_high_points"`
	PriceModerateRatio  float64 `json:"price_moderate_ratio" toml:"price_moderate_ratio"`
	PriceModeratePoints float64 `json:"price_moderate_points" toml:"price_moderate_points"`

	TimeHighMultiple     float64 `json:"time_high_multiple" toml:"time_high_multiple"`
	TimeHighPoints       float64 `json:"time_high_points" toml:"time_high_points"`
	TimeModerateMultiple float64 `json:"time_moderate_multiple" toml:"time_moderate_multiple"`
	TimeModeratePoints   float64 `json:"time_moderate_points" toml:"time_moderate_points"`

	BuyerMarketPoints    float64 `json:"buyer_market_points" toml:"buyer_market_points"`
	BalancedMarketPoints float64 `json:"balanced_market_points" toml:"balanced_market_points"`

	PoorConditionPoints float64 `json:"poor_condition_points" toml:"poor_condition_points"`
	GoodConditionPoints float64 `json:"good_condition_points" toml:"good_condition_points"`

	NegativeCashFlowPoints float64 `json:"negative_cash_flow_points" toml:"negative_cash_flow_points"`
	CashFlowScenario       string  `json:"cash_flow_scenario" toml:"cash_flow_scenario"`

	RenovationHighShare      float64 `json:"renovation_high_share" toml:"renovation_high_share"`
	RenovationHighPoints     float64 `json:"renovation_high_points" toml:"renovation_high_points"`
	RenovationModerateShare  float64 `json:"renovation_moderate_share" toml:"renovation_moderate_share"`
	RenovationModeratePoints float64 `json:"renovation_moderate_points" toml:"renovation_moderate_points"`
}

// DiscountPair holds the discount used in a buyer's market and in any other market.
type DiscountPair struct {
	Buyer float64 `json:"buyer" toml:"buyer"`
	Other float64 `json:"other" toml:"other"`
}

type PricingPolicy struct {
	Discounts map[string]DiscountPair `json:"discounts" toml:"discounts"`
	// keyed by multiples of average days on market, first match wins
	DaysOnMarketBonus []Tier `json:"days_on_market_bonus" toml:"days_on_market_bonus"`

	IncrementalStartShare       float64 `json:"incremental_start_share" toml:"incremental_start_share"`
	IncrementalCapShare         float64 `json:"incremental_cap_share" toml:"incremental_cap_share"`
	IncrementPct                float64 `json:"increment_pct" toml:"increment_pct"`
	IncrementalProbabilityShare float64 `json:"incremental_probability_share" toml:"incremental_probability_share"`

	TierBaseShare            float64 `json:"tier_base_share" toml:"tier_base_share"`
	TierAsIsMultiplier       float64 `json:"tier_as_is_multiplier" toml:"tier_as_is_multiplier"`
	TierQuickCloseMultiplier float64 `json:"tier_quick_close_multiplier" toml:"tier_quick_close_multiplier"`
	TierStandardMultiplier   float64 `json:"tier_standard_multiplier" toml:"tier_standard_multiplier"`
	TierProbabilityShare     float64 `json:"tier_probability_share" toml:"tier_probability_share"`
	QuickCloseDays           int     `json:"quick_close_days" toml:"quick_close_days"`

	CompromiseMarkup float64 `json:"compromise_markup" toml:"compromise_markup"`
}

type StrategyPolicy struct {
	ClosingTimeline          LevelTable `json:"closing_timeline" toml:"closing_timeline"`
	ClosingTimelinePurchased LevelTable `json:"closing_timeline_purchased" toml:"closing_timeline_purchased"`
	Contingency              LevelTable `json:"contingency" toml:"contingency"`
	EarnestMoney             LevelTable `json:"earnest_money" toml:"earnest_money"`
	RepairCredits            LevelTable `json:"repair_credits" toml:"repair_credits"`
	AsIsPurchase             LevelTable `json:"as_is_purchase" toml:"as_is_purchase"`
	SellerPainPoints         LevelTable `json:"seller_pain_points" toml:"seller_pain_points"`
	SellerFinancing          float64    `json:"seller_financing" toml:"seller_financing"`

	StandardEarnestPct float64 `json:"standard_earnest_pct" toml:"standard_earnest_pct"`
	StrongEarnestPct   float64 `json:"strong_earnest_pct" toml:"strong_earnest_pct"`
	RepairCreditCap    float64 `json:"repair_credit_cap" toml:"repair_credit_cap"`
	AsIsBuffer         float64 `json:"as_is_buffer" toml:"as_is_buffer"`

	FinancingDownShare   float64 `json:"financing_down_share" toml:"financing_down_share"`
	FinancingBankShare   float64 `json:"financing_bank_share" toml:"financing_bank_share"`
	FinancingSellerShare float64 `json:"financing_seller_share" toml:"financing_seller_share"`
	FinancingNoteRate    float64 `json:"financing_note_rate" toml:"financing_note_rate"`
	FinancingNoteYears   int     `json:"financing_note_years" toml:"financing_note_years"`
}

type ROIPolicy struct {
	FinancedShare    float64 `json:"financed_share" toml:"financed_share"`
	MortgageRate     float64 `json:"mortgage_rate" toml:"mortgage_rate"`
	DownPaymentShare float64 `json:"down_payment_share" toml:"down_payment_share"`

	ClosingTimelineSavings     float64 `json:"closing_timeline_savings" toml:"closing_timeline_savings"`
	ClosingTimelinePriceImpact float64 `json:"closing_timeline_price_impact" toml:"closing_timeline_price_impact"`
	TermsPriceImpact           float64 `json:"terms_price_impact" toml:"terms_price_impact"`
	TermsSavingsShare          float64 `json:"terms_savings_share" toml:"terms_savings_share"`
	PainPointSavingsShare      float64 `json:"pain_point_savings_share" toml:"pain_point_savings_share"`
	PainPointCost              float64 `json:"pain_point_cost" toml:"pain_point_cost"`
	PainPointPriceImpact       float64 `json:"pain_point_price_impact" toml:"pain_point_price_impact"`
	FinancingInterestSavings   float64 `json:"financing_interest_savings" toml:"financing_interest_savings"`
}

type RankingPolicy struct {
	BaseScore         float64 `json:"base_score" toml:"base_score"`
	SavingsTiers      []Tier  `json:"savings_tiers" toml:"savings_tiers"`
	CashOnCashTiers   []Tier  `json:"cash_on_cash_tiers" toml:"cash_on_cash_tiers"`
	ProbabilityWeight float64 `json:"probability_weight" toml:"probability_weight"`
	MarketBonus       float64 `json:"market_bonus" toml:"market_bonus"`
	MotivationBonus   float64 `json:"motivation_bonus" toml:"motivation_bonus"`
}

// ProbabilityBucket applies to discounts up to and including MaxDiscount.
type ProbabilityBucket struct {
	MaxDiscount float64 `json:"max_discount" toml:"max_discount"`
	Probability float64 `json:"probability" toml:"probability"`
}

type ProbabilityPolicy struct {
	Buckets            []ProbabilityBucket `json:"buckets" toml:"buckets"`
	DefaultProbability float64             `json:"default_probability" toml:"default_probability"`
	MotivationFactor   LevelTable          `json:"motivation_factor" toml:"motivation_factor"`
	MarketFactor       MarketTable         `json:"market_factor" toml:"market_factor"`
	Min                float64             `json:"min" toml:"min"`
	Max                float64             `json:"max" toml:"max"`
}

// DefaultPolicy returns the stock coefficients.
func DefaultPolicy() Policy {
	return Policy{
		Valuation: ValuationPolicy{
			StatusBand:           0.05,
			AlignmentBand:        0.05,
			MarketPositionBand:   0.10,
			ScreenRentRate:       0.005,
			ScreenTaxRate:        0.01,
			ScreenInsuranceRate:  0.005,
			ScreenDownPayment:    0.20,
			ScreenMortgageRate:   6.5,
			ScreenTermYears:      30,
			RatingExcellentAbove: 8,
			RatingGoodAbove:      6,
			RatingFairAbove:      4,
		},
		Market: MarketPolicy{
			SellerInventoryBelow: 3,
			BuyerInventoryAbove:  6,
			CycleRules: []CycleRule{
				{Phase: models.CycleExpansion, MaxDaysOnMarket: 20, MaxInventory: 2, MinGrowth: 0.06},
				{Phase: models.CycleLateExpansion, MaxDaysOnMarket: 30, MaxInventory: 4, MinGrowth: 0.03},
				{Phase: models.CycleEarlyContraction, MaxDaysOnMarket: 45, MaxInventory: 6, MinGrowth: 0},
			},
			MomentumOffset:         0.1,
			MomentumScale:          1000,
			AffordabilityBenchmark: 3.0,
		},
		Investment: InvestmentPolicy{
			RentRate: 0.005,
			PropertyTypeRent: map[string]float64{
				string(models.PropertyTypeCondo):     1.1,
				string(models.PropertyTypeTownhouse): 1.05,
			},
			MarketRent: MarketTable{
				string(models.MarketTypeSeller): 1.1,
				string(models.MarketTypeBuyer):  0.9,
			},
			RentRangeBand:   0.1,
			TaxRate:         0.01,
			InsuranceRate:   0.005,
			MaintenanceRate: 0.01,
			ManagementRate:  0.10,
			VacancyRate:     0.05,
			LoanTermYears:   30,
			Financing: []FinancingTerm{
				{Key: models.ScenarioAllCash, DownPaymentPct: 1.0, InterestRate: 0},
				{Key: models.ScenarioTwentyPercentDown, DownPaymentPct: 0.20, InterestRate: 6.25},
				{Key: models.ScenarioTwentyFivePercentDown, DownPaymentPct: 0.25, InterestRate: 6.15},
				{Key: models.ScenarioThirtyPercentDown, DownPaymentPct: 0.30, InterestRate: 6.0},
			},
			BreakEvenScenario: models.ScenarioTwentyPercentDown,
			AppreciationRates: map[string]float64{
				"conservative": 0.02,
				"moderate":     0.03,
				"optimistic":   0.04,
			},
		},
		Renovation: RenovationPolicy{
			CostPerSqft: map[string]float64{
				string(models.ConditionPoor): 115,
				string(models.ConditionFair): 75,
				string(models.ConditionGood): 45,
			},
			DefaultCostPerSqft: 27.5,
			ValueUplift: map[string]float64{
				string(models.ConditionPoor): 0.30,
				string(models.ConditionFair): 0.20,
				string(models.ConditionGood): 0.10,
			},
			DefaultValueUplift: 0.05,
			Projects: []RenovationProject{
				{Name: "Kitchen Renovation", CostPerSqft: 150, AreaShare: 0.10, ValueFactor: 1.4, Major: true},
				{Name: "Bathroom Renovation", CostPerSqft: 115, AreaShare: 0.05, ValueFactor: 1.35, Major: true},
				{Name: "Flooring Replacement", CostPerSqft: 9.5, AreaShare: 1, ValueFactor: 1.25},
				{Name: "Interior Painting", CostPerSqft: 3, AreaShare: 1, ValueFactor: 2.0},
				{Name: "Landscaping Improvements", CostPerSqft: 2, AreaShare: 1, ValueFactor: 1.75},
			},
		},
		Comparables: ComparablesPolicy{
			BedroomAdjustment:    15000,
			BathroomAdjustment:   10000,
			SquareFootAdjustment: 100,
			YearBuiltAdjustment:  1000,
		},
		Negotiation: defaultNegotiationPolicy(),
	}
}

func defaultNegotiationPolicy() NegotiationPolicy {
	return NegotiationPolicy{
		Motivation: MotivationPolicy{
			BaseScore:         50,
			HighThreshold:     75,
			ModerateThreshold: 40,
			DaysOnMarketTiers: []Tier{
				{Threshold: 2.0, Points: 25},
				{Threshold: 1.5, Points: 15},
				{Threshold: 1.0, Points: 5},
			},
			FastSaleMultiple:     0.5,
			FastSalePoints:       -15,
			MultipleCutPoints:    20,
			SingleCutPoints:      10,
			ReductionTiers:       []Tier{{Threshold: 10, Points: 20}, {Threshold: 5, Points: 10}},
			MultipleCutReduction: 10,
			MarketPoints: MarketTable{
				string(models.MarketTypeBuyer):  15,
				string(models.MarketTypeSeller): -15,
			},
			DecliningCyclePoints:    10,
			ExpansionPoints:         -10,
			WinterMonths:            []int{11, 12, 1, 2},
			SimulatedCutProbability: 0.3,
			SimulatedMarkupMin:      1.05,
			SimulatedMarkupMax:      1.15,
			CarryingLoanToValue:     0.8,
			CarryingMortgageRate:    5.5,
			CarryingTermYears:       30,
			CarryingTaxRate:         0.01,
			CarryingInsuranceRate:   0.005,
			CarryingUtilities:       200,
			CarryingMaintenance:     0.01,
			CarryingEquityShare:     0.2,
			CarryingOpportunityPct:  0.04,
		},
		Leverage: LeveragePolicy{
			BaseScore:                50,
			HighThreshold:            75,
			ModerateThreshold:        40,
			PriceHighRatio:           1.05,
			PriceHighPoints:          15,
			PriceModerateRatio:       1.02,
			PriceModeratePoints:      5,
			TimeHighMultiple:         2.0,
			TimeHighPoints:           15,
			TimeModerateMultiple:     1.0,
			TimeModeratePoints:       10,
			BuyerMarketPoints:        15,
			BalancedMarketPoints:     5,
			PoorConditionPoints:      15,
			GoodConditionPoints:      5,
			NegativeCashFlowPoints:   10,
			CashFlowScenario:         models.ScenarioTwentyPercentDown,
			RenovationHighShare:      0.10,
			RenovationHighPoints:     10,
			RenovationModerateShare:  0.05,
			RenovationModeratePoints: 5,
		},
		Pricing: PricingPolicy{
			Discounts: map[string]DiscountPair{
				string(models.LevelHigh):     {Buyer: 0.12, Other: 0.08},
				string(models.LevelModerate): {Buyer: 0.08, Other: 0.05},
				string(models.LevelLow):      {Buyer: 0.05, Other: 0.03},
			},
			DaysOnMarketBonus:           []Tier{{Threshold: 2.0, Points: 0.03}, {Threshold: 1.0, Points: 0.01}},
			IncrementalStartShare:       0.7,
			IncrementalCapShare:         0.3,
			IncrementPct:                0.01,
			IncrementalProbabilityShare: 0.8,
			TierBaseShare:               0.9,
			TierAsIsMultiplier:          1.2,
			TierQuickCloseMultiplier:    1.1,
			TierStandardMultiplier:      1.0,
			TierProbabilityShare:        0.9,
			QuickCloseDays:              21,
			CompromiseMarkup:            1.03,
		},
		Strategies: StrategyPolicy{
			ClosingTimeline:          LevelTable{"high": 0.7, "moderate": 0.6, "low": 0.5},
			ClosingTimelinePurchased: LevelTable{"high": 0.8, "moderate": 0.7, "low": 0.5},
			Contingency:              LevelTable{"high": 0.75, "moderate": 0.65, "low": 0.55},
			EarnestMoney:             LevelTable{"high": 0.7, "moderate": 0.6, "low": 0.5},
			RepairCredits:            LevelTable{"high": 0.8, "moderate": 0.7, "low": 0.5},
			AsIsPurchase:             LevelTable{"high": 0.75, "moderate": 0.65, "low": 0.45},
			SellerPainPoints:         LevelTable{"high": 0.8, "moderate": 0.7, "low": 0.5},
			SellerFinancing:          0.6,
			StandardEarnestPct:       0.01,
			StrongEarnestPct:         0.03,
			RepairCreditCap:          0.05,
			AsIsBuffer:               1.2,
			FinancingDownShare:       0.2,
			FinancingBankShare:       0.6,
			FinancingSellerShare:     0.2,
			FinancingNoteRate:        0.06,
			FinancingNoteYears:       5,
		},
		ROI: ROIPolicy{
			FinancedShare:              0.8,
			MortgageRate:               0.06,
			DownPaymentShare:           0.2,
			ClosingTimelineSavings:     3000,
			ClosingTimelinePriceImpact: -1.0,
			TermsPriceImpact:           -0.5,
			TermsSavingsShare:          0.005,
			PainPointSavingsShare:      0.01,
			PainPointCost:              2000,
			PainPointPriceImpact:       -1.0,
			FinancingInterestSavings:   0.005,
		},
		Ranking: RankingPolicy{
			BaseScore:         50,
			SavingsTiers:      []Tier{{Threshold: 10000, Points: 20}, {Threshold: 5000, Points: 10}, {Threshold: 1000, Points: 5}},
			CashOnCashTiers:   []Tier{{Threshold: 2, Points: 15}, {Threshold: 1, Points: 10}, {Threshold: 0.5, Points: 5}},
			ProbabilityWeight: 30,
			MarketBonus:       10,
			MotivationBonus:   15,
		},
		Probability: ProbabilityPolicy{
			Buckets: []ProbabilityBucket{
				{MaxDiscount: 0.03, Probability: 0.9},
				{MaxDiscount: 0.05, Probability: 0.8},
				{MaxDiscount: 0.08, Probability: 0.7},
				{MaxDiscount: 0.10, Probability: 0.6},
				{MaxDiscount: 0.15, Probability: 0.4},
			},
			DefaultProbability: 0.3,
			MotivationFactor:   LevelTable{"high": 1.3, "moderate": 1.0, "low": 0.7},
			MarketFactor:       MarketTable{"buyer": 1.2, "balanced": 1.0, "seller": 0.8},
			Min:                0.1,
			Max:                0.95,
		},
	}
}

// LoadPolicy overlays the file at path onto DefaultPolicy. Files ending in
// .toml are decoded as TOML, everything else as JSON. An empty path returns
// the defaults.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return policy, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return policy, fmt.Errorf("failed to read policy file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(absPath), ".toml") {
		err = toml.Unmarshal(data, &policy)
	} else {
		err = json.Unmarshal(data, &policy)
	}
	if err != nil {
		return policy, fmt.Errorf("failed to parse policy file: %w", err)
	}

	if err := policy.Validate(); err != nil {
		return policy, err
	}
	return policy, nil
}

// Validate rejects tables the scorers cannot work with.
func (p Policy) Validate() error {
	if p.Valuation.StatusBand < 0 || p.Valuation.StatusBand >= 1 {
		return fmt.Errorf("%w: valuation.status_band must be in [0,1)", models.ErrValidation)
	}
	if p.Market.SellerInventoryBelow > p.Market.BuyerInventoryAbove {
		return fmt.Errorf("%w: market.seller_inventory_below exceeds buyer_inventory_above", models.ErrValidation)
	}
	if len(p.Investment.Financing) == 0 {
		return fmt.Errorf("%w: investment.financing must list at least one scenario", models.ErrValidation)
	}
	for _, f := range p.Investment.Financing {
		if f.DownPaymentPct <= 0 || f.DownPaymentPct > 1 {
			return fmt.Errorf("%w: financing %s has down payment %.2f outside (0,1]", models.ErrValidation, f.Key, f.DownPaymentPct)
		}
		if f.InterestRate < 0 {
			return fmt.Errorf("%w: financing %s has a negative interest rate", models.ErrValidation, f.Key)
		}
	}
	if p.Investment.LoanTermYears <= 0 {
		return fmt.Errorf("%w: investment.loan_term_years must be positive", models.ErrValidation)
	}
	prob := p.Negotiation.Probability
	if prob.Min < 0 || prob.Max > 1 || prob.Min > prob.Max {
		return fmt.Errorf("%w: probability bounds [%.2f, %.2f] are invalid", models.ErrValidation, prob.Min, prob.Max)
	}
	for i := 1; i < len(prob.Buckets); i++ {
		if prob.Buckets[i].MaxDiscount <= prob.Buckets[i-1].MaxDiscount {
			return fmt.Errorf("%w: probability buckets must be ordered by max_discount", models.ErrValidation)
		}
	}
	for name, tiers := range map[string][]Tier{
		"motivation.days_on_market_tiers": p.Negotiation.Motivation.DaysOnMarketTiers,
		"motivation.reduction_tiers":      p.Negotiation.Motivation.ReductionTiers,
		"pricing.days_on_market_bonus":    p.Negotiation.Pricing.DaysOnMarketBonus,
		"ranking.savings_tiers":           p.Negotiation.Ranking.SavingsTiers,
		"ranking.cash_on_cash_tiers":      p.Negotiation.Ranking.CashOnCashTiers,
	} {
		for i := 1; i < len(tiers); i++ {
			if tiers[i].Threshold >= tiers[i-1].Threshold {
				return fmt.Errorf("%w: %s thresholds must be strictly decreasing", models.ErrValidation, name)
			}
		}
	}
	return nil
}

// Match returns the points of the first tier whose threshold value exceeds.
func Match(tiers []Tier, value float64) (float64, bool) {
	for _, t := range tiers {
		if value > t.Threshold {
			return t.Points, true
		}
	}
	return 0, false
}

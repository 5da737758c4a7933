package models

// Level is the low/moderate/high banding shared by motivation, leverage and
// leverage point strength.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

type CarryingCosts struct {
	Mortgage                    float64 `json:"mortgage"`
	PropertyTax                 float64 `json:"property_tax"`
	Insurance                   float64 `json:"insurance"`
	Utilities                   float64 `json:"utilities"`
	Maintenance                 float64 `json:"maintenance"`
	TotalMonthly                float64 `json:"total_monthly"`
	OpportunityCost             float64 `json:"opportunity_cost"`
	TotalMonthlyWithOpportunity float64 `json:"total_monthly_with_opportunity"`
	CostPerAdditionalMonth      float64 `json:"cost_per_additional_month"`
}

type SellerMotivation struct {
	Score                 float64       `json:"score"`
	Level                 Level         `json:"level"`
	Factors               []string      `json:"factors"`
	CarryingCosts         CarryingCosts `json:"carrying_costs"`
	PriceHistoryKnown     bool          `json:"price_history_known"`
	PriceCuts             int           `json:"price_cuts"`
	PriceReductionPct     float64       `json:"price_reduction_pct"`
	EffectiveDaysOnMarket float64       `json:"effective_days_on_market"`
}

// Leverage point types
const (
	LeveragePrice      = "price"
	LeverageTime       = "time"
	LeverageMarket     = "market"
	LeverageCondition  = "condition"
	LeverageInvestment = "investment"
	LeverageRenovation = "renovation"
)

type LeveragePoint struct {
	Type              string `json:"type"`
	Description       string `json:"description"`
	Strength          Level  `json:"strength"`
	NegotiationImpact string `json:"negotiation_impact"`
}

type BuyerLeverage struct {
	Score             float64         `json:"score"`
	Level             Level           `json:"level"`
	LeveragePoints    []LeveragePoint `json:"leverage_points"`
	PrimaryLeverage   *LeveragePoint  `json:"primary_leverage"`
	SecondaryLeverage *LeveragePoint  `json:"secondary_leverage"`
}

type StrategyType string

const (
	StrategyPrice    StrategyType = "price"
	StrategyTerms    StrategyType = "terms"
	StrategyCreative StrategyType = "creative"
)

// StrategyKind identifies the concrete strategy variant. Script and fallback
// generation switch on it rather than on display names.
type StrategyKind string

const (
	KindBelowMarketOffer       StrategyKind = "below_market_offer"
	KindIncrementalNegotiation StrategyKind = "incremental_negotiation"
	KindConditionalPriceTiers  StrategyKind = "conditional_price_tiers"
	KindClosingTimeline        StrategyKind = "closing_timeline"
	KindContingencyAdjustments StrategyKind = "contingency_adjustments"
	KindEarnestMoney           StrategyKind = "earnest_money"
	KindRepairCredits          StrategyKind = "repair_credits"
	KindAsIsPurchase           StrategyKind = "as_is_purchase"
	KindSellerPainPoints       StrategyKind = "seller_pain_points"
	KindSellerFinancing        StrategyKind = "seller_financing"
)

type ROIImpact struct {
	PurchasePriceImpact   float64 `json:"purchase_price_impact"`
	CashOnCashImpact      float64 `json:"cash_on_cash_impact"`
	CapRateImpact         float64 `json:"cap_rate_impact"`
	TotalSavings          float64 `json:"total_savings"`
	MonthlyCashFlowImpact float64 `json:"monthly_cash_flow_impact"`
}

type PriceTier struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Terms string  `json:"terms"`
}

type FinancingStructure struct {
	DownPayment            float64 `json:"down_payment"`
	BankLoan               float64 `json:"bank_loan"`
	SellerFinancing        float64 `json:"seller_financing"`
	SellerNoteTerms        string  `json:"seller_note_terms"`
	MonthlyPaymentToSeller float64 `json:"monthly_payment_to_seller"`
}

type NegotiationStrategy struct {
	Type                       StrategyType        `json:"type"`
	Kind                       StrategyKind        `json:"kind"`
	Name                       string              `json:"name"`
	Description                string              `json:"description"`
	Justification              []string            `json:"justification,omitempty"`
	OfferPrice                 *float64            `json:"offer_price,omitempty"`
	DiscountPercentage         *float64            `json:"discount_percentage,omitempty"`
	InitialOffer               *float64            `json:"initial_offer,omitempty"`
	MaxPrice                   *float64            `json:"max_price,omitempty"`
	Increment                  *float64            `json:"increment,omitempty"`
	Tiers                      []PriceTier         `json:"tiers,omitempty"`
	Options                    []string            `json:"options,omitempty"`
	CreditAmount               *float64            `json:"credit_amount,omitempty"`
	DiscountNeeded             *float64            `json:"discount_needed,omitempty"`
	StandardDeposit            *float64            `json:"standard_deposit,omitempty"`
	IncreasedDeposit           *float64            `json:"increased_deposit,omitempty"`
	FinancingStructure         *FinancingStructure `json:"financing_structure,omitempty"`
	ExpectedSuccessProbability float64             `json:"expected_success_probability"`
	ROIImpact                  ROIImpact           `json:"roi_impact"`
	Score                      float64             `json:"score"`
	Rank                       int                 `json:"rank"`
}

type NegotiationScript struct {
	Opening   string   `json:"opening"`
	KeyPoints []string `json:"key_points"`
	Closing   string   `json:"closing"`
}

type FallbackOption struct {
	Strategy    string   `json:"strategy"`
	Description string   `json:"description"`
	OfferPrice  *float64 `json:"offer_price,omitempty"`
}

// NegotiationPackage is the final negotiation output handed to report renderers.
type NegotiationPackage struct {
	SellerMotivation    SellerMotivation      `json:"seller_motivation"`
	BuyerLeverage       BuyerLeverage         `json:"buyer_leverage"`
	Strategies          []NegotiationStrategy `json:"strategies"`
	RecommendedStrategy *NegotiationStrategy  `json:"recommended_strategy,omitempty"`
	Script              NegotiationScript     `json:"negotiation_script"`
	FallbackOptions     []FallbackOption      `json:"fallback_options"`
}

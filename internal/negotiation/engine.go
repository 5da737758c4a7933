package negotiation

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"estatewise/server/config"
	"estatewise/server/internal/models"
)

// Input bundles the upstream analysis a negotiation package is built from.
// Investment and Renovation are optional.
type Input struct {
	Property   *models.PropertyRecord
	Market     *models.MarketSnapshot
	Valuation  *models.AggregatedValuation
	Investment *models.InvestmentMetrics
	Renovation *models.RenovationAnalysis
}

// Engine turns an analysed property into ranked negotiation strategies.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	policy config.NegotiationPolicy
	logger *logrus.Logger
	now    func() time.Time

	// only set when missing price history should be simulated
	rngMu sync.Mutex
	rng   *rand.Rand
}

type Option func(*Engine)

// WithClock overrides the clock used for seasonal factors.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithSimulatedPriceHistory makes the motivation scorer invent a price cut
// history for listings without an original list price, drawing from rng.
func WithSimulatedPriceHistory(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEngine(policy config.Policy, opts ...Option) *Engine {
	e := &Engine{
		policy: policy.Negotiation,
		logger: logrus.New(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate runs motivation and leverage scoring, builds every applicable
// strategy, ranks them and attaches a script and fallbacks for the winner.
func (e *Engine) Generate(in Input) (*models.NegotiationPackage, error) {
	if in.Property == nil || in.Market == nil || in.Valuation == nil {
		return nil, models.ValidationError("negotiation requires property, market and valuation data")
	}
	if in.Valuation.FinalValue <= 0 {
		return nil, models.ValidationError("negotiation requires a positive final value, got %.2f", in.Valuation.FinalValue)
	}
	if !in.Market.MarketType().Valid() || !in.Market.Cycle().Valid() {
		return nil, models.ValidationError("negotiation requires a classified market, got type %q and cycle %q",
			in.Market.MarketType(), in.Market.Cycle())
	}

	motivation := e.ScoreMotivation(in.Property, in.Market, in.Valuation.FinalValue)
	leverage := e.ScoreLeverage(in)

	strategies := e.priceStrategies(in, motivation)
	strategies = append(strategies, e.termsStrategies(in, motivation)...)
	strategies = append(strategies, e.creativeStrategies(in, motivation)...)

	listPrice := askingPrice(in.Property, in.Valuation)
	for i := range strategies {
		strategies[i].ROIImpact = e.roiImpact(&strategies[i], listPrice)
	}

	ranked := e.Rank(strategies, motivation.Level, in.Market.MarketType())

	pkg := &models.NegotiationPackage{
		SellerMotivation: motivation,
		BuyerLeverage:    leverage,
		Strategies:       ranked,
		FallbackOptions:  e.BuildFallbacks(ranked),
	}
	if len(ranked) > 0 {
		top := ranked[0]
		pkg.RecommendedStrategy = &top
		pkg.Script = BuildScript(&top)
	} else {
		pkg.Script = BuildScript(nil)
	}

	e.logger.WithFields(logrus.Fields{
		"address":    in.Property.Address.String(),
		"motivation": motivation.Level,
		"leverage":   leverage.Level,
		"strategies": len(ranked),
	}).Debug("Generated negotiation package")

	return pkg, nil
}

// askingPrice is the listing price, or the valuation for unlisted properties.
func askingPrice(property *models.PropertyRecord, valuation *models.AggregatedValuation) float64 {
	if property.IsListed() {
		return *property.ListingPrice
	}
	return valuation.FinalValue
}

func levelFor(score, high, moderate float64) models.Level {
	switch {
	case score >= high:
		return models.LevelHigh
	case score >= moderate:
		return models.LevelModerate
	default:
		return models.LevelLow
	}
}

func dollars(v float64) string {
	return "$" + humanize.Comma(int64(math.Round(v)))
}

// wholeDollars truncates toward zero, the way offers are quoted.
func wholeDollars(v float64) float64 {
	return math.Trunc(v)
}

// Package analysis runs the full valuation and negotiation pipeline for a
// single property address.
package analysis

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"estatewise/server/config"
	"estatewise/server/internal/comparables"
	"estatewise/server/internal/investment"
	"estatewise/server/internal/market"
	"estatewise/server/internal/models"
	"estatewise/server/internal/negotiation"
	"estatewise/server/internal/provider"
	"estatewise/server/internal/renovation"
	"estatewise/server/internal/valuation"
)

// Geocoder resolves coordinates for records that arrive without them.
type Geocoder interface {
	Geocode(ctx context.Context, address models.Address) (models.Location, error)
}

type Service struct {
	provider    provider.PropertyDataProvider
	geocoder    Geocoder
	market      *market.Analyzer
	valuation   *valuation.Aggregator
	investment  *investment.Analyzer
	renovation  *renovation.Estimator
	comparables *comparables.Analyzer
	engine      *negotiation.Engine
	logger      *logrus.Logger
	now         func() time.Time
	rng         *rand.Rand
}

type Option func(*Service)

func WithLogger(logger *logrus.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock fixes the time used for seasonal scoring and result timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithGeocoder enables coordinate lookup for subjects without a location.
func WithGeocoder(g Geocoder) Option {
	return func(s *Service) {
		s.geocoder = g
	}
}

// WithSimulatedPriceHistory seeds a generator used to estimate price cuts
// for listings that report no original list price.
func WithSimulatedPriceHistory(seed int64) Option {
	return func(s *Service) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

func NewService(p provider.PropertyDataProvider, policy config.Policy, opts ...Option) *Service {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	s := &Service{
		provider:    p,
		market:      market.NewAnalyzer(policy),
		valuation:   valuation.NewAggregator(policy),
		investment:  investment.NewAnalyzer(policy),
		renovation:  renovation.NewEstimator(policy),
		comparables: comparables.NewAnalyzer(policy),
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	engineOpts := []negotiation.Option{
		negotiation.WithClock(s.now),
		negotiation.WithLogger(s.logger),
	}
	if s.rng != nil {
		engineOpts = append(engineOpts, negotiation.WithSimulatedPriceHistory(s.rng))
	}
	s.engine = negotiation.NewEngine(policy, engineOpts...)
	return s
}

// AnalyzeProperty runs every stage for rawAddress. Errors wrap the sentinels
// in the models package so callers can classify them with models.ErrorKind.
func (s *Service) AnalyzeProperty(ctx context.Context, rawAddress string) (*models.AnalysisResult, error) {
	address, err := ParseAddress(rawAddress)
	if err != nil {
		return nil, err
	}
	log := s.logger.WithField("address", address.String())

	property, err := s.provider.FetchProperty(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch property: %w", err)
	}
	if err := provider.ValidateProperty(property); err != nil {
		return nil, err
	}

	estimates, err := s.provider.FetchValuations(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch valuations: %w", err)
	}
	if len(estimates) == 0 {
		return nil, models.InsufficientDataError("no valuation estimates for %s", address)
	}
	if err := provider.ValidateValuations(estimates); err != nil {
		return nil, err
	}

	stats, err := s.provider.FetchMarketStats(ctx, property.Address.Location())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market statistics: %w", err)
	}
	if err := provider.ValidateMarketStats(stats); err != nil {
		return nil, err
	}

	snapshot, err := s.market.Analyze(stats)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze market: %w", err)
	}

	value, err := s.valuation.Aggregate(estimates, property)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate valuations: %w", err)
	}
	s.valuation.ApplyMarketContext(value, snapshot)

	metrics := s.investment.Analyze(value.FinalValue, property, snapshot)
	reno := s.renovation.Estimate(value.FinalValue, property)
	cma := s.compare(ctx, property, log)

	pkg, err := s.engine.Generate(negotiation.Input{
		Property:   property,
		Market:     snapshot,
		Valuation:  value,
		Investment: metrics,
		Renovation: &reno,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate negotiation strategies: %w", err)
	}

	log.WithFields(logrus.Fields{
		"valuation":   valuation.Describe(value),
		"market_type": snapshot.MarketType(),
		"strategies":  len(pkg.Strategies),
	}).Info("Property analysis completed")

	return &models.AnalysisResult{
		Address:            address.String(),
		Property:           *property,
		Market:             *snapshot,
		Valuation:          *value,
		InvestmentMetrics:  *metrics,
		RenovationAnalysis: reno,
		CMAResults:         cma,
		Negotiation:        *pkg,
		AnalyzedAt:         s.now(),
	}, nil
}

// compare builds the comparative market analysis. Comparables are optional,
// so failures are logged and the section is left out.
func (s *Service) compare(ctx context.Context, property *models.PropertyRecord, log *logrus.Entry) *models.CMAResult {
	comps, err := provider.FetchComparables(ctx, s.provider, property.Address)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch comparables")
		return nil
	}
	if len(comps) == 0 {
		return nil
	}
	if err := provider.ValidateComparables(comps); err != nil {
		log.WithError(err).Warn("Discarding invalid comparables")
		return nil
	}

	subject := property
	if s.geocoder != nil && (property.Latitude == nil || property.Longitude == nil) {
		loc, err := s.geocoder.Geocode(ctx, property.Address)
		if err != nil {
			log.WithError(err).Warn("Failed to geocode subject property")
		} else {
			located := *property
			located.Latitude = loc.Latitude
			located.Longitude = loc.Longitude
			subject = &located
		}
	}
	return s.comparables.Analyze(subject, comps)
}

// Analyze is the never-failing entry point: every error and panic is turned
// into a structured failure on the outcome.
func (s *Service) Analyze(ctx context.Context, rawAddress string) (outcome models.AnalysisOutcome) {
	outcome.Address = rawAddress

	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(logrus.Fields{
				"address": rawAddress,
				"panic":   r,
			}).Error("Analysis panicked")
			outcome.Success = false
			outcome.Result = nil
			outcome.Error = &models.ErrorInfo{
				Kind:    models.KindInternal,
				Message: fmt.Sprintf("analysis failed unexpectedly: %v", r),
			}
		}
	}()

	result, err := s.AnalyzeProperty(ctx, rawAddress)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"address": rawAddress,
			"kind":    models.ErrorKind(err),
		}).WithError(err).Warn("Property analysis failed")
		outcome.Error = models.NewErrorInfo(err)
		return outcome
	}

	outcome.Success = true
	outcome.Address = result.Address
	outcome.Result = result
	return outcome
}

// GenerateNegotiationPackage builds strategies from analysis the caller
// already holds. Investment and renovation inputs are derived here.
func (s *Service) GenerateNegotiationPackage(property *models.PropertyRecord, snapshot *models.MarketSnapshot, value *models.AggregatedValuation) (*models.NegotiationPackage, error) {
	if property == nil || snapshot == nil || value == nil {
		return nil, models.ValidationError("property, market and valuation are required")
	}
	if value.FinalValue <= 0 {
		return nil, models.ValidationError("valuation final value must be positive, got %.2f", value.FinalValue)
	}
	if err := provider.ValidateProperty(property); err != nil {
		return nil, err
	}
	derived, err := s.market.Classify(snapshot)
	if err != nil {
		return nil, err
	}
	if derived.MarketType() != snapshot.MarketType() || derived.Cycle() != snapshot.Cycle() {
		s.logger.WithFields(logrus.Fields{
			"claimed_market_type": snapshot.MarketType(),
			"market_type":         derived.MarketType(),
			"claimed_cycle":       snapshot.Cycle(),
			"cycle":               derived.Cycle(),
		}).Debug("Market labels re-derived from metrics")
	}

	metrics := s.investment.Analyze(value.FinalValue, property, derived)
	reno := s.renovation.Estimate(value.FinalValue, property)
	return s.engine.Generate(negotiation.Input{
		Property:   property,
		Market:     derived,
		Valuation:  value,
		Investment: metrics,
		Renovation: &reno,
	})
}

package negotiation

import (
	"estatewise/server/internal/finance"
	"estatewise/server/internal/models"
)

// SuccessProbability estimates the chance a seller accepts an offer at the
// given discount (a fraction of the asking price). The result always lies
// within the policy's [Min, Max] bounds.
func (e *Engine) SuccessProbability(discount float64, level models.Level, marketType models.MarketType) float64 {
	p := e.policy.Probability

	base := p.DefaultProbability
	for _, b := range p.Buckets {
		if discount <= b.MaxDiscount {
			base = b.Probability
			break
		}
	}

	motivation, ok := p.MotivationFactor[string(level)]
	if !ok {
		motivation = 1
	}
	market := p.MarketFactor.For(marketType, 1)

	return finance.Round(finance.Clamp(base*motivation*market, p.Min, p.Max), 4)
}

package negotiation

import (
	"sort"

	"estatewise/server/config"
	"estatewise/server/internal/finance"
	"estatewise/server/internal/models"
)

// Rank scores every strategy and returns a new slice ordered best first.
// Equal scores keep their generation order. Rank is 1-based.
func (e *Engine) Rank(strategies []models.NegotiationStrategy, level models.Level, marketType models.MarketType) []models.NegotiationStrategy {
	p := e.policy.Ranking

	type scored struct {
		strategy models.NegotiationStrategy
		score    float64
	}
	all := make([]scored, len(strategies))
	for i, s := range strategies {
		score := p.BaseScore
		if pts, ok := config.Match(p.SavingsTiers, s.ROIImpact.TotalSavings); ok {
			score += pts
		}
		if pts, ok := config.Match(p.CashOnCashTiers, s.ROIImpact.CashOnCashImpact); ok {
			score += pts
		}
		score += s.ExpectedSuccessProbability * p.ProbabilityWeight

		isPrice := s.Type == models.StrategyPrice
		switch marketType {
		case models.MarketTypeBuyer:
			if isPrice {
				score += p.MarketBonus
			}
		case models.MarketTypeSeller:
			if !isPrice {
				score += p.MarketBonus
			}
		}
		switch level {
		case models.LevelHigh:
			if isPrice {
				score += p.MotivationBonus
			}
		case models.LevelLow:
			if !isPrice {
				score += p.MotivationBonus
			}
		}
		all[i] = scored{strategy: s, score: score}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].score > all[j].score
	})

	ranked := make([]models.NegotiationStrategy, len(all))
	for i, s := range all {
		ranked[i] = s.strategy
		ranked[i].Score = finance.Round(s.score, 1)
		ranked[i].Rank = i + 1
	}
	return ranked
}

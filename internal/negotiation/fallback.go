package negotiation

import (
	"fmt"
	"strings"

	"estatewise/server/internal/models"
)

// BuildFallbacks proposes what to do if the top strategy is rejected. The
// result always has at least two entries.
func (e *Engine) BuildFallbacks(ranked []models.NegotiationStrategy) []models.FallbackOption {
	var fallbacks []models.FallbackOption
	if len(ranked) == 0 {
		return padFallbacks(fallbacks)
	}

	top := ranked[0]
	rest := ranked[1:]
	switchTo := func(s models.NegotiationStrategy, approach string) models.FallbackOption {
		return models.FallbackOption{
			Strategy:    "Switch to " + s.Name,
			Description: fmt.Sprintf("If %s fails, pivot to %s", approach, lowerFirst(s.Description)),
			OfferPrice:  s.OfferPrice,
		}
	}

	switch top.Type {
	case models.StrategyPrice:
		if s, ok := firstWhere(rest, func(s models.NegotiationStrategy) bool { return s.Type != models.StrategyPrice }); ok {
			fallbacks = append(fallbacks, switchTo(s, "price negotiation"))
		}
		if top.OfferPrice != nil {
			markup := e.policy.Pricing.CompromiseMarkup
			compromise := wholeDollars(*top.OfferPrice * markup)
			fallbacks = append(fallbacks, models.FallbackOption{
				Strategy:    "Price Compromise",
				Description: fmt.Sprintf("Increase offer to %s (%.0f%% higher than original)", dollars(compromise), (markup-1)*100),
				OfferPrice:  models.Float(compromise),
			})
		}

	case models.StrategyTerms:
		if s, ok := firstWhere(rest, isType(models.StrategyPrice)); ok {
			fallbacks = append(fallbacks, switchTo(s, "terms negotiation"))
		}
		fallbacks = append(fallbacks, models.FallbackOption{
			Strategy:    "Terms Compromise",
			Description: "Maintain some key terms but be more flexible on others; focus flexibility on the terms that matter most to the seller",
		})

	case models.StrategyCreative:
		if s, ok := firstWhere(rest, isType(models.StrategyPrice)); ok {
			fallbacks = append(fallbacks, switchTo(s, "the creative approach"))
		}
		if s, ok := firstWhere(rest, isType(models.StrategyTerms)); ok {
			fallbacks = append(fallbacks, switchTo(s, "the creative approach"))
		}
	}

	return padFallbacks(fallbacks)
}

func padFallbacks(fallbacks []models.FallbackOption) []models.FallbackOption {
	generic := []models.FallbackOption{
		{
			Strategy:    "Hybrid Approach",
			Description: "Combine elements from multiple strategies to create a compromise, taking the strongest price, terms and creative elements into a balanced offer",
		},
		{
			Strategy:    "Walk Away and Monitor",
			Description: "Decline to raise the offer and keep watching the listing for price reductions or a return to market",
		},
	}
	for i := 0; len(fallbacks) < 2; i++ {
		fallbacks = append(fallbacks, generic[i])
	}
	return fallbacks
}

func isType(t models.StrategyType) func(models.NegotiationStrategy) bool {
	return func(s models.NegotiationStrategy) bool { return s.Type == t }
}

func firstWhere(strategies []models.NegotiationStrategy, match func(models.NegotiationStrategy) bool) (models.NegotiationStrategy, bool) {
	for _, s := range strategies {
		if match(s) {
			return s, true
		}
	}
	return models.NegotiationStrategy{}, false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

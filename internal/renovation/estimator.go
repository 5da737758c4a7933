package renovation

import (
	"estatewise/server/config"
	"estatewise/server/internal/finance"
	"estatewise/server/internal/models"
)

var recommendations = map[string][]string{
	"major": {
		"Complete kitchen remodel",
		"Bathroom renovations",
		"Replace flooring throughout",
		"Update electrical and plumbing systems",
		"Exterior improvements (siding, roof, windows)",
	},
	"update": {
		"Kitchen updates (countertops, appliances)",
		"Bathroom updates (fixtures, tile)",
		"Fresh paint throughout",
		"Landscaping improvements",
		"Energy efficiency upgrades",
	},
	"cosmetic": {
		"Minor cosmetic updates",
		"Smart home technology integration",
		"Energy efficiency improvements",
		"Landscaping enhancements",
	},
}

// Estimator prices renovation work from the recorded property condition.
type Estimator struct {
	policy config.RenovationPolicy
}

func NewEstimator(policy config.Policy) *Estimator {
	return &Estimator{policy: policy.Renovation}
}

func (e *Estimator) Estimate(value float64, property *models.PropertyRecord) models.RenovationAnalysis {
	condition := property.Condition

	rate := e.policy.DefaultCostPerSqft
	if r, ok := e.policy.CostPerSqft[string(condition)]; ok {
		rate = r
	}
	uplift := e.policy.DefaultValueUplift
	if u, ok := e.policy.ValueUplift[string(condition)]; ok {
		uplift = u
	}

	cost := property.SquareFeet * rate
	increase := value * uplift

	analysis := models.RenovationAnalysis{
		PropertyCondition:         condition,
		RenovationPotential:       potential(condition),
		EstimatedRenovationCost:   finance.Cents(cost),
		PotentialValueIncrease:    finance.Cents(increase),
		AfterRenovationValue:      finance.Cents(value + increase),
		RenovationRecommendations: recommendationsFor(condition),
		RenovationProjects:        e.Projects(property),
	}
	if roi, ok := finance.Ratio(increase, cost); ok {
		analysis.RenovationROI = models.Float(finance.Round(roi*100, 1))
	}
	return analysis
}

// Projects breaks the plan into priced line items.
func (e *Estimator) Projects(property *models.PropertyRecord) []models.RenovationProject {
	major := property.Condition != models.ConditionVeryGood && property.Condition != models.ConditionExcellent

	var projects []models.RenovationProject
	for _, p := range e.policy.Projects {
		if p.Major && !major {
			continue
		}
		cost := property.SquareFeet * p.AreaShare * p.CostPerSqft
		added := cost * p.ValueFactor
		project := models.RenovationProject{Project: p.Name, Cost: finance.Cents(cost), ValueAdded: finance.Cents(added)}
		if cost > 0 {
			project.ROI = finance.Round((p.ValueFactor-1)*100, 1)
		}
		projects = append(projects, project)
	}
	return projects
}

func potential(c models.Condition) string {
	switch {
	case c.NeedsWork():
		return "High"
	case c == models.ConditionGood:
		return "Moderate"
	default:
		return "Low"
	}
}

func recommendationsFor(c models.Condition) []string {
	key := "cosmetic"
	switch {
	case c.NeedsWork():
		key = "major"
	case c == models.ConditionGood:
		key = "update"
	}
	return append([]string(nil), recommendations[key]...)
}

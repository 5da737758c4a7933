package comparables

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"estatewise/server/config"
	"estatewise/server/internal/finance"
	"estatewise/server/internal/models"
)

const metersPerMile = 1609.344

// Analyzer builds a comparative market analysis from sold comparables.
type Analyzer struct {
	policy config.ComparablesPolicy
}

func NewAnalyzer(policy config.Policy) *Analyzer {
	return &Analyzer{policy: policy.Comparables}
}

// Analyze adjusts each comparable toward the subject property. It returns nil
// when there are no comparables.
func (a *Analyzer) Analyze(subject *models.PropertyRecord, comps []models.Comparable) *models.CMAResult {
	if len(comps) == 0 {
		return nil
	}

	adjusted := make([]models.AdjustedComparable, 0, len(comps))
	prices := make([]float64, 0, len(comps))
	var ppsf []float64

	for _, comp := range comps {
		adj := models.ComparableAdjustments{
			Bedrooms:   float64(subject.Bedrooms-comp.Bedrooms) * a.policy.BedroomAdjustment,
			Bathrooms:  (subject.Bathrooms - comp.Bathrooms) * a.policy.BathroomAdjustment,
			SquareFeet: (subject.SquareFeet - comp.SquareFeet) * a.policy.SquareFootAdjustment,
			YearBuilt:  float64(subject.YearBuilt-comp.YearBuilt) * a.policy.YearBuiltAdjustment,
		}
		adj.Total = adj.Bedrooms + adj.Bathrooms + adj.SquareFeet + adj.YearBuilt

		entry := models.AdjustedComparable{
			Comparable:    comp,
			Adjustments:   adj,
			AdjustedPrice: finance.Cents(comp.SalePrice + adj.Total),
			DistanceMiles: distanceMiles(subject, comp),
		}
		adjusted = append(adjusted, entry)
		prices = append(prices, entry.AdjustedPrice)

		if v, ok := finance.Ratio(comp.SalePrice, comp.SquareFeet); ok {
			ppsf = append(ppsf, v)
		}
	}

	// nearest first, comparables without coordinates keep their order at the end
	sort.SliceStable(adjusted, func(i, j int) bool {
		di, dj := adjusted[i].DistanceMiles, adjusted[j].DistanceMiles
		if di == nil || dj == nil {
			return di != nil && dj == nil
		}
		return *di < *dj
	})

	result := &models.CMAResult{
		ComparableProperties: adjusted,
		AverageAdjustedPrice: finance.Cents(finance.Mean(prices)),
		MedianAdjustedPrice:  finance.Cents(finance.Median(prices)),
	}
	if len(ppsf) > 0 {
		lo, hi := ppsf[0], ppsf[0]
		for _, v := range ppsf[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		result.PricePerSqftRange = &models.Range{Low: finance.Cents(lo), High: finance.Cents(hi)}
	}
	return result
}

func distanceMiles(subject *models.PropertyRecord, comp models.Comparable) *float64 {
	if subject.Latitude == nil || subject.Longitude == nil || comp.Latitude == nil || comp.Longitude == nil {
		return nil
	}
	from := orb.Point{*subject.Longitude, *subject.Latitude}
	to := orb.Point{*comp.Longitude, *comp.Latitude}
	miles := finance.Round(geo.Distance(from, to)/metersPerMile, 2)
	return &miles
}

// Package provider fetches property, valuation and market data for the
// analysis pipeline and validates everything it hands back.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"estatewise/server/internal/models"
)

// PropertyDataProvider is the boundary to whatever supplies raw property data.
type PropertyDataProvider interface {
	FetchProperty(ctx context.Context, address models.Address) (*models.PropertyRecord, error)
	FetchValuations(ctx context.Context, address models.Address) ([]models.ValuationEstimate, error)
	FetchMarketStats(ctx context.Context, location models.Location) (*models.MarketStats, error)
}

// ComparablesProvider is implemented by providers that can list recent sales
// near an address.
type ComparablesProvider interface {
	FetchComparables(ctx context.Context, address models.Address) ([]models.Comparable, error)
}

// FetchComparables returns comparables when p supports them, and nil otherwise.
func FetchComparables(ctx context.Context, p PropertyDataProvider, address models.Address) ([]models.Comparable, error) {
	cp, ok := p.(ComparablesProvider)
	if !ok {
		return nil, nil
	}
	return cp.FetchComparables(ctx, address)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateProperty checks a provider record before it enters the pipeline.
func ValidateProperty(p *models.PropertyRecord) error {
	if p == nil {
		return models.ValidationError("provider returned no property record")
	}
	if err := validate.Struct(p); err != nil {
		return structError("property", err)
	}
	if p.PropertyType != "" && !p.PropertyType.Valid() {
		return models.ValidationError("property: unknown property type %q", p.PropertyType)
	}
	if p.ListingStatus != "" && !p.ListingStatus.Valid() {
		return models.ValidationError("property: unknown listing status %q", p.ListingStatus)
	}
	if p.Condition != "" && !p.Condition.Valid() {
		return models.ValidationError("property: unknown condition %q", p.Condition)
	}
	return nil
}

func ValidateValuations(estimates []models.ValuationEstimate) error {
	for i := range estimates {
		if err := validate.Struct(&estimates[i]); err != nil {
			return structError(fmt.Sprintf("valuation %d", i), err)
		}
		if ci := estimates[i].ConfidenceInterval; ci != nil && ci.Low > ci.High {
			return models.ValidationError("valuation %d: confidence interval low %.2f exceeds high %.2f", i, ci.Low, ci.High)
		}
	}
	return nil
}

func ValidateMarketStats(stats *models.MarketStats) error {
	if stats == nil {
		return models.InsufficientDataError("provider returned no market statistics")
	}
	if err := validate.Struct(stats); err != nil {
		return structError("market statistics", err)
	}
	return nil
}

func ValidateComparables(comps []models.Comparable) error {
	for i := range comps {
		if err := validate.Struct(&comps[i]); err != nil {
			return structError(fmt.Sprintf("comparable %d", i), err)
		}
	}
	return nil
}

func structError(subject string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.ValidationError("%s: %v", subject, err)
	}
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
	}
	return models.ValidationError("%s: %s", subject, strings.Join(fields, "; "))
}

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"estatewise/server/internal/models"
)

// Fixture is everything known about one address in a fixture dataset.
type Fixture struct {
	Property    *models.PropertyRecord     `json:"property"`
	Valuations  []models.ValuationEstimate `json:"valuations"`
	Comparables []models.Comparable        `json:"comparables,omitempty"`
}

// Dataset is the on-disk fixture format. Properties are keyed by normalized
// address and markets by location key.
type Dataset struct {
	Properties map[string]Fixture             `json:"properties"`
	Markets    map[string]*models.MarketStats `json:"markets"`
}

// FileProvider serves data from an in-memory Dataset. Used for demo mode
// and tests.
type FileProvider struct {
	data Dataset
}

func NewFileProvider(data Dataset) *FileProvider {
	normalized := Dataset{
		Properties: make(map[string]Fixture, len(data.Properties)),
		Markets:    make(map[string]*models.MarketStats, len(data.Markets)),
	}
	for k, v := range data.Properties {
		normalized.Properties[strings.ToLower(strings.TrimSpace(k))] = v
	}
	for k, v := range data.Markets {
		normalized.Markets[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &FileProvider{data: normalized}
}

// LoadFileProvider reads a JSON dataset from path.
func LoadFileProvider(path string) (*FileProvider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	var data Dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return NewFileProvider(data), nil
}

func (f *FileProvider) fixture(address models.Address) (Fixture, error) {
	fx, ok := f.data.Properties[address.Normalized()]
	if !ok {
		return Fixture{}, models.NotFoundError("no property found for %s", address)
	}
	return fx, nil
}

func (f *FileProvider) FetchProperty(ctx context.Context, address models.Address) (*models.PropertyRecord, error) {
	fx, err := f.fixture(address)
	if err != nil {
		return nil, err
	}
	if fx.Property == nil {
		return nil, models.NotFoundError("no property record for %s", address)
	}
	record := *fx.Property
	return &record, nil
}

func (f *FileProvider) FetchValuations(ctx context.Context, address models.Address) ([]models.ValuationEstimate, error) {
	fx, err := f.fixture(address)
	if err != nil {
		return nil, err
	}
	return append([]models.ValuationEstimate(nil), fx.Valuations...), nil
}

func (f *FileProvider) FetchMarketStats(ctx context.Context, location models.Location) (*models.MarketStats, error) {
	stats, ok := f.data.Markets[location.Key()]
	if !ok || stats == nil {
		return nil, models.InsufficientDataError("no market statistics for %s, %s %s", location.City, location.State, location.Zip)
	}
	out := *stats
	out.Location = location
	return &out, nil
}

func (f *FileProvider) FetchComparables(ctx context.Context, address models.Address) ([]models.Comparable, error) {
	fx, err := f.fixture(address)
	if err != nil {
		return nil, err
	}
	return append([]models.Comparable(nil), fx.Comparables...), nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatewise/server/internal/models"
)

func writePolicy(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultPolicyValidates(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
}

func TestLoadPolicy(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		policy, err := LoadPolicy("")
		require.NoError(t, err)
		assert.Equal(t, DefaultPolicy(), policy)
	})

	t.Run("json overlay keeps unset fields", func(t *testing.T) {
		path := writePolicy(t, "policy.json", `{"valuation": {"status_band": 0.08}}`)
		policy, err := LoadPolicy(path)
		require.NoError(t, err)
		assert.Equal(t, 0.08, policy.Valuation.StatusBand)
		assert.Equal(t, DefaultPolicy().Valuation.AlignmentBand, policy.Valuation.AlignmentBand)
		assert.Equal(t, DefaultPolicy().Investment.LoanTermYears, policy.Investment.LoanTermYears)
	})

	t.Run("toml overlay", func(t *testing.T) {
		path := writePolicy(t, "policy.toml", "[investment]\nloan_term_years = 15\n")
		policy, err := LoadPolicy(path)
		require.NoError(t, err)
		assert.Equal(t, 15, policy.Investment.LoanTermYears)
		assert.Equal(t, DefaultPolicy().Valuation.StatusBand, policy.Valuation.StatusBand)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := LoadPolicy(writePolicy(t, "policy.json", `{"valuation":`))
		assert.Error(t, err)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		_, err := LoadPolicy(writePolicy(t, "policy.json", `{"valuation": {"status_band": 1.5}}`))
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Policy)
	}{
		{"inverted inventory thresholds", func(p *Policy) { p.Market.SellerInventoryBelow = 10 }},
		{"no financing", func(p *Policy) { p.Investment.Financing = nil }},
		{"zero down payment", func(p *Policy) { p.Investment.Financing[0].DownPaymentPct = 0 }},
		{"negative interest", func(p *Policy) { p.Investment.Financing[0].InterestRate = -1 }},
		{"zero loan term", func(p *Policy) { p.Investment.LoanTermYears = 0 }},
		{"probability bounds", func(p *Policy) { p.Negotiation.Probability.Min = 0.9; p.Negotiation.Probability.Max = 0.5 }},
		{"increasing tiers", func(p *Policy) {
			p.Negotiation.Motivation.DaysOnMarketTiers = []Tier{{Threshold: 1, Points: 5}, {Threshold: 2, Points: 10}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := DefaultPolicy()
			tt.mutate(&policy)
			assert.ErrorIs(t, policy.Validate(), models.ErrValidation)
		})
	}
}

func TestMatch(t *testing.T) {
	tiers := []Tier{{Threshold: 2.0, Points: 25}, {Threshold: 1.5, Points: 15}, {Threshold: 1.0, Points: 5}}

	points, ok := Match(tiers, 2.5)
	assert.True(t, ok)
	assert.Equal(t, 25.0, points)

	points, ok = Match(tiers, 1.6)
	assert.True(t, ok)
	assert.Equal(t, 15.0, points)

	// thresholds are exclusive
	_, ok = Match(tiers, 1.0)
	assert.False(t, ok)
}

func TestMarketTableFallback(t *testing.T) {
	table := MarketTable{string(models.MarketTypeBuyer): 15}
	assert.Equal(t, 15.0, table.For(models.MarketTypeBuyer, 0))
	assert.Equal(t, 3.0, table.For(models.MarketTypeSeller, 3))
}

package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pubforge.dev/publisher-api/revenue"
	"pubforge.dev/publisher-api/settings"
)

func strPtr(s string) *string {
	return &s
}

func TestTierFlagsProAcceptance(t *testing.T) {
	tests := []struct {
		name  string
		value *string
		want  bool
	}{
		{"accepted", strPtr("accepted"), true},
		{"pending", strPtr("pending"), false},
		{"declined", strPtr("declined"), false},
		{"boolean literal is not a status", strPtr("true"), false},
		{"explicit null", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := settings.Bag{"pro_accepted": tt.value}

			assert.Equal(t, tt.want, tierFlags(bag).ProAccepted)
		})
	}
}

func TestTierFlagsMissingKeys(t *testing.T) {
	flags := tierFlags(settings.Bag{})

	assert.False(t, flags.Owned)
	assert.False(t, flags.PremiereAccepted)
	assert.False(t, flags.ProAccepted)
	assert.False(t, flags.LoyaltyBonusDisabled)
	assert.False(t, flags.Net30Payments)
}

func TestTierFlagsBooleans(t *testing.T) {
	bag := settings.Bag{
		"owned":                        strPtr("true"),
		"net30_revenue_share_payments": strPtr("false"),
	}

	flags := tierFlags(bag)

	assert.True(t, flags.Owned)
	assert.False(t, flags.Net30Payments)
	assert.False(t, flags.ProAccepted)
}

func TestBagSourcedProSiteComputesProTier(t *testing.T) {
	bag := settings.Bag{"pro_accepted": strPtr("accepted")}
	ann := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)

	got := revenue.Compute(revenue.Inputs{
		AnniversaryOn: &ann,
		Flags:         tierFlags(bag),
		Impressions:   4_000_000,
		Now:           time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
	})

	// Pro headline, bonus folded into the pro figure only.
	assert.InDelta(t, 0.85, got.RevenueShare, 1e-9)
	assert.InDelta(t, 0.88, got.RevenueSharePro, 1e-9)
}

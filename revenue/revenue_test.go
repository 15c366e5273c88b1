package revenue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func yearsAgo(n int) *time.Time {
	t := testNow.AddDate(-n, 0, 0)

	return &t
}

func f64(v float64) *float64 {
	return &v
}

func TestLoyaltyBonus(t *testing.T) {
	tests := []struct {
		name     string
		ann      *time.Time
		disabled bool
		want     float64
	}{
		{"nil anniversary", nil, false, 0},
		{"disabled", yearsAgo(3), true, 0},
		{"same year", yearsAgo(0), false, 0},
		{"one year", yearsAgo(1), false, 0.01},
		{"three years", yearsAgo(3), false, 0.03},
		{"five years", yearsAgo(5), false, 0.05},
		{"capped beyond five", yearsAgo(12), false, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, LoyaltyBonus(tt.ann, testNow, tt.disabled), 1e-9)
		})
	}
}

func TestLoyaltyBonusAnniversaryNotYetPassed(t *testing.T) {
	// Three calendar years back but the date-of-year is still ahead, so
	// only two full years have elapsed.
	ann := time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)

	assert.InDelta(t, 0.02, LoyaltyBonus(&ann, testNow, false), 1e-9)

	// The day the anniversary passes the bonus increments.
	later := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	assert.InDelta(t, 0.03, LoyaltyBonus(&ann, later, false), 1e-9)
}

func TestComputeRegularSite(t *testing.T) {
	// 3-year anniversary, low impressions, no flags.
	got := Compute(Inputs{
		AnniversaryOn: yearsAgo(3),
		Impressions:   31_000,
		Now:           testNow,
	})

	assert.InDelta(t, 0.75, got.RevenueShare, 1e-9)
	assert.InDelta(t, 0.85, got.RevenueSharePro, 1e-9)
	assert.InDelta(t, 0.03, got.Loyalty.LoyaltyBonus, 1e-9)
	assert.Equal(t, int64(31_000), got.Loyalty.Impressions)
	assert.Equal(t, ImpressionsForEighty, got.Loyalty.ImpressionsForEighty)
	assert.Equal(t, ImpressionsForEightyTwoFive, got.Loyalty.ImpressionsForEightyTwoFive)
	assert.Equal(t, ImpressionsForEightyFive, got.Loyalty.ImpressionsForEightyFive)
}

func TestComputeProAcceptedTopTier(t *testing.T) {
	got := Compute(Inputs{
		Flags:       TierFlags{ProAccepted: true},
		Impressions: 15_999_999,
		Now:         testNow,
	})

	assert.InDelta(t, 0.85, got.RevenueShare, 1e-9)
	assert.InDelta(t, 0.85, got.RevenueSharePro, 1e-9)
}

func TestComputeProAcceptedMiddleBand(t *testing.T) {
	// The middle band pays less than both neighbours. Reproduced from the
	// reconciled threshold table.
	got := Compute(Inputs{
		AnniversaryOn: yearsAgo(3),
		Flags:         TierFlags{ProAccepted: true},
		Impressions:   10_000_011,
		Now:           testNow,
	})

	assert.InDelta(t, 0.825, got.RevenueShare, 1e-9)
	assert.InDelta(t, 0.855, got.RevenueSharePro, 1e-9)
}

func TestComputeProAcceptedLowVolume(t *testing.T) {
	// Pro acceptance alone keeps the pro base even under the first
	// threshold.
	got := Compute(Inputs{
		Flags:       TierFlags{ProAccepted: true},
		Impressions: 31_000,
		Now:         testNow,
	})

	assert.InDelta(t, 0.85, got.RevenueShare, 1e-9)
}

func TestComputePremiereIgnoresLoyalty(t *testing.T) {
	got := Compute(Inputs{
		AnniversaryOn: yearsAgo(4),
		Flags:         TierFlags{PremiereAccepted: true},
		Now:           testNow,
	})

	assert.InDelta(t, 0.90, got.RevenueShare, 1e-9)
	assert.InDelta(t, 0.85, got.RevenueSharePro, 1e-9)
	assert.InDelta(t, 0.04, got.Loyalty.LoyaltyBonus, 1e-9)
}

func TestComputeOwnedSite(t *testing.T) {
	got := Compute(Inputs{
		AnniversaryOn: yearsAgo(9),
		Flags:         TierFlags{Owned: true},
		Now:           testNow,
	})

	assert.InDelta(t, 0.97, got.RevenueShare, 1e-9)
	// Owned sites keep the pro baseline, never owned-adjusted.
	assert.InDelta(t, 0.85, got.RevenueSharePro, 1e-9)

	disabled := Compute(Inputs{
		AnniversaryOn: yearsAgo(9),
		Flags:         TierFlags{Owned: true, LoyaltyBonusDisabled: true},
		Now:           testNow,
	})

	assert.InDelta(t, 0.92, disabled.RevenueShare, 1e-9)
}

func TestComputeNet30Deduction(t *testing.T) {
	got := Compute(Inputs{
		Flags: TierFlags{Net30Payments: true},
		Now:   testNow,
	})

	assert.InDelta(t, 0.725, got.RevenueShare, 1e-9)
	assert.InDelta(t, 0.825, got.RevenueSharePro, 1e-9)

	pro := Compute(Inputs{
		Flags:       TierFlags{ProAccepted: true, Net30Payments: true},
		Impressions: 16_000_000,
		Now:         testNow,
	})

	assert.InDelta(t, 0.825, pro.RevenueShare, 1e-9)
	assert.InDelta(t, 0.825, pro.RevenueSharePro, 1e-9)
}

func TestComputeHealthCheckOverride(t *testing.T) {
	got := Compute(Inputs{
		AnniversaryOn:       yearsAgo(3),
		Impressions:         250_000,
		HealthCheckOverride: f64(0.764999),
		Now:                 testNow,
	})

	// Override replaces the headline, rounded to two decimals. Loyalty is
	// still reported as computed.
	assert.InDelta(t, 0.76, got.RevenueShare, 1e-9)
	assert.InDelta(t, 0.85, got.RevenueSharePro, 1e-9)
	assert.InDelta(t, 0.03, got.Loyalty.LoyaltyBonus, 1e-9)
	assert.Equal(t, int64(250_000), got.Loyalty.Impressions)
}

func TestComputeDisplayOverride(t *testing.T) {
	higher := Compute(Inputs{
		DisplayOverride: f64(89),
		Now:             testNow,
	})

	assert.InDelta(t, 0.89, higher.RevenueShare, 1e-9)
	assert.InDelta(t, 0.89, higher.RevenueSharePro, 1e-9)

	// A lower override is ignored.
	lower := Compute(Inputs{
		Flags:           TierFlags{PremiereAccepted: true},
		DisplayOverride: f64(80),
		Now:             testNow,
	})

	assert.InDelta(t, 0.90, lower.RevenueShare, 1e-9)

	// The health-check override wins and the display override is dropped.
	both := Compute(Inputs{
		HealthCheckOverride: f64(0.70),
		DisplayOverride:     f64(95),
		Now:                 testNow,
	})

	assert.InDelta(t, 0.70, both.RevenueShare, 1e-9)
	assert.InDelta(t, 0.85, both.RevenueSharePro, 1e-9)
}

func TestWindow(t *testing.T) {
	from, to := Window(testNow)

	assert.Equal(t, time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 6, 13, 0, 0, 0, 0, time.UTC), to)
}

func TestWindowFollowsLocation(t *testing.T) {
	// 2026-06-15 02:00 in a UTC-5 zone is still 2026-06-15 there even
	// though it is 07:00 UTC; the day boundary must come from the zone.
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 6, 15, 2, 0, 0, 0, loc)

	from, to := Window(now)

	assert.Equal(t, time.Date(2026, 5, 14, 0, 0, 0, 0, loc), from)
	assert.Equal(t, time.Date(2026, 6, 13, 0, 0, 0, 0, loc), to)
	assert.Equal(t, loc, from.Location())
}

package revenue

import (
	"math"
	"time"
)

// Revenue share constants. The pro impression table deliberately dips at the
// middle band (0.85 / 0.825 / 0.85); it mirrors the threshold table the
// payout reporting is reconciled against, do not "correct" it here.
const (
	BaseShare      float64 = 0.75
	ProBaseShare   float64 = 0.85
	ProMidShare    float64 = 0.825
	PremiereShare  float64 = 0.90
	OwnedBaseShare float64 = 0.92

	Net30Deduction  float64 = 0.025
	LoyaltyStep     float64 = 0.01
	MaxLoyaltyBonus float64 = 0.05

	ImpressionsForEighty        int64 = 5_000_000
	ImpressionsForEightyTwoFive int64 = 10_000_000
	ImpressionsForEightyFive    int64 = 15_000_000

	// Trailing impression window bounds, in days before today. The most
	// recent two days are excluded to absorb reporting lag.
	WindowStartDaysAgo int = 32
	WindowEndDaysAgo   int = 2
)

// TierFlags are the site settings that drive tier classification.
type TierFlags struct {
	Owned                bool
	PremiereAccepted     bool
	ProAccepted          bool
	LoyaltyBonusDisabled bool
	Net30Payments        bool
}

// Inputs is everything Compute needs, gathered up front by the caller. The
// calculator itself never touches storage.
type Inputs struct {
	AnniversaryOn *time.Time
	LiveOn        *time.Time
	Flags         TierFlags
	// Impressions is the paid impression sum over the trailing window.
	Impressions int64
	// HealthCheckOverride is an externally supplied decimal fraction
	// (e.g. 0.76) replacing the whole computation for revenue_share.
	HealthCheckOverride *float64
	// DisplayOverride is an integer-like percentage (e.g. 89 meaning 0.89).
	DisplayOverride *float64
	Now             time.Time
}

type Loyalty struct {
	AnniversaryOn               *time.Time `json:"anniversary_on"`
	LiveOn                      *time.Time `json:"live_on"`
	LoyaltyBonus                float64    `json:"loyalty_bonus"`
	RevenueShare                float64    `json:"revenue_share"`
	Impressions                 int64      `json:"impressions"`
	ImpressionsForEighty        int64      `json:"impressions_for_eighty"`
	ImpressionsForEightyTwoFive int64      `json:"impressions_for_eightytwofive"`
	ImpressionsForEightyFive    int64      `json:"impressions_for_eightyfive"`
}

type Share struct {
	RevenueShare    float64 `json:"revenue_share"`
	RevenueSharePro float64 `json:"revenue_share_pro"`
	Loyalty         Loyalty `json:"loyalty"`
}

// Window returns the trailing impression window for a reference time,
// inclusive on both ends. Day boundaries follow the reference time's
// location, not UTC.
func Window(now time.Time) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	return day.AddDate(0, 0, -WindowStartDaysAgo), day.AddDate(0, 0, -WindowEndDaysAgo)
}

// LoyaltyBonus is one percentage point per full year since the anniversary,
// capped at five. The bonus only increments once the anniversary
// date-of-year has passed in the current year.
func LoyaltyBonus(anniversaryOn *time.Time, now time.Time, disabled bool) float64 {
	if disabled || anniversaryOn == nil {
		return 0
	}

	years := now.Year() - anniversaryOn.Year()

	if now.Month() < anniversaryOn.Month() ||
		(now.Month() == anniversaryOn.Month() && now.Day() < anniversaryOn.Day()) {
		years--
	}

	if years < 1 {
		return 0
	}

	bonus := float64(years) * LoyaltyStep

	return math.Min(bonus, MaxLoyaltyBonus)
}

// proTierShare is the impression-volume table for pro payouts.
func proTierShare(impressions int64) float64 {
	if impressions >= ImpressionsForEightyFive {
		return ProBaseShare
	}

	if impressions >= ImpressionsForEightyTwoFive {
		return ProMidShare
	}

	return ProBaseShare
}

// Compute derives the effective revenue share figures for a site.
//
// Tier priority is owned > premiere > pro-accepted > regular. The loyalty
// bonus is always reported but only folds into the headline where the payout
// reports do: the owned base, and the pro figure of pro-accepted sites.
// Premiere ignores loyalty entirely.
func Compute(in Inputs) Share {
	bonus := LoyaltyBonus(in.AnniversaryOn, in.Now, in.Flags.LoyaltyBonusDisabled)

	share := 0.0
	sharePro := ProBaseShare

	switch {
	case in.Flags.Owned:
		share = OwnedBaseShare + bonus
	case in.Flags.PremiereAccepted:
		share = PremiereShare
	case in.Flags.ProAccepted:
		share = proTierShare(in.Impressions)
		sharePro = proTierShare(in.Impressions) + bonus
	default:
		share = BaseShare
	}

	if in.Flags.Net30Payments {
		share -= Net30Deduction
		sharePro -= Net30Deduction
	}

	switch {
	case in.HealthCheckOverride != nil:
		// The manual override replaces the whole computation for the
		// headline figure and suppresses the display override. The pro
		// figure is untouched.
		share = math.Round(*in.HealthCheckOverride*100) / 100
	case in.DisplayOverride != nil:
		override := *in.DisplayOverride / 100

		if override > share {
			share = override
			sharePro = override
		}
	}

	return Share{
		RevenueShare:    share,
		RevenueSharePro: sharePro,
		Loyalty: Loyalty{
			AnniversaryOn:               in.AnniversaryOn,
			LiveOn:                      in.LiveOn,
			LoyaltyBonus:                bonus,
			RevenueShare:                share,
			Impressions:                 in.Impressions,
			ImpressionsForEighty:        ImpressionsForEighty,
			ImpressionsForEightyTwoFive: ImpressionsForEightyTwoFive,
			ImpressionsForEightyFive:    ImpressionsForEightyFive,
		},
	}
}

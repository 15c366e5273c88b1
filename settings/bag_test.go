package settings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string {
	return &s
}

func TestDecodeBooleans(t *testing.T) {
	raw := Bag{
		"owned":             strptr("true"),
		"premiere_accepted": strptr("false"),
		"test_site":         strptr("yes"),
	}

	got := Decode(BagSettings, raw)

	assert.Equal(t, true, got["owned"])
	assert.Equal(t, false, got["premiere_accepted"])
	// Anything but the literal strings passes through unchanged.
	assert.Equal(t, "yes", got["test_site"])
}

func TestDecodeDates(t *testing.T) {
	raw := Bag{
		"terminated_on": strptr("2024-03-01"),
	}

	got := Decode(BagSettings, raw)
	require.IsType(t, time.Time{}, got["terminated_on"])
	assert.Equal(t, 2024, got["terminated_on"].(time.Time).Year())

	profile := Decode(BagProfile, Bag{"launched_on": strptr("1700000000")})
	require.IsType(t, time.Time{}, profile["launched_on"])
	assert.Equal(t, int64(1700000000), profile["launched_on"].(time.Time).Unix())
}

func TestDecodeDropsUnknownAndKeepsNulls(t *testing.T) {
	raw := Bag{
		"owned":    strptr("true"),
		"mystery":  strptr("value"),
		"about":    nil,
		"facebook": strptr("https://facebook.com/example"),
	}

	got := Decode(BagSettings, raw)

	assert.Equal(t, map[string]any{"owned": true}, got)

	profile := Decode(BagProfile, Bag{"about": nil})
	assert.Contains(t, profile, "about")
	assert.Nil(t, profile["about"])
}

func TestBuildPatchPartitionsByBag(t *testing.T) {
	got := BuildPatch(Patch{
		"display_name": "Example Kitchen",
		"owned":        true,
		"facebook":     "https://facebook.com/example",
		"ignored":      "dropped silently",
	})

	require.Len(t, got, 3)
	assert.Equal(t, BagProfile, got[0].Bag)
	assert.Equal(t, Bag{"display_name": strptr("Example Kitchen")}, got[0].Values)
	assert.Equal(t, BagSettings, got[1].Bag)
	assert.Equal(t, Bag{"owned": strptr("true")}, got[1].Values)
	assert.Equal(t, BagSocialMedia, got[2].Bag)
}

func TestBuildPatchKeepsExplicitNulls(t *testing.T) {
	got := BuildPatch(Patch{"about": nil})

	require.Len(t, got, 1)
	require.Contains(t, got[0].Values, "about")
	assert.Nil(t, got[0].Values["about"])
}

func TestBuildPatchEmptyResult(t *testing.T) {
	assert.Empty(t, BuildPatch(Patch{}))
	assert.Empty(t, BuildPatch(Patch{"unknown_field": "x"}))
}

func TestBuildPatchStringifies(t *testing.T) {
	got := BuildPatch(Patch{
		"display_revenue_share":        89,
		"net30_revenue_share_payments": false,
	})

	require.Len(t, got, 1)
	assert.Equal(t, "89", *got[0].Values["display_revenue_share"])
	assert.Equal(t, "false", *got[0].Values["net30_revenue_share_payments"])
}

func TestMergeRoundTrip(t *testing.T) {
	stored := Bag{
		"owned":     strptr("true"),
		"test_site": strptr("false"),
	}

	// Omitted fields stay untouched, explicit nulls stick.
	merged := Merge(stored, Bag{"test_site": nil, "pro_accepted": strptr("accepted")})

	assert.Equal(t, strptr("true"), merged["owned"])
	assert.Nil(t, merged["test_site"])
	assert.Equal(t, strptr("accepted"), merged["pro_accepted"])

	decoded := Decode(BagSettings, merged)
	assert.Equal(t, true, decoded["owned"])
	assert.Nil(t, decoded["test_site"])
	assert.Equal(t, "accepted", decoded["pro_accepted"])
}

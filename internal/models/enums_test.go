package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTierLifetime(t *testing.T) {
	day := 24 * time.Hour
	assert.Equal(t, 7*day, TierLifetime(TierFree))
	assert.Equal(t, 30*day, TierLifetime(TierStandard))
	assert.Equal(t, 45*day, TierLifetime(TierFeatured))
	assert.Equal(t, 7*day, TierLifetime("gold"), "unknown tiers fall back to free")
}

func TestTierRank(t *testing.T) {
	assert.Less(t, TierRank(TierFeatured), TierRank(TierStandard))
	assert.Less(t, TierRank(TierStandard), TierRank(TierFree))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusReviewed, true},
		{StatusReviewed, StatusShortlisted, true},
		{StatusShortlisted, StatusInterview, true},
		{StatusInterview, StatusAccepted, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusInterview, true},
		{StatusReviewed, StatusPending, false},
		{StatusPending, StatusPending, false},
		{StatusAccepted, StatusPending, false},
		{StatusRejected, StatusAccepted, false},
		{StatusPending, "hired", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestEnums(t *testing.T) {
	assert.True(t, IsJobType("freelance"))
	assert.False(t, IsJobType("contract"))
	assert.True(t, IsWorkMode("on-site"))
	assert.False(t, IsWorkMode("onsite"))
	assert.True(t, IsTier(TierFeatured))
	assert.True(t, IsApplicationStatus(StatusShortlisted))
	assert.False(t, IsApplicationStatus("withdrawn"))
}

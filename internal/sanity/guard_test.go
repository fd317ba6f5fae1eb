package sanity

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vigil/internal/contracts"
)

func TestGuard_DowngradesBuysBelowThreshold(t *testing.T) {
	guard := NewGuard(testSanityConfig(t), zerolog.Nop())

	buy := cleanResult("NVDA")
	hold := cleanResult("MSFT")
	hold.Score = 50
	hold.Rating = contracts.RatingHold

	report := contracts.SanityReport{HealthScore: 60, MaxHealthScore: 100}

	adjusted, controls := guard.Apply([]contracts.AnalysisResult{buy, hold}, report)

	assert.True(t, controls.HealthGuardActive)
	assert.Equal(t, 1, controls.BuyRecommendationsDowngraded)
	assert.Equal(t, 70, controls.Policy.BlockBuyBelowHealthScore)

	require.Len(t, adjusted, 2)
	assert.Equal(t, contracts.RatingHold, adjusted[0].Rating)
	assert.Equal(t, contracts.RatingBuy, adjusted[0].BaseRating)
	assert.Equal(t, "health_guard_blocked_buy", adjusted[0].SanityAdjustmentReason)

	// HOLD stays HOLD and keeps its base rating without a reason.
	assert.Equal(t, contracts.RatingHold, adjusted[1].Rating)
	assert.Equal(t, contracts.RatingHold, adjusted[1].BaseRating)
	assert.Empty(t, adjusted[1].SanityAdjustmentReason)
}

func TestGuard_InactiveAboveThreshold(t *testing.T) {
	guard := NewGuard(testSanityConfig(t), zerolog.Nop())

	buy := cleanResult("NVDA")
	report := contracts.SanityReport{HealthScore: 70, MaxHealthScore: 100}

	adjusted, controls := guard.Apply([]contracts.AnalysisResult{buy}, report)

	assert.False(t, controls.HealthGuardActive)
	assert.Equal(t, 0, controls.BuyRecommendationsDowngraded)
	assert.Equal(t, contracts.RatingBuy, adjusted[0].Rating)
	assert.Equal(t, contracts.RatingBuy, adjusted[0].BaseRating)
}

func TestGuard_EnrichesEveryRow(t *testing.T) {
	guard := NewGuard(testSanityConfig(t), zerolog.Nop())

	report := contracts.SanityReport{HealthScore: 95, MaxHealthScore: 100}
	adjusted, _ := guard.Apply([]contracts.AnalysisResult{cleanResult("NVDA")}, report)

	require.Len(t, adjusted, 1)
	require.NotNil(t, adjusted[0].HealthScore)
	assert.Equal(t, 95, *adjusted[0].HealthScore)
	require.NotNil(t, adjusted[0].SanityGuardActive)
	assert.False(t, *adjusted[0].SanityGuardActive)
}

func TestGuard_OriginalBatchUntouched(t *testing.T) {
	guard := NewGuard(testSanityConfig(t), zerolog.Nop())

	original := []contracts.AnalysisResult{cleanResult("NVDA")}
	report := contracts.SanityReport{HealthScore: 10}

	_, _ = guard.Apply(original, report)

	assert.Equal(t, contracts.RatingBuy, original[0].Rating)
	assert.Nil(t, original[0].HealthScore)
}

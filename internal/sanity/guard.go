package sanity

import (
	"github.com/rs/zerolog"

	"github.com/wonny/vigil/internal/contracts"
	"github.com/wonny/vigil/internal/engineconfig"
)

const guardBlockedBuyReason = "health_guard_blocked_buy"

// Guard applies automatic behavior controls based on the Health Score.
// 제어는 추가 메타데이터로만 동작, 기본 점수/등급 로직은 불변
type Guard struct {
	cfg *engineconfig.SanityConfig
	log zerolog.Logger
}

// NewGuard creates a health guard over a validated configuration.
func NewGuard(cfg *engineconfig.SanityConfig, log zerolog.Logger) *Guard {
	return &Guard{
		cfg: cfg,
		log: log.With().Str("component", "sanity.guard").Logger(),
	}
}

// Apply returns a guarded copy of the batch plus the control report. When
// the health score is below the block threshold every BUY becomes HOLD; the
// original rating survives in BaseRating.
func (g *Guard) Apply(results []contracts.AnalysisResult, report contracts.SanityReport) ([]contracts.AnalysisResult, contracts.HealthControls) {
	blockBelow := g.cfg.BehaviorControls.BlockBuyBelowHealthScore
	guardActive := report.HealthScore < blockBelow

	adjusted := make([]contracts.AnalysisResult, 0, len(results))
	downgraded := 0

	for _, row := range results {
		enriched := row

		healthScore := report.HealthScore
		enriched.HealthScore = &healthScore
		active := guardActive
		enriched.SanityGuardActive = &active
		enriched.BaseRating = row.Rating

		if guardActive && row.Rating == contracts.RatingBuy {
			enriched.Rating = contracts.RatingHold
			enriched.SanityAdjustmentReason = guardBlockedBuyReason
			downgraded++
		}

		adjusted = append(adjusted, enriched)
	}

	if guardActive {
		g.log.Warn().
			Int("health_score", report.HealthScore).
			Int("block_buy_below", blockBelow).
			Int("downgraded", downgraded).
			Msg("health guard active, BUY recommendations downgraded")
	}

	controls := contracts.HealthControls{
		HealthGuardActive:            guardActive,
		BuyRecommendationsDowngraded: downgraded,
		Policy: contracts.ControlPolicy{
			BlockBuyBelowHealthScore: blockBelow,
		},
	}
	return adjusted, controls
}

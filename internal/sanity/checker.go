package sanity

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wonny/vigil/internal/contracts"
	"github.com/wonny/vigil/internal/engineconfig"
)

// Checker inspects a day's analysis batch for internal contradictions and
// derives the Health Score from the violations it finds.
// ⭐ SSOT: 새니티 룰 평가는 여기서만, 점수화 로직과 의도적으로 분리
type Checker struct {
	cfg *engineconfig.SanityConfig
	log zerolog.Logger
}

// NewChecker creates a sanity checker over a validated configuration.
func NewChecker(cfg *engineconfig.SanityConfig, log zerolog.Logger) *Checker {
	return &Checker{
		cfg: cfg,
		log: log.With().Str("component", "sanity.checker").Logger(),
	}
}

// Evaluate runs every check per stock and computes the aggregate report.
// Violations are first-class output, never errors.
func (c *Checker) Evaluate(results []contracts.AnalysisResult) contracts.SanityReport {
	penalties := c.cfg.HealthScore.Penalties
	violationCap := c.cfg.HealthScore.ViolationCap

	perStock := make([]contracts.StockViolations, 0, len(results))
	totalPenalty := 0
	violationCount := 0

	for _, row := range results {
		violations := c.checkStock(row)

		penalty := min(len(violations), violationCap) * penalties.PerViolation
		totalPenalty += penalty
		violationCount += len(violations)

		perStock = append(perStock, contracts.StockViolations{
			Ticker:     row.Ticker,
			Violations: violations,
			Penalty:    penalty,
		})
	}

	healthScore := max(0, 100-totalPenalty)

	c.log.Info().
		Int("stock_count", len(results)).
		Int("violation_count", violationCount).
		Int("health_score", healthScore).
		Msg("daily sanity evaluated")

	return contracts.SanityReport{
		HealthScore:    healthScore,
		MaxHealthScore: 100,
		TotalPenalty:   totalPenalty,
		ViolationCount: violationCount,
		PerStock:       perStock,
	}
}

// checkStock runs the independent per-stock checks in a fixed order.
func (c *Checker) checkStock(row contracts.AnalysisResult) []string {
	violations := []string{}

	violations = append(violations, c.checkRatingAlignment(row)...)
	violations = append(violations, c.checkTargetConsistency(row)...)

	if row.RiskLevel == contracts.RiskHigh && row.Rating == contracts.RatingBuy {
		violations = append(violations, "high_risk_buy: high-risk stock should not be BUY without manual review")
	}

	if len(row.KeyReasons) == 0 {
		violations = append(violations, "missing_key_reasons")
	}
	if len(row.InvalidatingFactors) == 0 {
		violations = append(violations, "missing_invalidating_factors")
	}

	return violations
}

// checkRatingAlignment recomputes the expected rating from the score using
// the same thresholds the scoring engine uses.
func (c *Checker) checkRatingAlignment(row contracts.AnalysisResult) []string {
	thresholds := c.cfg.Rules.RatingThresholds

	expected := contracts.RatingSell
	if row.Score >= thresholds.BuyMin {
		expected = contracts.RatingBuy
	} else if row.Score >= thresholds.HoldMin {
		expected = contracts.RatingHold
	}

	if row.Rating != expected {
		return []string{fmt.Sprintf("rating_mismatch: expected %s from score %d, got %s", expected, row.Score, row.Rating)}
	}
	return nil
}

// checkTargetConsistency compares the implied return against the stated
// expected return. A non-positive price is itself a violation and
// short-circuits the return check.
func (c *Checker) checkTargetConsistency(row contracts.AnalysisResult) []string {
	if row.CurrentPrice <= 0 {
		return []string{"invalid_current_price: must be > 0"}
	}

	impliedReturnPct := (row.TargetPrice/row.CurrentPrice - 1.0) * 100.0
	diff := impliedReturnPct - row.ExpectedReturnPct
	if diff < 0 {
		diff = -diff
	}
	if diff > c.cfg.Rules.TargetReturnTolerancePct {
		return []string{fmt.Sprintf("target_return_mismatch: implied %.2f%% vs expected %.2f%%", impliedReturnPct, row.ExpectedReturnPct)}
	}
	return nil
}

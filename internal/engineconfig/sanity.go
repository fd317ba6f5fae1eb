package engineconfig

import "fmt"

// SanityConfig는 일일 새니티 평가와 Health Score 제어 설정
type SanityConfig struct {
	Rules            SanityRules      `yaml:"rules" json:"rules"`
	HealthScore      HealthScoreRules `yaml:"health_score" json:"health_score"`
	BehaviorControls BehaviorControls `yaml:"behavior_controls" json:"behavior_controls"`
}

// SanityRules parameterize the per-stock contradiction checks.
type SanityRules struct {
	RatingThresholds         RatingThresholds `yaml:"rating_thresholds" json:"rating_thresholds"`
	TargetReturnTolerancePct float64          `yaml:"target_return_tolerance_pct" json:"target_return_tolerance_pct"`
}

// HealthScoreRules turn violation counts into an aggregate health score.
// 종목당 violation_cap으로 패널티 상한 적용
type HealthScoreRules struct {
	Penalties    Penalties `yaml:"penalties" json:"penalties"`
	ViolationCap int       `yaml:"violation_cap" json:"violation_cap"`
}

// Penalties are health-score deductions per violation.
type Penalties struct {
	PerViolation int `yaml:"per_violation" json:"per_violation"`
}

// BehaviorControls are automatic behavior adjustments keyed off the
// health score.
type BehaviorControls struct {
	BlockBuyBelowHealthScore int `yaml:"block_buy_below_health_score" json:"block_buy_below_health_score"`
}

// Validate checks all required sanity-config constraints.
func (c *SanityConfig) Validate() error {
	if c.Rules.RatingThresholds.BuyMin <= c.Rules.RatingThresholds.HoldMin {
		return ValidationError{"rules.rating_thresholds", "buy_min must be > hold_min"}
	}
	if c.Rules.TargetReturnTolerancePct <= 0 {
		return ValidationError{"rules.target_return_tolerance_pct", "must be > 0"}
	}

	if c.HealthScore.Penalties.PerViolation < 1 {
		return ValidationError{"health_score.penalties.per_violation", "must be >= 1"}
	}
	if c.HealthScore.ViolationCap < 1 {
		return ValidationError{"health_score.violation_cap", "must be >= 1"}
	}

	threshold := c.BehaviorControls.BlockBuyBelowHealthScore
	if threshold < 0 || threshold > 100 {
		return ValidationError{"behavior_controls.block_buy_below_health_score", fmt.Sprintf("must be in [0, 100], got %d", threshold)}
	}

	return nil
}

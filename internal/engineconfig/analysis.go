package engineconfig

import "fmt"

// AnalysisConfig는 점수화 엔진의 전체 설정
type AnalysisConfig struct {
	Weights             Weights             `yaml:"weights" json:"weights"`
	ScoreBounds         Bounds              `yaml:"score_bounds" json:"score_bounds"`
	RatingThresholds    RatingThresholds    `yaml:"rating_thresholds" json:"rating_thresholds"`
	TargetPrice         TargetPriceConfig   `yaml:"target_price" json:"target_price"`
	RiskLevelThresholds RiskLevelThresholds `yaml:"risk_level_thresholds" json:"risk_level_thresholds"`
	ReasonGeneration    ReasonGeneration    `yaml:"reason_generation" json:"reason_generation"`
	SafetyGuards        SafetyGuards        `yaml:"safety_guards" json:"safety_guards"`
}

// Weights are integer percentage weights per scoring component.
// 합 = 100 (불변식, 로드 시 검증)
type Weights struct {
	TrendMomentum   int `yaml:"trend_momentum" json:"trend_momentum"`
	Fundamentals    int `yaml:"fundamentals" json:"fundamentals"`
	NewsSentiment   int `yaml:"news_sentiment" json:"news_sentiment"`
	EarningsContext int `yaml:"earnings_context" json:"earnings_context"`
	RiskVolatility  int `yaml:"risk_volatility" json:"risk_volatility"`
}

// Sum returns the sum of all weights.
func (w Weights) Sum() int {
	return w.TrendMomentum + w.Fundamentals + w.NewsSentiment + w.EarningsContext + w.RiskVolatility
}

// Map returns the weights keyed by component name, for the evolution engine.
func (w Weights) Map() map[string]int {
	return map[string]int{
		"trend_momentum":   w.TrendMomentum,
		"fundamentals":     w.Fundamentals,
		"news_sentiment":   w.NewsSentiment,
		"earnings_context": w.EarningsContext,
		"risk_volatility":  w.RiskVolatility,
	}
}

// WeightsFromMap rebuilds Weights from a component-keyed map. Unknown keys
// are rejected so evolved weights cannot drift away from the scoring model.
func WeightsFromMap(m map[string]int) (Weights, error) {
	var w Weights
	for key, value := range m {
		switch key {
		case "trend_momentum":
			w.TrendMomentum = value
		case "fundamentals":
			w.Fundamentals = value
		case "news_sentiment":
			w.NewsSentiment = value
		case "earnings_context":
			w.EarningsContext = value
		case "risk_volatility":
			w.RiskVolatility = value
		default:
			return Weights{}, fmt.Errorf("unknown weight key: %s", key)
		}
	}
	return w, nil
}

// Bounds clamp component and composite scores.
type Bounds struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// RatingThresholds map a final score to a rating.
// 계약: buy_min > hold_min
type RatingThresholds struct {
	BuyMin  int `yaml:"buy_min" json:"buy_min"`
	HoldMin int `yaml:"hold_min" json:"hold_min"`
}

// TargetPriceConfig parameterizes score-to-target-price projection.
type TargetPriceConfig struct {
	NeutralScore        int     `yaml:"neutral_score" json:"neutral_score"`
	ReturnPerScorePoint float64 `yaml:"return_per_score_point" json:"return_per_score_point"`
	MinReturnPct        float64 `yaml:"min_return_pct" json:"min_return_pct"`
	MaxReturnPct        float64 `yaml:"max_return_pct" json:"max_return_pct"`
}

// RiskLevelThresholds map the raw risk/volatility score to a risk tier.
type RiskLevelThresholds struct {
	LowRiskMin    float64 `yaml:"low_risk_min" json:"low_risk_min"`
	MediumRiskMin float64 `yaml:"medium_risk_min" json:"medium_risk_min"`
}

// ReasonGeneration controls how many explanation entries are produced.
type ReasonGeneration struct {
	TopPositiveReasons int `yaml:"top_positive_reasons" json:"top_positive_reasons"`
	TopNegativeFactors int `yaml:"top_negative_factors" json:"top_negative_factors"`
}

// SafetyGuards are stability safeguards around the composite score.
// MaxDailyScoreChange nil이면 드리프트 캡 비활성화
type SafetyGuards struct {
	MaxDailyScoreChange *int            `yaml:"max_daily_score_change,omitempty" json:"max_daily_score_change,omitempty"`
	ManualOverrides     ManualOverrides `yaml:"manual_overrides" json:"manual_overrides"`
}

// ManualOverrides disable individual safeguards for incident response.
type ManualOverrides struct {
	DisableScoreChangeCap bool `yaml:"disable_score_change_cap" json:"disable_score_change_cap"`
}

// Validate checks all required analysis-config constraints.
// 실패 시 error 반환 (프로그램 중단)
func (c *AnalysisConfig) Validate() error {
	if sum := c.Weights.Sum(); sum != 100 {
		return ValidationError{"weights", fmt.Sprintf("must sum to 100, got %d", sum)}
	}

	if c.ScoreBounds.Min >= c.ScoreBounds.Max {
		return ValidationError{"score_bounds", "min must be < max"}
	}

	if c.RatingThresholds.BuyMin <= c.RatingThresholds.HoldMin {
		return ValidationError{"rating_thresholds", fmt.Sprintf("buy_min=%d must be > hold_min=%d", c.RatingThresholds.BuyMin, c.RatingThresholds.HoldMin)}
	}

	if c.TargetPrice.ReturnPerScorePoint <= 0 {
		return ValidationError{"target_price.return_per_score_point", "must be > 0"}
	}
	if c.TargetPrice.MinReturnPct > c.TargetPrice.MaxReturnPct {
		return ValidationError{"target_price", "min_return_pct must be <= max_return_pct"}
	}

	if c.RiskLevelThresholds.LowRiskMin <= c.RiskLevelThresholds.MediumRiskMin {
		return ValidationError{"risk_level_thresholds", "low_risk_min must be > medium_risk_min"}
	}

	if c.ReasonGeneration.TopPositiveReasons < 1 {
		return ValidationError{"reason_generation.top_positive_reasons", "must be >= 1"}
	}
	if c.ReasonGeneration.TopNegativeFactors < 1 {
		return ValidationError{"reason_generation.top_negative_factors", "must be >= 1"}
	}

	if c.SafetyGuards.MaxDailyScoreChange != nil && *c.SafetyGuards.MaxDailyScoreChange < 1 {
		return ValidationError{"safety_guards.max_daily_score_change", "must be >= 1 when set"}
	}

	return nil
}

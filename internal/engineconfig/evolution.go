package engineconfig

import "fmt"

// EvolutionConfig는 전략 성과 추적과 가중치 진화 설정
type EvolutionConfig struct {
	TrackingHorizons    []string          `yaml:"tracking_horizons" json:"tracking_horizons"`
	Degradation         Degradation       `yaml:"degradation" json:"degradation"`
	StrategyToWeightKey map[string]string `yaml:"strategy_to_weight_key" json:"strategy_to_weight_key"`
	WeightAdjustment    WeightAdjustment  `yaml:"weight_adjustment" json:"weight_adjustment"`
	SafetyGuards        EvolutionGuards   `yaml:"safety_guards" json:"safety_guards"`
}

// Degradation parameterizes the per-horizon degradation classification.
type Degradation struct {
	WindowSize               int                `yaml:"window_size" json:"window_size"`
	MinTradesRequired        int                `yaml:"min_trades_required" json:"min_trades_required"`
	WinRateThreshold         float64            `yaml:"win_rate_threshold" json:"win_rate_threshold"`
	BenchmarkReturnByHorizon map[string]float64 `yaml:"benchmark_return_by_horizon" json:"benchmark_return_by_horizon"`
}

// WeightAdjustment bounds how far one evolution cycle may move the weights.
type WeightAdjustment struct {
	StepPct               int `yaml:"step_pct" json:"step_pct"`
	MaxTotalAdjustmentPct int `yaml:"max_total_adjustment_pct" json:"max_total_adjustment_pct"`
	MinWeight             int `yaml:"min_weight" json:"min_weight"`
	MaxWeight             int `yaml:"max_weight" json:"max_weight"`
}

// EvolutionGuards gate how often evolution may run.
type EvolutionGuards struct {
	CooldownDays    int                      `yaml:"cooldown_days" json:"cooldown_days"`
	ManualOverrides EvolutionGuardsOverrides `yaml:"manual_overrides" json:"manual_overrides"`
}

// EvolutionGuardsOverrides disable evolution safeguards for incident response.
type EvolutionGuardsOverrides struct {
	DisableEvolutionCooldown bool `yaml:"disable_evolution_cooldown" json:"disable_evolution_cooldown"`
	DisableWeightUpdates     bool `yaml:"disable_weight_updates" json:"disable_weight_updates"`
}

// Validate checks all required evolution-config constraints.
func (c *EvolutionConfig) Validate() error {
	if len(c.TrackingHorizons) == 0 {
		return ValidationError{"tracking_horizons", "must not be empty"}
	}
	for _, horizon := range c.TrackingHorizons {
		if _, ok := c.Degradation.BenchmarkReturnByHorizon[horizon]; !ok {
			return ValidationError{"degradation.benchmark_return_by_horizon", fmt.Sprintf("missing benchmark for horizon %q", horizon)}
		}
	}

	if c.Degradation.WindowSize < 1 {
		return ValidationError{"degradation.window_size", "must be >= 1"}
	}
	if c.Degradation.MinTradesRequired < 1 {
		return ValidationError{"degradation.min_trades_required", "must be >= 1"}
	}
	if c.Degradation.WinRateThreshold < 0 || c.Degradation.WinRateThreshold > 1 {
		return ValidationError{"degradation.win_rate_threshold", "must be in [0, 1]"}
	}

	if len(c.StrategyToWeightKey) == 0 {
		return ValidationError{"strategy_to_weight_key", "must not be empty"}
	}

	adj := c.WeightAdjustment
	if adj.StepPct < 1 {
		return ValidationError{"weight_adjustment.step_pct", "must be >= 1"}
	}
	if adj.MaxTotalAdjustmentPct < adj.StepPct {
		return ValidationError{"weight_adjustment.max_total_adjustment_pct", "must be >= step_pct"}
	}
	if adj.MinWeight < 0 || adj.MinWeight > adj.MaxWeight {
		return ValidationError{"weight_adjustment", "must satisfy 0 <= min_weight <= max_weight"}
	}

	if c.SafetyGuards.CooldownDays < 0 {
		return ValidationError{"safety_guards.cooldown_days", "must be >= 0"}
	}

	return nil
}

package contracts

// OutcomeRecord is a single realized recommendation outcome for one
// strategy signal. Supplied externally; immutable.
type OutcomeRecord struct {
	StrategyID string             `json:"strategy_id"`
	Timestamp  string             `json:"timestamp"`
	ReturnsPct map[string]float64 `json:"returns_pct"` // key: horizon label ("1d", "5d", ...)
}

// HorizonMetrics are realized performance metrics for one tracking horizon.
type HorizonMetrics struct {
	TradeCount         int     `json:"trade_count"`
	WinRate            float64 `json:"win_rate"`
	AvgReturnPct       float64 `json:"avg_return_pct"`
	BenchmarkReturnPct float64 `json:"benchmark_return_pct"`
}

// StrategyPerformance summarizes one strategy's recent outcomes and its
// degradation classification.
type StrategyPerformance struct {
	StrategyID      string                    `json:"strategy_id"`
	Metrics         map[string]HorizonMetrics `json:"metrics"`
	Degraded        bool                      `json:"degraded"`
	DegradedReasons []string                  `json:"degraded_reasons"`
}

// WeightChange records one applied scoring-weight adjustment.
type WeightChange struct {
	StrategyID string `json:"strategy_id"`
	WeightKey  string `json:"weight_key"`
	OldWeight  int    `json:"old_weight"`
	NewWeight  int    `json:"new_weight"`
	Reason     string `json:"reason"`
}

// EvolutionState gates the evolution cooldown. Overwritten only when a
// weight change is actually applied.
type EvolutionState struct {
	LastWeightUpdateDate string `json:"last_weight_update_date"`
}

// EvolutionReport is the fully transparent output of one evolution cycle.
type EvolutionReport struct {
	CooldownActive     bool                           `json:"cooldown_active"`
	WhatWorkedRecently []string                       `json:"what_worked_recently"`
	WhatFailed         []string                       `json:"what_failed"`
	OldWeights         map[string]int                 `json:"old_weights"`
	NewWeights         map[string]int                 `json:"new_weights"`
	AppliedChanges     []WeightChange                 `json:"applied_changes"`
	PerformanceDetails map[string]StrategyPerformance `json:"performance_details"`
}

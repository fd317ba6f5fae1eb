package evolution

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vigil/internal/contracts"
)

func baseWeights() map[string]int {
	return map[string]int{
		"trend_momentum":   25,
		"fundamentals":     25,
		"news_sentiment":   20,
		"earnings_context": 15,
		"risk_volatility":  15,
	}
}

func performanceOf(strategyID string, degraded bool) contracts.StrategyPerformance {
	perf := contracts.StrategyPerformance{
		StrategyID: strategyID,
		Metrics:    map[string]contracts.HorizonMetrics{},
		Degraded:   degraded,
	}
	if degraded {
		perf.DegradedReasons = []string{"1d win_rate 30.00% below threshold 45.00%"}
	}
	return perf
}

func TestEvolve_DegradedStrategyLosesOneStep(t *testing.T) {
	engine := NewEngine(testEvolutionConfig(t), zerolog.Nop())

	performance := map[string]contracts.StrategyPerformance{
		"earnings_play": performanceOf("earnings_play", true),
	}

	newWeights, changes := engine.Evolve(baseWeights(), performance)

	require.Len(t, changes, 1)
	assert.Equal(t, "earnings_play", changes[0].StrategyID)
	assert.Equal(t, "earnings_context", changes[0].WeightKey)
	assert.Equal(t, 15, changes[0].OldWeight)
	assert.Equal(t, 10, changes[0].NewWeight)
	assert.Equal(t, "degraded performance detected", changes[0].Reason)

	// 15 -> 10 leaves sum 95; the 5-point shortfall is redistributed one
	// point per key in name order, so every key gains one.
	assert.Equal(t, map[string]int{
		"trend_momentum":   26,
		"fundamentals":     26,
		"news_sentiment":   21,
		"earnings_context": 11,
		"risk_volatility":  16,
	}, newWeights)
}

func TestEvolve_OutperformingStrategyGainsOneStep(t *testing.T) {
	engine := NewEngine(testEvolutionConfig(t), zerolog.Nop())

	performance := map[string]contracts.StrategyPerformance{
		"trend_following": performanceOf("trend_following", false),
	}

	newWeights, changes := engine.Evolve(baseWeights(), performance)

	require.Len(t, changes, 1)
	assert.Equal(t, 25, changes[0].OldWeight)
	assert.Equal(t, 30, changes[0].NewWeight)
	assert.Equal(t, "relative outperformance detected", changes[0].Reason)
	assert.Equal(t, 30, newWeights["trend_momentum"])
}

func TestEvolve_UntrackedStrategiesLeftAlone(t *testing.T) {
	engine := NewEngine(testEvolutionConfig(t), zerolog.Nop())

	newWeights, changes := engine.Evolve(baseWeights(), nil)

	assert.Empty(t, changes)
	assert.Equal(t, baseWeights(), newWeights)
}

func TestEvolve_StopsAtMaxTotalAdjustment(t *testing.T) {
	engine := NewEngine(testEvolutionConfig(t), zerolog.Nop())

	performance := map[string]contracts.StrategyPerformance{}
	for _, strategyID := range []string{"earnings_play", "fundamental_value", "low_volatility", "news_driven", "trend_following"} {
		performance[strategyID] = performanceOf(strategyID, true)
	}

	newWeights, changes := engine.Evolve(baseWeights(), performance)

	// step 5 and cap 10: only the first two strategies in id order move
	// before the cumulative shift hits the cap.
	require.Len(t, changes, 2)
	assert.Equal(t, "earnings_play", changes[0].StrategyID)
	assert.Equal(t, "fundamental_value", changes[1].StrategyID)

	sum := 0
	for _, w := range newWeights {
		sum += w
	}
	assert.Equal(t, 100, sum)
}

func TestEvolve_MinWeightFloorSuppressesChange(t *testing.T) {
	engine := NewEngine(testEvolutionConfig(t), zerolog.Nop())

	weights := baseWeights()
	weights["risk_volatility"] = 5 // already at min_weight

	performance := map[string]contracts.StrategyPerformance{
		"low_volatility": performanceOf("low_volatility", true),
	}

	newWeights, changes := engine.Evolve(weights, performance)

	assert.Empty(t, changes)
	assert.Equal(t, 5, newWeights["risk_volatility"])
}

func TestEvolve_MaxWeightCapsUpgrade(t *testing.T) {
	engine := NewEngine(testEvolutionConfig(t), zerolog.Nop())

	weights := baseWeights()
	weights["trend_momentum"] = 38

	performance := map[string]contracts.StrategyPerformance{
		"trend_following": performanceOf("trend_following", false),
	}

	newWeights, changes := engine.Evolve(weights, performance)

	require.Len(t, changes, 1)
	assert.Equal(t, 40, changes[0].NewWeight)
	assert.Equal(t, 40, newWeights["trend_momentum"])
}

func TestRenormalizeTo_DistributesShortfallRoundRobin(t *testing.T) {
	weights := map[string]int{"a": 30, "b": 30, "c": 27}

	result := renormalizeTo(weights, 100)

	// 13 points cycle a, b, c, a, b, c, ... in key order.
	assert.Equal(t, map[string]int{"a": 35, "b": 34, "c": 31}, result)
	assert.Equal(t, map[string]int{"a": 30, "b": 30, "c": 27}, weights, "input must not be mutated")
}

func TestRenormalizeTo_RemovesExcessRoundRobin(t *testing.T) {
	weights := map[string]int{"a": 60, "b": 50}

	result := renormalizeTo(weights, 100)

	// 10 points come off a, b, a, b, ... in key order.
	assert.Equal(t, map[string]int{"a": 55, "b": 45}, result)
	assert.Equal(t, map[string]int{"a": 60, "b": 50}, weights, "input must not be mutated")
}

func TestEvolve_TwoUpgradesStillSumToHundred(t *testing.T) {
	engine := NewEngine(testEvolutionConfig(t), zerolog.Nop())

	performance := map[string]contracts.StrategyPerformance{
		"trend_following": performanceOf("trend_following", false),
		"news_driven":     performanceOf("news_driven", false),
	}

	newWeights, changes := engine.Evolve(baseWeights(), performance)

	require.Len(t, changes, 2)

	// 두 번 올라간 110에서 키 이름 순으로 2점씩 덜어낸다
	assert.Equal(t, map[string]int{
		"trend_momentum":   28,
		"fundamentals":     23,
		"news_sentiment":   23,
		"earnings_context": 13,
		"risk_volatility":  13,
	}, newWeights)

	sum := 0
	for _, w := range newWeights {
		sum += w
	}
	assert.Equal(t, 100, sum)
}

func TestBuildReport_SplitsWorkedAndFailed(t *testing.T) {
	engine := NewEngine(testEvolutionConfig(t), zerolog.Nop())

	performance := map[string]contracts.StrategyPerformance{
		"trend_following": performanceOf("trend_following", false),
		"news_driven":     performanceOf("news_driven", true),
		"earnings_play":   performanceOf("earnings_play", false),
	}

	report := engine.BuildReport(performance, baseWeights(), baseWeights(), nil, true)

	assert.Equal(t, []string{"earnings_play", "trend_following"}, report.WhatWorkedRecently)
	assert.Equal(t, []string{"news_driven"}, report.WhatFailed)
	assert.True(t, report.CooldownActive)
}

func TestCooldownActive(t *testing.T) {
	today := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		lastUpdate      string
		disableCooldown bool
		want            bool
	}{
		{"within cooldown window", "2026-01-10", false, true},
		{"same day", "2026-01-15", false, true},
		{"window elapsed", "2026-01-08", false, false},
		{"never updated", "", false, false},
		{"unparseable date ignored", "not-a-date", false, false},
		{"manual override disables", "2026-01-14", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testEvolutionConfig(t)
			cfg.SafetyGuards.ManualOverrides.DisableEvolutionCooldown = tt.disableCooldown
			engine := NewEngine(cfg, zerolog.Nop())

			state := contracts.EvolutionState{LastWeightUpdateDate: tt.lastUpdate}
			assert.Equal(t, tt.want, engine.CooldownActive(state, today))
		})
	}
}

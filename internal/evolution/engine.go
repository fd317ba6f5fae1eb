package evolution

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/vigil/internal/contracts"
	"github.com/wonny/vigil/internal/engineconfig"
)

const dateLayout = "2006-01-02"

// Engine proposes bounded weight adjustments from strategy performance.
// ⭐ SSOT: 가중치 진화 규칙은 여기서만 수정
type Engine struct {
	cfg *engineconfig.EvolutionConfig
	log zerolog.Logger
}

// NewEngine creates a weight evolution engine.
func NewEngine(cfg *engineconfig.EvolutionConfig, log zerolog.Logger) *Engine {
	return &Engine{
		cfg: cfg,
		log: log.With().Str("component", "evolution.engine").Logger(),
	}
}

// CooldownActive reports whether the minimum interval since the last applied
// weight update has not yet elapsed. An unset or malformed last-update date
// means no cooldown.
func (e *Engine) CooldownActive(state contracts.EvolutionState, today time.Time) bool {
	if e.cfg.SafetyGuards.ManualOverrides.DisableEvolutionCooldown {
		return false
	}
	if state.LastWeightUpdateDate == "" {
		return false
	}
	lastUpdate, err := time.Parse(dateLayout, state.LastWeightUpdateDate)
	if err != nil {
		e.log.Warn().
			Str("last_weight_update_date", state.LastWeightUpdateDate).
			Msg("unparseable last update date, ignoring cooldown")
		return false
	}
	elapsed := int(today.Sub(lastUpdate).Hours() / 24)
	return elapsed < e.cfg.SafetyGuards.CooldownDays
}

// Evolve derives new component weights from per-strategy performance.
// Degraded strategies lose one step (floored at min_weight), non-degraded
// ones gain one step (capped at max_weight), and strategies without outcome
// data are left alone. Strategies are visited in sorted-id order and the
// pass stops once the cumulative absolute shift reaches the session cap, so
// not every eligible strategy is necessarily adjusted in one run. The
// result is renormalized so the weights sum to exactly 100.
func (e *Engine) Evolve(currentWeights map[string]int, performance map[string]contracts.StrategyPerformance) (map[string]int, []contracts.WeightChange) {
	adj := e.cfg.WeightAdjustment

	newWeights := make(map[string]int, len(currentWeights))
	for key, value := range currentWeights {
		newWeights[key] = value
	}

	changes := []contracts.WeightChange{}
	totalShift := 0

	for _, strategyID := range sortedKeys(e.cfg.StrategyToWeightKey) {
		if totalShift >= adj.MaxTotalAdjustmentPct {
			e.log.Info().
				Int("total_shift", totalShift).
				Msg("max total adjustment reached, remaining strategies skipped")
			break
		}

		weightKey := e.cfg.StrategyToWeightKey[strategyID]
		current, ok := newWeights[weightKey]
		if !ok {
			e.log.Warn().Str("weight_key", weightKey).Msg("mapped weight key missing from weights, skipped")
			continue
		}

		perf, tracked := performance[strategyID]

		var proposed int
		var reason string
		switch {
		case tracked && perf.Degraded:
			proposed = max(adj.MinWeight, current-adj.StepPct)
			reason = "degraded performance detected"
		case tracked:
			proposed = min(adj.MaxWeight, current+adj.StepPct)
			reason = "relative outperformance detected"
		default:
			// 실적 데이터 없는 전략은 그대로 둔다
			continue
		}

		if proposed == current {
			continue
		}

		delta := proposed - current
		if delta < 0 {
			delta = -delta
		}

		newWeights[weightKey] = proposed
		totalShift += delta
		changes = append(changes, contracts.WeightChange{
			StrategyID: strategyID,
			WeightKey:  weightKey,
			OldWeight:  current,
			NewWeight:  proposed,
			Reason:     reason,
		})
	}

	if len(changes) == 0 {
		return newWeights, changes
	}
	return renormalizeTo(newWeights, 100), changes
}

// BuildReport packages an evolution cycle for operators and artifacts.
func (e *Engine) BuildReport(performance map[string]contracts.StrategyPerformance, oldWeights, newWeights map[string]int, changes []contracts.WeightChange, cooldownActive bool) contracts.EvolutionReport {
	worked := []string{}
	failed := []string{}
	for _, strategyID := range sortedKeys(performance) {
		perf := performance[strategyID]
		if perf.Degraded {
			failed = append(failed, strategyID)
		} else {
			worked = append(worked, strategyID)
		}
	}

	return contracts.EvolutionReport{
		CooldownActive:     cooldownActive,
		WhatWorkedRecently: worked,
		WhatFailed:         failed,
		OldWeights:         oldWeights,
		NewWeights:         newWeights,
		AppliedChanges:     changes,
		PerformanceDetails: performance,
	}
}

// renormalizeTo nudges the weights to the exact target one point at a time,
// cycling through the keys in name order. A deficit adds points, an excess
// removes them, so the sum lands on the target from either side.
func renormalizeTo(weights map[string]int, target int) map[string]int {
	result := make(map[string]int, len(weights))
	sum := 0
	for key, value := range weights {
		result[key] = value
		sum += value
	}

	shortfall := target - sum
	if shortfall == 0 || len(result) == 0 {
		return result
	}

	keys := sortedKeys(result)
	step := 1
	if shortfall < 0 {
		shortfall = -shortfall
		step = -1
	}
	for i := 0; i < shortfall; i++ {
		result[keys[i%len(keys)]] += step
	}
	return result
}

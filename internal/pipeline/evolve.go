package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/vigil/internal/contracts"
	"github.com/wonny/vigil/internal/engineconfig"
	"github.com/wonny/vigil/internal/evolution"
)

// EvolutionRunner drives one strategy-evolution cycle end to end:
// outcomes in, performance summary, bounded weight proposal, state update.
type EvolutionRunner struct {
	cfg     *engineconfig.EvolutionConfig
	tracker *evolution.Tracker
	engine  *evolution.Engine
	state   *evolution.StateStore
	log     zerolog.Logger
}

// NewEvolutionRunner assembles an evolution pipeline from a validated config.
func NewEvolutionRunner(cfg *engineconfig.EvolutionConfig, statePath string, log zerolog.Logger) *EvolutionRunner {
	return &EvolutionRunner{
		cfg:     cfg,
		tracker: evolution.NewTracker(cfg, log),
		engine:  evolution.NewEngine(cfg, log),
		state:   evolution.NewStateStore(statePath, log),
		log:     log.With().Str("component", "pipeline.evolve").Logger(),
	}
}

// LoadOutcomes reads realized outcome records from a JSON file.
func LoadOutcomes(path string) ([]contracts.OutcomeRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read outcomes: %w", err)
	}
	var outcomes []contracts.OutcomeRecord
	if err := json.Unmarshal(data, &outcomes); err != nil {
		return nil, fmt.Errorf("parse outcomes %s: %w", path, err)
	}
	return outcomes, nil
}

// Run produces a full evolution report for one cycle. Weight changes are
// only computed, applied to state, and reflected in the report when the
// cooldown has elapsed and weight updates are not disabled; the performance
// summary itself is always computed for transparency.
func (r *EvolutionRunner) Run(currentWeights map[string]int, outcomes []contracts.OutcomeRecord, today time.Time) (*contracts.EvolutionReport, error) {
	performance := r.tracker.Summarize(outcomes)

	state, err := r.state.Load()
	if err != nil {
		return nil, err
	}

	cooldownActive := r.engine.CooldownActive(state, today)
	updatesDisabled := r.cfg.SafetyGuards.ManualOverrides.DisableWeightUpdates

	if cooldownActive || updatesDisabled {
		r.log.Info().
			Bool("cooldown_active", cooldownActive).
			Bool("updates_disabled", updatesDisabled).
			Msg("weight updates skipped this cycle")
		report := r.engine.BuildReport(performance, currentWeights, currentWeights, nil, cooldownActive)
		return &report, nil
	}

	newWeights, changes := r.engine.Evolve(currentWeights, performance)

	// 변경 없으면 상태 파일 그대로 둔다
	if len(changes) > 0 {
		state.LastWeightUpdateDate = today.Format("2006-01-02")
		if err := r.state.Save(state); err != nil {
			return nil, err
		}
	}

	report := r.engine.BuildReport(performance, currentWeights, newWeights, changes, false)

	r.log.Info().
		Int("strategies", len(performance)).
		Int("applied_changes", len(changes)).
		Msg("evolution cycle complete")

	return &report, nil
}

package evolution

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/wonny/vigil/internal/contracts"
	"github.com/wonny/vigil/internal/engineconfig"
)

// Tracker groups realized strategy outcomes and classifies degradation.
// ⭐ SSOT: 전략 성과 집계/열화 판정은 여기서만
type Tracker struct {
	cfg *engineconfig.EvolutionConfig
	log zerolog.Logger
}

// NewTracker creates a performance tracker over a validated configuration.
func NewTracker(cfg *engineconfig.EvolutionConfig, log zerolog.Logger) *Tracker {
	return &Tracker{
		cfg: cfg,
		log: log.With().Str("component", "evolution.tracker").Logger(),
	}
}

// Summarize groups outcomes by strategy, keeps the trailing window of the
// most recent records, and computes win rate and mean return per horizon.
// A horizon with too few observations reports zero metrics and is never
// judged degraded.
func (t *Tracker) Summarize(outcomes []contracts.OutcomeRecord) map[string]contracts.StrategyPerformance {
	degradationCfg := t.cfg.Degradation
	horizons := t.cfg.TrackingHorizons

	grouped := make(map[string][]contracts.OutcomeRecord)
	for _, record := range outcomes {
		grouped[record.StrategyID] = append(grouped[record.StrategyID], record)
	}

	summary := make(map[string]contracts.StrategyPerformance, len(grouped))
	for _, strategyID := range sortedKeys(grouped) {
		ordered := grouped[strategyID]
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Timestamp < ordered[j].Timestamp
		})

		// Trailing window bounds memory and reacts to recent regime changes.
		if len(ordered) > degradationCfg.WindowSize {
			ordered = ordered[len(ordered)-degradationCfg.WindowSize:]
		}

		metrics := make(map[string]contracts.HorizonMetrics, len(horizons))
		degradedReasons := []string{}

		for _, horizon := range horizons {
			values := make([]float64, 0, len(ordered))
			for _, record := range ordered {
				if value, ok := record.ReturnsPct[horizon]; ok {
					values = append(values, value)
				}
			}

			benchmark := degradationCfg.BenchmarkReturnByHorizon[horizon]

			if len(values) < degradationCfg.MinTradesRequired {
				metrics[horizon] = contracts.HorizonMetrics{
					TradeCount:         len(values),
					BenchmarkReturnPct: benchmark,
				}
				continue
			}

			wins := 0
			sum := 0.0
			for _, value := range values {
				if value > 0 {
					wins++
				}
				sum += value
			}
			winRate := float64(wins) / float64(len(values))
			avgReturn := sum / float64(len(values))

			metrics[horizon] = contracts.HorizonMetrics{
				TradeCount:         len(values),
				WinRate:            roundTo(winRate, 4),
				AvgReturnPct:       roundTo(avgReturn, 4),
				BenchmarkReturnPct: benchmark,
			}

			if winRate < degradationCfg.WinRateThreshold {
				degradedReasons = append(degradedReasons,
					fmt.Sprintf("%s win_rate %.2f%% below threshold %.2f%%", horizon, winRate*100, degradationCfg.WinRateThreshold*100))
			}
			if avgReturn < benchmark {
				degradedReasons = append(degradedReasons,
					fmt.Sprintf("%s avg_return %.2f%% below benchmark %.2f%%", horizon, avgReturn, benchmark))
			}
		}

		summary[strategyID] = contracts.StrategyPerformance{
			StrategyID:      strategyID,
			Metrics:         metrics,
			Degraded:        len(degradedReasons) > 0,
			DegradedReasons: degradedReasons,
		}
	}

	t.log.Info().
		Int("strategies", len(summary)).
		Int("outcomes", len(outcomes)).
		Msg("strategy performance summarized")

	return summary
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func roundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}

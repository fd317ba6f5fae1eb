package engineconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validAnalysisYAML = `
weights:
  trend_momentum: 25
  fundamentals: 25
  news_sentiment: 20
  earnings_context: 15
  risk_volatility: 15
score_bounds:
  min: 0
  max: 100
rating_thresholds:
  buy_min: 65
  hold_min: 45
target_price:
  neutral_score: 50
  return_per_score_point: 0.5
  min_return_pct: -20.0
  max_return_pct: 30.0
risk_level_thresholds:
  low_risk_min: 70.0
  medium_risk_min: 40.0
reason_generation:
  top_positive_reasons: 3
  top_negative_factors: 2
safety_guards:
  max_daily_score_change: 10
  manual_overrides:
    disable_score_change_cap: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAnalysis_Valid(t *testing.T) {
	cfg, err := LoadAnalysis(writeConfig(t, validAnalysisYAML))

	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Weights.Sum())
	assert.Equal(t, 65, cfg.RatingThresholds.BuyMin)
	require.NotNil(t, cfg.SafetyGuards.MaxDailyScoreChange)
	assert.Equal(t, 10, *cfg.SafetyGuards.MaxDailyScoreChange)
}

func TestLoadAnalysis_UnknownFieldRejected(t *testing.T) {
	_, err := LoadAnalysis(writeConfig(t, validAnalysisYAML+"\nextra_section:\n  foo: 1\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")
}

func TestLoadAnalysis_WeightSumValidated(t *testing.T) {
	broken := `
weights:
  trend_momentum: 30
  fundamentals: 25
  news_sentiment: 20
  earnings_context: 15
  risk_volatility: 15
score_bounds:
  min: 0
  max: 100
rating_thresholds:
  buy_min: 65
  hold_min: 45
target_price:
  neutral_score: 50
  return_per_score_point: 0.5
  min_return_pct: -20.0
  max_return_pct: 30.0
risk_level_thresholds:
  low_risk_min: 70.0
  medium_risk_min: 40.0
reason_generation:
  top_positive_reasons: 3
  top_negative_factors: 2
`
	_, err := LoadAnalysis(writeConfig(t, broken))

	require.Error(t, err)

	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "weights", verr.Field)
	assert.Contains(t, verr.Message, "105")
}

func TestLoadAnalysis_MissingFile(t *testing.T) {
	_, err := LoadAnalysis(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadSanity_Valid(t *testing.T) {
	content := `
rules:
  rating_thresholds:
    buy_min: 65
    hold_min: 45
  target_return_tolerance_pct: 1.0
health_score:
  penalties:
    per_violation: 5
  violation_cap: 3
behavior_controls:
  block_buy_below_health_score: 70
`
	cfg, err := LoadSanity(writeConfig(t, content))

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.HealthScore.Penalties.PerViolation)
	assert.Equal(t, 70, cfg.BehaviorControls.BlockBuyBelowHealthScore)
}

func TestLoadEvolution_Valid(t *testing.T) {
	content := `
tracking_horizons: ["1d", "5d", "20d"]
degradation:
  window_size: 20
  min_trades_required: 5
  win_rate_threshold: 0.45
  benchmark_return_by_horizon:
    1d: 0.0
    5d: 0.5
    20d: 1.5
strategy_to_weight_key:
  trend_following: trend_momentum
  news_driven: news_sentiment
weight_adjustment:
  step_pct: 5
  max_total_adjustment_pct: 10
  min_weight: 5
  max_weight: 40
safety_guards:
  cooldown_days: 7
  manual_overrides:
    disable_evolution_cooldown: false
    disable_weight_updates: false
`
	cfg, err := LoadEvolution(writeConfig(t, content))

	require.NoError(t, err)
	assert.Equal(t, []string{"1d", "5d", "20d"}, cfg.TrackingHorizons)
	assert.Equal(t, "trend_momentum", cfg.StrategyToWeightKey["trend_following"])
	assert.Equal(t, 7, cfg.SafetyGuards.CooldownDays)
}

func TestHash_DeterministicPerContent(t *testing.T) {
	cfg1, err := LoadAnalysis(writeConfig(t, validAnalysisYAML))
	require.NoError(t, err)
	cfg2, err := LoadAnalysis(writeConfig(t, validAnalysisYAML))
	require.NoError(t, err)

	h1, err := Hash(cfg1)
	require.NoError(t, err)
	h2, err := Hash(cfg2)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestHash_ChangesWithContent(t *testing.T) {
	cfg, err := LoadAnalysis(writeConfig(t, validAnalysisYAML))
	require.NoError(t, err)
	original, err := Hash(cfg)
	require.NoError(t, err)

	cfg.RatingThresholds.BuyMin = 70
	modified, err := Hash(cfg)
	require.NoError(t, err)

	assert.NotEqual(t, original, modified)
}

func TestWeightsFromMap_RejectsUnknownKey(t *testing.T) {
	_, err := WeightsFromMap(map[string]int{"momentum_of_trend": 25})
	assert.EqualError(t, err, "unknown weight key: momentum_of_trend")

	w, err := WeightsFromMap(map[string]int{
		"trend_momentum":   25,
		"fundamentals":     25,
		"news_sentiment":   20,
		"earnings_context": 15,
		"risk_volatility":  15,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, w.Sum())
}

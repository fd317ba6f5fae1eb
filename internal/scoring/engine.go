package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wonny/vigil/internal/contracts"
	"github.com/wonny/vigil/internal/engineconfig"
)

// InputError는 요청별 검증 실패 (복구 가능, 배치 중단 없음)
type InputError struct {
	Field   string
	Message string
}

func (e InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Engine is the deterministic composite scoring engine.
// ⭐ SSOT: 점수/등급/목표가 산출 로직은 여기서만
type Engine struct {
	cfg *engineconfig.AnalysisConfig
	log zerolog.Logger
}

// NewEngine creates a scoring engine over a validated configuration.
func NewEngine(cfg *engineconfig.AnalysisConfig, log zerolog.Logger) *Engine {
	return &Engine{
		cfg: cfg,
		log: log.With().Str("component", "scoring.engine").Logger(),
	}
}

// contribution is one component's weighted contribution to the composite
// score. The slice order is the component declaration order, which is the
// documented tie-break for explanation ranking.
type contribution struct {
	Key    string
	Points float64
}

// Analyze computes the full analysis result for one stock. A previous
// score, when supplied, arms the daily drift cap and the audit fields.
func (e *Engine) Analyze(input contracts.AnalysisInput, previousScore *int) (*contracts.AnalysisResult, error) {
	normalized, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	breakdown := e.scoreBreakdown(normalized)
	uncapped := e.compositeScore(breakdown)
	score := e.applyDailyCap(uncapped, previousScore)

	targetPrice, expectedReturnPct := e.estimateTargetPrice(normalized.CurrentPrice, score)
	keyReasons, invalidatingFactors := e.buildExplanations(breakdown)

	result := &contracts.AnalysisResult{
		Ticker:              normalized.Ticker,
		Mode:                normalized.Mode,
		Score:               score,
		Rating:              e.mapScoreToRating(score),
		CurrentPrice:        round2(normalized.CurrentPrice),
		TargetPrice:         targetPrice,
		ExpectedReturnPct:   expectedReturnPct,
		RiskLevel:           e.classifyRiskLevel(normalized.Scores.RiskVolatility),
		KeyReasons:          keyReasons,
		InvalidatingFactors: invalidatingFactors,
	}

	if previousScore != nil {
		prev := *previousScore
		result.PreviousScore = &prev
		uncappedCopy := uncapped
		result.ScoreBeforeDailyCap = &uncappedCopy
	}

	e.log.Debug().
		Str("ticker", result.Ticker).
		Str("mode", string(result.Mode)).
		Int("score", result.Score).
		Str("rating", string(result.Rating)).
		Float64("target_price", result.TargetPrice).
		Msg("stock analyzed")

	return result, nil
}

// normalizeInput validates the request and upper-cases the ticker.
func normalizeInput(input contracts.AnalysisInput) (contracts.AnalysisInput, error) {
	ticker := strings.ToUpper(strings.TrimSpace(input.Ticker))
	if ticker == "" {
		return contracts.AnalysisInput{}, InputError{"ticker", "must be a non-empty string"}
	}
	if !input.Mode.Valid() {
		return contracts.AnalysisInput{}, InputError{"mode", "must be PRE_EARNINGS or POST_EARNINGS"}
	}
	if input.CurrentPrice <= 0 {
		return contracts.AnalysisInput{}, InputError{"current_price", "must be > 0"}
	}

	input.Ticker = ticker
	return input, nil
}

// selectedEarningsScore picks the earnings-context score by mode.
func selectedEarningsScore(input contracts.AnalysisInput) float64 {
	if input.Mode == contracts.ModePreEarnings {
		return input.Scores.EarningsContextPre
	}
	return input.Scores.EarningsContextPost
}

// scoreBreakdown clamps each component into the score bounds and weights it.
func (e *Engine) scoreBreakdown(input contracts.AnalysisInput) []contribution {
	bounds := e.cfg.ScoreBounds
	weights := e.cfg.Weights

	raw := []struct {
		key    string
		value  float64
		weight int
	}{
		{"trend_momentum", input.Scores.TrendMomentum, weights.TrendMomentum},
		{"fundamentals", input.Scores.Fundamentals, weights.Fundamentals},
		{"news_sentiment", input.Scores.NewsSentiment, weights.NewsSentiment},
		{"earnings_context", selectedEarningsScore(input), weights.EarningsContext},
		{"risk_volatility", input.Scores.RiskVolatility, weights.RiskVolatility},
	}

	breakdown := make([]contribution, 0, len(raw))
	for _, component := range raw {
		clamped := clamp(component.value, float64(bounds.Min), float64(bounds.Max))
		breakdown = append(breakdown, contribution{
			Key:    component.key,
			Points: clamped * float64(component.weight) / 100.0,
		})
	}
	return breakdown
}

// compositeScore rounds the breakdown sum and clamps it into bounds.
func (e *Engine) compositeScore(breakdown []contribution) int {
	total := 0.0
	for _, c := range breakdown {
		total += c.Points
	}
	bounds := e.cfg.ScoreBounds
	return int(clamp(math.Round(total), float64(bounds.Min), float64(bounds.Max)))
}

// applyDailyCap caps daily score drift unless manually overridden.
func (e *Engine) applyDailyCap(score int, previousScore *int) int {
	if previousScore == nil {
		return score
	}

	guards := e.cfg.SafetyGuards
	if guards.ManualOverrides.DisableScoreChangeCap || guards.MaxDailyScoreChange == nil {
		return score
	}

	maxChange := *guards.MaxDailyScoreChange
	lower := *previousScore - maxChange
	upper := *previousScore + maxChange
	return int(clamp(float64(score), float64(lower), float64(upper)))
}

// mapScoreToRating maps the final score to BUY/HOLD/SELL.
func (e *Engine) mapScoreToRating(score int) contracts.Rating {
	thresholds := e.cfg.RatingThresholds
	switch {
	case score >= thresholds.BuyMin:
		return contracts.RatingBuy
	case score >= thresholds.HoldMin:
		return contracts.RatingHold
	default:
		return contracts.RatingSell
	}
}

// estimateTargetPrice projects a target price from score distance to neutral.
func (e *Engine) estimateTargetPrice(currentPrice float64, score int) (float64, float64) {
	target := e.cfg.TargetPrice
	deltaPoints := float64(score - target.NeutralScore)

	expectedReturnPct := clamp(deltaPoints*target.ReturnPerScorePoint, target.MinReturnPct, target.MaxReturnPct)
	targetPrice := currentPrice * (1 + expectedReturnPct/100.0)
	return round2(targetPrice), round1(expectedReturnPct)
}

// classifyRiskLevel maps the raw risk/volatility score to a risk tier.
func (e *Engine) classifyRiskLevel(riskVolatility float64) contracts.RiskLevel {
	thresholds := e.cfg.RiskLevelThresholds
	switch {
	case riskVolatility >= thresholds.LowRiskMin:
		return contracts.RiskLow
	case riskVolatility >= thresholds.MediumRiskMin:
		return contracts.RiskMedium
	default:
		return contracts.RiskHigh
	}
}

// buildExplanations ranks contributions into key reasons and invalidating
// factors. Sorting is stable so ties keep component declaration order.
func (e *Engine) buildExplanations(breakdown []contribution) ([]string, []string) {
	reasonCfg := e.cfg.ReasonGeneration

	descending := make([]contribution, len(breakdown))
	copy(descending, breakdown)
	sort.SliceStable(descending, func(i, j int) bool {
		return descending[i].Points > descending[j].Points
	})

	ascending := make([]contribution, len(breakdown))
	copy(ascending, breakdown)
	sort.SliceStable(ascending, func(i, j int) bool {
		return ascending[i].Points < ascending[j].Points
	})

	topPositive := descending[:min(reasonCfg.TopPositiveReasons, len(descending))]
	topNegative := ascending[:min(reasonCfg.TopNegativeFactors, len(ascending))]

	keyReasons := make([]string, 0, len(topPositive))
	for _, c := range topPositive {
		keyReasons = append(keyReasons, fmt.Sprintf("%s contributed +%.2f points", componentLabel(c.Key), c.Points))
	}

	invalidatingFactors := make([]string, 0, len(topNegative))
	for _, c := range topNegative {
		invalidatingFactors = append(invalidatingFactors, fmt.Sprintf("Weak %s contribution (%.2f points)", componentLabel(c.Key), c.Points))
	}

	return keyReasons, invalidatingFactors
}

// componentLabel turns "trend_momentum" into "Trend Momentum".
func componentLabel(key string) string {
	words := strings.Split(key, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func clamp(value, minimum, maximum float64) float64 {
	return math.Max(minimum, math.Min(maximum, value))
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

package contracts

// Mode selects which earnings-context component score is used.
type Mode string

const (
	ModePreEarnings  Mode = "PRE_EARNINGS"
	ModePostEarnings Mode = "POST_EARNINGS"
)

// Valid reports whether the mode is one of the two supported values.
func (m Mode) Valid() bool {
	return m == ModePreEarnings || m == ModePostEarnings
}

// Rating 추천 등급
type Rating string

const (
	RatingBuy  Rating = "BUY"
	RatingHold Rating = "HOLD"
	RatingSell Rating = "SELL"
)

// RiskLevel 리스크 등급
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// ComponentScores holds the normalized component scores (0-100) for
// composite scoring. Immutable per analysis request.
type ComponentScores struct {
	TrendMomentum       float64 `json:"trend_momentum"`
	Fundamentals        float64 `json:"fundamentals"`
	NewsSentiment       float64 `json:"news_sentiment"`
	EarningsContextPre  float64 `json:"earnings_context_pre"`
	EarningsContextPost float64 `json:"earnings_context_post"`
	RiskVolatility      float64 `json:"risk_volatility"`
}

// AnalysisInput is the input model for deterministic single-stock analysis.
type AnalysisInput struct {
	Ticker       string          `json:"ticker"`
	Mode         Mode            `json:"mode"`
	CurrentPrice float64         `json:"current_price"`
	Scores       ComponentScores `json:"scores"`
}

// StrategyParameters are caller-supplied metadata echoed back by the manual
// analysis endpoint. They are passed through untouched, never scored.
type StrategyParameters struct {
	RiskTolerance        string `json:"risk_tolerance"`         // low, medium, high
	TimeHorizon          string `json:"time_horizon"`           // short, swing, long
	ExpectedProfitTarget string `json:"expected_profit_target"`
}

// AnalysisResult is the per-stock output of the scoring engine, enriched by
// downstream stages. The health guard may override Rating but always
// preserves the original under BaseRating.
type AnalysisResult struct {
	Ticker              string    `json:"ticker"`
	Mode                Mode      `json:"mode"`
	Score               int       `json:"score"`
	Rating              Rating    `json:"rating"`
	CurrentPrice        float64   `json:"current_price"`
	TargetPrice         float64   `json:"target_price"`
	ExpectedReturnPct   float64   `json:"expected_return_pct"`
	RiskLevel           RiskLevel `json:"risk_level"`
	KeyReasons          []string  `json:"key_reasons"`
	InvalidatingFactors []string  `json:"invalidating_factors"`

	// Drift-cap audit fields, present only when a previous score was supplied.
	PreviousScore       *int `json:"previous_score,omitempty"`
	ScoreBeforeDailyCap *int `json:"score_before_daily_cap,omitempty"`

	// Health-guard enrichment, set during batch runs.
	HealthScore            *int   `json:"health_score,omitempty"`
	SanityGuardActive      *bool  `json:"sanity_guard_active,omitempty"`
	BaseRating             Rating `json:"base_rating,omitempty"`
	SanityAdjustmentReason string `json:"sanity_adjustment_reason,omitempty"`

	// Manual analysis echo.
	StrategyParameters *StrategyParameters `json:"strategy_parameters,omitempty"`
}

// InputRejection records a per-stock validation failure during a batch run.
// A rejected stock never aborts processing of the rest of the batch.
type InputRejection struct {
	Ticker string `json:"ticker"`
	Error  string `json:"error"`
}

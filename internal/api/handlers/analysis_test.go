package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vigil/internal/contracts"
	"github.com/wonny/vigil/internal/engineconfig"
	"github.com/wonny/vigil/internal/scoring"
	"github.com/wonny/vigil/pkg/config"
	"github.com/wonny/vigil/pkg/logger"
)

func newTestHandler(t *testing.T) *AnalysisHandler {
	t.Helper()

	cfg := &engineconfig.AnalysisConfig{
		Weights: engineconfig.Weights{
			TrendMomentum:   25,
			Fundamentals:    25,
			NewsSentiment:   20,
			EarningsContext: 15,
			RiskVolatility:  15,
		},
		ScoreBounds:      engineconfig.Bounds{Min: 0, Max: 100},
		RatingThresholds: engineconfig.RatingThresholds{BuyMin: 65, HoldMin: 45},
		TargetPrice: engineconfig.TargetPriceConfig{
			NeutralScore:        50,
			ReturnPerScorePoint: 0.5,
			MinReturnPct:        -20.0,
			MaxReturnPct:        30.0,
		},
		RiskLevelThresholds: engineconfig.RiskLevelThresholds{LowRiskMin: 70.0, MediumRiskMin: 40.0},
		ReasonGeneration:    engineconfig.ReasonGeneration{TopPositiveReasons: 3, TopNegativeFactors: 2},
	}
	require.NoError(t, cfg.Validate())

	log := logger.New(&config.Config{Env: "test", LogLevel: "error"})
	engine := scoring.NewEngine(cfg, log.Zerolog())
	return NewAnalysisHandler(engine, log)
}

func validRequestBody() map[string]interface{} {
	return map[string]interface{}{
		"ticker": "nvda",
		"mode":   "PRE_EARNINGS",
		"strategy_parameters": map[string]interface{}{
			"risk_tolerance":         "medium",
			"time_horizon":           "swing",
			"expected_profit_target": "10%",
		},
		"component_scores": map[string]interface{}{
			"trend_momentum":        80,
			"fundamentals":          80,
			"news_sentiment":        80,
			"earnings_context_pre":  100,
			"earnings_context_post": 0,
			"risk_volatility":       80,
		},
		"current_price": 100,
	}
}

func postManualAnalysis(t *testing.T, handler *AnalysisHandler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch payload := body.(type) {
	case string:
		buf.WriteString(payload)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	}

	req := httptest.NewRequest(http.MethodPost, "/api/manual-analysis", &buf)
	rec := httptest.NewRecorder()
	handler.ManualAnalysis(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestManualAnalysis_HappyPath(t *testing.T) {
	handler := newTestHandler(t)

	rec := postManualAnalysis(t, handler, validRequestBody())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result contracts.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "NVDA", result.Ticker)
	assert.Equal(t, 83, result.Score)
	assert.Equal(t, contracts.RatingBuy, result.Rating)
	assert.Equal(t, 116.5, result.TargetPrice)

	// 전략 파라미터는 점수에 영향 없이 그대로 반환
	require.NotNil(t, result.StrategyParameters)
	assert.Equal(t, "medium", result.StrategyParameters.RiskTolerance)
	assert.Equal(t, "swing", result.StrategyParameters.TimeHorizon)
	assert.Equal(t, "10%", result.StrategyParameters.ExpectedProfitTarget)
}

func TestManualAnalysis_OverrideWinsOverCurrentPrice(t *testing.T) {
	handler := newTestHandler(t)

	body := validRequestBody()
	body["current_price_override"] = 200

	rec := postManualAnalysis(t, handler, body)

	require.Equal(t, http.StatusOK, rec.Code)
	var result contracts.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 200.0, result.CurrentPrice)
	assert.Equal(t, 233.0, result.TargetPrice)
}

func TestManualAnalysis_MalformedJSON(t *testing.T) {
	handler := newTestHandler(t)

	rec := postManualAnalysis(t, handler, "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "request body must be valid JSON", errorMessage(t, rec))
}

func TestManualAnalysis_ValidationMessages(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(body map[string]interface{})
		wantMsg string
	}{
		{
			"blank ticker",
			func(b map[string]interface{}) { b["ticker"] = "   " },
			"ticker must be a non-empty string",
		},
		{
			"bad mode",
			func(b map[string]interface{}) { b["mode"] = "MID_EARNINGS" },
			"mode must be PRE_EARNINGS or POST_EARNINGS",
		},
		{
			"missing strategy parameters",
			func(b map[string]interface{}) { delete(b, "strategy_parameters") },
			"strategy_parameters must be an object",
		},
		{
			"bad risk tolerance",
			func(b map[string]interface{}) {
				b["strategy_parameters"].(map[string]interface{})["risk_tolerance"] = "extreme"
			},
			"strategy_parameters.risk_tolerance must be low, medium, or high",
		},
		{
			"bad time horizon",
			func(b map[string]interface{}) {
				b["strategy_parameters"].(map[string]interface{})["time_horizon"] = "forever"
			},
			"strategy_parameters.time_horizon must be short, swing, or long",
		},
		{
			"blank profit target",
			func(b map[string]interface{}) {
				b["strategy_parameters"].(map[string]interface{})["expected_profit_target"] = "  "
			},
			"strategy_parameters.expected_profit_target must be a non-empty string",
		},
		{
			"missing component scores",
			func(b map[string]interface{}) { delete(b, "component_scores") },
			"component_scores must be an object",
		},
		{
			"incomplete component scores",
			func(b map[string]interface{}) {
				scores := b["component_scores"].(map[string]interface{})
				delete(scores, "fundamentals")
				delete(scores, "risk_volatility")
			},
			"component_scores missing fields: fundamentals, risk_volatility",
		},
		{
			"no price at all",
			func(b map[string]interface{}) { delete(b, "current_price") },
			"current_price_override or current_price is required",
		},
		{
			"non-positive price",
			func(b map[string]interface{}) { b["current_price"] = 0 },
			"current_price_override/current_price must be > 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t)
			body := validRequestBody()
			tt.mutate(body)

			rec := postManualAnalysis(t, handler, body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantMsg, errorMessage(t, rec))
		})
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wonny/vigil/internal/contracts"
	"github.com/wonny/vigil/internal/scoring"
	"github.com/wonny/vigil/pkg/logger"
)

// AnalysisHandler handles manual single-stock analysis requests
// ⭐ SSOT: 수동 분석 API 핸들러는 이 구조체에서만
type AnalysisHandler struct {
	engine *scoring.Engine
	logger *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(engine *scoring.Engine, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		engine: engine,
		logger: log,
	}
}

// ManualAnalysisRequest represents a manual analysis request
type ManualAnalysisRequest struct {
	Ticker               string                        `json:"ticker"`
	Mode                 string                        `json:"mode"`
	StrategyParameters   *contracts.StrategyParameters `json:"strategy_parameters"`
	ComponentScores      map[string]*float64           `json:"component_scores"`
	CurrentPriceOverride *float64                      `json:"current_price_override"`
	CurrentPrice         *float64                      `json:"current_price"`
}

var requiredComponentScores = []string{
	"trend_momentum",
	"fundamentals",
	"news_sentiment",
	"earnings_context_pre",
	"earnings_context_post",
	"risk_volatility",
}

// ManualAnalysis scores a single stock from caller-supplied component scores
// POST /api/manual-analysis
func (h *AnalysisHandler) ManualAnalysis(w http.ResponseWriter, r *http.Request) {
	var req ManualAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	input, strategy, errMsg := validateManualRequest(req)
	if errMsg != "" {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	result, err := h.engine.Analyze(input, nil)
	if err != nil {
		h.logger.WithError(err).Error("Manual analysis failed")
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result.StrategyParameters = strategy

	respondJSON(w, http.StatusOK, result)
}

func validateManualRequest(req ManualAnalysisRequest) (contracts.AnalysisInput, *contracts.StrategyParameters, string) {
	var input contracts.AnalysisInput

	if strings.TrimSpace(req.Ticker) == "" {
		return input, nil, "ticker must be a non-empty string"
	}

	mode := contracts.Mode(req.Mode)
	if !mode.Valid() {
		return input, nil, "mode must be PRE_EARNINGS or POST_EARNINGS"
	}

	if req.StrategyParameters == nil {
		return input, nil, "strategy_parameters must be an object"
	}
	strategy := *req.StrategyParameters
	switch strategy.RiskTolerance {
	case "low", "medium", "high":
	default:
		return input, nil, "strategy_parameters.risk_tolerance must be low, medium, or high"
	}
	switch strategy.TimeHorizon {
	case "short", "swing", "long":
	default:
		return input, nil, "strategy_parameters.time_horizon must be short, swing, or long"
	}
	strategy.ExpectedProfitTarget = strings.TrimSpace(strategy.ExpectedProfitTarget)
	if strategy.ExpectedProfitTarget == "" {
		return input, nil, "strategy_parameters.expected_profit_target must be a non-empty string"
	}

	if req.ComponentScores == nil {
		return input, nil, "component_scores must be an object"
	}
	missing := []string{}
	for _, field := range requiredComponentScores {
		if value, ok := req.ComponentScores[field]; !ok || value == nil {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return input, nil, "component_scores missing fields: " + strings.Join(missing, ", ")
	}

	// Override wins when both prices are supplied.
	price := req.CurrentPrice
	if req.CurrentPriceOverride != nil {
		price = req.CurrentPriceOverride
	}
	if price == nil {
		return input, nil, "current_price_override or current_price is required"
	}
	if *price <= 0 {
		return input, nil, "current_price_override/current_price must be > 0"
	}

	input = contracts.AnalysisInput{
		Ticker:       strings.ToUpper(strings.TrimSpace(req.Ticker)),
		Mode:         mode,
		CurrentPrice: *price,
		Scores: contracts.ComponentScores{
			TrendMomentum:       *req.ComponentScores["trend_momentum"],
			Fundamentals:        *req.ComponentScores["fundamentals"],
			NewsSentiment:       *req.ComponentScores["news_sentiment"],
			EarningsContextPre:  *req.ComponentScores["earnings_context_pre"],
			EarningsContextPost: *req.ComponentScores["earnings_context_post"],
			RiskVolatility:      *req.ComponentScores["risk_volatility"],
		},
	}
	return input, &strategy, ""
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

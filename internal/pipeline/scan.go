package pipeline

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wonny/vigil/internal/contracts"
	"github.com/wonny/vigil/internal/engineconfig"
	"github.com/wonny/vigil/internal/health"
	"github.com/wonny/vigil/internal/sanity"
	"github.com/wonny/vigil/internal/scoring"
)

// ScanRequest is one full daily batch evaluation.
type ScanRequest struct {
	ReportDate     string                    `json:"report_date"`
	Stocks         []contracts.AnalysisInput `json:"stocks"`
	PreviousScores map[string]int            `json:"previous_scores,omitempty"`
}

// ScanResult bundles everything one scan cycle produced.
type ScanResult struct {
	Results      []contracts.AnalysisResult   `json:"results"`
	Rejections   []contracts.InputRejection   `json:"rejections,omitempty"`
	SanityReport contracts.SanityReport       `json:"sanity_report"`
	Controls     contracts.HealthControls     `json:"health_controls"`
	HistoryEntry contracts.HealthHistoryEntry `json:"history_entry"`
	Trend        contracts.HealthTrend        `json:"trend"`
}

// Runner wires scoring, sanity checking, the health guard and history
// persistence into one deterministic daily scan.
// ⭐ SSOT: 일일 스캔 파이프라인 순서는 여기서만 결정
type Runner struct {
	engine  *scoring.Engine
	checker *sanity.Checker
	guard   *sanity.Guard
	store   *health.HistoryStore
	log     zerolog.Logger
}

// NewRunner assembles a scan pipeline from validated configurations.
func NewRunner(analysisCfg *engineconfig.AnalysisConfig, sanityCfg *engineconfig.SanityConfig, historyPath string, log zerolog.Logger) *Runner {
	return &Runner{
		engine:  scoring.NewEngine(analysisCfg, log),
		checker: sanity.NewChecker(sanityCfg, log),
		guard:   sanity.NewGuard(sanityCfg, log),
		store:   health.NewHistoryStore(historyPath, log),
		log:     log.With().Str("component", "pipeline.scan").Logger(),
	}
}

// Run evaluates the batch. Invalid inputs are collected as rejections, never
// aborting the healthy remainder. The sanity report is computed over all
// accepted results, the guard is applied, and the health history is updated
// for the report date before the trend is recomputed.
func (r *Runner) Run(req ScanRequest) (*ScanResult, error) {
	if req.ReportDate == "" {
		return nil, fmt.Errorf("report_date is required")
	}

	results := make([]contracts.AnalysisResult, 0, len(req.Stocks))
	rejections := []contracts.InputRejection{}

	for _, stock := range req.Stocks {
		// 이전 점수는 정규화된 티커로 저장되므로 조회 전에 맞춰준다
		var previous *int
		if prev, ok := req.PreviousScores[strings.ToUpper(strings.TrimSpace(stock.Ticker))]; ok {
			p := prev
			previous = &p
		}

		result, err := r.engine.Analyze(stock, previous)
		if err != nil {
			rejections = append(rejections, contracts.InputRejection{
				Ticker: stock.Ticker,
				Error:  err.Error(),
			})
			continue
		}
		results = append(results, *result)
	}

	report := r.checker.Evaluate(results)
	adjusted, controls := r.guard.Apply(results, report)

	entry := health.NewEntry(req.ReportDate, len(adjusted), report)
	history, err := r.store.Upsert(entry)
	if err != nil {
		return nil, fmt.Errorf("update health history: %w", err)
	}
	trend := health.ComputeTrend(history)

	r.log.Info().
		Str("report_date", req.ReportDate).
		Int("accepted", len(adjusted)).
		Int("rejected", len(rejections)).
		Int("health_score", report.HealthScore).
		Bool("guard_active", controls.HealthGuardActive).
		Msg("scan cycle complete")

	return &ScanResult{
		Results:      adjusted,
		Rejections:   rejections,
		SanityReport: report,
		Controls:     controls,
		HistoryEntry: entry,
		Trend:        trend,
	}, nil
}

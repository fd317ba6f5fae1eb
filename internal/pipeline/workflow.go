package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/wonny/vigil/internal/contracts"
	"github.com/wonny/vigil/internal/engineconfig"
	"github.com/wonny/vigil/internal/report"
)

// Artifact file names under the artifacts directory.
const (
	ScannerOutputFile   = "scanner_output.json"
	AnalysisResultsFile = "analysis_results.json"
	SanityReportFile    = "sanity_report.json"
	HealthScoreFile     = "health_score.json"
	DashboardFile       = "daily_dashboard.md"
	SummaryFile         = "daily_summary.txt"
)

// Workflow runs the daily scan from file inputs to file artifacts.
// ⭐ SSOT: 아티팩트 파일 규약은 여기서만
type Workflow struct {
	runner       *Runner
	artifactsDir string
	log          zerolog.Logger
}

// NewWorkflow assembles a file-driven daily scan workflow.
func NewWorkflow(analysisCfg *engineconfig.AnalysisConfig, sanityCfg *engineconfig.SanityConfig, historyPath, artifactsDir string, log zerolog.Logger) *Workflow {
	return &Workflow{
		runner:       NewRunner(analysisCfg, sanityCfg, historyPath, log),
		artifactsDir: artifactsDir,
		log:          log.With().Str("component", "pipeline.workflow").Logger(),
	}
}

// LoadScannerPayload reads the daily scanner input document.
func LoadScannerPayload(path string) (contracts.ScannerPayload, error) {
	var payload contracts.ScannerPayload
	data, err := os.ReadFile(path)
	if err != nil {
		return payload, fmt.Errorf("read scanner input: %w", err)
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("parse scanner input %s: %w", path, err)
	}
	return payload, nil
}

// LoadPreviousScores extracts ticker scores from a prior analysis artifact.
// A missing file means no drift capping.
func LoadPreviousScores(path string) (map[string]int, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read previous analysis: %w", err)
	}
	var results []contracts.AnalysisResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parse previous analysis %s: %w", path, err)
	}
	scores := make(map[string]int, len(results))
	for _, row := range results {
		scores[row.Ticker] = row.Score
	}
	return scores, nil
}

// RunDaily executes the scan and writes every daily artifact: the enriched
// scanner payload, analysis results, sanity report, standalone health score,
// and the dashboard with its email summary.
func (w *Workflow) RunDaily(payload contracts.ScannerPayload, previousScores map[string]int) (*ScanResult, error) {
	result, err := w.runner.Run(ScanRequest{
		ReportDate:     payload.ReportDate,
		Stocks:         payload.Stocks,
		PreviousScores: previousScores,
	})
	if err != nil {
		return nil, err
	}

	enriched := payload
	enriched.SanityReport = &result.SanityReport
	enriched.HealthControls = &result.Controls
	enriched.HealthTrend = &result.Trend

	if err := w.writeJSON(ScannerOutputFile, enriched); err != nil {
		return nil, err
	}
	if err := w.writeJSON(AnalysisResultsFile, result.Results); err != nil {
		return nil, err
	}
	if err := w.writeJSON(SanityReportFile, result.SanityReport); err != nil {
		return nil, err
	}
	if err := w.writeJSON(HealthScoreFile, map[string]int{"health_score": result.SanityReport.HealthScore}); err != nil {
		return nil, err
	}

	dashboard := report.GenerateDashboard(enriched, result.Results)
	summary := report.GenerateSummary(result.Results)
	if err := w.writeText(DashboardFile, dashboard); err != nil {
		return nil, err
	}
	if err := w.writeText(SummaryFile, summary+"\n"); err != nil {
		return nil, err
	}

	w.log.Info().
		Str("report_date", payload.ReportDate).
		Str("artifacts_dir", w.artifactsDir).
		Msg("daily artifacts written")

	return result, nil
}

// ArtifactPath resolves a named artifact inside the artifacts directory.
func (w *Workflow) ArtifactPath(name string) string {
	return filepath.Join(w.artifactsDir, name)
}

func (w *Workflow) writeJSON(name string, data interface{}) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return w.writeBytes(name, append(encoded, '\n'))
}

func (w *Workflow) writeText(name, content string) error {
	return w.writeBytes(name, []byte(content))
}

func (w *Workflow) writeBytes(name string, data []byte) error {
	if err := os.MkdirAll(w.artifactsDir, 0755); err != nil {
		return fmt.Errorf("create artifacts directory: %w", err)
	}
	path := filepath.Join(w.artifactsDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vigil/internal/contracts"
)

func newTestWorkflow(t *testing.T) *Workflow {
	t.Helper()
	dir := t.TempDir()
	historyPath := filepath.Join(dir, "health_history.json")
	return NewWorkflow(testAnalysisConfig(t), testSanityConfig(t), historyPath, filepath.Join(dir, "artifacts"), zerolog.Nop())
}

func testPayload() contracts.ScannerPayload {
	return contracts.ScannerPayload{
		ReportDate: "2026-01-15",
		Stocks:     []contracts.AnalysisInput{testStock("NVDA")},
		MarketOverview: contracts.MarketOverview{
			NasdaqTrendBias:     "bullish",
			TechSectorSentiment: "constructive",
		},
	}
}

func TestRunDaily_WritesEveryArtifact(t *testing.T) {
	w := newTestWorkflow(t)

	result, err := w.RunDaily(testPayload(), nil)

	require.NoError(t, err)
	require.Len(t, result.Results, 1)

	for _, name := range []string{
		ScannerOutputFile, AnalysisResultsFile, SanityReportFile,
		HealthScoreFile, DashboardFile, SummaryFile,
	} {
		assert.FileExists(t, w.ArtifactPath(name))
	}
}

func TestRunDaily_HealthScoreArtifactShape(t *testing.T) {
	w := newTestWorkflow(t)

	_, err := w.RunDaily(testPayload(), nil)
	require.NoError(t, err)

	data, err := os.ReadFile(w.ArtifactPath(HealthScoreFile))
	require.NoError(t, err)

	var doc map[string]int
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, map[string]int{"health_score": 100}, doc)
}

func TestRunDaily_EnrichesScannerOutput(t *testing.T) {
	w := newTestWorkflow(t)

	_, err := w.RunDaily(testPayload(), nil)
	require.NoError(t, err)

	enriched, err := LoadScannerPayload(w.ArtifactPath(ScannerOutputFile))
	require.NoError(t, err)

	require.NotNil(t, enriched.SanityReport)
	assert.Equal(t, 100, enriched.SanityReport.HealthScore)
	require.NotNil(t, enriched.HealthControls)
	require.NotNil(t, enriched.HealthTrend)
	assert.Equal(t, "bullish", enriched.MarketOverview.NasdaqTrendBias)
}

func TestRunDaily_AnalysisArtifactFeedsNextRun(t *testing.T) {
	w := newTestWorkflow(t)

	_, err := w.RunDaily(testPayload(), nil)
	require.NoError(t, err)

	scores, err := LoadPreviousScores(w.ArtifactPath(AnalysisResultsFile))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"NVDA": 83}, scores)
}

func TestLoadPreviousScores_MissingFileMeansNoCapping(t *testing.T) {
	scores, err := LoadPreviousScores(filepath.Join(t.TempDir(), "absent.json"))

	require.NoError(t, err)
	assert.Nil(t, scores)

	scores, err = LoadPreviousScores("")
	require.NoError(t, err)
	assert.Nil(t, scores)
}

func TestRunDaily_SummaryMentionsTopPick(t *testing.T) {
	w := newTestWorkflow(t)

	_, err := w.RunDaily(testPayload(), nil)
	require.NoError(t, err)

	data, err := os.ReadFile(w.ArtifactPath(SummaryFile))
	require.NoError(t, err)
	assert.Equal(t, "Analyzed 1 stocks. Top pick: NVDA (score 83, rating BUY, expected return 16.5%).\n", string(data))
}

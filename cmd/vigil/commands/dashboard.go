package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wonny/vigil/internal/contracts"
	"github.com/wonny/vigil/internal/pipeline"
	"github.com/wonny/vigil/internal/report"
	"github.com/wonny/vigil/pkg/config"
	"github.com/wonny/vigil/pkg/logger"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Generate the daily dashboard from scan artifacts",
	Long: `스캔 아티팩트에서 내보내기용 대시보드를 생성합니다.

이 명령어는:
- scanner_output.json + analysis_results.json 로드
- Markdown 대시보드와 이메일 요약 생성
- --email 지정 시 SMTP로 발송

Example:
  go run ./cmd/vigil dashboard
  go run ./cmd/vigil dashboard --email`,
	RunE: runDashboard,
}

var dashboardEmail bool

func init() {
	rootCmd.AddCommand(dashboardCmd)

	// Flags
	dashboardCmd.Flags().BoolVar(&dashboardEmail, "email", false, "send the dashboard by email after generating it")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Vigil Dashboard ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load scan artifacts
	payload, err := pipeline.LoadScannerPayload(filepath.Join(cfg.ArtifactsDir, pipeline.ScannerOutputFile))
	if err != nil {
		return err
	}

	resultsPath := filepath.Join(cfg.ArtifactsDir, pipeline.AnalysisResultsFile)
	data, err := os.ReadFile(resultsPath)
	if err != nil {
		return fmt.Errorf("read analysis results: %w", err)
	}
	var results []contracts.AnalysisResult
	if err := json.Unmarshal(data, &results); err != nil {
		return fmt.Errorf("parse analysis results %s: %w", resultsPath, err)
	}

	// 4. Render dashboard and summary
	dashboard := report.GenerateDashboard(payload, results)
	summary := report.GenerateSummary(results)

	dashboardPath := filepath.Join(cfg.ArtifactsDir, pipeline.DashboardFile)
	if err := os.WriteFile(dashboardPath, []byte(dashboard), 0644); err != nil {
		return fmt.Errorf("write dashboard: %w", err)
	}
	summaryPath := filepath.Join(cfg.ArtifactsDir, pipeline.SummaryFile)
	if err := os.WriteFile(summaryPath, []byte(summary+"\n"), 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	fmt.Printf("Dashboard written to %s\n", dashboardPath)
	fmt.Printf("Summary written to %s\n", summaryPath)

	// 5. Optional email delivery
	if !dashboardEmail {
		return nil
	}

	mailer := report.NewMailer(cfg.SMTP, log.Zerolog())
	if err := mailer.SendDashboard(dashboardPath, summary); err != nil {
		return fmt.Errorf("send dashboard email: %w", err)
	}
	fmt.Println("Dashboard email sent.")

	return nil
}

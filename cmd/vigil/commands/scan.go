package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/vigil/internal/engineconfig"
	"github.com/wonny/vigil/internal/pipeline"
	"github.com/wonny/vigil/pkg/config"
	"github.com/wonny/vigil/pkg/logger"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the daily scanner batch",
	Long: `Runs one deterministic daily scan cycle.

이 명령어는:
- 스캐너 입력(JSON) 로드 및 종목별 점수 산출
- Sanity 검증 + 헬스 가드 적용
- 헬스 히스토리 갱신 및 트렌드 재계산
- 아티팩트(JSON/Markdown) 저장

Example:
  go run ./cmd/vigil scan
  go run ./cmd/vigil scan --previous artifacts/analysis_results.json
  go run ./cmd/vigil scan --disable-score-cap`,
	RunE: runScan,
}

var (
	scanPreviousPath    string
	scanDisableScoreCap bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	// Flags
	scanCmd.Flags().StringVar(&scanPreviousPath, "previous", "", "previous analysis results for drift capping")
	scanCmd.Flags().BoolVar(&scanDisableScoreCap, "disable-score-cap", false, "disable the daily score change cap")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Vigil Daily Scan ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load engine configs
	analysisCfg, err := engineconfig.LoadAnalysis(cfg.AnalysisConfigPath)
	if err != nil {
		return fmt.Errorf("load analysis config: %w", err)
	}
	sanityCfg, err := engineconfig.LoadSanity(cfg.SanityConfigPath)
	if err != nil {
		return fmt.Errorf("load sanity config: %w", err)
	}

	if scanDisableScoreCap {
		analysisCfg.SafetyGuards.ManualOverrides.DisableScoreChangeCap = true
	}

	// 4. Run the workflow
	workflow := pipeline.NewWorkflow(analysisCfg, sanityCfg, cfg.HealthHistoryPath, cfg.ArtifactsDir, log.Zerolog())

	payload, err := pipeline.LoadScannerPayload(cfg.ScannerInputPath)
	if err != nil {
		return err
	}

	previousScores, err := pipeline.LoadPreviousScores(scanPreviousPath)
	if err != nil {
		return err
	}

	result, err := workflow.RunDaily(payload, previousScores)
	if err != nil {
		return fmt.Errorf("run daily scan: %w", err)
	}

	fmt.Printf("Report date:       %s\n", payload.ReportDate)
	fmt.Printf("Stocks analyzed:   %d\n", len(result.Results))
	fmt.Printf("Inputs rejected:   %d\n", len(result.Rejections))
	fmt.Printf("Health score:      %d/100\n", result.SanityReport.HealthScore)
	fmt.Printf("Guard active:      %t\n", result.Controls.HealthGuardActive)
	fmt.Printf("BUYs downgraded:   %d\n", result.Controls.BuyRecommendationsDowngraded)
	fmt.Printf("Artifacts written to %s\n", cfg.ArtifactsDir)

	return nil
}

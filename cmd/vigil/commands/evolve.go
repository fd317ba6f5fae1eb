package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/vigil/internal/engineconfig"
	"github.com/wonny/vigil/internal/pipeline"
	"github.com/wonny/vigil/pkg/config"
	"github.com/wonny/vigil/pkg/logger"
)

// evolveCmd represents the evolve command
var evolveCmd = &cobra.Command{
	Use:   "evolve",
	Short: "Run strategy performance tracking and weight evolution",
	Long: `Runs one strategy evolution cycle.

이 명령어는:
- 전략별 실현 수익 집계 및 열화 판정
- 가중치 조정안 산출 (쿨다운/상한 준수)
- 진화 리포트 저장, 변경 시 상태 파일 갱신

Example:
  go run ./cmd/vigil evolve
  go run ./cmd/vigil evolve --date 2026-01-15`,
	RunE: runEvolve,
}

var evolveDate string

func init() {
	rootCmd.AddCommand(evolveCmd)

	// Flags
	evolveCmd.Flags().StringVar(&evolveDate, "date", "", "evolution run date (YYYY-MM-DD, default today)")
}

func runEvolve(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Vigil Strategy Evolution ===")

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
	evolutionCfg, err := engineconfig.LoadEvolution(cfg.EvolutionConfigPath)
	if err != nil {
		return fmt.Errorf("load evolution config: %w", err)
	}

	today := time.Now().UTC()
	if evolveDate != "" {
		today, err = time.Parse("2006-01-02", evolveDate)
		if err != nil {
			return fmt.Errorf("invalid --date (expected YYYY-MM-DD): %w", err)
		}
	}

	// 4. Run the evolution cycle
	outcomes, err := pipeline.LoadOutcomes(cfg.OutcomesPath)
	if err != nil {
		return err
	}

	runner := pipeline.NewEvolutionRunner(evolutionCfg, cfg.EvolutionStatePath, log.Zerolog())
	evolutionReport, err := runner.Run(analysisCfg.Weights.Map(), outcomes, today)
	if err != nil {
		return fmt.Errorf("run evolution: %w", err)
	}

	// 5. Write the report artifact
	reportPath := filepath.Join(cfg.ArtifactsDir, "strategy_evolution_report.json")
	encoded, err := json.MarshalIndent(evolutionReport, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal evolution report: %w", err)
	}
	if err := os.MkdirAll(cfg.ArtifactsDir, 0755); err != nil {
		return fmt.Errorf("create artifacts directory: %w", err)
	}
	if err := os.WriteFile(reportPath, append(encoded, '\n'), 0644); err != nil {
		return fmt.Errorf("write evolution report: %w", err)
	}

	fmt.Printf("Cooldown active:   %t\n", evolutionReport.CooldownActive)
	fmt.Printf("Applied changes:   %d\n", len(evolutionReport.AppliedChanges))
	fmt.Printf("Report written to %s\n", reportPath)

	return nil
}

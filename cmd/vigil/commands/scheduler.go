package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/vigil/internal/engineconfig"
	"github.com/wonny/vigil/internal/pipeline"
	"github.com/wonny/vigil/internal/report"
	"github.com/wonny/vigil/internal/scheduler"
	"github.com/wonny/vigil/internal/scheduler/jobs"
	"github.com/wonny/vigil/pkg/config"
	"github.com/wonny/vigil/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the daily scan on a cron schedule",
	Long: `크론 스케줄로 일일 스캔을 반복 실행합니다.

이 명령어는:
- SCAN_CRON 스케줄에 일일 스캔 잡 등록
- 실패 시 재시도
- --run-now 지정 시 등록 직후 1회 즉시 실행
- --email 지정 시 스캔 후 대시보드 발송

Example:
  go run ./cmd/vigil scheduler
  go run ./cmd/vigil scheduler --run-now
  go run ./cmd/vigil scheduler --email`,
	RunE: runScheduler,
}

var (
	schedulerEmail  bool
	schedulerRunNow bool
)

func init() {
	rootCmd.AddCommand(schedulerCmd)

	// Flags
	schedulerCmd.Flags().BoolVar(&schedulerEmail, "email", false, "email the dashboard after each scheduled scan")
	schedulerCmd.Flags().BoolVar(&schedulerRunNow, "run-now", false, "run the daily scan once immediately after start")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Vigil Scheduler ===")

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

	// 4. Build the daily scan job
	workflow := pipeline.NewWorkflow(analysisCfg, sanityCfg, cfg.HealthHistoryPath, cfg.ArtifactsDir, log.Zerolog())

	var mailer *report.Mailer
	if schedulerEmail {
		mailer = report.NewMailer(cfg.SMTP, log.Zerolog())
	}

	sched := scheduler.New(log)
	job := jobs.NewDailyScanJob(workflow, mailer, cfg, log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("register daily scan job: %w", err)
	}

	// 5. Run until interrupted
	sched.Start()

	if schedulerRunNow {
		fmt.Printf("Running job now: %s\n", job.Name())
		if err := sched.RunJob(job.Name()); err != nil {
			return fmt.Errorf("run job: %w", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.WithField("signal", sig.String()).Info("Shutdown signal received")
	sched.Stop()

	// 6. Print run statistics for this session
	history, err := sched.GetJobHistory(job.Name())
	if err == nil && len(history.Results) > 0 {
		fmt.Printf("\nJob Statistics: %s\n", job.Name())
		fmt.Printf("  Total Runs: %d\n", len(history.Results))
		fmt.Printf("  Success Rate: %.1f%%\n", history.GetSuccessRate()*100)
		for _, result := range history.GetLatestResults(5) {
			status := "✅"
			if !result.Success {
				status = "❌"
			}
			fmt.Printf("  %s %s (%s)\n", status, result.StartTime.Format("2006-01-02 15:04:05"), result.Duration)
		}
	}

	return nil
}

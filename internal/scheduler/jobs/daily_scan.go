package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/vigil/internal/pipeline"
	"github.com/wonny/vigil/internal/report"
	"github.com/wonny/vigil/pkg/config"
	"github.com/wonny/vigil/pkg/logger"
)

// DailyScanJob runs the full daily scan workflow on schedule and optionally
// emails the resulting dashboard.
// ⭐ SSOT: 일일 스캔 잡 구성은 여기서만
type DailyScanJob struct {
	workflow *pipeline.Workflow
	mailer   *report.Mailer
	cfg      *config.Config
	logger   *logger.Logger
}

// NewDailyScanJob creates the daily scan job. A nil mailer disables email
// delivery.
func NewDailyScanJob(workflow *pipeline.Workflow, mailer *report.Mailer, cfg *config.Config, log *logger.Logger) *DailyScanJob {
	return &DailyScanJob{
		workflow: workflow,
		mailer:   mailer,
		cfg:      cfg,
		logger:   log,
	}
}

// Name returns the job name
func (j *DailyScanJob) Name() string {
	return "daily_scan"
}

// Schedule returns the cron schedule expression
func (j *DailyScanJob) Schedule() string {
	return j.cfg.ScanCron
}

// Run executes one scan cycle from the configured scanner input file.
func (j *DailyScanJob) Run(ctx context.Context) error {
	payload, err := pipeline.LoadScannerPayload(j.cfg.ScannerInputPath)
	if err != nil {
		return err
	}

	previousScores, err := pipeline.LoadPreviousScores(j.workflow.ArtifactPath(pipeline.AnalysisResultsFile))
	if err != nil {
		return err
	}

	result, err := j.workflow.RunDaily(payload, previousScores)
	if err != nil {
		return fmt.Errorf("daily scan: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"report_date":  payload.ReportDate,
		"stocks":       len(result.Results),
		"health_score": result.SanityReport.HealthScore,
	}).Info("Scheduled scan finished")

	if j.mailer == nil {
		return nil
	}

	summary := report.GenerateSummary(result.Results)
	if err := j.mailer.SendDashboard(j.workflow.ArtifactPath(pipeline.DashboardFile), summary); err != nil {
		// 이메일 실패는 스캔 성공을 뒤집지 않는다
		j.logger.WithError(err).Error("Dashboard email delivery failed")
	}
	return nil
}

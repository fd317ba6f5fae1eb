package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/wonny/vigil/internal/api"
	"github.com/wonny/vigil/internal/api/handlers"
	"github.com/wonny/vigil/internal/engineconfig"
	"github.com/wonny/vigil/internal/scoring"
	"github.com/wonny/vigil/pkg/config"
	"github.com/wonny/vigil/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the manual analysis API server",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 수동 단일 종목 분석 엔드포인트 제공

Endpoints:
  GET  /health                - Health check
  POST /api/manual-analysis   - 수동 단일 종목 분석

Example:
  go run ./cmd/vigil api
  go run ./cmd/vigil api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Vigil API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Load the analysis config
	analysisCfg, err := engineconfig.LoadAnalysis(cfg.AnalysisConfigPath)
	if err != nil {
		return fmt.Errorf("load analysis config: %w", err)
	}

	// 4. Build handlers and router
	engine := scoring.NewEngine(analysisCfg, log.Zerolog())
	analysisHandler := handlers.NewAnalysisHandler(engine, log)
	limiter := rate.NewLimiter(rate.Limit(cfg.APIRateLimit), cfg.APIRateBurst)
	router := api.NewRouter(analysisHandler, limiter, log)

	// 5. Start server with graceful shutdown
	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}

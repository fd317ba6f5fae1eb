package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the application.
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Engine config files (YAML, validated at load)
	AnalysisConfigPath  string
	SanityConfigPath    string
	EvolutionConfigPath string

	// Persisted artifacts
	ArtifactsDir       string
	HealthHistoryPath  string
	EvolutionStatePath string

	// Batch inputs
	ScannerInputPath string
	OutcomesPath     string

	// Scheduler
	ScanCron string

	// API rate limiting (requests per second, burst)
	APIRateLimit float64
	APIRateBurst int

	// Dashboard email
	SMTP SMTPConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// SMTPConfig holds dashboard email delivery configuration.
type SMTPConfig struct {
	Server   string
	Port     string
	Username string
	Password string
	From     string
	To       string
	Subject  string
	UseTLS   bool
	Timeout  time.Duration
}

// Load reads configuration from environment variables.
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		AnalysisConfigPath:  getEnv("ANALYSIS_CONFIG_PATH", "config/analysis.yaml"),
		SanityConfigPath:    getEnv("SANITY_CONFIG_PATH", "config/sanity.yaml"),
		EvolutionConfigPath: getEnv("EVOLUTION_CONFIG_PATH", "config/evolution.yaml"),

		ArtifactsDir:       getEnv("ARTIFACTS_DIR", "artifacts"),
		HealthHistoryPath:  getEnv("HEALTH_HISTORY_PATH", "artifacts/health_history.json"),
		EvolutionStatePath: getEnv("EVOLUTION_STATE_PATH", "artifacts/strategy_evolution_state.json"),

		ScannerInputPath: getEnv("SCANNER_INPUT_PATH", "config/daily_scanner_input.json"),
		OutcomesPath:     getEnv("OUTCOMES_PATH", "artifacts/strategy_outcomes.json"),

		ScanCron: getEnv("SCAN_CRON", "0 7 * * 1-5"),

		APIRateLimit: getEnvAsFloat("API_RATE_LIMIT", 10),
		APIRateBurst: getEnvAsInt("API_RATE_BURST", 20),

		SMTP: SMTPConfig{
			Server:   getEnv("SMTP_SERVER_ADDRESS", ""),
			Port:     getEnv("SMTP_SERVER_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("DASHBOARD_EMAIL_FROM", ""),
			To:       getEnv("DASHBOARD_EMAIL_TO", ""),
			Subject:  getEnv("DASHBOARD_EMAIL_SUBJECT", "Daily Scanner Dashboard"),
			UseTLS:   getEnvAsBool("SMTP_USE_TLS", true),
			Timeout:  getEnvAsDuration("SMTP_TIMEOUT", "30s"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.APIRateLimit <= 0 {
		return fmt.Errorf("API_RATE_LIMIT must be > 0")
	}
	if c.APIRateBurst < 1 {
		return fmt.Errorf("API_RATE_BURST must be >= 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

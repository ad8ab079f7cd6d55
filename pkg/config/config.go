package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process-level configuration for the monitor
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Inputs / outputs
	Paths PathsConfig

	// Run history
	History HistoryConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Worker pool for per-symbol work
	Workers int

	// serve / schedule commands
	ServePort       string
	Schedule        string
	ShutdownTimeout time.Duration
}

// PathsConfig holds input and output locations
type PathsConfig struct {
	DataDir      string // per-symbol OHLCV files
	Watchlist    string // watchlist CSV
	OutDir       string // artifact directory
	RunConfig    string // YAML run configuration (optional)
	MLPrediction string // optional model-scoring CSV
}

// HistoryConfig holds run-history storage settings
type HistoryConfig struct {
	SQLitePath string // empty disables the local recorder
	URL        string // DATABASE_URL, Postgres sink takes priority when set

	// Connection Pool (Postgres only)
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Paths: PathsConfig{
			DataDir:      getEnv("MONITOR_DATA_DIR", "data/ohlcv"),
			Watchlist:    getEnv("MONITOR_WATCHLIST", "data/watchlist.csv"),
			OutDir:       getEnv("MONITOR_OUT_DIR", "outputs"),
			RunConfig:    getEnv("MONITOR_CONFIG", ""),
			MLPrediction: getEnv("MONITOR_ML_PREDICTIONS", ""),
		},

		History: HistoryConfig{
			SQLitePath:      getEnv("MONITOR_HISTORY_DB", "outputs/history.db"),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 4),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		Workers: getEnvAsInt("MONITOR_WORKERS", 4),

		ServePort:       getEnv("MONITOR_SERVE_PORT", "8089"),
		Schedule:        getEnv("MONITOR_SCHEDULE", "0 30 18 * * 1-5"),
		ShutdownTimeout: getEnvAsDuration("MONITOR_SHUTDOWN_TIMEOUT", "10s"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Paths.DataDir == "" {
		return fmt.Errorf("MONITOR_DATA_DIR is required")
	}
	if c.Paths.OutDir == "" {
		return fmt.Errorf("MONITOR_OUT_DIR is required")
	}

	if c.Workers < 1 {
		return fmt.Errorf("MONITOR_WORKERS must be >= 1, got %d", c.Workers)
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
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
			// godotenv.Load never overrides variables already set in the environment
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

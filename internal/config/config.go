package config

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/simaogato/ledger-backend/internal/usecase/rollup"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"

	defaultAPIToken = "dev-token"
)

// Config holds every runtime setting of the server
type Config struct {
	// Storage
	DataBackend  string
	DBConnStr    string
	SQLiteDBPath string
	DBIsolation  string
	DBTimeout    time.Duration

	// Transports
	GRPCAddr       string
	HTTPAddr       string
	APIToken       string
	AllowedOrigins []string

	// Ledger
	EditMode          string
	StatsMaxRangeDays int
	AuditSchedule     string
	SeedUserIDs       []string

	// Logging
	LogMode string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		DataBackend:  getEnv("DATA_BACKEND", BackendPostgres),
		DBConnStr:    postgresConnStr(),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledger.db"),
		DBIsolation:  getEnv("DB_ISOLATION", "read_committed"),
		DBTimeout:    getEnvDuration("DB_TIMEOUT", 5*time.Second),

		GRPCAddr:       getEnv("GRPC_ADDR", ":8080"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8081"),
		APIToken:       getEnv("API_TOKEN", defaultAPIToken),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		EditMode:          getEnv("LEDGER_EDIT_MODE", string(rollup.EditModeCorrected)),
		StatsMaxRangeDays: getEnvInt("STATS_MAX_RANGE_DAYS", 366),
		AuditSchedule:     getEnv("AUDIT_SCHEDULE", "@daily"),
		SeedUserIDs:       getEnvList("SEED_USER_IDS", nil),

		LogMode: getEnv("LOG_MODE", "dev"),
	}

	return cfg, nil
}

// postgresConnStr uses DB_CONN_STR when set, otherwise builds it from
// individual vars (Docker friendly)
func postgresConnStr() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "ledger"),
	)
}

// Validate validates the configuration and returns an error listing every problem
func (c *Config) Validate() error {
	var problems []string

	switch c.DataBackend {
	case BackendPostgres:
		if c.DBConnStr == "" {
			problems = append(problems, "DB_CONN_STR is required for the postgres backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLITE_DB_PATH is required for the sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of postgres, sqlite", c.DataBackend))
	}

	if _, err := c.IsolationLevel(); err != nil {
		problems = append(problems, err.Error())
	}

	if c.DBTimeout <= 0 {
		problems = append(problems, "DB_TIMEOUT must be positive")
	}

	if c.GRPCAddr == "" && c.HTTPAddr == "" {
		problems = append(problems, "at least one of GRPC_ADDR or HTTP_ADDR must be set")
	}

	if c.APIToken == "" {
		problems = append(problems, "API_TOKEN cannot be empty")
	}

	if _, err := rollup.ParseEditMode(c.EditMode); err != nil {
		problems = append(problems, err.Error())
	}

	if c.StatsMaxRangeDays < 1 {
		problems = append(problems, fmt.Sprintf("invalid STATS_MAX_RANGE_DAYS %d: must be at least 1", c.StatsMaxRangeDays))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}

	return nil
}

// IsolationLevel maps DB_ISOLATION onto a database/sql isolation level
func (c *Config) IsolationLevel() (sql.IsolationLevel, error) {
	switch strings.ToLower(c.DBIsolation) {
	case "", "default":
		return sql.LevelDefault, nil
	case "read_committed":
		return sql.LevelReadCommitted, nil
	case "repeatable_read":
		return sql.LevelRepeatableRead, nil
	case "serializable":
		return sql.LevelSerializable, nil
	default:
		return sql.LevelDefault, fmt.Errorf("invalid DB_ISOLATION '%s': must be one of default, read_committed, repeatable_read, serializable", c.DBIsolation)
	}
}

// UsesDefaultToken reports whether the built-in development token is active
func (c *Config) UsesDefaultToken() bool {
	return c.APIToken == defaultAPIToken
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping empty items
func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Boards    BoardsConfig    `mapstructure:"boards"`
	AI        AIConfig        `mapstructure:"ai"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Intent    IntentConfig    `mapstructure:"intent"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // milliseconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
}

// BoardsConfig holds the board service connection and the board ids per
// record collection. An empty board id means the collection is treated as
// unavailable and the answer is computed over an empty set with a caveat.
type BoardsConfig struct {
	APIURL            string        `mapstructure:"api_url"`
	APIKey            string        `mapstructure:"api_key"`
	DealsBoardID      string        `mapstructure:"deals_board_id"`
	WorkOrdersBoardID string        `mapstructure:"work_orders_board_id"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// BoardID returns the configured board id for the given source name
// ("deals" or "work_orders"), or "" when none is configured.
func (b BoardsConfig) BoardID(source string) string {
	switch source {
	case "deals":
		return b.DealsBoardID
	case "work_orders":
		return b.WorkOrdersBoardID
	}
	return ""
}

// AIConfig holds settings for the AI provider (intent and summary modes).
type AIConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// AnalyticsConfig controls aggregation behavior.
//
// ProbabilityWeighting decides how pipeline records without a probability
// contribute: "optimistic" weighs them at 1.0, "strict" excludes them from
// the weighted sum.
type AnalyticsConfig struct {
	ProbabilityWeighting string `mapstructure:"probability_weighting"`
}

const (
	WeightingOptimistic = "optimistic"
	WeightingStrict     = "strict"
)

// IntentConfig holds the heuristic resolver's vocabulary.
type IntentConfig struct {
	Sectors []string `mapstructure:"sectors"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	switch cfg.Analytics.ProbabilityWeighting {
	case WeightingOptimistic, WeightingStrict:
	default:
		return fmt.Errorf("analytics.probability_weighting must be %q or %q, got %q",
			WeightingOptimistic, WeightingStrict, cfg.Analytics.ProbabilityWeighting)
	}
	if cfg.Boards.APIURL == "" {
		return fmt.Errorf("boards.api_url is required")
	}
	return nil
}

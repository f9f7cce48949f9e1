package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/hindsightlab/hindsight/internal/core"
)

type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Strategy   StrategyConfig   `mapstructure:"strategy"`
	Journal    JournalConfig    `mapstructure:"journal"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// SimulationConfig holds the ledger and trade-sizing parameters.
type SimulationConfig struct {
	InitialCash       float64 `mapstructure:"initial_cash"`
	RiskFraction      float64 `mapstructure:"risk_fraction"`
	AllowNegativeCash bool    `mapstructure:"allow_negative_cash"`
	LogZeroQuantity   bool    `mapstructure:"log_zero_quantity"`
}

// AnalysisConfig holds the performance-summary parameters.
type AnalysisConfig struct {
	RiskFreeRate       float64 `mapstructure:"risk_free_rate"`
	TradingDaysPerYear int     `mapstructure:"trading_days_per_year"`
}

// StrategyConfig holds the signal rule parameters used when the input series
// carries no signal column.
type StrategyConfig struct {
	FastPeriod int `mapstructure:"fast_period"`
	SlowPeriod int `mapstructure:"slow_period"`
}

// JournalConfig holds trade journaling settings.
type JournalConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Type       string `mapstructure:"type"` // "csv" or "sqlite"
	TradesFile string `mapstructure:"trades_file"`
	RunsFile   string `mapstructure:"runs_file"`
	DBPath     string `mapstructure:"db_path"`
}

// ArchiveConfig holds result archive settings.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	JobTTLHours int    `mapstructure:"job_ttl_hours"`
	MaxJobs     int    `mapstructure:"max_jobs"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns the built-in default configuration.
func Defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			InitialCash:       1_000_000,
			RiskFraction:      0.02,
			AllowNegativeCash: true,
			LogZeroQuantity:   true,
		},
		Analysis: AnalysisConfig{
			RiskFreeRate:       0.02,
			TradingDaysPerYear: 252,
		},
		Strategy: StrategyConfig{
			FastPeriod: 50,
			SlowPeriod: 200,
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "trades.csv",
			RunsFile:   "runs.csv",
			DBPath:     "hindsight.db",
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "archive",
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			JobTTLHours: 1,
			MaxJobs:     100,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Simulation.InitialCash <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_cash must be positive, got %f", c.Simulation.InitialCash))
	}
	if c.Simulation.RiskFraction <= 0 || c.Simulation.RiskFraction > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("risk_fraction must be in (0, 1], got %f", c.Simulation.RiskFraction))
	}
	if c.Analysis.TradingDaysPerYear <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("trading_days_per_year must be positive, got %d", c.Analysis.TradingDaysPerYear))
	}
	if c.Strategy.FastPeriod <= 0 || c.Strategy.SlowPeriod <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("strategy periods must be positive, got %d/%d", c.Strategy.FastPeriod, c.Strategy.SlowPeriod))
	}
	if c.Strategy.FastPeriod >= c.Strategy.SlowPeriod {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("fast_period %d must be below slow_period %d", c.Strategy.FastPeriod, c.Strategy.SlowPeriod))
	}

	if c.Journal.Enabled {
		switch c.Journal.Type {
		case "csv", "sqlite":
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("journal type must be csv or sqlite, got %q", c.Journal.Type))
		}
	}

	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "localfs":
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive path required for localfs"))
			}
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("s3 bucket required when archive type is s3"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("archive type must be localfs or s3, got %q", c.Archive.Type))
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	return nil
}

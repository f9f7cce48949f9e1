package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hindsightlab/hindsight/internal/api"
	"github.com/hindsightlab/hindsight/internal/archive"
	"github.com/hindsightlab/hindsight/internal/config"
	"github.com/hindsightlab/hindsight/internal/logger"
	"github.com/hindsightlab/hindsight/internal/metrics"
	"github.com/hindsightlab/hindsight/internal/perf"
	"github.com/hindsightlab/hindsight/internal/sim"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Hindsight server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	log.Info("starting Hindsight server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	var store archive.Store
	if cfg.Archive.Enabled {
		store, err = newArchiveStore(cfg)
		if err != nil {
			return fmt.Errorf("creating archive store: %w", err)
		}
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	server := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		JobTTL:      time.Duration(cfg.Server.JobTTLHours) * time.Hour,
		MaxJobs:     cfg.Server.MaxJobs,
		MetricsPath: cfg.Metrics.Path,
	}, api.Options{
		Sim:        simOptions(cfg),
		Perf:       perfOptions(cfg),
		FastPeriod: cfg.Strategy.FastPeriod,
		SlowPeriod: cfg.Strategy.SlowPeriod,
	}, store, reg, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down Hindsight server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}

// loadConfig reads and validates the config file, falling back to defaults
// when no file is given.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func simOptions(cfg *config.Config) sim.Options {
	return sim.Options{
		InitialCash:       cfg.Simulation.InitialCash,
		RiskFraction:      cfg.Simulation.RiskFraction,
		AllowNegativeCash: cfg.Simulation.AllowNegativeCash,
		LogZeroQuantity:   cfg.Simulation.LogZeroQuantity,
	}
}

func perfOptions(cfg *config.Config) perf.Options {
	return perf.Options{
		RiskFreeRate:       cfg.Analysis.RiskFreeRate,
		TradingDaysPerYear: cfg.Analysis.TradingDaysPerYear,
	}
}

func newArchiveStore(cfg *config.Config) (archive.Store, error) {
	switch cfg.Archive.Type {
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.Archive.S3.Bucket,
			Endpoint:  cfg.Archive.S3.Endpoint,
			Region:    cfg.Archive.S3.Region,
			AccessKey: cfg.Archive.S3.AccessKey,
			SecretKey: cfg.Archive.S3.SecretKey,
			Prefix:    cfg.Archive.S3.Prefix,
		})
	default:
		return archive.NewLocalFS(cfg.Archive.Path)
	}
}

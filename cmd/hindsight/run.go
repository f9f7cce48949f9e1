package main

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hindsightlab/hindsight/internal/archive"
	"github.com/hindsightlab/hindsight/internal/backtest"
	"github.com/hindsightlab/hindsight/internal/config"
	"github.com/hindsightlab/hindsight/internal/core"
	"github.com/hindsightlab/hindsight/internal/feed"
	"github.com/hindsightlab/hindsight/internal/journal"
	"github.com/hindsightlab/hindsight/internal/logger"
	"github.com/hindsightlab/hindsight/internal/strategy"
	"github.com/hindsightlab/hindsight/internal/strategy/crossover"
)

var (
	runData       string
	runInstrument string
	runCash       float64
	runRisk       float64
	runFast       int
	runSlow       int
	runNoBar      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest over a CSV price series",
	Long: `Run replays a CSV price series through the simulator and prints the
performance summary. The file needs time and close columns; a signal column
(-1 sell, 0 hold, 1 buy) is used when present. Pass --fast and --slow to
derive the signals from a moving average crossover instead.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runData, "data", "", "CSV series file (required)")
	runCmd.Flags().StringVar(&runInstrument, "instrument", "ASSET", "instrument name for the trade log")
	runCmd.Flags().Float64Var(&runCash, "cash", 0, "initial cash, overrides config")
	runCmd.Flags().Float64Var(&runRisk, "risk", 0, "risk fraction per buy, overrides config")
	runCmd.Flags().IntVar(&runFast, "fast", 0, "fast MA period for crossover signals")
	runCmd.Flags().IntVar(&runSlow, "slow", 0, "slow MA period for crossover signals")
	runCmd.Flags().BoolVar(&runNoBar, "no-progress", false, "disable the progress bar")

	runCmd.MarkFlagRequired("data")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	series, err := feed.LoadCSV(runData)
	if err != nil {
		return fmt.Errorf("loading series: %w", err)
	}
	log.Info("series loaded",
		zap.String("file", runData),
		zap.Int("points", len(series)))

	rule, err := signalRule(series, runFast, runSlow, cfg)
	if err != nil {
		return err
	}
	if rule != nil {
		series, err = rule.Annotate(series)
		if err != nil {
			return err
		}
		log.Info("signals annotated", zap.String("rule", rule.Name()))
	}

	simOpts := simOptions(cfg)
	if cmd.Flags().Changed("cash") {
		simOpts.InitialCash = runCash
	}
	if cmd.Flags().Changed("risk") {
		simOpts.RiskFraction = runRisk
	}

	if !runNoBar {
		bar := newProgressBar(len(series))
		simOpts.Progress = func(step, total int) {
			bar.Set(step)
		}
	}

	runner, err := backtest.New(simOpts, perfOptions(cfg))
	if err != nil {
		return err
	}

	result, err := runner.Run(context.Background(), runInstrument, series)
	if err != nil {
		return fmt.Errorf("running backtest: %w", err)
	}
	if !runNoBar {
		fmt.Println()
	}

	printResult(result)

	if cfg.Journal.Enabled {
		if err := journalResult(cfg, result); err != nil {
			return err
		}
		log.Info("run journaled", zap.String("type", cfg.Journal.Type))
	}

	if cfg.Archive.Enabled {
		store, err := newArchiveStore(cfg)
		if err != nil {
			return fmt.Errorf("creating archive store: %w", err)
		}
		if err := archive.WriteResult(context.Background(), store, result); err != nil {
			return err
		}
		log.Info("run archived", zap.String("run_id", result.RunID))
	}

	return nil
}

// signalRule picks the crossover rule for a run. Explicit --fast/--slow
// flags always win; without them a series that carries no signals falls back
// to the configured strategy periods. A series with its own signals needs no
// rule at all.
func signalRule(series []core.PricePoint, fast, slow int, cfg *config.Config) (strategy.Rule, error) {
	if fast == 0 && slow == 0 {
		if core.HasSignals(series) {
			return nil, nil
		}
		fast, slow = cfg.Strategy.FastPeriod, cfg.Strategy.SlowPeriod
	}
	return crossover.New(fast, slow)
}

func printResult(res *backtest.Result) {
	fmt.Println("=== Hindsight Backtest ===")
	fmt.Printf("Run:        %s\n", res.RunID)
	fmt.Printf("Instrument: %s\n", res.Instrument)
	fmt.Printf("Period:     %s to %s (%d points)\n",
		res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"), res.Points)
	fmt.Println()
	fmt.Printf("Final cash:       %.2f\n", res.Ledger.Cash)
	fmt.Printf("Open position:    %.4f\n", res.Ledger.Position(res.Instrument))
	fmt.Printf("Trades:           %d\n", len(res.Trades))
	fmt.Println()
	fmt.Printf("Total return:     %.2f%%\n", res.Summary.TotalReturn*100)
	fmt.Printf("Annual return:    %.2f%%\n", res.Summary.AnnualReturn*100)
	fmt.Printf("Volatility:       %.2f%%\n", res.Summary.Volatility*100)
	fmt.Printf("Sharpe ratio:     %.4f\n", res.Summary.SharpeRatio)
	fmt.Printf("PnL:              %.2f\n", res.Summary.PnL)
	fmt.Printf("Avg trade return: %.2f%%\n", res.Summary.AvgTradeReturn*100)
	fmt.Printf("Win rate:         %.2f%%\n", res.Summary.WinRate*100)
}

func journalResult(cfg *config.Config, res *backtest.Result) error {
	var (
		j   journal.Journal
		err error
	)
	switch cfg.Journal.Type {
	case "sqlite":
		j, err = journal.NewSQLite(cfg.Journal.DBPath)
	default:
		j, err = journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.RunsFile)
	}
	if err != nil {
		return err
	}
	defer j.Close()

	return journal.Record(j, res)
}

func newProgressBar(steps int) *progressbar.ProgressBar {
	return progressbar.NewOptions(steps,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

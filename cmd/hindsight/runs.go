package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hindsightlab/hindsight/internal/archive"
	"github.com/hindsightlab/hindsight/internal/logger"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse archived backtest runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived run IDs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := archiveFromConfig()
		if err != nil {
			return err
		}

		ids, err := archive.ListRuns(context.Background(), store)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("no archived runs")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print one archived run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := archiveFromConfig()
		if err != nil {
			return err
		}

		res, err := archive.ReadResult(context.Background(), store, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func archiveFromConfig() (archive.Store, error) {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return nil, err
	}
	if !cfg.Archive.Enabled {
		return nil, fmt.Errorf("archive disabled in config")
	}
	return newArchiveStore(cfg)
}

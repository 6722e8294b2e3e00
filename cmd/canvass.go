package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var canvassCategory string

var canvassCmd = &cobra.Command{
	Use:   "canvass",
	Short: "Sweep the configured region and export ranked snapshots",
	Long:  "Generates the search grid, queries the place provider at every point for every category, deduplicates and classifies the results, and writes one JSON snapshot per category.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		runner, cleanup, err := initRunner(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		start := time.Now()
		if canvassCategory != "" {
			err = runner.RunCategory(ctx, canvassCategory)
		} else {
			err = runner.Run(ctx)
		}
		if err != nil {
			return err
		}

		zap.L().Info("canvass complete",
			zap.String("region", cfg.Region.Name),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil
	},
}

func init() {
	canvassCmd.Flags().StringVarP(&canvassCategory, "category", "c", "", "canvass a single category (default: all)")
	rootCmd.AddCommand(canvassCmd)
}

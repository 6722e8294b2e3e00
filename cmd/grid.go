package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zurihub/places-cli/internal/geo"
)

var gridOut string

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Preview the search grid for the configured region",
	Long:  "Generates the grid without querying the provider, so step size and boundary clipping can be tuned before spending API quota.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		points, err := geo.Grid(cfg.Region.Bounds, cfg.Grid.StepKM)
		if err != nil {
			return err
		}
		total := len(points)

		if cfg.Region.BoundaryFile != "" {
			boundary, err := geo.LoadBoundary(cfg.Region.BoundaryFile)
			if err != nil {
				return err
			}
			points = geo.Clip(points, boundary)
		}

		fmt.Printf("region:  %s\n", cfg.Region.Name)
		fmt.Printf("step:    %.2f km\n", cfg.Grid.StepKM)
		fmt.Printf("points:  %d", len(points))
		if clipped := total - len(points); clipped > 0 {
			fmt.Printf(" (%d clipped by boundary)", clipped)
		}
		fmt.Println()

		if gridOut != "" {
			data, err := json.MarshalIndent(points, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(gridOut, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", gridOut)
		}
		return nil
	},
}

func init() {
	gridCmd.Flags().StringVarP(&gridOut, "out", "o", "", "write grid points as JSON to this file")
	rootCmd.AddCommand(gridCmd)
}

package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/zurihub/places-cli/internal/snapshot"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <category>",
	Short: "Export a category snapshot as an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category := args[0]

		writer, err := snapshot.NewWriter(cfg.Output.Dir)
		if err != nil {
			return err
		}
		doc, err := writer.ReadCategory(category)
		if err != nil {
			return eris.Wrapf(err, "no snapshot for category %q, run canvass first", category)
		}

		out := exportOut
		if out == "" {
			out = category + ".xlsx"
		}
		if err := snapshot.ExportXLSX(doc, out); err != nil {
			return err
		}

		fmt.Printf("wrote %s (%d places)\n", out, len(doc.Places))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default <category>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}

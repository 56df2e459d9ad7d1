package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/gops/experiment/tracker"
)

func ExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <save folder>",
		Short: "Export the metrics log of a training run to CSV files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := tracker.ExportCSV(args[0])
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
}

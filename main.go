package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	seed       uint64
	saveFolder string
)

func main() {
	rootCommand := &cobra.Command{
		Use:          "gops",
		Short:        "Off-policy reinforcement learning with replay buffers",
		SilenceUsage: true,
	}

	rootCommand.AddCommand(TrainCommand())
	rootCommand.AddCommand(EvalCommand())
	rootCommand.AddCommand(ExportCommand())

	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}

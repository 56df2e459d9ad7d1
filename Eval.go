package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/samuelfneumann/gops/create"
)

var (
	iteration   int
	numEpisodes int
)

func EvalCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "eval <save folder>",
		Short: "Evaluate a checkpoint of a training run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: time.Kitchen,
			}).With().Timestamp().Logger()

			average, err := create.Evaluate(args[0], iteration, numEpisodes,
				logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "average return: %v\n", average)
			return nil
		},
	}
	command.Flags().IntVar(&iteration, "iteration", -1,
		"iteration of the checkpoint, the latest if negative")
	command.Flags().IntVar(&numEpisodes, "episodes", 10,
		"number of evaluation episodes")
	return command
}

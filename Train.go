package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/samuelfneumann/gops/config"
	"github.com/samuelfneumann/gops/create"
	"github.com/samuelfneumann/gops/experiment"
)

// Train runs the training described by the configuration file at path
func Train(cmd *cobra.Command, path string) error {
	overrides := make(map[string]interface{})
	if cmd.Flags().Changed("seed") {
		overrides["seed"] = seed
	}
	if cmd.Flags().Changed("save_folder") {
		overrides["save_folder"] = saveFolder
	}

	c, err := config.Load(path, overrides)
	if err != nil {
		return err
	}
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}

	ctx := experiment.NewContext(c.Seed, c.SaveFolder, c.Algorithm, c.EnvID,
		os.Stderr, level)
	if err := ctx.Setup(); err != nil {
		return err
	}
	defer ctx.Close()
	c.SaveFolder = ctx.SaveFolder
	ctx.Logger.Info().Msg(ctx.String())

	var progress io.Writer
	if c.ProgressBar {
		progress = os.Stdout
	}
	run, err := create.Build(c, ctx, progress)
	if err != nil {
		ctx.Logger.Error().Err(err).Msg("could not build training run")
		return err
	}

	interrupt, stop := signal.NotifyContext(context.Background(),
		os.Interrupt)
	defer stop()

	if err := run.Train(interrupt); err != nil {
		ctx.Logger.Error().
			Err(err).
			Int("iteration", run.Trainer.Iteration()).
			Str("state", run.Trainer.State().String()).
			Msg("training failed")
		return err
	}
	return nil
}

func TrainCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "train <config>",
		Short: "Train an approximator as described by a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Train(cmd, args[0])
		},
	}
	command.Flags().Uint64Var(&seed, "seed", 0, "overrides the seed")
	command.Flags().StringVar(&saveFolder, "save_folder", "",
		"overrides the save folder")
	return command
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/roboricindustries/raycon-chatclient/internal/config"
	"github.com/roboricindustries/raycon-chatclient/internal/logging"
	"github.com/spf13/cobra"
)

// app carries what PersistentPreRunE resolved for the subcommands.
type app struct {
	cfgFile string
	cfg     *config.Config
	log     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "raycon-roles",
		Short:         "Consume chat gateway events and report role deletions.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			a.cfg = cfg
			a.log = logger
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: RAYCON_CONFIG or ./raycon.toml)")

	root.AddCommand(newListenCmd(a), newEmitCmd(a))
	return root
}

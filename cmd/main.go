package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/pelada/internal/config"
	"github.com/okian/pelada/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:          "pelada",
		Short:        "Roster and team draws for the weekly game",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			// Command output goes to stdout; logs stay out of its way.
			return logger.Init(logger.WithWriter(cmd.ErrOrStderr()))
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before configuration")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newTeamsCmd())
	cmd.AddCommand(newSeedCmd())
	return cmd
}

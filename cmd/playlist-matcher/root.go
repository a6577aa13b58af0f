package main

import (
	"github.com/spf13/cobra"

	"github.com/justestif/go-playlist-matcher/internal/config"
	"github.com/justestif/go-playlist-matcher/internal/logging"
)

// app carries state shared by subcommands.
type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "playlist-matcher",
		Short:         "Rank songs against a playlist's meaning, mood and context",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			logging.Init(cfg.Logging.Logger())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newMatchCommand(a))
	rootCmd.AddCommand(newImportCommand(a))
	rootCmd.AddCommand(newMigrateCommand(a))
	rootCmd.AddCommand(newPruneCommand(a))

	return rootCmd
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/justestif/go-playlist-matcher/internal/logging"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := requireDB(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Migrate(cmd.Context()); err != nil {
				return err
			}
			logging.Info().Msg("schema applied")
			return nil
		},
	}
}

func newPruneCommand(a *app) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete stale cached text embeddings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				olderThan = a.cfg.Cache.EmbeddingTTL
			}
			if olderThan <= 0 {
				return fmt.Errorf("nothing to prune: cache.embedding_ttl is 0 and --older-than is unset")
			}

			database, err := requireDB(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			n, err := database.Embeddings(a.cfg.Cache.EmbeddingTTL).DeleteStale(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d stale embeddings\n", n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Age cutoff (default: cache.embedding_ttl)")
	return cmd
}

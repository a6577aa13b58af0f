package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCommand(a *app) *cobra.Command {
	var (
		userID       string
		playlistPath string
		songsPath    string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Store a playlist analysis and a user's song analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			playlist, songs, err := readInputs(playlistPath, songsPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			database, err := requireDB(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Playlists().Upsert(ctx, userID, playlist); err != nil {
				return err
			}
			if err := database.Songs().UpsertBatch(ctx, userID, songs); err != nil {
				return err
			}

			total, err := database.Songs().CountForUser(ctx, userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported playlist %s and %d songs (%d total for %s)\n",
				playlist.ID, len(songs), total, userID)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Owner of the playlist and songs")
	cmd.Flags().StringVar(&playlistPath, "playlist", "", "Playlist analysis JSON file")
	cmd.Flags().StringVar(&songsPath, "songs", "", "Song analyses JSON file (array)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("playlist")
	_ = cmd.MarkFlagRequired("songs")

	return cmd
}

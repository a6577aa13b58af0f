package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/justestif/go-playlist-matcher/internal/clustering"
	"github.com/justestif/go-playlist-matcher/internal/recommend"
)

func newMatchCommand(a *app) *cobra.Command {
	var (
		playlistPath string
		songsPath    string
		opts         recommend.Options
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank songs from a file against a playlist from a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			playlist, songs, err := readInputs(playlistPath, songsPath)
			if err != nil {
				return err
			}

			svc, err := newRecommender(a.cfg, nil)
			if err != nil {
				return err
			}

			res, err := svc.MatchInline(cmd.Context(), playlist, songs, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSONOutput(out, res)
			}
			printResult(out, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&playlistPath, "playlist", "", "Playlist analysis JSON file")
	cmd.Flags().StringVar(&songsPath, "songs", "", "Song analyses JSON file (array)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "Maximum results (0 = default, -1 = all)")
	cmd.Flags().BoolVar(&opts.Explain, "explain", false, "Include explanations")
	cmd.Flags().BoolVar(&opts.Group, "group", false, "Group results by mood")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	_ = cmd.MarkFlagRequired("playlist")
	_ = cmd.MarkFlagRequired("songs")

	return cmd
}

func writeJSONOutput(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, res *recommend.Result) {
	fmt.Fprintf(w, "Playlist %s (%s), %d songs evaluated\n", res.PlaylistID, res.PlaylistType.Label(), res.SongCount)
	fmt.Fprintln(w, renderResults(res.Results))
	if len(res.Groups) > 0 || len(res.Ungrouped) > 0 {
		fmt.Fprintln(w)
		fmt.Fprint(w, clustering.FormatGroupSummary(res.Groups, res.Ungrouped))
	}
}

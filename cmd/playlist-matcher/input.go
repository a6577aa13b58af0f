package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
)

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// readInputs loads a playlist analysis and a song analysis list.
func readInputs(playlistPath, songsPath string) (analysis.Playlist, []analysis.Song, error) {
	var playlist analysis.Playlist
	if err := readJSON(playlistPath, &playlist); err != nil {
		return playlist, nil, err
	}
	if playlist.ID == "" {
		return playlist, nil, fmt.Errorf("%s: playlist id is required", playlistPath)
	}

	var songs []analysis.Song
	if err := readJSON(songsPath, &songs); err != nil {
		return playlist, nil, err
	}
	return playlist, songs, nil
}

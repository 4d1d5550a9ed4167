// Package config builds the server's immutable runtime configuration from
// CLI arguments. The spec forbids dynamic reconfiguration and any config
// file or environment variable, so this replaces the teacher's JSON config
// loader with a single validated, typed record built once at startup.
package config

import (
	"fmt"
	"strconv"
)

// Config is the server's runtime configuration: levels directory, worker
// pool size, and the rendezvous FIFO path. It is immutable after Parse.
type Config struct {
	LevelsDir      string
	MaxGames       int
	RendezvousPipe string
}

// Parse validates the server's three positional CLI arguments:
// <levels_dir> <max_games> <rendezvous_pipe>.
func Parse(levelsDir, maxGamesStr, rendezvousPipe string) (*Config, error) {
	if levelsDir == "" {
		return nil, fmt.Errorf("levels_dir must not be empty")
	}
	if rendezvousPipe == "" {
		return nil, fmt.Errorf("rendezvous_pipe must not be empty")
	}
	maxGames, err := strconv.Atoi(maxGamesStr)
	if err != nil {
		return nil, fmt.Errorf("max_games must be an integer: %w", err)
	}
	if maxGames <= 0 {
		return nil, fmt.Errorf("max_games must be > 0, got %d", maxGames)
	}
	return &Config{
		LevelsDir:      levelsDir,
		MaxGames:       maxGames,
		RendezvousPipe: rendezvousPipe,
	}, nil
}

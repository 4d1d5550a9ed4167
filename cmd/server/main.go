// Command server runs the pacman game service: it listens on a
// rendezvous named pipe for client CONNECT requests and drives one
// session per accepted client through a bounded worker pool.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/phuhao00/pacserver/internal/config"
	"github.com/phuhao00/pacserver/internal/ipc"
	"github.com/phuhao00/pacserver/internal/logging"
	"github.com/phuhao00/pacserver/internal/session"
	"github.com/phuhao00/pacserver/internal/signals"
	"github.com/phuhao00/pacserver/internal/worker"
)

func main() {
	var logLevel string

	root := &cobra.Command{
		Use:   "server <levels_dir> <max_games> <rendezvous_pipe>",
		Short: "pacman game server",
		Long:  "Accepts client connections over a rendezvous named pipe and runs one game session per worker.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.SetLevel(logging.ParseLevel(logLevel))
			return run(args[0], args[1], args[2])
		},
		SilenceUsage: true,
	}
	root.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(levelsDir, maxGamesStr, rendezvousPipe string) error {
	cfg, err := config.Parse(levelsDir, maxGamesStr, rendezvousPipe)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := ipc.CreateRendezvousPipe(cfg.RendezvousPipe); err != nil {
		return fmt.Errorf("create rendezvous pipe: %w", err)
	}
	defer ipc.RemoveRendezvousPipe(cfg.RendezvousPipe)

	ctx, sigusr1, stop := signals.Handles(cfg.RendezvousPipe)
	defer stop()

	buffer := worker.NewRequestBuffer()
	runner := session.NewRunner(cfg.LevelsDir)
	pool := worker.NewPool(buffer, cfg.MaxGames, runner.Run)
	pool.Start(ctx)

	intake := worker.NewIntake(cfg.RendezvousPipe, buffer)

	logging.Infof("server: listening on %q, levels_dir=%q, max_games=%d", cfg.RendezvousPipe, cfg.LevelsDir, cfg.MaxGames)

	scoreLog, err := os.OpenFile("server_top_scores.log", os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open score log: %w", err)
	}
	defer scoreLog.Close()

	intake.Run(ctx, sigusr1, func() {
		// spec.md §6: the dump rewrites the file from scratch each time,
		// it does not append to the previous dump.
		if _, err := scoreLog.Seek(0, io.SeekStart); err != nil {
			logging.Warnf("server: seeking score log: %v", err)
			return
		}
		if err := scoreLog.Truncate(0); err != nil {
			logging.Warnf("server: truncating score log: %v", err)
			return
		}
		if err := worker.DumpTopScores(scoreLog, pool.ActiveGames()); err != nil {
			logging.Warnf("server: writing score dump: %v", err)
		}
	})

	pool.Wait()
	logging.Infof("server: shutdown complete")
	return nil
}

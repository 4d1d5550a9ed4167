// Package session implements the per-client session runtime: spec.md
// §4.4-§4.6. One Runner.Run call handles one client from CONNECT ack to
// peer departure, across however many level files the levels directory
// holds, carrying the pacman's score forward between levels.
package session

import (
	"context"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phuhao00/pacserver/internal/board"
	"github.com/phuhao00/pacserver/internal/ipc"
	"github.com/phuhao00/pacserver/internal/logging"
	"github.com/phuhao00/pacserver/internal/protocol"
	"github.com/phuhao00/pacserver/internal/worker"
)

// Runner holds the configuration a session needs beyond what's carried
// on each ConnectionRequest: where to find level files.
type Runner struct {
	LevelsDir string
}

// NewRunner constructs a Runner that loads levels from levelsDir.
func NewRunner(levelsDir string) *Runner {
	return &Runner{LevelsDir: levelsDir}
}

// Run is a worker.SessionRunner: it drives one client connection to
// completion, publishing the active board into slot for the duration of
// each level so the SIGUSR1 diagnostic dump can observe it.
func (r *Runner) Run(ctx context.Context, workerID int, req worker.ConnectionRequest, slot *atomic.Pointer[board.Board]) {
	levels, err := board.FilterLevels(r.LevelsDir)
	if err != nil {
		logging.Errorf("worker %d: scanning levels dir %q: %v", workerID, r.LevelsDir, err)
		return
	}
	if len(levels) == 0 {
		logging.Warnf("worker %d: no levels in %q, refusing session", workerID, r.LevelsDir)
		return
	}

	pipes, err := ipc.OpenSessionPipes(req.ReqPipePath, req.NotifPipePath)
	if err != nil {
		logging.Warnf("worker %d: opening session pipes: %v", workerID, err)
		return
	}
	defer pipes.Close()

	if _, err := pipes.Notify.Write(protocol.EncodeConnectAck(true)); err != nil {
		logging.Warnf("worker %d: writing connect ack: %v", workerID, err)
		return
	}

	rr := newRequestReader(pipes.Req)
	defer close(rr.stop)

	playerID := playerIDFromPath(req.ReqPipePath)
	running := &atomic.Bool{}
	running.Store(true)
	scoreAccumulated := 0

	for _, level := range levels {
		if !running.Load() {
			break
		}

		b, err := board.LoadLevel(r.LevelsDir, level, scoreAccumulated)
		if err != nil {
			logging.Errorf("worker %d: loading level %q: %v", workerID, level, err)
			break
		}
		b.PlayerID = playerID
		slot.Store(b)
		logging.Infof("worker %d: %q entering level %q", workerID, playerID, b.LevelName())

		levelFinished := &atomic.Bool{}
		levelDone := make(chan struct{})

		var g errgroup.Group
		g.Go(func() error {
			runPacmanTask(rr, b, running, levelFinished, levelDone)
			return nil
		})
		for gi := range b.Ghosts {
			gi := gi
			g.Go(func() error {
				runGhostTask(b, gi, running, levelFinished, levelDone)
				return nil
			})
		}

		runGameLoop(pipes, b, running, levelFinished)

		close(levelDone)
		_ = g.Wait()

		if running.Load() {
			b.Lock.RLock()
			scoreAccumulated = b.Pacman.Points
			b.Lock.RUnlock()
		}
		slot.Store(nil)
		board.UnloadLevel(b)
	}

	logging.Infof("worker %d: session for %q ended", workerID, playerID)
}

// runGameLoop ticks every board.tempo milliseconds, broadcasting a BOARD
// frame built from a single consistent snapshot of the board, until the
// session ends or the level finishes (spec.md §4.6's game loop).
func runGameLoop(pipes *ipc.SessionPipes, b *board.Board, running *atomic.Bool, levelFinished *atomic.Bool) {
	ticker := time.NewTicker(time.Duration(b.Tempo) * time.Millisecond)
	defer ticker.Stop()

	for running.Load() && !levelFinished.Load() {
		<-ticker.C

		b.Lock.RLock()
		frame := protocol.BoardFrame{
			Width:    int32(b.Width),
			Height:   int32(b.Height),
			Tempo:    int32(b.Tempo),
			Victory:  boolToInt32(levelFinished.Load()),
			GameOver: boolToInt32(!b.Pacman.Alive),
			Points:   int32(b.Pacman.Points),
			Cells:    board.GetBoardDisplayed(b),
		}
		gameOver := !b.Pacman.Alive
		b.Lock.RUnlock()

		if _, err := pipes.Notify.Write(protocol.EncodeBoardFrame(frame)); err != nil {
			if ipc.IsBrokenPipe(err) {
				logging.Infof("session: peer gone (broken pipe), ending session")
			} else {
				logging.Warnf("session: writing board frame: %v", err)
			}
			running.Store(false)
			return
		}

		if gameOver {
			running.Store(false)
		}
	}
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// playerIDFromPath derives a display id for the scoreboard dump from the
// client's request-pipe path, stripping the "_request" suffix the
// reference client names its pipes with.
func playerIDFromPath(reqPipePath string) string {
	base := filepath.Base(reqPipePath)
	return strings.TrimSuffix(base, "_request")
}

package session

import (
	"sync/atomic"
	"time"

	"github.com/phuhao00/pacserver/internal/board"
)

// runGhostTask implements spec.md §4.5: while the session is running and
// the level hasn't finished, tick every board.tempo milliseconds, pick
// the ghost's next command (scripted or a fresh randomized fallback),
// and apply it under the board's write lock. levelDone additionally lets
// the task wake immediately at level end instead of waiting out a
// possibly-long tempo between ticks.
func runGhostTask(b *board.Board, i int, running *atomic.Bool, levelFinished *atomic.Bool, levelDone <-chan struct{}) {
	ticker := time.NewTicker(time.Duration(b.Tempo) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-levelDone:
			return

		case <-ticker.C:
			if !running.Load() || levelFinished.Load() {
				return
			}
			cmd := board.NextGhostCommand(b, i)
			b.Lock.Lock()
			board.MoveGhost(b, i, cmd)
			b.Lock.Unlock()
		}
	}
}

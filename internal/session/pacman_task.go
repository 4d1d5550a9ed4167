package session

import (
	"sync/atomic"

	"github.com/phuhao00/pacserver/internal/board"
	"github.com/phuhao00/pacserver/internal/logging"
	"github.com/phuhao00/pacserver/internal/protocol"
)

// runPacmanTask implements spec.md §4.4's state machine for one level:
// repeatedly wait for the next request-pipe frame, apply PLAY moves
// under the board's write lock, and exit on DISCONNECT, a closed
// request pipe, or the level/session ending out from under it.
//
// Before every move_pacman call the actor is force-armed (alive=true,
// passo/waiting=0) so a keyboard-driven pacman is never gated by the
// tick cooldown that governs ghosts — client input must always be
// immediately actionable.
func runPacmanTask(rr *requestReader, b *board.Board, running *atomic.Bool, levelFinished *atomic.Bool, levelDone <-chan struct{}) {
	for {
		select {
		case <-levelDone:
			return

		case <-rr.closed:
			running.Store(false)
			return

		case ev, ok := <-rr.events:
			if !ok {
				running.Store(false)
				return
			}
			switch ev.op {
			case protocol.OpDisconnect:
				running.Store(false)
				return

			case protocol.OpPlay:
				if !protocol.ValidPlayDirection(ev.dir) {
					logging.Warnf("session: ignoring invalid play direction %q", ev.dir)
					continue
				}
				b.Lock.Lock()
				b.Pacman.Alive = true
				b.Pacman.Passo = 0
				b.Pacman.Waiting = 0
				result := board.MovePacman(b, board.Command{
					Direction: board.Direction(ev.dir),
					Turns:     1,
					TurnsLeft: 1,
				})
				b.Lock.Unlock()
				if result.ReachedPortal {
					levelFinished.Store(true)
					return
				}

			default:
				logging.Warnf("session: ignoring unexpected op-code %d on request pipe", ev.op)
			}
		}
	}
}

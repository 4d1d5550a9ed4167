package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/phuhao00/pacserver/internal/board"
	"github.com/phuhao00/pacserver/internal/logging"
)

// SessionRunner runs one client session to completion. It is given the
// worker's own slot to populate while a level is loaded and clear
// before it blocks on the next dequeue, per spec.md §3's ActiveGamesTable
// invariant. workerID identifies the worker for logging.
type SessionRunner func(ctx context.Context, workerID int, req ConnectionRequest, slot *atomic.Pointer[board.Board])

// Pool is the bounded worker pool consuming from a RequestBuffer. Each
// worker runs exactly one session at a time and owns one ActiveGames
// slot, read by the diagnostic dump without ever holding it during a
// call into the board package (spec.md §4.7, §5 "ActiveGamesTable:
// guarded by mutex_sessions; never held while calling into the board
// library" — here the slot is a lock-free atomic pointer instead, so
// there is no mutex to accidentally hold across the call at all).
type Pool struct {
	buffer *RequestBuffer
	slots  []atomic.Pointer[board.Board]
	run    SessionRunner

	wg sync.WaitGroup
}

// NewPool constructs a pool of n workers reading from buffer, each
// running sessions via run.
func NewPool(buffer *RequestBuffer, n int, run SessionRunner) *Pool {
	return &Pool{
		buffer: buffer,
		slots:  make([]atomic.Pointer[board.Board], n),
		run:    run,
	}
}

// Start launches the n worker goroutines. They run until ctx is
// cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := range p.slots {
		p.wg.Add(1)
		go p.workerLoop(ctx, i)
	}
}

// Wait blocks until all worker goroutines have exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) workerLoop(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		req, err := p.buffer.Pop(ctx)
		if err != nil {
			logging.Infof("worker %d: shutting down (%v)", id, err)
			return
		}

		// Clear the slot before starting, mirroring the source's
		// belt-and-braces clear at both entry and exit.
		p.slots[id].Store(nil)
		logging.Infof("worker %d: picked up session, req=%s", id, req.ReqPipePath)

		p.run(ctx, id, req, &p.slots[id])

		p.slots[id].Store(nil)
		logging.Infof("worker %d: session finished", id)
	}
}

// ActiveGames returns a snapshot of the currently-bound, non-nil boards,
// for the SIGUSR1 diagnostic dump. Slots populated only after
// load_level succeeds (spec.md §3 invariant) are read directly — there
// is no mutex_sessions in this rewrite because atomic.Pointer makes the
// snapshot itself race-free, only torn in the sense the spec already
// accepts for the score field (§4.7).
func (p *Pool) ActiveGames() []*board.Board {
	var out []*board.Board
	for i := range p.slots {
		if b := p.slots[i].Load(); b != nil {
			out = append(out, b)
		}
	}
	return out
}

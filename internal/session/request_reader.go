package session

import (
	"github.com/phuhao00/pacserver/internal/logging"
	"github.com/phuhao00/pacserver/internal/protocol"
)

// inputEvent is one decoded frame off a session's request pipe that the
// currently-running pacman task cares about.
type inputEvent struct {
	op  protocol.Op
	dir byte // valid only when op == protocol.OpPlay
}

// requestReader owns the single long-lived read of a session's request
// pipe. A session spans multiple levels (spec.md §4.6's level loop), but
// the client only ever opens one request pipe for the whole connection,
// so the fd is read exactly once for the session's lifetime rather than
// per level: each level's pacman task is a fresh goroutine, but they all
// drain the same events channel in turn. This is the load-bearing reason
// the pacman task's "cancel by closing fd_req" (spec.md §4.6 step 4,
// §9's portability note) cannot literally close the OS fd between
// levels — the fd is closed only once, by the session's pipes.Close at
// teardown, and the stop channel only releases a blocked send.
type requestReader struct {
	events chan inputEvent
	closed chan struct{} // closed by the reader goroutine on EOF/DISCONNECT/error
	stop   chan struct{} // closed by the session to release a blocked send at teardown
}

func newRequestReader(r readerCloserLess) *requestReader {
	rr := &requestReader{
		events: make(chan inputEvent),
		closed: make(chan struct{}),
		stop:   make(chan struct{}),
	}
	go rr.loop(r)
	return rr
}

// readerCloserLess is the minimal surface requestReader needs; *os.File
// satisfies it without pulling os into this file's imports.
type readerCloserLess interface {
	Read(p []byte) (int, error)
}

func (rr *requestReader) loop(r readerCloserLess) {
	defer close(rr.closed)
	for {
		op, err := protocol.ReadOp(r)
		if err != nil {
			return
		}
		switch op {
		case protocol.OpPlay:
			dir, err := protocol.ReadPlayDirection(r)
			if err != nil {
				return
			}
			select {
			case rr.events <- inputEvent{op: protocol.OpPlay, dir: dir}:
			case <-rr.stop:
				return
			}
		case protocol.OpDisconnect:
			select {
			case rr.events <- inputEvent{op: protocol.OpDisconnect}:
			case <-rr.stop:
			}
			return
		default:
			logging.Warnf("session: ignoring unexpected op-code %d on request pipe", op)
		}
	}
}

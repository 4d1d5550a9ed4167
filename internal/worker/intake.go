package worker

import (
	"context"
	"os"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"

	"github.com/phuhao00/pacserver/internal/ipc"
	"github.com/phuhao00/pacserver/internal/logging"
	"github.com/phuhao00/pacserver/internal/protocol"
)

// Intake is the main task (spec.md §4.7): it accepts CONNECT requests on
// the rendezvous pipe and enqueues them into a bounded RequestBuffer,
// applying backpressure when the buffer is full, and services the
// SIGUSR1 diagnostic dump without racing the worker pool.
//
// The original's EINTR-driven accept loop (pseudocode in spec.md §4.7)
// interleaves blocking open()/read() calls with a check of a
// sig-handler-set flag. Go delivers signals to a channel rather than
// interrupting blocking syscalls, so this is restructured as a dedicated
// accept goroutine feeding a channel that Run() selects against
// alongside the SIGUSR1 channel and shutdown — functionally the same
// producer, expressed the Go-idiomatic way.
type Intake struct {
	path    string
	buffer  *RequestBuffer
	stopped atomic.Bool
	stop    chan struct{}
}

// NewIntake constructs an Intake reading CONNECT requests from the
// rendezvous pipe at path and pushing them into buffer.
func NewIntake(path string, buffer *RequestBuffer) *Intake {
	return &Intake{path: path, buffer: buffer}
}

// Run services the rendezvous pipe until ctx is cancelled. sigusr1
// delivers SIGUSR1 notifications (see internal/signals.Handles, which
// sets this up with signal.Notify so only the intake task observes it — the
// Go-idiomatic equivalent of the workers blocking SIGUSR1 in spec.md
// §4.7). dump is called under no lock from the caller's perspective;
// DumpTopScores itself only reads lock-free atomic pointers.
func (in *Intake) Run(ctx context.Context, sigusr1 <-chan os.Signal, dump func()) {
	conns := make(chan ConnectionRequest)
	accepted := make(chan struct{})
	in.stop = make(chan struct{})
	go in.acceptLoop(conns, accepted)

	for {
		select {
		case <-ctx.Done():
			in.shutdown()
			<-accepted
			return

		case req := <-conns:
			logging.Infof("intake: queuing connection request %s, req=%s notif=%s", uuid.New(), req.ReqPipePath, req.NotifPipePath)
			if err := in.buffer.Push(ctx, req); err != nil {
				in.shutdown()
				<-accepted
				return
			}

		case <-sigusr1:
			dump()
		}
	}
}

// acceptLoop repeatedly opens the rendezvous pipe, reads one CONNECT
// frame (looping internally until the whole frame arrives, per spec.md
// §9), and forwards well-formed requests to conns. It exits once
// stopped is set and the blocking open/read it is waiting on has been
// woken by shutdown(), or once shutdown() closes stop while a request
// is pending delivery — Run may have already left its conns case by
// then, and a plain send would block forever.
func (in *Intake) acceptLoop(conns chan<- ConnectionRequest, done chan<- struct{}) {
	defer close(done)
	for !in.stopped.Load() {
		f, err := ipc.OpenRendezvousForRead(in.path)
		if err != nil {
			logging.Errorf("intake: opening rendezvous pipe: %v", err)
			return
		}

		req, ok := readOneConnect(f)
		f.Close()
		if !ok {
			continue
		}
		select {
		case conns <- req:
		case <-in.stop:
			return
		}
	}
}

// readOneConnect reads a single CONNECT frame's op-code and body from f.
// Any short read, unexpected op-code, or malformed body is reported as
// "no request this round" (spec.md §7: protocol errors on the rendezvous
// pipe are ignored, not fatal).
func readOneConnect(f *os.File) (ConnectionRequest, bool) {
	op, err := protocol.ReadOp(f)
	if err != nil {
		return ConnectionRequest{}, false
	}
	if op != protocol.OpConnect {
		logging.Warnf("intake: ignoring unexpected op-code %d on rendezvous pipe", op)
		return ConnectionRequest{}, false
	}
	body, err := protocol.ReadConnectRequest(f)
	if err != nil {
		logging.Warnf("intake: malformed connect frame: %v", err)
		return ConnectionRequest{}, false
	}
	return ConnectionRequest{ReqPipePath: body.ReqPipePath, NotifPipePath: body.NotifPipePath}, true
}

// shutdown marks the accept loop stopped, releases it from a blocked
// send on conns (see acceptLoop), and wakes a pending blocking
// open()/read() on the rendezvous pipe by briefly opening the write end
// ourselves — the standard trick for unblocking a FIFO reader, since
// opening for write satisfies a reader's pending open() and closing
// without writing delivers EOF to a pending read(). The open is
// non-blocking, so it returns at once when no reader is waiting. Run
// calls this at most once per invocation, so closing stop here is safe.
func (in *Intake) shutdown() {
	in.stopped.Store(true)
	close(in.stop)
	f, err := os.OpenFile(in.path, os.O_WRONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f.Close()
}

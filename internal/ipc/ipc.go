// Package ipc manages the lifecycle of the named pipes (FIFOs) the server
// and clients rendezvous and communicate over: spec.md §4.2 and §6.
package ipc

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/phuhao00/pacserver/internal/logging"
)

// CreateRendezvousPipe unlinks any stale pipe at path then creates a fresh
// FIFO with mode 0666, matching the server's startup sequence in spec.md
// §4.2: "unlinks any stale rendezvous path then creates a named pipe."
func CreateRendezvousPipe(path string) error {
	_ = os.Remove(path)
	if err := unix.Mkfifo(path, 0666); err != nil {
		return fmt.Errorf("mkfifo %q: %w", path, err)
	}
	return nil
}

// RemoveRendezvousPipe unlinks the rendezvous pipe. Called on shutdown;
// the invariant "the rendezvous pipe exists iff the server is accepting
// connections" (spec.md §3) is restored by this call.
func RemoveRendezvousPipe(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warnf("ipc: failed to unlink rendezvous pipe %q: %v", path, err)
	}
}

// OpenRendezvousForRead opens the rendezvous pipe read-only. This blocks
// until a client opens the write end, per spec.md §4.7's intake loop.
func OpenRendezvousForRead(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDONLY, 0)
}

// SessionPipes is the pair of FIFOs used by one client session: a
// request pipe (client writes, server reads) and a notify pipe (server
// writes, client reads). The server never creates or unlinks these —
// the client mkfifos and unlinks them (spec.md §3 invariant).
type SessionPipes struct {
	Notify *os.File
	Req    *os.File
}

// OpenSessionPipes opens the notify pipe write-only, then the request
// pipe read-only, in that order, matching spec.md §4.2: "notify
// WRITE-only, request READ-only, in that order after reading CONNECT."
func OpenSessionPipes(reqPath, notifPath string) (*SessionPipes, error) {
	notify, err := os.OpenFile(notifPath, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open notify pipe %q: %w", notifPath, err)
	}
	req, err := os.OpenFile(reqPath, os.O_RDONLY, 0)
	if err != nil {
		notify.Close()
		return nil, fmt.Errorf("open request pipe %q: %w", reqPath, err)
	}
	return &SessionPipes{Notify: notify, Req: req}, nil
}

// Close closes the request pipe then the notify pipe, matching spec.md
// §4.2's teardown order: "Closing order at session end is request
// first, then notify."
func (p *SessionPipes) Close() {
	if p.Req != nil {
		p.Req.Close()
	}
	if p.Notify != nil {
		p.Notify.Close()
	}
}

// IsBrokenPipe reports whether err is the "peer gone" condition on a
// pipe write (EPIPE) — spec.md §4.2/§7: a broken pipe on write must not
// terminate the process, and is handled as "peer gone -> end session."
func IsBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}

// IgnoreSIGPIPE is a no-op on the Go runtime's own signal delivery (Go
// already turns SIGPIPE on a pipe write into an EPIPE error rather than
// killing the process), but is called explicitly at startup for parity
// with spec.md §4.8's "PIPE — ignored process-wide" requirement and as
// defensive belt-and-braces for any raw fd obtained outside os.File.
func IgnoreSIGPIPE() {
	signal.Ignore(syscall.SIGPIPE)
}

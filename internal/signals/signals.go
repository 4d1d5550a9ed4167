// Package signals wires the server's process lifecycle to OS signals,
// per spec.md §4.8: SIGTERM/SIGINT trigger graceful shutdown, SIGUSR1
// triggers the active-games diagnostic dump, and SIGPIPE is suppressed
// process-wide.
package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/phuhao00/pacserver/internal/ipc"
	"github.com/phuhao00/pacserver/internal/logging"
)

// Handles registers signal handling for the server process and returns a
// context cancelled on SIGTERM/SIGINT, plus the channel of SIGUSR1
// notifications the intake loop alone should consume.
//
// Go delivers signals to a channel rather than interrupting a specific
// thread, so "workers block SIGUSR1" (spec.md §4.7) has no literal
// analogue here: only the goroutine that calls signal.Notify for
// SIGUSR1 (the intake loop, via the channel returned here) ever
// observes it, which is the Go-idiomatic equivalent of masking it
// everywhere else.
func Handles(rendezvousPipe string) (ctx context.Context, sigusr1 <-chan os.Signal, stop func()) {
	ipc.IgnoreSIGPIPE()

	ctx, cancel := context.WithCancel(context.Background())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	usr1 := make(chan os.Signal, 1)
	signal.Notify(usr1, syscall.SIGUSR1)

	go func() {
		sig := <-shutdown
		logging.Infof("signals: received %v, shutting down", sig)
		ipc.RemoveRendezvousPipe(rendezvousPipe)
		cancel()
	}()

	stopFn := func() {
		signal.Stop(shutdown)
		signal.Stop(usr1)
		cancel()
	}

	return ctx, usr1, stopFn
}

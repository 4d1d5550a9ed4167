// Command client connects to a pacman server over its rendezvous pipe,
// creates its own request/notification FIFOs, and either drives the
// session from the keyboard or replays a command file, per
// client_main.c's behavior in the system this was distilled from.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/phuhao00/pacserver/internal/ipc"
	"github.com/phuhao00/pacserver/internal/logging"
	"github.com/phuhao00/pacserver/internal/protocol"
)

func main() {
	root := &cobra.Command{
		Use:   "client <id> <rendezvous_pipe> [cmd_file]",
		Short: "pacman game client",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdFile := ""
			if len(args) == 3 {
				cmdFile = args[2]
			}
			return run(args[0], args[1], cmdFile)
		},
		SilenceUsage: true,
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(id, rendezvousPipe, cmdFile string) error {
	reqPath := fmt.Sprintf("/tmp/%s_request", id)
	notifPath := fmt.Sprintf("/tmp/%s_notification", id)

	if err := ipc.CreateRendezvousPipe(reqPath); err != nil {
		return fmt.Errorf("create request pipe: %w", err)
	}
	if err := ipc.CreateRendezvousPipe(notifPath); err != nil {
		return fmt.Errorf("create notification pipe: %w", err)
	}
	defer ipc.RemoveRendezvousPipe(reqPath)
	defer ipc.RemoveRendezvousPipe(notifPath)

	c, err := connect(reqPath, notifPath, rendezvousPipe)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.pipes.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.receiveLoop()
	}()

	hasAuto := cmdFile != ""
	if hasAuto {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.autoMoveLoop(cmdFile)
		}()
	}

	c.keyboardLoop(hasAuto)

	c.disconnect()
	wg.Wait()
	return nil
}

// session mirrors api.c's static Session: one connected client, its
// tempo (updated from each BOARD frame and consulted by the auto-move
// player so it paces itself the same as the server ticks), and a single
// stop flag every loop polls.
type session struct {
	pipes *ipc.SessionPipes

	stopped atomic.Bool
	tempoMs atomic.Int64
}

func connect(reqPath, notifPath, rendezvousPipe string) (*session, error) {
	reqBuf, err := protocol.EncodeConnectRequest(protocol.ConnectRequest{
		ReqPipePath:   reqPath,
		NotifPipePath: notifPath,
	})
	if err != nil {
		return nil, err
	}

	server, err := os.OpenFile(rendezvousPipe, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open rendezvous pipe: %w", err)
	}
	if _, err := server.Write(reqBuf); err != nil {
		server.Close()
		return nil, fmt.Errorf("send connect request: %w", err)
	}
	server.Close()

	notif, err := os.OpenFile(notifPath, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open notification pipe: %w", err)
	}
	req, err := os.OpenFile(reqPath, os.O_WRONLY, 0)
	if err != nil {
		notif.Close()
		return nil, fmt.Errorf("open request pipe: %w", err)
	}

	op, err := protocol.ReadOp(notif)
	if err != nil {
		notif.Close()
		req.Close()
		return nil, fmt.Errorf("read connect ack: %w", err)
	}
	ok, err := protocol.ReadConnectAck(notif)
	if err != nil || op != protocol.OpConnect || !ok {
		notif.Close()
		req.Close()
		return nil, fmt.Errorf("server refused connection")
	}

	s := &session{pipes: &ipc.SessionPipes{Notify: notif, Req: req}}
	s.tempoMs.Store(200)
	return s, nil
}

// receiveLoop reads BOARD frames until the server ends the session or
// the pipe breaks, printing each frame and tracking the server's tempo.
func (s *session) receiveLoop() {
	for {
		op, err := protocol.ReadOp(s.pipes.Notify)
		if err != nil {
			s.stopped.Store(true)
			return
		}
		if op != protocol.OpBoard {
			logging.Warnf("client: ignoring unexpected op-code %d on notify pipe", op)
			continue
		}
		frame, err := protocol.ReadBoardFrame(s.pipes.Notify)
		if err != nil {
			s.stopped.Store(true)
			return
		}
		s.tempoMs.Store(int64(frame.Tempo))
		drawBoard(frame)
		if frame.GameOver != 0 {
			s.stopped.Store(true)
			return
		}
	}
}

// autoMoveLoop replays WASD characters from cmdFile, looping at EOF,
// ignoring comment/blank/POS/PASSO lines, pacing itself at the server's
// current tempo — client_auto_move_thread's contract.
func (s *session) autoMoveLoop(cmdFile string) {
	f, err := os.Open(cmdFile)
	if err != nil {
		logging.Errorf("client: opening command file %q: %v", cmdFile, err)
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for !s.stopped.Load() {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				logging.Errorf("client: reading command file: %v", err)
				return
			}
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return
			}
			scanner = bufio.NewScanner(f)
			continue
		}
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "POS") || strings.HasPrefix(line, "PASSO") {
			continue
		}
		for _, r := range strings.ToUpper(line) {
			if s.stopped.Load() {
				return
			}
			b := byte(r)
			if protocol.ValidPlayDirection(b) {
				s.play(protocol.PlayDirection(b))
				time.Sleep(time.Duration(s.tempoMs.Load()) * time.Millisecond)
			}
		}
	}
}

// keyboardLoop reads raw terminal input. 'Q' always quits; W/A/S/D are
// forwarded only when no command file is driving the session (the
// original's "keyboard is locked out while auto-move is active" rule).
func (s *session) keyboardLoop(hasAuto bool) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		logging.Warnf("client: stdin is not a terminal, keyboard input disabled: %v", err)
		for !s.stopped.Load() {
			time.Sleep(100 * time.Millisecond)
		}
		return
	}
	defer term.Restore(fd, oldState)

	buf := make([]byte, 1)
	for !s.stopped.Load() {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			continue
		}
		cmd := byte(strings.ToUpper(string(buf[0]))[0])
		if cmd == 'Q' {
			s.stopped.Store(true)
			return
		}
		if !hasAuto && protocol.ValidPlayDirection(cmd) {
			s.play(protocol.PlayDirection(cmd))
		}
	}
}

func (s *session) play(dir protocol.PlayDirection) {
	if _, err := s.pipes.Req.Write(protocol.EncodePlay(dir)); err != nil {
		logging.Warnf("client: sending play command: %v", err)
	}
}

func (s *session) disconnect() {
	if _, err := s.pipes.Req.Write(protocol.EncodeDisconnect()); err != nil {
		logging.Warnf("client: sending disconnect: %v", err)
	}
}

// drawBoard renders one BOARD frame as plain rows of content bytes,
// supplementing the spec's explicit TUI non-goal with just enough
// display to make the client runnable end to end.
func drawBoard(f protocol.BoardFrame) {
	fmt.Print("\x1b[2J\x1b[H")
	for y := int32(0); y < f.Height; y++ {
		row := f.Cells[y*f.Width : (y+1)*f.Width]
		fmt.Println(string(row))
	}
	fmt.Printf("points=%d tempo=%dms\n", f.Points, f.Tempo)
}

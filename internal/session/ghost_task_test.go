package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/phuhao00/pacserver/internal/board"
)

func TestRunGhostTaskAppliesScriptedMoves(t *testing.T) {
	b := &board.Board{
		Width:  3,
		Height: 1,
		Tempo:  10,
		Cells: []board.Cell{
			{Content: board.ContentEmpty},
			{Content: board.ContentGhost},
			{Content: board.ContentEmpty},
		},
		Ghosts: []board.Ghost{
			{PosX: 1, PosY: 0, Moves: []board.Command{{Direction: board.DirRight, Turns: 1, TurnsLeft: 1}}},
		},
	}

	running := &atomic.Bool{}
	running.Store(true)
	levelFinished := &atomic.Bool{}
	levelDone := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		runGhostTask(b, 0, running, levelFinished, levelDone)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		b.Lock.RLock()
		x := b.Ghosts[0].PosX
		b.Lock.RUnlock()
		if x == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	b.Lock.RLock()
	x := b.Ghosts[0].PosX
	b.Lock.RUnlock()
	if x != 2 {
		t.Fatalf("ghost at x=%d after scripted move, want 2", x)
	}

	close(levelDone)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ghost task did not return after levelDone closed")
	}
}

func TestRunGhostTaskStopsWhenLevelFinished(t *testing.T) {
	b := &board.Board{
		Width:  1,
		Height: 1,
		Tempo:  5,
		Cells:  []board.Cell{{Content: board.ContentGhost}},
		Ghosts: []board.Ghost{{PosX: 0, PosY: 0}},
	}

	running := &atomic.Bool{}
	running.Store(true)
	levelFinished := &atomic.Bool{}
	levelFinished.Store(true)
	levelDone := make(chan struct{})
	defer close(levelDone)

	done := make(chan struct{})
	go func() {
		defer close(done)
		runGhostTask(b, 0, running, levelFinished, levelDone)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ghost task should exit promptly once levelFinished is already set")
	}
}

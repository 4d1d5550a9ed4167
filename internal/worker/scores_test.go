package worker

import (
	"strings"
	"testing"

	"github.com/phuhao00/pacserver/internal/board"
)

func TestDumpTopScoresOrdersDescendingAndCapsAtFive(t *testing.T) {
	var games []*board.Board
	for i, points := range []int{10, 40, 30, 20, 50, 5, 60} {
		games = append(games, &board.Board{
			Cells:    make([]board.Cell, 1),
			PlayerID: string(rune('a' + i)),
			Pacman:   board.Pacman{Points: points},
		})
	}

	var buf strings.Builder
	if err := DumpTopScores(&buf, games); err != nil {
		t.Fatalf("dump: %v", err)
	}
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1+5 {
		t.Fatalf("got %d lines, want header + 5 ranks:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "Pontos: 60") || !strings.Contains(lines[1], "Rank #1") {
		t.Fatalf("rank 1 line = %q", lines[1])
	}
	if !strings.Contains(lines[5], "Pontos: 20") || !strings.Contains(lines[5], "Rank #5") {
		t.Fatalf("rank 5 line = %q", lines[5])
	}
}

func TestDumpTopScoresSkipsMidLoadSlots(t *testing.T) {
	games := []*board.Board{
		nil,
		{Cells: nil, PlayerID: "loading"},
		{Cells: make([]board.Cell, 1), PlayerID: "ready", Pacman: board.Pacman{Points: 9}},
	}

	var buf strings.Builder
	if err := DumpTopScores(&buf, games); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if strings.Contains(buf.String(), "loading") {
		t.Fatalf("mid-load board should have been skipped: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "ready") {
		t.Fatalf("ready board missing from dump: %s", buf.String())
	}
}

func TestDumpTopScoresNoneActive(t *testing.T) {
	var buf strings.Builder
	if err := DumpTopScores(&buf, nil); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(buf.String(), "Nenhum jogo ativo no momento.") {
		t.Fatalf("expected no-active-games message, got %q", buf.String())
	}
}

package board

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadLevelBasic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.lvl", "DIM 4 3\nTEMPO 50\nXXXX\nX  X\nXXXX\n")

	b, err := LoadLevel(dir, "a.lvl", 0)
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	if b.Width != 4 || b.Height != 3 || b.Tempo != 50 {
		t.Fatalf("dims = %dx%d tempo=%d", b.Width, b.Height, b.Tempo)
	}
	if !b.Pacman.Alive || b.Pacman.Points != 0 {
		t.Fatalf("pacman = %+v", b.Pacman)
	}
	if b.Cells[b.idx(b.Pacman.PosX, b.Pacman.PosY)].Content != ContentPac {
		t.Fatal("pacman not placed on the board")
	}
}

func TestLoadLevelWithPacmanAndGhostFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.lvl", "DIM 5 3\nTEMPO 20\nPAC a.p\nMON a.m\nXXXXX\nX @ X\nXXXXX\n")
	writeFile(t, dir, "a.p", "POS 1 1\nPASSO 0\n")
	writeFile(t, dir, "a.m", "POS 3 1\nPASSO 1\nD\nT 3\nA\n")

	b, err := LoadLevel(dir, "a.lvl", 5)
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	if b.Pacman.PosX != 1 || b.Pacman.PosY != 1 || b.Pacman.Points != 5 {
		t.Fatalf("pacman = %+v", b.Pacman)
	}
	if len(b.Ghosts) != 1 {
		t.Fatalf("ghosts = %d, want 1", len(b.Ghosts))
	}
	g := b.Ghosts[0]
	if g.PosX != 3 || g.PosY != 1 || g.Passo != 1 {
		t.Fatalf("ghost = %+v", g)
	}
	if len(g.Moves) != 3 || !g.Moves[1].Repeat || g.Moves[1].Direction != DirRight || g.Moves[1].Turns != 3 {
		t.Fatalf("ghost moves = %+v, want T-block carrying forward direction D", g.Moves)
	}
	if !b.Cells[b.idx(2, 1)].HasPortal {
		t.Fatal("portal cell not marked")
	}
}

func TestFilterLevelsSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.lvl", "a.lvl", "notes.txt", "z.p"} {
		writeFile(t, dir, name, "DIM 1 1\nTEMPO 1\nX\n")
	}
	names, err := FilterLevels(dir)
	if err != nil {
		t.Fatalf("FilterLevels: %v", err)
	}
	want := []string{"a.lvl", "b.lvl"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestMovePacmanDotsAndPortal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.lvl", "DIM 4 1\nTEMPO 1\n .@X\n")
	b, err := LoadLevel(dir, "a.lvl", 0)
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	// pacman placed at first empty cell: column 0.
	if b.Pacman.PosX != 0 {
		t.Fatalf("pacman pos = %d", b.Pacman.PosX)
	}
	res := MovePacman(b, Command{Direction: DirRight, Turns: 1, TurnsLeft: 1})
	if res.ReachedPortal || res.Blocked {
		t.Fatalf("unexpected result moving onto col 1: %+v", res)
	}
	if b.Pacman.Points != 1 {
		t.Fatalf("points = %d, want 1 (dot at col 1)", b.Pacman.Points)
	}
	res = MovePacman(b, Command{Direction: DirRight, Turns: 1, TurnsLeft: 1})
	if !res.ReachedPortal {
		t.Fatal("expected portal reached moving onto col 2")
	}
	res = MovePacman(b, Command{Direction: DirRight, Turns: 1, TurnsLeft: 1})
	if !res.Blocked {
		t.Fatal("expected wall to block the move onto col 3")
	}
}

func TestMoveGhostCollisionKillsPacman(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.lvl", "DIM 3 1\nTEMPO 1\nPAC a.p\nMON a.m\nP M\n")
	writeFile(t, dir, "a.p", "POS 0 0\nPASSO 0\n")
	writeFile(t, dir, "a.m", "POS 2 0\nPASSO 0\nA\n")
	b, err := LoadLevel(dir, "a.lvl", 0)
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	// Ghost steps left twice to reach pacman's cell.
	MoveGhost(b, 0, NextGhostCommand(b, 0))
	res := MoveGhost(b, 0, NextGhostCommand(b, 0))
	if !res.PacmanDied || b.Pacman.Alive {
		t.Fatalf("expected pacman to die on ghost collision, result=%+v alive=%v", res, b.Pacman.Alive)
	}
}

func TestMoveGhostRepeatsPreviousDirectionDuringTBlock(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.lvl", "DIM 4 1\nTEMPO 1\nPAC a.p\nMON a.m\n    \n")
	writeFile(t, dir, "a.p", "POS 3 0\nPASSO 0\n")
	writeFile(t, dir, "a.m", "POS 0 0\nPASSO 0\nD\nT 2\n")
	b, err := LoadLevel(dir, "a.lvl", 0)
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}

	// First tick consumes the plain "D" entry; the next two ticks must
	// keep moving right through the "T 2" block instead of no-opping.
	for want := 1; want <= 3; want++ {
		MoveGhost(b, 0, NextGhostCommand(b, 0))
		if b.Ghosts[0].PosX != want {
			t.Fatalf("ghost x = %d after tick %d, want %d", b.Ghosts[0].PosX, want, want)
		}
	}
}

func TestGetBoardDisplayedConsistentLength(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.lvl", "DIM 2 2\nTEMPO 1\nXX\nX.\n")
	b, err := LoadLevel(dir, "a.lvl", 0)
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	cells := GetBoardDisplayed(b)
	if len(cells) != b.Width*b.Height {
		t.Fatalf("cells len = %d, want %d", len(cells), b.Width*b.Height)
	}
}

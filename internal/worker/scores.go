package worker

import (
	"fmt"
	"io"
	"sort"

	"github.com/phuhao00/pacserver/internal/board"
)

// DumpTopScores writes the top-5 active games by pacman points to w, in
// the exact line format spec.md §4.7 and §8 require: "Rank #k - Jogador:
// <id> - Pontos: <p>". Boards whose level is mid-load (Cells still nil,
// per spec.md §9's "dump must skip slots whose board is mid-load") are
// skipped rather than read. The read of b.Pacman.Points is intentionally
// lock-free — a deliberate acceptance of torn diagnostic reads per
// spec.md §4.7/§9, matching the original's single 32-bit score read.
func DumpTopScores(w io.Writer, games []*board.Board) error {
	if _, err := fmt.Fprintln(w, "=== TOP 5 JOGOS ATIVOS ==="); err != nil {
		return err
	}

	var live []*board.Board
	for _, b := range games {
		if b != nil && b.Cells != nil {
			live = append(live, b)
		}
	}

	if len(live) == 0 {
		_, err := fmt.Fprintln(w, "Nenhum jogo ativo no momento.")
		return err
	}

	sort.Slice(live, func(i, j int) bool {
		return live[i].Pacman.Points > live[j].Pacman.Points
	})

	limit := len(live)
	if limit > 5 {
		limit = 5
	}
	for i := 0; i < limit; i++ {
		if _, err := fmt.Fprintf(w, "Rank #%d - Jogador: %s - Pontos: %d\n",
			i+1, live[i].PlayerID, live[i].Pacman.Points); err != nil {
			return err
		}
	}
	return nil
}

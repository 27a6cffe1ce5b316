package main

import (
	"fmt"
	"math"
	"strings"

	"zkship/internal/game"
)

// rowLen picks the widest square-ish row for a flat board so renders stay
// readable for non-square sizes too.
func rowLen(size int) int {
	r := int(math.Sqrt(float64(size)))
	if r < 1 {
		return 1
	}
	return r
}

// renderBoard draws a player's own board during placement: tile numbers for
// water, "o" for ships.
func renderBoard(b game.Board) string {
	cells := make([]string, len(b))
	for i, v := range b {
		if v == 1 {
			cells[i] = "o"
		} else {
			cells[i] = fmt.Sprint(i)
		}
	}
	return renderRows(cells)
}

// renderView draws a view board: tile numbers for unattacked tiles, "x"
// for hits, "o" for misses.
func renderView(v game.ViewBoard) string {
	cells := make([]string, len(v))
	for i, st := range v {
		switch st {
		case game.CellHit:
			cells[i] = "x"
		case game.CellMiss:
			cells[i] = "o"
		default:
			cells[i] = fmt.Sprint(i)
		}
	}
	return renderRows(cells)
}

func renderRows(cells []string) string {
	var sb strings.Builder
	per := rowLen(len(cells))
	for i := 0; i < len(cells); i += per {
		end := i + per
		if end > len(cells) {
			end = len(cells)
		}
		sb.WriteString("[" + strings.Join(cells[i:end], ", ") + "]\n")
	}
	return sb.String()
}

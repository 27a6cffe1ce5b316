// Package game implements the two-player protocol around the commitments:
// board placement, the per-move opening checks and the match state machine.
package game

import (
	"errors"
	"fmt"
	"math/rand"
)

// PublicParams are the game-wide constants both players agree on before
// placement. Fixed for the whole match.
type PublicParams struct {
	Ships uint8 `json:"ships"`
	Size  uint8 `json:"size"`
}

func (p PublicParams) Validate() error {
	if p.Size == 0 {
		return errors.New("board size must be positive")
	}
	if p.Ships > p.Size {
		return fmt.Errorf("cannot place %d ships on %d tiles", p.Ships, p.Size)
	}
	return nil
}

// Board is a flat sequence of tiles. 0 = water, 1 = ship. Private to its
// owner; never transmitted in full.
type Board []uint8

func NewBoard(size uint8) Board { return make(Board, int(size)) }

// Validate checks the board against the declared parameters: right length,
// binary cells, exactly Ships ship cells.
func (b Board) Validate(p PublicParams) error {
	if len(b) != int(p.Size) {
		return fmt.Errorf("board has %d cells, declared size is %d", len(b), p.Size)
	}
	total := 0
	for i, v := range b {
		if v != 0 && v != 1 {
			return fmt.Errorf("cell %d holds %d, want 0 or 1", i, v)
		}
		total += int(v)
	}
	if total != int(p.Ships) {
		return fmt.Errorf("board has %d ship cells, declared count is %d", total, p.Ships)
	}
	return nil
}

// ShipCells returns the number of tiles holding a ship.
func (b Board) ShipCells() int {
	total := 0
	for _, v := range b {
		total += int(v)
	}
	return total
}

// RandomBoard places p.Ships single-cell ships on distinct tiles.
func RandomBoard(p PublicParams) Board {
	b := NewBoard(p.Size)
	placed := 0
	for placed < int(p.Ships) {
		t := rand.Intn(len(b))
		if b[t] == 0 {
			b[t] = 1
			placed++
		}
	}
	return b
}

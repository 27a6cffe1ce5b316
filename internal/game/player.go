package game

import (
	"errors"

	"zkship/internal/commit"
)

// Player owns one side's private material (board, salts) and its public
// commitment table. Nothing here is shared between the two players; only
// the table, the proof and per-move openings cross the boundary.
type Player struct {
	Name string

	board Board
	salts []commit.Randomness
	table []commit.Digest // published at setup, immutable afterwards

	view      ViewBoard // this player's knowledge of the opponent's board
	remaining int       // live ship cells on this player's own board
	proof     []byte
	verified  bool // opponent accepted this player's board proof
}

func newPlayer(name string, p PublicParams) *Player {
	return &Player{Name: name, view: NewViewBoard(p.Size)}
}

func (pl *Player) placeBoard(b Board, p PublicParams) error {
	if pl.table != nil {
		return errors.New("board already committed")
	}
	if err := b.Validate(p); err != nil {
		return err
	}
	pl.board = append(Board(nil), b...)
	pl.remaining = b.ShipCells()
	return nil
}

// commitBoard draws fresh randomness for every cell and publishes the
// commitment table. The table never changes afterwards; the validity proof
// and every later opening check refer to this one copy.
func (pl *Player) commitBoard() error {
	if pl.board == nil {
		return errors.New("no board placed")
	}
	if pl.table != nil {
		return errors.New("board already committed")
	}
	salts := make([]commit.Randomness, len(pl.board))
	table := make([]commit.Digest, len(pl.board))
	for i, v := range pl.board {
		r, err := commit.NewRandomness()
		if err != nil {
			return err
		}
		salts[i] = r
		table[i] = commit.Commit(v, r)
	}
	pl.salts = salts
	pl.table = table
	return nil
}

// Open reveals the committed value and randomness for one tile. The value
// is always the originally committed one; hits never rewrite history.
func (pl *Player) Open(tile int) Opening {
	return Opening{Value: pl.board[tile], Randomness: pl.salts[tile]}
}

// Table returns the published commitment table. Callers must treat it as
// read-only.
func (pl *Player) Table() []commit.Digest { return pl.table }

func (pl *Player) Board() Board { return pl.board }

func (pl *Player) View() ViewBoard { return pl.view }

func (pl *Player) Remaining() int { return pl.remaining }

func (pl *Player) Proof() []byte { return pl.proof }

func (pl *Player) Verified() bool { return pl.verified }

package game

// CellState is what an attacker has learned about one opposing tile.
type CellState uint8

const (
	CellUnknown CellState = iota
	CellHit
	CellMiss
)

// ViewBoard records what has been revealed of the opponent's board through
// this player's attacks. Mutated only by the owner's own shots.
type ViewBoard []CellState

func NewViewBoard(size uint8) ViewBoard { return make(ViewBoard, int(size)) }

// Attacked reports whether the tile has already been shot at.
func (v ViewBoard) Attacked(tile int) bool { return v[tile] != CellUnknown }

package game

import (
	"errors"
	"fmt"

	"zkship/internal/commit"
)

// Phase is the match lifecycle state.
type Phase uint8

const (
	PhasePlacing Phase = iota
	PhaseCommitting
	PhaseProving
	PhaseVerifying
	PhasePlaying
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhasePlacing:
		return "placing"
	case PhaseCommitting:
		return "committing"
	case PhaseProving:
		return "proving"
	case PhaseVerifying:
		return "verifying"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

var (
	ErrWrongPhase       = errors.New("operation not allowed in this phase")
	ErrTileOutOfRange   = errors.New("tile not on the board")
	ErrAlreadyAttacked  = errors.New("tile already attacked")
	ErrMatchOver        = errors.New("match is over")
	ErrBoardNotVerified = errors.New("board proof not verified")
)

// ProofSession is the slice of the proof backend the match needs: the
// one-time board validity proof and its verification. *zk.Session
// satisfies it.
type ProofSession interface {
	ProveBoard(ships uint8, cells []uint8, salts []commit.Randomness, table []commit.Digest) ([]byte, error)
	VerifyBoard(proof []byte, ships, size uint8, table []commit.Digest) (bool, error)
}

// ShotResult is the outcome of one attack. Opening carries the defender's
// reveal the outcome was decided on, so callers can relay it as the
// attacker-side audit trail.
type ShotResult struct {
	Tile      int  `json:"tile"`
	Hit       bool `json:"hit"`
	Cheated   bool `json:"cheated"` // defender's opening failed the commitment check
	Over      bool `json:"over"`
	Winner    int  `json:"winner"`    // attacker index, valid when Over
	Remaining int  `json:"remaining"` // defender's live ship cells after the shot

	Opening Opening `json:"-"`
}

// Match sequences two players through setup (place, commit, prove, verify)
// and alternating play. All state is explicit; nothing is process-global.
type Match struct {
	Params  PublicParams
	players [2]*Player
	phase   Phase
	turn    int // attacker index during PhasePlaying
	winner  int
}

func NewMatch(p PublicParams, nameA, nameB string) (*Match, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Match{
		Params:  p,
		players: [2]*Player{newPlayer(nameA, p), newPlayer(nameB, p)},
		phase:   PhasePlacing,
		winner:  -1,
	}, nil
}

func (m *Match) Phase() Phase { return m.phase }

func (m *Match) Player(i int) *Player { return m.players[i] }

// Turn returns the index of the player to attack next.
func (m *Match) Turn() int { return m.turn }

// Winner returns the winning player index once the match is decided.
func (m *Match) Winner() (int, bool) {
	if m.phase != PhaseFinished {
		return -1, false
	}
	return m.winner, true
}

// Place sets player i's board. Once both boards are in, the match moves to
// the committing phase.
func (m *Match) Place(i int, b Board) error {
	if m.phase != PhasePlacing {
		return fmt.Errorf("%w: %s", ErrWrongPhase, m.phase)
	}
	if err := m.players[i].placeBoard(b, m.Params); err != nil {
		return err
	}
	if m.players[0].board != nil && m.players[1].board != nil {
		m.phase = PhaseCommitting
	}
	return nil
}

// CommitBoards publishes both commitment tables. Commitments exist before
// any proof or move.
func (m *Match) CommitBoards() error {
	if m.phase != PhaseCommitting {
		return fmt.Errorf("%w: %s", ErrWrongPhase, m.phase)
	}
	for _, pl := range m.players {
		if err := pl.commitBoard(); err != nil {
			return err
		}
	}
	m.phase = PhaseProving
	return nil
}

// ProveBoards produces each player's validity proof over the published
// tables.
func (m *Match) ProveBoards(sess ProofSession) error {
	if m.phase != PhaseProving {
		return fmt.Errorf("%w: %s", ErrWrongPhase, m.phase)
	}
	for _, pl := range m.players {
		proof, err := sess.ProveBoard(m.Params.Ships, pl.board, pl.salts, pl.table)
		if err != nil {
			return fmt.Errorf("prove %s: %w", pl.Name, err)
		}
		pl.proof = proof
	}
	m.phase = PhaseVerifying
	return nil
}

// VerifyBoards runs each player's proof through the opponent's check
// against the public inputs (ships, size, commitment table). The per-player
// results let a rejection be attributed to the offending side.
func (m *Match) VerifyBoards(sess ProofSession) ([2]bool, error) {
	var out [2]bool
	if m.phase != PhaseVerifying {
		return out, fmt.Errorf("%w: %s", ErrWrongPhase, m.phase)
	}
	for i, pl := range m.players {
		ok, err := sess.VerifyBoard(pl.proof, m.Params.Ships, m.Params.Size, pl.table)
		if err != nil {
			return out, fmt.Errorf("verify %s: %w", pl.Name, err)
		}
		pl.verified = ok
		out[i] = ok
	}
	return out, nil
}

// Start enters the play phase. Both proofs must have verified; an
// unverified board blocks play entirely.
func (m *Match) Start() error {
	if m.phase != PhaseVerifying {
		return fmt.Errorf("%w: %s", ErrWrongPhase, m.phase)
	}
	for _, pl := range m.players {
		if !pl.verified {
			return fmt.Errorf("%w: %s", ErrBoardNotVerified, pl.Name)
		}
	}
	m.phase = PhasePlaying
	return nil
}

// Fire has the current attacker shoot at one tile of the defender's board.
// The defender opens the tile's commitment; a mismatching opening is
// detected cheating and ends the match in the attacker's favor. An honest
// opening decides hit or miss, and the match ends when the defender's last
// ship cell is hit.
func (m *Match) Fire(tile int) (*ShotResult, error) {
	if m.phase == PhaseFinished {
		return nil, ErrMatchOver
	}
	if m.phase != PhasePlaying {
		return nil, fmt.Errorf("%w: %s", ErrWrongPhase, m.phase)
	}
	attacker, defender := m.players[m.turn], m.players[1-m.turn]
	if tile < 0 || tile >= int(m.Params.Size) {
		return nil, fmt.Errorf("%w: %d", ErrTileOutOfRange, tile)
	}
	if attacker.view.Attacked(tile) {
		return nil, fmt.Errorf("%w: %d", ErrAlreadyAttacked, tile)
	}

	opening := defender.Open(tile)
	if !VerifyOpening(opening, defender.table[tile]) {
		m.phase = PhaseFinished
		m.winner = m.turn
		return &ShotResult{
			Tile: tile, Cheated: true, Over: true,
			Winner: m.turn, Remaining: defender.remaining,
			Opening: opening,
		}, nil
	}

	res := &ShotResult{Tile: tile, Winner: -1, Opening: opening}
	if opening.Value == 1 {
		res.Hit = true
		attacker.view[tile] = CellHit
		defender.remaining--
	} else {
		attacker.view[tile] = CellMiss
	}
	res.Remaining = defender.remaining

	if defender.remaining == 0 {
		m.phase = PhaseFinished
		m.winner = m.turn
		res.Over = true
		res.Winner = m.turn
	} else {
		m.turn = 1 - m.turn
	}
	return res, nil
}

// Package codec defines the JSON types for everything that crosses the
// player boundary. Private board state never appears here.
package codec

import (
	"encoding/hex"
	"fmt"

	"zkship/internal/commit"
	"zkship/internal/game"
)

// CommitMsg is the public material a player publishes at setup: the
// declared parameters and the per-cell commitment digests in board order.
type CommitMsg struct {
	Ships       uint8    `json:"ships"`
	Size        uint8    `json:"size"`
	Commitments []string `json:"commitments"` // hex digests, board order
	Fingerprint string   `json:"fingerprint"` // blake2s-256 of the table
}

func NewCommitMsg(p game.PublicParams, table []commit.Digest) CommitMsg {
	out := CommitMsg{
		Ships:       p.Ships,
		Size:        p.Size,
		Commitments: make([]string, len(table)),
	}
	for i, d := range table {
		out.Commitments[i] = d.Hex()
	}
	fp := commit.Fingerprint(table)
	out.Fingerprint = hex.EncodeToString(fp[:])
	return out
}

// Table decodes the digests back into a commitment table.
func (m CommitMsg) Table() ([]commit.Digest, error) {
	if len(m.Commitments) != int(m.Size) {
		return nil, fmt.Errorf("message carries %d commitments, declared size is %d", len(m.Commitments), m.Size)
	}
	table := make([]commit.Digest, len(m.Commitments))
	for i, s := range m.Commitments {
		d, err := commit.DigestFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("commitment %d: %w", i, err)
		}
		table[i] = d
	}
	return table, nil
}

// ProofMsg carries one serialized board validity proof.
type ProofMsg struct {
	Proof []byte `json:"proof"`
}

// OpeningMsg is a defender's reveal for one attacked tile.
type OpeningMsg struct {
	Tile       int    `json:"tile"`
	Value      uint8  `json:"value"`
	Randomness string `json:"randomness"` // hex, 32 bytes
}

func NewOpeningMsg(tile int, o game.Opening) OpeningMsg {
	return OpeningMsg{Tile: tile, Value: o.Value, Randomness: o.Randomness.Hex()}
}

// Opening decodes the reveal, enforcing the fixed randomness width.
func (m OpeningMsg) Opening() (game.Opening, error) {
	r, err := commit.RandomnessFromHex(m.Randomness)
	if err != nil {
		return game.Opening{}, err
	}
	return game.Opening{Value: m.Value, Randomness: r}, nil
}

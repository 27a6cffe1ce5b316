package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"zkship/internal/commit"
	"zkship/internal/game"
)

func TestCommitMsgRoundTrip(t *testing.T) {
	req := require.New(t)

	p := game.PublicParams{Ships: 1, Size: 4}
	table := make([]commit.Digest, 4)
	for i := range table {
		var r commit.Randomness
		r[0] = byte(i)
		table[i] = commit.Commit(uint8(i%2), r)
	}

	msg := NewCommitMsg(p, table)
	req.Len(msg.Commitments, 4)
	req.NotEmpty(msg.Fingerprint)

	back, err := msg.Table()
	req.NoError(err)
	req.Equal(table, back)
}

func TestCommitMsgRejectsBadTables(t *testing.T) {
	req := require.New(t)

	short := CommitMsg{Size: 4, Commitments: []string{"00"}}
	_, err := short.Table()
	req.Error(err)

	bad := CommitMsg{Size: 1, Commitments: []string{"not hex"}}
	_, err = bad.Table()
	req.Error(err)
}

func TestOpeningMsgRoundTrip(t *testing.T) {
	req := require.New(t)

	r, err := commit.NewRandomness()
	req.NoError(err)
	msg := NewOpeningMsg(3, game.Opening{Value: 1, Randomness: r})

	back, err := msg.Opening()
	req.NoError(err)
	req.Equal(uint8(1), back.Value)
	req.Equal(r, back.Randomness)

	msg.Randomness = "00"
	_, err = msg.Opening()
	req.Error(err)
}

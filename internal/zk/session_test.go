package zk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"zkship/internal/commit"
)

func testMaterial(cells []uint8) ([]commit.Randomness, []commit.Digest) {
	salts := make([]commit.Randomness, len(cells))
	table := make([]commit.Digest, len(cells))
	for i, v := range cells {
		salts[i] = testSalt(i)
		table[i] = commit.Commit(v, salts[i])
	}
	return salts, table
}

func TestSession(t *testing.T) {
	req := require.New(t)

	sess, err := NewSession(9)
	req.NoError(err)
	req.Equal(9, sess.Size())

	cells := []uint8{1, 1, 1, 0, 0, 0, 0, 0, 0}
	salts, table := testMaterial(cells)

	proof, err := sess.ProveBoard(3, cells, salts, table)
	req.NoError(err)
	req.NotEmpty(proof)

	t.Run("accepts the proving-time public inputs", func(t *testing.T) {
		ok, err := sess.VerifyBoard(proof, 3, 9, table)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("rejects a lying ship count", func(t *testing.T) {
		ok, err := sess.VerifyBoard(proof, 4, 9, table)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("rejects a lying board size", func(t *testing.T) {
		ok, err := sess.VerifyBoard(proof, 3, 10, table)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("rejects a reordered commitment table", func(t *testing.T) {
		reordered := append([]commit.Digest(nil), table...)
		reordered[0], reordered[1] = reordered[1], reordered[0]
		ok, err := sess.VerifyBoard(proof, 3, 9, reordered)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("refuses a truncated commitment table", func(t *testing.T) {
		_, err := sess.VerifyBoard(proof, 3, 9, table[:8])
		require.Error(t, err)
	})

	t.Run("refuses a malformed proof", func(t *testing.T) {
		_, err := sess.VerifyBoard([]byte{0x01, 0x02}, 3, 9, table)
		require.Error(t, err)
	})

	t.Run("refuses to prove a dishonest ship count", func(t *testing.T) {
		_, err := sess.ProveBoard(4, cells, salts, table)
		require.Error(t, err)
	})

	t.Run("refuses a board of the wrong length", func(t *testing.T) {
		_, err := sess.ProveBoard(3, cells[:8], salts[:8], table[:8])
		require.ErrorContains(t, err, "invalid configuration")
	})
}

func TestSessionRejectsBadSize(t *testing.T) {
	_, err := NewSession(0)
	require.Error(t, err)
	_, err = NewSession(300)
	require.Error(t, err)
}

func TestLoadSessionReusesKeys(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	first, err := LoadSession(dir, 4)
	req.NoError(err)

	cells := []uint8{1, 0, 0, 0}
	salts, table := testMaterial(cells)
	proof, err := first.ProveBoard(1, cells, salts, table)
	req.NoError(err)

	// A second load must pick up the cached keys so existing proofs keep
	// verifying.
	second, err := LoadSession(dir, 4)
	req.NoError(err)
	ok, err := second.VerifyBoard(proof, 1, 4, table)
	req.NoError(err)
	req.True(ok)
}

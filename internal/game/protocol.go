package game

import "zkship/internal/commit"

// Opening is the defender's reveal for one attacked tile: the originally
// committed cell value and the blinding randomness it was committed under.
type Opening struct {
	Value      uint8
	Randomness commit.Randomness
}

// VerifyOpening recomputes the commitment for an opening and compares it
// byte for byte against the digest published at setup. No new proof is
// involved; the setup-time digest is the sole source of truth. A mismatch
// means the defender lied about the tile.
func VerifyOpening(o Opening, published commit.Digest) bool {
	return commit.Commit(o.Value, o.Randomness) == published
}

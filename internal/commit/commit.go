// Package commit implements the hiding/binding per-cell commitment used by
// both the board validity proof and the per-move opening checks.
//
// A commitment is MiMC(salt, value) over the BN254 scalar field, so the
// off-circuit digest computed here matches the in-circuit recomputation
// byte for byte.
package commit

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	bnmimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"golang.org/x/crypto/blake2s"
)

const (
	// RandomnessSize is the byte length of the blinding value, one per cell.
	RandomnessSize = 32
	// DigestSize is the byte length of a commitment digest.
	DigestSize = 32
)

// Randomness is the per-cell blinding value. Generated once at setup and
// never reused across cells or games.
type Randomness [RandomnessSize]byte

// Digest is one published commitment: the canonical big-endian encoding of
// a BN254 scalar.
type Digest [DigestSize]byte

// NewRandomness draws a fresh blinding value from crypto/rand.
func NewRandomness() (Randomness, error) {
	var r Randomness
	if _, err := rand.Read(r[:]); err != nil {
		return Randomness{}, fmt.Errorf("draw randomness: %w", err)
	}
	return r, nil
}

// Scalar returns the randomness reduced into the BN254 scalar field. The
// same reduction is applied when the randomness is witnessed in-circuit, so
// both sides hash the identical element.
func (r Randomness) Scalar() *big.Int {
	var e fr.Element
	e.SetBytes(r[:])
	return e.BigInt(new(big.Int))
}

// BigInt returns the digest as a field element for use as a public input.
func (d Digest) BigInt() *big.Int {
	return new(big.Int).SetBytes(d[:])
}

func (d Digest) Hex() string { return hex.EncodeToString(d[:]) }

// DigestFromHex parses a hex-encoded digest, enforcing the fixed width.
func DigestFromHex(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest hex: %w", err)
	}
	if len(b) != DigestSize {
		return d, fmt.Errorf("digest must be %d bytes, got %d", DigestSize, len(b))
	}
	copy(d[:], b)
	return d, nil
}

func (r Randomness) Hex() string { return hex.EncodeToString(r[:]) }

// RandomnessFromHex parses a hex-encoded blinding value, enforcing the
// fixed width.
func RandomnessFromHex(s string) (Randomness, error) {
	var out Randomness
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("invalid randomness hex: %w", err)
	}
	if len(b) != RandomnessSize {
		return out, fmt.Errorf("randomness must be %d bytes, got %d", RandomnessSize, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// Commit derives the digest binding value under r. Deterministic; a given
// (value, randomness) pair always reproduces the same digest.
func Commit(value uint8, r Randomness) Digest {
	var salt, cell fr.Element
	salt.SetBytes(r[:]) // reduced mod the field order
	cell.SetUint64(uint64(value))

	h := bnmimc.NewMiMC()
	sb := salt.Bytes()
	cb := cell.Bytes()
	h.Write(sb[:])
	h.Write(cb[:])

	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Fingerprint condenses a published commitment table into one blake2s-256
// digest. Display and comparison convenience only; nothing is proved
// against it.
func Fingerprint(table []Digest) [blake2s.Size]byte {
	h, _ := blake2s.New256(nil)
	for i := range table {
		h.Write(table[i][:])
	}
	var out [blake2s.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

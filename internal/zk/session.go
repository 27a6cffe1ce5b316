package zk

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"zkship/internal/commit"
	"zkship/internal/logger"
)

// Session binds one compiled board shape to a groth16 proving context. One
// session serves every game with the same board size.
type Session struct {
	size int
	ccs  constraint.ConstraintSystem
	pk   groth16.ProvingKey
	vk   groth16.VerifyingKey
}

func compileBoard(size int) (constraint.ConstraintSystem, error) {
	if size < 1 || size > 255 {
		return nil, fmt.Errorf("invalid configuration: board size %d not in [1,255]", size)
	}
	return frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, NewBoardCircuit(size))
}

// NewSession compiles the circuit for size cells and runs a fresh groth16
// setup. Expensive; prefer LoadSession when a keys directory is available.
func NewSession(size int) (*Session, error) {
	ccs, err := compileBoard(size)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, err
	}
	logger.Logger().Debug().Int("size", size).Dur("took", time.Since(start)).Msg("groth16 setup")
	return &Session{size: size, ccs: ccs, pk: pk, vk: vk}, nil
}

// LoadSession compiles the circuit for size cells and reuses proving and
// verifying keys cached under keysDir when present, generating and writing
// them otherwise. Key files are per board shape.
func LoadSession(keysDir string, size int) (*Session, error) {
	ccs, err := compileBoard(size)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(keysDir, 0o755); err != nil {
		return nil, err
	}
	pkPath := filepath.Join(keysDir, fmt.Sprintf("board-%d.pk", size))
	vkPath := filepath.Join(keysDir, fmt.Sprintf("board-%d.vk", size))

	if pk, vk, err := readKeys(pkPath, vkPath); err == nil {
		logger.Logger().Debug().Int("size", size).Msg("reusing cached keys")
		return &Session{size: size, ccs: ccs, pk: pk, vk: vk}, nil
	}

	start := time.Now()
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, err
	}
	logger.Logger().Info().Int("size", size).Dur("took", time.Since(start)).Msg("generated keys")

	if err := writeKey(pkPath, pk); err != nil {
		return nil, err
	}
	if err := writeKey(vkPath, vk); err != nil {
		return nil, err
	}
	return &Session{size: size, ccs: ccs, pk: pk, vk: vk}, nil
}

func (s *Session) Size() int { return s.size }

func (s *Session) VerifyingKey() groth16.VerifyingKey { return s.vk }

// ProveBoard produces the one-time proof that the committed board satisfies
// the validity predicate. cells and salts stay private; the proof is bound
// to (ships, size, table). An unsatisfiable board fails here rather than
// producing a proof.
func (s *Session) ProveBoard(ships uint8, cells []uint8, salts []commit.Randomness, table []commit.Digest) ([]byte, error) {
	if len(cells) != s.size || len(salts) != s.size || len(table) != s.size {
		return nil, fmt.Errorf("invalid configuration: board has %d cells, %d salts, %d commitments, session is for %d",
			len(cells), len(salts), len(table), s.size)
	}

	assign := NewBoardCircuit(s.size)
	assign.Ships = ships
	assign.Size = s.size
	for i := 0; i < s.size; i++ {
		assign.Cells[i] = cells[i]
		assign.Salts[i] = salts[i].Scalar()
		assign.Commitments[i] = table[i].BigInt()
	}

	wit, err := frontend.NewWitness(assign, ecc.BN254.ScalarField())
	if err != nil {
		return nil, err
	}
	start := time.Now()
	proof, err := groth16.Prove(s.ccs, s.pk, wit)
	if err != nil {
		return nil, fmt.Errorf("board does not satisfy the validity predicate: %w", err)
	}
	logger.Logger().Debug().Int("size", s.size).Dur("took", time.Since(start)).Msg("proved board")

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// VerifyBoard checks a proof against the declared public inputs, in the
// proving-time order: ships, size, then the commitments in board order.
// A false result is the ordinary "board rejected" outcome, not a fault;
// errors are reserved for malformed input.
func (s *Session) VerifyBoard(proofBin []byte, ships, size uint8, table []commit.Digest) (bool, error) {
	if len(table) != s.size {
		return false, fmt.Errorf("invalid configuration: %d commitments, session is for %d cells", len(table), s.size)
	}

	assign := NewBoardCircuit(s.size)
	assign.Ships = ships
	assign.Size = size
	for i := range table {
		assign.Commitments[i] = table[i].BigInt()
	}
	pubWit, err := frontend.NewWitness(assign, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, err
	}

	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBin)); err != nil {
		return false, fmt.Errorf("malformed proof: %w", err)
	}

	if err := groth16.Verify(proof, s.vk, pubWit); err != nil {
		logger.Logger().Debug().Err(err).Msg("board proof rejected")
		return false, nil
	}
	return true, nil
}

// --- key IO via io.WriterTo / io.ReaderFrom ---

func writeKey(path string, k io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = k.WriteTo(f)
	return err
}

func readKey(path string, k io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = k.ReadFrom(f)
	return err
}

func readKeys(pkPath, vkPath string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk := groth16.NewProvingKey(ecc.BN254)
	if err := readKey(pkPath, pk); err != nil {
		return nil, nil, err
	}
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := readKey(vkPath, vk); err != nil {
		return nil, nil, err
	}
	return pk, vk, nil
}

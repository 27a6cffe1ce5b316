// Package zk holds the board validity circuit and the groth16 proving
// context around it.
package zk

import (
	"errors"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// BoardCircuit proves a committed fleet layout is well formed without
// revealing it: the declared cell count matches the witnessed board, every
// cell is 0 or 1, the cells sum to the declared ship count, and each public
// commitment opens to its cell under the witnessed salt.
//
// Public input order is fixed by field declaration: Ships, Size, then the
// commitments in board order. Verifiers must keep that order.
type BoardCircuit struct {
	Ships       frontend.Variable   `gnark:",public"`
	Size        frontend.Variable   `gnark:",public"`
	Commitments []frontend.Variable `gnark:",public"`

	Cells []frontend.Variable `gnark:",secret"`
	Salts []frontend.Variable `gnark:",secret"`
}

// NewBoardCircuit allocates the circuit shape for a board of size cells.
func NewBoardCircuit(size int) *BoardCircuit {
	return &BoardCircuit{
		Commitments: make([]frontend.Variable, size),
		Cells:       make([]frontend.Variable, size),
		Salts:       make([]frontend.Variable, size),
	}
}

func (c *BoardCircuit) Define(api frontend.API) error {
	if len(c.Salts) != len(c.Cells) || len(c.Commitments) != len(c.Cells) {
		return errors.New("cells, salts and commitments must have one entry per tile")
	}

	// declared board size must equal the witnessed cell count
	api.AssertIsEqual(c.Size, len(c.Cells))

	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	sum := frontend.Variable(0)
	for i := range c.Cells {
		api.AssertIsBoolean(c.Cells[i]) // cell ∈ {0,1}
		sum = api.Add(sum, c.Cells[i])

		// commitment recomputation, same transcript as commit.Commit
		h.Reset()
		h.Write(c.Salts[i], c.Cells[i])
		api.AssertIsEqual(h.Sum(), c.Commitments[i])
	}

	// exact equality, not a bound
	api.AssertIsEqual(c.Ships, sum)
	return nil
}

package main

import (
	"fmt"
	"math"
)

// Parity selects the sign of the oracle's phase angle. Consecutive Grover
// iterations alternate between the two so the third-root-of-unity phases
// partially undo each other. The zero value is ParityForward.
type Parity int

const (
	ParityForward Parity = iota
	ParityConjugate
)

func (p Parity) String() string {
	switch p {
	case ParityForward:
		return "forward"
	case ParityConjugate:
		return "conjugate"
	default:
		return fmt.Sprintf("Parity(%d)", int(p))
	}
}

// Flip returns the other parity.
func (p Parity) Flip() Parity {
	if p == ParityConjugate {
		return ParityForward
	}
	return ParityConjugate
}

// Angle is the CP angle the oracle applies per permutation found: 2π/3, or
// -2π/3 for ParityConjugate.
func (p Parity) Angle() float64 {
	if p == ParityConjugate {
		return -2 * math.Pi / 3
	}
	return 2 * math.Pi / 3
}

// PermutationOracle multiplies each data basis state by ω^k, ω = e^{±2πi/3},
// where k counts the permutation matrices among its occupied cells.
//
// A permutation splits into the columns of rows 0 and 1 and the columns of
// rows 2 and 3. For each of the six column pairs the four ancillas record
// the two ways rows 0/1 can sit on the pair and the two ways rows 2/3 can
// sit on the rest; one CP per (top, bottom) combination then picks up
// exactly one factor of ω per permutation. Ancillas are uncomputed per pair.
// The ancilla Toffolis are relative-phase ones; each is undone by itself
// around the diagonal CPs.
//
// The phase only tracks k mod 3, so a board with three permutations is
// indistinguishable from one with none.
func PermutationOracle(l Layout, parity Parity) *Circuit {
	c := NewCircuit("oracle-"+parity.String(), l.NumQubits())
	x := l.Ancilla
	theta := parity.Angle()

	for c0 := range gridSize {
		for c1 := c0 + 1; c1 < gridSize; c1++ {
			r0, r1 := remainingColumns(c0, c1)

			entangle := NewCircuit("", l.NumQubits())
			entangle.RCCX(l.Cell(0, c0), l.Cell(1, c1), x[0])
			entangle.RCCX(l.Cell(0, c1), l.Cell(1, c0), x[1])
			entangle.RCCX(l.Cell(2, r0), l.Cell(3, r1), x[2])
			entangle.RCCX(l.Cell(2, r1), l.Cell(3, r0), x[3])

			c.Gates = append(c.Gates, entangle.Gates...)
			c.CP(theta, x[0], x[2])
			c.CP(theta, x[0], x[3])
			c.CP(theta, x[1], x[2])
			c.CP(theta, x[1], x[3])
			c.Gates = append(c.Gates, entangle.Inverse().Gates...)
		}
	}
	return renumber(c)
}

// remainingColumns returns the two columns not in {c0, c1}, ascending.
func remainingColumns(c0, c1 int) (int, int) {
	var rem []int
	for col := range gridSize {
		if col != c0 && col != c1 {
			rem = append(rem, col)
		}
	}
	return rem[0], rem[1]
}

// renumber restores sequential steps after gates were spliced in directly.
func renumber(c *Circuit) *Circuit {
	for i := range c.Gates {
		c.Gates[i].Step = i
	}
	c.MaxSteps = len(c.Gates)
	return c
}

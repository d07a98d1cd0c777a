package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
)

// ErrDuplicateBoard is returned by the expander when a board's pattern is
// already claimed by an earlier board. Preprocess rules this out.
var ErrDuplicateBoard = errors.New("board pattern collides with an earlier board")

// PowerOfTwoEntangler maps |n⟩|0⟩ to |n⟩|2ⁿ⟩: data qubit n ends up the only
// set bit of the data register.
//
// The spread phase leaves data qubit m on exactly when m ⊆ n. The elimination
// phase is the in-place superset Möbius transform over GF(2): for each address
// bit k, data[m] ^= data[m|2^k] for every m without bit k. Each CX XORs an
// on-set with its own half, so after four rounds every on-set is {n}.
// Every gate is self-inverse, so Inverse() runs it backwards exactly.
func PowerOfTwoEntangler(l Layout) *Circuit {
	c := NewCircuit("power-of-two", l.NumQubits())
	a, d := l.Address, l.Data

	for k := range a {
		c.CX(a[k], d[1<<k])
	}
	for k := range a {
		for j := k + 1; j < len(a); j++ {
			c.CCX(a[k], a[j], d[1<<k|1<<j])
		}
	}
	// Three and four address bits: extend the subset missing its top bit.
	for m := 1; m < len(d); m++ {
		if bits.OnesCount(uint(m)) < 3 {
			continue
		}
		top := bits.Len(uint(m)) - 1
		c.CCX(d[m&^(1<<top)], a[top], d[m])
	}
	// d0's on-set is every address value.
	c.X(d[0])

	for k := range a {
		for m := range d {
			if m&(1<<k) == 0 {
				c.CX(d[m|1<<k], d[m])
			}
		}
	}
	return c
}

// BoardExpander maps |2ⁱ⟩ on the data register to board i's pattern.
//
// It builds the inverse D one board at a time, keeping D(board j) = |2ʲ⟩ for
// every board already handled and D(2ʲ) untouched for later ones. For board i
// it runs D classically on the board's pattern to find ψ, then appends a layer
// sending ψ to |2ⁱ⟩ that fixes |2ʲ⟩ for j < i:
//
//   - if bit i of ψ is clear, set it with a CX from the lowest set bit above i,
//     or, when there is none, a CCX from the two lowest set bits below i;
//   - clear every other set bit with a CX from bit i.
//
// The expander is D reversed.
func BoardExpander(l Layout, boards []Board) (*Circuit, error) {
	d := l.Data
	inv := NewCircuit("board-expander†", l.NumQubits())

	for i, b := range boards {
		psi, err := SimulateClassical(inv, l.DataState(b))
		if err != nil {
			return nil, fmt.Errorf("board %d: %w", i, err)
		}

		var set []int
		for j := range d {
			if psi&bit(d[j]) != 0 {
				set = append(set, j)
			}
		}

		if psi&bit(d[i]) == 0 {
			above, below := -1, []int(nil)
			for _, j := range set {
				if j > i && above < 0 {
					above = j
				}
				if j < i {
					below = append(below, j)
				}
			}
			switch {
			case above >= 0:
				inv.CX(d[above], d[i])
			case len(below) >= 2:
				inv.CCX(d[below[0]], d[below[1]], d[i])
			default:
				return nil, fmt.Errorf("board %d: %w", i, ErrDuplicateBoard)
			}
		}
		for _, j := range set {
			if j != i {
				inv.CX(d[i], d[j])
			}
		}

		slog.Debug("expander layer", slog.Int("board", i), slog.Int("set_bits", len(set)),
			slog.Int("gates", len(inv.Gates)))
	}

	exp := inv.Inverse()
	exp.Name = "board-expander"
	return exp, nil
}

// MemoryUnit is the entangler followed by the expander: |n⟩|0⟩ → |n⟩|board n⟩.
func MemoryUnit(l Layout, boards []Board) (*Circuit, error) {
	parts, err := memoryParts(l, boards)
	if err != nil {
		return nil, err
	}
	return Compose("memory", parts...), nil
}

// memoryParts returns the entangler and the expander in application order.
func memoryParts(l Layout, boards []Board) ([]*Circuit, error) {
	exp, err := BoardExpander(l, boards)
	if err != nil {
		return nil, fmt.Errorf("memory unit: %w", err)
	}
	return []*Circuit{PowerOfTwoEntangler(l), exp}, nil
}

package main

import "fmt"

// Register sizes for the 4x4 Asteroids instance.
const (
	addressQubits = 4
	dataQubits    = 16
	ancillaQubits = 4
	gridSize      = 4
)

// Layout assigns the three registers to physical qubit indices.
// Address bit k holds bit k of the board index; data qubit i marks cell i.
type Layout struct {
	Address []int
	Data    []int
	Ancilla []int
}

// DefaultLayout places the address register on q[0..3], the data register
// on q[4..19] and the ancillas on q[20..23].
func DefaultLayout() Layout {
	l := Layout{
		Address: make([]int, addressQubits),
		Data:    make([]int, dataQubits),
		Ancilla: make([]int, ancillaQubits),
	}
	for i := range l.Address {
		l.Address[i] = i
	}
	for i := range l.Data {
		l.Data[i] = addressQubits + i
	}
	for i := range l.Ancilla {
		l.Ancilla[i] = addressQubits + dataQubits + i
	}
	return l
}

// NumQubits returns the total register width.
func (l Layout) NumQubits() int {
	return len(l.Address) + len(l.Data) + len(l.Ancilla)
}

// Cell returns the data qubit for grid cell (row, col).
func (l Layout) Cell(row, col int) int {
	return l.Data[gridSize*row+col]
}

// DataState returns the basis state with the given cells set in the data register.
func (l Layout) DataState(cells []int) uint64 {
	var s uint64
	for _, c := range cells {
		s |= 1 << uint(l.Data[c])
	}
	return s
}

// AddressState returns the basis state holding n in the address register.
func (l Layout) AddressState(n int) uint64 {
	var s uint64
	for k, q := range l.Address {
		if n&(1<<k) != 0 {
			s |= 1 << uint(q)
		}
	}
	return s
}

// registerLabel names a qubit by register for the circuit view.
func (l Layout) registerLabel(q int) string {
	for i, a := range l.Address {
		if a == q {
			return fmt.Sprintf("a%d", i)
		}
	}
	for i, d := range l.Data {
		if d == q {
			return fmt.Sprintf("d%d", i)
		}
	}
	for i, x := range l.Ancilla {
		if x == q {
			return fmt.Sprintf("x%d", i)
		}
	}
	return fmt.Sprintf("q%d", q)
}

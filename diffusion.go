package main

// Diffuser reflects the address register about the uniform superposition.
// The multi-controlled Z on |0000⟩ is built from two relative-phase Toffolis
// into the first two ancillas and a CZ onto the last address qubit. The
// Toffolis are mirrored around the CZ, so their phases cancel and both
// ancillas return to zero.
func Diffuser(l Layout) *Circuit {
	c := NewCircuit("diffuser", l.NumQubits())
	a, x := l.Address, l.Ancilla

	for _, q := range a {
		c.H(q)
	}
	for _, q := range a {
		c.X(q)
	}

	c.RCCX(a[0], a[1], x[0])
	c.RCCX(a[2], x[0], x[1])
	c.CZ(x[1], a[3])
	c.RCCX(a[2], x[0], x[1])
	c.RCCX(a[0], a[1], x[0])

	for _, q := range a {
		c.X(q)
	}
	for _, q := range a {
		c.H(q)
	}
	return c
}

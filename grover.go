package main

import (
	"errors"
	"fmt"
	"log/slog"
)

// Component is a named slice of the assembled circuit. Parts, when present,
// split Circuit into consecutive sub-circuits.
type Component struct {
	Name    string
	Circuit *Circuit
	Parts   []Component
}

// Assembly is the full Grover circuit plus the parts it was built from, in
// order of appearance. Components repeat once per iteration.
type Assembly struct {
	Circuit    *Circuit
	Components []Component
	Layout     Layout
}

// Component returns the first component or part with the given name.
func (a *Assembly) Component(name string) (*Circuit, bool) {
	for _, c := range a.Components {
		if c.Circuit.Name == name || c.Name == name {
			return c.Circuit, true
		}
		for _, p := range c.Parts {
			if p.Circuit.Name == name || p.Name == name {
				return p.Circuit, true
			}
		}
	}
	return nil, false
}

// AssembleGrover builds the search circuit: uniform superposition over board
// indices, then per iteration memory, oracle, inverse memory and diffuser,
// then a measurement of the address register into c[0..3].
func AssembleGrover(l Layout, boards []Board, iterations int) (*Assembly, error) {
	if iterations < 1 {
		return nil, errors.New("assemble: at least one iteration is required")
	}
	if len(boards) != len(l.Data) {
		return nil, fmt.Errorf("assemble: %w: got %d", ErrBoardCount, len(boards))
	}

	parts, err := memoryParts(l, boards)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	memory := Compose("memory", parts...)
	unmemory := memory.Inverse()
	unparts := make([]*Circuit, len(parts))
	for i, p := range parts {
		unparts[len(parts)-1-i] = p.Inverse()
	}
	subparts := map[*Circuit][]*Circuit{memory: parts, unmemory: unparts}
	diffuser := Diffuser(l)

	prep := NewCircuit("superposition", l.NumQubits())
	for _, q := range l.Address {
		prep.H(q)
	}
	measure := NewCircuit("measure", l.NumQubits())
	for _, q := range l.Address {
		measure.Measure(q)
	}

	asm := &Assembly{Layout: l}
	asm.Components = append(asm.Components, Component{Name: prep.Name, Circuit: prep})

	parity := ParityForward
	for i := range iterations {
		oracle := PermutationOracle(l, parity)
		for _, part := range []*Circuit{memory, oracle, unmemory, diffuser} {
			comp := Component{Name: fmt.Sprintf("%s#%d", part.Name, i+1), Circuit: part}
			for _, sub := range subparts[part] {
				comp.Parts = append(comp.Parts, Component{
					Name:    fmt.Sprintf("%s#%d", sub.Name, i+1),
					Circuit: sub,
				})
			}
			asm.Components = append(asm.Components, comp)
		}
		parity = parity.Flip()
	}
	asm.Components = append(asm.Components, Component{Name: measure.Name, Circuit: measure})

	full := NewCircuit("asteroids-grover", l.NumQubits())
	for i, comp := range asm.Components {
		if i > 0 {
			full.Barrier()
		}
		for _, g := range comp.Circuit.Clone().Gates {
			full.push(g)
		}
	}
	asm.Circuit = full

	slog.Debug("assembled grover circuit",
		slog.Int("iterations", iterations),
		slog.Int("components", len(asm.Components)),
		slog.Int("gates", len(full.Gates)))
	return asm, nil
}

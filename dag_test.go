package main

import (
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDAGParallelGates(t *testing.T) {
	qasm := heredoc.Doc(`
		OPENQASM 2.0;
		include "qelib1.inc";
		qreg q[4];
		creg c[1];

		h q[0];
		h q[1];
		cx q[0], q[1];
		x q[2];
	`)

	var c Circuit
	require.NoError(t, c.ParseQASM(qasm))
	dag := FromCircuit(&c, LayerOptions{})

	moments := map[string]int{}
	for _, n := range dag.Nodes {
		moments[n.ID] = n.Moment
	}
	assert.Equal(t, map[string]int{"H_0": 0, "H_1": 0, "CX_2": 1, "X_3": 0}, moments)
	assert.Equal(t, 2, dag.Depth())
	assert.ElementsMatch(t, []string{"H_0", "H_1"}, dag.Nodes["CX_2"].Dependencies)
	assert.Len(t, dag.GetNodesAtMoment(0), 3)
	assert.Len(t, dag.GetNodesOnQubit(1), 2)
}

func TestTopologicalSortRespectsDependencies(t *testing.T) {
	c := NewCircuit("chain", 3).H(0).CX(0, 1).CX(1, 2).H(0)
	dag := FromCircuit(c, LayerOptions{})

	seen := map[string]bool{}
	for _, n := range dag.TopologicalSort() {
		for _, dep := range n.Dependencies {
			assert.True(t, seen[dep], "%s before its dependency %s", n.ID, dep)
		}
		seen[n.ID] = true
	}
	assert.Len(t, seen, 4)
	assert.Equal(t, 3, dag.Depth())
}

func TestSpanKeepsColumnsDisjoint(t *testing.T) {
	c := NewCircuit("span", 3).CX(0, 2).H(1)

	assert.Equal(t, 1, Depth(c), "H on q1 runs alongside the CX")

	view := LayerForView(c)
	assert.Equal(t, 2, view.MaxSteps)
	assert.Equal(t, 0, view.Gates[0].Step)
	assert.Equal(t, 1, view.Gates[1].Step, "H would sit under the CX connector")
}

func TestBarriers(t *testing.T) {
	c := NewCircuit("b", 2).H(0).Barrier().H(1)

	// The barrier orders H q[1] after H q[0] without taking a moment.
	assert.Equal(t, 2, Depth(c))

	view := LayerForView(c)
	assert.Equal(t, 3, view.MaxSteps)
	steps := []int{}
	for _, g := range view.Gates {
		steps = append(steps, g.Step)
	}
	assert.Equal(t, []int{0, 1, 2}, steps)
	assert.True(t, view.getCellInfo(1, 1).isBarrier)
}

func TestToCircuitOrdersByMoment(t *testing.T) {
	c := NewCircuit("order", 3).H(0).CX(0, 1).H(2)
	out := FromCircuit(c, LayerOptions{}).ToCircuit("layered")

	assert.Equal(t, "layered", out.Name)
	require.Len(t, out.Gates, 3)
	assert.Equal(t, []string{"H", "H", "CX"}, []string{out.Gates[0].Type, out.Gates[1].Type, out.Gates[2].Type})
	assert.Equal(t, 0, out.Gates[0].Target)
	assert.Equal(t, 2, out.Gates[1].Target)
	assert.Equal(t, 2, out.MaxSteps)

	// Gates are copied.
	out.Gates[0].Target = 9
	assert.Equal(t, 0, c.Gates[0].Target)
}

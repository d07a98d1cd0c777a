package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Weights of the cost model: every two-qubit gate is worth ten single-qubit gates.
const (
	singleQubitCost = 1
	twoQubitCost    = 10
)

// Decompose lowers c into single-qubit gates and CX. The result is exactly
// equivalent, including phases. Barriers and measurements pass through.
func Decompose(c *Circuit) *Circuit {
	out := NewCircuit(c.Name, c.NumQubits)
	for _, g := range c.Gates {
		decomposeGate(out, g)
	}
	return out
}

func decomposeGate(out *Circuit, g Gate) {
	switch g.Type {
	case "CZ":
		out.H(g.Target)
		out.CX(g.Control, g.Target)
		out.H(g.Target)
	case "CP", "CU1":
		half := 0.0
		if len(g.Params) > 0 {
			half = g.Params[0] / 2
		}
		out.AddParameterizedGate("P", g.Control, []float64{half})
		out.CX(g.Control, g.Target)
		out.AddParameterizedGate("P", g.Target, []float64{-half})
		out.CX(g.Control, g.Target)
		out.AddParameterizedGate("P", g.Target, []float64{half})
	case "SWAP":
		out.CX(g.Control, g.Target)
		out.CX(g.Target, g.Control)
		out.CX(g.Control, g.Target)
	case "RCCX":
		a, b, t := g.Controls[0], g.Controls[1], g.Target
		out.H(t)
		out.AddGate("T", t)
		out.CX(b, t)
		out.AddDaggerGate("T", t)
		out.CX(a, t)
		out.AddGate("T", t)
		out.CX(b, t)
		out.AddDaggerGate("T", t)
		out.H(t)
	case "CCX":
		a, b, t := g.Controls[0], g.Controls[1], g.Target
		out.H(t)
		out.CX(b, t)
		out.AddDaggerGate("T", t)
		out.CX(a, t)
		out.AddGate("T", t)
		out.CX(b, t)
		out.AddDaggerGate("T", t)
		out.CX(a, t)
		out.AddGate("T", b)
		out.AddGate("T", t)
		out.H(t)
		out.CX(a, b)
		out.AddGate("T", a)
		out.AddDaggerGate("T", b)
		out.CX(a, b)
	default:
		g.Controls = slices.Clone(g.Controls)
		g.Params = slices.Clone(g.Params)
		out.push(g)
	}
}

// CostReport counts the gates of a decomposed circuit.
type CostReport struct {
	Single int            `json:"single_qubit_gates"`
	Double int            `json:"two_qubit_gates"`
	Counts map[string]int `json:"gate_counts"`
}

// Cost is the weighted total.
func (r CostReport) Cost() int {
	return singleQubitCost*r.Single + twoQubitCost*r.Double
}

// Add returns the sum of two reports.
func (r CostReport) Add(o CostReport) CostReport {
	sum := CostReport{Single: r.Single + o.Single, Double: r.Double + o.Double, Counts: maps.Clone(r.Counts)}
	if sum.Counts == nil {
		sum.Counts = make(map[string]int)
	}
	for k, v := range o.Counts {
		sum.Counts[k] += v
	}
	return sum
}

func (r CostReport) String() string {
	keys := slices.Sorted(maps.Keys(r.Counts))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", strings.ToLower(k), r.Counts[k])
	}
	return fmt.Sprintf("cost %d (%d single, %d cx) [%s]", r.Cost(), r.Single, r.Double, strings.Join(parts, " "))
}

// CircuitCost decomposes c and counts the result.
func CircuitCost(c *Circuit) CostReport {
	r := CostReport{Counts: make(map[string]int)}
	for _, g := range Decompose(c).Gates {
		switch g.Type {
		case "BARRIER", "MEASURE":
			continue
		}
		name := g.Type
		if g.IsDagger {
			name += "DG"
		}
		r.Counts[name]++
		if len(g.Qubits()) > 1 {
			r.Double++
		} else {
			r.Single++
		}
	}
	return r
}

// ComponentCost is the cost of one component of an assembly. Rows for the
// parts of a component name it in Parent.
type ComponentCost struct {
	Name   string     `json:"name"`
	Parent string     `json:"parent,omitempty"`
	Report CostReport `json:"report"`
	Cost   int        `json:"cost"`
	Depth  int        `json:"depth"`
}

func componentCost(name, parent string, c *Circuit) ComponentCost {
	r := CircuitCost(c)
	return ComponentCost{Name: name, Parent: parent, Report: r, Cost: r.Cost(), Depth: Depth(c)}
}

// ComponentCosts reports every component of the assembly, each followed by
// its parts, plus a "total" row for the whole circuit.
func ComponentCosts(a *Assembly) []ComponentCost {
	out := make([]ComponentCost, 0, len(a.Components)+1)
	for _, comp := range a.Components {
		out = append(out, componentCost(comp.Name, "", comp.Circuit))
		for _, p := range comp.Parts {
			out = append(out, componentCost(p.Name, comp.Name, p.Circuit))
		}
	}
	return append(out, componentCost("total", "", a.Circuit))
}

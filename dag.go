package main

import (
	"fmt"
	"slices"
)

// DAGNode is one gate of a circuit together with the gates that must run
// before it: the previous gate on each qubit it occupies.
type DAGNode struct {
	ID           string
	Index        int // position in the source circuit
	Gate         Gate
	Qubits       []int // qubits the node occupies, see LayerOptions.Span
	Moment       int   // first moment the node occupies, set by assignMoments
	Dependencies []string
}

// CircuitDAG is a dependency graph over a sequential circuit. Any
// topological order of it is an equivalent circuit; ASAP moments give depth
// and the column layout of the circuit view.
type CircuitDAG struct {
	Nodes     map[string]*DAGNode
	NumQubits int
	order     []string // insertion order, which is already topological
	rootNodes []string
	opts      LayerOptions
}

// LayerOptions controls how gates occupy qubits when layering.
type LayerOptions struct {
	// Span makes a multi-qubit gate occupy every qubit between its lowest
	// and highest operand, so no two gates of a column overlap on screen.
	Span bool
	// BarrierColumns gives barriers a moment of their own. Otherwise they
	// only order the gates around them and do not add to depth.
	BarrierColumns bool
}

func generateNodeID(gateType string, index int) string {
	return fmt.Sprintf("%s_%d", gateType, index)
}

// FromCircuit builds the dependency graph of c.
func FromCircuit(c *Circuit, opts LayerOptions) *CircuitDAG {
	dag := &CircuitDAG{
		Nodes:     make(map[string]*DAGNode, len(c.Gates)),
		NumQubits: c.NumQubits,
		opts:      opts,
	}
	allQubits := make([]int, c.NumQubits)
	for q := range allQubits {
		allQubits[q] = q
	}

	lastGateOnQubit := make(map[int]string)
	for i, g := range c.Gates {
		node := &DAGNode{
			ID:    generateNodeID(g.Type, i),
			Index: i,
			Gate:  g,
		}
		switch qs := g.Qubits(); {
		case g.Type == "BARRIER":
			node.Qubits = allQubits
		case opts.Span && len(qs) > 1:
			for q := slices.Min(qs); q <= slices.Max(qs); q++ {
				node.Qubits = append(node.Qubits, q)
			}
		default:
			node.Qubits = qs
		}

		for _, q := range node.Qubits {
			if lastID, ok := lastGateOnQubit[q]; ok && !slices.Contains(node.Dependencies, lastID) {
				node.Dependencies = append(node.Dependencies, lastID)
			}
		}
		dag.AddNode(node)
		for _, q := range node.Qubits {
			lastGateOnQubit[q] = node.ID
		}
	}
	dag.assignMoments()
	return dag
}

// AddNode adds a node whose dependencies are already in the graph.
func (dag *CircuitDAG) AddNode(node *DAGNode) {
	if node.ID == "" {
		node.ID = generateNodeID(node.Gate.Type, len(dag.order))
	}
	dag.Nodes[node.ID] = node
	dag.order = append(dag.order, node.ID)
	if len(node.Dependencies) == 0 {
		dag.rootNodes = append(dag.rootNodes, node.ID)
	}
	for _, q := range node.Qubits {
		dag.NumQubits = max(dag.NumQubits, q+1)
	}
}

// TopologicalSort returns nodes in dependency order.
func (dag *CircuitDAG) TopologicalSort() []*DAGNode {
	visited := make(map[string]bool, len(dag.Nodes))
	result := make([]*DAGNode, 0, len(dag.Nodes))

	var visit func(nodeID string)
	visit = func(nodeID string) {
		if visited[nodeID] {
			return
		}
		visited[nodeID] = true
		node := dag.Nodes[nodeID]
		for _, depID := range node.Dependencies {
			visit(depID)
		}
		result = append(result, node)
	}

	for _, rootID := range dag.rootNodes {
		visit(rootID)
	}
	for _, id := range dag.order {
		visit(id)
	}
	return result
}

func (dag *CircuitDAG) width(n *DAGNode) int {
	if n.Gate.Type == "BARRIER" && !dag.opts.BarrierColumns {
		return 0
	}
	return 1
}

// assignMoments places every node at the earliest moment after all of its
// dependencies.
func (dag *CircuitDAG) assignMoments() {
	for _, n := range dag.TopologicalSort() {
		n.Moment = 0
		for _, depID := range n.Dependencies {
			dep := dag.Nodes[depID]
			n.Moment = max(n.Moment, dep.Moment+dag.width(dep))
		}
	}
}

// Depth returns the number of moments the circuit occupies.
func (dag *CircuitDAG) Depth() int {
	depth := 0
	for _, n := range dag.Nodes {
		depth = max(depth, n.Moment+dag.width(n))
	}
	return depth
}

// GetNodesAtMoment returns the nodes starting at a moment in circuit order.
func (dag *CircuitDAG) GetNodesAtMoment(moment int) []*DAGNode {
	var result []*DAGNode
	for _, id := range dag.order {
		if n := dag.Nodes[id]; n.Moment == moment && dag.width(n) > 0 {
			result = append(result, n)
		}
	}
	return result
}

// GetNodesOnQubit returns the nodes occupying a qubit in circuit order.
func (dag *CircuitDAG) GetNodesOnQubit(qubit int) []*DAGNode {
	var result []*DAGNode
	for _, id := range dag.order {
		if n := dag.Nodes[id]; slices.Contains(n.Qubits, qubit) {
			result = append(result, n)
		}
	}
	return result
}

// ToCircuit returns the gates reordered by moment with Step set to the
// moment. Gates within a moment keep their original relative order.
func (dag *CircuitDAG) ToCircuit(name string) *Circuit {
	nodes := dag.TopologicalSort()
	slices.SortStableFunc(nodes, func(a, b *DAGNode) int {
		if a.Moment != b.Moment {
			return a.Moment - b.Moment
		}
		return a.Index - b.Index
	})

	out := NewCircuit(name, dag.NumQubits)
	for _, n := range nodes {
		g := n.Gate
		g.Controls = slices.Clone(g.Controls)
		g.Params = slices.Clone(g.Params)
		g.Step = n.Moment
		out.Gates = append(out.Gates, g)
	}
	out.MaxSteps = dag.Depth()
	return out
}

// Depth returns the circuit's depth with barriers ignored.
func Depth(c *Circuit) int {
	return FromCircuit(c, LayerOptions{}).Depth()
}

// LayerForView packs the circuit into non-overlapping display columns.
func LayerForView(c *Circuit) *Circuit {
	return FromCircuit(c, LayerOptions{Span: true, BarrierColumns: true}).ToCircuit(c.Name)
}

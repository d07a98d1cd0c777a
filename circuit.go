package main

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Pre-compiled regexps for QASM parsing.
var (
	singleGateRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\];?$`)
	singleGateParamRegex = regexp.MustCompile(`^(\w+)\s*\(\s*(` + paramPattern + `)\s*\)\s+q\[(\d+)\];?$`)
	twoQubitRegex        = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	twoQubitParamRegex   = regexp.MustCompile(`^(\w+)\s*\(\s*(` + paramPattern + `)\s*\)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	threeQubitRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\],\s*q\[(\d+)\];?$`)
	measureRegex         = regexp.MustCompile(`^measure\s+q\[(\d+)\]\s*->\s*(\w+)\[(\d+)\];?$`)
	qregRegex            = regexp.MustCompile(`qreg\s+(\w+)\[(\d+)\]`)
)

// Gate is one operation in a circuit.
type Gate struct {
	Type     string
	Target   int
	Control  int       // -1 if not a controlled gate
	Controls []int     // control pair for CCX and RCCX
	Params   []float64 // rotation / phase angles
	IsDagger bool      // S and T adjoints
	Step     int       // moment assigned by layering, used by the view
}

// Circuit is an ordered gate list over NumQubits qubits. Builders return
// fresh circuits; composition copies, so a returned circuit is never aliased.
type Circuit struct {
	Name      string
	NumQubits int
	Gates     []Gate
	MaxSteps  int
}

// NewCircuit returns an empty circuit.
func NewCircuit(name string, numQubits int) *Circuit {
	return &Circuit{Name: name, NumQubits: numQubits}
}

func (c *Circuit) push(g Gate) *Circuit {
	g.Step = len(c.Gates)
	c.Gates = append(c.Gates, g)
	c.MaxSteps = len(c.Gates)
	return c
}

// AddGate appends a gate with an optional single control.
func (c *Circuit) AddGate(gateType string, target int, control ...int) *Circuit {
	ctrl := -1
	if len(control) > 0 {
		ctrl = control[0]
	}
	return c.push(Gate{Type: gateType, Target: target, Control: ctrl})
}

// AddParameterizedGate appends a rotation or phase gate.
func (c *Circuit) AddParameterizedGate(gateType string, target int, params []float64, control ...int) *Circuit {
	ctrl := -1
	if len(control) > 0 {
		ctrl = control[0]
	}
	return c.push(Gate{Type: gateType, Target: target, Control: ctrl, Params: slices.Clone(params)})
}

// AddMultiControlGate appends a gate with several controls (CCX, RCCX).
func (c *Circuit) AddMultiControlGate(gateType string, target int, controls []int) *Circuit {
	return c.push(Gate{Type: gateType, Target: target, Control: -1, Controls: slices.Clone(controls)})
}

// AddDaggerGate appends the adjoint of S or T.
func (c *Circuit) AddDaggerGate(gateType string, target int) *Circuit {
	return c.push(Gate{Type: gateType, Target: target, Control: -1, IsDagger: true})
}

// Gate shorthands used by the builders.
func (c *Circuit) X(q int) *Circuit { return c.AddGate("X", q) }
func (c *Circuit) H(q int) *Circuit { return c.AddGate("H", q) }
func (c *Circuit) CX(ctrl, t int) *Circuit { return c.AddGate("CX", t, ctrl) }
func (c *Circuit) CZ(ctrl, t int) *Circuit { return c.AddGate("CZ", t, ctrl) }
func (c *Circuit) CCX(c1, c2, t int) *Circuit { return c.AddMultiControlGate("CCX", t, []int{c1, c2}) }
func (c *Circuit) Measure(q int) *Circuit { return c.AddGate("MEASURE", q) }
func (c *Circuit) CP(theta float64, ctrl, t int) *Circuit {
	return c.AddParameterizedGate("CP", t, []float64{theta}, ctrl)
}

// RCCX is the relative-phase Toffoli: it flips t like CCX but multiplies
// some basis states by ±1 or ±i. It is its own inverse, so a compute and
// uncompute pair around a diagonal operation acts exactly like CCX.
func (c *Circuit) RCCX(c1, c2, t int) *Circuit {
	return c.AddMultiControlGate("RCCX", t, []int{c1, c2})
}

// Barrier appends a barrier spanning all qubits.
func (c *Circuit) Barrier() *Circuit {
	return c.push(Gate{Type: "BARRIER", Target: -1, Control: -1})
}

// Qubits returns every qubit the gate touches, target last.
func (g Gate) Qubits() []int {
	var qs []int
	qs = append(qs, g.Controls...)
	if g.Control >= 0 {
		qs = append(qs, g.Control)
	}
	if g.Target >= 0 {
		qs = append(qs, g.Target)
	}
	return qs
}

// gateReferences reports whether the gate references the given qubit.
func (g Gate) gateReferences(qubit int) bool {
	return slices.Contains(g.Qubits(), qubit)
}

// Inverse returns the adjoint gate.
func (g Gate) Inverse() Gate {
	inv := g
	inv.Controls = slices.Clone(g.Controls)
	inv.Params = slices.Clone(g.Params)
	switch g.Type {
	case "S", "T":
		inv.IsDagger = !g.IsDagger
	case "P", "U1", "RX", "RY", "RZ", "CP", "CU1", "CRZ":
		for i := range inv.Params {
			inv.Params[i] = -inv.Params[i]
		}
	}
	return inv
}

// Clone returns a deep copy.
func (c *Circuit) Clone() *Circuit {
	out := &Circuit{Name: c.Name, NumQubits: c.NumQubits, MaxSteps: c.MaxSteps}
	out.Gates = make([]Gate, len(c.Gates))
	for i, g := range c.Gates {
		g.Controls = slices.Clone(g.Controls)
		g.Params = slices.Clone(g.Params)
		out.Gates[i] = g
	}
	return out
}

// Inverse returns the circuit run backwards: reversed order, each gate inverted.
// Measurements are dropped since they have no inverse.
func (c *Circuit) Inverse() *Circuit {
	out := NewCircuit(c.Name+"†", c.NumQubits)
	for i := len(c.Gates) - 1; i >= 0; i-- {
		g := c.Gates[i]
		if g.Type == "MEASURE" {
			continue
		}
		out.push(g.Inverse())
	}
	return out
}

// Compose concatenates circuits into a new one named name.
func Compose(name string, parts ...*Circuit) *Circuit {
	n := 0
	for _, p := range parts {
		n = max(n, p.NumQubits)
	}
	out := NewCircuit(name, n)
	for _, p := range parts {
		for _, g := range p.Clone().Gates {
			out.push(g)
		}
	}
	return out
}

// MeasuredQubits returns measured qubits in classical bit order.
func (c *Circuit) MeasuredQubits() []int {
	var qs []int
	for _, g := range c.Gates {
		if g.Type == "MEASURE" && !slices.Contains(qs, g.Target) {
			qs = append(qs, g.Target)
		}
	}
	slices.Sort(qs)
	return qs
}

// NumCbits returns the number of classical bits needed (derived from measurements).
func (c *Circuit) NumCbits() int {
	maxMeasureQubit := -1
	for _, g := range c.Gates {
		if g.Type == "MEASURE" {
			maxMeasureQubit = max(maxMeasureQubit, g.Target)
		}
	}
	return maxMeasureQubit + 1
}

// GetGateAt returns the gate at the given step and qubit, or nil.
func (c *Circuit) GetGateAt(step, qubit int) *Gate {
	for i := range c.Gates {
		g := &c.Gates[i]
		if g.Step == step && g.gateReferences(qubit) {
			return g
		}
	}
	return nil
}

// ToQASM generates OpenQASM 2.0 output from the circuit.
func (c *Circuit) ToQASM() string {
	maxQubit := -1
	for _, g := range c.Gates {
		for _, q := range g.Qubits() {
			maxQubit = max(maxQubit, q)
		}
	}
	numQubits := max(maxQubit+1, c.NumQubits, 1)
	numCbits := max(c.NumCbits(), 1)

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", numQubits)
	fmt.Fprintf(&sb, "creg c[%d];\n\n", numCbits)

	for _, g := range c.Gates {
		writeGateQASM(&sb, g, numQubits)
	}
	return sb.String()
}

func writeGateQASM(sb *strings.Builder, g Gate, numQubits int) {
	name := strings.ToLower(g.Type)
	switch {
	case g.Type == "BARRIER":
		qubits := make([]string, numQubits)
		for q := range numQubits {
			qubits[q] = fmt.Sprintf("q[%d]", q)
		}
		fmt.Fprintf(sb, "barrier %s;\n", strings.Join(qubits, ", "))
	case g.Type == "MEASURE":
		fmt.Fprintf(sb, "measure q[%d] -> c[%d];\n", g.Target, g.Target)
	case len(g.Controls) >= 2:
		fmt.Fprintf(sb, "%s q[%d], q[%d], q[%d];\n", name, g.Controls[0], g.Controls[1], g.Target)
	case g.Control >= 0 && len(g.Params) > 0:
		if g.Type == "CU1" {
			name = "cp"
		}
		fmt.Fprintf(sb, "%s(%s) q[%d], q[%d];\n", name, formatParam(g.Params[0]), g.Control, g.Target)
	case g.Control >= 0:
		fmt.Fprintf(sb, "%s q[%d], q[%d];\n", name, g.Control, g.Target)
	case len(g.Params) > 0:
		fmt.Fprintf(sb, "%s(%s) q[%d];\n", name, formatParam(g.Params[0]), g.Target)
	case g.IsDagger:
		fmt.Fprintf(sb, "%sdg q[%d];\n", name, g.Target)
	default:
		fmt.Fprintf(sb, "%s q[%d];\n", name, g.Target)
	}
}

// ParseQASM parses QASM text and rebuilds the circuit from it.
func (c *Circuit) ParseQASM(qasm string) error {
	c.Gates = nil
	c.MaxSteps = 0

	for lineNo, line := range strings.Split(qasm, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") ||
			strings.HasPrefix(line, "creg") {
			continue
		}
		if strings.HasPrefix(line, "qreg") {
			if matches := qregRegex.FindStringSubmatch(line); matches != nil {
				n, _ := strconv.Atoi(matches[2])
				c.NumQubits = n
			}
			continue
		}
		if strings.HasPrefix(line, "barrier") {
			c.Barrier()
			continue
		}
		if err := c.parseGateLine(line); err != nil {
			return fmt.Errorf("line %d: %w", lineNo+1, err)
		}
	}
	return nil
}

func (c *Circuit) parseGateLine(line string) error {
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}

	if m := measureRegex.FindStringSubmatch(line); m != nil {
		c.Measure(atoi(m[1]))
		return nil
	}

	if m := threeQubitRegex.FindStringSubmatch(line); m != nil {
		switch strings.ToUpper(m[1]) {
		case "CCX", "TOFFOLI":
			c.CCX(atoi(m[2]), atoi(m[3]), atoi(m[4]))
		case "RCCX":
			c.RCCX(atoi(m[2]), atoi(m[3]), atoi(m[4]))
		default:
			return fmt.Errorf("unsupported three-qubit gate %q", m[1])
		}
		return nil
	}

	if m := twoQubitRegex.FindStringSubmatch(line); m != nil {
		c.AddGate(strings.ToUpper(m[1]), atoi(m[3]), atoi(m[2]))
		return nil
	}

	if m := twoQubitParamRegex.FindStringSubmatch(line); m != nil {
		param, ok := parseParamExpr(m[2])
		if !ok {
			return fmt.Errorf("bad parameter %q", m[2])
		}
		gateType := strings.ToUpper(m[1])
		if gateType == "CU1" {
			gateType = "CP"
		}
		c.AddParameterizedGate(gateType, atoi(m[4]), []float64{param}, atoi(m[3]))
		return nil
	}

	if m := singleGateParamRegex.FindStringSubmatch(line); m != nil {
		param, ok := parseParamExpr(m[2])
		if !ok {
			return fmt.Errorf("bad parameter %q", m[2])
		}
		gateType := strings.ToUpper(m[1])
		if gateType == "U1" {
			gateType = "P"
		}
		c.AddParameterizedGate(gateType, atoi(m[3]), []float64{param})
		return nil
	}

	if m := singleGateRegex.FindStringSubmatch(line); m != nil {
		gateType := strings.ToUpper(m[1])
		target := atoi(m[2])
		if gateType == "SDG" || gateType == "TDG" {
			c.AddDaggerGate(strings.TrimSuffix(gateType, "DG"), target)
		} else {
			c.AddGate(gateType, target)
		}
		return nil
	}

	return fmt.Errorf("unrecognized statement %q", line)
}

// cellInfo describes what occupies a single cell in the circuit grid.
type cellInfo struct {
	gate        *Gate
	isControl   bool
	isTarget    bool
	vertAbove   bool
	vertBelow   bool
	passThrough bool
	isBarrier   bool
}

// getCellInfo returns rendering information for the cell at (step, qubit).
func (c *Circuit) getCellInfo(step, qubit int) cellInfo {
	var info cellInfo

	for i := range c.Gates {
		g := &c.Gates[i]
		if g.Step != step {
			continue
		}
		if g.Type == "BARRIER" {
			info.isBarrier = true
			info.gate = g
			return info
		}
		qs := g.Qubits()
		if slices.Contains(qs, qubit) {
			info.gate = g
			info.isTarget = g.Target == qubit && len(qs) > 1
			info.isControl = g.Target != qubit
		}
		if len(qs) < 2 {
			continue
		}
		minQ, maxQ := slices.Min(qs), slices.Max(qs)
		if qubit >= minQ && qubit <= maxQ {
			info.vertAbove = info.vertAbove || qubit > minQ
			info.vertBelow = info.vertBelow || qubit < maxQ
			if qubit > minQ && qubit < maxQ && !slices.Contains(qs, qubit) {
				info.passThrough = true
			}
		}
	}
	return info
}

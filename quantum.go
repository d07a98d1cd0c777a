package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"slices"
	"strconv"
	"strings"
)

type Complex = complex128

// amplitudeEpsilon prunes amplitudes that interfered away.
const amplitudeEpsilon = 1e-12

// ErrNotClassical is returned when a circuit handed to SimulateClassical
// contains a gate that does not permute basis states.
var ErrNotClassical = errors.New("gate is not a classical reversible gate")

// StateVector is a sparse state: basis index to amplitude. The Asteroids
// circuit keeps only a handful of basis states alive on 24 qubits, so a map
// beats a dense 2^24 slice by several orders of magnitude.
type StateVector struct {
	Amplitudes map[uint64]Complex
	NumQubits  int
}

// NewStateVector returns |0...0⟩.
func NewStateVector(numQubits int) *StateVector {
	return NewBasisState(numQubits, 0)
}

// NewBasisState returns the computational basis state |basis⟩.
func NewBasisState(numQubits int, basis uint64) *StateVector {
	return &StateVector{
		Amplitudes: map[uint64]Complex{basis: 1},
		NumQubits:  numQubits,
	}
}

func (s *StateVector) Clone() *StateVector {
	amps := make(map[uint64]Complex, len(s.Amplitudes))
	for k, v := range s.Amplitudes {
		amps[k] = v
	}
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// Amplitude returns the amplitude of a basis state.
func (s *StateVector) Amplitude(basis uint64) Complex {
	return s.Amplitudes[basis]
}

// Support returns the basis states with non-zero amplitude, ascending.
func (s *StateVector) Support() []uint64 {
	keys := make([]uint64, 0, len(s.Amplitudes))
	for k := range s.Amplitudes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ApplyGate applies one gate. BARRIER and MEASURE leave the state alone;
// measurement happens once, at sampling time.
func (s *StateVector) ApplyGate(g Gate) error {
	param := func() float64 {
		if len(g.Params) > 0 {
			return g.Params[0]
		}
		return 0
	}

	switch g.Type {
	case "BARRIER", "MEASURE", "I", "ID":
	case "H":
		h := complex(1/math.Sqrt2, 0)
		s.applySingle(g.Target, [2][2]Complex{{h, h}, {h, -h}})
	case "X":
		s.permute(func(b uint64) uint64 { return b ^ bit(g.Target) })
	case "Y":
		s.applySingle(g.Target, [2][2]Complex{{0, -1i}, {1i, 0}})
	case "Z":
		s.applyPhase(bit(g.Target), -1)
	case "S":
		s.applyPhase(bit(g.Target), daggered(1i, g.IsDagger))
	case "T":
		s.applyPhase(bit(g.Target), daggered(cmplx.Exp(complex(0, math.Pi/4)), g.IsDagger))
	case "P", "U1":
		s.applyPhase(bit(g.Target), cmplx.Exp(complex(0, param())))
	case "RX":
		c, sn := complex(math.Cos(param()/2), 0), complex(0, -math.Sin(param()/2))
		s.applySingle(g.Target, [2][2]Complex{{c, sn}, {sn, c}})
	case "RY":
		c, sn := complex(math.Cos(param()/2), 0), complex(math.Sin(param()/2), 0)
		s.applySingle(g.Target, [2][2]Complex{{c, -sn}, {sn, c}})
	case "RZ":
		phase := cmplx.Exp(complex(0, param()/2))
		s.applySingle(g.Target, [2][2]Complex{{cmplx.Conj(phase), 0}, {0, phase}})
	case "CX", "CZ", "CP", "CU1", "SWAP", "CCX", "RCCX":
		return s.applyControlled(g, param())
	default:
		return fmt.Errorf("simulate: unsupported gate %q", g.Type)
	}
	return nil
}

func (s *StateVector) applyControlled(g Gate, theta float64) error {
	switch g.Type {
	case "CX":
		mask := bit(g.Control)
		s.permute(func(b uint64) uint64 {
			if b&mask == mask {
				return b ^ bit(g.Target)
			}
			return b
		})
	case "CCX":
		if len(g.Controls) < 2 {
			return fmt.Errorf("simulate: CCX needs two controls, got %d", len(g.Controls))
		}
		mask := bit(g.Controls[0]) | bit(g.Controls[1])
		s.permute(func(b uint64) uint64 {
			if b&mask == mask {
				return b ^ bit(g.Target)
			}
			return b
		})
	case "RCCX":
		if len(g.Controls) < 2 {
			return fmt.Errorf("simulate: RCCX needs two controls, got %d", len(g.Controls))
		}
		s.applyRCCX(bit(g.Controls[0]), bit(g.Controls[1]), bit(g.Target))
	case "SWAP":
		s.permute(func(b uint64) uint64 { return swapBits(b, g.Control, g.Target) })
	case "CZ":
		s.applyPhase(bit(g.Control)|bit(g.Target), -1)
	case "CP", "CU1":
		s.applyPhase(bit(g.Control)|bit(g.Target), cmplx.Exp(complex(0, theta)))
	}
	return nil
}

func bit(q int) uint64 { return 1 << uint(q) }

func daggered(f Complex, dagger bool) Complex {
	if dagger {
		return cmplx.Conj(f)
	}
	return f
}

func swapBits(b uint64, q1, q2 int) uint64 {
	if (b>>uint(q1))&1 != (b>>uint(q2))&1 {
		return b ^ bit(q1) ^ bit(q2)
	}
	return b
}

// permute relabels basis states; used by every classical gate.
func (s *StateVector) permute(f func(uint64) uint64) {
	next := make(map[uint64]Complex, len(s.Amplitudes))
	for b, a := range s.Amplitudes {
		next[f(b)] = a
	}
	s.Amplitudes = next
}

// applyRCCX flips t when both controls are set, picking up i when t was 0
// and -i when it was 1. With only the first control set and t set the sign
// flips.
func (s *StateVector) applyRCCX(c0, c1, t uint64) {
	next := make(map[uint64]Complex, len(s.Amplitudes))
	for b, a := range s.Amplitudes {
		switch {
		case b&c0 != 0 && b&c1 != 0:
			if b&t == 0 {
				a *= 1i
			} else {
				a *= -1i
			}
			b ^= t
		case b&c0 != 0 && b&t != 0:
			a = -a
		}
		next[b] = a
	}
	s.Amplitudes = next
}

// applyPhase multiplies every basis state containing all bits of mask by factor.
func (s *StateVector) applyPhase(mask uint64, factor Complex) {
	for b, a := range s.Amplitudes {
		if b&mask == mask {
			s.Amplitudes[b] = a * factor
		}
	}
}

// applySingle applies a 2x2 unitary to qubit q.
func (s *StateVector) applySingle(q int, m [2][2]Complex) {
	mask := bit(q)
	next := make(map[uint64]Complex, 2*len(s.Amplitudes))
	for b, a := range s.Amplitudes {
		b0, b1 := b&^mask, b|mask
		col := 0
		if b&mask != 0 {
			col = 1
		}
		next[b0] += m[0][col] * a
		next[b1] += m[1][col] * a
	}
	for b, a := range next {
		if cmplx.Abs(a) < amplitudeEpsilon {
			delete(next, b)
		}
	}
	s.Amplitudes = next
}

// Simulate runs every gate of c on the state, checking ctx between gates.
func (s *StateVector) Simulate(ctx context.Context, c *Circuit) error {
	for i, g := range c.Gates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.ApplyGate(g); err != nil {
			return fmt.Errorf("gate %d: %w", i, err)
		}
	}
	return nil
}

// SimulateCircuit runs c from |0...0⟩.
func SimulateCircuit(ctx context.Context, c *Circuit) (*StateVector, error) {
	state := NewStateVector(max(c.NumQubits, 1))
	if err := state.Simulate(ctx, c); err != nil {
		return nil, err
	}
	return state, nil
}

// SimulateClassical runs a circuit of X, CX, CCX, RCCX and SWAP gates on a
// single basis state. It is the plain bit-manipulation path the board
// expander uses to run its partial circuit, with no amplitudes involved, so
// RCCX phases are dropped.
func SimulateClassical(c *Circuit, state uint64) (uint64, error) {
	for i, g := range c.Gates {
		switch g.Type {
		case "BARRIER":
		case "X":
			state ^= bit(g.Target)
		case "CX":
			if state&bit(g.Control) != 0 {
				state ^= bit(g.Target)
			}
		case "CCX", "RCCX":
			if len(g.Controls) < 2 {
				return 0, fmt.Errorf("gate %d: %s needs two controls", i, g.Type)
			}
			mask := bit(g.Controls[0]) | bit(g.Controls[1])
			if state&mask == mask {
				state ^= bit(g.Target)
			}
		case "SWAP":
			state = swapBits(state, g.Control, g.Target)
		default:
			return 0, fmt.Errorf("gate %d (%s): %w", i, g.Type, ErrNotClassical)
		}
	}
	return state, nil
}

// RegisterProbabilities marginalises the state onto the given qubits. Key k of
// the result has bit i set when qubits[i] is 1.
func (s *StateVector) RegisterProbabilities(qubits []int) map[int]float64 {
	probs := make(map[int]float64)
	for b, a := range s.Amplitudes {
		probs[registerValue(b, qubits)] += real(a * cmplx.Conj(a))
	}
	return probs
}

func registerValue(b uint64, qubits []int) int {
	v := 0
	for i, q := range qubits {
		if b&bit(q) != 0 {
			v |= 1 << i
		}
	}
	return v
}

// Norm returns the squared norm; 1 for a valid state.
func (s *StateVector) Norm() float64 {
	n := 0.0
	for _, a := range s.Amplitudes {
		n += real(a * cmplx.Conj(a))
	}
	return n
}

// Counts is a measurement histogram keyed by bit string, highest classical
// bit first.
type Counts map[string]int

// Sample draws shots outcomes of the given qubits.
func (s *StateVector) Sample(qubits []int, shots int, rng *rand.Rand) Counts {
	probs := s.RegisterProbabilities(qubits)
	outcomes := make([]int, 0, len(probs))
	for v := range probs {
		outcomes = append(outcomes, v)
	}
	slices.Sort(outcomes)

	norm := s.Norm()
	counts := make(Counts)
	for range shots {
		r := rng.Float64() * norm
		acc := 0.0
		pick := outcomes[len(outcomes)-1]
		for _, v := range outcomes {
			acc += probs[v]
			if r < acc {
				pick = v
				break
			}
		}
		counts[formatBits(pick, len(qubits))]++
	}
	return counts
}

func formatBits(v, width int) string {
	s := strconv.FormatInt(int64(v), 2)
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return s
}

// MostFrequent returns the outcome seen most often. Ties go to the smaller
// bit string so results are reproducible.
func (c Counts) MostFrequent() (string, int) {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	best, bestN := "", -1
	for _, k := range keys {
		if c[k] > bestN {
			best, bestN = k, c[k]
		}
	}
	return best, bestN
}

// Index parses the most frequent outcome as a register value, -1 if empty.
func (c Counts) Index() int {
	best, _ := c.MostFrequent()
	if best == "" {
		return -1
	}
	v, err := strconv.ParseInt(best, 2, 64)
	if err != nil {
		return -1
	}
	return int(v)
}

// Total returns the number of shots recorded.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Execute simulates c and samples its measured qubits. It is the local
// stand-in for the remote execution service.
func Execute(ctx context.Context, c *Circuit, shots int, seed int64) (Counts, error) {
	qubits := c.MeasuredQubits()
	if len(qubits) == 0 {
		return nil, errors.New("execute: circuit has no measurements")
	}
	if shots <= 0 {
		return nil, fmt.Errorf("execute: shots must be positive, got %d", shots)
	}
	state, err := SimulateCircuit(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", c.Name, err)
	}
	return state.Sample(qubits, shots, rand.New(rand.NewSource(seed))), nil
}

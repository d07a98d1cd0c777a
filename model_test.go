package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(t *testing.T) Model {
	t.Helper()
	cfg, err := DefaultConfig()
	require.NoError(t, err)
	boards, err := cfg.PreparedBoards()
	require.NoError(t, err)
	asm, err := AssembleGrover(DefaultLayout(), boards, cfg.Iterations)
	require.NoError(t, err)

	m := newModel(asm, cfg, FindUnsolvable(boards))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 180, Height: 60})
	return next.(Model)
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelView(t *testing.T) {
	m := testModel(t)
	view := m.View()
	assert.Contains(t, view, "Circuit · asteroids-grover")
	assert.Contains(t, view, "a0")
	assert.Contains(t, view, "QASM")
	assert.Contains(t, view, "no shots yet")
	assert.Contains(t, view, "depth")
}

func TestModelRun(t *testing.T) {
	m := testModel(t)
	cmd := m.Init()
	require.NotNil(t, cmd)

	msg, ok := cmd().(runResultMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)

	next, _ := m.Update(msg)
	m = next.(Model)
	assert.False(t, m.running)
	assert.Equal(t, 5, m.counts.Index())
	assert.Contains(t, m.View(), "answer 5")
}

func TestModelNavigation(t *testing.T) {
	m := testModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight}, runes("j"))
	assert.Equal(t, 2, m.cursorStep)
	assert.Equal(t, 1, m.cursorQubit)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, m.circuit.MaxSteps-1, m.cursorStep)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Equal(t, m.circuit.MaxSteps-1-pageSteps, m.cursorStep)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyHome}, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, m.cursorStep)

	for range 30 {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 23, m.cursorQubit)
	assert.Greater(t, m.viewStartQubit, 0, "view scrolls to keep the cursor visible")
}

func TestModelComponentMenu(t *testing.T) {
	m := testModel(t)
	m = press(t, m, runes("c"))
	require.Equal(t, focusMenu, m.focus)
	assert.Contains(t, m.View(), "Show Circuit")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, focusCircuit, m.focus)
	assert.Equal(t, "superposition", m.source.Name)
	assert.Equal(t, 4, m.cost.Cost())
	assert.Contains(t, m.qasmEditor.Value(), "h q[3];")

	// The decomposed tab lowers every Toffoli.
	m = press(t, m, runes("c"), tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "memory", m.source.Name)
	for _, g := range m.source.Gates {
		assert.NotEqual(t, "CCX", g.Type)
	}

	m = press(t, m, runes("c"), tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, focusCircuit, m.focus)
}

func TestModelEditQASM(t *testing.T) {
	m := testModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusQASM, m.focus)

	m.qasmEditor.SetValue("OPENQASM 2.0;\nqreg q[2];\nh q[0];\ncx q[0], q[1];\n")
	m.parseQASMInput()
	require.NoError(t, m.parseErr)
	assert.Equal(t, "asteroids-grover (edited)", m.source.Name)
	assert.Equal(t, 11, m.cost.Cost())
	assert.Equal(t, 2, m.depth)

	m.qasmEditor.SetValue("OPENQASM 2.0;\nqreg q[2];\nbogus;\n")
	m.parseQASMInput()
	assert.ErrorContains(t, m.parseErr, "line 3")
	assert.Equal(t, 11, m.cost.Cost(), "last good circuit stays")
	assert.Contains(t, m.View(), "unrecognized statement")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, focusCircuit, m.focus)
}

func TestRunTargetFallsBackToAssembly(t *testing.T) {
	m := testModel(t)
	assert.Same(t, m.asm.Circuit, m.runTarget())

	m.show(m.menu[0].items[1].circuit)
	assert.Same(t, m.asm.Circuit, m.runTarget(), "components without measurements run the full circuit")
}

func TestStaticView(t *testing.T) {
	m := testModel(t)
	out := staticView(m.asm, &Config{Shots: 1, Seed: 1}, m.asm.Circuit, 120, 0)
	for _, label := range []string{"a0", "d15", "x3", "c4"} {
		assert.Contains(t, out, label)
	}
	assert.NotContains(t, out, "Show Circuit")
}

func TestSpliceLineAt(t *testing.T) {
	assert.Equal(t, "abXYef", spliceLineAt("abcdef", "XY", 2))
	assert.Equal(t, "ab  XY", spliceLineAt("ab", "XY", 4))

	styled := titleStyle.Render("abcdef")
	out := spliceLineAt(styled, "XY", 1)
	assert.Contains(t, out, "XY")
	assert.Equal(t, 6, len([]rune(stripANSI(out))))
}

func stripANSI(s string) string {
	var sb strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc:
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEsc = false
			}
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func TestRenderHistogram(t *testing.T) {
	counts := Counts{"0101": 30, "0000": 10, "1111": 5}
	out := renderHistogram(counts, 16, []int{5})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "0000")
	assert.Contains(t, lines[1], "★")
	assert.Contains(t, lines[1], "30")

	top := renderHistogram(counts, 1, nil)
	assert.Contains(t, top, "0101")
	assert.NotContains(t, top, "0000")
}

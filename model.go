package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusQASM
	focusMenu
)

const pageSteps = 10

// runResultMsg carries the outcome of an asynchronous run.
type runResultMsg struct {
	counts  Counts
	err     error
	elapsed time.Duration
}

// Model is the circuit viewer state.
type Model struct {
	asm        *Assembly
	layout     Layout
	shots      int
	seed       int64
	unsolvable []int

	source  *Circuit // circuit being shown, in gate order
	circuit Circuit  // source packed into display columns
	cost    CostReport
	depth   int

	cursorQubit    int
	cursorStep     int
	viewStartQubit int
	width          int
	height         int
	qasmEditor     textarea.Model
	focus          focus
	lastQASM       string
	parseErr       error
	statusMsg      string // transient status message (e.g. save confirmation)

	// Menu state
	menu     []menuCategory
	menuCat  int
	menuItem int

	counts  Counts
	running bool
	runErr  error
}

func newModel(asm *Assembly, cfg *Config, unsolvable []int) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.KeyMap.InsertNewline.SetEnabled(true)

	m := Model{
		asm:        asm,
		layout:     asm.Layout,
		shots:      cfg.Shots,
		seed:       cfg.Seed,
		unsolvable: unsolvable,
		qasmEditor: ta,
		focus:      focusCircuit,
		menu:       buildComponentMenu(asm),
		running:    true,
	}
	m.show(asm.Circuit)
	return m
}

// show switches the viewer to c and resets the editor to its QASM.
func (m *Model) show(c *Circuit) {
	m.setCircuit(c)
	qasm := c.ToQASM()
	m.qasmEditor.SetValue(qasm)
	m.lastQASM = qasm
	m.parseErr = nil
	m.cursorStep = 0
	m.cursorQubit = 0
	m.viewStartQubit = 0
}

// setCircuit recomputes the layered view, cost and depth.
func (m *Model) setCircuit(c *Circuit) {
	m.source = c
	m.circuit = *LayerForView(c)
	m.circuit.NumQubits = max(m.circuit.NumQubits, m.layout.NumQubits())
	m.cost = CircuitCost(c)
	m.depth = Depth(c)
	m.cursorStep = min(m.cursorStep, max(m.circuit.MaxSteps-1, 0))
}

// parseQASMInput re-parses the editor into a scratch circuit. A parse error
// keeps the last good circuit on screen.
func (m *Model) parseQASMInput() {
	qasm := m.qasmEditor.Value()
	if qasm == m.lastQASM {
		return
	}
	m.lastQASM = qasm

	name := strings.TrimSuffix(m.source.Name, " (edited)") + " (edited)"
	scratch := NewCircuit(name, 0)
	if err := scratch.ParseQASM(qasm); err != nil {
		m.parseErr = err
		return
	}
	m.parseErr = nil
	m.setCircuit(scratch)
}

// runTarget is the shown circuit when it measures anything, else the full
// assembly.
func (m Model) runTarget() *Circuit {
	if len(m.source.MeasuredQubits()) > 0 {
		return m.source
	}
	return m.asm.Circuit
}

func runCmd(c *Circuit, shots int, seed int64) tea.Cmd {
	c = c.Clone()
	return func() tea.Msg {
		start := time.Now()
		counts, err := Execute(context.Background(), c, shots, seed)
		return runResultMsg{counts: counts, err: err, elapsed: time.Since(start)}
	}
}

func (m Model) Init() tea.Cmd {
	return runCmd(m.asm.Circuit, m.shots, m.seed)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		qasmW := max(msg.Width/3-6, 20)
		m.qasmEditor.SetWidth(qasmW)
		m.qasmEditor.SetHeight(max(m.qasmPanelHeight()-4, 4))

	case runResultMsg:
		m.running = false
		m.runErr = msg.err
		if msg.err == nil {
			m.counts = msg.counts
			m.statusMsg = fmt.Sprintf("ran in %s", msg.elapsed.Round(time.Millisecond))
		}
		slog.Debug("run finished", slog.Duration("elapsed", msg.elapsed), slog.Any("err", msg.err))

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusQASM
				m.qasmEditor.Focus()
			case "c", "a":
				m.focus = focusMenu
				m.menuItem = 0
			case "r":
				if !m.running {
					m.running = true
					m.runErr = nil
					cmds = append(cmds, runCmd(m.runTarget(), m.shots, m.seed))
				}
			case "ctrl+s":
				path := strings.NewReplacer(" ", "_", "(", "", ")", "", "†", "_inv").Replace(m.source.Name) + ".qasm"
				if err := os.WriteFile(path, []byte(m.source.ToQASM()), 0644); err != nil {
					m.statusMsg = fmt.Sprintf("Save error: %v", err)
				} else {
					m.statusMsg = "Saved " + path
				}
			case "up", "k":
				if m.cursorQubit > 0 {
					m.cursorQubit--
				}
			case "down", "j":
				if m.cursorQubit < m.circuit.NumQubits-1 {
					m.cursorQubit++
				}
			case "left", "h":
				m.cursorStep = max(m.cursorStep-1, 0)
			case "right", "l":
				m.cursorStep = min(m.cursorStep+1, max(m.circuit.MaxSteps-1, 0))
			case "pgup":
				m.cursorStep = max(m.cursorStep-pageSteps, 0)
			case "pgdown":
				m.cursorStep = min(m.cursorStep+pageSteps, max(m.circuit.MaxSteps-1, 0))
			case "home":
				m.cursorStep = 0
			case "end":
				m.cursorStep = max(m.circuit.MaxSteps-1, 0)
			}
			m.scrollToCursor()

		case focusMenu:
			items := m.menu[m.menuCat].items
			switch key {
			case "esc", "q":
				m.focus = focusCircuit
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				if m.menuItem < len(items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l", "tab":
				if m.menuCat < len(m.menu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				if m.menuItem < len(items) {
					m.show(items[m.menuItem].circuit)
				}
				m.focus = focusCircuit
			}

		case focusQASM:
			switch key {
			case "tab", "esc":
				m.focus = focusCircuit
				m.qasmEditor.Blur()
			default:
				var cmd tea.Cmd
				m.qasmEditor, cmd = m.qasmEditor.Update(msg)
				cmds = append(cmds, cmd)
				m.parseQASMInput()
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// scrollToCursor keeps the cursor wire inside the visible window.
func (m *Model) scrollToCursor() {
	rows := visibleQubits(m.circuitPanelHeight())
	if m.cursorQubit < m.viewStartQubit {
		m.viewStartQubit = m.cursorQubit
	}
	if m.cursorQubit >= m.viewStartQubit+rows {
		m.viewStartQubit = m.cursorQubit - rows + 1
	}
}

const controlsHeight = 4

func (m Model) circuitPanelHeight() int {
	return max(m.height-controlsHeight-2, 6)
}

// The right column splits between the QASM editor and the histogram, which
// wants one row per outcome.
func (m Model) histPanelHeight() int {
	return min(outcomeCount(m.layout)+3, m.circuitPanelHeight()/2)
}

func (m Model) qasmPanelHeight() int {
	return max(m.circuitPanelHeight()-m.histPanelHeight()-2, 4)
}

// outcomeCount is the number of distinct address register readings.
func outcomeCount(l Layout) int {
	return 1 << len(l.Address)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	qasmWidth := m.width / 3
	circuitWidth := m.width - qasmWidth - 4
	circuitHeight := m.circuitPanelHeight()

	circuitPanel := m.renderCircuitPanel(circuitWidth, circuitHeight)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderQASMPanel(qasmWidth, m.qasmPanelHeight()),
		m.renderHistogramPanel(qasmWidth, m.histPanelHeight()))
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, right)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	if m.focus == focusMenu {
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	}
	return frame
}

// staticView renders a circuit once at a fixed size, starting at step from,
// for output that is not a terminal.
func staticView(asm *Assembly, cfg *Config, c *Circuit, width, from int) string {
	m := newModel(asm, cfg, nil)
	m.running = false
	m.show(c)
	m.width = width
	m.height = 3*m.circuit.NumQubits + 12 + controlsHeight
	if from > 0 {
		m.cursorStep = min(from+visibleSteps(width)-1, max(m.circuit.MaxSteps-1, 0))
	}
	return m.renderCircuitPanel(width, m.circuitPanelHeight())
}

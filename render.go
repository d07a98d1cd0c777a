package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given visible width.
func padCenter(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return ansi.Truncate(s, width, "")
	}
	total := width - w
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// gateDisplayName returns a short display name for a gate.
func gateDisplayName(g *Gate) string {
	switch {
	case g.Type == "MEASURE":
		return "M"
	case g.IsDagger:
		return g.Type + "†"
	default:
		return g.Type
	}
}

// controlSymbol returns the wire symbol for a control qubit.
func controlSymbol(gateType string) string {
	if gateType == "SWAP" {
		return "×"
	}
	return "●"
}

// targetSymbol returns the wire symbol for the target of a controlled gate.
func targetSymbol(gateType string) string {
	switch gateType {
	case "CZ":
		return "●"
	case "CP", "CU1":
		return "P"
	case "SWAP":
		return "×"
	default:
		return "⊕"
	}
}

// qubitLabel renders a wire label colored by register.
func qubitLabel(l Layout, q int) string {
	name := l.registerLabel(q)
	style := dataLabelStyle
	switch name[0] {
	case 'a':
		style = addressLabelStyle
	case 'x':
		style = ancillaLabelStyle
	}
	return style.Render(fmt.Sprintf("%-5s", name))
}

// ──────────────────────────── Cell rendering ────────────────────────────

// gateBox draws a boxed gate name across the three cell lines.
func gateBox(name string) (top, mid, bot string) {
	margin := (cellW - gateBoxW) / 2
	rightMargin := cellW - margin - gateBoxW
	top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
	mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+padCenter(name, gateNameW)+"├") + strings.Repeat("─", rightMargin)
	bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
	return
}

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW visual characters wide.
func renderCell(info cellInfo, cursor bool) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)

	if cursor {
		bdr := cursorBoxStyle
		innerW := cellW - 2
		dashL := (innerW - 1) / 2
		dashR := innerW - dashL - 1
		wire := func(sym string) string {
			return bdr.Render("║") + strings.Repeat("─", dashL) + sym + strings.Repeat("─", dashR) + bdr.Render("║")
		}

		if info.isBarrier {
			return vertRow, wire("│"), vertRow
		}

		top = bdr.Render("╔" + strings.Repeat("═", innerW) + "╗")
		bot = bdr.Render("╚" + strings.Repeat("═", innerW) + "╝")
		switch {
		case info.gate != nil && info.isTarget:
			mid = wire(gateStyle.Render(targetSymbol(info.gate.Type)))
		case info.gate != nil && info.isControl:
			mid = wire(gateStyle.Render(controlSymbol(info.gate.Type)))
		case info.gate != nil:
			name := padCenter(gateDisplayName(info.gate), gateNameW)
			mid = bdr.Render("║") + "─┤" + gateStyle.Render(name) + "├─" + bdr.Render("║")
		case info.passThrough:
			mid = wire("┼")
		default:
			mid = bdr.Render("║") + strings.Repeat("─", innerW) + bdr.Render("║")
		}
		return
	}

	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1
	connectors := func() {
		top, bot = emptyRow, emptyRow
		if info.vertAbove {
			top = vertRow
		}
		if info.vertBelow {
			bot = vertRow
		}
	}

	switch {
	case info.isBarrier:
		top = vertRow
		mid = strings.Repeat("─", dashL) + dimStyle.Render("┃") + strings.Repeat("─", dashR)
		bot = vertRow
	case info.gate != nil && info.isTarget:
		connectors()
		mid = strings.Repeat("─", dashL) + gateStyle.Render(targetSymbol(info.gate.Type)) + strings.Repeat("─", dashR)
	case info.gate != nil && info.isControl:
		connectors()
		mid = strings.Repeat("─", dashL) + gateStyle.Render(controlSymbol(info.gate.Type)) + strings.Repeat("─", dashR)
	case info.gate != nil:
		top, mid, bot = gateBox(gateDisplayName(info.gate))
	case info.passThrough:
		top = vertRow
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
		bot = vertRow
	default:
		connectors()
		mid = strings.Repeat("─", cellW)
	}
	return
}

// ──────────────────────────── Panel rendering ────────────────────────────

// visibleQubits is how many wires fit in a circuit panel of the given height.
func visibleQubits(height int) int {
	// title, header, classical wire and status take about eight lines
	return max((height-8)/3, 1)
}

// visibleSteps is how many step columns fit in a circuit panel of the given width.
func visibleSteps(width int) int {
	return max((width-labelVisualW-4)/cellW, 1)
}

// measuresAtStep returns the qubits measured in a step.
func (c *Circuit) measuresAtStep(step int) []int {
	var qs []int
	for _, g := range c.Gates {
		if g.Step == step && g.Type == "MEASURE" {
			qs = append(qs, g.Target)
		}
	}
	slices.Sort(qs)
	return qs
}

// renderCircuitPanel renders the circuit grid panel.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Circuit · %s", m.source.Name)))
	sb.WriteString("\n")

	displaySteps := visibleSteps(width)
	startStep := 0
	if m.cursorStep >= displaySteps {
		startStep = m.cursorStep - displaySteps + 1
	}
	rows := visibleQubits(height)
	startQubit := m.viewStartQubit
	endQubit := min(startQubit+rows, m.circuit.NumQubits)

	fmt.Fprintf(&sb, "%s\n", dimStyle.Render(fmt.Sprintf("  steps %d–%d of %d   wires %d–%d of %d",
		startStep, startStep+displaySteps-1, m.circuit.MaxSteps, startQubit, endQubit-1, m.circuit.NumQubits)))

	header := strings.Repeat(" ", labelVisualW)
	for step := startStep; step < startStep+displaySteps; step++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", step), cellW))
	}
	sb.WriteString(header + "\n")

	for qubit := startQubit; qubit < endQubit; qubit++ {
		topLine := strings.Repeat(" ", labelVisualW)
		midLine := qubitLabel(m.layout, qubit) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for step := startStep; step < startStep+displaySteps; step++ {
			info := m.circuit.getCellInfo(step, qubit)
			cursor := step == m.cursorStep && qubit == m.cursorQubit && m.focus != focusQASM
			top, mid, bot := renderCell(info, cursor)
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	// Classical register, only once the last wire is on screen.
	if numCbits := m.circuit.NumCbits(); numCbits > 0 && endQubit == m.circuit.NumQubits {
		label := fmt.Sprintf("c%d", numCbits)
		cbitLine := cbitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + cbitWireStyle.Render("══")
		for step := startStep; step < startStep+displaySteps; step++ {
			measured := m.circuit.measuresAtStep(step)
			if len(measured) == 0 {
				cbitLine += cbitWireStyle.Render(strings.Repeat("═", cellW))
				continue
			}
			bitLabel := fmt.Sprintf("%d", measured[0])
			if len(measured) > 1 {
				bitLabel = fmt.Sprintf("%d-%d", measured[0], measured[len(measured)-1])
			}
			dashL := (cellW - 1) / 2
			dashR := max(cellW-dashL-1-len(bitLabel), 0)
			cbitLine += cbitWireStyle.Render(strings.Repeat("═", dashL)) +
				cbitConnectorStyle.Render("╩"+bitLabel) +
				cbitWireStyle.Render(strings.Repeat("═", dashR))
		}
		sb.WriteString(cbitLine + "\n")
	}

	fmt.Fprintf(&sb, "\n  Step %d, %s  │  %s  depth %d",
		m.cursorStep, m.layout.registerLabel(m.cursorQubit), m.cost, m.depth)
	if m.statusMsg != "" {
		fmt.Fprintf(&sb, "  │  %s", activeGateStyle.Render(m.statusMsg))
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderQASMPanel renders the QASM editor panel.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder

	title := "QASM"
	if m.focus == focusQASM {
		title += " [EDITING]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	if m.parseErr != nil {
		sb.WriteString(errorStyle.Render(ansi.Truncate(m.parseErr.Error(), max(width-4, 8), "…")))
	} else {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("%d gates", len(m.source.Gates))))
	}
	sb.WriteString("\n")
	sb.WriteString(m.qasmEditor.View())

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderHistogram draws one bar per outcome, at most rows of them. When the
// outcomes do not fit, the most frequent are kept.
func renderHistogram(counts Counts, rows int, unsolvable []int) string {
	if len(counts) == 0 {
		return dimStyle.Render("no shots yet")
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	if len(keys) > rows {
		slices.SortStableFunc(keys, func(a, b string) int { return counts[b] - counts[a] })
		keys = keys[:max(rows, 1)]
		slices.Sort(keys)
	}

	best, peak := counts.MostFrequent()
	total := counts.Total()
	var sb strings.Builder
	for _, k := range keys {
		n := counts[k]
		barLen := max(n*histBarW/max(peak, 1), 0)
		bar := barStyle.Render(strings.Repeat("█", barLen))
		if k == best {
			bar = peakBarStyle.Render(strings.Repeat("█", barLen))
		}
		mark := " "
		if idx := (Counts{k: 1}).Index(); slices.Contains(unsolvable, idx) {
			mark = okStyle.Render("★")
		}
		fmt.Fprintf(&sb, "%s%s %s%s %4d %5.1f%%\n", mark, k, bar,
			strings.Repeat(" ", histBarW-barLen), n, 100*float64(n)/float64(total))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// renderHistogramPanel renders the last run's measurement histogram.
func (m Model) renderHistogramPanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Shots"))
	switch {
	case m.running:
		sb.WriteString(dimStyle.Render("  running…"))
	case m.runErr != nil:
		sb.WriteString("  " + errorStyle.Render(ansi.Truncate(m.runErr.Error(), max(width-10, 8), "…")))
	case len(m.counts) > 0:
		fmt.Fprintf(&sb, "  %s", dimStyle.Render(fmt.Sprintf("%d shots, answer %d", m.counts.Total(), m.counts.Index())))
	}
	sb.WriteString("\n")
	sb.WriteString(renderHistogram(m.counts, max(height-2, 1), m.unsolvable))

	return histStyle.Width(width).Height(height).Render(sb.String())
}

// renderControlsPanel renders the bottom help bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Wire  ←→/hl Step  PgUp/PgDn Page  Home/End")
	sb.WriteString("    ")
	sb.WriteString(activeGateStyle.Render("c"))
	sb.WriteString(" Choose circuit\n")

	sb.WriteString(activeGateStyle.Render("Actions:  "))
	sb.WriteString("Tab Edit QASM  r Run  ^S Save  q/^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at position (x, y).
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces visible columns starting at x in bgLine with overlay.
// Escape sequences in either line are preserved.
func spliceLineAt(bgLine, overlay string, x int) string {
	prefix := ansi.Truncate(bgLine, x, "")
	if w := ansi.StringWidth(prefix); w < x {
		prefix += strings.Repeat(" ", x-w)
	}
	suffix := ansi.TruncateLeft(bgLine, x+lipgloss.Width(overlay), "")
	return prefix + overlay + suffix
}

package main

import (
	"fmt"
	"strings"
)

// menuItem is one circuit the viewer can switch to.
type menuItem struct {
	name    string
	circuit *Circuit
	cost    int
	depth   int
}

// menuCategory groups related menu items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

// buildComponentMenu lists the full circuit, then each distinct component
// and component part once, then the decomposed form of each of those.
func buildComponentMenu(asm *Assembly) []menuCategory {
	item := func(name string, c *Circuit) menuItem {
		return menuItem{name: name, circuit: c, cost: CircuitCost(c).Cost(), depth: Depth(c)}
	}

	parts := menuCategory{name: "Components"}
	lowered := menuCategory{name: "Decomposed"}
	parts.items = append(parts.items, item("full circuit", asm.Circuit))

	seen := make(map[string]bool)
	add := func(c *Circuit) {
		if seen[c.Name] {
			return
		}
		seen[c.Name] = true
		parts.items = append(parts.items, item(c.Name, c))
		lowered.items = append(lowered.items, item(c.Name, Decompose(c)))
	}
	for _, comp := range asm.Components {
		add(comp.Circuit)
		for _, p := range comp.Parts {
			add(p.Circuit)
		}
	}
	return []menuCategory{parts, lowered}
}

// renderMenu renders the floating component picker.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Show Circuit"))
	sb.WriteString("\n")

	for i, cat := range m.menu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeGateStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(m.menu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 46)))
	sb.WriteString("\n")

	cat := m.menu[m.menuCat]
	for i, item := range cat.items {
		stats := fmt.Sprintf("%5d gates %6d cost %4d deep", len(item.circuit.Gates), item.cost, item.depth)
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(gateStyle.Render(stats))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(dimStyle.Render(stats))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Tab  ⏎ Ok  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}

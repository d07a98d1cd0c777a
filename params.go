package main

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// paramPattern matches a single QASM angle: a number or a pi expression.
// Examples: "1.5707", "pi", "pi/2", "2*pi/3", "-pi/3", "3.14e-2"
const paramPattern = `-?(?:\d*\.?\d*\*?pi(?:/\d+\.?\d*)?|\d+\.?\d*(?:[eE][+\-]?\d+)?)`

// piExprRegex matches pi, 2pi, 2*pi, pi/3, 2pi/3, 2*pi/3 and their negations.
var piExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)

// parseParamExpr parses a single angle, accepting plain numbers and pi
// expressions. The bool is false when s is not a valid angle.
func parseParamExpr(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if val, err := strconv.ParseFloat(s, 64); err == nil {
		return val, true
	}

	matches := piExprRegex.FindStringSubmatch(strings.ToLower(s))
	if matches == nil {
		return 0, false
	}

	coeff := 1.0
	if matches[2] != "" {
		var err error
		if coeff, err = strconv.ParseFloat(matches[2], 64); err != nil {
			return 0, false
		}
	}
	result := coeff * math.Pi
	if matches[3] != "" {
		denom, err := strconv.ParseFloat(matches[3], 64)
		if err != nil || denom == 0 {
			return 0, false
		}
		result /= denom
	}
	if matches[1] == "-" {
		result = -result
	}
	return result, true
}

// piForms lists the pi fractions formatParam prints symbolically. The thirds
// come from the oracle's phase and its CP decomposition.
var piForms = []struct {
	value   float64
	display string
}{
	{2 * math.Pi, "2*pi"},
	{math.Pi, "pi"},
	{math.Pi / 2, "pi/2"},
	{math.Pi / 3, "pi/3"},
	{math.Pi / 4, "pi/4"},
	{math.Pi / 6, "pi/6"},
	{math.Pi / 8, "pi/8"},
	{3 * math.Pi / 4, "3*pi/4"},
	{3 * math.Pi / 2, "3*pi/2"},
	{2 * math.Pi / 3, "2*pi/3"},
	{4 * math.Pi / 3, "4*pi/3"},
}

// formatParam formats an angle, using pi notation when it is a known fraction.
func formatParam(val float64) string {
	for _, pf := range piForms {
		if math.Abs(val-pf.value) < 1e-10 {
			return pf.display
		}
		if math.Abs(val+pf.value) < 1e-10 {
			return "-" + pf.display
		}
	}
	return fmt.Sprintf("%g", val)
}

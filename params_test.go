package main

import (
	"math"
	"testing"
)

func TestParseParamExpr(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		// Plain numbers
		{"1.5707", 1.5707, true},
		{"-0.5", -0.5, true},
		{"0", 0, true},
		{"3.14e-2", 0.0314, true},

		// Pi constant
		{"pi", math.Pi, true},
		{"PI", math.Pi, true},

		// Fractions and coefficients
		{"pi/2", math.Pi / 2, true},
		{"pi/3", math.Pi / 3, true},
		{"2pi", 2 * math.Pi, true},
		{"3*pi/4", 3 * math.Pi / 4, true},
		{"2*pi/3", 2 * math.Pi / 3, true},
		{"4*pi/3", 4 * math.Pi / 3, true},

		// Negative
		{"-pi/2", -math.Pi / 2, true},
		{"-2*pi/3", -2 * math.Pi / 3, true},

		// Whitespace
		{" pi / 2 ", math.Pi / 2, true},
		{" 2 * pi / 3 ", 2 * math.Pi / 3, true},

		// Invalid
		{"", 0, false},
		{"abc", 0, false},
		{"pi/0", 0, false},
		{"tau", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseParamExpr(tt.input)
		if ok != tt.ok {
			t.Errorf("parseParamExpr(%q): ok=%v, want ok=%v", tt.input, ok, tt.ok)
			continue
		}
		if ok && math.Abs(got-tt.want) > 1e-10 {
			t.Errorf("parseParamExpr(%q) = %g, want %g", tt.input, got, tt.want)
		}
	}
}

func TestFormatParam(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 3, "pi/3"},
		{2 * math.Pi / 3, "2*pi/3"},
		{-2 * math.Pi / 3, "-2*pi/3"},
		{-math.Pi / 3, "-pi/3"},
		{4 * math.Pi / 3, "4*pi/3"},
		{2 * math.Pi, "2*pi"},
		{1.5, "1.5"},
		{0, "0"},
	}

	for _, tt := range tests {
		got := formatParam(tt.input)
		if got != tt.want {
			t.Errorf("formatParam(%g) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

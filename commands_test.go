package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestBoardsCommand(t *testing.T) {
	out, err := execute(t, "boards")
	require.NoError(t, err)
	assert.Contains(t, out, "unsolvable: [5]")
	assert.Contains(t, out, "dup → [0]")

	out, err = execute(t, "boards", "--yaml")
	require.NoError(t, err)
	cfg, err := parseConfig([]byte(out))
	require.NoError(t, err)
	assert.Len(t, cfg.Boards, 16)
}

func TestBuildCommand(t *testing.T) {
	out, err := execute(t, "build", "--component", "oracle-forward")
	require.NoError(t, err)
	assert.Contains(t, out, "OPENQASM 2.0;")
	assert.Contains(t, out, "cp(2*pi/3) q[20], q[22];")
	assert.Contains(t, out, "rccx q[")

	out, err = execute(t, "build", "--component", "oracle-forward", "--decompose")
	require.NoError(t, err)
	assert.NotContains(t, out, "ccx ")
	assert.NotContains(t, out, "cp(")

	path := filepath.Join(t.TempDir(), "full.qasm")
	_, err = execute(t, "build", "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var c Circuit
	require.NoError(t, c.ParseQASM(string(data)))
	assert.Equal(t, 24, c.NumQubits)
	assert.Equal(t, []int{0, 1, 2, 3}, c.MeasuredQubits())

	out, err = execute(t, "build", "--component", "power-of-two")
	require.NoError(t, err)
	var entangler Circuit
	require.NoError(t, entangler.ParseQASM(out))
	assert.Len(t, entangler.Gates, 48)

	_, err = execute(t, "build", "--component", "nope")
	assert.ErrorContains(t, err, `unknown component "nope"`)
	assert.ErrorContains(t, err, "board-expander")
}

func TestRunCommandJSON(t *testing.T) {
	out, err := execute(t, "run", "--json", "--shots", "256")
	require.NoError(t, err)

	var got struct {
		Answer int    `json:"answer"`
		Counts Counts `json:"counts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 5, got.Answer)
	assert.Equal(t, 256, got.Counts.Total())
}

func TestCostCommand(t *testing.T) {
	out, err := execute(t, "cost")
	require.NoError(t, err)
	for _, name := range []string{
		"superposition", "memory#1", "power-of-two#1", "board-expander#1",
		"oracle-forward#1", "diffuser#1", "total",
	} {
		assert.Contains(t, out, name)
	}
}

func TestGradeCommand(t *testing.T) {
	out, err := execute(t, "grade", "--json")
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Correct)
	assert.Equal(t, 5, report.Answer)
	assert.Equal(t, 2280, costOf(report.Costs, "oracle-forward#1"))

	out, err = execute(t, "grade")
	require.NoError(t, err)
	assert.Contains(t, out, "answer: board 5")
	assert.Contains(t, out, "correct")
}

func TestConfigFlag(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "boards")
	assert.ErrorContains(t, err, "failed to read the problem file")
}

func costOf(costs []ComponentCost, name string) int {
	for _, c := range costs {
		if c.Name == name {
			return c.Cost
		}
	}
	return -1
}

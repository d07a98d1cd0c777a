package main

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeDefaultProblem(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)

	report, err := Grade(context.Background(), cfg)
	require.NoError(t, err)

	_, err = uuid.Parse(report.JobID)
	assert.NoError(t, err)
	assert.Equal(t, 5, report.Answer)
	assert.Equal(t, []int{5}, report.Unsolvable)
	assert.True(t, report.Correct)
	assert.Equal(t, 1024, report.Counts.Total())
	assert.Equal(t, report.Counts["0101"], report.Hits)
	assert.Equal(t, 1, report.Iterations)

	require.NotEmpty(t, report.Costs)
	total := report.Costs[len(report.Costs)-1]
	assert.Equal(t, "total", total.Name)
	assert.Equal(t, total.Cost, report.Cost)
	assert.Equal(t, total.Depth, report.Depth)
}

func TestGradeIsReproducible(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)

	a, err := Grade(context.Background(), cfg)
	require.NoError(t, err)
	b, err := Grade(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Counts, b.Counts)
	assert.NotEqual(t, a.JobID, b.JobID)
}

func TestGradeWrongExpectation(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)
	three := 3
	cfg.Expected = &three

	report, err := Grade(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Answer)
	assert.False(t, report.Correct)
}

func TestGradeCancelled(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Grade(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGradeRejectsBadBoards(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)
	cfg.Boards = cfg.Boards[:3]

	_, err = Grade(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrBoardCount)
}

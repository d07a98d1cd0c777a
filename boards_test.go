package main

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawBoards builds n copies of a valid board, each shifted so they differ.
func rawBoards(n int) []RawBoard {
	base := RawBoard{{"0", "0"}, {"0", "1"}, {"1", "1"}, {"2", "2"}, {"3", "0"}, {"3", "3"}}
	out := make([]RawBoard, n)
	for i := range out {
		b := slices.Clone(base)
		b[0] = []string{"0", []string{"0", "2", "3"}[i%3]}
		out[i] = b
	}
	return out
}

func TestParseBoardsDefaultProblem(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)

	boards, err := ParseBoards(cfg.Boards)
	require.NoError(t, err)
	require.Len(t, boards, 16)
	assert.Equal(t, Board{1, 5, 7, 8, 14, 15}, boards[5])
	assert.Equal(t, boards[3], boards[12])
	for i, b := range boards {
		assert.True(t, slices.IsSorted(b), "board %d", i)
		assert.Len(t, b, 6, "board %d", i)
	}
}

func TestParseBoardsErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]RawBoard) []RawBoard
		want   error
	}{
		{"too few boards", func(r []RawBoard) []RawBoard { return r[:15] }, ErrBoardCount},
		{"short board", func(r []RawBoard) []RawBoard { r[2] = r[2][:5]; return r }, ErrBoardSize},
		{"row out of range", func(r []RawBoard) []RawBoard { r[4][1] = []string{"4", "0"}; return r }, ErrCoordinate},
		{"not a digit", func(r []RawBoard) []RawBoard { r[4][1] = []string{"a", "0"}; return r }, ErrCoordinate},
		{"negative column", func(r []RawBoard) []RawBoard { r[4][1] = []string{"1", "-1"}; return r }, ErrCoordinate},
		{"single value", func(r []RawBoard) []RawBoard { r[0][0] = []string{"1"}; return r }, ErrCoordinate},
		{"repeated cell", func(r []RawBoard) []RawBoard { r[0][1] = r[0][2]; return r }, ErrCoordinate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBoards(tt.mutate(rawBoards(16)))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPreprocessReplacesDuplicates(t *testing.T) {
	in := []Board{
		{0, 1, 2, 3, 4, 5},
		{5, 4, 3, 2, 1, 0},
		{6, 7, 8, 9, 10, 11},
		{0, 1, 2, 3, 4, 5},
		{6, 7, 8, 9, 10, 11},
	}
	out := Preprocess(in)
	assert.Equal(t, []Board{
		{0, 1, 2, 3, 4, 5},
		{0},
		{6, 7, 8, 9, 10, 11},
		{1},
		{2},
	}, out)

	// Input is left alone.
	assert.Equal(t, Board{5, 4, 3, 2, 1, 0}, in[1])
}

func TestPreprocessDefaultProblem(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)
	boards, err := cfg.PreparedBoards()
	require.NoError(t, err)

	assert.Equal(t, Board{0}, boards[12])
	for i := range boards {
		for j := i + 1; j < len(boards); j++ {
			assert.NotEqual(t, boards[i], boards[j], "boards %d and %d", i, j)
		}
	}
}

func TestCountPermutations(t *testing.T) {
	tests := []struct {
		name  string
		board Board
		want  int
	}{
		{"empty", Board{}, 0},
		{"top rows only", Board{0, 1, 2, 3, 4, 5}, 0},
		{"diagonal", Board{0, 5, 10, 15}, 1},
		{"anti-diagonal", Board{3, 6, 9, 12}, 1},
		{"two", Board{0, 5, 10, 15, 1, 4}, 2},
		{"three", Board{0, 5, 10, 15, 1, 4, 2, 8}, 3},
		{"four", Board{0, 5, 10, 15, 1, 4, 11, 14}, 4},
		{"full grid", Board{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, 24},
		{"unsolvable board", Board{1, 5, 7, 8, 14, 15}, 1},
		{"row missing", Board{0, 1, 5, 7, 14, 15}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountPermutations(tt.board))
			assert.Equal(t, tt.want > 0, Unsolvable(tt.board))
		})
	}
}

func TestFindUnsolvable(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)
	boards, err := cfg.PreparedBoards()
	require.NoError(t, err)
	assert.Equal(t, []int{5}, FindUnsolvable(boards))
}

func TestBoardGrid(t *testing.T) {
	b := Board{1, 5, 7, 8, 14, 15}
	assert.Equal(t, []string{".#..", ".#.#", "#...", "..##"}, b.Grid())
	assert.Equal(t, [2]int{1, 3}, b.Cells()[2])
}

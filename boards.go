package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// Problem dimensions of the Asteroids instance.
const (
	boardCount    = 16
	asteroidCount = 6
)

var (
	// ErrBoardCount is returned when the problem does not hold exactly 16 boards.
	ErrBoardCount = errors.New("problem must contain exactly 16 boards")
	// ErrBoardSize is returned when a board does not hold exactly six asteroids.
	ErrBoardSize = errors.New("board must contain exactly six asteroids")
	// ErrCoordinate is returned for a malformed [row, col] pair.
	ErrCoordinate = errors.New("invalid asteroid coordinate")
)

// RawBoard is a board as written in the problem file: six [row, col] pairs of
// decimal digit strings.
type RawBoard [][]string

// Board is a sorted list of occupied cell indices, cell = 4*row + col.
type Board []int

// Cells returns (row, col) pairs for display.
func (b Board) Cells() [][2]int {
	out := make([][2]int, len(b))
	for i, c := range b {
		out[i] = [2]int{c / gridSize, c % gridSize}
	}
	return out
}

// Grid renders the board as four rows of '#' and '.'.
func (b Board) Grid() []string {
	rows := make([]string, gridSize)
	for r := range gridSize {
		line := make([]byte, gridSize)
		for c := range gridSize {
			line[c] = '.'
			if slices.Contains(b, gridSize*r+c) {
				line[c] = '#'
			}
		}
		rows[r] = string(line)
	}
	return rows
}

// ParseBoards converts raw coordinate boards into sorted cell-index boards.
func ParseBoards(raw []RawBoard) ([]Board, error) {
	if len(raw) != boardCount {
		return nil, fmt.Errorf("%w: got %d", ErrBoardCount, len(raw))
	}
	boards := make([]Board, len(raw))
	for i, rb := range raw {
		if len(rb) != asteroidCount {
			return nil, fmt.Errorf("board %d: %w: got %d", i, ErrBoardSize, len(rb))
		}
		b := make(Board, 0, len(rb))
		for _, pair := range rb {
			cell, err := parseCoordinate(pair)
			if err != nil {
				return nil, fmt.Errorf("board %d: %w", i, err)
			}
			if slices.Contains(b, cell) {
				return nil, fmt.Errorf("board %d: %w: cell %d repeated", i, ErrCoordinate, cell)
			}
			b = append(b, cell)
		}
		slices.Sort(b)
		boards[i] = b
	}
	return boards, nil
}

func parseCoordinate(pair []string) (int, error) {
	if len(pair) != 2 {
		return 0, fmt.Errorf("%w: %v", ErrCoordinate, pair)
	}
	row, err := strconv.Atoi(pair[0])
	if err != nil || row < 0 || row >= gridSize {
		return 0, fmt.Errorf("%w: row %q", ErrCoordinate, pair[0])
	}
	col, err := strconv.Atoi(pair[1])
	if err != nil || col < 0 || col >= gridSize {
		return 0, fmt.Errorf("%w: col %q", ErrCoordinate, pair[1])
	}
	return gridSize*row + col, nil
}

// Preprocess replaces every board equal to an earlier one with the one-cell
// placeholder [k], k counting replacements. The expander needs pairwise
// distinct target patterns; duplicates are substituted, never reported.
func Preprocess(boards []Board) []Board {
	out := make([]Board, 0, len(boards))
	next := 0
	for _, b := range boards {
		b = slices.Clone(b)
		slices.Sort(b)
		if slices.ContainsFunc(out, func(seen Board) bool { return slices.Equal(seen, b) }) {
			b = Board{next}
			next++
		}
		out = append(out, b)
	}
	return out
}

// CountPermutations counts the 4-cell subsets of b that form a permutation
// matrix: one cell in every row and every column.
func CountPermutations(b Board) int {
	var occupied [gridSize][gridSize]bool
	for _, c := range b {
		occupied[c/gridSize][c%gridSize] = true
	}
	count := 0
	var place func(row int, usedCols int)
	place = func(row int, usedCols int) {
		if row == gridSize {
			count++
			return
		}
		for col := range gridSize {
			if usedCols&(1<<col) == 0 && occupied[row][col] {
				place(row+1, usedCols|1<<col)
			}
		}
	}
	place(0, 0)
	return count
}

// Unsolvable reports whether three laser shots cannot clear b. By König's
// theorem the minimum row/column cover equals the maximum matching, so four
// shots are needed exactly when b contains a permutation matrix.
func Unsolvable(b Board) bool {
	return CountPermutations(b) > 0
}

// FindUnsolvable returns the indices of all unsolvable boards.
func FindUnsolvable(boards []Board) []int {
	var idx []int
	for i, b := range boards {
		if Unsolvable(b) {
			idx = append(idx, i)
		}
	}
	return idx
}

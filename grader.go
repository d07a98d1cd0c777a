package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Report is the result of one graded run.
type Report struct {
	JobID      string          `json:"job_id"`
	Answer     int             `json:"answer"`
	Hits       int             `json:"hits"`
	Shots      int             `json:"shots"`
	Seed       int64           `json:"seed"`
	Iterations int             `json:"iterations"`
	Expected   *int            `json:"expected,omitempty"`
	Unsolvable []int           `json:"unsolvable"`
	Correct    bool            `json:"correct"`
	Counts     Counts          `json:"counts"`
	Costs      []ComponentCost `json:"costs"`
	Cost       int             `json:"cost"`
	Depth      int             `json:"depth"`
	Elapsed    time.Duration   `json:"elapsed_ns"`
}

// Grade assembles the circuit for cfg, then runs it, costs it and solves the
// boards classically in parallel. The run is correct when the most frequent
// outcome is an unsolvable board and matches cfg.Expected if one is set.
func Grade(ctx context.Context, cfg *Config) (*Report, error) {
	start := time.Now()
	boards, err := cfg.PreparedBoards()
	if err != nil {
		return nil, fmt.Errorf("grade: %w", err)
	}
	asm, err := AssembleGrover(DefaultLayout(), boards, cfg.Iterations)
	if err != nil {
		return nil, fmt.Errorf("grade: %w", err)
	}

	report := &Report{
		JobID:      uuid.NewString(),
		Shots:      cfg.Shots,
		Seed:       cfg.Seed,
		Iterations: cfg.Iterations,
		Expected:   cfg.Expected,
	}
	logger := slog.With(slog.String("job_id", report.JobID))
	logger.Info("grading", slog.Int("shots", cfg.Shots), slog.Int("iterations", cfg.Iterations))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := Execute(gCtx, asm.Circuit, cfg.Shots, cfg.Seed)
		if err != nil {
			return err
		}
		report.Counts = counts
		return nil
	})
	g.Go(func() error {
		report.Costs = ComponentCosts(asm)
		report.Depth = Depth(asm.Circuit)
		return nil
	})
	g.Go(func() error {
		report.Unsolvable = FindUnsolvable(boards)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("grade: %w", err)
	}

	_, report.Hits = report.Counts.MostFrequent()
	report.Answer = report.Counts.Index()
	report.Cost = report.Costs[len(report.Costs)-1].Cost
	report.Correct = slices.Contains(report.Unsolvable, report.Answer) &&
		(report.Expected == nil || *report.Expected == report.Answer)
	report.Elapsed = time.Since(start)

	logger.Info("graded",
		slog.Int("answer", report.Answer),
		slog.Bool("correct", report.Correct),
		slog.Int("cost", report.Cost),
		slog.Duration("elapsed", report.Elapsed))
	return report, nil
}

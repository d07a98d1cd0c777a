package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	configPath string // problem file, empty for the embedded one
	verbose    bool   // debug logging

	buildComponent string
	buildDecompose bool
	buildOutput    string

	runShots int
	runSeed  int64
	runJSON  bool

	gradeJSON  bool
	boardsYAML bool

	viewComponent string
	viewWidth     int
	viewFrom      int
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "qasteroids",
		Short: "Grover search for the unsolvable Asteroids board",
		Long: heredoc.Doc(`
			Builds, runs and grades a 24-qubit Grover circuit that finds the one
			board of sixteen that three laser shots cannot clear.

			The circuit loads every board into a data register in superposition,
			marks boards containing a permutation matrix with a phase, unloads
			them again and amplifies the marked address.
		`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), verbose)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "problem file (default: embedded Asteroids problem)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newBoardsCmd(), newBuildCmd(), newRunCmd(), newCostCmd(), newGradeCmd(), newViewCmd())
	return root
}

// setupLogging installs a text handler on w; warnings only unless verbose.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// prepare loads the problem and assembles the circuit.
func prepare() (*Config, []Board, *Assembly, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	boards, err := cfg.PreparedBoards()
	if err != nil {
		return nil, nil, nil, err
	}
	asm, err := AssembleGrover(DefaultLayout(), boards, cfg.Iterations)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, boards, asm, nil
}

// lookupComponent resolves a component or part name; "full" is the whole
// circuit.
func lookupComponent(asm *Assembly, name string) (*Circuit, error) {
	if name == "" || name == "full" {
		return asm.Circuit, nil
	}
	if c, ok := asm.Component(name); ok {
		return c, nil
	}
	names := []string{"full"}
	add := func(n string) {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	for _, comp := range asm.Components {
		add(comp.Circuit.Name)
		for _, p := range comp.Parts {
			add(p.Circuit.Name)
		}
	}
	return nil, fmt.Errorf("unknown component %q (have %s)", name, strings.Join(names, ", "))
}

func newBoardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "List the boards and which ones need four shots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if boardsYAML {
				data, err := cfg.Marshal()
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}
			raw, err := ParseBoards(cfg.Boards)
			if err != nil {
				return err
			}
			fmt.Fprint(out, renderBoards(raw, Preprocess(raw)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&boardsYAML, "yaml", false, "print the problem file instead")
	return cmd
}

// renderBoards prints each board's grid with its permutation count, four
// boards to a row.
func renderBoards(raw, prepared []Board) string {
	var cards []string
	for i, b := range raw {
		var sb strings.Builder
		perms := CountPermutations(b)
		title := fmt.Sprintf("#%-2d", i)
		if perms > 0 {
			title = errorStyle.Render(title + " ✗")
		} else {
			title = titleStyle.Render(title)
		}
		sb.WriteString(title + "\n")
		for _, row := range b.Grid() {
			sb.WriteString(" " + strings.Join(strings.Split(row, ""), " ") + "\n")
		}
		note := fmt.Sprintf("perms %d", perms)
		if !slices.Equal(b, prepared[i]) {
			note = fmt.Sprintf("dup → %v", []int(prepared[i]))
		}
		sb.WriteString(dimStyle.Render(note))
		cards = append(cards, menuBorderStyle.Width(14).Render(sb.String()))
	}

	var rows []string
	for i := 0; i < len(cards); i += 4 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:min(i+4, len(cards))]...))
	}
	unsolvable := FindUnsolvable(prepared)
	rows = append(rows, fmt.Sprintf("unsolvable: %v\n", unsolvable))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write the circuit, or one component of it, as OpenQASM 2.0",
		Example: heredoc.Doc(`
			qasteroids build -o asteroids.qasm
			qasteroids build --component oracle-forward --decompose
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, asm, err := prepare()
			if err != nil {
				return err
			}
			c, err := lookupComponent(asm, buildComponent)
			if err != nil {
				return err
			}
			if buildDecompose {
				c = Decompose(c)
			}
			qasm := c.ToQASM()
			if buildOutput == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), qasm)
				return err
			}
			if err := os.WriteFile(buildOutput, []byte(qasm), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", buildOutput, err)
			}
			slog.Info("wrote circuit", slog.String("path", buildOutput), slog.Int("gates", len(c.Gates)))
			return nil
		},
	}
	cmd.Flags().StringVar(&buildComponent, "component", "full", "component to write")
	cmd.Flags().BoolVar(&buildDecompose, "decompose", false, "lower to single-qubit gates and CX")
	cmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate the circuit and print the measurement histogram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, boards, asm, err := prepare()
			if err != nil {
				return err
			}
			shots, seed := cfg.Shots, cfg.Seed
			if cmd.Flags().Changed("shots") {
				shots = runShots
			}
			if cmd.Flags().Changed("seed") {
				seed = runSeed
			}
			counts, err := Execute(cmd.Context(), asm.Circuit, shots, seed)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if runJSON {
				return writeJSON(out, struct {
					Answer int    `json:"answer"`
					Counts Counts `json:"counts"`
				}{counts.Index(), counts})
			}
			fmt.Fprintln(out, renderHistogram(counts, len(counts), FindUnsolvable(boards)))
			fmt.Fprintf(out, "answer: board %d\n", counts.Index())
			return nil
		},
	}
	cmd.Flags().IntVar(&runShots, "shots", 1024, "number of shots")
	cmd.Flags().Int64Var(&runSeed, "seed", 0, "sampling seed")
	cmd.Flags().BoolVar(&runJSON, "json", false, "output as JSON")
	return cmd
}

func newCostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cost",
		Short: "Report gate cost per component (1 per single-qubit gate, 10 per CX)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, asm, err := prepare()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderCostTable(ComponentCosts(asm)))
			return nil
		},
	}
}

func renderCostTable(costs []ComponentCost) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%-20s %8s %8s %8s %8s", "component", "single", "cx", "cost", "depth")))
	sb.WriteString("\n")
	for _, c := range costs {
		name := c.Name
		if c.Parent != "" {
			name = "  " + name
		}
		line := fmt.Sprintf("%-20s %8d %8d %8d %8d", name, c.Report.Single, c.Report.Double, c.Cost, c.Depth)
		switch {
		case c.Name == "total":
			line = titleStyle.Render(line)
		case c.Parent != "":
			line = dimStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func newGradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Run the circuit and check its answer against the classical solution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			report, err := Grade(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if gradeJSON {
				return writeJSON(out, report)
			}
			verdict := errorStyle.Render("incorrect")
			if report.Correct {
				verdict = okStyle.Render("correct")
			}
			fmt.Fprintf(out, "job %s\n", dimStyle.Render(report.JobID))
			fmt.Fprintf(out, "answer: board %d (%d/%d shots)  unsolvable: %v  %s\n",
				report.Answer, report.Hits, report.Shots, report.Unsolvable, verdict)
			fmt.Fprint(out, renderCostTable(report.Costs))
			return nil
		},
	}
	cmd.Flags().BoolVar(&gradeJSON, "json", false, "output as JSON")
	return cmd
}

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the circuit, its QASM and a run histogram in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, boards, asm, err := prepare()
			if err != nil {
				return err
			}
			c, err := lookupComponent(asm, viewComponent)
			if err != nil {
				return err
			}

			fd := os.Stdout.Fd()
			if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
				fmt.Fprintln(cmd.OutOrStdout(), staticView(asm, cfg, c, viewWidth, viewFrom))
				return nil
			}

			m := newModel(asm, cfg, FindUnsolvable(boards))
			m.show(c)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&viewComponent, "component", "full", "component to show first")
	cmd.Flags().IntVar(&viewWidth, "width", 160, "columns for non-interactive output")
	cmd.Flags().IntVar(&viewFrom, "from", 0, "first step for non-interactive output")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/darkMatter00/unumpy/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Rule     string // optional - filter to one rule ID
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Run   store.Run      `json:"run"`
	Steps []StepView     `json:"steps"`
	Rules map[string]int `json:"rules"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <run-id>",
		Short: "Show the rewrite steps of a stored run",
		Long: `Show every rule firing of a stored run in firing order, with the
redex before and after each rewrite.

Examples:
  unumpy trace 0199f2c4-... --db ./runs.db
  unumpy trace 0199f2c4-... --db ./runs.db --rule moa/shape-sequence`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Rule, "rule", "", "filter to a specific rule ID")

	return cmd
}

func runTrace(opts *TraceOptions, runID string, cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.ReadRun(ctx, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	steps, err := st.ReadSteps(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read steps", err)
	}

	result := TraceResult{Run: run, Steps: []StepView{}, Rules: map[string]int{}}
	for _, s := range steps {
		result.Rules[s.RuleID]++
		if opts.Rule != "" && s.RuleID != opts.Rule {
			continue
		}
		result.Steps = append(result.Steps, StepView{Seq: s.Seq, RuleID: s.RuleID, Before: s.Before, After: s.After})
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Emit(result, nil, func(w io.Writer) {
		fmt.Fprintf(w, "Run: %s (seq %d)\n", run.ID, run.Seq)
		fmt.Fprintf(w, "Input:  %s\n", run.Input)
		fmt.Fprintf(w, "Result: %s\n", runOutcome(run))
		fmt.Fprintln(w)
		if len(result.Steps) == 0 {
			fmt.Fprintln(w, "No steps.")
			return
		}
		printSteps(w, result.Steps)
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d of %d steps shown\n", len(result.Steps), len(steps))
	})
}

// openExisting opens a database that must already exist. Read-only
// commands must not create an empty database on a mistyped path.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

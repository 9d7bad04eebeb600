package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/darkMatter00/unumpy/internal/moa"
	"github.com/darkMatter00/unumpy/internal/rewrite"
	"github.com/darkMatter00/unumpy/internal/store"
	"github.com/darkMatter00/unumpy/internal/syntax"
	"github.com/darkMatter00/unumpy/internal/term"
)

// RuleSetMOA names the rule set normalize runs under in stored runs.
const RuleSetMOA = "moa"

// NormalizeOptions holds flags for the normalize command.
type NormalizeOptions struct {
	*RootOptions
	Database    string
	MaxSteps    int
	Materialize bool
	Cache       bool
	ShowTrace   bool

	// IDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs store.IDGenerator
}

// StepView is one rule firing in command output.
type StepView struct {
	Seq    int    `json:"seq"`
	RuleID string `json:"rule_id"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// NormalizeResult is the output of the normalize command.
type NormalizeResult struct {
	RunID        string     `json:"run_id,omitempty"`
	Input        string     `json:"input"`
	NormalForm   string     `json:"normal_form,omitempty"`
	Materialized string     `json:"materialized,omitempty"`
	Stuck        bool       `json:"stuck"`
	Cached       bool       `json:"cached,omitempty"`
	Error        string     `json:"error,omitempty"`
	Steps        int        `json:"steps"`
	Trace        []StepView `json:"trace,omitempty"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NormalizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "normalize <expr>",
		Short: "Normalize an array expression",
		Long: `Normalize an array expression with the array rules and print its
normal form.

Expressions use call syntax: Shape, Index, Total, Dim, Pi, Iota,
BinaryOperation, OuterProduct, InnerProduct, ReduceVector and the
constructors scalar(x), vector(a, b, ...), [a, b], array(n, "A").
The identifiers add and mul denote binary functions.

With --db the run and its rewrite steps are stored. With --cache a
stored normal form for the same input is returned without rewriting.

Exit codes:
  0 - Normalized
  1 - Normalization failed (quota exceeded, invalid host arithmetic)
  2 - Command error (unreadable expression, database error)

Examples:
  unumpy normalize 'Shape(vector(3, 4))'
  unumpy normalize 'BinaryOperation(add, scalar(10), [3, 4])' --materialize
  unumpy normalize 'Dim(array(3, "A"))' --db ./runs.db --trace`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runNormalize(ctx, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for storing runs")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", rewrite.DefaultMaxSteps, "rule firings allowed per normalization (0 disables the quota)")
	cmd.Flags().BoolVar(&opts.Materialize, "materialize", false, "index every element of the result into a literal")
	cmd.Flags().BoolVar(&opts.Cache, "cache", false, "reuse a stored normal form for the same input (requires --db)")
	cmd.Flags().BoolVar(&opts.ShowTrace, "trace", false, "include the rewrite steps")

	return cmd
}

func runNormalize(ctx context.Context, opts *NormalizeOptions, expr string, cmd *cobra.Command) error {
	if opts.Cache && opts.Database == "" {
		return NewExitError(ExitCommandError, "--cache requires --db")
	}

	logger := newLogger(opts.Verbose, cmd.ErrOrStderr())
	rec := &rewrite.Recorder{}
	e, err := moa.NewEngine(moa.Options{},
		rewrite.WithLogger(logger),
		rewrite.WithTracer(rec),
		rewrite.WithMaxSteps(opts.MaxSteps),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create engine", err)
	}

	input, err := syntax.NewReader(e.Clock()).Parse(expr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read expression", err)
	}

	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	if opts.Cache {
		hash, err := term.Hash(input)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to hash expression", err)
		}
		run, found, err := st.LookupNormalForm(ctx, hash, RuleSetMOA)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to look up cached run", err)
		}
		if found && !opts.Materialize {
			logger.Debug("cache hit", "run_id", run.ID, "input_hash", hash)
			result := NormalizeResult{
				RunID:      run.ID,
				Input:      run.Input,
				NormalForm: run.NormalForm,
				Stuck:      run.Stuck,
				Cached:     true,
				Steps:      run.StepCount,
			}
			if opts.ShowTrace {
				steps, err := st.ReadSteps(ctx, run.ID)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read steps", err)
				}
				result.Trace = storedStepViews(steps)
			}
			return out.Emit(result, nil, func(w io.Writer) { printNormalize(w, result) })
		}
	}

	nf, normErr := e.Normalize(ctx, input)
	steps := rec.Steps()

	result := NormalizeResult{
		Input: term.String(input),
		Steps: len(steps),
	}
	if opts.ShowTrace {
		result.Trace = stepViews(steps)
	}
	if normErr != nil {
		result.Error = normErr.Error()
	} else {
		result.NormalForm = term.String(nf)
		result.Stuck = moa.Stuck(nf)
	}

	if st != nil {
		ids := opts.IDs
		if ids == nil {
			ids = store.UUIDv7Generator{}
		}
		run, records, err := store.NewRun(ids.Generate(), RuleSetMOA, input, nf, normErr, steps, moa.Stuck)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		stored, err := st.WriteRun(ctx, run, records)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to store run", err)
		}
		result.RunID = stored.ID
		logger.Debug("run stored", "run_id", stored.ID, "seq", stored.Seq, "steps", stored.StepCount)
	}

	if normErr == nil && opts.Materialize {
		m, err := moa.Materialize(ctx, e, nf)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to materialize", err)
		}
		result.Materialized = term.String(m)
	}

	var cliErr *CLIError
	if normErr != nil {
		cliErr = &CLIError{Code: errorCode(normErr), Message: normErr.Error()}
	}
	if err := out.Emit(result, cliErr, func(w io.Writer) { printNormalize(w, result) }); err != nil {
		return err
	}
	if normErr != nil {
		return WrapExitError(ExitFailure, "normalization failed", normErr)
	}
	return nil
}

// errorCode maps a normalization error to a stable CLI error code.
func errorCode(err error) string {
	switch {
	case rewrite.IsStepsExceededError(err):
		return "E_QUOTA"
	case rewrite.IsBuildError(err):
		return "E_BUILD"
	default:
		return "E_NORMALIZE"
	}
}

func stepViews(steps []rewrite.Step) []StepView {
	views := make([]StepView, len(steps))
	for i, s := range steps {
		views[i] = StepView{Seq: s.Seq, RuleID: s.RuleID, Before: term.String(s.Before), After: term.String(s.After)}
	}
	return views
}

func storedStepViews(steps []store.Step) []StepView {
	views := make([]StepView, len(steps))
	for i, s := range steps {
		views[i] = StepView{Seq: s.Seq, RuleID: s.RuleID, Before: s.Before, After: s.After}
	}
	return views
}

func printNormalize(w io.Writer, r NormalizeResult) {
	fmt.Fprintf(w, "input:       %s\n", r.Input)
	if r.Error != "" {
		fmt.Fprintf(w, "error:       %s\n", r.Error)
	} else {
		fmt.Fprintf(w, "normal form: %s\n", r.NormalForm)
	}
	if r.Materialized != "" {
		fmt.Fprintf(w, "materialized: %s\n", r.Materialized)
	}
	if r.Stuck {
		fmt.Fprintln(w, "stuck:       yes")
	}
	fmt.Fprintf(w, "steps:       %d", r.Steps)
	if r.Cached {
		fmt.Fprint(w, " (cached)")
	}
	fmt.Fprintln(w)
	if r.RunID != "" {
		fmt.Fprintf(w, "run:         %s\n", r.RunID)
	}
	printSteps(w, r.Trace)
}

func printSteps(w io.Writer, steps []StepView) {
	for _, s := range steps {
		fmt.Fprintf(w, "  [%d] %s\n      %s\n   => %s\n", s.Seq, s.RuleID, s.Before, s.After)
	}
}

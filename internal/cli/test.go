package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/darkMatter00/unumpy/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update   bool   // regenerate golden files
	Filter   string // scenario filter (glob pattern on the scenario name)
	Parallel int    // scenarios run at once
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name       string   `json:"name"`
	File       string   `json:"file"`
	Pass       bool     `json:"pass"`
	NormalForm string   `json:"normal_form,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario-dir|file>...",
		Short: "Run normalization scenarios",
		Long: `Run scenario files (.yaml, .yml, .cue) through the array rules.

Each scenario normalizes one term on a fresh engine and checks its
assertions. A scenario with a golden file at golden/<name>.golden next
to it must also reproduce that snapshot.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, unreadable terms, etc.)

Examples:
  unumpy test ./scenarios
  unumpy test ./scenarios --filter "shape-*"
  unumpy test ./scenarios --update
  unumpy test ./scenarios/dim.cue --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().IntVarP(&opts.Parallel, "parallel", "p", 4, "scenarios run at once (0 for no limit)")

	return cmd
}

type loadedScenario struct {
	file     string
	scenario *harness.Scenario
}

func runTests(ctx context.Context, opts *TestOptions, paths []string, cmd *cobra.Command) error {
	files, err := findScenarioFiles(paths)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	result := TestResult{Scenarios: []ScenarioResult{}}
	var loaded []loadedScenario
	for _, f := range files {
		s, err := harness.LoadScenario(f)
		if err != nil {
			result.Scenarios = append(result.Scenarios, ScenarioResult{
				Name:   filepath.Base(f),
				File:   f,
				Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
			})
			continue
		}
		if opts.Filter != "" {
			matched, err := filepath.Match(opts.Filter, s.Name)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid filter pattern", err)
			}
			if !matched {
				continue
			}
		}
		loaded = append(loaded, loadedScenario{file: f, scenario: s})
	}

	scenarios := make([]*harness.Scenario, len(loaded))
	for i, l := range loaded {
		scenarios[i] = l.scenario
	}
	results, err := harness.RunAll(ctx, scenarios, opts.Parallel)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenarios", err)
	}

	for i, r := range results {
		sr := ScenarioResult{
			Name:       r.Name,
			File:       loaded[i].file,
			Pass:       r.Pass,
			NormalForm: r.NormalForm,
			Errors:     r.Errors,
		}
		if err := checkGolden(loaded[i].file, r, opts.Update); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, err.Error())
		}
		result.Scenarios = append(result.Scenarios, sr)
	}

	for _, sr := range result.Scenarios {
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}
	result.Total = len(result.Scenarios)

	var cliErr *CLIError
	if result.Failed > 0 {
		cliErr = &CLIError{Code: "E_TEST_FAILED", Message: fmt.Sprintf("%d scenario(s) failed", result.Failed)}
	}
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if err := out.Emit(result, cliErr, func(w io.Writer) { printTestResult(w, result, opts.Verbose) }); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, cliErr.Message)
	}
	return nil
}

// findScenarioFiles expands directories (recursively, skipping golden/)
// into their scenario files. Explicit file arguments are kept even when
// their extension is unusual so that LoadScenario can report it.
func findScenarioFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("scenario path not found: %s", p)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "golden" {
					return filepath.SkipDir
				}
				return nil
			}
			if harness.IsScenarioFile(d.Name()) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile, name string) string {
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

// checkGolden compares a result against its golden file, or rewrites the
// file when update is set. A scenario without a golden file passes on its
// assertions alone.
func checkGolden(scenarioFile string, r *harness.Result, update bool) error {
	path := goldenFilePath(scenarioFile, r.Name)
	snapshot := harness.Snapshot(r)

	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(path, snapshot, 0o644); err != nil {
			return fmt.Errorf("failed to write golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(want, snapshot) {
		return fmt.Errorf("golden file mismatch (run with --update to regenerate)")
	}
	return nil
}

func printTestResult(w io.Writer, result TestResult, verbose bool) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}
	for _, sr := range result.Scenarios {
		if sr.Pass {
			fmt.Fprintf(w, "✓ %s\n", sr.Name)
			if verbose && sr.NormalForm != "" {
				fmt.Fprintf(w, "  %s\n", sr.NormalForm)
			}
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", sr.Name)
		for _, e := range sr.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed == 0 {
		fmt.Fprintln(w, "✓ All scenarios passed")
	}
}

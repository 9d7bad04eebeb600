package harness

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/darkMatter00/unumpy/internal/moa"
	"github.com/darkMatter00/unumpy/internal/rewrite"
	"github.com/darkMatter00/unumpy/internal/syntax"
	"github.com/darkMatter00/unumpy/internal/term"
)

// Harness is the state of one scenario execution.
type Harness struct {
	engine   *rewrite.Engine
	reader   *syntax.Reader
	recorder *rewrite.Recorder
}

// run is what assertions inspect.
type run struct {
	input      term.Term
	normalForm term.Term
	err        error
	fired      []string
}

// newHarness builds a fresh engine for one scenario.
func newHarness(s *Scenario) (*Harness, error) {
	rec := &rewrite.Recorder{}
	opts := []rewrite.Option{
		rewrite.WithLogger(slog.New(slog.DiscardHandler)),
		rewrite.WithTracer(rec),
	}
	if s.MaxSteps > 0 {
		opts = append(opts, rewrite.WithMaxSteps(s.MaxSteps))
	}
	e, err := moa.NewEngine(moa.Options{}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return &Harness{
		engine:   e,
		reader:   syntax.NewReader(e.Clock()),
		recorder: rec,
	}, nil
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Create a fresh engine with the array rule set
//  2. Read and normalize the scenario term
//  3. Evaluate every assertion
//
// A normalization error is not returned: it is recorded on the result and
// fails the scenario unless an "error" assertion expects it. The returned
// error is for scenarios that cannot run at all (unreadable terms).
func Run(ctx context.Context, s *Scenario) (*Result, error) {
	h, err := newHarness(s)
	if err != nil {
		return nil, err
	}

	input, err := h.reader.Parse(s.Term)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	result := NewResult(s.Name)
	result.Input = term.String(input)

	nf, normErr := h.engine.Normalize(ctx, input)
	result.Trace = recordSteps(h.recorder.Steps())
	r := &run{input: input, normalForm: nf, err: normErr, fired: result.RuleIDs()}
	if normErr != nil {
		result.NormalizeError = normErr.Error()
	} else {
		result.NormalForm = term.String(nf)
	}

	expectsError := false
	for i, a := range s.Assertions {
		if a.Type == AssertError {
			expectsError = true
		}
		if err := h.evaluate(ctx, r, a); err != nil {
			result.AddError(fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	if normErr != nil && !expectsError {
		result.AddError(fmt.Sprintf("normalization failed: %v", normErr))
	}
	return result, nil
}

// RunAll executes scenarios with at most parallel running at once and
// returns results in input order. parallel <= 0 means no limit.
//
// Every scenario gets its own engine; nothing is shared between goroutines
// except the read-only rule tables.
func RunAll(ctx context.Context, scenarios []*Scenario, parallel int) ([]*Result, error) {
	results := make([]*Result, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, s := range scenarios {
		g.Go(func() error {
			res, err := Run(gctx, s)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary counts passing and failing results.
func Summary(results []*Result) (passed, failed int) {
	for _, r := range results {
		if r.Pass {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

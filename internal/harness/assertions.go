package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/darkMatter00/unumpy/internal/moa"
	"github.com/darkMatter00/unumpy/internal/term"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s failed\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

func (h *Harness) evaluate(ctx context.Context, r *run, a Assertion) error {
	if a.Type == AssertError {
		return assertError(r, a)
	}
	if r.err != nil {
		return &AssertionError{Type: a.Type, Expected: "a normal form", Actual: "error: " + r.err.Error()}
	}

	switch a.Type {
	case AssertNormalForm:
		return h.assertNormalForm(r, a)
	case AssertMaterializesTo:
		return h.assertMaterializesTo(ctx, r, a)
	case AssertStuck:
		if !moa.Stuck(r.normalForm) {
			return &AssertionError{Type: a.Type, Expected: "a stuck term", Actual: term.String(r.normalForm)}
		}
		return nil
	case AssertReduced:
		if moa.Stuck(r.normalForm) {
			return &AssertionError{Type: a.Type, Expected: "a fully reduced term", Actual: term.String(r.normalForm)}
		}
		return nil
	case AssertRuleFired:
		if !fired(r, a.Rule) {
			return &AssertionError{Type: a.Type, Expected: "rule " + a.Rule + " to fire", Actual: firedList(r)}
		}
		return nil
	case AssertNoRuleFired:
		if fired(r, a.Rule) {
			return &AssertionError{Type: a.Type, Expected: "rule " + a.Rule + " not to fire", Actual: firedList(r)}
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func (h *Harness) assertNormalForm(r *run, a Assertion) error {
	got := term.String(r.normalForm)
	if a.Render != "" {
		if got != a.Render {
			return &AssertionError{Type: a.Type, Expected: a.Render, Actual: got}
		}
		return nil
	}
	want, err := h.reader.Parse(a.Expect)
	if err != nil {
		return fmt.Errorf("expect: %w", err)
	}
	if !term.Equal(want, r.normalForm) {
		return &AssertionError{Type: a.Type, Expected: term.String(want), Actual: got}
	}
	return nil
}

func (h *Harness) assertMaterializesTo(ctx context.Context, r *run, a Assertion) error {
	want, err := h.reader.Parse(a.Expect)
	if err != nil {
		return fmt.Errorf("expect: %w", err)
	}
	got, err := moa.Materialize(ctx, h.engine, r.normalForm)
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: term.String(want), Actual: err.Error()}
	}
	if !term.Equal(want, got) {
		return &AssertionError{Type: a.Type, Expected: term.String(want), Actual: term.String(got)}
	}
	return nil
}

func assertError(r *run, a Assertion) error {
	if r.err == nil {
		return &AssertionError{Type: a.Type, Expected: "error containing " + a.Contains, Actual: term.String(r.normalForm)}
	}
	if !strings.Contains(r.err.Error(), a.Contains) {
		return &AssertionError{Type: a.Type, Expected: "error containing " + a.Contains, Actual: r.err.Error()}
	}
	return nil
}

func fired(r *run, ruleID string) bool {
	for _, id := range r.fired {
		if id == ruleID {
			return true
		}
	}
	return false
}

// firedList lists distinct fired rules in first-firing order.
func firedList(r *run) string {
	if len(r.fired) == 0 {
		return "no rules fired"
	}
	seen := make(map[string]bool)
	var ids []string
	for _, id := range r.fired {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return "fired: " + strings.Join(ids, ", ")
}

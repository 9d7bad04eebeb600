package testutil

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/darkMatter00/unumpy/internal/rewrite"
	"github.com/darkMatter00/unumpy/internal/term"
)

// TermComparer makes cmp treat terms as equal when term.Equal holds, so
// slices and structs holding terms can be diffed directly.
var TermComparer = cmp.Comparer(func(a, b term.Term) bool {
	return term.Equal(a, b)
})

// AssertTerm reports a test error with a rendered diff if got is not
// structurally equal to want.
func AssertTerm(t testing.TB, want, got term.Term) {
	t.Helper()
	if !term.Equal(want, got) {
		t.Errorf("term mismatch (-want +got):\n%s", cmp.Diff(term.String(want), term.String(got)))
	}
}

// AssertTerms is AssertTerm over slices.
func AssertTerms(t testing.TB, want, got []term.Term) {
	t.Helper()
	if diff := cmp.Diff(want, got, TermComparer); diff != "" {
		t.Errorf("terms mismatch (-want +got):\n%s", diff)
	}
}

// Normalize normalizes in with e and fails the test on error.
func Normalize(t testing.TB, e *rewrite.Engine, in term.Term) term.Term {
	t.Helper()
	out, err := e.Normalize(context.Background(), in)
	if err != nil {
		t.Fatalf("Normalize(%s) failed: %v", term.String(in), err)
	}
	return out
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

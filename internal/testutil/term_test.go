package testutil

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/darkMatter00/unumpy/internal/rewrite"
	"github.com/darkMatter00/unumpy/internal/term"
)

var pairKind = &term.Kind{Name: "Pair", Arity: 2}

func TestTermComparer(t *testing.T) {
	a := []term.Term{term.Int(1), term.MustNode(pairKind, term.Unbound{Name: "x"}, term.Value{V: "s"})}
	b := []term.Term{term.Int(1), term.MustNode(pairKind, term.Unbound{Name: "x"}, term.Value{V: "s"})}
	assert.Empty(t, cmp.Diff(a, b, TermComparer))

	c := []term.Term{term.Int(2), b[1]}
	assert.NotEmpty(t, cmp.Diff(a, c, TermComparer))
}

func TestAssertTerm(t *testing.T) {
	AssertTerm(t, term.Int(3), term.Int(3))
	AssertTerms(t, []term.Term{term.Int(1)}, []term.Term{term.Int(1)})
}

func TestNormalize(t *testing.T) {
	e := rewrite.New(rewrite.NewRegistry(), rewrite.WithLogger(QuietLogger()))
	in := term.MustNode(pairKind, term.Int(1), term.Int(2))
	AssertTerm(t, in, Normalize(t, e, in))
}

func TestQuietLogger(t *testing.T) {
	assert.False(t, QuietLogger().Enabled(context.Background(), slog.LevelError))
}

package syntax

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkMatter00/unumpy/internal/moa"
	"github.com/darkMatter00/unumpy/internal/rewrite"
	"github.com/darkMatter00/unumpy/internal/term"
	"github.com/darkMatter00/unumpy/internal/testutil"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"integer", "42", "42"},
		{"negative", "-3", "-3"},
		{"min int64", "-9223372036854775808", "-9223372036854775808"},
		{"negative hex", "-0x10", "-16"},
		{"explicit plus", "+5", "5"},
		{"decimal", "0.25", "0.25"},
		{"string", `"abc"`, `"abc"`},
		{"free variable", "x", "x"},
		{"anonymous", "_", "_"},
		{"unbound helper", `unbound("n")`, "n"},
		{"scalar", "scalar(7)", "Scalar(7)"},
		{"vector", "vector(3, 4)", "Sequence(2, <3 4>)"},
		{"list", "[3, 4]", "Sequence(2, <3 4>)"},
		{"empty list", "[]", "Sequence(0, <>)"},
		{"array", `array(2, "A")`, "A^2"},
		{"prefix op", "Shape(vector(3, 4))", "ρ(Sequence(2, <3 4>))"},
		{"infix op", "Index([1], [3, 4])", "(Sequence(1, <1>) ψ Sequence(2, <3 4>))"},
		{"add function", "add", "(i0, i1 -> (i0 + i1))"},
		{"mul function", "BinaryOperation(mul, scalar(2), x)", "BinaryOperation((i0, i1 -> (i0 * i1)), Scalar(2), x)"},
		{"parens", "(Dim(x))", "δ(x)"},
		{"push", "Push(1, VectorCallable())", "<1, *<>>"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReader(rewrite.NewClock())
			got, err := r.Parse(tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, term.String(got))
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"syntax", "Shape(", "parse term"},
		{"int64 overflow", "9223372036854775808", "invalid integer 9223372036854775808"},
		{"negative overflow", "-9223372036854775809", "invalid integer -9223372036854775809"},
		{"unknown op", "Frobnicate(1)", `unknown operation "Frobnicate"`},
		{"arity", "Shape(1, 2)", "Shape"},
		{"scalar arity", "scalar(1, 2)", "scalar takes 1 argument"},
		{"array dims", `array(x, "A")`, "integer literal"},
		{"array name", "array(2, A)", "string literal"},
		{"function literal", "Function(x)", "use add or mul"},
		{"binary expr", "1 + 2", "unsupported expression"},
		{"callee", "f(1)(2)", "callee must be a name"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewReader(rewrite.NewClock()).Parse(tc.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestParse_ArityErrorIsReadError(t *testing.T) {
	_, err := NewReader(rewrite.NewClock()).Parse("Index(1)")
	var re *Error
	require.ErrorAs(t, err, &re)
	assert.True(t, re.Pos.IsValid())
}

func TestParse_NormalizesWithEngineClock(t *testing.T) {
	e, err := moa.NewEngine(moa.Options{}, rewrite.WithLogger(testutil.QuietLogger()))
	require.NoError(t, err)
	r := NewReader(e.Clock())

	in := r.MustParse("BinaryOperation(add, scalar(10), [3, 4])")
	got, err := moa.Materialize(context.Background(), e, in)
	require.NoError(t, err)
	testutil.AssertTerm(t, moa.Vector(13, 14), got)
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() {
		NewReader(rewrite.NewClock()).MustParse("Nope(1)")
	})
}

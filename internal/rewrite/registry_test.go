package rewrite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkMatter00/unumpy/internal/pattern"
	"github.com/darkMatter00/unumpy/internal/term"
)

func constRule(id string, p pattern.Pattern, out term.Term) Rule {
	return Rule{
		ID:      id,
		Pattern: p,
		Build:   func(Env) (term.Term, error) { return out, nil },
	}
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		code RuntimeErrorCode
	}{
		{"missing id", constRule("", pattern.W("x"), term.Int(0)), ErrCodeInvalidRule},
		{"missing builder", Rule{ID: "r", Pattern: pattern.W("x")}, ErrCodeInvalidRule},
		{"missing pattern", Rule{ID: "r", Build: func(Env) (term.Term, error) { return term.Int(0), nil }}, ErrCodeInvalidRule},
		{"invalid pattern", constRule("r", pattern.P(addK, pattern.W("x")), term.Int(0)), ErrCodeInvalidRule},
		{"duplicate", constRule("dup", pattern.P(negK, pattern.W("x")), term.Int(0)), ErrCodeDuplicateRule},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := NewRegistry()
			require.NoError(t, reg.Register(constRule("dup", pattern.P(negK, pattern.W("y")), term.Int(1))))

			err := reg.Register(tc.rule)
			require.Error(t, err)
			var re *RuntimeError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tc.code, re.Code)
			assert.Equal(t, 1, reg.Len())
		})
	}
}

func TestRegister_FirstRegisteredWins(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(
		constRule("first", pattern.P(negK, pattern.W("x")), term.Int(1)),
		constRule("second", pattern.P(negK, pattern.V("x")), term.Int(2)),
	)
	e := New(reg)

	got, err := e.Normalize(context.Background(), neg(term.Int(0)))
	require.NoError(t, err)
	assert.True(t, term.Equal(term.Int(1), got))
}

func TestRegister_GenericAndLeafRulesKeepOrder(t *testing.T) {
	rec := &Recorder{}
	reg := NewRegistry()
	reg.MustRegister(
		constRule("any-node", pattern.Wildcard{Name: "n", Class: pattern.AnyNode, Kind: nil}, term.Unbound{Name: "seen"}),
		constRule("neg", pattern.P(negK, pattern.W("x")), term.Int(2)),
		constRule("dim", pattern.Wildcard{Name: "d", Class: pattern.DimLeaf}, term.Int(3)),
	)
	e := New(reg, WithTracer(rec))
	ctx := context.Background()

	got, err := e.Normalize(ctx, neg(term.Int(0)))
	require.NoError(t, err)
	assert.True(t, term.Equal(term.Unbound{Name: "seen"}, got))
	assert.Equal(t, []string{"any-node"}, rec.RuleIDs())

	got, err = e.Normalize(ctx, term.DimUnbound{N: 2, Name: "A"})
	require.NoError(t, err)
	assert.True(t, term.Equal(term.Int(3), got))
}

func TestRegistry_RulesAndLookup(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterCore(reg))
	reg.MustRegister(constRule("neg", pattern.P(negK, pattern.W("x")), term.Int(0)))

	rules := reg.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, RuleApply, rules[0].ID)
	assert.Equal(t, "neg", rules[1].ID)

	r, ok := reg.Rule("neg")
	assert.True(t, ok)
	assert.Equal(t, "neg", r.ID)
	_, ok = reg.Rule("missing")
	assert.False(t, ok)

	assert.False(t, reg.Sealed())
	reg.Seal()
	reg.Seal()
	assert.True(t, reg.Sealed())
	assert.Equal(t, "Registry(2 rules, sealed=true)", reg.String())
}

func TestMustRegister_PanicsOnError(t *testing.T) {
	reg := NewRegistry()
	reg.Seal()
	assert.Panics(t, func() {
		reg.MustRegister(ApplyRule())
	})
}

func TestRuntimeError_Message(t *testing.T) {
	err := &RuntimeError{
		Code:    ErrCodeBuildFailed,
		Message: "replacement builder failed",
		RuleID:  "moa/add",
		Kind:    "Add",
		Err:     &term.HostError{Op: "add", Message: "boom"},
	}
	assert.Equal(t, "BUILD_FAILED: replacement builder failed (rule=moa/add, kind=Add): host add: boom", err.Error())
}

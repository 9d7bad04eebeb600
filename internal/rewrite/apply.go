package rewrite

import (
	"strings"

	"github.com/darkMatter00/unumpy/internal/pattern"
	"github.com/darkMatter00/unumpy/internal/term"
)

// FunctionKind is a symbolic function: operand 0 is the body, the remaining
// operands are its Unbound parameters.
var FunctionKind = &term.Kind{
	Name:     "Function",
	Arity:    1,
	Variadic: true,
	Render: func(ops []string) string {
		return "(" + strings.Join(ops[1:], ", ") + " -> " + ops[0] + ")"
	},
}

// CallKind applies operand 0 to the remaining operands.
var CallKind = &term.Kind{
	Name:     "Call",
	Arity:    1,
	Variadic: true,
}

// RuleApply is the ID of the function application rule.
const RuleApply = "core/apply"

// NewFunction builds an n-ary function with fresh parameters from clock.
func NewFunction(clock *Clock, n int, body func(params ...term.Term) term.Term) term.Term {
	params := make([]term.Term, n)
	for i := range params {
		params[i] = clock.Fresh()
	}
	ops := make([]term.Term, 0, n+1)
	ops = append(ops, body(params...))
	ops = append(ops, params...)
	return term.MustNode(FunctionKind, ops...)
}

// Call builds Call(fn, args...).
func Call(fn term.Term, args ...term.Term) term.Term {
	ops := make([]term.Term, 0, len(args)+1)
	ops = append(ops, fn)
	ops = append(ops, args...)
	return term.MustNode(CallKind, ops...)
}

// Substitute replaces every Unbound leaf named in env by its term.
// Subtrees with nothing to replace are shared, not copied. Anonymous
// variables are never replaced.
func Substitute(t term.Term, env map[string]term.Term) term.Term {
	out, _ := substitute(t, env)
	return out
}

func substitute(t term.Term, env map[string]term.Term) (term.Term, bool) {
	switch x := t.(type) {
	case term.Unbound:
		if x.Name == "" {
			return t, false
		}
		if r, ok := env[x.Name]; ok {
			return r, true
		}
		return t, false
	case *term.Node:
		var ops []term.Term
		for i := 0; i < x.Len(); i++ {
			op, changed := substitute(x.Operand(i), env)
			if changed && ops == nil {
				ops = x.Operands()
			}
			if ops != nil {
				ops[i] = op
			}
		}
		if ops == nil {
			return t, false
		}
		return term.MustNode(x.Kind(), ops...), true
	default:
		return t, false
	}
}

// ApplyRule reduces Call(Function(body, params...), args...) to body with
// params substituted by args. It only fires when the counts agree and every
// parameter is a named variable.
func ApplyRule() Rule {
	return Rule{
		ID: RuleApply,
		Pattern: pattern.P(CallKind,
			pattern.P(FunctionKind, pattern.W("body"), pattern.S("params")),
			pattern.S("args"),
		),
		Constraints: []pattern.Constraint{pattern.Func(func(b pattern.Bindings) bool {
			params := b.Seq("params")
			if len(params) != len(b.Seq("args")) {
				return false
			}
			for _, p := range params {
				if u, ok := p.(term.Unbound); !ok || u.Name == "" {
					return false
				}
			}
			return true
		})},
		Build: func(env Env) (term.Term, error) {
			params := env.Seq("params")
			args := env.Seq("args")
			sub := make(map[string]term.Term, len(params))
			for i, p := range params {
				sub[p.(term.Unbound).Name] = args[i]
			}
			return Substitute(env.Term("body"), sub), nil
		},
	}
}

// RegisterCore registers the rules every rule set builds on.
func RegisterCore(r *Registry) error {
	return r.Register(ApplyRule())
}

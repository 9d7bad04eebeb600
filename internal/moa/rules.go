package moa

import (
	"fmt"

	"github.com/darkMatter00/unumpy/internal/pattern"
	"github.com/darkMatter00/unumpy/internal/rewrite"
	"github.com/darkMatter00/unumpy/internal/term"
)

// Rule IDs, in registration order.
const (
	RuleContentSequence     = "moa/content-sequence"
	RuleContentScalar       = "moa/content-scalar"
	RuleExtractLength       = "moa/extract-length"
	RuleCallVector          = "moa/call-vector"
	RulePush                = "moa/push"
	RuleVectorIndexed       = "moa/vector-indexed"
	RuleUnify               = "moa/unify"
	RuleDimUnbound          = "moa/dim-unbound"
	RuleShapeScalar         = "moa/shape-scalar"
	RuleShapeSequence       = "moa/shape-sequence"
	RuleIndex               = "moa/index"
	RuleReduceVector        = "moa/reduce-vector"
	RuleAdd                 = "moa/add"
	RuleMultiply            = "moa/multiply"
	RulePi                  = "moa/pi"
	RuleTotal               = "moa/total"
	RuleIota                = "moa/iota"
	RuleDim                 = "moa/dim"
	RuleBinaryScalarScalar  = "moa/binary-scalar-scalar"
	RuleBinaryScalarSeq     = "moa/binary-scalar-sequence"
	RuleBinarySeqScalar     = "moa/binary-sequence-scalar"
	RuleBinarySeqSeq        = "moa/binary-sequence-sequence"
	RuleOuterScalar         = "moa/outer-scalar"
	RuleOuterSequence       = "moa/outer-sequence"
	RuleInnerScalarMultiply = "moa/inner-scalar-multiply"
)

// Options selects parts of the array rule set.
type Options struct {
	// SkipCore leaves out function application. Set it when the registry
	// already holds rewrite.RegisterCore.
	SkipCore bool

	// NoLaws leaves out algebraic rewrite laws (the inner product scalar
	// extraction) and keeps only evaluation rules.
	NoLaws bool
}

// Register adds the array rule set to reg.
func Register(reg *rewrite.Registry, opts Options) error {
	if !opts.SkipCore {
		if err := rewrite.RegisterCore(reg); err != nil {
			return fmt.Errorf("register core rules: %w", err)
		}
	}
	for _, r := range Rules(opts) {
		if err := reg.Register(r); err != nil {
			return fmt.Errorf("register array rules: %w", err)
		}
	}
	return nil
}

// NewEngine builds a registry holding the array rule set and returns an
// engine over it.
func NewEngine(opts Options, engineOpts ...rewrite.Option) (*rewrite.Engine, error) {
	reg := rewrite.NewRegistry()
	if err := Register(reg, opts); err != nil {
		return nil, err
	}
	return rewrite.New(reg, engineOpts...), nil
}

// Rules returns the array rules in registration order. Function
// application is not included.
func Rules(opts Options) []rewrite.Rule {
	rules := []rewrite.Rule{
		{
			ID:      RuleContentSequence,
			Pattern: pattern.P(ContentKind, pattern.P(SequenceKind, pattern.W("_"), pattern.W("getitem"))),
			Build:   bound("getitem"),
		},
		{
			ID:      RuleContentScalar,
			Pattern: pattern.P(ContentKind, pattern.P(ScalarKind, pattern.W("content"))),
			Build:   bound("content"),
		},
		{
			ID:      RuleExtractLength,
			Pattern: pattern.P(ExtractLengthKind, pattern.P(SequenceKind, pattern.W("length"), pattern.W("_"))),
			Build:   bound("length"),
		},
		{
			ID: RuleCallVector,
			Pattern: pattern.P(rewrite.CallKind,
				pattern.P(VectorCallableKind, pattern.S("items")),
				pattern.W("index"),
			),
			Build: func(env rewrite.Env) (term.Term, error) {
				return Scalar(VectorIndexed(env.Term("index"), env.Seq("items")...)), nil
			},
		},
		{
			ID:      RulePush,
			Pattern: pattern.P(PushKind, pattern.W("item"), pattern.P(VectorCallableKind, pattern.S("items"))),
			Build: func(env rewrite.Env) (term.Term, error) {
				items := append([]term.Term{env.Term("item")}, env.Seq("items")...)
				return VectorCallable(items...), nil
			},
		},
		{
			ID:      RuleVectorIndexed,
			Pattern: pattern.P(VectorIndexedKind, pattern.V("index"), pattern.S("items")),
			Build: func(env rewrite.Env) (term.Term, error) {
				idx, _ := env.Value("index")
				return term.IndexOf(idx, env.Seq("items"))
			},
		},
		{
			ID:          RuleUnify,
			Pattern:     pattern.P(UnifyKind, pattern.W("x"), pattern.W("y")),
			Constraints: []pattern.Constraint{pattern.Equal("x", "y")},
			Build:       bound("x"),
		},
		{
			ID:      RuleDimUnbound,
			Pattern: pattern.Wildcard{Name: "a", Class: pattern.DimLeaf},
			Build:   buildDimUnbound,
		},
		{
			ID:      RuleShapeScalar,
			Pattern: pattern.P(ShapeKind, pattern.P(ScalarKind, pattern.W("_"))),
			Build: func(rewrite.Env) (term.Term, error) {
				return VectorOf(), nil
			},
		},
		{
			ID:      RuleShapeSequence,
			Pattern: pattern.P(ShapeKind, pattern.P(SequenceKind, pattern.W("length"), pattern.W("getitem"))),
			Build:   buildShape,
		},
		{
			ID: RuleIndex,
			Pattern: pattern.P(IndexKind,
				pattern.P(SequenceKind, pattern.V("idx_length"), pattern.W("idx_getitem")),
				pattern.W("array"),
			),
			Build: buildIndex,
		},
		{
			ID: RuleReduceVector,
			Pattern: pattern.P(ReduceVectorKind,
				pattern.W("op"),
				pattern.W("initial"),
				pattern.P(SequenceKind, pattern.V("length"), pattern.W("getitem")),
			),
			Build: buildReduceVector,
		},
		{
			ID:      RuleAdd,
			Pattern: pattern.P(AddKind, pattern.V("l"), pattern.V("r")),
			Build:   hostOp(term.AddValues),
		},
		{
			ID:      RuleMultiply,
			Pattern: pattern.P(MultiplyKind, pattern.V("l"), pattern.V("r")),
			Build:   hostOp(term.MulValues),
		},
		{
			ID:      RulePi,
			Pattern: pattern.P(PiKind, pattern.W("x")),
			Build: func(env rewrite.Env) (term.Term, error) {
				mul := env.Function(2, func(p ...term.Term) term.Term { return Multiply(p[0], p[1]) })
				return Scalar(ReduceVector(mul, term.Int(1), env.Term("x"))), nil
			},
		},
		{
			ID:      RuleTotal,
			Pattern: pattern.P(TotalKind, pattern.W("x")),
			Build: func(env rewrite.Env) (term.Term, error) {
				return Pi(Shape(env.Term("x"))), nil
			},
		},
		{
			ID:      RuleIota,
			Pattern: pattern.P(IotaKind, pattern.P(ScalarKind, pattern.W("n"))),
			Build: func(env rewrite.Env) (term.Term, error) {
				return Sequence(env.Term("n"), env.Function(1, func(p ...term.Term) term.Term { return Scalar(p[0]) })), nil
			},
		},
		{
			ID:      RuleDim,
			Pattern: pattern.P(DimKind, pattern.W("x")),
			Build: func(env rewrite.Env) (term.Term, error) {
				return Pi(Shape(Shape(env.Term("x")))), nil
			},
		},
		{
			ID: RuleBinaryScalarScalar,
			Pattern: pattern.P(BinaryOperationKind,
				pattern.W("op"),
				pattern.P(ScalarKind, pattern.W("l")),
				pattern.P(ScalarKind, pattern.W("r")),
			),
			Build: func(env rewrite.Env) (term.Term, error) {
				return Scalar(rewrite.Call(env.Term("op"), env.Term("l"), env.Term("r"))), nil
			},
		},
		{
			ID: RuleBinaryScalarSeq,
			Pattern: pattern.P(BinaryOperationKind,
				pattern.W("op"),
				pattern.Of("s", ScalarKind),
				pattern.P(SequenceKind, pattern.W("length"), pattern.W("getitem")),
			),
			Build: func(env rewrite.Env) (term.Term, error) {
				op, s, getitem := env.Term("op"), env.Term("s"), env.Term("getitem")
				return Sequence(env.Term("length"), env.Function(1, func(p ...term.Term) term.Term {
					return BinaryOperation(op, s, rewrite.Call(getitem, p[0]))
				})), nil
			},
		},
		{
			ID: RuleBinarySeqScalar,
			Pattern: pattern.P(BinaryOperationKind,
				pattern.W("op"),
				pattern.P(SequenceKind, pattern.W("length"), pattern.W("getitem")),
				pattern.Of("s", ScalarKind),
			),
			Build: func(env rewrite.Env) (term.Term, error) {
				op, s, getitem := env.Term("op"), env.Term("s"), env.Term("getitem")
				return Sequence(env.Term("length"), env.Function(1, func(p ...term.Term) term.Term {
					return BinaryOperation(op, rewrite.Call(getitem, p[0]), s)
				})), nil
			},
		},
		{
			ID: RuleBinarySeqSeq,
			Pattern: pattern.P(BinaryOperationKind,
				pattern.W("op"),
				pattern.P(SequenceKind, pattern.W("l_length"), pattern.W("l_getitem")),
				pattern.P(SequenceKind, pattern.W("r_length"), pattern.W("r_getitem")),
			),
			Build: func(env rewrite.Env) (term.Term, error) {
				op, lg, rg := env.Term("op"), env.Term("l_getitem"), env.Term("r_getitem")
				return Sequence(
					Unify(env.Term("l_length"), env.Term("r_length")),
					env.Function(1, func(p ...term.Term) term.Term {
						return BinaryOperation(op, rewrite.Call(lg, p[0]), rewrite.Call(rg, p[0]))
					}),
				), nil
			},
		},
		{
			ID:      RuleOuterScalar,
			Pattern: pattern.P(OuterProductKind, pattern.W("op"), pattern.Of("l", ScalarKind), pattern.W("r")),
			Build: func(env rewrite.Env) (term.Term, error) {
				return BinaryOperation(env.Term("op"), env.Term("l"), env.Term("r")), nil
			},
		},
		{
			ID: RuleOuterSequence,
			Pattern: pattern.P(OuterProductKind,
				pattern.W("op"),
				pattern.P(SequenceKind, pattern.W("length"), pattern.W("getitem")),
				pattern.W("r"),
			),
			Build: func(env rewrite.Env) (term.Term, error) {
				op, getitem, r := env.Term("op"), env.Term("getitem"), env.Term("r")
				return Sequence(env.Term("length"), env.Function(1, func(p ...term.Term) term.Term {
					return OuterProduct(op, rewrite.Call(getitem, p[0]), r)
				})), nil
			},
		},
	}

	if !opts.NoLaws {
		rules = append(rules, innerScalarMultiplyRule())
	}
	return rules
}

// bound returns a builder yielding the term bound to name.
func bound(name string) rewrite.BuildFunc {
	return func(env rewrite.Env) (term.Term, error) {
		return env.Term(name), nil
	}
}

func hostOp(op func(l, r term.Value) (term.Value, error)) rewrite.BuildFunc {
	return func(env rewrite.Env) (term.Term, error) {
		l, _ := env.Value("l")
		r, _ := env.Value("r")
		v, err := op(l, r)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// count converts a concrete length or index-vector length to a loop bound.
func count(op string, v term.Value) (int, error) {
	n, ok := v.Int64()
	if !ok {
		return 0, &term.HostError{Op: op, Message: fmt.Sprintf("length %s is not an integer", term.FormatHost(v.V))}
	}
	if n < 0 {
		return 0, &term.HostError{Op: op, Message: fmt.Sprintf("negative length %d", n)}
	}
	return int(n), nil
}

// buildShape probes one symbolic element to find the shape below the
// outermost dimension.
func buildShape(env rewrite.Env) (term.Term, error) {
	inner := Shape(rewrite.Call(env.Term("getitem"), term.Unbound{}))
	return Sequence(
		Add(term.Int(1), ExtractLength(inner)),
		Push(env.Term("length"), Content(inner)),
	), nil
}

func buildIndex(env rewrite.Env) (term.Term, error) {
	lv, _ := env.Value("idx_length")
	k, err := count("index", lv)
	if err != nil {
		return nil, err
	}
	if err := env.Reserve(k); err != nil {
		return nil, err
	}
	getitem := env.Term("idx_getitem")
	array := env.Term("array")
	for i := 0; i < k; i++ {
		component := rewrite.Call(getitem, term.Int(int64(i)))
		array = rewrite.Call(Content(array), Content(component))
	}
	return array, nil
}

func buildReduceVector(env rewrite.Env) (term.Term, error) {
	lv, _ := env.Value("length")
	n, err := count("reduce", lv)
	if err != nil {
		return nil, err
	}
	if err := env.Reserve(n); err != nil {
		return nil, err
	}
	op := env.Term("op")
	getitem := env.Term("getitem")
	value := env.Term("initial")
	for i := 0; i < n; i++ {
		value = rewrite.Call(op, value, Content(rewrite.Call(getitem, term.Int(int64(i)))))
	}
	return value, nil
}

// buildDimUnbound expands name^n into n nested Sequences whose lengths and
// elements are projections of the free variable name.
func buildDimUnbound(env rewrite.Env) (term.Term, error) {
	a := env.Term("a").(term.DimUnbound)
	if a.N < 0 {
		return nil, &term.HostError{Op: "dimension", Message: fmt.Sprintf("negative dimension %d", a.N)}
	}
	if err := env.Reserve(a.N); err != nil {
		return nil, err
	}
	var expand func(x term.Term, i int) term.Term
	expand = func(x term.Term, i int) term.Term {
		if i == a.N {
			return Scalar(Content(x))
		}
		return Sequence(ExtractLength(x), env.Function(1, func(p ...term.Term) term.Term {
			return expand(rewrite.Call(Content(x), p[0]), i+1)
		}))
	}
	return expand(term.Unbound{Name: a.Name}, 0), nil
}

// innerScalarMultiplyRule pulls a scalar multiplication out of the right
// operand of an add/multiply inner product:
//
//	l +·* (s * r)  =>  s * (l +·* r)
func innerScalarMultiplyRule() rewrite.Rule {
	fn := func(k *term.Kind, prefix string) pattern.Node {
		return pattern.P(rewrite.FunctionKind,
			pattern.P(k, pattern.S(prefix+"_args")),
			pattern.S(prefix+"_params"),
		)
	}
	return rewrite.Rule{
		ID: RuleInnerScalarMultiply,
		Pattern: pattern.P(InnerProductKind,
			fn(AddKind, "add"),
			fn(MultiplyKind, "mul"),
			pattern.W("l"),
			pattern.P(BinaryOperationKind,
				fn(MultiplyKind, "inner"),
				pattern.P(ScalarKind, pattern.W("s")),
				pattern.W("r"),
			),
		),
		Constraints: []pattern.Constraint{pattern.Func(func(b pattern.Bindings) bool {
			return isPlainBinary(b, "add") && isPlainBinary(b, "mul") && isPlainBinary(b, "inner")
		})},
		Build: func(env rewrite.Env) (term.Term, error) {
			rebuild := func(k *term.Kind, prefix string) term.Term {
				ops := []term.Term{term.MustNode(k, env.Seq(prefix+"_args")...)}
				ops = append(ops, env.Seq(prefix+"_params")...)
				return term.MustNode(rewrite.FunctionKind, ops...)
			}
			return BinaryOperation(
				rebuild(MultiplyKind, "inner"),
				Scalar(env.Term("s")),
				InnerProduct(rebuild(AddKind, "add"), rebuild(MultiplyKind, "mul"), env.Term("l"), env.Term("r")),
			), nil
		},
	}
}

// isPlainBinary reports whether the matched function is exactly
// (a, b -> a op b).
func isPlainBinary(b pattern.Bindings, prefix string) bool {
	args := b.Seq(prefix + "_args")
	params := b.Seq(prefix + "_params")
	return len(params) == 2 && term.EqualAll(args, params)
}

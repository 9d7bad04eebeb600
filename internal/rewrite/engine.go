package rewrite

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/darkMatter00/unumpy/internal/pattern"
	"github.com/darkMatter00/unumpy/internal/term"
)

// DefaultMaxSteps is the default maximum number of rule firings per
// Normalize call.
const DefaultMaxSteps = 100_000

// Engine normalizes terms against a sealed registry.
//
// Thread-safety model:
//   - Normalize(): safe from any goroutine; each call has its own quota
//   - Fresh()/Function(): safe from any goroutine (atomic clock)
//
// INVARIANTS:
//   - Candidate rules are tried in registration order
//   - The registry never changes after New
type Engine struct {
	registry *Registry
	clock    *Clock
	maxSteps int
	logger   *slog.Logger
	tracer   Tracer
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithMaxSteps sets the maximum rule firings per Normalize call.
// A value <= 0 disables the quota.
func WithMaxSteps(maxSteps int) Option {
	return func(e *Engine) {
		e.maxSteps = maxSteps
	}
}

// WithLogger sets the structured logger. Rule firings are logged at Debug.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTracer receives one Step per rule firing.
func WithTracer(t Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithClock shares a fresh-name clock between engines.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// New creates an Engine over reg and seals reg.
func New(reg *Registry, opts ...Option) *Engine {
	reg.Seal()
	e := &Engine{
		registry: reg,
		clock:    NewClock(),
		maxSteps: DefaultMaxSteps,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the engine's (sealed) registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Clock returns the engine's fresh-name clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// MaxSteps returns the rule firings allowed per Normalize call; zero or
// less means unlimited.
func (e *Engine) MaxSteps() int {
	return e.maxSteps
}

// Fresh returns an Unbound leaf with a never before used name.
func (e *Engine) Fresh() term.Unbound {
	return e.clock.Fresh()
}

// Function builds an n-ary function with fresh parameters.
func (e *Engine) Function(n int, body func(params ...term.Term) term.Term) term.Term {
	return NewFunction(e.clock, n, body)
}

// Normalize rewrites t until no rule applies anywhere in it.
//
// The result may be stuck (contain unreduced operations whose inputs are
// too symbolic); that is not an error. Errors are returned only when a
// builder fails, the step quota is exceeded or ctx is cancelled.
func (e *Engine) Normalize(ctx context.Context, t term.Term) (term.Term, error) {
	if t == nil {
		return nil, fmt.Errorf("normalize: nil term")
	}
	n := &normalization{
		engine: e,
		ctx:    ctx,
		quota:  NewQuotaEnforcer(e.maxSteps),
	}
	out, _, err := n.normalize(t)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("normalized",
		"steps", n.quota.Current(),
		"result", term.String(out),
	)
	return out, nil
}

// Step is one rule firing during normalization.
type Step struct {
	Seq    int
	RuleID string
	Before term.Term
	After  term.Term
}

// normalization holds the state of one Normalize call.
type normalization struct {
	engine *Engine
	ctx    context.Context
	quota  *QuotaEnforcer
}

// normalize returns the normal form of t and whether anything was rewritten.
func (n *normalization) normalize(t term.Term) (term.Term, bool, error) {
	rewritten := false
	for {
		if err := n.ctx.Err(); err != nil {
			return nil, false, err
		}

		next, fired, err := n.rewriteRoot(t)
		if err != nil {
			return nil, false, err
		}
		if fired {
			t = next
			rewritten = true
			continue
		}

		node, ok := t.(*term.Node)
		if !ok {
			return t, rewritten, nil
		}

		var ops []term.Term
		for i := 0; i < node.Len(); i++ {
			op, changed, err := n.normalize(node.Operand(i))
			if err != nil {
				return nil, false, err
			}
			if changed && ops == nil {
				ops = node.Operands()
			}
			if ops != nil {
				ops[i] = op
			}
		}
		if ops == nil {
			return t, rewritten, nil
		}

		// Operand count is unchanged, so arity still holds.
		t = term.MustNode(node.Kind(), ops...)
		rewritten = true
	}
}

// rewriteRoot fires the first applicable rule at the root of t.
func (n *normalization) rewriteRoot(t term.Term) (term.Term, bool, error) {
	reg := n.engine.registry
	for _, idx := range reg.candidates(t) {
		rule := reg.rules[idx]
		b, ok := pattern.Match(rule.Pattern, t, rule.Constraints...)
		if !ok {
			continue
		}

		kind := kindName(t)
		out, err := rule.Build(Env{Bindings: b, clock: n.engine.clock, quota: n.quota, ruleID: rule.ID})
		if IsStepsExceededError(err) {
			n.engine.logger.Error("max steps quota exceeded",
				"rule_id", rule.ID,
				"limit", n.quota.MaxSteps(),
			)
			return nil, false, err
		}
		if err != nil {
			n.engine.logger.Error("rule builder failed",
				"rule_id", rule.ID,
				"kind", kind,
				"error", err,
			)
			return nil, false, newBuildError(rule.ID, kind, err)
		}
		if out == nil {
			return nil, false, newBuildError(rule.ID, kind, fmt.Errorf("builder returned nil term"))
		}

		if err := n.quota.Check(rule.ID); err != nil {
			n.engine.logger.Error("max steps quota exceeded",
				"rule_id", rule.ID,
				"limit", n.quota.MaxSteps(),
			)
			return nil, false, err
		}

		n.engine.logger.Debug("rule fired",
			"rule_id", rule.ID,
			"kind", kind,
			"step", n.quota.Current(),
		)
		if n.engine.tracer != nil {
			n.engine.tracer.Step(Step{
				Seq:    n.quota.Current(),
				RuleID: rule.ID,
				Before: t,
				After:  out,
			})
		}
		return out, true, nil
	}
	return nil, false, nil
}

func kindName(t term.Term) string {
	switch x := t.(type) {
	case *term.Node:
		return x.Kind().Name
	case term.Value:
		return "Value"
	case term.Unbound:
		return "Unbound"
	case term.DimUnbound:
		return "DimUnbound"
	}
	return fmt.Sprintf("%T", t)
}

package rewrite

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/darkMatter00/unumpy/internal/pattern"
	"github.com/darkMatter00/unumpy/internal/term"
)

// BuildFunc computes a rule's replacement from the match environment.
// A returned error aborts normalization (e.g. a host operation failed).
type BuildFunc func(env Env) (term.Term, error)

// Rule is a rewrite rule: pattern, optional constraints and a replacement
// builder.
type Rule struct {
	ID          string
	Pattern     pattern.Pattern
	Constraints []pattern.Constraint
	Build       BuildFunc
}

// Env is what a replacement builder sees: the match bindings, the
// engine's fresh-name clock and the quota of the running normalization.
type Env struct {
	pattern.Bindings
	clock  *Clock
	quota  *QuotaEnforcer
	ruleID string
}

// Reserve checks that a replacement unrolling n elements fits in the steps
// left for this normalization, at one step per element. Builders that loop
// over a length taken from the term call it before building anything.
func (e Env) Reserve(n int) error {
	if e.quota == nil {
		return nil
	}
	return e.quota.Reserve(e.ruleID, n)
}

// Fresh returns an Unbound leaf with a never before used name.
func (e Env) Fresh() term.Unbound {
	return e.clock.Fresh()
}

// Function builds an n-ary symbolic function whose parameters are fresh
// variables. body receives the parameter leaves.
func (e Env) Function(n int, body func(params ...term.Term) term.Term) term.Term {
	return NewFunction(e.clock, n, body)
}

// Lookup keys. Rules whose root pattern does not fix a node kind or leaf
// class go under anyKey and are candidates for every term.
const (
	anyKey     = "*"
	anyNodeKey = "node:*"
)

// Registry holds rules in registration order.
//
// Register is only valid before Seal. After sealing the registry is
// immutable and lookups need no locking.
type Registry struct {
	mu     sync.Mutex
	sealed atomic.Bool
	rules  []Rule
	ids    map[string]struct{}
	byKey  map[string][]int
}

// NewRegistry creates an empty, unsealed registry.
func NewRegistry() *Registry {
	return &Registry{
		ids:   make(map[string]struct{}),
		byKey: make(map[string][]int),
	}
}

// Register validates r and appends it after all previously registered rules.
func (r *Registry) Register(rule Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return &RuntimeError{
			Code:    ErrCodeSealed,
			Message: "registry is sealed",
			RuleID:  rule.ID,
		}
	}
	if rule.ID == "" {
		return &RuntimeError{Code: ErrCodeInvalidRule, Message: "rule ID is required"}
	}
	if _, dup := r.ids[rule.ID]; dup {
		return &RuntimeError{
			Code:    ErrCodeDuplicateRule,
			Message: "rule ID already registered",
			RuleID:  rule.ID,
		}
	}
	if rule.Build == nil {
		return &RuntimeError{Code: ErrCodeInvalidRule, Message: "rule has no builder", RuleID: rule.ID}
	}
	if rule.Pattern == nil {
		return &RuntimeError{Code: ErrCodeInvalidRule, Message: "rule has no pattern", RuleID: rule.ID}
	}
	if err := pattern.Validate(rule.Pattern); err != nil {
		return &RuntimeError{
			Code:    ErrCodeInvalidRule,
			Message: "invalid pattern",
			RuleID:  rule.ID,
			Err:     err,
		}
	}

	idx := len(r.rules)
	r.rules = append(r.rules, rule)
	r.ids[rule.ID] = struct{}{}
	key := patternKey(rule.Pattern)
	r.byKey[key] = append(r.byKey[key], idx)
	return nil
}

// MustRegister is like Register but panics on error.
// Use for rule tables that are fixed at compile time.
func (r *Registry) MustRegister(rules ...Rule) {
	for _, rule := range rules {
		if err := r.Register(rule); err != nil {
			panic(err)
		}
	}
}

// Seal makes the registry read-only. Sealing twice is a no-op.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed.Store(true)
}

// Sealed reports whether the registry has been sealed.
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rules)
}

// Rules returns a copy of all rules in registration order.
func (r *Registry) Rules() []Rule {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Rule returns the rule with the given ID.
func (r *Registry) Rule(id string) (Rule, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rule := range r.rules {
		if rule.ID == id {
			return rule, true
		}
	}
	return Rule{}, false
}

// candidates returns the rules that may match t, in registration order.
// Only called on a sealed registry.
func (r *Registry) candidates(t term.Term) []int {
	keys := termKeys(t)
	var out []int
	for _, k := range keys {
		out = append(out, r.byKey[k]...)
	}
	if len(keys) > 1 {
		sort.Ints(out)
	}
	return out
}

func patternKey(p pattern.Pattern) string {
	switch x := p.(type) {
	case pattern.Node:
		return "node:" + x.Kind.Name
	case pattern.Wildcard:
		if x.Kind != nil {
			return "node:" + x.Kind.Name
		}
		switch x.Class {
		case pattern.ValueLeaf:
			return "leaf:value"
		case pattern.UnboundLeaf:
			return "leaf:unbound"
		case pattern.DimLeaf:
			return "leaf:dim"
		case pattern.AnyNode:
			return anyNodeKey
		}
		return anyKey
	case pattern.Lit:
		return termKeys(x.Term)[0]
	}
	return anyKey
}

// termKeys lists the lookup keys a term is reachable under, most specific
// first.
func termKeys(t term.Term) []string {
	switch x := t.(type) {
	case *term.Node:
		return []string{"node:" + x.Kind().Name, anyNodeKey, anyKey}
	case term.Value:
		return []string{"leaf:value", anyKey}
	case term.Unbound:
		return []string{"leaf:unbound", anyKey}
	case term.DimUnbound:
		return []string{"leaf:dim", anyKey}
	}
	return []string{anyKey}
}

func (r *Registry) String() string {
	return fmt.Sprintf("Registry(%d rules, sealed=%t)", r.Len(), r.Sealed())
}

package pattern

import (
	"sort"

	"github.com/darkMatter00/unumpy/internal/term"
)

// Binding is what one wildcard matched: a single term, or an operand run
// for sequence wildcards.
type Binding struct {
	Term  term.Term
	Seq   []term.Term
	IsSeq bool
}

// Equal reports whether two bindings hold structurally equal matches.
func (b Binding) Equal(o Binding) bool {
	if b.IsSeq != o.IsSeq {
		return false
	}
	if b.IsSeq {
		return term.EqualAll(b.Seq, o.Seq)
	}
	return term.Equal(b.Term, o.Term)
}

// Bindings maps wildcard names to what they matched.
type Bindings map[string]Binding

// Term returns the single term bound to name, or nil.
func (b Bindings) Term(name string) term.Term {
	bd, ok := b[name]
	if !ok || bd.IsSeq {
		return nil
	}
	return bd.Term
}

// Seq returns the operand run bound to name, or nil.
// The returned slice is a copy.
func (b Bindings) Seq(name string) []term.Term {
	bd, ok := b[name]
	if !ok || !bd.IsSeq {
		return nil
	}
	out := make([]term.Term, len(bd.Seq))
	copy(out, bd.Seq)
	return out
}

// Value returns the Value leaf bound to name.
func (b Bindings) Value(name string) (term.Value, bool) {
	v, ok := b.Term(name).(term.Value)
	return v, ok
}

// Names returns bound names in sorted order.
func (b Bindings) Names() []string {
	names := make([]string, 0, len(b))
	for k := range b {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

package pattern

import (
	"github.com/darkMatter00/unumpy/internal/term"
)

// matcher accumulates bindings for one match attempt.
// repeats holds second and later occurrences of an already bound name.
type matcher struct {
	bindings Bindings
	repeats  map[string][]Binding
}

// Match matches p against t and then evaluates constraints.
//
// Returns the bindings and true only if the structure matches AND every
// repeated wildcard name is covered by an EqualVars constraint whose
// occurrences are all equal AND every constraint holds. All-or-nothing: no
// partial bindings are returned.
func Match(p Pattern, t term.Term, constraints ...Constraint) (Bindings, bool) {
	m := &matcher{bindings: Bindings{}}
	if !m.match(p, t) {
		return nil, false
	}

	for name, extra := range m.repeats {
		if !coveredByEquality(name, constraints) {
			return nil, false
		}
		first := m.bindings[name]
		for _, b := range extra {
			if !first.Equal(b) {
				return nil, false
			}
		}
	}

	for _, c := range constraints {
		if !c.Holds(m.bindings) {
			return nil, false
		}
	}
	return m.bindings, true
}

func coveredByEquality(name string, constraints []Constraint) bool {
	for _, c := range constraints {
		if eq, ok := c.(EqualVars); ok && eq.covers(name) {
			return true
		}
	}
	return false
}

func (m *matcher) bind(name string, b Binding) {
	if name == "" || name == "_" {
		return
	}
	if _, exists := m.bindings[name]; exists {
		if m.repeats == nil {
			m.repeats = make(map[string][]Binding)
		}
		m.repeats[name] = append(m.repeats[name], b)
		return
	}
	m.bindings[name] = b
}

func (m *matcher) match(p Pattern, t term.Term) bool {
	switch x := p.(type) {
	case Wildcard:
		if !classAccepts(x, t) {
			return false
		}
		m.bind(x.Name, Binding{Term: t})
		return true

	case Lit:
		return term.Equal(x.Term, t)

	case Node:
		n, ok := t.(*term.Node)
		if !ok || n.Kind().Name != x.Kind.Name {
			return false
		}
		return m.matchOperands(x.Operands, n)

	default:
		// Seq outside a node level never matches
		return false
	}
}

// matchOperands aligns operand patterns with node operands. Fixed patterns
// before the (single) sequence wildcard consume operands from the front,
// fixed patterns after it consume from the back, and the sequence takes the
// span in between.
func (m *matcher) matchOperands(pats []Pattern, n *term.Node) bool {
	seqAt := -1
	for i, p := range pats {
		if _, ok := p.(Seq); ok {
			seqAt = i
			break
		}
	}

	count := n.Len()
	if seqAt < 0 {
		if len(pats) != count {
			return false
		}
		for i, p := range pats {
			if !m.match(p, n.Operand(i)) {
				return false
			}
		}
		return true
	}

	after := len(pats) - seqAt - 1
	if count < seqAt+after {
		return false
	}
	for i := 0; i < seqAt; i++ {
		if !m.match(pats[i], n.Operand(i)) {
			return false
		}
	}
	end := count - after
	run := make([]term.Term, 0, end-seqAt)
	for i := seqAt; i < end; i++ {
		run = append(run, n.Operand(i))
	}
	m.bind(pats[seqAt].(Seq).Name, Binding{Seq: run, IsSeq: true})
	for k := 0; k < after; k++ {
		if !m.match(pats[seqAt+1+k], n.Operand(end+k)) {
			return false
		}
	}
	return true
}

func classAccepts(w Wildcard, t term.Term) bool {
	if w.Kind != nil {
		return term.Is(t, w.Kind)
	}
	switch w.Class {
	case ValueLeaf:
		_, ok := t.(term.Value)
		return ok
	case UnboundLeaf:
		_, ok := t.(term.Unbound)
		return ok
	case DimLeaf:
		_, ok := t.(term.DimUnbound)
		return ok
	case AnyNode:
		_, ok := t.(*term.Node)
		return ok
	default:
		return true
	}
}

package pattern

// Constraint is a predicate over a complete binding environment, evaluated
// after a structural match succeeds.
type Constraint interface {
	Holds(b Bindings) bool
}

// EqualVars is satisfied iff all named bindings are structurally equal.
// It is also the only way to let one wildcard name appear more than once in
// a pattern: every occurrence must then bind equal terms.
type EqualVars []string

// Equal creates an EqualVars constraint over two or more names.
func Equal(names ...string) EqualVars {
	return EqualVars(names)
}

// Holds implements Constraint.
func (c EqualVars) Holds(b Bindings) bool {
	if len(c) == 0 {
		return true
	}
	first, ok := b[c[0]]
	if !ok {
		return false
	}
	for _, name := range c[1:] {
		other, ok := b[name]
		if !ok || !first.Equal(other) {
			return false
		}
	}
	return true
}

func (c EqualVars) covers(name string) bool {
	for _, n := range c {
		if n == name {
			return true
		}
	}
	return false
}

// Func adapts a plain predicate into a Constraint.
type Func func(b Bindings) bool

// Holds implements Constraint.
func (f Func) Holds(b Bindings) bool {
	return f(b)
}

// Package term provides the immutable symbolic term model.
//
// This package has no internal dependencies. Every other package builds on
// it: patterns mirror its shape, the rewrite engine produces new terms from
// old ones, and the array rule set is expressed entirely in terms of Kinds
// declared on top of it.
//
// Key design constraints:
//   - Term is a sealed interface: Value, Unbound, DimUnbound and *Node only
//   - Terms are never mutated after construction
//   - Equality is structural (Equal), never identity
//   - Node arity is checked once, at construction (ArityError)
package term

package pattern

import (
	"fmt"

	"github.com/darkMatter00/unumpy/internal/term"
)

// Pattern is a sealed interface over pattern positions.
// Only Wildcard, Seq, Lit and Node implement this.
type Pattern interface {
	pattern()
}

// Class restricts what a Wildcard may bind.
type Class int

const (
	AnyTerm Class = iota
	ValueLeaf
	UnboundLeaf
	DimLeaf
	AnyNode
)

var classNames = map[Class]string{
	AnyTerm:     "any",
	ValueLeaf:   "value",
	UnboundLeaf: "unbound",
	DimLeaf:     "dim",
	AnyNode:     "node",
}

func (c Class) String() string {
	if s, ok := classNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Wildcard binds exactly one term. The names "" and "_" match without binding.
//
// Class and Kind constrain the bound term; a non-nil Kind requires a node of
// that kind and overrides Class.
type Wildcard struct {
	Name  string
	Class Class
	Kind  *term.Kind
}

func (Wildcard) pattern() {}

// Seq binds a contiguous, possibly empty run of sibling operands.
// It is only valid directly inside a Node pattern.
type Seq struct {
	Name string
}

func (Seq) pattern() {}

// Lit matches a term structurally equal to Term.
type Lit struct {
	Term term.Term
}

func (Lit) pattern() {}

// Node matches a node of Kind whose operands match Operands positionally.
type Node struct {
	Kind     *term.Kind
	Operands []Pattern
}

func (Node) pattern() {}

// W creates an untyped wildcard.
func W(name string) Wildcard {
	return Wildcard{Name: name}
}

// V creates a wildcard that only binds Value leaves.
func V(name string) Wildcard {
	return Wildcard{Name: name, Class: ValueLeaf}
}

// Of creates a wildcard that only binds nodes of kind k.
func Of(name string, k *term.Kind) Wildcard {
	return Wildcard{Name: name, Kind: k}
}

// S creates a sequence wildcard.
func S(name string) Seq {
	return Seq{Name: name}
}

// P creates a node pattern.
func P(kind *term.Kind, operands ...Pattern) Node {
	return Node{Kind: kind, Operands: operands}
}

// RootKind returns the node kind a pattern requires at its root, or nil
// when the root is a leaf-matching wildcard or literal.
func RootKind(p Pattern) *term.Kind {
	switch x := p.(type) {
	case Node:
		return x.Kind
	case Wildcard:
		return x.Kind
	case Lit:
		if n, ok := x.Term.(*term.Node); ok {
			return n.Kind()
		}
	}
	return nil
}

// Validate checks that p is well formed: node kinds present, operand counts
// compatible with the kind's arity, and at most one sequence wildcard per
// node level, never at the root.
func Validate(p Pattern) error {
	if _, ok := p.(Seq); ok {
		return fmt.Errorf("sequence wildcard cannot be the root of a pattern")
	}
	return validate(p)
}

func validate(p Pattern) error {
	switch x := p.(type) {
	case Wildcard, Seq:
		return nil
	case Lit:
		if x.Term == nil {
			return fmt.Errorf("literal pattern has nil term")
		}
		return nil
	case Node:
		if x.Kind == nil {
			return fmt.Errorf("node pattern has nil kind")
		}
		seqs, fixed := 0, 0
		for i, op := range x.Operands {
			if op == nil {
				return fmt.Errorf("%s pattern operand %d is nil", x.Kind.Name, i)
			}
			if _, ok := op.(Seq); ok {
				seqs++
			} else {
				fixed++
			}
			if err := validate(op); err != nil {
				return fmt.Errorf("%s operand %d: %w", x.Kind.Name, i, err)
			}
		}
		if seqs > 1 {
			return fmt.Errorf("%s pattern has %d sequence wildcards at one level (max 1)", x.Kind.Name, seqs)
		}
		if seqs == 0 && (fixed < x.Kind.Arity || (!x.Kind.Variadic && fixed != x.Kind.Arity)) {
			return fmt.Errorf("%s pattern has %d operands, incompatible with kind arity", x.Kind.Name, fixed)
		}
		if seqs == 1 && !x.Kind.Variadic && fixed > x.Kind.Arity {
			return fmt.Errorf("%s pattern has %d fixed operands, more than kind arity %d", x.Kind.Name, fixed, x.Kind.Arity)
		}
		return nil
	default:
		return fmt.Errorf("unknown pattern type %T", p)
	}
}

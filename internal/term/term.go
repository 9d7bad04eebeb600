package term

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Term is a sealed interface representing an immutable symbolic expression.
// Only Value, Unbound, DimUnbound and *Node implement this.
type Term interface {
	term() // Sealed - only these types implement it
}

// Value is a leaf wrapping one host value.
//
// The engine understands int64 and *apd.Decimal for arithmetic and indexing.
// Any other host value may be boxed; it simply never reduces.
type Value struct {
	V any
}

func (Value) term() {}

// Int creates a Value holding an int64.
func Int(n int64) Value {
	return Value{V: n}
}

// Decimal creates a Value holding an arbitrary-precision decimal parsed from s.
func Decimal(s string) (Value, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Value{}, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return Value{V: d}, nil
}

// Int64 returns the held integer. Decimals with an integral value are
// accepted so that 2.0 can index a vector.
func (v Value) Int64() (int64, bool) {
	switch x := v.V.(type) {
	case int64:
		return x, true
	case *apd.Decimal:
		var integral, frac apd.Decimal
		x.Modf(&integral, &frac)
		if !frac.IsZero() {
			return 0, false
		}
		n, err := integral.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Unbound is a free variable leaf. Name may be empty for an anonymous
// variable; two anonymous variables are structurally equal.
type Unbound struct {
	Name string
}

func (Unbound) term() {}

// DimUnbound is a leaf standing for an N-dimensional unbound array named Name.
// It is expanded into nested Sequence nodes by a registered rule.
type DimUnbound struct {
	N    int
	Name string
}

func (DimUnbound) term() {}

// Kind describes a node operation: its name, display symbol and arity.
//
// A Kind with Variadic=false requires exactly Arity operands; a variadic
// Kind requires at least Arity operands.
type Kind struct {
	Name     string
	Symbol   string // Display symbol; Name is used when empty
	Arity    int
	Variadic bool
	Infix    bool

	// Render optionally overrides debug rendering given rendered operands.
	Render func(operands []string) string
}

// String returns the kind's name.
func (k *Kind) String() string {
	return k.Name
}

// Node is an operation applied to an ordered list of operands.
// Build nodes with NewNode; the zero Node is not valid.
type Node struct {
	kind     *Kind
	operands []Term
}

func (*Node) term() {}

// NewNode creates a node of the given kind, validating operand count
// against the kind's declared arity.
//
// The operands slice is copied so later mutation by the caller cannot
// affect the node.
func NewNode(kind *Kind, operands ...Term) (*Node, error) {
	if kind == nil {
		return nil, fmt.Errorf("node kind is required")
	}
	if err := checkArity(kind, len(operands)); err != nil {
		return nil, err
	}
	for i, op := range operands {
		if op == nil {
			return nil, fmt.Errorf("%s operand %d is nil", kind.Name, i)
		}
	}
	ops := make([]Term, len(operands))
	copy(ops, operands)
	return &Node{kind: kind, operands: ops}, nil
}

// MustNode is like NewNode but panics on error.
// Use for statically known shapes (rule builders, tests).
func MustNode(kind *Kind, operands ...Term) *Node {
	n, err := NewNode(kind, operands...)
	if err != nil {
		panic(err)
	}
	return n
}

// Kind returns the node's kind.
func (n *Node) Kind() *Kind {
	return n.kind
}

// Len returns the number of operands.
func (n *Node) Len() int {
	return len(n.operands)
}

// Operand returns the i-th operand.
func (n *Node) Operand(i int) Term {
	return n.operands[i]
}

// Operands returns a copy of the operand list.
func (n *Node) Operands() []Term {
	ops := make([]Term, len(n.operands))
	copy(ops, n.operands)
	return ops
}

// Is reports whether t is a node of kind k.
func Is(t Term, k *Kind) bool {
	n, ok := t.(*Node)
	return ok && n.kind.Name == k.Name
}

func checkArity(kind *Kind, got int) error {
	if got < kind.Arity || (!kind.Variadic && got != kind.Arity) {
		return &ArityError{
			Kind:     kind.Name,
			Want:     kind.Arity,
			Variadic: kind.Variadic,
			Got:      got,
		}
	}
	return nil
}

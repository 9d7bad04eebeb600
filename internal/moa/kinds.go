package moa

import (
	"sort"
	"strings"

	"github.com/darkMatter00/unumpy/internal/rewrite"
	"github.com/darkMatter00/unumpy/internal/term"
)

// Array constructors. These are data: a term built only from them (plus
// functions and leaves) is fully reduced.
var (
	// ScalarKind is a zero-dimensional array: Scalar(content).
	ScalarKind = &term.Kind{Name: "Scalar", Arity: 1}

	// SequenceKind is an intensional array: Sequence(length, getitem).
	SequenceKind = &term.Kind{Name: "Sequence", Arity: 2}

	// VectorCallableKind is an indexable literal: VectorCallable(items...).
	VectorCallableKind = &term.Kind{
		Name:     "VectorCallable",
		Arity:    0,
		Variadic: true,
		Render: func(ops []string) string {
			return "<" + strings.Join(ops, " ") + ">"
		},
	}
)

// Projections and helpers over the array representation.
var (
	ContentKind       = &term.Kind{Name: "Content", Arity: 1}
	ExtractLengthKind = &term.Kind{Name: "ExtractLength", Arity: 1}

	// PushKind prepends to a vector literal: Push(item, VectorCallable(...)).
	PushKind = &term.Kind{
		Name:  "Push",
		Arity: 2,
		Render: func(ops []string) string {
			return "<" + ops[0] + ", *" + ops[1] + ">"
		},
	}

	// VectorIndexedKind selects from a literal once the index is concrete:
	// VectorIndexed(index, items...).
	VectorIndexedKind = &term.Kind{Name: "VectorIndexed", Arity: 1, Variadic: true}

	// UnifyKind asserts two terms are equal and reduces to the first.
	UnifyKind = &term.Kind{Name: "Unify", Arity: 2}
)

// Array operations.
var (
	AddKind      = &term.Kind{Name: "Add", Symbol: "+", Arity: 2, Infix: true}
	MultiplyKind = &term.Kind{Name: "Multiply", Symbol: "*", Arity: 2, Infix: true}

	ShapeKind = &term.Kind{Name: "Shape", Symbol: "ρ", Arity: 1}
	IndexKind = &term.Kind{Name: "Index", Symbol: "ψ", Arity: 2, Infix: true}
	PiKind    = &term.Kind{Name: "Pi", Symbol: "π", Arity: 1}
	TotalKind = &term.Kind{Name: "Total", Symbol: "τ", Arity: 1}
	IotaKind  = &term.Kind{Name: "Iota", Symbol: "ι", Arity: 1}
	DimKind   = &term.Kind{Name: "Dim", Symbol: "δ", Arity: 1}

	// ReduceVectorKind is ReduceVector(op, initial, array).
	ReduceVectorKind = &term.Kind{Name: "ReduceVector", Symbol: "red", Arity: 3}

	// BinaryOperationKind is BinaryOperation(op, l, r) with broadcasting.
	BinaryOperationKind = &term.Kind{Name: "BinaryOperation", Arity: 3}

	// OuterProductKind is OuterProduct(op, l, r).
	OuterProductKind = &term.Kind{
		Name:  "OuterProduct",
		Arity: 3,
		Render: func(ops []string) string {
			return "(" + ops[1] + " ·" + ops[0] + " " + ops[2] + ")"
		},
	}

	// InnerProductKind is InnerProduct(lop, rop, l, r).
	InnerProductKind = &term.Kind{
		Name:  "InnerProduct",
		Arity: 4,
		Render: func(ops []string) string {
			return "(" + ops[2] + " " + ops[0] + "·" + ops[1] + " " + ops[3] + ")"
		},
	}
)

var kinds = []*term.Kind{
	ScalarKind, SequenceKind, VectorCallableKind,
	ContentKind, ExtractLengthKind, PushKind, VectorIndexedKind, UnifyKind,
	AddKind, MultiplyKind,
	ShapeKind, IndexKind, PiKind, TotalKind, IotaKind, DimKind,
	ReduceVectorKind, BinaryOperationKind, OuterProductKind, InnerProductKind,
	rewrite.FunctionKind, rewrite.CallKind,
}

var kindsByName = func() map[string]*term.Kind {
	m := make(map[string]*term.Kind, len(kinds))
	for _, k := range kinds {
		m[k.Name] = k
	}
	return m
}()

// Kinds returns every node kind the array rule set knows, sorted by name.
func Kinds() []*term.Kind {
	out := make([]*term.Kind, len(kinds))
	copy(out, kinds)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupKind returns the kind with the given name.
func LookupKind(name string) (*term.Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// isData reports whether k constructs a value rather than computing one.
func isData(k *term.Kind) bool {
	switch k.Name {
	case ScalarKind.Name, SequenceKind.Name, VectorCallableKind.Name, rewrite.FunctionKind.Name:
		return true
	}
	return false
}

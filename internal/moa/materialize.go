package moa

import (
	"context"
	"fmt"

	"github.com/darkMatter00/unumpy/internal/rewrite"
	"github.com/darkMatter00/unumpy/internal/term"
)

// Materialize normalizes t and, if it is a scalar or a vector of concrete
// length, indexes every element so the result is a literal: Scalar(c) or
// VectorOf(c0, c1, ...). Two arrays that denote the same values then
// compare equal with term.Equal regardless of how they were built.
//
// Every element costs at least one rule firing, so a vector longer than the
// engine's step limit is rejected before any element is indexed.
//
// Arrays of rank two or more are not materialized.
func Materialize(ctx context.Context, e *rewrite.Engine, t term.Term) (term.Term, error) {
	nf, err := e.Normalize(ctx, t)
	if err != nil {
		return nil, err
	}

	node, ok := nf.(*term.Node)
	if !ok {
		return nil, fmt.Errorf("materialize: %s is not an array", term.String(nf))
	}
	switch node.Kind().Name {
	case ScalarKind.Name:
		return nf, nil
	case SequenceKind.Name:
	default:
		return nil, fmt.Errorf("materialize: %s is not an array", term.String(nf))
	}

	length, ok := node.Operand(0).(term.Value)
	if !ok {
		return nil, fmt.Errorf("materialize: length %s is not concrete", term.String(node.Operand(0)))
	}
	n, ok := length.Int64()
	if !ok || n < 0 {
		return nil, fmt.Errorf("materialize: invalid length %s", term.String(length))
	}

	if limit := e.MaxSteps(); limit > 0 && n > int64(limit) {
		return nil, fmt.Errorf("materialize: length %d exceeds the step limit %d", n, limit)
	}

	getitem := node.Operand(1)
	items := make([]term.Term, 0, min(n, 1024))
	for i := int64(0); i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("materialize: %w", err)
		}
		elem, err := e.Normalize(ctx, rewrite.Call(getitem, term.Int(i)))
		if err != nil {
			return nil, fmt.Errorf("materialize element %d: %w", i, err)
		}
		if !term.Is(elem, ScalarKind) {
			return nil, fmt.Errorf("materialize element %d: %s is not a scalar (rank > 1 is not supported)", i, term.String(elem))
		}
		items = append(items, elem.(*term.Node).Operand(0))
	}
	return VectorOf(items...), nil
}

// Stuck reports whether t, taken as a normal form, still holds an operation
// that did not reduce. Operations inside function bodies are pending, not
// stuck: they reduce once the function is called.
func Stuck(t term.Term) bool {
	node, ok := t.(*term.Node)
	if !ok {
		return false
	}
	k := node.Kind()
	if k.Name == rewrite.FunctionKind.Name {
		return false
	}
	if !isData(k) {
		return true
	}
	for i := 0; i < node.Len(); i++ {
		if Stuck(node.Operand(i)) {
			return true
		}
	}
	return false
}

package moa

import (
	"github.com/darkMatter00/unumpy/internal/rewrite"
	"github.com/darkMatter00/unumpy/internal/term"
)

// Scalar wraps content as a zero-dimensional array.
func Scalar(content term.Term) term.Term {
	return term.MustNode(ScalarKind, content)
}

// ScalarInt is Scalar(Value(n)).
func ScalarInt(n int64) term.Term {
	return Scalar(term.Int(n))
}

// Sequence builds an array from its length and index function.
func Sequence(length, getitem term.Term) term.Term {
	return term.MustNode(SequenceKind, length, getitem)
}

// VectorCallable builds an indexable literal over items.
func VectorCallable(items ...term.Term) term.Term {
	return term.MustNode(VectorCallableKind, items...)
}

// VectorOf builds a concrete vector whose elements are items.
func VectorOf(items ...term.Term) term.Term {
	return Sequence(term.Int(int64(len(items))), VectorCallable(items...))
}

// Vector builds a concrete vector of integer values.
func Vector(values ...int64) term.Term {
	items := make([]term.Term, len(values))
	for i, v := range values {
		items[i] = term.Int(v)
	}
	return VectorOf(items...)
}

func Content(x term.Term) term.Term       { return term.MustNode(ContentKind, x) }
func ExtractLength(x term.Term) term.Term { return term.MustNode(ExtractLengthKind, x) }
func Push(item, vc term.Term) term.Term   { return term.MustNode(PushKind, item, vc) }
func Unify(x, y term.Term) term.Term      { return term.MustNode(UnifyKind, x, y) }
func Add(l, r term.Term) term.Term        { return term.MustNode(AddKind, l, r) }
func Multiply(l, r term.Term) term.Term   { return term.MustNode(MultiplyKind, l, r) }
func Shape(x term.Term) term.Term         { return term.MustNode(ShapeKind, x) }
func Index(idx, x term.Term) term.Term    { return term.MustNode(IndexKind, idx, x) }
func Pi(x term.Term) term.Term            { return term.MustNode(PiKind, x) }
func Total(x term.Term) term.Term         { return term.MustNode(TotalKind, x) }
func Iota(x term.Term) term.Term          { return term.MustNode(IotaKind, x) }
func Dim(x term.Term) term.Term           { return term.MustNode(DimKind, x) }

// VectorIndexed builds VectorIndexed(index, items...).
func VectorIndexed(index term.Term, items ...term.Term) term.Term {
	ops := make([]term.Term, 0, len(items)+1)
	ops = append(ops, index)
	ops = append(ops, items...)
	return term.MustNode(VectorIndexedKind, ops...)
}

// ReduceVector left-folds op over array starting from initial.
func ReduceVector(op, initial, array term.Term) term.Term {
	return term.MustNode(ReduceVectorKind, op, initial, array)
}

// BinaryOperation applies the two-argument function op elementwise with
// broadcasting.
func BinaryOperation(op, l, r term.Term) term.Term {
	return term.MustNode(BinaryOperationKind, op, l, r)
}

// OuterProduct applies op between every element of l and every element of r.
func OuterProduct(op, l, r term.Term) term.Term {
	return term.MustNode(OuterProductKind, op, l, r)
}

// InnerProduct combines l and r with lop over rop.
func InnerProduct(lop, rop, l, r term.Term) term.Term {
	return term.MustNode(InnerProductKind, lop, rop, l, r)
}

// AddFunc builds the two-parameter function (a, b -> a + b).
func AddFunc(c *rewrite.Clock) term.Term {
	return rewrite.NewFunction(c, 2, func(p ...term.Term) term.Term { return Add(p[0], p[1]) })
}

// MulFunc builds the two-parameter function (a, b -> a * b).
func MulFunc(c *rewrite.Clock) term.Term {
	return rewrite.NewFunction(c, 2, func(p ...term.Term) term.Term { return Multiply(p[0], p[1]) })
}

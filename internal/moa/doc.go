// Package moa is the array algebra rule set: shape, indexing, reduction,
// broadcasting and products over intensional arrays.
//
// An array is never a buffer. A vector of length n is
//
//	Sequence(n, getitem)
//
// where getitem is a one-argument function from an index to the element,
// itself a Sequence or a Scalar. Literal vectors use a VectorCallable as
// getitem; everything else (broadcasts, iota, unbound arrays) uses a
// symbolic function, so elements exist only once they are indexed.
//
// Laziness is the point. Calling a literal vector with a symbolic index
// yields Scalar(VectorIndexed(i, items...)), which stays put until i is
// concrete; this is what lets Shape probe an element with an anonymous variable
// and count dimensions without ever choosing a position.
//
// Register the rules on a registry (or use NewEngine) before normalizing:
//
//	e, err := moa.NewEngine(moa.Options{})
//	nf, err := e.Normalize(ctx, moa.Shape(moa.Vector(3, 4))) // Sequence(1, <2>)
package moa

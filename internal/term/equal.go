package term

import (
	"reflect"

	"github.com/cockroachdb/apd/v3"
)

// Equal reports whether a and b are structurally equal: same leaf type with
// equal contents, or nodes of the same kind with pairwise equal operands.
func Equal(a, b Term) bool {
	switch x := a.(type) {
	case Value:
		y, ok := b.(Value)
		return ok && HostEqual(x.V, y.V)
	case Unbound:
		y, ok := b.(Unbound)
		return ok && x.Name == y.Name
	case DimUnbound:
		y, ok := b.(DimUnbound)
		return ok && x.N == y.N && x.Name == y.Name
	case *Node:
		y, ok := b.(*Node)
		if !ok {
			return false
		}
		if x == y {
			return true
		}
		if x.kind.Name != y.kind.Name || len(x.operands) != len(y.operands) {
			return false
		}
		for i := range x.operands {
			if !Equal(x.operands[i], y.operands[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// EqualAll reports whether two operand runs are pairwise equal.
func EqualAll(a, b []Term) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// HostEqual compares two boxed host values. Integers and decimals compare
// numerically with each other; everything else falls back to deep equality.
func HostEqual(a, b any) bool {
	da, aNum := asDecimal(a)
	db, bNum := asDecimal(b)
	if aNum && bNum {
		return da.Cmp(db) == 0
	}
	if aNum != bNum {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// asDecimal views a numeric host value as a decimal.
func asDecimal(v any) (*apd.Decimal, bool) {
	switch x := v.(type) {
	case int64:
		return apd.New(x, 0), true
	case *apd.Decimal:
		return x, true
	}
	return nil, false
}

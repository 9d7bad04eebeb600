package term

import (
	"fmt"
	"math"

	"github.com/cockroachdb/apd/v3"
)

// decimalContext is used for all decimal arithmetic on host values.
var decimalContext = apd.BaseContext.WithPrecision(34)

// AddValues returns the host sum of l and r.
//
// Integer overflow promotes to decimal rather than wrapping. Non-numeric
// operands produce a HostError.
func AddValues(l, r Value) (Value, error) {
	a, aInt := l.V.(int64)
	b, bInt := r.V.(int64)
	if aInt && bInt {
		s := a + b
		if (s > a) == (b > 0) {
			return Int(s), nil
		}
	}
	return decimalOp("add", l, r, decimalContext.Add)
}

// MulValues returns the host product of l and r.
func MulValues(l, r Value) (Value, error) {
	a, aInt := l.V.(int64)
	b, bInt := r.V.(int64)
	if aInt && bInt && !mulOverflows(a, b) {
		return Int(a * b), nil
	}
	return decimalOp("multiply", l, r, decimalContext.Mul)
}

func mulOverflows(a, b int64) bool {
	if a == 0 || b == 0 {
		return false
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return true
	}
	p := a * b
	return p/b != a
}

func decimalOp(
	name string,
	l, r Value,
	op func(d, x, y *apd.Decimal) (apd.Condition, error),
) (Value, error) {
	x, ok := asDecimal(l.V)
	if !ok {
		return Value{}, &HostError{Op: name, Message: fmt.Sprintf("unsupported operand type %T", l.V)}
	}
	y, ok := asDecimal(r.V)
	if !ok {
		return Value{}, &HostError{Op: name, Message: fmt.Sprintf("unsupported operand type %T", r.V)}
	}
	d := new(apd.Decimal)
	if _, err := op(d, x, y); err != nil {
		return Value{}, &HostError{Op: name, Message: err.Error()}
	}
	return Value{V: d}, nil
}

// IndexOf selects items[idx] where idx must hold an integer in range.
func IndexOf(idx Value, items []Term) (Term, error) {
	i, ok := idx.Int64()
	if !ok {
		return nil, &HostError{Op: "index", Message: fmt.Sprintf("index %v is not an integer", idx.V)}
	}
	if i < 0 || i >= int64(len(items)) {
		return nil, &HostError{Op: "index", Message: fmt.Sprintf("index %d out of range [0, %d)", i, len(items))}
	}
	return items[i], nil
}

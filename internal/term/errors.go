package term

import (
	"errors"
	"fmt"
)

// ArityError is returned when a node is constructed with an operand count
// that violates its kind's declared arity.
type ArityError struct {
	Kind     string
	Want     int
	Variadic bool
	Got      int
}

// Error implements the error interface.
func (e *ArityError) Error() string {
	if e.Variadic {
		return fmt.Sprintf("%s: want at least %d operands, got %d", e.Kind, e.Want, e.Got)
	}
	return fmt.Sprintf("%s: want exactly %d operands, got %d", e.Kind, e.Want, e.Got)
}

// IsArityError returns true if the error is an ArityError.
// Uses errors.As to handle wrapped errors.
func IsArityError(err error) bool {
	var ae *ArityError
	return errors.As(err, &ae)
}

// HostError is returned when an operation on boxed host values fails:
// unsupported operand types, an invalid index, or a decimal condition.
type HostError struct {
	Op      string
	Message string
}

// Error implements the error interface.
func (e *HostError) Error() string {
	return fmt.Sprintf("host %s: %s", e.Op, e.Message)
}

// IsHostError returns true if the error is a HostError.
func IsHostError(err error) bool {
	var he *HostError
	return errors.As(err, &he)
}

package rewrite

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while registering rules or
// normalizing a term.
//
// Stuck terms and failed matches are never RuntimeErrors.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// RuleID identifies the rule involved, if any.
	RuleID string

	// Kind is the root kind of the term being rewritten, if any.
	Kind string

	// Err is the underlying cause (e.g. a term.HostError from a builder).
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeSealed indicates a rule was registered after the registry was sealed.
	ErrCodeSealed RuntimeErrorCode = "REGISTRY_SEALED"

	// ErrCodeDuplicateRule indicates two rules share an ID.
	ErrCodeDuplicateRule RuntimeErrorCode = "DUPLICATE_RULE"

	// ErrCodeInvalidRule indicates a malformed rule (bad pattern, no builder).
	ErrCodeInvalidRule RuntimeErrorCode = "INVALID_RULE"

	// ErrCodeBuildFailed indicates a replacement builder returned an error.
	ErrCodeBuildFailed RuntimeErrorCode = "BUILD_FAILED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.RuleID != "" && e.Kind != "" {
		msg = fmt.Sprintf("%s (rule=%s, kind=%s)", msg, e.RuleID, e.Kind)
	} else if e.RuleID != "" {
		msg = fmt.Sprintf("%s (rule=%s)", msg, e.RuleID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsBuildError returns true if the error came from a replacement builder.
// Uses errors.As to handle wrapped errors.
func IsBuildError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeBuildFailed
	}
	return false
}

// IsSealedError returns true if the error is a registration after sealing.
func IsSealedError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeSealed
	}
	return false
}

func newBuildError(ruleID, kind string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeBuildFailed,
		Message: "replacement builder failed",
		RuleID:  ruleID,
		Kind:    kind,
		Err:     err,
	}
}

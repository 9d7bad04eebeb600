package rewrite

import (
	"errors"
	"fmt"
)

// QuotaEnforcer counts rule firings for one Normalize call and enforces a
// maximum.
//
// The registry is assumed terminating but nothing verifies it; the quota
// turns a non-terminating rule set into an error instead of a hang.
type QuotaEnforcer struct {
	maxSteps int
	current  int
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
// A limit <= 0 disables the quota.
func NewQuotaEnforcer(maxSteps int) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check increments the step counter and validates against the limit.
// Returns StepsExceededError if the quota is exceeded.
func (q *QuotaEnforcer) Check(ruleID string) error {
	q.current++
	if q.maxSteps > 0 && q.current > q.maxSteps {
		return &StepsExceededError{
			RuleID: ruleID,
			Steps:  q.current,
			Limit:  q.maxSteps,
		}
	}
	return nil
}

// Reserve fails with StepsExceededError when n more steps would exceed the
// limit. It does not count them: the steps are counted as they fire.
func (q *QuotaEnforcer) Reserve(ruleID string, n int) error {
	if q.maxSteps > 0 && n > q.maxSteps-q.current {
		return &StepsExceededError{
			RuleID: ruleID,
			Steps:  q.current + n,
			Limit:  q.maxSteps,
		}
	}
	return nil
}

// Current returns the current step count.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxSteps returns the maximum steps limit.
func (q *QuotaEnforcer) MaxSteps() int {
	return q.maxSteps
}

// StepsExceededError is returned when normalization exceeds the max steps
// quota. RuleID is the rule whose firing crossed the limit.
type StepsExceededError struct {
	RuleID string
	Steps  int
	Limit  int
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("normalization exceeded max steps quota: %d steps > %d limit (last rule %s)",
		e.Steps, e.Limit, e.RuleID)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}

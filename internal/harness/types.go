package harness

import (
	"github.com/darkMatter00/unumpy/internal/rewrite"
	"github.com/darkMatter00/unumpy/internal/term"
)

// StepRecord is one rule firing, rendered.
type StepRecord struct {
	Seq    int    `json:"seq"`
	RuleID string `json:"rule_id"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Name is the scenario name.
	Name string `json:"name"`

	// Pass indicates overall success: every assertion held.
	Pass bool `json:"pass"`

	// Input is the rendered input term.
	Input string `json:"input"`

	// NormalForm is the rendered normal form; empty if normalization failed.
	NormalForm string `json:"normal_form,omitempty"`

	// NormalizeError is the normalization error message, if any.
	NormalizeError string `json:"normalize_error,omitempty"`

	// Trace holds the rule firings in order.
	Trace []StepRecord `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Trace:  []StepRecord{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// RuleIDs returns the fired rule IDs in order.
func (r *Result) RuleIDs() []string {
	ids := make([]string, len(r.Trace))
	for i, s := range r.Trace {
		ids[i] = s.RuleID
	}
	return ids
}

func recordSteps(steps []rewrite.Step) []StepRecord {
	out := make([]StepRecord, len(steps))
	for i, s := range steps {
		out[i] = StepRecord{
			Seq:    s.Seq,
			RuleID: s.RuleID,
			Before: term.String(s.Before),
			After:  term.String(s.After),
		}
	}
	return out
}

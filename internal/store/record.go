package store

import (
	"fmt"
	"time"

	"github.com/darkMatter00/unumpy/internal/rewrite"
	"github.com/darkMatter00/unumpy/internal/term"
)

// Run is one normalization as stored.
type Run struct {
	ID             string    `json:"id"`
	Seq            int64     `json:"seq"`
	Input          string    `json:"input"`
	InputCanonical string    `json:"input_canonical"`
	InputHash      string    `json:"input_hash"`
	NormalForm     string    `json:"normal_form,omitempty"`
	NormalFormHash string    `json:"normal_form_hash,omitempty"`
	Error          string    `json:"error,omitempty"`
	Stuck          bool      `json:"stuck"`
	StepCount      int       `json:"step_count"`
	RuleSet        string    `json:"rule_set"`
	CreatedAt      time.Time `json:"created_at"`
}

// Step is one stored rule firing.
type Step struct {
	RunID  string `json:"run_id"`
	Seq    int    `json:"seq"`
	RuleID string `json:"rule_id"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// StuckFunc reports whether a normal form still holds unreduced operations.
// What counts as reduced depends on the rule set.
type StuckFunc func(nf term.Term) bool

// NewRun builds the records for a normalization of input. Exactly one of
// nf and normErr is expected to be set. ruleSet names the rules in force
// so lookups never mix results from different rule sets; stuck classifies
// the normal form and may be nil when the rule set has no such notion.
func NewRun(id, ruleSet string, input, nf term.Term, normErr error, steps []rewrite.Step, stuck StuckFunc) (Run, []Step, error) {
	canonical, err := term.MarshalCanonical(input)
	if err != nil {
		return Run{}, nil, fmt.Errorf("new run: %w", err)
	}
	inputHash, err := term.Hash(input)
	if err != nil {
		return Run{}, nil, fmt.Errorf("new run: %w", err)
	}

	run := Run{
		ID:             id,
		Input:          term.String(input),
		InputCanonical: string(canonical),
		InputHash:      inputHash,
		StepCount:      len(steps),
		RuleSet:        ruleSet,
	}
	if normErr != nil {
		run.Error = normErr.Error()
	} else if nf != nil {
		nfHash, err := term.Hash(nf)
		if err != nil {
			return Run{}, nil, fmt.Errorf("new run: %w", err)
		}
		run.NormalForm = term.String(nf)
		run.NormalFormHash = nfHash
		run.Stuck = stuck != nil && stuck(nf)
	}

	records := make([]Step, len(steps))
	for i, s := range steps {
		records[i] = Step{
			RunID:  id,
			Seq:    s.Seq,
			RuleID: s.RuleID,
			Before: term.String(s.Before),
			After:  term.String(s.After),
		}
	}
	return run, records, nil
}

package rewrite

import "sync"

// Tracer observes rule firings.
type Tracer interface {
	Step(s Step)
}

// TracerFunc adapts a function into a Tracer.
type TracerFunc func(s Step)

// Step implements Tracer.
func (f TracerFunc) Step(s Step) {
	f(s)
}

// Recorder is a Tracer that keeps every step in firing order.
type Recorder struct {
	mu    sync.Mutex
	steps []Step
}

// Step implements Tracer.
func (r *Recorder) Step(s Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, s)
}

// Steps returns a copy of the recorded steps.
func (r *Recorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}

// RuleIDs returns the IDs of the fired rules in order.
func (r *Recorder) RuleIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.steps))
	for i, s := range r.steps {
		ids[i] = s.RuleID
	}
	return ids
}

// Fired reports whether the rule with the given ID fired at least once.
func (r *Recorder) Fired(ruleID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.steps {
		if s.RuleID == ruleID {
			return true
		}
	}
	return false
}

// Reset discards recorded steps.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = nil
}

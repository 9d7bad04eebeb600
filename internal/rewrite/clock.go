package rewrite

import (
	"strconv"
	"sync/atomic"

	"github.com/darkMatter00/unumpy/internal/term"
)

// Clock is the monotonic counter behind fresh parameter names.
//
// Every name it hands out is unique for the lifetime of the Clock, which is
// the whole capture-avoidance argument for substitution.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose next fresh name is "i<start>".
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next counter value and increments the clock.
// The first call on a new clock returns 0.
func (c *Clock) Next() int64 {
	return c.seq.Add(1) - 1
}

// Current returns how many values have been handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// FreshName returns a new, never before returned variable name.
func (c *Clock) FreshName() string {
	return "i" + strconv.FormatInt(c.Next(), 10)
}

// Fresh returns an Unbound leaf with a fresh name.
func (c *Clock) Fresh() term.Unbound {
	return term.Unbound{Name: c.FreshName()}
}

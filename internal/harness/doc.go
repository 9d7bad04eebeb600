// Package harness runs normalization scenarios against the array rule set.
//
// A scenario is a term written in the syntax package's form plus a list of
// assertions about its normal form:
//
//	name: shape-of-vector
//	description: Shape of a length-2 vector is <2>
//	term: Shape(vector(3, 4))
//	assertions:
//	  - type: normal_form
//	    expect: vector(2)
//	  - type: rule_fired
//	    rule: moa/shape-sequence
//
// Scenarios are YAML (.yaml, .yml) or CUE (.cue) files with the same fields.
//
// Each scenario runs on its own engine, so fresh parameter names start at i0
// and rendered output is reproducible. RunAll runs scenarios in parallel;
// the engines share nothing.
package harness

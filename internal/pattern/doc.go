// Package pattern implements patterns over terms and the structural matcher.
//
// A pattern mirrors a term, except that any position may hold a wildcard.
// Matching produces a binding environment (wildcard name to matched term or
// operand run) or fails silently; failure is the normal "try the next rule"
// signal and never an error.
//
// Matching is ordered and exact-position. A node pattern may contain at most
// one sequence wildcard per operand level, so span assignment is
// deterministic: the sequence takes whatever the fixed positions around it
// leave over. There is no search over splits and no AC matching.
package pattern

// Package rewrite implements the rule registry, the normalizer and the
// substitution engine used for symbolic function application.
//
// ARCHITECTURE:
//
// Registry:
// Rules are registered once at startup, in declaration order, and indexed
// loosely by the root kind of their pattern. Creating an Engine seals the
// registry; after that it is read-only and safe to share between engines
// running on different goroutines.
//
// Normalization:
//  1. Try candidate rules for the term's root, in registration order
//  2. On the first match whose constraints hold, build the replacement and
//     start again from step 1 on the result (outermost-first)
//  3. If nothing matches at the root, normalize every operand
//  4. If any operand changed, rebuild the node and go back to step 1;
//     otherwise the term is at its fixpoint and is returned as-is
//
// A term at its fixpoint that still contains unreduced structure is "stuck".
// Stuck is not an error: callers inspect the result.
//
// Freshness:
// Function parameters are Unbound leaves named from the engine's monotonic
// Clock. Names are never reused by one engine, so substitution needs no
// alpha-renaming. Terms built by one engine must not be normalized by
// another engine with an independent clock; share a Clock (WithClock) if
// they have to mix.
//
// The engine does not check termination of the registered rule set. A
// per-call step quota (WithMaxSteps) turns runaway rewriting into a
// StepsExceededError instead of a hang.
package rewrite

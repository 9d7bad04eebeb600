// Package testutil holds test helpers shared by the rewriting packages:
// term assertions with readable diffs, a quiet logger, and normalization
// that fails the test on error.
//
// It imports only term and rewrite so that any package above them can use
// it from its internal tests.
package testutil

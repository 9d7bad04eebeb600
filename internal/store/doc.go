// Package store provides SQLite-backed durable storage for normalization
// runs.
//
// The store is an append-only log with:
//   - Runs: one row per normalized input, with rendered and canonical forms
//     and content hashes of the input and its normal form
//   - Steps: the rule firings of a run, in firing order
//
// # Ordering
//
// Runs are ordered by a logical seq assigned at write time, never by
// created_at, so listings are identical across machines and clock skew.
// Steps are ordered by their firing seq within a run.
//
// # Identity
//
// Run IDs come from an IDGenerator: UUIDv7 in production (time-sortable),
// FixedGenerator in tests. Input hashes are term.Hash content addresses,
// so two runs over the same input term share an input_hash and
// LookupNormalForm can answer repeated queries without rewriting.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

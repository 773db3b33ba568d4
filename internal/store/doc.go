// Package store provides SQLite-backed history of generation runs.
//
// Each run records the digest of the rendered declaration file together with
// the printed type of every query and alias it produced. `groqgen check`
// compares a fresh run against the latest recorded one to catch
// non-deterministic output or drift after schema and query changes. The
// history is never used to skip work: every run regenerates from scratch.
//
// # Ordering
//
//   - Runs are ordered by seq INTEGER (logical clock), never by recorded_at
//   - Queries and aliases of a run are ordered by name COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

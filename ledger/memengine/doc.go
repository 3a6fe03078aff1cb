// Package memengine provides an in-memory implementation of the ledger.Store contract.
//
// All records live in maps guarded by a single mutex. A transaction works on a private copy of
// the state and swaps it in on commit, so a failing unit of work leaves no trace.
// The store is meant for tests and local development; it keeps nothing across restarts.
//
// A FaultInjector can make individual operations fail, which is how tests exercise rollback
// and per-loan failure handling without a database.
package memengine

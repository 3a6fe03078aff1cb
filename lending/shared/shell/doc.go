// Package shell connects the pure lending decisions of the core package with the ledger stores.
//
// It turns ledger events into journal entries and back, retries transactions that were rolled back
// because of a concurrency conflict, and provides the observability helpers every command and query
// handler shares (metric names, span names, log messages, status classification).
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell

// Package testdoubles provides test doubles (spies) for the observability interfaces of the ledger.
//
// This package contains spy implementations for the dependency-free observability
// interfaces used by the ledger stores and the lending features:
//   - MetricsCollectorSpy: captures metrics recording calls for verification
//   - TracingCollectorSpy: captures tracing spans and their attributes
//   - ContextualLoggerSpy: captures structured logging with context
//   - LogHandlerSpy: captures slog handler calls and attributes
//
// These test doubles make observability instrumentation testable without telemetry backends.
package testdoubles

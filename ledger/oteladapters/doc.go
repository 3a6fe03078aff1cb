// Package oteladapters provides OpenTelemetry adapters for the ledger observability interfaces.
//
// The adapters plug the stores and the lending features into an OpenTelemetry setup:
//   - MetricsCollector maps durations to histograms, counters to counters and values to gauges
//   - TracingCollector creates spans and maps ledger status strings to span status codes
//   - SlogBridgeLogger and OTelLogger implement ledger.ContextualLogger with trace correlation
package oteladapters

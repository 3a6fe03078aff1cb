// Package observable provides wrapper components for instrumenting command and query handlers
// with metrics, tracing and logging while keeping the handlers free of observability code.
//
// The wrappers are applied at wiring time, not hidden inside factory functions:
//
//	// 1. Create the handler
//	coreHandler := borrowbook.NewCommandHandler(store)
//
//	// 2. Wrap it with observability
//	handler, err := observable.NewCommandWrapper[borrowbook.Command, borrowbook.Result](
//		coreHandler,
//		observable.WithCommandMetrics[borrowbook.Command, borrowbook.Result](metricsCollector),
//		observable.WithCommandTracing[borrowbook.Command, borrowbook.Result](tracingCollector),
//		observable.WithCommandContextualLogging[borrowbook.Command, borrowbook.Result](contextualLogger),
//	)
//
// Every run is classified as success, rejected, canceled, timeout, concurrency_conflict or error.
// Rejections are business outcomes: they are counted and logged at info level, never as errors.
package observable

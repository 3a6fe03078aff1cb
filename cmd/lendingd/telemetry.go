package main

import (
	"context"

	"github.com/AntonStoeckl/lending-ledger-go/ledger/oteladapters"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/shell"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/shell/config"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/shell/observable"
)

const serviceName = "lendingd"

// telemetry bundles the OpenTelemetry adapters. The zero value means telemetry is off.
type telemetry struct {
	providers        *config.ObservabilityProviders
	metrics          *oteladapters.MetricsCollector
	tracing          *oteladapters.TracingCollector
	contextualLogger *oteladapters.SlogBridgeLogger
}

func newTelemetry(ctx context.Context, cfg serverConfig) (*telemetry, error) {
	if !cfg.otel.enabled {
		return &telemetry{}, nil
	}

	providers, err := config.NewObservabilityProviders(ctx, cfg.otel.endpoint, serviceName, appVersion)
	if err != nil {
		return nil, err
	}

	return &telemetry{
		providers:        providers,
		metrics:          oteladapters.NewMetricsCollector(providers.MeterProvider.Meter(serviceName)),
		tracing:          oteladapters.NewTracingCollector(providers.TracerProvider.Tracer(serviceName)),
		contextualLogger: oteladapters.NewSlogBridgeLogger(serviceName),
	}, nil
}

func (t *telemetry) enabled() bool {
	return t != nil && t.providers != nil
}

func (t *telemetry) shutdown(ctx context.Context) error {
	if !t.enabled() {
		return nil
	}

	return t.providers.Shutdown(ctx)
}

func (t *telemetry) storeOptions(logger shell.Logger) []postgresengine.Option {
	options := []postgresengine.Option{postgresengine.WithLogger(logger)}

	if t.enabled() {
		options = append(options,
			postgresengine.WithMetrics(t.metrics),
			postgresengine.WithTracing(t.tracing),
			postgresengine.WithContextualLogger(t.contextualLogger),
		)
	}

	return options
}

func commandOptions[C shell.Command, R shell.CommandResult](
	logger shell.Logger,
	t *telemetry,
) []observable.CommandOption[C, R] {

	options := []observable.CommandOption[C, R]{observable.WithCommandLogging[C, R](logger)}

	if t.enabled() {
		options = append(options,
			observable.WithCommandMetrics[C, R](t.metrics),
			observable.WithCommandTracing[C, R](t.tracing),
			observable.WithCommandContextualLogging[C, R](t.contextualLogger),
		)
	}

	return options
}

func queryOptions[Q shell.Query, R any](logger shell.Logger, t *telemetry) []observable.QueryOption[Q, R] {
	options := []observable.QueryOption[Q, R]{observable.WithQueryLogging[Q, R](logger)}

	if t.enabled() {
		options = append(options,
			observable.WithQueryMetrics[Q, R](t.metrics),
			observable.WithQueryTracing[Q, R](t.tracing),
			observable.WithQueryContextualLogging[Q, R](t.contextualLogger),
		)
	}

	return options
}

package lendingstats

import (
	"context"
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	QueryStats(ctx context.Context, asOf time.Time) (ledger.LendingStats, error)
}

// QueryHandler reads the dashboard counters.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler with the provided Store dependency.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{
		store: store,
	}
}

// Handle executes the query.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Stats, error) {
	stats, err := h.store.QueryStats(ledger.WithEventualConsistency(ctx), query.AsOf)
	if err != nil {
		return Stats{}, err
	}

	return Stats{LendingStats: stats, AsOf: query.AsOf}, nil
}

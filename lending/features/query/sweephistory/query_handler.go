package sweephistory

import (
	"context"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	QuerySweepRuns(ctx context.Context, limit int) (ledger.SweepRuns, error)
}

// QueryHandler reads the sweep run log.
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
func (h QueryHandler) Handle(ctx context.Context, query Query) (SweepHistory, error) {
	runs, err := h.store.QuerySweepRuns(ledger.WithEventualConsistency(ctx), ledger.NormalizeQueryLimit(query.Limit))
	if err != nil {
		return SweepHistory{}, err
	}

	return SweepHistory{Runs: runs, Count: len(runs)}, nil
}

package loansearch

import (
	"context"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	QueryAll(ctx context.Context, filter ledger.LoanFilter, limit int) (ledger.Loans, error)
}

// QueryHandler runs loan searches against the store.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler with the provided Store dependency.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{
		store: store,
	}
}

// Handle executes the search.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Loans, error) {
	ctx = ledger.WithEventualConsistency(ctx)
	limit := ledger.NormalizeQueryLimit(query.Limit)

	loans, err := h.store.QueryAll(ctx, query.Filter(), limit)
	if err != nil {
		return Loans{}, err
	}

	return Loans{
		Loans: loans,
		Count: len(loans),
		Limit: limit,
	}, nil
}

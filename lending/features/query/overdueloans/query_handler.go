package overdueloans

import (
	"context"
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	QueryActiveLoans(ctx context.Context, asOf time.Time) (ledger.Loans, error)
}

// QueryHandler orchestrates the query processing workflow: Query -> Project.
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
func (h QueryHandler) Handle(ctx context.Context, query Query) (OverdueLoans, error) {
	// Listing overdue loans tolerates a replica that is slightly behind
	ctx = ledger.WithEventualConsistency(ctx)

	loans, err := h.store.QueryActiveLoans(ctx, query.AsOf)
	if err != nil {
		return OverdueLoans{}, err
	}

	return Project(loans, query), nil
}

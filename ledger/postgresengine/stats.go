package postgresengine

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine/internal/adapters"
)

func (s Store) queryStats(ctx context.Context, q adapters.DBQuerier, asOf time.Time) (ledger.LendingStats, error) {
	booksQuery, _, err := s.builder().
		From(s.tables.books).
		Select(
			goqu.COUNT(goqu.Star()),
			goqu.COALESCE(goqu.SUM(goqu.C(colAvailableStock)), 0),
		).
		ToSQL()
	if err != nil {
		return ledger.LendingStats{}, s.buildError(ctx, err)
	}

	isOpen := goqu.C(colStatus).In(openStatusValues()...)

	loansQuery, _, err := s.builder().
		From(s.tables.loans).
		Select(
			goqu.COUNT(goqu.Star()),
			goqu.COALESCE(goqu.SUM(goqu.Case().When(isOpen, 1).Else(0)), 0),
			goqu.COALESCE(goqu.SUM(goqu.Case().When(goqu.And(isOpen, goqu.C(colDueDate).Lt(asOf)), 1).Else(0)), 0),
			goqu.L("COALESCE(SUM("+colFine+"), 0)::text"),
		).
		ToSQL()
	if err != nil {
		return ledger.LendingStats{}, s.buildError(ctx, err)
	}

	var (
		totalBooks, availableCopies         int64
		totalLoans, openLoans, overdueLoans int64
		totalFines                          string
	)

	err = s.queryRows(ctx, q, booksQuery, func(rows adapters.DBRows) error {
		return rows.Scan(&totalBooks, &availableCopies)
	})
	if err != nil {
		return ledger.LendingStats{}, err
	}

	err = s.queryRows(ctx, q, loansQuery, func(rows adapters.DBRows) error {
		return rows.Scan(&totalLoans, &openLoans, &overdueLoans, &totalFines)
	})
	if err != nil {
		return ledger.LendingStats{}, err
	}

	fines, err := decimal.NewFromString(totalFines)
	if err != nil {
		return ledger.LendingStats{}, s.dbError(ctx, logMsgScanRowFailed, ledger.ErrScanningDBRowFailed, err)
	}

	return ledger.LendingStats{
		TotalBooks:      int(totalBooks),
		AvailableCopies: int(availableCopies),
		TotalLoans:      int(totalLoans),
		OpenLoans:       int(openLoans),
		OverdueLoans:    int(overdueLoans),
		TotalFines:      fines,
	}, nil
}

func (s Store) queryStockDrift(ctx context.Context, q adapters.DBQuerier) ([]ledger.StockDrift, error) {
	openLoans := s.builder().
		From(s.tables.loans).
		Select(goqu.C(colBookID), goqu.COUNT(goqu.Star()).As(aliasOpenLoanCount)).
		Where(goqu.C(colStatus).In(openStatusValues()...)).
		GroupBy(goqu.C(colBookID))

	openLoanCount := goqu.COALESCE(goqu.T(aliasOpenLoans).Col(aliasOpenLoanCount), 0)

	sqlQuery, _, err := s.builder().
		From(goqu.T(s.tables.books).As(aliasBooks)).
		LeftJoin(
			openLoans.As(aliasOpenLoans),
			goqu.On(goqu.T(aliasOpenLoans).Col(colBookID).Eq(goqu.T(aliasBooks).Col(colID))),
		).
		Select(
			goqu.T(aliasBooks).Col(colID),
			goqu.T(aliasBooks).Col(colAvailableStock),
			openLoanCount,
			goqu.T(aliasBooks).Col(colTotalCopies),
		).
		Where(goqu.L(
			"? + ? <> ?",
			goqu.T(aliasBooks).Col(colAvailableStock),
			openLoanCount,
			goqu.T(aliasBooks).Col(colTotalCopies),
		)).
		Order(goqu.T(aliasBooks).Col(colID).Asc()).
		ToSQL()
	if err != nil {
		return nil, s.buildError(ctx, err)
	}

	drifts := make([]ledger.StockDrift, 0)

	err = s.queryRows(ctx, q, sqlQuery, func(rows adapters.DBRows) error {
		var (
			drift                             ledger.StockDrift
			availableStock, open, totalCopies int64
		)

		if err := rows.Scan(&drift.BookID, &availableStock, &open, &totalCopies); err != nil {
			return err
		}

		drift.AvailableStock = int(availableStock)
		drift.OpenLoans = int(open)
		drift.TotalCopies = int(totalCopies)
		drifts = append(drifts, drift)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return drifts, nil
}

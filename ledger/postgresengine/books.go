package postgresengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine/internal/adapters"
)

func (s Store) getBook(ctx context.Context, q adapters.DBQuerier, id ledger.BookID, forUpdate bool) (ledger.Book, error) {
	ds := s.builder().
		From(s.tables.books).
		Select(colID, colTitle, colAuthor, colAvailableStock, colTotalCopies).
		Where(goqu.C(colID).Eq(id))

	if forUpdate {
		ds = ds.ForUpdate(exp.Wait)
	}

	sqlQuery, _, err := ds.ToSQL()
	if err != nil {
		return ledger.Book{}, s.buildError(ctx, err)
	}

	var book ledger.Book
	found := false

	err = s.queryRows(ctx, q, sqlQuery, func(rows adapters.DBRows) error {
		var availableStock, totalCopies int64

		if err := rows.Scan(&book.ID, &book.Title, &book.Author, &availableStock, &totalCopies); err != nil {
			return err
		}

		book.AvailableStock = int(availableStock)
		book.TotalCopies = int(totalCopies)
		found = true

		return nil
	})
	if err != nil {
		return ledger.Book{}, err
	}

	if !found {
		return ledger.Book{}, ledger.ErrBookNotFound
	}

	return book, nil
}

// incrementStock is a single conditional statement, so concurrent decrements can never take the stock below zero.
func (s Store) incrementStock(ctx context.Context, q adapters.DBQuerier, id ledger.BookID, delta int) error {
	sqlQuery, _, err := s.builder().
		Update(s.tables.books).
		Set(goqu.Record{colAvailableStock: goqu.L(colAvailableStock+" + ?", delta)}).
		Where(
			goqu.C(colID).Eq(id),
			goqu.L(colAvailableStock+" + ? >= 0", delta),
		).
		ToSQL()
	if err != nil {
		return s.buildError(ctx, err)
	}

	rowsAffected, err := s.exec(ctx, q, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 1 {
		return nil
	}

	if _, err = s.getBook(ctx, q, id, false); err != nil {
		return err
	}

	return ledger.ErrStockWouldGoNegative
}

func (s Store) putBook(ctx context.Context, q adapters.DBQuerier, book ledger.Book) error {
	sqlQuery, _, err := s.builder().
		Insert(s.tables.books).
		Rows(goqu.Record{
			colID:             book.ID,
			colTitle:          book.Title,
			colAuthor:         book.Author,
			colAvailableStock: book.AvailableStock,
			colTotalCopies:    book.TotalCopies,
		}).
		OnConflict(goqu.DoUpdate(colID, goqu.Record{
			colTitle:          goqu.L("EXCLUDED." + colTitle),
			colAuthor:         goqu.L("EXCLUDED." + colAuthor),
			colAvailableStock: goqu.L("EXCLUDED." + colAvailableStock),
			colTotalCopies:    goqu.L("EXCLUDED." + colTotalCopies),
		})).
		ToSQL()
	if err != nil {
		return s.buildError(ctx, err)
	}

	_, err = s.exec(ctx, q, sqlQuery)

	return err
}

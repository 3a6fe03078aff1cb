package postgresengine

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine/internal/adapters"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func loanColumns() []any {
	return []any{
		colID,
		colBookID,
		colBorrowerName,
		colBorrowerEmail,
		colBorrowerPhone,
		colNotes,
		colBookTitle,
		colBookAuthor,
		colBorrowDate,
		colDueDate,
		colReturnDate,
		colStatus,
		goqu.L(fineAsText),
		colDaysOverdue,
		colLastRecalculatedAt,
	}
}

func scanLoan(rows adapters.DBRows) (ledger.Loan, error) {
	var (
		loan               ledger.Loan
		status             string
		fine               string
		daysOverdue        int64
		returnDate         sql.NullTime
		lastRecalculatedAt sql.NullTime
	)

	err := rows.Scan(
		&loan.ID,
		&loan.BookID,
		&loan.BorrowerName,
		&loan.BorrowerEmail,
		&loan.BorrowerPhone,
		&loan.Notes,
		&loan.BookTitle,
		&loan.BookAuthor,
		&loan.BorrowDate,
		&loan.DueDate,
		&returnDate,
		&status,
		&fine,
		&daysOverdue,
		&lastRecalculatedAt,
	)
	if err != nil {
		return ledger.Loan{}, err
	}

	loan.Fine, err = decimal.NewFromString(fine)
	if err != nil {
		return ledger.Loan{}, err
	}

	loan.Status = ledger.LoanStatus(status)
	loan.DaysOverdue = int(daysOverdue)
	loan.BorrowDate = loan.BorrowDate.UTC()
	loan.DueDate = loan.DueDate.UTC()
	loan.ReturnDate = timeFromNull(returnDate)
	loan.LastRecalculatedAt = timeFromNull(lastRecalculatedAt)

	return loan, nil
}

func (s Store) insertLoan(ctx context.Context, q adapters.DBQuerier, loan ledger.Loan) error {
	sqlQuery, _, err := s.builder().
		Insert(s.tables.loans).
		Rows(goqu.Record{
			colID:                 loan.ID,
			colBookID:             loan.BookID,
			colBorrowerName:       loan.BorrowerName,
			colBorrowerEmail:      loan.BorrowerEmail,
			colBorrowerPhone:      loan.BorrowerPhone,
			colNotes:              loan.Notes,
			colBookTitle:          loan.BookTitle,
			colBookAuthor:         loan.BookAuthor,
			colBorrowDate:         loan.BorrowDate,
			colDueDate:            loan.DueDate,
			colReturnDate:         nullableTime(loan.ReturnDate),
			colStatus:             string(loan.Status),
			colFine:               goqu.L(castNumeric, loan.Fine.String()),
			colDaysOverdue:        loan.DaysOverdue,
			colLastRecalculatedAt: nullableTime(loan.LastRecalculatedAt),
		}).
		ToSQL()
	if err != nil {
		return s.buildError(ctx, err)
	}

	_, err = s.exec(ctx, q, sqlQuery)

	return err
}

func (s Store) getLoan(ctx context.Context, q adapters.DBQuerier, id ledger.LoanID, forUpdate bool) (ledger.Loan, error) {
	ds := s.builder().
		From(s.tables.loans).
		Select(loanColumns()...).
		Where(goqu.C(colID).Eq(id))

	if forUpdate {
		ds = ds.ForUpdate(exp.Wait)
	}

	loans, err := s.selectLoans(ctx, q, ds)
	if err != nil {
		return ledger.Loan{}, err
	}

	if len(loans) == 0 {
		return ledger.Loan{}, ledger.ErrLoanNotFound
	}

	return loans[0], nil
}

// updateLoan carries the update's status condition in the WHERE clause, so the check and the write are one statement.
func (s Store) updateLoan(ctx context.Context, q adapters.DBQuerier, id ledger.LoanID, update ledger.LoanUpdate) (bool, error) {
	conditions := []exp.Expression{goqu.C(colID).Eq(id)}
	if len(update.OnlyIfStatusIn) > 0 {
		conditions = append(conditions, goqu.C(colStatus).In(statusValues(update.OnlyIfStatusIn)...))
	}

	if update.IsEmpty() {
		loans, err := s.selectLoans(ctx, q, s.builder().From(s.tables.loans).Select(loanColumns()...).Where(conditions...))
		return len(loans) == 1, err
	}

	sqlQuery, _, err := s.builder().
		Update(s.tables.loans).
		Set(loanUpdateRecord(update)).
		Where(conditions...).
		ToSQL()
	if err != nil {
		return false, s.buildError(ctx, err)
	}

	rowsAffected, err := s.exec(ctx, q, sqlQuery)
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

func loanUpdateRecord(update ledger.LoanUpdate) goqu.Record {
	record := goqu.Record{}

	if update.Status != "" {
		record[colStatus] = string(update.Status)
	}

	if update.Fine != nil {
		record[colFine] = goqu.L(castNumeric, update.Fine.String())
	}

	if update.DaysOverdue != nil {
		record[colDaysOverdue] = *update.DaysOverdue
	}

	if !update.ReturnDate.IsZero() {
		record[colReturnDate] = update.ReturnDate
	}

	if update.Notes != nil {
		record[colNotes] = *update.Notes
	}

	if !update.LastRecalculatedAt.IsZero() {
		record[colLastRecalculatedAt] = update.LastRecalculatedAt
	}

	return record
}

func (s Store) queryActiveLoans(ctx context.Context, q adapters.DBQuerier, asOf time.Time) (ledger.Loans, error) {
	ds := s.builder().
		From(s.tables.loans).
		Select(loanColumns()...).
		Where(
			goqu.C(colDueDate).Lt(asOf),
			goqu.C(colStatus).In(openStatusValues()...),
		).
		Order(goqu.C(colDueDate).Asc(), goqu.C(colID).Asc())

	return s.selectLoans(ctx, q, ds)
}

func (s Store) queryAll(ctx context.Context, q adapters.DBQuerier, filter ledger.LoanFilter, limit int) (ledger.Loans, error) {
	ds := s.builder().
		From(s.tables.loans).
		Select(loanColumns()...).
		Order(goqu.C(colBorrowDate).Desc(), goqu.C(colID).Asc()).
		Limit(uint(ledger.NormalizeQueryLimit(limit)))

	if statuses := filter.Statuses(); len(statuses) > 0 {
		ds = ds.Where(goqu.C(colStatus).In(statusValues(statuses)...))
	}

	if bookID := filter.BookID(); bookID != "" {
		ds = ds.Where(goqu.C(colBookID).Eq(bookID))
	}

	if email := filter.BorrowerEmail(); email != "" {
		ds = ds.Where(goqu.Func("LOWER", goqu.C(colBorrowerEmail)).Eq(strings.ToLower(email)))
	}

	if search := filter.Search(); search != "" {
		pattern := "%" + likeEscaper.Replace(search) + "%"
		ds = ds.Where(goqu.Or(
			goqu.C(colBorrowerName).ILike(pattern),
			goqu.C(colBorrowerEmail).ILike(pattern),
			goqu.C(colBookTitle).ILike(pattern),
		))
	}

	return s.selectLoans(ctx, q, ds)
}

func (s Store) selectLoans(ctx context.Context, q adapters.DBQuerier, ds *goqu.SelectDataset) (ledger.Loans, error) {
	sqlQuery, _, err := ds.ToSQL()
	if err != nil {
		return nil, s.buildError(ctx, err)
	}

	loans := make(ledger.Loans, 0)

	err = s.queryRows(ctx, q, sqlQuery, func(rows adapters.DBRows) error {
		loan, err := scanLoan(rows)
		if err != nil {
			return err
		}

		loans = append(loans, loan)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return loans, nil
}

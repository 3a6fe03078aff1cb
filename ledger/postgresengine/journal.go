package postgresengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine/internal/adapters"
)

func (s Store) appendLedgerEntry(ctx context.Context, q adapters.DBQuerier, entry ledger.LedgerEntry) error {
	sqlQuery, _, err := s.builder().
		Insert(s.tables.ledgerEntries).
		Rows(goqu.Record{
			colEntryType:  entry.EntryType,
			colLoanID:     entry.LoanID,
			colBookID:     entry.BookID,
			colOccurredAt: entry.OccurredAt,
			colPayload:    goqu.L(castJsonb, string(entry.PayloadJSON)),
			colMetadata:   goqu.L(castJsonb, string(entry.MetadataJSON)),
		}).
		ToSQL()
	if err != nil {
		return s.buildError(ctx, err)
	}

	_, err = s.exec(ctx, q, sqlQuery)

	return err
}

func (s Store) queryLedgerEntries(ctx context.Context, q adapters.DBQuerier, loanID ledger.LoanID) (ledger.LedgerEntries, error) {
	sqlQuery, _, err := s.builder().
		From(s.tables.ledgerEntries).
		Select(colSequenceNumber, colEntryType, colLoanID, colBookID, colOccurredAt, colPayload, colMetadata).
		Where(goqu.C(colLoanID).Eq(loanID)).
		Order(goqu.C(colSequenceNumber).Asc()).
		ToSQL()
	if err != nil {
		return nil, s.buildError(ctx, err)
	}

	entries := make(ledger.LedgerEntries, 0)

	err = s.queryRows(ctx, q, sqlQuery, func(rows adapters.DBRows) error {
		var (
			entry          ledger.LedgerEntry
			sequenceNumber int64
		)

		err := rows.Scan(
			&sequenceNumber,
			&entry.EntryType,
			&entry.LoanID,
			&entry.BookID,
			&entry.OccurredAt,
			&entry.PayloadJSON,
			&entry.MetadataJSON,
		)
		if err != nil {
			return err
		}

		entry.SequenceNumber = uint(sequenceNumber)
		entry.OccurredAt = entry.OccurredAt.UTC()
		entries = append(entries, entry)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (s Store) recordSweepRun(ctx context.Context, q adapters.DBQuerier, run ledger.SweepRun) error {
	sqlQuery, _, err := s.builder().
		Insert(s.tables.sweepRuns).
		Rows(goqu.Record{
			colRanAt:        run.RanAt,
			colUpdatedCount: run.UpdatedCount,
			colFailedCount:  run.FailedCount,
			colFinePerDay:   goqu.L(castNumeric, run.FinePerDay.String()),
			colTriggerType:  string(run.Trigger),
		}).
		ToSQL()
	if err != nil {
		return s.buildError(ctx, err)
	}

	_, err = s.exec(ctx, q, sqlQuery)

	return err
}

func (s Store) querySweepRuns(ctx context.Context, q adapters.DBQuerier, limit int) (ledger.SweepRuns, error) {
	sqlQuery, _, err := s.builder().
		From(s.tables.sweepRuns).
		Select(colRanAt, colUpdatedCount, colFailedCount, goqu.L(finePerDayAsText), colTriggerType).
		Order(goqu.C(colRanAt).Desc(), goqu.C(colID).Desc()).
		Limit(uint(ledger.NormalizeQueryLimit(limit))).
		ToSQL()
	if err != nil {
		return nil, s.buildError(ctx, err)
	}

	runs := make(ledger.SweepRuns, 0)

	err = s.queryRows(ctx, q, sqlQuery, func(rows adapters.DBRows) error {
		var (
			run                       ledger.SweepRun
			updatedCount, failedCount int64
			finePerDay, trigger       string
		)

		if err := rows.Scan(&run.RanAt, &updatedCount, &failedCount, &finePerDay, &trigger); err != nil {
			return err
		}

		rate, err := decimal.NewFromString(finePerDay)
		if err != nil {
			return err
		}

		run.RanAt = run.RanAt.UTC()
		run.UpdatedCount = int(updatedCount)
		run.FailedCount = int(failedCount)
		run.FinePerDay = rate
		run.Trigger = ledger.SweepTrigger(trigger)
		runs = append(runs, run)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return runs, nil
}

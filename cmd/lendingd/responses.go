package main

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/query/lendingstats"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/query/loanjournal"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/query/overdueloans"
)

type loanResponse struct {
	ID                 string          `json:"id"`
	BookID             string          `json:"bookId"`
	BookTitle          string          `json:"bookTitle"`
	BookAuthor         string          `json:"bookAuthor"`
	BorrowerName       string          `json:"borrowerName"`
	BorrowerEmail      string          `json:"borrowerEmail"`
	BorrowerPhone      string          `json:"borrowerPhone,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	BorrowDate         time.Time       `json:"borrowDate"`
	DueDate            time.Time       `json:"dueDate"`
	ReturnDate         *time.Time      `json:"returnDate"`
	Status             string          `json:"status"`
	Fine               decimal.Decimal `json:"fine"`
	DaysOverdue        int             `json:"daysOverdue"`
	LastRecalculatedAt *time.Time      `json:"lastRecalculatedAt,omitempty"`
}

type overdueLoanResponse struct {
	loanResponse
	FineDisplay string `json:"fineDisplay"`
}

type statsResponse struct {
	TotalBooks        int             `json:"totalBooks"`
	AvailableBooks    int             `json:"availableBooks"`
	TotalBorrowed     int             `json:"totalBorrowed"`
	CurrentlyBorrowed int             `json:"currentlyBorrowed"`
	OverdueBooks      int             `json:"overdueBooks"`
	TotalFines        decimal.Decimal `json:"totalFines"`
	AsOf              time.Time       `json:"asOf"`
}

type journalEntryResponse struct {
	SequenceNumber uint      `json:"sequenceNumber"`
	EntryType      string    `json:"entryType"`
	OccurredAt     time.Time `json:"occurredAt"`
	Payload        any       `json:"payload"`
	Metadata       struct {
		MessageID     string `json:"messageId"`
		CausationID   string `json:"causationId"`
		CorrelationID string `json:"correlationId"`
	} `json:"metadata"`
}

type sweepRunResponse struct {
	RanAt        time.Time       `json:"ranAt"`
	UpdatedCount int             `json:"updatedCount"`
	FailedCount  int             `json:"failedCount"`
	FinePerDay   decimal.Decimal `json:"finePerDay"`
	Trigger      string          `json:"trigger"`
}

type stockDriftResponse struct {
	BookID         string `json:"bookId"`
	AvailableStock int    `json:"availableStock"`
	OpenLoans      int    `json:"openLoans"`
	TotalCopies    int    `json:"totalCopies"`
	ExpectedStock  int    `json:"expectedStock"`
}

type bookResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	AvailableStock int    `json:"availableStock"`
	TotalCopies    int    `json:"totalCopies"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}

func toLoanResponse(loan ledger.Loan) loanResponse {
	return loanResponse{
		ID:                 loan.ID,
		BookID:             loan.BookID,
		BookTitle:          loan.BookTitle,
		BookAuthor:         loan.BookAuthor,
		BorrowerName:       loan.BorrowerName,
		BorrowerEmail:      loan.BorrowerEmail,
		BorrowerPhone:      loan.BorrowerPhone,
		Notes:              loan.Notes,
		BorrowDate:         loan.BorrowDate,
		DueDate:            loan.DueDate,
		ReturnDate:         optionalTime(loan.ReturnDate),
		Status:             loan.Status.String(),
		Fine:               loan.Fine,
		DaysOverdue:        loan.DaysOverdue,
		LastRecalculatedAt: optionalTime(loan.LastRecalculatedAt),
	}
}

func toLoanResponses(loans ledger.Loans) []loanResponse {
	responses := make([]loanResponse, 0, len(loans))
	for _, loan := range loans {
		responses = append(responses, toLoanResponse(loan))
	}

	return responses
}

func toOverdueLoanResponses(loans []overdueloans.OverdueLoan) []overdueLoanResponse {
	responses := make([]overdueLoanResponse, 0, len(loans))
	for _, loan := range loans {
		response := overdueLoanResponse{loanResponse: toLoanResponse(loan.Loan), FineDisplay: loan.Fine.StringFixed(2)}
		response.DaysOverdue = loan.DaysOverdue
		responses = append(responses, response)
	}

	return responses
}

func toStatsResponse(stats lendingstats.Stats) statsResponse {
	return statsResponse{
		TotalBooks:        stats.TotalBooks,
		AvailableBooks:    stats.AvailableCopies,
		TotalBorrowed:     stats.TotalLoans,
		CurrentlyBorrowed: stats.OpenLoans,
		OverdueBooks:      stats.OverdueLoans,
		TotalFines:        stats.TotalFines,
		AsOf:              stats.AsOf,
	}
}

func toJournalEntryResponses(entries []loanjournal.JournalEntry) []journalEntryResponse {
	responses := make([]journalEntryResponse, 0, len(entries))
	for _, entry := range entries {
		response := journalEntryResponse{
			SequenceNumber: entry.SequenceNumber,
			EntryType:      entry.EntryType,
			OccurredAt:     entry.OccurredAt,
			Payload:        entry.Event,
		}
		response.Metadata.MessageID = entry.Metadata.MessageID
		response.Metadata.CausationID = entry.Metadata.CausationID
		response.Metadata.CorrelationID = entry.Metadata.CorrelationID

		responses = append(responses, response)
	}

	return responses
}

func toSweepRunResponses(runs ledger.SweepRuns) []sweepRunResponse {
	responses := make([]sweepRunResponse, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, sweepRunResponse{
			RanAt:        run.RanAt,
			UpdatedCount: run.UpdatedCount,
			FailedCount:  run.FailedCount,
			FinePerDay:   run.FinePerDay,
			Trigger:      string(run.Trigger),
		})
	}

	return responses
}

func toStockDriftResponses(drifts []ledger.StockDrift) []stockDriftResponse {
	responses := make([]stockDriftResponse, 0, len(drifts))
	for _, drift := range drifts {
		responses = append(responses, stockDriftResponse{
			BookID:         drift.BookID,
			AvailableStock: drift.AvailableStock,
			OpenLoans:      drift.OpenLoans,
			TotalCopies:    drift.TotalCopies,
			ExpectedStock:  drift.ExpectedStock(),
		})
	}

	return responses
}

func toBookResponse(book ledger.Book) bookResponse {
	return bookResponse{
		ID:             book.ID,
		Title:          book.Title,
		Author:         book.Author,
		AvailableStock: book.AvailableStock,
		TotalCopies:    book.TotalCopies,
	}
}

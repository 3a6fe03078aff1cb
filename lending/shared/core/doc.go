// Package core contains the pure decision helpers and ledger event payloads of the lending ledger.
//
// Ledger events describe what happened to a loan in business terms (BookCopyLent, BookCopyReturned)
// instead of generic create/update operations. They are journaled next to the loan and stock changes
// they describe, in the same transaction.
//
// Nothing in this package performs I/O. Feature slices use DecisionResult to express the outcome
// of their pure decide functions and leave all storage work to the shell.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core

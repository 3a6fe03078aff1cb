// Package returnbook closes a loan when the borrower brings the copy back.
//
// The loan keeps the fine it had accrued unless the desk overrides it. The status write is
// conditional on the loan still being open, so of two concurrent returns of the same loan exactly
// one succeeds and the stock is incremented once.
package returnbook

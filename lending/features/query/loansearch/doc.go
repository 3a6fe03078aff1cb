// Package loansearch lists loans matching a search term and a status filter, newest borrow first.
//
// The search term matches case-insensitively anywhere in the borrower name, the borrower email or the book title.
package loansearch

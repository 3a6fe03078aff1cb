// Package borrowbook lends a copy of a book to a borrower.
//
// The fields of the command are validated first, in a fixed order: required fields, email shape,
// due date in the future. Only a valid command touches the store. Inside one transaction the handler
// locks the book, decides, decrements the stock, inserts the loan and journals a BookCopyLent entry.
// Either all of these writes commit or none does.
package borrowbook

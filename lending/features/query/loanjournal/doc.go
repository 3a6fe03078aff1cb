// Package loanjournal reads the journal of one loan: the BookCopyLent entry of the borrow and, once
// returned, the BookCopyReturned entry, each mapped back to its typed event with its metadata.
package loanjournal

// Package reconcilestock detects and optionally repairs stock drift.
//
// A book drifts when its available stock plus its open loans no longer add up to its total copies,
// for example after a commit whose outcome was lost with the connection. In report mode the handler
// only lists the drifting books. In repair mode every drifting book is corrected in its own transaction,
// against a fresh count of its open loans taken while the book is locked.
package reconcilestock

// Package fixtures provides given-steps for lending tests: an in-memory store, books with stock and
// loans opened through the real borrow handler.
package fixtures

// doc.go — Package documentation for outcome resolution.

// Package outcome decides which of several mutually exclusive asynchronous
// signals appeared first after a UI action: a failing background request, a
// rendered results table, or a rendered "no data" message.
//
// Resolution is single-threaded cooperative polling. Each iteration checks the
// network error source first, then the table, then the no-data message, and
// sleeps a fixed interval between iterations. A failing request that lands in
// the same window as a rendered table therefore wins. Predicate errors are
// treated as "not yet true"; only the overall timeout is a hard failure.
package outcome

// doc.go — Package documentation for page-index based result collection.

// Package pagination exhaustively collects a result set from a page-based API
// whose total size is unknown in advance.
//
// Collection stops on the first of:
//   - an empty page (no more data)
//   - a page whose leading key was already collected (the backend clamped
//     an out-of-range index back to a page already seen)
//   - a short page (fewer items than the page size)
//
// A hard ceiling on fetches turns a backend that never terminates into a loud
// *GuardError instead of an infinite loop.
//
// HTTPFetcher adapts a JSON endpoint of the form GET base?page=i&size=n.
package pagination

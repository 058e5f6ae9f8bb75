// status.go — Allow-list of HTTP status codes that never count as failures.
package triage

import (
	"net/http"
	"sort"
)

// StatusSet is an allow-list of HTTP status codes.
type StatusSet map[int]struct{}

// DefaultAllowedStatuses returns the conventional success codes: 200 and 304.
// Redirects and every other code are failures unless explicitly allowed.
func DefaultAllowedStatuses() StatusSet {
	return NewStatusSet(http.StatusOK, http.StatusNotModified)
}

// NewStatusSet builds a StatusSet from codes.
func NewStatusSet(codes ...int) StatusSet {
	s := make(StatusSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Contains reports whether code is allowed.
func (s StatusSet) Contains(code int) bool {
	_, ok := s[code]
	return ok
}

// Codes returns the allowed codes in ascending order.
func (s StatusSet) Codes() []int {
	codes := make([]int, 0, len(s))
	for c := range s {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

// watch.go — ArmedWatch: one monitoring session with a single-slot capture.
// Thread-safe: the capture slot is a set-once atomic pointer; the request
// registry has its own mutex.
package triage

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dev-console/triage/internal/types"
)

// maxTrackedRequests bounds the registry of in-flight requests per watch.
const maxTrackedRequests = 4096

// ArmedWatch is one arming cycle: a pattern, the instant matching began, and
// the first failure captured since then.
type ArmedWatch struct {
	ID      string
	Pattern Pattern
	ArmedAt time.Time

	captured atomic.Pointer[types.NetworkErrorEvent]

	mu       sync.Mutex
	requests map[string]trackedRequest // matching requests sent since ArmedAt
	overflow bool                      // registry hit maxTrackedRequests at least once
}

type trackedRequest struct {
	url    string
	method string
}

func newArmedWatch(p Pattern, armedAt time.Time) *ArmedWatch {
	return &ArmedWatch{
		ID:       uuid.NewString(),
		Pattern:  p,
		ArmedAt:  armedAt,
		requests: make(map[string]trackedRequest),
	}
}

// FirstError returns the captured failure, if any.
func (w *ArmedWatch) FirstError() (types.NetworkErrorEvent, bool) {
	ev := w.captured.Load()
	if ev == nil {
		return types.NetworkErrorEvent{}, false
	}
	return *ev, true
}

// capture stores ev unless a failure was already captured.
// Returns true if ev became the captured failure.
func (w *ArmedWatch) capture(ev types.NetworkErrorEvent) bool {
	return w.captured.CompareAndSwap(nil, &ev)
}

type trackResult int

const (
	trackSkipped trackResult = iota // predates the watch, no match, or dropped
	trackAdded
	trackFull // first request dropped because the registry is full
)

// track registers a request sent after arming. Only the first request dropped
// for a full registry reports trackFull; later drops report trackSkipped.
func (w *ArmedWatch) track(id, url, method string, sentAt time.Time) trackResult {
	if id == "" || sentAt.Before(w.ArmedAt) || !w.Pattern.Match(url) {
		return trackSkipped
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.requests[id]; !ok && len(w.requests) >= maxTrackedRequests {
		if w.overflow {
			return trackSkipped
		}
		w.overflow = true
		return trackFull
	}
	w.requests[id] = trackedRequest{url: url, method: method}
	return trackAdded
}

// take removes and returns a tracked request.
func (w *ArmedWatch) take(id string) (trackedRequest, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	req, ok := w.requests[id]
	if ok {
		delete(w.requests, id)
	}
	return req, ok
}

// pending returns the number of tracked requests without a response yet.
func (w *ArmedWatch) pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.requests)
}

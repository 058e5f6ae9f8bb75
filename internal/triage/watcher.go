// watcher.go — Matching core shared by every monitor implementation.
// Event sources feed ObserveRequest/ObserveResponse/ObserveFailure; callers
// drive Clear/Arm/FirstError. Readers never mutate the captured failure.
package triage

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dev-console/triage/internal/buffers"
	"github.com/dev-console/triage/internal/types"
)

// Watcher owns the current ArmedWatch and classifies observed traffic.
type Watcher struct {
	allowed StatusSet
	log     zerolog.Logger
	now     func() time.Time

	mu    sync.RWMutex
	watch *ArmedWatch // nil when cleared or never armed

	traffic *buffers.RingBuffer[types.NetworkResponse]
}

// trafficLogSize bounds the recent-traffic diagnostics kept per Watcher.
const trafficLogSize = 50

// Option configures a Watcher.
type Option func(*Watcher)

// WithAllowedStatuses adds codes to the allow-list. 200 and 304 stay allowed.
func WithAllowedStatuses(codes ...int) Option {
	return func(w *Watcher) { w.allowed = NewStatusSet(append(DefaultAllowedStatuses().Codes(), codes...)...) }
}

// WithLogger sets the logger used for arming and capture events.
func WithLogger(log zerolog.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// WithClock overrides the time source used to stamp ArmedAt.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) { w.now = now }
}

// NewWatcher creates an unarmed Watcher.
func NewWatcher(opts ...Option) *Watcher {
	w := &Watcher{
		allowed: DefaultAllowedStatuses(),
		log:     zerolog.Nop(),
		now:     time.Now,
		traffic: buffers.NewRingBuffer[types.NetworkResponse](trafficLogSize),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Clear discards the current watch. FirstError is empty until the next Arm
// and a failure is observed.
func (w *Watcher) Clear() {
	w.mu.Lock()
	w.watch = nil
	w.mu.Unlock()
	w.traffic.Clear()
}

// Arm starts a fresh watch for pattern. Requests sent before this call are
// never inspected. Arming while armed replaces the previous watch.
func (w *Watcher) Arm(pattern string) error {
	p, err := ParsePattern(pattern)
	if err != nil {
		return fmt.Errorf("arm: %w", err)
	}
	aw := newArmedWatch(p, w.now())

	w.mu.Lock()
	w.watch = aw
	w.mu.Unlock()

	w.log.Debug().Str("watch_id", aw.ID).Str("pattern", p.String()).Msg("network watch armed")
	return nil
}

// FirstError returns the first failure captured since the last Clear/Arm.
func (w *Watcher) FirstError() (types.NetworkErrorEvent, bool) {
	aw := w.current()
	if aw == nil {
		return types.NetworkErrorEvent{}, false
	}
	return aw.FirstError()
}

// Current returns the active watch, or nil.
func (w *Watcher) Current() *ArmedWatch {
	return w.current()
}

// RecentTraffic returns the last matching responses observed, oldest first.
func (w *Watcher) RecentTraffic() []types.NetworkResponse {
	return w.traffic.ReadAll()
}

// LastTraffic returns at most the n most recent matching responses, oldest first.
func (w *Watcher) LastTraffic(n int) []types.NetworkResponse {
	return w.traffic.ReadLast(n)
}

// AllowedStatuses returns the allow-list in ascending order.
func (w *Watcher) AllowedStatuses() []int {
	return w.allowed.Codes()
}

func (w *Watcher) current() *ArmedWatch {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watch
}

// ObserveRequest records an outgoing request. Only requests sent after arming
// whose URL matches the pattern are tracked.
func (w *Watcher) ObserveRequest(requestID, url, method string, sentAt time.Time) {
	aw := w.current()
	if aw == nil {
		return
	}
	if aw.track(requestID, url, method, sentAt) == trackFull {
		w.log.Warn().Str("watch_id", aw.ID).Int("limit", maxTrackedRequests).Str("url", url).
			Msg("request registry full, further matching requests are not tracked")
	}
}

// ObserveResponse classifies a response. A response with a request id counts
// only if that request was tracked by the current watch; one without an id
// counts if it was observed at or after ArmedAt.
func (w *Watcher) ObserveResponse(resp types.NetworkResponse) {
	aw := w.current()
	if aw == nil {
		return
	}
	if resp.RequestID != "" {
		req, ok := aw.take(resp.RequestID)
		if !ok {
			return
		}
		if resp.Method == "" {
			resp.Method = req.method
		}
	} else if resp.ObservedAt.Before(aw.ArmedAt) {
		return
	}
	if !aw.Pattern.Match(resp.URL) {
		return
	}

	w.traffic.WriteOne(resp)
	if w.allowed.Contains(resp.Status) {
		return
	}

	label := resp.RequestID
	if label == "" {
		label = resp.ResourceType
	}
	if label == "" {
		label = "response"
	}
	w.record(aw, types.NetworkErrorEvent{
		Status:          resp.Status,
		URL:             resp.URL,
		RequestIDOrType: label,
		Method:          resp.Method,
		CapturedAt:      resp.ObservedAt,
	})
}

// ObserveFailure classifies a transport-level failure (no HTTP status) for a
// tracked request.
func (w *Watcher) ObserveFailure(requestID, errorText string, failedAt time.Time) {
	aw := w.current()
	if aw == nil {
		return
	}
	req, ok := aw.take(requestID)
	if !ok {
		return
	}
	w.record(aw, types.NetworkErrorEvent{
		URL:             req.url,
		RequestIDOrType: requestID,
		Method:          req.method,
		ErrorText:       errorText,
		CapturedAt:      failedAt,
	})
}

func (w *Watcher) record(aw *ArmedWatch, ev types.NetworkErrorEvent) {
	if !aw.capture(ev) {
		w.log.Debug().Str("watch_id", aw.ID).Int("status", ev.Status).Str("url", ev.URL).Msg("later network failure ignored")
		return
	}
	w.log.Warn().
		Str("watch_id", aw.ID).
		Int("status", ev.Status).
		Str("url", ev.URL).
		Str("request", ev.RequestIDOrType).
		Str("error_text", ev.ErrorText).
		Msg("network failure captured")
}

// cdp.go — Chrome DevTools Protocol source for the network event monitor.
// Subscribes to Network domain events on a chromedp browser context and feeds
// them to the embedded Watcher.
package triage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/dev-console/triage/internal/types"
	"github.com/dev-console/triage/internal/util"
)

// CDPMonitor attaches a Watcher to a chromedp browser context.
// Only one CDPMonitor should be attached per browser context.
type CDPMonitor struct {
	*Watcher

	mu        sync.Mutex
	attached  bool
	supported bool
	browser   context.Context
	cancel    context.CancelFunc
}

var _ Monitor = (*CDPMonitor)(nil)

// NewCDPMonitor creates a detached monitor.
func NewCDPMonitor(opts ...Option) *CDPMonitor {
	return &CDPMonitor{Watcher: NewWatcher(opts...)}
}

// Start enables the Network domain and subscribes to its events for the life
// of ctx. Calling Start while attached is a no-op. When ctx carries no
// chromedp browser, or the Network domain cannot be enabled, the monitor
// degrades to a no-op and returns an error wrapping ErrUnsupported.
func (m *CDPMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attached {
		return nil
	}
	if chromedp.FromContext(ctx) == nil {
		m.degradeLocked("context carries no chromedp browser")
		return fmt.Errorf("%w: no chromedp context", ErrUnsupported)
	}

	// Enable first: it allocates the target ListenTarget needs.
	if err := chromedp.Run(ctx, network.Enable()); err != nil {
		m.degradeLocked(err.Error())
		return fmt.Errorf("%w: enable network domain: %v", ErrUnsupported, err)
	}

	listenCtx, cancel := context.WithCancel(ctx)
	if err := util.SafeCall(func() error {
		chromedp.ListenTarget(listenCtx, m.handleEvent)
		return nil
	}); err != nil {
		cancel()
		m.degradeLocked(err.Error())
		return fmt.Errorf("%w: listen: %v", ErrUnsupported, err)
	}

	m.attached = true
	m.supported = true
	m.browser = ctx
	m.cancel = cancel
	m.log.Debug().Msg("network monitor attached")
	return nil
}

// Stop cancels the event subscription and disables the Network domain.
// Errors are logged and swallowed.
func (m *CDPMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.supported = false
	if !m.attached {
		return
	}
	m.attached = false
	m.cancel()
	if err := chromedp.Run(m.browser, network.Disable()); err != nil {
		m.log.Debug().Err(err).Msg("network domain disable failed")
	}
	m.log.Debug().Msg("network monitor detached")
}

// Supported reports whether the monitor is attached to a session with
// network introspection.
func (m *CDPMonitor) Supported() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.supported
}

// degradeLocked marks the monitor as a no-op. MUST be called with m.mu held.
func (m *CDPMonitor) degradeLocked(reason string) {
	m.supported = false
	m.log.Warn().Str("reason", reason).Msg("network introspection unavailable; monitor degraded to no-op, absence of errors is inconclusive")
}

// handleEvent runs on chromedp's event goroutine and must not block.
func (m *CDPMonitor) handleEvent(ev any) {
	err := util.SafeCall(func() error {
		m.dispatch(ev, time.Now())
		return nil
	})
	if err != nil {
		m.log.Error().Err(err).Msg("network event handler failed")
	}
}

func (m *CDPMonitor) dispatch(ev any, now time.Time) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		// A redirect hop reports the 3xx response for the same request id
		// before the follow-up request is sent.
		if e.Request == nil {
			return
		}
		if e.RedirectResponse != nil {
			m.ObserveResponse(responseFromCDP(e.RequestID, e.Type, e.RedirectResponse, e.Request.Method, now))
		}
		m.ObserveRequest(string(e.RequestID), e.Request.URL, e.Request.Method, sentAt(e.WallTime, now))
	case *network.EventResponseReceived:
		if e.Response != nil {
			m.ObserveResponse(responseFromCDP(e.RequestID, e.Type, e.Response, "", now))
		}
	case *network.EventLoadingFailed:
		if e.Canceled {
			return
		}
		m.ObserveFailure(string(e.RequestID), e.ErrorText, now)
	}
}

// sentAt prefers the browser's wall-clock send time over delivery time, so a
// request issued before arming but delivered after it is still excluded.
func sentAt(wall *cdp.TimeSinceEpoch, delivered time.Time) time.Time {
	if wall == nil || wall.Time().IsZero() {
		return delivered
	}
	return wall.Time()
}

func responseFromCDP(id network.RequestID, typ network.ResourceType, resp *network.Response, method string, now time.Time) types.NetworkResponse {
	return types.NetworkResponse{
		RequestID:    string(id),
		URL:          resp.URL,
		Method:       method,
		Status:       int(resp.Status),
		ResourceType: string(typ),
		ObservedAt:   now,
	}
}

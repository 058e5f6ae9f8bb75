// cdp_test.go — Tests for CDP event translation and degraded attachment.
package triage

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCDPMonitor(t *testing.T, pattern string, opts ...Option) *CDPMonitor {
	t.Helper()
	m := NewCDPMonitor(append([]Option{WithClock(func() time.Time { return t0 })}, opts...)...)
	require.NoError(t, m.Arm(pattern))
	return m
}

func TestCDPDispatchResponse(t *testing.T) {
	t.Parallel()
	m := newTestCDPMonitor(t, `.*/api/search.*`)

	m.dispatch(&network.EventRequestWillBeSent{
		RequestID: "1000.7",
		Request:   &network.Request{URL: "https://app.test/api/search?q=x", Method: "GET"},
		Type:      network.ResourceTypeXHR,
	}, at(1))
	m.dispatch(&network.EventResponseReceived{
		RequestID: "1000.7",
		Type:      network.ResourceTypeXHR,
		Response:  &network.Response{URL: "https://app.test/api/search?q=x", Status: 500},
	}, at(100))

	ev, ok := m.FirstError()
	require.True(t, ok)
	assert.Equal(t, 500, ev.Status)
	assert.Equal(t, "https://app.test/api/search?q=x", ev.URL)
	assert.Equal(t, "1000.7", ev.RequestIDOrType)
	assert.Equal(t, "GET", ev.Method)
}

func TestCDPDispatchRedirectIsFailure(t *testing.T) {
	t.Parallel()
	m := newTestCDPMonitor(t, `.*/api/.*`)

	m.dispatch(&network.EventRequestWillBeSent{
		RequestID: "9",
		Request:   &network.Request{URL: "https://app.test/api/old", Method: "GET"},
	}, at(1))
	m.dispatch(&network.EventRequestWillBeSent{
		RequestID:        "9",
		Request:          &network.Request{URL: "https://app.test/api/new", Method: "GET"},
		RedirectResponse: &network.Response{URL: "https://app.test/api/old", Status: 302},
	}, at(2))

	ev, ok := m.FirstError()
	require.True(t, ok)
	assert.Equal(t, 302, ev.Status)
	assert.Equal(t, "https://app.test/api/old", ev.URL)
}

func TestCDPDispatchRedirectAllowed(t *testing.T) {
	t.Parallel()
	m := newTestCDPMonitor(t, `.*/api/.*`, WithAllowedStatuses(200, 302, 304))

	m.dispatch(&network.EventRequestWillBeSent{
		RequestID: "9",
		Request:   &network.Request{URL: "https://app.test/api/old", Method: "GET"},
	}, at(1))
	m.dispatch(&network.EventRequestWillBeSent{
		RequestID:        "9",
		Request:          &network.Request{URL: "https://app.test/api/new", Method: "GET"},
		RedirectResponse: &network.Response{URL: "https://app.test/api/old", Status: 302},
	}, at(2))
	m.dispatch(&network.EventResponseReceived{
		RequestID: "9",
		Response:  &network.Response{URL: "https://app.test/api/new", Status: 404},
	}, at(3))

	ev, ok := m.FirstError()
	require.True(t, ok, "the follow-up request is tracked under the same id")
	assert.Equal(t, 404, ev.Status)
	assert.Equal(t, "https://app.test/api/new", ev.URL)
}

func TestCDPDispatchLoadingFailed(t *testing.T) {
	t.Parallel()

	t.Run("canceled loads are ignored", func(t *testing.T) {
		m := newTestCDPMonitor(t, `.*`)
		m.dispatch(&network.EventRequestWillBeSent{RequestID: "1", Request: &network.Request{URL: "https://app.test/api/a"}}, at(1))
		m.dispatch(&network.EventLoadingFailed{RequestID: "1", ErrorText: "net::ERR_ABORTED", Canceled: true}, at(2))
		_, ok := m.FirstError()
		assert.False(t, ok)
	})

	t.Run("transport failures are captured", func(t *testing.T) {
		m := newTestCDPMonitor(t, `.*`)
		m.dispatch(&network.EventRequestWillBeSent{RequestID: "1", Request: &network.Request{URL: "https://app.test/api/a"}}, at(1))
		m.dispatch(&network.EventLoadingFailed{RequestID: "1", ErrorText: "net::ERR_CONNECTION_REFUSED"}, at(2))
		ev, ok := m.FirstError()
		require.True(t, ok)
		assert.Equal(t, "net::ERR_CONNECTION_REFUSED", ev.ErrorText)
	})
}

func TestCDPHandleEventSurvivesMalformedEvents(t *testing.T) {
	t.Parallel()
	m := newTestCDPMonitor(t, `.*`)

	assert.NotPanics(t, func() {
		m.handleEvent(&network.EventRequestWillBeSent{RequestID: "1"})
		m.handleEvent(&network.EventResponseReceived{RequestID: "1"})
		m.handleEvent("not an event")
	})
	_, ok := m.FirstError()
	assert.False(t, ok)
}

func TestCDPStartWithoutBrowserDegrades(t *testing.T) {
	t.Parallel()
	m := NewCDPMonitor()

	err := m.Start(context.Background())
	require.ErrorIs(t, err, ErrUnsupported)
	assert.False(t, m.Supported())

	// Still usable as a no-op.
	require.NoError(t, m.Arm(`.*`))
	_, ok := m.FirstError()
	assert.False(t, ok)

	assert.NotPanics(t, m.Stop)
}

func wallTime(ts time.Time) *cdp.TimeSinceEpoch {
	w := cdp.TimeSinceEpoch(ts)
	return &w
}

func TestCDPDispatchUsesWallTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		wall    *cdp.TimeSinceEpoch
		capture bool
	}{
		{"sent before arm, delivered after", wallTime(t0.Add(-50 * time.Millisecond)), false},
		{"sent after arm", wallTime(at(3)), true},
		{"no wall time falls back to delivery", nil, true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := newTestCDPMonitor(t, `.*/api/.*`)

			m.dispatch(&network.EventRequestWillBeSent{
				RequestID: "9",
				Request:   &network.Request{URL: "https://app.test/api/search", Method: "GET"},
				WallTime:  tc.wall,
			}, at(5))
			m.dispatch(&network.EventResponseReceived{
				RequestID: "9",
				Response:  &network.Response{URL: "https://app.test/api/search", Status: 500},
			}, at(6))

			_, ok := m.FirstError()
			assert.Equal(t, tc.capture, ok)
		})
	}
}

func TestCDPStopClearsSupported(t *testing.T) {
	t.Parallel()
	m := NewCDPMonitor()
	m.attached = true
	m.supported = true
	m.browser = context.Background()
	m.cancel = func() {}

	m.Stop()
	assert.False(t, m.Supported())
}

func TestCDPStopWithoutStart(t *testing.T) {
	t.Parallel()
	m := NewCDPMonitor()
	assert.NotPanics(t, m.Stop)
	assert.NotPanics(t, m.Stop)
}

func TestNoopMonitor(t *testing.T) {
	t.Parallel()
	var m Monitor = NoopMonitor{}

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Arm(`.*`))
	assert.Error(t, m.Arm("("), "pattern errors are still reported")
	_, ok := m.FirstError()
	assert.False(t, ok)
	assert.False(t, m.Supported())
	m.Clear()
	m.Stop()
}

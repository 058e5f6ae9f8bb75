// commands_test.go — Tests for resolve/collect argument parsing and execution.
package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-console/triage/cmd/triage-cmd/config"
	"github.com/dev-console/triage/internal/outcome"
	"github.com/dev-console/triage/internal/probe"
	"github.com/dev-console/triage/internal/triage"
	"github.com/dev-console/triage/internal/types"
)

// watcherMonitor drives a Watcher directly, standing in for a browser.
type watcherMonitor struct {
	*triage.Watcher
}

func (watcherMonitor) Start(context.Context) error { return nil }
func (watcherMonitor) Stop()                       {}
func (watcherMonitor) Supported() bool             { return true }

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.PollIntervalMS = 10
	cfg.ResolveTimeoutMS = 2000
	cfg.PageSize = 3
	return cfg
}

const ordersTable = `<table id="orders"><tbody>
<tr><td>1</td><td>a</td></tr>
<tr><td>2</td><td>b</td></tr>
<tr><td>3</td><td>c</td></tr>
<tr><td>4</td><td>d</td></tr>
</tbody></table>`

func newAPI(t *testing.T, ids ...int) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/orders", func(w http.ResponseWriter, req *http.Request) {
		page, _ := strconv.Atoi(req.URL.Query().Get("page"))
		size, _ := strconv.Atoi(req.URL.Query().Get("size"))
		start := min(page*size, len(ids))
		end := min(start+size, len(ids))
		items := []map[string]any{}
		for _, id := range ids[start:end] {
			items = append(items, map[string]any{"id": id})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func staticSession(m triage.Monitor, html string) Session {
	snap := probe.Static(html)
	return Session{
		Monitor: m,
		Table:   probe.SnapshotVisible(snap, "#orders"),
		NoData:  probe.SnapshotVisible(snap, ".empty"),
		TableKeys: func(ctx context.Context) ([]string, error) {
			return probe.SourceColumn(ctx, snap, "#orders", 0)
		},
	}
}

func TestResolveArgs(t *testing.T) {
	t.Parallel()

	opts, err := ResolveArgs([]string{
		"--page", "https://app.test/orders", "--pattern", "glob:*/api/orders*",
		"--table", "#orders", "--no-data", ".empty", "--api-url", "http://api.test/orders",
		"--key-column", "2", "--key-field", "orderId",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://app.test/orders", opts.PageURL)
	assert.Equal(t, "glob:*/api/orders*", opts.Pattern)
	assert.Equal(t, 2, opts.KeyColumn)
	assert.Equal(t, "orderId", opts.API.KeyField)
	assert.Equal(t, "items", opts.API.ItemsField)
}

func TestResolveArgsUsageErrors(t *testing.T) {
	t.Parallel()

	tests := [][]string{
		{"--table", "#t", "--no-data", ".e", "--pattern", ".*"},
		{"--page", "u", "--no-data", ".e", "--pattern", ".*"},
		{"--page", "u", "--table", "#t", "--no-data", ".e"},
		{"--page", "u", "--table", "#t", "--no-data", ".e", "--pattern", "[a-"},
		{"--page", "u", "--table", "#t", "--no-data", ".e", "--pattern", ".*", "--key-column", "x"},
		{"--page", "u", "--table", "#t", "--no-data", ".e", "--pattern", ".*", "extra"},
		{"--page", "u", "--table", "#t", "--no-data", ".e", "--pattern", ".*", "--error-indicator", ".banner"},
	}
	for _, args := range tests {
		_, err := ResolveArgs(args)
		assert.ErrorIs(t, err, ErrUsage, "%v", args)
	}
}

func TestCollectArgs(t *testing.T) {
	t.Parallel()

	api, err := CollectArgs([]string{"--api-url", "http://x", "--items-field", "data", "--page-param", "p", "--size-param", "limit"})
	require.NoError(t, err)
	assert.Equal(t, APIArgs{URL: "http://x", ItemsField: "data", KeyField: "id", PageParam: "p", SizeParam: "limit"}, api)

	_, err = CollectArgs(nil)
	assert.ErrorIs(t, err, ErrUsage)
}

func TestRunResolveTriageError(t *testing.T) {
	t.Parallel()
	m := watcherMonitor{triage.NewWatcher()}
	sess := staticSession(m, `<p>loading</p>`)
	sess.Act = func(context.Context) error {
		now := time.Now()
		m.ObserveRequest("9", "https://app.test/api/orders?page=0", "GET", now)
		m.ObserveResponse(types.NetworkResponse{RequestID: "9", URL: "https://app.test/api/orders?page=0", Status: 503, ObservedAt: now})
		return nil
	}
	sess.Traffic = m.LastTraffic

	opts := ResolveOptions{Pattern: ".*/api/orders.*", Table: "#orders", NoData: ".empty"}
	res := RunResolve(context.Background(), testConfig(), opts, sess, zerolog.Nop())

	assert.False(t, res.Success)
	assert.Equal(t, "triage_error", res.Outcome)
	assert.Equal(t, 503, res.Data["status"])
	assert.Contains(t, res.Error, "503")
	require.Len(t, res.Details, 1)
	assert.Contains(t, res.Details[0], "503")
}

func TestRunResolveTableCrossValidated(t *testing.T) {
	t.Parallel()
	srv := newAPI(t, 4, 3, 2, 1)
	m := watcherMonitor{triage.NewWatcher()}

	opts := ResolveOptions{Pattern: ".*", Table: "#orders", NoData: ".empty", API: APIArgs{URL: srv.URL + "/orders", ItemsField: "items", KeyField: "id"}}
	res := RunResolve(context.Background(), testConfig(), opts, staticSession(m, ordersTable), zerolog.Nop())

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "table", res.Outcome)
	assert.Equal(t, 4, res.Data["ui_rows"])
	assert.Equal(t, 4, res.Data["api_rows"])
}

func TestRunResolveCrossValidationMismatch(t *testing.T) {
	t.Parallel()
	srv := newAPI(t, 1, 2, 3, 4, 5)
	m := watcherMonitor{triage.NewWatcher()}

	opts := ResolveOptions{Pattern: ".*", Table: "#orders", NoData: ".empty", API: APIArgs{URL: srv.URL + "/orders", ItemsField: "items", KeyField: "id"}}
	res := RunResolve(context.Background(), testConfig(), opts, staticSession(m, ordersTable), zerolog.Nop())

	assert.False(t, res.Success)
	assert.Equal(t, []string{"5"}, res.Data["missing"])
	assert.Contains(t, res.Error, "1 missing")
}

func TestRunResolveNoDataWithIndicator(t *testing.T) {
	t.Parallel()
	sess := staticSession(triage.NoopMonitor{}, `<div class="empty">No orders</div>`)
	sess.ErrorShown = probe.SnapshotVisible(probe.Static(`<div class="empty">No orders</div>`), ".alert-error")

	opts := ResolveOptions{ErrorIndicator: ".alert-error", Table: "#orders", NoData: ".empty"}
	res := RunResolve(context.Background(), testConfig(), opts, sess, zerolog.Nop())

	assert.True(t, res.Success)
	assert.Equal(t, "no_data", res.Outcome)
}

func TestRunResolveIndicatorShown(t *testing.T) {
	t.Parallel()
	html := `<div class="alert-error">Search failed</div>` + ordersTable
	sess := staticSession(triage.NoopMonitor{}, html)
	sess.ErrorShown = probe.SnapshotVisible(probe.Static(html), ".alert-error")

	opts := ResolveOptions{ErrorIndicator: ".alert-error", Table: "#orders", NoData: ".empty"}
	res := RunResolve(context.Background(), testConfig(), opts, sess, zerolog.Nop())

	assert.False(t, res.Success)
	assert.Equal(t, "triage_error", res.Outcome)
	assert.Equal(t, "error-indicator", res.Data["request"])
}

func TestRunResolveTimeout(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.ResolveTimeoutMS = 30
	sess := staticSession(triage.NoopMonitor{}, `<p>spinner</p>`)

	res := RunResolve(context.Background(), cfg, ResolveOptions{Pattern: ".*"}, sess, zerolog.Nop())

	assert.False(t, res.Success)
	assert.Equal(t, "timeout", res.Outcome)
	assert.Equal(t, true, res.Data["inconclusive"])
}

func TestRunResolveActionError(t *testing.T) {
	t.Parallel()
	sess := staticSession(watcherMonitor{triage.NewWatcher()}, ordersTable)
	sess.Act = func(context.Context) error { return errors.New("net::ERR_NAME_NOT_RESOLVED") }

	res := RunResolve(context.Background(), testConfig(), ResolveOptions{Pattern: ".*"}, sess, zerolog.Nop())
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "ERR_NAME_NOT_RESOLVED")
}

func TestRunCollect(t *testing.T) {
	t.Parallel()
	srv := newAPI(t, 1, 2, 3, 4, 5, 6, 7)

	res := RunCollect(context.Background(), testConfig(), APIArgs{URL: srv.URL + "/orders", ItemsField: "items", KeyField: "id", PageParam: "page", SizeParam: "size"}, zerolog.Nop())
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "short_page", res.Outcome)
	assert.Equal(t, 7, res.Data["items"])
	assert.Equal(t, 3, res.Data["fetches"])
}

func TestRunCollectGuard(t *testing.T) {
	t.Parallel()
	ids := make([]int, 30)
	for i := range ids {
		ids[i] = i
	}
	srv := newAPI(t, ids...)
	cfg := testConfig()
	cfg.MaxPages = 2

	res := RunCollect(context.Background(), cfg, APIArgs{URL: srv.URL + "/orders", ItemsField: "items", KeyField: "id"}, zerolog.Nop())
	assert.False(t, res.Success)
	assert.Equal(t, "guard_tripped", res.Outcome)
	assert.Equal(t, 6, res.Data["items"])
}

func TestCollectorOptionsFromConfig(t *testing.T) {
	t.Parallel()
	assert.Len(t, collectorOptions(testConfig(), zerolog.Nop()), 4)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	cfg := config.Defaults()
	cfg.Format = "json"
	cfg.LogLevel = "warn"

	log := NewLogger(cfg, &buf)
	log.Info().Msg("hidden")
	log.Warn().Str("pattern", ".*").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "warn", line["level"])
}

var _ outcome.ErrorSource = watcherMonitor{}

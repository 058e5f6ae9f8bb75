// main_test.go — Tests for CLI arg parsing, routing, and end-to-end collect.
package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
}

// chdir mirrors testing.T.Chdir (Go 1.24+): switch the working directory and
// restore it when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestRunNoArgs(t *testing.T) {
	assert.Equal(t, 2, run([]string{}))
}

func TestRunVersionAndHelp(t *testing.T) {
	assert.Equal(t, 0, run([]string{"--version"}))
	assert.Equal(t, 0, run([]string{"--help"}))
	assert.Equal(t, 0, run([]string{"help"}))
}

func TestRunUsageErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"explode"}},
		{"collect without api url", []string{"collect"}},
		{"resolve without action", []string{"resolve", "--table", "#t", "--no-data", ".e", "--pattern", ".*"}},
		{"resolve without selectors", []string{"resolve", "--page", "https://app.test", "--pattern", ".*"}},
		{"resolve without signal source", []string{"resolve", "--page", "https://app.test", "--table", "#t", "--no-data", ".e"}},
		{"resolve with invalid pattern", []string{"resolve", "--page", "https://app.test", "--table", "#t", "--no-data", ".e", "--pattern", "("}},
		{"bad global int", []string{"collect", "--api-url", "http://x", "--page-size", "ten"}},
		{"bad format", []string{"collect", "--api-url", "http://x", "--format", "xml"}},
		{"leftover args", []string{"collect", "--api-url", "http://x", "--bogus"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, 2, run(tc.args))
		})
	}
}

func newOrdersAPI(t *testing.T, total int) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/orders", func(w http.ResponseWriter, req *http.Request) {
		page, _ := strconv.Atoi(req.URL.Query().Get("page"))
		size, _ := strconv.Atoi(req.URL.Query().Get("size"))
		start := page * size
		if start >= total {
			start = 0
		}
		end := min(start+size, total)
		items := make([]map[string]any, 0, end-start)
		for i := start; i < end; i++ {
			items = append(items, map[string]any{"id": i})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunCollect(t *testing.T) {
	isolate(t)
	srv := newOrdersAPI(t, 45)

	code := run([]string{"collect", "--api-url", srv.URL + "/orders", "--page-size", "10", "--format", "json", "--log-level", "error"})
	assert.Equal(t, 0, code)
}

func TestRunCollectGuardTripped(t *testing.T) {
	isolate(t)
	srv := newOrdersAPI(t, 100)

	code := run([]string{"collect", "--api-url", srv.URL + "/orders", "--page-size", "10", "--max-pages", "3", "--format", "csv"})
	assert.Equal(t, 1, code)
}

func TestExtractGlobalFlags(t *testing.T) {
	t.Parallel()

	args := []string{"--format", "json", "--timeout", "5000", "--page-size", "50", "--allowed-statuses", "200,204", "--table", "#t"}
	flags, remaining, err := extractGlobalFlags(args)
	require.NoError(t, err)

	require.NotNil(t, flags.Format)
	assert.Equal(t, "json", *flags.Format)
	require.NotNil(t, flags.ResolveTimeoutMS)
	assert.Equal(t, 5000, *flags.ResolveTimeoutMS)
	require.NotNil(t, flags.PageSize)
	assert.Equal(t, 50, *flags.PageSize)
	assert.Equal(t, []int{200, 204}, flags.AllowedStatuses)
	assert.Nil(t, flags.MaxPages)
	assert.Nil(t, flags.LogLevel)
	assert.Equal(t, []string{"--table", "#t"}, remaining)
}

func TestExtractGlobalFlagsInvalid(t *testing.T) {
	t.Parallel()

	_, _, err := extractGlobalFlags([]string{"--max-pages", "-1"})
	assert.Error(t, err)

	_, _, err = extractGlobalFlags([]string{"--allowed-statuses", "ok"})
	assert.Error(t, err)
}

func TestExtractFlag(t *testing.T) {
	t.Parallel()

	val, remaining := extractFlag([]string{"--a", "1", "--b", "2"}, "--b")
	assert.Equal(t, "2", val)
	assert.Equal(t, []string{"--a", "1"}, remaining)

	val, remaining = extractFlag([]string{"--a"}, "--a")
	assert.Empty(t, val, "a trailing flag without value is left alone")
	assert.Equal(t, []string{"--a"}, remaining)
}

func TestParseInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"0", 0, true},
		{"200", 200, true},
		{"", 0, false},
		{"-5", 0, false},
		{"1e3", 0, false},
	}
	for _, tc := range tests {
		n, ok := parseInt(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, n, tc.in)
	}
}

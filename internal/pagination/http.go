// http.go — JSON page fetcher for GET base?page=i&size=n endpoints.
package pagination

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Record is one decoded API item.
// any: API items have dynamic fields; only the key field is interpreted.
type Record = map[string]any

// maxErrorBody caps how much of a failing response body is quoted in errors.
const maxErrorBody = 512

// HTTPFetcher fetches pages of Records from a JSON endpoint.
type HTTPFetcher struct {
	BaseURL    string
	ItemsField string // default "items"
	PageParam  string // default "page"
	SizeParam  string // default "size"
	Client     *http.Client
}

// NewHTTPFetcher returns a fetcher with default parameter names and a 30s client timeout.
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL:    baseURL,
		ItemsField: "items",
		PageParam:  "page",
		SizeParam:  "size",
		Client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch implements FetchFunc[Record].
func (f *HTTPFetcher) Fetch(ctx context.Context, pageIndex, pageSize int) (Page[Record], error) {
	u, err := url.Parse(f.BaseURL)
	if err != nil {
		return Page[Record]{}, fmt.Errorf("parse api url: %w", err)
	}
	q := u.Query()
	q.Set(orDefault(f.PageParam, "page"), strconv.Itoa(pageIndex))
	q.Set(orDefault(f.SizeParam, "size"), strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Page[Record]{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Page[Record]{}, fmt.Errorf("GET %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Page[Record]{}, fmt.Errorf("GET %s: HTTP %d: %s", u.Redacted(), resp.StatusCode, body)
	}

	var envelope map[string]json.RawMessage
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&envelope); err != nil {
		return Page[Record]{}, fmt.Errorf("decode page %d: %w", pageIndex, err)
	}

	field := orDefault(f.ItemsField, "items")
	raw, ok := envelope[field]
	if !ok {
		return Page[Record]{}, fmt.Errorf("decode page %d: response has no %q field", pageIndex, field)
	}
	var items []Record
	itemDec := json.NewDecoder(bytes.NewReader(raw))
	itemDec.UseNumber()
	if err := itemDec.Decode(&items); err != nil {
		return Page[Record]{}, fmt.Errorf("decode page %d %q: %w", pageIndex, field, err)
	}
	return Page[Record]{Items: items}, nil
}

// RecordKey builds a KeyFunc reading field from each Record.
func RecordKey(field string) KeyFunc[Record] {
	return func(r Record) string { return RecordString(r, field) }
}

// RecordString renders a Record field as a display string.
// Returns empty string if the field doesn't exist or isn't a scalar.
func RecordString(r Record, field string) string {
	v, ok := r[field]
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// network.go — Network telemetry types observed from a browser session.
// Zero dependencies - foundational types used by triage and outcome packages.
package types

import (
	"fmt"
	"time"
)

// NetworkResponse is one response observed on the browser's network layer.
type NetworkResponse struct {
	RequestID    string    `json:"request_id,omitempty"`
	URL          string    `json:"url"`
	Method       string    `json:"method,omitempty"`
	Status       int       `json:"status"`
	ResourceType string    `json:"resource_type,omitempty"`
	ObservedAt   time.Time `json:"observed_at"`
}

// NetworkErrorEvent is the first failing response captured by an armed watch.
// Immutable once captured.
type NetworkErrorEvent struct {
	Status int    `json:"status"`
	URL    string `json:"url"`
	// RequestIDOrType is the protocol request id, or a human label when the
	// source has no protocol-level id (e.g. "error-indicator").
	RequestIDOrType string    `json:"request_id_or_type"`
	Method          string    `json:"method,omitempty"`
	ErrorText       string    `json:"error_text,omitempty"` // transport failure text; Status is 0
	CapturedAt      time.Time `json:"captured_at"`
}

// String renders the event for test failure output.
func (e NetworkErrorEvent) String() string {
	method := e.Method
	if method == "" {
		method = "-"
	}
	if e.Status == 0 && e.URL == "" {
		return fmt.Sprintf("%s (%s)", e.ErrorText, e.RequestIDOrType)
	}
	if e.Status == 0 && e.ErrorText != "" {
		return fmt.Sprintf("network failure %s %s: %s (%s)", method, e.URL, e.ErrorText, e.RequestIDOrType)
	}
	return fmt.Sprintf("HTTP %d %s %s (%s)", e.Status, method, e.URL, e.RequestIDOrType)
}

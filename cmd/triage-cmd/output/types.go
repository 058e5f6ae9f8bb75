// types.go — Shared types for output formatting.
package output

// Result represents the outcome of a CLI command execution.
type Result struct {
	Success bool           `json:"success"`
	Command string         `json:"command"`
	Outcome string         `json:"outcome,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	// Details holds extra lines for human output only (e.g. recent traffic).
	Details []string `json:"-"`
}

// Formatter is the interface for all output formatters.
type Formatter interface {
	Format(w Writer, result *Result) error
}

// Writer is a minimal write interface (matches io.Writer).
type Writer interface {
	Write(p []byte) (n int, err error)
}

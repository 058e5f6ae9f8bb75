// common.go — Shared utilities for command argument parsing and logging.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/dev-console/triage/cmd/triage-cmd/config"
	"github.com/dev-console/triage/internal/pagination"
)

// ErrUsage marks errors caused by bad command-line input (exit code 2).
var ErrUsage = errors.New("usage")

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// NewLogger builds the stderr logger: a console writer for human output,
// JSON lines otherwise.
func NewLogger(cfg config.Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Format == "human" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// collectorOptions maps configuration onto pagination options.
func collectorOptions(cfg config.Config, log zerolog.Logger) []pagination.Option {
	return []pagination.Option{
		pagination.WithPageSize(cfg.PageSize),
		pagination.WithMaxPages(cfg.MaxPages),
		pagination.WithFetchRetries(cfg.FetchRetries),
		pagination.WithLogger(log),
	}
}

// parseFlag extracts a flag value from an args slice.
// Returns the value and remaining args (with the flag pair removed).
func parseFlag(args []string, flag string) (string, []string) {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			val := args[i+1]
			remaining := make([]string, 0, len(args)-2)
			remaining = append(remaining, args[:i]...)
			remaining = append(remaining, args[i+2:]...)
			return val, remaining
		}
	}
	return "", args
}

// parseFlagInt extracts a non-negative integer flag value from an args slice.
func parseFlagInt(args []string, flag string) (int, bool, []string, error) {
	val, remaining := parseFlag(args, flag)
	if val == "" {
		return 0, false, args, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return 0, false, args, usageErrorf("%s must be a non-negative integer, got %q", flag, val)
	}
	return n, true, remaining, nil
}

// rejectLeftovers reports arguments no parser consumed.
func rejectLeftovers(args []string) error {
	if len(args) > 0 {
		return usageErrorf("unexpected arguments: %v", args)
	}
	return nil
}

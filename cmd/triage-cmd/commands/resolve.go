// resolve.go — The resolve command: act in the browser, report which outcome appeared first.
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dev-console/triage/cmd/triage-cmd/config"
	"github.com/dev-console/triage/cmd/triage-cmd/output"
	"github.com/dev-console/triage/internal/outcome"
	"github.com/dev-console/triage/internal/scenario"
	"github.com/dev-console/triage/internal/triage"
	"github.com/dev-console/triage/internal/types"
)

// maxTrafficDetails caps how many recent responses are listed on failure.
const maxTrafficDetails = 10

// ResolveOptions holds parsed resolve arguments.
type ResolveOptions struct {
	PageURL        string
	Click          string
	Pattern        string
	Table          string
	NoData         string
	ErrorIndicator string
	KeyColumn      int
	API            APIArgs
}

// ResolveArgs parses CLI args for the resolve command.
func ResolveArgs(args []string) (ResolveOptions, error) {
	var opts ResolveOptions
	remaining := args

	opts.PageURL, remaining = parseFlag(remaining, "--page")
	opts.Click, remaining = parseFlag(remaining, "--click")
	opts.Pattern, remaining = parseFlag(remaining, "--pattern")
	opts.Table, remaining = parseFlag(remaining, "--table")
	opts.NoData, remaining = parseFlag(remaining, "--no-data")
	opts.ErrorIndicator, remaining = parseFlag(remaining, "--error-indicator")

	col, _, remaining, err := parseFlagInt(remaining, "--key-column")
	if err != nil {
		return opts, err
	}
	opts.KeyColumn = col
	opts.API, remaining = parseAPIArgs(remaining)

	switch {
	case opts.PageURL == "" && opts.Click == "":
		return opts, usageErrorf("resolve requires --page or --click")
	case opts.Table == "" || opts.NoData == "":
		return opts, usageErrorf("resolve requires --table and --no-data selectors")
	case opts.Pattern == "" && opts.ErrorIndicator == "":
		return opts, usageErrorf("resolve requires --pattern or --error-indicator")
	case opts.Pattern != "" && opts.ErrorIndicator != "":
		return opts, usageErrorf("--pattern and --error-indicator are mutually exclusive")
	}
	if opts.Pattern != "" {
		if _, err := triage.ParsePattern(opts.Pattern); err != nil {
			return opts, usageErrorf("--pattern: %v", err)
		}
	}
	return opts, rejectLeftovers(remaining)
}

// Session is what resolve needs from a browser.
type Session struct {
	Monitor    triage.Monitor
	Act        scenario.Action
	Table      outcome.Predicate
	NoData     outcome.Predicate
	ErrorShown outcome.Predicate
	// TableKeys reads the key column of the rendered table.
	TableKeys func(ctx context.Context) ([]string, error)
	// Traffic returns up to n recently observed matching responses, oldest
	// first, when available.
	Traffic func(n int) []types.NetworkResponse
}

// RunResolve performs the action and resolves its outcome. With an API
// configured and a Table outcome, the table keys are cross-validated against
// the collected API records.
func RunResolve(ctx context.Context, cfg config.Config, opts ResolveOptions, sess Session, log zerolog.Logger) *output.Result {
	result := &output.Result{Command: "resolve", Data: map[string]any{}}

	resolver := outcome.NewResolver(sess.Monitor, outcome.WithPollInterval(cfg.PollInterval()), outcome.WithLogger(log))
	o, err := resolve(ctx, cfg, opts, sess, resolver, log)
	if err != nil {
		result.Error = err.Error()
		var te *outcome.TimeoutError
		if errors.As(err, &te) {
			result.Outcome = "timeout"
			result.Data["polls"] = te.Polls
			result.Data["elapsed_ms"] = te.Elapsed.Milliseconds()
			result.Data["inconclusive"] = te.Inconclusive
		}
		return result
	}

	result.Outcome = o.Kind.String()
	result.Data["polls"] = o.Polls
	result.Data["elapsed_ms"] = o.Elapsed.Milliseconds()

	switch o.Kind {
	case types.OutcomeTriageError:
		result.Error = o.Err().Error()
		result.Data["status"] = o.Error.Status
		result.Data["url"] = o.Error.URL
		result.Data["request"] = o.Error.RequestIDOrType
		result.Details = trafficDetails(sess.Traffic)
		return result
	case types.OutcomeTable:
		if opts.API.URL != "" {
			return crossValidate(ctx, cfg, opts, sess, result, log)
		}
	}
	result.Success = true
	return result
}

func resolve(ctx context.Context, cfg config.Config, opts ResolveOptions, sess Session, resolver *outcome.Resolver, log zerolog.Logger) (types.Outcome, error) {
	if opts.Pattern != "" {
		runner := scenario.NewRunner(sess.Monitor, resolver, log)
		return runner.Act(ctx, opts.Pattern, sess.Act, sess.Table, sess.NoData, cfg.ResolveTimeout())
	}
	if sess.Act != nil {
		if err := sess.Act(ctx); err != nil {
			return types.Outcome{}, fmt.Errorf("action: %w", err)
		}
	}
	return resolver.WaitForResultsOrNoData(ctx, sess.Table, sess.NoData, sess.ErrorShown, cfg.ResolveTimeout())
}

func crossValidate(ctx context.Context, cfg config.Config, opts ResolveOptions, sess Session, result *output.Result, log zerolog.Logger) *output.Result {
	if sess.TableKeys == nil {
		result.Error = "table keys unavailable for cross-validation"
		return result
	}
	uiKeys, err := sess.TableKeys(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("read table keys: %v", err)
		return result
	}
	apiKeys, _, err := collectKeys(ctx, cfg, opts.API, log)
	if err != nil {
		result.Error = fmt.Sprintf("collect api records: %v", err)
		return result
	}

	rep := scenario.CrossValidate(uiKeys, apiKeys)
	result.Data["ui_rows"] = rep.UICount
	result.Data["api_rows"] = rep.APICount
	if len(rep.Missing) > 0 {
		result.Data["missing"] = rep.Missing
	}
	if len(rep.Unexpected) > 0 {
		result.Data["unexpected"] = rep.Unexpected
	}
	if !rep.OK() {
		result.Error = rep.String()
		return result
	}
	result.Success = true
	return result
}

func trafficDetails(traffic func(n int) []types.NetworkResponse) []string {
	if traffic == nil {
		return nil
	}
	recent := traffic(maxTrafficDetails)
	lines := make([]string, 0, len(recent))
	for _, r := range recent {
		lines = append(lines, fmt.Sprintf("recent: %s %d %s at %s", r.Method, r.Status, r.URL, r.ObservedAt.Format(time.TimeOnly)))
	}
	return lines
}

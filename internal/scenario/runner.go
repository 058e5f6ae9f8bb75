// runner.go — Clear, arm, act, resolve.
package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dev-console/triage/internal/outcome"
	"github.com/dev-console/triage/internal/triage"
	"github.com/dev-console/triage/internal/types"
)

// Action triggers the UI interaction whose outcome is resolved.
type Action func(ctx context.Context) error

// Runner ties a monitor to a resolver reading from it.
type Runner struct {
	monitor  triage.Monitor
	resolver *outcome.Resolver
	log      zerolog.Logger
}

// NewRunner creates a Runner. resolver should read from monitor; when nil, a
// resolver with default settings is built over monitor.
func NewRunner(monitor triage.Monitor, resolver *outcome.Resolver, log zerolog.Logger) *Runner {
	if resolver == nil {
		resolver = outcome.NewResolver(monitor, outcome.WithLogger(log))
	}
	return &Runner{monitor: monitor, resolver: resolver, log: log}
}

// Act clears the monitor, arms it with pattern, runs action and resolves the
// outcome. The monitor is always cleared before arming so a failure from an
// earlier action is never attributed to this one.
func (r *Runner) Act(ctx context.Context, pattern string, action Action, table, noData outcome.Predicate, timeout time.Duration) (types.Outcome, error) {
	r.monitor.Clear()
	if err := r.monitor.Arm(pattern); err != nil {
		return types.Outcome{}, fmt.Errorf("arm %q: %w", pattern, err)
	}
	if !r.monitor.Supported() {
		r.log.Warn().Str("pattern", pattern).Msg("network monitor unsupported, only UI signals will resolve")
	}

	if action != nil {
		if err := action(ctx); err != nil {
			return types.Outcome{}, fmt.Errorf("action: %w", err)
		}
	}

	o, err := r.resolver.Resolve(ctx, table, noData, timeout)
	if err != nil {
		return types.Outcome{}, err
	}
	r.log.Info().Str("outcome", o.Kind.String()).Dur("elapsed", o.Elapsed).Int("polls", o.Polls).Msg("action resolved")
	return o, nil
}

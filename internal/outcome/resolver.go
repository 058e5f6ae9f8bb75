// resolver.go — Priority-ordered polling of network and UI signals.
package outcome

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dev-console/triage/internal/types"
	"github.com/dev-console/triage/internal/util"
)

// DefaultPollInterval is the sleep between polling iterations.
const DefaultPollInterval = 200 * time.Millisecond

// errorIndicatorLabel tags TriageError outcomes raised by a UI error indicator
// rather than a captured network response.
const errorIndicatorLabel = "error-indicator"

// Predicate reports whether a UI condition currently holds. An error or panic
// means "not yet true".
type Predicate func(ctx context.Context) (bool, error)

// ErrorSource exposes the first captured network failure.
// Implemented by triage.Monitor.
type ErrorSource interface {
	FirstError() (types.NetworkErrorEvent, bool)
}

// capabilityReporter is implemented by sources that may be unable to observe
// traffic at all.
type capabilityReporter interface {
	Supported() bool
}

// Resolver races a network error source against UI predicates.
type Resolver struct {
	source   ErrorSource
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPollInterval sets the sleep between iterations. Non-positive values
// keep the default.
func WithPollInterval(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLogger sets the resolver's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// NewResolver creates a Resolver. source may be nil when no network
// monitoring is armed.
func NewResolver(source ErrorSource, opts ...Option) *Resolver {
	r := &Resolver{
		source:   source,
		interval: DefaultPollInterval,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PollInterval returns the configured interval.
func (r *Resolver) PollInterval() time.Duration { return r.interval }

// Resolve returns the first of TriageError, Table or NoData to hold, checked
// in that order on every iteration. Returns *TimeoutError if none holds
// within timeout, or ctx.Err() if ctx ends while waiting between iterations.
func (r *Resolver) Resolve(ctx context.Context, tableVisible, noDataVisible Predicate, timeout time.Duration) (types.Outcome, error) {
	return r.poll(ctx, timeout, []branch{
		r.networkBranch(),
		r.predicateBranch("table", tableVisible, types.OutcomeTable),
		r.predicateBranch("no_data", noDataVisible, types.OutcomeNoData),
	})
}

// WaitForResultsOrNoData is the variant for actions without network arming:
// a rendered error indicator takes the network branch's place and is reported
// as a TriageError labelled "error-indicator".
func (r *Resolver) WaitForResultsOrNoData(ctx context.Context, tableVisible, noDataVisible, errorShown Predicate, timeout time.Duration) (types.Outcome, error) {
	return r.poll(ctx, timeout, []branch{
		r.indicatorBranch(errorShown),
		r.predicateBranch("table", tableVisible, types.OutcomeTable),
		r.predicateBranch("no_data", noDataVisible, types.OutcomeNoData),
	})
}

// branch evaluates one signal; ok reports a match.
type branch func(ctx context.Context) (o types.Outcome, ok bool)

func (r *Resolver) poll(ctx context.Context, timeout time.Duration, branches []branch) (types.Outcome, error) {
	start := r.now()
	deadline := start.Add(timeout)

	for polls := 1; ; polls++ {
		for _, b := range branches {
			if o, ok := b(ctx); ok {
				o.Elapsed = r.now().Sub(start)
				o.Polls = polls
				r.log.Debug().Str("outcome", o.Kind.String()).Dur("elapsed", o.Elapsed).Int("polls", polls).Msg("outcome resolved")
				return o, nil
			}
		}

		now := r.now()
		if !now.Before(deadline) {
			err := &TimeoutError{
				Timeout:      timeout,
				Elapsed:      now.Sub(start),
				Polls:        polls,
				Inconclusive: r.sourceUnsupported(),
			}
			r.log.Error().Err(err).Msg("outcome resolution timed out")
			return types.Outcome{}, err
		}

		if err := sleepCtx(ctx, min(r.interval, deadline.Sub(now))); err != nil {
			return types.Outcome{}, fmt.Errorf("resolve canceled after %d polls: %w", polls, err)
		}
	}
}

func (r *Resolver) networkBranch() branch {
	return func(context.Context) (types.Outcome, bool) {
		if r.source == nil {
			return types.Outcome{}, false
		}
		ev, ok := r.source.FirstError()
		if !ok {
			return types.Outcome{}, false
		}
		return types.TriageErrorOutcome(ev), true
	}
}

func (r *Resolver) indicatorBranch(errorShown Predicate) branch {
	check := r.predicateBranch("error_indicator", errorShown, types.OutcomeTriageError)
	return func(ctx context.Context) (types.Outcome, bool) {
		if _, ok := check(ctx); !ok {
			return types.Outcome{}, false
		}
		return types.TriageErrorOutcome(types.NetworkErrorEvent{
			RequestIDOrType: errorIndicatorLabel,
			ErrorText:       "error indicator rendered",
			CapturedAt:      r.now(),
		}), true
	}
}

func (r *Resolver) predicateBranch(name string, p Predicate, kind types.OutcomeKind) branch {
	return func(ctx context.Context) (types.Outcome, bool) {
		if p == nil {
			return types.Outcome{}, false
		}
		var holds bool
		err := util.SafeCall(func() error {
			var err error
			holds, err = p(ctx)
			return err
		})
		if err != nil {
			// Expected noise during DOM transitions (e.g. detached nodes).
			r.log.Debug().Err(err).Str("predicate", name).Msg("predicate failed, treating as false")
			return types.Outcome{}, false
		}
		if !holds {
			return types.Outcome{}, false
		}
		return types.Outcome{Kind: kind}, true
	}
}

func (r *Resolver) sourceUnsupported() bool {
	if r.source == nil {
		return false
	}
	cr, ok := r.source.(capabilityReporter)
	return ok && !cr.Supported()
}

// sleepCtx waits for d or until ctx ends.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

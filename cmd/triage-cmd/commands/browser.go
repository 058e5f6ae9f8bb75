// browser.go — chromedp session wiring for the resolve command.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/dev-console/triage/cmd/triage-cmd/config"
	"github.com/dev-console/triage/internal/probe"
	"github.com/dev-console/triage/internal/triage"
)

// OpenBrowser connects to the browser at cfg.DevToolsURL, or launches a
// headless one when unset, and attaches a network monitor. The returned
// context carries the chromedp target; close releases everything.
func OpenBrowser(ctx context.Context, cfg config.Config, opts ResolveOptions, log zerolog.Logger) (context.Context, Session, func(), error) {
	var allocCtx context.Context
	var cancelAlloc context.CancelFunc
	if cfg.DevToolsURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, cfg.DevToolsURL)
	} else {
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	}
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) { log.Debug().Msgf(format, args...) }),
		chromedp.WithErrorf(func(format string, args ...any) { log.Debug().Msgf(format, args...) }),
	)

	monitor := triage.NewCDPMonitor(
		triage.WithAllowedStatuses(cfg.AllowedStatuses...),
		triage.WithLogger(log),
	)
	closeAll := func() {
		monitor.Stop()
		cancelBrowser()
		cancelAlloc()
	}

	if err := monitor.Start(browserCtx); err != nil {
		if !errors.Is(err, triage.ErrUnsupported) {
			closeAll()
			return nil, Session{}, nil, fmt.Errorf("start network monitor: %w", err)
		}
		log.Warn().Err(err).Msg("continuing without network monitoring")
	}

	sess := Session{
		Monitor:    monitor,
		Act:        browserAction(opts),
		Table:      probe.Visible(opts.Table),
		NoData:     probe.Visible(opts.NoData),
		ErrorShown: indicator(opts.ErrorIndicator),
		TableKeys: func(ctx context.Context) ([]string, error) {
			return probe.TableColumn(ctx, opts.Table, opts.KeyColumn)
		},
		Traffic: monitor.LastTraffic,
	}
	return browserCtx, sess, closeAll, nil
}

// browserAction navigates to the page and/or clicks the trigger element.
func browserAction(opts ResolveOptions) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		var actions []chromedp.Action
		if opts.PageURL != "" {
			actions = append(actions, chromedp.Navigate(opts.PageURL))
		}
		if opts.Click != "" {
			actions = append(actions, chromedp.Click(opts.Click, chromedp.ByQuery, chromedp.NodeVisible))
		}
		return chromedp.Run(ctx, actions...)
	}
}

func indicator(selector string) func(ctx context.Context) (bool, error) {
	if selector == "" {
		return nil
	}
	return probe.Visible(selector)
}

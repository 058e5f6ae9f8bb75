// doc.go — Package documentation for the network event monitor.

// Package triage watches a browser session's network traffic and surfaces the
// first failing response matching an armed URL pattern.
//
// Lifecycle of one watch:
//   - Clear() discards the current watch (FirstError is empty afterwards)
//   - Arm(pattern) starts a fresh watch; only requests sent after arming count
//   - FirstError() reads the single captured failure, if any
//
// Matching: a response is a failure when its URL matches the armed pattern and
// its status is outside the allow-list (200 and 304 by default). The first
// qualifying failure wins; later ones are ignored until the next Clear/Arm.
//
// Sources: CDPMonitor attaches to a chromedp browser context. When the context
// has no DevTools protocol access the monitor degrades to a no-op and
// Supported() reports false. A "no error" answer from an unsupported monitor
// is inconclusive, not a guarantee.
package triage

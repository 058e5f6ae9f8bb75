// doc.go — Package documentation for UI predicate adapters.

// Package probe turns DOM checks into outcome.Predicate values.
//
// Live predicates evaluate JavaScript in the attached chromedp target and never
// wait for nodes to appear; a missing node is simply "false". Snapshot
// predicates parse an HTML fragment with goquery, which makes them testable
// without a browser.
package probe

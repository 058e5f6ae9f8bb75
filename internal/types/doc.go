// doc.go — Package documentation for foundational cross-cutting types.

// Package types provides the foundational, zero-dependency types for triage.
//
// This package contains the value types shared by the monitor, the resolver
// and the scenario wiring:
//   - Network telemetry types (observed responses, captured failures)
//   - Outcome types (the tagged result of one resolution)
//
// Design Principle: Zero Dependencies
// This package imports only the Go standard library. It is safe to import from
// any other package without creating circular dependencies.
//
// Architecture Layer: Foundation
//   Layer 1: types (zero deps) ← YOU ARE HERE
//   Layer 2: Domain packages (triage, outcome, pagination, probe)
//   Layer 3: Composite packages (scenario)
//   Layer 4: Wiring (cmd/triage-cmd)
package types

// monitor.go — Monitor contract and the degraded no-op implementation.
package triage

import (
	"context"
	"errors"

	"github.com/dev-console/triage/internal/types"
)

// ErrUnsupported is returned by Start when the session exposes no
// protocol-level network introspection. The monitor stays usable as a no-op.
var ErrUnsupported = errors.New("network introspection unsupported")

// Monitor is the public contract of the network event monitor.
type Monitor interface {
	// Start attaches to the session. Idempotent.
	Start(ctx context.Context) error
	// Stop detaches. Safe without Start and after a failed Start.
	Stop()
	// Clear discards any captured failure and disarms.
	Clear()
	// Arm begins matching requests sent from now on against pattern.
	Arm(pattern string) error
	// FirstError returns the first failure since the last Clear/Arm.
	FirstError() (types.NetworkErrorEvent, bool)
	// Supported reports whether failures can actually be observed.
	Supported() bool
}

// NoopMonitor never captures anything. Supported always reports false so
// callers can treat an empty FirstError as inconclusive.
type NoopMonitor struct{}

var _ Monitor = NoopMonitor{}

func (NoopMonitor) Start(context.Context) error { return nil }
func (NoopMonitor) Stop()                       {}
func (NoopMonitor) Clear()                      {}

// Arm validates the pattern so misconfiguration is still reported.
func (NoopMonitor) Arm(pattern string) error {
	_, err := ParsePattern(pattern)
	return err
}

func (NoopMonitor) FirstError() (types.NetworkErrorEvent, bool) {
	return types.NetworkErrorEvent{}, false
}

func (NoopMonitor) Supported() bool { return false }

// outcome.go — Tagged result of racing UI and network signals after an action.
package types

import (
	"fmt"
	"time"
)

// OutcomeKind identifies which signal resolved first.
type OutcomeKind int

const (
	OutcomeUnknown OutcomeKind = iota
	OutcomeTable
	OutcomeNoData
	OutcomeTriageError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeTable:
		return "table"
	case OutcomeNoData:
		return "no_data"
	case OutcomeTriageError:
		return "triage_error"
	default:
		return "unknown"
	}
}

// Outcome is exactly one of Table, NoData or TriageError.
// Error is set only when Kind is OutcomeTriageError.
type Outcome struct {
	Kind    OutcomeKind        `json:"kind"`
	Error   *NetworkErrorEvent `json:"error,omitempty"`
	Elapsed time.Duration      `json:"elapsed"`
	Polls   int                `json:"polls"`
}

// TableOutcome reports the success signal.
func TableOutcome() Outcome { return Outcome{Kind: OutcomeTable} }

// NoDataOutcome reports the explicit empty-result signal.
func NoDataOutcome() Outcome { return Outcome{Kind: OutcomeNoData} }

// TriageErrorOutcome reports a captured network failure.
func TriageErrorOutcome(ev NetworkErrorEvent) Outcome {
	return Outcome{Kind: OutcomeTriageError, Error: &ev}
}

// Err returns a descriptive error for TriageError outcomes and nil otherwise.
func (o Outcome) Err() error {
	if o.Kind != OutcomeTriageError || o.Error == nil {
		return nil
	}
	return fmt.Errorf("triage error: %s", o.Error)
}

func (o Outcome) String() string {
	if o.Kind == OutcomeTriageError && o.Error != nil {
		return fmt.Sprintf("%s: %s", o.Kind, o.Error)
	}
	return o.Kind.String()
}

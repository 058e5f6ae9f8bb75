// errors.go — Timeout error raised when no signal resolves.
package outcome

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimeout matches every *TimeoutError via errors.Is.
var ErrTimeout = errors.New("outcome not resolved before timeout")

// TimeoutError reports that no predicate became true within the bound.
// It signals stuck test infrastructure and is never retried inside the core.
type TimeoutError struct {
	Timeout time.Duration
	Elapsed time.Duration
	Polls   int
	// Inconclusive is set when the network source could not observe traffic,
	// so a network failure cannot be ruled out.
	Inconclusive bool
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("no outcome resolved within %s (elapsed %s, %d polls): neither results, no-data nor a network error was observed",
		e.Timeout, e.Elapsed.Round(time.Millisecond), e.Polls)
	if e.Inconclusive {
		msg += "; network monitor unsupported, network errors cannot be ruled out"
	}
	return msg
}

// Is makes errors.Is(err, ErrTimeout) true.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

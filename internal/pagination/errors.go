// errors.go — Guard error raised when collection hits its fetch ceiling.
package pagination

import (
	"errors"
	"fmt"
)

// ErrGuardTripped matches every *GuardError via errors.Is.
var ErrGuardTripped = errors.New("pagination guard tripped")

// GuardError reports that the backend was still serving full, fresh pages
// when the fetch ceiling was reached.
type GuardError struct {
	MaxPages  int
	Collected int
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("pagination did not terminate after %d pages (%d items collected): backend keeps serving full pages",
		e.MaxPages, e.Collected)
}

// Is makes errors.Is(err, ErrGuardTripped) true.
func (e *GuardError) Is(target error) bool {
	return target == ErrGuardTripped
}

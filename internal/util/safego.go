// safego.go — Panic-recovering call wrapper for callbacks run on foreign goroutines.
package util

import (
	"fmt"
	"runtime/debug"
)

// PanicError is returned by SafeCall when fn panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// SafeCall runs fn on the calling goroutine and converts a panic into a
// *PanicError.
func SafeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}

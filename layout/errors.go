package layout

import (
	"errors"
	"fmt"
)

// ErrLayoutFailure is matched by every LayoutError.
var ErrLayoutFailure = errors.New("layout failure")

// LayoutError is the only error the report pipeline returns. No partial
// document accompanies it.
type LayoutError struct {
	Reason string
	Err    error
}

func (e *LayoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("layout failure: %s: %v", e.Reason, e.Err)
	}
	return "layout failure: " + e.Reason
}

func (e *LayoutError) Unwrap() error {
	return e.Err
}

func (e *LayoutError) Is(target error) bool {
	return target == ErrLayoutFailure
}

func failf(format string, args ...any) error {
	return &LayoutError{Reason: fmt.Sprintf(format, args...)}
}

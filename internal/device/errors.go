package device

import (
	"fmt"
	"strings"
)

// RestoreError names the mocked paths that could not be restored.
// Subsequent verifications would run against a corrupted sensor tree,
// so this ends a session.
type RestoreError struct {
	Paths    []string
	Attempts int
	Err      error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("unable to restore %d mocked path(s) after %d attempts: %s: %v",
		len(e.Paths), e.Attempts, strings.Join(e.Paths, ", "), e.Err)
}

func (e *RestoreError) Unwrap() error {
	return e.Err
}

package step

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownMethod is returned by Library.Call for a method the library does not have.
	ErrUnknownMethod = errors.New("unknown step library method")

	// ErrArgumentMismatch is returned by Library.Call when the arguments do not fit the method.
	ErrArgumentMismatch = errors.New("arguments do not match method signature")
)

// Failure is the first step failure of a scenario, returned once by Context.Done.
type Failure struct {
	Description string
	Cause       error
}

// Error implements error.
func (f *Failure) Error() string {
	return fmt.Sprintf("step %q failed: %v", f.Description, f.Cause)
}

// Unwrap returns the error the step body failed with.
func (f *Failure) Unwrap() error {
	return f.Cause
}

// recovered turns a recovered panic value into an error carrying a stack trace.
func recovered(description string, r interface{}) error {
	if err, ok := r.(error); ok {
		return errors.Wrapf(err, "panic in step %q", description)
	}
	return errors.Errorf("panic in step %q: %v", description, r)
}

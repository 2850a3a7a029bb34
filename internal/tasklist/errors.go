package tasklist

import (
	"errors"
	"fmt"
)

// ErrAddInFlight is returned when an add is requested while another is still running.
var ErrAddInFlight = errors.New("an add is already in progress")

// ValidationError reports a blank or malformed field at submission time.
// No store call is made when it is returned.
type ValidationError struct {
	Field  string // text or deadline
	Reason string // empty means the field was blank
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

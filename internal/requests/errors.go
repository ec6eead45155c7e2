package requests

import (
	"errors"
	"fmt"
)

// ErrAlreadyDecided is returned when a decision races against one that
// already reached the record; the record is unchanged and the loser is
// told so
var ErrAlreadyDecided = errors.New("request has already been decided")

// ErrUnroutedNotification is returned by Submit when the record was
// created but the notification channel for its kind is unset; callers
// should surface this to the submitter rather than swallow it
var ErrUnroutedNotification = errors.New("no notification channel is configured for this request kind")

// ValidationError reports malformed form input; it is recoverable and
// never creates a record
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AsValidationError unwraps `err` into a ValidationError when it is
// one, so transports can report it to the submitter instead of failing
// the operation
func AsValidationError(err error) (*ValidationError, bool) {
	var validationError *ValidationError
	if errors.As(err, &validationError) {
		return validationError, true
	}
	return nil, false
}

package model

import "errors"

var (
	// ErrJobNotFound is returned when a job id does not exist in the ledger.
	ErrJobNotFound = errors.New("import job not found")

	// ErrNotCancellable rejects cancel requests on jobs past processing.
	ErrNotCancellable = errors.New("job can only be cancelled while pending or processing")

	// ErrNotRetryable rejects retry requests on jobs that are not failed or cancelled.
	ErrNotRetryable = errors.New("job can only be retried after it failed or was cancelled")
)

// RowError is a row-level validation failure. Its message is user-facing and
// ends up verbatim in the row's error_message.
type RowError struct {
	Message string
}

func (e *RowError) Error() string {
	return e.Message
}

// NewRowError builds a RowError with a user-facing message.
func NewRowError(message string) *RowError {
	return &RowError{Message: message}
}

// IsRowError reports whether err is a row-level validation failure as opposed
// to an execution failure from a collaborator store.
func IsRowError(err error) bool {
	var re *RowError
	return errors.As(err, &re)
}

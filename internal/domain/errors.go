package domain

import "errors"

// Error kinds recoverable at the call boundary. Call sites wrap these with
// fmt.Errorf("...: %w", err) so callers can match with errors.Is.
var (
	// ErrInvalidDate reports an end before its start or a malformed
	// recurrence window.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidArgument reports a recurrence rule with neither an
	// occurrence count nor an end date, or a malformed weekday token.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict reports an event rejected by conflict admission.
	ErrConflict = errors.New("event conflict")

	// ErrUnsupportedOperation reports an illegal property/mode combination.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrNotFound reports that no event, occurrence or calendar matched.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedFormat reports an unknown import/export format.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

package meeting

import "errors"

var (
	// ErrMeetingNotFound indicates the guid is not the tracked meeting in the
	// state the operation requires.
	ErrMeetingNotFound = errors.New("meeting not found")
	// ErrInvalidInput indicates invalid user input. ValidationError matches it.
	ErrInvalidInput = errors.New("invalid meeting input")
)

// ValidationError reports which user-supplied value violated which
// constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Is lets errors.Is(err, ErrInvalidInput) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

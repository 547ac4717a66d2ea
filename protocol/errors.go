package protocol

import "fmt"

// UserError indicates an invalid request the caller constructed; it is never
// retried and surfaces immediately.
type UserError struct {
	Message string
}

// NewUserError builds a UserError from a format string.
func NewUserError(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

func (e *UserError) Error() string { return e.Message }

// ProtocolError indicates a wire payload shape the client cannot represent.
// It is fatal for the affected item but does not corrupt the rest of the
// response.
type ProtocolError struct {
	Message string
}

// NewProtocolError builds a ProtocolError from a format string.
func NewProtocolError(format string, args ...any) *ProtocolError {
	return &ProtocolError{Message: fmt.Sprintf(format, args...)}
}

func (e *ProtocolError) Error() string { return e.Message }

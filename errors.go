package agentwire

import "fmt"

// FeatureUnavailableError wraps a transport setup failure where no response
// event was ever received on a fresh connection. The caller cannot tell a
// wrong endpoint from a feature that is not enabled, so both report the
// same way with the original cause attached.
//
// This deliberately conflates several causes (wrong path, auth failure,
// genuinely unsupported); callers depend on the message, so it stays.
type FeatureUnavailableError struct {
	Cause error
}

func (e *FeatureUnavailableError) Error() string {
	if e.Cause == nil {
		return "the streaming transport may not be available or enabled for this endpoint"
	}
	return fmt.Sprintf("the streaming transport may not be available or enabled for this endpoint: %v", e.Cause)
}

// Unwrap exposes the original cause.
func (e *FeatureUnavailableError) Unwrap() error { return e.Cause }

// ReplayUnsafeError reports a connection loss after the request frame was
// sent: the service may already be processing it, so the client never
// resends automatically. The caller decides whether an application-level
// retry is safe.
type ReplayUnsafeError struct {
	Cause error
}

func (e *ReplayUnsafeError) Error() string {
	msg := "connection lost after the request was sent; the request may have been accepted by the service and is not retried automatically"
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes the original cause; nil when the socket closed cleanly.
func (e *ReplayUnsafeError) Unwrap() error { return e.Cause }

package remote

import (
	"errors"
	"fmt"

	"estimator/internal/estimate"
)

// ErrorKind categorizes a failed service call. The controller branches on
// the kind to pick the user-facing treatment: network errors suggest a
// retry, validation errors echo the server message, conflicts carry the
// location of the existing occurrence.
type ErrorKind int

const (
	// KindNetwork is a transport-level failure: the request did not
	// complete (timeout, refused connection, bad gateway).
	KindNetwork ErrorKind = iota
	// KindValidation is a rejected request: the server understood it and
	// said no (missing name, bad dimensions).
	KindValidation
	// KindConflict means the product already exists in the target room.
	// The error carries the estimate/room of the existing occurrence.
	KindConflict
	// KindServer is any other structured failure reported by the server.
	KindServer
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network error"
	case KindValidation:
		return "validation error"
	case KindConflict:
		return "conflict"
	case KindServer:
		return "server error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ServiceError is the failure half of every service response. Callers
// must branch on Kind before touching any payload field.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	// Detail is optional server-side debug detail, never shown to users.
	Detail string
	// EstimateID and RoomID locate the existing occurrence for conflicts.
	EstimateID estimate.EstimateID
	RoomID     estimate.RoomID
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text shown on the status line. Network errors
// get a generic retry-suggesting message; everything else echoes the
// server's wording.
func (e *ServiceError) UserMessage() string {
	if e.Kind == KindNetwork {
		return "Could not reach the estimate service. Please try again."
	}
	if e.Message != "" {
		return e.Message
	}
	return "Something went wrong. Please try again."
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(message string, err error) *ServiceError {
	return &ServiceError{Kind: KindNetwork, Message: message, Err: err}
}

// NewValidationError reports a rejected request.
func NewValidationError(message string) *ServiceError {
	return &ServiceError{Kind: KindValidation, Message: message}
}

// NewConflictError reports a duplicate product, locating the existing
// occurrence so the UI can re-expand its branch.
func NewConflictError(message string, estimateID estimate.EstimateID, roomID estimate.RoomID) *ServiceError {
	return &ServiceError{Kind: KindConflict, Message: message, EstimateID: estimateID, RoomID: roomID}
}

// AsServiceError extracts a *ServiceError from an error chain.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsConflict reports whether err is a duplicate-entity conflict.
func IsConflict(err error) bool {
	se, ok := AsServiceError(err)
	return ok && se.Kind == KindConflict
}

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool {
	se, ok := AsServiceError(err)
	return ok && se.Kind == KindNetwork
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	se, ok := AsServiceError(err)
	return ok && se.Kind == KindValidation
}

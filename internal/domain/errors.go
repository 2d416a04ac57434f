package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDocumentNotFound is returned by a document store when no document
	// exists at the requested path.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrNoSession indicates a request arrived without an established session.
	ErrNoSession = errors.New("no active session")
)

// StoreWriteError reports a failed write to the backing store. Create and
// record operations surface it to the caller as a hard failure: a
// user-visible action must not claim success without durable persistence.
type StoreWriteError struct {
	Path string
	Err  error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store write failed for %s: %v", e.Path, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// ValidationError reports malformed input rejected before any store or
// network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DispatchError reports a failed verification-message delivery.
// Configuration distinguishes "the email service is not set up" from a
// transient delivery problem.
type DispatchError struct {
	Configuration bool
	Message       string
	Err           error
}

func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DispatchError) Unwrap() error { return e.Err }

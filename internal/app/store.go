package app

import (
	"context"
	"encoding/json"
)

// DocumentStore abstracts the hierarchical keyed document store the platform
// persists into (Redis, Postgres, in-memory). Paths are of the form
// "quizzes/{id}", "attempts/{id}", "users/{id}".
type DocumentStore interface {
	// Get returns the document at path, or domain.ErrDocumentNotFound.
	Get(ctx context.Context, path string) (json.RawMessage, error)
	// Set writes the document at path, overwriting any previous value.
	Set(ctx context.Context, path string, doc json.RawMessage) error
	// SetIfAbsent writes only when no document exists at path and reports
	// whether this call performed the write. It is the atomic guard for
	// check-then-create flows.
	SetIfAbsent(ctx context.Context, path string, doc json.RawMessage) (bool, error)
	// Remove deletes the document at path. Removing an absent path is not
	// an error.
	Remove(ctx context.Context, path string) error
	// List returns every document under collection, in unspecified order.
	List(ctx context.Context, collection string) ([]json.RawMessage, error)
}

const (
	quizCollection    = "quizzes"
	attemptCollection = "attempts"
	userCollection    = "users"
)

func quizPath(id string) string    { return quizCollection + "/" + id }
func attemptPath(id string) string { return attemptCollection + "/" + id }
func userPath(id string) string    { return userCollection + "/" + id }

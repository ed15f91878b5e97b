package store

import "errors"

// Common errors returned by the store
var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session has expired")
)

// SessionStore keeps live view sessions keyed by session ID.
type SessionStore[V any] interface {
	// Get returns the session and refreshes its idle timer
	Get(id string) (V, error)

	// Put stores a session under id, replacing any previous one
	Put(id string, v V)

	// Delete drops a session; unknown ids are ignored
	Delete(id string)

	// Len returns the number of stored sessions, expired or not
	Len() int

	// Close shuts down the store and any background processes
	Close() error
}

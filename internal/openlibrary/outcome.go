package openlibrary

import "errors"

var (
	// ErrTransport covers network failures and rate-limit waits that never
	// reached the provider.
	ErrTransport = errors.New("open library transport failure")

	// ErrMalformedResponse is returned when the body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed open library response")

	// ErrEmptyIdentifier is returned when an ISBN, work or author lookup is
	// attempted with a blank identifier.
	ErrEmptyIdentifier = errors.New("empty identifier")
)

// Status classifies how a lookup ended.
type Status int

const (
	// StatusOK means the provider answered with at least one match.
	StatusOK Status = iota
	// StatusNoMatch means the provider answered but matched nothing.
	StatusNoMatch
	// StatusFailed means the request or its decoding failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoMatch:
		return "no_match"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome carries a lookup value together with how the lookup ended, so
// "nothing found" and "request failed" stay distinguishable internally.
type Outcome[T any] struct {
	Value  T
	Status Status
	Err    error
}

// Failed reports whether the lookup failed.
func (o Outcome[T]) Failed() bool {
	return o.Status == StatusFailed
}

func matched[T any](value T) Outcome[T] {
	return Outcome[T]{Value: value, Status: StatusOK}
}

func noMatch[T any](value T) Outcome[T] {
	return Outcome[T]{Value: value, Status: StatusNoMatch}
}

func failed[T any](err error) Outcome[T] {
	return Outcome[T]{Status: StatusFailed, Err: err}
}

// Package assistant groups the conversational product-resolution
// components. The subpackages hold the parts; this package holds the error
// taxonomy they share.
package assistant

import "errors"

var (
	// ErrNoCandidateFound means no product cleared the minimum score.
	ErrNoCandidateFound = errors.New("no candidate found")
	// ErrAmbiguousQuery means several products scored but none clearly won.
	ErrAmbiguousQuery = errors.New("ambiguous query")
	// ErrSessionExpired marks a session idle past its TTL. It is never
	// surfaced: the session is recreated transparently.
	ErrSessionExpired = errors.New("session expired")
	// ErrMalformedReference marks a reference phrase with nothing to point
	// at. The resolver declines instead of guessing.
	ErrMalformedReference = errors.New("malformed reference")
	ErrInvalidInput       = errors.New("invalid input")
)

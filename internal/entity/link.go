// Package entity defines the entities and errors used in the application.
// It includes the Link struct, which maps a short code to a long URL together
// with its visit counter, and the error taxonomy shared by all layers.
package entity

import "errors"

var (
	// ErrInvalidRequest is returned when a request body is malformed or misses the long URL.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidURL is returned when a long URL fails the scheme check.
	ErrInvalidURL = errors.New("url scheme check failed")
	// ErrShortCodeConflict is returned when a short code is malformed or already taken.
	ErrShortCodeConflict = errors.New("short code not valid or already in use")
	// ErrLinkNotFound is returned when no link owns the requested short code.
	ErrLinkNotFound = errors.New("link not found")
	// ErrNoChange is returned when an edit would leave the long URL as it is.
	ErrNoChange = errors.New("long url is the same")
	// ErrUnauthorized is returned when neither a session nor an API key authorizes a request.
	ErrUnauthorized = errors.New("not logged in")
	// ErrStoreFailure marks an unexpected persistence error.
	ErrStoreFailure = errors.New("store failure")
)

var (
	// ErrShortCodeExists is returned by the store when the short code is already taken.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrAPIKeyNotFound is returned by the store when no API key has been generated.
	ErrAPIKeyNotFound = errors.New("api key not found")
)

// Link represents a shortened URL.
type Link struct {
	ShortCode string // ShortCode is the unique code typed after the site URL.
	LongURL   string // LongURL is the address the short code redirects to.
	HitCount  int64  // HitCount is the number of successful resolutions.
}

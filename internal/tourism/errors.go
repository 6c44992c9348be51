package tourism

import "errors"

var (
	// ErrUnauthorized is returned when the backend answers 401. It is never
	// served from synthetic data and clears the caller's session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable is returned when neither the live backend nor any
	// fallback could produce a payload.
	ErrUnavailable = errors.New("tourism data unavailable")

	// ErrMalformedPayload is returned by sources for bodies that are not JSON.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrNoRecommendations marks an empty recommendation search. It is
	// informational: the accompanying result is still rendered.
	ErrNoRecommendations = errors.New("no recommendations")

	// ErrSessionNotFound is returned by session stores for unknown IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrAuthNotSupported is returned when the live source cannot register
	// or log users in.
	ErrAuthNotSupported = errors.New("authentication not supported by source")
)

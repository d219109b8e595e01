package feeds

import "errors"

var (
	// ErrUpstreamUnavailable indicates a transport or HTTP failure reaching
	// an upstream feed.
	ErrUpstreamUnavailable = errors.New("upstream feed unavailable")

	// ErrSchemaNotLoaded indicates the binary decode schema has not been
	// initialized yet; callers must not treat this as an empty feed.
	ErrSchemaNotLoaded = errors.New("feed schema not loaded")

	// ErrMalformedPayload indicates the expected top-level structure of an
	// upstream payload is missing or undecodable.
	ErrMalformedPayload = errors.New("malformed upstream payload")

	// ErrPredictionsUnavailable indicates at least one leg of a two-stop
	// predictions fetch failed at call level; no partial result is returned.
	ErrPredictionsUnavailable = errors.New("predictions unavailable")

	// ErrValidationFailed indicates a user-entered stop id was not found in
	// the static stop/route cache.
	ErrValidationFailed = errors.New("stop validation failed")
)

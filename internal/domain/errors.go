package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable means an external API could not be reached
	// (connection failure, timeout, unreadable body).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUpstreamRejected means an external API answered with a non-2xx status.
	ErrUpstreamRejected = errors.New("upstream rejected request")

	// ErrNotFound means a named lookup (city, district, place) had no match.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means a malformed date or out-of-range parameter.
	ErrInvalidInput = errors.New("invalid input")
)

// UpstreamError describes a failed call to an external API. It matches
// ErrUpstreamRejected when StatusCode is set and ErrUpstreamUnavailable otherwise.
type UpstreamError struct {
	Service    string // "open-meteo", "ibge", "brasil-aberto", "nominatim", "mapbox"
	Target     string // what was being fetched, e.g. "lat=-23.5320 lon=-46.5650"
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Service, e.Target, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Service, e.Target, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool {
	if e.StatusCode != 0 {
		return target == ErrUpstreamRejected
	}
	return target == ErrUpstreamUnavailable
}

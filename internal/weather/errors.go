package weather

import "errors"

var (
	// ErrInvalidInput is returned for empty or unmatched city names where an exact match is required.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when geocoding or reverse geocoding yields nothing
	// or the geocoder cannot be reached.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnavailable is returned when the weather service fails.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrGeolocationDenied is returned when the device location cannot be obtained.
	ErrGeolocationDenied = errors.New("geolocation denied")
	// ErrGeolocationTimeout is returned when the device location is not available in time.
	ErrGeolocationTimeout = errors.New("geolocation timeout")
	// ErrPersistence is returned when favorites or view state could not be written.
	ErrPersistence = errors.New("persistence failure")
)

// Kind classifies errors for the notification channel.
type Kind string

const (
	KindInvalidInput        Kind = "InvalidInput"
	KindNotFound            Kind = "NotFound"
	KindUpstreamUnavailable Kind = "UpstreamUnavailable"
	KindGeolocationDenied   Kind = "GeolocationDenied"
	KindGeolocationTimeout  Kind = "GeolocationTimeout"
	KindPersistence         Kind = "PersistenceFailure"
	KindInternal            Kind = "Internal"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrInvalidInput, KindInvalidInput},
	{ErrNotFound, KindNotFound},
	{ErrUpstreamUnavailable, KindUpstreamUnavailable},
	{ErrGeolocationDenied, KindGeolocationDenied},
	{ErrGeolocationTimeout, KindGeolocationTimeout},
	{ErrPersistence, KindPersistence},
}

// KindOf returns the kind of the first taxonomy sentinel wrapped by err.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

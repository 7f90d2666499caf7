package catalog

import "fmt"

// Kind is the machine-checkable classification of a catalog error.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindInvalidInput        Kind = "invalid_input"
	KindDuplicate           Kind = "duplicate"
	KindSyncFailure         Kind = "sync_failure"
	KindDataCorruption      Kind = "data_corruption"
	KindMissingLocationData Kind = "missing_location_data"
	KindUnsupportedCity     Kind = "unsupported_city"
	KindDatasetNotFound     Kind = "dataset_not_found"
	KindInvalidCategory     Kind = "invalid_category"
)

// Error is the catalog domain error. Storage-layer errors are never surfaced
// raw: repository methods wrap them here with enough context (city, query)
// to be actionable, keeping the original as Err for diagnostics.
type Error struct {
	Kind    Kind
	Context string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind: errors.Is(err, &Error{Kind: KindNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Description returns a human-readable summary suitable for display.
func (e *Error) Description() string {
	switch e.Kind {
	case KindNotFound:
		return "The requested park could not be found."
	case KindInvalidInput:
		return "The request was invalid."
	case KindDuplicate:
		return "A park with that name already exists."
	case KindSyncFailure:
		return "The park catalog could not be refreshed."
	case KindDataCorruption:
		return "The park catalog appears to be damaged."
	case KindMissingLocationData:
		return "No location is available for this park."
	case KindUnsupportedCity:
		return "That city is not in the catalog yet."
	case KindDatasetNotFound:
		return "The bundled park dataset is missing."
	case KindInvalidCategory:
		return "The park data contains an unrecognized category."
	default:
		return "Something went wrong with the park catalog."
	}
}

// RecoverySuggestion returns a next step the presentation layer can show.
func (e *Error) RecoverySuggestion() string {
	switch e.Kind {
	case KindSyncFailure, KindDatasetNotFound:
		return "Try refreshing the catalog again later."
	case KindInvalidInput:
		return "Adjust the request and try again."
	case KindUnsupportedCity:
		return "Choose one of the supported cities."
	default:
		return "If the problem persists, reinstall or contact support."
	}
}

func wrapf(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Context: fmt.Sprintf(format, args...), Err: err}
}

package migrate

import "fmt"

// Kind is the machine-checkable classification of a migration error.
type Kind string

const (
	KindMigrationFailed  Kind = "migration_failed"
	KindValidationFailed Kind = "validation_failed"
	KindBackupFailed     Kind = "backup_failed"
)

// Error is the migration domain error.
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
	case KindMigrationFailed:
		return "Your data could not be upgraded to the new version."
	case KindValidationFailed:
		return "Some records look inconsistent after the upgrade."
	case KindBackupFailed:
		return "A pre-upgrade snapshot could not be recorded."
	default:
		return "Something went wrong upgrading your data."
	}
}

// RecoverySuggestion returns a next step the presentation layer can show.
func (e *Error) RecoverySuggestion() string {
	switch e.Kind {
	case KindValidationFailed:
		return "Refresh the catalog; orphaned visits resolve once their parks load."
	default:
		return "Restart the app; if the problem persists, contact support."
	}
}

func wrapf(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Context: fmt.Sprintf(format, args...), Err: err}
}

package errors

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration     = errors.New("invalid index configuration")
	ErrDuplicateDocument = errors.New("duplicate document id")
	ErrMissingIdentifier = errors.New("document does not have an id field")
	ErrMalformedDocument = errors.New("malformed document")
	ErrAlreadyFinalized  = errors.New("index already finalized")
	ErrSchemaVersion     = errors.New("unsupported serialization version")
	ErrMalformedArtifact = errors.New("malformed index artifact")
	ErrUsage             = errors.New("invalid usage")
	ErrInternal          = errors.New("internal error")
)

// Process exit codes reported by the CLI.
const (
	ExitOK       = 0
	ExitInternal = 1
	ExitUsage    = 2
	ExitInput    = 3
	ExitArtifact = 4
)

type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, exitCode int, message string) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  message,
		ExitCode: exitCode,
	}
}

func Newf(sentinel error, exitCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: exitCode,
	}
}

// ConfigurationError reports a missing or malformed configuration key.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %q %s", ErrConfiguration, e.Key, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// DuplicateDocumentError is returned when two documents resolve to the same
// external id. Positions are zero-based offsets in the input sequence.
type DuplicateDocumentError struct {
	ID            string
	FirstPosition int
	Position      int
}

func (e *DuplicateDocumentError) Error() string {
	return fmt.Sprintf("%s %s: first seen at position %d, repeated at position %d",
		ErrDuplicateDocument, e.ID, e.FirstPosition, e.Position)
}

func (e *DuplicateDocumentError) Unwrap() error {
	return ErrDuplicateDocument
}

type SchemaVersionError struct {
	Version int
}

func (e *SchemaVersionError) Error() string {
	return fmt.Sprintf("%s: %d", ErrSchemaVersion, e.Version)
}

func (e *SchemaVersionError) Unwrap() error {
	return ErrSchemaVersion
}

// MalformedArtifactError names the artifact section that violated a
// structural invariant.
type MalformedArtifactError struct {
	Section string
	Detail  string
}

func (e *MalformedArtifactError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrMalformedArtifact, e.Section, e.Detail)
}

func (e *MalformedArtifactError) Unwrap() error {
	return ErrMalformedArtifact
}

func Malformed(section, format string, args ...any) *MalformedArtifactError {
	return &MalformedArtifactError{Section: section, Detail: fmt.Sprintf(format, args...)}
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}

	switch {
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, ErrDuplicateDocument),
		errors.Is(err, ErrMissingIdentifier),
		errors.Is(err, ErrMalformedDocument):
		return ExitInput
	case errors.Is(err, ErrSchemaVersion), errors.Is(err, ErrMalformedArtifact):
		return ExitArtifact
	default:
		return ExitInternal
	}
}

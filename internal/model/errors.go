package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by the mount reconciler. They are wrapped inside
// CLIError values so callers can use errors.Is while the CLI layer still
// gets a specific exit code.
var (
	// ErrMalformedConfiguration means devcontainer.json is not valid
	// structured data, or "mounts" is present but not a list of strings.
	ErrMalformedConfiguration = errors.New("malformed configuration")

	// ErrPrivilegeEscalationRisk means the launch arguments grant a
	// capability that would let the container remount its configuration
	// writable. Mutating operations refuse to run.
	ErrPrivilegeEscalationRisk = errors.New("privilege escalation risk")

	// ErrInvalidPath means a user-supplied host path does not exist.
	ErrInvalidPath = errors.New("invalid path")
)

// ExitCode defines the CLI exit codes. They allow scripts to determine
// the outcome of a command programmatically.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitDevContainerNotFound indicates devcontainer.json was not found
	// in the expected location.
	ExitDevContainerNotFound ExitCode = 2

	// ExitRuntimeUnavailable indicates neither Docker nor Podman could be
	// reached.
	ExitRuntimeUnavailable ExitCode = 3

	// ExitMalformedConfig indicates devcontainer.json could not be parsed.
	ExitMalformedConfig ExitCode = 4

	// ExitPrivilegeEscalation indicates a forbidden capability was found
	// in the launch arguments.
	ExitPrivilegeEscalation ExitCode = 5

	// ExitInvalidPath indicates a supplied host path does not exist.
	ExitInvalidPath ExitCode = 6

	// ExitDevcontainerCLI indicates the devcontainer CLI failed.
	ExitDevcontainerCLI ExitCode = 7

	// ExitGitError indicates a git invocation failed.
	ExitGitError ExitCode = 8
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// MalformedConfigError returns a CLIError for an unparseable document.
// The underlying cause is joined with ErrMalformedConfiguration.
func MalformedConfigError(path string, cause error) *CLIError {
	err := ErrMalformedConfiguration
	switch {
	case cause == nil:
	case errors.Is(cause, ErrMalformedConfiguration):
		err = cause
	default:
		err = fmt.Errorf("%w: %w", ErrMalformedConfiguration, cause)
	}
	return WrapCLIError(ExitMalformedConfig, fmt.Sprintf("cannot use %s", path), err)
}

// PrivilegeEscalationError returns a CLIError naming the offending
// launch argument.
func PrivilegeEscalationError(path, token string) *CLIError {
	return WrapCLIError(
		ExitPrivilegeEscalation,
		fmt.Sprintf("refusing to modify %s: runArgs contains %q, which would allow the container to remount its configuration writable", path, token),
		ErrPrivilegeEscalationRisk,
	)
}

// InvalidPathError returns a CLIError for a host path that does not exist.
func InvalidPathError(path string, cause error) *CLIError {
	err := ErrInvalidPath
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidPath, cause)
	}
	return WrapCLIError(ExitInvalidPath, fmt.Sprintf("host path %s does not exist", path), err)
}

// PreservedMountsError reports a failed merge after custom mounts were
// already extracted. The message lists the mounts so the user can re-apply
// them by hand.
type PreservedMountsError struct {
	// Mounts are the custom mount specifications that were not re-applied.
	Mounts []string

	// Err is the cause of the failure.
	Err error
}

// Error lists the unmerged mounts after the cause.
func (e *PreservedMountsError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v; these custom mounts were not restored and must be re-added manually:", e.Err)
	for _, m := range e.Mounts {
		b.WriteString("\n  ")
		b.WriteString(m)
	}
	return b.String()
}

// Unwrap returns the cause.
func (e *PreservedMountsError) Unwrap() error {
	return e.Err
}

// ExitCodeOf returns the exit code carried by err, or ExitGeneralError.
func ExitCodeOf(err error) ExitCode {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	return ExitGeneralError
}

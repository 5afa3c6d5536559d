package exitcodes

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for push-ota
const (
	// Success indicates successful command completion
	Success = 0

	// GeneralError indicates a general/unknown error
	GeneralError = 1

	// InvalidArgs indicates invalid command-line arguments or flags
	InvalidArgs = 2

	// PreconditionFailed indicates a precondition was not met
	// (e.g., no update available, a download already running)
	PreconditionFailed = 3

	// NetworkError indicates the update agent could not be reached or
	// answered with an error
	NetworkError = 4

	// ReloadError indicates the agent failed to reload the application
	ReloadError = 5

	// ValidationError indicates validation failure
	// (e.g., invalid config file, malformed agent URL)
	ValidationError = 6
)

// ExitWithError prints error message to stderr and exits with the given code
func ExitWithError(code int, msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}

// CodeForError returns the exit code carried by the first ErrorWithCode in
// err's chain, or GeneralError when there is none.
func CodeForError(err error) int {
	if err == nil {
		return Success
	}

	var ec *ErrorWithCode
	if errors.As(err, &ec) {
		return ec.Code
	}
	return GeneralError
}

package cmdutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/endorses/dashsync/internal/pkg/types"
)

// Exit codes for CLI commands
const (
	ExitSuccess         = 0
	ExitGeneralError    = 1
	ExitConnectionError = 2
	ExitValidationError = 3
	ExitDomainFailure   = 4
)

// ExitCodeFor maps an error to the process exit code
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case types.IsValidationError(err):
		return ExitValidationError
	case types.IsDomainFailure(err):
		return ExitDomainFailure
	case errors.Is(err, types.ErrNoResponse), types.IsTransportError(err):
		return ExitConnectionError
	default:
		return ExitGeneralError
	}
}

// ErrorResponse is the JSON error written to stderr
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// OutputError writes err to stderr as JSON and exits with code
func OutputError(err error, exitCode int) {
	data, _ := json.Marshal(ErrorResponse{Error: err.Error(), Code: exitCodeName(exitCode)})
	fmt.Fprintln(os.Stderr, string(data))
	os.Exit(exitCode)
}

// Exit terminates with the code matching err. Command failures have
// already been shown as feedback, so nothing more is printed.
func Exit(err error) {
	os.Exit(ExitCodeFor(err))
}

func exitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "OK"
	case ExitConnectionError:
		return "UNAVAILABLE"
	case ExitValidationError:
		return "INVALID_ARGUMENT"
	case ExitDomainFailure:
		return "FAILED_PRECONDITION"
	default:
		return "UNKNOWN"
	}
}

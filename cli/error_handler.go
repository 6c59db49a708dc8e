package cli

import (
	"fmt"
	"os"

	"github.com/grovetools/fsevents/errors"
)

// ErrorHandler provides user-friendly error messages.
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{Verbose: verbose}
}

// Handle provides user-friendly error messages based on error code.
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "Configuration not found. Create an fswatch.yml or pass --config.\n")
		return err

	case errors.ErrCodeWatchUnsupported:
		fmt.Fprintf(os.Stderr, "Native FSEvents streams require macOS. Use the portable 'watch' command instead.\n")
		return err

	case errors.ErrCodeInvalidPath:
		if werr, ok := err.(*errors.Error); ok {
			fmt.Fprintf(os.Stderr, "Cannot watch '%v': check that the path exists and is readable.\n", werr.Details["path"])
		} else {
			fmt.Fprintf(os.Stderr, "Cannot watch the given path: %v\n", err)
		}
		return err

	case errors.ErrCodeFlagCombination:
		fmt.Fprintf(os.Stderr, "Invalid flag combination: 'use-extended-data' also needs 'use-cf-types'.\n")
		return err

	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if h.Verbose {
			if werr, ok := err.(*errors.Error); ok && len(werr.Details) > 0 {
				fmt.Fprintf(os.Stderr, "\nError details: %v\n", werr.Details)
			}
		}
		return err
	}
}

package errors

import "fmt"

// InvalidPath creates an invalid watch path error
func InvalidPath(path string, cause error) *Error {
	return Wrap(cause, ErrCodeInvalidPath, fmt.Sprintf("invalid watch path: %s", path)).
		WithDetail("path", path)
}

// FlagCombination creates an illegal creation-flag combination error
func FlagCombination(reason string) *Error {
	return New(ErrCodeFlagCombination, fmt.Sprintf("illegal flag combination: %s", reason))
}

// WatchUnsupported creates an error for platforms without a native backend
func WatchUnsupported(goos string) *Error {
	return New(ErrCodeWatchUnsupported,
		fmt.Sprintf("native event streams are not supported on %s", goos)).
		WithDetail("goos", goos)
}

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *Error {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *Error {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

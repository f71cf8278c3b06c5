// Package errors provides storyflow's sentinel errors and user-facing error
// wrapping for the command line tools.
//
// Core types:
//   - CLIError: Wraps errors with message, suggestion, and details
//   - Messenger: Interface for customizing error messages
//
// Sentinel errors:
//   - ErrMissingConfig / ErrInvalidConfig: settings problems
//   - ErrNoFace / ErrUnsupportedFormat: media input problems
//   - ErrLLMUnavailable: model backend could not be reached or started
//   - ErrConnectionFailed: remote service is unreachable
//   - ErrNotAuthenticated / ErrSessionExpired: media API credentials
//
// Example usage:
//
//	if bucket == "" {
//	    return errors.NewMissingConfigError("processed_bucket")
//	}
//
//	if errors.IsConfigError(err) {
//	    // show setup instructions
//	}
package errors

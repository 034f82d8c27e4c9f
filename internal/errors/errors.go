package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrNotConfigured    = errors.New("backend not configured")
	ErrNoDeviceSelected = errors.New("no device selected")
	ErrDeviceNotFound   = errors.New("device not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrRateLimited      = errors.New("rate limited")
	ErrNetworkError     = errors.New("network error")
	ErrTimeout          = errors.New("request timeout")
	ErrConfigNotFound   = errors.New("config file not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// LookoutError wraps an error with a user-friendly suggestion.
type LookoutError struct {
	Err        error
	Suggestion string
}

func (e *LookoutError) Error() string {
	return e.Err.Error()
}

func (e *LookoutError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &LookoutError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var lookoutErr *LookoutError
	if errors.As(err, &lookoutErr) && lookoutErr.Suggestion != "" {
		return lookoutErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrNotConfigured) {
		return "Set backend.url and backend.key in ~/.lookoutrc or via LOOKOUT_BACKEND_URL / LOOKOUT_BACKEND_KEY"
	}

	// Authentication errors
	if errors.Is(err, ErrUnauthorized) || strings.Contains(errStr, "invalid api key") ||
		strings.Contains(errStr, "jwt") || strings.Contains(errStr, "401") {
		return "Check backend.key; the service rejected the API key"
	}

	if errors.Is(err, ErrDeviceNotFound) || strings.Contains(errStr, "device not found") {
		return "Run 'lookout devices' to see registered devices"
	}

	if errors.Is(err, ErrNoDeviceSelected) {
		return "Select a device first"
	}

	// Rate limiting
	if errors.Is(err, ErrRateLimited) || strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") {
		return "Too many requests. Wait a moment and try again"
	}

	// Network errors
	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") {
		return "Check your internet connection and backend.url"
	}

	// Config errors
	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) || strings.Contains(errStr, "config") {
		return "Run 'lookout config init' to create a configuration file"
	}

	if strings.Contains(errStr, "500") || strings.Contains(errStr, "server error") {
		return "The backend is having issues. Try again in a moment"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

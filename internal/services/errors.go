package services

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError reports required environment variables that are not set.
// It aborts a run before any network activity.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Missing, ", "))
}

// FetchError is returned after every retry attempt for a URL has failed.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotificationError wraps a summary-email delivery failure. Ingestion work is
// already durable when it occurs, but the run still counts as failed.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("failed to send notification email: %v", e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// publicMessage maps a run-level error to the message exposed in the HTTP
// error body. Known monitor failures carry their own message; anything else
// is reported generically so internal detail does not leak to the caller.
func publicMessage(err error) string {
	var cfgErr *ConfigError
	var fetchErr *FetchError
	var notifyErr *NotificationError
	if errors.As(err, &cfgErr) || errors.As(err, &fetchErr) || errors.As(err, &notifyErr) {
		return err.Error()
	}
	return "Error interno del servidor"
}

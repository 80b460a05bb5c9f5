// Package sl holds small slog helpers shared across the service.
package sl

import "log/slog"

// Err wraps an error as the "error" attribute. A nil error renders as "<nil>".
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

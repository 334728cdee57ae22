package log

import (
	"time"
)

// HTTPLogEntry represents an HTTP request/response log entry
type HTTPLogEntry struct {
	Method     string
	Path       string
	Status     int
	Duration   time.Duration
	Size       int
	RemoteAddr string
	UserAgent  string
	Error      error
}

// LogHTTPRequest logs a served request. Server errors (5xx) and requests
// that carry an error are logged at error level.
func LogHTTPRequest(e HTTPLogEntry) {
	fields := []interface{}{
		"method", e.Method,
		"path", e.Path,
		"status", e.Status,
		"duration_ms", e.Duration.Milliseconds(),
		"size", e.Size,
		"remote_addr", e.RemoteAddr,
		"user_agent", e.UserAgent,
	}
	if e.Error != nil || e.Status >= 500 {
		if e.Error != nil {
			fields = append(fields, "error", e.Error.Error())
		}
		sugar().Errorw("http request", fields...)
		return
	}
	sugar().Infow("http request", fields...)
}

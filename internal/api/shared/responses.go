package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
)

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"-"`
	TraceID string `json:"trace_id,omitempty"`
}

// ResponseOption adjusts how an error response is logged.
type ResponseOption func(*errorLogSettings)

type errorLogSettings struct {
	warnOnClientError bool
}

// WithElevatedLogLevel raises 4xx logging from DEBUG to WARN. Used for
// authentication failures, which operators want to see.
func WithElevatedLogLevel() ResponseOption {
	return func(s *errorLogSettings) { s.warnOnClientError = true }
}

// RespondWithJSON encodes data with the given status code.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		requestLogger(r).Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// RespondWithError writes message as the error body without a cause to log.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondWithErrorAndLog(w, r, status, message, nil)
}

// RespondWithErrorAndLog sends userMessage to the client and logs cause in
// redacted form. The cause text is never written to the response.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	cause error,
	opts ...ResponseOption,
) {
	var settings errorLogSettings
	for _, opt := range opts {
		opt(&settings)
	}

	traceID := GetTraceID(r.Context())
	attrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}
	if cause != nil {
		attrs = append(attrs,
			slog.String("error", redact.Error(cause)),
			slog.String("error_type", fmt.Sprintf("%T", cause)))
	}
	requestLogger(r).LogAttrs(r.Context(), levelForStatus(status, settings), "API error response", attrs...)

	RespondWithJSON(w, r, status, ErrorResponse{Error: userMessage, Code: status, TraceID: traceID})
}

func levelForStatus(status int, s errorLogSettings) slog.Level {
	if status >= http.StatusInternalServerError {
		return slog.LevelError
	}
	if status == http.StatusTooManyRequests || (s.warnOnClientError && status >= http.StatusBadRequest) {
		return slog.LevelWarn
	}
	return slog.LevelDebug
}

func requestLogger(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), slog.Default())
}

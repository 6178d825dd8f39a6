package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// TraceMiddleware tags each request with a fresh trace ID and puts a logger
// carrying that ID into the request context. Downstream handlers, services
// and stores pick it up through logger.FromContextOrDefault.
func TraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			reqLog := logger.FromContextOrDefault(ctx, base).
				With(slog.String("trace_id", shared.GetTraceID(ctx)))

			reqLog.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(logger.WithLogger(ctx, reqLog)))
		}
		return http.HandlerFunc(fn)
	}
}

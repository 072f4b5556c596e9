package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/moneylog/pkg/logger"
)

type loggerMiddleware struct {
	Log *slog.Logger
	now func() time.Time
}

func NewLoggerMiddleware(log *slog.Logger) *loggerMiddleware {
	return &loggerMiddleware{Log: log, now: time.Now}
}

// LoggerMiddleware puts a request-scoped logger in the context and logs
// each API call when it completes. Shell asset requests are not logged;
// the asset cache logs its own misses.
// This should be one of the first middlewares in the chain.
func (m *loggerMiddleware) LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLog := m.Log.With(
			"request_id", chimiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
		ctx := logger.ToContext(r.Context(), reqLog)

		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		start := m.now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		reqLog.Debug("request completed",
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", m.now().Sub(start).Milliseconds(),
		)
	})
}

package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// responseMeter records what the handler wrote.
type responseMeter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (m *responseMeter) WriteHeader(code int) {
	if m.status == 0 {
		m.status = code
	}
	m.ResponseWriter.WriteHeader(code)
}

func (m *responseMeter) Write(b []byte) (int, error) {
	if m.status == 0 {
		m.status = http.StatusOK
	}
	n, err := m.ResponseWriter.Write(b)
	m.bytes += n
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (m *responseMeter) Unwrap() http.ResponseWriter {
	return m.ResponseWriter
}

// Logger writes one "request" entry per request once the handler returns.
// 5xx responses log at error level and 4xx at warn.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			meter := &responseMeter{ResponseWriter: w}

			next.ServeHTTP(meter, r)

			status := meter.status
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "request",
				slog.String("method", r.Method),
				slog.String("uri", r.URL.RequestURI()),
				slog.Int("status", status),
				slog.Int("bytes", meter.bytes),
				slog.String("addr", r.RemoteAddr),
				slog.String("request_id", RequestIDFrom(r.Context())),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

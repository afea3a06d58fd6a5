package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestObserver receives the latency of every finished request
type RequestObserver interface {
	ObserveRequest(route, method string, status int, elapsed time.Duration)
}

// AccessLog writes one line per request and feeds the latency histogram.
// observer may be nil.
func AccessLog(log *zap.Logger, observer RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			log.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", elapsed),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.String("user_agent", r.UserAgent()),
			)

			if observer != nil {
				observer.ObserveRequest(routePattern(r), r.Method, status, elapsed)
			}
		})
	}
}

// routePattern keeps histogram labels bounded: unmatched paths share one label
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

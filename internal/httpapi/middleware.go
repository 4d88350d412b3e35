package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/netolib/library-service/internal/observability"
)

const (
	requestIDHeader = "X-Request-Id"

	logMsgRequestHandled = "request handled"
	logMsgPanicRecovered = "panic recovered"

	logAttrMethod    = "method"
	logAttrPath      = "path"
	logAttrStatus    = "status"
	logAttrDuration  = "duration_ms"
	logAttrRequestID = "request_id"
	logAttrPanic     = "panic"

	metricRequestDuration = "libraryapi_request_duration"
	metricPanics          = "libraryapi_panics"

	labelMethod = "method"
	labelPath   = "path"
	labelStatus = "status"
)

// Middleware wraps a handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain applies the middlewares to the handler, the first one listed
// becoming the outermost.
func Chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	return handler
}

// statusRecorder captures the status code written by the inner handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestID assigns every request an id, keeping one supplied by the
// client, and echoes it on the response.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}

			r.Header.Set(requestIDHeader, id)
			w.Header().Set(requestIDHeader, id)

			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog logs one line per handled request.
func AccessLog(log observability.ContextualLogger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			log.InfoContext(r.Context(), logMsgRequestHandled,
				logAttrMethod, r.Method,
				logAttrPath, r.URL.Path,
				logAttrStatus, recorder.status,
				logAttrDuration, float64(time.Since(start).Nanoseconds())/1e6,
				logAttrRequestID, r.Header.Get(requestIDHeader),
			)
		})
	}
}

// Recover turns a handler panic into a 500 response instead of tearing
// down the connection.
func Recover(log observability.ContextualLogger, metrics observability.MetricsCollector) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.ErrorContext(r.Context(), logMsgPanicRecovered, logAttrPanic, rec)

					if metrics != nil {
						metrics.IncrementCounter(metricPanics, map[string]string{
							labelPath: r.URL.Path,
						})
					}

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"errors":["` + msgInternalServerError + `"]}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Metrics records a duration histogram per request.
func Metrics(metrics observability.MetricsCollector) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			metrics.RecordDuration(metricRequestDuration, time.Since(start), map[string]string{
				labelMethod: r.Method,
				labelPath:   r.URL.Path,
				labelStatus: http.StatusText(recorder.status),
			})
		})
	}
}

package thttp

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/handlers"
	"github.com/ridge/parallel"
	"github.com/ridge/strata/tlog"
	"go.uber.org/zap"
)

// Log logs the start and end of every request at Debug level
func Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ctx := tlog.With(r.Context(),
			zap.String("method", r.Method),
			zap.String("url", r.URL.String()),
		)
		logger := tlog.Get(ctx)
		logger.Debug("HTTP request handling started")
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r.WithContext(ctx))
		logger.Debug("HTTP request handling ended", zap.Int("statusCode", sw.status), zap.Duration("elapsed", time.Since(started)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.status == 0 {
		sw.status = code
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(p []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	return sw.ResponseWriter.Write(p)
}

// Recover turns a handler panic into a 500 response and, when running under
// Server, terminates the server with parallel.ErrPanic
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			err := parallel.ErrPanic{Value: p, Stack: debug.Stack()}
			tlog.Get(r.Context()).Error("Panic in HTTP handler", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			if ch, ok := r.Context().Value(panicKeyType{}).(chan error); ok {
				select {
				case ch <- err:
				default:
				}
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// CORS allows cross-origin requests to the API
var CORS = handlers.CORS(
	handlers.AllowedMethods([]string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodOptions}),
	handlers.AllowedHeaders([]string{"Content-Type", "X-Requested-With"}),
	handlers.AllowedOrigins([]string{"*"}),
)


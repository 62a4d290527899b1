// Package thttp runs HTTP servers under a parallel group and provides the
// middleware and response helpers of the strata API
package thttp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ridge/must/v2"
	"github.com/ridge/parallel"
	"github.com/ridge/strata/tlog"
	"go.uber.org/zap"
)

const gracefulShutdownTimeout = 5 * time.Second

// Server serves an HTTP handler on a listener
type Server struct {
	listener net.Listener
	handler  http.Handler
}

// NewServer creates a Server
func NewServer(listener net.Listener, handler http.Handler) *Server {
	return &Server{
		listener: listener,
		handler:  handler,
	}
}

type panicKeyType struct{}

// Run serves requests until the context is closed or a handler panics, then
// shuts the server down gracefully
func (s *Server) Run(ctx context.Context) error {
	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		panicChan := make(chan error, 1)
		ctx = tlog.With(ctx, zap.Stringer("httpServer", s.listener.Addr()))
		logger := tlog.Get(ctx)

		// requests outlive ctx while the server drains
		reqCtx, reqCancel := context.WithCancel(context.WithValue(context.WithoutCancel(ctx), panicKeyType{}, panicChan))

		server := http.Server{
			Handler:           s.handler,
			ErrorLog:          must.OK1(zap.NewStdLogAt(logger, zap.WarnLevel)),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return reqCtx },
			ConnContext: func(ctx context.Context, conn net.Conn) context.Context {
				return tlog.With(ctx, zap.Stringer("remoteAddr", conn.RemoteAddr()))
			},
		}

		spawn("serve", parallel.Fail, func(ctx context.Context) error {
			logger.Info("Serving requests")
			err := server.Serve(s.listener)
			if errors.Is(err, http.ErrServerClosed) && ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		})

		spawn("panicHandler", parallel.Fail, func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case err := <-panicChan:
				return err
			}
		})

		spawn("shutdownHandler", parallel.Fail, func(ctx context.Context) error {
			<-ctx.Done()
			logger.Info("Shutting down")

			shutdownCtx, cancel := context.WithTimeout(reqCtx, gracefulShutdownTimeout)
			defer cancel()
			defer reqCancel()
			defer server.Close()

			if err := server.Shutdown(shutdownCtx); err != nil && shutdownCtx.Err() != nil {
				logger.Info("Shutdown canceled", zap.Error(err))
				return err
			}
			logger.Info("Shutdown complete")
			return ctx.Err()
		})

		return nil
	})
}

// ListenAddr returns the local address of the server's listener
func (s *Server) ListenAddr() net.Addr {
	return s.listener.Addr()
}

// Wrap installs middleware on a handler. The first middleware listed sees
// the request first.
func Wrap(handler http.Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// StandardMiddleware logs requests, recovers panics and allows cross-origin
// requests, in this order
func StandardMiddleware(next http.Handler) http.Handler {
	return Wrap(next, Log, Recover, CORS)
}

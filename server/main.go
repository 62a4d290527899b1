// Package server serves the strata HTTP API
package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"
	"github.com/ridge/parallel"
	"github.com/ridge/strata/engine"
	"github.com/ridge/strata/run"
	"github.com/ridge/strata/thttp"
	"github.com/ridge/strata/tlog"
	"github.com/ridge/strata/tnet"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// Config contains the server parameters
type Config struct {
	Listener net.Listener
	Engine   engine.Config
	Workers  int // indexing workers per bulk request
}

// Main handles the command line and runs the server
func Main(args []string) {
	run.Server(func(ctx context.Context) error {
		var addr, mappingFile, nested string
		var workers int
		pflag.StringVar(&addr, "addr", ":10009", "address to listen on ([tcp:]host:port or unix:path)")
		pflag.StringVar(&mappingFile, "mapping", "", "JSON mapping definition file")
		pflag.StringVar(&nested, "nested", "", "comma-separated paths holding nested objects")
		pflag.IntVar(&workers, "workers", 4, "indexing workers per bulk request")
		if err := pflag.CommandLine.Parse(args[1:]); err != nil {
			return run.ExitCode{Code: 2, Err: err}
		}

		config := Config{Workers: workers}
		if mappingFile != "" {
			raw, err := os.ReadFile(mappingFile)
			if err != nil {
				return err
			}
			config.Engine.Mapping = raw
		}
		if nested != "" {
			config.Engine.Nested = strings.Split(nested, ",")
		}

		listener, err := tnet.Listen(addr)
		if err != nil {
			return err
		}
		config.Listener = listener
		return Run(ctx, config)
	})
}

// Run runs the server until the context is closed
func Run(ctx context.Context, config Config) error {
	e, err := engine.New(ctx, config.Engine)
	if err != nil {
		return err
	}
	tlog.Get(ctx).Info("Engine ready", zap.Stringer("fieldNames", e.Descriptor()))

	httpServer := thttp.NewServer(config.Listener, thttp.StandardMiddleware(Handler(e, config.Workers)))
	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("http", parallel.Fail, httpServer.Run)
		return nil
	})
}

// Handler returns the API handler over the engine
func Handler(e *engine.Engine, workers int) http.Handler {
	return newHandler(server{engine: e, workers: workers, maxBodySize: defaultMaxBodySize})
}

func newHandler(s server) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/docs", s.put).Methods(http.MethodPut, http.MethodPost)
	router.HandleFunc("/docs/_exists", s.exists).Methods(http.MethodGet)
	router.HandleFunc("/docs/_missing", s.missing).Methods(http.MethodGet)
	router.HandleFunc("/docs/_term", s.term).Methods(http.MethodGet)
	router.HandleFunc("/docs/_project", s.project).Methods(http.MethodGet)
	router.HandleFunc("/docs/{id}", s.get).Methods(http.MethodGet)
	router.HandleFunc("/_mapping", s.mapping).Methods(http.MethodGet)
	return router
}

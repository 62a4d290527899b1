// Package run runs the top-level task of a program with a logger and
// signal handling
package run

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ridge/parallel"
	"github.com/ridge/strata/tlog"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	fs        = pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	logConfig = tlog.AddFlags(fs)
)

func init() {
	fs.ParseErrorsWhitelist.UnknownFlags = true
	// usage is printed by the main command line parser
	fs.Usage = func() {}
	pflag.CommandLine.AddFlagSet(fs)
}

// Tool runs the task with a context carrying the logger configured on the
// command line. The context is closed when an interruption or termination
// signal arrives.
//
// Tool does not return. It exits with code 0 if the task returns nil, with
// the code of an error implementing WithExitCode, or with code 1.
//
//	func main() {
//	    run.Tool(func(ctx context.Context) error {
//	        pflag.Parse()
//	        return doWork(ctx)
//	    })
//	}
func Tool(task func(ctx context.Context) error) {
	var err error
	defer func() {
		var wec WithExitCode
		if errors.As(err, &wec) {
			os.Exit(wec.ExitCode())
		}
		if err != nil {
			os.Exit(1)
		}
	}()

	ctx := rootContext()

	err = parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("main", parallel.Exit, task)
		spawn("signals", parallel.Exit, handleSignals)
		return nil
	})
	if err != nil {
		tlog.Get(ctx).Error("Error", zap.Error(err))
	}
}

// Server is Tool for long-running tasks: returning context.Canceled after a
// signal is a normal exit
func Server(task func(ctx context.Context) error) {
	Tool(func(ctx context.Context) error {
		err := task(ctx)
		if errors.Is(err, ctx.Err()) {
			return nil
		}
		return err
	})
}

// WithExitCode is implemented by errors that select the exit code of the
// process
type WithExitCode interface {
	ExitCode() int
}

// ExitCode is an error with an exit code
type ExitCode struct {
	Code int
	Err  error
}

func (e ExitCode) Error() string {
	return e.Err.Error()
}

func (e ExitCode) Unwrap() error {
	return e.Err
}

// ExitCode implements WithExitCode
func (e ExitCode) ExitCode() int {
	return e.Code
}

func rootContext() context.Context {
	if err := fs.Parse(os.Args[1:]); err != nil && !errors.Is(err, pflag.ErrHelp) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	config, err := logConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return tlog.WithLogger(context.Background(), tlog.New(config))
}

// Package test provides contexts and goroutine groups for tests
package test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ridge/parallel"
	"github.com/ridge/strata/tlog"
	"github.com/stretchr/testify/require"
)

// Context returns a context carrying a logger that writes to the test log.
// The context is closed when the test finishes.
func Context(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(tlog.WithLogger(context.Background(), tlog.NewForTesting(t)))
	t.Cleanup(cancel)
	return ctx
}

// ContextWithTimeout is Context closed with context.DeadlineExceeded after
// the timeout
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(Context(t), timeout)
	t.Cleanup(cancel)
	return ctx
}

// Group returns a parallel.Group running in a testing context.
//
// The group is closed at the end of the test. If it finishes with an error
// other than context.Canceled, the test fails.
func Group(t *testing.T) *parallel.Group {
	group := parallel.NewGroup(Context(t))
	t.Cleanup(func() {
		group.Exit(nil)
		if err := group.Wait(); !errors.Is(err, context.Canceled) {
			require.NoError(t, err)
		}
	})
	return group
}

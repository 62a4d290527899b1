package tnet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListen(t *testing.T) {
	for _, addr := range []string{"localhost:", "tcp:localhost:"} {
		l, err := Listen(addr)
		require.NoError(t, err)
		require.Equal(t, "tcp", l.Addr().Network())
		require.Regexp(t, `^127\.0\.0\.1:\d+$`, l.Addr().String())
		require.NoError(t, l.Close())
	}
}

func TestListenUnix(t *testing.T) {
	path := t.TempDir() + "/strata.sock"
	l, err := Listen("unix:" + path)
	require.NoError(t, err)
	require.Equal(t, "unix", l.Addr().Network())
	require.Equal(t, path, l.Addr().String())
	require.NoError(t, l.Close())
}

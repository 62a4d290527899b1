package fieldpath

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrefixes(t *testing.T) {
	require.Equal(t, []string{"a", "a.b", "a.b.c"}, slices.Collect(Prefixes("a.b.c")))
	require.Equal(t, []string{"a"}, slices.Collect(Prefixes("a")))
	require.Equal(t, []string{"user", "user.name"}, slices.Collect(Prefixes("user.name")))
	require.Empty(t, slices.Collect(Prefixes("")))
}

func TestPrefixesRestartable(t *testing.T) {
	seq := Prefixes("x.y.z")
	require.Equal(t, slices.Collect(seq), slices.Collect(seq))

	var first []string
	for p := range seq {
		first = append(first, p)
		break
	}
	require.Equal(t, []string{"x"}, first)
	require.Equal(t, []string{"x", "x.y", "x.y.z"}, slices.Collect(seq))
}

func TestPrefixesConcurrent(t *testing.T) {
	seq := Prefixes("a.b.c.d")
	var wg sync.WaitGroup
	results := make([][]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = slices.Collect(seq)
		}()
	}
	wg.Wait()
	for _, res := range results {
		require.Equal(t, []string{"a", "a.b", "a.b.c", "a.b.c.d"}, res)
	}
}

func TestPrefixesMalformed(t *testing.T) {
	// not rejected here, Validate catches these
	require.Equal(t, []string{"a", "a.", "a..b"}, slices.Collect(Prefixes("a..b")))
	require.Equal(t, []string{"a", "a."}, slices.Collect(Prefixes("a.")))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate("a"))
	require.NoError(t, Validate("a.b.c"))
	require.ErrorIs(t, Validate(""), ErrEmptyPath)
	require.ErrorIs(t, Validate("a..b"), ErrEmptySegment)
	require.ErrorIs(t, Validate(".a"), ErrEmptySegment)
	require.ErrorIs(t, Validate("a."), ErrEmptySegment)
}

func TestSegments(t *testing.T) {
	require.Equal(t, []string{"a", "b", "c"}, slices.Collect(Segments("a.b.c")))
	require.Equal(t, []string{"a"}, slices.Collect(Segments("a")))
	require.Empty(t, slices.Collect(Segments("")))
}

func TestHelpers(t *testing.T) {
	require.Equal(t, 3, Depth("a.b.c"))
	require.Equal(t, 1, Depth("a"))
	require.Equal(t, 0, Depth(""))

	require.Equal(t, "a.b", Join("a", "b"))
	require.Equal(t, "b", Join("", "b"))

	parent, ok := Parent("a.b.c")
	require.True(t, ok)
	require.Equal(t, "a.b", parent)
	_, ok = Parent("a")
	require.False(t, ok)
}

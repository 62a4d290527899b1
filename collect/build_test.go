package collect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	obj, err := Build[map[string]any]([]string{"a", "b.c", "b.d", "e.f.g"}, func(path string) Input {
		return FromRow(func(r map[string]any) any { return r[path] })
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "e"}, obj.Names())

	obj.SetNextRow(map[string]any{"a": 1, "b.c": 2, "e.f.g": "x"})
	require.Equal(t, map[string]any{
		"a": 1,
		"b": map[string]any{"c": 2, "d": nil},
		"e": map[string]any{"f": map[string]any{"g": "x"}},
	}, obj.Value().(Snapshot).Map())
}

func TestBuildErrors(t *testing.T) {
	leaf := func(string) Input { return Const(1) }

	_, err := Build[int]([]string{"a", "a"}, leaf)
	require.Error(t, err)

	_, err = Build[int]([]string{"a", "a.b"}, leaf)
	require.Error(t, err)

	_, err = Build[int]([]string{"a.b", "a"}, leaf)
	require.Error(t, err)

	_, err = Build[int]([]string{""}, leaf)
	require.Error(t, err)

	_, err = Build[int]([]string{"a..b"}, leaf)
	require.Error(t, err)
}

func TestLookup(t *testing.T) {
	leaf := Const("deep")
	root := NewObject[int]().
		Add("a", NewObject[int]().Add("b", leaf)).
		Add("c", Const(1))

	found, ok := Lookup(root, "a.b")
	require.True(t, ok)
	require.Equal(t, leaf, found)

	_, ok = Lookup(root, "a.x")
	require.False(t, ok)

	_, ok = Lookup(root, "c.d")
	require.False(t, ok)

	for _, path := range []string{"", ".a", "a.", "a..b"} {
		found, ok = Lookup(root, path)
		require.False(t, ok, path)
		require.Nil(t, found, path)
	}

	found, ok = Lookup(root, "a")
	require.True(t, ok)
	_, isObj := found.(*Object[int])
	require.True(t, isObj)
}

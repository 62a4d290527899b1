package collect

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type row struct {
	n    int
	name string
}

func TestObjectNestedValue(t *testing.T) {
	obj := NewObject[row]().
		Add("a", Const(42)).
		Add("b", NewObject[row]().Add("c", Const("hi")))

	obj.SetNextRow(row{})
	want := map[string]any{"a": 42, "b": map[string]any{"c": "hi"}}

	snap, ok := obj.Value().(Snapshot)
	require.True(t, ok)
	require.Equal(t, want, snap.Map())

	// reading again without a new row gives the same value
	again, ok := obj.Value().(Snapshot)
	require.True(t, ok)
	require.Equal(t, want, again.Map())
}

func TestChildLookup(t *testing.T) {
	obj := NewObject[row]().
		Add("present", Const(nil)).
		Add("other", Const(1))

	child, ok := obj.Child("missing")
	require.False(t, ok)
	require.Nil(t, child)

	child, ok = obj.Child("present")
	require.True(t, ok)
	require.NotNil(t, child)
	require.Nil(t, child.Value())

	obj.SetNextRow(row{})
	snap := obj.Value().(Snapshot)
	v, ok := snap.Get("present")
	require.True(t, ok)
	require.Nil(t, v)
	_, ok = snap.Get("missing")
	require.False(t, ok)
}

func TestNoRow(t *testing.T) {
	leaf := FromRow(func(r row) any { return r.n })
	obj := NewObject[row]().Add("n", leaf)
	require.Equal(t, NoRow, obj.Value())
	require.Equal(t, NoRow, leaf.Value())
	require.NotNil(t, NoRow)

	obj.SetNextRow(row{n: 7})
	require.Equal(t, 7, leaf.Value())
	require.Equal(t, map[string]any{"n": 7}, obj.Value().(Snapshot).Map())
}

func TestRowsAdvance(t *testing.T) {
	obj := NewObject[row]().
		Add("n", FromRow(func(r row) any { return r.n })).
		Add("inner", NewObject[row]().
			Add("name", FromRow(func(r row) any { return r.name })).
			Add("kind", Const("user")))

	var got []map[string]any
	var snaps []Snapshot
	for _, r := range []row{{1, "alice"}, {2, "bob"}} {
		obj.SetNextRow(r)
		snap := obj.Value().(Snapshot)
		snaps = append(snaps, snap)
		got = append(got, snap.Map())
	}
	require.Equal(t, []map[string]any{
		{"n": 1, "inner": map[string]any{"name": "alice", "kind": "user"}},
		{"n": 2, "inner": map[string]any{"name": "bob", "kind": "user"}},
	}, got)

	// earlier snapshots are not affected by later rows
	require.Equal(t, got[0], snaps[0].Map())
}

func TestAdvanceOrder(t *testing.T) {
	var order []string
	track := func(name string) *RowFunc[row] {
		return FromRow(func(row) any {
			order = append(order, name)
			return name
		})
	}
	obj := NewObject[row]().
		Add("z", track("z")).
		Add("a", track("a")).
		Add("m", NewObject[row]().Add("x", track("m.x")))

	obj.SetNextRow(row{})
	require.Equal(t, []string{"z", "a", "m.x"}, order)
	require.Equal(t, []string{"z", "a", "m"}, obj.Names())
	require.Equal(t, []string{"z", "a", "m"}, obj.Value().(Snapshot).Names())
}

func TestAddPanics(t *testing.T) {
	require.Panics(t, func() { NewObject[row]().Add("", Const(1)) })
	require.Panics(t, func() { NewObject[row]().Add("a", nil) })
	require.Panics(t, func() { NewObject[row]().Add("a", Const(1)).Add("a", Const(2)) })

	obj := NewObject[row]().Add("a", Const(1))
	obj.SetNextRow(row{})
	require.Panics(t, func() { obj.Add("b", Const(2)) })
}

func TestSnapshotJSON(t *testing.T) {
	obj := NewObject[row]().
		Add("z", Const(1)).
		Add("a", NewObject[row]().Add("y", Const(nil)).Add("b", Const("s")))

	obj.SetNextRow(row{})
	data, err := json.Marshal(obj.Value())
	require.NoError(t, err)
	require.Equal(t, `{"z":1,"a":{"y":null,"b":"s"}}`, string(data))

	data, err = json.Marshal(NewObject[row]().Value())
	require.NoError(t, err)
	require.Equal(t, `null`, string(data))
}

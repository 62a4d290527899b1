package mapping

import (
	"encoding/json"
	"testing"

	"github.com/ridge/must/v2"
	"github.com/ridge/tj"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	require.Equal(t, Name, d.Name())
	require.Equal(t, IndexDocs, d.IndexOptions())
	require.False(t, d.Stored())
	require.False(t, d.Tokenized())
	require.True(t, d.OmitNorms())
	require.False(t, d.DocValues())
	require.Equal(t, KeywordAnalyzer, d.IndexAnalyzer())
	require.Equal(t, KeywordAnalyzer, d.SearchAnalyzer())
	require.True(t, d.Enabled())
	require.Equal(t, "_field_names", d.TypeName())
	require.Equal(t, "_field_names (index=docs, stored=false)", d.String())
}

func TestEnabled(t *testing.T) {
	d := must.OK1(NewBuilder().IndexOptions(IndexNone).Freeze())
	require.False(t, d.Enabled())

	d = must.OK1(NewBuilder().IndexOptions(IndexNone).Stored(true).Freeze())
	require.True(t, d.Enabled())

	d = must.OK1(NewBuilder().Stored(true).Enabled(false).Freeze())
	require.False(t, d.Enabled())
	require.False(t, d.Stored())

	d = must.OK1(NewBuilder().Enabled(false).Enabled(true).Freeze())
	require.True(t, d.Enabled())
	require.Equal(t, IndexDocs, d.IndexOptions())
}

func TestQueriesUnsupported(t *testing.T) {
	d := Defaults()
	_, err := d.ExistsQuery()
	require.ErrorIs(t, err, ErrUnsupportedOperation)
	for _, v := range []any{"a", "a.b", 42, nil} {
		_, err = d.TermQuery(v)
		require.ErrorIs(t, err, ErrUnsupportedOperation)
	}

	disabled := must.OK1(NewBuilder().Enabled(false).Freeze())
	_, err = disabled.ExistsQuery()
	require.ErrorIs(t, err, ErrUnsupportedOperation)
	_, err = disabled.TermQuery("x")
	require.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestMappingJSON(t *testing.T) {
	d := Defaults()
	require.Nil(t, d.MappingJSON(false))
	require.Equal(t, tj.O{"_field_names": tj.O{"enabled": true}}, d.MappingJSON(true))
	require.JSONEq(t, `{"_field_names":{"enabled":true}}`, string(must.OK1(json.Marshal(d.MappingJSON(true)))))

	disabled := must.OK1(NewBuilder().Enabled(false).Freeze())
	require.Equal(t, tj.O{"_field_names": tj.O{"enabled": false}}, disabled.MappingJSON(true))
}

func TestClone(t *testing.T) {
	orig := Defaults()
	b := orig.Clone()
	b.Stored(true).Name("_names_v2")
	clone := must.OK1(b.Freeze())

	require.Equal(t, "_names_v2", clone.Name())
	require.True(t, clone.Stored())
	require.Equal(t, orig.IndexAnalyzer(), clone.IndexAnalyzer())

	require.Equal(t, Name, orig.Name())
	require.False(t, orig.Stored())
	require.Equal(t, Defaults(), orig)
}

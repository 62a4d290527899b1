package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ridge/must/v2"
	"github.com/ridge/parallel"
	"github.com/ridge/strata/engine"
	"github.com/ridge/strata/test"
	"github.com/ridge/strata/tnet"
	"github.com/ridge/tj"
	"github.com/stretchr/testify/require"
)

type env struct {
	t       *testing.T
	handler http.Handler
}

func newEnv(t *testing.T, config engine.Config) env {
	e, err := engine.New(test.Context(t), config)
	require.NoError(t, err)
	return env{t: t, handler: Handler(e, 2)}
}

func (env env) do(method, target string, body any) (int, string) {
	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(string(must.OK1(json.Marshal(body))))
	}
	req := httptest.NewRequest(method, target, reader).WithContext(test.Context(env.t))
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	return w.Code, w.Body.String()
}

func TestIndexAndExists(t *testing.T) {
	env := newEnv(t, engine.Config{})

	code, body := env.do(http.MethodPut, "/docs", tj.A{
		tj.O{"_id": "1", "user": tj.O{"name": "alice"}},
		tj.O{"_id": "2", "title": "t"},
	})
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"ids":["1","2"]}`, body)

	code, body = env.do(http.MethodPut, "/docs", tj.O{"_id": "3", "user": tj.O{"age": 3}})
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"ids":["3"]}`, body)

	code, body = env.do(http.MethodGet, "/docs/_exists?field=user", nil)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"field":"user","ids":["1","3"]}`, body)

	code, body = env.do(http.MethodGet, "/docs/_missing?field=user.name", nil)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"field":"user.name","ids":["2","3"]}`, body)

	code, body = env.do(http.MethodGet, "/docs/_exists?field=nothing", nil)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"field":"nothing","ids":[]}`, body)

	code, body = env.do(http.MethodGet, "/docs/2", nil)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"_id":"2","title":"t"}`, body)

	code, _ = env.do(http.MethodGet, "/docs/42", nil)
	require.Equal(t, http.StatusNotFound, code)
}

func TestProject(t *testing.T) {
	env := newEnv(t, engine.Config{})
	code, _ := env.do(http.MethodPut, "/docs", tj.O{"_id": "1", "a": tj.O{"b": 1, "c": "x"}})
	require.Equal(t, http.StatusOK, code)

	code, body := env.do(http.MethodGet, "/docs/_project?field=a.c&field=a.b&field=d", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, `[{"_id":"1","fields":{"a":{"c":"x","b":1},"d":null}}]`, body)

	code, _ = env.do(http.MethodGet, "/docs/_project", nil)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestErrors(t *testing.T) {
	env := newEnv(t, engine.Config{})

	code, body := env.do(http.MethodGet, "/docs/_exists?field=_field_names", nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, body, "unsupported operation")

	code, _ = env.do(http.MethodGet, "/docs/_term?field=_field_names&value=a", nil)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(http.MethodGet, "/docs/_exists?field=", nil)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(http.MethodPut, "/docs", "scalar")
	require.Equal(t, http.StatusBadRequest, code)

	disabled := newEnv(t, engine.Config{Mapping: []byte(`{"_field_names": {"enabled": false}}`)})
	code, _ = disabled.do(http.MethodGet, "/docs/_exists?field=a", nil)
	require.Equal(t, http.StatusConflict, code)
}

func TestMapping(t *testing.T) {
	env := newEnv(t, engine.Config{})

	code, body := env.do(http.MethodGet, "/_mapping", nil)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{}`, body)

	code, body = env.do(http.MethodGet, "/_mapping?include_defaults=true", nil)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"_field_names":{"enabled":true}}`, body)

	code, _ = env.do(http.MethodGet, "/_mapping?include_defaults=maybe", nil)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestRun(t *testing.T) {
	group := test.Group(t)
	listener := tnet.ListenOnRandomPort()
	group.Spawn("server", parallel.Fail, func(ctx context.Context) error {
		return Run(ctx, Config{Listener: listener, Workers: 2})
	})

	url := "http://" + listener.Addr().String()
	req := must.OK1(http.NewRequestWithContext(group.Context(), http.MethodPut, url+"/docs", strings.NewReader(`{"_id":"x","a":1}`)))
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	req = must.OK1(http.NewRequestWithContext(group.Context(), http.MethodGet, url+"/docs/_exists?field=a", nil))
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"field":"a","ids":["x"]}`, string(body))
}

func TestBodyTooLarge(t *testing.T) {
	e, err := engine.New(test.Context(t), engine.Config{})
	require.NoError(t, err)
	env := env{t: t, handler: newHandler(server{engine: e, workers: 1, maxBodySize: 32})}

	code, body := env.do(http.MethodPut, "/docs", tj.O{"_id": "1", "text": strings.Repeat("x", 64)})
	require.Equal(t, http.StatusRequestEntityTooLarge, code)
	require.Contains(t, body, "exceeds 32 bytes")
	require.Zero(t, e.Len())

	code, _ = env.do(http.MethodPut, "/docs", tj.O{"_id": "1"})
	require.Equal(t, http.StatusOK, code)
}

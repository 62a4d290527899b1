package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/ridge/strata/document"
	"github.com/ridge/strata/engine"
	"github.com/ridge/strata/fieldpath"
	"github.com/ridge/strata/mapping"
	"github.com/ridge/strata/query"
	"github.com/ridge/strata/thttp"
)

const defaultMaxBodySize = 64 << 20

type server struct {
	engine      *engine.Engine
	workers     int
	maxBodySize int64
}

// IndexResult is the response to an indexing request
type IndexResult struct {
	IDs []string `json:"ids"`
}

// IDsResult is the response to an existence query
type IDsResult struct {
	Field string   `json:"field"`
	IDs   []string `json:"ids"`
}

// put indexes a single JSON object or an array of objects
func (s server) put(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			thttp.Error(w, r, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		thttp.Error(w, r, http.StatusBadRequest, err)
		return
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			thttp.Error(w, r, http.StatusBadRequest, fmt.Errorf("%w: %w", document.ErrInvalidDocument, err))
			return
		}
		batch := make([][]byte, 0, len(raws))
		for _, raw := range raws {
			batch = append(batch, raw)
		}
		ids, err := s.engine.IndexBatch(r.Context(), batch, s.workers)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		thttp.JSON(w, r, http.StatusOK, IndexResult{IDs: ids})
		return
	}

	id, err := s.engine.Index(r.Context(), trimmed)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	thttp.JSON(w, r, http.StatusOK, IndexResult{IDs: []string{id}})
}

func (s server) get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	source, ok := s.engine.Get(id)
	if !ok {
		thttp.Error(w, r, http.StatusNotFound, fmt.Errorf("record %s not found", id))
		return
	}
	thttp.JSON(w, r, http.StatusOK, source)
}

func (s server) exists(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")
	ids, err := s.engine.Exists(r.Context(), field)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	thttp.JSON(w, r, http.StatusOK, IDsResult{Field: field, IDs: nonNil(ids)})
}

func (s server) missing(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")
	ids, err := s.engine.Missing(r.Context(), field)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	thttp.JSON(w, r, http.StatusOK, IDsResult{Field: field, IDs: nonNil(ids)})
}

func (s server) term(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field := q.Get("field")
	ids, err := s.engine.Term(r.Context(), field, q.Get("value"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	thttp.JSON(w, r, http.StatusOK, IDsResult{Field: field, IDs: nonNil(ids)})
}

func (s server) project(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Project(r.Context(), r.URL.Query()["field"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if res == nil {
		res = []engine.Projection{}
	}
	thttp.JSON(w, r, http.StatusOK, res)
}

func (s server) mapping(w http.ResponseWriter, r *http.Request) {
	includeDefaults := false
	if v := r.URL.Query().Get("include_defaults"); v != "" {
		var err error
		if includeDefaults, err = strconv.ParseBool(v); err != nil {
			thttp.Error(w, r, http.StatusBadRequest, fmt.Errorf("include_defaults: %w", err))
			return
		}
	}
	thttp.JSON(w, r, http.StatusOK, s.engine.Mapping(includeDefaults))
}

func (s server) fail(w http.ResponseWriter, r *http.Request, err error) {
	thttp.Error(w, r, statusOf(err), err)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, query.ErrExistenceDisabled):
		return http.StatusConflict
	case errors.Is(err, mapping.ErrUnsupportedOperation),
		errors.Is(err, document.ErrInvalidDocument),
		errors.Is(err, fieldpath.ErrEmptyPath),
		errors.Is(err, fieldpath.ErrEmptySegment),
		errors.Is(err, engine.ErrInvalidProjection):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

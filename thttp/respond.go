package thttp

import (
	"encoding/json"
	"net/http"

	"github.com/ridge/strata/tlog"
	"go.uber.org/zap"
)

// ErrorBody is the JSON body of an error response
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes a JSON response with the status code
func JSON(w http.ResponseWriter, r *http.Request, code int, res any) {
	body, err := json.Marshal(res)
	if err != nil {
		tlog.Get(r.Context()).Error("Failed to encode response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		tlog.Get(r.Context()).Debug("Failed to write response to client", zap.Error(err))
	}
}

// Error writes a JSON error response
func Error(w http.ResponseWriter, r *http.Request, code int, err error) {
	if code >= http.StatusInternalServerError {
		tlog.Get(r.Context()).Error("Request failed", zap.Error(err))
	}
	JSON(w, r, code, ErrorBody{Error: err.Error()})
}

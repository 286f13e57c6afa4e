package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"retrodesk/pkg/content"
	"retrodesk/pkg/desktop"
	"retrodesk/pkg/router"
	"retrodesk/pkg/wm"
)

// maxBody bounds JSON request bodies.
const maxBody = 64 << 10

// ErrBadRequest is returned for bodies and parameters that cannot be
// decoded.
var ErrBadRequest = errors.New("bad request")

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, wm.ErrWindowNotFound),
		errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, wm.ErrUnknownKind),
		errors.Is(err, wm.ErrInvalidPayload),
		errors.Is(err, content.ErrUnknownType),
		errors.Is(err, desktop.ErrInvalidSettings),
		errors.Is(err, desktop.ErrNotTerminal),
		errors.Is(err, desktop.ErrInvalidEvent),
		errors.Is(err, wm.ErrUnknownDragMode):
		return http.StatusBadRequest
	case errors.Is(err, wm.ErrMaximized),
		errors.Is(err, desktop.ErrNoDrag):
		return http.StatusConflict
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (a *API) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("encode response", zap.Error(err))
	}
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		a.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	a.writeJSON(w, code, errorBody{Error: err.Error(), RequestID: router.RequestID(r.Context())})
}

// decode reads a JSON body into v. Unknown fields are rejected so typos
// surface as 400s.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

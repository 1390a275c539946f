// Package httpx writes JSON responses and maps domain errors to HTTP status codes.
package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/destinote/destinote/internal/gate"
	"github.com/destinote/destinote/internal/logging"
	"github.com/destinote/destinote/internal/store"
	"github.com/goccy/go-json"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// StatusError carries an explicit HTTP status.
type StatusError struct {
	Status int
	Msg    string
}

func (e *StatusError) Error() string   { return e.Msg }
func (e *StatusError) StatusCode() int { return e.Status }

// BadRequest returns a 400 error with a formatted message.
func BadRequest(format string, args ...any) error {
	return &StatusError{Status: http.StatusBadRequest, Msg: fmt.Sprintf(format, args...)}
}

// Status maps err onto an HTTP status code.
func Status(err error) int {
	var coded interface{ StatusCode() int }
	switch {
	case errors.Is(err, gate.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, gate.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &coded):
		return coded.StatusCode()
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {"error": message}. Upstream failures keep their
// message verbatim and are logged.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	JSONError(w, status, err.Error(), nil)
}

// Decode reads a JSON body into dst. Malformed input is a 400.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return BadRequest("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return BadRequest("invalid JSON body")
	}
	return nil
}

// DecodeOptional is Decode for bodies that may be omitted. A missing or
// blank body, chunked or not, leaves dst untouched.
func DecodeOptional(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return BadRequest("could not read request body")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return BadRequest("invalid JSON body")
	}
	return nil
}

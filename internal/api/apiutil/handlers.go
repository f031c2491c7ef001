package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Coursely/internal/api/authz"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// HandlerError carries the response a handler should write for Err. Fields,
// when set, is written as the body's field list.
type HandlerError struct {
	Status  int
	Message string
	Fields  any
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

type errorResponse struct {
	Error  string `json:"error"`
	Fields any    `json:"fields,omitempty"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError writes a JSON error body. fields, when non-nil, lists the
// rejected input fields.
func WriteError(w http.ResponseWriter, status int, message string, fields any) {
	_ = WriteJSON(w, status, errorResponse{Error: message, Fields: fields})
}

// WriteHandlerError writes err as JSON: a HandlerError with its own status,
// a FieldError as 400, anything else as 500.
func WriteHandlerError(w http.ResponseWriter, err error) {
	var handlerErr HandlerError
	if errors.As(err, &handlerErr) {
		WriteError(w, handlerErr.Status, handlerErr.Message, handlerErr.Fields)
		return
	}
	var fieldErr FieldError
	if errors.As(err, &fieldErr) {
		WriteError(w, http.StatusBadRequest, fieldErr.Error(), nil)
		return
	}
	WriteError(w, http.StatusInternalServerError, "Internal Server Error", nil)
}

// RequireUser returns the authenticated user, writing a 401 when there is none.
func RequireUser(w http.ResponseWriter, r *http.Request) (*authz.AuthUser, bool) {
	user, err := authz.RequireUser(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Warn().
			Str("path", r.URL.Path).
			Msg("Theme access denied: unauthenticated")
		WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return nil, false
	}
	return user, true
}

package apiutil

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/codr1/Coursely/internal/models"
)

const modeQueryKey = "mode"

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, FieldError{Field: field, Reason: "is required"}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, FieldError{Field: field, Reason: "must be greater than 0"}
	}
	return value, nil
}

// IDFromPath reads a positive integer path value.
func IDFromPath(r *http.Request, param string) (int64, error) {
	return ParsePositiveInt64Field(r.PathValue(param), param)
}

// ModeFromQuery reads ?mode=, falling back to def when absent.
func ModeFromQuery(r *http.Request, def models.Mode) (models.Mode, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(modeQueryKey))
	if raw == "" {
		return def, nil
	}
	mode, ok := models.ParseMode(raw)
	if !ok {
		return "", FieldError{Field: modeQueryKey, Reason: "must be light or dark"}
	}
	return mode, nil
}

// ParseMode reads an optional mode from a request body.
func ParseMode(raw string, def models.Mode) (models.Mode, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	mode, ok := models.ParseMode(raw)
	if !ok {
		return "", FieldError{Field: "mode", Reason: "must be light or dark"}
	}
	return mode, nil
}

package apiutil

import (
	"bytes"
	"context"
	"net/http"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"
)

// RenderHTMLComponent renders component in full before writing, so a render
// failure still gets a clean 500. headers are set on success only. It
// reports whether the component was written.
func RenderHTMLComponent(ctx context.Context, w http.ResponseWriter, component templ.Component, headers map[string]string, logMessage, errorMessage string) bool {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(logMessage)
		http.Error(w, errorMessage, http.StatusInternalServerError)
		return false
	}

	for key, value := range headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(logMessage)
		return false
	}
	return true
}

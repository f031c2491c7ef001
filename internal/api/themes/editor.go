package themes

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Coursely/internal/api/apiutil"
	"github.com/codr1/Coursely/internal/api/authz"
	"github.com/codr1/Coursely/internal/api/htmx"
	themetempl "github.com/codr1/Coursely/internal/templates/components/themes"
	"github.com/codr1/Coursely/internal/themes"
)

const sessionIDParam = "id"

type openEditorRequest struct {
	ThemeID int64  `json:"themeId"`
	Mode    string `json:"mode"`
}

type editRequest struct {
	Mode   string            `json:"mode"`
	Colors map[string]string `json:"colors"`
}

type saveEditorResponse struct {
	ThemeID int64              `json:"themeId"`
	State   themes.EditorState `json:"state"`
}

// POST /api/v1/themes/editor
func HandleEditorOpen(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	editors, user, ok := editorRequestContext(w, r)
	if !ok {
		return
	}

	var req openEditorRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.ThemeID < 0 {
		apiutil.WriteError(w, http.StatusBadRequest, "themeId must not be negative", nil)
		return
	}
	mode, err := apiutil.ParseMode(req.Mode, defaultMode)
	if err != nil {
		apiutil.WriteHandlerError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	editor, err := editors.Open(ctx, user.ID, req.ThemeID, mode)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Int64("theme_id", req.ThemeID).Msg("Failed to open theme editor")
		writeThemeError(w, err, "Failed to open editor")
		return
	}

	writeEditorState(w, r, http.StatusCreated, editor.State(), editor.State())
}

// GET /api/v1/themes/editor/{id}
func HandleEditorGet(w http.ResponseWriter, r *http.Request) {
	editor, ok := loadEditor(w, r)
	if !ok {
		return
	}
	writeEditorState(w, r, http.StatusOK, editor.State(), editor.State())
}

// PATCH /api/v1/themes/editor/{id}
func HandleEditorEdit(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	editor, ok := loadEditor(w, r)
	if !ok {
		return
	}

	var req editRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	mode, err := apiutil.ParseMode(req.Mode, editor.Mode())
	if err != nil {
		apiutil.WriteHandlerError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	if err := editor.ApplyEditInMode(ctx, mode, req.Colors); err != nil {
		logger.Warn().Err(err).Str("session_id", editor.ID()).Msg("Rejected theme edit")
		writeThemeError(w, err, "Failed to apply edit")
		return
	}

	htmx.Trigger(w, r, htmx.ThemeChangedEvent)
	writeEditorState(w, r, http.StatusOK, editor.State(), editor.State())
}

// DELETE /api/v1/themes/editor/{id}
func HandleEditorDiscard(w http.ResponseWriter, r *http.Request) {
	editors, user, ok := editorRequestContext(w, r)
	if !ok {
		return
	}

	id := strings.TrimSpace(r.PathValue(sessionIDParam))
	if err := editors.Discard(id, user.ID); err != nil {
		writeThemeError(w, err, "Failed to discard editor")
		return
	}
	log.Ctx(r.Context()).Debug().Str("session_id", id).Msg("Discarded theme editor")
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/themes/editor/{id}/save
func HandleEditorSave(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	editor, ok := loadEditor(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	themeID, err := editor.Save(ctx)
	if err != nil {
		// The draft stays in the session; the client may retry.
		writeThemeError(w, err, "Failed to save theme")
		return
	}

	logger.Info().Str("session_id", editor.ID()).Int64("theme_id", themeID).Msg("Saved theme from editor")
	htmx.Trigger(w, r, htmx.ThemeChangedEvent)
	state := editor.State()
	writeEditorState(w, r, http.StatusOK, saveEditorResponse{ThemeID: themeID, State: state}, state)
}

// POST /api/v1/themes/editor/{id}/select
func HandleEditorSelect(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	editor, ok := loadEditor(w, r)
	if !ok {
		return
	}

	var req selectThemeRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.ThemeID <= 0 {
		apiutil.WriteError(w, http.StatusBadRequest, "themeId must be greater than 0", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	if err := editor.Select(ctx, req.ThemeID); err != nil {
		logger.Error().Err(err).Str("session_id", editor.ID()).Int64("theme_id", req.ThemeID).Msg("Failed to select theme from editor")
		writeThemeError(w, err, "Failed to select theme")
		return
	}

	htmx.Trigger(w, r, htmx.ThemeChangedEvent)
	writeEditorState(w, r, http.StatusOK, editor.State(), editor.State())
}

// writeEditorState answers htmx with the editor panel for state and any
// other client with payload as JSON.
func writeEditorState(w http.ResponseWriter, r *http.Request, status int, payload any, state themes.EditorState) {
	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, themetempl.EditorPanel(state), nil, "Failed to render theme editor", "Failed to render editor")
		return
	}
	if err := apiutil.WriteJSON(w, status, payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write editor response")
	}
}

func editorRequestContext(w http.ResponseWriter, r *http.Request) (*themes.EditorSessions, *authz.AuthUser, bool) {
	editors := loadSessions()
	if editors == nil {
		log.Ctx(r.Context()).Error().Msg("Editor sessions not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error", nil)
		return nil, nil, false
	}
	user, ok := apiutil.RequireUser(w, r)
	if !ok {
		return nil, nil, false
	}
	return editors, user, true
}

func loadEditor(w http.ResponseWriter, r *http.Request) (*themes.Editor, bool) {
	editors, user, ok := editorRequestContext(w, r)
	if !ok {
		return nil, false
	}
	editor, err := editors.Get(strings.TrimSpace(r.PathValue(sessionIDParam)), user.ID)
	if err != nil {
		writeThemeError(w, err, "Failed to load editor")
		return nil, false
	}
	return editor, true
}

func loadSessions() *themes.EditorSessions {
	return sessions
}

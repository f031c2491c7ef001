// internal/api/themes/handlers.go
package themes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Coursely/internal/api/apiutil"
	"github.com/codr1/Coursely/internal/api/authz"
	"github.com/codr1/Coursely/internal/api/htmx"
	"github.com/codr1/Coursely/internal/color"
	"github.com/codr1/Coursely/internal/models"
	"github.com/codr1/Coursely/internal/ratelimit"
	themetempl "github.com/codr1/Coursely/internal/templates/components/themes"
	"github.com/codr1/Coursely/internal/templates/layouts"
	"github.com/codr1/Coursely/internal/themes"
)

const (
	themeQueryTimeout     = 5 * time.Second
	themeIDParam          = "id"
	slugParam             = "slug"
	searchQueryKey        = "q"
	maxGeneratedBodyBytes = 64 << 10
)

var (
	store       *themes.Store
	sessions    *themes.EditorSessions
	limiter     *ratelimit.Limiter
	defaultMode = models.ModeLight
	trustProxy  bool
	initOnce    sync.Once
)

// Config wires the handlers to their collaborators.
type Config struct {
	Store       *themes.Store
	Sessions    *themes.EditorSessions
	Limiter     *ratelimit.Limiter
	DefaultMode models.Mode
	TrustProxy  bool
}

type selectThemeRequest struct {
	ThemeID int64 `json:"themeId"`
}

type wallpaperRequest struct {
	URL string `json:"url"`
}

type wallpaperResponse struct {
	URL string `json:"url"`
}

type customThemeRequest struct {
	Slug              string             `json:"slug"`
	Name              string             `json:"name"`
	Colors            map[string]string  `json:"colors"`
	Light             map[string]string  `json:"light"`
	Dark              map[string]string  `json:"dark"`
	Typography        *models.Typography `json:"typography"`
	Layout            *models.Layout     `json:"layout"`
	SupportsBothModes bool               `json:"supportsBothModes"`
}

type resolveColorRequest struct {
	ThemeID int64  `json:"themeId"`
	Token   string `json:"token"`
	Mode    string `json:"mode"`
}

type resolveColorResponse struct {
	ThemeID int64        `json:"themeId"`
	Token   models.Token `json:"token"`
	Mode    models.Mode  `json:"mode"`
	Value   string       `json:"value"`
	Hex     string       `json:"hex"`
}

type activeThemeResponse struct {
	Theme     themetempl.Theme `json:"theme"`
	Selected  bool             `json:"selected"`
	Wallpaper string           `json:"wallpaperUrl,omitempty"`
}

type savedThemeResponse struct {
	ThemeID int64 `json:"themeId"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(cfg Config) {
	if cfg.Store == nil {
		return
	}
	initOnce.Do(func() {
		store = cfg.Store
		sessions = cfg.Sessions
		limiter = cfg.Limiter
		if cfg.DefaultMode != "" {
			defaultMode = cfg.DefaultMode
		}
		trustProxy = cfg.TrustProxy
	})
}

// GET /api/v1/themes
func HandleThemesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	s, user, mode, ok := themeRequestContext(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	var (
		rows []models.Theme
		err  error
	)
	if query := strings.TrimSpace(r.URL.Query().Get(searchQueryKey)); query != "" {
		rows, err = s.Search(ctx, user.ID, query)
	} else {
		rows, err = s.ListThemes(ctx, user.ID)
	}
	if err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to list themes")
		writeThemeError(w, err, "Failed to load themes")
		return
	}

	views := themetempl.NewThemes(rows, activeThemeID(ctx, s, user.ID), mode)
	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, themetempl.ThemeList(views), nil, "Failed to render themes list", "Failed to render list")
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"themes": views}); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to write themes list response")
	}
}

// GET /api/v1/themes/builtin
func HandleBuiltInList(w http.ResponseWriter, r *http.Request) {
	s, user, mode, ok := themeRequestContext(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	views := themetempl.NewThemes(s.ListBuiltIns(), activeThemeID(ctx, s, user.ID), mode)
	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, themetempl.ThemeList(views), nil, "Failed to render built-in themes", "Failed to render list")
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"themes": views}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write built-in themes response")
	}
}

// GET /api/v1/themes/builtin/random
func HandleBuiltInRandom(w http.ResponseWriter, r *http.Request) {
	s, user, mode, ok := themeRequestContext(w, r)
	if !ok {
		return
	}

	theme, err := s.RandomBuiltIn()
	if err != nil {
		writeThemeError(w, err, "No built-in themes available")
		return
	}
	writeTheme(w, r, s, user.ID, theme, mode)
}

// GET /api/v1/themes/builtin/{slug}
func HandleBuiltInDetail(w http.ResponseWriter, r *http.Request) {
	s, user, mode, ok := themeRequestContext(w, r)
	if !ok {
		return
	}

	slug := strings.TrimSpace(r.PathValue(slugParam))
	if slug == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "slug is required", nil)
		return
	}
	theme, err := s.GetBuiltIn(slug)
	if err != nil {
		writeThemeError(w, err, "Failed to load theme")
		return
	}
	writeTheme(w, r, s, user.ID, theme, mode)
}

// GET /api/v1/themes/{id}
func HandleThemeDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	s, user, mode, ok := themeRequestContext(w, r)
	if !ok {
		return
	}

	themeID, err := apiutil.IDFromPath(r, themeIDParam)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid theme ID", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	theme, err := s.GetTheme(ctx, user.ID, themeID)
	if err != nil {
		if !errors.Is(err, themes.ErrThemeNotFound) {
			logger.Error().Err(err).Int64("theme_id", themeID).Msg("Failed to fetch theme")
		}
		writeThemeError(w, err, "Failed to load theme")
		return
	}
	writeTheme(w, r, s, user.ID, theme, mode)
}

// GET /api/v1/themes/active
func HandleActiveTheme(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	s, user, mode, ok := themeRequestContext(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	theme, selected, err := activeOrDefault(ctx, s, user.ID)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to load active theme")
		writeThemeError(w, err, "Failed to load active theme")
		return
	}
	if theme == nil {
		writeThemeError(w, themes.ErrThemeNotFound, "")
		return
	}

	wallpaper, err := s.Wallpaper(ctx, user.ID)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to load wallpaper")
		writeThemeError(w, err, "Failed to load active theme")
		return
	}

	var activeID int64
	if selected {
		activeID = theme.ID
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, activeThemeResponse{
		Theme:     themetempl.NewTheme(*theme, activeID, mode),
		Selected:  selected,
		Wallpaper: wallpaper,
	}); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to write active theme response")
	}
}

// PUT /api/v1/themes/active/wallpaper
// An empty url clears the override.
func HandleSetWallpaper(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	s, user, _, ok := themeRequestContext(w, r)
	if !ok {
		return
	}

	var req wallpaperRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	wallpaperURL := strings.TrimSpace(req.URL)
	if wallpaperURL != "" {
		parsed, err := url.ParseRequestURI(wallpaperURL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			apiutil.WriteError(w, http.StatusBadRequest, "url must be an absolute http or https URL", nil)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	if err := s.SetWallpaper(ctx, user.ID, wallpaperURL); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to set wallpaper")
		writeThemeError(w, err, "Failed to set wallpaper")
		return
	}

	htmx.Trigger(w, r, htmx.ThemeChangedEvent)
	if err := apiutil.WriteJSON(w, http.StatusOK, wallpaperResponse{URL: wallpaperURL}); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to write wallpaper response")
	}
}

// PUT /api/v1/themes/active
func HandleSelectTheme(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	s, user, mode, ok := themeRequestContext(w, r)
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

	if err := s.SelectTheme(ctx, user.ID, req.ThemeID); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Int64("theme_id", req.ThemeID).Msg("Failed to select theme")
		writeThemeError(w, err, "Failed to select theme")
		return
	}
	theme, err := s.GetTheme(ctx, user.ID, req.ThemeID)
	if err != nil {
		writeThemeError(w, err, "Failed to load theme")
		return
	}

	htmx.Trigger(w, r, htmx.ThemeChangedEvent)
	if err := apiutil.WriteJSON(w, http.StatusOK, activeThemeResponse{
		Theme:    themetempl.NewTheme(*theme, theme.ID, mode),
		Selected: true,
	}); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to write select theme response")
	}
}

// GET /api/v1/themes/active/css
func HandleActiveThemeCSS(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	s, user, mode, ok := themeRequestContext(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	theme, _, err := activeOrDefault(ctx, s, user.ID)
	if err != nil {
		// Rendering falls back to the system defaults rather than failing the page.
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to load active theme for CSS")
		theme = nil
	}

	if htmx.IsRequest(r) {
		headers := map[string]string{"Cache-Control": "no-store"}
		apiutil.RenderHTMLComponent(r.Context(), w, layouts.ThemeStyle(theme, mode), headers, "Failed to render theme style", "Failed to render theme")
		return
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, layouts.ThemeCSSVars(theme, mode)); err != nil {
		logger.Error().Err(err).Msg("Failed to write theme CSS")
	}
}

// POST /api/v1/themes/custom
func HandleApplyCustomTheme(w http.ResponseWriter, r *http.Request) {
	s, user, _, ok := themeRequestContext(w, r)
	if !ok {
		return
	}

	var req customThemeRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	draft, err := req.toTheme()
	if err != nil {
		writeThemeError(w, err, "Invalid theme")
		return
	}

	saveDraft(w, r, s, user.ID, draft)
}

// POST /api/v1/themes/generated
func HandleGeneratedTheme(w http.ResponseWriter, r *http.Request) {
	s, user, _, ok := themeRequestContext(w, r)
	if !ok {
		return
	}

	ip := ratelimit.GetClientIP(r, trustProxy)
	if limiter != nil {
		if result := limiter.Check(user.ID, ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded(r.Context(), user.ID, ip, result)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(result.RetryAfter)))
			apiutil.WriteError(w, http.StatusTooManyRequests, "Too many theme imports, try again later", nil)
			return
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxGeneratedBodyBytes))
	if err != nil {
		apiutil.WriteError(w, http.StatusRequestEntityTooLarge, "Theme payload too large", nil)
		return
	}

	draft, err := themes.ParseGeneratedTheme(body)
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Int64("user_id", user.ID).Msg("Rejected generated theme payload")
		writeThemeError(w, err, "Invalid theme payload")
		return
	}

	if saveDraft(w, r, s, user.ID, draft) && limiter != nil {
		limiter.Record(user.ID, ip)
	}
}

// POST /api/v1/themes/resolve
func HandleResolveColor(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	s, user, _, ok := themeRequestContext(w, r)
	if !ok {
		return
	}

	var req resolveColorRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	token, ok := models.ParseToken(req.Token)
	if !ok {
		apiutil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("unknown color token %q", req.Token), nil)
		return
	}
	mode, err := apiutil.ParseMode(req.Mode, defaultMode)
	if err != nil {
		apiutil.WriteHandlerError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	var theme *models.Theme
	if req.ThemeID > 0 {
		theme, err = s.GetTheme(ctx, user.ID, req.ThemeID)
	} else {
		theme, _, err = activeOrDefault(ctx, s, user.ID)
	}
	if err != nil {
		writeThemeError(w, err, "Failed to load theme")
		return
	}

	value := models.ResolveColor(theme, token, mode)
	resp := resolveColorResponse{
		Token: token,
		Mode:  mode,
		Value: value,
		Hex:   color.HSLToHex(value),
	}
	if theme != nil {
		resp.ThemeID = theme.ID
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Msg("Failed to write resolve color response")
	}
}

// saveDraft persists draft as the user's custom theme and reports whether it
// succeeded.
func saveDraft(w http.ResponseWriter, r *http.Request, s *themes.Store, userID int64, draft *models.Theme) bool {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	themeID, err := s.ApplyCustomTheme(ctx, userID, draft)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to save custom theme")
		writeThemeError(w, err, "Failed to save theme")
		return false
	}

	logger.Info().Int64("user_id", userID).Int64("theme_id", themeID).Msg("Saved custom theme")
	htmx.Trigger(w, r, htmx.ThemeChangedEvent)
	if err := apiutil.WriteJSON(w, http.StatusCreated, savedThemeResponse{ThemeID: themeID}); err != nil {
		logger.Error().Err(err).Int64("theme_id", themeID).Msg("Failed to write save theme response")
	}
	return true
}

func (req customThemeRequest) toTheme() (*models.Theme, error) {
	var fieldErrs themes.ValidationErrors
	draft := &models.Theme{
		Slug:              strings.TrimSpace(req.Slug),
		Name:              req.Name,
		Colors:            colorSetFromRequest("colors", req.Colors, &fieldErrs),
		Light:             colorSetFromRequest("light", req.Light, &fieldErrs),
		Dark:              colorSetFromRequest("dark", req.Dark, &fieldErrs),
		SupportsBothModes: req.SupportsBothModes,
	}
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}
	if req.Typography != nil {
		draft.Typography = *req.Typography
	}
	if req.Layout != nil {
		draft.Layout = *req.Layout
	}
	return draft, nil
}

func colorSetFromRequest(field string, values map[string]string, errs *themes.ValidationErrors) models.ColorSet {
	if len(values) == 0 {
		return nil
	}
	set := make(models.ColorSet, len(values))
	for name, value := range values {
		token, ok := models.ParseToken(name)
		if !ok {
			*errs = append(*errs, themes.FieldError{Field: field + "." + name, Message: "is not a color token"})
			continue
		}
		set[token] = strings.TrimSpace(value)
	}
	return set
}

func themeRequestContext(w http.ResponseWriter, r *http.Request) (*themes.Store, *authz.AuthUser, models.Mode, bool) {
	s := loadStore()
	if s == nil {
		log.Ctx(r.Context()).Error().Msg("Theme store not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error", nil)
		return nil, nil, "", false
	}
	user, ok := apiutil.RequireUser(w, r)
	if !ok {
		return nil, nil, "", false
	}
	mode, err := apiutil.ModeFromQuery(r, defaultMode)
	if err != nil {
		apiutil.WriteHandlerError(w, err)
		return nil, nil, "", false
	}
	return s, user, mode, true
}

func writeTheme(w http.ResponseWriter, r *http.Request, s *themes.Store, userID int64, theme *models.Theme, mode models.Mode) {
	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	view := themetempl.NewTheme(*theme, activeThemeID(ctx, s, userID), mode)
	if err := apiutil.WriteJSON(w, http.StatusOK, view); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("theme_id", theme.ID).Msg("Failed to write theme response")
	}
}

// activeOrDefault returns the user's selected theme, or the default built-in
// with selected false when nothing visible is selected.
func activeOrDefault(ctx context.Context, s *themes.Store, userID int64) (*models.Theme, bool, error) {
	theme, err := s.GetUserActiveTheme(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if theme != nil {
		return theme, true, nil
	}
	return s.DefaultBuiltIn(), false, nil
}

func activeThemeID(ctx context.Context, s *themes.Store, userID int64) int64 {
	theme, err := s.GetUserActiveTheme(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("Failed to load active theme")
		return 0
	}
	if theme == nil {
		return 0
	}
	return theme.ID
}

// writeThemeError maps domain errors onto HTTP statuses. message is used for
// unexpected failures only.
func writeThemeError(w http.ResponseWriter, err error, message string) {
	apiutil.WriteHandlerError(w, themeHandlerError(err, message))
}

// themeHandlerError maps a themes error to its response. Unrecognized errors
// become a 500 carrying message.
func themeHandlerError(err error, message string) apiutil.HandlerError {
	var validationErrs themes.ValidationErrors
	var persistErr *themes.PersistError
	switch {
	case errors.As(err, &validationErrs):
		return apiutil.HandlerError{Status: http.StatusUnprocessableEntity, Message: "Invalid theme", Fields: validationErrs, Err: err}
	case errors.As(err, &persistErr):
		return apiutil.HandlerError{Status: http.StatusServiceUnavailable, Message: "Theme storage unavailable, please retry", Err: err}
	case errors.Is(err, themes.ErrThemeNotFound):
		return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Theme not found", Err: err}
	case errors.Is(err, themes.ErrSessionNotFound):
		return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Editor session not found", Err: err}
	case errors.Is(err, themes.ErrBuiltInReadOnly):
		return apiutil.HandlerError{Status: http.StatusConflict, Message: err.Error(), Err: err}
	case errors.Is(err, themes.ErrNotOwner):
		return apiutil.HandlerError{Status: http.StatusForbidden, Message: err.Error(), Err: err}
	case errors.Is(err, themes.ErrMissingOwner):
		return apiutil.HandlerError{Status: http.StatusUnauthorized, Message: "Unauthorized", Err: err}
	case errors.Is(err, themes.ErrUnknownToken), errors.Is(err, themes.ErrInvalidColor), errors.Is(err, themes.ErrInvalidMode):
		return apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	default:
		return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: message, Err: err}
	}
}

func retryAfterSeconds(d time.Duration) int {
	seconds := int((d + time.Second - 1) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}

func loadStore() *themes.Store {
	return store
}

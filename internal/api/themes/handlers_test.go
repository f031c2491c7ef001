package themes

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codr1/Coursely/internal/api/authz"
	"github.com/codr1/Coursely/internal/api/htmx"
	"github.com/codr1/Coursely/internal/db"
	"github.com/codr1/Coursely/internal/models"
	"github.com/codr1/Coursely/internal/ratelimit"
	themetempl "github.com/codr1/Coursely/internal/templates/components/themes"
	"github.com/codr1/Coursely/internal/testutil"
	"github.com/codr1/Coursely/internal/themes"
)

const testUserID int64 = 42

type testEnv struct {
	database *db.DB
	store    *themes.Store
	builtIns map[string]models.Theme
}

func setupHandlers(t *testing.T) *testEnv {
	t.Helper()

	database, catalog := testutil.NewSeededTestDB(t)
	s := themes.NewStoreFromDB(database, catalog, "default")

	store = s
	sessions = themes.NewEditorSessions(s, time.Hour)
	limiter = nil
	defaultMode = models.ModeLight
	t.Cleanup(func() {
		store = nil
		sessions = nil
		limiter = nil
		defaultMode = models.ModeLight
		initOnce = sync.Once{}
	})

	env := &testEnv{database: database, store: s, builtIns: make(map[string]models.Theme)}
	for _, theme := range catalog {
		env.builtIns[theme.Slug] = theme
	}
	return env
}

func newThemeRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: testUserID})
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(recorder.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, recorder.Body.String())
	}
}

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestThemesList_RequiresUser(t *testing.T) {
	setupHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/themes", nil)
	recorder := httptest.NewRecorder()
	HandleThemesList(recorder, req)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", recorder.Code)
	}
}

func TestSelectTheme_MarksActiveInList(t *testing.T) {
	env := setupHandlers(t)
	ocean := env.builtIns["ocean"]

	req := newThemeRequest(http.MethodPut, "/api/v1/themes/active", mustMarshal(t, selectThemeRequest{ThemeID: ocean.ID}))
	req.Header.Set("HX-Request", "true")
	recorder := httptest.NewRecorder()
	HandleSelectTheme(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if got := recorder.Header().Get("HX-Trigger"); got != htmx.ThemeChangedEvent {
		t.Fatalf("HX-Trigger = %q", got)
	}

	recorder = httptest.NewRecorder()
	HandleThemesList(recorder, newThemeRequest(http.MethodGet, "/api/v1/themes?mode=dark", ""))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var resp struct {
		Themes []themetempl.Theme `json:"themes"`
	}
	decodeBody(t, recorder, &resp)
	if len(resp.Themes) != len(env.builtIns) {
		t.Fatalf("expected %d themes, got %d", len(env.builtIns), len(resp.Themes))
	}
	for _, theme := range resp.Themes {
		if theme.IsActive != (theme.Slug == "ocean") {
			t.Fatalf("theme %s active = %t", theme.Slug, theme.IsActive)
		}
		if theme.Slug == "ocean" && theme.Colors[models.TokenPrimary] != "200 85% 55%" {
			t.Fatalf("ocean dark primary = %q", theme.Colors[models.TokenPrimary])
		}
	}
}

func TestSelectTheme_Rejects(t *testing.T) {
	setupHandlers(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "missing_id", body: `{}`, wantCode: http.StatusBadRequest},
		{name: "unknown_field", body: `{"themeId": 1, "wallpaper": "x"}`, wantCode: http.StatusBadRequest},
		{name: "unknown_theme", body: `{"themeId": 999}`, wantCode: http.StatusNotFound},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			HandleSelectTheme(recorder, newThemeRequest(http.MethodPut, "/api/v1/themes/active", test.body))
			if recorder.Code != test.wantCode {
				t.Fatalf("expected status %d, got %d", test.wantCode, recorder.Code)
			}
		})
	}
}

func TestThemesList_Search(t *testing.T) {
	setupHandlers(t)

	recorder := httptest.NewRecorder()
	HandleThemesList(recorder, newThemeRequest(http.MethodGet, "/api/v1/themes?q=ocn", ""))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var resp struct {
		Themes []themetempl.Theme `json:"themes"`
	}
	decodeBody(t, recorder, &resp)
	if len(resp.Themes) == 0 || resp.Themes[0].Slug != "ocean" {
		t.Fatalf("search results = %+v", resp.Themes)
	}
}

func TestThemeDetail(t *testing.T) {
	env := setupHandlers(t)
	forest := env.builtIns["forest"]

	tests := []struct {
		name     string
		id       string
		wantCode int
	}{
		{name: "built_in", id: strconv.FormatInt(forest.ID, 10), wantCode: http.StatusOK},
		{name: "not_found", id: "999", wantCode: http.StatusNotFound},
		{name: "invalid_id", id: "abc", wantCode: http.StatusBadRequest},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := newThemeRequest(http.MethodGet, "/api/v1/themes/"+test.id, "")
			req.SetPathValue("id", test.id)
			recorder := httptest.NewRecorder()
			HandleThemeDetail(recorder, req)

			if recorder.Code != test.wantCode {
				t.Fatalf("expected status %d, got %d", test.wantCode, recorder.Code)
			}
		})
	}
}

func TestBuiltInDetail(t *testing.T) {
	setupHandlers(t)

	req := newThemeRequest(http.MethodGet, "/api/v1/themes/builtin/ocean?mode=dark", "")
	req.SetPathValue("slug", "ocean")
	recorder := httptest.NewRecorder()
	HandleBuiltInDetail(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	var theme themetempl.Theme
	decodeBody(t, recorder, &theme)
	if theme.Mode != models.ModeDark || theme.Colors[models.TokenPrimary] != "200 85% 55%" {
		t.Fatalf("ocean in dark mode = %+v", theme)
	}
	if !theme.Colors.Complete() {
		t.Fatalf("colors not resolved: %v", theme.Colors)
	}

	req = newThemeRequest(http.MethodGet, "/api/v1/themes/builtin/ocean?mode=sepia", "")
	req.SetPathValue("slug", "ocean")
	recorder = httptest.NewRecorder()
	HandleBuiltInDetail(recorder, req)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for bad mode, got %d", recorder.Code)
	}

	req = newThemeRequest(http.MethodGet, "/api/v1/themes/builtin/neon", "")
	req.SetPathValue("slug", "neon")
	recorder = httptest.NewRecorder()
	HandleBuiltInDetail(recorder, req)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown slug, got %d", recorder.Code)
	}
}

func TestBuiltInRandom(t *testing.T) {
	env := setupHandlers(t)

	recorder := httptest.NewRecorder()
	HandleBuiltInRandom(recorder, newThemeRequest(http.MethodGet, "/api/v1/themes/builtin/random", ""))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	var theme themetempl.Theme
	decodeBody(t, recorder, &theme)
	if _, ok := env.builtIns[theme.Slug]; !ok || !theme.IsBuiltIn {
		t.Fatalf("random theme %q is not a built-in", theme.Slug)
	}
}

func TestActiveTheme_DefaultsWhenUnselected(t *testing.T) {
	setupHandlers(t)

	recorder := httptest.NewRecorder()
	HandleActiveTheme(recorder, newThemeRequest(http.MethodGet, "/api/v1/themes/active", ""))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var resp activeThemeResponse
	decodeBody(t, recorder, &resp)
	if resp.Selected || resp.Theme.Slug != "default" || resp.Theme.IsActive {
		t.Fatalf("active theme for new user = %+v", resp)
	}
}

func TestWallpaper_ClearedBySelect(t *testing.T) {
	env := setupHandlers(t)

	for _, body := range []string{`{"url": "ftp://example.com/bg.png"}`, `{"url": "bg.png"}`, `{"href": ""}`} {
		recorder := httptest.NewRecorder()
		HandleSetWallpaper(recorder, newThemeRequest(http.MethodPut, "/api/v1/themes/active/wallpaper", body))
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected status 400, got %d", body, recorder.Code)
		}
	}

	recorder := httptest.NewRecorder()
	HandleSetWallpaper(recorder, newThemeRequest(http.MethodPut, "/api/v1/themes/active/wallpaper", `{"url": "https://example.com/bg.png"}`))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	activeWallpaper := func() string {
		t.Helper()
		recorder := httptest.NewRecorder()
		HandleActiveTheme(recorder, newThemeRequest(http.MethodGet, "/api/v1/themes/active", ""))
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}
		var resp activeThemeResponse
		decodeBody(t, recorder, &resp)
		return resp.Wallpaper
	}
	if got := activeWallpaper(); got != "https://example.com/bg.png" {
		t.Fatalf("wallpaper = %q", got)
	}

	recorder = httptest.NewRecorder()
	HandleSelectTheme(recorder, newThemeRequest(http.MethodPut, "/api/v1/themes/active", mustMarshal(t, selectThemeRequest{ThemeID: env.builtIns["forest"].ID})))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if got := activeWallpaper(); got != "" {
		t.Fatalf("wallpaper = %q after select, want cleared", got)
	}
}

func TestActiveThemeCSS(t *testing.T) {
	env := setupHandlers(t)
	ocean := env.builtIns["ocean"]
	if err := env.store.SelectTheme(context.Background(), testUserID, ocean.ID); err != nil {
		t.Fatalf("SelectTheme() error = %v", err)
	}

	recorder := httptest.NewRecorder()
	HandleActiveThemeCSS(recorder, newThemeRequest(http.MethodGet, "/api/v1/themes/active/css?mode=dark", ""))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Fatalf("Content-Type = %q", ct)
	}
	css := recorder.Body.String()
	for _, want := range []string{"color-scheme:dark;", "--primary:200 85% 55%;", "--radius:0.75rem;"} {
		if !strings.Contains(css, want) {
			t.Fatalf("css missing %q: %s", want, css)
		}
	}
}

func TestHTMXRequestsGetHTML(t *testing.T) {
	env := setupHandlers(t)
	ocean := env.builtIns["ocean"]
	if err := env.store.SelectTheme(context.Background(), testUserID, ocean.ID); err != nil {
		t.Fatalf("SelectTheme() error = %v", err)
	}

	tests := []struct {
		name    string
		handler http.HandlerFunc
		target  string
		want    []string
	}{
		{
			name:    "themes_list",
			handler: HandleThemesList,
			target:  "/api/v1/themes?mode=dark",
			want:    []string{`<ul id="theme-list"`, `data-slug="ocean"`, "Active"},
		},
		{
			name:    "built_in_list",
			handler: HandleBuiltInList,
			target:  "/api/v1/themes/builtin",
			want:    []string{`<ul id="theme-list"`, `data-slug="forest"`},
		},
		{
			name:    "active_css",
			handler: HandleActiveThemeCSS,
			target:  "/api/v1/themes/active/css?mode=dark",
			want:    []string{`<style id="theme-vars">:root{`, "--primary:200 85% 55%;", "</style>"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := newThemeRequest(http.MethodGet, test.target, "")
			req.Header.Set("HX-Request", "true")
			recorder := httptest.NewRecorder()
			test.handler(recorder, req)

			if recorder.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
			}
			if ct := recorder.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Fatalf("Content-Type = %q", ct)
			}
			body := recorder.Body.String()
			for _, want := range test.want {
				if !strings.Contains(body, want) {
					t.Fatalf("body missing %q: %s", want, body)
				}
			}
		})
	}
}

func TestApplyCustomTheme(t *testing.T) {
	env := setupHandlers(t)

	body := `{"name": "Mine", "colors": {"primary": "10 80% 50%", "base-background": "0 0% 100%"}, "layout": {"hueShift": 5}}`
	req := newThemeRequest(http.MethodPost, "/api/v1/themes/custom", body)
	req.Header.Set("HX-Request", "true")
	recorder := httptest.NewRecorder()
	HandleApplyCustomTheme(recorder, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if recorder.Header().Get("HX-Trigger") != htmx.ThemeChangedEvent {
		t.Fatalf("missing HX-Trigger on save")
	}
	var saved savedThemeResponse
	decodeBody(t, recorder, &saved)

	active, err := env.store.GetUserActiveTheme(context.Background(), testUserID)
	if err != nil || active == nil {
		t.Fatalf("GetUserActiveTheme() = %v, %v", active, err)
	}
	if active.ID != saved.ThemeID || active.Slug != "custom-user-42" {
		t.Fatalf("active theme = %d/%q, want %d", active.ID, active.Slug, saved.ThemeID)
	}
	if active.Colors[models.TokenBaseBackground] != "0 0% 100%" || active.Layout.HueShift != 5 {
		t.Fatalf("saved theme = %+v", active)
	}
}

func TestApplyCustomTheme_Rejects(t *testing.T) {
	setupHandlers(t)

	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantField string
	}{
		{name: "unknown_token", body: `{"name": "Mine", "colors": {"sparkle": "1 2% 3%"}}`, wantCode: http.StatusUnprocessableEntity, wantField: "colors.sparkle"},
		{name: "invalid_color", body: `{"name": "Mine", "colors": {"primary": "#ff0000"}}`, wantCode: http.StatusUnprocessableEntity, wantField: "theme"},
		{name: "blank_name", body: `{"name": "   ", "colors": {"primary": "10 80% 50%"}}`, wantCode: http.StatusUnprocessableEntity, wantField: "theme"},
		{name: "malformed_json", body: `{"name": `, wantCode: http.StatusBadRequest},
		{name: "foreign_fork_slug", body: `{"slug": "ocean-custom-8-1", "name": "Mine", "colors": {"primary": "10 80% 50%"}}`, wantCode: http.StatusUnprocessableEntity, wantField: "slug"},
		{name: "unscoped_slug", body: `{"slug": "mytheme", "name": "Mine", "colors": {"primary": "10 80% 50%"}}`, wantCode: http.StatusUnprocessableEntity, wantField: "slug"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			HandleApplyCustomTheme(recorder, newThemeRequest(http.MethodPost, "/api/v1/themes/custom", test.body))
			if recorder.Code != test.wantCode {
				t.Fatalf("expected status %d, got %d: %s", test.wantCode, recorder.Code, recorder.Body.String())
			}
			if test.wantField == "" {
				return
			}
			var resp struct {
				Fields []themes.FieldError `json:"fields"`
			}
			decodeBody(t, recorder, &resp)
			if len(resp.Fields) == 0 || resp.Fields[0].Field != test.wantField {
				t.Fatalf("fields = %+v, want %s", resp.Fields, test.wantField)
			}
		})
	}
}

func TestThemeHandlerError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "validation", err: themes.ValidationErrors{{Field: "slug", Message: "taken"}}, wantStatus: http.StatusUnprocessableEntity},
		{name: "persist", err: &themes.PersistError{Op: "create theme", Err: errors.New("locked")}, wantStatus: http.StatusServiceUnavailable},
		{name: "theme_not_found", err: themes.ErrThemeNotFound, wantStatus: http.StatusNotFound},
		{name: "session_not_found", err: themes.ErrSessionNotFound, wantStatus: http.StatusNotFound},
		{name: "built_in", err: themes.ErrBuiltInReadOnly, wantStatus: http.StatusConflict},
		{name: "not_owner", err: fmt.Errorf("save: %w", themes.ErrNotOwner), wantStatus: http.StatusForbidden},
		{name: "missing_owner", err: themes.ErrMissingOwner, wantStatus: http.StatusUnauthorized},
		{name: "bad_color", err: themes.ErrInvalidColor, wantStatus: http.StatusBadRequest},
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			handlerErr := themeHandlerError(test.err, "Failed to save theme")
			if handlerErr.Status != test.wantStatus {
				t.Fatalf("status = %d, want %d", handlerErr.Status, test.wantStatus)
			}
			if handlerErr.Err == nil {
				t.Fatalf("HandlerError dropped its cause")
			}

			recorder := httptest.NewRecorder()
			writeThemeError(recorder, test.err, "Failed to save theme")
			if recorder.Code != test.wantStatus {
				t.Fatalf("expected status %d, got %d", test.wantStatus, recorder.Code)
			}
		})
	}

	recorder := httptest.NewRecorder()
	writeThemeError(recorder, errors.New("boom"), "Failed to save theme")
	var resp struct {
		Error string `json:"error"`
	}
	decodeBody(t, recorder, &resp)
	if resp.Error != "Failed to save theme" {
		t.Fatalf("fallback message = %q", resp.Error)
	}
}

func generatedPayload() map[string]any {
	payload := map[string]any{
		"name":              "Aurora",
		"font_sans":         "Inter, sans-serif",
		"font_serif":        "Georgia, serif",
		"font_mono":         "JetBrains Mono, monospace",
		"radius":            "0.75rem",
		"letter_spacing":    0,
		"hue_shift":         -15,
		"saturation_adjust": 10,
		"lightness_adjust":  -5,
		"spacing_scale":     1,
		"shadow_strength":   "strong",
	}
	for _, token := range models.Tokens {
		payload[string(token)] = "262 83% 58%"
	}
	return payload
}

func TestGeneratedTheme_ValidatesAndRateLimits(t *testing.T) {
	env := setupHandlers(t)
	limiter = ratelimit.New(&ratelimit.Config{Cooldown: time.Minute, MaxPerHour: 5, MaxIPPerHour: 50})
	t.Cleanup(limiter.Close)

	invalid := generatedPayload()
	delete(invalid, "font_mono")
	recorder := httptest.NewRecorder()
	HandleGeneratedTheme(recorder, newThemeRequest(http.MethodPost, "/api/v1/themes/generated", mustMarshal(t, invalid)))
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", recorder.Code)
	}
	custom, err := env.store.ListUserThemes(context.Background(), testUserID)
	if err != nil || len(custom) != 0 {
		t.Fatalf("rejected payload stored: %d themes, %v", len(custom), err)
	}

	// A rejected payload does not count against the limit.
	recorder = httptest.NewRecorder()
	HandleGeneratedTheme(recorder, newThemeRequest(http.MethodPost, "/api/v1/themes/generated", mustMarshal(t, generatedPayload())))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var saved savedThemeResponse
	decodeBody(t, recorder, &saved)
	theme, err := env.store.GetTheme(context.Background(), testUserID, saved.ThemeID)
	if err != nil {
		t.Fatalf("GetTheme() error = %v", err)
	}
	if theme.Name != "Aurora" || theme.Layout.ShadowStrength != models.ShadowStrong {
		t.Fatalf("stored generated theme = %+v", theme)
	}

	recorder = httptest.NewRecorder()
	HandleGeneratedTheme(recorder, newThemeRequest(http.MethodPost, "/api/v1/themes/generated", mustMarshal(t, generatedPayload())))
	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", recorder.Code)
	}
	if recorder.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q", recorder.Header().Get("Retry-After"))
	}
}

func TestResolveColor(t *testing.T) {
	env := setupHandlers(t)
	ocean := env.builtIns["ocean"]

	body := mustMarshal(t, resolveColorRequest{ThemeID: ocean.ID, Token: "base-background", Mode: "dark"})
	recorder := httptest.NewRecorder()
	HandleResolveColor(recorder, newThemeRequest(http.MethodPost, "/api/v1/themes/resolve", body))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var resp resolveColorResponse
	decodeBody(t, recorder, &resp)
	if resp.Value != ocean.Dark[models.TokenBaseBackground] || resp.Token != models.TokenBaseBackground {
		t.Fatalf("resolved = %+v", resp)
	}
	if !strings.HasPrefix(resp.Hex, "#") || len(resp.Hex) != 7 {
		t.Fatalf("hex = %q", resp.Hex)
	}

	// Without a theme id the user's active theme (or the default) resolves.
	recorder = httptest.NewRecorder()
	HandleResolveColor(recorder, newThemeRequest(http.MethodPost, "/api/v1/themes/resolve", `{"token": "primary"}`))
	decodeBody(t, recorder, &resp)
	if resp.Mode != models.ModeLight || resp.Value != models.ResolveColor(env.store.DefaultBuiltIn(), models.TokenPrimary, models.ModeLight) {
		t.Fatalf("resolved default = %+v", resp)
	}

	recorder = httptest.NewRecorder()
	HandleResolveColor(recorder, newThemeRequest(http.MethodPost, "/api/v1/themes/resolve", `{"token": "sparkle"}`))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown token, got %d", recorder.Code)
	}
}

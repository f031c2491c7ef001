// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/codr1/Coursely/internal/api"
	"github.com/codr1/Coursely/internal/api/colors"
	"github.com/codr1/Coursely/internal/api/themes"
	"github.com/codr1/Coursely/internal/config"
)

func newServer(cfg *config.Config) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithUser(cfg.Auth.UserHeader),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	registerRoutes(router)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Theme catalog and selection
	mux.HandleFunc("GET /api/v1/themes", themes.HandleThemesList)
	mux.HandleFunc("GET /api/v1/themes/builtin", themes.HandleBuiltInList)
	mux.HandleFunc("GET /api/v1/themes/builtin/random", themes.HandleBuiltInRandom)
	mux.HandleFunc("GET /api/v1/themes/builtin/{slug}", themes.HandleBuiltInDetail)
	mux.HandleFunc("GET /api/v1/themes/{id}", themes.HandleThemeDetail)
	mux.HandleFunc("GET /api/v1/themes/active", themes.HandleActiveTheme)
	mux.HandleFunc("PUT /api/v1/themes/active", themes.HandleSelectTheme)
	mux.HandleFunc("GET /api/v1/themes/active/css", themes.HandleActiveThemeCSS)
	mux.HandleFunc("PUT /api/v1/themes/active/wallpaper", themes.HandleSetWallpaper)
	mux.HandleFunc("POST /api/v1/themes/custom", themes.HandleApplyCustomTheme)
	mux.HandleFunc("POST /api/v1/themes/generated", themes.HandleGeneratedTheme)
	mux.HandleFunc("POST /api/v1/themes/resolve", themes.HandleResolveColor)

	// Editor sessions
	mux.HandleFunc("POST /api/v1/themes/editor", themes.HandleEditorOpen)
	mux.HandleFunc("GET /api/v1/themes/editor/{id}", themes.HandleEditorGet)
	mux.HandleFunc("PATCH /api/v1/themes/editor/{id}", themes.HandleEditorEdit)
	mux.HandleFunc("DELETE /api/v1/themes/editor/{id}", themes.HandleEditorDiscard)
	mux.HandleFunc("POST /api/v1/themes/editor/{id}/save", themes.HandleEditorSave)
	mux.HandleFunc("POST /api/v1/themes/editor/{id}/select", themes.HandleEditorSelect)

	// Picker conversions
	mux.HandleFunc("POST /api/v1/colors/hex", colors.HandleHSLToHex)
	mux.HandleFunc("POST /api/v1/colors/hsl", colors.HandleHexToHSL)
	mux.HandleFunc("POST /api/v1/colors/picker", colors.HandlePickerToHSL)
	mux.HandleFunc("POST /api/v1/colors/picker/position", colors.HandleHSLToPicker)
}

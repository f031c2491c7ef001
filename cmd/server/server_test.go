package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRegisterRoutes(t *testing.T) {
	mux := http.NewServeMux()
	registerRoutes(mux)

	tests := []struct {
		method  string
		path    string
		pattern string
	}{
		{http.MethodGet, "/api/v1/themes", "GET /api/v1/themes"},
		{http.MethodGet, "/api/v1/themes/builtin/random", "GET /api/v1/themes/builtin/random"},
		{http.MethodGet, "/api/v1/themes/builtin/ocean", "GET /api/v1/themes/builtin/{slug}"},
		{http.MethodGet, "/api/v1/themes/12", "GET /api/v1/themes/{id}"},
		{http.MethodGet, "/api/v1/themes/active", "GET /api/v1/themes/active"},
		{http.MethodPut, "/api/v1/themes/active", "PUT /api/v1/themes/active"},
		{http.MethodGet, "/api/v1/themes/active/css", "GET /api/v1/themes/active/css"},
		{http.MethodPut, "/api/v1/themes/active/wallpaper", "PUT /api/v1/themes/active/wallpaper"},
		{http.MethodPatch, "/api/v1/themes/editor/abc", "PATCH /api/v1/themes/editor/{id}"},
		{http.MethodPost, "/api/v1/themes/editor/abc/save", "POST /api/v1/themes/editor/{id}/save"},
		{http.MethodPost, "/api/v1/colors/picker/position", "POST /api/v1/colors/picker/position"},
	}

	for _, test := range tests {
		t.Run(test.method+" "+test.path, func(t *testing.T) {
			req := httptest.NewRequest(test.method, test.path, nil)
			_, pattern := mux.Handler(req)
			if pattern != test.pattern {
				t.Fatalf("route = %q, want %q", pattern, test.pattern)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	mux := http.NewServeMux()
	registerRoutes(mux)

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	if recorder.Code != http.StatusOK || recorder.Body.String() != "OK" {
		t.Fatalf("health = %d %q", recorder.Code, recorder.Body.String())
	}
}

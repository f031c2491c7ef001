package htmx

import (
	"net/http"
	"strings"
)

// ThemeChangedEvent is triggered on the client whenever the active theme or
// an editor draft changes.
const ThemeChangedEvent = "themeChanged"

func IsRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

// Trigger asks htmx to fire event on the client once the response settles.
// Non-htmx requests are left untouched.
func Trigger(w http.ResponseWriter, r *http.Request, event string) {
	if !IsRequest(r) {
		return
	}
	w.Header().Add("HX-Trigger", event)
}

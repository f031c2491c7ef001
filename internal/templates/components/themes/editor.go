package themes

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/Coursely/internal/models"
	themesvc "github.com/codr1/Coursely/internal/themes"
)

// EditorPanel renders an editor session's current draft. The panel reloads
// itself whenever the client sees a theme change.
func EditorPanel(state themesvc.EditorState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildEditorPanelHTML(state))
		return err
	})
}

func buildEditorPanelHTML(state themesvc.EditorState) string {
	sessionID := html.EscapeString(state.SessionID)

	var builder strings.Builder
	fmt.Fprintf(&builder,
		`<section id="theme-editor" data-session-id="%s" data-theme-id="%d" data-mode="%s" hx-get="/api/v1/themes/editor/%s" hx-trigger="themeChanged from:body" hx-swap="outerHTML">`,
		sessionID, state.ThemeID, html.EscapeString(string(state.Mode)), sessionID)

	fmt.Fprintf(&builder, `<header class="flex items-center justify-between"><h2 class="text-lg font-semibold">%s</h2>`, html.EscapeString(state.Name))
	switch {
	case state.IsBuiltIn:
		builder.WriteString(`<span class="text-xs text-muted-foreground">Built-in, edits create a copy</span>`)
	case state.Dirty:
		builder.WriteString(`<span class="text-xs">Unsaved changes</span>`)
	}
	builder.WriteString(`</header>`)

	builder.WriteString(`<dl class="mt-3 grid grid-cols-2 gap-2">`)
	for _, token := range models.Tokens {
		value := html.EscapeString(state.Colors[token])
		fmt.Fprintf(&builder,
			`<div class="flex items-center gap-2" data-token="%s"><span class="swatch h-5 w-5 rounded" style="background:hsl(%s)"></span><dt class="text-sm">%s</dt><dd class="text-xs text-muted-foreground">%s</dd></div>`,
			token, value, token, value)
	}
	builder.WriteString(`</dl>`)

	if !state.IsBuiltIn {
		disabled := ""
		if !state.Dirty {
			disabled = " disabled"
		}
		fmt.Fprintf(&builder,
			`<button class="mt-3" hx-post="/api/v1/themes/editor/%s/save" hx-swap="none"%s>Save</button>`,
			sessionID, disabled)
	}
	builder.WriteString(`</section>`)
	return builder.String()
}

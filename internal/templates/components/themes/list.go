package themes

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/Coursely/internal/models"
)

// swatchTokens are the colors a list card previews.
var swatchTokens = []models.Token{
	models.TokenPrimary,
	models.TokenSecondary,
	models.TokenAccent,
	models.TokenBaseBackground,
}

// ThemeList renders the picker list the themes endpoint swaps in for htmx.
func ThemeList(themes []Theme) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildThemeListHTML(themes))
		return err
	})
}

func buildThemeListHTML(themes []Theme) string {
	if len(themes) == 0 {
		return `<div id="theme-list" class="rounded border border-dashed p-6 text-center text-sm text-muted-foreground">No themes found.</div>`
	}

	var builder strings.Builder
	builder.WriteString(`<ul id="theme-list" class="grid gap-3">`)
	for _, theme := range themes {
		builder.WriteString(buildThemeCardHTML(theme))
	}
	builder.WriteString(`</ul>`)
	return builder.String()
}

func buildThemeCardHTML(theme Theme) string {
	var builder strings.Builder
	classes := "theme-card rounded border p-3"
	if theme.IsActive {
		classes += " ring-2 ring-primary"
	}
	fmt.Fprintf(&builder, `<li class="%s" data-theme-id="%d" data-slug="%s">`, classes, theme.ID, html.EscapeString(theme.Slug))
	fmt.Fprintf(&builder, `<div class="flex items-center justify-between"><span class="font-medium">%s</span>`, html.EscapeString(theme.Name))
	switch {
	case theme.IsActive:
		builder.WriteString(`<span class="text-xs">Active</span>`)
	case theme.IsBuiltIn:
		builder.WriteString(`<span class="text-xs text-muted-foreground">Built-in</span>`)
	}
	builder.WriteString(`</div>`)

	builder.WriteString(`<div class="mt-2 flex gap-1">`)
	for _, token := range swatchTokens {
		fmt.Fprintf(&builder, `<span class="swatch h-5 w-5 rounded" title="%s" style="background:hsl(%s)"></span>`,
			token, html.EscapeString(theme.Colors[token]))
	}
	builder.WriteString(`</div>`)

	if theme.ID > 0 && !theme.IsActive {
		fmt.Fprintf(&builder,
			`<button class="mt-2 text-sm" hx-put="/api/v1/themes/active" hx-ext="json-enc" hx-vals='{"themeId": %d}' hx-swap="none">Use theme</button>`,
			theme.ID)
	}
	builder.WriteString(`</li>`)
	return builder.String()
}

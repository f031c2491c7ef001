package layouts

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/Coursely/internal/color"
	"github.com/codr1/Coursely/internal/models"
)

var shadowValues = map[models.ShadowStrength]string{
	models.ShadowNone:   "none",
	models.ShadowSubtle: "0 1px 2px 0 rgb(0 0 0 / 0.05)",
	models.ShadowMedium: "0 4px 6px -1px rgb(0 0 0 / 0.1), 0 2px 4px -2px rgb(0 0 0 / 0.1)",
	models.ShadowStrong: "0 20px 25px -5px rgb(0 0 0 / 0.1), 0 8px 10px -6px rgb(0 0 0 / 0.1)",
}

// ThemeStyle renders ThemeCSSVars as the page's theme style block. htmx
// swaps it by id when the active theme changes.
func ThemeStyle(theme *models.Theme, mode models.Mode) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<style id="theme-vars">%s</style>`, ThemeCSSVars(theme, mode))
		return err
	})
}

// ThemeCSSVars renders theme as CSS custom properties for mode. Colors go
// through the resolver and then the theme's hue, saturation and lightness
// adjustments. A nil theme renders the system defaults.
func ThemeCSSVars(theme *models.Theme, mode models.Mode) string {
	typography := models.DefaultTypography()
	layout := models.DefaultLayout()
	if theme != nil {
		typography = theme.Typography
		layout = theme.Layout
	}

	var b strings.Builder
	b.WriteString(":root{")
	fmt.Fprintf(&b, "color-scheme:%s;", mode)
	for _, token := range models.Tokens {
		value := models.ResolveColor(theme, token, mode)
		adjusted := color.Adjust(color.ParseHSL(value), layout.HueShift, layout.SaturationAdjust, layout.LightnessAdjust)
		fmt.Fprintf(&b, "%s:%s;", token.CSSVar(), color.FormatHSL(adjusted))
	}

	fmt.Fprintf(&b, "--radius:%s;", cssValue(layout.Radius, models.DefaultLayout().Radius))
	fmt.Fprintf(&b, "--font-sans:%s;", cssValue(typography.Sans, models.DefaultTypography().Sans))
	fmt.Fprintf(&b, "--font-serif:%s;", cssValue(typography.Serif, models.DefaultTypography().Serif))
	fmt.Fprintf(&b, "--font-mono:%s;", cssValue(typography.Mono, models.DefaultTypography().Mono))
	fmt.Fprintf(&b, "--letter-spacing:%sem;", formatNumber(typography.LetterSpacing))

	spacing := layout.SpacingScale
	if spacing <= 0 {
		spacing = 1
	}
	fmt.Fprintf(&b, "--spacing-scale:%s;", formatNumber(spacing))

	shadow, ok := shadowValues[layout.ShadowStrength]
	if !ok {
		shadow = shadowValues[models.ShadowMedium]
	}
	fmt.Fprintf(&b, "--shadow:%s;", shadow)
	b.WriteString("}")
	return b.String()
}

// cssValue passes opaque values through, dropping characters that would end
// the declaration or the style block.
func cssValue(value string, fallback string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '\n', '\r':
			return -1
		}
		return r
	}, value)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return fallback
	}
	return cleaned
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

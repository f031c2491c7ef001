package layouts

import (
	"context"
	"strings"
	"testing"

	"github.com/codr1/Coursely/internal/models"
)

func TestThemeCSSVarsDefaults(t *testing.T) {
	css := ThemeCSSVars(nil, models.ModeLight)

	for _, want := range []string{
		"color-scheme:light;",
		"--primary:222 47% 11%;",
		"--destructive-background:0 84% 60%;",
		"--radius:0.5rem;",
		"--letter-spacing:0em;",
		"--spacing-scale:1;",
	} {
		if !strings.Contains(css, want) {
			t.Fatalf("ThemeCSSVars(nil) missing %q in %s", want, css)
		}
	}
	if !strings.HasPrefix(css, ":root{") || !strings.HasSuffix(css, "}") {
		t.Fatalf("ThemeCSSVars(nil) = %s", css)
	}
}

func TestThemeCSSVarsResolvesModeAndAdjusts(t *testing.T) {
	theme := &models.Theme{
		Light:      models.ColorSet{models.TokenPrimary: "200 85% 50%"},
		Dark:       models.ColorSet{models.TokenPrimary: "200 85% 55%"},
		Colors:     models.ColorSet{models.TokenAccent: "355 60% 40%"},
		Typography: models.DefaultTypography(),
		Layout: models.Layout{
			Radius:           "1rem",
			HueShift:         10,
			SaturationAdjust: 20,
			LightnessAdjust:  -5,
			SpacingScale:     1.25,
			ShadowStrength:   models.ShadowNone,
		},
	}

	light := ThemeCSSVars(theme, models.ModeLight)
	dark := ThemeCSSVars(theme, models.ModeDark)

	if !strings.Contains(light, "--primary:210 100% 45%;") {
		t.Fatalf("light primary not adjusted: %s", light)
	}
	if !strings.Contains(dark, "--primary:210 100% 50%;") {
		t.Fatalf("dark primary not adjusted: %s", dark)
	}
	// Hue wraps past 360.
	if !strings.Contains(light, "--accent:5 80% 35%;") {
		t.Fatalf("accent hue did not wrap: %s", light)
	}
	if !strings.Contains(dark, "--spacing-scale:1.25;") || !strings.Contains(dark, "--shadow:none;") {
		t.Fatalf("layout vars missing: %s", dark)
	}
}

func TestThemeCSSVarsStripsDeclarationBreakers(t *testing.T) {
	theme := &models.Theme{
		Typography: models.Typography{Sans: "Inter;}</style><script>", Serif: ";;", Mono: "Mono"},
		Layout:     models.DefaultLayout(),
	}

	css := ThemeCSSVars(theme, models.ModeDark)
	if strings.Contains(css, "<") || strings.Count(css, "}") != 1 {
		t.Fatalf("unsafe value leaked: %s", css)
	}
	if !strings.Contains(css, "--font-serif:"+models.DefaultTypography().Serif+";") {
		t.Fatalf("empty serif stack did not fall back: %s", css)
	}
}

func TestThemeStyleWrapsCSSVars(t *testing.T) {
	var b strings.Builder
	if err := ThemeStyle(nil, models.ModeDark).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := `<style id="theme-vars">` + ThemeCSSVars(nil, models.ModeDark) + `</style>`
	if b.String() != want {
		t.Fatalf("ThemeStyle() = %s, want %s", b.String(), want)
	}
}

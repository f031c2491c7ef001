package db

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/codr1/Coursely/assets"
	"github.com/codr1/Coursely/internal/models"
)

var defaultBuiltInSlug string

// DefaultBuiltInSlug is the slug of the theme marked default by the last
// successful ParseThemesFile call.
func DefaultBuiltInSlug() string {
	return defaultBuiltInSlug
}

type catalogFile struct {
	Themes []catalogTheme `yaml:"themes"`
}

type catalogTheme struct {
	Slug             string            `yaml:"slug"`
	Name             string            `yaml:"name"`
	Default          bool              `yaml:"default"`
	Light            map[string]string `yaml:"light"`
	Dark             map[string]string `yaml:"dark"`
	FontSans         string            `yaml:"font_sans"`
	FontSerif        string            `yaml:"font_serif"`
	FontMono         string            `yaml:"font_mono"`
	LetterSpacing    *float64          `yaml:"letter_spacing"`
	Radius           string            `yaml:"radius"`
	HueShift         *float64          `yaml:"hue_shift"`
	SaturationAdjust *float64          `yaml:"saturation_adjust"`
	LightnessAdjust  *float64          `yaml:"lightness_adjust"`
	SpacingScale     *float64          `yaml:"spacing_scale"`
	ShadowStrength   string            `yaml:"shadow_strength"`
}

// ParseThemesFile reads the embedded built-in catalog and returns its themes
// in file order.
func ParseThemesFile() ([]models.Theme, error) {
	file, err := assets.ThemesFS.Open(assets.ThemesPath)
	if err != nil {
		return nil, fmt.Errorf("open embedded themes file: %w", err)
	}
	defer file.Close()

	themes, defaultSlug, err := ParseThemes(file)
	if err != nil {
		return nil, err
	}
	defaultBuiltInSlug = defaultSlug
	return themes, nil
}

// ParseThemes decodes a catalog and returns the themes plus the default slug.
// Every built-in must define all light and dark colors, and exactly one must
// be marked default.
func ParseThemes(r io.Reader) ([]models.Theme, string, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var file catalogFile
	if err := decoder.Decode(&file); err != nil {
		return nil, "", fmt.Errorf("parse themes file: %w", err)
	}
	if len(file.Themes) == 0 {
		return nil, "", fmt.Errorf("themes file defines no themes")
	}

	seen := make(map[string]bool, len(file.Themes))
	defaultSlug := ""
	for i, entry := range file.Themes {
		if entry.Slug == "" {
			return nil, "", fmt.Errorf("theme %d: slug is required", i+1)
		}
		if seen[entry.Slug] {
			return nil, "", fmt.Errorf("duplicate theme slug %q", entry.Slug)
		}
		seen[entry.Slug] = true

		if entry.Default {
			if defaultSlug != "" {
				return nil, "", fmt.Errorf("multiple default themes: %q and %q", defaultSlug, entry.Slug)
			}
			defaultSlug = entry.Slug
		}
	}
	if defaultSlug == "" {
		return nil, "", fmt.Errorf("themes file has no default theme")
	}

	themes := make([]models.Theme, 0, len(file.Themes))
	for _, entry := range file.Themes {
		theme, err := entry.toTheme()
		if err != nil {
			return nil, "", fmt.Errorf("invalid theme %q: %w", entry.Slug, err)
		}
		if err := theme.Validate(); err != nil {
			return nil, "", fmt.Errorf("invalid theme %q: %w", entry.Slug, err)
		}
		themes = append(themes, theme)
	}

	return themes, defaultSlug, nil
}

func (c catalogTheme) toTheme() (models.Theme, error) {
	light, err := colorSet(c.Light)
	if err != nil {
		return models.Theme{}, fmt.Errorf("light: %w", err)
	}
	dark, err := colorSet(c.Dark)
	if err != nil {
		return models.Theme{}, fmt.Errorf("dark: %w", err)
	}

	typography := models.DefaultTypography()
	if c.FontSans != "" {
		typography.Sans = c.FontSans
	}
	if c.FontSerif != "" {
		typography.Serif = c.FontSerif
	}
	if c.FontMono != "" {
		typography.Mono = c.FontMono
	}
	setFloat(&typography.LetterSpacing, c.LetterSpacing)

	layout := models.DefaultLayout()
	if c.Radius != "" {
		layout.Radius = c.Radius
	}
	setFloat(&layout.HueShift, c.HueShift)
	setFloat(&layout.SaturationAdjust, c.SaturationAdjust)
	setFloat(&layout.LightnessAdjust, c.LightnessAdjust)
	setFloat(&layout.SpacingScale, c.SpacingScale)
	if c.ShadowStrength != "" {
		layout.ShadowStrength = models.ShadowStrength(c.ShadowStrength)
	}

	return models.Theme{
		Slug:              c.Slug,
		Name:              c.Name,
		Light:             light,
		Dark:              dark,
		Typography:        typography,
		Layout:            layout,
		SupportsBothModes: true,
		IsBuiltIn:         true,
	}, nil
}

func colorSet(raw map[string]string) (models.ColorSet, error) {
	set := make(models.ColorSet, len(raw))
	for name, value := range raw {
		token, ok := models.ParseToken(name)
		if !ok {
			return nil, fmt.Errorf("unknown color token %q", name)
		}
		set[token] = value
	}
	return set, nil
}

func setFloat(dst *float64, value *float64) {
	if value != nil {
		*dst = *value
	}
}

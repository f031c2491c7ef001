// internal/models/themes.go
package models

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/codr1/Coursely/internal/color"
	dbgen "github.com/codr1/Coursely/internal/db/generated"
)

const maxThemeNameLength = 100

var themeSlugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Token is one of the semantic color slots a theme defines.
type Token string

const (
	TokenPrimary               Token = "primary"
	TokenSecondary             Token = "secondary"
	TokenAccent                Token = "accent"
	TokenBaseBackground        Token = "base_background"
	TokenBaseForeground        Token = "base_foreground"
	TokenCardBackground        Token = "card_background"
	TokenCardForeground        Token = "card_foreground"
	TokenPopoverBackground     Token = "popover_background"
	TokenPopoverForeground     Token = "popover_foreground"
	TokenMutedBackground       Token = "muted_background"
	TokenMutedForeground       Token = "muted_foreground"
	TokenDestructiveBackground Token = "destructive_background"
	TokenDestructiveForeground Token = "destructive_foreground"
)

// Tokens is the full token set in display order. It matches dbgen.ColorTokens.
var Tokens = []Token{
	TokenPrimary,
	TokenSecondary,
	TokenAccent,
	TokenBaseBackground,
	TokenBaseForeground,
	TokenCardBackground,
	TokenCardForeground,
	TokenPopoverBackground,
	TokenPopoverForeground,
	TokenMutedBackground,
	TokenMutedForeground,
	TokenDestructiveBackground,
	TokenDestructiveForeground,
}

// ParseToken accepts either "base-background" or "base_background".
func ParseToken(name string) (Token, bool) {
	normalized := Token(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
	for _, token := range Tokens {
		if token == normalized {
			return token, true
		}
	}
	return "", false
}

// Field is the name of the mode-specific field, e.g. "primary_dark".
func (t Token) Field(mode Mode) string {
	return string(t) + "_" + string(mode)
}

func (t Token) CSSVar() string {
	return "--" + strings.ReplaceAll(string(t), "_", "-")
}

type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

func ParseMode(value string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeLight:
		return ModeLight, true
	case ModeDark:
		return ModeDark, true
	default:
		return "", false
	}
}

type ShadowStrength string

const (
	ShadowNone   ShadowStrength = "none"
	ShadowSubtle ShadowStrength = "subtle"
	ShadowMedium ShadowStrength = "medium"
	ShadowStrong ShadowStrength = "strong"
)

func (s ShadowStrength) Valid() bool {
	switch s {
	case ShadowNone, ShadowSubtle, ShadowMedium, ShadowStrong:
		return true
	default:
		return false
	}
}

// ColorSet maps tokens to HSL strings. A missing or empty entry means unset.
type ColorSet map[Token]string

func (c ColorSet) Clone() ColorSet {
	if c == nil {
		return nil
	}
	out := make(ColorSet, len(c))
	for token, value := range c {
		out[token] = value
	}
	return out
}

// Complete reports whether every token has a value.
func (c ColorSet) Complete() bool {
	for _, token := range Tokens {
		if c[token] == "" {
			return false
		}
	}
	return true
}

type Typography struct {
	Sans          string  `json:"sans"`
	Serif         string  `json:"serif"`
	Mono          string  `json:"mono"`
	LetterSpacing float64 `json:"letterSpacing"`
}

type Layout struct {
	Radius           string         `json:"radius"`
	HueShift         float64        `json:"hueShift"`
	SaturationAdjust float64        `json:"saturationAdjust"`
	LightnessAdjust  float64        `json:"lightnessAdjust"`
	SpacingScale     float64        `json:"spacingScale"`
	ShadowStrength   ShadowStrength `json:"shadowStrength"`
}

type Theme struct {
	ID                int64      `json:"id"`
	Slug              string     `json:"slug"`
	Name              string     `json:"name"`
	Colors            ColorSet   `json:"colors,omitempty"`
	Light             ColorSet   `json:"light,omitempty"`
	Dark              ColorSet   `json:"dark,omitempty"`
	Typography        Typography `json:"typography"`
	Layout            Layout     `json:"layout"`
	SupportsBothModes bool       `json:"supportsBothModes"`
	IsBuiltIn         bool       `json:"isBuiltIn"`
	ParentThemeID     *int64     `json:"parentThemeId,omitempty"`
	UserID            *int64     `json:"userId,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func DefaultTypography() Typography {
	return Typography{
		Sans:          "Inter, ui-sans-serif, system-ui, sans-serif",
		Serif:         "Georgia, ui-serif, serif",
		Mono:          "JetBrains Mono, ui-monospace, monospace",
		LetterSpacing: 0,
	}
}

func DefaultLayout() Layout {
	return Layout{
		Radius:         "0.5rem",
		SpacingScale:   1,
		ShadowStrength: ShadowMedium,
	}
}

// Variant returns the mode-specific color set, which may be nil.
func (t *Theme) Variant(mode Mode) ColorSet {
	if mode == ModeDark {
		return t.Dark
	}
	return t.Light
}

// SetVariant writes one mode-specific color, allocating the set if needed.
func (t *Theme) SetVariant(mode Mode, token Token, value string) {
	if mode == ModeDark {
		if t.Dark == nil {
			t.Dark = ColorSet{}
		}
		t.Dark[token] = value
		return
	}
	if t.Light == nil {
		t.Light = ColorSet{}
	}
	t.Light[token] = value
}

// SetLegacy writes the mode-neutral color for token.
func (t *Theme) SetLegacy(token Token, value string) {
	if t.Colors == nil {
		t.Colors = ColorSet{}
	}
	t.Colors[token] = value
}

// Clone returns a deep copy; the result shares no maps or pointers with t.
func (t *Theme) Clone() *Theme {
	if t == nil {
		return nil
	}
	out := *t
	out.Colors = t.Colors.Clone()
	out.Light = t.Light.Clone()
	out.Dark = t.Dark.Clone()
	out.ParentThemeID = cloneID(t.ParentThemeID)
	out.UserID = cloneID(t.UserID)
	return &out
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func (t Theme) Validate() error {
	trimmedName := strings.TrimSpace(t.Name)
	if trimmedName == "" {
		return fmt.Errorf("name is required")
	}
	if trimmedName != t.Name {
		return fmt.Errorf("name must not have leading or trailing whitespace")
	}
	if len(trimmedName) > maxThemeNameLength {
		return fmt.Errorf("name must be %d characters or fewer", maxThemeNameLength)
	}
	if !themeSlugRegex.MatchString(t.Slug) {
		return fmt.Errorf("slug must be lowercase letters, numbers, and hyphens")
	}

	if t.IsBuiltIn && (t.UserID != nil || t.ParentThemeID != nil) {
		return fmt.Errorf("built-in themes must not have an owner or parent")
	}
	if !t.IsBuiltIn && t.UserID == nil {
		return fmt.Errorf("custom themes must have user_id set")
	}

	sets := []struct {
		suffix string
		colors ColorSet
	}{
		{suffix: "", colors: t.Colors},
		{suffix: "_" + string(ModeLight), colors: t.Light},
		{suffix: "_" + string(ModeDark), colors: t.Dark},
	}
	for _, set := range sets {
		for token, value := range set.colors {
			if _, ok := ParseToken(string(token)); !ok {
				return fmt.Errorf("unknown color token %q", token)
			}
			if value != "" && !color.IsHSL(value) {
				return fmt.Errorf("%s%s must be an HSL color like \"200 85%% 50%%\"", token, set.suffix)
			}
		}
	}
	if t.SupportsBothModes && !(t.Light.Complete() && t.Dark.Complete()) {
		return fmt.Errorf("themes supporting both modes must define every light and dark color")
	}

	if t.Typography.LetterSpacing < -1 || t.Typography.LetterSpacing > 1 {
		return fmt.Errorf("letter_spacing must be between -1 and 1")
	}
	if t.Layout.HueShift < -180 || t.Layout.HueShift > 180 {
		return fmt.Errorf("hue_shift must be between -180 and 180")
	}
	if t.Layout.SaturationAdjust < -50 || t.Layout.SaturationAdjust > 50 {
		return fmt.Errorf("saturation_adjust must be between -50 and 50")
	}
	if t.Layout.LightnessAdjust < -50 || t.Layout.LightnessAdjust > 50 {
		return fmt.Errorf("lightness_adjust must be between -50 and 50")
	}
	if t.Layout.SpacingScale <= 0 || t.Layout.SpacingScale > 4 {
		return fmt.Errorf("spacing_scale must be greater than 0 and at most 4")
	}
	if !t.Layout.ShadowStrength.Valid() {
		return fmt.Errorf("shadow_strength must be one of none, subtle, medium, strong")
	}

	return nil
}

func ThemesFromDB(rows []dbgen.Theme) []Theme {
	results := make([]Theme, 0, len(rows))
	for _, row := range rows {
		results = append(results, ThemeFromDB(row))
	}
	return results
}

// ThemeFromDB maps a row to a Theme. NULL colors stay unset so the resolver
// can fall back; NULL typography and layout columns take their defaults.
func ThemeFromDB(row dbgen.Theme) Theme {
	typography := DefaultTypography()
	layout := DefaultLayout()

	theme := Theme{
		ID:                row.ID,
		Slug:              row.Slug,
		Name:              row.Name,
		SupportsBothModes: row.SupportsBothModes,
		IsBuiltIn:         row.IsBuiltIn,
		ParentThemeID:     idFromNull(row.ParentThemeID),
		UserID:            idFromNull(row.UserID),
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}

	for i, token := range Tokens {
		if i >= len(row.Colors) {
			break
		}
		columns := row.Colors[i]
		if columns.Base.Valid && columns.Base.String != "" {
			theme.SetLegacy(token, columns.Base.String)
		}
		if columns.Light.Valid && columns.Light.String != "" {
			theme.SetVariant(ModeLight, token, columns.Light.String)
		}
		if columns.Dark.Valid && columns.Dark.String != "" {
			theme.SetVariant(ModeDark, token, columns.Dark.String)
		}
	}

	if row.FontSans.Valid {
		typography.Sans = row.FontSans.String
	}
	if row.FontSerif.Valid {
		typography.Serif = row.FontSerif.String
	}
	if row.FontMono.Valid {
		typography.Mono = row.FontMono.String
	}
	if row.LetterSpacing.Valid {
		typography.LetterSpacing = row.LetterSpacing.Float64
	}
	if row.Radius.Valid {
		layout.Radius = row.Radius.String
	}
	if row.HueShift.Valid {
		layout.HueShift = row.HueShift.Float64
	}
	if row.SaturationAdjust.Valid {
		layout.SaturationAdjust = row.SaturationAdjust.Float64
	}
	if row.LightnessAdjust.Valid {
		layout.LightnessAdjust = row.LightnessAdjust.Float64
	}
	if row.SpacingScale.Valid {
		layout.SpacingScale = row.SpacingScale.Float64
	}
	if row.ShadowStrength.Valid {
		layout.ShadowStrength = ShadowStrength(row.ShadowStrength.String)
	}

	theme.Typography = typography
	theme.Layout = layout
	return theme
}

// DBFields maps t to its writable columns.
func (t Theme) DBFields() dbgen.ThemeFields {
	fields := dbgen.ThemeFields{
		Slug:              t.Slug,
		Name:              t.Name,
		Colors:            make([]dbgen.ColorColumns, len(Tokens)),
		FontSans:          nullString(t.Typography.Sans),
		FontSerif:         nullString(t.Typography.Serif),
		FontMono:          nullString(t.Typography.Mono),
		LetterSpacing:     sql.NullFloat64{Float64: t.Typography.LetterSpacing, Valid: true},
		Radius:            nullString(t.Layout.Radius),
		HueShift:          sql.NullFloat64{Float64: t.Layout.HueShift, Valid: true},
		SaturationAdjust:  sql.NullFloat64{Float64: t.Layout.SaturationAdjust, Valid: true},
		LightnessAdjust:   sql.NullFloat64{Float64: t.Layout.LightnessAdjust, Valid: true},
		SpacingScale:      sql.NullFloat64{Float64: t.Layout.SpacingScale, Valid: t.Layout.SpacingScale > 0},
		ShadowStrength:    nullString(string(t.Layout.ShadowStrength)),
		SupportsBothModes: t.SupportsBothModes,
		IsBuiltIn:         t.IsBuiltIn,
		ParentThemeID:     nullFromID(t.ParentThemeID),
		UserID:            nullFromID(t.UserID),
	}
	for i, token := range Tokens {
		fields.Colors[i] = dbgen.ColorColumns{
			Base:  nullString(t.Colors[token]),
			Light: nullString(t.Light[token]),
			Dark:  nullString(t.Dark[token]),
		}
	}
	return fields
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func idFromNull(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	id := value.Int64
	return &id
}

func nullFromID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

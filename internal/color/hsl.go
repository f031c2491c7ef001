// Package color converts between the canonical HSL token strings stored on
// themes, 8-bit hex strings, and the component form the picker edits.
package color

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	maxHue        = 360.0
	maxPercentage = 100.0
)

var (
	hslRegex = regexp.MustCompile(`^(\d{1,3}(?:\.\d+)?) (\d{1,3}(?:\.\d+)?)% (\d{1,3}(?:\.\d+)?)%$`)
	hexRegex = regexp.MustCompile(`^#?([0-9a-fA-F]{6})([0-9a-fA-F]{2})?$`)
)

// Components is the transient editing form of a single color token.
// Hue is 0..360, saturation and lightness are 0..100, alpha is 0..1.
type Components struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Lightness  float64 `json:"lightness"`
	Alpha      float64 `json:"alpha"`
}

// Black is what any unparseable HSL string resolves to.
func Black() Components {
	return Components{Alpha: 1}
}

// IsHSL reports whether value is in the canonical "H S% L%" form with every
// component in range.
func IsHSL(value string) bool {
	matches := hslRegex.FindStringSubmatch(value)
	if matches == nil {
		return false
	}
	limits := []float64{maxHue, maxPercentage, maxPercentage}
	for i, limit := range limits {
		v, err := strconv.ParseFloat(matches[i+1], 64)
		if err != nil || v > limit {
			return false
		}
	}
	return true
}

// ParseHSL splits text on whitespace and reads hue, saturation and lightness.
// Missing or malformed segments read as 0, so a corrupt string renders black
// instead of failing the caller.
func ParseHSL(text string) Components {
	c := Black()
	fields := strings.Fields(text)
	values := []*float64{&c.Hue, &c.Saturation, &c.Lightness}
	for i, dst := range values {
		if i >= len(fields) {
			break
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(fields[i], "%"), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		*dst = v
	}
	return c
}

// FormatHSL rounds each component to the nearest integer and renders the
// canonical "H S% L%" string. This is the only form written back to a theme.
func FormatHSL(c Components) string {
	return fmt.Sprintf(
		"%d %d%% %d%%",
		int(math.Round(wrapHue(c.Hue))),
		int(math.Round(clamp(c.Saturation, 0, maxPercentage))),
		int(math.Round(clamp(c.Lightness, 0, maxPercentage))),
	)
}

// ToHex converts c to "#RRGGBB", rounding each channel to the nearest 8-bit value.
func ToHex(c Components) string {
	return strings.ToUpper(toColorful(c).Hex())
}

// ToHexAlpha is ToHex with a trailing alpha byte, "#RRGGBBAA".
func ToHexAlpha(c Components) string {
	alpha := uint8(math.Round(clamp(c.Alpha, 0, 1) * 255))
	return fmt.Sprintf("%s%02X", ToHex(c), alpha)
}

// ParseHex reads "#RRGGBB" or "#RRGGBBAA" (the leading # is optional).
// Without an alpha byte the result is opaque.
func ParseHex(text string) (Components, error) {
	c, _, err := parseHex(text)
	return c, err
}

// FromHex is the picker's hex input path: invalid text leaves prev unchanged,
// and text without an alpha byte keeps prev's alpha.
func FromHex(text string, prev Components) Components {
	c, hasAlpha, err := parseHex(text)
	if err != nil {
		return prev
	}
	if !hasAlpha {
		c.Alpha = prev.Alpha
	}
	return c
}

// HexToHSL converts hex text straight to the canonical HSL string.
func HexToHSL(text string) (string, error) {
	c, err := ParseHex(text)
	if err != nil {
		return "", err
	}
	return FormatHSL(c), nil
}

// HSLToHex converts a canonical HSL string straight to "#RRGGBB".
func HSLToHex(text string) string {
	return ToHex(ParseHSL(text))
}

// Adjust shifts hue (wrapping) and offsets saturation and lightness
// (clamped to 0..100). Alpha is untouched.
func Adjust(c Components, hueShift, saturationAdjust, lightnessAdjust float64) Components {
	return Components{
		Hue:        wrapHue(c.Hue + hueShift),
		Saturation: clamp(c.Saturation+saturationAdjust, 0, maxPercentage),
		Lightness:  clamp(c.Lightness+lightnessAdjust, 0, maxPercentage),
		Alpha:      c.Alpha,
	}
}

func parseHex(text string) (Components, bool, error) {
	matches := hexRegex.FindStringSubmatch(strings.TrimSpace(text))
	if matches == nil {
		return Components{}, false, fmt.Errorf("invalid hex color: %q", text)
	}
	parsed, err := colorful.Hex("#" + matches[1])
	if err != nil {
		return Components{}, false, fmt.Errorf("invalid hex color: %q: %w", text, err)
	}

	h, s, l := parsed.Hsl()
	c := Components{
		Hue:        h,
		Saturation: s * maxPercentage,
		Lightness:  l * maxPercentage,
		Alpha:      1,
	}

	hasAlpha := matches[2] != ""
	if hasAlpha {
		a, err := strconv.ParseUint(matches[2], 16, 8)
		if err != nil {
			return Components{}, false, fmt.Errorf("invalid hex alpha: %q", text)
		}
		c.Alpha = float64(a) / 255
	}
	return c, hasAlpha, nil
}

func toColorful(c Components) colorful.Color {
	return colorful.Hsl(
		wrapHue(c.Hue),
		clamp(c.Saturation, 0, maxPercentage)/maxPercentage,
		clamp(c.Lightness, 0, maxPercentage)/maxPercentage,
	).Clamped()
}

// wrapHue keeps 360 as 360 so a stored "360" survives formatting.
func wrapHue(h float64) float64 {
	if h >= 0 && h <= maxHue {
		return h
	}
	h = math.Mod(h, maxHue)
	if h < 0 {
		h += maxHue
	}
	return h
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

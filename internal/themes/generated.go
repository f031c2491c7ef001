package themes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/codr1/Coursely/internal/color"
	"github.com/codr1/Coursely/internal/models"
)

type numberField struct {
	name     string
	min, max float64
	// exclusive lower bound
	aboveMin bool
	dst      func(*models.Theme, float64)
}

var generatedNumberFields = []numberField{
	{name: "letter_spacing", min: -1, max: 1, dst: func(t *models.Theme, v float64) { t.Typography.LetterSpacing = v }},
	{name: "hue_shift", min: -180, max: 180, dst: func(t *models.Theme, v float64) { t.Layout.HueShift = v }},
	{name: "saturation_adjust", min: -50, max: 50, dst: func(t *models.Theme, v float64) { t.Layout.SaturationAdjust = v }},
	{name: "lightness_adjust", min: -50, max: 50, dst: func(t *models.Theme, v float64) { t.Layout.LightnessAdjust = v }},
	{name: "spacing_scale", min: 0, max: 4, aboveMin: true, dst: func(t *models.Theme, v float64) { t.Layout.SpacingScale = v }},
}

var generatedStringFields = []struct {
	name string
	dst  func(*models.Theme, string)
}{
	{name: "font_sans", dst: func(t *models.Theme, v string) { t.Typography.Sans = v }},
	{name: "font_serif", dst: func(t *models.Theme, v string) { t.Typography.Serif = v }},
	{name: "font_mono", dst: func(t *models.Theme, v string) { t.Typography.Mono = v }},
	{name: "radius", dst: func(t *models.Theme, v string) { t.Layout.Radius = v }},
}

// ParseGeneratedTheme validates a theme produced by the AI generator and
// returns it as an unsaved, unowned draft with legacy colors only.
//
// Every field is required. Any failure rejects the whole payload with
// ValidationErrors listing each bad field; no partial theme is returned.
func ParseGeneratedTheme(data []byte) (*models.Theme, error) {
	var payload map[string]json.RawMessage
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&payload); err != nil {
		return nil, ValidationErrors{{Field: "payload", Message: "must be a JSON object"}}
	}
	if payload == nil {
		return nil, ValidationErrors{{Field: "payload", Message: "must be a JSON object"}}
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, ValidationErrors{{Field: "payload", Message: "must be a single JSON object"}}
	}

	var errs ValidationErrors
	theme := &models.Theme{Colors: models.ColorSet{}}

	if name, ok := readString(payload, "name", &errs); ok {
		theme.Name = name
	}

	for _, token := range models.Tokens {
		value, ok := readString(payload, string(token), &errs)
		if !ok {
			continue
		}
		if !color.IsHSL(value) {
			errs = append(errs, FieldError{Field: string(token), Message: `must be an HSL color like "200 85% 50%"`})
			continue
		}
		theme.Colors[token] = color.FormatHSL(color.ParseHSL(value))
	}

	for _, field := range generatedStringFields {
		if value, ok := readString(payload, field.name, &errs); ok {
			field.dst(theme, value)
		}
	}

	for _, field := range generatedNumberFields {
		value, ok := readNumber(payload, field.name, &errs)
		if !ok {
			continue
		}
		if value > field.max || value < field.min || (field.aboveMin && value == field.min) {
			errs = append(errs, FieldError{Field: field.name, Message: rangeMessage(field)})
			continue
		}
		field.dst(theme, value)
	}

	if shadow, ok := readString(payload, "shadow_strength", &errs); ok {
		strength := models.ShadowStrength(shadow)
		if strength.Valid() {
			theme.Layout.ShadowStrength = strength
		} else {
			errs = append(errs, FieldError{Field: "shadow_strength", Message: "must be one of none, subtle, medium, strong"})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return theme, nil
}

func readString(payload map[string]json.RawMessage, name string, errs *ValidationErrors) (string, bool) {
	raw, ok := payload[name]
	if !ok || isNull(raw) {
		*errs = append(*errs, FieldError{Field: name, Message: "is required"})
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		*errs = append(*errs, FieldError{Field: name, Message: "must be a string"})
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		*errs = append(*errs, FieldError{Field: name, Message: "must not be empty"})
		return "", false
	}
	return value, true
}

func readNumber(payload map[string]json.RawMessage, name string, errs *ValidationErrors) (float64, bool) {
	raw, ok := payload[name]
	if !ok || isNull(raw) {
		*errs = append(*errs, FieldError{Field: name, Message: "is required"})
		return 0, false
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		*errs = append(*errs, FieldError{Field: name, Message: "must be a number"})
		return 0, false
	}
	return value, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func rangeMessage(field numberField) string {
	if field.aboveMin {
		return fmt.Sprintf("must be greater than %g and at most %g", field.min, field.max)
	}
	return fmt.Sprintf("must be between %g and %g", field.min, field.max)
}

// Package colors exposes the picker conversions over HTTP. Every handler is
// stateless: the client sends the color it holds and gets all of its forms back.
package colors

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Coursely/internal/api/apiutil"
	"github.com/codr1/Coursely/internal/color"
)

type hslRequest struct {
	HSL   string   `json:"hsl"`
	Alpha *float64 `json:"alpha"`
}

type hexRequest struct {
	Hex      string      `json:"hex"`
	Previous *hslRequest `json:"previous"`
}

type pickerRequest struct {
	HSL      string         `json:"hsl"`
	Position color.Position `json:"position"`

	// Hue and Alpha are optional slider positions, both 0..1.
	Hue   *float64 `json:"hue"`
	Alpha *float64 `json:"alpha"`
}

type colorResponse struct {
	HSL           string           `json:"hsl"`
	Hex           string           `json:"hex"`
	HexAlpha      string           `json:"hexAlpha"`
	Components    color.Components `json:"components"`
	Picker        color.Position   `json:"picker"`
	HuePosition   float64          `json:"huePosition"`
	AlphaPosition float64          `json:"alphaPosition"`
}

func newColorResponse(c color.Components) colorResponse {
	return colorResponse{
		HSL:           color.FormatHSL(c),
		Hex:           color.ToHex(c),
		HexAlpha:      color.ToHexAlpha(c),
		Components:    c,
		Picker:        c.Picker(),
		HuePosition:   color.HuePosition(c.Hue),
		AlphaPosition: color.AlphaPosition(c.Alpha * 100),
	}
}

// POST /api/v1/colors/hex
// Converts an HSL token to hex. Malformed input renders as black.
func HandleHSLToHex(w http.ResponseWriter, r *http.Request) {
	var req hslRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	writeColor(w, r, req.components())
}

// POST /api/v1/colors/hsl
// Converts hex input to HSL. Invalid hex keeps the previous color.
func HandleHexToHSL(w http.ResponseWriter, r *http.Request) {
	var req hexRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if req.Previous == nil {
		c, err := color.ParseHex(strings.TrimSpace(req.Hex))
		if err != nil {
			apiutil.WriteError(w, http.StatusBadRequest, "hex must be #RRGGBB or #RRGGBBAA", nil)
			return
		}
		writeColor(w, r, c)
		return
	}

	prev := req.Previous.components()
	writeColor(w, r, color.FromHex(strings.TrimSpace(req.Hex), prev))
}

// POST /api/v1/colors/picker
// Moves the picker handle (and optionally the sliders) over the given color.
func HandlePickerToHSL(w http.ResponseWriter, r *http.Request) {
	var req pickerRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	c := color.ParseHSL(req.HSL).WithPicker(req.Position)
	if req.Hue != nil {
		c.Hue = color.HueAtPosition(*req.Hue)
	}
	if req.Alpha != nil {
		c.Alpha = color.AlphaAtPosition(*req.Alpha) / 100
	}
	writeColor(w, r, c)
}

// POST /api/v1/colors/picker/position
// Re-seeds the picker handle from a stored HSL token.
func HandleHSLToPicker(w http.ResponseWriter, r *http.Request) {
	var req hslRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	writeColor(w, r, req.components())
}

func (req hslRequest) components() color.Components {
	c := color.ParseHSL(req.HSL)
	if req.Alpha != nil {
		c.Alpha = min(max(*req.Alpha, 0), 1)
	}
	return c
}

func writeColor(w http.ResponseWriter, r *http.Request, c color.Components) {
	if err := apiutil.WriteJSON(w, http.StatusOK, newColorResponse(c)); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write color response")
	}
}

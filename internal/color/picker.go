package color

// The picker square is not a uniform saturation x lightness grid: for a fixed
// hue the brightest reachable lightness falls from 100 (grey axis, x = 0) to 50
// (fully saturated, x = 1). The top edge of the square follows that curve.

// saturationSingularity is the x below which the top edge is pinned to white.
const saturationSingularity = 0.01

// Position is a handle location on the picker square, both axes in 0..1.
// X runs left to right (saturation), Y runs top to bottom (darker).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TopLightness is the lightness at the top edge of the square for column x.
func TopLightness(x float64) float64 {
	if x < saturationSingularity {
		return maxPercentage
	}
	return 50 + 50*(1-x)
}

// PickerToHSL maps a handle position to saturation and lightness (0..100).
func PickerToHSL(pos Position) (saturation, lightness float64) {
	x := clamp(pos.X, 0, 1)
	y := clamp(pos.Y, 0, 1)
	saturation = x * maxPercentage
	lightness = TopLightness(x) * (1 - y)
	return saturation, lightness
}

// HSLToPicker re-seeds the handle from stored saturation and lightness. Colors
// brighter than the top edge for their column land on the top edge.
func HSLToPicker(saturation, lightness float64) Position {
	x := clamp(saturation/maxPercentage, 0, 1)
	y := 1 - lightness/TopLightness(x)
	return Position{X: x, Y: clamp(y, 0, 1)}
}

// WithPicker returns c with saturation and lightness taken from pos.
func (c Components) WithPicker(pos Position) Components {
	c.Saturation, c.Lightness = PickerToHSL(pos)
	return c
}

// Picker is the handle position for c.
func (c Components) Picker() Position {
	return HSLToPicker(c.Saturation, c.Lightness)
}

// HueAtPosition maps the hue slider (0..1) onto 0..360.
func HueAtPosition(pos float64) float64 {
	return clamp(pos, 0, 1) * maxHue
}

// HuePosition is the inverse of HueAtPosition.
func HuePosition(hue float64) float64 {
	return clamp(hue/maxHue, 0, 1)
}

// AlphaAtPosition maps the alpha slider (0..1) onto an opacity percentage.
func AlphaAtPosition(pos float64) float64 {
	return clamp(pos, 0, 1) * maxPercentage
}

// AlphaPosition is the inverse of AlphaAtPosition.
func AlphaPosition(percent float64) float64 {
	return clamp(percent/maxPercentage, 0, 1)
}

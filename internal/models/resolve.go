package models

var defaultColors = ColorSet{
	TokenPrimary:               "222 47% 11%",
	TokenSecondary:             "210 40% 96%",
	TokenAccent:                "210 40% 96%",
	TokenBaseBackground:        "0 0% 100%",
	TokenBaseForeground:        "222 84% 5%",
	TokenCardBackground:        "0 0% 100%",
	TokenCardForeground:        "222 84% 5%",
	TokenPopoverBackground:     "0 0% 100%",
	TokenPopoverForeground:     "222 84% 5%",
	TokenMutedBackground:       "210 40% 96%",
	TokenMutedForeground:       "215 16% 47%",
	TokenDestructiveBackground: "0 84% 60%",
	TokenDestructiveForeground: "210 40% 98%",
}

// DefaultColors returns a copy of the system default palette.
func DefaultColors() ColorSet {
	return defaultColors.Clone()
}

func DefaultColor(token Token) string {
	return defaultColors[token]
}

// ResolveColor returns the color to paint for token in mode. The first
// populated value wins: the mode field, then the legacy field, then the
// system default. A nil theme resolves to the default.
func ResolveColor(theme *Theme, token Token, mode Mode) string {
	if theme != nil {
		if value := theme.Variant(mode)[token]; value != "" {
			return value
		}
		if value := theme.Colors[token]; value != "" {
			return value
		}
	}
	return defaultColors[token]
}

// ResolvedColors resolves every token for mode.
func (t *Theme) ResolvedColors(mode Mode) ColorSet {
	out := make(ColorSet, len(Tokens))
	for _, token := range Tokens {
		out[token] = ResolveColor(t, token, mode)
	}
	return out
}

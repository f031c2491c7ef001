// Package assets embeds static files shipped with the binary.
package assets

import "embed"

// ThemesPath is the built-in theme catalog inside ThemesFS.
const ThemesPath = "themes.yaml"

//go:embed themes.yaml
var ThemesFS embed.FS

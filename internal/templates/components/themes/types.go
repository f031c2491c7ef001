package themes

import "github.com/codr1/Coursely/internal/models"

// Theme is the list view of a theme: identity plus colors already resolved
// for the viewer's mode.
type Theme struct {
	ID            int64             `json:"id"`
	Slug          string            `json:"slug"`
	Name          string            `json:"name"`
	IsBuiltIn     bool              `json:"isBuiltIn"`
	IsActive      bool              `json:"isActive"`
	ParentThemeID *int64            `json:"parentThemeId,omitempty"`
	Mode          models.Mode       `json:"mode"`
	Colors        models.ColorSet   `json:"colors"`
	Typography    models.Typography `json:"typography"`
	Layout        models.Layout     `json:"layout"`
}

func NewTheme(theme models.Theme, activeThemeID int64, mode models.Mode) Theme {
	return Theme{
		ID:            theme.ID,
		Slug:          theme.Slug,
		Name:          theme.Name,
		IsBuiltIn:     theme.IsBuiltIn,
		IsActive:      theme.ID != 0 && theme.ID == activeThemeID,
		ParentThemeID: theme.ParentThemeID,
		Mode:          mode,
		Colors:        theme.ResolvedColors(mode),
		Typography:    theme.Typography,
		Layout:        theme.Layout,
	}
}

func NewThemes(rows []models.Theme, activeThemeID int64, mode models.Mode) []Theme {
	themes := make([]Theme, len(rows))
	for i, row := range rows {
		themes[i] = NewTheme(row, activeThemeID, mode)
	}
	return themes
}

package dbgen

import (
	"context"
	"database/sql"
	"strings"
)

var (
	themeWriteColumns = buildThemeWriteColumns()
	themeSelectList   = "id, " + strings.Join(themeWriteColumns, ", ") + ", created_at, updated_at"
)

func buildThemeWriteColumns() []string {
	cols := []string{"slug", "name"}
	for _, token := range ColorTokens {
		cols = append(cols, "color_"+token, "color_"+token+"_light", "color_"+token+"_dark")
	}
	return append(cols,
		"font_sans",
		"font_serif",
		"font_mono",
		"letter_spacing",
		"radius",
		"hue_shift",
		"saturation_adjust",
		"lightness_adjust",
		"spacing_scale",
		"shadow_strength",
		"supports_both_modes",
		"is_built_in",
		"parent_theme_id",
		"user_id",
	)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (f ThemeFields) args() []interface{} {
	args := []interface{}{f.Slug, f.Name}
	for i := range ColorTokens {
		var c ColorColumns
		if i < len(f.Colors) {
			c = f.Colors[i]
		}
		args = append(args, c.Base, c.Light, c.Dark)
	}
	return append(args,
		f.FontSans,
		f.FontSerif,
		f.FontMono,
		f.LetterSpacing,
		f.Radius,
		f.HueShift,
		f.SaturationAdjust,
		f.LightnessAdjust,
		f.SpacingScale,
		f.ShadowStrength,
		f.SupportsBothModes,
		f.IsBuiltIn,
		f.ParentThemeID,
		f.UserID,
	)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTheme(row rowScanner) (Theme, error) {
	var t Theme
	t.Colors = make([]ColorColumns, len(ColorTokens))
	dest := []interface{}{&t.ID, &t.Slug, &t.Name}
	for i := range t.Colors {
		dest = append(dest, &t.Colors[i].Base, &t.Colors[i].Light, &t.Colors[i].Dark)
	}
	dest = append(dest,
		&t.FontSans,
		&t.FontSerif,
		&t.FontMono,
		&t.LetterSpacing,
		&t.Radius,
		&t.HueShift,
		&t.SaturationAdjust,
		&t.LightnessAdjust,
		&t.SpacingScale,
		&t.ShadowStrength,
		&t.SupportsBothModes,
		&t.IsBuiltIn,
		&t.ParentThemeID,
		&t.UserID,
		sqliteTime{&t.CreatedAt},
		sqliteTime{&t.UpdatedAt},
	)
	err := row.Scan(dest...)
	return t, err
}

func scanThemes(rows *sql.Rows) ([]Theme, error) {
	defer rows.Close()
	var items []Theme
	for rows.Next() {
		t, err := scanTheme(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var getTheme = `SELECT ` + themeSelectList + `
FROM themes
WHERE id = ?`

func (q *Queries) GetTheme(ctx context.Context, id int64) (Theme, error) {
	row := q.db.QueryRowContext(ctx, getTheme, id)
	return scanTheme(row)
}

var getThemeBySlug = `SELECT ` + themeSelectList + `
FROM themes
WHERE slug = ?`

func (q *Queries) GetThemeBySlug(ctx context.Context, slug string) (Theme, error) {
	row := q.db.QueryRowContext(ctx, getThemeBySlug, slug)
	return scanTheme(row)
}

var listBuiltInThemes = `SELECT ` + themeSelectList + `
FROM themes
WHERE is_built_in = 1
ORDER BY id`

func (q *Queries) ListBuiltInThemes(ctx context.Context) ([]Theme, error) {
	rows, err := q.db.QueryContext(ctx, listBuiltInThemes)
	if err != nil {
		return nil, err
	}
	return scanThemes(rows)
}

var listUserThemes = `SELECT ` + themeSelectList + `
FROM themes
WHERE is_built_in = 0 AND user_id = ?
ORDER BY name, id`

func (q *Queries) ListUserThemes(ctx context.Context, userID int64) ([]Theme, error) {
	rows, err := q.db.QueryContext(ctx, listUserThemes, userID)
	if err != nil {
		return nil, err
	}
	return scanThemes(rows)
}

var createTheme = `INSERT INTO themes (` + strings.Join(themeWriteColumns, ", ") + `)
VALUES (` + placeholders(len(themeWriteColumns)) + `)
RETURNING ` + themeSelectList

func (q *Queries) CreateTheme(ctx context.Context, arg ThemeFields) (Theme, error) {
	row := q.db.QueryRowContext(ctx, createTheme, arg.args()...)
	return scanTheme(row)
}

// Built-in rows are never overwritten once present.
var insertBuiltInTheme = `INSERT INTO themes (` + strings.Join(themeWriteColumns, ", ") + `)
VALUES (` + placeholders(len(themeWriteColumns)) + `)
ON CONFLICT (slug) DO NOTHING`

func (q *Queries) InsertBuiltInTheme(ctx context.Context, arg ThemeFields) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertBuiltInTheme, arg.args()...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

var updateTheme = `UPDATE themes
SET ` + strings.Join(themeWriteColumns, " = ?, ") + ` = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND is_built_in = 0
RETURNING ` + themeSelectList

type UpdateThemeParams struct {
	ID int64
	ThemeFields
}

func (q *Queries) UpdateTheme(ctx context.Context, arg UpdateThemeParams) (Theme, error) {
	args := append(arg.ThemeFields.args(), arg.ID)
	row := q.db.QueryRowContext(ctx, updateTheme, args...)
	return scanTheme(row)
}

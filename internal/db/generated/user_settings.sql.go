package dbgen

import (
	"context"
	"database/sql"
)

const getUserSettings = `SELECT user_id, theme_id, wallpaper_url, updated_at
FROM user_settings
WHERE user_id = ?`

func (q *Queries) GetUserSettings(ctx context.Context, userID int64) (UserSetting, error) {
	row := q.db.QueryRowContext(ctx, getUserSettings, userID)
	var i UserSetting
	err := row.Scan(
		&i.UserID,
		&i.ThemeID,
		&i.WallpaperURL,
		sqliteTime{&i.UpdatedAt},
	)
	return i, err
}

const getActiveThemeID = `SELECT COALESCE(theme_id, 0)
FROM user_settings
WHERE user_id = ?`

func (q *Queries) GetActiveThemeID(ctx context.Context, userID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, getActiveThemeID, userID)
	var themeID int64
	err := row.Scan(&themeID)
	return themeID, err
}

// Selecting a theme also clears the wallpaper override.
const selectActiveTheme = `INSERT INTO user_settings (user_id, theme_id, wallpaper_url, updated_at)
VALUES (?, ?, NULL, CURRENT_TIMESTAMP)
ON CONFLICT (user_id) DO UPDATE SET
    theme_id = excluded.theme_id,
    wallpaper_url = NULL,
    updated_at = CURRENT_TIMESTAMP`

type SelectActiveThemeParams struct {
	UserID  int64
	ThemeID sql.NullInt64
}

func (q *Queries) SelectActiveTheme(ctx context.Context, arg SelectActiveThemeParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, selectActiveTheme, arg.UserID, arg.ThemeID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const linkActiveTheme = `INSERT INTO user_settings (user_id, theme_id, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (user_id) DO UPDATE SET
    theme_id = excluded.theme_id,
    updated_at = CURRENT_TIMESTAMP`

type LinkActiveThemeParams struct {
	UserID  int64
	ThemeID sql.NullInt64
}

func (q *Queries) LinkActiveTheme(ctx context.Context, arg LinkActiveThemeParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, linkActiveTheme, arg.UserID, arg.ThemeID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setWallpaper = `INSERT INTO user_settings (user_id, wallpaper_url, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (user_id) DO UPDATE SET
    wallpaper_url = excluded.wallpaper_url,
    updated_at = CURRENT_TIMESTAMP`

type SetWallpaperParams struct {
	UserID       int64
	WallpaperURL sql.NullString
}

func (q *Queries) SetWallpaper(ctx context.Context, arg SetWallpaperParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setWallpaper, arg.UserID, arg.WallpaperURL)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
